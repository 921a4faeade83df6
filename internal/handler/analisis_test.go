package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lagabyok/SabIA-agent/internal/dto"
	"github.com/lagabyok/SabIA-agent/internal/repository"
	"github.com/lagabyok/SabIA-agent/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Stub service ─────────────────────────────────────────────────────────────

type stubAnalisisSvc struct {
	record *dto.RunRecord
	err    error
	items  []dto.RunListItem
}

func (s *stubAnalisisSvc) Ejecutar(_ context.Context, req dto.RunRequest) (*dto.RunRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	rec := *s.record
	rec.Periodo = req.Periodo
	return &rec, nil
}

func (s *stubAnalisisSvc) UltimoRun(_ context.Context) (*dto.RunRecord, error) {
	if s.record == nil {
		return nil, repository.ErrRunNotFound
	}
	return s.record, nil
}

func (s *stubAnalisisSvc) ListarRuns(_ context.Context, _ int) ([]dto.RunListItem, error) {
	return s.items, nil
}

func (s *stubAnalisisSvc) ObtenerRun(_ context.Context, runID string) (*dto.RunRecord, error) {
	if s.record == nil || s.record.RunID != runID {
		return nil, repository.ErrRunNotFound
	}
	return s.record, nil
}

func setupRouter(svc *stubAnalisisSvc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAnalisisHandler(svc, "")
	r := gin.New()
	r.POST("/v1/run", h.Ejecutar)
	r.GET("/v1/runs/latest", h.UltimoRun)
	r.GET("/v1/runs", h.ListarRuns)
	r.GET("/v1/runs/:run_id", h.ObtenerRun)
	return r
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestEjecutarHandler_OK(t *testing.T) {
	svc := &stubAnalisisSvc{record: &dto.RunRecord{RunID: "2025-03-31T10:00:00Z", ExecutiveReportMD: "### Resumen"}}
	r := setupRouter(svc)

	w := doJSON(r, http.MethodPost, "/v1/run", dto.RunRequest{Periodo: "2025-03"})
	require.Equal(t, http.StatusOK, w.Code)

	var rec dto.RunRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, "2025-03", rec.Periodo)
	assert.NotEmpty(t, rec.ExecutiveReportMD)
}

func TestEjecutarHandler_SinPeriodo(t *testing.T) {
	r := setupRouter(&stubAnalisisSvc{record: &dto.RunRecord{}})

	w := doJSON(r, http.MethodPost, "/v1/run", map[string]string{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Periodo")
}

func TestEjecutarHandler_LLMInvalido(t *testing.T) {
	r := setupRouter(&stubAnalisisSvc{record: &dto.RunRecord{}})

	w := doJSON(r, http.MethodPost, "/v1/run", map[string]string{"periodo": "2025-03", "llm": "gemini"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestEjecutarHandler_ErrorDeEntrada(t *testing.T) {
	r := setupRouter(&stubAnalisisSvc{err: errors.New(`periodo "marzo" invalido, se espera YYYY-MM`)})

	w := doJSON(r, http.MethodPost, "/v1/run", dto.RunRequest{Periodo: "marzo"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalido")
}

func TestEjecutarHandler_ErrorDePersistenciaEs500(t *testing.T) {
	r := setupRouter(&stubAnalisisSvc{err: fmt.Errorf("%w: %v", service.ErrGuardarRun, errors.New("db caida"))})

	w := doJSON(r, http.MethodPost, "/v1/run", dto.RunRequest{Periodo: "2025-03"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Error al guardar el run")
	assert.NotContains(t, w.Body.String(), "db caida", "el detalle interno no se expone")
}

func TestUltimoRunHandler_SinCorridas(t *testing.T) {
	r := setupRouter(&stubAnalisisSvc{})

	w := doJSON(r, http.MethodGet, "/v1/runs/latest", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "No hay corridas")
}

func TestObtenerRunHandler_NoEncontrado(t *testing.T) {
	svc := &stubAnalisisSvc{record: &dto.RunRecord{RunID: "existe"}}
	r := setupRouter(svc)

	w := doJSON(r, http.MethodGet, "/v1/runs/otro", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "run_id no encontrado")

	w = doJSON(r, http.MethodGet, "/v1/runs/existe", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListarRunsHandler(t *testing.T) {
	svc := &stubAnalisisSvc{items: []dto.RunListItem{
		{RunID: "r2", Periodo: "2025-03"},
		{RunID: "r1", Periodo: "2025-02"},
	}}
	r := setupRouter(svc)

	w := doJSON(r, http.MethodGet, "/v1/runs", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.RunListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Runs, 2)
	assert.Equal(t, "r2", resp.Runs[0].RunID)
}
