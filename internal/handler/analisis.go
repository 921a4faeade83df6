package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/lagabyok/SabIA-agent/internal/apierror"
	"github.com/lagabyok/SabIA-agent/internal/dto"
	"github.com/lagabyok/SabIA-agent/internal/infra"
	"github.com/lagabyok/SabIA-agent/internal/repository"
	"github.com/lagabyok/SabIA-agent/internal/service"

	"github.com/gin-gonic/gin"
)

type AnalisisHandler struct {
	svc            service.AnalisisService
	pdfStoragePath string
}

func NewAnalisisHandler(svc service.AnalisisService, pdfStoragePath string) *AnalisisHandler {
	return &AnalisisHandler{svc: svc, pdfStoragePath: pdfStoragePath}
}

// Ejecutar runs the pipeline for the requested period and returns the
// complete record. Schema/input errors fail the whole run; nothing partial
// is ever returned.
func (h *AnalisisHandler) Ejecutar(c *gin.Context) {
	var req dto.RunRequest
	if !bindAndValidate(c, &req) {
		return
	}
	record, err := h.svc.Ejecutar(c.Request.Context(), req)
	if err != nil {
		// Input problems (bad period, broken tables) are the caller's to fix;
		// a run that computed but could not be stored is ours.
		if errors.Is(err, service.ErrGuardarRun) {
			c.JSON(http.StatusInternalServerError, apierror.New("Error al guardar el run"))
			return
		}
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, record)
}

// UltimoRun returns the most recently created run.
func (h *AnalisisHandler) UltimoRun(c *gin.Context) {
	record, err := h.svc.UltimoRun(c.Request.Context())
	if err != nil {
		if errors.Is(err, repository.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("No hay corridas aún. Ejecuta POST /v1/run."))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("Error al consultar el ultimo run"))
		return
	}
	c.JSON(http.StatusOK, record)
}

// ListarRuns returns run history, newest first.
func (h *AnalisisHandler) ListarRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	items, err := h.svc.ListarRuns(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar runs"))
		return
	}
	c.JSON(http.StatusOK, dto.RunListResponse{Runs: items})
}

// ObtenerRun returns one run by id.
func (h *AnalisisHandler) ObtenerRun(c *gin.Context) {
	record, err := h.svc.ObtenerRun(c.Request.Context(), c.Param("run_id"))
	if err != nil {
		if errors.Is(err, repository.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("run_id no encontrado"))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("Error al consultar el run"))
		return
	}
	c.JSON(http.StatusOK, record)
}

// DescargarPDF renders a run as a PDF summary sheet and streams it back.
func (h *AnalisisHandler) DescargarPDF(c *gin.Context) {
	record, err := h.svc.ObtenerRun(c.Request.Context(), c.Param("run_id"))
	if err != nil {
		if errors.Is(err, repository.ErrRunNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("run_id no encontrado"))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("Error al consultar el run"))
		return
	}

	path, err := infra.GenerateReportePDF(record, h.pdfStoragePath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al generar el PDF"))
		return
	}
	c.FileAttachment(path, "reporte_"+record.Periodo+".pdf")
}
