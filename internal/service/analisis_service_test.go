package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/lagabyok/SabIA-agent/internal/config"
	"github.com/lagabyok/SabIA-agent/internal/dto"
	"github.com/lagabyok/SabIA-agent/internal/llm"
	"github.com/lagabyok/SabIA-agent/internal/model"
	"github.com/lagabyok/SabIA-agent/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── Stubs ────────────────────────────────────────────────────────────────────

// stubSource hands the pipeline a fixed in-memory dataset.
type stubSource struct {
	ds  *model.Dataset
	err error
}

func (s *stubSource) Load(_ context.Context) (*model.Dataset, error) {
	return s.ds, s.err
}

// stubRunRepo is an in-memory RunRepository.
type stubRunRepo struct {
	runs    []model.Run
	saveErr error
}

func (r *stubRunRepo) Save(_ context.Context, run *model.Run) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.runs = append(r.runs, *run)
	return nil
}

func (r *stubRunRepo) FindLatest(_ context.Context) (*model.Run, error) {
	if len(r.runs) == 0 {
		return nil, repository.ErrRunNotFound
	}
	latest := r.runs[len(r.runs)-1]
	return &latest, nil
}

func (r *stubRunRepo) List(_ context.Context, limit int) ([]model.Run, error) {
	if limit > len(r.runs) {
		limit = len(r.runs)
	}
	out := make([]model.Run, 0, limit)
	for i := len(r.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.runs[i])
	}
	return out, nil
}

func (r *stubRunRepo) FindByID(_ context.Context, runID string) (*model.Run, error) {
	for i := range r.runs {
		if r.runs[i].RunID == runID {
			return &r.runs[i], nil
		}
	}
	return nil, repository.ErrRunNotFound
}

var _ repository.RunRepository = (*stubRunRepo)(nil)

// stubProvider fails or answers on demand.
type stubProvider struct {
	texto string
	err   error
	calls int
}

func (p *stubProvider) Name() string { return "stub" }
func (p *stubProvider) GenerateExecutiveReport(_ context.Context, _ llm.ReportPayload) (string, error) {
	p.calls++
	return p.texto, p.err
}

// ── Fixtures ─────────────────────────────────────────────────────────────────

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func testConfig() *config.Config {
	return &config.Config{
		ValorMinuto:       1.0,
		MargenCriticoPct:  0.10,
		MargenObjetivoPct: 0.30,
		EsfuerzoAltoMin:   90,
		TopDrivers:        3,
	}
}

// testDataset: P1 sells at 100 with 120 of cost (negative margin),
// P2 sells at 50 with healthy margin. March 2025 sales only.
func testDataset() *model.Dataset {
	fecha := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	return &model.Dataset{
		Productos: []model.Producto{
			{ProductoID: "P1", Nombre: "Torta premium", PrecioVenta: dec(100)},
			{ProductoID: "P2", Nombre: "Cafe", PrecioVenta: dec(50)},
		},
		Ventas: []model.Venta{
			{Fecha: fecha, ProductoID: "P1", CantidadVendida: dec(10)},
			{Fecha: fecha, ProductoID: "P2", CantidadVendida: dec(40)},
		},
		Insumos: []model.Insumo{
			{InsumoID: "I1", Nombre: "Chocolate belga", CostoUnitario: dec(10)},
		},
		Recetas: []model.Receta{
			{ProductoID: "P1", InsumoID: "I1", Cantidad: dec(9)}, // 90 en insumos
		},
		Tiempos: []model.TiempoProduccion{
			{ProductoID: "P1", TiempoTotalMin: dec(20)}, // +20 de esfuerzo
		},
		Gastos: []model.GastoGeneral{
			{TipoGasto: "Alquiler", MontoMensual: dec(500)}, // 10 por unidad (50 vendidas)
		},
	}
}

func buildSvc(repo repository.RunRepository, provider llm.Provider) AnalisisService {
	providers := func(name string) llm.Provider {
		if name == "" {
			return nil
		}
		return provider
	}
	return NewAnalisisService(&stubSource{ds: testDataset()}, repo, nil, providers, testConfig())
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestEjecutar_RunCompleto(t *testing.T) {
	repo := &stubRunRepo{}
	svc := buildSvc(repo, nil)

	record, err := svc.Ejecutar(context.Background(), dto.RunRequest{Periodo: "2025-03"})
	require.NoError(t, err)

	assert.NotEmpty(t, record.RunID)
	assert.Equal(t, "2025-03", record.Periodo)
	assert.NotEmpty(t, record.ExecutiveReportMD, "siempre hay narrativa, con o sin LLM")

	// P1: costo total = 90 insumos + 20 esfuerzo + 10 indirectos = 120 > 100.
	require.NotEmpty(t, record.Alertas)
	var negativa *dto.Alerta
	for i := range record.Alertas {
		if record.Alertas[i].Tipo == dto.AlertaMargenNegativo {
			negativa = &record.Alertas[i]
		}
	}
	require.NotNil(t, negativa, "P1 debe disparar margen negativo")
	assert.Equal(t, "P1", negativa.ProductoID)
	assert.Equal(t, dto.SeveridadAlta, negativa.Severidad)
	assert.NotNil(t, negativa.Evidencia)
	assert.NotEmpty(t, negativa.AlertID)

	assert.Equal(t, 2, record.KPIs.TotalProductos)
	assert.Equal(t, 1, record.KPIs.ProductosMargenNegativoCount)
	assert.True(t, record.KPIs.PerdidaTotalMargenNegativo.Equal(dec(200)), "20 de margen negativo x 10 unidades")

	// The run was persisted.
	require.Len(t, repo.runs, 1)
	assert.Equal(t, record.RunID, repo.runs[0].RunID)
	assert.JSONEq(t, repo.runs[0].OutputJSON, mustJSON(t, record))
}

func TestEjecutar_PeriodoSinVentas(t *testing.T) {
	svc := buildSvc(&stubRunRepo{}, nil)

	record, err := svc.Ejecutar(context.Background(), dto.RunRequest{Periodo: "2025-06"})
	require.NoError(t, err)
	assert.True(t, record.KPIs.MargenPromedioPct.IsZero())
	assert.Equal(t, 2, record.KPIs.TotalProductos, "el catalogo completo aparece igual")
}

func TestEjecutar_PeriodoInvalido(t *testing.T) {
	svc := buildSvc(&stubRunRepo{}, nil)

	_, err := svc.Ejecutar(context.Background(), dto.RunRequest{Periodo: "marzo-2025"})
	assert.ErrorContains(t, err, "invalido")
}

func TestEjecutar_ProveedorFallaUsaFallback(t *testing.T) {
	provider := &stubProvider{err: errors.New("api caida")}
	svc := buildSvc(&stubRunRepo{}, provider)

	record, err := svc.Ejecutar(context.Background(), dto.RunRequest{Periodo: "2025-03", LLM: "openai"})
	require.NoError(t, err, "la falla del LLM nunca falla el run")
	assert.Equal(t, 1, provider.calls)
	assert.Contains(t, record.ExecutiveReportMD, "### Resumen")
	assert.Contains(t, record.ExecutiveReportMD, "### Próximas acciones")
}

func TestEjecutar_ProveedorRespondeUsaSuTexto(t *testing.T) {
	provider := &stubProvider{texto: "## Informe del mes\nTodo en orden."}
	svc := buildSvc(&stubRunRepo{}, provider)

	record, err := svc.Ejecutar(context.Background(), dto.RunRequest{Periodo: "2025-03", LLM: "openai"})
	require.NoError(t, err)
	assert.Equal(t, "## Informe del mes\nTodo en orden.", record.ExecutiveReportMD)
}

func TestEjecutar_BreakerAbiertoDejaDeLlamarAlProveedor(t *testing.T) {
	provider := &stubProvider{err: errors.New("api caida")}
	svc := buildSvc(&stubRunRepo{}, provider)

	// Three consecutive failures trip the breaker; from then on the provider
	// is skipped outright and every run still completes with the template.
	for i := 0; i < 5; i++ {
		record, err := svc.Ejecutar(context.Background(), dto.RunRequest{Periodo: "2025-03", LLM: "openai"})
		require.NoError(t, err)
		assert.Contains(t, record.ExecutiveReportMD, "### Resumen")
	}
	assert.Equal(t, 3, provider.calls, "con el breaker abierto no hay mas llamadas")
}

func TestEjecutar_RespuestaVaciaUsaFallback(t *testing.T) {
	provider := &stubProvider{texto: ""}
	svc := buildSvc(&stubRunRepo{}, provider)

	record, err := svc.Ejecutar(context.Background(), dto.RunRequest{Periodo: "2025-03", LLM: "openai"})
	require.NoError(t, err)
	assert.Contains(t, record.ExecutiveReportMD, "### Resumen")
}

func TestEjecutar_Deterministico(t *testing.T) {
	svc := buildSvc(&stubRunRepo{}, nil)

	a, err := svc.Ejecutar(context.Background(), dto.RunRequest{Periodo: "2025-03"})
	require.NoError(t, err)
	b, err := svc.Ejecutar(context.Background(), dto.RunRequest{Periodo: "2025-03"})
	require.NoError(t, err)

	// Same snapshot, same numbers and text; only the run id differs.
	assert.NotEqual(t, a.RunID, b.RunID)
	assert.Equal(t, a.ExecutiveReportMD, b.ExecutiveReportMD)
	assert.Equal(t, mustJSON(t, a.KPIs), mustJSON(t, b.KPIs))
	assert.Equal(t, mustJSON(t, a.Alertas), mustJSON(t, b.Alertas))
}

func TestEjecutar_ErrorDePersistenciaSurge(t *testing.T) {
	repo := &stubRunRepo{saveErr: errors.New("db caida")}
	svc := buildSvc(repo, nil)

	_, err := svc.Ejecutar(context.Background(), dto.RunRequest{Periodo: "2025-03"})
	assert.ErrorIs(t, err, ErrGuardarRun)
	assert.ErrorContains(t, err, "db caida")
}

func TestUltimoRun_SinHistorial(t *testing.T) {
	svc := buildSvc(&stubRunRepo{}, nil)

	_, err := svc.UltimoRun(context.Background())
	assert.ErrorIs(t, err, repository.ErrRunNotFound)
}

func TestUltimoRun_DevuelveElMasReciente(t *testing.T) {
	repo := &stubRunRepo{}
	svc := buildSvc(repo, nil)

	_, err := svc.Ejecutar(context.Background(), dto.RunRequest{Periodo: "2025-02"})
	require.NoError(t, err)
	segundo, err := svc.Ejecutar(context.Background(), dto.RunRequest{Periodo: "2025-03"})
	require.NoError(t, err)

	ultimo, err := svc.UltimoRun(context.Background())
	require.NoError(t, err)
	assert.Equal(t, segundo.RunID, ultimo.RunID)
	assert.Equal(t, "2025-03", ultimo.Periodo)
}

func TestListarRuns_LimiteYOrden(t *testing.T) {
	repo := &stubRunRepo{}
	svc := buildSvc(repo, nil)

	for _, p := range []string{"2025-01", "2025-02", "2025-03"} {
		_, err := svc.Ejecutar(context.Background(), dto.RunRequest{Periodo: p})
		require.NoError(t, err)
	}

	items, err := svc.ListarRuns(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "2025-03", items[0].Periodo, "mas reciente primero")
	assert.Equal(t, "2025-02", items[1].Periodo)
}

func TestObtenerRun_PorID(t *testing.T) {
	repo := &stubRunRepo{}
	svc := buildSvc(repo, nil)

	record, err := svc.Ejecutar(context.Background(), dto.RunRequest{Periodo: "2025-03"})
	require.NoError(t, err)

	found, err := svc.ObtenerRun(context.Background(), record.RunID)
	require.NoError(t, err)
	assert.Equal(t, record.RunID, found.RunID)
	assert.Equal(t, record.ExecutiveReportMD, found.ExecutiveReportMD)

	_, err = svc.ObtenerRun(context.Background(), "no-existe")
	assert.ErrorIs(t, err, repository.ErrRunNotFound)
}

func mustJSON(t *testing.T, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}
