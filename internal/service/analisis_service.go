package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lagabyok/SabIA-agent/internal/analysis"
	"github.com/lagabyok/SabIA-agent/internal/config"
	"github.com/lagabyok/SabIA-agent/internal/dto"
	"github.com/lagabyok/SabIA-agent/internal/infra"
	"github.com/lagabyok/SabIA-agent/internal/llm"
	"github.com/lagabyok/SabIA-agent/internal/model"
	"github.com/lagabyok/SabIA-agent/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// latestRunKey caches the most recent run record in Redis. Best-effort only:
// the database is the source of truth.
const latestRunKey = "runs:latest"

// llmTimeout bounds the single narrative-generation call. No retries — on
// timeout or error the run degrades to the deterministic template.
const llmTimeout = 60 * time.Second

// ErrGuardarRun marks a persistence failure after a successful computation.
// Handlers map it to a server-side error, unlike input problems.
var ErrGuardarRun = errors.New("guardar run")

// DataSource hands the pipeline already-validated tabular data.
type DataSource interface {
	Load(ctx context.Context) (*model.Dataset, error)
}

// ProviderFactory resolves an optional text-generation collaborator by name.
// A nil result means "deterministic template only".
type ProviderFactory func(name string) llm.Provider

// AnalisisService orchestrates the pipeline: one call computes, explains,
// narrates, and persists a complete run for a period.
type AnalisisService interface {
	Ejecutar(ctx context.Context, req dto.RunRequest) (*dto.RunRecord, error)
	UltimoRun(ctx context.Context) (*dto.RunRecord, error)
	ListarRuns(ctx context.Context, limit int) ([]dto.RunListItem, error)
	ObtenerRun(ctx context.Context, runID string) (*dto.RunRecord, error)
}

type analisisService struct {
	source      DataSource
	repo        repository.RunRepository
	rdb         *redis.Client // nil in unit tests
	providers   ProviderFactory
	cb          *infra.CircuitBreaker
	umbrales    analysis.Umbrales
	valorMinuto decimal.Decimal
	topDrivers  int
}

func NewAnalisisService(
	source DataSource,
	repo repository.RunRepository,
	rdb *redis.Client,
	providers ProviderFactory,
	cfg *config.Config,
) AnalisisService {
	return &analisisService{
		source:    source,
		repo:      repo,
		rdb:       rdb,
		providers: providers,
		cb:        infra.NewCircuitBreaker(infra.DefaultCBConfig()),
		umbrales: analysis.Umbrales{
			MargenCriticoPct:  decimal.NewFromFloat(cfg.MargenCriticoPct),
			MargenObjetivoPct: decimal.NewFromFloat(cfg.MargenObjetivoPct),
			EsfuerzoAltoMin:   decimal.NewFromInt(int64(cfg.EsfuerzoAltoMin)),
		},
		valorMinuto: decimal.NewFromFloat(cfg.ValorMinuto),
		topDrivers:  cfg.TopDrivers,
	}
}

// ── Ejecutar ─────────────────────────────────────────────────────────────────
// One complete run:
//   1. Load + validate tables, filter ventas to the period
//   2. Unit costs → metrics → alerts → evidence → KPIs
//   3. Narrative report (LLM, falling back to the deterministic template)
//   4. Assemble the immutable record, persist, cache latest

func (s *analisisService) Ejecutar(ctx context.Context, req dto.RunRequest) (*dto.RunRecord, error) {
	ds, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}

	ventas, err := analysis.FiltrarVentasPorPeriodo(ds.Ventas, req.Periodo)
	if err != nil {
		return nil, err
	}
	periodoDS := &model.Dataset{
		Productos: ds.Productos,
		Ventas:    ventas,
		Insumos:   ds.Insumos,
		Recetas:   ds.Recetas,
		Tiempos:   ds.Tiempos,
		Gastos:    ds.Gastos,
	}

	costos, drivers := analysis.CalcularCostos(periodoDS, s.valorMinuto)
	metricas := analysis.CalcularMetricas(periodoDS, costos)
	alertas := analysis.EvaluarReglas(metricas, s.umbrales)
	alertas = analysis.AdjuntarEvidencia(alertas, metricas, drivers, s.topDrivers)
	kpis := analysis.AgregarKPIs(metricas, alertas, req.Periodo)

	reporte := s.generarReporte(ctx, req.LLM, kpis, alertas)

	record := &dto.RunRecord{
		RunID:             time.Now().UTC().Format(time.RFC3339Nano),
		Periodo:           req.Periodo,
		ExecutiveReportMD: reporte,
		KPIs:              kpis,
		Alertas:           alertas,
	}

	encoded, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("serializar run: %w", err)
	}
	run := &model.Run{
		RunID:      record.RunID,
		Periodo:    record.Periodo,
		CreatedAt:  time.Now().UTC(),
		OutputJSON: string(encoded),
	}
	if err := s.repo.Save(ctx, run); err != nil {
		// Persistence failures surface to the caller; the computation is cheap
		// and idempotent, so there is nothing to retry here.
		return nil, fmt.Errorf("%w: %v", ErrGuardarRun, err)
	}

	if s.rdb != nil {
		if err := s.rdb.Set(ctx, latestRunKey, encoded, 0).Err(); err != nil {
			log.Warn().Err(err).Msg("no se pudo cachear el ultimo run")
		}
	}

	log.Info().
		Str("run_id", record.RunID).
		Str("periodo", record.Periodo).
		Int("alertas", len(alertas)).
		Msg("run completado")
	return record, nil
}

// generarReporte asks the configured provider for a narrative, degrading to
// the deterministic template on any failure. The payload carries only the
// KPI set and the top 5 alerts by severity. The call goes through a circuit
// breaker: after repeated failures the provider is skipped outright (no call,
// no timeout spent) until the breaker lets a probe through again.
func (s *analisisService) generarReporte(ctx context.Context, providerName string, kpis dto.KPIs, alertas []dto.Alerta) string {
	provider := s.providers(providerName)
	if provider == nil {
		return llm.FallbackReport(kpis, analysis.OrdenarPorSeveridad(alertas))
	}

	top := analysis.OrdenarPorSeveridad(alertas)
	if len(top) > 5 {
		top = top[:5]
	}

	var texto string
	err := s.cb.Execute(func() error {
		llmCtx, cancel := context.WithTimeout(ctx, llmTimeout)
		defer cancel()

		out, err := provider.GenerateExecutiveReport(llmCtx, llm.ReportPayload{KPIs: kpis, Alertas: top})
		if err != nil {
			return err
		}
		if out == "" {
			return errors.New("respuesta vacia")
		}
		texto = out
		return nil
	})
	if err != nil {
		if errors.Is(err, infra.ErrCircuitOpen) {
			log.Warn().Str("provider", provider.Name()).Msg("breaker abierto, se omite el LLM y se usa el template deterministico")
		} else {
			log.Warn().Err(err).Str("provider", provider.Name()).Msg("reporte LLM fallido, usando template deterministico")
		}
		return llm.FallbackReport(kpis, analysis.OrdenarPorSeveridad(alertas))
	}
	return texto
}

// ── Queries over persisted history ───────────────────────────────────────────

func (s *analisisService) UltimoRun(ctx context.Context) (*dto.RunRecord, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, latestRunKey).Result(); err == nil {
			var record dto.RunRecord
			if err := json.Unmarshal([]byte(cached), &record); err == nil {
				return &record, nil
			}
		}
	}

	run, err := s.repo.FindLatest(ctx)
	if err != nil {
		return nil, err
	}
	return decodeRun(run)
}

func (s *analisisService) ListarRuns(ctx context.Context, limit int) ([]dto.RunListItem, error) {
	if limit < 1 {
		limit = 20
	}
	runs, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.RunListItem, 0, len(runs))
	for _, r := range runs {
		items = append(items, dto.RunListItem{
			RunID:     r.RunID,
			Periodo:   r.Periodo,
			CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return items, nil
}

func (s *analisisService) ObtenerRun(ctx context.Context, runID string) (*dto.RunRecord, error) {
	run, err := s.repo.FindByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	return decodeRun(run)
}

func decodeRun(run *model.Run) (*dto.RunRecord, error) {
	var record dto.RunRecord
	if err := json.Unmarshal([]byte(run.OutputJSON), &record); err != nil {
		return nil, fmt.Errorf("decodificar run %s: %w", run.RunID, err)
	}
	return &record, nil
}
