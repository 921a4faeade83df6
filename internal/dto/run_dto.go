package dto

import "github.com/shopspring/decimal"

// ─── Alert types and severities (wire values) ───────────────────────────────

const (
	AlertaMargenNegativo          = "MARGEN_NEGATIVO"
	AlertaMargenCritico           = "MARGEN_CRITICO"
	AlertaAltoEsfuerzoBajoRetorno = "ALTO_ESFUERZO_BAJO_RETORNO"
	AlertaPrecioDesactualizado    = "PRECIO_DESACTUALIZADO"

	SeveridadAlta  = "ALTA"
	SeveridadMedia = "MEDIA"
	SeveridadBaja  = "BAJA"

	AccionAjustarPrecio        = "AJUSTAR_PRECIO"
	AccionRevisarPrecioOCostos = "REVISAR_PRECIO_O_COSTOS"
	AccionOptimizarOPriorizar  = "OPTIMIZAR_O_PRIORIZAR"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// RunRequest is the body of POST /v1/run.
type RunRequest struct {
	Periodo string `json:"periodo" validate:"required"`                       // "YYYY-MM"
	LLM     string `json:"llm"     validate:"omitempty,oneof=openai anthropic"` // empty = deterministic template
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// ─── Alert payload ───────────────────────────────────────────────────────────

// Recomendacion carries the suggested action for an alert. Rules that adjust
// price attach precio_sugerido and the target margin; the effort rule carries
// only a nota.
type Recomendacion struct {
	Accion            string           `json:"accion"`
	PrecioSugerido    *decimal.Decimal `json:"precio_sugerido,omitempty"`
	MargenObjetivoPct *decimal.Decimal `json:"margen_objetivo_pct,omitempty"`
	Nota              string           `json:"nota,omitempty"`
}

// Driver is one cost driver entry inside an alert's evidence.
type Driver struct {
	Tipo            string          `json:"tipo"` // always "INSUMO"
	Nombre          string          `json:"nombre"`
	ImpactoUnitario decimal.Decimal `json:"impacto_unitario"`
}

// Evidencia is the full metric snapshot attached to an alert.
type Evidencia struct {
	Precio              decimal.Decimal `json:"precio"`
	CostoTotalUnit      decimal.Decimal `json:"costo_total_unit"`
	CostoInsumosUnit    decimal.Decimal `json:"costo_insumos_unit"`
	CostoEsfuerzoUnit   decimal.Decimal `json:"costo_esfuerzo_unit"`
	CostoIndirectosUnit decimal.Decimal `json:"costo_indirectos_unit"`
	MargenAbsUnit       decimal.Decimal `json:"margen_abs_unit"`
	MargenPct           decimal.Decimal `json:"margen_pct"`
	UnidadesPeriodo     decimal.Decimal `json:"unidades_periodo"`
	ContribucionTotal   decimal.Decimal `json:"contribucion_total"`
	PerdidaTotal        decimal.Decimal `json:"perdida_total"`
	TiempoTotalMin      decimal.Decimal `json:"tiempo_total_min"`
	Drivers             []Driver        `json:"drivers"`
}

// ImpactoEstimado quantifies what acting on the recommendation is worth.
type ImpactoEstimado struct {
	ImpactoSiAjustaPrecio *decimal.Decimal `json:"impacto_si_ajusta_precio,omitempty"`
	PerdidaActualPeriodo  *decimal.Decimal `json:"perdida_actual_periodo,omitempty"`
}

// Alerta is one typed business alert. AlertID, Evidencia and ImpactoEstimado
// are assigned in the final evidence-attachment pass; rule evaluation emits
// the alert without them.
type Alerta struct {
	AlertID         string           `json:"alert_id,omitempty"`
	ProductoID      string           `json:"producto_id"`
	NombreProducto  string           `json:"nombre_producto"`
	Tipo            string           `json:"tipo"`
	Severidad       string           `json:"severidad"`
	Mensaje         string           `json:"mensaje"`
	Recomendacion   Recomendacion    `json:"recomendacion"`
	Evidencia       *Evidencia       `json:"evidencia,omitempty"`
	ImpactoEstimado *ImpactoEstimado `json:"impacto_estimado,omitempty"`
}

// ─── KPIs ────────────────────────────────────────────────────────────────────

// TopContribucion is one entry of the top-5-by-contribution ranking.
type TopContribucion struct {
	ProductoID        string          `json:"producto_id"`
	NombreProducto    string          `json:"nombre_producto"`
	ContribucionTotal decimal.Decimal `json:"contribucion_total"`
}

// TopPerdida is one entry of the top-5-by-loss ranking.
type TopPerdida struct {
	ProductoID     string          `json:"producto_id"`
	NombreProducto string          `json:"nombre_producto"`
	PerdidaTotal   decimal.Decimal `json:"perdida_total"`
}

// KPIs is the period-level summary, one per run.
type KPIs struct {
	Periodo                               string            `json:"periodo"`
	TotalProductos                        int               `json:"total_productos"`
	ProductosMargenNegativoCount          int               `json:"productos_margen_negativo_count"`
	ProductosMargenCriticoCount           int               `json:"productos_margen_critico_count"`
	ProductosPrecioDesactualizadoCount    int               `json:"productos_precio_desactualizado_count"`
	ProductosAltoEsfuerzoBajoRetornoCount int               `json:"productos_alto_esfuerzo_bajo_retorno_count"`
	MargenPromedioPct                     decimal.Decimal   `json:"margen_promedio_pct"`
	ContribucionTotal                     decimal.Decimal   `json:"contribucion_total"`
	PerdidaTotalMargenNegativo            decimal.Decimal   `json:"perdida_total_margen_negativo"`
	Top5PorContribucion                   []TopContribucion `json:"top_5_productos_por_contribucion"`
	Top5PorPerdida                        []TopPerdida      `json:"top_5_productos_por_perdida"`
}

// ─── Run record ──────────────────────────────────────────────────────────────

// RunRecord is the complete, immutable output of one pipeline run.
type RunRecord struct {
	RunID             string   `json:"run_id"`
	Periodo           string   `json:"periodo"`
	ExecutiveReportMD string   `json:"executive_report_md"`
	KPIs              KPIs     `json:"kpis"`
	Alertas           []Alerta `json:"alerts"`
}

// RunListItem is one row of GET /v1/runs.
type RunListItem struct {
	RunID     string `json:"run_id"`
	Periodo   string `json:"periodo"`
	CreatedAt string `json:"created_at"`
}

type RunListResponse struct {
	Runs []RunListItem `json:"runs"`
}
