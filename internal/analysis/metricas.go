package analysis

import (
	"github.com/lagabyok/SabIA-agent/internal/model"

	"github.com/shopspring/decimal"
)

// MetricaProducto is the canonical per-product record consumed by the rule
// engine and the KPI aggregator. One row per catalog product, even with zero
// sales in the period.
type MetricaProducto struct {
	ProductoID          string
	Nombre              string
	Categoria           string
	Precio              decimal.Decimal
	UnidadesPeriodo     decimal.Decimal
	IngresoTotal        decimal.Decimal
	CostoInsumosUnit    decimal.Decimal
	CostoEsfuerzoUnit   decimal.Decimal
	CostoIndirectosUnit decimal.Decimal
	CostoTotalUnit      decimal.Decimal
	MargenAbsUnit       decimal.Decimal
	MargenPct           decimal.Decimal
	ContribucionTotal   decimal.Decimal
	PerdidaTotal        decimal.Decimal
	TiempoTotalMin      decimal.Decimal

	// EficienciaMinPorMargen is minutes per unit of positive margin. It is
	// undefined (nil) when the margin is zero or negative — a product that
	// earns nothing has no meaningful time-for-money ratio.
	EficienciaMinPorMargen *decimal.Decimal
}

// CalcularMetricas joins unit costs with period sales, left-join semantics:
// every catalog product appears, missing sales/cost components fill with zero.
func CalcularMetricas(ds *model.Dataset, costos []CostoUnitario) []MetricaProducto {
	costoPorProducto := make(map[string]CostoUnitario, len(costos))
	for _, c := range costos {
		costoPorProducto[c.ProductoID] = c
	}

	unidades := make(map[string]decimal.Decimal)
	for _, v := range ds.Ventas {
		unidades[v.ProductoID] = unidades[v.ProductoID].Add(v.CantidadVendida)
	}

	metricas := make([]MetricaProducto, 0, len(ds.Productos))
	for _, p := range ds.Productos {
		c := costoPorProducto[p.ProductoID]
		u := unidades[p.ProductoID]

		margen := p.PrecioVenta.Sub(c.CostoTotalUnit)

		margenPct := decimal.Zero
		if !p.PrecioVenta.IsZero() {
			margenPct = margen.Div(p.PrecioVenta)
		}

		perdida := decimal.Zero
		if margen.IsNegative() {
			perdida = margen.Neg().Mul(u)
		}

		var eficiencia *decimal.Decimal
		if margen.IsPositive() {
			e := c.TiempoTotalMin.Div(margen)
			eficiencia = &e
		}

		metricas = append(metricas, MetricaProducto{
			ProductoID:             p.ProductoID,
			Nombre:                 p.Nombre,
			Categoria:              p.Categoria,
			Precio:                 p.PrecioVenta,
			UnidadesPeriodo:        u,
			IngresoTotal:           p.PrecioVenta.Mul(u),
			CostoInsumosUnit:       c.CostoInsumosUnit,
			CostoEsfuerzoUnit:      c.CostoEsfuerzoUnit,
			CostoIndirectosUnit:    c.CostoIndirectosUnit,
			CostoTotalUnit:         c.CostoTotalUnit,
			MargenAbsUnit:          margen,
			MargenPct:              margenPct,
			ContribucionTotal:      margen.Mul(u),
			PerdidaTotal:           perdida,
			TiempoTotalMin:         c.TiempoTotalMin,
			EficienciaMinPorMargen: eficiencia,
		})
	}
	return metricas
}
