package analysis

import (
	"sort"

	"github.com/lagabyok/SabIA-agent/internal/dto"

	"github.com/shopspring/decimal"
)

// AgregarKPIs rolls the per-product metrics and finished alerts up into the
// period-level summary: alert counts, units-weighted average margin, total
// contribution and loss, and top-5 rankings.
func AgregarKPIs(metricas []MetricaProducto, alertas []dto.Alerta, periodo string) dto.KPIs {
	productos := make(map[string]struct{}, len(metricas))
	for _, m := range metricas {
		productos[m.ProductoID] = struct{}{}
	}

	var neg, crit, des, esf int
	for _, a := range alertas {
		switch a.Tipo {
		case dto.AlertaMargenNegativo:
			neg++
		case dto.AlertaMargenCritico:
			crit++
		case dto.AlertaPrecioDesactualizado:
			des++
		case dto.AlertaAltoEsfuerzoBajoRetorno:
			esf++
		}
	}

	// Weighted average margin: sum(margen*unidades) / sum(precio*unidades),
	// zero when nothing was sold.
	numer, denom := decimal.Zero, decimal.Zero
	contribTotal, perdidaTotal := decimal.Zero, decimal.Zero
	for _, m := range metricas {
		numer = numer.Add(m.MargenAbsUnit.Mul(m.UnidadesPeriodo))
		denom = denom.Add(m.Precio.Mul(m.UnidadesPeriodo))
		contribTotal = contribTotal.Add(m.ContribucionTotal)
		perdidaTotal = perdidaTotal.Add(m.PerdidaTotal)
	}
	margenPromedio := decimal.Zero
	if !denom.IsZero() {
		margenPromedio = numer.Div(denom)
	}

	porContribucion := make([]MetricaProducto, len(metricas))
	copy(porContribucion, metricas)
	sort.SliceStable(porContribucion, func(i, j int) bool {
		return porContribucion[i].ContribucionTotal.GreaterThan(porContribucion[j].ContribucionTotal)
	})
	topContrib := make([]dto.TopContribucion, 0, 5)
	for _, m := range truncar(porContribucion, 5) {
		topContrib = append(topContrib, dto.TopContribucion{
			ProductoID:        m.ProductoID,
			NombreProducto:    m.Nombre,
			ContribucionTotal: m.ContribucionTotal,
		})
	}

	porPerdida := make([]MetricaProducto, len(metricas))
	copy(porPerdida, metricas)
	sort.SliceStable(porPerdida, func(i, j int) bool {
		return porPerdida[i].PerdidaTotal.GreaterThan(porPerdida[j].PerdidaTotal)
	})
	topPerdida := make([]dto.TopPerdida, 0, 5)
	for _, m := range truncar(porPerdida, 5) {
		topPerdida = append(topPerdida, dto.TopPerdida{
			ProductoID:     m.ProductoID,
			NombreProducto: m.Nombre,
			PerdidaTotal:   m.PerdidaTotal,
		})
	}

	return dto.KPIs{
		Periodo:                               periodo,
		TotalProductos:                        len(productos),
		ProductosMargenNegativoCount:          neg,
		ProductosMargenCriticoCount:           crit,
		ProductosPrecioDesactualizadoCount:    des,
		ProductosAltoEsfuerzoBajoRetornoCount: esf,
		MargenPromedioPct:                     margenPromedio,
		ContribucionTotal:                     contribTotal,
		PerdidaTotalMargenNegativo:            perdidaTotal,
		Top5PorContribucion:                   topContrib,
		Top5PorPerdida:                        topPerdida,
	}
}

func truncar(metricas []MetricaProducto, n int) []MetricaProducto {
	if len(metricas) <= n {
		return metricas
	}
	return metricas[:n]
}
