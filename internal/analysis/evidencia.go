package analysis

import (
	"fmt"
	"sort"

	"github.com/lagabyok/SabIA-agent/internal/dto"
)

// AdjuntarEvidencia enriches every alert with the full metric snapshot of its
// product, the top-N cost drivers, and a simple impact estimate, and assigns
// the final sequential alert ids (A-0001, A-0002, ...). This is the last pass
// over the alert list; ordering is frozen here.
func AdjuntarEvidencia(alertas []dto.Alerta, metricas []MetricaProducto, drivers []DriverReceta, topN int) []dto.Alerta {
	porProducto := make(map[string]MetricaProducto, len(metricas))
	for _, m := range metricas {
		porProducto[m.ProductoID] = m
	}

	out := make([]dto.Alerta, 0, len(alertas))
	for i, a := range alertas {
		m := porProducto[a.ProductoID]

		a.AlertID = fmt.Sprintf("A-%04d", i+1)
		a.Evidencia = &dto.Evidencia{
			Precio:              m.Precio,
			CostoTotalUnit:      m.CostoTotalUnit,
			CostoInsumosUnit:    m.CostoInsumosUnit,
			CostoEsfuerzoUnit:   m.CostoEsfuerzoUnit,
			CostoIndirectosUnit: m.CostoIndirectosUnit,
			MargenAbsUnit:       m.MargenAbsUnit,
			MargenPct:           m.MargenPct,
			UnidadesPeriodo:     m.UnidadesPeriodo,
			ContribucionTotal:   m.ContribucionTotal,
			PerdidaTotal:        m.PerdidaTotal,
			TiempoTotalMin:      m.TiempoTotalMin,
			Drivers:             topDrivers(drivers, a.ProductoID, topN),
		}

		impacto := &dto.ImpactoEstimado{}
		if ps := a.Recomendacion.PrecioSugerido; ps != nil && m.UnidadesPeriodo.IsPositive() {
			delta := ps.Sub(m.Precio).Mul(m.UnidadesPeriodo)
			impacto.ImpactoSiAjustaPrecio = &delta
		}
		if m.PerdidaTotal.IsPositive() {
			perdida := m.PerdidaTotal
			impacto.PerdidaActualPeriodo = &perdida
		}
		a.ImpactoEstimado = impacto

		out = append(out, a)
	}
	return out
}

// topDrivers returns up to topN cost drivers for a product, descending by
// unit cost contribution.
func topDrivers(drivers []DriverReceta, productoID string, topN int) []dto.Driver {
	var propios []DriverReceta
	for _, d := range drivers {
		if d.ProductoID == productoID {
			propios = append(propios, d)
		}
	}
	if len(propios) == 0 {
		return []dto.Driver{}
	}
	sort.SliceStable(propios, func(i, j int) bool {
		return propios[i].CostoInsumoUnit.GreaterThan(propios[j].CostoInsumoUnit)
	})
	if topN < len(propios) {
		propios = propios[:topN]
	}

	out := make([]dto.Driver, 0, len(propios))
	for _, d := range propios {
		out = append(out, dto.Driver{
			Tipo:            "INSUMO",
			Nombre:          d.NombreInsumo,
			ImpactoUnitario: d.CostoInsumoUnit,
		})
	}
	return out
}
