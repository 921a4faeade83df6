// Package analysis implements the profitability pipeline: cost allocation,
// metric derivation, rule-based alerting, evidence attachment, and KPI
// aggregation. Every step is deterministic arithmetic over the validated
// tables of one period — same snapshot in, same numbers out.
package analysis

import (
	"sort"

	"github.com/lagabyok/SabIA-agent/internal/model"

	"github.com/shopspring/decimal"
)

// CostoUnitario is the per-product unit cost breakdown, recomputed fresh on
// every run. CostoTotalUnit is always the sum of its three components.
type CostoUnitario struct {
	ProductoID          string
	CostoInsumosUnit    decimal.Decimal
	CostoEsfuerzoUnit   decimal.Decimal
	CostoIndirectosUnit decimal.Decimal
	CostoTotalUnit      decimal.Decimal
	TiempoTotalMin      decimal.Decimal
}

// DriverReceta is the cost contribution of one input to one product, grouped
// by input name. Kept only for top-driver evidence lookups.
type DriverReceta struct {
	ProductoID      string
	NombreInsumo    string
	CostoInsumoUnit decimal.Decimal
}

// CalcularCostos computes unit costs for every catalog product:
//   - materials: sum over the product's recipe lines of cantidad * costo_unitario
//   - effort: production minutes * valorMinuto
//   - overhead: total monthly expenses spread uniformly over all units sold
//     in the period (a single shared divisor; zero when nothing was sold)
//
// Products with no recipe or no production-time row get zero for that
// component, never an error. Ventas must already be period-filtered.
func CalcularCostos(ds *model.Dataset, valorMinuto decimal.Decimal) ([]CostoUnitario, []DriverReceta) {
	costoInsumo := make(map[string]decimal.Decimal, len(ds.Insumos))
	nombreInsumo := make(map[string]string, len(ds.Insumos))
	for _, ins := range ds.Insumos {
		costoInsumo[ins.InsumoID] = ins.CostoUnitario
		nombreInsumo[ins.InsumoID] = ins.Nombre
	}

	// Materials cost and drivers, grouped by (producto, nombre_insumo).
	insumosPorProducto := make(map[string]decimal.Decimal)
	driverAcc := make(map[string]map[string]decimal.Decimal)
	for _, rec := range ds.Recetas {
		contrib := rec.Cantidad.Mul(costoInsumo[rec.InsumoID])
		insumosPorProducto[rec.ProductoID] = insumosPorProducto[rec.ProductoID].Add(contrib)

		nombre := nombreInsumo[rec.InsumoID]
		if driverAcc[rec.ProductoID] == nil {
			driverAcc[rec.ProductoID] = make(map[string]decimal.Decimal)
		}
		driverAcc[rec.ProductoID][nombre] = driverAcc[rec.ProductoID][nombre].Add(contrib)
	}

	tiempoPorProducto := make(map[string]decimal.Decimal, len(ds.Tiempos))
	for _, t := range ds.Tiempos {
		tiempoPorProducto[t.ProductoID] = t.TiempoTotalMin
	}

	// Overhead: one shared divisor across the whole period.
	totalGastos := decimal.Zero
	for _, g := range ds.Gastos {
		totalGastos = totalGastos.Add(g.MontoMensual)
	}
	totalUnidades := decimal.Zero
	for _, v := range ds.Ventas {
		totalUnidades = totalUnidades.Add(v.CantidadVendida)
	}
	costoIndirectos := decimal.Zero
	if totalUnidades.IsPositive() {
		costoIndirectos = totalGastos.Div(totalUnidades)
	}

	costos := make([]CostoUnitario, 0, len(ds.Productos))
	for _, p := range ds.Productos {
		insumos := insumosPorProducto[p.ProductoID] // zero value when absent
		tiempo := tiempoPorProducto[p.ProductoID]
		esfuerzo := tiempo.Mul(valorMinuto)
		costos = append(costos, CostoUnitario{
			ProductoID:          p.ProductoID,
			CostoInsumosUnit:    insumos,
			CostoEsfuerzoUnit:   esfuerzo,
			CostoIndirectosUnit: costoIndirectos,
			CostoTotalUnit:      insumos.Add(esfuerzo).Add(costoIndirectos),
			TiempoTotalMin:      tiempo,
		})
	}

	drivers := make([]DriverReceta, 0, len(ds.Recetas))
	for productoID, porInsumo := range driverAcc {
		for nombre, contrib := range porInsumo {
			drivers = append(drivers, DriverReceta{
				ProductoID:      productoID,
				NombreInsumo:    nombre,
				CostoInsumoUnit: contrib,
			})
		}
	}
	// Deterministic base order so later top-N truncation is stable across runs.
	sort.Slice(drivers, func(i, j int) bool {
		if drivers[i].ProductoID != drivers[j].ProductoID {
			return drivers[i].ProductoID < drivers[j].ProductoID
		}
		return drivers[i].NombreInsumo < drivers[j].NombreInsumo
	})

	return costos, drivers
}
