package analysis

import (
	"sort"

	"github.com/lagabyok/SabIA-agent/internal/dto"

	"github.com/shopspring/decimal"
)

// Umbrales are the configured alert thresholds, as fractions (0.10 = 10%).
type Umbrales struct {
	MargenCriticoPct  decimal.Decimal
	MargenObjetivoPct decimal.Decimal
	EsfuerzoAltoMin   decimal.Decimal
}

var medio = decimal.New(5, -1) // 0.5

// EvaluarReglas runs the ordered rule set over every product. Rules are
// independent predicates, each yielding zero or one alert, with a single
// short-circuit: a negative margin subsumes every other concern for that
// product, so no further rules fire for it. Rules 2-4 can co-occur.
// Alert ids and evidence are attached later, in the final pass.
func EvaluarReglas(metricas []MetricaProducto, u Umbrales) []dto.Alerta {
	var alertas []dto.Alerta

	for _, m := range metricas {
		// Regla 1: margen negativo (corta la evaluacion del producto).
		if m.MargenAbsUnit.IsNegative() {
			alertas = append(alertas, dto.Alerta{
				ProductoID:     m.ProductoID,
				NombreProducto: m.Nombre,
				Tipo:           dto.AlertaMargenNegativo,
				Severidad:      dto.SeveridadAlta,
				Mensaje:        "El costo total por unidad supera el precio de venta.",
				Recomendacion:  recomendacionPrecio(dto.AccionAjustarPrecio, m.CostoTotalUnit, u.MargenObjetivoPct),
			})
			continue
		}

		// Regla 2: margen critico.
		if m.MargenPct.GreaterThanOrEqual(decimal.Zero) && m.MargenPct.LessThan(u.MargenCriticoPct) {
			alertas = append(alertas, dto.Alerta{
				ProductoID:     m.ProductoID,
				NombreProducto: m.Nombre,
				Tipo:           dto.AlertaMargenCritico,
				Severidad:      dto.SeveridadMedia,
				Mensaje:        "El margen está por debajo del umbral crítico.",
				Recomendacion:  recomendacionPrecio(dto.AccionRevisarPrecioOCostos, m.CostoTotalUnit, u.MargenObjetivoPct),
			})
		}

		// Regla 3: alto esfuerzo / bajo retorno. The margin band is a proxy
		// (half of precio * margen critico), deliberately not the rule-2 test.
		bandaRetorno := medio.Mul(m.Precio).Mul(u.MargenCriticoPct)
		if m.TiempoTotalMin.GreaterThanOrEqual(u.EsfuerzoAltoMin) && m.MargenAbsUnit.LessThanOrEqual(bandaRetorno) {
			alertas = append(alertas, dto.Alerta{
				ProductoID:     m.ProductoID,
				NombreProducto: m.Nombre,
				Tipo:           dto.AlertaAltoEsfuerzoBajoRetorno,
				Severidad:      dto.SeveridadMedia,
				Mensaje:        "Alto tiempo de producción con retorno bajo por unidad.",
				Recomendacion: dto.Recomendacion{
					Accion: dto.AccionOptimizarOPriorizar,
					Nota:   "Revisar proceso/receta o priorizar productos con mejor retorno.",
				},
			})
		}

		// Regla 4: precio desactualizado — the cost has crept close enough to
		// the price to be a risk signal even if rule 2 hasn't fired.
		if m.Precio.IsPositive() {
			ratio := m.CostoTotalUnit.Div(m.Precio)
			limite := decimal.NewFromInt(1).Sub(u.MargenCriticoPct.Div(decimal.NewFromInt(2)))
			if ratio.GreaterThanOrEqual(limite) {
				alertas = append(alertas, dto.Alerta{
					ProductoID:     m.ProductoID,
					NombreProducto: m.Nombre,
					Tipo:           dto.AlertaPrecioDesactualizado,
					Severidad:      dto.SeveridadMedia,
					Mensaje:        "El costo actual está muy cerca del precio; riesgo de quedar sin margen.",
					Recomendacion:  recomendacionPrecio(dto.AccionAjustarPrecio, m.CostoTotalUnit, u.MargenObjetivoPct),
				})
			}
		}
	}
	return alertas
}

// recomendacionPrecio builds a price-adjustment recommendation with the
// suggested price costo_total / (1 - margen_objetivo). No suggestion when the
// target margin is >= 100%.
func recomendacionPrecio(accion string, costoTotal, margenObjetivo decimal.Decimal) dto.Recomendacion {
	rec := dto.Recomendacion{Accion: accion}
	objetivo := margenObjetivo
	rec.MargenObjetivoPct = &objetivo
	if margenObjetivo.LessThan(decimal.NewFromInt(1)) {
		sugerido := costoTotal.Div(decimal.NewFromInt(1).Sub(margenObjetivo))
		rec.PrecioSugerido = &sugerido
	}
	return rec
}

var rangoSeveridad = map[string]int{
	dto.SeveridadAlta:  0,
	dto.SeveridadMedia: 1,
	dto.SeveridadBaja:  2,
}

// OrdenarPorSeveridad returns a copy of the alerts sorted ALTA before MEDIA
// before BAJA, stable otherwise.
func OrdenarPorSeveridad(alertas []dto.Alerta) []dto.Alerta {
	out := make([]dto.Alerta, len(alertas))
	copy(out, alertas)
	sort.SliceStable(out, func(i, j int) bool {
		return rangoSeveridad[out[i].Severidad] < rangoSeveridad[out[j].Severidad]
	})
	return out
}
