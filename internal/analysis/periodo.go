package analysis

import (
	"fmt"
	"time"

	"github.com/lagabyok/SabIA-agent/internal/model"
)

// FiltrarVentasPorPeriodo keeps only the sales whose fecha falls inside the
// "YYYY-MM" period. The filter runs once, before cost allocation, so the
// whole run is consistent over one snapshot.
func FiltrarVentasPorPeriodo(ventas []model.Venta, periodo string) ([]model.Venta, error) {
	ref, err := time.Parse("2006-01", periodo)
	if err != nil {
		return nil, fmt.Errorf("periodo %q invalido, se espera YYYY-MM", periodo)
	}

	out := make([]model.Venta, 0, len(ventas))
	for _, v := range ventas {
		if v.Fecha.Year() == ref.Year() && v.Fecha.Month() == ref.Month() {
			out = append(out, v)
		}
	}
	return out, nil
}
