package llm

import (
	"fmt"
	"strings"

	"github.com/lagabyok/SabIA-agent/internal/dto"
)

// FallbackReport builds the deterministic executive summary used whenever no
// provider is configured or the provider call fails. It references only the
// KPI numbers and the top 3 alerts, so two runs over the same snapshot
// produce the same text.
func FallbackReport(kpis dto.KPIs, alertas []dto.Alerta) string {
	top := alertas
	if len(top) > 3 {
		top = top[:3]
	}

	var b strings.Builder
	b.WriteString("### Resumen\n")
	fmt.Fprintf(&b, "- Productos analizados: %d\n", kpis.TotalProductos)
	fmt.Fprintf(&b, "- Margen negativo: %d | Margen crítico: %d\n",
		kpis.ProductosMargenNegativoCount, kpis.ProductosMargenCriticoCount)
	fmt.Fprintf(&b, "- Pérdida estimada por margen negativo: %s\n",
		kpis.PerdidaTotalMargenNegativo.StringFixed(2))
	b.WriteString("\n### Alertas clave\n")
	for _, a := range top {
		fmt.Fprintf(&b, "- **%s** (%s): %s — %s\n", a.Tipo, a.Severidad, a.NombreProducto, a.Mensaje)
	}
	b.WriteString("\n### Próximas acciones\n")
	b.WriteString("- Ajustar precios sugeridos en productos con margen negativo/crítico.\n")
	b.WriteString("- Revisar drivers de costo (insumos dominantes) y tiempos altos.")
	return b.String()
}
