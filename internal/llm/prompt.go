package llm

import (
	"encoding/json"
	"strings"
)

const systemMessage = "Eres un analista financiero que escribe reportes ejecutivos breves para Pymes."

// executiveReportPrompt renders the user prompt for a report payload. The
// payload already carries the computed numbers; the model must not invent any.
func executiveReportPrompt(payload ReportPayload) string {
	kpisJSON, _ := json.Marshal(payload.KPIs)
	alertasJSON, _ := json.Marshal(payload.Alertas)

	var b strings.Builder
	b.WriteString("Redacta un reporte ejecutivo breve, accionable y explicable para una Pyme.\n")
	b.WriteString("No inventes números: usa solo los que aparecen en el JSON.\n")
	b.WriteString("\nKPIs:\n")
	b.Write(kpisJSON)
	b.WriteString("\n\nTop alertas (máximo 5):\n")
	b.Write(alertasJSON)
	b.WriteString("\n\nFormato de salida en markdown con secciones:\n")
	b.WriteString("### Resumen\n- ...\n### Alertas clave\n- ...\n### Acciones recomendadas\n- ...\n### Impacto estimado\n- ...")
	return b.String()
}
