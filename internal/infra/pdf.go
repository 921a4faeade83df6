package infra

// pdf.go — PDF export of a finished run using go-pdf/fpdf.
// Renders an A4 summary sheet: period header, KPI block, and the alert table
// with severity and recommended action. The file is saved to
// storagePath/reporte_{run_id}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lagabyok/SabIA-agent/internal/dto"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

var cien = decimal.NewFromInt(100)

// GenerateReportePDF writes the run summary as a PDF and returns the path to
// the generated file. storagePath is created if needed.
func GenerateReportePDF(record *dto.RunRecord, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("reporte_%s.pdf", sanitizeRunID(record.RunID))
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "SabIA — Reporte de Rentabilidad", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Periodo %s  ·  Run %s", record.Periodo, record.RunID), "", 1, "L", false, 0, "")
	pdf.Ln(3)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(4)

	// ── KPIs ─────────────────────────────────────────────────────────────────
	k := record.KPIs
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 6, "Indicadores del periodo", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	kpiLines := []string{
		fmt.Sprintf("Productos analizados: %d", k.TotalProductos),
		fmt.Sprintf("Margen promedio ponderado: %s%%", k.MargenPromedioPct.Mul(cien).StringFixed(1)),
		fmt.Sprintf("Contribucion total: $%s", k.ContribucionTotal.StringFixed(2)),
		fmt.Sprintf("Perdida por margen negativo: $%s", k.PerdidaTotalMargenNegativo.StringFixed(2)),
		fmt.Sprintf("Alertas — negativo: %d, critico: %d, desactualizado: %d, alto esfuerzo: %d",
			k.ProductosMargenNegativoCount, k.ProductosMargenCriticoCount,
			k.ProductosPrecioDesactualizadoCount, k.ProductosAltoEsfuerzoBajoRetornoCount),
	}
	for _, line := range kpiLines {
		pdf.CellFormat(contentW, 5, line, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// ── Alert table ──────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 6, fmt.Sprintf("Alertas (%d)", len(record.Alertas)), "", 1, "L", false, 0, "")

	col1 := contentW * 0.14 // id
	col2 := contentW * 0.26 // tipo
	col3 := contentW * 0.12 // severidad
	col4 := contentW * 0.48 // producto + mensaje

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(col1, 5, "ID", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Tipo", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 5, "Sev", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col4, 5, "Producto", "B", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	for _, a := range record.Alertas {
		detalle := a.NombreProducto
		if a.Recomendacion.PrecioSugerido != nil {
			detalle += fmt.Sprintf("  (precio sugerido $%s)", a.Recomendacion.PrecioSugerido.StringFixed(2))
		}
		if len(detalle) > 60 {
			detalle = detalle[:59] + "…"
		}
		pdf.CellFormat(col1, 5, a.AlertID, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, a.Tipo, "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, a.Severidad, "", 0, "L", false, 0, "")
		pdf.CellFormat(col4, 5, detalle, "", 1, "L", false, 0, "")
	}

	// ── Narrative ────────────────────────────────────────────────────────────
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 6, "Resumen ejecutivo", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.MultiCell(contentW, 4.5, record.ExecutiveReportMD, "", "L", false)

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

// sanitizeRunID makes the timestamp run id safe as a file name.
func sanitizeRunID(runID string) string {
	return strings.NewReplacer(":", "-", "+", "_").Replace(runID)
}
