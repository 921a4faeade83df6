// Package ingest loads the six operational CSV tables and validates their
// schema before any computation runs. Validation is all-or-nothing: every
// missing file, missing column, and unparseable cell is collected and
// reported in a single error, and the pipeline never runs on partial input.
package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lagabyok/SabIA-agent/internal/model"

	"github.com/shopspring/decimal"
)

// Table file names under the data directory.
var files = map[string]string{
	"productos":          "productos.csv",
	"ventas":             "ventas.csv",
	"insumos":            "insumos.csv",
	"recetas":            "recetas.csv",
	"tiempos_produccion": "tiempos_produccion.csv",
	"gastos_generales":   "gastos_generales.csv",
}

// Required columns per table. Extra columns are ignored.
var requiredColumns = map[string][]string{
	"productos":          {"producto_id", "nombre_producto", "categoria", "precio_venta_actual"},
	"ventas":             {"fecha", "producto_id", "cantidad_vendida"},
	"insumos":            {"insumo_id", "nombre_insumo", "unidad", "costo_unitario"},
	"recetas":            {"producto_id", "insumo_id", "cantidad"},
	"tiempos_produccion": {"producto_id", "tiempo_total_min"},
	"gastos_generales":   {"tipo_gasto", "monto_mensual"},
}

// fechaLayouts are accepted date formats for ventas.fecha.
var fechaLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339}

// CSVLoader reads the tables from a directory of CSV files.
type CSVLoader struct {
	dataDir string
}

func NewCSVLoader(dataDir string) *CSVLoader { return &CSVLoader{dataDir: dataDir} }

// Load reads, validates, and types all six tables.
func (l *CSVLoader) Load(_ context.Context) (*model.Dataset, error) {
	raw := make(map[string]*table, len(files))
	var problems []string

	for name, fname := range files {
		path := filepath.Join(l.dataDir, fname)
		t, err := readTable(path)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		if missing := t.missingColumns(requiredColumns[name]); len(missing) > 0 {
			problems = append(problems, fmt.Sprintf("%s: faltan columnas %v", name, missing))
			continue
		}
		raw[name] = t
	}
	if len(problems) > 0 {
		sort.Strings(problems)
		return nil, fmt.Errorf("validacion fallida:\n- %s", strings.Join(problems, "\n- "))
	}

	ds := &model.Dataset{}
	var err error
	if ds.Productos, err = parseProductos(raw["productos"]); err != nil {
		return nil, err
	}
	if ds.Ventas, err = parseVentas(raw["ventas"]); err != nil {
		return nil, err
	}
	if ds.Insumos, err = parseInsumos(raw["insumos"]); err != nil {
		return nil, err
	}
	if ds.Recetas, err = parseRecetas(raw["recetas"]); err != nil {
		return nil, err
	}
	if ds.Tiempos, err = parseTiempos(raw["tiempos_produccion"]); err != nil {
		return nil, err
	}
	if ds.Gastos, err = parseGastos(raw["gastos_generales"]); err != nil {
		return nil, err
	}
	return ds, nil
}

// ─── Raw table reading ───────────────────────────────────────────────────────

type table struct {
	cols map[string]int
	rows [][]string
}

func readTable(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("no existe: %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("CSV invalido: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("archivo vacio: %s", path)
	}

	cols := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		cols[strings.TrimSpace(h)] = i
	}
	return &table{cols: cols, rows: records[1:]}, nil
}

func (t *table) missingColumns(required []string) []string {
	var missing []string
	for _, c := range required {
		if _, ok := t.cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	sort.Strings(missing)
	return missing
}

func (t *table) get(row []string, col string) string {
	idx := t.cols[col]
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// ─── Typed parsing ───────────────────────────────────────────────────────────

func parseDecimal(tableName, col, raw string, rowNum int) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s fila %d: %s %q no es numerico", tableName, rowNum+2, col, raw)
	}
	return d, nil
}

func parseFecha(raw string, rowNum int) (time.Time, error) {
	for _, layout := range fechaLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("ventas fila %d: fecha %q invalida", rowNum+2, raw)
}

func parseProductos(t *table) ([]model.Producto, error) {
	out := make([]model.Producto, 0, len(t.rows))
	for i, row := range t.rows {
		precio, err := parseDecimal("productos", "precio_venta_actual", t.get(row, "precio_venta_actual"), i)
		if err != nil {
			return nil, err
		}
		out = append(out, model.Producto{
			ProductoID:  t.get(row, "producto_id"),
			Nombre:      t.get(row, "nombre_producto"),
			Categoria:   t.get(row, "categoria"),
			PrecioVenta: precio,
		})
	}
	return out, nil
}

func parseVentas(t *table) ([]model.Venta, error) {
	out := make([]model.Venta, 0, len(t.rows))
	for i, row := range t.rows {
		fecha, err := parseFecha(t.get(row, "fecha"), i)
		if err != nil {
			return nil, err
		}
		cantidad, err := parseDecimal("ventas", "cantidad_vendida", t.get(row, "cantidad_vendida"), i)
		if err != nil {
			return nil, err
		}
		out = append(out, model.Venta{
			Fecha:           fecha,
			ProductoID:      t.get(row, "producto_id"),
			CantidadVendida: cantidad,
		})
	}
	return out, nil
}

func parseInsumos(t *table) ([]model.Insumo, error) {
	out := make([]model.Insumo, 0, len(t.rows))
	for i, row := range t.rows {
		costo, err := parseDecimal("insumos", "costo_unitario", t.get(row, "costo_unitario"), i)
		if err != nil {
			return nil, err
		}
		out = append(out, model.Insumo{
			InsumoID:      t.get(row, "insumo_id"),
			Nombre:        t.get(row, "nombre_insumo"),
			Unidad:        t.get(row, "unidad"),
			CostoUnitario: costo,
		})
	}
	return out, nil
}

func parseRecetas(t *table) ([]model.Receta, error) {
	out := make([]model.Receta, 0, len(t.rows))
	for i, row := range t.rows {
		cantidad, err := parseDecimal("recetas", "cantidad", t.get(row, "cantidad"), i)
		if err != nil {
			return nil, err
		}
		out = append(out, model.Receta{
			ProductoID: t.get(row, "producto_id"),
			InsumoID:   t.get(row, "insumo_id"),
			Cantidad:   cantidad,
		})
	}
	return out, nil
}

func parseTiempos(t *table) ([]model.TiempoProduccion, error) {
	out := make([]model.TiempoProduccion, 0, len(t.rows))
	for i, row := range t.rows {
		minutos, err := parseDecimal("tiempos_produccion", "tiempo_total_min", t.get(row, "tiempo_total_min"), i)
		if err != nil {
			return nil, err
		}
		out = append(out, model.TiempoProduccion{
			ProductoID:     t.get(row, "producto_id"),
			TiempoTotalMin: minutos,
		})
	}
	return out, nil
}

func parseGastos(t *table) ([]model.GastoGeneral, error) {
	out := make([]model.GastoGeneral, 0, len(t.rows))
	for i, row := range t.rows {
		monto, err := parseDecimal("gastos_generales", "monto_mensual", t.get(row, "monto_mensual"), i)
		if err != nil {
			return nil, err
		}
		out = append(out, model.GastoGeneral{
			TipoGasto:    t.get(row, "tipo_gasto"),
			MontoMensual: monto,
		})
	}
	return out, nil
}
