package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// The six operational tables the pipeline consumes. Identifiers are opaque
// strings, trimmed at ingest time and compared by equality. All monetary and
// quantity fields are decimals — never floats.

// Producto is one catalog item with its current sale price.
type Producto struct {
	ProductoID  string
	Nombre      string
	Categoria   string
	PrecioVenta decimal.Decimal
}

// Venta is one sales record. Many rows per product; filtered to the
// analysis period by Fecha before the pipeline runs.
type Venta struct {
	Fecha           time.Time
	ProductoID      string
	CantidadVendida decimal.Decimal
}

// Insumo is a raw material / supply.
type Insumo struct {
	InsumoID      string
	Nombre        string
	Unidad        string
	CostoUnitario decimal.Decimal
}

// Receta links a product to an input with the quantity required per unit.
type Receta struct {
	ProductoID string
	InsumoID   string
	Cantidad   decimal.Decimal
}

// TiempoProduccion holds the total minutes to produce one unit of a product.
type TiempoProduccion struct {
	ProductoID     string
	TiempoTotalMin decimal.Decimal
}

// GastoGeneral is a period-level overhead expense, not tied to any product.
type GastoGeneral struct {
	TipoGasto    string
	MontoMensual decimal.Decimal
}

// Dataset bundles the validated tables handed to one pipeline run.
// It is read-only once loaded; runs never mutate it.
type Dataset struct {
	Productos []Producto
	Ventas    []Venta
	Insumos   []Insumo
	Recetas   []Receta
	Tiempos   []TiempoProduccion
	Gastos    []GastoGeneral
}
