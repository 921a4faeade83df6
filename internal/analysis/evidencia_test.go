package analysis

import (
	"testing"

	"github.com/lagabyok/SabIA-agent/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjuntarEvidencia_IDsSecuenciales(t *testing.T) {
	metricas := []MetricaProducto{
		{ProductoID: "P1", Precio: d(100), CostoTotalUnit: d(120)},
		{ProductoID: "P2", Precio: d(50), CostoTotalUnit: d(48)},
	}
	alertas := []dto.Alerta{
		{ProductoID: "P1", Tipo: dto.AlertaMargenNegativo},
		{ProductoID: "P2", Tipo: dto.AlertaMargenCritico},
		{ProductoID: "P2", Tipo: dto.AlertaPrecioDesactualizado},
	}

	out := AdjuntarEvidencia(alertas, metricas, nil, 3)
	require.Len(t, out, 3)
	assert.Equal(t, "A-0001", out[0].AlertID)
	assert.Equal(t, "A-0002", out[1].AlertID)
	assert.Equal(t, "A-0003", out[2].AlertID)
}

func TestAdjuntarEvidencia_SnapshotCompleto(t *testing.T) {
	ef := d(3)
	metricas := []MetricaProducto{{
		ProductoID:             "P1",
		Precio:                 d(100),
		CostoTotalUnit:         d(80),
		CostoInsumosUnit:       d(50),
		CostoEsfuerzoUnit:      d(20),
		CostoIndirectosUnit:    d(10),
		MargenAbsUnit:          d(20),
		MargenPct:              d(0.20),
		UnidadesPeriodo:        d(15),
		ContribucionTotal:      d(300),
		TiempoTotalMin:         d(60),
		EficienciaMinPorMargen: &ef,
	}}
	alertas := []dto.Alerta{{ProductoID: "P1", Tipo: dto.AlertaMargenCritico}}

	out := AdjuntarEvidencia(alertas, metricas, nil, 3)
	ev := out[0].Evidencia
	require.NotNil(t, ev)
	assert.True(t, ev.Precio.Equal(d(100)))
	assert.True(t, ev.CostoTotalUnit.Equal(d(80)))
	assert.True(t, ev.CostoInsumosUnit.Equal(d(50)))
	assert.True(t, ev.CostoEsfuerzoUnit.Equal(d(20)))
	assert.True(t, ev.CostoIndirectosUnit.Equal(d(10)))
	assert.True(t, ev.MargenPct.Equal(d(0.20)))
	assert.True(t, ev.UnidadesPeriodo.Equal(d(15)))
	assert.True(t, ev.ContribucionTotal.Equal(d(300)))
	assert.True(t, ev.TiempoTotalMin.Equal(d(60)))
	assert.NotNil(t, ev.Drivers, "sin recetas la lista queda vacia, nunca null")
	assert.Empty(t, ev.Drivers)
}

func TestAdjuntarEvidencia_TopDriversDescendente(t *testing.T) {
	metricas := []MetricaProducto{{ProductoID: "P1", Precio: d(100)}}
	drivers := []DriverReceta{
		{ProductoID: "P1", NombreInsumo: "Azucar", CostoInsumoUnit: d(5)},
		{ProductoID: "P1", NombreInsumo: "Harina", CostoInsumoUnit: d(12)},
		{ProductoID: "P1", NombreInsumo: "Huevos", CostoInsumoUnit: d(8)},
		{ProductoID: "P1", NombreInsumo: "Levadura", CostoInsumoUnit: d(1)},
		{ProductoID: "P2", NombreInsumo: "Cafe", CostoInsumoUnit: d(99)}, // otro producto
	}
	alertas := []dto.Alerta{{ProductoID: "P1", Tipo: dto.AlertaMargenCritico}}

	out := AdjuntarEvidencia(alertas, metricas, drivers, 3)
	ds := out[0].Evidencia.Drivers
	require.Len(t, ds, 3)
	assert.Equal(t, "Harina", ds[0].Nombre)
	assert.Equal(t, "Huevos", ds[1].Nombre)
	assert.Equal(t, "Azucar", ds[2].Nombre)
	for _, dr := range ds {
		assert.Equal(t, "INSUMO", dr.Tipo)
	}
}

func TestAdjuntarEvidencia_ImpactoEstimado(t *testing.T) {
	sugerido := d(180)
	metricas := []MetricaProducto{{
		ProductoID:      "P1",
		Precio:          d(150),
		UnidadesPeriodo: d(10),
		MargenAbsUnit:   d(-3),
		PerdidaTotal:    d(30),
	}}
	alertas := []dto.Alerta{{
		ProductoID:    "P1",
		Tipo:          dto.AlertaMargenNegativo,
		Recomendacion: dto.Recomendacion{Accion: dto.AccionAjustarPrecio, PrecioSugerido: &sugerido},
	}}

	out := AdjuntarEvidencia(alertas, metricas, nil, 3)
	imp := out[0].ImpactoEstimado
	require.NotNil(t, imp)
	require.NotNil(t, imp.ImpactoSiAjustaPrecio)
	assert.True(t, imp.ImpactoSiAjustaPrecio.Equal(d(300)), "(180-150) * 10")
	require.NotNil(t, imp.PerdidaActualPeriodo)
	assert.True(t, imp.PerdidaActualPeriodo.Equal(d(30)))
}

func TestAdjuntarEvidencia_SinVentasSinImpactoDePrecio(t *testing.T) {
	sugerido := d(180)
	metricas := []MetricaProducto{{ProductoID: "P1", Precio: d(150)}}
	alertas := []dto.Alerta{{
		ProductoID:    "P1",
		Tipo:          dto.AlertaPrecioDesactualizado,
		Recomendacion: dto.Recomendacion{PrecioSugerido: &sugerido},
	}}

	out := AdjuntarEvidencia(alertas, metricas, nil, 3)
	imp := out[0].ImpactoEstimado
	require.NotNil(t, imp)
	assert.Nil(t, imp.ImpactoSiAjustaPrecio, "sin unidades vendidas no se proyecta impacto")
	assert.Nil(t, imp.PerdidaActualPeriodo)
}
