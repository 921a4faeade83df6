package analysis

import (
	"testing"
	"time"

	"github.com/lagabyok/SabIA-agent/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiltrarVentasPorPeriodo(t *testing.T) {
	ventas := []model.Venta{
		{Fecha: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), ProductoID: "P1", CantidadVendida: d(1)},
		{Fecha: time.Date(2025, 3, 31, 23, 59, 0, 0, time.UTC), ProductoID: "P2", CantidadVendida: d(2)},
		{Fecha: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), ProductoID: "P3", CantidadVendida: d(3)},
		{Fecha: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), ProductoID: "P4", CantidadVendida: d(4)},
	}

	out, err := FiltrarVentasPorPeriodo(ventas, "2025-03")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "P1", out[0].ProductoID)
	assert.Equal(t, "P2", out[1].ProductoID)
}

func TestFiltrarVentasPorPeriodo_Invalido(t *testing.T) {
	for _, periodo := range []string{"2025-13", "2025/03", "marzo", ""} {
		_, err := FiltrarVentasPorPeriodo(nil, periodo)
		assert.ErrorContains(t, err, "invalido", "periodo %q", periodo)
	}
}

func TestFiltrarVentasPorPeriodo_SinCoincidencias(t *testing.T) {
	ventas := []model.Venta{
		{Fecha: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), ProductoID: "P1", CantidadVendida: d(1)},
	}

	out, err := FiltrarVentasPorPeriodo(ventas, "2025-02")
	require.NoError(t, err)
	assert.Empty(t, out)
}
