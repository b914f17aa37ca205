package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

func TestReadFields_Windows1252(t *testing.T) {
	src := "numero;nombre;ubicacion;hileras;variedad;tipo_planta;anio_plantacion;tipo_riego;estado;superficie_ha;observaciones\n" +
		"3;Cuartel Peñalolén;Norte;40;Cabernet;vid;2015;goteo;producción;1,75;\n" +
		"4;Loma;Sur;;;;;;;;\n"
	encoded, err := charmap.Windows1252.NewEncoder().String(src)
	require.NoError(t, err)

	rows, err := readFields(transform.NewReader(bytes.NewReader([]byte(encoded)), charmap.Windows1252.NewDecoder()))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 3, rows[0].Number)
	assert.Equal(t, "Cuartel Peñalolén", rows[0].Name)
	assert.Equal(t, "1.75", rows[0].AreaHectares.String())
	assert.Equal(t, 2015, rows[0].PlantingYear)
	assert.Equal(t, 0, rows[1].Rows)
	assert.True(t, rows[1].AreaHectares.IsZero())
}

func TestReadFields_NumeroInvalido(t *testing.T) {
	_, err := readFields(bytes.NewBufferString("numero;nombre\nx;Cuartel\n"))
	assert.Error(t, err)
}
