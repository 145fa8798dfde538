package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/emza-api/internal/domain/entity"
)

func TestParseRows_Latin1CSV(t *testing.T) {
	src := "tipo,unidad,stock,cantidad_apertura\n" +
		"Aceite de perfume,ML,Aceite Acqua Di Giò,500\n" +
		"Frascos,pcs,Frasco 30ml,120\n" +
		"aceite de perfume,ml,Aceite CR7,250\n"
	encoded, err := charmap.ISO8859_1.NewEncoder().String(src)
	require.NoError(t, err)

	records, err := readCSV(strings.NewReader(encoded), true)
	require.NoError(t, err)
	rows, err := parseRows(records)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Aceite Acqua Di Giò", rows[0].Stock, "los acentos sobreviven la conversión")
	assert.Equal(t, entity.MetricMilliliter, rows[0].Metric)
	assert.Equal(t, int64(120), rows[1].Opening)

	types := stockTypes(rows)
	require.Len(t, types, 2, "los tipos se agrupan sin distinguir mayúsculas")
	assert.Equal(t, "Aceite de perfume", types[0].TypeName)
}

func TestParseRows_Errors(t *testing.T) {
	header := []string{"tipo", "unidad", "stock", "cantidad_apertura"}

	_, err := parseRows([][]string{header})
	assert.Error(t, err)

	_, err = parseRows([][]string{header, {"Peso", "kg", "Sal", "1"}})
	assert.ErrorContains(t, err, "unidad")

	_, err = parseRows([][]string{header, {"Frascos", "pcs", "Frasco", "-3"}})
	assert.ErrorContains(t, err, "apertura")

	_, err = parseRows([][]string{header, {"Frascos", "pcs", "Frasco", "1"}, {"Frascos", "pcs", "Frasco", "2"}})
	assert.ErrorContains(t, err, "repetido")
}

func TestWriteSQL(t *testing.T) {
	rows := []seedRow{
		{TypeName: "Frascos", Metric: entity.MetricPiece, Stock: "Frasco O'Neill", Opening: 10},
	}
	var b strings.Builder
	require.NoError(t, writeSQL(&b, "inventario.csv", rows))

	sql := b.String()
	assert.Contains(t, sql, "-- Generado desde inventario.csv")
	assert.Contains(t, sql, "('Frascos', 'pcs')\nON CONFLICT ((LOWER(name))) DO NOTHING;")
	assert.Contains(t, sql, "SELECT 'Frasco O''Neill', id, 10 FROM stock_types WHERE LOWER(name) = LOWER('Frascos')")
	assert.Contains(t, sql, "ON CONFLICT (name) DO NOTHING;")
}

func TestReadRecords_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apertura.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	data := [][]any{
		{"tipo", "unidad", "stock", "cantidad_apertura"},
		{"Aceite de perfume", "ml", "Aceite CR7", 250},
		{"Frascos", "PCS", "Frasco 30ml", 120},
	}
	for i, row := range data {
		require.NoError(t, f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+1), &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	records, err := readRecords(path, false)
	require.NoError(t, err)
	rows, err := parseRows(records)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Aceite CR7", rows[0].Stock)
	assert.Equal(t, int64(250), rows[0].Opening)
	assert.Equal(t, entity.MetricPiece, rows[1].Metric)
	assert.Equal(t, int64(120), rows[1].Opening)

	_, err = readRecords(filepath.Join(t.TempDir(), "no-existe.xlsx"), false)
	assert.Error(t, err)
}
