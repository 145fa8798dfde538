package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/emza-api/internal/domain/entity"
)

// seedRow una fila de la planilla: stock con su tipo y saldo de apertura.
type seedRow struct {
	TypeName string
	Metric   entity.Metric
	Stock    string
	Opening  int64
}

// readRecords lee todas las filas (encabezado incluido) de un .csv o de la primera hoja de un .xlsx.
func readRecords(path string, latin1 bool) ([][]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("el libro no tiene hojas")
		}
		return f.GetRows(sheets[0])
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readCSV(f, latin1)
}

func readCSV(r io.Reader, latin1 bool) ([][]string, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr.ReadAll()
}

// parseRows valida las filas de datos; la primera fila es el encabezado. Stocks repetidos son error.
func parseRows(records [][]string) ([]seedRow, error) {
	if len(records) < 2 {
		return nil, fmt.Errorf("sin filas de datos")
	}
	seen := map[string]bool{}
	var rows []seedRow
	for i, rec := range records[1:] {
		line := i + 2
		if len(rec) < 4 {
			return nil, fmt.Errorf("fila %d: se esperaban 4 columnas, hay %d", line, len(rec))
		}
		row := seedRow{
			TypeName: strings.TrimSpace(rec[0]),
			Metric:   entity.Metric(strings.ToLower(strings.TrimSpace(rec[1]))),
			Stock:    strings.TrimSpace(rec[2]),
		}
		if row.TypeName == "" || row.Stock == "" {
			return nil, fmt.Errorf("fila %d: tipo y stock son requeridos", line)
		}
		if !row.Metric.Valid() {
			return nil, fmt.Errorf("fila %d: unidad %q no soportada", line, rec[1])
		}
		opening, err := strconv.ParseInt(strings.TrimSpace(rec[3]), 10, 64)
		if err != nil || opening < 0 {
			return nil, fmt.Errorf("fila %d: cantidad de apertura inválida %q", line, rec[3])
		}
		row.Opening = opening
		if seen[row.Stock] {
			return nil, fmt.Errorf("fila %d: stock %q repetido", line, row.Stock)
		}
		seen[row.Stock] = true
		rows = append(rows, row)
	}
	return rows, nil
}

// stockTypes tipos únicos (sin distinguir mayúsculas) en orden alfabético.
func stockTypes(rows []seedRow) []seedRow {
	byName := map[string]seedRow{}
	for _, r := range rows {
		key := strings.ToLower(r.TypeName)
		if _, ok := byName[key]; !ok {
			byName[key] = r
		}
	}
	out := make([]seedRow, 0, len(byName))
	for _, key := range slices.Sorted(maps.Keys(byName)) {
		out = append(out, byName[key])
	}
	return out
}

// writeSQL escribe inserts idempotentes: reejecutar el script no duplica ni altera stocks existentes.
func writeSQL(w io.Writer, source string, rows []seedRow) error {
	var b strings.Builder
	b.WriteString("-- Tipos de stock y stocks con saldo de apertura\n")
	fmt.Fprintf(&b, "-- Generado desde %s\n\n", source)

	b.WriteString("-- 1. Tipos de stock\n")
	b.WriteString("INSERT INTO stock_types (name, metric) VALUES\n")
	types := stockTypes(rows)
	for i, t := range types {
		sep := ","
		if i == len(types)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "  ('%s', '%s')%s\n", escapeSQL(t.TypeName), t.Metric, sep)
	}
	b.WriteString("ON CONFLICT ((LOWER(name))) DO NOTHING;\n\n")

	b.WriteString("-- 2. Stocks (el tipo se resuelve por nombre)\n")
	for _, r := range rows {
		b.WriteString("INSERT INTO stocks (name, stock_type_id, opening_quantity)\n")
		fmt.Fprintf(&b, "SELECT '%s', id, %d FROM stock_types WHERE LOWER(name) = LOWER('%s')\n",
			escapeSQL(r.Stock), r.Opening, escapeSQL(r.TypeName))
		b.WriteString("ON CONFLICT (name) DO NOTHING;\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
