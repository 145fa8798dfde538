// seed_stock genera un script SQL con los tipos de stock y stocks iniciales (saldo de apertura)
// a partir de una planilla exportada del sistema anterior.
//
// Uso: go run ./cmd/seed_stock [-latin1] [-out ruta.sql] inventario.csv|inventario.xlsx
// Columnas esperadas (con encabezado): tipo, unidad (pcs|ml), stock, cantidad_apertura
// Por defecto escribe: internal/infrastructure/postgres/migrations/002_seed_stock.sql
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

func main() {
	latin1 := flag.Bool("latin1", false, "el CSV está en ISO-8859-1")
	outFlag := flag.String("out", "", "ruta del script de salida")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Uso: seed_stock [-latin1] [-out ruta.sql] inventario.csv|inventario.xlsx")
		os.Exit(2)
	}
	inPath := flag.Arg(0)

	records, err := readRecords(inPath, *latin1)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer %s: %v\n", inPath, err)
		os.Exit(1)
	}
	rows, err := parseRows(records)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Planilla inválida: %v\n", err)
		os.Exit(1)
	}

	outPath := *outFlag
	if outPath == "" {
		outPath = filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "migrations", "002_seed_stock.sql")
	}
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeSQL(out, filepath.Base(inPath), rows); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d tipos, %d stocks\n", outPath, len(stockTypes(rows)), len(rows))
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
