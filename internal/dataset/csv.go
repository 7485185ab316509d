package dataset

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrMissingColumn is returned when a CSV header lacks a required column.
var ErrMissingColumn = errors.New("missing column")

type column struct {
	name    string
	numeric bool
}

// table describes one CSV export and the table it is loaded into.
type table struct {
	name    string
	columns []column
}

var (
	boxRatingsTable  = table{"box_ratings", []column{{"box_sku", false}, {"box_score", true}}}
	boxContentsTable = table{"box_contents", []column{{"box_sku", false}, {"product_id", false}}}
	productColumns   = []column{
		{"product_id", false},
		{"brand", false},
		{"category", false},
		{"retail_price", true},
		{"weight", true},
		{"size", false},
	}
	productInfoTable      = table{"product_info", productColumns}
	productInfoAltTable   = table{"product_info_alt", productColumns}
	brandAveragesTable    = table{"brand_averages", []column{{"brand", false}, {"avg_brand_rating", true}}}
	categoryAveragesTable = table{"category_averages", []column{{"category", false}, {"avg_category_rating", true}}}
	futureBoxTable        = table{"future_box", []column{{"box_sku", false}, {"product_id", false}}}
)

// loadCSV copies the named columns of the CSV at path into t.
// Column order in the file is free and extra columns are ignored.
// Blank cells become NULL. Returns the number of rows inserted.
func loadCSV(ctx context.Context, tx *sql.Tx, t table, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", t.name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return 0, fmt.Errorf("read %s header from %s: file is empty", t.name, path)
	}
	if err != nil {
		return 0, fmt.Errorf("read %s header from %s: %w", t.name, path, err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	positions := make([]int, len(t.columns))
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		pos, ok := index[c.name]
		if !ok {
			return 0, fmt.Errorf("%s: %w %q", path, ErrMissingColumn, c.name)
		}
		positions[i] = pos
		names[i] = c.name
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.name, strings.Join(names, ", "), placeholders))
	if err != nil {
		return 0, fmt.Errorf("prepare %s insert: %w", t.name, err)
	}
	defer stmt.Close()

	rows := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, fmt.Errorf("read %s: %w", path, err)
		}
		line, _ := r.FieldPos(0)

		args := make([]any, len(t.columns))
		for i, c := range t.columns {
			var cell string
			if positions[i] < len(record) {
				cell = strings.TrimSpace(record[positions[i]])
			}
			args[i], err = cellValue(cell, c.numeric)
			if err != nil {
				return rows, fmt.Errorf("%s line %d column %s: %w", path, line, c.name, err)
			}
		}

		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return rows, fmt.Errorf("insert %s line %d: %w", t.name, line, err)
		}
		rows++
	}
	return rows, nil
}

func cellValue(cell string, numeric bool) (any, error) {
	if cell == "" {
		return nil, nil
	}
	if !numeric {
		return cell, nil
	}
	v, err := strconv.ParseFloat(strings.TrimPrefix(cell, "$"), 64)
	if err != nil {
		return nil, fmt.Errorf("parse number %q: %w", cell, err)
	}
	return v, nil
}
