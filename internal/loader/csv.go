package loader

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"sheetreport/internal/table"
)

// readCSV loads a CSV file as a single sheet named after the file.
func (r *Reader) readCSV(want func(string) bool) ([]*table.Sheet, error) {
	name := strings.TrimSuffix(filepath.Base(r.path), filepath.Ext(r.path))
	if !want(name) {
		return nil, nil
	}

	file, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}

	grid := make([][]table.Value, len(records))
	for i, rec := range records {
		cells := make([]table.Value, len(rec))
		for j, field := range rec {
			cells[j] = ParseText(field)
		}

		grid[i] = cells
	}

	return []*table.Sheet{BuildSheet(name, grid)}, nil
}

// ParseText types a text cell: blanks and NA markers are missing, numbers and
// booleans are recognized, anything else stays text.
func ParseText(s string) table.Value {
	trimmed := strings.TrimSpace(s)

	switch trimmed {
	case "", "NA", "N/A", "NaN", "nan", "NULL", "null", "#N/A":
		return table.Missing()
	case "True", "TRUE", "true":
		return table.Bool(true)
	case "False", "FALSE", "false":
		return table.Bool(false)
	}

	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return table.Number(f)
	}

	return table.String(s)
}
