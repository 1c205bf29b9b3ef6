// Package loader reads report workbooks into in-memory sheets.
package loader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"sheetreport/internal/logger"
	"sheetreport/internal/table"
)

// Loader errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported input format")
	ErrNoSheets          = errors.New("no sheets selected")
)

// Format is the kind of input file.
type Format string

// Supported formats.
const (
	FormatUnknown = Format("")
	FormatXLSX    = Format("xlsx")
	FormatCSV     = Format("csv")
)

// DetectFormat picks the reader from the file extension.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return FormatXLSX
	case ".csv":
		return FormatCSV
	default:
		return FormatUnknown
	}
}

// Reader loads every (selected) sheet of a workbook.
type Reader struct {
	log    *logger.Logger
	path   string
	format Format
}

// NewReader creates a reader for the file at path.
func NewReader(path string, log *logger.Logger) *Reader {
	if log == nil {
		log = logger.Discard()
	}

	return &Reader{path: path, format: DetectFormat(path), log: log}
}

// Read loads the sheets for which want returns true, in workbook order.
// A nil want selects every sheet.
func (r *Reader) Read(want func(string) bool) ([]*table.Sheet, error) {
	if want == nil {
		want = func(string) bool { return true }
	}

	if _, err := os.Stat(r.path); err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}

	var (
		sheets []*table.Sheet
		err    error
	)

	switch r.format {
	case FormatXLSX:
		sheets, err = r.readWorkbook(want)
	case FormatCSV:
		sheets, err = r.readCSV(want)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(r.path))
	}

	if err != nil {
		return nil, err
	}

	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoSheets, r.path)
	}

	for _, s := range sheets {
		r.log.ForSheet(s.Name).Debug("sheet loaded",
			"rows", len(s.Rows), "columns", len(s.Columns), "labels", s.Columns)
	}

	return sheets, nil
}

// BuildSheet turns a cell grid whose first row is the header into a sheet.
// Blank header cells become "Unnamed: <index>", repeated labels get ".1", ".2"
// suffixes, and trailing blank rows are dropped.
func BuildSheet(name string, grid [][]table.Value) *table.Sheet {
	for len(grid) > 0 && blankRow(grid[len(grid)-1]) {
		grid = grid[:len(grid)-1]
	}

	if len(grid) == 0 {
		return table.New(name)
	}

	width := 0
	for _, row := range grid {
		if len(row) > width {
			width = len(row)
		}
	}

	header := table.Row(grid[0])
	labels := make([]string, width)
	taken := make(map[string]bool, width)

	for i := range labels {
		v := header.At(i)

		label := v.Text()
		if v.IsMissing() {
			label = "Unnamed: " + strconv.Itoa(i)
		}

		labels[i] = table.UniqueLabel(label, taken)
		taken[labels[i]] = true
	}

	sheet := table.New(name, labels...)
	for _, row := range grid[1:] {
		sheet.AddRow(row...)
	}

	return sheet
}

func blankRow(row []table.Value) bool {
	for _, v := range row {
		if !v.IsMissing() {
			return false
		}
	}

	return true
}
