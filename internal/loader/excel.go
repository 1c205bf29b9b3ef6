package loader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"sheetreport/internal/table"
)

// builtinDateFormats are the built-in number format IDs that render dates or times.
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	45: true, 46: true, 47: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

// workbook wraps an open excelize file with a per-style date lookup cache.
type workbook struct {
	file       *excelize.File
	dateStyles map[int]bool
	date1904   bool
}

func (r *Reader) readWorkbook(want func(string) bool) ([]*table.Sheet, error) {
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	wb := &workbook{file: f, dateStyles: make(map[int]bool)}

	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		wb.date1904 = *props.Date1904
	}

	var sheets []*table.Sheet

	for _, name := range f.GetSheetList() {
		if !want(name) {
			r.log.Debug("skipping sheet", "sheet", name)
			continue
		}

		grid, err := wb.grid(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}

		sheets = append(sheets, BuildSheet(name, grid))
	}

	return sheets, nil
}

// grid reads every cell of a sheet as a typed value.
func (wb *workbook) grid(sheet string) ([][]table.Value, error) {
	rows, err := wb.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	grid := make([][]table.Value, len(rows))

	for r, row := range rows {
		cells := make([]table.Value, len(row))

		for c, raw := range row {
			v, err := wb.cell(sheet, c, r, raw)
			if err != nil {
				return nil, err
			}

			cells[c] = v
		}

		grid[r] = cells
	}

	return grid, nil
}

// cell types a raw cell value using the cell's type attribute and number format.
func (wb *workbook) cell(sheet string, col, row int, raw string) (table.Value, error) {
	if strings.TrimSpace(raw) == "" {
		return table.Missing(), nil
	}

	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return table.Missing(), err
	}

	typ, err := wb.file.GetCellType(sheet, axis)
	if err != nil {
		return table.Missing(), err
	}

	switch typ {
	case excelize.CellTypeBool:
		return table.Bool(raw == "1" || strings.EqualFold(raw, "true")), nil
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		return table.String(raw), nil
	case excelize.CellTypeError:
		return table.Missing(), nil
	}

	num, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return table.String(raw), nil
	}

	if wb.isDate(sheet, axis) {
		if t, err := excelize.ExcelDateToTime(num, wb.date1904); err == nil {
			return table.Time(t), nil
		}
	}

	return table.Number(num), nil
}

// isDate reports whether the cell's number format renders a date or time.
func (wb *workbook) isDate(sheet, axis string) bool {
	idx, err := wb.file.GetCellStyle(sheet, axis)
	if err != nil || idx == 0 {
		return false
	}

	if known, ok := wb.dateStyles[idx]; ok {
		return known
	}

	isDate := false
	if style, err := wb.file.GetStyle(idx); err == nil && style != nil {
		isDate = builtinDateFormats[style.NumFmt]
		if style.CustomNumFmt != nil {
			isDate = isDateFormatCode(*style.CustomNumFmt)
		}
	}

	wb.dateStyles[idx] = isDate

	return isDate
}

// isDateFormatCode reports whether a custom number format code contains date or time tokens,
// ignoring quoted literals, escaped characters and bracketed sections.
func isDateFormatCode(code string) bool {
	var b strings.Builder

	inQuote, inBracket, escaped := false, false, false

	for _, ch := range code {
		switch {
		case escaped:
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == '"':
			inQuote = !inQuote
		case inQuote:
		case ch == '[':
			inBracket = true
		case ch == ']':
			inBracket = false
		case inBracket:
		default:
			b.WriteRune(ch)
		}
	}

	return strings.ContainsAny(strings.ToLower(b.String()), "ydhs")
}
