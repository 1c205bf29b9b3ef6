// Package formatter renders cleaned sheets as an aligned markdown preview report.
package formatter

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"sheetreport/internal/normalizer"
	"sheetreport/internal/table"
	"sheetreport/pkg/utils"
)

// maxCellWidth caps preview cell text so one long note does not stretch a whole column.
const maxCellWidth = 40

// RenderPreview writes a markdown report with one section per cleaned sheet showing
// its strategy, shape, labels and first rows. rows <= 0 shows only the summary.
func RenderPreview(title string, results []*normalizer.Result, rows int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n", title)

	for _, res := range results {
		s := res.Sheet

		fmt.Fprintf(&b, "\n## %s\n\n", s.Name)
		fmt.Fprintf(&b, "- Strategy: %s\n", res.Strategy)
		fmt.Fprintf(&b, "- Input shape: %d rows x %d columns\n", res.InputRows, res.InputCols)
		fmt.Fprintf(&b, "- Output shape: %d rows x %d columns\n", len(s.Rows), len(s.Columns))

		if rows <= 0 || len(s.Columns) == 0 {
			continue
		}

		b.WriteString("\n")
		b.WriteString(markdownTable(s, rows))
	}

	return FormatMarkdown(b.String())
}

// markdownTable renders the first n rows of a sheet as an unaligned markdown table.
func markdownTable(s *table.Sheet, n int) string {
	var b strings.Builder

	writeRow := func(cells []string) {
		b.WriteString("|")

		for _, c := range cells {
			b.WriteString(" ")
			b.WriteString(c)
			b.WriteString(" |")
		}

		b.WriteString("\n")
	}

	header := make([]string, len(s.Columns))
	sep := make([]string, len(s.Columns))

	for i, c := range s.Columns {
		header[i] = utils.EscapeTableCell(utils.TruncateString(c, maxCellWidth))
		sep[i] = "---"
	}

	writeRow(header)
	writeRow(sep)

	for r, row := range s.Rows {
		if r >= n {
			break
		}

		cells := make([]string, len(s.Columns))
		for i := range cells {
			cells[i] = utils.EscapeTableCell(utils.TruncateString(cellText(row.At(i)), maxCellWidth))
		}

		writeRow(cells)
	}

	if len(s.Rows) > n {
		fmt.Fprintf(&b, "\n_%d more rows_\n", len(s.Rows)-n)
	}

	return b.String()
}

func cellText(v table.Value) string {
	if normalizer.Scalar(v) == nil {
		return "null"
	}

	return v.Text()
}

// FormatMarkdown aligns every markdown table in content by display width.
func FormatMarkdown(content string) string {
	lines := strings.Split(content, "\n")

	var formattedLines []string

	var tableBuffer []string

	for _, line := range lines {
		trimmedLine := strings.TrimSpace(line)

		// Simple heuristic: starts and ends with |
		if strings.HasPrefix(trimmedLine, "|") && strings.HasSuffix(trimmedLine, "|") {
			tableBuffer = append(tableBuffer, line)

			continue
		}

		if len(tableBuffer) > 0 {
			formattedLines = append(formattedLines, processTable(tableBuffer)...)
			tableBuffer = nil
		}

		formattedLines = append(formattedLines, line)
	}

	if len(tableBuffer) > 0 {
		formattedLines = append(formattedLines, processTable(tableBuffer)...)
	}

	return strings.Join(formattedLines, "\n")
}

// splitCells splits a table row on unescaped pipes.
func splitCells(row string) []string {
	row = strings.TrimSpace(row)
	row = strings.TrimPrefix(row, "|")

	if strings.HasSuffix(row, "|") && !strings.HasSuffix(row, `\|`) {
		row = strings.TrimSuffix(row, "|")
	}

	var (
		cells []string
		cur   strings.Builder
	)

	escaped := false

	for _, ch := range row {
		switch {
		case escaped:
			cur.WriteRune(ch)

			escaped = false
		case ch == '\\':
			cur.WriteRune(ch)

			escaped = true
		case ch == '|':
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(ch)
		}
	}

	return append(cells, strings.TrimSpace(cur.String()))
}

func isSeparatorRow(cells []string) bool {
	for _, cell := range cells {
		trim := strings.NewReplacer("-", "", ":", "", " ", "").Replace(cell)
		if trim != "" {
			return false
		}
	}

	return true
}

func processTable(rows []string) []string {
	// A header needs a separator row to be a table.
	if len(rows) < 2 {
		return rows
	}

	grid := make([][]string, 0, len(rows))
	for _, row := range rows {
		grid = append(grid, splitCells(row))
	}

	colCount := 0
	for _, row := range grid {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	separatorRowIdx := -1
	if isSeparatorRow(grid[1]) {
		separatorRowIdx = 1
	}

	colWidths := make([]int, colCount)

	for rIdx, row := range grid {
		if rIdx == separatorRowIdx {
			continue
		}

		for i, cell := range row {
			if width := runewidth.StringWidth(cell); width > colWidths[i] {
				colWidths[i] = width
			}
		}
	}

	for i := range colWidths {
		if colWidths[i] < 3 {
			colWidths[i] = 3
		}
	}

	result := make([]string, 0, len(grid))

	for i, row := range grid {
		var sb strings.Builder

		sb.WriteString("|")

		for j := 0; j < colCount; j++ {
			sb.WriteString(" ")

			if i == separatorRowIdx {
				sb.WriteString(strings.Repeat("-", colWidths[j]))
			} else {
				content := ""
				if j < len(row) {
					content = row[j]
				}

				sb.WriteString(runewidth.FillRight(content, colWidths[j]))
			}

			sb.WriteString(" |")
		}

		result = append(result, sb.String())
	}

	return result
}
