package normalizer

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"sheetreport/internal/table"
)

// looksLikeHeader reports whether a data row reads like a header row.
func (n *Normalizer) looksLikeHeader(row table.Row) bool {
	parts := make([]string, 0, len(row))
	for _, v := range row {
		if v.IsMissing() {
			continue
		}

		parts = append(parts, strings.ToLower(v.Text()))
	}

	joined := strings.Join(parts, " ")
	for _, k := range n.keywords {
		if strings.Contains(joined, k) {
			return true
		}
	}

	return false
}

// DetectHeader promotes the first data row to column labels when it looks like a header.
// Sheets without such a row are returned unchanged.
func (n *Normalizer) DetectHeader(sheet *table.Sheet) (*table.Sheet, error) {
	if len(sheet.Rows) == 0 || !n.looksLikeHeader(sheet.Rows[0]) {
		return sheet.Clone(), nil
	}

	first := sheet.Rows[0]
	labels := make([]string, len(sheet.Columns))
	taken := make(map[string]bool, len(sheet.Columns))

	for i, orig := range sheet.Columns {
		v := first.At(i)
		text := strings.TrimSpace(labelText(v))

		switch {
		case v.IsMissing(), text == "", strings.EqualFold(text, "nan"),
			taken[text], utf8.RuneCountInString(text) > n.cfg.MaxLabelLength:
			labels[i] = table.UniqueLabel(orig, taken)
		default:
			labels[i] = text
		}

		taken[labels[i]] = true
	}

	out := table.New(sheet.Name, labels...)
	out.Rows = make([]table.Row, 0, len(sheet.Rows)-1)

	for _, row := range sheet.Rows[1:] {
		out.Rows = append(out.Rows, append(table.Row(nil), row...))
	}

	n.log.ForSheet(sheet.Name).Info("promoted header row", "columns", len(labels), "rows", len(out.Rows))

	return out, nil
}

// labelText renders a promoted header cell. Infinities read "inf"/"-inf", magnitudes
// outside [1e-4, 1e16) use exponent form and whole numbers print without a fraction ("5").
func labelText(v table.Value) string {
	if v.Kind != table.KindNumber {
		return v.Text()
	}

	f := v.Num

	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	if abs := math.Abs(f); abs >= 1e16 || (abs != 0 && abs < 1e-4) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}
