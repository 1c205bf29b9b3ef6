package normalizer

import (
	"math"

	"sheetreport/internal/table"
)

// Scalar converts a cell to a JSON-safe value: nil, string, float64 or bool.
// NaN and infinities become nil; timestamps become text.
func Scalar(v table.Value) any {
	switch v.Kind {
	case table.KindString:
		return v.Str
	case table.KindNumber:
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
			return nil
		}

		return v.Num
	case table.KindBool:
		return v.Bool
	case table.KindTime:
		return v.Time.Format(table.TimestampLayout)
	default:
		return nil
	}
}

// CoerceValue maps a cell onto the JSON-safe subset of table values.
func CoerceValue(v table.Value) table.Value {
	switch s := Scalar(v).(type) {
	case string:
		return table.String(s)
	case float64:
		return table.Number(s)
	case bool:
		return table.Bool(s)
	default:
		return table.Missing()
	}
}

// CoerceSheet returns a copy of sheet with every cell coerced and every row padded
// to the column count.
func CoerceSheet(sheet *table.Sheet) *table.Sheet {
	out := table.New(sheet.Name, append([]string(nil), sheet.Columns...)...)
	out.Rows = make([]table.Row, 0, len(sheet.Rows))

	for _, row := range sheet.Rows {
		nr := make(table.Row, len(sheet.Columns))
		for i := range nr {
			nr[i] = CoerceValue(row.At(i))
		}

		out.Rows = append(out.Rows, nr)
	}

	return out
}
