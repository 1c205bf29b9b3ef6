// Package table provides the in-memory sheet model shared by the loader, normalizer and document packages.
package table

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is how time cells and date header labels are rendered as text.
const TimestampLayout = "2006-01-02 15:04:05"

// Kind identifies the type held by a Value.
type Kind int

// Cell kinds.
const (
	KindMissing Kind = iota
	KindString
	KindNumber
	KindTime
	KindBool
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindTime:
		return "time"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Value is a single raw or cleaned cell.
type Value struct {
	Time time.Time
	Str  string
	Num  float64
	Kind Kind
	Bool bool
}

// Missing returns an empty cell.
func Missing() Value { return Value{} }

// String returns a text cell.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Number returns a numeric cell.
func Number(f float64) Value { return Value{Kind: KindNumber, Num: f} }

// Time returns a date/time cell.
func Time(t time.Time) Value { return Value{Kind: KindTime, Time: t} }

// Bool returns a boolean cell.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// IsMissing reports whether the cell is empty or holds a NaN number.
func (v Value) IsMissing() bool {
	switch v.Kind {
	case KindMissing:
		return true
	case KindNumber:
		return math.IsNaN(v.Num)
	default:
		return false
	}
}

// Text renders the cell the way it reads in a spreadsheet; missing cells render as "".
func (v Value) Text() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		if math.IsNaN(v.Num) {
			return ""
		}

		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindTime:
		return v.Time.Format(TimestampLayout)
	case KindBool:
		if v.Bool {
			return "True"
		}

		return "False"
	default:
		return ""
	}
}

// Float coerces the cell to a number. Booleans count as 0/1; NaN is never a success.
func (v Value) Float() (float64, bool) {
	switch v.Kind {
	case KindNumber:
		return v.Num, !math.IsNaN(v.Num)
	case KindBool:
		if v.Bool {
			return 1, true
		}

		return 0, true
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}

		return f, true
	default:
		return 0, false
	}
}

// Row holds cells positionally aligned with Sheet.Columns.
type Row []Value

// Sheet is one named tab of a workbook.
type Sheet struct {
	Name    string
	Columns []string
	Rows    []Row
}

// New creates an empty sheet with the given columns.
func New(name string, columns ...string) *Sheet {
	return &Sheet{Name: name, Columns: columns}
}

// AddRow appends a row, padding or truncating it to the column count.
func (s *Sheet) AddRow(cells ...Value) {
	row := make(Row, len(s.Columns))
	copy(row, cells)
	s.Rows = append(s.Rows, row)
}

// At returns the cell at position i, treating short rows as missing-padded.
func (r Row) At(i int) Value {
	if i < 0 || i >= len(r) {
		return Missing()
	}

	return r[i]
}

// Project builds a new sheet containing only the columns at the given positions,
// relabelled with labels. Rows are copied; the receiver is untouched.
func (s *Sheet) Project(positions []int, labels []string) *Sheet {
	out := New(s.Name, append([]string(nil), labels...)...)
	out.Rows = make([]Row, 0, len(s.Rows))

	for _, row := range s.Rows {
		nr := make(Row, len(positions))
		for j, p := range positions {
			nr[j] = row.At(p)
		}

		out.Rows = append(out.Rows, nr)
	}

	return out
}

// Clone returns a deep copy of the sheet.
func (s *Sheet) Clone() *Sheet {
	out := New(s.Name, append([]string(nil), s.Columns...)...)
	out.Rows = make([]Row, len(s.Rows))

	for i, row := range s.Rows {
		out.Rows[i] = append(Row(nil), row...)
	}

	return out
}

// UniqueLabel returns label, or label suffixed with ".1", ".2", ... so that it is not in taken.
func UniqueLabel(label string, taken map[string]bool) string {
	if !taken[label] {
		return label
	}

	for n := 1; ; n++ {
		candidate := label + "." + strconv.Itoa(n)
		if !taken[candidate] {
			return candidate
		}
	}
}
