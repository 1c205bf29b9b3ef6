// Package document assembles cleaned sheets into the JSON report consumed by the website.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"sheetreport/internal/normalizer"
	"sheetreport/internal/table"
)

// ErrDuplicateSheet is returned when two sheets share a name.
var ErrDuplicateSheet = errors.New("duplicate sheet name")

// Record is one cleaned row with its keys in column order.
type Record struct {
	Keys   []string
	Values []any
}

// MarshalJSON writes the record as an object with keys in column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, k := range r.Keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		if err := encode(&buf, k); err != nil {
			return nil, err
		}

		buf.WriteByte(':')

		if err := encode(&buf, r.Values[i]); err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// Section is the record list of one sheet.
type Section struct {
	Name    string
	Records []Record
}

// Document maps sheet names to their records, keeping workbook order.
type Document struct {
	Sections []Section
}

// New creates an empty document.
func New() *Document {
	return &Document{}
}

// AddSheet flattens a cleaned sheet into a section. Cells are passed through
// normalizer.Scalar so the result is always JSON-safe.
func (d *Document) AddSheet(sheet *table.Sheet) error {
	if d.Section(sheet.Name) != nil {
		return fmt.Errorf("%w: %q", ErrDuplicateSheet, sheet.Name)
	}

	sec := Section{Name: sheet.Name, Records: make([]Record, 0, len(sheet.Rows))}

	for _, row := range sheet.Rows {
		rec := Record{
			Keys:   append([]string(nil), sheet.Columns...),
			Values: make([]any, len(sheet.Columns)),
		}

		for i := range sheet.Columns {
			rec.Values[i] = normalizer.Scalar(row.At(i))
		}

		sec.Records = append(sec.Records, rec)
	}

	d.Sections = append(d.Sections, sec)

	return nil
}

// Section returns the named section or nil.
func (d *Document) Section(name string) *Section {
	for i := range d.Sections {
		if d.Sections[i].Name == name {
			return &d.Sections[i]
		}
	}

	return nil
}

// MarshalJSON writes {"<sheet>": [records...], ...} in workbook order.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, sec := range d.Sections {
		if i > 0 {
			buf.WriteByte(',')
		}

		if err := encode(&buf, sec.Name); err != nil {
			return nil, err
		}

		buf.WriteByte(':')

		records := sec.Records
		if records == nil {
			records = []Record{}
		}

		if err := encode(&buf, records); err != nil {
			return nil, fmt.Errorf("sheet %q: %w", sec.Name, err)
		}
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// Encode serializes the document. Pretty output uses a two-space indent.
// HTML characters are never escaped.
func (d *Document) Encode(pretty bool) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if pretty {
		enc.SetIndent("", "  ")
	}

	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteFile encodes the document and atomically replaces path with it.
func (d *Document) WriteFile(path string, pretty bool) error {
	data, err := d.Encode(pretty)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write output: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to set output permissions: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace output: %w", err)
	}

	return nil
}

// encode writes v as compact JSON without HTML escaping.
func encode(buf *bytes.Buffer, v any) error {
	var tmp bytes.Buffer

	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return err
	}

	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))

	return nil
}
