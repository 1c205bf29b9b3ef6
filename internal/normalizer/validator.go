package normalizer

import (
	"errors"
	"fmt"
	"math"

	"sheetreport/internal/table"
)

// Validation errors.
var (
	ErrNilSheet         = errors.New("sheet is nil")
	ErrMissingSheetName = errors.New("sheet has no name")
	ErrDuplicateColumn  = errors.New("duplicate column label")
	ErrRaggedRow        = errors.New("row width does not match column count")
	ErrNonFiniteValue   = errors.New("non-finite number in cleaned sheet")
	ErrRawTimeValue     = errors.New("unformatted time value in cleaned sheet")
)

// Validator checks sheets before and after cleaning.
type Validator struct{}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateInput checks that a loaded sheet can be handed to a strategy.
func (v *Validator) ValidateInput(sheet *table.Sheet) error {
	if sheet == nil {
		return ErrNilSheet
	}

	if sheet.Name == "" {
		return ErrMissingSheetName
	}

	return nil
}

// Validate checks that a cleaned sheet is a dense rectangular table of JSON-safe cells
// with unique labels.
func (v *Validator) Validate(sheet *table.Sheet) error {
	if err := v.ValidateInput(sheet); err != nil {
		return err
	}

	seen := make(map[string]bool, len(sheet.Columns))
	for _, c := range sheet.Columns {
		if seen[c] {
			return fmt.Errorf("%w: %q", ErrDuplicateColumn, c)
		}

		seen[c] = true
	}

	for i, row := range sheet.Rows {
		if len(row) != len(sheet.Columns) {
			return fmt.Errorf("%w at index %d: %d cells, %d columns", ErrRaggedRow, i, len(row), len(sheet.Columns))
		}

		for j, cell := range row {
			switch {
			case cell.Kind == table.KindNumber && (math.IsNaN(cell.Num) || math.IsInf(cell.Num, 0)):
				return fmt.Errorf("%w at row %d column %q", ErrNonFiniteValue, i, sheet.Columns[j])
			case cell.Kind == table.KindTime:
				return fmt.Errorf("%w at row %d column %q", ErrRawTimeValue, i, sheet.Columns[j])
			}
		}
	}

	return nil
}
