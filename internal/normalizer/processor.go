package normalizer

import (
	"fmt"

	"sheetreport/internal/config"
	"sheetreport/internal/logger"
	"sheetreport/internal/table"
)

// Result is one cleaned sheet together with the strategy that produced it.
type Result struct {
	Sheet     *table.Sheet
	Strategy  StrategyKind
	InputRows int
	InputCols int
}

// Processor runs a sheet through validation, its cleaning strategy and scalar coercion.
type Processor struct {
	validator  *Validator
	normalizer *Normalizer
	log        *logger.Logger
}

// NewProcessor creates a new processor instance.
func NewProcessor(cfg config.NormalizerConfig, log *logger.Logger) *Processor {
	if log == nil {
		log = logger.Discard()
	}

	return &Processor{
		validator:  NewValidator(),
		normalizer: NewNormalizer(cfg, log),
		log:        log,
	}
}

// Process cleans a single sheet.
func (p *Processor) Process(sheet *table.Sheet) (*Result, error) {
	// 1. Validate the input sheet
	if err := p.validator.ValidateInput(sheet); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// 2. Apply the selected strategy
	cleaned, kind, err := p.normalizer.Normalize(sheet)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", kind, err)
	}

	// 3. Coerce every cell and check the result
	cleaned = CoerceSheet(cleaned)
	if err := p.validator.Validate(cleaned); err != nil {
		return nil, fmt.Errorf("cleaned sheet is invalid: %w", err)
	}

	return &Result{
		Sheet:     cleaned,
		Strategy:  kind,
		InputRows: len(sheet.Rows),
		InputCols: len(sheet.Columns),
	}, nil
}

// ProcessAll cleans every sheet in order. With continueOnError a failing sheet is
// logged and left out; otherwise the first failure aborts the run.
func (p *Processor) ProcessAll(sheets []*table.Sheet, continueOnError bool) ([]*Result, error) {
	results := make([]*Result, 0, len(sheets))

	for _, sheet := range sheets {
		res, err := p.Process(sheet)
		if err != nil {
			name := ""
			if sheet != nil {
				name = sheet.Name
			}

			if !continueOnError {
				return nil, fmt.Errorf("sheet %q: %w", name, err)
			}

			p.log.ForSheet(name).Error("skipping sheet", "error", err)

			continue
		}

		results = append(results, res)
	}

	return results, nil
}
