// Package normalizer turns loosely structured report sheets into clean, rectangular record tables.
package normalizer

import (
	"errors"
	"fmt"
	"strings"

	"sheetreport/internal/config"
	"sheetreport/internal/logger"
	"sheetreport/internal/table"
)

// ErrUnknownStrategy is returned when a strategy kind has no implementation.
var ErrUnknownStrategy = errors.New("unknown cleaning strategy")

// StrategyKind names one of the built-in cleaning strategies.
type StrategyKind int

// Built-in strategies.
const (
	GenericHeaderDetect StrategyKind = iota
	VisitsCleanup
	HoursRestructure
)

// String returns the strategy name used in logs and summaries.
func (k StrategyKind) String() string {
	switch k {
	case GenericHeaderDetect:
		return "generic_header_detect"
	case VisitsCleanup:
		return "visits_cleanup"
	case HoursRestructure:
		return "hours_restructure"
	default:
		return fmt.Sprintf("strategy(%d)", int(k))
	}
}

// Strategy is a pure transform from a raw sheet to a cleaned sheet.
// Implementations never modify their input.
type Strategy func(sheet *table.Sheet) (*table.Sheet, error)

// Normalizer holds the heuristic policy and applies the cleaning strategies.
type Normalizer struct {
	log      *logger.Logger
	visits   map[string]bool
	hours    map[string]bool
	excluded []string
	keywords []string
	token    string
	cfg      config.NormalizerConfig
}

// NewNormalizer creates a normalizer for the given policy.
func NewNormalizer(cfg config.NormalizerConfig, log *logger.Logger) *Normalizer {
	if log == nil {
		log = logger.Discard()
	}

	n := &Normalizer{
		cfg:    cfg,
		log:    log,
		visits: make(map[string]bool, len(cfg.VisitsSheets)),
		hours:  make(map[string]bool, len(cfg.HoursSheets)),
		token:  strings.ToLower(strings.TrimSpace(cfg.IdentityToken)),
	}

	for _, name := range cfg.VisitsSheets {
		n.visits[name] = true
	}

	for _, name := range cfg.HoursSheets {
		n.hours[name] = true
	}

	for _, e := range cfg.ExcludedIdentities {
		n.excluded = append(n.excluded, strings.ToLower(e))
	}

	for _, k := range cfg.HeaderKeywords {
		n.keywords = append(n.keywords, strings.ToLower(k))
	}

	return n
}

// Select picks the strategy for a sheet by exact name. Unmatched names get the generic strategy.
func (n *Normalizer) Select(sheetName string) StrategyKind {
	switch {
	case n.visits[sheetName]:
		return VisitsCleanup
	case n.hours[sheetName]:
		return HoursRestructure
	default:
		return GenericHeaderDetect
	}
}

// Strategy returns the implementation of kind.
func (n *Normalizer) Strategy(kind StrategyKind) (Strategy, error) {
	switch kind {
	case GenericHeaderDetect:
		return n.DetectHeader, nil
	case VisitsCleanup:
		return n.CleanVisits, nil
	case HoursRestructure:
		return n.RestructureHours, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, kind)
	}
}

// Normalize selects and applies the strategy for sheet.
func (n *Normalizer) Normalize(sheet *table.Sheet) (*table.Sheet, StrategyKind, error) {
	kind := n.Select(sheet.Name)

	apply, err := n.Strategy(kind)
	if err != nil {
		return nil, kind, err
	}

	n.log.ForSheet(sheet.Name).Debug("applying strategy",
		"strategy", kind.String(), "columns", len(sheet.Columns), "rows", len(sheet.Rows))

	out, err := apply(sheet)
	if err != nil {
		return nil, kind, err
	}

	return out, kind, nil
}

// isExcludedIdentity reports whether text contains one of the sub-header/subtotal markers.
func (n *Normalizer) isExcludedIdentity(text string) bool {
	lower := strings.ToLower(text)
	for _, e := range n.excluded {
		if strings.Contains(lower, e) {
			return true
		}
	}

	return false
}

// isDateRangeLabel matches week labels such as "11/30-12/6".
func isDateRangeLabel(label string) bool {
	return strings.Contains(label, "/") && strings.Contains(label, "-")
}

// isPlaceholderLabel matches columns the loader had to name itself.
func isPlaceholderLabel(label string) bool {
	trimmed := strings.TrimSpace(label)

	return trimmed == "" || strings.HasPrefix(strings.ToLower(trimmed), "unnamed")
}
