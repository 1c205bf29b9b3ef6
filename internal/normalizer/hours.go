package normalizer

import (
	"sort"
	"strings"

	"sheetreport/internal/table"
)

// weekPair links a week label column to the unlabeled hours column right after it.
type weekPair struct {
	label string
	week  int
	hours int
}

// pairWeeks finds (week, hours) column pairs. Week columns without an adjacent
// placeholder column are reported and skipped.
func (n *Normalizer) pairWeeks(sheet *table.Sheet) []weekPair {
	log := n.log.ForSheet(sheet.Name)

	var pairs []weekPair

	for i, col := range sheet.Columns {
		if !isDateRangeLabel(col) {
			continue
		}

		next := i + 1
		if next >= len(sheet.Columns) || !isPlaceholderLabel(sheet.Columns[next]) {
			log.Warn("week column has no adjacent hours column, skipping", "column", col)
			continue
		}

		pairs = append(pairs, weekPair{label: strings.TrimSpace(col), week: i, hours: next})
	}

	return pairs
}

// providerName returns the trimmed identity text of a week cell and whether it names a provider.
func (n *Normalizer) providerName(v table.Value) (string, bool) {
	if v.IsMissing() {
		return "", false
	}

	name := strings.TrimSpace(v.Text())
	lower := strings.ToLower(name)

	if name == "" || lower == "nan" {
		return "", false
	}

	for _, e := range n.excluded {
		if lower == e {
			return "", false
		}
	}

	return name, true
}

// RestructureHours pivots repeated (week, hours) column pairs into one row per provider
// with one column per week.
func (n *Normalizer) RestructureHours(sheet *table.Sheet) (*table.Sheet, error) {
	log := n.log.ForSheet(sheet.Name)
	pairs := n.pairWeeks(sheet)

	seen := make(map[string]bool)

	var providers []string

	for _, p := range pairs {
		for _, row := range sheet.Rows {
			name, ok := n.providerName(row.At(p.week))
			if !ok || seen[name] {
				continue
			}

			seen[name] = true
			providers = append(providers, name)
		}
	}

	sort.Strings(providers)

	var weeks []string

	values := make(map[string]map[string]table.Value)

	for _, p := range pairs {
		firstRow := make(map[string]table.Row)

		for _, row := range sheet.Rows {
			name, ok := n.providerName(row.At(p.week))
			if !ok {
				continue
			}

			if _, dup := firstRow[name]; !dup {
				firstRow[name] = row
			}
		}

		for _, name := range providers {
			row, found := firstRow[name]
			if !found {
				continue
			}

			hours := row.At(p.hours)
			if hours.IsMissing() {
				continue
			}

			cells, ok := values[p.label]
			if !ok {
				cells = make(map[string]table.Value)
				values[p.label] = cells
				weeks = append(weeks, p.label)
			}

			if _, set := cells[name]; !set {
				cells[name] = hours
			}
		}
	}

	out := table.New(sheet.Name, append([]string{n.cfg.IdentityLabel}, weeks...)...)

	for _, name := range providers {
		cells := make([]table.Value, 0, len(out.Columns))
		cells = append(cells, table.String(name))

		for _, w := range weeks {
			if v, ok := values[w][name]; ok {
				cells = append(cells, v)
			} else {
				cells = append(cells, table.Missing())
			}
		}

		out.AddRow(cells...)
	}

	log.Info("hours restructured", "weeks", len(weeks), "providers", len(providers))

	return out, nil
}
