package normalizer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"sheetreport/internal/table"
)

// ErrNoIdentityColumn is returned when a visits sheet has no provider column.
var ErrNoIdentityColumn = errors.New("no identity column found")

// dateLabelLayouts are the header formats accepted as a single week date.
var dateLabelLayouts = []string{
	table.TimestampLayout,
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"1/2/06",
	"1/2",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// parseDateLabel parses a column label that holds a single date.
func parseDateLabel(label string) (time.Time, bool) {
	s := strings.TrimSpace(label)
	for _, layout := range dateLabelLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// CleanVisits extracts the provider table from a sheet holding several side-by-side tables.
func (n *Normalizer) CleanVisits(sheet *table.Sheet) (*table.Sheet, error) {
	log := n.log.ForSheet(sheet.Name)

	identity := -1
	positions := make([]int, 0, len(sheet.Columns))
	labels := make([]string, 0, len(sheet.Columns))
	taken := make(map[string]bool, len(sheet.Columns))

	keep := func(pos int, label string) {
		label = table.UniqueLabel(label, taken)
		taken[label] = true
		positions = append(positions, pos)
		labels = append(labels, label)
	}

	for i, col := range sheet.Columns {
		lower := strings.ToLower(col)

		if strings.Contains(lower, n.token) && !strings.Contains(lower, "unnamed") {
			if identity >= 0 {
				log.Debug("dropping additional identity column", "column", col)
				continue
			}

			identity = len(positions)
			keep(i, col)

			continue
		}

		if isDateRangeLabel(col) {
			keep(i, col)
			continue
		}

		if t, ok := parseDateLabel(col); ok {
			keep(i, n.cfg.WeekLabelPrefix+t.Format("01/02"))
			continue
		}

		log.Debug("dropping column", "column", col)
	}

	if identity < 0 {
		return nil, fmt.Errorf("%w in sheet %q", ErrNoIdentityColumn, sheet.Name)
	}

	projected := sheet.Project(positions, labels)

	rows := projected.Rows[:0:0]
	for _, row := range projected.Rows {
		id := row.At(identity)
		if id.IsMissing() || n.isExcludedIdentity(id.Text()) {
			continue
		}

		rows = append(rows, row)
	}

	projected.Rows = rows

	accepted := make([]int, 0, len(positions))
	for j := range projected.Columns {
		if j == identity {
			accepted = append(accepted, j)
			continue
		}

		ratio, total := numericRatio(projected, j)
		if total == 0 || ratio <= n.cfg.NumericRatio {
			log.Debug("dropping non-numeric column",
				"column", projected.Columns[j], "ratio", ratio, "non_missing", total)

			continue
		}

		for _, row := range projected.Rows {
			if f, ok := row[j].Float(); ok {
				row[j] = table.Number(f)
			} else {
				row[j] = table.Missing()
			}
		}

		accepted = append(accepted, j)
	}

	final := make([]string, len(accepted))
	for k, j := range accepted {
		final[k] = projected.Columns[j]
	}

	out := projected.Project(accepted, final)

	log.Info("visits cleaned", "columns", len(out.Columns), "rows", len(out.Rows))

	return out, nil
}

// numericRatio returns the share of non-missing cells in column j that parse as numbers.
func numericRatio(sheet *table.Sheet, j int) (float64, int) {
	var ok, total int

	for _, row := range sheet.Rows {
		v := row.At(j)
		if v.IsMissing() {
			continue
		}

		total++

		if _, good := v.Float(); good {
			ok++
		}
	}

	if total == 0 {
		return 0, 0
	}

	return float64(ok) / float64(total), total
}
