package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetreport/internal/config"
	"sheetreport/internal/logger"
	"sheetreport/internal/table"
)

func newTestNormalizer() *Normalizer {
	return NewNormalizer(config.DefaultNormalizerConfig(), logger.Discard())
}

// records flattens a sheet into label -> scalar maps.
func records(s *table.Sheet) []map[string]any {
	out := make([]map[string]any, 0, len(s.Rows))
	for _, row := range s.Rows {
		rec := make(map[string]any, len(s.Columns))
		for i, c := range s.Columns {
			rec[c] = Scalar(row.At(i))
		}

		out = append(out, rec)
	}

	return out
}

func TestNormalizer_Select(t *testing.T) {
	n := newTestNormalizer()

	assert.Equal(t, VisitsCleanup, n.Select("Doxy Visits"))
	assert.Equal(t, HoursRestructure, n.Select("Gusto Hours"))
	assert.Equal(t, GenericHeaderDetect, n.Select("doxy visits"), "match is exact")
	assert.Equal(t, GenericHeaderDetect, n.Select("Summary"))
	assert.Equal(t, GenericHeaderDetect, n.Select(""))
}

func TestNormalizer_SelectConfigured(t *testing.T) {
	cfg := config.DefaultNormalizerConfig()
	cfg.VisitsSheets = append(cfg.VisitsSheets, "Doxy - Over 20 minutes")

	n := NewNormalizer(cfg, nil)
	assert.Equal(t, VisitsCleanup, n.Select("Doxy - Over 20 minutes"))
}

func TestStrategyKind_String(t *testing.T) {
	assert.Equal(t, "visits_cleanup", VisitsCleanup.String())
	assert.Equal(t, "hours_restructure", HoursRestructure.String())
	assert.Equal(t, "generic_header_detect", GenericHeaderDetect.String())
	assert.Equal(t, "strategy(42)", StrategyKind(42).String())
}

func TestNormalizer_StrategyUnknown(t *testing.T) {
	_, err := newTestNormalizer().Strategy(StrategyKind(42))
	require.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestNormalizer_NormalizeDispatches(t *testing.T) {
	n := newTestNormalizer()

	sheet := table.New("Gusto Hours", "12/14-12/20", "Unnamed: 1")
	sheet.AddRow(table.String("Dr. A"), table.Number(10))

	out, kind, err := n.Normalize(sheet)
	require.NoError(t, err)
	assert.Equal(t, HoursRestructure, kind)
	assert.Equal(t, []string{"Provider", "12/14-12/20"}, out.Columns)
}

func TestLabelPredicates(t *testing.T) {
	assert.True(t, isDateRangeLabel("11/30-12/6"))
	assert.False(t, isDateRangeLabel("11/30"))
	assert.False(t, isDateRangeLabel("2023-12-14"))

	assert.True(t, isPlaceholderLabel("Unnamed: 3"))
	assert.True(t, isPlaceholderLabel("  "))
	assert.False(t, isPlaceholderLabel("Hours"))
}
