package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"sheetreport/internal/config"
	"sheetreport/internal/document"
	"sheetreport/internal/formatter"
	"sheetreport/internal/loader"
	"sheetreport/internal/logger"
	"sheetreport/internal/normalizer"
	"sheetreport/pkg/metadata"
)

// buildFixture writes a workbook shaped like the monthly provider report.
func buildFixture(t *testing.T) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	set := func(sheet string, cells map[string]any) {
		for axis, v := range cells {
			if err := f.SetCellValue(sheet, axis, v); err != nil {
				t.Fatalf("SetCellValue(%s, %s) failed: %v", sheet, axis, err)
			}
		}
	}

	if err := f.SetSheetName("Sheet1", "Doxy Visits"); err != nil {
		t.Fatalf("SetSheetName failed: %v", err)
	}

	set("Doxy Visits", map[string]any{
		"A1": "Provider", "C1": "11/30-12/6", "D1": time.Date(2023, 12, 14, 0, 0, 0, 0, time.UTC),
		"A2": "Dr. A", "B2": "x", "C2": 5, "D2": 3,
		"A3": "Total",
	})

	for _, name := range []string{"Gusto Hours", "Visit Types"} {
		if _, err := f.NewSheet(name); err != nil {
			t.Fatalf("NewSheet(%s) failed: %v", name, err)
		}
	}

	set("Gusto Hours", map[string]any{
		"A1": "12/14-12/20",
		"A2": "Provider",
		"A3": "Dr. B", "B3": 8,
		"A4": "Dr. A", "B4": 10,
	})

	set("Visit Types", map[string]any{
		"A2": "Provider", "B2": "Visit Type", "C2": "Number of Visits",
		"A3": "Dr. A", "B3": "Intake", "C3": 4,
	})

	path := filepath.Join(t.TempDir(), "report.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}

	return path
}

func TestNormalizer_Workbook(t *testing.T) {
	input := buildFixture(t)
	log := logger.Discard()

	sheets, err := loader.NewReader(input, log).Read(nil)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	processor := normalizer.NewProcessor(config.DefaultNormalizerConfig(), log)

	results, err := processor.ProcessAll(sheets, false)
	if err != nil {
		t.Fatalf("ProcessAll failed: %v", err)
	}

	doc := document.New()
	for _, res := range results {
		if err := doc.AddSheet(res.Sheet); err != nil {
			t.Fatalf("AddSheet failed: %v", err)
		}
	}

	output := filepath.Join(t.TempDir(), "data.json")
	if err := doc.WriteFile(output, true); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	raw, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}

	if !strings.HasPrefix(string(raw), "{\n  \"Doxy Visits\": [") {
		t.Errorf("sheets not in workbook order or not indented:\n%s", raw)
	}

	var got map[string][]map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	want := map[string][]map[string]any{
		"Doxy Visits": {
			{"Provider": "Dr. A", "11/30-12/6": 5.0, "Week of 12/14": 3.0},
		},
		"Gusto Hours": {
			{"Provider": "Dr. A", "12/14-12/20": 10.0},
			{"Provider": "Dr. B", "12/14-12/20": 8.0},
		},
		"Visit Types": {
			{"Provider": "Dr. A", "Visit Type": "Intake", "Number of Visits": 4.0},
		},
	}

	gotJSON, _ := json.Marshal(got)
	wantJSON, _ := json.Marshal(want)

	if string(gotJSON) != string(wantJSON) {
		t.Errorf("document mismatch\n got: %s\nwant: %s", gotJSON, wantJSON)
	}
}

func TestNormalizer_PreviewIsSigned(t *testing.T) {
	input := buildFixture(t)

	sheets, err := loader.NewReader(input, nil).Read(func(name string) bool { return name == "Gusto Hours" })
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	results, err := normalizer.NewProcessor(config.DefaultNormalizerConfig(), nil).ProcessAll(sheets, false)
	if err != nil {
		t.Fatalf("ProcessAll failed: %v", err)
	}

	hash, err := metadata.HashFile(input)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}

	signed := metadata.Sign(formatter.RenderPreview("Preview", results, 5),
		metadata.Metadata{Source: "report.xlsx", SourceHash: hash, Validation: true})

	if ok, err := metadata.Verify(signed); !ok || err != nil {
		t.Fatalf("Verify() = %v, %v", ok, err)
	}

	meta, body := metadata.Extract(signed)
	if meta.SourceHash != hash {
		t.Errorf("SourceHash = %s, want %s", meta.SourceHash, hash)
	}

	if !strings.Contains(body, "| Dr. A    | 10          |") {
		t.Errorf("preview table missing:\n%s", body)
	}
}
