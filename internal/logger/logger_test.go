package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"unknown": slog.LevelInfo,
	}

	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	log := New(&buf, "warn", "text")
	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message leaked at warn level: %s", out)
	}

	if !strings.Contains(out, "shown") {
		t.Errorf("warn message missing: %s", out)
	}

	buf.Reset()
	New(&buf, "debug", "text").With("run", 1).Debug("now visible")

	if !strings.Contains(buf.String(), "now visible") || !strings.Contains(buf.String(), "run=1") {
		t.Errorf("debug message missing at debug level: %s", buf.String())
	}
}

func TestLogger_ForSheetJSON(t *testing.T) {
	var buf bytes.Buffer

	New(&buf, "info", "json").ForSheet("Gusto Hours").Info("restructured", "rows", 2)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}

	if rec["sheet"] != "Gusto Hours" {
		t.Errorf("sheet attribute = %v, want Gusto Hours", rec["sheet"])
	}

	if rec["rows"] != float64(2) {
		t.Errorf("rows attribute = %v, want 2", rec["rows"])
	}
}
