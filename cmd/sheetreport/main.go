// Package main provides the sheetreport command that cleans a spreadsheet report into website JSON.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"sheetreport/internal/config"
	"sheetreport/internal/document"
	"sheetreport/internal/formatter"
	"sheetreport/internal/loader"
	"sheetreport/internal/logger"
	"sheetreport/internal/normalizer"
	"sheetreport/pkg/metadata"
)

const defaultConfig = "configs/sheetreport.yaml"

type options struct {
	configPath string
	input      string
	output     string
	preview    string
	sheets     string
	logLevel   string
	dumpConfig string
	validate   bool
}

func main() {
	opts := options{}

	flag.StringVar(&opts.configPath, "config", "", "Path to YAML config (default: "+defaultConfig+" if present)")
	flag.StringVar(&opts.input, "input", "", "Path to the source workbook (.xlsx or .csv)")
	flag.StringVar(&opts.output, "output", "", "Path to the output JSON file")
	flag.StringVar(&opts.preview, "preview", "", "Optional path for a markdown preview of the cleaned sheets")
	flag.StringVar(&opts.sheets, "sheets", "", "Comma-separated subset of sheet names to export")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.StringVar(&opts.dumpConfig, "dump-config", "", "Write the effective configuration as YAML to this path and exit")
	flag.BoolVar(&opts.validate, "validate", false, "Load and clean the workbook, print a summary, write nothing")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		fmt.Println("Usage: sheetreport -input <report.xlsx> -output <data.json>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	log := logger.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	log.Debug("⚙️  Configuration loaded", "config", cfg.String())

	if opts.dumpConfig != "" {
		if err := dumpConfig(cfg, opts.dumpConfig, log); err != nil {
			log.Error("❌ Failed to write configuration", "error", err)
			os.Exit(1)
		}

		return
	}

	if err := run(cfg, opts.validate, log); err != nil {
		log.Error("❌ Export failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig layers defaults, the YAML file, .env/environment and flags, then validates.
func loadConfig(opts options) (*config.Config, error) {
	cfg := config.DefaultConfig()

	path := opts.configPath
	if path == "" {
		if _, err := os.Stat(defaultConfig); err == nil {
			path = defaultConfig
		}
	}

	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if opts.input != "" {
		cfg.Input.Path = opts.input
	}

	if opts.output != "" {
		cfg.Output.Path = opts.output
	}

	if opts.preview != "" {
		cfg.Output.PreviewPath = opts.preview
	}

	if opts.logLevel != "" {
		cfg.Logging.Level = strings.ToLower(opts.logLevel)
	}

	if opts.sheets != "" {
		cfg.Input.Sheets = splitSheets(opts.sheets)
	}

	if opts.validate && cfg.Output.Path == "" {
		// Nothing is written in validate mode.
		cfg.Output.Path = os.DevNull
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// splitSheets parses a comma-separated sheet list, dropping blank entries.
func splitSheets(list string) []string {
	var sheets []string

	for _, s := range strings.Split(list, ",") {
		if s = strings.TrimSpace(s); s != "" {
			sheets = append(sheets, s)
		}
	}

	return sheets
}

// dumpConfig saves the effective configuration so it can be reused with -config.
func dumpConfig(cfg *config.Config, path string, log *logger.Logger) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := cfg.SaveConfig(path); err != nil {
		return err
	}

	log.Info("💾 Configuration written", "path", path)

	return nil
}

func run(cfg *config.Config, validateOnly bool, log *logger.Logger) error {
	startTime := time.Now()

	log.Info("📂 Reading workbook", "path", cfg.Input.Path)

	sheets, err := loader.NewReader(cfg.Input.Path, log).Read(cfg.WantSheet)
	if err != nil {
		return err
	}

	log.Info("📄 Sheets loaded", "count", len(sheets))

	processor := normalizer.NewProcessor(cfg.Normalizer, log)

	results, err := processor.ProcessAll(sheets, cfg.Advanced.ContinueOnError)
	if err != nil {
		return err
	}

	doc := document.New()
	for _, res := range results {
		if err := doc.AddSheet(res.Sheet); err != nil {
			return err
		}
	}

	printSummary(results)

	if validateOnly {
		log.Info("✅ Validation complete, nothing written", "duration", time.Since(startTime))
		return nil
	}

	if err := doc.WriteFile(cfg.Output.Path, cfg.Output.PrettyPrint); err != nil {
		return err
	}

	log.Info("✅ Saved", "path", cfg.Output.Path, "sheets", len(doc.Sections))

	if cfg.Output.PreviewPath != "" {
		if err := writePreview(cfg, results, len(results) == len(sheets)); err != nil {
			return err
		}

		log.Info("📝 Preview written", "path", cfg.Output.PreviewPath)
	}

	log.Info("✨ Export complete", "duration", time.Since(startTime))

	return nil
}

func writePreview(cfg *config.Config, results []*normalizer.Result, complete bool) error {
	sourceHash, err := metadata.HashFile(cfg.Input.Path)
	if err != nil {
		return err
	}

	title := "Sheet report: " + filepath.Base(cfg.Input.Path)
	body := formatter.RenderPreview(title, results, cfg.Output.PreviewRows)
	signed := metadata.Sign(body, metadata.Metadata{
		Source:     filepath.Base(cfg.Input.Path),
		SourceHash: sourceHash,
		Validation: complete,
	})

	if err := os.MkdirAll(filepath.Dir(cfg.Output.PreviewPath), 0755); err != nil {
		return fmt.Errorf("failed to create preview directory: %w", err)
	}

	if err := os.WriteFile(cfg.Output.PreviewPath, []byte(signed+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write preview: %w", err)
	}

	return nil
}

func printSummary(results []*normalizer.Result) {
	fmt.Println("\n------------------------------------------------")
	fmt.Println("📊 Summary Report")
	fmt.Println("------------------------------------------------")

	for _, res := range results {
		fmt.Printf("%-30s %-22s %4d rows  %3d columns\n",
			res.Sheet.Name, res.Strategy, len(res.Sheet.Rows), len(res.Sheet.Columns))
	}

	fmt.Println("------------------------------------------------")
}
