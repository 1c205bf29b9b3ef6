// Package config provides configuration management for the sheet report exporter.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingInputPath       = errors.New("input.path is required")
	ErrMissingOutputPath      = errors.New("output.path is required")
	ErrInvalidNumericRatio    = errors.New("normalizer.numeric_ratio must be between 0 and 1")
	ErrInvalidMaxLabelLength  = errors.New("normalizer.max_label_length must be at least 1")
	ErrMissingIdentityToken   = errors.New("normalizer.identity_token is required")
	ErrMissingIdentityLabel   = errors.New("normalizer.identity_label is required")
	ErrNoHeaderKeywords       = errors.New("normalizer.header_keywords must not be empty")
	ErrOverlappingSheetRules  = errors.New("a sheet cannot be both a visits and an hours sheet")
	ErrInvalidPreviewRows     = errors.New("output.preview_rows must be non-negative")
	ErrInvalidLogLevel        = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat       = errors.New("logging.format must be 'text' or 'json'")
	ErrInvalidEnvironmentBool = errors.New("environment value is not a boolean")
)

// Environment variables that override file settings.
const (
	EnvInput           = "SHEETREPORT_INPUT"
	EnvOutput          = "SHEETREPORT_OUTPUT"
	EnvPreview         = "SHEETREPORT_PREVIEW"
	EnvLogLevel        = "SHEETREPORT_LOG_LEVEL"
	EnvContinueOnError = "SHEETREPORT_CONTINUE_ON_ERROR"
)

// Config represents the complete exporter configuration.
type Config struct {
	Input      InputConfig      `yaml:"input"`
	Output     OutputConfig     `yaml:"output"`
	Normalizer NormalizerConfig `yaml:"normalizer"`
	Logging    LoggingConfig    `yaml:"logging"`
	Advanced   AdvancedConfig   `yaml:"advanced"`
}

// InputConfig selects the source workbook.
type InputConfig struct {
	Path   string   `yaml:"path"`
	Sheets []string `yaml:"sheets"`
}

// OutputConfig defines output behavior.
type OutputConfig struct {
	Path        string `yaml:"path"`
	PreviewPath string `yaml:"preview_path"`
	PreviewRows int    `yaml:"preview_rows"`
	PrettyPrint bool   `yaml:"pretty_print"`
}

// NormalizerConfig holds the heuristic policy constants used by the cleanup strategies.
type NormalizerConfig struct {
	IdentityToken      string   `yaml:"identity_token"`
	IdentityLabel      string   `yaml:"identity_label"`
	WeekLabelPrefix    string   `yaml:"week_label_prefix"`
	VisitsSheets       []string `yaml:"visits_sheets"`
	HoursSheets        []string `yaml:"hours_sheets"`
	ExcludedIdentities []string `yaml:"excluded_identities"`
	HeaderKeywords     []string `yaml:"header_keywords"`
	NumericRatio       float64  `yaml:"numeric_ratio"`
	MaxLabelLength     int      `yaml:"max_label_length"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AdvancedConfig contains advanced settings.
type AdvancedConfig struct {
	ContinueOnError bool `yaml:"continue_on_error"`
}

// DefaultNormalizerConfig returns the policy the report was originally cleaned with.
func DefaultNormalizerConfig() NormalizerConfig {
	return NormalizerConfig{
		IdentityToken:      "provider",
		IdentityLabel:      "Provider",
		WeekLabelPrefix:    "Week of ",
		VisitsSheets:       []string{"Doxy Visits"},
		HoursSheets:        []string{"Gusto Hours"},
		ExcludedIdentities: []string{"provider", "total"},
		HeaderKeywords: []string{
			"provider",
			"number of visits",
			"type of visit",
			"visit type",
			"program",
			"total visits",
			"hours",
		},
		NumericRatio:   0.7,
		MaxLabelLength: 50,
	}
}

// DefaultConfig returns a configuration that only lacks input and output paths.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			PrettyPrint: true,
			PreviewRows: 5,
		},
		Normalizer: DefaultNormalizerConfig(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from a YAML file on top of the defaults.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides settings from SHEETREPORT_* environment variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvInput); ok && v != "" {
		c.Input.Path = v
	}

	if v, ok := lookup(EnvOutput); ok && v != "" {
		c.Output.Path = v
	}

	if v, ok := lookup(EnvPreview); ok && v != "" {
		c.Output.PreviewPath = v
	}

	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Logging.Level = strings.ToLower(v)
	}

	if v, ok := lookup(EnvContinueOnError); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidEnvironmentBool, EnvContinueOnError, v)
		}

		c.Advanced.ContinueOnError = b
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Input.Path == "" {
		return ErrMissingInputPath
	}

	if c.Output.Path == "" {
		return ErrMissingOutputPath
	}

	if c.Output.PreviewRows < 0 {
		return ErrInvalidPreviewRows
	}

	if err := c.Normalizer.Validate(); err != nil {
		return err
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}

	return nil
}

// Validate checks the normalizer policy on its own.
func (n *NormalizerConfig) Validate() error {
	if n.NumericRatio < 0 || n.NumericRatio > 1 {
		return ErrInvalidNumericRatio
	}

	if n.MaxLabelLength < 1 {
		return ErrInvalidMaxLabelLength
	}

	if strings.TrimSpace(n.IdentityToken) == "" {
		return ErrMissingIdentityToken
	}

	if strings.TrimSpace(n.IdentityLabel) == "" {
		return ErrMissingIdentityLabel
	}

	if len(n.HeaderKeywords) == 0 {
		return ErrNoHeaderKeywords
	}

	visits := make(map[string]bool, len(n.VisitsSheets))
	for _, name := range n.VisitsSheets {
		visits[name] = true
	}

	for _, name := range n.HoursSheets {
		if visits[name] {
			return fmt.Errorf("%w: %q", ErrOverlappingSheetRules, name)
		}
	}

	return nil
}

// WantSheet reports whether the named sheet is part of the configured subset.
func (c *Config) WantSheet(name string) bool {
	if len(c.Input.Sheets) == 0 {
		return true
	}

	for _, s := range c.Input.Sheets {
		if s == name {
			return true
		}
	}

	return false
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Input: %s, Output: %s, Sheets: %d, NumericRatio: %g}",
		c.Input.Path,
		c.Output.Path,
		len(c.Input.Sheets),
		c.Normalizer.NumericRatio,
	)
}
