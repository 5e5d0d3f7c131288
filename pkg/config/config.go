package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the banner ledger tool
type Config struct {
	// Ledger engine settings
	Ledger LedgerConfig `yaml:"ledger" json:"ledger"`

	// Capture ingestion settings
	Ingest IngestConfig `yaml:"ingest" json:"ingest"`

	// Report export settings
	Report ReportConfig `yaml:"report" json:"report"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// LedgerConfig holds ledger engine configuration
type LedgerConfig struct {
	// CSVPath is the durable ledger store.
	CSVPath string `yaml:"csv_path" json:"csv_path"`

	// MaxHashDistance is the perceptual-hash distance at or below which an
	// incoming image is merged into an existing record as a near duplicate.
	MaxHashDistance int `yaml:"max_hash_distance" json:"max_hash_distance"`

	// PublicBaseURL, when set, turns a root-relative example path into a
	// clickable URL, e.g. https://github.com/user/repo/blob/main/
	PublicBaseURL string `yaml:"public_base_url" json:"public_base_url"`

	// DenylistExtra extends the built-in set of ad-infrastructure hosts
	// that are never accepted as advertiser attribution.
	DenylistExtra []string `yaml:"denylist_extra" json:"denylist_extra"`
}

// IngestConfig holds capture ingestion configuration
type IngestConfig struct {
	// OutputRoot is the capture tree root; example_rel paths are relative
	// to it and run summaries are written beneath it.
	OutputRoot string `yaml:"output_root" json:"output_root"`

	// Workers is the number of concurrent file readers. Ledger merges are
	// always sequential regardless of this value.
	Workers int `yaml:"workers" json:"workers"`
}

// ReportConfig holds XLSX export configuration
type ReportConfig struct {
	XLSXPath  string `yaml:"xlsx_path" json:"xlsx_path"`
	SheetName string `yaml:"sheet_name" json:"sheet_name"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Ledger: LedgerConfig{
			CSVPath:         "banner_master.csv",
			MaxHashDistance: 6,
		},
		Ingest: IngestConfig{
			OutputRoot: "banner_screenshots",
			Workers:    4,
		},
		Report: ReportConfig{
			XLSXPath:  "banner_tracking.xlsx",
			SheetName: "banners",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if path := os.Getenv("ADLEDGER_CSV_PATH"); path != "" {
		c.Ledger.CSVPath = path
	}
	if dist := os.Getenv("ADLEDGER_PHASH_DIST"); dist != "" {
		if val, err := strconv.Atoi(dist); err == nil && val >= 0 {
			c.Ledger.MaxHashDistance = val
		}
	}
	if base := os.Getenv("ADLEDGER_PUBLIC_BASE_URL"); base != "" {
		c.Ledger.PublicBaseURL = base
	}
	if extra := os.Getenv("ADLEDGER_DENYLIST_EXTRA"); extra != "" {
		for _, h := range strings.Split(extra, ",") {
			if h = strings.TrimSpace(h); h != "" {
				c.Ledger.DenylistExtra = append(c.Ledger.DenylistExtra, h)
			}
		}
	}
	if root := os.Getenv("ADLEDGER_OUTPUT_ROOT"); root != "" {
		c.Ingest.OutputRoot = root
	}
	if workers := os.Getenv("ADLEDGER_WORKERS"); workers != "" {
		if val, err := strconv.Atoi(workers); err == nil && val > 0 {
			c.Ingest.Workers = val
		}
	}
	if logLevel := os.Getenv("ADLEDGER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".adledger.yaml",
		".adledger.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "adledger", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "adledger", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".adledger.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Ledger.CSVPath == "" {
		errs = append(errs, errors.New("ledger csv path is required"))
	}
	if c.Ledger.MaxHashDistance < 0 {
		errs = append(errs, errors.New("max hash distance cannot be negative"))
	}
	if c.Ledger.MaxHashDistance > 64 {
		errs = append(errs, errors.New("max hash distance cannot exceed 64 (hash width)"))
	}

	if c.Ingest.OutputRoot == "" {
		errs = append(errs, errors.New("output root is required"))
	}
	if c.Ingest.Workers <= 0 {
		errs = append(errs, errors.New("ingest workers must be positive"))
	}

	if c.Report.XLSXPath == "" {
		errs = append(errs, errors.New("xlsx path is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if path, ok := flags["ledger"].(string); ok && path != "" {
		c.Ledger.CSVPath = path
	}
	if dist, ok := flags["threshold"].(int); ok && dist >= 0 {
		c.Ledger.MaxHashDistance = dist
	}
	if base, ok := flags["public-base-url"].(string); ok && base != "" {
		c.Ledger.PublicBaseURL = base
	}
	if root, ok := flags["output-root"].(string); ok && root != "" {
		c.Ingest.OutputRoot = root
	}
	if workers, ok := flags["workers"].(int); ok && workers > 0 {
		c.Ingest.Workers = workers
	}
	if path, ok := flags["xlsx"].(string); ok && path != "" {
		c.Report.XLSXPath = path
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".adledger.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
