package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const appDir = "timesheet"

type Config struct {
	// Database settings
	Database DatabaseConfig `yaml:"database"`

	// Project and overlap settings
	Projects ProjectsConfig `yaml:"projects"`

	// Timesheet naming
	Timesheet TimesheetConfig `yaml:"timesheet"`

	// Invoice settings
	Invoice InvoiceConfig `yaml:"invoice"`

	// Logging
	Log LogConfig `yaml:"log"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"` // Path to SQLite database
}

type ProjectsConfig struct {
	IgnoreEmployeeTimeOverlap bool        `yaml:"ignore_employee_time_overlap"`
	OverlapRetry              RetryConfig `yaml:"overlap_retry"`
}

// RetryConfig bounds the shift-and-retry loop for overlapping logs
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Step        time.Duration `yaml:"step"` // e.g. "10m"
}

type TimesheetConfig struct {
	NumberPrefix string `yaml:"number_prefix"` // e.g. "TS" gives TS-2026-00001
}

type InvoiceConfig struct {
	NumberPrefix    string `yaml:"number_prefix"`    // e.g. "ACC-SINV"
	DefaultCurrency string `yaml:"default_currency"` // used when the customer has none
	DefaultItem     string `yaml:"default_item"`     // item code for billed time
	DefaultDueDays  int    `yaml:"default_due_days"` // Days until invoice due
	OutputDir       string `yaml:"output_dir"`       // Directory for generated PDFs
}

type LogConfig struct {
	Level  string `yaml:"level"`  // trace, debug, info, warn, error
	Pretty bool   `yaml:"pretty"` // human readable console output
	File   string `yaml:"file"`   // optional file, appended to
}

// DefaultConfigPath returns ~/.config/timesheet/config.yaml
func DefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir unavailable
		return filepath.Join(".", ".config", appDir, "config.yaml")
	}
	return filepath.Join(homeDir, ".config", appDir, "config.yaml")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return &Config{
		Database: DatabaseConfig{
			Path: filepath.Join(homeDir, ".config", appDir, "timesheet.db"),
		},
		Projects: ProjectsConfig{
			IgnoreEmployeeTimeOverlap: false,
			OverlapRetry: RetryConfig{
				MaxAttempts: 50,
				Step:        10 * time.Minute,
			},
		},
		Timesheet: TimesheetConfig{
			NumberPrefix: "TS",
		},
		Invoice: InvoiceConfig{
			NumberPrefix:    "ACC-SINV",
			DefaultCurrency: "USD",
			DefaultItem:     "Billable Hours",
			DefaultDueDays:  30,
			OutputDir:       filepath.Join(homeDir, ".config", appDir, "invoices"),
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}

// Load loads config from the given path, or returns defaults if file doesn't exist
func Load(path string) (*Config, error) {
	// If file doesn't exist, return defaults
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Unset keys keep their defaults
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads from the default config path
func LoadDefault() (*Config, error) {
	return Load(DefaultConfigPath())
}

// LoadEnv reads KEY=value pairs from a .env file next to the config file
// into the environment. Variables that are already set keep their value.
func LoadEnv(configPath string) error {
	path := filepath.Join(filepath.Dir(configPath), ".env")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Validate returns an error for settings no component can work with
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Projects.OverlapRetry.MaxAttempts < 1 {
		return fmt.Errorf("projects.overlap_retry.max_attempts must be at least 1")
	}
	if c.Projects.OverlapRetry.Step <= 0 {
		return fmt.Errorf("projects.overlap_retry.step must be positive")
	}
	if c.Invoice.DefaultDueDays < 0 {
		return fmt.Errorf("invoice.default_due_days cannot be negative")
	}
	return nil
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	// Create parent directories if they don't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// EnsureDirectories creates the database, invoice output and log directories
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(filepath.Dir(c.Database.Path), 0700); err != nil {
		return err
	}

	if c.Invoice.OutputDir != "" {
		if err := os.MkdirAll(c.Invoice.OutputDir, 0755); err != nil {
			return err
		}
	}

	if c.Log.File != "" {
		if err := os.MkdirAll(filepath.Dir(c.Log.File), 0755); err != nil {
			return err
		}
	}

	return nil
}
