package utils

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultConfigPath = "configs/dashboard.yaml"

type DashboardConfig struct {
	Application ApplicationYAMLConfig `yaml:"application"`
	Dataset     DatasetYAMLConfig     `yaml:"dataset"`
	Filters     FiltersYAMLConfig     `yaml:"filters"`
	Logging     LoggingYAMLConfig     `yaml:"logging"`
}

type ApplicationYAMLConfig struct {
	Name           string   `yaml:"name"`
	Port           string   `yaml:"port"`
	MetricsPort    string   `yaml:"metrics_port"`
	GRPCHealthPort string   `yaml:"grpc_health_port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DatasetYAMLConfig selects the record source.
type DatasetYAMLConfig struct {
	Source          string `yaml:"source"` // file, sqlite, sample
	Path            string `yaml:"path"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	Watch           bool   `yaml:"watch"`
	SampleSize      int    `yaml:"sample_size"`
	SampleSeed      int64  `yaml:"sample_seed"`
}

type FiltersYAMLConfig struct {
	DefaultLimit   int `yaml:"default_limit"`
	MaxLimit       int `yaml:"max_limit"`
	TopAttackTypes int `yaml:"top_attack_types"`
	TopCountries   int `yaml:"top_countries"`
}

type LoggingYAMLConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	FilePath   string `yaml:"file_path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

func LoadDashboardConfig(filename string) (*DashboardConfig, error) {
	if filename == "" {
		filename = DefaultConfigPath
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	var config DashboardConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config file %s: %w", filename, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate fills defaults in place and rejects settings that cannot work.
func (c *DashboardConfig) Validate() error {
	if c.Application.Name == "" {
		c.Application.Name = "cyber-dashboard"
	}
	if c.Application.Port == "" {
		c.Application.Port = "5001"
	}
	if c.Application.MetricsPort == "" {
		c.Application.MetricsPort = "9102"
	}

	c.Dataset.Source = strings.ToLower(strings.TrimSpace(c.Dataset.Source))
	switch c.Dataset.Source {
	case "":
		c.Dataset.Source = "sample"
	case "file", "sqlite", "sample":
	default:
		return fmt.Errorf("unknown dataset source %q", c.Dataset.Source)
	}
	if c.Dataset.Source != "sample" && c.Dataset.Path == "" {
		return fmt.Errorf("dataset path cannot be empty for source %q", c.Dataset.Source)
	}
	if c.Dataset.CacheTTLSeconds < 0 {
		c.Dataset.CacheTTLSeconds = 0
	}
	if c.Dataset.SampleSize <= 0 {
		c.Dataset.SampleSize = 1000
	}
	if c.Dataset.Watch && c.Dataset.Source == "sample" {
		c.Dataset.Watch = false
	}

	if c.Filters.DefaultLimit <= 0 {
		c.Filters.DefaultLimit = 100
	}
	if c.Filters.MaxLimit <= 0 {
		c.Filters.MaxLimit = 1000
	}
	if c.Filters.DefaultLimit > c.Filters.MaxLimit {
		return fmt.Errorf("default limit %d exceeds max limit %d", c.Filters.DefaultLimit, c.Filters.MaxLimit)
	}
	if c.Filters.TopAttackTypes <= 0 {
		c.Filters.TopAttackTypes = 8
	}
	if c.Filters.TopCountries <= 0 {
		c.Filters.TopCountries = 6
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "INFO"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = 100
	}
	if c.Logging.MaxBackups <= 0 {
		c.Logging.MaxBackups = 3
	}
	if c.Logging.MaxAgeDays <= 0 {
		c.Logging.MaxAgeDays = 28
	}

	return nil
}

// GetDefaultDashboardConfig returns a default DashboardConfig
func GetDefaultDashboardConfig() *DashboardConfig {
	return &DashboardConfig{
		Application: ApplicationYAMLConfig{
			Name:        "cyber-dashboard",
			Port:        "5001",
			MetricsPort: "9102",
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
			},
		},
		Dataset: DatasetYAMLConfig{
			Source:          "sample",
			CacheTTLSeconds: 300,
			SampleSize:      1000,
			SampleSeed:      42,
		},
		Filters: FiltersYAMLConfig{
			DefaultLimit:   100,
			MaxLimit:       1000,
			TopAttackTypes: 8,
			TopCountries:   6,
		},
		Logging: LoggingYAMLConfig{
			Level:      "INFO",
			Format:     "json",
			MaxSizeMB:  100,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}
