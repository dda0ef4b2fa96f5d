package config

import (
	"fmt"

	"github.com/sdejongh/cpverify/pkg/hash"
	"github.com/sdejongh/cpverify/pkg/logging"
	"github.com/sdejongh/cpverify/pkg/models"
	"github.com/sdejongh/cpverify/pkg/output"
	"github.com/sdejongh/cpverify/pkg/ratelimit"
)

// Config represents the application configuration
type Config struct {
	Verify      VerifyConfig      `yaml:"verify"`
	Performance PerformanceConfig `yaml:"performance"`
	Output      OutputConfig      `yaml:"output"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// VerifyConfig holds integrity check settings
type VerifyConfig struct {
	Algorithm string `yaml:"algorithm"` // "blake3" or "sha256"
}

// PerformanceConfig holds performance-related settings
type PerformanceConfig struct {
	BufferSize     int    `yaml:"buffer_size"`
	HashWorkers    int    `yaml:"hash_workers"`    // 0 = one per CPU
	BandwidthLimit string `yaml:"bandwidth_limit"` // e.g. "10M", empty = unlimited
}

// OutputConfig holds output-related settings
type OutputConfig struct {
	Progress     bool   `yaml:"progress"`      // Progress bar while copying (terminal only)
	Quiet        bool   `yaml:"quiet"`         // Never show the progress bar
	Verbose      bool   `yaml:"verbose"`       // Timing checkpoints
	ReportFormat string `yaml:"report_format"` // "human", "json" or "yaml"
}

// LoggingConfig holds logging-related settings
type LoggingConfig struct {
	File       string `yaml:"file"`   // Empty disables logging
	Format     string `yaml:"format"` // "json" or "text"
	Level      string `yaml:"level"`  // "debug", "info", "warn", "error"
	MaxSize    int64  `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Verify: VerifyConfig{
			Algorithm: string(hash.BLAKE3),
		},
		Performance: PerformanceConfig{
			BufferSize:     65536,
			HashWorkers:    0,
			BandwidthLimit: "",
		},
		Output: OutputConfig{
			Progress:     false,
			Quiet:        false,
			Verbose:      false,
			ReportFormat: output.FormatHuman,
		},
		Logging: LoggingConfig{
			File:       "",
			Format:     string(logging.FormatText),
			Level:      "info",
			MaxSize:    10 * 1024 * 1024, // 10 MB
			MaxBackups: 5,
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := hash.ParseAlgorithm(c.Verify.Algorithm); err != nil {
		return &models.ValidationError{
			Field:   "verify.algorithm",
			Message: "must be 'blake3' or 'sha256'",
		}
	}

	if c.Performance.BufferSize < models.MinBufferSize {
		return &models.ValidationError{
			Field:   "performance.buffer_size",
			Message: fmt.Sprintf("must be at least %d bytes", models.MinBufferSize),
		}
	}

	if c.Performance.HashWorkers < 0 {
		return &models.ValidationError{
			Field:   "performance.hash_workers",
			Message: "must be 0 (one per CPU) or positive",
		}
	}

	if _, err := ratelimit.ParseRate(c.Performance.BandwidthLimit); err != nil {
		return &models.ValidationError{
			Field:   "performance.bandwidth_limit",
			Message: err.Error(),
		}
	}

	if !output.ValidReportFormat(c.Output.ReportFormat) {
		return &models.ValidationError{
			Field:   "output.report_format",
			Message: "must be 'human', 'json', or 'yaml'",
		}
	}

	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[c.Logging.Format] {
		return &models.ValidationError{
			Field:   "logging.format",
			Message: "must be 'json' or 'text'",
		}
	}

	if !logging.ValidLevel(c.Logging.Level) {
		return &models.ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		}
	}

	if c.Logging.MaxSize < 0 || c.Logging.MaxBackups < 0 {
		return &models.ValidationError{
			Field:   "logging.max_size",
			Message: "rotation settings must not be negative",
		}
	}

	return nil
}

// BandwidthBytes returns the parsed bandwidth limit in bytes per second
func (c *Config) BandwidthBytes() int64 {
	n, _ := ratelimit.ParseRate(c.Performance.BandwidthLimit)
	return n
}
