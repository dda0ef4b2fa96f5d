package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/cpverify/internal/platform"
	"github.com/sdejongh/cpverify/pkg/config"
)

// splitArgs separates the source specs from the destination argument
func splitArgs(args []string) ([]string, string, error) {
	if len(args) < 2 {
		return nil, "", fmt.Errorf("need at least one source and a destination")
	}

	last := len(args) - 1
	destination := platform.NormalizePath(args[last])
	if err := platform.ValidatePath(destination); err != nil {
		return nil, "", err
	}

	return args[:last], destination, nil
}

// loadConfig loads configuration from file or returns default
func loadConfig() (*config.Config, error) {
	if globalFlags.ConfigFile != "" {
		return config.LoadFromFile(globalFlags.ConfigFile)
	}
	return config.LoadDefault()
}

// applyFlagsToConfig overrides config values with the flags set on the
// command line and validates the result
func applyFlagsToConfig(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("algorithm") {
		cfg.Verify.Algorithm = copyFlags.Algorithm
	}
	if flags.Changed("buffer-size") {
		cfg.Performance.BufferSize = copyFlags.BufferSize
	}
	if flags.Changed("hash-workers") {
		cfg.Performance.HashWorkers = copyFlags.HashWorkers
	}
	if flags.Changed("bandwidth") {
		cfg.Performance.BandwidthLimit = copyFlags.Bandwidth
	}
	if flags.Changed("progress") {
		cfg.Output.Progress = copyFlags.Progress
	}
	if flags.Changed("report-format") {
		cfg.Output.ReportFormat = copyFlags.ReportFormat
	}

	// Logging
	if flags.Changed("log-file") {
		cfg.Logging.File = copyFlags.LogFile
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = copyFlags.LogFormat
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = copyFlags.LogLevel
	}

	// Quiet wins over any progress setting
	if globalFlags.Quiet {
		cfg.Output.Quiet = true
		cfg.Output.Progress = false
	}
	if globalFlags.Verbose {
		cfg.Output.Verbose = true
	}

	return cfg.Validate()
}
