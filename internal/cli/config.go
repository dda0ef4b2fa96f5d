package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sdejongh/cpverify/pkg/config"
)

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View or create the cpverify configuration file.`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigInitCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			bandwidth := "unlimited"
			if bps := cfg.BandwidthBytes(); bps > 0 {
				bandwidth = humanize.IBytes(uint64(bps)) + "/s"
			}
			workers := "one per CPU"
			if cfg.Performance.HashWorkers > 0 {
				workers = fmt.Sprintf("%d", cfg.Performance.HashWorkers)
			}
			logFile := cfg.Logging.File
			if logFile == "" {
				logFile = "(disabled)"
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Algorithm: %s\n", cfg.Verify.Algorithm)
			fmt.Fprintf(w, "Buffer Size: %s\n", humanize.IBytes(uint64(cfg.Performance.BufferSize)))
			fmt.Fprintf(w, "Hash Workers: %s\n", workers)
			fmt.Fprintf(w, "Bandwidth Limit: %s\n", bandwidth)
			fmt.Fprintf(w, "Progress: %t\n", cfg.Output.Progress)
			fmt.Fprintf(w, "Report Format: %s\n", cfg.Output.ReportFormat)
			fmt.Fprintf(w, "Log File: %s\n", logFile)
			fmt.Fprintf(w, "Log Format: %s\n", cfg.Logging.Format)
			fmt.Fprintf(w, "Log Level: %s\n", cfg.Logging.Level)

			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := globalFlags.ConfigFile
			if path == "" {
				var err error
				if path, err = config.DefaultConfigPath(); err != nil {
					return err
				}
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to access configuration file: %w", err)
			}

			cfg := config.Default()
			if err := config.SaveToFile(cfg, path); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created at: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing configuration file")

	return cmd
}
