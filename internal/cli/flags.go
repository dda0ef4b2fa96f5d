package cli

import (
	"github.com/spf13/cobra"
)

// GlobalFlags holds global flag values
type GlobalFlags struct {
	ConfigFile string
	Verbose    bool
	Quiet      bool
}

var globalFlags GlobalFlags

// AddGlobalFlags adds global flags to the root command
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&globalFlags.ConfigFile,
		"config",
		"",
		"config file (default is $XDG_CONFIG_HOME/cpverify/config.yaml)",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Verbose,
		"verbose",
		"v",
		false,
		"print timing checkpoints and warnings to stderr",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Quiet,
		"quiet",
		"q",
		false,
		"never show the progress bar",
	)
}

// CopyFlags holds the flags shared by the copy and check commands
type CopyFlags struct {
	Algorithm    string
	Bandwidth    string
	Progress     bool
	BufferSize   int
	HashWorkers  int
	Report       string
	ReportFormat string
	// Logging flags
	LogFile   string
	LogFormat string
	LogLevel  string
}

var copyFlags CopyFlags

// addVerifyFlags registers the flags every verifying command understands
func addVerifyFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&copyFlags.Algorithm, "algorithm", "blake3", "hash algorithm: blake3, sha256")
	cmd.Flags().IntVar(&copyFlags.BufferSize, "buffer-size", 65536, "read buffer size in bytes")
	cmd.Flags().IntVar(&copyFlags.HashWorkers, "hash-workers", 0, "files hashed in parallel (default: one per CPU)")
	cmd.Flags().StringVar(&copyFlags.Report, "report", "", "write the verification report to file")
	cmd.Flags().StringVar(&copyFlags.ReportFormat, "report-format", "human", "report format: human, json, yaml")

	// Logging flags
	cmd.Flags().StringVar(&copyFlags.LogFile, "log-file", "", "write logs to file (enables logging)")
	cmd.Flags().StringVar(&copyFlags.LogFormat, "log-format", "text", "log format: text, json")
	cmd.Flags().StringVar(&copyFlags.LogLevel, "log-level", "info", "log level: debug, info, warn, error")
}

// addCopyFlags registers the flags that only make sense while copying
func addCopyFlags(cmd *cobra.Command) {
	addVerifyFlags(cmd)
	cmd.Flags().StringVarP(&copyFlags.Bandwidth, "bandwidth", "b", "", "bandwidth limit (e.g., \"10M\", \"1G\")")
	cmd.Flags().BoolVar(&copyFlags.Progress, "progress", false, "show a progress bar while copying (terminal only)")
}
