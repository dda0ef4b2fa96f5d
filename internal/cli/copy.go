package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdejongh/cpverify/pkg/config"
	"github.com/sdejongh/cpverify/pkg/hash"
	"github.com/sdejongh/cpverify/pkg/logging"
	"github.com/sdejongh/cpverify/pkg/models"
	"github.com/sdejongh/cpverify/pkg/output"
	"github.com/sdejongh/cpverify/pkg/ratelimit"
	"github.com/sdejongh/cpverify/pkg/storage"
	"github.com/sdejongh/cpverify/pkg/verify"
)

// NewRootCommand creates the cpverify command tree. The root command
// itself performs the copy.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cpverify [flags] SOURCE... DESTINATION",
		Short: "Copy files and verify every copy by content hash",
		Long: `cpverify copies files to a destination and then checks that every copy
has the same content hash as its source.

A SOURCE may be a directory (its regular files are copied, without
recursion), a file, or a glob pattern ("**" matches across directories).
Sources that do not resolve are skipped.

When DESTINATION is an existing directory each file is copied into it
under its own name; otherwise DESTINATION is the path of a single copy.
The name of every file whose copy does not match is printed to stderr.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate),
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCopy,
	}

	AddGlobalFlags(cmd)
	addCopyFlags(cmd)

	cmd.AddCommand(NewCheckCommand())
	cmd.AddCommand(NewConfigCommand())
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

func runCopy(cmd *cobra.Command, args []string) error {
	return runVerify(cmd, args, (*verify.Engine).Run)
}

// runVerify is the common body of the copy and check commands
func runVerify(cmd *cobra.Command, args []string, run func(*verify.Engine, context.Context, []string, string) (*models.VerifyReport, error)) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	sources, destination, err := splitArgs(args)
	if err != nil {
		return err
	}

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with command-line flags
	if err := applyFlagsToConfig(cmd, cfg); err != nil {
		return err
	}

	// Create logger
	logger, err := createLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	engine, err := newEngine(cmd, cfg, logger)
	if err != nil {
		return err
	}

	report, err := run(engine, ctx, sources, destination)
	if err != nil {
		return err
	}

	// Write the report if requested:
	// - --report writes to a file
	// - an explicit --report-format alone writes to stdout
	if copyFlags.Report != "" {
		if err := output.WriteReportFile(report, copyFlags.Report, cfg.Output.ReportFormat); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	} else if cmd.Flags().Changed("report-format") {
		if err := output.WriteReport(cmd.OutOrStdout(), report, cfg.Output.ReportFormat); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	if code := report.Status.ExitCode(); code != 0 {
		return fmt.Errorf("run ended with status %s", report.Status)
	}
	return nil
}

// newEngine wires the hasher, copier, progress bar and stopwatch described by cfg
func newEngine(cmd *cobra.Command, cfg *config.Config, logger logging.Logger) (*verify.Engine, error) {
	algorithm, err := hash.ParseAlgorithm(cfg.Verify.Algorithm)
	if err != nil {
		return nil, err
	}

	hasher, err := hash.New(algorithm, cfg.Performance.BufferSize, cfg.Performance.HashWorkers)
	if err != nil {
		return nil, fmt.Errorf("failed to create hasher: %w", err)
	}

	stderr := cmd.ErrOrStderr()
	progress := output.NewProgress(stderr, cfg.Output.Progress && !cfg.Output.Quiet)

	copier := storage.NewCopier(cfg.Performance.BufferSize)
	copier.SetLimiter(ratelimit.NewLimiter(cfg.BandwidthBytes()))
	copier.SetProgressCallback(progress.Add)

	opts := []verify.Option{
		verify.WithLogger(logger),
		verify.WithDiagnostics(stderr),
		verify.WithProgress(progress),
	}
	if cfg.Output.Verbose {
		opts = append(opts, verify.WithStopwatch(output.NewStopwatch(stderr)))
	}

	return verify.NewEngine(hasher, copier, opts...), nil
}

// createLogger creates a logger based on configuration
func createLogger(cfg config.LoggingConfig) (logging.Logger, error) {
	// If no log file specified, return null logger
	if cfg.File == "" {
		return logging.NewNullLogger(), nil
	}

	format := logging.FormatText
	if cfg.Format == string(logging.FormatJSON) {
		format = logging.FormatJSON
	}

	return logging.NewFileLogger(logging.FileLoggerConfig{
		Path:       cfg.File,
		Format:     format,
		Level:      logging.ParseLevel(cfg.Level),
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
	})
}
