// Package verify copies files and checks that every copy hashes the same as
// its source.
//
// Source hashing runs on a background goroutine while the calling goroutine
// copies files one at a time; the two are joined before destinations are
// hashed and compared. Mismatches are reported but do not fail the run.
package verify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/sdejongh/cpverify/pkg/hash"
	"github.com/sdejongh/cpverify/pkg/logging"
	"github.com/sdejongh/cpverify/pkg/models"
	"github.com/sdejongh/cpverify/pkg/output"
	"github.com/sdejongh/cpverify/pkg/resolve"
)

// Hasher hashes a batch of files into a basename keyed mapping
type Hasher interface {
	Hash(ctx context.Context, paths []string) (hash.Mapping, error)
}

// Copier copies one file to one destination path
type Copier interface {
	Copy(ctx context.Context, src, dst string) (int64, error)
}

// Engine orchestrates a copy-and-verify run
type Engine struct {
	hasher    Hasher
	copier    Copier
	logger    logging.Logger
	diag      io.Writer
	stopwatch *output.Stopwatch
	progress  output.Progress
	now       func() time.Time
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the structured logger
func WithLogger(logger logging.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithDiagnostics sets where mismatch lines are written (stderr by default)
func WithDiagnostics(w io.Writer) Option {
	return func(e *Engine) {
		e.diag = w
	}
}

// WithStopwatch enables timing checkpoints and warnings
func WithStopwatch(sw *output.Stopwatch) Option {
	return func(e *Engine) {
		e.stopwatch = sw
	}
}

// WithProgress reports copy progress
func WithProgress(p output.Progress) Option {
	return func(e *Engine) {
		if p != nil {
			e.progress = p
		}
	}
}

// NewEngine creates an engine
func NewEngine(hasher Hasher, copier Copier, opts ...Option) *Engine {
	e := &Engine{
		hasher:   hasher,
		copier:   copier,
		logger:   logging.NewNullLogger(),
		diag:     os.Stderr,
		progress: output.NoopProgress{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// hashResult is what the background hashing goroutine hands back
type hashResult struct {
	mapping hash.Mapping
	err     error
}

// Run resolves sources, copies them to destination and verifies every copy.
// Integrity mismatches are printed and returned in the report; only
// validation, I/O and join failures produce an error.
func (e *Engine) Run(ctx context.Context, sources []string, destination string) (*models.VerifyReport, error) {
	e.stopwatch.Checkpoint("start")

	state, err := e.prepare(ctx, sources, destination)
	if err != nil || state.plan.Len() == 0 {
		return state.report, err
	}

	e.stopwatch.Checkpoint("before hash/copy")

	sourceHashes := e.hashInBackground(ctx, state.plan.Sources())

	destinations, copyErr := e.copyAll(ctx, state)
	e.stopwatch.Checkpoint("after copy")

	// Always join, even when copying failed, so the goroutine never outlives Run.
	result := <-sourceHashes

	if copyErr != nil {
		state.logger.Error(ctx, "copy failed", copyErr, nil)
		return nil, copyErr
	}
	if result.err != nil {
		state.logger.Error(ctx, "source hashing failed", result.err, nil)
		return nil, result.err
	}

	e.stopwatch.Checkpoint("before destination hashing")
	destHashes, err := e.hasher.Hash(ctx, destinations)
	if err != nil {
		state.logger.Error(ctx, "destination hashing failed", err, nil)
		return nil, fmt.Errorf("failed to hash destinations: %w", err)
	}
	e.stopwatch.Checkpoint("after destination hashing")

	return e.conclude(ctx, state, result.mapping, destHashes)
}

// Check verifies destinations left by an earlier copy without writing
// anything. Sources and destinations resolve exactly as in Run; a missing
// destination file is an I/O error.
func (e *Engine) Check(ctx context.Context, sources []string, destination string) (*models.VerifyReport, error) {
	e.stopwatch.Checkpoint("start")

	state, err := e.prepare(ctx, sources, destination)
	if err != nil || state.plan.Len() == 0 {
		return state.report, err
	}

	e.stopwatch.Checkpoint("before hashing")

	sourceHashes := e.hashInBackground(ctx, state.plan.Sources())
	destHashes, destErr := e.hasher.Hash(ctx, state.plan.Destinations())
	e.stopwatch.Checkpoint("after destination hashing")

	result := <-sourceHashes

	if destErr != nil {
		state.logger.Error(ctx, "destination hashing failed", destErr, nil)
		return nil, fmt.Errorf("failed to hash destinations: %w", destErr)
	}
	if result.err != nil {
		state.logger.Error(ctx, "source hashing failed", result.err, nil)
		return nil, result.err
	}

	state.report.Operations = state.plan.Operations
	return e.conclude(ctx, state, result.mapping, destHashes)
}

// runState carries the state shared by the phases of a single Run or Check
type runState struct {
	logger logging.Logger
	plan   *models.CopyPlan
	report *models.VerifyReport
}

// prepare resolves sources and plans destinations. An empty plan is a
// completed no-op and comes back with a finished report.
func (e *Engine) prepare(ctx context.Context, sources []string, destination string) (*runState, error) {
	runID := uuid.New().String()
	logger := e.logger.WithFields(logging.Fields{"run_id": runID})

	resolved := resolve.Collect(sources)
	destIsDir := resolve.IsDir(destination)

	logger.Info(ctx, "resolved sources", logging.Fields{
		"specs":       len(sources),
		"files":       len(resolved),
		"destination": destination,
		"dest_is_dir": destIsDir,
	})

	if len(resolved) > 1 && !destIsDir {
		logger.Error(ctx, "destination is ambiguous", ErrAmbiguousDestination, logging.Fields{"files": len(resolved)})
		return &runState{}, ErrAmbiguousDestination
	}

	plan := models.NewCopyPlan(resolved, destination, destIsDir)

	report := &models.VerifyReport{
		RunID:       runID,
		Sources:     sources,
		Destination: destination,
		Algorithm:   e.algorithm(),
		StartTime:   e.now(),
	}
	report.Stats.FilesResolved = plan.Len()

	if plan.Len() == 0 {
		logger.Warn(ctx, "no source files matched", nil)
		e.stopwatch.Warnf("no source files matched")
		report.Finish(e.now())
		e.stopwatch.Checkpoint("done")
		return &runState{logger: logger, plan: plan, report: report}, nil
	}

	for _, name := range plan.DuplicateNames() {
		// Hashes are keyed by basename, so these sources shadow each other.
		logger.Warn(ctx, "several sources share a file name", logging.Fields{"name": name})
		e.stopwatch.Warnf("several sources share the file name %s; only one of them is verified", name)
	}

	return &runState{logger: logger, plan: plan, report: report}, nil
}

// conclude compares both mappings, prints mismatches and finishes the report
func (e *Engine) conclude(ctx context.Context, r *runState, sourceHashes, destHashes hash.Mapping) (*models.VerifyReport, error) {
	report := r.report

	report.Mismatches = compare(r.plan, sourceHashes, destHashes, &report.Stats)
	for _, m := range report.Mismatches {
		r.logger.Warn(ctx, "hash mismatch", logging.Fields{
			"name":        m.Name,
			"source_hash": m.SourceHash,
			"dest_hash":   m.DestHash,
		})
	}

	if err := output.WriteMismatches(e.diag, report.MismatchNames()); err != nil {
		return nil, fmt.Errorf("failed to report mismatches: %w", err)
	}

	report.Finish(e.now())
	r.logger.Info(ctx, "verification complete", logging.Fields{
		"status":     string(report.Status),
		"copied":     report.Stats.FilesCopied,
		"bytes":      report.Stats.BytesCopied,
		"mismatches": report.Stats.FilesMismatched,
		"duration":   report.Duration.String(),
	})
	e.stopwatch.Checkpoint("done")

	return report, nil
}

// hashInBackground hashes paths on a new goroutine. The returned channel
// always receives exactly one result. A panic or Goexit on that goroutine, or
// a panic reported by one of the hasher's workers, becomes a JoinError.
func (e *Engine) hashInBackground(ctx context.Context, paths []string) <-chan hashResult {
	results := make(chan hashResult, 1)

	go func() {
		delivered := false
		defer func() {
			if delivered {
				return
			}
			results <- hashResult{err: &JoinError{Value: recover()}}
		}()

		mapping, err := e.hasher.Hash(ctx, paths)
		var panicErr *hash.PanicError
		if errors.As(err, &panicErr) {
			err = &JoinError{Value: panicErr.Value}
		} else if err != nil {
			err = fmt.Errorf("failed to hash sources: %w", err)
		}
		e.stopwatch.Checkpoint("after source hashing")

		results <- hashResult{mapping: mapping, err: err}
		delivered = true
	}()

	return results
}

// copyAll copies every planned file in order and stops at the first failure.
// It returns the destinations actually written.
func (e *Engine) copyAll(ctx context.Context, r *runState) ([]string, error) {
	e.progress.Start(totalSize(r.plan))
	defer e.progress.Finish()

	report := r.report
	destinations := make([]string, 0, r.plan.Len())
	for _, op := range r.plan.Operations {
		n, err := e.copier.Copy(ctx, op.Source, op.Dest)
		if err != nil {
			return destinations, fmt.Errorf("failed to copy %s to %s: %w", op.Source, op.Dest, err)
		}

		destinations = append(destinations, op.Dest)
		report.Operations = append(report.Operations, op)
		report.Stats.FilesCopied++
		report.Stats.BytesCopied += n

		r.logger.Debug(ctx, "copied file", logging.Fields{
			"source": op.Source,
			"dest":   op.Dest,
			"bytes":  n,
		})
	}

	return destinations, nil
}

// compare checks each distinct source name against its destination hash,
// in plan order. A destination that was copied but not hashed is a bug.
func compare(plan *models.CopyPlan, sources, dests hash.Mapping, stats *models.Statistics) []models.Mismatch {
	var mismatches []models.Mismatch
	seen := make(map[string]bool, plan.Len())

	for _, op := range plan.Operations {
		name := op.Name()
		if seen[name] {
			continue
		}
		seen[name] = true

		sourceHash, ok := sources[name]
		if !ok {
			panic(fmt.Sprintf("verify: no source hash for %s", name))
		}
		destHash, ok := dests[filepath.Base(op.Dest)]
		if !ok {
			panic(fmt.Sprintf("verify: no destination hash for %s", op.Dest))
		}

		stats.FilesVerified++
		if sourceHash != destHash {
			mismatches = append(mismatches, models.Mismatch{
				Name:       name,
				SourceHash: string(sourceHash),
				DestHash:   string(destHash),
			})
		}
	}

	return mismatches
}

// algorithm returns the hasher's algorithm name when it exposes one
func (e *Engine) algorithm() string {
	if a, ok := e.hasher.(interface{ Algorithm() hash.Algorithm }); ok {
		return string(a.Algorithm())
	}
	return ""
}

// totalSize sums source sizes for progress reporting; unreadable files count as zero
func totalSize(plan *models.CopyPlan) int64 {
	var total int64
	for _, op := range plan.Operations {
		if info, err := os.Stat(op.Source); err == nil {
			total += info.Size()
		}
	}
	return total
}
