package models

import (
	"time"
)

// VerifyReport represents the results of a copy-and-verify run
type VerifyReport struct {
	RunID       string   `json:"run_id" yaml:"run_id"`
	Sources     []string `json:"sources" yaml:"sources"`
	Destination string   `json:"destination" yaml:"destination"`
	Algorithm   string   `json:"algorithm" yaml:"algorithm"`

	StartTime time.Time     `json:"start_time" yaml:"start_time"`
	EndTime   time.Time     `json:"end_time" yaml:"end_time"`
	Duration  time.Duration `json:"duration" yaml:"duration"`

	Stats Statistics `json:"stats" yaml:"stats"`

	// Operations performed, in copy order
	Operations []CopyOperation `json:"operations" yaml:"operations"`

	// Mismatches in the order their sources were resolved
	Mismatches []Mismatch `json:"mismatches" yaml:"mismatches"`

	Status RunStatus `json:"status" yaml:"status"`
}

// Statistics holds run metrics
type Statistics struct {
	FilesResolved   int   `json:"files_resolved" yaml:"files_resolved"`
	FilesCopied     int   `json:"files_copied" yaml:"files_copied"`
	FilesVerified   int   `json:"files_verified" yaml:"files_verified"`
	FilesMismatched int   `json:"files_mismatched" yaml:"files_mismatched"`
	BytesCopied     int64 `json:"bytes_copied" yaml:"bytes_copied"`
}

// Mismatch records a file whose destination hash differs from its source
type Mismatch struct {
	Name       string `json:"name" yaml:"name"`
	SourceHash string `json:"source_hash" yaml:"source_hash"`
	DestHash   string `json:"dest_hash" yaml:"dest_hash"`
}

// RunStatus represents the overall result
type RunStatus string

const (
	// StatusSuccess indicates every destination matched its source
	StatusSuccess RunStatus = "success"
	// StatusMismatch indicates at least one integrity mismatch was reported
	StatusMismatch RunStatus = "mismatch"
)

// ExitCode returns the process exit code for the status.
// Mismatches are reported, not treated as failures.
func (s RunStatus) ExitCode() int {
	switch s {
	case StatusSuccess, StatusMismatch:
		return 0
	default:
		return 1
	}
}

// Finish stamps the end time and derives the status from the mismatches
func (r *VerifyReport) Finish(end time.Time) {
	r.EndTime = end
	r.Duration = end.Sub(r.StartTime)
	r.Stats.FilesMismatched = len(r.Mismatches)
	if len(r.Mismatches) > 0 {
		r.Status = StatusMismatch
	} else {
		r.Status = StatusSuccess
	}
}

// MismatchNames returns the basenames of all mismatched files
func (r *VerifyReport) MismatchNames() []string {
	names := make([]string, len(r.Mismatches))
	for i, m := range r.Mismatches {
		names[i] = m.Name
	}
	return names
}
