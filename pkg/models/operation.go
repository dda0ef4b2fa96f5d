package models

import (
	"path/filepath"
)

// MinBufferSize is the smallest read buffer used for copying and hashing
const MinBufferSize = 4096

// CopyOperation pairs a resolved source file with its destination path
type CopyOperation struct {
	Source string `json:"source" yaml:"source"`
	Dest   string `json:"dest" yaml:"dest"`
}

// Name returns the basename used to key hashes for this operation
func (op CopyOperation) Name() string {
	return filepath.Base(op.Source)
}

// CopyPlan is the ordered list of copies for a single run
type CopyPlan struct {
	Destination    string
	DestinationDir bool
	Operations     []CopyOperation
}

// NewCopyPlan computes the destination of every source.
// When destIsDir is set each source lands in destination/<basename>,
// otherwise every source targets the literal destination path.
func NewCopyPlan(sources []string, destination string, destIsDir bool) *CopyPlan {
	plan := &CopyPlan{
		Destination:    destination,
		DestinationDir: destIsDir,
		Operations:     make([]CopyOperation, 0, len(sources)),
	}

	for _, src := range sources {
		dest := destination
		if destIsDir {
			dest = filepath.Join(destination, filepath.Base(src))
		}
		plan.Operations = append(plan.Operations, CopyOperation{Source: src, Dest: dest})
	}

	return plan
}

// Sources returns the source paths in plan order
func (p *CopyPlan) Sources() []string {
	paths := make([]string, len(p.Operations))
	for i, op := range p.Operations {
		paths[i] = op.Source
	}
	return paths
}

// Destinations returns the destination paths in plan order
func (p *CopyPlan) Destinations() []string {
	paths := make([]string, len(p.Operations))
	for i, op := range p.Operations {
		paths[i] = op.Dest
	}
	return paths
}

// Len returns the number of planned copies
func (p *CopyPlan) Len() int {
	return len(p.Operations)
}

// DuplicateNames returns basenames shared by more than one source.
// Hashes are keyed by basename, so these files shadow each other.
func (p *CopyPlan) DuplicateNames() []string {
	seen := make(map[string]int, len(p.Operations))
	var dups []string
	for _, op := range p.Operations {
		name := op.Name()
		seen[name]++
		if seen[name] == 2 {
			dups = append(dups, name)
		}
	}
	return dups
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
