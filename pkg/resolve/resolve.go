// Package resolve expands source specifications into plain file paths.
//
// A specification is classified once, as an existing directory, an existing
// file or a glob pattern, and each class produces a lazy sequence of paths.
// Resolution is best effort: a specification that cannot be read or matches
// nothing contributes no paths and never fails the run.
package resolve

import (
	"iter"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Kind identifies how a specification was classified
type Kind string

const (
	// KindDir is an existing directory whose immediate files are used
	KindDir Kind = "dir"
	// KindLiteral is an existing regular file
	KindLiteral Kind = "literal"
	// KindGlob is a pattern expanded against the filesystem
	KindGlob Kind = "glob"
	// KindEmpty contributes nothing
	KindEmpty Kind = "empty"
)

// Source is one classified specification.
// Paths may only be ranged over once.
type Source interface {
	Kind() Kind
	Spec() string
	Paths() iter.Seq[string]
}

// DirSource lists the regular files directly inside a directory
type DirSource struct {
	spec    string
	entries []os.DirEntry
}

// Kind returns KindDir
func (s *DirSource) Kind() Kind { return KindDir }

// Spec returns the source argument as given
func (s *DirSource) Spec() string { return s.spec }

// Paths yields each entry that is still a regular file when it is reached.
// Entries that vanished or cannot be stat'ed are skipped.
func (s *DirSource) Paths() iter.Seq[string] {
	return func(yield func(string) bool) {
		entries := s.entries
		s.entries = nil
		for _, entry := range entries {
			path := filepath.Join(s.spec, entry.Name())
			if !isRegular(path) {
				continue
			}
			if !yield(path) {
				return
			}
		}
	}
}

// LiteralSource is a single existing file
type LiteralSource struct {
	spec string
	done bool
}

// Kind returns KindLiteral
func (s *LiteralSource) Kind() Kind { return KindLiteral }

// Spec returns the source argument as given
func (s *LiteralSource) Spec() string { return s.spec }

// Paths yields the file path once
func (s *LiteralSource) Paths() iter.Seq[string] {
	return func(yield func(string) bool) {
		if s.done {
			return
		}
		s.done = true
		yield(s.spec)
	}
}

// GlobSource is a pattern, possibly using ** for any depth
type GlobSource struct {
	spec    string
	matches []string
}

// Kind returns KindGlob
func (s *GlobSource) Kind() Kind { return KindGlob }

// Spec returns the pattern as given
func (s *GlobSource) Spec() string { return s.spec }

// Paths yields the matches that are regular files. Directories, FIFOs and
// devices are skipped.
func (s *GlobSource) Paths() iter.Seq[string] {
	return func(yield func(string) bool) {
		matches := s.matches
		s.matches = nil
		for _, match := range matches {
			if !isRegular(match) {
				continue
			}
			if !yield(match) {
				return
			}
		}
	}
}

// EmptySource is a specification that resolved to nothing
type EmptySource struct {
	spec string
}

// Kind returns KindEmpty
func (s EmptySource) Kind() Kind { return KindEmpty }

// Spec returns the source argument as given
func (s EmptySource) Spec() string { return s.spec }

// Paths yields nothing
func (s EmptySource) Paths() iter.Seq[string] {
	return func(func(string) bool) {}
}

// Classify inspects spec and returns the matching Source variant.
// Directories and files are checked first; anything else is a glob.
func Classify(spec string) Source {
	info, err := os.Stat(spec)
	if err == nil {
		if info.IsDir() {
			entries, err := os.ReadDir(spec)
			if err != nil {
				return EmptySource{spec: spec}
			}
			return &DirSource{spec: spec, entries: entries}
		}
		if info.Mode().IsRegular() {
			return &LiteralSource{spec: spec}
		}
	}

	matches, err := doublestar.FilepathGlob(spec)
	if err != nil || len(matches) == 0 {
		return EmptySource{spec: spec}
	}
	return &GlobSource{spec: spec, matches: matches}
}

// Paths concatenates the sequences of every specification in order
func Paths(specs []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, spec := range specs {
			for path := range Classify(spec).Paths() {
				if !yield(path) {
					return
				}
			}
		}
	}
}

// Collect resolves specs into a slice
func Collect(specs []string) []string {
	var paths []string
	for path := range Paths(specs) {
		paths = append(paths, path)
	}
	return paths
}

// IsDir reports whether path currently names a directory
func IsDir(path string) bool {
	return isDir(path)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isRegular(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
