package output

import (
	"io"
	"os"
	"sync"

	"github.com/cheggaaa/pb/v3"
	"golang.org/x/term"
)

// Progress receives byte counts while files are copied
type Progress interface {
	// Start begins tracking a transfer of total bytes
	Start(total int64)

	// Add records n more bytes transferred
	Add(n int64)

	// Finish stops tracking and clears any display
	Finish()
}

// NoopProgress discards progress updates
type NoopProgress struct{}

// Start does nothing
func (NoopProgress) Start(total int64) {}

// Add does nothing
func (NoopProgress) Add(n int64) {}

// Finish does nothing
func (NoopProgress) Finish() {}

// ProgressBar renders a byte progress bar on a terminal
type ProgressBar struct {
	writer io.Writer
	mu     sync.Mutex
	bar    *pb.ProgressBar
}

// NewProgressBar creates a bar drawn on w
func NewProgressBar(w io.Writer) *ProgressBar {
	return &ProgressBar{writer: w}
}

// Start creates and starts the underlying bar
func (p *ProgressBar) Start(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.bar = pb.New64(total).
		SetTemplate(pb.Full).
		SetWriter(p.writer).
		Set(pb.Bytes, true).
		Start()
}

// Add advances the bar
func (p *ProgressBar) Add(n int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		p.bar.Add64(n)
	}
}

// Finish completes the bar
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		p.bar.Finish()
		p.bar = nil
	}
}

// IsTerminal reports whether w is a terminal
func IsTerminal(w io.Writer) bool {
	if file, ok := w.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	return false
}

// NewProgress returns a ProgressBar when enabled and w is a terminal,
// otherwise a NoopProgress
func NewProgress(w io.Writer, enabled bool) Progress {
	if enabled && IsTerminal(w) {
		return NewProgressBar(w)
	}
	return NoopProgress{}
}
