package output

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Stopwatch prints elapsed-time checkpoints when verbose output is enabled.
// A nil *Stopwatch is valid and prints nothing. Checkpoint is safe for
// concurrent use.
type Stopwatch struct {
	mu     sync.Mutex
	writer io.Writer
	start  time.Time
	now    func() time.Time
}

// NewStopwatch starts a stopwatch writing to w
func NewStopwatch(w io.Writer) *Stopwatch {
	s := &Stopwatch{writer: w, now: time.Now}
	s.start = s.now()
	return s
}

// Checkpoint prints the time elapsed since the stopwatch started
func (s *Stopwatch) Checkpoint(label string) {
	if s == nil || s.writer == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	elapsed := s.now().Sub(s.start)
	fmt.Fprintf(s.writer, "[%12s] %s\n", elapsed.Round(time.Microsecond), label)
}

// Elapsed returns the time since the stopwatch started
func (s *Stopwatch) Elapsed() time.Duration {
	if s == nil {
		return 0
	}
	return s.now().Sub(s.start)
}

// Warnf prints a warning line alongside the checkpoints
func (s *Stopwatch) Warnf(format string, args ...interface{}) {
	if s == nil || s.writer == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.writer, "warning: %s\n", fmt.Sprintf(format, args...))
}
