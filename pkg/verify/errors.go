package verify

import (
	"errors"
	"fmt"
)

// ErrAmbiguousDestination is returned when several sources resolve but the
// destination is not an existing directory. Nothing has been written.
var ErrAmbiguousDestination = errors.New("copying multiple files to one path; probable data loss")

// JoinError reports that the background hashing goroutine ended without
// delivering a result, either by panicking or by calling runtime.Goexit.
// It is kept distinct from I/O failures.
type JoinError struct {
	// Value is the recovered panic value, nil for runtime.Goexit
	Value interface{}
}

func (e *JoinError) Error() string {
	if e.Value == nil {
		return "thread join failed: source hashing exited without a result"
	}
	return fmt.Sprintf("thread join failed: source hashing panicked: %v", e.Value)
}
