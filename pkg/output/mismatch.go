package output

import (
	"fmt"
	"io"
)

// WriteMismatches prints one line per mismatched file, containing only its name
func WriteMismatches(w io.Writer, names []string) error {
	for _, name := range names {
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
	}
	return nil
}
