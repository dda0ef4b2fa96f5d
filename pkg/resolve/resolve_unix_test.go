//go:build unix

package resolve

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestSpecialFilesAreNotSources(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "data.txt")
	writeFile(t, file, "data")
	fifo := filepath.Join(dir, "pipe")
	require.NoError(t, unix.Mkfifo(fifo, 0644))

	t.Run("Literal", func(t *testing.T) {
		assert.Empty(t, Collect([]string{fifo}))
	})

	t.Run("Glob", func(t *testing.T) {
		assert.Equal(t, []string{file}, Collect([]string{filepath.Join(dir, "*")}))
	})

	t.Run("Directory", func(t *testing.T) {
		assert.Equal(t, []string{file}, Collect([]string{dir}))
	})
}
