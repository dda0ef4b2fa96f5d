package resolve

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func collectSorted(t *testing.T, specs ...string) []string {
	t.Helper()
	paths := Collect(specs)
	sort.Strings(paths)
	return paths
}

func TestClassify(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	writeFile(t, file, "hello")

	tests := []struct {
		name string
		spec string
		kind Kind
	}{
		{"Directory", dir, KindDir},
		{"File", file, KindLiteral},
		{"Glob", filepath.Join(dir, "*.txt"), KindGlob},
		{"NoMatch", filepath.Join(dir, "*.csv"), KindEmpty},
		{"Missing", filepath.Join(dir, "missing.txt"), KindEmpty},
		{"InvalidPattern", filepath.Join(dir, "[a-"), KindEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := Classify(tt.spec)
			assert.Equal(t, tt.kind, src.Kind())
			assert.Equal(t, tt.spec, src.Spec())
		})
	}
}

func TestDirSourceIsNotRecursive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "a")
	writeFile(t, filepath.Join(dir, "b.txt"), "b")
	writeFile(t, filepath.Join(dir, "nested", "c.txt"), "c")

	paths := collectSorted(t, dir)

	assert.Equal(t, []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.txt"),
	}, paths)
}

func TestDirSourceSkipsVanishedEntries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "keep.txt"), "keep")
	writeFile(t, filepath.Join(dir, "gone.txt"), "gone")

	src := Classify(dir)
	require.Equal(t, KindDir, src.Kind())

	// Listing already happened; remove an entry before iterating.
	require.NoError(t, os.Remove(filepath.Join(dir, "gone.txt")))

	var paths []string
	for p := range src.Paths() {
		paths = append(paths, p)
	}
	assert.Equal(t, []string{filepath.Join(dir, "keep.txt")}, paths)
}

func TestLiteralSourceYieldsOnce(t *testing.T) {
	file := filepath.Join(t.TempDir(), "one.txt")
	writeFile(t, file, "1")

	src := Classify(file)
	var first, second []string
	for p := range src.Paths() {
		first = append(first, p)
	}
	for p := range src.Paths() {
		second = append(second, p)
	}

	assert.Equal(t, []string{file}, first)
	assert.Empty(t, second, "sequence must not restart")
}

func TestGlobSource(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.log"), "a")
	writeFile(t, filepath.Join(dir, "b.log"), "b")
	writeFile(t, filepath.Join(dir, "c.txt"), "c")
	writeFile(t, filepath.Join(dir, "deep", "d.log"), "d")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir.log"), 0755))

	t.Run("SingleLevel", func(t *testing.T) {
		paths := collectSorted(t, filepath.Join(dir, "*.log"))
		assert.Equal(t, []string{
			filepath.Join(dir, "a.log"),
			filepath.Join(dir, "b.log"),
		}, paths, "directories matching the pattern are dropped")
	})

	t.Run("DoubleStar", func(t *testing.T) {
		paths := collectSorted(t, filepath.Join(dir, "**", "*.log"))
		assert.Equal(t, []string{
			filepath.Join(dir, "a.log"),
			filepath.Join(dir, "b.log"),
			filepath.Join(dir, "deep", "d.log"),
		}, paths)
	})
}

func TestPathsIsSourceMajor(t *testing.T) {
	first := t.TempDir()
	second := t.TempDir()
	writeFile(t, filepath.Join(first, "x.txt"), "x")
	lone := filepath.Join(second, "lone.txt")
	writeFile(t, lone, "lone")

	paths := Collect([]string{lone, first})

	assert.Equal(t, []string{lone, filepath.Join(first, "x.txt")}, paths)
}

func TestPathsSkipsUnresolvable(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "real.txt")
	writeFile(t, file, "real")

	paths := Collect([]string{
		filepath.Join(dir, "does-not-exist"),
		filepath.Join(dir, "*.nothing"),
		filepath.Join(dir, "[bad"),
		file,
	})

	assert.Equal(t, []string{file}, paths)
}

func TestPathsEarlyStop(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"1", "2", "3"} {
		writeFile(t, filepath.Join(dir, name), name)
	}

	count := 0
	for range Paths([]string{dir}) {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestIsDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	writeFile(t, file, "f")

	assert.True(t, IsDir(dir))
	assert.False(t, IsDir(file))
	assert.False(t, IsDir(filepath.Join(dir, "missing")))
}
