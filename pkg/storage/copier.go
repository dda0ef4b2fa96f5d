package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/sdejongh/cpverify/pkg/models"
	"github.com/sdejongh/cpverify/pkg/ratelimit"
)

// ErrSameFile is returned when the destination is the source file itself
var ErrSameFile = errors.New("source and destination are the same file")

// DefaultBufferSize is used when no buffer size is configured
const DefaultBufferSize = 64 * 1024

// Copier streams file contents from a source path to a destination path.
// Transfers always go through a plain read/write loop: platform shortcuts
// such as copy_file_range or sendfile are never used.
type Copier struct {
	bufferSize int
	bufferPool *sync.Pool
	limiter    *ratelimit.Limiter
	onProgress func(n int64) // Optional, called with bytes written per chunk
}

// NewCopier creates a copier with pooled buffers of bufferSize bytes
func NewCopier(bufferSize int) *Copier {
	if bufferSize < models.MinBufferSize {
		bufferSize = models.MinBufferSize
	}
	return &Copier{
		bufferSize: bufferSize,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
	}
}

// SetLimiter throttles reads from the source; nil disables limiting
func (c *Copier) SetLimiter(limiter *ratelimit.Limiter) {
	c.limiter = limiter
}

// SetProgressCallback sets a callback receiving the size of every chunk copied
func (c *Copier) SetProgressCallback(callback func(n int64)) {
	c.onProgress = callback
}

// Copy writes the contents of src to dst, creating or truncating dst.
// The parent directory of dst must already exist.
func (c *Copier) Copy(ctx context.Context, src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	// Creating dst truncates it, which would destroy a source that is dst.
	if err := checkDistinct(in, dst); err != nil {
		return 0, err
	}

	out, err := os.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("failed to create destination: %w", err)
	}

	bufPtr := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(bufPtr)

	reader := &copyReader{
		ctx:        ctx,
		reader:     ratelimit.NewReader(ctx, in, c.limiter),
		onProgress: c.onProgress,
	}
	writer := bufio.NewWriterSize(out, c.bufferSize)

	written, err := io.CopyBuffer(writeOnly{writer}, reader, *bufPtr)
	if err != nil {
		out.Close()
		return written, fmt.Errorf("failed to copy %s: %w", src, err)
	}

	if err := writer.Flush(); err != nil {
		out.Close()
		return written, fmt.Errorf("failed to write destination: %w", err)
	}

	if err := out.Close(); err != nil {
		return written, fmt.Errorf("failed to close destination: %w", err)
	}

	return written, nil
}

// checkDistinct fails when dst names the already opened source file,
// including through a hard link or a symlink
func checkDistinct(src *os.File, dst string) error {
	dstInfo, err := os.Stat(dst)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat destination: %w", err)
	}

	srcInfo, err := src.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source: %w", err)
	}

	if os.SameFile(srcInfo, dstInfo) {
		return &fs.PathError{Op: "copy", Path: dst, Err: ErrSameFile}
	}
	return nil
}

// copyReader hides WriterTo from io.CopyBuffer and reports progress
type copyReader struct {
	ctx        context.Context
	reader     io.Reader
	onProgress func(n int64)
}

func (r *copyReader) Read(p []byte) (int, error) {
	select {
	case <-r.ctx.Done():
		return 0, r.ctx.Err()
	default:
	}

	n, err := r.reader.Read(p)
	if n > 0 && r.onProgress != nil {
		r.onProgress(int64(n))
	}
	return n, err
}

// writeOnly hides ReaderFrom from io.CopyBuffer
type writeOnly struct {
	w io.Writer
}

func (w writeOnly) Write(p []byte) (int, error) {
	return w.w.Write(p)
}
