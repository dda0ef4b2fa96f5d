package hash

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	gohash "hash"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/zeebo/blake3"
	"golang.org/x/sync/errgroup"

	"github.com/sdejongh/cpverify/pkg/models"
)

// Algorithm names a supported content hash
type Algorithm string

const (
	// BLAKE3 is the default algorithm
	BLAKE3 Algorithm = "blake3"
	// SHA256 uses crypto/sha256
	SHA256 Algorithm = "sha256"
)

// Digest is a hex encoded content hash
type Digest string

// Mapping maps a file basename to its digest.
// Two paths sharing a basename occupy the same key; the later path wins.
type Mapping map[string]Digest

// ParseAlgorithm validates an algorithm name
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(name) {
	case BLAKE3, SHA256:
		return Algorithm(name), nil
	default:
		return "", &models.ValidationError{
			Field:   "algorithm",
			Message: fmt.Sprintf("unsupported hash algorithm %q (use: blake3, sha256)", name),
		}
	}
}

// PanicError reports that hashing a file panicked inside a worker goroutine
type PanicError struct {
	Path  string
	Value interface{}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic while hashing %s: %v", e.Path, e.Value)
}

// Hasher computes content hashes for batches of files in parallel
type Hasher struct {
	algorithm  Algorithm
	bufferPool *sync.Pool
	workers    int
	hashFile   func(ctx context.Context, path string) (Digest, error)
}

// New creates a hasher. workers <= 0 sizes the pool to GOMAXPROCS.
func New(algorithm Algorithm, bufferSize, workers int) (*Hasher, error) {
	if _, err := ParseAlgorithm(string(algorithm)); err != nil {
		return nil, err
	}
	if bufferSize < models.MinBufferSize {
		bufferSize = models.MinBufferSize
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	h := &Hasher{
		algorithm: algorithm,
		workers:   workers,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
	}
	h.hashFile = h.HashFile
	return h, nil
}

// Algorithm returns the configured algorithm
func (h *Hasher) Algorithm() Algorithm {
	return h.algorithm
}

// Hash hashes every path concurrently and keys the results by basename.
// The first read failure cancels the batch and no mapping is returned.
// A worker that panics fails the batch with a *PanicError.
func (h *Hasher) Hash(ctx context.Context, paths []string) (Mapping, error) {
	digests := make([]Digest, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.workers)

	for i, path := range paths {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = &PanicError{Path: path, Value: r}
				}
			}()

			digest, err := h.hashFile(gctx, path)
			if err != nil {
				return err
			}
			digests[i] = digest
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	mapping := make(Mapping, len(paths))
	for i, path := range paths {
		mapping[filepath.Base(path)] = digests[i]
	}
	return mapping, nil
}

// HashFile streams a single file through the configured hash
func (h *Hasher) HashFile(ctx context.Context, path string) (Digest, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hasher := h.newHash()

	bufPtr := h.bufferPool.Get().(*[]byte)
	buffer := *bufPtr
	defer h.bufferPool.Put(bufPtr)

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		n, err := file.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
	}

	return Digest(hex.EncodeToString(hasher.Sum(nil))), nil
}

func (h *Hasher) newHash() gohash.Hash {
	if h.algorithm == SHA256 {
		return sha256.New()
	}
	return blake3.New()
}
