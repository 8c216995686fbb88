// Package bench performs timed sequential chunked I/O passes against a single
// file and reports throughput in megabytes per second.
package bench

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"
)

// ErrCancelled is returned by a pass that observed a cancelled Token. It marks
// cooperative termination, not a failure; callers must not surface it as an
// error to users.
var ErrCancelled = errors.New("benchmark pass cancelled")

// DefaultChunkSize balances syscall overhead against cancellation response
// granularity: worst-case cancel latency is one chunk's I/O time.
const DefaultChunkSize = 8 * 1024 * 1024

// Compile-time interface check.
var _ Runner = (*ChunkedRunner)(nil)

// Runner abstracts the two timed passes so the sequencer can be tested with a
// mock in place of real disk I/O.
type Runner interface {
	// WriteFile writes sizeBytes to path and returns the write throughput.
	WriteFile(path string, sizeBytes int64, tok *Token) (float64, error)
	// ReadFile reads up to sizeBytes from path and returns the read throughput.
	ReadFile(path string, sizeBytes int64, tok *Token) (float64, error)
}

// ChunkedRunner implements Runner with fixed-size sequential chunks. A single
// payload buffer is generated at construction and shared by all write passes;
// a ChunkedRunner must not be used for concurrent passes.
type ChunkedRunner struct {
	chunkSize int64
	payload   []byte
}

// NewChunkedRunner returns a ChunkedRunner using the given chunk size.
// A non-positive chunkSize selects DefaultChunkSize.
func NewChunkedRunner(chunkSize int64) *ChunkedRunner {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	payload := make([]byte, chunkSize)
	// Pseudo-random payload so the pass is not trivially compressible by the
	// filesystem. Reproducibility does not matter here.
	rand.Read(payload)
	return &ChunkedRunner{chunkSize: chunkSize, payload: payload}
}

// WriteFile creates (or truncates) path and writes sizeBytes sequentially in
// chunks, polling tok before each chunk. After the final chunk the file is
// synced to storage so the elapsed time covers committed, not buffered, data.
// The clock runs from just before the file is opened to just after the sync
// returns. On cancellation the file is left partial; cleanup belongs to the
// caller. The file handle is released on every exit path.
func (r *ChunkedRunner) WriteFile(path string, sizeBytes int64, tok *Token) (float64, error) {
	if sizeBytes <= 0 {
		return 0, fmt.Errorf("write %s: size must be positive, got %d", path, sizeBytes)
	}

	start := time.Now()

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open %s for writing: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var written int64
	for written < sizeBytes {
		if tok.IsCancelled() {
			return 0, ErrCancelled
		}

		n := r.chunkSize
		if remaining := sizeBytes - written; remaining < n {
			n = remaining
		}

		wrote, err := f.Write(r.payload[:n])
		written += int64(wrote)
		if err != nil {
			return 0, fmt.Errorf("write %s at offset %d: %w", path, written, err)
		}
		if int64(wrote) != n {
			return 0, fmt.Errorf("short write on %s at offset %d: wrote %d bytes, expected %d", path, written, wrote, n)
		}
	}

	if err := f.Sync(); err != nil {
		return 0, fmt.Errorf("sync %s after writing %d bytes: %w", path, written, err)
	}

	return throughputMBps(sizeBytes, time.Since(start)), nil
}

// ReadFile opens path and reads sequentially in chunks until sizeBytes have
// been consumed or a read returns zero bytes. A file shorter than sizeBytes is
// tolerated: the pass completes over the actual elapsed time. The throughput
// numerator is always the nominal sizeBytes, matching the write-side
// convention. tok is polled before each chunk.
func (r *ChunkedRunner) ReadFile(path string, sizeBytes int64, tok *Token) (float64, error) {
	if sizeBytes <= 0 {
		return 0, fmt.Errorf("read %s: size must be positive, got %d", path, sizeBytes)
	}

	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s for reading: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, r.chunkSize)
	var consumed int64
	for consumed < sizeBytes {
		if tok.IsCancelled() {
			return 0, ErrCancelled
		}

		want := r.chunkSize
		if remaining := sizeBytes - consumed; remaining < want {
			want = remaining
		}

		n, err := f.Read(buf[:want])
		consumed += int64(n)
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read %s at offset %d: %w", path, consumed, err)
		}
		if n == 0 {
			break
		}
	}

	return throughputMBps(sizeBytes, time.Since(start)), nil
}

// throughputMBps converts nominal bytes over elapsed time to MB/s.
func throughputMBps(sizeBytes int64, elapsed time.Duration) float64 {
	secs := elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(sizeBytes) / (1024 * 1024) / secs
}
