// Package source opens and writes index files on disk, handling gzip
// framing and the single-writer lock, and fetches indexes from CPAN mirrors.
package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/klauspost/compress/gzip"
)

const lockPollInterval = 50 * time.Millisecond

var gzipMagic = []byte{0x1f, 0x8b}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r *readCloser) Close() error {
	var errs []error
	for _, c := range r.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Open opens an index file for reading. Gzip content is detected by its
// magic bytes and decompressed transparently.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}

	r, closer, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	closers := []io.Closer{f}
	if closer != nil {
		closers = []io.Closer{closer, f}
	}
	return &readCloser{Reader: r, closers: closers}, nil
}

// NewReader wraps r, decompressing it when it starts with a gzip header. The
// returned closer is non-nil only when a decompressor was added.
func NewReader(r io.Reader) (io.Reader, io.Closer, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(len(gzipMagic))
	if err != nil || magic[0] != gzipMagic[0] || magic[1] != gzipMagic[1] {
		// short or empty input is read as plain text
		return br, nil, nil
	}

	gz, err := gzip.NewReader(br)
	if err != nil {
		return nil, nil, fmt.Errorf("decompressing index: %w", err)
	}
	return gz, gz, nil
}

// Writer writes an index to a temporary file and moves it into place on
// Close. A ".gz" destination is gzip-compressed. The destination's lock file
// is held from Create until Close or Abort.
type Writer struct {
	path    string
	tmpPath string
	file    *os.File
	gz      *gzip.Writer
	w       io.Writer
	lock    *flock.Flock
	done    bool
}

// Create locks path and opens a temporary file next to it. It waits up to
// lockTimeout for another writer to finish.
func Create(path string, lockTimeout time.Duration) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating index dir: %w", err)
	}

	lock, err := acquireLock(path+".lock", lockTimeout)
	if err != nil {
		return nil, err
	}

	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("creating index file: %w", err)
	}

	w := &Writer{path: path, tmpPath: tmpPath, file: f, w: f, lock: lock}
	if strings.HasSuffix(path, ".gz") {
		w.gz = gzip.NewWriter(f)
		w.w = w.gz
	}
	return w, nil
}

func acquireLock(lockPath string, timeout time.Duration) (*flock.Flock, error) {
	l := flock.New(lockPath)
	deadline := time.Now().Add(timeout)
	for {
		locked, err := l.TryLock()
		if err != nil {
			return nil, fmt.Errorf("cannot acquire index lock: %w", err)
		}
		if locked {
			return l, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("another writer holds the index lock (%s)", lockPath)
		}
		time.Sleep(lockPollInterval)
	}
}

func (w *Writer) Write(p []byte) (int, error) {
	return w.w.Write(p)
}

// Close flushes the data, renames the temporary file over the destination
// and releases the lock.
func (w *Writer) Close() error {
	if w.done {
		return nil
	}
	w.done = true
	defer w.lock.Unlock()

	if w.gz != nil {
		if err := w.gz.Close(); err != nil {
			w.file.Close()
			os.Remove(w.tmpPath)
			return fmt.Errorf("compressing index: %w", err)
		}
	}
	if err := w.file.Close(); err != nil {
		os.Remove(w.tmpPath)
		return fmt.Errorf("writing index: %w", err)
	}
	if err := os.Rename(w.tmpPath, w.path); err != nil {
		os.Remove(w.tmpPath)
		return fmt.Errorf("renaming index: %w", err)
	}
	return nil
}

// Abort discards the temporary file and releases the lock. The destination
// is left untouched.
func (w *Writer) Abort() error {
	if w.done {
		return nil
	}
	w.done = true
	defer w.lock.Unlock()

	w.file.Close()
	return os.Remove(w.tmpPath)
}
