// Package retryfile wraps an os.File so that transient errors (interrupted
// syscalls, temporary resource exhaustion) are retried a bounded number of
// times before surfacing. The wrapper satisfies io.ReadWriteSeeker and
// io.Closer, so it plugs directly into a binstream Reader or Writer.
package retryfile

import (
	"errors"
	"io"
	"os"
	"syscall"
	"time"
)

// DefaultAttempts is the retry bound used by Open and Create.
const DefaultAttempts = 3

// File retries transient failures on each operation.
type File struct {
	f        *os.File
	attempts int
	backoff  time.Duration
}

// Wrap adorns an already-open file. attempts <= 1 disables retrying.
func Wrap(f *os.File, attempts int) *File {
	if attempts < 1 {
		attempts = 1
	}
	return &File{f: f, attempts: attempts, backoff: time.Millisecond}
}

// Open opens the named file read-only with the default retry bound.
func Open(name string) (*File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	return Wrap(f, DefaultAttempts), nil
}

// Create creates or truncates the named file with the default retry bound.
func Create(name string) (*File, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	return Wrap(f, DefaultAttempts), nil
}

// transient reports whether an error is worth retrying.
func transient(err error) bool {
	return errors.Is(err, syscall.EINTR) ||
		errors.Is(err, syscall.EAGAIN) ||
		errors.Is(err, syscall.EBUSY)
}

// retry runs op up to the attempt bound, sleeping briefly between
// transient failures.
func (f *File) retry(op func() (int, error)) (int, error) {
	var n int
	var err error
	for attempt := 0; attempt < f.attempts; attempt++ {
		n, err = op()
		if err == nil || !transient(err) {
			return n, err
		}
		time.Sleep(f.backoff << attempt)
	}
	return n, err
}

// Read implements io.Reader.
func (f *File) Read(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		n, err := f.retry(func() (int, error) { return f.f.Read(p[total:]) })
		total += n
		if err != nil {
			return total, err
		}
		if n > 0 {
			return total, nil
		}
	}
	return total, nil
}

// Write implements io.Writer.
func (f *File) Write(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		n, err := f.retry(func() (int, error) { return f.f.Write(p[total:]) })
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, io.ErrShortWrite
		}
	}
	return total, nil
}

// Seek implements io.Seeker.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	return f.f.Seek(offset, whence)
}

// Close closes the underlying file.
func (f *File) Close() error { return f.f.Close() }

// Name returns the underlying file's name.
func (f *File) Name() string { return f.f.Name() }
