// Package ringbuf provides a lock-free single-producer single-consumer byte
// ring buffer. One goroutine may write while another reads, with no mutex:
// the head and tail indices are monotonic atomics and each side only
// advances its own.
package ringbuf

import (
	"errors"
	"io"
	"sync/atomic"
)

var (
	// ErrCapacity indicates a capacity that is not a power of two.
	ErrCapacity = errors.New("ringbuf: capacity must be a positive power of two")

	// ErrFull indicates a write larger than the free space.
	ErrFull = errors.New("ringbuf: buffer full")
)

// Ring is a fixed-capacity SPSC byte queue.
type Ring struct {
	buf  []byte
	mask uint64
	head atomic.Uint64 // next byte to read
	tail atomic.Uint64 // next byte to write
}

// New creates a Ring with the given capacity, which must be a power of two.
func New(capacity int) (*Ring, error) {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		return nil, ErrCapacity
	}
	return &Ring{
		buf:  make([]byte, capacity),
		mask: uint64(capacity - 1),
	}, nil
}

// Cap returns the total capacity.
func (r *Ring) Cap() int { return len(r.buf) }

// Len returns the number of unread bytes.
func (r *Ring) Len() int {
	return int(r.tail.Load() - r.head.Load())
}

// Free returns the writable space.
func (r *Ring) Free() int { return r.Cap() - r.Len() }

// Write copies p into the ring. If p does not fit in the free space,
// nothing is written and ErrFull is returned. Producer side only.
func (r *Ring) Write(p []byte) (int, error) {
	head := r.head.Load()
	tail := r.tail.Load()
	if len(p) > len(r.buf)-int(tail-head) {
		return 0, ErrFull
	}
	for i, b := range p {
		r.buf[(tail+uint64(i))&r.mask] = b
	}
	// Publish after the payload bytes are in place.
	r.tail.Store(tail + uint64(len(p)))
	return len(p), nil
}

// WriteByte writes a single byte. Producer side only.
func (r *Ring) WriteByte(b byte) error {
	_, err := r.Write([]byte{b})
	return err
}

// Read copies up to len(p) unread bytes into p. An empty ring returns
// io.EOF. Consumer side only.
func (r *Ring) Read(p []byte) (int, error) {
	head := r.head.Load()
	tail := r.tail.Load()
	avail := int(tail - head)
	if avail == 0 {
		return 0, io.EOF
	}
	n := min(avail, len(p))
	for i := 0; i < n; i++ {
		p[i] = r.buf[(head+uint64(i))&r.mask]
	}
	r.head.Store(head + uint64(n))
	return n, nil
}

// ReadByte reads a single byte. Consumer side only.
func (r *Ring) ReadByte() (byte, error) {
	var p [1]byte
	n, err := r.Read(p[:])
	if n == 0 {
		return 0, err
	}
	return p[0], nil
}
