package binstream

import "io"

// BytesSink is an in-memory byte sink over a pre-allocated slice. It will
// not grow the slice; a write past the end writes what fits and returns
// io.ErrShortWrite.
type BytesSink struct {
	B []byte // destination slice
	N int    // current write position
}

// NewBytesSink creates a BytesSink writing into p's full capacity.
func NewBytesSink(p []byte) *BytesSink {
	return &BytesSink{B: p[:cap(p)]}
}

// Write implements the io.Writer interface.
func (s *BytesSink) Write(p []byte) (int, error) {
	if s.N >= len(s.B) {
		return 0, io.ErrShortWrite
	}
	n := copy(s.B[s.N:], p)
	s.N += n
	if n < len(p) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

// WriteByte implements the io.ByteWriter interface.
func (s *BytesSink) WriteByte(c byte) error {
	if s.N >= len(s.B) {
		return io.ErrShortWrite
	}
	s.B[s.N] = c
	s.N++
	return nil
}

// Reset allows the underlying byte slice to be reused.
func (s *BytesSink) Reset() { s.N = 0 }

// Len returns the number of bytes written.
func (s *BytesSink) Len() int { return s.N }

// Available returns the number of bytes left before the sink is full.
func (s *BytesSink) Available() int { return len(s.B) - s.N }

// Bytes returns a view of the written data.
func (s *BytesSink) Bytes() []byte { return s.B[:s.N] }
