package binstream

import "io"

// BytesSource is an in-memory byte source over a pre-existing slice. It
// exposes the byte-at-a-time surface the codec needs plus seeking, without
// any hidden buffering.
type BytesSource struct {
	B []byte // backing slice
	N int    // current read position
}

// NewBytesSource creates a BytesSource reading from b.
func NewBytesSource(b []byte) *BytesSource {
	return &BytesSource{B: b}
}

// Read implements the [io.Reader] interface.
func (s *BytesSource) Read(p []byte) (int, error) {
	if s.N >= len(s.B) {
		return 0, io.EOF
	}
	n := copy(p, s.B[s.N:])
	s.N += n
	return n, nil
}

// ReadByte implements the [io.ByteReader] interface.
func (s *BytesSource) ReadByte() (byte, error) {
	if s.N >= len(s.B) {
		return 0, io.EOF
	}
	b := s.B[s.N]
	s.N++
	return b, nil
}

// Seek implements the [io.Seeker] interface.
func (s *BytesSource) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(s.N) + offset
	case io.SeekEnd:
		abs = int64(len(s.B)) + offset
	default:
		return 0, ErrInvalidWhence
	}
	if abs < 0 {
		return 0, ErrInvalidSeek
	}
	s.N = int(abs)
	return abs, nil
}

// Reset rewinds to the start of the backing slice.
func (s *BytesSource) Reset() { s.N = 0 }

// Len returns the total length of the backing slice.
func (s *BytesSource) Len() int { return len(s.B) }

// Available returns the number of unread bytes.
func (s *BytesSource) Available() int {
	if n := len(s.B) - s.N; n > 0 {
		return n
	}
	return 0
}
