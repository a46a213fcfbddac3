// Package fifo provides an unbounded first-in first-out byte stream backed
// by a linked list of fixed-size chunks. Writes append to the tail chunk,
// reads consume from the head chunk, and drained chunks are recycled
// through a pool. It satisfies the byte source and sink interfaces the
// binstream engine reads from and writes to.
package fifo

import "io"

const chunkSize = 4096

type chunk struct {
	buf  [chunkSize]byte
	r, w int
	next *chunk
}

// Stream is a linked-buffer FIFO. Not safe for concurrent use.
type Stream struct {
	head *chunk
	tail *chunk
	free *chunk // single-chunk recycle slot
	size int
}

// New creates an empty Stream.
func New() *Stream { return &Stream{} }

// Len returns the number of unread bytes.
func (s *Stream) Len() int { return s.size }

func (s *Stream) grab() *chunk {
	if c := s.free; c != nil {
		s.free = nil
		c.r, c.w, c.next = 0, 0, nil
		return c
	}
	return &chunk{}
}

func (s *Stream) writable() *chunk {
	if s.tail == nil {
		s.head = s.grab()
		s.tail = s.head
	} else if s.tail.w == chunkSize {
		c := s.grab()
		s.tail.next = c
		s.tail = c
	}
	return s.tail
}

// Write appends p to the stream. It never fails.
func (s *Stream) Write(p []byte) (int, error) {
	for rem := p; len(rem) > 0; {
		c := s.writable()
		n := copy(c.buf[c.w:], rem)
		c.w += n
		s.size += n
		rem = rem[n:]
	}
	return len(p), nil
}

// WriteByte appends a single byte.
func (s *Stream) WriteByte(b byte) error {
	c := s.writable()
	c.buf[c.w] = b
	c.w++
	s.size++
	return nil
}

// Read consumes up to len(p) bytes from the front of the stream. An empty
// stream returns io.EOF.
func (s *Stream) Read(p []byte) (int, error) {
	if s.size == 0 {
		return 0, io.EOF
	}
	total := 0
	for total < len(p) && s.head != nil {
		c := s.head
		n := copy(p[total:], c.buf[c.r:c.w])
		c.r += n
		total += n
		s.size -= n
		if c.r == c.w {
			s.retire()
			if c.r < chunkSize {
				break // tail chunk not yet full, nothing further buffered
			}
		}
	}
	return total, nil
}

// ReadByte consumes a single byte.
func (s *Stream) ReadByte() (byte, error) {
	if s.size == 0 {
		return 0, io.EOF
	}
	c := s.head
	b := c.buf[c.r]
	c.r++
	s.size--
	if c.r == c.w {
		s.retire()
	}
	return b, nil
}

// retire drops the head chunk if it is fully consumed, keeping one chunk
// aside for reuse.
func (s *Stream) retire() {
	c := s.head
	if c == nil || c.r != c.w {
		return
	}
	if c == s.tail {
		// Sole chunk: rewind in place instead of unlinking.
		c.r, c.w = 0, 0
		return
	}
	s.head = c.next
	if s.free == nil {
		s.free = c
	}
}
