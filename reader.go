package binstream

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

// Reader deserializes typed values, strings, and fixed-layout records from a
// byte source. It tracks the first error encountered; after an error, all
// subsequent read operations become no-ops and Err exposes the cause.
//
// The Reader performs no buffering beyond the bytes a single value needs,
// so external seeking between calls never invalidates read-ahead. It is not
// safe for concurrent use.
type Reader struct {
	textConfig

	r     io.ReadSeeker
	br    io.ByteReader
	count int64 // total bytes read
	err   error // first error encountered. Subsequent reads become no-ops.
	order binary.ByteOrder
}

// NewReader creates a Reader around r with the default configuration:
// little-endian, UTF-8, LF.
func NewReader(r io.Reader) (*Reader, error) {
	if r == nil {
		return nil, ErrNilIO
	}
	rs := ForwardSeeker(r)
	br, ok := rs.(io.ByteReader)
	if !ok {
		br = oneByteReader{rs}
	}
	return &Reader{
		textConfig: newTextConfig(),
		r:          rs,
		br:         br,
		order:      Order,
	}, nil
}

// ByteOrder returns the active byte order.
func (r *Reader) ByteOrder() binary.ByteOrder { return r.order }

// SetByteOrder switches the byte order for subsequent operations.
func (r *Reader) SetByteOrder(order binary.ByteOrder) { r.order = order }

// WithByteOrder sets a byte order and returns the Reader for chaining.
func (r *Reader) WithByteOrder(order binary.ByteOrder) *Reader {
	r.order = order
	return r
}

// Close closes the underlying byte source if it implements io.Closer.
func (r *Reader) Close() error {
	if c, ok := r.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Count returns the total number of bytes consumed.
func (r *Reader) Count() int64 { return r.count }

// Err returns the first error encountered, if any.
func (r *Reader) Err() error { return r.err }

// IsEOF reports whether the latched error is a clean end of source.
func (r *Reader) IsEOF() bool { return r.err == io.EOF }

// setError records the first non-nil error.
func (r *Reader) setError(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// Read implements the io.Reader interface.
func (r *Reader) Read(p []byte) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	n, err := r.r.Read(p)
	r.count += int64(n)
	r.setError(err)
	return n, r.err
}

// Seek moves the read position. Sources without native seek support get
// forward-only seeking by discarding bytes.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	if r.err != nil {
		return r.count, r.err
	}
	pos, err := r.r.Seek(offset, whence)
	r.count = pos
	r.setError(err)
	return pos, err
}

// readByte reads one byte, mapping a clean end of source to io.EOF.
func (r *Reader) readByte() (byte, error) {
	b, err := r.br.ReadByte()
	if err == nil {
		r.count++
	}
	return b, err
}

// readFull reads exactly n bytes of a multi-byte value. A source that ends
// partway (or before the value starts) yields ErrTruncated.
func (r *Reader) readFull(n int) []byte {
	if r.err != nil {
		return nil
	}
	buf := make([]byte, n)
	got, err := io.ReadFull(r.r, buf)
	r.count += int64(got)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			err = ErrTruncated
		}
		r.err = err
		return nil
	}
	return buf
}

// ReadBytes reads n raw bytes.
func (r *Reader) ReadBytes(n int) []byte {
	if n < 0 {
		r.setError(fmt.Errorf("%w: negative byte count %d", ErrInvalidArgument, n))
		return nil
	}
	if n == 0 {
		return nil
	}
	return r.readFull(n)
}

// Align discards bytes until the read position is a multiple of n.
func (r *Reader) Align(n int) {
	if r.err != nil || n <= 1 {
		return
	}
	skip := Roundup(r.count, int64(n)) - r.count
	got, err := Discard(r.r, skip)
	r.count += got
	r.setError(err)
}

// --- Primitive Read Operations ---

func (r *Reader) ReadBool(dest *bool) {
	if r.err != nil {
		return
	}
	b, err := r.readByte()
	if err != nil {
		r.err = err
		return
	}
	*dest = b != 0
}

func (r *Reader) ReadByte() (byte, error) {
	if r.err != nil {
		return 0, r.err
	}
	b, err := r.readByte()
	r.setError(err)
	return b, err
}

func (r *Reader) ReadUint8(dest *uint8) {
	if r.err != nil {
		return
	}
	b, err := r.readByte()
	if err != nil {
		r.err = err
		return
	}
	*dest = b
}

func (r *Reader) ReadUint16(dest *uint16) {
	buf := r.readFull(2)
	if r.err == nil {
		*dest = r.order.Uint16(buf)
	}
}

func (r *Reader) ReadUint32(dest *uint32) {
	buf := r.readFull(4)
	if r.err == nil {
		*dest = r.order.Uint32(buf)
	}
}

func (r *Reader) ReadUint64(dest *uint64) {
	buf := r.readFull(8)
	if r.err == nil {
		*dest = r.order.Uint64(buf)
	}
}

func (r *Reader) ReadInt8(dest *int8) {
	if r.err != nil {
		return
	}
	b, err := r.readByte()
	if err != nil {
		r.err = err
		return
	}
	*dest = int8(b)
}

func (r *Reader) ReadInt16(dest *int16) {
	buf := r.readFull(2)
	if r.err == nil {
		*dest = int16(r.order.Uint16(buf))
	}
}

func (r *Reader) ReadInt32(dest *int32) {
	buf := r.readFull(4)
	if r.err == nil {
		*dest = int32(r.order.Uint32(buf))
	}
}

func (r *Reader) ReadInt64(dest *int64) {
	buf := r.readFull(8)
	if r.err == nil {
		*dest = int64(r.order.Uint64(buf))
	}
}

func (r *Reader) ReadFloat32(dest *float32) {
	buf := r.readFull(4)
	if r.err == nil {
		*dest = getFloat32(r.order, buf)
	}
}

func (r *Reader) ReadFloat64(dest *float64) {
	buf := r.readFull(8)
	if r.err == nil {
		*dest = getFloat64(r.order, buf)
	}
}

// ReadDecimal reads the four 32-bit components of a Decimal128 in their
// declared order and validates the flags word.
func (r *Reader) ReadDecimal(dest *Decimal128) {
	var d Decimal128
	r.ReadUint32(&d.Lo)
	r.ReadUint32(&d.Mid)
	r.ReadUint32(&d.Hi)
	r.ReadUint32(&d.Flags)
	if r.err != nil {
		return
	}
	if err := d.Validate(); err != nil {
		r.err = err
		return
	}
	*dest = d
}

// ReadTime reads an absolute time: a varint kind discriminant followed by
// an 8-byte tick count in the active byte order. Kinds beyond Local are
// rejected with ErrInvalidData.
func (r *Reader) ReadTime(dest *time.Time) {
	var kind uint32
	r.ReadUvarint32(&kind)
	if r.err != nil {
		return
	}
	if !TimeKind(kind).valid() {
		r.err = fmt.Errorf("%w: time kind discriminant %d", ErrInvalidData, kind)
		return
	}
	var ticks int64
	r.ReadInt64(&ticks)
	if r.err == nil {
		*dest = TicksToTime(ticks, TimeKind(kind))
	}
}

// ReadDuration reads a duration as its 64-bit tick count.
func (r *Reader) ReadDuration(dest *time.Duration) {
	var ticks int64
	r.ReadInt64(&ticks)
	if r.err == nil {
		*dest = TicksToDuration(ticks)
	}
}

// --- Varint Read Operations ---

func (r *Reader) ReadUvarint32(dest *uint32) {
	if r.err != nil {
		return
	}
	v, n, err := Uvarint32(r.br)
	r.count += int64(n)
	if err != nil {
		r.err = err
		return
	}
	*dest = v
}

func (r *Reader) ReadUvarint64(dest *uint64) {
	if r.err != nil {
		return
	}
	v, n, err := Uvarint64(r.br)
	r.count += int64(n)
	if err != nil {
		r.err = err
		return
	}
	*dest = v
}

func (r *Reader) ReadVarint32(dest *int32) {
	var v uint32
	r.ReadUvarint32(&v)
	if r.err == nil {
		*dest = int32(v)
	}
}

func (r *Reader) ReadVarint64(dest *int64) {
	var v uint64
	r.ReadUvarint64(&v)
	if r.err == nil {
		*dest = int64(v)
	}
}

// --- String and Buffer Read Operations ---

// ReadBuffer reads a length-prefixed byte payload. A varint length of -1
// marks an absent value and yields nil; a zero length yields an empty
// non-nil slice.
func (r *Reader) ReadBuffer() []byte {
	var length int32
	r.ReadVarint32(&length)
	if r.err != nil {
		return nil
	}
	switch {
	case length == -1:
		return nil
	case length < 0:
		r.err = fmt.Errorf("%w: buffer length %d", ErrInvalidData, length)
		return nil
	case length == 0:
		return []byte{}
	}
	return r.readFull(int(length))
}

// ReadStringPtr reads a length-prefixed string, distinguishing an absent
// value (varint -1, *dest set to nil) from an empty one.
func (r *Reader) ReadStringPtr(dest **string) {
	buf := r.ReadBuffer()
	if r.err != nil {
		return
	}
	if buf == nil {
		*dest = nil
		return
	}
	s, err := r.text.Decode(buf)
	if err != nil {
		r.err = err
		return
	}
	*dest = &s
}

// ReadString reads a length-prefixed string. An absent marker is
// ErrInvalidData here; use ReadStringPtr when null must round-trip.
func (r *Reader) ReadString(dest *string) {
	var p *string
	r.ReadStringPtr(&p)
	if r.err != nil {
		return
	}
	if p == nil {
		r.err = fmt.Errorf("%w: null string where a value is required", ErrInvalidData)
		return
	}
	*dest = *p
}

// ReadRune reads exactly one character in the active encoding, consuming
// only the bytes that character occupies.
func (r *Reader) ReadRune(dest *rune) {
	if r.err != nil {
		return
	}
	if err := r.singleCharOK(); err != nil {
		r.err = err
		return
	}
	c, n, err := r.text.DecodeRune(r.br)
	r.count += int64(n)
	if err != nil {
		r.err = err
		return
	}
	*dest = c
}

// ReadChars reads exactly n characters, consuming only the bytes those
// characters occupy.
func (r *Reader) ReadChars(dest *string, n int) {
	if r.err != nil {
		return
	}
	if n < 0 {
		r.err = fmt.Errorf("%w: negative character count %d", ErrInvalidArgument, n)
		return
	}
	if err := r.singleCharOK(); err != nil {
		r.err = err
		return
	}
	runes := make([]rune, 0, n)
	for range n {
		c, got, err := r.text.DecodeRune(r.br)
		r.count += int64(got)
		if err != nil {
			if err == io.EOF {
				err = ErrTruncated
			}
			r.err = err
			return
		}
		runes = append(runes, c)
	}
	*dest = string(runes)
}

// ReadFixedString reads exactly n bytes and decodes the text preceding the
// first terminator sequence; bytes beyond the terminator are consumed and
// ignored.
func (r *Reader) ReadFixedString(dest *string, n int) {
	if r.err != nil {
		return
	}
	if n < 0 {
		r.err = fmt.Errorf("%w: negative field length %d", ErrInvalidArgument, n)
		return
	}
	term, err := r.zeroTerminator()
	if err != nil {
		r.err = err
		return
	}
	buf := r.readFull(n)
	if r.err != nil {
		return
	}
	// The terminator is aligned to its own width within the field.
	for i := 0; i+len(term) <= len(buf); i += len(term) {
		if bytes.Equal(buf[i:i+len(term)], term) {
			buf = buf[:i]
			break
		}
	}
	s, err := r.text.Decode(buf)
	if err != nil {
		r.err = err
		return
	}
	*dest = s
}

// ReadCString reads a zero-terminated string, scanning incrementally and
// consuming the terminator. Reading more than max bytes without finding the
// terminator is ErrTruncated.
func (r *Reader) ReadCString(dest *string, max int) {
	term, err := r.zeroTerminator()
	if r.err == nil && err != nil {
		r.err = err
	}
	r.readTerminated(dest, term, len(term), max)
}

// ReadLine reads text up to and including the line terminator for the
// active newline mode, returning the text before it. Reading more than max
// bytes without a full terminator match is ErrTruncated.
func (r *Reader) ReadLine(dest *string, max int) {
	term, unit, err := r.lineTerminator()
	if r.err == nil && err != nil {
		r.err = err
	}
	r.readTerminated(dest, term, unit, max)
}

// readTerminated scans code unit by code unit with a rolling window compared
// against the terminator sequence, backtracking on a partial mismatch so
// that overlapping prefixes (e.g. "\r\r\r\n" under CRLF) resolve correctly.
// Matching at code-unit granularity keeps a character's stray zero bytes
// from false-matching the terminator in wide encodings.
func (r *Reader) readTerminated(dest *string, term []byte, unit, max int) {
	if r.err != nil {
		return
	}
	if err := r.singleCharOK(); err != nil {
		r.err = err
		return
	}
	if max <= 0 {
		r.err = fmt.Errorf("%w: non-positive byte bound %d", ErrInvalidArgument, max)
		return
	}
	if unit <= 0 || len(term)%unit != 0 {
		r.err = fmt.Errorf("%w: terminator %q does not divide into %d-byte units", ErrInvalidArgument, term, unit)
		return
	}

	scratch := getScratch()
	defer putScratch(scratch)

	units := len(term) / unit
	cur := make([]byte, unit)
	matched := 0 // terminator code units currently matched
	total := 0
	for {
		if total+unit > max {
			r.err = fmt.Errorf("%w: no terminator within %d bytes", ErrTruncated, max)
			return
		}
		for i := range cur {
			b, err := r.readByte()
			if err != nil {
				if err == io.EOF {
					err = ErrTruncated
				}
				r.err = err
				return
			}
			cur[i] = b
		}
		total += unit

		if bytes.Equal(cur, term[matched*unit:(matched+1)*unit]) {
			matched++
			if matched == units {
				break
			}
			continue
		}

		// Partial mismatch: slide the window until the retained units
		// are again a prefix of the terminator.
		window := append(append([]byte{}, term[:matched*unit]...), cur...)
		for len(window) > 0 && !bytes.HasPrefix(term, window) {
			scratch.Write(window[:unit])
			window = window[unit:]
		}
		matched = len(window) / unit
	}

	s, err := r.text.Decode(scratch.Bytes())
	if err != nil {
		r.err = err
		return
	}
	*dest = s
}

// --- Record Read Operations ---

// ReadRecord reads a fixed-layout record into v (a pointer to a struct of
// fixed-size fields) using the sequential unpadded layout in the active
// byte order.
func (r *Reader) ReadRecord(v any) {
	if r.err != nil {
		return
	}
	size := RecordSize(v)
	if size < 0 {
		r.err = fmt.Errorf("%w: %T has no fixed layout", ErrInvalidArgument, v)
		return
	}
	if err := binary.Read(r.r, r.order, v); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			err = ErrTruncated
		}
		r.err = err
		return
	}
	r.count += int64(size)
}

// ReadRecordSlice reads a length-prefixed contiguous array of fixed-layout
// records: varint element count, varint byte length, then the raw payload.
// A byte element type is copied without per-element conversion.
func ReadRecordSlice[T any](r *Reader) []T {
	if r.err != nil {
		return nil
	}
	var zero T
	size := RecordSize(zero)
	if size <= 0 {
		r.setError(fmt.Errorf("%w: %T has no fixed layout", ErrInvalidArgument, zero))
		return nil
	}
	var count, byteLen uint32
	r.ReadUvarint32(&count)
	r.ReadUvarint32(&byteLen)
	if r.err != nil {
		return nil
	}
	if uint64(byteLen) != uint64(count)*uint64(size) {
		r.setError(fmt.Errorf("%w: record array of %d elements x %d bytes declares %d payload bytes", ErrInvalidData, count, size, byteLen))
		return nil
	}
	if count == 0 {
		return []T{}
	}

	items := make([]T, count)
	if raw, ok := any(items).([]byte); ok {
		buf := r.readFull(len(raw))
		if r.err != nil {
			return nil
		}
		copy(raw, buf)
		return items
	}
	if err := binary.Read(r.r, r.order, items); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			err = ErrTruncated
		}
		r.setError(err)
		return nil
	}
	r.count += int64(byteLen)
	return items
}
