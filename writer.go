package binstream

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

// Writer serializes typed values, strings, and fixed-layout records onto a
// byte sink. It tracks the first error encountered; after an error, all
// subsequent write operations become no-ops and Err exposes the cause.
//
// The Writer retains no buffered state between calls; every operation
// reaches the underlying sink before returning. It is not safe for
// concurrent use.
type Writer struct {
	textConfig

	w     io.Writer
	bw    io.ByteWriter
	count int64 // total bytes written
	err   error // first error encountered. Subsequent writes become no-ops.
	order binary.ByteOrder
}

// NewWriter creates a Writer around w with the default configuration:
// little-endian, UTF-8, LF.
func NewWriter(w io.Writer) (*Writer, error) {
	if w == nil {
		return nil, ErrNilIO
	}
	bw, ok := w.(io.ByteWriter)
	if !ok {
		bw = oneByteWriter{w}
	}
	return &Writer{
		textConfig: newTextConfig(),
		w:          w,
		bw:         bw,
		order:      Order,
	}, nil
}

// ByteOrder returns the active byte order.
func (w *Writer) ByteOrder() binary.ByteOrder { return w.order }

// SetByteOrder switches the byte order for subsequent operations.
func (w *Writer) SetByteOrder(order binary.ByteOrder) { w.order = order }

// WithByteOrder sets a byte order and returns the Writer for chaining.
func (w *Writer) WithByteOrder(order binary.ByteOrder) *Writer {
	w.order = order
	return w
}

// Close closes the underlying byte sink if it implements io.Closer.
func (w *Writer) Close() error {
	if c, ok := w.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Count returns the total number of bytes written.
func (w *Writer) Count() int64 { return w.count }

// Err returns the first error encountered, if any.
func (w *Writer) Err() error { return w.err }

// Result returns the final count and error state.
func (w *Writer) Result() (int64, error) {
	return w.count, w.err
}

// setError records the first non-nil error. This preserves the root cause
// of a failure chain instead of a later, less relevant error.
func (w *Writer) setError(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// Write implements the io.Writer interface.
func (w *Writer) Write(buf []byte) (int, error) {
	if len(buf) == 0 || w.err != nil {
		return 0, w.err
	}
	n, err := w.w.Write(buf)
	w.count += int64(n)
	w.setError(err)
	return n, w.err
}

// WriteBytes writes a raw byte slice.
func (w *Writer) WriteBytes(buf []byte) {
	_, _ = w.Write(buf)
}

// WriteZeros writes n zero bytes, often for padding.
func (w *Writer) WriteZeros(n int64) {
	if w.err != nil || n <= 0 {
		return
	}
	if n <= bufferSize {
		_, _ = w.Write(empty[:n])
		return
	}
	written, err := io.CopyN(w.w, Zero, n)
	w.count += written
	w.setError(err)
}

// Align writes zero bytes until the write position is a multiple of n.
func (w *Writer) Align(n int) {
	if n > 1 {
		w.WriteZeros(Roundup(w.count, int64(n)) - w.count)
	}
}

func (w *Writer) writeByte(b byte) {
	if w.err != nil {
		return
	}
	if err := w.bw.WriteByte(b); err != nil {
		w.err = err
		return
	}
	w.count++
}

// --- Primitive Write Operations ---

func (w *Writer) WriteBool(v bool) {
	if v {
		w.writeByte(1)
	} else {
		w.writeByte(0)
	}
}

func (w *Writer) WriteByte(v byte) error {
	w.writeByte(v)
	return w.err
}

func (w *Writer) WriteUint8(v uint8) {
	w.writeByte(v)
}

func (w *Writer) WriteUint16(v uint16) {
	if w.err != nil {
		return
	}
	var buf [2]byte
	w.order.PutUint16(buf[:], v)
	_, _ = w.Write(buf[:])
}

func (w *Writer) WriteUint32(v uint32) {
	if w.err != nil {
		return
	}
	var buf [4]byte
	w.order.PutUint32(buf[:], v)
	_, _ = w.Write(buf[:])
}

func (w *Writer) WriteUint64(v uint64) {
	if w.err != nil {
		return
	}
	var buf [8]byte
	w.order.PutUint64(buf[:], v)
	_, _ = w.Write(buf[:])
}

func (w *Writer) WriteInt8(v int8) {
	w.writeByte(uint8(v))
}

func (w *Writer) WriteInt16(v int16) {
	w.WriteUint16(uint16(v))
}

func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

func (w *Writer) WriteInt64(v int64) {
	w.WriteUint64(uint64(v))
}

func (w *Writer) WriteFloat32(v float32) {
	if w.err != nil {
		return
	}
	var buf [4]byte
	putFloat32(w.order, buf[:], v)
	_, _ = w.Write(buf[:])
}

func (w *Writer) WriteFloat64(v float64) {
	if w.err != nil {
		return
	}
	var buf [8]byte
	putFloat64(w.order, buf[:], v)
	_, _ = w.Write(buf[:])
}

// WriteDecimal writes the four 32-bit components of a Decimal128 in their
// declared order. An invalid flags word is ErrInvalidArgument.
func (w *Writer) WriteDecimal(d Decimal128) {
	if w.err != nil {
		return
	}
	if err := d.Validate(); err != nil {
		w.err = fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		return
	}
	w.WriteUint32(d.Lo)
	w.WriteUint32(d.Mid)
	w.WriteUint32(d.Hi)
	w.WriteUint32(d.Flags)
}

// WriteTime writes an absolute time: a varint kind discriminant followed by
// the 8-byte tick count in the active byte order.
func (w *Writer) WriteTime(t time.Time) {
	ticks, kind := TimeToTicks(t)
	w.WriteUvarint32(uint32(kind))
	w.WriteInt64(ticks)
}

// WriteDuration writes a duration as its 64-bit tick count.
func (w *Writer) WriteDuration(d time.Duration) {
	w.WriteInt64(DurationToTicks(d))
}

// --- Varint Write Operations ---

func (w *Writer) WriteUvarint32(v uint32) {
	if w.err != nil {
		return
	}
	var scratch [MaxVarint32Len]byte
	_, _ = w.Write(AppendUvarint(scratch[:0], v))
}

func (w *Writer) WriteUvarint64(v uint64) {
	if w.err != nil {
		return
	}
	var scratch [MaxVarint64Len]byte
	_, _ = w.Write(AppendUvarint(scratch[:0], v))
}

func (w *Writer) WriteVarint32(v int32) {
	w.WriteUvarint32(uint32(v))
}

func (w *Writer) WriteVarint64(v int64) {
	w.WriteUvarint64(uint64(v))
}

// --- String and Buffer Write Operations ---

// WriteBuffer writes a length-prefixed byte payload. A nil slice travels as
// the absent marker (varint -1), distinguishable from an empty slice
// (varint 0 and no payload).
func (w *Writer) WriteBuffer(buf []byte) {
	if w.err != nil {
		return
	}
	if buf == nil {
		w.WriteVarint32(-1)
		return
	}
	w.WriteUvarint32(uint32(len(buf)))
	_, _ = w.Write(buf)
}

// WriteString writes a length-prefixed string in the active encoding. The
// length prefix counts encoded bytes, not characters.
func (w *Writer) WriteString(s string) {
	if w.err != nil {
		return
	}
	enc, err := w.text.Encode(s)
	if err != nil {
		w.err = err
		return
	}
	w.WriteUvarint32(uint32(len(enc)))
	_, _ = w.Write(enc)
}

// WriteStringPtr writes a length-prefixed string where nil travels as the
// absent marker (varint -1).
func (w *Writer) WriteStringPtr(s *string) {
	if w.err != nil {
		return
	}
	if s == nil {
		w.WriteVarint32(-1)
		return
	}
	w.WriteString(*s)
}

// WriteRune writes exactly one character in the active encoding.
func (w *Writer) WriteRune(r rune) {
	if w.err != nil {
		return
	}
	if err := w.singleCharOK(); err != nil {
		w.err = err
		return
	}
	enc, err := w.text.Encode(string(r))
	if err != nil {
		w.err = err
		return
	}
	_, _ = w.Write(enc)
}

// WriteChars writes the characters of s with no length prefix or
// terminator.
func (w *Writer) WriteChars(s string) {
	if w.err != nil {
		return
	}
	if err := w.singleCharOK(); err != nil {
		w.err = err
		return
	}
	enc, err := w.text.Encode(s)
	if err != nil {
		w.err = err
		return
	}
	_, _ = w.Write(enc)
}

// WriteFixedString writes s into exactly n bytes: zero-padded when the
// encoded text is short, truncated when it is long. Truncation always
// preserves a trailing terminator sequence.
func (w *Writer) WriteFixedString(s string, n int) {
	if w.err != nil {
		return
	}
	if n < 0 {
		w.err = fmt.Errorf("%w: negative field length %d", ErrInvalidArgument, n)
		return
	}
	term, err := w.zeroTerminator()
	if err != nil {
		w.err = err
		return
	}
	if n < len(term) {
		w.err = fmt.Errorf("%w: field length %d cannot hold a %d-byte terminator", ErrInvalidArgument, n, len(term))
		return
	}
	enc, err := w.text.Encode(s)
	if err != nil {
		w.err = err
		return
	}
	if len(enc) > n-len(term) {
		// Truncate to a whole number of terminator-width units so a
		// fixed-width encoding is not cut mid-character.
		keep := (n - len(term)) / len(term) * len(term)
		enc = enc[:keep]
	}
	_, _ = w.Write(enc)
	w.WriteZeros(int64(n - len(enc)))
}

// WriteCString writes s followed by the encoding's zero-valued terminator
// sequence, after the cached probe confirms the encoding round-trips a zero
// byte.
func (w *Writer) WriteCString(s string) {
	if w.err != nil {
		return
	}
	if err := w.singleCharOK(); err != nil {
		w.err = err
		return
	}
	term, err := w.zeroTerminator()
	if err != nil {
		w.err = err
		return
	}
	enc, err := w.text.Encode(s)
	if err != nil {
		w.err = err
		return
	}
	_, _ = w.Write(enc)
	_, _ = w.Write(term)
}

// WriteLine writes s followed by the terminator sequence for the active
// newline mode, after the cached probe confirms the encoding round-trips
// "\r\n" exactly.
func (w *Writer) WriteLine(s string) {
	if w.err != nil {
		return
	}
	if err := w.singleCharOK(); err != nil {
		w.err = err
		return
	}
	term, _, err := w.lineTerminator()
	if err != nil {
		w.err = err
		return
	}
	enc, err := w.text.Encode(s)
	if err != nil {
		w.err = err
		return
	}
	_, _ = w.Write(enc)
	_, _ = w.Write(term)
}

// --- Record Write Operations ---

// WriteRecord writes a fixed-layout record from v using the sequential
// unpadded layout in the active byte order.
func (w *Writer) WriteRecord(v any) {
	if w.err != nil {
		return
	}
	size := RecordSize(v)
	if size < 0 {
		w.err = fmt.Errorf("%w: %T has no fixed layout", ErrInvalidArgument, v)
		return
	}
	if err := binary.Write(w.w, w.order, v); err != nil {
		w.err = err
		return
	}
	w.count += int64(size)
}

// WriteRecordSlice writes a length-prefixed contiguous array of
// fixed-layout records: varint element count, varint byte length, then the
// raw payload. A byte element type is copied without per-element
// conversion.
func WriteRecordSlice[T any](w *Writer, items []T) {
	if w.err != nil {
		return
	}
	var zero T
	size := RecordSize(zero)
	if size <= 0 {
		w.setError(fmt.Errorf("%w: %T has no fixed layout", ErrInvalidArgument, zero))
		return
	}
	count := len(items)
	w.WriteUvarint32(uint32(count))
	w.WriteUvarint32(uint32(count * size))
	if w.err != nil || count == 0 {
		return
	}
	if raw, ok := any(items).([]byte); ok {
		_, _ = w.Write(raw)
		return
	}
	if err := binary.Write(w.w, w.order, items); err != nil {
		w.setError(err)
		return
	}
	w.count += int64(count * size)
}
