package binstream

import (
	"encoding/binary"
	"io"
	"reflect"

	"github.com/puzpuzpuz/xsync/v4"
)

// Fixed-layout records travel as exactly Size() bytes in the sequential,
// unpadded layout defined by encoding/binary: fields in declaration order,
// each at its declared width, no platform padding. The layout is therefore
// explicit and portable rather than whatever the host's native struct
// layout produces.

// sizeCache avoids the reflection cost of binary.Size on every call.
var sizeCache = xsync.NewMap[reflect.Type, int]()

// RecordSize returns the encoded size of v's type, or -1 if the type
// contains variable-size fields (slices, maps, strings) and therefore has
// no fixed layout.
func RecordSize(v any) int {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return -1
	}
	if size, ok := sizeCache.Load(t); ok {
		return size
	}
	size := binary.Size(reflect.New(t).Interface())
	sizeCache.Store(t, size)
	return size
}

// Record provides a generic Codec implementation for any struct Payload
// composed of fixed-size fields.
//
// Constraint: Payload MUST NOT contain variable-size fields like slices,
// maps, or strings.
type Record[Payload any] struct {
	Payload Payload
}

var _ Codec = (*Record[struct{}])(nil)

// Size returns the fixed encoded size of the record in bytes.
func (c *Record[Payload]) Size() int {
	return RecordSize(&c.Payload)
}

// MarshalBinary implements the standard encoding.BinaryMarshaler interface.
func (c *Record[Payload]) MarshalBinary() ([]byte, error) {
	return MarshalBinaryGeneric(c)
}

// UnmarshalBinary implements the standard encoding.BinaryUnmarshaler
// interface. Trailing non-zero bytes after the record are rejected.
func (c *Record[Payload]) UnmarshalBinary(data []byte) error {
	return UnmarshalBinaryGeneric(c, data)
}

// ReadFrom implements io.ReaderFrom, reading the record's bytes directly
// from a stream in the default byte order.
func (c *Record[Payload]) ReadFrom(r io.Reader) (int64, error) {
	if err := binary.Read(r, Order, &c.Payload); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			err = ErrTruncated
		}
		return 0, err
	}
	return int64(c.Size()), nil
}

// WriteTo implements io.WriterTo, writing the record's bytes directly to a
// stream in the default byte order.
func (c *Record[Payload]) WriteTo(w io.Writer) (int64, error) {
	if err := binary.Write(w, Order, &c.Payload); err != nil {
		return 0, err
	}
	return int64(c.Size()), nil
}
