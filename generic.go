package binstream

import (
	"fmt"
	"io"
)

// MarshalBinaryGeneric provides a generic encoding.BinaryMarshaler
// implementation for self-sizing streamable types.
func MarshalBinaryGeneric[T interface {
	Size() int
	io.WriterTo
}](v T) ([]byte, error) {
	expected := v.Size()
	sink := NewBytesSink(make([]byte, expected))
	n, err := v.WriteTo(sink)
	if err != nil {
		return nil, err
	}
	if n < int64(expected) {
		return nil, fmt.Errorf("%w: expected %d bytes, wrote %d", ErrTruncated, expected, n)
	}
	return sink.Bytes(), nil
}

// UnmarshalBinaryGeneric adapts a stream-based ReadFrom to the slice-based
// UnmarshalBinary interface and checks for unexpected trailing data.
func UnmarshalBinaryGeneric[T interface {
	io.ReaderFrom
	Size() int
}](v T, data []byte) error {
	src := NewBytesSource(data)
	n, err := v.ReadFrom(src)
	if err != nil {
		return err
	}
	if n < int64(v.Size()) {
		return fmt.Errorf("%w: expected %d bytes, read %d", ErrTruncated, v.Size(), n)
	}
	// Zero padding after the value is tolerated; anything else is a
	// framing bug or a malformed payload.
	for i, b := range data[n:] {
		if b != 0 {
			return fmt.Errorf("%w: non-zero trailing byte 0x%02x at offset %d", ErrInvalidData, b, int(n)+i)
		}
	}
	return nil
}
