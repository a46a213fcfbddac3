package binstream

import (
	"encoding"
	"io"
)

// Sizer is an interface for types that can report their binary size.
// This is useful for pre-allocating buffers before encoding.
type Sizer interface {
	// Size returns the size of the type in bytes when binary encoded.
	Size() int
}

// Marshaler defines the core methods for encoding an object into a byte
// stream.
type Marshaler interface {
	// encoding.BinaryMarshaler provides the primary encoding method.
	// It allocates and returns a new byte slice.
	encoding.BinaryMarshaler
	// io.WriterTo provides stream-based writing without materializing
	// the whole value in memory first.
	io.WriterTo
}

// Unmarshaler defines the core methods for decoding a byte stream into an
// object.
type Unmarshaler interface {
	// encoding.BinaryUnmarshaler decodes data from a byte slice.
	encoding.BinaryUnmarshaler
	// io.ReaderFrom provides stream-based reading.
	io.ReaderFrom
}

// Codec aggregates all binary serialization and deserialization interfaces.
// A type implementing Codec is a complete, self-sizing binary
// encoder/decoder.
type Codec interface {
	Sizer
	Marshaler
	Unmarshaler
}
