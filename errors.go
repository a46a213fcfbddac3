package binstream

import "errors"

var (
	// ErrNilIO indicates that NewReader/NewWriter was called with a nil interface
	ErrNilIO = errors.New("binstream: NewReader/NewWriter called with a nil io.Reader/io.Writer")

	// ErrTruncated indicates that the byte source ended before a complete
	// value (varint, multi-byte character, record, ...) could be read.
	ErrTruncated = errors.New("binstream: truncated value")

	// ErrOverlongVarint indicates a varint exceeded its maximum byte count
	// (5 bytes for 32-bit values, 10 bytes for 64-bit values) without a
	// terminating byte.
	ErrOverlongVarint = errors.New("binstream: overlong varint")

	// ErrInvalidData indicates a wire-format violation: a malformed UTF-8
	// lead byte, an unpaired surrogate, a bad UTF-7 escape, an unknown
	// time-kind discriminant, and the like.
	ErrInvalidData = errors.New("binstream: invalid data")

	// ErrInvalidCharacter indicates a character outside the active
	// encoding's representable range. Wrapping errors name the offending
	// byte or rune and its position.
	ErrInvalidCharacter = errors.New("binstream: invalid character")

	// ErrUnsupportedOperation indicates the active encoding cannot support
	// the requested operation (single-character, line, or zero-terminated
	// access on an encoding that cannot round-trip it).
	ErrUnsupportedOperation = errors.New("binstream: unsupported operation for encoding")

	// ErrInvalidArgument indicates a nil or out-of-range caller argument,
	// such as a negative length.
	ErrInvalidArgument = errors.New("binstream: invalid argument")

	// ErrInvalidWhence indicates that an invalid 'whence' parameter was provided to a Seek operation.
	ErrInvalidWhence = errors.New("binstream: unsupported whence for forward-only seeker")

	// ErrInvalidSeek indicates a seek was attempted to an invalid position.
	ErrInvalidSeek = errors.New("binstream: seek to an invalid position")

	// ErrUnsupportedNegativeSeek indicates a backward seek was attempted on a forward-only seeker.
	ErrUnsupportedNegativeSeek = errors.New("binstream: unsupported negative offset for forward-only seeker")
)
