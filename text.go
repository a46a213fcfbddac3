package binstream

import (
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf16"
	"unicode/utf8"
)

// TextCodec converts between bytes and characters for one encoding. Bulk
// conversion works on whole buffers; DecodeRune is the incremental path and
// must read only the bytes one character needs, because the underlying byte
// source may not support buffering or re-reading.
type TextCodec interface {
	// Name identifies the encoding, e.g. "utf-8".
	Name() string

	// Encode converts s to its byte representation.
	Encode(s string) ([]byte, error)

	// Decode converts b to a string.
	Decode(b []byte) (string, error)

	// DecodeRune reads exactly one character from r, consuming only the
	// bytes that character occupies. It returns the character and the
	// number of bytes consumed. A clean end of source before the first
	// byte is io.EOF; an end mid-character is ErrTruncated.
	DecodeRune(r io.ByteReader) (rune, int, error)

	// Dead reports that the encoding cannot round-trip single characters
	// and must refuse single-character, line, and zero-terminated
	// operations.
	Dead() bool
}

// Newline selects the line terminator written by WriteLine and matched by
// ReadLine.
type Newline int

const (
	LF Newline = iota
	CR
	CRLF
)

// Sequence returns the terminator characters for the mode.
func (n Newline) Sequence() string {
	switch n {
	case CR:
		return "\r"
	case CRLF:
		return "\r\n"
	default:
		return "\n"
	}
}

func (n Newline) String() string {
	switch n {
	case CR:
		return "CR"
	case CRLF:
		return "CRLF"
	default:
		return "LF"
	}
}

// Built-in codecs.
var (
	ASCII   TextCodec = asciiCodec{}
	UTF8    TextCodec = utf8Codec{}
	UTF16LE TextCodec = utf16Codec{order: LE, name: "utf-16le"}
	UTF16BE TextCodec = utf16Codec{order: BE, name: "utf-16be"}
	UTF32LE TextCodec = utf32Codec{order: LE, name: "utf-32le"}
	UTF32BE TextCodec = utf32Codec{order: BE, name: "utf-32be"}
	UTF7    TextCodec = utf7Codec{}
)

// readByteMid reads a continuation byte of a multi-byte sequence; a source
// that ends here is truncated, not cleanly finished.
func readByteMid(r io.ByteReader) (byte, error) {
	b, err := r.ReadByte()
	if err == io.EOF {
		return 0, ErrTruncated
	}
	return b, err
}

// --- ASCII ---

// asciiCodec is strict 7-bit ASCII. Out-of-range input raises
// ErrInvalidCharacter on both encode and decode instead of substituting a
// replacement character.
type asciiCodec struct{}

func (asciiCodec) Name() string { return "ascii" }
func (asciiCodec) Dead() bool   { return false }

func (asciiCodec) Encode(s string) ([]byte, error) {
	buf := make([]byte, 0, len(s))
	for i, r := range s {
		if r > 0x7F {
			return nil, fmt.Errorf("%w: %q at index %d is not ASCII", ErrInvalidCharacter, r, i)
		}
		buf = append(buf, byte(r))
	}
	return buf, nil
}

func (asciiCodec) Decode(b []byte) (string, error) {
	for i, c := range b {
		if c > 0x7F {
			return "", fmt.Errorf("%w: byte 0x%02x at offset %d is not ASCII", ErrInvalidCharacter, c, i)
		}
	}
	return string(b), nil
}

func (asciiCodec) DecodeRune(r io.ByteReader) (rune, int, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, 0, err
	}
	if b > 0x7F {
		return 0, 1, fmt.Errorf("%w: byte 0x%02x is not ASCII", ErrInvalidCharacter, b)
	}
	return rune(b), 1, nil
}

// --- UTF-8 ---

type utf8Codec struct{}

func (utf8Codec) Name() string { return "utf-8" }
func (utf8Codec) Dead() bool   { return false }

func (utf8Codec) Encode(s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, fmt.Errorf("%w: string is not valid UTF-8", ErrInvalidData)
	}
	return []byte(s), nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func (utf8Codec) Decode(b []byte) (string, error) {
	// A byte-order mark at the very start of a decode run is stripped and
	// does not count as a decoded character.
	if len(b) >= 3 && b[0] == utf8BOM[0] && b[1] == utf8BOM[1] && b[2] == utf8BOM[2] {
		b = b[3:]
	}
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return "", fmt.Errorf("%w: malformed UTF-8 at offset %d (byte 0x%02x)", ErrInvalidData, i, b[i])
		}
		i += size
	}
	return string(b), nil
}

// utf8TrailLen maps a lead byte to its continuation byte count. Leads in
// [0x80, 0xC1] and at or above 0xF5 have no legal encoding.
func utf8TrailLen(lead byte) (int, error) {
	switch {
	case lead < 0x80:
		return 0, nil
	case lead >= 0xC2 && lead <= 0xDF:
		return 1, nil
	case lead >= 0xE0 && lead <= 0xEF:
		return 2, nil
	case lead >= 0xF0 && lead <= 0xF4:
		return 3, nil
	default:
		return 0, fmt.Errorf("%w: invalid UTF-8 lead byte 0x%02x", ErrInvalidData, lead)
	}
}

func (utf8Codec) DecodeRune(r io.ByteReader) (rune, int, error) {
	lead, err := r.ReadByte()
	if err != nil {
		return 0, 0, err
	}
	trail, err := utf8TrailLen(lead)
	if err != nil {
		return 0, 1, err
	}
	if trail == 0 {
		return rune(lead), 1, nil
	}
	var scratch [utf8.UTFMax]byte
	scratch[0] = lead
	for i := 1; i <= trail; i++ {
		b, err := readByteMid(r)
		if err != nil {
			return 0, i, err
		}
		scratch[i] = b
	}
	c, size := utf8.DecodeRune(scratch[:trail+1])
	if c == utf8.RuneError && size <= 1 {
		return 0, trail + 1, fmt.Errorf("%w: malformed UTF-8 sequence % x", ErrInvalidData, scratch[:trail+1])
	}
	return c, trail + 1, nil
}

// --- UTF-16 ---

type utf16Codec struct {
	order binary.ByteOrder
	name  string
}

func (c utf16Codec) Name() string { return c.name }
func (utf16Codec) Dead() bool     { return false }

func (c utf16Codec) Encode(s string) ([]byte, error) {
	units := utf16.Encode([]rune(s))
	buf := make([]byte, 2*len(units))
	for i, u := range units {
		c.order.PutUint16(buf[2*i:], u)
	}
	return buf, nil
}

func (c utf16Codec) Decode(b []byte) (string, error) {
	if len(b)%2 != 0 {
		return "", fmt.Errorf("%w: odd UTF-16 byte count %d", ErrTruncated, len(b))
	}
	var runes []rune
	for i := 0; i < len(b); i += 2 {
		u1 := c.order.Uint16(b[i:])
		switch {
		case utf16.IsSurrogate(rune(u1)) && u1 < 0xDC00:
			if i+4 > len(b) {
				return "", fmt.Errorf("%w: UTF-16 surrogate pair cut short at offset %d", ErrTruncated, i)
			}
			u2 := c.order.Uint16(b[i+2:])
			r := utf16.DecodeRune(rune(u1), rune(u2))
			if r == utf8.RuneError {
				return "", fmt.Errorf("%w: unpaired UTF-16 surrogate 0x%04x at offset %d", ErrInvalidData, u1, i)
			}
			runes = append(runes, r)
			i += 2
		case utf16.IsSurrogate(rune(u1)):
			return "", fmt.Errorf("%w: unpaired UTF-16 surrogate 0x%04x at offset %d", ErrInvalidData, u1, i)
		default:
			runes = append(runes, rune(u1))
		}
	}
	return string(runes), nil
}

func (c utf16Codec) readUnit(r io.ByteReader, first bool) (uint16, error) {
	var b0 byte
	var err error
	if first {
		b0, err = r.ReadByte()
	} else {
		b0, err = readByteMid(r)
	}
	if err != nil {
		return 0, err
	}
	b1, err := readByteMid(r)
	if err != nil {
		return 0, err
	}
	var pair [2]byte
	pair[0], pair[1] = b0, b1
	return c.order.Uint16(pair[:]), nil
}

func (c utf16Codec) DecodeRune(r io.ByteReader) (rune, int, error) {
	u1, err := c.readUnit(r, true)
	if err != nil {
		return 0, 0, err
	}
	if !utf16.IsSurrogate(rune(u1)) {
		return rune(u1), 2, nil
	}
	if u1 >= 0xDC00 {
		return 0, 2, fmt.Errorf("%w: unpaired UTF-16 low surrogate 0x%04x", ErrInvalidData, u1)
	}
	// High surrogate: the character occupies two more bytes.
	u2, err := c.readUnit(r, false)
	if err != nil {
		return 0, 2, err
	}
	r2 := utf16.DecodeRune(rune(u1), rune(u2))
	if r2 == utf8.RuneError {
		return 0, 4, fmt.Errorf("%w: invalid UTF-16 surrogate pair 0x%04x 0x%04x", ErrInvalidData, u1, u2)
	}
	return r2, 4, nil
}

// --- UTF-32 ---

type utf32Codec struct {
	order binary.ByteOrder
	name  string
}

func (c utf32Codec) Name() string { return c.name }
func (utf32Codec) Dead() bool     { return false }

func validScalar(r rune) bool {
	return r >= 0 && r <= utf8.MaxRune && !utf16.IsSurrogate(r)
}

func (c utf32Codec) Encode(s string) ([]byte, error) {
	runes := []rune(s)
	buf := make([]byte, 4*len(runes))
	for i, r := range runes {
		if !validScalar(r) {
			return nil, fmt.Errorf("%w: %U is not a Unicode scalar value", ErrInvalidCharacter, r)
		}
		c.order.PutUint32(buf[4*i:], uint32(r))
	}
	return buf, nil
}

func (c utf32Codec) Decode(b []byte) (string, error) {
	if len(b)%4 != 0 {
		return "", fmt.Errorf("%w: UTF-32 byte count %d is not a multiple of 4", ErrTruncated, len(b))
	}
	runes := make([]rune, 0, len(b)/4)
	for i := 0; i < len(b); i += 4 {
		v := c.order.Uint32(b[i:])
		if !validScalar(rune(v)) {
			return "", fmt.Errorf("%w: invalid UTF-32 value 0x%08x at offset %d", ErrInvalidData, v, i)
		}
		runes = append(runes, rune(v))
	}
	return string(runes), nil
}

func (c utf32Codec) DecodeRune(r io.ByteReader) (rune, int, error) {
	var quad [4]byte
	for i := range quad {
		var err error
		if i == 0 {
			quad[i], err = r.ReadByte()
		} else {
			quad[i], err = readByteMid(r)
		}
		if err != nil {
			return 0, i, err
		}
	}
	v := c.order.Uint32(quad[:])
	if !validScalar(rune(v)) {
		return 0, 4, fmt.Errorf("%w: invalid UTF-32 value 0x%08x", ErrInvalidData, v)
	}
	return rune(v), 4, nil
}
