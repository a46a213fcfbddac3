package binstream

import (
	"io"

	"golang.org/x/exp/constraints"
)

// Maximum encoded lengths: ceil(32/7) and ceil(64/7) bytes.
const (
	MaxVarint32Len = 5
	MaxVarint64Len = 10
)

// AppendUvarint appends the 7-bit continuation-bit encoding of v to dst.
// The encoding is LSB-first: each byte carries 7 payload bits, and the high
// bit is set on every byte except the last.
func AppendUvarint[T constraints.Unsigned](dst []byte, v T) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// UvarintLen returns the encoded length of v in bytes.
func UvarintLen[T constraints.Unsigned](v T) int {
	n := 1
	for v >= 0x80 {
		v >>= 7
		n++
	}
	return n
}

// readUvarint is the shared decode loop. maxLen bounds the number of bytes
// a well-formed encoding may occupy; consuming a continuation byte at that
// bound is an overlong encoding, not a wider value.
func readUvarint(r io.ByteReader, maxLen int) (uint64, int, error) {
	var v uint64
	var shift uint
	for n := 0; ; n++ {
		if n == maxLen {
			return 0, n, ErrOverlongVarint
		}
		b, err := r.ReadByte()
		if err != nil {
			if err == io.EOF {
				err = ErrTruncated
			}
			return 0, n, err
		}
		v |= uint64(b&0x7F) << shift
		if b < 0x80 {
			return v, n + 1, nil
		}
		shift += 7
	}
}

// Uvarint32 decodes a 32-bit unsigned varint from r. It returns the value
// and the number of bytes consumed. Decoding fails with ErrTruncated if the
// source ends before a terminating byte, and with ErrOverlongVarint if more
// than MaxVarint32Len bytes carry continuation bits.
func Uvarint32(r io.ByteReader) (uint32, int, error) {
	v, n, err := readUvarint(r, MaxVarint32Len)
	return uint32(v), n, err
}

// Uvarint64 decodes a 64-bit unsigned varint from r.
func Uvarint64(r io.ByteReader) (uint64, int, error) {
	return readUvarint(r, MaxVarint64Len)
}

// Varint32 decodes a signed 32-bit varint. Signed values travel as the
// two's-complement bit pattern of the unsigned width, so -1 occupies the
// full five bytes.
func Varint32(r io.ByteReader) (int32, int, error) {
	v, n, err := Uvarint32(r)
	return int32(v), n, err
}

// Varint64 decodes a signed 64-bit varint.
func Varint64(r io.ByteReader) (int64, int, error) {
	v, n, err := Uvarint64(r)
	return int64(v), n, err
}

// AppendVarint32 appends the varint encoding of the two's-complement bit
// pattern of v.
func AppendVarint32(dst []byte, v int32) []byte {
	return AppendUvarint(dst, uint32(v))
}

// AppendVarint64 appends the varint encoding of the two's-complement bit
// pattern of v.
func AppendVarint64(dst []byte, v int64) []byte {
	return AppendUvarint(dst, uint64(v))
}
