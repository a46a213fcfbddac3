package binstream

import (
	"fmt"
	"io"
	"unicode/utf16"
	"unicode/utf8"
)

// utf7Codec implements the stateful shift encoding: characters outside the
// direct ASCII range travel inside "+...-" runs of modified base64 over
// UTF-16BE code units. A literal '+' is written as "+-". The encoder always
// closes a shift sequence with an explicit '-'; the decoder additionally
// accepts sequences closed by any non-base64 direct character, as the
// format allows.
type utf7Codec struct{}

const b64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

var b64Inverse = func() [256]int8 {
	var inv [256]int8
	for i := range inv {
		inv[i] = -1
	}
	for i := 0; i < len(b64Alphabet); i++ {
		inv[b64Alphabet[i]] = int8(i)
	}
	return inv
}()

func (utf7Codec) Name() string { return "utf-7" }
func (utf7Codec) Dead() bool   { return false }

func (utf7Codec) Encode(s string) ([]byte, error) {
	var out []byte
	var run []rune
	flush := func() {
		if len(run) == 0 {
			return
		}
		out = append(out, '+')
		out = appendBase64Units(out, utf16.Encode(run))
		out = append(out, '-')
		run = run[:0]
	}
	for _, r := range s {
		switch {
		case r == '+':
			flush()
			out = append(out, '+', '-')
		case r < 0x80:
			flush()
			out = append(out, byte(r))
		default:
			if !validScalar(r) {
				return nil, fmt.Errorf("%w: %U is not a Unicode scalar value", ErrInvalidCharacter, r)
			}
			run = append(run, r)
		}
	}
	flush()
	return out, nil
}

// appendBase64Units emits the UTF-16BE bit stream of units as 6-bit groups,
// zero-padding the final group.
func appendBase64Units(dst []byte, units []uint16) []byte {
	var bits uint32
	var nbits uint
	for _, u := range units {
		bits = bits<<16 | uint32(u)
		nbits += 16
		for nbits >= 6 {
			nbits -= 6
			dst = append(dst, b64Alphabet[(bits>>nbits)&0x3F])
		}
	}
	if nbits > 0 {
		dst = append(dst, b64Alphabet[(bits<<(6-nbits))&0x3F])
	}
	return dst
}

// decodeBase64Units converts a run of base64 bytes back to UTF-16 code
// units. Leftover bits short of a full unit must be zero padding.
func decodeBase64Units(escape []byte) ([]uint16, error) {
	var units []uint16
	var bits uint32
	var nbits uint
	for _, c := range escape {
		v := b64Inverse[c]
		if v < 0 {
			return nil, fmt.Errorf("%w: byte 0x%02x inside UTF-7 shift sequence", ErrInvalidData, c)
		}
		bits = bits<<6 | uint32(v)
		nbits += 6
		if nbits >= 16 {
			nbits -= 16
			units = append(units, uint16(bits>>nbits))
		}
	}
	if bits&(1<<nbits-1) != 0 {
		return nil, fmt.Errorf("%w: non-zero trailing bits in UTF-7 shift sequence", ErrInvalidData)
	}
	return units, nil
}

// unitsToRunes combines UTF-16 code units, rejecting unpaired surrogates.
func unitsToRunes(units []uint16) ([]rune, error) {
	var runes []rune
	for i := 0; i < len(units); i++ {
		u := rune(units[i])
		switch {
		case utf16.IsSurrogate(u) && u < 0xDC00:
			if i+1 >= len(units) {
				return nil, fmt.Errorf("%w: unpaired surrogate 0x%04x in UTF-7 shift sequence", ErrInvalidData, u)
			}
			r := utf16.DecodeRune(u, rune(units[i+1]))
			if r == utf8.RuneError {
				return nil, fmt.Errorf("%w: invalid surrogate pair in UTF-7 shift sequence", ErrInvalidData)
			}
			runes = append(runes, r)
			i++
		case utf16.IsSurrogate(u):
			return nil, fmt.Errorf("%w: unpaired surrogate 0x%04x in UTF-7 shift sequence", ErrInvalidData, u)
		default:
			runes = append(runes, u)
		}
	}
	return runes, nil
}

func (utf7Codec) Decode(b []byte) (string, error) {
	var runes []rune
	for i := 0; i < len(b); {
		c := b[i]
		if c > 0x7F {
			return "", fmt.Errorf("%w: byte 0x%02x at offset %d in UTF-7 stream", ErrInvalidData, c, i)
		}
		if c != '+' {
			runes = append(runes, rune(c))
			i++
			continue
		}
		// Shift sequence: collect base64 bytes until a terminator.
		j := i + 1
		for j < len(b) && b64Inverse[b[j]] >= 0 {
			j++
		}
		if j == i+1 {
			// "+-" is a literal '+'; "+" followed by any other
			// non-base64 byte is malformed.
			if j < len(b) && b[j] == '-' {
				runes = append(runes, '+')
				i = j + 1
				continue
			}
			return "", fmt.Errorf("%w: empty UTF-7 shift sequence at offset %d", ErrInvalidData, i)
		}
		units, err := decodeBase64Units(b[i+1 : j])
		if err != nil {
			return "", err
		}
		decoded, err := unitsToRunes(units)
		if err != nil {
			return "", err
		}
		runes = append(runes, decoded...)
		if j < len(b) && b[j] == '-' {
			j++ // explicit terminator is consumed
		}
		i = j
	}
	return string(runes), nil
}

// DecodeRune reads one character. A shift sequence is buffered and decoded
// as a unit; since the byte source cannot be re-read, only '-' (or the end
// of the source) may terminate it, and a sequence that decodes to more than
// one character is rejected as an ambiguous unescaped '+'.
func (utf7Codec) DecodeRune(r io.ByteReader) (rune, int, error) {
	c, err := r.ReadByte()
	if err != nil {
		return 0, 0, err
	}
	if c > 0x7F {
		return 0, 1, fmt.Errorf("%w: byte 0x%02x in UTF-7 stream", ErrInvalidData, c)
	}
	if c != '+' {
		return rune(c), 1, nil
	}
	n := 1
	var escape []byte
	for {
		b, err := readByteMid(r)
		if err != nil {
			return 0, n, err
		}
		n++
		if b == '-' {
			break
		}
		if b64Inverse[b] < 0 {
			return 0, n, fmt.Errorf("%w: byte 0x%02x inside UTF-7 shift sequence", ErrInvalidData, b)
		}
		escape = append(escape, b)
	}
	if len(escape) == 0 {
		return '+', n, nil
	}
	units, err := decodeBase64Units(escape)
	if err != nil {
		return 0, n, err
	}
	runes, err := unitsToRunes(units)
	if err != nil {
		return 0, n, err
	}
	if len(runes) != 1 {
		return 0, n, fmt.Errorf("%w: UTF-7 shift sequence decodes to %d characters, want 1", ErrInvalidData, len(runes))
	}
	return runes[0], n, nil
}
