package binstream

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/puzpuzpuz/xsync/v4"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// CodePage wraps a single-byte character map from
// golang.org/x/text/encoding/charmap as a live TextCodec. One byte is one
// character, so the incremental path needs no lookahead.
func CodePage(cm *charmap.Charmap) TextCodec {
	return codePageCodec{cm: cm}
}

type codePageCodec struct {
	cm *charmap.Charmap
}

func (c codePageCodec) Name() string { return c.cm.String() }
func (codePageCodec) Dead() bool     { return false }

func (c codePageCodec) Encode(s string) ([]byte, error) {
	buf := make([]byte, 0, len(s))
	for i, r := range s {
		b, ok := c.cm.EncodeRune(r)
		if !ok {
			return nil, fmt.Errorf("%w: %q at index %d has no mapping in %s", ErrInvalidCharacter, r, i, c.cm)
		}
		buf = append(buf, b)
	}
	return buf, nil
}

// decodeByte rejects bytes the table maps to the replacement character,
// unless the table genuinely encodes U+FFFD at that byte.
func (c codePageCodec) decodeByte(b byte) (rune, error) {
	r := c.cm.DecodeByte(b)
	if r == utf8.RuneError {
		if enc, ok := c.cm.EncodeRune(utf8.RuneError); !ok || enc != b {
			return 0, fmt.Errorf("%w: byte 0x%02x is undefined in %s", ErrInvalidData, b, c.cm)
		}
	}
	return r, nil
}

func (c codePageCodec) Decode(b []byte) (string, error) {
	runes := make([]rune, 0, len(b))
	for i, raw := range b {
		r, err := c.decodeByte(raw)
		if err != nil {
			return "", fmt.Errorf("%w (offset %d)", err, i)
		}
		runes = append(runes, r)
	}
	return string(runes), nil
}

func (c codePageCodec) DecodeRune(r io.ByteReader) (rune, int, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, 0, err
	}
	dec, err := c.decodeByte(b)
	if err != nil {
		return 0, 1, err
	}
	return dec, 1, nil
}

// ForeignEncoding adapts any golang.org/x/text encoding for bulk use. Such
// codecs cannot decode character-at-a-time against an unbuffered source, so
// they report Dead and the engine refuses single-character, line, and
// zero-terminated operations on them.
func ForeignEncoding(name string, enc encoding.Encoding) TextCodec {
	return foreignCodec{name: name, enc: enc}
}

type foreignCodec struct {
	name string
	enc  encoding.Encoding
}

func (c foreignCodec) Name() string { return c.name }
func (foreignCodec) Dead() bool     { return true }

func (c foreignCodec) Encode(s string) ([]byte, error) {
	out, _, err := transform.Bytes(c.enc.NewEncoder(), []byte(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %s encode: %v", ErrInvalidCharacter, c.name, err)
	}
	return out, nil
}

func (c foreignCodec) Decode(b []byte) (string, error) {
	out, _, err := transform.Bytes(c.enc.NewDecoder(), b)
	if err != nil {
		return "", fmt.Errorf("%w: %s decode: %v", ErrInvalidData, c.name, err)
	}
	return string(out), nil
}

func (c foreignCodec) DecodeRune(io.ByteReader) (rune, int, error) {
	return 0, 0, fmt.Errorf("%w: %s cannot decode single characters", ErrUnsupportedOperation, c.name)
}

// encodingRegistry holds externally registered codecs by name. The built-in
// codecs are pre-registered; callers may add code pages at any time.
var encodingRegistry = func() *xsync.Map[string, TextCodec] {
	m := xsync.NewMap[string, TextCodec]()
	for _, c := range []TextCodec{ASCII, UTF8, UTF16LE, UTF16BE, UTF32LE, UTF32BE, UTF7} {
		m.Store(c.Name(), c)
	}
	return m
}()

// RegisterEncoding makes codec available to LookupEncoding under its Name.
// Registering an existing name replaces the previous codec.
func RegisterEncoding(codec TextCodec) {
	encodingRegistry.Store(codec.Name(), codec)
}

// LookupEncoding resolves a registered codec by name.
func LookupEncoding(name string) (TextCodec, bool) {
	return encodingRegistry.Load(name)
}
