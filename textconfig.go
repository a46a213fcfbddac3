package binstream

import (
	"fmt"
	"io"
)

// textConfig is the per-instance text state shared by Reader and Writer:
// the active codec, the newline mode, and the cached capability probes.
// Each instance owns its configuration; there is no process-wide state.
type textConfig struct {
	text    TextCodec
	newline Newline

	// Probe results are cached per active encoding and invalidated by
	// SetEncoding.
	zeroProbed bool
	zeroSeq    []byte
	zeroErr    error
	nlProbed   bool
	nlErr      error
	nlUnit     int
}

func newTextConfig() textConfig {
	return textConfig{text: UTF8, newline: LF}
}

// Encoding returns the active text codec.
func (c *textConfig) Encoding() TextCodec { return c.text }

// SetEncoding switches the active text codec and discards the cached
// capability probes, which only held for the previous encoding.
func (c *textConfig) SetEncoding(t TextCodec) {
	if t == nil {
		t = UTF8
	}
	c.text = t
	c.zeroProbed = false
	c.zeroSeq = nil
	c.zeroErr = nil
	c.nlProbed = false
	c.nlErr = nil
	c.nlUnit = 0
}

// Newline returns the active line-terminator mode.
func (c *textConfig) Newline() Newline { return c.newline }

// SetNewline switches the line-terminator mode.
func (c *textConfig) SetNewline(n Newline) { c.newline = n }

// singleCharOK gates the operations that need character-level access.
func (c *textConfig) singleCharOK() error {
	if c.text.Dead() {
		return fmt.Errorf("%w: %s cannot round-trip single characters", ErrUnsupportedOperation, c.text.Name())
	}
	return nil
}

// zeroTerminator returns the encoding's zero-valued terminator sequence,
// probing once per encoding that a zero byte round-trips exactly.
func (c *textConfig) zeroTerminator() ([]byte, error) {
	if !c.zeroProbed {
		c.zeroProbed = true
		c.zeroSeq, c.zeroErr = probeRoundTrip(c.text, "\x00")
	}
	return c.zeroSeq, c.zeroErr
}

// newlineOK probes once per encoding that "\r\n" round-trips exactly, the
// precondition for all line-oriented operations. The probe also learns the
// encoding's code-unit width, which terminator matching aligns to.
func (c *textConfig) newlineOK() error {
	if !c.nlProbed {
		c.nlProbed = true
		var enc []byte
		enc, c.nlErr = probeRoundTrip(c.text, "\r\n")
		if c.nlErr == nil {
			c.nlUnit = len(enc) / 2
		}
	}
	return c.nlErr
}

// lineTerminator returns the encoded byte sequence for the active newline
// mode and the code-unit width matching must align to.
func (c *textConfig) lineTerminator() ([]byte, int, error) {
	if err := c.newlineOK(); err != nil {
		return nil, 0, err
	}
	term, err := c.text.Encode(c.newline.Sequence())
	return term, c.nlUnit, err
}

func probeRoundTrip(t TextCodec, s string) ([]byte, error) {
	if t.Dead() {
		return nil, fmt.Errorf("%w: %s cannot round-trip %q", ErrUnsupportedOperation, t.Name(), s)
	}
	enc, err := t.Encode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s cannot encode %q: %v", ErrUnsupportedOperation, t.Name(), s, err)
	}
	dec, err := t.Decode(enc)
	if err != nil || dec != s {
		return nil, fmt.Errorf("%w: %s does not round-trip %q", ErrUnsupportedOperation, t.Name(), s)
	}
	return enc, nil
}

// oneByteReader adapts a plain io.Reader to io.ByteReader with single-byte
// Read calls, so the codec never requests more than it needs from a source
// that cannot be re-read.
type oneByteReader struct {
	r io.Reader
}

func (o oneByteReader) ReadByte() (byte, error) {
	var p [1]byte
	for {
		n, err := o.r.Read(p[:])
		if n == 1 {
			return p[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
}

// oneByteWriter adapts a plain io.Writer to io.ByteWriter.
type oneByteWriter struct {
	w io.Writer
}

func (o oneByteWriter) WriteByte(c byte) error {
	p := [1]byte{c}
	n, err := o.w.Write(p[:])
	if err == nil && n != 1 {
		err = io.ErrShortWrite
	}
	return err
}
