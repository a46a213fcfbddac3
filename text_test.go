package binstream

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleText = "Go é世界 \U0001F600"

func TestCodecRoundTrips(t *testing.T) {
	codecs := []TextCodec{UTF8, UTF16LE, UTF16BE, UTF32LE, UTF32BE, UTF7}
	for _, c := range codecs {
		t.Run(c.Name(), func(t *testing.T) {
			enc, err := c.Encode(sampleText)
			require.NoError(t, err)
			dec, err := c.Decode(enc)
			require.NoError(t, err)
			assert.Equal(t, sampleText, dec)
		})
	}
}

func TestDecodeRuneConsumesExactBytes(t *testing.T) {
	cases := []struct {
		codec TextCodec
		text  string
		sizes []int
	}{
		{ASCII, "ab", []int{1, 1}},
		{UTF8, "aé世\U0001F600", []int{1, 2, 3, 4}},
		{UTF16LE, "a\U0001F600b", []int{2, 4, 2}},
		{UTF16BE, "\U0001D11E", []int{4}},
		{UTF32BE, "a\U0001F600", []int{4, 4}},
	}
	for _, tc := range cases {
		t.Run(tc.codec.Name(), func(t *testing.T) {
			enc, err := tc.codec.Encode(tc.text)
			require.NoError(t, err)
			src := NewBytesSource(enc)
			for _, r := range tc.text {
				got, n, err := tc.codec.DecodeRune(src)
				require.NoError(t, err)
				assert.Equal(t, r, got)
				assert.Equal(t, tc.sizes[0], n)
				tc.sizes = tc.sizes[1:]
			}
			// Source fully consumed, nothing read past the requested
			// characters.
			assert.Equal(t, 0, src.Available())
			_, _, err = tc.codec.DecodeRune(src)
			assert.ErrorIs(t, err, io.EOF)
		})
	}
}

func TestASCIIStrict(t *testing.T) {
	_, err := ASCII.Encode("café")
	assert.ErrorIs(t, err, ErrInvalidCharacter)
	assert.ErrorContains(t, err, "index 3")

	_, err = ASCII.Decode([]byte{'o', 'k', 0x80})
	assert.ErrorIs(t, err, ErrInvalidCharacter)
	assert.ErrorContains(t, err, "0x80")
	assert.ErrorContains(t, err, "offset 2")

	_, _, err = ASCII.DecodeRune(NewBytesSource([]byte{0xFF}))
	assert.ErrorIs(t, err, ErrInvalidCharacter)
}

func TestUTF8LeadByteClasses(t *testing.T) {
	valid := map[byte]int{
		0x41: 1, // ASCII
		0xC2: 2,
		0xDF: 2,
		0xE0: 3,
		0xEF: 3,
		0xF0: 4,
		0xF4: 4,
	}
	for lead, want := range valid {
		trail, err := utf8TrailLen(lead)
		require.NoError(t, err, "lead 0x%02x", lead)
		assert.Equal(t, want, trail+1, "lead 0x%02x", lead)
	}
	for _, lead := range []byte{0x80, 0xBF, 0xC0, 0xC1, 0xF5, 0xFF} {
		_, err := utf8TrailLen(lead)
		assert.ErrorIs(t, err, ErrInvalidData, "lead 0x%02x", lead)
	}
}

func TestUTF8BOMStripped(t *testing.T) {
	dec, err := UTF8.Decode([]byte{0xEF, 0xBB, 0xBF, 'h', 'i'})
	require.NoError(t, err)
	assert.Equal(t, "hi", dec)

	// Only the very start of a decode run is a BOM.
	dec, err = UTF8.Decode([]byte{'h', 0xEF, 0xBB, 0xBF})
	require.NoError(t, err)
	assert.Equal(t, "h\uFEFF", dec)
}

func TestUTF8Truncated(t *testing.T) {
	// A three-byte sequence cut after two bytes.
	_, _, err := UTF8.DecodeRune(NewBytesSource([]byte{0xE4, 0xB8}))
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestUTF16UnpairedSurrogate(t *testing.T) {
	// Lone high surrogate followed by a plain character.
	_, err := UTF16BE.Decode([]byte{0xD8, 0x34, 0x00, 0x41})
	assert.ErrorIs(t, err, ErrInvalidData)

	// Lone low surrogate leads the stream.
	_, _, err = UTF16BE.DecodeRune(NewBytesSource([]byte{0xDC, 0x00, 0x00, 0x00}))
	assert.ErrorIs(t, err, ErrInvalidData)

	// Surrogate pair cut in half.
	_, _, err = UTF16LE.DecodeRune(NewBytesSource([]byte{0x34, 0xD8}))
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestUTF32Invalid(t *testing.T) {
	_, err := UTF32BE.Decode([]byte{0x00, 0x11, 0x00, 0x00})
	assert.ErrorIs(t, err, ErrInvalidData)

	_, _, err = UTF32LE.DecodeRune(NewBytesSource([]byte{0x00, 0xD8, 0x00, 0x00}))
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestNewlineSequences(t *testing.T) {
	assert.Equal(t, "\n", LF.Sequence())
	assert.Equal(t, "\r", CR.Sequence())
	assert.Equal(t, "\r\n", CRLF.Sequence())
}
