package binstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestCodePageRoundTrip(t *testing.T) {
	cp := CodePage(charmap.Windows1252)

	enc, err := cp.Encode("café")
	require.NoError(t, err)
	assert.Equal(t, []byte{'c', 'a', 'f', 0xE9}, enc)

	dec, err := cp.Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, "café", dec)

	r, n, err := cp.DecodeRune(NewBytesSource([]byte{0xE9}))
	require.NoError(t, err)
	assert.Equal(t, 'é', r)
	assert.Equal(t, 1, n)
}

func TestCodePageRejections(t *testing.T) {
	cp := CodePage(charmap.Windows1252)

	// No mapping for CJK in a Latin code page.
	_, err := cp.Encode("世")
	assert.ErrorIs(t, err, ErrInvalidCharacter)

	// 0x81 is undefined in Windows-1252.
	_, err = cp.Decode([]byte{0x81})
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestForeignEncodingIsDead(t *testing.T) {
	fe := ForeignEncoding("iso-8859-5", charmap.ISO8859_5)
	assert.True(t, fe.Dead())

	// Bulk conversion still works.
	enc, err := fe.Encode("да")
	require.NoError(t, err)
	dec, err := fe.Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, "да", dec)

	// Character-level access is refused.
	_, _, err = fe.DecodeRune(NewBytesSource(enc))
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
}

func TestEncodingRegistry(t *testing.T) {
	got, ok := LookupEncoding("utf-8")
	require.True(t, ok)
	assert.Equal(t, UTF8, got)

	cp := CodePage(charmap.KOI8R)
	RegisterEncoding(cp)
	got, ok = LookupEncoding(cp.Name())
	require.True(t, ok)
	assert.Equal(t, cp, got)
}
