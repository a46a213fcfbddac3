package ringbuf

import (
	"bytes"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsBadCapacity(t *testing.T) {
	for _, cap := range []int{0, -1, 3, 6, 100} {
		_, err := New(cap)
		assert.ErrorIs(t, err, ErrCapacity, "capacity %d", cap)
	}
	r, err := New(8)
	require.NoError(t, err)
	assert.Equal(t, 8, r.Cap())
}

func TestWriteReadBasic(t *testing.T) {
	r, err := New(16)
	require.NoError(t, err)

	n, err := r.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, 5, r.Len())
	assert.Equal(t, 11, r.Free())

	p := make([]byte, 8)
	n, err = r.Read(p)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(p[:n]))
	assert.Equal(t, 0, r.Len())

	_, err = r.Read(p)
	assert.ErrorIs(t, err, io.EOF)
}

func TestWriteFullIsAllOrNothing(t *testing.T) {
	r, err := New(8)
	require.NoError(t, err)

	_, err = r.Write([]byte("123456"))
	require.NoError(t, err)

	// Three more bytes do not fit; the ring must be untouched.
	_, err = r.Write([]byte("abc"))
	assert.ErrorIs(t, err, ErrFull)
	assert.Equal(t, 6, r.Len())

	// Two fit exactly.
	_, err = r.Write([]byte("ab"))
	require.NoError(t, err)
	assert.Equal(t, 0, r.Free())
	assert.ErrorIs(t, r.WriteByte('x'), ErrFull)
}

func TestWrapAround(t *testing.T) {
	r, err := New(8)
	require.NoError(t, err)

	p := make([]byte, 8)
	for i := 0; i < 10; i++ {
		_, err = r.Write([]byte{byte(i), byte(i + 1), byte(i + 2)})
		require.NoError(t, err)
		n, err := r.Read(p)
		require.NoError(t, err)
		assert.Equal(t, []byte{byte(i), byte(i + 1), byte(i + 2)}, p[:n])
	}
}

func TestByteInterfaces(t *testing.T) {
	r, err := New(4)
	require.NoError(t, err)

	require.NoError(t, r.WriteByte(0xAB))
	b, err := r.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0xAB), b)

	_, err = r.ReadByte()
	assert.ErrorIs(t, err, io.EOF)
}

func TestSingleProducerSingleConsumer(t *testing.T) {
	r, err := New(64)
	require.NoError(t, err)

	const total = 64 * 1024
	want := make([]byte, total)
	for i := range want {
		want[i] = byte(i * 31)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for sent := 0; sent < total; {
			chunk := want[sent:min(sent+13, total)]
			if _, err := r.Write(chunk); err == nil {
				sent += len(chunk)
			}
		}
	}()

	var got bytes.Buffer
	p := make([]byte, 17)
	for got.Len() < total {
		n, err := r.Read(p)
		if err == io.EOF {
			continue
		}
		require.NoError(t, err)
		got.Write(p[:n])
	}
	wg.Wait()
	assert.Equal(t, want, got.Bytes())
}
