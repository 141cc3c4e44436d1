package streambuf_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-dicomweb/internal/streambuf"
)

func TestBuffer_ReadByte(t *testing.T) {
	t.Parallel()

	b := streambuf.New(iotest.OneByteReader(strings.NewReader("abc")), 2)
	assert.Equal(t, 2, b.Size())

	for _, want := range []byte("abc") {
		c, err := b.ReadByte()
		require.NoError(t, err)
		assert.Equal(t, want, c)
	}
	assert.Equal(t, int64(3), b.Position())

	_, err := b.ReadByte()
	assert.ErrorIs(t, err, io.EOF)

	// EOF is sticky
	_, err = b.Fill()
	assert.ErrorIs(t, err, io.EOF)
}

func TestBuffer_FillCompacts(t *testing.T) {
	t.Parallel()

	b := streambuf.New(strings.NewReader("0123456789"), 4)

	n, err := b.Fill()
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte("0123"), b.Peek())

	// full window cannot grow
	_, err = b.Fill()
	assert.ErrorIs(t, err, streambuf.ErrBufferFull)

	_, err = b.Skip(3)
	require.NoError(t, err)
	assert.Equal(t, []byte("3"), b.Peek())

	n, err = b.Fill()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte("3456"), b.Peek())
	assert.Equal(t, 4, b.Buffered())
	assert.Equal(t, int64(3), b.Position())
}

func TestBuffer_Index(t *testing.T) {
	t.Parallel()

	b := streambuf.New(iotest.HalfReader(strings.NewReader("hello--XYZ--")), 64)
	assert.Equal(t, -1, b.Index([]byte("--XYZ")))

	for b.Index([]byte("--XYZ")) < 0 {
		_, err := b.Fill()
		require.NoError(t, err)
	}
	assert.Equal(t, 5, b.Index([]byte("--XYZ")))

	_, err := b.Skip(2)
	require.NoError(t, err)
	assert.Equal(t, 3, b.Index([]byte("--XYZ")))
}

func TestBuffer_ReadAndSkip(t *testing.T) {
	t.Parallel()

	src := bytes.Repeat([]byte("abcdefghij"), 10)
	b := streambuf.New(iotest.DataErrReader(bytes.NewReader(src)), 7)

	p := make([]byte, 15)
	n, err := b.ReadFull(p)
	require.NoError(t, err)
	assert.Equal(t, 15, n)
	assert.Equal(t, src[:15], p)

	n, err = b.Skip(80)
	require.NoError(t, err)
	assert.Equal(t, 80, n)
	assert.Equal(t, int64(95), b.Position())

	rest, err := io.ReadAll(b)
	require.NoError(t, err)
	assert.Equal(t, src[95:], rest)

	n, err = b.Skip(1)
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, io.EOF)
}

func TestBuffer_ReadFullShort(t *testing.T) {
	t.Parallel()

	b := streambuf.New(strings.NewReader("ab"), 16)
	p := make([]byte, 3)
	n, err := b.ReadFull(p)
	assert.Equal(t, 2, n)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestBuffer_Errors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	b := streambuf.New(iotest.ErrReader(boom), 16)
	_, err := b.ReadByte()
	assert.ErrorIs(t, err, boom)

	b = streambuf.New(emptyReader{}, 16)
	_, err = b.Fill()
	assert.ErrorIs(t, err, io.ErrNoProgress)

	assert.Panics(t, func() { streambuf.New(emptyReader{}, 0) })
}

type emptyReader struct{}

func (emptyReader) Read([]byte) (int, error) { return 0, nil }
