package charset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zostay/go-dicomweb/multipart/charset"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	s, err := charset.Decode(charset.Default, []byte("Content-Location: /studies/1.2.3"))
	assert.NoError(t, err)
	assert.Equal(t, "Content-Location: /studies/1.2.3", s)

	// invalid utf-8 is replaced rather than rejected
	s, err = charset.Decode("UTF-8", []byte{'a', 0xff, 'b'})
	assert.NoError(t, err)
	assert.Equal(t, "a�b", s)

	s, err = charset.Decode("us-ascii", []byte{'a', 0xe9})
	assert.NoError(t, err)
	assert.Equal(t, "a�", s)

	s, err = charset.Decode("ISO-8859-1", []byte{'c', 'a', 'f', 0xe9})
	assert.NoError(t, err)
	assert.Equal(t, "café", s)

	s, err = charset.Decode("iso-8859-7", []byte{0xcb, 0xef, 0xe3, 0xef, 0xf2})
	assert.NoError(t, err)
	assert.Equal(t, "Λογος", s)
}

func TestSupported(t *testing.T) {
	t.Parallel()

	assert.NoError(t, charset.Supported(""))
	assert.NoError(t, charset.Supported("utf-8"))
	assert.NoError(t, charset.Supported("windows-1252"))
	assert.Error(t, charset.Supported("x-no-such-charset"))
}
