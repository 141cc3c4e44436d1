package header_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-dicomweb/multipart/header"
)

func TestParse(t *testing.T) {
	t.Parallel()

	h, err := header.Parse("Content-Type: application/dicom; transfer-syntax=1.2.840.10008.1.2.1\r\nContent-Length: 100\r\nContent-Location: /studies/1/series/2/instances/3")
	require.NoError(t, err)
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, []header.Field{
		{Name: "Content-Type", Body: "application/dicom; transfer-syntax=1.2.840.10008.1.2.1"},
		{Name: "Content-Length", Body: "100"},
		{Name: "Content-Location", Body: "/studies/1/series/2/instances/3"},
	}, h.Fields())

	assert.Equal(t, "application/dicom", h.MediaType())
	assert.Equal(t, "1.2.840.10008.1.2.1", h.ContentType().Value("transfer-syntax"))
	assert.Equal(t, "/studies/1/series/2/instances/3", h.ContentLocation())

	n, err := h.ContentLength()
	assert.NoError(t, err)
	assert.Equal(t, int64(100), n)

	assert.Equal(t, "Content-Length: 100", h.Fields()[1].String())
}

func TestParse_Folded(t *testing.T) {
	t.Parallel()

	h, err := header.Parse("content-type: multipart/related;\r\n\ttype=\"application/dicom\"\nX-Other:a")
	require.NoError(t, err)

	ct, err := h.Get(header.ContentType)
	assert.NoError(t, err)
	assert.Equal(t, `multipart/related; type="application/dicom"`, ct)

	x, err := h.Get("x-other")
	assert.NoError(t, err)
	assert.Equal(t, "a", x)
}

func TestParse_BadStart(t *testing.T) {
	t.Parallel()

	h, err := header.Parse(" junk\r\nmore junk\r\nContent-Type: text/plain")

	var badStart *header.BadStartError
	require.ErrorAs(t, err, &badStart)
	assert.Equal(t, []byte(" junkmore junk"), badStart.BadStart)
	assert.Equal(t, "text/plain", h.MediaType())
}

func TestHeader_Get(t *testing.T) {
	t.Parallel()

	h, err := header.Parse("A: 1\r\nB: 2\r\na: 3")
	require.NoError(t, err)

	_, err = h.Get("C")
	assert.ErrorIs(t, err, header.ErrNoSuchField)

	v, err := h.Get("a")
	assert.ErrorIs(t, err, header.ErrManyFields)
	assert.Equal(t, "1", v)
	assert.Equal(t, []string{"1", "3"}, h.GetAll("A"))
}

func TestHeader_Empty(t *testing.T) {
	t.Parallel()

	h, err := header.Parse("")
	require.NoError(t, err)
	assert.Equal(t, 0, h.Len())
	assert.Equal(t, "", h.MediaType())
	assert.Equal(t, "", h.ContentLocation())

	n, err := h.ContentLength()
	assert.NoError(t, err)
	assert.Equal(t, int64(-1), n)
}

func TestHeader_ContentLength(t *testing.T) {
	t.Parallel()

	h, _ := header.Parse("Content-Length: 12\r\nContent-Length: 12")
	n, err := h.ContentLength()
	assert.NoError(t, err)
	assert.Equal(t, int64(12), n)

	h, _ = header.Parse("Content-Length: 12\r\nContent-Length: 13")
	_, err = h.ContentLength()
	assert.Error(t, err)

	h, _ = header.Parse("Content-Length: -4")
	_, err = h.ContentLength()
	assert.Error(t, err)

	h, _ = header.Parse("Content-Length: lots")
	_, err = h.ContentLength()
	assert.Error(t, err)
}
