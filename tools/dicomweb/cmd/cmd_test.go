package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/go-dicomweb/multipart"
)

// run executes the root command with flags back at their defaults. The
// commands share package state, so these tests do not run in parallel.
func run(t *testing.T, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()

	bufferSize, maxHeaderSize, headerCharset = multipart.DefaultBufferSize, multipart.DefaultMaxHeaderSize, "utf-8"
	splitContentType, splitMediaType, splitOut = "", multipart.MultipartRelated, ""
	packBoundary, packType, packLocations, packNoHint = "", "application/dicom", nil, false
	roundtripContentType, roundtripMediaType, roundtripStrict = "", multipart.MultipartRelated, false

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

const contentType = `multipart/related; type="application/dicom"; boundary=XYZ`

func TestPackAndSplit(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "1.dcm")
	second := filepath.Join(dir, "2.dcm")
	require.NoError(t, os.WriteFile(first, []byte("DICM first"), 0o600))
	require.NoError(t, os.WriteFile(second, bytes.Repeat([]byte("DICM"), 2_000), 0o600))

	msg, headers, err := run(t, strings.NewReader(""), "pack", "-b", "XYZ", "-l", "/studies/1", "-l", "/studies/2", first, second)
	require.NoError(t, err)
	assert.Contains(t, headers, "Content-Type: "+contentType+"\n")
	assert.Contains(t, headers, "Content-Length: ")
	assert.True(t, strings.HasSuffix(msg, "\r\n--XYZ--"))

	msgPath := filepath.Join(dir, "message")
	require.NoError(t, os.WriteFile(msgPath, []byte(msg), 0o600))

	out := filepath.Join(dir, "parts")
	summary, _, err := run(t, strings.NewReader(""), "split", "-c", contentType, "-o", out, "--buffer-size", "256", msgPath)
	require.NoError(t, err)
	assert.Equal(t,
		"0000\tapplication/dicom\t/studies/1\t10\t"+filepath.Join(out, "part-0000")+"\n"+
			"0001\tapplication/dicom\t/studies/2\t8000\t"+filepath.Join(out, "part-0001")+"\n",
		summary)

	got, err := os.ReadFile(filepath.Join(out, "part-0001"))
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte("DICM"), 2_000), got)
}

func TestPack_Stdin(t *testing.T) {
	msg, headers, err := run(t, strings.NewReader("from stdin"), "pack", "-b", "XYZ", "-t", "application/octet-stream", "-")
	require.NoError(t, err)
	assert.NotContains(t, headers, "Content-Length")
	assert.Equal(t, "\r\n--XYZ\r\n"+
		"Content-Type: application/octet-stream\r\n"+
		"Content-Encoding: gzip, identity\r\n"+
		"\r\n"+
		"from stdin"+
		"\r\n--XYZ--", msg)

	_, _, err = run(t, strings.NewReader(""), "pack", "-l", "/a", "-l", "/b", "-")
	assert.Error(t, err)
}

func TestSplit_Stdin(t *testing.T) {
	msg := "--XYZ\r\n\r\nno headers\r\n--XYZ--"
	summary, _, err := run(t, strings.NewReader(msg), "split", "-c", contentType, "-")
	require.NoError(t, err)
	assert.Equal(t, "0000\t-\t-\t10\t-\n", summary)

	_, _, err = run(t, strings.NewReader(msg), "split", "-c", "multipart/related", "-")
	assert.ErrorIs(t, err, multipart.ErrNoBoundary)
}

func TestRoundtrip(t *testing.T) {
	identical := "\r\n--XYZ\r\n" +
		"Content-Type: application/dicom\r\n" +
		"Content-Length: 4\r\n" +
		"\r\n" +
		"DICM" +
		"\r\n--XYZ--"

	out, _, err := run(t, strings.NewReader(identical), "roundtrip", "-c", contentType, "-")
	require.NoError(t, err)
	assert.Equal(t, "round trip is identical\n", out)

	// no Content-Length on the way in, so one appears on the way out
	changed := "--XYZ\r\n\r\nDICM\r\n--XYZ--"
	out, errOut, err := run(t, strings.NewReader(changed), "roundtrip", "-c", contentType, "-")
	require.NoError(t, err)
	assert.Contains(t, out, "@@")
	assert.Contains(t, errOut, "part 0 has no Content-Type")

	_, _, err = run(t, strings.NewReader(changed), "roundtrip", "--strict", "-c", contentType, "-")
	assert.ErrorIs(t, err, ErrRoundTripDiffers)
}

func TestDiffMessages(t *testing.T) {
	patch, same := diffMessages([]byte("DICM\xff\x00"), []byte("DICM\xff\x00"))
	assert.True(t, same)
	assert.Empty(t, patch)

	// both bodies are invalid UTF-8 and differ in one high byte
	patch, same = diffMessages([]byte("DICM\xff\x00"), []byte("DICM\xfe\x00"))
	assert.False(t, same)
	assert.Contains(t, patch, "@@")

	patch, same = diffMessages([]byte("a\r\n\xc0"), []byte("a\r\n\xc1"))
	assert.False(t, same)
	assert.Contains(t, patch, "@@")
}

func TestQuoteLines(t *testing.T) {
	assert.Equal(t, "", quoteLines(nil))
	assert.Equal(t, `"DICM\xff\x00"`+"\n", quoteLines([]byte("DICM\xff\x00")))
	assert.Equal(t, `"--XYZ\r\n"`+"\n"+`"\xfe--"`+"\n", quoteLines([]byte("--XYZ\r\n\xfe--")))
	assert.NotEqual(t, quoteLines([]byte("\xff")), quoteLines([]byte("\xfe")))
}
