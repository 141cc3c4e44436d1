// Package charset decodes the header block of a multipart part into a Go
// string. UTF-8 and US-ASCII are handled directly. Every other charset is
// looked up in the IANA index provided by golang.org/x/text, which covers
// pretty much anything a DICOMweb peer might put on the wire.
package charset

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	_ "golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

// Default is the charset assumed for header blocks when none is configured.
const Default = "utf-8"

// Decode transforms b from the named charset into a string. Bytes that are
// invalid in the source charset become unicode.ReplacementChar.
func Decode(charset string, b []byte) (string, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		if utf8.Valid(b) {
			return string(b), nil
		}
		return strings.ToValidUTF8(string(b), string(unicode.ReplacementChar)), nil
	case "us-ascii", "ascii":
		var s strings.Builder
		s.Grow(len(b))
		for _, c := range b {
			if c > unicode.MaxASCII {
				s.WriteRune(unicode.ReplacementChar)
			} else {
				s.WriteByte(c)
			}
		}
		return s.String(), nil
	}

	e, err := ianaindex.MIME.Encoding(charset)
	if err != nil {
		return "", err
	}

	if e == nil {
		return "", fmt.Errorf("no encoding found for charset %q", charset)
	}

	eb, err := e.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}

	return string(eb), nil
}

// Supported returns an error if Decode cannot handle the named charset.
func Supported(charset string) error {
	_, err := Decode(charset, nil)
	return err
}
