// Package header parses the header block of a single multipart part into
// fields. Only the handful of fields that DICOMweb framing uses get typed
// accessors, but every field is kept and can be fetched by name.
package header

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/zostay/go-dicomweb/multipart/param"
)

// These are the part header fields used by multipart/related DICOMweb bodies.
const (
	ContentEncoding = "Content-Encoding"
	ContentLength   = "Content-Length"
	ContentLocation = "Content-Location"
	ContentType     = "Content-Type"
)

// Errors returned by various header methods.
var (
	// ErrNoSuchField is returned when the named field is not in the header.
	ErrNoSuchField = errors.New("no such header field")

	// ErrManyFields is returned when a field expected once appears more than
	// once. The first value is still returned alongside it.
	ErrManyFields = errors.New("many header fields found")
)

// BadStartError is returned when the header begins with junk text that does not
// appear to be a header field. This text is preserved in the error object. It
// is recoverable: the fields after the junk are still returned.
type BadStartError struct {
	BadStart []byte // the text skipped at the start of header
}

// Error returns the error message.
func (err *BadStartError) Error() string {
	return "header starts with text that does not appear to be a header"
}

// Field is a single header field with continuation lines unfolded.
type Field struct {
	Name string
	Body string
}

// String returns the field as it would be written on the wire.
func (f Field) String() string {
	return fmt.Sprintf("%s: %s", f.Name, f.Body)
}

// Header is the ordered list of fields from one part's header block.
type Header struct {
	fields []Field
}

// Parse splits a header block into fields. Lines may be separated by CRLF or
// by a bare LF. A line that starts with a space or tab, or that contains no
// colon, continues the previous field. If such lines come before any field,
// they are skipped and reported through a *BadStartError, but the parsed
// header is still returned.
func Parse(block string) (*Header, error) {
	h := &Header{fields: make([]Field, 0, 4)}

	var (
		badStart *BadStartError
		lines    [][]byte
	)

	for _, line := range bytes.Split([]byte(block), []byte{'\n'}) {
		line = bytes.TrimSuffix(line, []byte{'\r'})
		if len(line) == 0 {
			continue
		}

		if line[0] == '\t' || line[0] == ' ' || !bytes.Contains(line, []byte{':'}) {
			if len(lines) == 0 {
				if badStart == nil {
					badStart = &BadStartError{}
				}
				badStart.BadStart = append(badStart.BadStart, line...)
				continue
			}

			last := len(lines) - 1
			lines[last] = append(append(lines[last], ' '), bytes.TrimSpace(line)...)
			continue
		}

		lines = append(lines, append([]byte{}, line...))
	}

	for _, line := range lines {
		ix := bytes.IndexByte(line, ':')
		h.fields = append(h.fields, Field{
			Name: string(bytes.TrimSpace(line[:ix])),
			Body: string(bytes.TrimSpace(line[ix+1:])),
		})
	}

	if badStart != nil {
		return h, badStart
	}
	return h, nil
}

// Len returns the number of fields.
func (h *Header) Len() int {
	return len(h.fields)
}

// Fields returns a copy of all fields in order.
func (h *Header) Fields() []Field {
	return append([]Field{}, h.fields...)
}

// GetAll returns the bodies of every field with the given name, compared
// case-insensitively.
func (h *Header) GetAll(name string) []string {
	var bs []string
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			bs = append(bs, f.Body)
		}
	}
	return bs
}

// Get retrieves the body of the named field.
//
// If the named field is not set in the header, it will return an empty string
// with ErrNoSuchField. If there are multiple fields with that name, it will
// return the first body found along with ErrManyFields.
func (h *Header) Get(name string) (string, error) {
	bs := h.GetAll(name)
	switch len(bs) {
	case 0:
		return "", ErrNoSuchField
	case 1:
		return bs[0], nil
	default:
		return bs[0], ErrManyFields
	}
}

// ContentType returns the parsed Content-Type field. A missing field yields an
// empty param.Set.
func (h *Header) ContentType() param.Set {
	ct, err := h.Get(ContentType)
	if err != nil && !errors.Is(err, ErrManyFields) {
		return param.Set{}
	}
	return param.Parse(ct)
}

// MediaType returns the bare media type from the Content-Type field, e.g.,
// "application/dicom", or an empty string if there is none.
func (h *Header) MediaType() string {
	return h.ContentType().MediaType()
}

// ContentLocation returns the Content-Location field or an empty string.
func (h *Header) ContentLocation() string {
	loc, _ := h.Get(ContentLocation)
	return loc
}

// ContentLength returns the value of the Content-Length field, or -1 if the
// field is absent. It returns an error if the field is repeated with
// conflicting values or cannot be parsed as a non-negative integer.
func (h *Header) ContentLength() (int64, error) {
	bs := h.GetAll(ContentLength)
	if len(bs) == 0 {
		return -1, nil
	}

	for _, b := range bs[1:] {
		if b != bs[0] {
			return -1, fmt.Errorf("conflicting %s values %q and %q", ContentLength, bs[0], b)
		}
	}

	n, err := strconv.ParseInt(bs[0], 10, 64)
	if err != nil || n < 0 {
		return -1, fmt.Errorf("invalid %s %q", ContentLength, bs[0])
	}

	return n, nil
}
