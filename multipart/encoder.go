package multipart

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/zostay/go-dicomweb/multipart/header"
	"github.com/zostay/go-dicomweb/multipart/payload"
)

const (
	// MultipartRelated is the media type of DICOMweb multipart messages.
	MultipartRelated = "multipart/related"

	// ContentEncodingHint is the Content-Encoding written on parts of unknown
	// size unless WithoutContentEncodingHint is given.
	ContentEncodingHint = "gzip, identity"
)

// maxConsecutiveEmptyReads is the number of (0, nil) reads tolerated from a
// payload stream before Read gives up with io.ErrNoProgress.
const maxConsecutiveEmptyReads = 100

// OutgoingPart describes one part to be encoded. It is immutable once built.
type OutgoingPart struct {
	contentType string
	location    string
	payload     payload.Payload
}

// NewOutgoingPart returns a part with the given Content-Type and payload. The
// content type must be non-empty, and neither it nor any Content-Location may
// contain a line break.
func NewOutgoingPart(contentType string, p payload.Payload, opts ...PartOption) (*OutgoingPart, error) {
	op := &OutgoingPart{contentType: contentType, payload: p}
	for _, opt := range opts {
		opt(op)
	}

	switch {
	case strings.TrimSpace(op.contentType) == "":
		return nil, fmt.Errorf("%w: empty content type", ErrInvalidPart)
	case strings.ContainsAny(op.contentType, "\r\n"):
		return nil, fmt.Errorf("%w: line break in content type", ErrInvalidPart)
	case strings.ContainsAny(op.location, "\r\n"):
		return nil, fmt.Errorf("%w: line break in content location", ErrInvalidPart)
	case op.payload == nil:
		return nil, fmt.Errorf("%w: nil payload", ErrInvalidPart)
	}

	return op, nil
}

// ContentType returns the Content-Type of the part.
func (op *OutgoingPart) ContentType() string {
	return op.contentType
}

// ContentLocation returns the Content-Location of the part or an empty string.
func (op *OutgoingPart) ContentLocation() string {
	return op.location
}

// Payload returns the byte source of the part.
func (op *OutgoingPart) Payload() payload.Payload {
	return op.payload
}

// header renders the delimiter and header block that precede the payload.
func (op *OutgoingPart) header(boundary string, hint bool) []byte {
	buf := &bytes.Buffer{}
	_, _ = fmt.Fprintf(buf, "\r\n--%s\r\n%s: %s", boundary, header.ContentType, op.contentType)

	if size := op.payload.Size(); size >= 0 {
		_, _ = fmt.Fprintf(buf, "\r\n%s: %d", header.ContentLength, size)
	} else if hint {
		_, _ = fmt.Fprintf(buf, "\r\n%s: %s", header.ContentEncoding, ContentEncodingHint)
	}

	if op.location != "" {
		_, _ = fmt.Fprintf(buf, "\r\n%s: %s", header.ContentLocation, op.location)
	}

	buf.WriteString("\r\n\r\n")
	return buf.Bytes()
}

// Encoder assembles a list of parts into a single multipart/related stream.
// The stream is produced lazily as it is read: only one part's bytes are in
// flight at a time, and a payload's NewStream is not called until the reader
// reaches that part. Computed payloads therefore do their work on the
// goroutine reading the Encoder, and only when needed.
//
// An Encoder produces exactly one message and cannot be rewound. It is not
// safe for concurrent use.
type Encoder struct {
	cfg   encoderConfig
	parts []*OutgoingPart

	started     bool
	next        int           // index of the next part whose header is due
	pending     *OutgoingPart // part whose header was sent but payload not opened
	cur         io.Reader     // segment being read
	body        io.Closer     // open payload stream, if cur is a payload
	bodyPart    int
	bodyN       int64
	bodySize    int64
	trailerSent bool

	err error
}

// NewEncoder returns an empty Encoder. Add parts with Add before reading.
func NewEncoder(opts ...EncoderOption) (*Encoder, error) {
	cfg := encoderConfig{encodingHint: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	if !cfg.boundarySet {
		cfg.boundary = GenerateBoundary()
	}

	if err := ValidateBoundary(cfg.boundary); err != nil {
		return nil, fmt.Errorf("%w: %q", err, cfg.boundary)
	}

	return &Encoder{cfg: cfg}, nil
}

// Add appends parts to the message. It fails with ErrEncoderStarted once the
// Encoder has been read from.
func (e *Encoder) Add(parts ...*OutgoingPart) error {
	if e.started {
		return ErrEncoderStarted
	}

	for _, p := range parts {
		if p == nil {
			return fmt.Errorf("%w: nil part", ErrInvalidPart)
		}
	}

	e.parts = append(e.parts, parts...)
	return nil
}

// Len returns the number of parts added.
func (e *Encoder) Len() int {
	return len(e.parts)
}

// Boundary returns the boundary of the message.
func (e *Encoder) Boundary() string {
	return e.cfg.boundary
}

// trailer returns the final delimiter.
func (e *Encoder) trailer() []byte {
	return []byte("\r\n--" + e.cfg.boundary + "--")
}

// ContentType returns the value of the Content-Type header for the whole
// message, naming mediaType as the type of the root part. If mediaType is
// empty, the type parameter is left out.
func (e *Encoder) ContentType(mediaType string) string {
	var b strings.Builder
	b.WriteString(MultipartRelated)
	if mediaType != "" {
		_, _ = fmt.Fprintf(&b, "; type=%s", quoteString(mediaType))
	}
	b.WriteString("; boundary=")
	if strings.ContainsAny(e.cfg.boundary, `()<>@,;:\"/[]?= `) {
		b.WriteString(quoteString(e.cfg.boundary))
	} else {
		b.WriteString(e.cfg.boundary)
	}
	return b.String()
}

var quotedPairs = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// quoteString renders s as an RFC 2045 quoted-string.
func quoteString(s string) string {
	return `"` + quotedPairs.Replace(s) + `"`
}

// ContentLength returns the exact number of bytes the Encoder will produce, or
// -1 if any payload has an unknown size.
func (e *Encoder) ContentLength() int64 {
	total := int64(len(e.trailer()))
	for _, p := range e.parts {
		size := p.payload.Size()
		if size < 0 {
			return -1
		}
		total += int64(len(p.header(e.cfg.boundary, e.cfg.encodingHint))) + size
	}
	return total
}

// advance moves on to the next segment of the stream: a part header, a part
// payload, or the trailer. It returns io.EOF when nothing is left.
func (e *Encoder) advance() error {
	switch {
	case e.pending != nil:
		op := e.pending
		e.pending = nil

		s, err := op.payload.NewStream()
		if err != nil {
			return fmt.Errorf("opening payload of part %d: %w", e.next-1, err)
		}

		e.cur = s
		e.body = s
		e.bodyPart = e.next - 1
		e.bodyN = 0
		e.bodySize = op.payload.Size()

	case e.next < len(e.parts):
		op := e.parts[e.next]
		e.next++

		e.cur = bytes.NewReader(op.header(e.cfg.boundary, e.cfg.encodingHint))
		e.pending = op

	case !e.trailerSent:
		e.cur = bytes.NewReader(e.trailer())
		e.trailerSent = true

	default:
		return io.EOF
	}

	return nil
}

// finishSegment closes the current payload stream, if any, and checks that
// it produced exactly the number of bytes its header promised.
func (e *Encoder) finishSegment() error {
	e.cur = nil
	if e.body == nil {
		return nil
	}

	err := e.body.Close()
	e.body = nil
	if err != nil {
		return fmt.Errorf("closing payload of part %d: %w", e.bodyPart, err)
	}

	if e.bodySize >= 0 && e.bodyN != e.bodySize {
		return fmt.Errorf("%w: payload of part %d declared %d bytes, produced %d",
			ErrLengthMismatch, e.bodyPart, e.bodySize, e.bodyN)
	}

	return nil
}

// fail records a sticky error and releases any open payload stream.
func (e *Encoder) fail(err error) error {
	if e.body != nil {
		_ = e.body.Close()
		e.body = nil
	}
	e.cur = nil
	e.err = err
	return err
}

// Read reads the next bytes of the encoded message. It returns io.EOF after the
// final delimiter and on every call after that.
func (e *Encoder) Read(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	e.started = true
	if len(p) == 0 {
		return 0, nil
	}

	empty := 0
	for {
		if e.cur == nil {
			if err := e.advance(); err != nil {
				return 0, e.fail(err)
			}
		}

		n, err := e.cur.Read(p)
		if e.body != nil {
			e.bodyN += int64(n)
		}

		if errors.Is(err, io.EOF) {
			if ferr := e.finishSegment(); ferr != nil {
				return n, e.fail(ferr)
			}
			if n > 0 {
				return n, nil
			}
			empty = 0
			continue
		} else if err != nil {
			return n, e.fail(err)
		}

		if n > 0 {
			return n, nil
		}

		empty++
		if empty >= maxConsecutiveEmptyReads {
			return 0, e.fail(io.ErrNoProgress)
		}
	}
}

// WriteTo writes the whole encoded message to w.
func (e *Encoder) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, 32*1024)

	var total int64
	for {
		n, err := e.Read(buf)
		if n > 0 {
			wn, werr := w.Write(buf[:n])
			total += int64(wn)
			if werr != nil {
				return total, e.fail(werr)
			}
		}

		if errors.Is(err, io.EOF) {
			return total, nil
		} else if err != nil {
			return total, err
		}
	}
}

// Close releases any payload stream still open. Reading after Close returns
// ErrClosed unless the message was already complete.
func (e *Encoder) Close() error {
	var err error
	if e.body != nil {
		err = e.body.Close()
		e.body = nil
	}

	e.cur = nil
	if e.err == nil {
		e.err = ErrClosed
	}
	return err
}
