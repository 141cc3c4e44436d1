package multipart

import (
	"errors"
	"fmt"
	"io"

	"github.com/zostay/go-dicomweb/internal/streambuf"
	"github.com/zostay/go-dicomweb/multipart/charset"
	"github.com/zostay/go-dicomweb/multipart/header"
	"github.com/zostay/go-dicomweb/multipart/param"
)

type readerState int

const (
	stateStart    readerState = iota // nothing read yet
	stateHeaders                     // just past a boundary line
	stateBody                        // header block read, body not yet finished
	stateBoundary                    // positioned exactly on a delimiter
	stateEnd                         // final boundary read
)

var (
	crlf             = [2]byte{'\r', '\n'}
	dashes           = [2]byte{'-', '-'}
	headerTerminator = []byte("\r\n\r\n")
)

// Reader decodes a multipart/related message one part at a time, without ever
// holding more than a fixed window of the input in memory.
//
// The message is consumed by a strict state machine:
//
//	START -> (preamble) -> BOUNDARY -> HEADERS -> BODY -> BOUNDARY -> ... -> END
//
// Most callers only need NextPart or Walk. The individual steps
// (SkipFirstBoundary, ReadHeaders, NewPartBodyStream, ReadBoundary) are
// exported for callers that want to drive the state machine themselves.
//
// Any ProtocolError or I/O error is fatal: every later call returns it again.
// A Reader is not safe for concurrent use.
type Reader struct {
	src   io.Reader
	buf   *streambuf.Buffer
	cfg   readerConfig
	delim []byte // CRLF "--" boundary

	state    readerState
	header   *header.Header
	declared int64
	part     *PartBody

	err    error
	closed bool
}

// NewReader returns a Reader over r for a message with the given boundary. The
// Reader owns r: Close will close it if it is an io.Closer.
//
// The boundary must be non-empty, at most MaxBoundaryLength bytes, and made of
// printable ASCII. Otherwise, ErrInvalidBoundary is returned.
func NewReader(r io.Reader, boundary []byte, opts ...ReaderOption) (*Reader, error) {
	if err := validateReaderBoundary(boundary); err != nil {
		return nil, err
	}

	cfg := defaultReaderConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := charset.Supported(cfg.headerCharset); err != nil {
		return nil, fmt.Errorf("header charset %q: %w", cfg.headerCharset, err)
	}

	delim := make([]byte, 0, len(boundary)+4)
	delim = append(delim, "\r\n--"...)
	delim = append(delim, boundary...)

	return &Reader{
		src:      r,
		buf:      streambuf.New(r, cfg.bufferSize),
		cfg:      cfg,
		delim:    delim,
		declared: -1,
	}, nil
}

// NewReaderFromContentType is NewReader, but takes the boundary from the
// Content-type header value of the message. The header must name mediaType
// (e.g., "multipart/related") or ErrNoBoundary is returned.
func NewReaderFromContentType(r io.Reader, contentType, mediaType string, opts ...ReaderOption) (*Reader, error) {
	b, ok := param.ExtractBoundary(contentType, mediaType)
	if !ok {
		return nil, ErrNoBoundary
	}
	return NewReader(r, b, opts...)
}

// validateReaderBoundary is more liberal than ValidateBoundary. We accept any
// printable ASCII on input since peers do not always follow RFC 2046.
func validateReaderBoundary(b []byte) error {
	if len(b) < 1 || len(b) > MaxBoundaryLength {
		return ErrInvalidBoundary
	}
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return ErrInvalidBoundary
		}
	}
	return nil
}

// Boundary returns the boundary being searched for.
func (r *Reader) Boundary() []byte {
	return append([]byte{}, r.delim[4:]...)
}

// Position returns the number of input bytes consumed so far.
func (r *Reader) Position() int64 {
	return r.buf.Position()
}

// protocolError records a fatal ProtocolError.
func (r *Reader) protocolError(cause error) error {
	r.err = &ProtocolError{Offset: r.buf.Position(), Err: cause}
	return r.err
}

// fail records a fatal error from the stream buffer. Running out of input is
// always a protocol error here because every caller needs more bytes.
func (r *Reader) fail(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return r.protocolError(ErrUnexpectedEOF)
	}
	r.err = fmt.Errorf("multipart: reading input: %w", err)
	return r.err
}

// check returns an error unless the Reader is healthy and in the wanted state.
func (r *Reader) check(want readerState) error {
	if r.closed {
		return ErrClosed
	}
	if r.err != nil {
		return r.err
	}
	if r.state != want {
		return ErrOutOfOrder
	}
	return nil
}

// SkipFirstBoundary discards any preamble up to and including the first
// boundary. The first boundary may start the stream, so it is matched without
// the leading CRLF. It returns true if a part follows and false if the boundary
// was the final one (i.e., the message has no parts). A stream that ends before
// any boundary also has no parts.
func (r *Reader) SkipFirstBoundary() (bool, error) {
	if err := r.check(stateStart); err != nil {
		return false, err
	}

	first := r.delim[2:]
	keep := len(first) - 1
	for {
		if ix := r.buf.Index(first); ix >= 0 {
			if _, err := r.buf.Skip(ix + len(first)); err != nil {
				return false, r.fail(err)
			}
			break
		}

		// anything before the last keep bytes cannot start the boundary
		if n := r.buf.Buffered() - keep; n > 0 {
			if _, err := r.buf.Skip(n); err != nil {
				return false, r.fail(err)
			}
		}

		if _, err := r.buf.Fill(); errors.Is(err, io.EOF) {
			r.state = stateEnd
			return false, nil
		} else if err != nil {
			return false, r.fail(err)
		}
	}

	return r.readTerminator()
}

// readTerminator reads the two bytes that follow a boundary.
func (r *Reader) readTerminator() (bool, error) {
	var t [2]byte
	if _, err := r.buf.ReadFull(t[:]); err != nil {
		return false, r.fail(err)
	}

	switch t {
	case crlf:
		r.state = stateHeaders
		return true, nil
	case dashes:
		r.state = stateEnd
		return false, nil
	}

	return false, r.protocolError(fmt.Errorf("%w %q", ErrBadTerminator, t[:]))
}

// ReadHeaders reads the header block of the current part, up to and including
// the blank line that ends it, and returns it decoded with the configured
// header charset. The returned string does not include the terminating blank
// line. A header block longer than the configured maximum fails with
// ErrHeaderTooLarge.
func (r *Reader) ReadHeaders() (string, error) {
	if err := r.check(stateHeaders); err != nil {
		return "", err
	}

	block, err := r.readHeaderBlock()
	if err != nil {
		return "", err
	}

	s, err := charset.Decode(r.cfg.headerCharset, block)
	if err != nil {
		r.err = fmt.Errorf("multipart: decoding part header: %w", err)
		return "", r.err
	}

	// junk before the first field is tolerated
	h, _ := header.Parse(s)

	n, err := h.ContentLength()
	if err != nil {
		return "", r.protocolError(fmt.Errorf("%w: %v", ErrBadContentLength, err))
	}

	r.header = h
	r.declared = n
	r.part = nil
	r.state = stateBody

	return s, nil
}

// readHeaderBlock accumulates bytes until CRLF CRLF. The CRLF ending the
// boundary line has already been consumed, so matching starts two bytes in,
// which lets an empty header block end on the very first CRLF.
func (r *Reader) readHeaderBlock() ([]byte, error) {
	acc := make([]byte, 0, 256)
	matched := 2
	for matched < len(headerTerminator) {
		c, err := r.buf.ReadByte()
		if err != nil {
			return nil, r.fail(err)
		}

		if len(acc) >= r.cfg.maxHeaderSize {
			return nil, r.protocolError(ErrHeaderTooLarge)
		}
		acc = append(acc, c)

		switch {
		case c == headerTerminator[matched]:
			matched++
		case c == '\r':
			matched = 1
		default:
			matched = 0
		}
	}

	trim := len(headerTerminator)
	if len(acc) < trim {
		trim = len(acc)
	}
	return acc[:len(acc)-trim], nil
}

// NewPartBodyStream returns the body of the current part. Only one body
// stream may be created per part.
func (r *Reader) NewPartBodyStream() (*PartBody, error) {
	if err := r.check(stateBody); err != nil {
		return nil, err
	}

	if r.part != nil {
		return nil, ErrOutOfOrder
	}

	r.part = &PartBody{r: r, declared: r.declared}
	return r.part, nil
}

// ReadBoundary moves past the delimiter that ends the current part. If the
// current part's body has not been closed, it is closed first, which drains
// whatever the caller left unread. It returns true if another part follows
// and false if this was the final boundary.
func (r *Reader) ReadBoundary() (bool, error) {
	if r.closed {
		return false, ErrClosed
	}
	if r.err != nil {
		return false, r.err
	}

	switch r.state {
	case stateBody:
		if r.part == nil {
			r.part = &PartBody{r: r, declared: r.declared}
		}
		if err := r.part.Close(); err != nil {
			return false, err
		}
	case stateBoundary:
	default:
		return false, ErrOutOfOrder
	}

	r.part = nil
	r.header = nil
	r.declared = -1

	if _, err := r.buf.Skip(len(r.delim)); err != nil {
		return false, r.fail(err)
	}

	return r.readTerminator()
}

// NextPart returns the next part of the message or io.EOF after the final
// boundary. Any previous part is drained and closed first, so the caller may
// read as much or as little of each part as it likes.
func (r *Reader) NextPart() (*Part, error) {
	if r.closed {
		return nil, ErrClosed
	}
	if r.err != nil {
		return nil, r.err
	}

	var (
		more bool
		err  error
	)

	switch r.state {
	case stateStart:
		more, err = r.SkipFirstBoundary()
	case stateHeaders:
		more = true
	case stateBody, stateBoundary:
		more, err = r.ReadBoundary()
	case stateEnd:
		return nil, io.EOF
	}

	if err != nil {
		return nil, err
	}

	if !more {
		return nil, io.EOF
	}

	raw, err := r.ReadHeaders()
	if err != nil {
		return nil, err
	}

	h := r.header
	body, err := r.NewPartBodyStream()
	if err != nil {
		return nil, err
	}

	return &Part{PartBody: body, Header: h, raw: raw}, nil
}

// Close closes the underlying reader if it is an io.Closer. Nothing is drained.
// Any part still open becomes unreadable.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}

	r.closed = true
	if c, isCloser := r.src.(io.Closer); isCloser {
		return c.Close()
	}
	return nil
}
