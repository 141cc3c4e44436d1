package multipart

import (
	"fmt"
	"io"

	"github.com/zostay/go-dicomweb/multipart/header"
)

// Part is one part of a message being decoded: its header block and a bounded
// stream over its body. A Part is only valid until the Reader moves on to the
// next part, at which point it is drained and closed.
type Part struct {
	*PartBody

	// Header holds the parsed fields of the part header block.
	Header *header.Header

	raw string
}

// RawHeader returns the header block exactly as it was read (after charset
// decoding), without the blank line that ended it.
func (p *Part) RawHeader() string {
	return p.raw
}

// ContentType returns the body of the Content-Type field or an empty string.
func (p *Part) ContentType() string {
	ct, _ := p.Header.Get(header.ContentType)
	return ct
}

// ContentLocation returns the body of the Content-Location field or an empty
// string.
func (p *Part) ContentLocation() string {
	return p.Header.ContentLocation()
}

// ContentLength returns the declared Content-Length or -1 if none was given.
func (p *Part) ContentLength() int64 {
	return p.declared
}

// PartBody is the body of a single part. Reads return io.EOF at the delimiter
// that ends the part, even though the underlying stream continues with later
// parts. PartBody does not own the underlying stream.
//
// Closing a PartBody before it has been read to the end drains everything up
// to the delimiter. Afterward the Reader is positioned exactly on the next
// delimiter, no matter how much of the body the caller consumed.
type PartBody struct {
	r        *Reader
	n        int64 // bytes delivered or drained so far
	declared int64 // Content-Length or -1
	done     bool  // delimiter reached
	closed   bool
}

// available returns how many bytes may be handed out before the delimiter.
// When the delimiter is not resident, the last len(delim)-1 bytes are held
// back because they might be the start of a delimiter split across refills.
// Zero means the delimiter is at the read cursor.
func (p *PartBody) available() (int, error) {
	r := p.r
	if r.err != nil {
		return 0, r.err
	}

	keep := len(r.delim) - 1
	for {
		if ix := r.buf.Index(r.delim); ix >= 0 {
			return ix, nil
		}

		if n := r.buf.Buffered() - keep; n > 0 {
			return n, nil
		}

		if _, err := r.buf.Fill(); err != nil {
			return 0, r.fail(err)
		}
	}
}

// finish marks the delimiter as reached and checks the declared length.
func (p *PartBody) finish() error {
	p.done = true
	if p.declared >= 0 && p.n != p.declared {
		return p.r.protocolError(fmt.Errorf("%w: declared %d, found %d", ErrLengthMismatch, p.declared, p.n))
	}
	p.r.state = stateBoundary
	return nil
}

// Read reads from the part body, returning io.EOF at the end of the part.
func (p *PartBody) Read(b []byte) (int, error) {
	if p.closed || p.r.closed {
		return 0, ErrClosed
	}
	if p.done {
		if p.r.err != nil {
			return 0, p.r.err
		}
		return 0, io.EOF
	}
	if len(b) == 0 {
		return 0, nil
	}

	avail, err := p.available()
	if err != nil {
		return 0, err
	}

	if avail == 0 {
		if err := p.finish(); err != nil {
			return 0, err
		}
		return 0, io.EOF
	}

	if len(b) > avail {
		b = b[:avail]
	}

	n, err := p.r.buf.Read(b)
	p.n += int64(n)
	if err != nil {
		return n, p.r.fail(err)
	}
	return n, nil
}

// Len returns the number of body bytes read or drained so far.
func (p *PartBody) Len() int64 {
	return p.n
}

// Close drains the rest of the body so the Reader is left on the next
// delimiter. It is safe to call more than once.
func (p *PartBody) Close() error {
	if p.closed {
		return nil
	}
	defer func() { p.closed = true }()

	if p.r.closed {
		return nil
	}

	for !p.done {
		avail, err := p.available()
		if err != nil {
			return err
		}

		if avail == 0 {
			return p.finish()
		}

		n, err := p.r.buf.Skip(avail)
		p.n += int64(n)
		if err != nil {
			return p.r.fail(err)
		}
	}

	return nil
}
