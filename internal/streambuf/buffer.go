// Package streambuf provides a fixed-capacity read-ahead window over an
// io.Reader. Unlike bufio.Reader, it exposes the resident window to pattern
// search and lets the caller decide exactly when to refill, which is what a
// boundary scanner needs to reason about matches split across two reads.
package streambuf

import (
	"bytes"
	"errors"
	"io"
)

// maxConsecutiveEmptyReads is the number of (0, nil) reads tolerated from the
// underlying reader before Fill gives up with io.ErrNoProgress.
const maxConsecutiveEmptyReads = 100

// ErrBufferFull is returned by Fill when the window has no free space left
// even after compaction.
var ErrBufferFull = errors.New("stream buffer is full")

// Buffer is a read-ahead window of fixed capacity. Bytes in buf[r:w] are
// resident and unread.
type Buffer struct {
	rd  io.Reader
	buf []byte
	r   int
	w   int
	pos int64
	err error
}

// New returns a Buffer reading from rd with a window of exactly size bytes.
// It panics if size is not positive.
func New(rd io.Reader, size int) *Buffer {
	if size <= 0 {
		panic("streambuf: non-positive buffer size")
	}
	return &Buffer{rd: rd, buf: make([]byte, size)}
}

// Size returns the capacity of the window.
func (b *Buffer) Size() int {
	return len(b.buf)
}

// Buffered returns the number of resident, unread bytes.
func (b *Buffer) Buffered() int {
	return b.w - b.r
}

// Position returns the total number of bytes consumed from the buffer so far.
func (b *Buffer) Position() int64 {
	return b.pos
}

// Peek returns the resident, unread bytes without consuming them. The slice
// is only valid until the next call to Fill.
func (b *Buffer) Peek() []byte {
	return b.buf[b.r:b.w]
}

// Index returns the offset of the first occurrence of pattern within the
// resident window, relative to the read cursor, or -1 if it is not resident.
// Only the current window is searched, so a caller must search again after
// every Fill.
func (b *Buffer) Index(pattern []byte) int {
	return bytes.Index(b.buf[b.r:b.w], pattern)
}

// Fill moves any unread bytes to the front of the window and then performs a
// single read from the underlying reader into the free space. It returns the
// number of bytes added.
//
// Once the underlying reader has returned an error (including io.EOF), that
// error is returned from every subsequent Fill. A read that returns both data
// and an error keeps the data and reports the error on the next call.
func (b *Buffer) Fill() (int, error) {
	if b.r > 0 {
		copy(b.buf, b.buf[b.r:b.w])
		b.w -= b.r
		b.r = 0
	}

	if b.w >= len(b.buf) {
		return 0, ErrBufferFull
	}

	if b.err != nil {
		return 0, b.err
	}

	for i := maxConsecutiveEmptyReads; i > 0; i-- {
		n, err := b.rd.Read(b.buf[b.w:])
		if n < 0 {
			panic("streambuf: reader returned negative count from Read")
		}
		b.w += n
		if err != nil {
			b.err = err
			if n > 0 {
				return n, nil
			}
			return 0, err
		}
		if n > 0 {
			return n, nil
		}
	}

	b.err = io.ErrNoProgress
	return 0, b.err
}

// ReadByte returns the next byte, filling the window if it is empty.
func (b *Buffer) ReadByte() (byte, error) {
	for b.r == b.w {
		if _, err := b.Fill(); err != nil {
			return 0, err
		}
	}

	c := b.buf[b.r]
	b.r++
	b.pos++
	return c, nil
}

// Read copies resident bytes into p. It only fills the window when nothing is
// resident, so it never blocks if data is already buffered.
func (b *Buffer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	for b.r == b.w {
		if _, err := b.Fill(); err != nil {
			return 0, err
		}
	}

	n := copy(p, b.buf[b.r:b.w])
	b.r += n
	b.pos += int64(n)
	return n, nil
}

// ReadFull reads exactly len(p) bytes, filling as often as needed. If the
// underlying reader ends first, it returns io.ErrUnexpectedEOF (or io.EOF if
// nothing at all was read).
func (b *Buffer) ReadFull(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		m, err := b.Read(p[n:])
		n += m
		if err != nil {
			if errors.Is(err, io.EOF) && n > 0 {
				err = io.ErrUnexpectedEOF
			}
			return n, err
		}
	}
	return n, nil
}

// Skip discards the next n bytes, filling as often as needed. It returns the
// number of bytes actually discarded.
func (b *Buffer) Skip(n int) (int, error) {
	skipped := 0
	for skipped < n {
		if b.r == b.w {
			if _, err := b.Fill(); err != nil {
				return skipped, err
			}
			continue
		}

		k := b.w - b.r
		if k > n-skipped {
			k = n - skipped
		}
		b.r += k
		b.pos += int64(k)
		skipped += k
	}
	return skipped, nil
}
