// Package payload provides the byte sources of outgoing multipart parts. A
// Payload knows its size (when it can) and produces a fresh stream over its
// content every time NewStream is called, so a message can be encoded more
// than once from the same parts.
//
// Three kinds are provided: fixed bytes held in memory, a file on disk, and a
// computed payload whose work is deferred until a stream is requested. The
// last is how a caller plugs in just-in-time work such as pixel data
// transcoding without buffering the result ahead of time.
package payload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// UnknownSize is returned by Size when the length of a payload cannot be known
// until it has been streamed.
const UnknownSize int64 = -1

// Errors returned by the payload constructors.
var (
	// ErrNilFunc is returned when a computed payload is given no function.
	ErrNilFunc = errors.New("payload function is nil")

	// ErrInvalidSize is returned when a size less than UnknownSize is given.
	ErrInvalidSize = errors.New("payload size is invalid")
)

// Payload is the byte source of an outgoing part.
type Payload interface {
	// Size returns the exact number of bytes NewStream will produce or
	// UnknownSize.
	Size() int64

	// NewStream returns a new stream positioned at the start of the content.
	// Each call is independent of every other. The caller must close it.
	NewStream() (io.ReadCloser, error)
}

// Bytes is a Payload held entirely in memory.
type Bytes struct {
	b []byte
}

// FromBytes returns a Payload over a private copy of b.
func FromBytes(b []byte) *Bytes {
	return &Bytes{append([]byte{}, b...)}
}

// FromString returns a Payload over the bytes of s.
func FromString(s string) *Bytes {
	return &Bytes{[]byte(s)}
}

// Size returns the length of the bytes.
func (p *Bytes) Size() int64 {
	return int64(len(p.b))
}

// NewStream returns a reader over the bytes. It never fails.
func (p *Bytes) NewStream() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(p.b)), nil
}

// File is a Payload backed by a file on disk. The size is captured when the
// File is created.
type File struct {
	path string
	size int64
}

// FromFile returns a Payload for the named file. It fails if the file cannot
// be stat'd or is a directory.
func FromFile(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if info.IsDir() {
		return nil, fmt.Errorf("payload path %q is a directory", path)
	}

	return &File{path, info.Size()}, nil
}

// Path returns the name of the file.
func (p *File) Path() string {
	return p.path
}

// Size returns the size of the file when the payload was created.
func (p *File) Size() int64 {
	return p.size
}

// NewStream opens a new handle on the file.
func (p *File) NewStream() (io.ReadCloser, error) {
	return os.Open(p.path)
}

// Computed is a Payload whose content is produced by a function, which is not
// called until a stream is requested.
type Computed struct {
	size int64
	open func() (io.ReadCloser, error)
}

// FromFunc returns a Payload that calls open for every NewStream. The size may
// be UnknownSize. If it is known, open must produce exactly that many bytes.
func FromFunc(size int64, open func() (io.ReadCloser, error)) (*Computed, error) {
	if open == nil {
		return nil, ErrNilFunc
	}

	if size < UnknownSize {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	return &Computed{size, open}, nil
}

// Lazy returns a Payload of unknown size that calls compute for every
// NewStream and streams the returned bytes.
func Lazy(compute func() ([]byte, error)) (*Computed, error) {
	if compute == nil {
		return nil, ErrNilFunc
	}

	return &Computed{
		size: UnknownSize,
		open: func() (io.ReadCloser, error) {
			b, err := compute()
			if err != nil {
				return nil, err
			}
			return io.NopCloser(bytes.NewReader(b)), nil
		},
	}, nil
}

// Size returns the declared size or UnknownSize.
func (p *Computed) Size() int64 {
	return p.size
}

// NewStream runs the deferred function.
func (p *Computed) NewStream() (io.ReadCloser, error) {
	return p.open()
}
