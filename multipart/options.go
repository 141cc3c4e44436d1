package multipart

import (
	"github.com/zostay/go-dicomweb/multipart/charset"
)

// Constants related to Reader options.
const (
	// DefaultBufferSize is the default size of the Reader's read-ahead window.
	DefaultBufferSize = 4_096

	// MinBufferSize and MaxBufferSize bound the read-ahead window. Sizes
	// outside the range given to WithBufferSize are clamped into it.
	MinBufferSize = 256
	MaxBufferSize = 1_048_576

	// DefaultMaxHeaderSize is the default maximum byte length of a part header
	// block before the Reader gives up with ErrHeaderTooLarge.
	DefaultMaxHeaderSize = 16_384
)

type readerConfig struct {
	bufferSize    int
	maxHeaderSize int
	headerCharset string
}

func defaultReaderConfig() readerConfig {
	return readerConfig{
		bufferSize:    DefaultBufferSize,
		maxHeaderSize: DefaultMaxHeaderSize,
		headerCharset: charset.Default,
	}
}

// ReaderOption modifies how a Reader decodes its input.
type ReaderOption func(rc *readerConfig)

// WithBufferSize sets the size of the fixed read-ahead window. This is the
// only memory that grows with the size of part bodies, so it bounds how much
// of any one part is resident at a time. The size is clamped to the range
// [MinBufferSize, MaxBufferSize]. The default is DefaultBufferSize.
func WithBufferSize(n int) ReaderOption {
	return func(rc *readerConfig) {
		switch {
		case n < MinBufferSize:
			n = MinBufferSize
		case n > MaxBufferSize:
			n = MaxBufferSize
		}
		rc.bufferSize = n
	}
}

// WithMaxHeaderSize sets the maximum size a part header block may reach before
// decoding fails with ErrHeaderTooLarge. This prevents bad input from causing
// unbounded memory growth. Values less than 1 restore DefaultMaxHeaderSize.
func WithMaxHeaderSize(n int) ReaderOption {
	return func(rc *readerConfig) {
		if n < 1 {
			n = DefaultMaxHeaderSize
		}
		rc.maxHeaderSize = n
	}
}

// WithHeaderCharset names the character set of part header blocks. The default
// is UTF-8. NewReader fails if the charset is not supported.
func WithHeaderCharset(name string) ReaderOption {
	return func(rc *readerConfig) { rc.headerCharset = name }
}

type encoderConfig struct {
	boundary     string
	boundarySet  bool
	encodingHint bool
}

// EncoderOption modifies how an Encoder frames its output.
type EncoderOption func(ec *encoderConfig)

// WithBoundary sets the boundary of the encoded message. NewEncoder fails with
// ErrInvalidBoundary if it does not pass ValidateBoundary. By default, a random
// boundary is generated with GenerateBoundary.
func WithBoundary(b string) EncoderOption {
	return func(ec *encoderConfig) {
		ec.boundary = b
		ec.boundarySet = true
	}
}

// WithoutContentEncodingHint stops the Encoder from writing
// "Content-Encoding: gzip, identity" on parts whose size is unknown. Such
// parts are then delimited only by the boundary, relying on chunked transfer
// at the HTTP layer.
//
// The hint is on by default because existing DICOMweb servers expect it.
// Note that it claims an encoding the Encoder never applies: the part bytes
// are always sent as-is.
func WithoutContentEncodingHint() EncoderOption {
	return func(ec *encoderConfig) { ec.encodingHint = false }
}

// PartOption modifies an OutgoingPart.
type PartOption func(op *OutgoingPart)

// WithContentLocation sets the Content-Location header of the part.
func WithContentLocation(loc string) PartOption {
	return func(op *OutgoingPart) { op.location = loc }
}
