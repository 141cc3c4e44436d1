package multipart

import (
	"errors"
	"fmt"
)

// Causes of a ProtocolError. Use errors.Is to test for them.
var (
	// ErrUnexpectedEOF means the input ended while more of the message was
	// structurally required: inside a header block, inside a part body before
	// its delimiter, or in the middle of a boundary line.
	ErrUnexpectedEOF = errors.New("unexpected end of multipart stream")

	// ErrHeaderTooLarge means a part header block did not end within the
	// configured maximum header size.
	ErrHeaderTooLarge = errors.New("part header exceeds the maximum header size")

	// ErrBadTerminator means the two bytes after a boundary were neither CRLF
	// nor "--".
	ErrBadTerminator = errors.New("invalid boundary terminator")

	// ErrLengthMismatch means a part declared a Content-Length that does not
	// match the number of bytes found before the next boundary.
	ErrLengthMismatch = errors.New("part length does not match Content-Length")

	// ErrBadContentLength means a part's Content-Length field could not be
	// understood.
	ErrBadContentLength = errors.New("invalid part Content-Length")
)

// Usage errors. These indicate a problem with how the API was called, not with
// the input.
var (
	// ErrInvalidBoundary is returned when a boundary is empty, too long, or
	// contains characters not permitted by RFC 2046.
	ErrInvalidBoundary = errors.New("invalid multipart boundary")

	// ErrNoBoundary is returned by NewReaderFromContentType when the
	// Content-type does not carry a boundary for the required media type.
	ErrNoBoundary = errors.New("the boundary parameter is missing from Content-type")

	// ErrOutOfOrder is returned when a Reader operation is called in a state
	// where it makes no sense, such as ReadHeaders before any boundary.
	ErrOutOfOrder = errors.New("multipart operation called out of order")

	// ErrClosed is returned when reading from a closed part or reader.
	ErrClosed = errors.New("multipart stream is closed")

	// ErrEncoderStarted is returned by Encoder.Add once reading has begun.
	ErrEncoderStarted = errors.New("multipart encoder has already started")

	// ErrInvalidPart is returned by NewOutgoingPart for an unusable
	// descriptor.
	ErrInvalidPart = errors.New("invalid outgoing part")
)

// ProtocolError is returned when the input violates the multipart framing. It
// is fatal to the message: the Reader will not recover, and every further
// operation returns the same error.
type ProtocolError struct {
	Offset int64 // the number of bytes consumed when the problem was found
	Err    error // one of the Err* causes above
}

// Error returns the error message.
func (err *ProtocolError) Error() string {
	return fmt.Sprintf("multipart protocol error at byte %d: %v", err.Offset, err.Err)
}

// Unwrap returns the cause.
func (err *ProtocolError) Unwrap() error {
	return err.Err
}
