package multipart

import (
	"errors"
	"io"
)

// PartWalker is a function that can be called for each part of a message. The
// index i counts parts from zero.
type PartWalker func(i int, part *Part) error

// Walk calls w for each remaining part of the message, in order. Each part is
// drained and closed after w returns, so w may read as much of the body as it
// needs and no more. If w returns an error, the walk stops immediately and the
// error is returned.
func (r *Reader) Walk(w PartWalker) error {
	for i := 0; ; i++ {
		part, err := r.NextPart()
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}

		if err := w(i, part); err != nil {
			return err
		}

		if err := part.Close(); err != nil {
			return err
		}
	}
}
