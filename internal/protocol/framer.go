package protocol

import (
	"errors"
	"fmt"
	"io"
)

// DecodeFunc turns a buffered byte slice into one typed request.
// It returns the number of bytes consumed, or ErrIncomplete when the buffer
// does not yet hold the full frame (consuming nothing). Any other error is
// fatal for the connection.
type DecodeFunc[T any] func(buf []byte) (int, T, error)

// Framer accumulates bytes from a connection and yields complete requests.
// A partial frame never advances the read position: decode is retried on the
// same prefix after more bytes arrive, so decodes are prefix-stable.
type Framer[T any] struct {
	r      io.Reader
	decode DecodeFunc[T]
	buf    []byte
	filled int
}

// NewFramer creates a framer reading from r with the given buffer capacity.
func NewFramer[T any](r io.Reader, decode DecodeFunc[T], bufSize int) *Framer[T] {
	return &Framer[T]{
		r:      r,
		decode: decode,
		buf:    make([]byte, bufSize),
	}
}

// Next returns the next complete request. io.EOF means the peer closed the
// connection cleanly between frames.
func (f *Framer[T]) Next() (T, error) {
	var zero T
	for {
		if f.filled > 0 {
			n, req, err := f.decode(f.buf[:f.filled])
			switch {
			case err == nil:
				copy(f.buf, f.buf[n:f.filled])
				f.filled -= n
				return req, nil
			case errors.Is(err, ErrIncomplete):
				// fall through to read more
			default:
				return zero, err
			}
		}

		if f.filled == len(f.buf) {
			return zero, fmt.Errorf("frame exceeds buffer size %d", len(f.buf))
		}
		n, err := f.r.Read(f.buf[f.filled:])
		if n > 0 {
			f.filled += n
			continue
		}
		if err != nil {
			if errors.Is(err, io.EOF) && f.filled > 0 {
				return zero, io.ErrUnexpectedEOF
			}
			return zero, err
		}
	}
}
