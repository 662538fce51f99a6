// Package protocol implements the framing primitives shared by the login
// and character wire protocols: little-endian field access, fixed-width
// NUL-padded strings, and the incremental frame decoder.
//
// Every request and response starts with a 2-byte little-endian opcode.
// Packets whose size is not implied by the opcode carry a 2-byte total-size
// field right after it. All multi-byte integers are little-endian except IP
// addresses, which are big-endian.
package protocol

import (
	"errors"
	"fmt"
)

// OpcodeSize is the size of the opcode prefix on every frame.
const OpcodeSize = 2

// ErrIncomplete signals that the buffer does not yet hold a full frame.
// The caller keeps reading; nothing has been consumed.
var ErrIncomplete = errors.New("incomplete frame")

// UnknownOpcodeError is a fatal decode error: the 2-byte prefix does not
// match any known request. The connection must be closed.
type UnknownOpcodeError struct {
	Opcode uint16
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode 0x%04x", e.Opcode)
}

// InvalidFieldError is a fatal decode error: the frame was classified but an
// enumerated field holds a value outside its domain.
type InvalidFieldError struct {
	Field string
	Value uint64
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid %s value %d", e.Field, e.Value)
}

// OverflowError reports that an encode target buffer is too small.
// Needed is the full size the packet requires. No bytes have been written.
type OverflowError struct {
	Needed int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("encode buffer too small, need %d bytes", e.Needed)
}

// EnsureSize returns an OverflowError unless buf can hold need bytes.
// Encoders call it before touching buf so a short buffer never sees a
// partial write.
func EnsureSize(buf []byte, need int) error {
	if len(buf) < need {
		return &OverflowError{Needed: need}
	}
	return nil
}
