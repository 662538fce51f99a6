package serverpackets

import (
	"github.com/valkyrja/ro2go/internal/model"
	"github.com/valkyrja/ro2go/internal/protocol"
)

const (
	AcceptMakeCharOpcode = 0x006d
	RefuseMakeCharOpcode = 0x006e
)

// RefuseMakeChar reasons.
const (
	MakeCharNameTaken   = 0
	MakeCharUnderage    = 1
	MakeCharDenied      = 2
	MakeCharInvalidSlot = 3
)

// AcceptMakeChar writes the creation success (opcode 0x006d): the new
// character's full 155-byte frame.
func AcceptMakeChar(buf []byte, ch *model.Character, mapName string) (int, error) {
	const total = protocol.OpcodeSize + CharacterFrameSize
	if err := protocol.EnsureSize(buf, total); err != nil {
		return 0, err
	}
	protocol.PutUint16(buf, 0, AcceptMakeCharOpcode)
	writeCharacterFrame(buf[protocol.OpcodeSize:], ch, mapName)
	return total, nil
}

// RefuseMakeChar writes the creation refusal (opcode 0x006e).
func RefuseMakeChar(buf []byte, reason uint8) (int, error) {
	const total = 3
	if err := protocol.EnsureSize(buf, total); err != nil {
		return 0, err
	}
	protocol.PutUint16(buf, 0, RefuseMakeCharOpcode)
	buf[2] = reason
	return total, nil
}
