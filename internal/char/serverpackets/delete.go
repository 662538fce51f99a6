package serverpackets

import "github.com/valkyrja/ro2go/internal/protocol"

const (
	AcceptDeleteOpcode      = 0x006f
	RefuseDeleteOpcode      = 0x0070
	DeletionReservedOpcode  = 0x0828
	DeletionAcceptedOpcode  = 0x082a
	DeletionCancelledOpcode = 0x082c
)

// Results for the delayed-deletion packets.
const (
	DeletionReserveOK       = 1
	DeletionReserveRefused  = 3
	DeletionResultOK        = 1
	DeletionResultWrongInfo = 3
	DeletionCancelOK        = 1
	DeletionCancelRefused   = 2
)

// RefuseDelete reason for a failed email check.
const DeleteDeniedWrongEmail = 0

// AcceptDelete writes the immediate-deletion success (opcode 0x006f,
// opcode only).
func AcceptDelete(buf []byte) (int, error) {
	const total = protocol.OpcodeSize
	if err := protocol.EnsureSize(buf, total); err != nil {
		return 0, err
	}
	protocol.PutUint16(buf, 0, AcceptDeleteOpcode)
	return total, nil
}

// RefuseDelete writes the immediate-deletion refusal (opcode 0x0070).
func RefuseDelete(buf []byte, reason uint8) (int, error) {
	const total = 3
	if err := protocol.EnsureSize(buf, total); err != nil {
		return 0, err
	}
	protocol.PutUint16(buf, 0, RefuseDeleteOpcode)
	buf[2] = reason
	return total, nil
}

// DeletionReserved answers a deletion reservation (opcode 0x0828) with the
// scheduled deletion timestamp.
func DeletionReserved(buf []byte, characterID, result, deleteDate uint32) (int, error) {
	const total = 14
	if err := protocol.EnsureSize(buf, total); err != nil {
		return 0, err
	}
	protocol.PutUint16(buf, 0, DeletionReservedOpcode)
	protocol.PutUint32(buf, 2, characterID)
	protocol.PutUint32(buf, 6, result)
	protocol.PutUint32(buf, 10, deleteDate)
	return total, nil
}

// DeletionAccepted answers a confirmed deletion (opcode 0x082a).
func DeletionAccepted(buf []byte, characterID, result uint32) (int, error) {
	return deletionResult(buf, DeletionAcceptedOpcode, characterID, result)
}

// DeletionCancelled answers a cancelled deletion (opcode 0x082c).
func DeletionCancelled(buf []byte, characterID, result uint32) (int, error) {
	return deletionResult(buf, DeletionCancelledOpcode, characterID, result)
}

func deletionResult(buf []byte, opcode uint16, characterID, result uint32) (int, error) {
	const total = 10
	if err := protocol.EnsureSize(buf, total); err != nil {
		return 0, err
	}
	protocol.PutUint16(buf, 0, opcode)
	protocol.PutUint32(buf, 2, characterID)
	protocol.PutUint32(buf, 6, result)
	return total, nil
}
