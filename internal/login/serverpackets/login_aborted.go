package serverpackets

import "github.com/valkyrja/ro2go/internal/protocol"

const LoginAbortedOpcode = 0x0081

// LoginAborted writes the LoginAborted packet (opcode 0x0081) into buf:
// a single reason byte.
func LoginAborted(buf []byte, reason uint8) (int, error) {
	const total = protocol.OpcodeSize + 1
	if err := protocol.EnsureSize(buf, total); err != nil {
		return 0, err
	}
	protocol.PutUint16(buf, 0, LoginAbortedOpcode)
	buf[2] = reason
	return total, nil
}
