package serverpackets

import (
	"time"

	"github.com/valkyrja/ro2go/internal/protocol"
)

const LoginFailedOpcode = 0x083e

// banTimeFormat is the fixed-width timestamp the client renders in the
// "prohibited to log in until" dialog.
const banTimeFormat = "2006-01-02 15:04"

// LoginFailed writes the LoginFailed packet (opcode 0x083e) into buf:
// the error code and a 20-byte timestamp field that carries the ban
// deadline for timed bans and zeros otherwise.
func LoginFailed(buf []byte, code uint32, banUntil time.Time) (int, error) {
	const total = protocol.OpcodeSize + 4 + 20
	if err := protocol.EnsureSize(buf, total); err != nil {
		return 0, err
	}

	protocol.PutUint16(buf, 0, LoginFailedOpcode)
	protocol.PutUint32(buf, 2, code)
	if banUntil.IsZero() {
		clear(buf[6:total])
	} else {
		protocol.PutString(buf, 6, banUntil.UTC().Format(banTimeFormat), 20)
	}
	return total, nil
}
