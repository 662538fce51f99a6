package serverpackets

import (
	"net"

	"github.com/valkyrja/ro2go/internal/maps"
	"github.com/valkyrja/ro2go/internal/protocol"
)

const (
	RenameResultOpcode     = 0x028e
	MoveSlotResultOpcode   = 0x08d5
	CaptchaResultOpcode    = 0x07e9
	NotifyZoneServerOpcode = 0x0071
)

// Rename results.
const (
	RenameOK     = 1
	RenameDenied = 0
)

// MoveSlot results.
const (
	MoveSlotOK     = 0
	MoveSlotDenied = 1
)

// Captcha results.
const (
	CaptchaFailed = 0
	CaptchaPassed = 1
)

// RenameResult answers a rename request (opcode 0x028e).
func RenameResult(buf []byte, result uint16) (int, error) {
	const total = 4
	if err := protocol.EnsureSize(buf, total); err != nil {
		return 0, err
	}
	protocol.PutUint16(buf, 0, RenameResultOpcode)
	protocol.PutUint16(buf, 2, result)
	return total, nil
}

// MoveSlotResult answers a slot move (opcode 0x08d5) with the remaining
// move allowance.
func MoveSlotResult(buf []byte, reason, movesLeft uint16) (int, error) {
	const total = 8
	if err := protocol.EnsureSize(buf, total); err != nil {
		return 0, err
	}
	protocol.PutUint16(buf, 0, MoveSlotResultOpcode)
	protocol.PutUint16(buf, 2, total)
	protocol.PutUint16(buf, 4, reason)
	protocol.PutUint16(buf, 6, movesLeft)
	return total, nil
}

// CaptchaResult answers a captcha round (opcode 0x07e9).
func CaptchaResult(buf []byte, result uint8) (int, error) {
	const total = 5
	if err := protocol.EnsureSize(buf, total); err != nil {
		return 0, err
	}
	protocol.PutUint16(buf, 0, CaptchaResultOpcode)
	protocol.PutUint16(buf, 2, total)
	buf[4] = result
	return total, nil
}

// NotifyZoneServer writes the map-server handoff (opcode 0x0071): the
// picked character, its map, and the zone endpoint. The IP is the one
// big-endian integer of the packet.
func NotifyZoneServer(buf []byte, characterID uint32, mapName string, ip net.IP, port uint16) (int, error) {
	const total = 28
	if err := protocol.EnsureSize(buf, total); err != nil {
		return 0, err
	}
	protocol.PutUint16(buf, 0, NotifyZoneServerOpcode)
	protocol.PutUint32(buf, 2, characterID)
	protocol.PutString(buf, 6, mapName+maps.GatSuffix, 16)
	protocol.PutUint32BE(buf, 22, ipToUint32(ip))
	protocol.PutUint16(buf, 26, port)
	return total, nil
}

func ipToUint32(ip net.IP) uint32 {
	v4 := ip.To4()
	if v4 == nil {
		return 0
	}
	return uint32(v4[0])<<24 | uint32(v4[1])<<16 | uint32(v4[2])<<8 | uint32(v4[3])
}
