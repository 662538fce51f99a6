// Package serverpackets serializes login-port responses. Each function
// writes opcode and body into the caller's buffer in one pass and returns
// the number of bytes written; a too-small buffer yields
// protocol.OverflowError before anything is touched.
package serverpackets

import (
	"net"

	"github.com/valkyrja/ro2go/internal/model"
	"github.com/valkyrja/ro2go/internal/protocol"
)

const LoginSuccessV3Opcode = 0x0ac4

// MaxCharServers bounds the server list the client accepts.
const MaxCharServers = 5

// serverRecordSize is the fixed width of one character-server entry.
const serverRecordSize = 160

// ServerInfo is one character-server entry of the LoginSuccessV3 list.
type ServerInfo struct {
	Name     string // at most 19 bytes plus NUL on the wire
	IP       net.IP
	Port     uint16
	Activity uint16 // rough population indicator
	Type     uint16
}

// LoginSuccessV3 writes the LoginSuccessV3 packet (opcode 0x0ac4) into buf:
// the minted ticket fields, the account's sex and web-auth token, then one
// 160-byte record per character server. The embedded msg_len field counts
// the body only: 64 + 160·N.
func LoginSuccessV3(buf []byte, t model.Ticket, servers []ServerInfo) (int, error) {
	msgLen := 64 + len(servers)*serverRecordSize
	total := protocol.OpcodeSize + msgLen
	if err := protocol.EnsureSize(buf, total); err != nil {
		return 0, err
	}

	protocol.PutUint16(buf, 0, LoginSuccessV3Opcode)
	body := buf[protocol.OpcodeSize:]
	protocol.PutUint16(body, 0, uint16(msgLen))
	protocol.PutUint32(body, 2, t.AuthenticationCode)
	protocol.PutUint32(body, 6, t.AccountID)
	protocol.PutUint32(body, 10, t.UserLevel)
	clear(body[14:44]) // last_login_ip + last_login_time, unused
	body[44] = byte(t.Sex)
	copy(body[45:61], t.WebAuthToken[:])
	body[61] = 0

	for i, srv := range servers {
		rec := body[62+i*serverRecordSize:]
		protocol.PutUint32BE(rec, 0, ipToUint32(srv.IP))
		protocol.PutUint16(rec, 4, srv.Port)
		protocol.PutString(rec, 6, srv.Name, 20)
		protocol.PutUint16(rec, 26, srv.Activity)
		// server type is the one big-endian u16 of the protocol
		rec[28] = byte(srv.Type >> 8)
		rec[29] = byte(srv.Type)
		clear(rec[30:serverRecordSize])
	}
	clear(body[62+len(servers)*serverRecordSize : msgLen])

	return total, nil
}

func ipToUint32(ip net.IP) uint32 {
	v4 := ip.To4()
	if v4 == nil {
		return 0
	}
	return uint32(v4[0])<<24 | uint32(v4[1])<<16 | uint32(v4[2])<<8 | uint32(v4[3])
}
