package login

import (
	"encoding/binary"

	"github.com/valkyrja/ro2go/internal/protocol"
)

// Login-port request opcodes. Several ClientLogin opcodes carry the same
// logical request with different body widths; decode branches on opcode to
// pick the width and normalizes into one Request variant.
const (
	OpcodeKeepAlive        = 0x0200
	OpcodeUpdateClientHash = 0x0204
	OpcodeLoginRawV1       = 0x0064
	OpcodeLoginRawV2       = 0x0277
	OpcodeLoginRawV3       = 0x02b0
	OpcodeLoginHashedV1    = 0x01dd
	OpcodeLoginHashedV2    = 0x01fa
	OpcodeLoginHashedV3    = 0x027c
	OpcodeLoginOTP         = 0x0825
	OpcodeCodeKey          = 0x01db
	OpcodeOneTimePass      = 0x0acf
	OpcodeCharConnect      = 0x2710
)

// Request is one decoded login-port frame.
type Request interface{ loginRequest() }

// KeepAlive resets the idle timer; its 24-byte body is opaque.
type KeepAlive struct{}

// UpdateClientHash records the client executable hash.
type UpdateClientHash struct {
	Hash [16]byte
}

// ClientLogin is any of the six credential-carrying login versions.
type ClientLogin struct {
	Credentials Credentials
}

// Unsupported marks opcodes the server recognizes but does not serve:
// OTP login, CodeKey, OneTimePass and the char-connect probe. The server
// answers LoginAborted(ServerClosed) and drops the connection.
type Unsupported struct {
	Opcode uint16
}

func (KeepAlive) loginRequest()        {}
func (UpdateClientHash) loginRequest() {}
func (ClientLogin) loginRequest()      {}
func (Unsupported) loginRequest()      {}

// Body sizes in bytes after the opcode, per login version.
const (
	keepAliveBody  = 24
	clientHashBody = 16
	rawV1Body      = 53
	rawV2Body      = 82
	rawV3Body      = 83
	hashedV1Body   = 45
	hashedV2Body   = 46
	hashedV3Body   = 58
)

// Decode extracts one request from the front of buf. It returns the total
// bytes consumed including the opcode, protocol.ErrIncomplete when the full
// frame has not arrived yet (consuming nothing), or a fatal error on an
// unknown opcode.
func Decode(buf []byte) (int, Request, error) {
	if len(buf) < protocol.OpcodeSize {
		return 0, nil, protocol.ErrIncomplete
	}
	opcode := binary.LittleEndian.Uint16(buf)
	body := buf[protocol.OpcodeSize:]

	switch opcode {
	case OpcodeKeepAlive:
		if len(body) < keepAliveBody {
			return 0, nil, protocol.ErrIncomplete
		}
		return protocol.OpcodeSize + keepAliveBody, KeepAlive{}, nil

	case OpcodeUpdateClientHash:
		if len(body) < clientHashBody {
			return 0, nil, protocol.ErrIncomplete
		}
		var req UpdateClientHash
		copy(req.Hash[:], body[:16])
		return protocol.OpcodeSize + clientHashBody, req, nil

	case OpcodeLoginRawV1:
		return decodeCleartextLogin(body, rawV1Body)
	case OpcodeLoginRawV2:
		return decodeCleartextLogin(body, rawV2Body)
	case OpcodeLoginRawV3:
		return decodeCleartextLogin(body, rawV3Body)

	case OpcodeLoginHashedV1:
		return decodeHashedLogin(body, hashedV1Body)
	case OpcodeLoginHashedV2:
		return decodeHashedLogin(body, hashedV2Body)
	case OpcodeLoginHashedV3:
		return decodeHashedLogin(body, hashedV3Body)

	case OpcodeLoginOTP, OpcodeCodeKey, OpcodeOneTimePass, OpcodeCharConnect:
		return protocol.OpcodeSize, Unsupported{Opcode: opcode}, nil

	default:
		return 0, nil, &protocol.UnknownOpcodeError{Opcode: opcode}
	}
}

// All cleartext versions share the same leading layout: version u32,
// username 24, password 24; the client type rides in the last body byte.
func decodeCleartextLogin(body []byte, size int) (int, Request, error) {
	if len(body) < size {
		return 0, nil, protocol.ErrIncomplete
	}
	req := ClientLogin{Credentials: Credentials{
		Kind:       CredentialsCleartext,
		Username:   protocol.TrimString(body[4:28]),
		Password:   protocol.TrimString(body[28:52]),
		ClientType: body[size-1],
	}}
	return protocol.OpcodeSize + size, req, nil
}

// Hashed versions carry a raw 16-byte MD5 digest instead of the password
// field; the digest is copied verbatim, never NUL-trimmed.
func decodeHashedLogin(body []byte, size int) (int, Request, error) {
	if len(body) < size {
		return 0, nil, protocol.ErrIncomplete
	}
	req := ClientLogin{Credentials: Credentials{
		Kind:       CredentialsHashed,
		Username:   protocol.TrimString(body[4:28]),
		ClientType: body[size-1],
	}}
	copy(req.Credentials.Hash[:], body[28:44])
	return protocol.OpcodeSize + size, req, nil
}
