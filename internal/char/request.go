// Package char implements the character server: per-connection sessions
// driving the post-login state machine from ticket check to map-server
// handoff.
package char

import (
	"encoding/binary"

	"github.com/valkyrja/ro2go/internal/model"
	"github.com/valkyrja/ro2go/internal/protocol"
)

// Character-port request opcodes. The three CreateCharacter opcodes are the
// same logical request sent by different client generations; decode branches
// on opcode for the body width and normalizes into one variant.
const (
	OpcodeConnectClient    = 0x0065
	OpcodeSelectCharacter  = 0x0066
	OpcodeCreateCharV1     = 0x0067
	OpcodeCreateCharV2     = 0x0970
	OpcodeCreateCharV3     = 0x0a39
	OpcodeDeleteCharV1     = 0x0068
	OpcodeDeleteCharV2     = 0x01fb
	OpcodeKeepAlive        = 0x0187
	OpcodeRenameCharacter  = 0x028d
	OpcodeRequestCaptcha   = 0x07e5
	OpcodeCheckCaptcha     = 0x07e7
	OpcodeRequestDeletion  = 0x0827
	OpcodeAcceptDeletion   = 0x0829
	OpcodeCancelDeletion   = 0x082b
	OpcodeMoveSlot         = 0x08d4
	OpcodeCheckPincode     = 0x08b8
	OpcodeNewPincode       = 0x08ba
	OpcodeChangePincode    = 0x08be
	OpcodeRequestPincode   = 0x08c5
	OpcodeListCharacters   = 0x09a1
)

// Request is one decoded character-port frame.
type Request interface{ charRequest() }

// AccountInfo is the relayed authentication ticket plus the sex byte the
// client echoes back.
type AccountInfo struct {
	AccountID          uint32
	AuthenticationCode uint32
	UserLevel          uint32
	Sex                model.Sex
}

// ConnectClient opens the session; it must match a live ticket.
type ConnectClient struct {
	Info AccountInfo
}

// ListCharacters asks for the full character list.
type ListCharacters struct{}

// SelectCharacter picks a slot for the map-server handoff.
type SelectCharacter struct {
	Slot uint8
}

// NewCharacter carries the creation fields. HasSex is false for the client
// generation that omits the sex byte; the account's sex applies then.
type NewCharacter struct {
	Name      string
	Slot      uint8
	HairColor uint16
	Hair      uint16
	Class     model.Class
	Sex       model.Sex
	HasSex    bool
}

// CreateCharacter requests a new character in a free slot.
type CreateCharacter struct {
	Character NewCharacter
}

// DeleteCharacter is the email-checked immediate deletion.
type DeleteCharacter struct {
	CharacterID uint32
	Email       string
}

// KeepAlive resets the idle timer.
type KeepAlive struct {
	AccountID uint32
}

// RenameCharacter asks to rename an existing character.
type RenameCharacter struct {
	AccountID   uint32
	CharacterID uint32
	NewName     string
}

// RequestCaptcha asks for a captcha challenge.
type RequestCaptcha struct {
	AccountID uint32
}

// CheckCaptcha submits a captcha answer.
type CheckCaptcha struct {
	AccountID uint32
	Code      string
}

// RequestDeletion starts the delayed-deletion flow.
type RequestDeletion struct {
	CharacterID uint32
}

// AcceptDeletion confirms a reserved deletion with the account birth date.
type AcceptDeletion struct {
	CharacterID uint32
	BirthDate   string // "YYMMDD"
}

// CancelDeletion aborts a reserved deletion.
type CancelDeletion struct {
	CharacterID uint32
}

// MoveSlot moves or swaps a character between slots.
type MoveSlot struct {
	From uint16
	To   uint16
}

// CheckPincode submits the current PIN.
type CheckPincode struct {
	AccountID uint32
	Pin       [4]byte
}

// NewPincode sets a PIN on an account without one.
type NewPincode struct {
	AccountID uint32
	Pin       [4]byte
}

// ChangePincode replaces the PIN, old one required.
type ChangePincode struct {
	AccountID uint32
	Old       [4]byte
	New       [4]byte
}

// RequestPincode asks for the current pincode dialog state.
type RequestPincode struct {
	AccountID uint32
}

func (ConnectClient) charRequest()   {}
func (ListCharacters) charRequest()  {}
func (SelectCharacter) charRequest() {}
func (CreateCharacter) charRequest() {}
func (DeleteCharacter) charRequest() {}
func (KeepAlive) charRequest()       {}
func (RenameCharacter) charRequest() {}
func (RequestCaptcha) charRequest()  {}
func (CheckCaptcha) charRequest()    {}
func (RequestDeletion) charRequest() {}
func (AcceptDeletion) charRequest()  {}
func (CancelDeletion) charRequest()  {}
func (MoveSlot) charRequest()        {}
func (CheckPincode) charRequest()    {}
func (NewPincode) charRequest()      {}
func (ChangePincode) charRequest()   {}
func (RequestPincode) charRequest()  {}

// Decode extracts one request from the front of buf, returning the total
// bytes consumed including the opcode. protocol.ErrIncomplete means the
// frame has not fully arrived (nothing consumed); unknown opcodes and
// invalid enum fields are fatal.
func Decode(buf []byte) (int, Request, error) {
	if len(buf) < protocol.OpcodeSize {
		return 0, nil, protocol.ErrIncomplete
	}
	opcode := binary.LittleEndian.Uint16(buf)
	body := buf[protocol.OpcodeSize:]

	size, ok := bodySizes[opcode]
	if !ok {
		return 0, nil, &protocol.UnknownOpcodeError{Opcode: opcode}
	}
	if len(body) < size {
		return 0, nil, protocol.ErrIncomplete
	}
	body = body[:size]

	req, err := parseBody(opcode, body)
	if err != nil {
		return 0, nil, err
	}
	return protocol.OpcodeSize + size, req, nil
}

// bodySizes drives the table: every character-port request has a fixed body
// width implied by its opcode.
var bodySizes = map[uint16]int{
	OpcodeConnectClient:   15,
	OpcodeSelectCharacter: 1,
	OpcodeCreateCharV1:    34,
	OpcodeCreateCharV2:    29,
	OpcodeCreateCharV3:    34,
	OpcodeDeleteCharV1:    44,
	OpcodeDeleteCharV2:    54,
	OpcodeKeepAlive:       4,
	OpcodeRenameCharacter: 32,
	OpcodeRequestCaptcha:  6,
	OpcodeCheckCaptcha:    30,
	OpcodeRequestDeletion: 4,
	OpcodeAcceptDeletion:  10,
	OpcodeCancelDeletion:  4,
	OpcodeMoveSlot:        6,
	OpcodeCheckPincode:    8,
	OpcodeNewPincode:      8,
	OpcodeChangePincode:   12,
	OpcodeRequestPincode:  4,
	OpcodeListCharacters:  2,
}

func parseBody(opcode uint16, body []byte) (Request, error) {
	switch opcode {
	case OpcodeConnectClient:
		sex, ok := model.ParseSex(body[14])
		if !ok {
			return nil, &protocol.InvalidFieldError{Field: "sex", Value: uint64(body[14])}
		}
		return ConnectClient{Info: AccountInfo{
			AccountID:          binary.LittleEndian.Uint32(body[0:]),
			AuthenticationCode: binary.LittleEndian.Uint32(body[4:]),
			UserLevel:          binary.LittleEndian.Uint32(body[8:]),
			Sex:                sex,
		}}, nil

	case OpcodeSelectCharacter:
		return SelectCharacter{Slot: body[0]}, nil

	case OpcodeCreateCharV1, OpcodeCreateCharV3:
		sex, ok := model.ParseSex(body[33])
		if !ok {
			return nil, &protocol.InvalidFieldError{Field: "sex", Value: uint64(body[33])}
		}
		return CreateCharacter{Character: NewCharacter{
			Name:      protocol.TrimString(body[0:24]),
			Slot:      body[24],
			HairColor: binary.LittleEndian.Uint16(body[25:]),
			Hair:      binary.LittleEndian.Uint16(body[27:]),
			Class:     model.Class(binary.LittleEndian.Uint16(body[29:])),
			Sex:       sex,
			HasSex:    true,
		}}, nil

	case OpcodeCreateCharV2:
		// short creation form: class and sex come from defaults
		return CreateCharacter{Character: NewCharacter{
			Name:      protocol.TrimString(body[0:24]),
			Slot:      body[24],
			HairColor: binary.LittleEndian.Uint16(body[25:]),
			Hair:      binary.LittleEndian.Uint16(body[27:]),
			Class:     model.ClassNovice,
		}}, nil

	case OpcodeDeleteCharV1:
		return DeleteCharacter{
			CharacterID: binary.LittleEndian.Uint32(body[0:]),
			Email:       protocol.TrimString(body[4:44]),
		}, nil
	case OpcodeDeleteCharV2:
		return DeleteCharacter{
			CharacterID: binary.LittleEndian.Uint32(body[0:]),
			Email:       protocol.TrimString(body[4:54]),
		}, nil

	case OpcodeKeepAlive:
		return KeepAlive{AccountID: binary.LittleEndian.Uint32(body)}, nil

	case OpcodeRenameCharacter:
		return RenameCharacter{
			AccountID:   binary.LittleEndian.Uint32(body[0:]),
			CharacterID: binary.LittleEndian.Uint32(body[4:]),
			NewName:     protocol.TrimString(body[8:32]),
		}, nil

	case OpcodeRequestCaptcha:
		return RequestCaptcha{AccountID: binary.LittleEndian.Uint32(body[2:])}, nil

	case OpcodeCheckCaptcha:
		return CheckCaptcha{
			AccountID: binary.LittleEndian.Uint32(body[2:]),
			Code:      protocol.TrimString(body[6:30]),
		}, nil

	case OpcodeRequestDeletion:
		return RequestDeletion{CharacterID: binary.LittleEndian.Uint32(body)}, nil

	case OpcodeAcceptDeletion:
		return AcceptDeletion{
			CharacterID: binary.LittleEndian.Uint32(body[0:]),
			BirthDate:   protocol.TrimString(body[4:10]),
		}, nil

	case OpcodeCancelDeletion:
		return CancelDeletion{CharacterID: binary.LittleEndian.Uint32(body)}, nil

	case OpcodeMoveSlot:
		return MoveSlot{
			From: binary.LittleEndian.Uint16(body[0:]),
			To:   binary.LittleEndian.Uint16(body[2:]),
		}, nil

	case OpcodeCheckPincode:
		req := CheckPincode{AccountID: binary.LittleEndian.Uint32(body[0:])}
		copy(req.Pin[:], body[4:8])
		return req, nil

	case OpcodeNewPincode:
		req := NewPincode{AccountID: binary.LittleEndian.Uint32(body[0:])}
		copy(req.Pin[:], body[4:8])
		return req, nil

	case OpcodeChangePincode:
		req := ChangePincode{AccountID: binary.LittleEndian.Uint32(body[0:])}
		copy(req.Old[:], body[4:8])
		copy(req.New[:], body[8:12])
		return req, nil

	case OpcodeRequestPincode:
		return RequestPincode{AccountID: binary.LittleEndian.Uint32(body)}, nil

	case OpcodeListCharacters:
		return ListCharacters{}, nil

	default:
		return nil, &protocol.UnknownOpcodeError{Opcode: opcode}
	}
}
