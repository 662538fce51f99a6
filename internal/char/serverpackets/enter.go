package serverpackets

import (
	"github.com/valkyrja/ro2go/internal/model"
	"github.com/valkyrja/ro2go/internal/protocol"
)

const (
	CharacterSlotCountOpcode = 0x082d
	CharacterInfoOpcode      = 0x006b
	BannedCharactersOpcode   = 0x020d
	RefuseEnterOpcode        = 0x006c
	PincodeInfoOpcode        = 0x08b9
)

// RefuseEnterRejected is the only refusal reason this server emits.
const RefuseEnterRejected = 0

// AccountConnected writes the bare 4-byte account id. This packet carries
// no opcode; the client identifies it purely by position as the first bytes
// after a ticket match.
func AccountConnected(buf []byte, accountID uint32) (int, error) {
	if err := protocol.EnsureSize(buf, 4); err != nil {
		return 0, err
	}
	protocol.PutUint32(buf, 0, accountID)
	return 4, nil
}

// CharacterSlotCount writes the fixed 29-byte slot window packet
// (opcode 0x082d): total slots, usable slots, and 20 reserved bytes.
func CharacterSlotCount(buf []byte, usableSlots uint8) (int, error) {
	const total = 29
	if err := protocol.EnsureSize(buf, total); err != nil {
		return 0, err
	}
	protocol.PutUint16(buf, 0, CharacterSlotCountOpcode)
	protocol.PutUint16(buf, 2, total)
	buf[4] = model.MaxCharactersPerAccount // normal slots
	buf[5] = 0                             // vip slots
	buf[6] = 0                             // billing slots
	buf[7] = usableSlots                   // producible slots
	buf[8] = model.MaxCharactersPerAccount // valid slots
	clear(buf[9:total])
	return total, nil
}

// CharacterInfo writes the initial character list (opcode 0x006b): size,
// four slot counters, 20 reserved bytes, then one 155-byte frame per
// character. mapNames holds the bare map name per character, same order.
func CharacterInfo(buf []byte, chars []model.Character, mapNames []string, usableSlots uint8) (int, error) {
	total := 2 + 2 + 4 + 20 + len(chars)*CharacterFrameSize
	if err := protocol.EnsureSize(buf, total); err != nil {
		return 0, err
	}
	protocol.PutUint16(buf, 0, CharacterInfoOpcode)
	protocol.PutUint16(buf, 2, uint16(total))
	buf[4] = model.MaxCharactersPerAccount
	buf[5] = usableSlots
	buf[6] = 0 // premium slots
	buf[7] = 0
	clear(buf[8:28])
	for i := range chars {
		writeCharacterFrame(buf[28+i*CharacterFrameSize:], &chars[i], mapNames[i])
	}
	return total, nil
}

// BannedCharacters writes the (empty) banned-character list
// (opcode 0x020d): just the 4-byte header.
func BannedCharacters(buf []byte) (int, error) {
	const total = 4
	if err := protocol.EnsureSize(buf, total); err != nil {
		return 0, err
	}
	protocol.PutUint16(buf, 0, BannedCharactersOpcode)
	protocol.PutUint16(buf, 2, total)
	return total, nil
}

// RefuseEnter writes the connection refusal (opcode 0x006c).
func RefuseEnter(buf []byte, reason uint8) (int, error) {
	const total = 3
	if err := protocol.EnsureSize(buf, total); err != nil {
		return 0, err
	}
	protocol.PutUint16(buf, 0, RefuseEnterOpcode)
	buf[2] = reason
	return total, nil
}

// PincodeInfo writes the pincode dialog driver (opcode 0x08b9): the seed
// the client mixes into its PIN keypad, the account id, and the dialog
// state.
func PincodeInfo(buf []byte, seed, accountID uint32, state model.PincodeState) (int, error) {
	const total = 12
	if err := protocol.EnsureSize(buf, total); err != nil {
		return 0, err
	}
	protocol.PutUint16(buf, 0, PincodeInfoOpcode)
	protocol.PutUint32(buf, 2, seed)
	protocol.PutUint32(buf, 6, accountID)
	protocol.PutUint16(buf, 10, uint16(state))
	return total, nil
}
