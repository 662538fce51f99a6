package serverpackets

import (
	"github.com/valkyrja/ro2go/internal/model"
	"github.com/valkyrja/ro2go/internal/protocol"
)

const (
	CharactersOpcode     = 0x099d
	CharacterPagesOpcode = 0x09a0
)

// charactersTrailer is appended exactly when the list holds three
// characters. Undocumented client quirk, preserved bit-exact: it reads as
// an empty Characters packet.
var charactersTrailer = []byte{0x9d, 0x09, 0x04, 0x00}

// Characters writes the paged character list (opcode 0x099d). mapNames
// holds the bare map name per character, same order.
func Characters(buf []byte, chars []model.Character, mapNames []string) (int, error) {
	size := 2 + 2 + len(chars)*CharacterFrameSize
	total := size
	if len(chars) == 3 {
		total += len(charactersTrailer)
	}
	if err := protocol.EnsureSize(buf, total); err != nil {
		return 0, err
	}

	protocol.PutUint16(buf, 0, CharactersOpcode)
	protocol.PutUint16(buf, 2, uint16(size))
	for i := range chars {
		writeCharacterFrame(buf[4+i*CharacterFrameSize:], &chars[i], mapNames[i])
	}
	if len(chars) == 3 {
		copy(buf[size:], charactersTrailer)
	}
	return total, nil
}

// CharacterPagesAvailable writes the page count (opcode 0x09a0).
func CharacterPagesAvailable(buf []byte, pages uint32) (int, error) {
	const total = 6
	if err := protocol.EnsureSize(buf, total); err != nil {
		return 0, err
	}
	protocol.PutUint16(buf, 0, CharacterPagesOpcode)
	protocol.PutUint32(buf, 2, pages)
	return total, nil
}
