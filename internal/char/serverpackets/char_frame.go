// Package serverpackets serializes character-port responses. Same contract
// as the login serverpackets: one-pass writes into the caller's buffer,
// protocol.OverflowError before anything is touched.
package serverpackets

import (
	"time"

	"github.com/valkyrja/ro2go/internal/maps"
	"github.com/valkyrja/ro2go/internal/model"
	"github.com/valkyrja/ro2go/internal/protocol"
)

// CharacterFrameSize is the fixed width of one character entry in the
// selection-screen lists.
const CharacterFrameSize = 155

// DefaultWalkSpeed is what every selection-screen frame advertises.
const DefaultWalkSpeed = 150

// optionsIncompatibleWithWeapon hides the weapon sprite while the character
// wears a disguising option (riding, mounts, costumes).
const optionsIncompatibleWithWeapon uint32 = 0x0ff80020

// Frame feature flags advertised to the client.
const (
	slotMoveEnabled = 1
	renameEnabled   = 1
)

// writeCharacterFrame serializes one 155-byte character entry at buf[0:].
// The caller guarantees the buffer holds CharacterFrameSize bytes. mapName
// is the bare map name; the ".gat" suffix is appended here.
func writeCharacterFrame(buf []byte, ch *model.Character, mapName string) {
	protocol.PutUint32(buf, 0, ch.ID)
	protocol.PutUint32(buf, 4, ch.Experience.BaseExp)
	protocol.PutUint32(buf, 8, ch.Currency.Zeny)
	protocol.PutUint32(buf, 12, ch.Experience.JobExp)
	protocol.PutUint32(buf, 16, uint32(ch.Experience.JobLevel))
	clear(buf[20:28])
	protocol.PutUint32(buf, 28, ch.Status.Option&^0x40)
	protocol.PutUint32(buf, 32, ch.Status.Karma)
	protocol.PutUint32(buf, 36, ch.Status.Manner)
	protocol.PutUint16(buf, 40, ch.Experience.StatusPoint)
	protocol.PutUint32(buf, 42, ch.Status.HP)
	protocol.PutUint32(buf, 46, ch.Status.MaxHP)
	protocol.PutUint16(buf, 50, ch.Status.SP)
	protocol.PutUint16(buf, 52, ch.Status.MaxSP)
	protocol.PutUint16(buf, 54, DefaultWalkSpeed)
	protocol.PutUint16(buf, 56, uint16(ch.Class))
	protocol.PutUint16(buf, 58, ch.Appearance.Hair)
	protocol.PutUint16(buf, 60, ch.Appearance.Body)

	weapon := ch.Equipment.Weapon
	if ch.Status.Option&optionsIncompatibleWithWeapon != 0 {
		weapon = 0
	}
	protocol.PutUint16(buf, 62, weapon)

	protocol.PutUint16(buf, 64, ch.Experience.BaseLevel)
	protocol.PutUint16(buf, 66, ch.Experience.SkillPoint)
	protocol.PutUint16(buf, 68, ch.Equipment.HeadBottom)
	protocol.PutUint16(buf, 70, ch.Equipment.Shield)
	protocol.PutUint16(buf, 72, ch.Equipment.HeadTop)
	protocol.PutUint16(buf, 74, ch.Equipment.HeadMid)
	protocol.PutUint16(buf, 76, ch.Appearance.HairColor)
	protocol.PutUint16(buf, 78, ch.Appearance.ClothesColor)
	protocol.PutString(buf, 80, ch.Name, 24)
	buf[104] = ch.Stats.Str
	buf[105] = ch.Stats.Agi
	buf[106] = ch.Stats.Vit
	buf[107] = ch.Stats.Int
	buf[108] = ch.Stats.Dex
	buf[109] = ch.Stats.Luk
	protocol.PutUint16(buf, 110, uint16(ch.Slot))

	renameAvailable := uint16(1)
	if ch.Settings.Rename > 0 {
		renameAvailable = 0
	}
	protocol.PutUint16(buf, 112, renameAvailable)

	protocol.PutString(buf, 114, mapName+maps.GatSuffix, 16)

	deleteDate := uint32(0)
	if !ch.DeleteDate.IsZero() && ch.DeleteDate.After(time.Unix(0, 0)) {
		deleteDate = uint32(ch.DeleteDate.Unix())
	}
	protocol.PutUint32(buf, 130, deleteDate)

	protocol.PutUint32(buf, 134, ch.Equipment.Robe)
	protocol.PutUint32(buf, 138, slotMoveEnabled)
	protocol.PutUint32(buf, 142, renameEnabled)
	buf[146] = byte(ch.Sex)
	clear(buf[147:CharacterFrameSize])
}
