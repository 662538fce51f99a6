package serverpackets

import (
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valkyrja/ro2go/internal/model"
	"github.com/valkyrja/ro2go/internal/protocol"
)

func testCharacter() *model.Character {
	ch := model.NewCharacter(2_000_123, 2_000_001)
	ch.Name = "Hero"
	ch.Slot = 3
	ch.Sex = model.Male
	ch.Class = model.ClassNovice
	ch.Appearance.Hair = 5
	ch.Appearance.HairColor = 7
	return ch
}

func TestCharacterFrameLayout(t *testing.T) {
	ch := testCharacter()
	buf := make([]byte, CharacterFrameSize)
	writeCharacterFrame(buf, ch, "new_1-1")

	assert.Equal(t, uint32(2_000_123), binary.LittleEndian.Uint32(buf[0:4]), "id")
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[16:20]), "job level")
	assert.Equal(t, uint32(40), binary.LittleEndian.Uint32(buf[42:46]), "hp")
	assert.Equal(t, uint32(40), binary.LittleEndian.Uint32(buf[46:50]), "max hp")
	assert.Equal(t, uint16(11), binary.LittleEndian.Uint16(buf[50:52]), "sp")
	assert.Equal(t, uint16(150), binary.LittleEndian.Uint16(buf[54:56]), "walk speed")
	assert.Equal(t, uint16(0), binary.LittleEndian.Uint16(buf[56:58]), "class")
	assert.Equal(t, uint16(5), binary.LittleEndian.Uint16(buf[58:60]), "hair")
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(buf[64:66]), "base level")
	assert.Equal(t, uint16(7), binary.LittleEndian.Uint16(buf[76:78]), "hair color")

	wantName := append([]byte("Hero"), make([]byte, 20)...)
	assert.Equal(t, wantName, buf[80:104], "name")
	assert.Equal(t, []byte{1, 1, 1, 1, 1, 1}, buf[104:110], "stats")
	assert.Equal(t, uint16(3), binary.LittleEndian.Uint16(buf[110:112]), "slot")
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(buf[112:114]), "rename available")

	wantMap := append([]byte("new_1-1.gat"), make([]byte, 5)...)
	assert.Equal(t, wantMap, buf[114:130], "map")
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[130:134]), "delete date")
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[138:142]), "slot move")
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[142:146]), "rename enabled")
	assert.Equal(t, byte(1), buf[146], "sex")
	assert.Equal(t, make([]byte, 8), buf[147:155], "reserved tail")
}

func TestCharacterFrameRenameSpent(t *testing.T) {
	ch := testCharacter()
	ch.Settings.Rename = 1
	buf := make([]byte, CharacterFrameSize)
	writeCharacterFrame(buf, ch, "prontera")
	assert.Equal(t, uint16(0), binary.LittleEndian.Uint16(buf[112:114]))
}

func TestCharacterFrameWeaponHiddenByOption(t *testing.T) {
	ch := testCharacter()
	ch.Equipment.Weapon = 1201
	ch.Status.Option = 0x20 // riding
	buf := make([]byte, CharacterFrameSize)
	writeCharacterFrame(buf, ch, "prontera")
	assert.Equal(t, uint16(0), binary.LittleEndian.Uint16(buf[62:64]))
}

func TestCharacterFrameDeleteDate(t *testing.T) {
	ch := testCharacter()
	ch.DeleteDate = time.Unix(1_756_000_000, 0)
	buf := make([]byte, CharacterFrameSize)
	writeCharacterFrame(buf, ch, "prontera")
	assert.Equal(t, uint32(1_756_000_000), binary.LittleEndian.Uint32(buf[130:134]))
}

func TestAccountConnected(t *testing.T) {
	buf := make([]byte, 8)
	n, err := AccountConnected(buf, 0x11223344)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte{0x44, 0x33, 0x22, 0x11}, buf[:4])
}

func TestCharacterSlotCount(t *testing.T) {
	buf := make([]byte, 64)
	n, err := CharacterSlotCount(buf, 10)
	require.NoError(t, err)
	assert.Equal(t, 29, n)
	assert.Equal(t, []byte{0x2d, 0x08, 29, 0x00, 12, 0, 0, 10, 12}, buf[:9])
	assert.Equal(t, make([]byte, 20), buf[9:29])
}

func TestCharacterInfoSizes(t *testing.T) {
	for count := 0; count <= 3; count++ {
		chars := make([]model.Character, count)
		names := make([]string, count)
		for i := range chars {
			chars[i] = *testCharacter()
			chars[i].Slot = uint8(i)
			names[i] = "new_1-1"
		}
		buf := make([]byte, 2048)
		n, err := CharacterInfo(buf, chars, names, 10)
		require.NoError(t, err)
		assert.Equal(t, 28+count*CharacterFrameSize, n)
		assert.Equal(t, []byte{0x6b, 0x00}, buf[:2])
		assert.Equal(t, uint16(n), binary.LittleEndian.Uint16(buf[2:4]))
		assert.Equal(t, byte(12), buf[4])
		assert.Equal(t, byte(10), buf[5])
	}
}

func TestCharactersSizes(t *testing.T) {
	for count := 0; count <= 4; count++ {
		chars := make([]model.Character, count)
		names := make([]string, count)
		for i := range chars {
			chars[i] = *testCharacter()
			chars[i].Slot = uint8(i)
			names[i] = "new_1-1"
		}
		buf := make([]byte, 2048)
		n, err := Characters(buf, chars, names)
		require.NoError(t, err)

		size := 4 + count*CharacterFrameSize
		want := size
		if count == 3 {
			want += 4
		}
		assert.Equal(t, want, n, "count=%d", count)
		assert.Equal(t, []byte{0x9d, 0x09}, buf[:2])
		assert.Equal(t, uint16(size), binary.LittleEndian.Uint16(buf[2:4]))
		if count == 3 {
			assert.Equal(t, []byte{0x9d, 0x09, 0x04, 0x00}, buf[size:size+4], "trailer")
		}
	}
}

func TestBannedCharacters(t *testing.T) {
	buf := make([]byte, 8)
	n, err := BannedCharacters(buf)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte{0x0d, 0x02, 0x04, 0x00}, buf[:4])
}

func TestRefuseEnter(t *testing.T) {
	buf := make([]byte, 8)
	n, err := RefuseEnter(buf, RefuseEnterRejected)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{0x6c, 0x00, 0x00}, buf[:3])
}

func TestPincodeInfo(t *testing.T) {
	buf := make([]byte, 16)
	n, err := PincodeInfo(buf, 0xdeadbeef, 2_000_001, model.PincodeCorrect)
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	assert.Equal(t, []byte{0xb9, 0x08}, buf[:2])
	assert.Equal(t, uint32(0xdeadbeef), binary.LittleEndian.Uint32(buf[2:6]))
	assert.Equal(t, uint32(2_000_001), binary.LittleEndian.Uint32(buf[6:10]))
	assert.Equal(t, uint16(model.PincodeCorrect), binary.LittleEndian.Uint16(buf[10:12]))
}

func TestAcceptMakeChar(t *testing.T) {
	buf := make([]byte, 256)
	n, err := AcceptMakeChar(buf, testCharacter(), "new_1-1")
	require.NoError(t, err)
	assert.Equal(t, 157, n)
	assert.Equal(t, []byte{0x6d, 0x00}, buf[:2])
	assert.Equal(t, uint32(2_000_123), binary.LittleEndian.Uint32(buf[2:6]))
}

func TestRefuseMakeChar(t *testing.T) {
	buf := make([]byte, 8)
	n, err := RefuseMakeChar(buf, MakeCharDenied)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{0x6e, 0x00, 0x02}, buf[:3])
}

func TestDeletePackets(t *testing.T) {
	buf := make([]byte, 32)

	n, err := AcceptDelete(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0x6f, 0x00}, buf[:2])

	n, err = RefuseDelete(buf, DeleteDeniedWrongEmail)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{0x70, 0x00, 0x00}, buf[:3])

	n, err = DeletionReserved(buf, 2_000_123, DeletionReserveOK, 1_756_000_000)
	require.NoError(t, err)
	assert.Equal(t, 14, n)
	assert.Equal(t, []byte{0x28, 0x08}, buf[:2])
	assert.Equal(t, uint32(2_000_123), binary.LittleEndian.Uint32(buf[2:6]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[6:10]))
	assert.Equal(t, uint32(1_756_000_000), binary.LittleEndian.Uint32(buf[10:14]))

	n, err = DeletionAccepted(buf, 2_000_123, DeletionResultOK)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, []byte{0x2a, 0x08}, buf[:2])

	n, err = DeletionCancelled(buf, 2_000_123, DeletionCancelOK)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, []byte{0x2c, 0x08}, buf[:2])
}

func TestRenameResult(t *testing.T) {
	buf := make([]byte, 8)
	n, err := RenameResult(buf, RenameOK)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte{0x8e, 0x02, 0x01, 0x00}, buf[:4])
}

func TestMoveSlotResult(t *testing.T) {
	buf := make([]byte, 8)
	n, err := MoveSlotResult(buf, MoveSlotOK, 1)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, []byte{0xd5, 0x08, 0x08, 0x00, 0x00, 0x00, 0x01, 0x00}, buf[:8])
}

func TestCaptchaResult(t *testing.T) {
	buf := make([]byte, 8)
	n, err := CaptchaResult(buf, CaptchaFailed)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []byte{0xe9, 0x07, 0x05, 0x00, 0x00}, buf[:5])
}

func TestNotifyZoneServer(t *testing.T) {
	buf := make([]byte, 32)
	n, err := NotifyZoneServer(buf, 2_000_123, "new_1-1", net.IPv4(127, 0, 0, 1), 5121)
	require.NoError(t, err)
	assert.Equal(t, 28, n)
	assert.Equal(t, []byte{0x71, 0x00}, buf[:2])
	assert.Equal(t, uint32(2_000_123), binary.LittleEndian.Uint32(buf[2:6]))

	wantMap := append([]byte("new_1-1.gat"), make([]byte, 5)...)
	assert.Equal(t, wantMap, buf[6:22])
	assert.Equal(t, []byte{127, 0, 0, 1}, buf[22:26], "ip is big-endian")
	assert.Equal(t, uint16(5121), binary.LittleEndian.Uint16(buf[26:28]))
}

func TestOverflowLeavesBufferUntouched(t *testing.T) {
	buf := make([]byte, 3) // too small for every packet below
	for name, write := range map[string]func([]byte) (int, error){
		"slot count": func(b []byte) (int, error) { return CharacterSlotCount(b, 10) },
		"pincode":    func(b []byte) (int, error) { return PincodeInfo(b, 1, 2, model.PincodeAskForPin) },
		"zone":       func(b []byte) (int, error) { return NotifyZoneServer(b, 1, "x", net.IPv4(1, 2, 3, 4), 1) },
	} {
		n, err := write(buf)
		var overflow *protocol.OverflowError
		require.ErrorAs(t, err, &overflow, name)
		assert.Zero(t, n, name)
		assert.Equal(t, make([]byte, 3), buf, name)
	}
}
