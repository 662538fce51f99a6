package serverpackets

import (
	"bytes"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valkyrja/ro2go/internal/model"
	"github.com/valkyrja/ro2go/internal/protocol"
)

func TestLoginSuccessV3Empty(t *testing.T) {
	ticket := model.Ticket{
		AccountID:          2_000_042,
		AuthenticationCode: 0xdeadbeef,
		UserLevel:          3,
		Sex:                model.Male,
		WebAuthToken:       [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
	}

	buf := make([]byte, 256)
	n, err := LoginSuccessV3(buf, ticket, nil)
	require.NoError(t, err)

	// zero servers: opcode + 64-byte body
	assert.Equal(t, 66, n)
	assert.Equal(t, []byte{0xc4, 0x0a}, buf[0:2])
	assert.Equal(t, uint16(64), binary.LittleEndian.Uint16(buf[2:]))
	assert.Equal(t, uint32(0xdeadbeef), binary.LittleEndian.Uint32(buf[4:]))
	assert.Equal(t, uint32(2_000_042), binary.LittleEndian.Uint32(buf[8:]))
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(buf[12:]))
	assert.Equal(t, make([]byte, 30), buf[16:46])
	assert.Equal(t, byte(1), buf[46])
	assert.Equal(t, ticket.WebAuthToken[:], buf[47:63])
	assert.Equal(t, byte(0), buf[63])
}

func TestLoginSuccessV3ServerRecords(t *testing.T) {
	servers := []ServerInfo{
		{Name: "Valkyrja", IP: net.IPv4(192, 168, 1, 10), Port: 6121, Activity: 12, Type: 0x0100},
		{Name: "Niflheim", IP: net.IPv4(10, 0, 0, 2), Port: 6122},
	}

	buf := make([]byte, 1024)
	n, err := LoginSuccessV3(buf, model.Ticket{}, servers)
	require.NoError(t, err)
	assert.Equal(t, 2+64+2*160, n)
	assert.Equal(t, uint16(64+2*160), binary.LittleEndian.Uint16(buf[2:]))

	rec := buf[2+62:]
	// IP rides big-endian, everything else little-endian
	assert.Equal(t, []byte{192, 168, 1, 10}, rec[0:4])
	assert.Equal(t, uint16(6121), binary.LittleEndian.Uint16(rec[4:]))
	assert.Equal(t, []byte("Valkyrja"), rec[6:14])
	assert.Equal(t, make([]byte, 12), rec[14:26])
	assert.Equal(t, uint16(12), binary.LittleEndian.Uint16(rec[26:]))
	assert.Equal(t, []byte{0x01, 0x00}, rec[28:30])
	assert.Equal(t, make([]byte, 130), rec[30:160])

	rec2 := buf[2+62+160:]
	assert.Equal(t, []byte{10, 0, 0, 2}, rec2[0:4])
}

func TestLoginSuccessV3SizeInvariant(t *testing.T) {
	buf := make([]byte, 2048)
	for n := range 6 {
		servers := make([]ServerInfo, n)
		for i := range servers {
			servers[i] = ServerInfo{Name: "s", IP: net.IPv4(127, 0, 0, 1), Port: 6121}
		}
		written, err := LoginSuccessV3(buf, model.Ticket{}, servers)
		require.NoError(t, err)
		assert.Equal(t, 2+64+160*n, written)
	}
}

func TestLoginSuccessV3Overflow(t *testing.T) {
	short := make([]byte, 10)
	backup := append([]byte(nil), short...)

	_, err := LoginSuccessV3(short, model.Ticket{}, nil)
	var overflow *protocol.OverflowError
	require.ErrorAs(t, err, &overflow)
	assert.Equal(t, 66, overflow.Needed)
	// nothing written
	assert.True(t, bytes.Equal(backup, short))
}

func TestLoginFailed(t *testing.T) {
	t.Run("plain code pads with zeros", func(t *testing.T) {
		buf := make([]byte, 64)
		n, err := LoginFailed(buf, 1, time.Time{})
		require.NoError(t, err)

		assert.Equal(t, 26, n)
		assert.Equal(t, []byte{0x3e, 0x08}, buf[0:2])
		assert.Equal(t, []byte{0x01, 0x00, 0x00, 0x00}, buf[2:6])
		assert.Equal(t, make([]byte, 20), buf[6:26])
	})

	t.Run("timed ban carries the deadline", func(t *testing.T) {
		until := time.Date(2026, 8, 24, 13, 37, 0, 0, time.UTC)
		buf := make([]byte, 64)
		n, err := LoginFailed(buf, 6, until)
		require.NoError(t, err)

		assert.Equal(t, 26, n)
		assert.Equal(t, []byte{0x06, 0x00, 0x00, 0x00}, buf[2:6])
		assert.Equal(t, "2026-08-24 13:37", string(buf[6:22]))
		assert.Equal(t, make([]byte, 4), buf[22:26])
	})

	t.Run("overflow", func(t *testing.T) {
		_, err := LoginFailed(make([]byte, 4), 1, time.Time{})
		var overflow *protocol.OverflowError
		require.ErrorAs(t, err, &overflow)
		assert.Equal(t, 26, overflow.Needed)
	})
}

func TestLoginAborted(t *testing.T) {
	buf := make([]byte, 8)
	n, err := LoginAborted(buf, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{0x81, 0x00, 0x01}, buf[:3])

	_, err = LoginAborted(make([]byte, 2), 1)
	assert.Error(t, err)
}
