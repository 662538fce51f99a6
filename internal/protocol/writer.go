package protocol

import "encoding/binary"

// PutUint16 writes a uint16 (LE) at buf[off:].
func PutUint16(buf []byte, off int, v uint16) {
	binary.LittleEndian.PutUint16(buf[off:], v)
}

// PutUint32 writes a uint32 (LE) at buf[off:].
func PutUint32(buf []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(buf[off:], v)
}

// PutUint32BE writes a uint32 in big-endian order at buf[off:].
// The protocol uses this only for IP addresses.
func PutUint32BE(buf []byte, off int, v uint32) {
	binary.BigEndian.PutUint32(buf[off:], v)
}

// PutString writes s into a fixed-width field of n bytes at buf[off:],
// truncating if needed and padding the rest with NULs.
func PutString(buf []byte, off int, s string, n int) {
	field := buf[off : off+n]
	copied := copy(field, s)
	clear(field[copied:])
}
