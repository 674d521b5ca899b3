// Package buf contains bounds-checked slicing and endian-safe decoding
// helpers shared by the dictionary decoders.
package buf

import "encoding/binary"

// I32LE reads a little-endian int32 from b. Returns 0 when b is too short.
func I32LE(b []byte) int32 {
	if len(b) < 4 {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(b))
}

// I32LEAt reads the i-th little-endian int32 of an int32 array stored in b.
// Returns 0 when the element is out of range.
func I32LEAt(b []byte, i int) int32 {
	if i < 0 {
		return 0
	}
	if s, ok := Slice(b, i*4, 4); ok {
		return I32LE(s)
	}
	return 0
}

// AppendI32LE appends v to b in little-endian form.
func AppendI32LE(b []byte, v int32) []byte {
	return binary.LittleEndian.AppendUint32(b, uint32(v))
}
