package compression

import (
	"fmt"
	"io"
)

// MaxVarint is the largest value the codec can represent.
const MaxVarint = 0x3FFFFFFF

// varintLen returns the encoded size of v, or 0 if v is out of range.
func varintLen(v uint32) int {
	switch {
	case v < 0x40:
		return 1
	case v < 0x4000:
		return 2
	case v < 0x400000:
		return 3
	case v < 0x40000000:
		return 4
	default:
		return 0
	}
}

// AppendVarint appends the encoding of v to b.
func AppendVarint(b []byte, v uint32) ([]byte, error) {
	switch varintLen(v) {
	case 1:
		return append(b, byte(v)), nil
	case 2:
		return append(b, byte(v>>8)|0x40, byte(v)), nil
	case 3:
		return append(b, byte(v>>16)|0x80, byte(v>>8), byte(v)), nil
	case 4:
		return append(b, byte(v>>24)|0xC0, byte(v>>16), byte(v>>8), byte(v)), nil
	default:
		return b, fmt.Errorf("varint %#x: %w", v, ErrOutOfRange)
	}
}

// WriteVarint writes the encoding of v to w.
func WriteVarint(w io.Writer, v uint32) error {
	var scratch [4]byte
	enc, err := AppendVarint(scratch[:0], v)
	if err != nil {
		return err
	}
	_, err = w.Write(enc)
	return err
}

// ReadVarint decodes one varint at the cursor.
func ReadVarint(c *Cursor) (uint32, error) {
	first, err := c.readByte()
	if err != nil {
		return 0, err
	}
	n := int(first>>6) + 1
	v := uint32(first & 0x3F)
	if n == 1 {
		return v, nil
	}
	rest, err := c.take(n - 1)
	if err != nil {
		return 0, err
	}
	for _, b := range rest {
		v = v<<8 | uint32(b)
	}
	return v, nil
}

// ReadInt decodes one varint and returns it as an int.
func ReadInt(c *Cursor) (int, error) {
	v, err := ReadVarint(c)
	return int(v), err
}

// SkipVarint advances the cursor past one varint. Only the first byte is
// inspected; the value is never assembled.
func SkipVarint(c *Cursor) error {
	first, err := c.readByte()
	if err != nil {
		return err
	}
	if n := int(first >> 6); n > 0 {
		if _, err := c.take(n); err != nil {
			return err
		}
	}
	return nil
}
