package compression

import (
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// AppendString appends the encoding of s: its UTF-16 length followed by
// one varint per UTF-16 code unit.
func AppendString(b []byte, s string) ([]byte, error) {
	units, err := utf16le.NewEncoder().String(s)
	if err != nil {
		return b, fmt.Errorf("encode %q: %w", s, err)
	}
	b, err = AppendVarint(b, uint32(len(units)/2))
	if err != nil {
		return b, err
	}
	for i := 0; i+1 < len(units); i += 2 {
		if b, err = AppendVarint(b, uint32(units[i])|uint32(units[i+1])<<8); err != nil {
			return b, err
		}
	}
	return b, nil
}

// WriteString writes the encoding of s to w.
func WriteString(w io.Writer, s string) error {
	enc, err := AppendString(nil, s)
	if err != nil {
		return err
	}
	_, err = w.Write(enc)
	return err
}

// ReadString decodes one length-prefixed string at the cursor.
func ReadString(c *Cursor) (string, error) {
	n, err := ReadInt(c)
	if err != nil {
		return "", err
	}
	if n > c.Remaining() {
		return "", fmt.Errorf("string of %d units at %d: %w", n, c.Offset(), ErrTruncated)
	}
	ascii := true
	units := make([]byte, 0, 2*n)
	for range n {
		u, err := ReadVarint(c)
		if err != nil {
			return "", err
		}
		if u > 0xFFFF {
			return "", fmt.Errorf("string code unit %#x: %w", u, ErrOutOfRange)
		}
		if u >= utf8.RuneSelf {
			ascii = false
		}
		units = append(units, byte(u), byte(u>>8))
	}
	if ascii {
		out := make([]byte, n)
		for i := range n {
			out[i] = units[2*i]
		}
		return string(out), nil
	}
	decoded, err := utf16le.NewDecoder().Bytes(units)
	if err != nil {
		return "", fmt.Errorf("decode string: %w", err)
	}
	return string(decoded), nil
}

// SkipString advances the cursor past one string without decoding it.
func SkipString(c *Cursor) error {
	n, err := ReadInt(c)
	if err != nil {
		return err
	}
	for range n {
		if err := SkipVarint(c); err != nil {
			return err
		}
	}
	return nil
}
