package compression

import (
	"fmt"

	"github.com/joshuapare/lttoolkit/internal/buf"
)

// Cursor is a read position over an immutable byte slice, typically a
// memory-mapped dictionary. The zero value reads from an empty buffer.
type Cursor struct {
	data []byte
	off  int
}

// NewCursor returns a cursor positioned at the start of data.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Offset returns the current read position.
func (c *Cursor) Offset() int { return c.off }

// Len returns the size of the underlying buffer.
func (c *Cursor) Len() int { return len(c.data) }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.data) - c.off }

// Seek moves the cursor to an absolute offset.
func (c *Cursor) Seek(off int) error {
	if off < 0 || off > len(c.data) {
		return fmt.Errorf("seek to %d of %d: %w", off, len(c.data), ErrTruncated)
	}
	c.off = off
	return nil
}

func (c *Cursor) readByte() (byte, error) {
	if c.off >= len(c.data) {
		return 0, fmt.Errorf("read at %d: %w", c.off, ErrTruncated)
	}
	b := c.data[c.off]
	c.off++
	return b, nil
}

func (c *Cursor) take(n int) ([]byte, error) {
	s, ok := buf.Slice(c.data, c.off, n)
	if !ok {
		return nil, fmt.Errorf("read %d bytes at %d: %w", n, c.off, ErrTruncated)
	}
	c.off += n
	return s, nil
}

// Take returns the next n bytes without copying and advances past them.
func (c *Cursor) Take(n int) ([]byte, error) {
	return c.take(n)
}
