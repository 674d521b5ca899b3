package compression

import "errors"

var (
	// ErrTruncated indicates the buffer ended inside a varint or string.
	ErrTruncated = errors.New("compression: truncated buffer")
	// ErrOutOfRange indicates a value too large for the 30-bit varint space.
	ErrOutOfRange = errors.New("compression: value out of range")
)
