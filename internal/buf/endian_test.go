package buf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestI32LE(t *testing.T) {
	data := []byte{0x01, 0x23, 0x45, 0x67, 0xff, 0xff, 0xff, 0xff}

	require.Equal(t, int32(0x67452301), I32LE(data))
	require.Equal(t, int32(-1), I32LEAt(data, 1))
	require.Zero(t, I32LEAt(data, 2))
	require.Zero(t, I32LEAt(data, -1))
	require.Zero(t, I32LE([]byte{0xaa}))
}

func TestAppendI32LERoundTrip(t *testing.T) {
	// Symbol sentinels sit at the bottom of the int32 range.
	values := []int32{0, 1, -1, -2147483648, -2147483647, 2147483647}

	var out []byte
	for _, v := range values {
		out = AppendI32LE(out, v)
	}
	require.Len(t, out, 4*len(values))
	for i, v := range values {
		require.Equal(t, v, I32LEAt(out, i))
	}
}
