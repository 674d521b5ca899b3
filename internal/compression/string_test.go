package compression

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringRoundTrip(t *testing.T) {
	for _, s := range []string{"", "n", "vblex", "<n>", "ñandú", "Straße", "東京", "𝄞clef", "a b"} {
		var w bytes.Buffer
		require.NoError(t, WriteString(&w, s))

		c := NewCursor(w.Bytes())
		got, err := ReadString(c)
		require.NoError(t, err)
		require.Equal(t, s, got)
		require.Zero(t, c.Remaining())
	}
}

func TestStringCountsUTF16Units(t *testing.T) {
	enc, err := AppendString(nil, "𝄞")
	require.NoError(t, err)
	// One supplementary rune is two UTF-16 code units.
	n, err := ReadVarint(NewCursor(enc))
	require.NoError(t, err)
	require.Equal(t, uint32(2), n)
}

func TestSkipString(t *testing.T) {
	b, err := AppendString(nil, "main@standard")
	require.NoError(t, err)
	b, err = AppendVarint(b, 42)
	require.NoError(t, err)

	c := NewCursor(b)
	require.NoError(t, SkipString(c))
	v, err := ReadVarint(c)
	require.NoError(t, err)
	require.Equal(t, uint32(42), v)
}

func TestStringTruncated(t *testing.T) {
	b, err := AppendString(nil, "abc")
	require.NoError(t, err)
	_, err = ReadString(NewCursor(b[:len(b)-1]))
	require.ErrorIs(t, err, ErrTruncated)

	// Length prefix claims far more units than remain.
	_, err = ReadString(NewCursor([]byte{0x7F, 0xFF}))
	require.ErrorIs(t, err, ErrTruncated)
}
