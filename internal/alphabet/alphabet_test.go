package alphabet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/lttoolkit/internal/compression"
)

func TestIncludeSymbolIdempotent(t *testing.T) {
	a := New()
	a.IncludeSymbol("<n>")
	id1 := a.Cast("<n>")
	a.IncludeSymbol("<n>")
	id2 := a.Cast("<n>")
	require.Equal(t, id1, id2)
	require.Equal(t, int32(-1), id1)
	require.Equal(t, int32(-2), a.IncludeSymbol("<sg>"))
	require.Equal(t, 2, a.TagCount())
}

func TestCastUnknownIsZero(t *testing.T) {
	a := New()
	require.Zero(t, a.Cast("<nope>"))
	require.True(t, IsTag(a.IncludeSymbol("<nope>")))
	require.False(t, IsTag('a'))
	require.False(t, IsTag(0))
}

func TestSymbolRendering(t *testing.T) {
	a := New()
	n := a.IncludeSymbol("<n>")

	require.Equal(t, "", a.Symbol(0, false))
	require.Equal(t, "<n>", a.Symbol(n, true))
	require.Equal(t, "a", a.Symbol('a', false))
	require.Equal(t, "A", a.Symbol('a', true))
	require.Equal(t, "Ж", a.Symbol('ж', true))
	require.Equal(t, "東", a.Symbol('東', true))
	require.Equal(t, "", a.Symbol(-99, false))

	var b strings.Builder
	a.WriteSymbol(&b, 'ñ', true)
	a.WriteSymbol(&b, 0, false)
	a.WriteSymbol(&b, n, false)
	require.Equal(t, "Ñ<n>", b.String())
}

func TestSetSymbolOnlyAffectsClone(t *testing.T) {
	a := New()
	co := a.IncludeSymbol("<:co:R>")
	a.IncludePair(Pair{In: 'a', Out: co})

	c := a.Clone()
	c.SetSymbol(co, "")
	extra := c.IncludeSymbol("<extra>")

	require.Equal(t, "", c.Symbol(co, false))
	require.Equal(t, "<:co:R>", a.Symbol(co, false))
	require.Equal(t, co, c.Cast("<:co:R>"), "rebinding keeps the id")
	require.Zero(t, a.Cast("<extra>"))
	require.Equal(t, int32(-2), extra)

	p, ok := c.Decode(0)
	require.True(t, ok)
	require.Equal(t, Pair{In: 'a', Out: co}, p)
}

func TestReadWriteBlock(t *testing.T) {
	a := New()
	n := a.IncludeSymbol("<n>")
	pl := a.IncludeSymbol("<pl>")
	a.IncludePair(Pair{In: 'c', Out: 'c'})
	a.IncludePair(Pair{In: 's', Out: pl})
	a.IncludePair(Pair{In: 0, Out: n})

	enc, err := a.Write(nil)
	require.NoError(t, err)

	c := compression.NewCursor(enc)
	got, err := Read(c)
	require.NoError(t, err)
	require.Zero(t, c.Remaining())

	require.Equal(t, n, got.Cast("<n>"))
	require.Equal(t, pl, got.Cast("<pl>"))
	require.Equal(t, 3, got.PairCount())
	p, ok := got.Decode(1)
	require.True(t, ok)
	require.Equal(t, Pair{In: 's', Out: pl}, p)
	p, _ = got.Decode(2)
	require.Equal(t, Pair{In: 0, Out: n}, p)

	_, ok = got.Decode(3)
	require.False(t, ok)
}

func TestReadTruncated(t *testing.T) {
	a := New()
	a.IncludeSymbol("<n>")
	a.IncludePair(Pair{In: 'x', Out: 'y'})
	enc, err := a.Write(nil)
	require.NoError(t, err)

	for i := range len(enc) {
		_, err := Read(compression.NewCursor(enc[:i]))
		require.ErrorIs(t, err, compression.ErrTruncated, "prefix of %d bytes", i)
	}
}

func TestTruncate(t *testing.T) {
	a := New()
	n := a.IncludeSymbol("<n>")
	c := a.Clone()
	x := c.IncludeSymbol("<x>")

	c.Truncate(1)
	require.Equal(t, 1, c.TagCount())
	require.Zero(t, c.Cast("<x>"))
	require.Equal(t, n, c.Cast("<n>"))
	require.Equal(t, x, c.IncludeSymbol("<y>"), "dropped ids are reused")

	c.Truncate(5)
	require.Equal(t, 2, c.TagCount())
}

func TestReadRepeatedTag(t *testing.T) {
	var enc []byte
	enc, _ = compression.AppendVarint(enc, 3)
	for _, tag := range []string{"n", "pl", "n"} {
		enc, _ = compression.AppendString(enc, tag)
	}
	enc, _ = compression.AppendVarint(enc, 0)

	_, err := Read(compression.NewCursor(enc))
	require.Error(t, err)
	require.Contains(t, err.Error(), "repeats <n>")
}

func TestFlags(t *testing.T) {
	a := New()
	n := a.IncludeSymbol("<n>")
	c1 := a.IncludeSymbol("<case:nom>")
	c2 := a.IncludeSymbol("<case:acc>")
	reset := a.IncludeSymbol("<case:>")
	num := a.IncludeSymbol("<num:sg>")
	co := a.IncludeSymbol("<:co:R>")

	flags, ok, vars := a.Flags()
	require.Equal(t, 2, vars)
	require.False(t, ok[-n-1])
	require.False(t, ok[-co-1])
	require.True(t, ok[-c1-1])

	f1, f2 := flags[-c1-1], flags[-c2-1]
	require.Equal(t, f1.Var, f2.Var)
	require.NotEqual(t, f1.Value, f2.Value)
	require.NotZero(t, f1.Value)
	require.Zero(t, flags[-reset-1].Value)
	require.NotEqual(t, f1.Var, flags[-num-1].Var)
}
