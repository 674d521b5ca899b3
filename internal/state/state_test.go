package state

import (
	"testing"
	"unicode"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/lttoolkit/internal/alphabet"
	"github.com/joshuapare/lttoolkit/internal/reader"
	"github.com/joshuapare/lttoolkit/internal/testutil"
	"github.com/joshuapare/lttoolkit/internal/testutil/dixbuild"
	"github.com/joshuapare/lttoolkit/pkg/types"
)

type fixture struct {
	arena   *Arena
	alpha   *alphabet.Alphabet
	initial *State
	dict    *reader.Dictionary
}

func load(t *testing.T, b *dixbuild.Builder) *fixture {
	t.Helper()
	d, err := reader.OpenBytes(b.Bytes(), reader.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	f := &fixture{arena: NewArena(), alpha: d.Alphabet(), dict: d}
	f.initial = New(f.arena, d.Sections())
	f.initial.Init()
	return f
}

func (f *fixture) walk(word string, fold bool) *State {
	s := New(f.arena, f.dict.Sections())
	s.CopyFrom(f.initial)
	for _, r := range word {
		if fold && unicode.IsUpper(r) {
			s.StepFold(r, unicode.ToLower(r))
			continue
		}
		s.Step(r)
	}
	return s
}

type snap struct {
	sec, node int32
	folded    bool
	seq       []int32
}

func snapshot(s *State) []snap {
	out := make([]snap, 0, s.Size())
	for _, t := range s.threads {
		out = append(out, snap{t.sec, t.node, t.folded, append([]int32(nil), s.arena.seq(t.seq)...)})
	}
	return out
}

func TestStepAndFilterFinals(t *testing.T) {
	f := load(t, testutil.CatsDictionary())

	require.False(t, f.initial.IsFinal())
	require.Equal(t, 1, f.initial.Size())

	s := f.walk("cat", false)
	require.True(t, s.IsFinal())
	require.True(t, s.IsFinalIn(types.KindStandard))
	require.False(t, s.IsFinalIn(types.KindInconditional))
	require.Equal(t, "/cat<n><sg>", s.FilterFinals(f.alpha, FilterOptions{}))

	s.Step('s')
	require.Equal(t, "/cat<n><pl>", s.FilterFinals(f.alpha, FilterOptions{}))

	s.Step('x')
	require.Zero(t, s.Size())
	require.Empty(t, s.FilterFinals(f.alpha, FilterOptions{}))
}

func TestCaseFolding(t *testing.T) {
	f := load(t, testutil.CatsDictionary())

	s := f.walk("Cats", true)
	require.Equal(t, "/Cat<n><pl>", s.FilterFinals(f.alpha, FilterOptions{FirstUpper: true}))

	s = f.walk("CATS", true)
	require.Equal(t, "/CAT<n><pl>", s.FilterFinals(f.alpha, FilterOptions{Uppercase: true, FirstUpper: true}))

	s = f.walk("Cats", false)
	require.Zero(t, s.Size(), "no literal uppercase path without folding")

	s = f.walk("cats", true)
	require.Equal(t, "/cat<n><pl>", s.FilterFinals(f.alpha, FilterOptions{Uppercase: true, FirstUpper: true}),
		"unfolded threads keep dictionary case")
}

func TestFilterFinalsEscapesAndSAO(t *testing.T) {
	b := dixbuild.New().Alphabetic(testutil.Letters)
	b.Section("main@standard").Add("ab", "a/b<n>")
	f := load(t, b)

	s := f.walk("ab", false)
	require.Equal(t, `/a\/b<n>`, s.FilterFinals(f.alpha, FilterOptions{Escaped: "/"}))
	require.Equal(t, "/a/b&n;", s.FilterFinalsSAO(f.alpha, FilterOptions{}))
}

func TestFilterFinalsDeduplicates(t *testing.T) {
	b := dixbuild.New().Alphabetic(testutil.Letters)
	sec := b.Section("main@standard")
	n1, n2 := sec.NewNode(), sec.NewNode()
	sec.Edge(0, n1, "a", "x").Final(n1)
	sec.Edge(0, n2, "a", "x").Final(n2)
	f := load(t, b)

	s := f.walk("a", false)
	require.Equal(t, 2, s.Size())
	require.Equal(t, "/x", s.FilterFinals(f.alpha, FilterOptions{}))
}

func TestEpsilonClosureIdempotent(t *testing.T) {
	b := dixbuild.New().Alphabetic(testutil.Letters)
	sec := b.Section("main@standard")
	n1, n2, n3 := sec.NewNode(), sec.NewNode(), sec.NewNode()
	sec.Edge(0, n1, "", "").
		Edge(n1, 0, "", "").
		Edge(n1, n2, "", "<x>").
		Edge(n2, n3, "a", "b").
		Final(n3)
	f := load(t, b)

	require.Equal(t, 3, f.initial.Size())
	before := snapshot(f.initial)
	f.initial.EpsilonClosure()
	require.Equal(t, before, snapshot(f.initial))
	f.initial.EpsilonClosure()
	require.Equal(t, before, snapshot(f.initial))

	s := f.walk("a", false)
	require.Equal(t, "/<x>b", s.FilterFinals(f.alpha, FilterOptions{}))
}

func TestStepOnSentinelsKillsThreads(t *testing.T) {
	f := load(t, testutil.CatsDictionary())
	for _, sym := range []int32{0, EOF, WordStart} {
		s := f.walk("ca", false)
		require.NotZero(t, s.Size())
		s.Step(sym)
		require.Zero(t, s.Size(), "symbol %d", sym)
	}
}

func TestArenaSlotsAreReturned(t *testing.T) {
	f := load(t, testutil.CatsDictionary())
	s := f.walk("cats", true)
	require.NotZero(t, f.arena.Live())
	s.Reset()
	f.initial.Reset()
	require.Zero(t, f.arena.Live())
}

func TestPruneConflictingFlags(t *testing.T) {
	b := dixbuild.New().Alphabetic(testutil.Letters)
	b.Section("main@standard").
		Add("ab", "a<c:1>b<c:2>").
		Add("ac", "a<c:1>c<c:1>").
		Add("ad", "a<c:1><c:>d<c:2>")
	f := load(t, b)
	flags := NewFlagTable(f.alpha)
	require.Equal(t, 1, flags.Len())
	require.True(t, flags.IsFlag(f.alpha.Cast("<c:1>")))

	s := f.walk("ab", false)
	require.NotEmpty(t, s.FilterFinals(f.alpha, FilterOptions{}))
	s.PruneConflictingFlags(flags)
	require.Empty(t, s.FilterFinals(f.alpha, FilterOptions{}))

	for _, w := range []string{"ac", "ad"} {
		s = f.walk(w, false)
		s.PruneConflictingFlags(flags)
		require.NotEmpty(t, s.FilterFinals(f.alpha, FilterOptions{}), w)
	}
}

func compoundDictionary() *dixbuild.Builder {
	b := dixbuild.New().Alphabetic(testutil.Letters)
	b.Section("main@standard").
		Add("sol", "sol<n><:co:only-L>").
		Add("s", "s<x><:co:only-L>").
		Add("ol", "ol<y><:co:only-L>").
		Add("hat", "hat<n><:co:R>")
	return b
}

func TestRestartFinalsAndPruneCompounds(t *testing.T) {
	f := load(t, compoundDictionary())
	onlyL, right := f.alpha.Cast("<:co:only-L>"), f.alpha.Cast("<:co:R>")

	word := []rune("solhat")
	s := New(f.arena, f.dict.Sections())
	s.CopyFrom(f.initial)
	for i, r := range word {
		s.Step(r)
		if i < len(word)-1 {
			s.RestartFinals(onlyL, f.initial, '+')
		}
	}
	require.Equal(t,
		"/sol<n><:co:only-L>+hat<n><:co:R>/s<x><:co:only-L>+ol<y><:co:only-L>+hat<n><:co:R>",
		s.FilterFinals(f.alpha, FilterOptions{}))

	s.PruneExcessCompounds(right, '+', 4)
	require.Equal(t, "/sol<n><:co:only-L>+hat<n><:co:R>", s.FilterFinals(f.alpha, FilterOptions{}))

	s.PruneExcessCompounds(right, '+', 0)
	require.Zero(t, s.Size(), "one separator exceeds a ceiling of zero")
}

func TestPruneForbiddenSymbol(t *testing.T) {
	f := load(t, compoundDictionary())
	onlyL := f.alpha.Cast("<:co:only-L>")

	s := f.walk("sol", false)
	require.Contains(t, s.FilterFinals(f.alpha, FilterOptions{}), "<:co:only-L>")
	s.PruneForbiddenSymbol(onlyL)
	require.Zero(t, s.Size())
	require.False(t, s.IsFinal())

	s = f.walk("hat", false)
	s.PruneForbiddenSymbol(onlyL)
	require.Equal(t, "/hat<n><:co:R>", s.FilterFinals(f.alpha, FilterOptions{}))
}
