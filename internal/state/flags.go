package state

import "github.com/joshuapare/lttoolkit/internal/alphabet"

// FlagTable holds the flag diacritics of an alphabet, parsed once.
type FlagTable struct {
	flags []alphabet.Flag
	ok    []bool
	vars  int
	vals  []int
}

// NewFlagTable parses the flag tags of a.
func NewFlagTable(a *alphabet.Alphabet) *FlagTable {
	flags, ok, vars := a.Flags()
	return &FlagTable{flags: flags, ok: ok, vars: vars, vals: make([]int, vars)}
}

// Len returns the number of flag variables.
func (f *FlagTable) Len() int { return f.vars }

// IsFlag reports whether sym is a flag tag.
func (f *FlagTable) IsFlag(sym int32) bool {
	i := int(-sym - 1)
	return sym < 0 && i < len(f.ok) && f.ok[i]
}

// consistent reports whether seq never sets a variable to two different
// values without resetting it in between.
func (f *FlagTable) consistent(seq []int32) bool {
	clear(f.vals)
	for _, sym := range seq {
		if !f.IsFlag(sym) {
			continue
		}
		fl := f.flags[-sym-1]
		switch cur := f.vals[fl.Var]; {
		case fl.Value == 0:
			f.vals[fl.Var] = 0
		case cur != 0 && cur != fl.Value:
			return false
		default:
			f.vals[fl.Var] = fl.Value
		}
	}
	return true
}

// PruneConflictingFlags removes the threads whose output assigns a flag
// variable two different values without a reset in between.
func (s *State) PruneConflictingFlags(f *FlagTable) {
	if f == nil || f.vars == 0 {
		return
	}
	s.filterThreads(func(t thread) bool {
		return f.consistent(s.arena.seq(t.seq))
	})
}
