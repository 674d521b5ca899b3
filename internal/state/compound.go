package state

import "math"

// PruneForbiddenSymbol removes every thread whose output contains sym.
func (s *State) PruneForbiddenSymbol(sym int32) {
	if sym == 0 {
		return
	}
	s.filterThreads(func(t thread) bool {
		for _, v := range s.arena.seq(t.seq) {
			if v == sym {
				return false
			}
		}
		return true
	})
}

// RestartFinals lets compounding re-enter the dictionary: for every final
// thread whose last part (the output after the last separator) contains
// required, it adds one thread per thread of initial, carrying the final
// thread's output, the separator and the initial thread's output.
// initial must share the arena of s.
func (s *State) RestartFinals(required int32, initial *State, separator int32) {
	n := len(s.threads)
	for i := range n {
		t := s.threads[i]
		if !s.secs[t.sec].IsFinal(t.node) || !lastPartHas(s.arena.seq(t.seq), required, separator) {
			continue
		}
		for _, it := range initial.threads {
			syms := append([]int32{separator}, s.arena.seq(it.seq)...)
			s.threads = append(s.threads, thread{
				sec:    it.sec,
				node:   it.node,
				seq:    s.arena.extend(t.seq, syms...),
				folded: t.folded,
			})
		}
	}
}

// PruneExcessCompounds keeps the threads whose last part contains required
// and whose number of separators is minimal, and at most maxElements.
func (s *State) PruneExcessCompounds(required, separator int32, maxElements int) {
	counts := make([]int, len(s.threads))
	least := maxElements
	for i, t := range s.threads {
		seq := s.arena.seq(t.seq)
		if !lastPartHas(seq, required, separator) {
			counts[i] = math.MaxInt
			continue
		}
		n := 0
		for j := len(seq) - 2; j > 0; j-- {
			if seq[j] == separator {
				n++
			}
		}
		counts[i] = n
		least = min(least, n)
	}
	i := 0
	s.filterThreads(func(thread) bool {
		keep := counts[i] <= least
		i++
		return keep
	})
}

// lastPartHas reports whether sym occurs in seq after the last separator.
func lastPartHas(seq []int32, sym, separator int32) bool {
	for i := len(seq) - 1; i >= 0; i-- {
		switch seq[i] {
		case sym:
			return true
		case separator:
			return false
		}
	}
	return false
}

// filterThreads keeps the threads for which keep returns true, in order,
// releasing the others. keep is called once per thread, in order.
func (s *State) filterThreads(keep func(thread) bool) {
	kept := s.threads[:0]
	for _, t := range s.threads {
		if keep(t) {
			kept = append(kept, t)
			continue
		}
		s.arena.release(t.seq)
	}
	s.threads = kept
}
