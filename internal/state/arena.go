package state

// Arena owns the output sequences of every thread of the states built on
// it. A sequence lives in a numbered slot; a thread owns exactly one slot
// and hands it back when the thread dies. Released slots keep their
// backing arrays and are reused by later threads.
//
// An Arena is not safe for concurrent use. States sharing an arena must be
// driven from one goroutine.
type Arena struct {
	seqs [][]int32
	free []int32
}

// NewArena returns an empty arena.
func NewArena() *Arena { return &Arena{} }

func (a *Arena) alloc() int32 {
	if n := len(a.free); n > 0 {
		i := a.free[n-1]
		a.free = a.free[:n-1]
		a.seqs[i] = a.seqs[i][:0]
		return i
	}
	a.seqs = append(a.seqs, nil)
	return int32(len(a.seqs) - 1)
}

// derive allocates a slot holding the sequence of src followed by sym,
// unless sym is 0.
func (a *Arena) derive(src, sym int32) int32 {
	i := a.alloc()
	s := append(a.seqs[i], a.seqs[src]...)
	if sym != 0 {
		s = append(s, sym)
	}
	a.seqs[i] = s
	return i
}

// extend is derive with several trailing symbols.
func (a *Arena) extend(src int32, syms ...int32) int32 {
	i := a.alloc()
	s := append(a.seqs[i], a.seqs[src]...)
	a.seqs[i] = append(s, syms...)
	return i
}

func (a *Arena) release(i int32) { a.free = append(a.free, i) }

func (a *Arena) seq(i int32) []int32 { return a.seqs[i] }

// Live returns the number of slots currently owned by threads.
func (a *Arena) Live() int { return len(a.seqs) - len(a.free) }
