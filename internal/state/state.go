// Package state simulates the letter transducers of a dictionary as an
// NFA: a State is the set of paths (threads) alive after the input
// consumed so far, across every section.
package state

import (
	"strings"

	"github.com/joshuapare/lttoolkit/internal/alphabet"
	"github.com/joshuapare/lttoolkit/internal/transducer"
	"github.com/joshuapare/lttoolkit/pkg/types"
)

// closureLimit stops epsilon closure from expanding output-producing
// epsilon cycles forever.
const closureLimit = 1 << 20

type thread struct {
	sec    int32 // index into State.secs
	node   int32
	seq    int32 // arena slot
	folded bool  // reached through a case-folded transition
}

type closureKey struct {
	sec, node int32
	folded    bool
	hash      uint64
}

// State is an ordered set of threads. The zero value is not usable; build
// states with New.
type State struct {
	secs    []*transducer.Section
	arena   *Arena
	threads []thread
	next    []thread
	seen    map[closureKey]int32
}

// New returns an empty state over secs whose sequences live in arena.
func New(arena *Arena, secs []*transducer.Section) *State {
	return &State{secs: secs, arena: arena, seen: make(map[closureKey]int32)}
}

// Init seeds one thread at the initial node of every section and closes
// the state under epsilon transitions.
func (s *State) Init() {
	s.Reset()
	for i, sec := range s.secs {
		s.threads = append(s.threads, thread{sec: int32(i), node: sec.Initial(), seq: s.arena.alloc()})
	}
	s.EpsilonClosure()
}

// Reset kills every thread.
func (s *State) Reset() {
	for _, t := range s.threads {
		s.arena.release(t.seq)
	}
	s.threads = s.threads[:0]
}

// CopyFrom replaces the threads of s with copies of the threads of o.
// Both states must share an arena.
func (s *State) CopyFrom(o *State) {
	s.Reset()
	s.secs = o.secs
	for _, t := range o.threads {
		t.seq = s.arena.derive(t.seq, 0)
		s.threads = append(s.threads, t)
	}
}

// Size returns the number of live threads.
func (s *State) Size() int { return len(s.threads) }

// Step advances every thread over sym. Stepping on 0 or on a negative
// sentinel outside the alphabet kills every thread.
func (s *State) Step(sym int32) {
	s.step(sym, sym, false)
}

// StepFold advances every thread over sym and, when alt differs, also
// over alt, marking the threads that took alt as case-folded.
func (s *State) StepFold(sym, alt int32) {
	s.step(sym, alt, sym != alt)
}

func (s *State) step(sym, alt int32, fold bool) {
	if sym == 0 || sym < Sentinel {
		s.Reset()
		return
	}
	s.next = s.next[:0]
	for _, t := range s.threads {
		n := s.secs[t.sec].Node(t.node)
		for _, tr := range n.Match(sym) {
			s.next = append(s.next, thread{sec: t.sec, node: tr.Dest, seq: s.arena.derive(t.seq, tr.Out), folded: t.folded})
		}
		if fold {
			for _, tr := range n.Match(alt) {
				s.next = append(s.next, thread{sec: t.sec, node: tr.Dest, seq: s.arena.derive(t.seq, tr.Out), folded: true})
			}
		}
		s.arena.release(t.seq)
	}
	s.threads, s.next = s.next, s.threads
	s.EpsilonClosure()
}

// EpsilonClosure follows epsilon transitions from every thread, including
// threads added along the way, until no new thread appears. Threads are
// identified by section, node, fold flag and output sequence; duplicates
// are dropped, so the closure of a closed state is the state itself.
func (s *State) EpsilonClosure() {
	clear(s.seen)
	kept := s.next[:0]
	for _, t := range s.threads {
		if s.lookup(kept, t.sec, t.node, t.folded, s.arena.seq(t.seq), 0) {
			s.arena.release(t.seq)
			continue
		}
		s.seen[s.key(t.sec, t.node, t.folded, s.arena.seq(t.seq), 0)] = int32(len(kept))
		kept = append(kept, t)
	}
	s.threads, s.next = kept, s.threads[:0]

	for i := 0; i < len(s.threads) && len(s.threads) < closureLimit; i++ {
		t := s.threads[i]
		for _, tr := range s.secs[t.sec].Node(t.node).Epsilons() {
			if s.lookup(s.threads, t.sec, tr.Dest, t.folded, s.arena.seq(t.seq), tr.Out) {
				continue
			}
			k := s.key(t.sec, tr.Dest, t.folded, s.arena.seq(t.seq), tr.Out)
			s.seen[k] = int32(len(s.threads))
			s.threads = append(s.threads, thread{sec: t.sec, node: tr.Dest, seq: s.arena.derive(t.seq, tr.Out), folded: t.folded})
		}
	}
}

func (s *State) key(sec, node int32, folded bool, seq []int32, out int32) closureKey {
	h := uint64(14695981039346656037)
	for _, v := range seq {
		h = (h ^ uint64(uint32(v))) * 1099511628211
	}
	if out != 0 {
		h = (h ^ uint64(uint32(out))) * 1099511628211
	}
	return closureKey{sec: sec, node: node, folded: folded, hash: h}
}

// lookup reports whether ts holds a thread at (sec, node, folded) whose
// output is seq followed by out.
func (s *State) lookup(ts []thread, sec, node int32, folded bool, seq []int32, out int32) bool {
	i, ok := s.seen[s.key(sec, node, folded, seq, out)]
	if !ok {
		return false
	}
	if t := ts[i]; sameSeq(s.arena.seq(t.seq), seq, out) {
		return true
	}
	// Hash collision: fall back to a scan.
	for _, t := range ts {
		if t.sec == sec && t.node == node && t.folded == folded && sameSeq(s.arena.seq(t.seq), seq, out) {
			return true
		}
	}
	return false
}

func sameSeq(have, prefix []int32, out int32) bool {
	n := len(prefix)
	if out != 0 {
		n++
	}
	if len(have) != n {
		return false
	}
	for i, v := range prefix {
		if have[i] != v {
			return false
		}
	}
	return out == 0 || have[n-1] == out
}

// IsFinal reports whether any thread sits on a final node.
func (s *State) IsFinal() bool {
	return s.IsFinalIn(types.AllKinds)
}

// IsFinalIn reports whether any thread of a section whose kind is in kinds
// sits on a final node.
func (s *State) IsFinalIn(kinds types.SectionKind) bool {
	for _, t := range s.threads {
		sec := s.secs[t.sec]
		if sec.Kind()&kinds != 0 && sec.IsFinal(t.node) {
			return true
		}
	}
	return false
}

// FilterOptions control how final outputs are rendered.
type FilterOptions struct {
	// Escaped lists characters that get a backslash prefix.
	Escaped string
	// Uppercase renders every character of a case-folded analysis upper.
	Uppercase bool
	// FirstUpper upper-cases the first character of a case-folded
	// analysis, or the second one when the first is the '~' mark.
	FirstUpper bool
}

// FilterFinals renders the output of every thread on a final node as
// "/analysis", in thread order, dropping repeated analyses.
func (s *State) FilterFinals(a *alphabet.Alphabet, opts FilterOptions) string {
	return s.filter(a, opts, false)
}

// FilterFinalsSAO is FilterFinals with tags rendered as "&tag;".
func (s *State) FilterFinalsSAO(a *alphabet.Alphabet, opts FilterOptions) string {
	return s.filter(a, opts, true)
}

func (s *State) filter(a *alphabet.Alphabet, opts FilterOptions, sao bool) string {
	var (
		out  strings.Builder
		one  strings.Builder
		seen = make(map[string]struct{})
	)
	for _, t := range s.threads {
		if !s.secs[t.sec].IsFinal(t.node) {
			continue
		}
		one.Reset()
		one.WriteByte('/')
		seq := s.arena.seq(t.seq)
		upperAt := -1
		if t.folded && opts.FirstUpper && len(seq) > 0 {
			upperAt = 0
			if seq[0] == '~' {
				upperAt = 1
			}
		}
		for i, sym := range seq {
			if sym > 0 && strings.ContainsRune(opts.Escaped, sym) {
				one.WriteByte('\\')
			}
			upper := t.folded && (opts.Uppercase || i == upperAt)
			if sao && alphabet.IsTag(sym) {
				writeSAOTag(&one, a.Symbol(sym, false))
				continue
			}
			a.WriteSymbol(&one, sym, upper)
		}
		r := one.String()
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out.WriteString(r)
	}
	return out.String()
}

func writeSAOTag(b *strings.Builder, tag string) {
	if len(tag) >= 2 && tag[0] == '<' && tag[len(tag)-1] == '>' {
		b.WriteByte('&')
		b.WriteString(tag[1 : len(tag)-1])
		b.WriteByte(';')
		return
	}
	b.WriteString(tag)
}
