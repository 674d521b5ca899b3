// Package dixbuild compiles small dictionaries into the binary format read
// by internal/reader. It exists for tests: entries are given as (input,
// output) strings where "<tag>" runs denote tag symbols, and the result is
// a prefix-sharing letter transducer per section.
package dixbuild

import (
	"fmt"
	"slices"

	"github.com/joshuapare/lttoolkit/internal/alphabet"
	"github.com/joshuapare/lttoolkit/internal/compression"
)

// Builder accumulates the alphabetic set, the alphabet and the sections of
// one dictionary.
type Builder struct {
	alphabetic []rune
	alpha      *alphabet.Alphabet
	sections   []*Section
}

// New returns an empty builder.
func New() *Builder {
	return &Builder{alpha: alphabet.New()}
}

// Alphabetic adds the runes of s to the alphabetic character set.
func (b *Builder) Alphabetic(s string) *Builder {
	for _, r := range s {
		if !slices.Contains(b.alphabetic, r) {
			b.alphabetic = append(b.alphabetic, r)
		}
	}
	return b
}

// Tag returns the symbol id of tag (written with its angle brackets),
// adding it to the alphabet if needed.
func (b *Builder) Tag(tag string) int32 {
	return b.alpha.IncludeSymbol(tag)
}

// Section starts a new section. name must carry a kind suffix such as
// "@standard" for the dictionary to load.
func (b *Builder) Section(name string) *Section {
	s := &Section{b: b, name: name, nodes: []map[edge]int{{}}, finals: map[int]bool{}}
	b.sections = append(b.sections, s)
	return s
}

type edge struct {
	in, out int32
	dest    int
}

// Section is a section under construction. Node 0 is the initial node.
type Section struct {
	b      *Builder
	name   string
	nodes  []map[edge]int // edge -> insertion order
	finals map[int]bool
}

// NewNode adds an unconnected node and returns its id.
func (s *Section) NewNode() int {
	s.nodes = append(s.nodes, map[edge]int{})
	return len(s.nodes) - 1
}

// Edge adds a transition from -> to consuming in and emitting out. Either
// side may be "" (epsilon), a single character or a "<tag>".
func (s *Section) Edge(from, to int, in, out string) *Section {
	s.edge(from, to, s.b.symbol(in), s.b.symbol(out))
	return s
}

func (s *Section) edge(from, to int, in, out int32) {
	e := edge{in: in, out: out, dest: to}
	if _, ok := s.nodes[from][e]; !ok {
		s.nodes[from][e] = len(s.nodes[from])
	}
}

// Final marks node id as final.
func (s *Section) Final(id int) *Section {
	s.finals[id] = true
	return s
}

// Add inserts an entry mapping in to out. The two symbol strings are
// aligned position by position; the shorter side is padded with epsilon.
// Paths share prefixes with existing entries where the pairs agree.
func (s *Section) Add(in, out string) *Section {
	ins, outs := s.b.symbols(in), s.b.symbols(out)
	n := max(len(ins), len(outs))
	cur := 0
	for i := range n {
		var p, q int32
		if i < len(ins) {
			p = ins[i]
		}
		if i < len(outs) {
			q = outs[i]
		}
		cur = s.follow(cur, p, q)
	}
	s.finals[cur] = true
	return s
}

// AddPairs inserts an entry given as explicit (in, out) symbol pairs,
// written "a:b", "<n>:<n>", ":<pl>" or "a:" for epsilon sides.
func (s *Section) AddPairs(pairs ...string) *Section {
	cur := 0
	for _, p := range pairs {
		in, out, ok := cut(p)
		if !ok {
			panic(fmt.Sprintf("dixbuild: pair %q lacks ':'", p))
		}
		cur = s.follow(cur, s.b.symbol(in), s.b.symbol(out))
	}
	s.finals[cur] = true
	return s
}

func (s *Section) follow(from int, in, out int32) int {
	for e := range s.nodes[from] {
		if e.in == in && e.out == out && e.dest > from {
			return e.dest
		}
	}
	to := s.NewNode()
	s.edge(from, to, in, out)
	return to
}

// cut splits "a:b" at the separating colon. A colon inside a tag such as
// "<:co:R>" is not a separator.
func cut(p string) (string, string, bool) {
	depth := 0
	for i, r := range p {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ':':
			if depth == 0 {
				return p[:i], p[i+1:], true
			}
		}
	}
	return "", "", false
}

func (b *Builder) symbol(s string) int32 {
	syms := b.symbols(s)
	switch len(syms) {
	case 0:
		return 0
	case 1:
		return syms[0]
	}
	panic(fmt.Sprintf("dixbuild: %q is not a single symbol", s))
}

func (b *Builder) symbols(s string) []int32 {
	var out []int32
	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		if rs[i] == '<' {
			if j := slices.Index(rs[i:], '>'); j > 0 {
				out = append(out, b.alpha.IncludeSymbol(string(rs[i:i+j+1])))
				i += j
				continue
			}
		}
		out = append(out, rs[i])
	}
	return out
}

// Bytes encodes the dictionary.
func (b *Builder) Bytes() []byte {
	// Pairs must all be known before the alphabet block is written.
	type rec struct{ code, dest int }
	encoded := make([][][]rec, len(b.sections))
	for si, s := range b.sections {
		encoded[si] = make([][]rec, len(s.nodes))
		for id, edges := range s.nodes {
			ordered := make([]edge, len(edges))
			for e, i := range edges {
				ordered[i] = e
			}
			recs := make([]rec, 0, len(ordered))
			for _, e := range ordered {
				code := b.alpha.IncludePair(alphabet.Pair{In: e.in, Out: e.out})
				recs = append(recs, rec{code: code, dest: e.dest})
			}
			slices.SortStableFunc(recs, func(x, y rec) int { return x.code - y.code })
			encoded[si][id] = recs
		}
	}

	var out []byte
	out = must(compression.AppendVarint(out, uint32(len(b.alphabetic))))
	for _, r := range b.alphabetic {
		out = must(compression.AppendVarint(out, uint32(r)))
	}
	out = must(b.alpha.Write(out))
	out = must(compression.AppendVarint(out, uint32(len(b.sections))))
	for si, s := range b.sections {
		out = must(compression.AppendString(out, s.name))
		out = must(compression.AppendVarint(out, 0))
		finals := make([]int, 0, len(s.finals))
		for id := range s.finals {
			finals = append(finals, id)
		}
		slices.Sort(finals)
		out = must(compression.AppendVarint(out, uint32(len(finals))))
		prev := 0
		for _, f := range finals {
			out = must(compression.AppendVarint(out, uint32(f-prev)))
			prev = f
		}
		count := len(s.nodes)
		out = must(compression.AppendVarint(out, uint32(count)))
		for id, recs := range encoded[si] {
			out = must(compression.AppendVarint(out, uint32(len(recs))))
			base := 0
			for _, r := range recs {
				out = must(compression.AppendVarint(out, uint32(r.code-base)))
				base = r.code
				out = must(compression.AppendVarint(out, uint32((r.dest-id+count)%count)))
			}
		}
	}
	return out
}

func must(b []byte, err error) []byte {
	if err != nil {
		panic(fmt.Sprintf("dixbuild: %v", err))
	}
	return b
}
