// Package alphabet implements the symbol table of a compiled dictionary.
//
// Symbols are int32 values: non-negative ids are literal character code
// points, negative ids index a table of tag strings ("<n>", "<sg>", ...)
// and 0 is the epsilon/unknown marker. Transitions refer to symbol pairs
// (input, output) through a dense pair code.
package alphabet

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/joshuapare/lttoolkit/internal/compression"
)

// cacheLimit bounds the precomputed single-character strings.
const cacheLimit = 0x250

var (
	lowerCache [cacheLimit]string
	upperCache [cacheLimit]string
)

func init() {
	for r := range rune(cacheLimit) {
		lowerCache[r] = string(r)
		upperCache[r] = string(unicode.ToUpper(r))
	}
}

// Pair is an (input, output) symbol pair carried by a transition.
type Pair struct {
	In, Out int32
}

// Alphabet maps tag strings to negative symbol ids and pair codes to pairs.
//
// The pair table is immutable after Read and shared by clones; the tag
// table is private to each clone so engines can add or blank symbols
// without affecting other users of the same dictionary.
type Alphabet struct {
	tags  []string         // tags[-id-1] is the rendered form of tag id
	index map[string]int32 // original tag string -> id
	pairs []Pair
}

// New returns an empty alphabet.
func New() *Alphabet {
	return &Alphabet{index: make(map[string]int32)}
}

// Read decodes the alphabet block of a compiled dictionary: the tag list
// followed by the bias-encoded pair list.
func Read(c *compression.Cursor) (*Alphabet, error) {
	a := New()
	n, err := compression.ReadInt(c)
	if err != nil {
		return nil, fmt.Errorf("alphabet tag count: %w", err)
	}
	if n > c.Remaining() {
		return nil, fmt.Errorf("alphabet tag count %d: %w", n, compression.ErrTruncated)
	}
	a.tags = make([]string, 0, n)
	for range n {
		s, err := compression.ReadString(c)
		if err != nil {
			return nil, fmt.Errorf("alphabet tag %d: %w", len(a.tags), err)
		}
		tag := "<" + s + ">"
		if id, ok := a.index[tag]; ok {
			return nil, fmt.Errorf("alphabet tag %d repeats %s (id %d)", len(a.tags), tag, id)
		}
		a.IncludeSymbol(tag)
	}

	bias := int32(len(a.tags))
	n, err = compression.ReadInt(c)
	if err != nil {
		return nil, fmt.Errorf("alphabet pair count: %w", err)
	}
	if n > c.Remaining() {
		return nil, fmt.Errorf("alphabet pair count %d: %w", n, compression.ErrTruncated)
	}
	a.pairs = make([]Pair, n)
	for i := range a.pairs {
		in, err := compression.ReadVarint(c)
		if err != nil {
			return nil, fmt.Errorf("alphabet pair %d: %w", i, err)
		}
		out, err := compression.ReadVarint(c)
		if err != nil {
			return nil, fmt.Errorf("alphabet pair %d: %w", i, err)
		}
		a.pairs[i] = Pair{In: int32(in) - bias, Out: int32(out) - bias}
	}
	return a, nil
}

// Clone returns a copy with a private tag table and a shared pair table.
func (a *Alphabet) Clone() *Alphabet {
	c := &Alphabet{
		tags:  append([]string(nil), a.tags...),
		index: make(map[string]int32, len(a.index)),
		pairs: a.pairs,
	}
	for k, v := range a.index {
		c.index[k] = v
	}
	return c
}

// IncludeSymbol returns the id of tag, adding it if it is not yet known.
func (a *Alphabet) IncludeSymbol(tag string) int32 {
	if id, ok := a.index[tag]; ok {
		return id
	}
	a.tags = append(a.tags, tag)
	id := -int32(len(a.tags))
	a.index[tag] = id
	return id
}

// Truncate forgets every tag after the first n. Ids of the dropped tags
// may be handed out again by IncludeSymbol.
func (a *Alphabet) Truncate(n int) {
	if n < 0 || n >= len(a.tags) {
		return
	}
	for tag, id := range a.index {
		if int(-id) > n {
			delete(a.index, tag)
		}
	}
	a.tags = a.tags[:n]
}

// IncludePair returns the code of the pair, adding it if needed.
func (a *Alphabet) IncludePair(p Pair) int {
	for i, q := range a.pairs {
		if q == p {
			return i
		}
	}
	a.pairs = append(a.pairs, p)
	return len(a.pairs) - 1
}

// Cast returns the id of tag, or 0 when the tag is unknown.
func (a *Alphabet) Cast(tag string) int32 {
	return a.index[tag]
}

// IsTag reports whether id denotes a tag.
func IsTag(id int32) bool { return id < 0 }

// TagCount returns the number of tags.
func (a *Alphabet) TagCount() int { return len(a.tags) }

// PairCount returns the number of symbol pairs.
func (a *Alphabet) PairCount() int { return len(a.pairs) }

// Decode resolves a pair code. ok is false for codes outside the table.
func (a *Alphabet) Decode(code int) (p Pair, ok bool) {
	if code < 0 || code >= len(a.pairs) {
		return Pair{}, false
	}
	return a.pairs[code], true
}

// Symbol renders id. Characters are upper-cased when uppercase is set;
// tags are rendered as stored.
func (a *Alphabet) Symbol(id int32, uppercase bool) string {
	switch {
	case id == 0:
		return ""
	case id < 0:
		if i := int(-id - 1); i < len(a.tags) {
			return a.tags[i]
		}
		return ""
	case id < cacheLimit:
		if uppercase {
			return upperCache[id]
		}
		return lowerCache[id]
	case uppercase:
		return string(unicode.ToUpper(rune(id)))
	default:
		return string(rune(id))
	}
}

// WriteSymbol appends the rendering of id to b.
func (a *Alphabet) WriteSymbol(b *strings.Builder, id int32, uppercase bool) {
	switch {
	case id == 0:
	case id < 0:
		b.WriteString(a.Symbol(id, false))
	case uppercase:
		b.WriteRune(unicode.ToUpper(rune(id)))
	default:
		b.WriteRune(rune(id))
	}
}

// SetSymbol changes how an existing tag renders. It is used to hide
// control symbols from the output by binding them to "".
func (a *Alphabet) SetSymbol(id int32, s string) {
	if i := int(-id - 1); id < 0 && i < len(a.tags) {
		a.tags[i] = s
	}
}

// Write encodes the alphabet block. Tags are written without their angle
// brackets, pairs with the +tagCount bias.
func (a *Alphabet) Write(b []byte) ([]byte, error) {
	var err error
	if b, err = compression.AppendVarint(b, uint32(len(a.tags))); err != nil {
		return b, err
	}
	names := make([]string, len(a.tags))
	for tag, id := range a.index {
		names[-id-1] = tag
	}
	for _, tag := range names {
		if b, err = compression.AppendString(b, strings.TrimSuffix(strings.TrimPrefix(tag, "<"), ">")); err != nil {
			return b, err
		}
	}
	bias := int32(len(a.tags))
	if b, err = compression.AppendVarint(b, uint32(len(a.pairs))); err != nil {
		return b, err
	}
	for _, p := range a.pairs {
		if b, err = compression.AppendVarint(b, uint32(p.In+bias)); err != nil {
			return b, err
		}
		if b, err = compression.AppendVarint(b, uint32(p.Out+bias)); err != nil {
			return b, err
		}
	}
	return b, nil
}
