// Package fst drives the dictionary automata over text streams. One
// Processor implements every processing mode: analysis and SAO share a
// longest-match tokenizer, generation and bilingual transfer share the
// lexical-unit reader, and postgeneration and transliteration share the
// substitution reader.
package fst

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/joshuapare/lttoolkit/internal/alphabet"
	"github.com/joshuapare/lttoolkit/internal/state"
	"github.com/joshuapare/lttoolkit/internal/transducer"
	"github.com/joshuapare/lttoolkit/pkg/types"
)

const (
	// DefaultCompoundMaxThreads is the live-thread ceiling of compound
	// analysis. Words that exceed it get no compound analysis.
	DefaultCompoundMaxThreads = 500
	// DefaultCompoundMaxElements bounds the separators of a compound.
	DefaultCompoundMaxElements = 4
)

const (
	escapedChars    = "[]{}^$/\\@<>"
	saoEscapedChars = "\\<>"

	compoundSeparator = '+'
	compoundOnlyLeft  = "<:co:only-L>"
	compoundRight     = "<:co:R>"
)

// Dictionary is the loaded data a Processor runs on.
type Dictionary interface {
	Alphabet() *alphabet.Alphabet
	Sections() []*transducer.Section
	IsAlphabetic(r rune) bool
	Err() error
}

// Options configure a Processor.
type Options struct {
	Mode types.Mode

	// CaseSensitive disables case-folded matching.
	CaseSensitive bool
	// DictionaryCase prints analyses in dictionary case.
	DictionaryCase bool
	// FlagMatching prunes paths with conflicting flag diacritics.
	FlagMatching bool
	// ShowControlSymbols keeps compound and flag tags in the output.
	ShowControlSymbols bool
	// NullFlush treats NUL as the end of a segment: the segment is
	// finished, a NUL is written and the output is flushed.
	NullFlush bool
	// SurfaceForms makes bilingual mode read "^surface/lexical$" units.
	SurfaceForms bool

	CompoundMaxThreads  int
	CompoundMaxElements int

	Logger *slog.Logger
}

// Processor runs one mode over input streams. It is not safe for
// concurrent use; create one Processor per goroutine over a shared
// Dictionary.
type Processor struct {
	opts    Options
	dict    Dictionary
	alpha   *alphabet.Alphabet
	log     *slog.Logger
	escaped string

	// Tags past dictTags were read from input and live for one segment.
	dictTags int

	arena   *state.Arena
	initial *state.State
	cur     *state.State
	scratch *state.State
	flags   *state.FlagTable
	onlyL   int32
	right   int32
	upper   cases.Caser
	lower   cases.Caser

	// per call
	in        *input
	out       *bufio.Writer
	win       window
	blanks    []string
	outOfWord bool
}

// New builds a processor over d and checks that the dictionary can be
// used for tokenizing.
func New(d Dictionary, opts Options) (*Processor, error) {
	if opts.CompoundMaxThreads <= 0 {
		opts.CompoundMaxThreads = DefaultCompoundMaxThreads
	}
	if opts.CompoundMaxElements <= 0 {
		opts.CompoundMaxElements = DefaultCompoundMaxElements
	}
	p := &Processor{
		opts:    opts,
		dict:    d,
		alpha:   d.Alphabet().Clone(),
		log:     opts.Logger,
		escaped: escapedChars,
		arena:   state.NewArena(),
		upper:   cases.Upper(language.Und),
		lower:   cases.Lower(language.Und),
	}
	if p.log == nil {
		p.log = slog.New(slog.DiscardHandler)
	}
	if opts.Mode == types.ModeSAO {
		p.escaped = saoEscapedChars
	}

	p.onlyL = p.alpha.Cast(compoundOnlyLeft)
	p.right = p.alpha.Cast(compoundRight)
	if opts.FlagMatching {
		p.flags = state.NewFlagTable(p.alpha)
	}
	if !opts.ShowControlSymbols {
		p.hideControlSymbols()
	}
	p.dictTags = p.alpha.TagCount()

	secs := d.Sections()
	p.initial = state.New(p.arena, secs)
	p.initial.Init()
	p.cur = state.New(p.arena, secs)
	p.scratch = state.New(p.arena, secs)

	if err := p.Valid(); err != nil {
		return nil, err
	}
	if err := d.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Processor) hideControlSymbols() {
	for _, sym := range []int32{p.onlyL, p.right} {
		if sym != 0 {
			p.alpha.SetSymbol(sym, "")
		}
	}
	if p.flags == nil {
		return
	}
	for id := int32(-1); int(-id) <= p.alpha.TagCount(); id-- {
		if p.flags.IsFlag(id) {
			p.alpha.SetSymbol(id, "")
		}
	}
}

// Valid reports an InvalidDictionarySemantics error when the initial
// state is final (an entry with an empty left side) or can consume a
// space (an entry beginning with whitespace).
func (p *Processor) Valid() error {
	if p.initial.IsFinal() {
		return &types.Error{Kind: types.ErrKindInvalidDictionary, Msg: "invalid dictionary: the left side of an entry is empty"}
	}
	p.scratch.CopyFrom(p.initial)
	p.scratch.Step(' ')
	n := p.scratch.Size()
	p.scratch.Reset()
	if n != 0 {
		return &types.Error{Kind: types.ErrKindInvalidDictionary, Msg: "invalid dictionary: an entry begins with whitespace"}
	}
	return nil
}

// Mode returns the processing mode.
func (p *Processor) Mode() types.Mode { return p.opts.Mode }

// Process reads r to the end, writing the result to w. A malformed input
// stream aborts the call; the processor stays usable.
func (p *Processor) Process(r io.Reader, w io.Writer) error {
	p.in = newInput(r, p.opts.NullFlush)
	p.out = bufio.NewWriter(w)
	defer func() {
		p.in, p.out = nil, nil
		p.cur.Reset()
		p.scratch.Reset()
		p.alpha.Truncate(p.dictTags)
	}()
	for {
		p.resetSegment()
		err := p.run()
		if err == nil && p.in.err != nil {
			err = &types.Error{Kind: types.ErrKindIO, Msg: "read input", Err: p.in.err}
		}
		if err == nil {
			err = p.dict.Err()
		}
		if err != nil {
			_ = p.out.Flush()
			return err
		}
		if !p.in.nul {
			break
		}
		p.in.nul = false
		p.out.WriteByte(0)
		if err := p.out.Flush(); err != nil {
			return &types.Error{Kind: types.ErrKindIO, Msg: "write output", Err: err}
		}
	}
	if err := p.out.Flush(); err != nil {
		return &types.Error{Kind: types.ErrKindIO, Msg: "write output", Err: err}
	}
	return nil
}

func (p *Processor) resetSegment() {
	p.win.reset()
	p.blanks = p.blanks[:0]
	p.outOfWord = false
	p.cur.Reset()
	p.scratch.Reset()
	p.alpha.Truncate(p.dictTags)
}

func (p *Processor) run() error {
	switch p.opts.Mode {
	case types.ModeAnalysis, types.ModeDecomposition:
		return p.analysis(analysisShaper{})
	case types.ModeSAO:
		return p.analysis(saoShaper{})
	case types.ModeGenerationUnknown, types.ModeGenerationClean, types.ModeGenerationAll, types.ModeGenerationTagged:
		return p.generation()
	case types.ModeBilingual:
		return p.bilingual()
	case types.ModePostgeneration:
		return p.postgeneration()
	case types.ModeTransliteration:
		return p.transliteration()
	}
	return fmt.Errorf("fst: unsupported mode %v", p.opts.Mode)
}

// step advances s over sym, folding uppercase characters unless the
// processor is case sensitive.
func (p *Processor) step(s *state.State, sym int32) {
	if sym > 0 && !p.opts.CaseSensitive && unicode.IsUpper(sym) {
		s.StepFold(sym, unicode.ToLower(sym))
	} else {
		s.Step(sym)
	}
	if p.flags != nil {
		s.PruneConflictingFlags(p.flags)
	}
}

func (p *Processor) isAlphabetic(sym int32) bool {
	if sym <= 0 {
		return false
	}
	return unicode.IsLetter(sym) || unicode.IsDigit(sym) || p.dict.IsAlphabetic(sym)
}

func isUpper(sym int32) bool { return sym > 0 && unicode.IsUpper(sym) }

// caseOptions derives output casing from a surface form starting at
// offset: a capital first letter, and a capital second letter too for an
// all-uppercase word.
func (p *Processor) caseOptions(sf []int32, offset int) state.FilterOptions {
	o := state.FilterOptions{Escaped: p.escaped}
	if p.opts.DictionaryCase || len(sf) <= offset {
		return o
	}
	o.FirstUpper = isUpper(sf[offset])
	o.Uppercase = o.FirstUpper && len(sf) > offset+1 && isUpper(sf[offset+1])
	return o
}
