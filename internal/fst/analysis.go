package fst

import (
	"fmt"

	"github.com/joshuapare/lttoolkit/internal/alphabet"
	"github.com/joshuapare/lttoolkit/internal/state"
	"github.com/joshuapare/lttoolkit/pkg/types"
)

// shaper adapts the tokenizer to an input dialect and output format.
type shaper interface {
	read(p *Processor) (int32, error)
	filter(s *state.State, a *alphabet.Alphabet, o state.FilterOptions) string
	word(p *Processor, sf []int32, lf string)
	unknown(p *Processor, sf []int32)
	compounds() bool
}

// analysisShaper writes "^surface/analysis1/analysis2$" units.
type analysisShaper struct{}

func (analysisShaper) read(p *Processor) (int32, error) { return p.readAnalysis() }

func (analysisShaper) filter(s *state.State, a *alphabet.Alphabet, o state.FilterOptions) string {
	return s.FilterFinals(a, o)
}

func (analysisShaper) word(p *Processor, sf []int32, lf string) {
	p.out.WriteByte('^')
	p.writeEscaped(sf)
	p.out.WriteString(lf)
	p.out.WriteByte('$')
}

func (analysisShaper) unknown(p *Processor, sf []int32) {
	p.out.WriteByte('^')
	p.writeEscaped(sf)
	p.out.WriteString("/*")
	p.writeEscaped(sf)
	p.out.WriteByte('$')
}

func (analysisShaper) compounds() bool { return true }

// saoShaper writes the first analysis of each word with tags as
// entities, and unknown words as <d>word</d>.
type saoShaper struct{}

func (saoShaper) read(p *Processor) (int32, error) { return p.readSAO() }

func (saoShaper) filter(s *state.State, a *alphabet.Alphabet, o state.FilterOptions) string {
	return s.FilterFinalsSAO(a, o)
}

func (saoShaper) word(p *Processor, _ []int32, lf string) {
	p.out.WriteString(firstAnalysis(lf))
}

func (saoShaper) unknown(p *Processor, sf []int32) {
	p.out.WriteString("<d>")
	p.writeEscaped(sf)
	p.out.WriteString("</d>")
}

func (saoShaper) compounds() bool { return false }

// match records which kind of section accepted the longest match so far.
type match uint8

const (
	matchNone match = iota
	matchStandard
	matchInconditional
	matchPostblank
	matchPreblank
)

// analysis tokenizes the input by longest match. A match from a standard
// section only counts when it is followed by a non-alphabetic symbol;
// inconditional, postblank and preblank matches count anywhere and take
// priority in that order.
func (p *Processor) analysis(sh shaper) error {
	var (
		kind match
		last int
		lf   string
		sf   []int32
	)
	cur := p.cur
	cur.CopyFrom(p.initial)
	for {
		val, err := sh.read(p)
		if err != nil {
			return err
		}

		if cur.IsFinal() {
			recorded := true
			switch {
			case cur.IsFinalIn(types.KindInconditional):
				kind = matchInconditional
			case cur.IsFinalIn(types.KindPostblank):
				kind = matchPostblank
			case cur.IsFinalIn(types.KindPreblank):
				kind = matchPreblank
			case !p.isAlphabetic(val):
				kind = matchStandard
			default:
				recorded = false
			}
			if recorded {
				if p.decomposing() {
					cur.PruneForbiddenSymbol(p.onlyL)
				}
				lf = sh.filter(cur, p.alpha, p.caseOptions(sf, 0))
				last = p.win.mark()
			}
		}

		p.step(cur, val)
		if cur.Size() != 0 {
			sf = append(sf, val)
			continue
		}

		matched := len(sf) - p.win.since(last)
		switch {
		case len(sf) == 0 && !p.isAlphabetic(val):
			switch val {
			case state.EOF:
				p.flushBlanks()
				return nil
			case state.WordStart:
				p.analyzeWord(sh)
			default:
				p.printChar(val)
			}
		case kind == matchPostblank && lf != "":
			sh.word(p, sf[:matched], lf)
			p.out.WriteByte(' ')
			p.win.rewind(last)
			p.win.back(1)
		case kind == matchPreblank && lf != "":
			p.out.WriteByte(' ')
			sh.word(p, sf[:matched], lf)
			p.win.rewind(last)
			p.win.back(1)
		case kind == matchInconditional && lf != "":
			sh.word(p, sf[:matched], lf)
			p.win.rewind(last)
			p.win.back(1)
		case p.isAlphabetic(val) && (lf == "" || matched > lastBlank(p, sf)):
			for p.isAlphabetic(val) {
				sf = append(sf, val)
				if val, err = sh.read(p); err != nil {
					return err
				}
			}
			p.unknownRun(sh, sf)
		case lf == "":
			p.unknownRun(sh, sf)
		default:
			sh.word(p, sf[:matched], lf)
			p.win.rewind(last)
			p.win.back(1)
		}

		cur.CopyFrom(p.initial)
		p.win.compact()
		kind, last, lf, sf = matchNone, 0, "", sf[:0]
	}
}

func (p *Processor) decomposing() bool {
	return p.opts.Mode == types.ModeDecomposition && p.onlyL != 0
}

// unknownRun emits the alphabetic prefix of sf as an unknown word and
// backs up to re-read the rest, including the symbol that ended the run.
func (p *Processor) unknownRun(sh shaper, sf []int32) {
	limit := firstNotAlpha(p, sf)
	if limit == 0 {
		p.win.back(len(sf))
		p.printChar(sf[0])
		return
	}
	p.win.back(1 + len(sf) - limit)
	p.unknownWord(sh, sf[:limit])
}

// unknownWord prints a word with no dictionary analysis, trying compound
// analysis first in decomposition mode.
func (p *Processor) unknownWord(sh shaper, word []int32) {
	if sh.compounds() && p.decomposing() {
		lf, err := p.compoundAnalysis(word, p.caseOptions(word, 0))
		if err != nil {
			p.log.Debug("compound analysis abandoned", "word", string(runes(word)), "err", err)
		}
		if lf != "" {
			sh.word(p, word, lf)
			return
		}
	}
	sh.unknown(p, word)
}

// analyzeWord analyzes a pre-tokenized word as a whole.
func (p *Processor) analyzeWord(sh shaper) {
	var word []int32
	for {
		v := p.win.next()
		if v == wordEnd {
			break
		}
		word = append(word, v)
	}
	s := p.scratch
	s.CopyFrom(p.initial)
	for _, sym := range word {
		p.step(s, sym)
	}
	if p.decomposing() {
		s.PruneForbiddenSymbol(p.onlyL)
	}
	lf := ""
	if len(word) > 0 && s.IsFinal() {
		lf = sh.filter(s, p.alpha, p.caseOptions(word, 0))
	}
	s.Reset()
	if lf != "" {
		sh.word(p, word, lf)
		return
	}
	p.unknownWord(sh, word)
}

// compoundAnalysis walks word through the dictionary, re-entering it after
// every complete left-hand compound element. It gives up with
// ErrCombinatorialLimit when the thread count exceeds the ceiling.
func (p *Processor) compoundAnalysis(word []int32, o state.FilterOptions) (string, error) {
	s := p.scratch
	s.CopyFrom(p.initial)
	defer s.Reset()
	for i, sym := range word {
		p.step(s, sym)
		if s.Size() > p.opts.CompoundMaxThreads {
			return "", fmt.Errorf("%d threads after %d of %d symbols: %w",
				s.Size(), i+1, len(word), types.ErrCombinatorialLimit)
		}
		if i < len(word)-1 {
			s.RestartFinals(p.onlyL, p.initial, compoundSeparator)
		}
		if s.Size() == 0 {
			return "", nil
		}
	}
	s.PruneExcessCompounds(p.right, compoundSeparator, p.opts.CompoundMaxElements)
	return s.FilterFinals(p.alpha, o), nil
}

func firstNotAlpha(p *Processor, sf []int32) int {
	for i, sym := range sf {
		if !p.isAlphabetic(sym) {
			return i
		}
	}
	return len(sf)
}

// lastBlank returns the position of the last non-alphabetic symbol of sf,
// or 0.
func lastBlank(p *Processor, sf []int32) int {
	for i := len(sf) - 1; i >= 0; i-- {
		if !p.isAlphabetic(sf[i]) {
			return i
		}
	}
	return 0
}

func runes(syms []int32) []rune {
	out := make([]rune, 0, len(syms))
	for _, s := range syms {
		if s > 0 {
			out = append(out, s)
		}
	}
	return out
}
