package fst

import (
	"strings"

	"github.com/joshuapare/lttoolkit/internal/state"
	"github.com/joshuapare/lttoolkit/pkg/types"
)

// bilingual translates "^lexical$" units through a bilingual dictionary.
// Tags read after the dictionary stopped matching are queued and appended
// to every target alternative.
func (p *Processor) bilingual() error {
	p.outOfWord = true
	cur := p.cur
	cur.CopyFrom(p.initial)

	var (
		sf, queue, surface []int32
		result             string
		seenTags           bool
		seenSurface        bool
	)
	for {
		val, err := p.readLexical()
		if err != nil {
			return err
		}
		if p.opts.SurfaceForms && !seenSurface && !p.outOfWord && val != state.EOF {
			for val != '/' && val != state.EOF && !(val == '$' && p.outOfWord) {
				surface = append(surface, val)
				if val, err = p.readLexical(); err != nil {
					return err
				}
			}
			seenSurface = true
			if val == '/' {
				if val, err = p.readLexical(); err != nil {
					return err
				}
			}
		}
		if val == state.EOF {
			if !p.outOfWord {
				return types.Malformed("unterminated ^...$ unit")
			}
			return nil
		}

		switch {
		case val == '$' && p.outOfWord:
			if !seenTags {
				result = cur.FilterFinals(p.alpha, p.caseOptions(sf, 0))
			}
			switch {
			case len(sf) > 0 && sf[0] == '*':
				p.writeBilingual(sf, "/"+p.escapedString(sf))
			case result != "":
				p.writeBilingual(sf, compose(result, p.escapedString(queue)))
			case p.opts.SurfaceForms:
				p.writeBilingual(surface, "/@"+p.escapedString(surface))
			default:
				p.writeBilingual(sf, "/@"+p.escapedString(sf))
			}
			cur.CopyFrom(p.initial)
			sf, queue, surface = sf[:0], queue[:0], surface[:0]
			result, seenTags, seenSurface = "", false, false
		case len(sf) == 0 && isSpace(val):
		case len(sf) > 0 && sf[0] == '*':
			sf = append(sf, val)
		default:
			sf = append(sf, val)
			if val < 0 {
				seenTags = true
			}
			if cur.Size() != 0 {
				p.step(cur, val)
			}
			if cur.IsFinal() {
				result = cur.FilterFinals(p.alpha, p.caseOptions(sf, 0))
			}
			if cur.Size() == 0 && result != "" {
				if val < 0 {
					queue = append(queue, val)
				} else {
					result = ""
				}
			}
		}
	}
}

func (p *Processor) writeBilingual(sf []int32, lf string) {
	p.out.WriteByte('^')
	p.writeEscaped(sf)
	p.out.WriteString(lf)
	p.out.WriteByte('$')
}

func (p *Processor) escapedString(syms []int32) string {
	var b strings.Builder
	for _, sym := range syms {
		if sym > 0 && strings.ContainsRune(p.escaped, sym) {
			b.WriteByte('\\')
		}
		p.alpha.WriteSymbol(&b, sym, false)
	}
	return b.String()
}

// compose appends queue to every "/"-separated alternative of lf.
func compose(lf, queue string) string {
	if queue == "" {
		return lf
	}
	var b strings.Builder
	b.WriteByte('/')
	for i := 1; i < len(lf); i++ {
		switch lf[i] {
		case '\\':
			b.WriteByte('\\')
			i++
			if i == len(lf) {
				continue
			}
		case '/':
			b.WriteString(queue)
		}
		b.WriteByte(lf[i])
	}
	b.WriteString(queue)
	return b.String()
}
