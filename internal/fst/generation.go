package fst

import (
	"github.com/joshuapare/lttoolkit/internal/state"
	"github.com/joshuapare/lttoolkit/pkg/types"
)

// generation reads "^lexical$" units and writes their surface forms.
// Text between units is copied through.
func (p *Processor) generation() error {
	p.outOfWord = true
	cur := p.cur
	cur.CopyFrom(p.initial)
	var sf []int32
	for {
		val, err := p.readLexical()
		if err != nil {
			return err
		}
		switch {
		case val == state.EOF:
			if !p.outOfWord {
				return types.Malformed("unterminated ^...$ unit")
			}
			return nil
		case val == '$' && p.outOfWord:
			p.generateWord(cur, sf)
			cur.CopyFrom(p.initial)
			sf = sf[:0]
		case len(sf) == 0 && val == '=':
			p.out.WriteByte('=')
		default:
			if cur.Size() != 0 {
				p.step(cur, val)
			}
			sf = append(sf, val)
		}
	}
}

func (p *Processor) generateWord(cur *state.State, sf []int32) {
	mode := p.opts.Mode
	switch {
	case len(sf) > 0 && (sf[0] == '*' || sf[0] == '%'):
		if mode != types.ModeGenerationClean {
			p.out.WriteRune(sf[0])
		}
		p.writeEscaped(sf[1:])
	case len(sf) > 0 && sf[0] == '@':
		switch mode {
		case types.ModeGenerationAll:
			p.writeSymbols(sf, "")
		case types.ModeGenerationClean:
			p.writeEscaped(removeTags(sf[1:]))
		default:
			p.out.WriteByte('@')
			p.writeEscaped(removeTags(sf[1:]))
		}
	case cur.IsFinal():
		lf := cur.FilterFinals(p.alpha, p.caseOptions(sf, 0))
		if mode == types.ModeGenerationTagged {
			p.out.WriteByte('^')
			p.out.WriteString(lf[1:])
			p.out.WriteByte('/')
			p.writeEscaped(sf)
			p.out.WriteByte('$')
			return
		}
		p.out.WriteString(lf[1:])
	default:
		switch mode {
		case types.ModeGenerationAll:
			p.out.WriteByte('#')
			p.writeEscaped(sf)
		case types.ModeGenerationClean:
			p.writeEscaped(removeTags(sf))
		default:
			if len(sf) > 0 {
				p.out.WriteByte('#')
				p.writeEscaped(removeTags(sf))
			}
		}
	}
}
