package fst

import (
	"unicode"
	"unicode/utf8"

	"github.com/joshuapare/lttoolkit/internal/state"
)

// postgeneration copies text through until a '~' mark, then rewrites the
// longest dictionary match starting at the mark. The last symbol of a
// rule's output stands for the lookahead character, which is read again
// from the input instead of being printed.
func (p *Processor) postgeneration() error {
	var (
		skip = true
		last int
		lf   string
		sf   []int32
	)
	cur := p.cur
	cur.CopyFrom(p.initial)
	for {
		val, err := p.readPostgeneration()
		if err != nil {
			return err
		}
		if val == '~' {
			skip = false
		}
		if skip {
			if val == state.EOF {
				p.flushBlanks()
				return nil
			}
			p.printChar(val)
			p.win.compact()
			continue
		}

		if cur.IsFinal() {
			lf = p.postgenForm(cur, sf)
			last = p.win.mark()
		}
		p.step(cur, val)
		if cur.Size() != 0 {
			sf = append(sf, val)
			continue
		}

		switch body := []rune(lf); {
		case lf == "":
			if len(sf) == 0 {
				break
			}
			mark := len(sf)
			for i := 1; i < len(sf); i++ {
				if sf[i] == '~' {
					mark = i
					break
				}
			}
			p.writeSymbols(sf[1:mark], "")
			p.win.back(len(sf) - mark + 1)
		case len(body) < 3 || len(sf) < 2:
			for _, r := range body[1:] {
				p.out.WriteRune(r)
			}
			p.win.rewind(last)
			p.win.back(1)
		default:
			n := len(body) - 1
			for _, r := range body[1 : n-1] {
				p.out.WriteRune(r)
			}
			p.printChar(body[n-1])
			p.win.rewind(last)
			p.win.back(2)
		}

		cur.CopyFrom(p.initial)
		lf, sf, skip = "", sf[:0], true
		p.win.compact()
	}
}

// postgenForm renders the first analysis of s and gives the word it ends
// with the case of the word that sf ends with.
func (p *Processor) postgenForm(s *state.State, sf []int32) string {
	o := p.caseOptions(sf, 1)
	o.Escaped = ""
	lf := "/" + firstAnalysis(s.FilterFinals(p.alpha, o))

	i := len(sf)
	for i > 0 && p.isAlphabetic(sf[i-1]) {
		i--
	}
	tail := sf[i:]
	if len(tail) == 0 || p.opts.DictionaryCase {
		return lf
	}
	j := len(lf)
	for j > 0 {
		r, size := utf8.DecodeLastRuneInString(lf[:j])
		if !p.isAlphabetic(r) {
			break
		}
		j -= size
	}
	word := lf[j:]
	if word == "" {
		return lf
	}
	if len(tail) > 1 && isUpper(tail[1]) {
		word = p.upper.String(word)
	} else {
		word = p.lower.String(word)
	}
	if isUpper(tail[0]) {
		r, size := utf8.DecodeRuneInString(word)
		word = string(unicode.ToUpper(r)) + word[size:]
	}
	return lf[:j] + word
}

// transliteration substitutes the longest dictionary match at every
// position. Whitespace and punctuation end a match; characters no rule
// covers are copied through.
func (p *Processor) transliteration() error {
	var (
		last int
		lf   string
		sf   []int32
	)
	cur := p.cur
	cur.CopyFrom(p.initial)
	for {
		val, err := p.readPostgeneration()
		if err != nil {
			return err
		}
		boundary := val == state.EOF || isSpace(val) || (val > 0 && unicode.IsPunct(val))
		if len(sf) > 0 && cur.IsFinal() {
			lf = cur.FilterFinals(p.alpha, p.caseOptions(sf, 0))
			last = p.win.mark()
		}
		if !boundary {
			p.step(cur, val)
			if cur.Size() != 0 {
				sf = append(sf, val)
				continue
			}
		}

		switch {
		case lf != "":
			p.out.WriteString(firstAnalysis(lf))
			p.win.rewind(last)
			p.win.back(1)
		case len(sf) > 0:
			p.printChar(sf[0])
			p.win.back(len(sf))
		case val == state.EOF:
			p.flushBlanks()
			return nil
		default:
			p.printChar(val)
		}

		cur.CopyFrom(p.initial)
		lf, sf = "", sf[:0]
		p.win.compact()
	}
}
