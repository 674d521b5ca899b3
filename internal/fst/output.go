package fst

import "strings"

// writeSymbols writes syms, escaping characters listed in escaped. Tags
// are written as they render in the alphabet.
func (p *Processor) writeSymbols(syms []int32, escaped string) {
	for _, sym := range syms {
		switch {
		case sym == blankSym:
			p.printSpace(sym)
		case sym < 0:
			p.out.WriteString(p.alpha.Symbol(sym, false))
		case sym > 0:
			if strings.ContainsRune(escaped, sym) {
				p.out.WriteByte('\\')
			}
			p.out.WriteRune(sym)
		}
	}
}

func (p *Processor) writeEscaped(syms []int32) { p.writeSymbols(syms, p.escaped) }

// printSpace writes a blank: the oldest queued superblank for blankSym,
// the character itself otherwise.
func (p *Processor) printSpace(sym int32) {
	if sym != blankSym {
		p.out.WriteRune(sym)
		return
	}
	if len(p.blanks) == 0 {
		p.out.WriteByte(' ')
		return
	}
	p.out.WriteString(p.blanks[0])
	p.blanks = p.blanks[1:]
}

// printChar writes a symbol that is not part of any word.
func (p *Processor) printChar(sym int32) {
	if isSpace(sym) {
		p.printSpace(sym)
		return
	}
	p.writeEscaped([]int32{sym})
}

func (p *Processor) flushBlanks() {
	for _, b := range p.blanks {
		p.out.WriteString(b)
	}
	p.blanks = p.blanks[:0]
}

// firstAnalysis returns the first "/"-separated analysis of lf without
// its leading slash, honoring backslash escapes.
func firstAnalysis(lf string) string {
	if lf == "" {
		return ""
	}
	for i := 1; i < len(lf); i++ {
		switch lf[i] {
		case '\\':
			i++
		case '/':
			return lf[1:i]
		}
	}
	return lf[1:]
}

// removeTags returns the symbols before the first tag.
func removeTags(sf []int32) []int32 {
	for i, sym := range sf {
		if sym < 0 {
			return sf[:i]
		}
	}
	return sf
}
