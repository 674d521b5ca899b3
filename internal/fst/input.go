package fst

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/joshuapare/lttoolkit/internal/state"
	"github.com/joshuapare/lttoolkit/pkg/types"
)

// Symbols stored in the window besides characters and tags.
const (
	// blankSym stands for one queued superblank ("[...]" or CDATA).
	blankSym = state.WordStart + 1
	// wordEnd closes a pre-tokenized word opened by state.WordStart.
	wordEnd = state.WordStart + 2
)

// input reads runes from one segment of the stream. With null flushing a
// NUL ends the segment; otherwise NULs are dropped.
type input struct {
	r         *bufio.Reader
	nullFlush bool
	nul       bool // segment ended at a NUL
	eof       bool
	err       error
}

func newInput(r io.Reader, nullFlush bool) *input {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &input{r: br, nullFlush: nullFlush}
}

func (in *input) readRune() (rune, bool) {
	if in.nul || in.eof {
		return 0, false
	}
	for {
		r, _, err := in.r.ReadRune()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				in.err = err
			}
			in.eof = true
			return 0, false
		}
		if r == 0 {
			if in.nullFlush {
				in.nul = true
				return 0, false
			}
			continue
		}
		return r, true
	}
}

// window holds the symbols read for the current token so the tokenizer
// can back up to the end of the longest match and read them again.
type window struct {
	buf []int32
	pos int
}

func (w *window) pending() bool { return w.pos < len(w.buf) }

func (w *window) next() int32 {
	v := w.buf[w.pos]
	w.pos++
	return v
}

func (w *window) add(v int32) {
	w.buf = append(w.buf, v)
	w.pos = len(w.buf)
}

func (w *window) mark() int { return w.pos }

func (w *window) rewind(pos int) { w.pos = pos }

func (w *window) back(n int) { w.pos = max(w.pos-n, 0) }

// since returns the number of symbols read after pos.
func (w *window) since(pos int) int { return w.pos - pos }

// compact drops every symbol before the read position. Marks taken
// before the call become invalid.
func (w *window) compact() {
	n := copy(w.buf, w.buf[w.pos:])
	w.buf = w.buf[:n]
	w.pos = 0
}

func (w *window) reset() {
	w.buf = w.buf[:0]
	w.pos = 0
}

// readBlock reads a delimited block whose opening delimiter has been
// consumed, returning it with both delimiters. Escapes are kept verbatim.
func (p *Processor) readBlock(open, closing rune) (string, error) {
	var b strings.Builder
	b.WriteRune(open)
	for {
		r, ok := p.in.readRune()
		if !ok {
			return "", types.Malformed(fmt.Sprintf("unterminated %c...%c block", open, closing))
		}
		b.WriteRune(r)
		switch r {
		case closing:
			return b.String(), nil
		case '\\':
			r, ok = p.in.readRune()
			if !ok {
				return "", types.Malformed("escape at end of input")
			}
			b.WriteRune(r)
		}
	}
}

// readAnalysis returns the next symbol of surface text. Tags become tag
// symbols, superblanks are queued and stand in as blankSym, and a "^...$"
// word is stored whole between state.WordStart and wordEnd.
func (p *Processor) readAnalysis() (int32, error) {
	if p.win.pending() {
		return p.win.next(), nil
	}
	r, ok := p.in.readRune()
	if !ok {
		p.win.add(state.EOF)
		return state.EOF, nil
	}
	switch r {
	case '<':
		tag, err := p.readBlock('<', '>')
		if err != nil {
			return 0, err
		}
		sym := p.alpha.IncludeSymbol(tag)
		p.win.add(sym)
		return sym, nil
	case '[':
		blank, err := p.readBlock('[', ']')
		if err != nil {
			return 0, err
		}
		p.blanks = append(p.blanks, blank)
		p.win.add(blankSym)
		return blankSym, nil
	case '\\':
		r, ok = p.in.readRune()
		if !ok {
			return 0, types.Malformed("escape at end of input")
		}
		p.win.add(r)
		return r, nil
	case '^':
		return p.readWord()
	}
	if strings.ContainsRune(escapedChars, r) {
		return 0, types.Malformed(fmt.Sprintf("unescaped reserved character %q", r))
	}
	p.win.add(r)
	return r, nil
}

// readWord stores a pre-tokenized word. Only the surface part is kept;
// anything after an unescaped '/' is discarded.
func (p *Processor) readWord() (int32, error) {
	start := p.win.mark()
	p.win.add(state.WordStart)
	surface := true
	for {
		r, ok := p.in.readRune()
		if !ok {
			return 0, types.Malformed("unterminated ^...$ word")
		}
		switch r {
		case '$':
			p.win.add(wordEnd)
			p.win.rewind(start + 1)
			return state.WordStart, nil
		case '\\':
			if r, ok = p.in.readRune(); !ok {
				return 0, types.Malformed("escape at end of input")
			}
			if surface {
				p.win.add(r)
			}
			continue
		case '<':
			tag, err := p.readBlock('<', '>')
			if err != nil {
				return 0, err
			}
			if surface {
				p.win.add(p.alpha.IncludeSymbol(tag))
			}
			continue
		case '/':
			surface = false
			continue
		}
		if strings.ContainsRune(escapedChars, r) {
			return 0, types.Malformed(fmt.Sprintf("unescaped reserved character %q in word", r))
		}
		if surface {
			p.win.add(r)
		}
	}
}

// readSAO reads plain text where only '\', '<' and '>' are special and
// "<![CDATA[...]]>" sections are passed through as blanks.
func (p *Processor) readSAO() (int32, error) {
	if p.win.pending() {
		return p.win.next(), nil
	}
	r, ok := p.in.readRune()
	if !ok {
		p.win.add(state.EOF)
		return state.EOF, nil
	}
	switch r {
	case '<':
		block, err := p.readCDATA()
		if err != nil {
			return 0, err
		}
		p.blanks = append(p.blanks, block)
		p.win.add(blankSym)
		return blankSym, nil
	case '\\':
		r, ok = p.in.readRune()
		if !ok {
			return 0, types.Malformed("escape at end of input")
		}
		if !strings.ContainsRune(saoEscapedChars, r) {
			return 0, types.Malformed(fmt.Sprintf("invalid escape %q", r))
		}
	case '>':
		return 0, types.Malformed("unescaped '>'")
	}
	p.win.add(r)
	return r, nil
}

// readCDATA reads a "<![CDATA[...]]>" section whose '<' has been consumed.
// The body is raw text: '>' and '\' carry no meaning before "]]>".
func (p *Processor) readCDATA() (string, error) {
	const open, closing = "<![CDATA[", "]]>"
	var b strings.Builder
	b.WriteByte('<')
	for b.Len() < len(open) {
		r, ok := p.in.readRune()
		if !ok {
			return "", types.Malformed("unterminated markup")
		}
		b.WriteRune(r)
		if !strings.HasPrefix(open, b.String()) {
			return "", types.Malformed(fmt.Sprintf("unexpected markup %q", b.String()))
		}
	}
	for !strings.HasSuffix(b.String(), closing) {
		r, ok := p.in.readRune()
		if !ok {
			return "", types.Malformed("unterminated CDATA section")
		}
		b.WriteRune(r)
	}
	return b.String(), nil
}

// readPostgeneration reads generated text, where nothing is reserved but
// tags, superblanks and escapes keep their meaning.
func (p *Processor) readPostgeneration() (int32, error) {
	if p.win.pending() {
		return p.win.next(), nil
	}
	r, ok := p.in.readRune()
	if !ok {
		p.win.add(state.EOF)
		return state.EOF, nil
	}
	switch r {
	case '<':
		tag, err := p.readBlock('<', '>')
		if err != nil {
			return 0, err
		}
		sym := p.alpha.IncludeSymbol(tag)
		p.win.add(sym)
		return sym, nil
	case '[':
		blank, err := p.readBlock('[', ']')
		if err != nil {
			return 0, err
		}
		p.blanks = append(p.blanks, blank)
		p.win.add(blankSym)
		return blankSym, nil
	case '\\':
		if r, ok = p.in.readRune(); !ok {
			return 0, types.Malformed("escape at end of input")
		}
	}
	p.win.add(r)
	return r, nil
}

// readLexical reads the next symbol of a "^...$" lexical-unit stream,
// copying everything between units to the output. It returns '$' with
// outOfWord set at the end of a unit and state.EOF at the end of input.
func (p *Processor) readLexical() (int32, error) {
	r, ok := p.in.readRune()
	if !ok {
		return state.EOF, nil
	}
	if p.outOfWord {
		if r != '^' {
			if r == '\\' {
				p.out.WriteRune(r)
				if r, ok = p.in.readRune(); !ok {
					return state.EOF, nil
				}
			}
			p.out.WriteRune(r)
			if !p.skipUntil('^') {
				return state.EOF, nil
			}
		}
		if r, ok = p.in.readRune(); !ok {
			return state.EOF, nil
		}
		p.outOfWord = false
	}
	switch r {
	case '\\':
		if r, ok = p.in.readRune(); !ok {
			return 0, types.Malformed("escape at end of input")
		}
		return r, nil
	case '$':
		p.outOfWord = true
		return '$', nil
	case '<':
		tag, err := p.readBlock('<', '>')
		if err != nil {
			return 0, err
		}
		return p.alpha.IncludeSymbol(tag), nil
	case '[':
		blank, err := p.readBlock('[', ']')
		if err != nil {
			return 0, err
		}
		p.out.WriteString(blank)
		return p.readLexical()
	}
	return r, nil
}

// skipUntil copies input to output up to an unescaped c, which is
// consumed. It reports false at the end of input.
func (p *Processor) skipUntil(c rune) bool {
	for {
		r, ok := p.in.readRune()
		if !ok {
			return false
		}
		switch {
		case r == '\\':
			if r, ok = p.in.readRune(); !ok {
				p.out.WriteRune('\\')
				return false
			}
			p.out.WriteRune('\\')
			p.out.WriteRune(r)
		case r == c:
			return true
		default:
			p.out.WriteRune(r)
		}
	}
}

func isSpace(sym int32) bool {
	return sym == blankSym || (sym > 0 && unicode.IsSpace(sym))
}
