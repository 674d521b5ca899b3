package ltproc

import (
	"io"
	"log/slog"
	"strings"

	"github.com/joshuapare/lttoolkit/internal/fst"
	"github.com/joshuapare/lttoolkit/pkg/types"
)

// Mode selects what a Processor does (re-exported for convenience).
type Mode = types.Mode

// Processing modes (re-exported for convenience).
const (
	ModeAnalysis          = types.ModeAnalysis
	ModeDecomposition     = types.ModeDecomposition
	ModeGenerationUnknown = types.ModeGenerationUnknown
	ModeGenerationClean   = types.ModeGenerationClean
	ModeGenerationAll     = types.ModeGenerationAll
	ModeGenerationTagged  = types.ModeGenerationTagged
	ModePostgeneration    = types.ModePostgeneration
	ModeTransliteration   = types.ModeTransliteration
	ModeSAO               = types.ModeSAO
	ModeBilingual         = types.ModeBilingual
)

// Compound decomposition defaults.
const (
	DefaultCompoundMaxThreads  = fst.DefaultCompoundMaxThreads
	DefaultCompoundMaxElements = fst.DefaultCompoundMaxElements
)

// Options controls a Processor.
type Options struct {
	Mode Mode

	// CaseSensitive disables matching uppercase input against lowercase
	// dictionary entries.
	CaseSensitive bool

	// DictionaryCase prints analyses as the dictionary spells them
	// instead of following the case of the input.
	DictionaryCase bool

	// FlagMatching discards paths whose flag diacritics conflict.
	FlagMatching bool

	// ShowControlSymbols keeps compound markers and flag diacritics in
	// the output.
	ShowControlSymbols bool

	// NullFlush ends a segment at every NUL: the output so far is
	// written, followed by a NUL, and flushed.
	NullFlush bool

	// SurfaceForms makes bilingual mode read "^surface/lexical$" units.
	SurfaceForms bool

	// CompoundMaxThreads bounds the paths followed while decomposing one
	// word. Zero means DefaultCompoundMaxThreads.
	CompoundMaxThreads int

	// CompoundMaxElements bounds the parts of a compound. Zero means
	// DefaultCompoundMaxElements.
	CompoundMaxElements int

	// Logger receives processing diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Processor runs one mode over text. It is not safe for concurrent use.
type Processor struct {
	p    *fst.Processor
	dict *Dictionary
}

// NewProcessor prepares a processor over d. It fails with
// types.ErrInvalidDictionary when d cannot be used for tokenizing.
func NewProcessor(d *Dictionary, opts Options) (*Processor, error) {
	if d.Closed() {
		return nil, types.ErrClosed
	}
	p, err := fst.New(d.d, fst.Options{
		Mode:                opts.Mode,
		CaseSensitive:       opts.CaseSensitive,
		DictionaryCase:      opts.DictionaryCase,
		FlagMatching:        opts.FlagMatching,
		ShowControlSymbols:  opts.ShowControlSymbols,
		NullFlush:           opts.NullFlush,
		SurfaceForms:        opts.SurfaceForms,
		CompoundMaxThreads:  opts.CompoundMaxThreads,
		CompoundMaxElements: opts.CompoundMaxElements,
		Logger:              opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &Processor{p: p, dict: d}, nil
}

// Mode returns the processing mode.
func (p *Processor) Mode() Mode { return p.p.Mode() }

// Process reads r to the end and writes the result to w.
func (p *Processor) Process(r io.Reader, w io.Writer) error {
	if p.dict.Closed() {
		return types.ErrClosed
	}
	return p.p.Process(r, w)
}

// ProcessString processes s and returns the output.
func (p *Processor) ProcessString(s string) (string, error) {
	var b strings.Builder
	err := p.Process(strings.NewReader(s), &b)
	return b.String(), err
}
