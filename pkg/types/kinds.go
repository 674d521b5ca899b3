package types

import (
	"fmt"
	"strings"
)

// SectionKind classifies a compiled section by its name suffix. The kind
// controls how the analyser treats blanks around a match.
type SectionKind uint8

const (
	KindStandard      SectionKind = 1 << iota // "@standard": ordinary entries
	KindInconditional                         // "@inconditional": match ends the token immediately
	KindPostblank                             // "@postblank": a blank is emitted after the match
	KindPreblank                              // "@preblank": a blank is emitted before the match

	// AllKinds is the union of every section kind.
	AllKinds = KindStandard | KindInconditional | KindPostblank | KindPreblank
)

var kindSuffixes = []struct {
	suffix string
	kind   SectionKind
}{
	{"@inconditional", KindInconditional},
	{"@standard", KindStandard},
	{"@postblank", KindPostblank},
	{"@preblank", KindPreblank},
}

// ClassifySection maps a section name such as "main@standard" to its kind.
func ClassifySection(name string) (SectionKind, error) {
	for _, ks := range kindSuffixes {
		if strings.HasSuffix(name, ks.suffix) {
			return ks.kind, nil
		}
	}
	return 0, &Error{
		Kind: ErrKindUnsupportedSection,
		Msg:  fmt.Sprintf("unsupported section type %q", name),
	}
}

func (k SectionKind) String() string {
	for _, ks := range kindSuffixes {
		if k == ks.kind {
			return ks.suffix[1:]
		}
	}
	return fmt.Sprintf("SectionKind(%d)", uint8(k))
}

// Mode selects the processing algorithm of a Processor.
type Mode int

const (
	ModeAnalysis          Mode = iota // surface -> lexical, longest match
	ModeDecomposition                 // analysis with compound decomposition of unknown words
	ModeGenerationUnknown             // lexical -> surface, untranslatable words marked with '#'
	ModeGenerationClean               // lexical -> surface, all marks removed
	ModeGenerationAll                 // lexical -> surface, every mark kept
	ModeGenerationTagged              // lexical -> surface, output as ^surface/lexical$
	ModePostgeneration                // '~'-triggered orthographic rewrites
	ModeTransliteration               // character/word substitution
	ModeSAO                           // analysis with XML-flavoured output
	ModeBilingual                     // source lexical -> target lexical
)

var modeNames = map[Mode]string{
	ModeAnalysis:          "analysis",
	ModeDecomposition:     "decomposition",
	ModeGenerationUnknown: "generation",
	ModeGenerationClean:   "generation-clean",
	ModeGenerationAll:     "generation-all",
	ModeGenerationTagged:  "generation-tagged",
	ModePostgeneration:    "postgeneration",
	ModeTransliteration:   "transliteration",
	ModeSAO:               "sao",
	ModeBilingual:         "bilingual",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// IsGeneration reports whether m is one of the generation sub-modes.
func (m Mode) IsGeneration() bool {
	return m >= ModeGenerationUnknown && m <= ModeGenerationTagged
}
