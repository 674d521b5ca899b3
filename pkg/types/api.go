package types

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindCorrupt            ErrKind = iota // truncated/ill-formed dictionary binary
	ErrKindUnsupportedSection                // section name with an unknown suffix
	ErrKindMalformedInput                    // broken escape/block structure in the input stream
	ErrKindOutOfRange                        // varint value does not fit in 30 bits
	ErrKindInvalidDictionary                 // dictionary loads but cannot be used (see Valid)
	ErrKindCombinatorialLimit                // compound decomposition gave up
	ErrKindState                             // invalid operation for current state (e.g., closed)
	ErrKindIO                                // underlying read/write failure
)

// String returns a short stable name for the kind.
func (k ErrKind) String() string {
	switch k {
	case ErrKindCorrupt:
		return "corrupt dictionary"
	case ErrKindUnsupportedSection:
		return "unsupported section type"
	case ErrKindMalformedInput:
		return "malformed input stream"
	case ErrKindOutOfRange:
		return "out of range"
	case ErrKindInvalidDictionary:
		return "invalid dictionary"
	case ErrKindCombinatorialLimit:
		return "combinatorial limit exceeded"
	case ErrKindState:
		return "invalid state"
	case ErrKindIO:
		return "i/o error"
	default:
		return "unknown error"
	}
}

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a *Error of the same kind. This lets callers
// match any error of a category against the sentinels below with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	if e.Kind == ErrKindUnsupportedSection && t.Kind == ErrKindCorrupt {
		// Unknown section suffixes are a kind of corruption.
		return true
	}
	return e.Kind == t.Kind
}

// Sentinels commonly returned by implementations. Compare with errors.Is; any
// error of the same Kind matches.
var (
	// ErrCorruptDictionary indicates a truncated or ill-formed binary dictionary.
	ErrCorruptDictionary = &Error{Kind: ErrKindCorrupt, Msg: "corrupt dictionary"}
	// ErrUnsupportedSection indicates a section whose name suffix is not recognized.
	ErrUnsupportedSection = &Error{Kind: ErrKindUnsupportedSection, Msg: "unsupported section type"}
	// ErrMalformedInput indicates the input stream violates the text protocol.
	ErrMalformedInput = &Error{Kind: ErrKindMalformedInput, Msg: "malformed input stream"}
	// ErrOutOfRange indicates a value that cannot be varint-encoded.
	ErrOutOfRange = &Error{Kind: ErrKindOutOfRange, Msg: "value out of range"}
	// ErrInvalidDictionary indicates a dictionary that fails the post-load validity check.
	ErrInvalidDictionary = &Error{Kind: ErrKindInvalidDictionary, Msg: "invalid dictionary"}
	// ErrCombinatorialLimit indicates compound decomposition exceeded its thread ceiling.
	ErrCombinatorialLimit = &Error{Kind: ErrKindCombinatorialLimit, Msg: "combinatorial limit exceeded"}
	// ErrClosed indicates use of a dictionary after Close.
	ErrClosed = &Error{Kind: ErrKindState, Msg: "dictionary is closed"}
)

// Corrupt wraps err as a CorruptDictionary error.
func Corrupt(msg string, err error) error {
	return &Error{Kind: ErrKindCorrupt, Msg: msg, Err: err}
}

// Malformed returns a MalformedInputStream error.
func Malformed(msg string) error {
	return &Error{Kind: ErrKindMalformedInput, Msg: msg}
}
