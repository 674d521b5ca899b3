package transducer

import "errors"

var (
	// ErrCorrupt indicates a section whose structure is inconsistent:
	// node ids out of range, unknown pair codes, or bad index caches.
	ErrCorrupt = errors.New("transducer: corrupt section")
	// ErrNodeRange indicates a node id outside the section.
	ErrNodeRange = errors.New("transducer: node id out of range")
)
