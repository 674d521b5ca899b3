package state

import "math"

// Symbols at or below these values never label a transition. Callers use
// them to mark positions in their symbol streams.
const (
	// EOF marks the end of the input.
	EOF int32 = math.MinInt32
	// WordStart marks the '^' opening a pre-tokenized word.
	WordStart int32 = math.MinInt32 + 1

	// Sentinel is the smallest symbol that may label a transition.
	Sentinel int32 = math.MinInt32 + 16
)
