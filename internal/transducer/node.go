package transducer

import (
	"fmt"
	"slices"

	"github.com/joshuapare/lttoolkit/internal/alphabet"
	"github.com/joshuapare/lttoolkit/internal/compression"
)

// Transition is one outgoing edge of a node.
type Transition struct {
	In   int32
	Out  int32
	Dest int32
}

// Node is a decoded automaton node. Its transitions are sorted by input
// symbol; transitions sharing an input symbol keep their file order.
// Nodes are immutable once decoded.
type Node struct {
	trans []Transition
}

// Len returns the number of outgoing transitions.
func (n *Node) Len() int { return len(n.trans) }

// All returns every outgoing transition. The slice must not be modified.
func (n *Node) All() []Transition { return n.trans }

// Match returns the transitions consuming sym.
func (n *Node) Match(sym int32) []Transition {
	lo, _ := slices.BinarySearchFunc(n.trans, sym, func(t Transition, s int32) int {
		return cmpInt32(t.In, s)
	})
	hi := lo
	for hi < len(n.trans) && n.trans[hi].In == sym {
		hi++
	}
	return n.trans[lo:hi]
}

// Epsilons returns the transitions consuming nothing.
func (n *Node) Epsilons() []Transition { return n.Match(0) }

func cmpInt32(a, b int32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// decodeNode reads the node record at the cursor position. The pair code
// accumulates across the node's transitions; destinations are stored
// relative to id and wrap at nodeCount.
func decodeNode(c *compression.Cursor, id int32, nodeCount int, a *alphabet.Alphabet) (*Node, error) {
	n, err := compression.ReadInt(c)
	if err != nil {
		return nil, fmt.Errorf("node %d transition count: %w", id, err)
	}
	if n > c.Remaining() {
		return nil, fmt.Errorf("node %d transition count %d: %w", id, n, compression.ErrTruncated)
	}
	node := &Node{trans: make([]Transition, 0, n)}
	tagbase := 0
	for i := range n {
		code, err := compression.ReadInt(c)
		if err != nil {
			return nil, fmt.Errorf("node %d transition %d: %w", id, i, err)
		}
		delta, err := compression.ReadInt(c)
		if err != nil {
			return nil, fmt.Errorf("node %d transition %d: %w", id, i, err)
		}
		tagbase += code
		p, ok := a.Decode(tagbase)
		if !ok {
			return nil, fmt.Errorf("node %d: pair code %d of %d: %w", id, tagbase, a.PairCount(), ErrCorrupt)
		}
		dest := (int(id) + delta) % nodeCount
		node.trans = append(node.trans, Transition{In: p.In, Out: p.Out, Dest: int32(dest)})
	}
	slices.SortStableFunc(node.trans, func(x, y Transition) int { return cmpInt32(x.In, y.In) })
	return node, nil
}
