// Package transducer holds the compiled automaton of one dictionary
// section. Nodes are decoded from the (usually memory-mapped) dictionary
// bytes on first access and cached; an offset index makes every node
// addressable without decoding its predecessors.
package transducer

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/joshuapare/lttoolkit/internal/alphabet"
	"github.com/joshuapare/lttoolkit/internal/buf"
	"github.com/joshuapare/lttoolkit/internal/compression"
	"github.com/joshuapare/lttoolkit/pkg/types"
)

// IndexSource records where a section's offset index came from.
type IndexSource uint8

const (
	// IndexScanned means the index was built by scanning the node records.
	IndexScanned IndexSource = iota
	// IndexCached means the index was mapped from a cache file.
	IndexCached
)

func (s IndexSource) String() string {
	if s == IndexCached {
		return "cached"
	}
	return "scanned"
}

// Options control how a section is read.
type Options struct {
	// Eager decodes every node while reading instead of on first access.
	Eager bool
	// CacheDir, when non-empty together with Key, is where offset indexes
	// are looked up and written.
	CacheDir string
	// Key identifies the dictionary file for cache naming. Empty disables
	// the cache (e.g. dictionaries opened from memory).
	Key string
	// Logger receives cache diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Section is one compiled, classified automaton.
type Section struct {
	name      string
	kind      types.SectionKind
	initial   int32
	finals    []uint64
	nodeCount int

	data   []byte // node records
	index  []byte // nodeCount+1 little-endian int32 offsets into data
	source IndexSource
	alpha  *alphabet.Alphabet

	nodes []atomic.Pointer[Node]

	err atomic.Pointer[error]

	unmapIndex func() error
}

// Read decodes a section body (everything after its name) at the cursor.
// On return the cursor is positioned after the section.
func Read(c *compression.Cursor, name string, kind types.SectionKind, a *alphabet.Alphabet, opts Options) (*Section, error) {
	initial, err := compression.ReadInt(c)
	if err != nil {
		return nil, fmt.Errorf("section %q initial: %w", name, err)
	}
	nfinals, err := compression.ReadInt(c)
	if err != nil {
		return nil, fmt.Errorf("section %q final count: %w", name, err)
	}
	if nfinals > c.Remaining() {
		return nil, fmt.Errorf("section %q final count %d: %w", name, nfinals, compression.ErrTruncated)
	}
	finals := make([]int, nfinals)
	base := 0
	for i := range finals {
		d, err := compression.ReadInt(c)
		if err != nil {
			return nil, fmt.Errorf("section %q final %d: %w", name, i, err)
		}
		base += d
		finals[i] = base
	}
	nodeCount, err := compression.ReadInt(c)
	if err != nil {
		return nil, fmt.Errorf("section %q node count: %w", name, err)
	}
	if nodeCount == 0 || nodeCount > c.Remaining() {
		return nil, fmt.Errorf("section %q node count %d: %w", name, nodeCount, ErrCorrupt)
	}
	if initial >= nodeCount {
		return nil, fmt.Errorf("section %q initial %d of %d: %w", name, initial, nodeCount, ErrCorrupt)
	}

	s := &Section{
		name:      name,
		kind:      kind,
		initial:   int32(initial),
		finals:    make([]uint64, (nodeCount+63)/64),
		nodeCount: nodeCount,
		alpha:     a,
		nodes:     make([]atomic.Pointer[Node], nodeCount),
	}
	for _, f := range finals {
		if f >= nodeCount {
			return nil, fmt.Errorf("section %q final %d of %d: %w", name, f, nodeCount, ErrCorrupt)
		}
		s.finals[f/64] |= 1 << (f % 64)
	}

	start := c.Offset()
	cache := newIndexCache(opts, name, start, nodeCount)
	if idx, unmap, ok := cache.load(c.Remaining()); ok {
		s.index, s.unmapIndex, s.source = idx, unmap, IndexCached
	} else {
		if s.index, err = scanIndex(c, nodeCount); err != nil {
			return nil, fmt.Errorf("section %q: %w", name, err)
		}
		s.source = IndexScanned
		cache.store(s.index)
	}
	end := int(buf.I32LEAt(s.index, nodeCount))
	if err := c.Seek(start); err != nil {
		s.Close()
		return nil, err
	}
	data, err := c.Take(end)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("section %q nodes: %w", name, err)
	}
	s.data = data

	if opts.Eager {
		for id := range nodeCount {
			n, err := s.decode(int32(id))
			if err != nil {
				s.Close()
				return nil, fmt.Errorf("section %q: %w", name, err)
			}
			s.nodes[id].Store(n)
		}
	}
	return s, nil
}

// scanIndex walks every node record once, recording its start offset
// relative to the cursor position, plus the end offset.
func scanIndex(c *compression.Cursor, nodeCount int) ([]byte, error) {
	start := c.Offset()
	index := make([]byte, 0, 4*(nodeCount+1))
	for id := range nodeCount {
		index = buf.AppendI32LE(index, int32(c.Offset()-start))
		n, err := compression.ReadInt(c)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", id, err)
		}
		for i := 0; i < 2*n; i++ {
			if err := compression.SkipVarint(c); err != nil {
				return nil, fmt.Errorf("node %d transition %d: %w", id, i/2, err)
			}
		}
	}
	return buf.AppendI32LE(index, int32(c.Offset()-start)), nil
}

// Name returns the section name, including its kind suffix.
func (s *Section) Name() string { return s.name }

// Kind returns the section classification.
func (s *Section) Kind() types.SectionKind { return s.kind }

// Initial returns the initial node id.
func (s *Section) Initial() int32 { return s.initial }

// NodeCount returns the number of nodes.
func (s *Section) NodeCount() int { return s.nodeCount }

// IndexSource reports how the offset index was obtained.
func (s *Section) IndexSource() IndexSource { return s.source }

// IsFinal reports whether node id is final.
func (s *Section) IsFinal(id int32) bool {
	if id < 0 || int(id) >= s.nodeCount {
		return false
	}
	return s.finals[id/64]&(1<<(id%64)) != 0
}

// Node returns node id, decoding it on first access. Safe for concurrent
// use. A node that cannot be decoded is returned empty and the failure is
// reported by Err.
func (s *Section) Node(id int32) *Node {
	if id < 0 || int(id) >= s.nodeCount {
		s.fail(fmt.Errorf("section %q node %d of %d: %w", s.name, id, s.nodeCount, ErrNodeRange))
		return &Node{}
	}
	slot := &s.nodes[id]
	if n := slot.Load(); n != nil {
		return n
	}
	n, err := s.decode(id)
	if err != nil {
		s.fail(fmt.Errorf("section %q: %w", s.name, err))
		n = &Node{}
	}
	if slot.CompareAndSwap(nil, n) {
		return n
	}
	return slot.Load()
}

// Err returns the first lazy decode failure, if any.
func (s *Section) Err() error {
	if p := s.err.Load(); p != nil {
		return *p
	}
	return nil
}

func (s *Section) fail(err error) {
	s.err.CompareAndSwap(nil, &err)
}

func (s *Section) decode(id int32) (*Node, error) {
	off := int(buf.I32LEAt(s.index, int(id)))
	c := compression.NewCursor(s.data)
	if err := c.Seek(off); err != nil {
		return nil, fmt.Errorf("node %d offset %d: %w", id, off, ErrCorrupt)
	}
	return decodeNode(c, id, s.nodeCount, s.alpha)
}

// Close releases a mapped index cache. The section must not be used
// afterwards.
func (s *Section) Close() error {
	if s.unmapIndex == nil {
		return nil
	}
	err := s.unmapIndex()
	s.unmapIndex = nil
	return err
}
