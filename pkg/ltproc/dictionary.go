package ltproc

import (
	"log/slog"
	"sync/atomic"

	"github.com/joshuapare/lttoolkit/internal/reader"
	"github.com/joshuapare/lttoolkit/pkg/types"
)

// OpenOptions controls dictionary loading.
type OpenOptions struct {
	// IndexCacheDir stores the node offset index of every section so
	// later opens of the same file skip the scan. Empty disables the
	// cache.
	IndexCacheDir string

	// LazyNodes decodes each node on first use instead of decoding
	// every node at load time.
	LazyNodes bool

	// Logger receives load diagnostics. Nil discards them.
	Logger *slog.Logger
}

func (o OpenOptions) reader() reader.Options {
	return reader.Options{Eager: !o.LazyNodes, IndexCacheDir: o.IndexCacheDir, Logger: o.Logger}
}

// SectionInfo describes one section of a loaded dictionary.
type SectionInfo struct {
	Name        string
	Kind        types.SectionKind
	Nodes       int
	IndexSource string
}

// Dictionary is a loaded dictionary.
type Dictionary struct {
	d    *reader.Dictionary
	path string
	refs atomic.Int32
}

// Open loads the dictionary at path.
func Open(path string, opts OpenOptions) (*Dictionary, error) {
	d, err := reader.Open(path, opts.reader())
	if err != nil {
		return nil, err
	}
	return newDictionary(d, path), nil
}

// OpenBytes loads a dictionary held in memory. buf must not be modified
// while the dictionary is open.
func OpenBytes(buf []byte, opts OpenOptions) (*Dictionary, error) {
	d, err := reader.OpenBytes(buf, opts.reader())
	if err != nil {
		return nil, err
	}
	return newDictionary(d, ""), nil
}

func newDictionary(d *reader.Dictionary, path string) *Dictionary {
	dict := &Dictionary{d: d, path: path}
	dict.refs.Store(1)
	return dict
}

// Path returns the file the dictionary was opened from, or "".
func (d *Dictionary) Path() string { return d.path }

// Size returns the size of the dictionary data in bytes.
func (d *Dictionary) Size() int { return d.d.Size() }

// Sections describes the sections in file order.
func (d *Dictionary) Sections() []SectionInfo {
	secs := d.d.Sections()
	out := make([]SectionInfo, len(secs))
	for i, s := range secs {
		out[i] = SectionInfo{
			Name:        s.Name(),
			Kind:        s.Kind(),
			Nodes:       s.NodeCount(),
			IndexSource: s.IndexSource().String(),
		}
	}
	return out
}

// Closed reports whether the last reference has been released.
func (d *Dictionary) Closed() bool { return d.refs.Load() <= 0 }

// Close releases one reference. Releasing the last one unmaps the file;
// processors built on the dictionary must not be used afterwards.
func (d *Dictionary) Close() error {
	if d.refs.Add(-1) == 0 {
		return d.d.Close()
	}
	return nil
}

// retain adds a reference unless the dictionary is already closed.
func (d *Dictionary) retain() bool {
	for {
		n := d.refs.Load()
		if n <= 0 {
			return false
		}
		if d.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}
