// Package reader decodes compiled letter-transducer dictionaries. The
// exported entry points are used by pkg/ltproc to obtain a Dictionary
// without exposing the decoding machinery directly.
package reader

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joshuapare/lttoolkit/internal/alphabet"
	"github.com/joshuapare/lttoolkit/internal/compression"
	"github.com/joshuapare/lttoolkit/internal/mmfile"
	"github.com/joshuapare/lttoolkit/internal/transducer"
	"github.com/joshuapare/lttoolkit/pkg/types"
)

// Options control dictionary loading.
type Options struct {
	// Eager decodes every node at load time.
	Eager bool
	// IndexCacheDir enables the on-disk offset index cache.
	IndexCacheDir string
	// Logger receives load diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Dictionary is a loaded dictionary. It is read-only after loading and
// may be shared by any number of processors.
type Dictionary struct {
	alphabetic map[rune]struct{}
	alpha      *alphabet.Alphabet
	sections   []*transducer.Section

	buf    []byte
	unmap  func() error
	closed bool
}

// Open maps the dictionary at path and decodes it.
func Open(path string, opts Options) (*Dictionary, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, wrapIOErr(fmt.Errorf("open dictionary: %w", err))
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, wrapIOErr(fmt.Errorf("open dictionary: %w", err))
	}
	data, unmap, err := mmfile.Map(abs)
	if err != nil {
		return nil, wrapIOErr(fmt.Errorf("open dictionary: %w", err))
	}
	if !opts.Eager {
		if err := mmfile.AdviseRandom(data); err != nil {
			logger(opts).Debug("madvise failed", "path", abs, "err", err)
		}
	}
	key := fmt.Sprintf("%s\x00%d\x00%d", abs, info.Size(), info.ModTime().UnixNano())
	d, err := newDictionary(data, unmap, key, opts)
	if err != nil {
		if unmap != nil {
			_ = unmap()
		}
		return nil, err
	}
	return d, nil
}

// OpenBytes decodes a dictionary held in memory. The index cache is not
// used because the bytes have no stable identity.
func OpenBytes(buf []byte, opts Options) (*Dictionary, error) {
	return newDictionary(buf, nil, "", opts)
}

func logger(opts Options) *slog.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func newDictionary(buf []byte, unmap func() error, key string, opts Options) (*Dictionary, error) {
	log := logger(opts)
	c := compression.NewCursor(buf)

	n, err := compression.ReadInt(c)
	if err != nil {
		return nil, wrapFormatErr(fmt.Errorf("alphabetic set size: %w", err))
	}
	if n > c.Remaining() {
		return nil, wrapFormatErr(fmt.Errorf("alphabetic set size %d: %w", n, compression.ErrTruncated))
	}
	d := &Dictionary{
		alphabetic: make(map[rune]struct{}, n),
		buf:        buf,
		unmap:      unmap,
	}
	for i := range n {
		r, err := compression.ReadVarint(c)
		if err != nil {
			return nil, wrapFormatErr(fmt.Errorf("alphabetic char %d: %w", i, err))
		}
		d.alphabetic[rune(r)] = struct{}{}
	}

	if d.alpha, err = alphabet.Read(c); err != nil {
		return nil, wrapFormatErr(err)
	}

	n, err = compression.ReadInt(c)
	if err != nil {
		return nil, wrapFormatErr(fmt.Errorf("section count: %w", err))
	}
	if n > c.Remaining() {
		return nil, wrapFormatErr(fmt.Errorf("section count %d: %w", n, compression.ErrTruncated))
	}
	topts := transducer.Options{
		Eager:    opts.Eager,
		CacheDir: opts.IndexCacheDir,
		Key:      key,
		Logger:   log,
	}
	for i := range n {
		name, err := compression.ReadString(c)
		if err != nil {
			d.closeSections()
			return nil, wrapFormatErr(fmt.Errorf("section %d name: %w", i, err))
		}
		kind, err := types.ClassifySection(name)
		if err != nil {
			d.closeSections()
			return nil, err
		}
		s, err := transducer.Read(c, name, kind, d.alpha, topts)
		if err != nil {
			d.closeSections()
			return nil, wrapFormatErr(err)
		}
		d.sections = append(d.sections, s)
		log.Debug("section loaded",
			"name", name,
			"kind", kind,
			"nodes", s.NodeCount(),
			"index", s.IndexSource())
	}
	log.Debug("dictionary loaded",
		"bytes", len(buf),
		"alphabetic", len(d.alphabetic),
		"tags", d.alpha.TagCount(),
		"pairs", d.alpha.PairCount(),
		"sections", len(d.sections))
	return d, nil
}

// Close releases the mapping and any index caches. Processors using the
// dictionary must not be used afterwards.
func (d *Dictionary) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	err := d.closeSections()
	if d.unmap != nil {
		err = errors.Join(err, d.unmap())
	}
	return err
}

func (d *Dictionary) closeSections() error {
	var errs []error
	for _, s := range d.sections {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

// Closed reports whether Close has been called.
func (d *Dictionary) Closed() bool { return d.closed }

// IsAlphabetic reports whether r belongs to the dictionary's alphabetic
// character set.
func (d *Dictionary) IsAlphabetic(r rune) bool {
	_, ok := d.alphabetic[r]
	return ok
}

// Alphabet returns the shared alphabet. Callers that modify symbols must
// Clone it first.
func (d *Dictionary) Alphabet() *alphabet.Alphabet { return d.alpha }

// Sections returns the sections in file order.
func (d *Dictionary) Sections() []*transducer.Section { return d.sections }

// Size returns the size of the dictionary image in bytes.
func (d *Dictionary) Size() int { return len(d.buf) }

// Err reports the first node that failed to decode lazily, as a
// CorruptDictionary error.
func (d *Dictionary) Err() error {
	for _, s := range d.sections {
		if err := s.Err(); err != nil {
			return wrapFormatErr(err)
		}
	}
	return nil
}

func wrapIOErr(err error) error {
	return &types.Error{Kind: types.ErrKindIO, Msg: err.Error(), Err: err}
}

func wrapFormatErr(err error) error {
	var te *types.Error
	switch {
	case errors.As(err, &te):
		return err
	case errors.Is(err, compression.ErrTruncated):
		return &types.Error{Kind: types.ErrKindCorrupt, Msg: "dictionary truncated", Err: err}
	case errors.Is(err, compression.ErrOutOfRange):
		return &types.Error{Kind: types.ErrKindCorrupt, Msg: "varint out of range", Err: err}
	default:
		return &types.Error{Kind: types.ErrKindCorrupt, Msg: err.Error(), Err: err}
	}
}
