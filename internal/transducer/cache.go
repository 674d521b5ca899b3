package transducer

import (
	"errors"
	"fmt"
	"hash/fnv"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joshuapare/lttoolkit/internal/buf"
	"github.com/joshuapare/lttoolkit/internal/mmfile"
)

// indexCache locates the on-disk offset index of one section. The file is
// nodeCount+1 little-endian int32 offsets relative to the first node record.
type indexCache struct {
	path      string
	nodeCount int
	log       *slog.Logger
}

func newIndexCache(opts Options, name string, start, nodeCount int) indexCache {
	ic := indexCache{nodeCount: nodeCount, log: opts.Logger}
	if ic.log == nil {
		ic.log = slog.New(slog.DiscardHandler)
	}
	if opts.CacheDir == "" || opts.Key == "" {
		return ic
	}
	h := fnv.New64a()
	fmt.Fprintf(h, "%s\x00%s\x00%d\x00%d", opts.Key, name, start, nodeCount)
	ic.path = filepath.Join(opts.CacheDir, fmt.Sprintf("%016x.idx", h.Sum64()))
	return ic
}

// load maps the cache file and validates it against the section. limit is
// the number of dictionary bytes available for node records.
func (ic indexCache) load(limit int) ([]byte, func() error, bool) {
	if ic.path == "" {
		return nil, nil, false
	}
	data, unmap, err := mmfile.Map(ic.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			ic.log.Warn("index cache unreadable", "path", ic.path, "err", err)
		}
		return nil, nil, false
	}
	if err := validateIndex(data, ic.nodeCount, limit); err != nil {
		_ = unmap()
		ic.log.Warn("ignoring index cache", "path", ic.path, "err", err)
		return nil, nil, false
	}
	ic.log.Debug("index cache hit", "path", ic.path, "nodes", ic.nodeCount)
	return data, unmap, true
}

func validateIndex(index []byte, nodeCount, limit int) error {
	want, err := buf.CheckArrayBounds(len(index), 0, nodeCount+1, 4)
	if err != nil || want != len(index) {
		return fmt.Errorf("index size %d, want %d entries: %w", len(index), nodeCount+1, ErrCorrupt)
	}
	if buf.I32LEAt(index, 0) != 0 {
		return fmt.Errorf("index does not start at 0: %w", ErrCorrupt)
	}
	prev := int32(0)
	for i := 1; i <= nodeCount; i++ {
		off := buf.I32LEAt(index, i)
		if off <= prev {
			return fmt.Errorf("index entry %d not increasing: %w", i, ErrCorrupt)
		}
		prev = off
	}
	if int(prev) > limit {
		return fmt.Errorf("index end %d beyond %d: %w", prev, limit, ErrCorrupt)
	}
	return nil
}

// store writes index atomically. Failures are logged, never returned:
// the section is fully usable without its cache.
func (ic indexCache) store(index []byte) {
	if ic.path == "" {
		return
	}
	if err := writeFileAtomic(ic.path, index); err != nil {
		ic.log.Warn("index cache write failed", "path", ic.path, "err", err)
		return
	}
	ic.log.Debug("index cache written", "path", ic.path, "nodes", ic.nodeCount)
}

func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()
	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}
