package ltproc

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/lttoolkit/internal/testutil"
	"github.com/joshuapare/lttoolkit/pkg/types"
)

func writeCats(t *testing.T) string {
	t.Helper()
	return testutil.WriteDictionary(t, testutil.CatsDictionary().Bytes(), "cats.bin")
}

func TestOpenAndProcess(t *testing.T) {
	for _, lazy := range []bool{false, true} {
		d, err := Open(writeCats(t), OpenOptions{LazyNodes: lazy})
		require.NoError(t, err)

		p, err := NewProcessor(d, Options{})
		require.NoError(t, err)
		require.Equal(t, ModeAnalysis, p.Mode())

		out, err := p.ProcessString("cats and cat")
		require.NoError(t, err)
		require.Equal(t, "^cats/cat<n><pl>$ ^and/*and$ ^cat/cat<n><sg>$", out)

		secs := d.Sections()
		require.Len(t, secs, 1)
		require.Equal(t, "main@standard", secs[0].Name)
		require.Equal(t, types.KindStandard, secs[0].Kind)
		require.Positive(t, secs[0].Nodes)

		require.NoError(t, d.Close())
		require.True(t, d.Closed())
		_, err = p.ProcessString("cats")
		require.ErrorIs(t, err, types.ErrClosed)
		_, err = NewProcessor(d, Options{})
		require.ErrorIs(t, err, types.ErrClosed)
	}
}

func TestOpenIndexCache(t *testing.T) {
	path := writeCats(t)
	dir := t.TempDir()

	d, err := Open(path, OpenOptions{LazyNodes: true, IndexCacheDir: dir})
	require.NoError(t, err)
	require.Equal(t, "scanned", d.Sections()[0].IndexSource)
	require.NoError(t, d.Close())

	d, err = Open(path, OpenOptions{LazyNodes: true, IndexCacheDir: dir})
	require.NoError(t, err)
	defer d.Close()
	require.Equal(t, "cached", d.Sections()[0].IndexSource)

	p, err := NewProcessor(d, Options{})
	require.NoError(t, err)
	out, err := p.ProcessString("cat")
	require.NoError(t, err)
	require.Equal(t, "^cat/cat<n><sg>$", out)
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.bin"), OpenOptions{})
	require.Error(t, err)

	data := testutil.CatsDictionary().Bytes()
	_, err = OpenBytes(data[:len(data)-3], OpenOptions{})
	require.ErrorIs(t, err, types.ErrCorruptDictionary)
}

func TestProcessorMalformedInput(t *testing.T) {
	d, err := OpenBytes(testutil.CatsDictionary().Bytes(), OpenOptions{})
	require.NoError(t, err)
	defer d.Close()

	p, err := NewProcessor(d, Options{})
	require.NoError(t, err)
	_, err = p.ProcessString("cat <n")
	require.ErrorIs(t, err, types.ErrMalformedInput)

	out, err := p.ProcessString("cats")
	require.NoError(t, err)
	require.Equal(t, "^cats/cat<n><pl>$", out)
}

func TestDictionaryReferences(t *testing.T) {
	d, err := OpenBytes(testutil.CatsDictionary().Bytes(), OpenOptions{})
	require.NoError(t, err)

	require.True(t, d.retain())
	require.NoError(t, d.Close())
	require.False(t, d.Closed())
	require.NoError(t, d.Close())
	require.True(t, d.Closed())
	require.False(t, d.retain())
	require.NoError(t, d.Close(), "closing twice is harmless")
}

func TestCacheSharesLoads(t *testing.T) {
	path := writeCats(t)
	c, err := NewCache(2, OpenOptions{LazyNodes: true})
	require.NoError(t, err)
	defer c.Close()

	const n = 8
	got := make([]*Dictionary, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := c.Get(path)
			if err == nil {
				got[i] = d
			}
		}()
	}
	wg.Wait()

	for _, d := range got {
		require.NotNil(t, d)
		require.Same(t, got[0], d)
	}
	require.Equal(t, 1, c.Len())

	for _, d := range got {
		require.NoError(t, d.Close())
	}
	require.False(t, got[0].Closed(), "the cache still holds a reference")
}

func TestCacheEviction(t *testing.T) {
	a := writeCats(t)
	b := writeCats(t)
	c, err := NewCache(1, OpenOptions{})
	require.NoError(t, err)

	da, err := c.Get(a)
	require.NoError(t, err)
	require.NoError(t, da.Close())

	db, err := c.Get(b)
	require.NoError(t, err)
	require.True(t, da.Closed(), "evicted without users")
	require.Equal(t, 1, c.Len())

	c.Close()
	require.False(t, db.Closed(), "the caller still holds a reference")
	require.NoError(t, db.Close())
	require.True(t, db.Closed())
}

func TestCachePreload(t *testing.T) {
	c, err := NewCache(4, OpenOptions{})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Preload(context.Background(), writeCats(t), writeCats(t)))
	require.Equal(t, 2, c.Len())

	err = c.Preload(context.Background(), filepath.Join(t.TempDir(), "missing.bin"))
	require.ErrorContains(t, err, "preload")
}

func TestNewCacheRejectsZeroSize(t *testing.T) {
	_, err := NewCache(0, OpenOptions{})
	require.Error(t, err)
}
