package ltproc_test

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joshuapare/lttoolkit/internal/testutil"
	"github.com/joshuapare/lttoolkit/pkg/ltproc"
)

// Example analyses a sentence with a two-entry dictionary.
func Example() {
	d, err := ltproc.OpenBytes(testutil.CatsDictionary().Bytes(), ltproc.OpenOptions{})
	if err != nil {
		fmt.Println(err)
		return
	}
	defer d.Close()

	p, err := ltproc.NewProcessor(d, ltproc.Options{Mode: ltproc.ModeAnalysis})
	if err != nil {
		fmt.Println(err)
		return
	}
	out, err := p.ProcessString("Cats and cat")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(out)
	// Output: ^Cats/Cat<n><pl>$ ^and/*and$ ^cat/cat<n><sg>$
}

// ExampleCache shows several goroutines sharing one loaded dictionary.
func ExampleCache() {
	dir, err := os.MkdirTemp("", "ltproc")
	if err != nil {
		fmt.Println(err)
		return
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "cats.bin")
	if err := os.WriteFile(path, testutil.CatsDictionary().Bytes(), 0o644); err != nil {
		fmt.Println(err)
		return
	}

	cache, err := ltproc.NewCache(4, ltproc.OpenOptions{LazyNodes: true})
	if err != nil {
		fmt.Println(err)
		return
	}
	defer cache.Close()

	d, err := cache.Get(path)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer d.Close()

	p, _ := ltproc.NewProcessor(d, ltproc.Options{})
	out, _ := p.ProcessString("cats")
	fmt.Println(out, cache.Len())
	// Output: ^cats/cat<n><pl>$ 1
}
