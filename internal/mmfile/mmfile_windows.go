//go:build windows

package mmfile

import "os"

// Map loads the whole dictionary into memory. The returned release
// function is a no-op since nothing is mapped.
func Map(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return data, release, nil
}

func release() error { return nil }

// AdviseRandom is a no-op without a real mapping.
func AdviseRandom([]byte) error { return nil }
