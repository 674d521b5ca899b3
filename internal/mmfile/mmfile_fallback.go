//go:build !unix && !windows

package mmfile

import "os"

// Map falls back to reading the dictionary into the heap.
func Map(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return data, func() error { return nil }, nil
}

// AdviseRandom does nothing on heap-backed data.
func AdviseRandom([]byte) error { return nil }
