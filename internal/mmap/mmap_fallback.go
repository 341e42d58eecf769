//go:build !unix && !windows

package mmap

import "fmt"

// Anon allocates a zeroed heap slice when the platform has no anonymous
// mappings. The cleanup is a no-op.
func Anon(size int) ([]byte, func() error, error) {
	if size <= 0 {
		return nil, nil, fmt.Errorf("mmap: invalid size %d", size)
	}
	return make([]byte, size), func() error { return nil }, nil
}
