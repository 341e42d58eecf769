//go:build unix

// Package mmap provides platform-specific helpers for reserving arena memory
// straight from the operating system.
package mmap

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Anon reserves size bytes of zero-filled, page-aligned, private anonymous
// memory and returns it together with a cleanup that releases the mapping.
func Anon(size int) ([]byte, func() error, error) {
	if size <= 0 {
		return nil, nil, fmt.Errorf("mmap: invalid size %d", size)
	}
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, nil, fmt.Errorf("mmap: reserve %d bytes: %w", size, err)
	}
	cleanup := func() error {
		if data == nil {
			return nil
		}
		err := unix.Munmap(data)
		if errors.Is(err, unix.EINVAL) {
			// Treat double-unmap as no-op for callers.
			return nil
		}
		data = nil
		return err
	}
	return data, cleanup, nil
}
