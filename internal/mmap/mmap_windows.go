//go:build windows

package mmap

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Anon reserves and commits size bytes of zero-filled read/write memory and
// returns it together with a cleanup that releases the region.
func Anon(size int) ([]byte, func() error, error) {
	if size <= 0 {
		return nil, nil, fmt.Errorf("mmap: invalid size %d", size)
	}
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_RESERVE|windows.MEM_COMMIT, windows.PAGE_READWRITE)
	if err != nil {
		return nil, nil, fmt.Errorf("mmap: reserve %d bytes: %w", size, err)
	}
	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	cleanup := func() error {
		if addr == 0 {
			return nil
		}
		err := windows.VirtualFree(addr, 0, windows.MEM_RELEASE)
		addr = 0
		return err
	}
	return data, cleanup, nil
}
