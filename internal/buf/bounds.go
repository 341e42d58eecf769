// Package buf contains overflow-safe bounds helpers for arena slicing.
package buf

import "math"

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end], true
}

// Window returns b[off:off+n:off+c], a slice of length n whose capacity is
// clamped to c so appends cannot spill into the following bytes.
// It fails unless 0 <= n <= c and off+c fits within len(b).
func Window(b []byte, off, n, c int) ([]byte, bool) {
	if n < 0 || n > c {
		return nil, false
	}
	if _, ok := Slice(b, off, c); !ok {
		return nil, false
	}
	return b[off : off+n : off+c], true
}
