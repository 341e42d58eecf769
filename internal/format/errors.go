package format

import "errors"

var (
	// ErrTruncated indicates the buffer lacked the bytes required for a header.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrSignatureMismatch indicates a header had an unexpected magic.
	ErrSignatureMismatch = errors.New("format: signature mismatch")
)
