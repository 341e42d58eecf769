package buddy

import "errors"

var (
	// ErrRequestTooLarge indicates the request plus header exceeds the largest
	// block the arena can ever produce.
	ErrRequestTooLarge = errors.New("buddy: request too large")

	// ErrOutOfMemory indicates the arena could not be mapped, or no free block
	// of a sufficient level exists.
	ErrOutOfMemory = errors.New("buddy: out of memory")

	// ErrDoubleFree indicates an attempt to free a block that is already free.
	ErrDoubleFree = errors.New("buddy: double free")

	// ErrInvalidPointer indicates a Ref that does not resolve to a block header.
	ErrInvalidPointer = errors.New("buddy: invalid pointer")

	// ErrBadConfig indicates exponents that cannot describe a buddy arena.
	ErrBadConfig = errors.New("buddy: bad config")

	// ErrClosed indicates the arena was released with Close.
	ErrClosed = errors.New("buddy: arena closed")
)
