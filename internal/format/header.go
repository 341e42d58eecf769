package format

import (
	"fmt"

	"github.com/joshuapare/buddykit/internal/buf"
)

// Header is the decoded form of a block header.
type Header struct {
	Magic     uint16
	Status    Status
	Level     uint8
	Requested uint32
	Prev      uint32
	Next      uint32
}

// DecodeHeader decodes the header stored at off. It fails when the header
// would run past the end of b or the magic does not match.
func DecodeHeader(b []byte, off int) (Header, error) {
	hb, ok := buf.Slice(b, off, HeaderSize)
	if !ok {
		return Header{}, fmt.Errorf("header at 0x%X: %w", off, ErrTruncated)
	}
	h := Header{
		Magic:     ReadU16(hb, MagicOffset),
		Status:    Status(hb[StatusOffset]),
		Level:     hb[LevelOffset],
		Requested: ReadU32(hb, RequestedOffset),
		Prev:      ReadU32(hb, PrevOffset),
		Next:      ReadU32(hb, NextOffset),
	}
	if h.Magic != HeaderMagic {
		return h, fmt.Errorf("header at 0x%X: magic 0x%04X: %w", off, h.Magic, ErrSignatureMismatch)
	}
	return h, nil
}

// EncodeHeader writes h at off. The magic is always set to HeaderMagic.
// The caller guarantees off+HeaderSize <= len(b).
func EncodeHeader(b []byte, off int, h Header) {
	PutU16(b, off+MagicOffset, HeaderMagic)
	b[off+StatusOffset] = byte(h.Status)
	b[off+LevelOffset] = h.Level
	PutU32(b, off+RequestedOffset, h.Requested)
	PutU32(b, off+PrevOffset, h.Prev)
	PutU32(b, off+NextOffset, h.Next)
}

// Hot-path field accessors used by the free-list code. They skip the magic
// check; callers only use them on offsets already known to hold a header.

// ReadLinks returns the prev and next free-list links at off.
func ReadLinks(b []byte, off int) (prev, next uint32) {
	return ReadU32(b, off+PrevOffset), ReadU32(b, off+NextOffset)
}

// SetPrev updates the prev link at off.
func SetPrev(b []byte, off int, prev uint32) {
	PutU32(b, off+PrevOffset, prev)
}

// SetNext updates the next link at off.
func SetNext(b []byte, off int, next uint32) {
	PutU32(b, off+NextOffset, next)
}

// ReadStatus returns the status byte at off.
func ReadStatus(b []byte, off int) Status {
	return Status(b[off+StatusOffset])
}

// ReadLevel returns the level byte at off.
func ReadLevel(b []byte, off int) uint8 {
	return b[off+LevelOffset]
}
