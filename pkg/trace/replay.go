package trace

import (
	"errors"
	"fmt"

	"github.com/joshuapare/buddykit/buddy"
)

// ErrReplay marks a trace that cannot be applied as written.
var ErrReplay = errors.New("trace: replay failed")

// Options controls replay behavior.
type Options struct {
	// CheckPayload fills every payload with a per-allocation pattern and
	// verifies it before the block is freed.
	CheckPayload bool

	// Check runs on every check line. Nil makes check lines no-ops.
	Check func() error

	// StopOnAllocatorError aborts on the first Alloc or Free error instead
	// of recording it and moving on.
	StopOnAllocatorError bool
}

// Outcome is the result of one operation.
type Outcome struct {
	Op  Op
	Ref buddy.Ref // set for successful allocs and for frees
	Err error     // allocator or check error, nil on success
}

// Result summarises a replay.
type Result struct {
	Outcomes []Outcome
	Allocs   int // successful allocations
	Frees    int // successful frees
	Failures int // allocator errors
	Checks   int // check lines executed
	Live     map[string]buddy.Ref
}

type liveBlock struct {
	ref     buddy.Ref
	payload []byte
	seed    byte
}

// Replay applies ops to a in order. Allocator errors such as
// buddy.ErrOutOfMemory are recorded in the result. Errors in the trace
// itself (unknown names, a name bound twice) and failed checks abort the
// replay and wrap ErrReplay. The partial result is returned either way.
func Replay(a buddy.Allocator, ops []Op, opts Options) (*Result, error) {
	res := &Result{
		Outcomes: make([]Outcome, 0, len(ops)),
		Live:     make(map[string]buddy.Ref),
	}
	live := make(map[string]liveBlock)

	for _, op := range ops {
		out := Outcome{Op: op}

		switch op.Kind {
		case KindAlloc:
			if _, dup := live[op.Name]; dup {
				return res, fmt.Errorf("%w: line %d: %q is already allocated", ErrReplay, op.Line, op.Name)
			}
			ref, payload, err := a.Alloc(op.Size)
			out.Ref, out.Err = ref, err
			if err == nil {
				blk := liveBlock{ref: ref, payload: payload, seed: byte(op.Line)}
				if opts.CheckPayload {
					fill(blk.payload, blk.seed)
				}
				live[op.Name] = blk
				res.Live[op.Name] = ref
				res.Allocs++
			}

		case KindFree:
			blk, ok := live[op.Name]
			if !ok {
				return res, fmt.Errorf("%w: line %d: %q is not allocated", ErrReplay, op.Line, op.Name)
			}
			if opts.CheckPayload {
				if i := firstMismatch(blk.payload, blk.seed); i >= 0 {
					return res, fmt.Errorf("%w: line %d: payload of %q corrupted at byte %d",
						ErrReplay, op.Line, op.Name, i)
				}
			}
			out.Ref = blk.ref
			out.Err = a.Free(blk.ref)
			if out.Err == nil {
				delete(live, op.Name)
				delete(res.Live, op.Name)
				res.Frees++
			}

		case KindCheck:
			res.Checks++
			if opts.Check != nil {
				if err := opts.Check(); err != nil {
					res.Outcomes = append(res.Outcomes, Outcome{Op: op, Err: err})
					return res, fmt.Errorf("%w: line %d: check: %w", ErrReplay, op.Line, err)
				}
			}

		default:
			return res, fmt.Errorf("%w: line %d: unknown operation %v", ErrReplay, op.Line, op.Kind)
		}

		res.Outcomes = append(res.Outcomes, out)
		if out.Err != nil {
			res.Failures++
			if opts.StopOnAllocatorError {
				return res, fmt.Errorf("line %d: %s: %w", op.Line, op, out.Err)
			}
		}
	}
	return res, nil
}

func fill(p []byte, seed byte) {
	for i := range p {
		p[i] = seed + byte(i)
	}
}

func firstMismatch(p []byte, seed byte) int {
	for i := range p {
		if p[i] != seed+byte(i) {
			return i
		}
	}
	return -1
}
