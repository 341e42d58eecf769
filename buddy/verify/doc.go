// Package verify provides invariant checks for buddy arenas.
//
// # Overview
//
// These checks walk an Arena between operations and confirm the structural
// properties the allocator maintains. They are used by tests and by the
// balloctl replay command on check lines and after the last operation.
//
// Validation categories:
//   - Partition: blocks tile the arena with no gaps or overlaps, each aligned
//     to its own size
//   - FreeLists: a block is free if and only if it is on exactly one free
//     list, the one for its level
//   - NoFreeBuddies: no free block has a free buddy at the same level
//
// # Quick Start
//
// Validate all invariants in one call:
//
//	if err := verify.AllInvariants(a); err != nil {
//	    fmt.Printf("Validation failed: %v\n", err)
//	}
//
// # ValidationError
//
// Failures are reported as *ValidationError with the check name, a message
// and the offending block offset (-1 when no single block is at fault).
package verify
