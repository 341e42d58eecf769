// Package trace reads allocation traces and replays them against a buddy
// allocator.
//
// A trace is a line-oriented text file:
//
//	# comment
//	alloc buf 100    (or: a buf 100)
//	free buf         (or: f buf)
//	check
//
// Names bind an allocation to a later free. Input may be UTF-8 or UTF-16
// with a byte order mark.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Kind identifies a trace operation.
type Kind uint8

const (
	KindAlloc Kind = iota + 1
	KindFree
	KindCheck
)

func (k Kind) String() string {
	switch k {
	case KindAlloc:
		return KeywordAlloc
	case KindFree:
		return KeywordFree
	case KindCheck:
		return KeywordCheck
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Op is one parsed trace line.
type Op struct {
	Line int    // 1-based source line
	Kind Kind   // operation
	Name string // allocation name (alloc, free)
	Size int    // requested bytes (alloc)
}

func (op Op) String() string {
	switch op.Kind {
	case KindAlloc:
		return fmt.Sprintf("%s %s %d", op.Kind, op.Name, op.Size)
	case KindFree:
		return fmt.Sprintf("%s %s", op.Kind, op.Name)
	default:
		return op.Kind.String()
	}
}

// ParseError reports a malformed trace line.
type ParseError struct {
	Line int
	Text string
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("trace line %d: %s: %q", e.Line, e.Msg, e.Text)
}

// Parse reads a whole trace. It stops at the first malformed line.
func Parse(r io.Reader) ([]Op, error) {
	// UTF-8 unless a BOM says otherwise; the BOM itself is dropped.
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	scanner := bufio.NewScanner(transform.NewReader(r, decoder))
	buf := make([]byte, 0, ScannerInitialBufferSize)
	scanner.Buffer(buf, ScannerMaxLineSize)

	ops := make([]Op, 0, InitialOpCapacity)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		line := strings.TrimSpace(raw)
		if i := strings.Index(line, CommentPrefix); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" {
			continue
		}

		op, err := parseLine(line)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Text: raw, Msg: err.Error()}
		}
		op.Line = lineNo
		ops = append(ops, op)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning trace: %w", err)
	}
	return ops, nil
}

func parseLine(line string) (Op, error) {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case KeywordAlloc, KeywordAllocShort:
		if len(fields) != 3 {
			return Op{}, fmt.Errorf("alloc takes a name and a size")
		}
		size, err := parseSize(fields[2])
		if err != nil {
			return Op{}, err
		}
		return Op{Kind: KindAlloc, Name: fields[1], Size: size}, nil

	case KeywordFree, KeywordFreeShort:
		if len(fields) != 2 {
			return Op{}, fmt.Errorf("free takes a name")
		}
		return Op{Kind: KindFree, Name: fields[1]}, nil

	case KeywordCheck:
		if len(fields) != 1 {
			return Op{}, fmt.Errorf("check takes no arguments")
		}
		return Op{Kind: KindCheck}, nil

	default:
		return Op{}, fmt.Errorf("unknown operation %q", fields[0])
	}
}

// parseSize accepts decimal or 0x-prefixed sizes, with an optional k or m
// suffix for KiB and MiB.
func parseSize(s string) (int, error) {
	mult := int64(1)
	switch {
	case strings.HasSuffix(s, "k"), strings.HasSuffix(s, "K"):
		mult, s = 1<<10, s[:len(s)-1]
	case strings.HasSuffix(s, "m"), strings.HasSuffix(s, "M"):
		mult, s = 1<<20, s[:len(s)-1]
	}
	n, err := strconv.ParseInt(s, 0, 32)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("bad size %q", s)
	}
	return int(n * mult), nil
}
