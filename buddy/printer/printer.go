// Package printer renders buddy arena layouts for humans and tools.
package printer

import (
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/buddykit/buddy"
)

const (
	DefaultMaxBlocks = 0
)

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs a human-readable table.
	FormatText Format = "text"

	// FormatJSON outputs JSON.
	FormatJSON Format = "json"
)

// Options controls printing behavior.
type Options struct {
	// Format specifies output format (text, json).
	// Default: FormatText
	Format Format

	// ShowBlocks lists every block of the partition.
	// Default: true
	ShowBlocks bool

	// ShowFreeLists prints each level's free list in list order.
	// Default: true
	ShowFreeLists bool

	// MaxBlocks limits how many blocks are listed (0 = unlimited).
	// Default: 0
	MaxBlocks int

	// Lang selects digit grouping for text output.
	// Default: language.English
	Lang language.Tag
}

// DefaultOptions returns sensible defaults for printing.
func DefaultOptions() Options {
	return Options{
		Format:        FormatText,
		ShowBlocks:    true,
		ShowFreeLists: true,
		MaxBlocks:     DefaultMaxBlocks,
		Lang:          language.English,
	}
}

// Printer writes arena snapshots to a writer.
type Printer struct {
	writer io.Writer
	opts   Options
	p      *message.Printer
}

// New creates a Printer writing to w.
func New(w io.Writer, opts Options) *Printer {
	if opts.Format == "" {
		opts.Format = FormatText
	}
	if opts.Lang == language.Und {
		opts.Lang = language.English
	}
	return &Printer{writer: w, opts: opts, p: message.NewPrinter(opts.Lang)}
}

// Print writes a snapshot of a to w using opts.
func Print(w io.Writer, a *buddy.Arena, opts Options) error {
	return New(w, opts).Print(a)
}

// Print writes a snapshot of a.
func (pr *Printer) Print(a *buddy.Arena) error {
	snap, err := takeSnapshot(a, pr.opts)
	if err != nil {
		return err
	}
	switch pr.opts.Format {
	case FormatJSON:
		return pr.printJSON(snap)
	case FormatText:
		return pr.printText(snap)
	default:
		return fmt.Errorf("printer: unknown format %q", pr.opts.Format)
	}
}

// snapshot is the format-independent view of an arena.
type snapshot struct {
	cfg       buddy.Config
	mapped    bool
	usage     buddy.Usage
	stats     buddy.Stats
	blocks    []buddy.Block
	truncated int
	freeLists [][]uint32
}

func takeSnapshot(a *buddy.Arena, opts Options) (*snapshot, error) {
	s := &snapshot{
		cfg:    a.Config(),
		mapped: a.Mapped(),
		usage:  a.Usage(),
		stats:  a.Stats(),
	}
	if opts.ShowBlocks {
		blocks, err := a.Layout()
		if err != nil {
			return nil, fmt.Errorf("printer: %w", err)
		}
		if opts.MaxBlocks > 0 && len(blocks) > opts.MaxBlocks {
			s.truncated = len(blocks) - opts.MaxBlocks
			blocks = blocks[:opts.MaxBlocks]
		}
		s.blocks = blocks
	}
	if opts.ShowFreeLists {
		s.freeLists = make([][]uint32, s.cfg.TopLevel()+1)
		for level := range s.freeLists {
			s.freeLists[level] = a.FreeList(level)
		}
	}
	return s, nil
}
