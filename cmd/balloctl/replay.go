package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joshuapare/buddykit/buddy"
	"github.com/joshuapare/buddykit/buddy/printer"
	"github.com/joshuapare/buddykit/buddy/verify"
	"github.com/joshuapare/buddykit/pkg/trace"
	"github.com/spf13/cobra"
)

var (
	replayMin        int
	replayMax        int
	replayLayout     bool
	replayNoPayload  bool
	replayCheckEvery bool
	replayStop       bool
)

func init() {
	cmd := newReplayCmd()
	addGeometryFlags(cmd, &replayMin, &replayMax)
	cmd.Flags().BoolVar(&replayLayout, "layout", false, "Print the final block layout and free lists")
	cmd.Flags().BoolVar(&replayNoPayload, "no-payload-check", false, "Skip payload pattern checks")
	cmd.Flags().BoolVar(&replayCheckEvery, "check-every", false, "Verify invariants after every operation")
	cmd.Flags().BoolVar(&replayStop, "stop", false, "Stop at the first allocator error")
	rootCmd.AddCommand(cmd)
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <trace>",
		Short: "Replay an allocation trace against a fresh arena",
		Long: `The replay command parses an allocation trace, applies it to a fresh
arena and reports every allocator error. Lines reading "check" verify the
arena invariants at that point; the final state is always verified.

Trace format:
  alloc <name> <size>   (short: a)
  free <name>           (short: f)
  check
  # comment

Example:
  balloctl replay workload.trace
  balloctl replay workload.trace --min 6 --max 24 --layout
  balloctl replay workload.trace --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(args)
		},
	}
	return cmd
}

type replayOutcome struct {
	Line  int    `json:"line"`
	Op    string `json:"op"`
	Ref   uint32 `json:"ref,omitempty"`
	Error string `json:"error,omitempty"`
}

type replaySummary struct {
	Trace    string               `json:"trace"`
	Ops      int                  `json:"ops"`
	Allocs   int                  `json:"allocs"`
	Frees    int                  `json:"frees"`
	Failures int                  `json:"failures"`
	Checks   int                  `json:"checks"`
	Live     map[string]buddy.Ref `json:"live"`
	Outcomes []replayOutcome      `json:"outcomes"`
	Layout   json.RawMessage      `json:"layout,omitempty"`
}

func runReplay(args []string) error {
	tracePath := args[0]

	cfg, err := arenaConfig(replayMin, replayMax)
	if err != nil {
		return err
	}

	printVerbose("Reading trace: %s\n", tracePath)
	f, err := os.Open(tracePath)
	if err != nil {
		return fmt.Errorf("failed to open trace: %w", err)
	}
	defer f.Close()

	ops, err := trace.Parse(f)
	if err != nil {
		return err
	}
	printVerbose("Parsed %d operations\n", len(ops))

	a, err := buddy.New(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	opts := trace.Options{
		CheckPayload:         !replayNoPayload,
		Check:                func() error { return verify.AllInvariants(a) },
		StopOnAllocatorError: replayStop,
	}
	var ra buddy.Allocator = a
	if replayCheckEvery {
		ra = &checkingAllocator{a: a}
	}

	res, err := trace.Replay(ra, ops, opts)
	if err != nil {
		return err
	}
	if err := verify.AllInvariants(a); err != nil {
		return fmt.Errorf("final state: %w", err)
	}

	summary := replaySummary{
		Trace:    tracePath,
		Ops:      len(ops),
		Allocs:   res.Allocs,
		Frees:    res.Frees,
		Failures: res.Failures,
		Checks:   res.Checks,
		Live:     res.Live,
	}
	for _, o := range res.Outcomes {
		out := replayOutcome{Line: o.Op.Line, Op: o.Op.String(), Ref: o.Ref}
		if o.Err != nil {
			out.Error = o.Err.Error()
		}
		summary.Outcomes = append(summary.Outcomes, out)
	}

	if jsonOut {
		if replayLayout {
			var buf bytes.Buffer
			popts := printer.DefaultOptions()
			popts.Format = printer.FormatJSON
			if err := printer.Print(&buf, a, popts); err != nil {
				return err
			}
			summary.Layout = json.RawMessage(buf.Bytes())
		}
		return printJSON(summary)
	}

	for _, o := range summary.Outcomes {
		if o.Error != "" {
			printError("line %d: %s: %s\n", o.Line, o.Op, o.Error)
			continue
		}
		printVerbose("line %d: %s -> ref 0x%X\n", o.Line, o.Op, o.Ref)
	}

	printInfo("\nReplay Summary:\n")
	printInfo("  Trace: %s\n", tracePath)
	printInfo("  Operations: %d\n", summary.Ops)
	printInfo("  Allocations: %d\n", summary.Allocs)
	printInfo("  Frees: %d\n", summary.Frees)
	printInfo("  Failures: %d\n", summary.Failures)
	printInfo("  Checks: %d\n", summary.Checks)
	printInfo("  Live: %d\n", len(summary.Live))
	printInfo("  ✓ Invariants hold\n")

	if replayLayout && !quiet {
		printInfo("\n")
		return printer.Print(os.Stdout, a, printer.DefaultOptions())
	}
	return nil
}

// checkingAllocator verifies the arena after every successful operation.
type checkingAllocator struct {
	a *buddy.Arena
}

func (c *checkingAllocator) Alloc(n int) (buddy.Ref, []byte, error) {
	ref, p, err := c.a.Alloc(n)
	if err != nil {
		return ref, p, err
	}
	return ref, p, verify.AllInvariants(c.a)
}

func (c *checkingAllocator) Free(ref buddy.Ref) error {
	if err := c.a.Free(ref); err != nil {
		return err
	}
	return verify.AllInvariants(c.a)
}
