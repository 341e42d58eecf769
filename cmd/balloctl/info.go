package main

import (
	"github.com/joshuapare/buddykit/buddy"
	"github.com/spf13/cobra"
)

var (
	infoMin int
	infoMax int
)

func init() {
	cmd := newInfoCmd()
	addGeometryFlags(cmd, &infoMin, &infoMax)
	rootCmd.AddCommand(cmd)
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the level table of an arena geometry",
		Long: `The info command lists every block level of an arena: its block size
including the header and the bytes usable by a caller.

Example:
  balloctl info
  balloctl info --min 6 --max 24
  balloctl info --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args)
		},
	}
	return cmd
}

type levelInfo struct {
	Level     int    `json:"level"`
	BlockSize uint64 `json:"block_size"`
	Usable    uint64 `json:"usable"`
}

type arenaInfo struct {
	Name       string      `json:"name"`
	MinExp     int         `json:"min_exp"`
	MaxExp     int         `json:"max_exp"`
	ArenaBytes uint64      `json:"arena_bytes"`
	HeaderSize int         `json:"header_size"`
	Levels     []levelInfo `json:"levels"`
}

func runInfo(_ []string) error {
	cfg, err := arenaConfig(infoMin, infoMax)
	if err != nil {
		return err
	}

	info := arenaInfo{
		Name:       cfg.Name,
		MinExp:     cfg.MinExp,
		MaxExp:     cfg.MaxExp,
		ArenaBytes: cfg.ArenaSize(),
		HeaderSize: buddy.HeaderSize,
	}
	for level := 0; level <= cfg.TopLevel(); level++ {
		info.Levels = append(info.Levels, levelInfo{
			Level:     level,
			BlockSize: cfg.LevelSize(level),
			Usable:    cfg.Capacity(level),
		})
	}

	if jsonOut {
		return printJSON(info)
	}

	printInfo("\nArena Geometry:\n")
	printInfo("  Name: %s\n", info.Name)
	printInfo("  Exponents: min %d, max %d\n", info.MinExp, info.MaxExp)
	printInfo("  Arena: %d bytes\n", info.ArenaBytes)
	printInfo("  Header: %d bytes\n", info.HeaderSize)
	printInfo("\n  %5s %12s %12s\n", "LEVEL", "BLOCK", "USABLE")
	for _, l := range info.Levels {
		printInfo("  %5d %12d %12d\n", l.Level, l.BlockSize, l.Usable)
	}
	return nil
}
