package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joshuapare/buddykit/buddy"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool
)

var rootCmd = &cobra.Command{
	Use:   "balloctl",
	Short: "Replay and inspect buddy allocator arenas",
	Long: `balloctl drives a fixed-arena buddy allocator from allocation traces,
checks the arena invariants after every step that asks for it, and prints
the resulting block layout and free lists.`,
	Version: "0.1.0",
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// addGeometryFlags registers --min and --max on cmd, defaulting to the
// reference geometry.
func addGeometryFlags(cmd *cobra.Command, minExp, maxExp *int) {
	cmd.Flags().IntVar(minExp, "min", buddy.DefaultConfig.MinExp, "Minimum block size exponent")
	cmd.Flags().IntVar(maxExp, "max", buddy.DefaultConfig.MaxExp, "Arena size exponent")
}

// arenaConfig builds a validated configuration for the given exponents.
// Verbose mode routes allocator debug records to stderr.
func arenaConfig(minExp, maxExp int) (*buddy.Config, error) {
	cfg := buddy.DefaultConfig
	if minExp != cfg.MinExp || maxExp != cfg.MaxExp {
		cfg.Name = fmt.Sprintf("min%d-max%d", minExp, maxExp)
	}
	cfg.MinExp = minExp
	cfg.MaxExp = maxExp
	cfg.Logger = newLogger()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func newLogger() *slog.Logger {
	if verbose && !quiet {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
