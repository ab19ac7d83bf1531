// Package main is the entry point for the audioanalysis CLI.
//
// Usage:
//
//	audioanalysis [flags] <command> [args]
//
// Commands:
//
//	analyze    - Analyze a WAV clip for voice manipulation
//	batch      - Analyze many WAV clips with a worker pool
//	verify     - Verify a sealed report against its audio
//	report     - Inspect archived reports (show, query, export)
//	cache      - Manage the verdict cache (stats, prune)
//	version    - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/cmd/audioanalysis/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
