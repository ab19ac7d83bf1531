// Package cli provides shared plumbing for the audioanalysis command-line
// tool.
//
// This package includes:
//   - Settings loading (YAML file plus AUDIOANALYSIS_* env overrides)
//   - Output formatting (text, JSON, YAML)
//   - Request file loading (YAML/JSON)
//   - Console styling for verdict rendering
//
// Settings live in ~/.audioanalysis/config.yaml by default; every scalar
// field can be overridden by an AUDIOANALYSIS_-prefixed environment
// variable.
//
// Example usage:
//
//	// Load settings, falling back to defaults when no file exists.
//	st, err := cli.LoadSettings("")
//
//	// Output result
//	cli.Output(result, cli.OutputOptions{
//	    Format: cli.FormatJSON,
//	    File:   outputPath,
//	})
package cli
