package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
)

// OutputFormat selects how command results are rendered.
type OutputFormat string

// Supported output formats.
const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
)

// ParseFormat validates an output format flag. Empty means text.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("cli: unknown output format %q (want text, json or yaml)", s)
	}
}

// OutputOptions configures Output.
type OutputOptions struct {
	// Format selects the encoding. FormatText is not encoded here:
	// commands render their own text.
	Format OutputFormat

	// File receives the output when set.
	File string

	// Writer receives the output when File is empty. Nil means stdout.
	Writer io.Writer

	// Compact disables JSON indentation.
	Compact bool
}

// Output encodes v in the requested format and writes it to the configured
// destination.
func Output(v any, opts OutputOptions) error {
	var data []byte
	switch opts.Format {
	case FormatJSON:
		var err error
		if opts.Compact {
			data, err = json.Marshal(v)
		} else {
			data, err = json.MarshalIndent(v, "", "  ")
		}
		if err != nil {
			return fmt.Errorf("cli: encode json: %w", err)
		}
		data = append(data, '\n')
	case FormatYAML:
		// Round-trip through JSON so yaml output uses the same field
		// names as json output; result types carry json tags only.
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("cli: encode yaml: %w", err)
		}
		data, err = yaml.JSONToYAML(raw)
		if err != nil {
			return fmt.Errorf("cli: encode yaml: %w", err)
		}
	default:
		return fmt.Errorf("cli: format %q has no generic encoding", opts.Format)
	}
	return OutputBytes(data, opts)
}

// OutputBytes writes already-rendered output to the configured destination.
func OutputBytes(data []byte, opts OutputOptions) error {
	if opts.File != "" {
		if err := os.WriteFile(opts.File, data, 0o644); err != nil {
			return fmt.Errorf("cli: write %s: %w", opts.File, err)
		}
		return nil
	}
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("cli: write output: %w", err)
	}
	return nil
}

// PrintSuccess prints a success message to stdout.
func PrintSuccess(format string, args ...any) {
	fmt.Printf("✓ "+format+"\n", args...)
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// PrintInfo prints an informational message to stdout.
func PrintInfo(format string, args ...any) {
	fmt.Printf("ℹ "+format+"\n", args...)
}

// PrintWarning prints a warning to stderr.
func PrintWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "⚠ "+format+"\n", args...)
}
