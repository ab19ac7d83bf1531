package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Request describes one analysis invocation loaded from a request file.
type Request struct {
	// Audio is the path of the clip to analyze.
	Audio string `yaml:"audio" json:"audio"`

	// AssetID overrides the identifier recorded in the verdict. Empty
	// derives it from the audio filename.
	AssetID string `yaml:"asset_id,omitempty" json:"asset_id,omitempty"`

	// Archive overrides the evidence archive URI for this clip.
	Archive string `yaml:"archive,omitempty" json:"archive,omitempty"`
}

// Validate checks that the request names an audio file.
func (r *Request) Validate() error {
	if r.Audio == "" {
		return fmt.Errorf("cli: request is missing the audio path")
	}
	return nil
}

// Manifest is a batch of analysis requests.
type Manifest struct {
	Requests []Request `yaml:"requests" json:"requests"`
}

// LoadRequest loads a request file into v, dispatching on the extension:
// .yaml and .yml parse as YAML, .json as JSON, anything else tries JSON
// first and YAML second.
func LoadRequest(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cli: read request file: %w", err)
	}
	return ParseRequest(data, path, v)
}

// ParseRequest parses request file contents into v. The path picks the
// decoder and labels errors.
func ParseRequest(data []byte, path string, v any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("cli: parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("cli: parse %s: %w", path, err)
		}
	default:
		if jsonErr := json.Unmarshal(data, v); jsonErr != nil {
			if yamlErr := yaml.Unmarshal(data, v); yamlErr != nil {
				return fmt.Errorf("cli: parse %s: not JSON (%v) nor YAML (%v)", path, jsonErr, yamlErr)
			}
		}
	}
	return nil
}

// LoadRequestFromStdin reads a request document from stdin, trying JSON
// first and YAML second.
func LoadRequestFromStdin(v any) error {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("cli: read stdin: %w", err)
	}
	return ParseRequest(data, "stdin", v)
}
