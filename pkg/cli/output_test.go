package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"json", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"xml", "", true},
		{"table", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	v := map[string]any{"asset_id": "case-1", "confidence": 0.95}

	if err := Output(v, OutputOptions{Format: FormatJSON, Writer: &buf}); err != nil {
		t.Fatalf("Output: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got["asset_id"] != "case-1" {
		t.Errorf("asset_id = %v", got["asset_id"])
	}
	if !strings.Contains(buf.String(), "\n  \"") {
		t.Error("default JSON output should be indented")
	}
}

func TestOutput_JSONCompact(t *testing.T) {
	var buf bytes.Buffer
	v := map[string]any{"asset_id": "case-1"}

	if err := Output(v, OutputOptions{Format: FormatJSON, Writer: &buf, Compact: true}); err != nil {
		t.Fatalf("Output: %v", err)
	}
	if got := strings.Count(buf.String(), "\n"); got != 1 {
		t.Errorf("compact JSON has %d newlines, want 1: %q", got, buf.String())
	}
}

func TestOutput_YAML(t *testing.T) {
	var buf bytes.Buffer
	v := map[string]any{"asset_id": "case-1", "alteration_detected": true}

	if err := Output(v, OutputOptions{Format: FormatYAML, Writer: &buf}); err != nil {
		t.Fatalf("Output: %v", err)
	}
	if !strings.Contains(buf.String(), "asset_id: case-1") {
		t.Errorf("unexpected YAML: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "alteration_detected: true") {
		t.Errorf("unexpected YAML: %q", buf.String())
	}
}

func TestOutput_TextHasNoGenericEncoding(t *testing.T) {
	err := Output(map[string]any{}, OutputOptions{Format: FormatText, Writer: &bytes.Buffer{}})
	if err == nil {
		t.Fatal("Output with FormatText should fail; commands render their own text")
	}
}

func TestOutput_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	v := map[string]any{"asset_id": "case-2"}

	if err := Output(v, OutputOptions{Format: FormatJSON, File: path}); err != nil {
		t.Fatalf("Output: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"asset_id": "case-2"`) {
		t.Errorf("file content = %q", data)
	}
}

func TestOutputBytes_Writer(t *testing.T) {
	var buf bytes.Buffer
	if err := OutputBytes([]byte("rendered report\n"), OutputOptions{Writer: &buf}); err != nil {
		t.Fatalf("OutputBytes: %v", err)
	}
	if buf.String() != "rendered report\n" {
		t.Errorf("OutputBytes wrote %q", buf.String())
	}
}
