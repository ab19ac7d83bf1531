package commands

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/audio/wav"
	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/forensics"
)

// setupTestEnv points HOME at a fresh directory so settings, cache, and
// default paths never touch the real user environment.
func setupTestEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	globalSettings = nil
	settingsErr = nil
	return home
}

// runCmd executes the root command with captured stdout and stderr.
func runCmd(t *testing.T, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()

	oldStdout := os.Stdout
	oldStderr := os.Stderr

	rOut, wOut, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	rErr, wErr, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = wOut
	os.Stderr = wErr

	rootCmd.SetArgs(args)
	execErr := rootCmd.Execute()

	wOut.Close()
	wErr.Close()
	os.Stdout = oldStdout
	os.Stderr = oldStderr

	var outBuf, errBuf bytes.Buffer
	outBuf.ReadFrom(rOut)
	errBuf.ReadFrom(rErr)

	stdout = outBuf.String()
	stderr = errBuf.String()
	if execErr != nil {
		exitCode = 1
		if stderr == "" {
			stderr = execErr.Error()
		}
	}

	resetFlags(rootCmd)
	return
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Changed = false
		f.Value.Set(f.DefValue)
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// testDocument builds a minimal verdict document for render-level tests.
func testDocument(assetID string, detected bool, label string, score float64) *forensics.Document {
	return &forensics.Document{
		AssetID:            assetID,
		AlterationDetected: detected,
		Confidence:         forensics.ConfidenceDoc{Score: score, Label: label},
		PresentedSex:       "Male",
		ProbableSex:        "Male",
		Summary:            "NO MANIPULATION DETECTED: Voice characteristics appear consistent",
	}
}

// writeTestClip synthesizes a short voiced clip at the given fundamental
// and writes it as a WAV file.
func writeTestClip(t *testing.T, dir, name string, f0 float64) string {
	t.Helper()
	const (
		rate = 8000
		dur  = 1.5
	)
	n := int(dur * rate)
	samples := make([]float64, n)
	for i := range samples {
		ts := float64(i) / rate
		samples[i] = 0.4*math.Sin(2*math.Pi*f0*ts) + 0.2*math.Sin(2*math.Pi*2*f0*ts)
	}
	path := filepath.Join(dir, name)
	if err := wav.EncodeFile(path, samples, rate); err != nil {
		t.Fatal(err)
	}
	return path
}
