package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/cli"
	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/report"
	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/seal"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <report.json> <audio.wav>",
	Short: "Verify a sealed report against its audio",
	Long: `Verify that neither the audio nor the report changed since sealing.

The audio hash is checked first: a mismatch there means the recording
itself differs from the one analyzed, and the report hash is not
consulted. A report hash mismatch means the verdict document was edited
after sealing.

Exit status is non-zero when either check fails.

Examples:
  audioanalysis verify report.json interview.wav`,
	Args: cobra.ExactArgs(2),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open report: %w", err)
	}
	rep, err := report.DecodeJSON(f)
	f.Close()
	if err != nil {
		return err
	}
	if rep.Seal == nil {
		return fmt.Errorf("report %s is not sealed", args[0])
	}

	audio, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("read audio: %w", err)
	}

	err = seal.Verify(rep.Seal, &rep.Document, audio)
	switch {
	case errors.Is(err, seal.ErrAudioModified):
		cli.PrintError("audio does not match the sealed recording: %s", args[1])
		return err
	case errors.Is(err, seal.ErrReportTampered):
		cli.PrintError("report was modified after sealing: %s", args[0])
		return err
	case err != nil:
		return err
	}

	cli.PrintSuccess("seal verified: asset %s, audio %s, report %s",
		rep.Document.AssetID,
		shortDigest(rep.Seal.AudioSHA256),
		shortDigest(rep.Seal.ReportSHA256))
	return nil
}
