package commands

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/cli"
	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/report"
	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/storage"
)

var (
	reportArchive string
	exportFormat  string
	exportOut     string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Inspect archived analysis reports",
	Long: `Inspect reports in the evidence archive.

The archive URI comes from settings or the --archive flag: a local
directory, a file:// URI, or s3://bucket/prefix.

Examples:
  audioanalysis report show case-7
  audioanalysis report query case-7 '.confidence.score'
  audioanalysis report export case-7 --format md --out case-7.md`,
}

var reportShowCmd = &cobra.Command{
	Use:   "show <asset-id>",
	Short: "Show an archived report",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportShow,
}

var reportQueryCmd = &cobra.Command{
	Use:   "query <asset-id> <expression>",
	Short: "Query an archived report with a jq expression",
	Long: `Run a jq expression against the verdict document of an archived
report. Each result prints as one line of compact JSON.

Examples:
  audioanalysis report query case-7 '.confidence.score'
  audioanalysis report query case-7 '.evidence | keys'
  audioanalysis report query case-7 'select(.alteration_detected) | .summary'`,
	Args: cobra.ExactArgs(2),
	RunE: runReportQuery,
}

var reportExportCmd = &cobra.Command{
	Use:   "export <asset-id>",
	Short: "Export an archived report as Markdown or CSV",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportExport,
}

func init() {
	reportCmd.PersistentFlags().StringVar(&reportArchive, "archive", "", "evidence archive URI (overrides settings)")
	reportExportCmd.Flags().StringVar(&exportFormat, "format", "md", "export format: md or csv")
	reportExportCmd.Flags().StringVar(&exportOut, "out", "", "write to a file instead of stdout")
	reportCmd.AddCommand(reportShowCmd)
	reportCmd.AddCommand(reportQueryCmd)
	reportCmd.AddCommand(reportExportCmd)
	rootCmd.AddCommand(reportCmd)
}

// openArchive resolves the archive URI from the flag or settings.
func openArchive(st *cli.Settings) (storage.FileStore, error) {
	uri := reportArchive
	if uri == "" {
		uri = st.Archive
	}
	if uri == "" {
		return nil, fmt.Errorf("no archive configured: set archive in the config file or pass --archive")
	}
	return storage.Open(uri)
}

func runReportShow(cmd *cobra.Command, args []string) error {
	st, err := getSettings()
	if err != nil {
		return err
	}
	fs, err := openArchive(st)
	if err != nil {
		return err
	}
	rep, err := storage.ReadReport(cmd.Context(), fs, args[0])
	if err != nil {
		return err
	}
	format, err := resolveFormat(st)
	if err != nil {
		return err
	}
	return emitReport(rep, format, "", nil)
}

func runReportQuery(cmd *cobra.Command, args []string) error {
	st, err := getSettings()
	if err != nil {
		return err
	}
	q, err := report.ParseQuery(args[1])
	if err != nil {
		return err
	}
	fs, err := openArchive(st)
	if err != nil {
		return err
	}
	rep, err := storage.ReadReport(cmd.Context(), fs, args[0])
	if err != nil {
		return err
	}
	results, err := q.Run(&rep.Document)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Println(r)
	}
	return nil
}

func runReportExport(cmd *cobra.Command, args []string) error {
	st, err := getSettings()
	if err != nil {
		return err
	}
	fs, err := openArchive(st)
	if err != nil {
		return err
	}
	rep, err := storage.ReadReport(cmd.Context(), fs, args[0])
	if err != nil {
		return err
	}

	var b bytes.Buffer
	switch exportFormat {
	case "md", "markdown":
		if err := report.RenderMarkdown(&b, rep); err != nil {
			return err
		}
	case "csv":
		if err := report.WriteCSVSummary(&b, []*report.Report{rep}); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown export format %q (want md or csv)", exportFormat)
	}
	if err := cli.OutputBytes(b.Bytes(), cli.OutputOptions{File: exportOut}); err != nil {
		return err
	}
	if exportOut != "" {
		cli.PrintSuccess("report exported to %s", exportOut)
	}
	return nil
}
