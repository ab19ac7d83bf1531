package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/cache"
	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/cli"
	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/forensics"
	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/jobs"
	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/kv"
	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/report"
	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/seal"
)

var (
	batchManifest string
	batchGlob     string
	batchWorkers  int
	batchCSV      string
	batchArchive  string
	batchNoCache  bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Analyze many WAV clips with a worker pool",
	Long: `Analyze every matching WAV clip in a directory, or every request in
a manifest file, with a bounded worker pool.

Each clip becomes a job. Failures are recorded on the job and do not
stop the batch; the command exits non-zero when any clip failed. The
per-job summary prints in submission order, and --csv writes a
machine-readable summary of the completed verdicts.

Examples:
  audioanalysis batch ./clips
  audioanalysis batch ./clips --workers 8 --glob "*.wav"
  audioanalysis batch -f manifest.yaml --csv summary.csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchManifest, "file", "f", "", "manifest file listing requests (YAML or JSON)")
	batchCmd.Flags().StringVar(&batchGlob, "glob", "*.wav", "file pattern within the directory")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "parallel workers (default from settings)")
	batchCmd.Flags().StringVar(&batchCSV, "csv", "", "write a CSV summary to this file")
	batchCmd.Flags().StringVar(&batchArchive, "archive", "", "evidence archive URI (overrides settings and manifest)")
	batchCmd.Flags().BoolVar(&batchNoCache, "no-cache", false, "bypass the verdict cache")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	st, err := getSettings()
	if err != nil {
		return err
	}

	requests, err := collectRequests(st, args)
	if err != nil {
		return err
	}

	workers := batchWorkers
	if workers <= 0 {
		workers = st.Workers
	}

	// A locked or corrupt cache must not block analysis; it only loses
	// the read-through optimization.
	var c *cache.Cache
	var ledger kv.Store
	if !batchNoCache {
		cc, store, err := openCache(st)
		if err != nil {
			cli.PrintWarning("verdict cache unavailable, analyzing uncached: %v", err)
		} else {
			defer store.Close()
			c = cc
			ledger = store
		}
	}

	pipe := newPipeline()
	archives := newArchiveSet()
	queue := jobs.NewQueue()
	reqByJob := make(map[string]cli.Request, len(requests))
	ids := make([]string, 0, len(requests))
	for _, req := range requests {
		job := queue.Submit(req.AssetID, req.Audio)
		ids = append(ids, job.ID)
		reqByJob[job.ID] = req
	}

	cli.PrintInfo("analyzing %d clips with %d workers", len(requests), workers)
	start := time.Now()
	runner := jobs.NewRunner(queue,
		func(ctx context.Context, job jobs.Job) (*forensics.Document, error) {
			rep, err := analyzeClip(ctx, pipe, c, archives, reqByJob[job.ID])
			if err != nil {
				return nil, err
			}
			return &rep.Document, nil
		},
		jobs.WithWorkers(workers),
		jobs.WithLogger(slog.Default()),
	)
	if err := runner.Run(cmd.Context(), ids); err != nil {
		return err
	}

	// List returns newest first; print in submission order.
	all := queue.List(jobs.ListQuery{Limit: len(ids)})
	var completed, failed int
	for i := len(all) - 1; i >= 0; i-- {
		j := all[i]
		switch j.Status {
		case jobs.StatusCompleted:
			completed++
			fmt.Printf("%s  %-24s %s\n", styles.StatusBadge(string(j.Status)), j.AssetID, verdictLine(j.Result))
		case jobs.StatusFailed:
			failed++
			fmt.Printf("%s  %-24s %s\n", styles.StatusBadge(string(j.Status)), j.AssetID, j.Error)
		default:
			fmt.Printf("%s  %s\n", styles.StatusBadge(string(j.Status)), j.AssetID)
		}
	}
	fmt.Println(styles.Rule(56))
	fmt.Printf("%d analyzed, %d failed in %s\n", completed, failed, cli.FormatDuration(time.Since(start)))

	// Keep an audit trail of finished jobs next to the verdict cache.
	if ledger != nil {
		if n, err := queue.Archive(cmd.Context(), ledger); err != nil {
			slog.Warn("job ledger archive failed", "error", err)
		} else if n > 0 {
			slog.Debug("job ledger archived", "jobs", n)
		}
	}

	if batchCSV != "" {
		if err := writeBatchCSV(batchCSV, all); err != nil {
			return err
		}
		cli.PrintSuccess("CSV summary written to %s", batchCSV)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d clips failed", failed, len(ids))
	}
	return nil
}

// collectRequests gathers the batch inputs from the manifest file and the
// directory glob, normalizing asset ids and archive URIs.
func collectRequests(st *cli.Settings, args []string) ([]cli.Request, error) {
	var requests []cli.Request
	if batchManifest != "" {
		var m cli.Manifest
		if err := cli.LoadRequest(batchManifest, &m); err != nil {
			return nil, err
		}
		requests = append(requests, m.Requests...)
	}
	if len(args) == 1 {
		matches, err := filepath.Glob(filepath.Join(args[0], batchGlob))
		if err != nil {
			return nil, fmt.Errorf("bad --glob pattern %q: %w", batchGlob, err)
		}
		for _, m := range matches {
			requests = append(requests, cli.Request{Audio: m})
		}
	}
	if len(requests) == 0 {
		return nil, fmt.Errorf("no clips to analyze")
	}

	for i := range requests {
		if err := requests[i].Validate(); err != nil {
			return nil, err
		}
		if requests[i].AssetID == "" {
			requests[i].AssetID = assetIDFromPath(requests[i].Audio)
		}
		if batchArchive != "" {
			requests[i].Archive = batchArchive
		} else if requests[i].Archive == "" {
			requests[i].Archive = st.Archive
		}
	}
	return requests, nil
}

// verdictLine summarizes a completed verdict for the batch listing.
func verdictLine(doc *forensics.Document) string {
	state := "clean"
	if doc.AlterationDetected {
		state = "ALTERED"
	}
	return fmt.Sprintf("%s  %s (%.2f)", state, doc.Confidence.Label, doc.Confidence.Score)
}

// writeBatchCSV writes the completed verdicts, in submission order, as a
// CSV summary.
func writeBatchCSV(path string, all []jobs.Job) error {
	var reports []*report.Report
	for i := len(all) - 1; i >= 0; i-- {
		j := all[i]
		if j.Status != jobs.StatusCompleted || j.Result == nil {
			continue
		}
		reports = append(reports, &report.Report{
			Document: *j.Result,
			Detail: &report.Detail{
				AnalyzedAt:      j.CompletedAt,
				PipelineVersion: seal.PipelineVersion,
			},
		})
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := report.WriteCSVSummary(f, reports); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
