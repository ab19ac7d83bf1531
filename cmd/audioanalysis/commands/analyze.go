package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/aivoice"
	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/audio/wav"
	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/cache"
	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/cli"
	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/forensics"
	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/report"
	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/seal"
	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/storage"
)

var (
	analyzeFile    string
	analyzeAssetID string
	analyzeArchive string
	analyzeOut     string
	analyzeNoCache bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <audio.wav>",
	Short: "Analyze a WAV clip for voice manipulation",
	Long: `Analyze a WAV clip for voice manipulation and AI synthesis.

The clip is decoded, baselined, and run through the four artifact
detectors. The sealed verdict is rendered as text, JSON or YAML, served
from the verdict cache when the same audio bytes were analyzed before,
and archived when an archive URI is configured.

Examples:
  audioanalysis analyze interview.wav
  audioanalysis analyze interview.wav -o json
  audioanalysis analyze interview.wav --archive s3://evidence/cases
  audioanalysis analyze -f request.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFile, "file", "f", "", "request file (YAML or JSON; use '-' for stdin)")
	analyzeCmd.Flags().StringVar(&analyzeAssetID, "asset-id", "", "asset identifier (default: audio file name)")
	analyzeCmd.Flags().StringVar(&analyzeArchive, "archive", "", "evidence archive URI (overrides settings)")
	analyzeCmd.Flags().StringVar(&analyzeOut, "out", "", "write the rendered report to a file instead of stdout")
	analyzeCmd.Flags().BoolVar(&analyzeNoCache, "no-cache", false, "bypass the verdict cache")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	st, err := getSettings()
	if err != nil {
		return err
	}

	var req cli.Request
	switch {
	case analyzeFile == "-":
		if err := cli.LoadRequestFromStdin(&req); err != nil {
			return err
		}
	case analyzeFile != "":
		if err := cli.LoadRequest(analyzeFile, &req); err != nil {
			return err
		}
	}
	if len(args) == 1 {
		req.Audio = args[0]
	}
	if analyzeAssetID != "" {
		req.AssetID = analyzeAssetID
	}
	if analyzeArchive != "" {
		req.Archive = analyzeArchive
	}
	if req.Archive == "" {
		req.Archive = st.Archive
	}
	if err := req.Validate(); err != nil {
		return err
	}
	if req.AssetID == "" {
		req.AssetID = assetIDFromPath(req.Audio)
	}

	format, err := resolveFormat(st)
	if err != nil {
		return err
	}

	// A locked or corrupt cache must not block analysis; it only loses
	// the read-through optimization.
	var c *cache.Cache
	if !analyzeNoCache {
		cc, store, err := openCache(st)
		if err != nil {
			cli.PrintWarning("verdict cache unavailable, analyzing uncached: %v", err)
		} else {
			defer store.Close()
			c = cc
		}
	}

	rep, err := analyzeClip(cmd.Context(), newPipeline(), c, newArchiveSet(), req)
	if err != nil {
		return err
	}
	return emitReport(rep, format, analyzeOut, nil)
}

// newPipeline builds the analysis pipeline with the AI scorer wired in.
func newPipeline() *forensics.Pipeline {
	return forensics.NewPipeline(
		forensics.WithScorer(aivoice.NewDetector()),
		forensics.WithLogger(slog.Default()),
	)
}

// analyzeClip runs the whole chain for one request: decode, cache lookup,
// analysis, sealing, cache write, optional archive. A nil cache disables
// both cache reads and writes.
func analyzeClip(ctx context.Context, pipe *forensics.Pipeline, c *cache.Cache, archives *archiveSet, req cli.Request) (*report.Report, error) {
	start := time.Now()

	data, err := os.ReadFile(req.Audio)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	limits := wav.DefaultLimits()
	if limits.MaxBytes > 0 && int64(len(data)) > limits.MaxBytes {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", wav.ErrTooLarge, len(data), limits.MaxBytes)
	}

	digest := seal.AudioDigest(data)
	if c != nil {
		doc, err := c.Get(ctx, digest)
		if err != nil {
			slog.Warn("verdict cache read failed", "asset_id", req.AssetID, "error", err)
		}
		if doc != nil {
			s, err := seal.Sign(doc, data)
			if err != nil {
				return nil, err
			}
			slog.Info("verdict served from cache",
				"asset_id", req.AssetID,
				"digest", shortDigest(digest))
			rep := &report.Report{Document: *doc, Seal: s}
			return rep, archiveReport(ctx, archives, req.Archive, rep)
		}
	}

	clip, err := wav.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if limits.MaxDuration > 0 && clip.Duration() > limits.MaxDuration {
		return nil, fmt.Errorf("%w: %s (limit %s)", wav.ErrTooLong, clip.Duration(), limits.MaxDuration)
	}
	slog.Debug("clip decoded",
		"asset_id", req.AssetID,
		"size", cli.FormatBytes(int64(len(data))),
		"duration", cli.FormatDuration(clip.Duration()),
		"sample_rate", clip.SampleRate)

	v, err := pipe.Analyze(req.AssetID, clip.Samples, clip.SampleRate)
	if err != nil {
		return nil, err
	}
	doc := v.Document()
	slog.Debug("baselines established",
		"asset_id", req.AssetID,
		"f0", cli.FormatHz(doc.F0Baseline),
		"f1", cli.FormatHz(doc.FormantBaseline.F1),
		"f2", cli.FormatHz(doc.FormantBaseline.F2))

	s, err := seal.Sign(&doc, data)
	if err != nil {
		return nil, err
	}
	rep := report.New(v, s)

	if c != nil {
		if err := c.Put(ctx, digest, doc); err != nil {
			slog.Warn("verdict cache write failed", "asset_id", req.AssetID, "error", err)
		}
	}
	slog.Info("analysis finished",
		"asset_id", req.AssetID,
		"alteration_detected", doc.AlterationDetected,
		"confidence", doc.Confidence.Score,
		"elapsed", cli.FormatDuration(time.Since(start)))

	return rep, archiveReport(ctx, archives, req.Archive, rep)
}

// archiveReport writes the sealed report to the archive URI, when one is
// configured.
func archiveReport(ctx context.Context, archives *archiveSet, uri string, rep *report.Report) error {
	if uri == "" {
		return nil
	}
	fs, err := archives.get(uri)
	if err != nil {
		return err
	}
	if err := storage.Archive(ctx, fs, rep); err != nil {
		return err
	}
	slog.Info("report archived", "asset_id", rep.Document.AssetID, "uri", uri)
	return nil
}

// emitReport renders a finished report in the requested format. Text
// output gets a styled verdict banner ahead of the report body.
func emitReport(rep *report.Report, format cli.OutputFormat, file string, w io.Writer) error {
	if format == cli.FormatText {
		var b bytes.Buffer
		if file == "" {
			doc := &rep.Document
			fmt.Fprintln(&b, styles.Banner(doc.AlterationDetected, doc.Confidence.Label, doc.Confidence.Score))
		}
		if err := report.RenderText(&b, rep); err != nil {
			return err
		}
		return cli.OutputBytes(b.Bytes(), cli.OutputOptions{File: file, Writer: w})
	}
	return cli.Output(rep, cli.OutputOptions{Format: format, File: file, Writer: w})
}

// archiveSet lazily opens archive stores, one per URI. Batch manifests
// may fan out to more than one archive.
type archiveSet struct {
	mu sync.Mutex
	m  map[string]storage.FileStore
}

func newArchiveSet() *archiveSet {
	return &archiveSet{m: make(map[string]storage.FileStore)}
}

func (a *archiveSet) get(uri string) (storage.FileStore, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if fs, ok := a.m[uri]; ok {
		return fs, nil
	}
	fs, err := storage.Open(uri)
	if err != nil {
		return nil, err
	}
	a.m[uri] = fs
	return fs, nil
}
