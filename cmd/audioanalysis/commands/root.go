package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/cache"
	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/cli"
	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/kv"
)

var (
	// Global flags
	cfgFile      string
	outputFormat string
	cacheDirFlag string
	logLevelFlag string
	verbose      bool

	// Global settings (loaded at init time)
	globalSettings *cli.Settings
	settingsErr    error

	styles = cli.NewStyles(cli.DefaultTheme)
)

var rootCmd = &cobra.Command{
	Use:   "audioanalysis",
	Short: "Forensic voice manipulation detection",
	Long: `audioanalysis - forensic detection of voice manipulation and AI synthesis.

Analysis decodes a WAV clip, establishes pitch and vocal tract baselines,
and runs four independent artifact detectors:

  pitch      pitch-formant incoherence (presented vs physical voice)
  time       phase decoherence and transient smearing
  spectral   synthesis artifacts in the mel spectrogram
  ai         AI voice scoring across six detection methods

Evidence is fused into a confidence-graded verdict, sealed with SHA-256
hashes of both the audio and the report, and optionally archived to a
local directory or an S3 bucket.

Settings are read from ~/.audioanalysis/config.yaml; AUDIOANALYSIS_*
environment variables override individual fields.

Examples:
  # Analyze a clip and print the text report
  audioanalysis analyze interview.wav

  # JSON verdict, archived to S3
  audioanalysis analyze interview.wav -o json --archive s3://evidence/cases

  # Analyze a directory with 8 workers and write a CSV summary
  audioanalysis batch ./clips --workers 8 --csv summary.csv

  # Verify a sealed report against the original audio
  audioanalysis verify report.json interview.wav`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. SIGINT and SIGTERM cancel the command
// context so in-flight batch work stops at the next job boundary.
func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		cancel()
	}()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initSettings)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.audioanalysis/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format: text, json or yaml")
	rootCmd.PersistentFlags().StringVar(&cacheDirFlag, "cache-dir", "", "verdict cache directory (default ~/.audioanalysis/cache)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func initSettings() {
	st, err := cli.LoadSettings(cfgFile)
	// Defer any error so commands that never touch settings, like
	// version, still run.
	settingsErr = err
	if err != nil {
		def := cli.DefaultSettings()
		st = &def
	}
	if cacheDirFlag != "" {
		st.CacheDir = cacheDirFlag
	}
	if logLevelFlag != "" {
		st.LogLevel = logLevelFlag
	}
	globalSettings = st

	level, err := st.Level()
	if err != nil && settingsErr == nil {
		settingsErr = err
	}
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// getSettings returns the loaded settings, or the load error deferred
// from startup.
func getSettings() (*cli.Settings, error) {
	if settingsErr != nil {
		return nil, fmt.Errorf("settings not available: %w", settingsErr)
	}
	return globalSettings, nil
}

// resolveFormat picks the output format: the -o flag wins over settings.
func resolveFormat(st *cli.Settings) (cli.OutputFormat, error) {
	if outputFormat != "" {
		return cli.ParseFormat(outputFormat)
	}
	return cli.ParseFormat(st.Output)
}

// openCache opens the verdict cache under the configured directory. The
// returned store must be closed when the command finishes.
func openCache(st *cli.Settings) (*cache.Cache, *kv.Badger, error) {
	dir, err := st.ResolveCacheDir()
	if err != nil {
		return nil, nil, err
	}
	store, err := kv.NewBadger(kv.BadgerOptions{Dir: dir})
	if err != nil {
		return nil, nil, fmt.Errorf("open verdict cache at %s: %w", dir, err)
	}
	age, err := st.CacheAge()
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return cache.New(store, cache.WithMaxAge(age)), store, nil
}

// assetIDFromPath derives an asset identifier from an audio file name.
func assetIDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// shortDigest abbreviates a hex digest for console output.
func shortDigest(h string) string {
	if len(h) <= 12 {
		return h
	}
	return h[:12]
}
