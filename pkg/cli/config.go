package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// Default locations and the environment prefix for overrides.
const (
	DefaultBaseDir    = ".audioanalysis"
	DefaultConfigName = "config.yaml"
	EnvPrefix         = "AUDIOANALYSIS_"
)

// Settings is the operator-facing configuration of the audioanalysis tool.
// Zero values select the built-in defaults.
type Settings struct {
	// CacheDir holds the verdict cache. Empty selects
	// ~/.audioanalysis/cache.
	CacheDir string `yaml:"cache_dir,omitempty"`

	// CacheMaxAge is how long cached verdicts stay servable, in
	// time.ParseDuration syntax, for example "24h" or "30m".
	CacheMaxAge string `yaml:"cache_max_age,omitempty"`

	// Archive is the evidence archive URI used when a command does not
	// pass one explicitly: a local path, a file:// URI, or
	// s3://bucket/prefix. Empty disables archiving.
	Archive string `yaml:"archive,omitempty"`

	// Workers is the batch parallelism.
	Workers int `yaml:"workers,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level,omitempty"`

	// Output is the default rendering: text, json or yaml.
	Output string `yaml:"output,omitempty"`
}

// Option mutates Settings during programmatic construction.
type Option func(*Settings)

// WithCacheDir places the verdict cache at dir.
func WithCacheDir(dir string) Option {
	return func(s *Settings) { s.CacheDir = dir }
}

// WithCacheMaxAge bounds the verdict cache age.
func WithCacheMaxAge(d time.Duration) Option {
	return func(s *Settings) { s.CacheMaxAge = d.String() }
}

// WithArchive sets the default evidence archive URI.
func WithArchive(uri string) Option {
	return func(s *Settings) { s.Archive = uri }
}

// WithWorkers sets the batch parallelism.
func WithWorkers(n int) Option {
	return func(s *Settings) { s.Workers = n }
}

// WithLogLevel sets the log verbosity.
func WithLogLevel(level string) Option {
	return func(s *Settings) { s.LogLevel = level }
}

// WithOutput sets the default output format.
func WithOutput(format string) Option {
	return func(s *Settings) { s.Output = format }
}

// DefaultSettings returns the built-in configuration, adjusted by opts.
func DefaultSettings(opts ...Option) Settings {
	s := Settings{
		CacheMaxAge: "24h",
		Workers:     4,
		LogLevel:    "info",
		Output:      "text",
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// LoadSettings reads settings from path, or from ~/.audioanalysis/config.yaml
// when path is empty. A missing default file yields DefaultSettings; a
// missing explicit file is an error. AUDIOANALYSIS_* environment variables
// override file values afterwards.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()
	explicit := path != ""
	if !explicit {
		paths, err := NewPaths()
		if err != nil {
			return nil, err
		}
		path = paths.ConfigFile()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("cli: parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// First run without a config file.
	default:
		return nil, fmt.Errorf("cli: read config: %w", err)
	}

	if err := s.applyEnv(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// applyEnv overrides scalar fields from AUDIOANALYSIS_* variables.
func (s *Settings) applyEnv() error {
	if v, ok := os.LookupEnv(EnvPrefix + "CACHE_DIR"); ok {
		s.CacheDir = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "CACHE_MAX_AGE"); ok {
		s.CacheMaxAge = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "ARCHIVE"); ok {
		s.Archive = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("cli: %sWORKERS: %w", EnvPrefix, err)
		}
		s.Workers = n
	}
	if v, ok := os.LookupEnv(EnvPrefix + "LOG_LEVEL"); ok {
		s.LogLevel = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "OUTPUT"); ok {
		s.Output = v
	}
	return nil
}

// Validate reports the first unusable field value.
func (s *Settings) Validate() error {
	if s.Workers < 1 {
		return fmt.Errorf("cli: workers must be at least 1, got %d", s.Workers)
	}
	if _, err := s.CacheAge(); err != nil {
		return err
	}
	if _, err := s.Level(); err != nil {
		return err
	}
	if _, err := ParseFormat(s.Output); err != nil {
		return err
	}
	return nil
}

// CacheAge parses CacheMaxAge, defaulting to 24h when unset.
func (s *Settings) CacheAge() (time.Duration, error) {
	if s.CacheMaxAge == "" {
		return 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s.CacheMaxAge)
	if err != nil {
		return 0, fmt.Errorf("cli: cache_max_age: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("cli: cache_max_age must be positive, got %s", s.CacheMaxAge)
	}
	return d, nil
}

// Level maps LogLevel onto slog. Empty means info.
func (s *Settings) Level() (slog.Level, error) {
	switch strings.ToLower(s.LogLevel) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("cli: unknown log level %q", s.LogLevel)
	}
}

// ResolveCacheDir returns the cache directory, creating it if needed. An
// unset CacheDir resolves under the user base directory.
func (s *Settings) ResolveCacheDir() (string, error) {
	if s.CacheDir != "" {
		if err := os.MkdirAll(s.CacheDir, 0o755); err != nil {
			return "", fmt.Errorf("cli: create cache directory: %w", err)
		}
		return s.CacheDir, nil
	}
	paths, err := NewPaths()
	if err != nil {
		return "", err
	}
	return paths.EnsureCacheDir()
}

// Save writes the settings to path with owner-only permissions.
func (s *Settings) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("cli: encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cli: create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("cli: write config: %w", err)
	}
	return nil
}
