package cli

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	if s.Workers != 4 {
		t.Errorf("Workers = %d, want 4", s.Workers)
	}
	if s.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", s.LogLevel, "info")
	}
	if s.Output != "text" {
		t.Errorf("Output = %q, want %q", s.Output, "text")
	}

	age, err := s.CacheAge()
	if err != nil {
		t.Fatalf("CacheAge: %v", err)
	}
	if age != 24*time.Hour {
		t.Errorf("CacheAge = %s, want 24h", age)
	}

	if err := s.Validate(); err != nil {
		t.Errorf("Validate on defaults: %v", err)
	}
}

func TestDefaultSettings_Options(t *testing.T) {
	s := DefaultSettings(
		WithCacheDir("/var/forensics/cache"),
		WithCacheMaxAge(48*time.Hour),
		WithArchive("s3://evidence/cases"),
		WithWorkers(8),
		WithLogLevel("debug"),
		WithOutput("json"),
	)

	if s.CacheDir != "/var/forensics/cache" {
		t.Errorf("CacheDir = %q", s.CacheDir)
	}
	if age, err := s.CacheAge(); err != nil || age != 48*time.Hour {
		t.Errorf("CacheAge = %v, %v, want 48h", age, err)
	}
	if s.Archive != "s3://evidence/cases" {
		t.Errorf("Archive = %q", s.Archive)
	}
	if s.Workers != 8 {
		t.Errorf("Workers = %d, want 8", s.Workers)
	}
	if s.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", s.LogLevel)
	}
	if s.Output != "json" {
		t.Errorf("Output = %q, want json", s.Output)
	}
}

func TestLoadSettings_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "cache_dir: /var/forensics/cache\nworkers: 2\noutput: yaml\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.CacheDir != "/var/forensics/cache" {
		t.Errorf("CacheDir = %q", s.CacheDir)
	}
	if s.Workers != 2 {
		t.Errorf("Workers = %d, want 2", s.Workers)
	}
	if s.Output != "yaml" {
		t.Errorf("Output = %q, want yaml", s.Output)
	}
	if s.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want default info", s.LogLevel)
	}
}

func TestLoadSettings_MissingExplicitFile(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("LoadSettings with a missing explicit path should fail")
	}
}

func TestLoadSettings_MissingDefaultFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	s, err := LoadSettings("")
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.Workers != 4 || s.Output != "text" {
		t.Errorf("missing default file should yield defaults, got %+v", s)
	}
}

func TestLoadSettings_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("workers: 2\nlog_level: warn\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("AUDIOANALYSIS_WORKERS", "6")
	t.Setenv("AUDIOANALYSIS_OUTPUT", "json")
	t.Setenv("AUDIOANALYSIS_CACHE_MAX_AGE", "90m")

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.Workers != 6 {
		t.Errorf("Workers = %d, want env override 6", s.Workers)
	}
	if s.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want file value warn", s.LogLevel)
	}
	if s.Output != "json" {
		t.Errorf("Output = %q, want env override json", s.Output)
	}
	if age, _ := s.CacheAge(); age != 90*time.Minute {
		t.Errorf("CacheAge = %s, want 90m", age)
	}
}

func TestLoadSettings_BadEnvWorkers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("workers: 2\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("AUDIOANALYSIS_WORKERS", "many")

	_, err := LoadSettings(path)
	if err == nil || !strings.Contains(err.Error(), "WORKERS") {
		t.Fatalf("LoadSettings = %v, want WORKERS parse error", err)
	}
}

func TestLoadSettings_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("workers: [1,"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadSettings(path); err == nil {
		t.Fatal("LoadSettings should reject malformed YAML")
	}
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"defaults", func(*Settings) {}, false},
		{"zero workers", func(s *Settings) { s.Workers = 0 }, true},
		{"bad duration", func(s *Settings) { s.CacheMaxAge = "soon" }, true},
		{"negative duration", func(s *Settings) { s.CacheMaxAge = "-1h" }, true},
		{"bad level", func(s *Settings) { s.LogLevel = "loud" }, true},
		{"bad output", func(s *Settings) { s.Output = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSettings_Level(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"info", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"WARN", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			s := Settings{LogLevel: tt.in}
			got, err := s.Level()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Level(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Level(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSettings_ResolveCacheDir_Explicit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	s := DefaultSettings(WithCacheDir(dir))

	got, err := s.ResolveCacheDir()
	if err != nil {
		t.Fatalf("ResolveCacheDir: %v", err)
	}
	if got != dir {
		t.Errorf("ResolveCacheDir = %q, want %q", got, dir)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Errorf("cache dir not created: %v", err)
	}
}

func TestSettings_ResolveCacheDir_Default(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	s := DefaultSettings()
	got, err := s.ResolveCacheDir()
	if err != nil {
		t.Fatalf("ResolveCacheDir: %v", err)
	}
	want := filepath.Join(home, DefaultBaseDir, "cache")
	if got != want {
		t.Errorf("ResolveCacheDir = %q, want %q", got, want)
	}
}

func TestSettings_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")
	s := DefaultSettings(WithWorkers(3), WithArchive("file:///mnt/evidence"))

	if err := s.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config file mode = %o, want 600", perm)
	}

	got, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if got.Workers != 3 {
		t.Errorf("Workers = %d, want 3", got.Workers)
	}
	if got.Archive != "file:///mnt/evidence" {
		t.Errorf("Archive = %q", got.Archive)
	}
}
