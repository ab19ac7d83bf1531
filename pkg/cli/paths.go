package cli

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths resolves the per-user directories of the audioanalysis tool. All
// of them live under ~/.audioanalysis.
type Paths struct {
	// HomeDir is the user home directory. Tests point it at a temp dir.
	HomeDir string
}

// NewPaths resolves the current user's home directory.
func NewPaths() (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cli: resolve home directory: %w", err)
	}
	return &Paths{HomeDir: home}, nil
}

// BaseDir is the tool's root directory.
func (p *Paths) BaseDir() string {
	return filepath.Join(p.HomeDir, DefaultBaseDir)
}

// ConfigFile is the default settings file location.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.BaseDir(), DefaultConfigName)
}

// CacheDir is the default verdict cache location.
func (p *Paths) CacheDir() string {
	return filepath.Join(p.BaseDir(), "cache")
}

// EnsureBaseDir creates the base directory if it does not exist.
func (p *Paths) EnsureBaseDir() error {
	if err := os.MkdirAll(p.BaseDir(), 0o755); err != nil {
		return fmt.Errorf("cli: create base directory: %w", err)
	}
	return nil
}

// EnsureCacheDir creates the cache directory and returns its path.
func (p *Paths) EnsureCacheDir() (string, error) {
	dir := p.CacheDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("cli: create cache directory: %w", err)
	}
	return dir, nil
}
