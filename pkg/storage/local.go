package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Local implements FileStore on a directory tree. Writes are atomic:
// data lands in a hidden partial file and is renamed into place on
// Close, so a crash mid-archive never leaves a half-written report
// where a complete one is expected.
type Local struct {
	root string
}

// NewLocal creates a Local store rooted at dir, creating the directory
// (with parents) if needed.
func NewLocal(dir string) (*Local, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create %s: %w", abs, err)
	}
	return &Local{root: abs}, nil
}

// Root returns the absolute directory the store writes under.
func (l *Local) Root() string {
	return l.root
}

func (l *Local) resolve(path string) string {
	return filepath.Join(l.root, filepath.FromSlash(path))
}

func (l *Local) Read(_ context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(l.resolve(path))
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (l *Local) Write(_ context.Context, path string) (io.WriteCloser, error) {
	final := l.resolve(path)
	if err := os.MkdirAll(filepath.Dir(final), 0o755); err != nil {
		return nil, err
	}
	partial := filepath.Join(filepath.Dir(final), "."+filepath.Base(final)+".partial")
	f, err := os.Create(partial)
	if err != nil {
		return nil, err
	}
	return &localWriter{f: f, partial: partial, final: final}, nil
}

func (l *Local) Delete(_ context.Context, path string) error {
	err := os.Remove(l.resolve(path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (l *Local) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(l.resolve(path))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// localWriter stages content in a partial file and publishes it on
// Close. Any failure removes the partial file and leaves the previous
// content of the destination untouched.
type localWriter struct {
	f       *os.File
	partial string
	final   string
}

func (w *localWriter) Write(p []byte) (int, error) {
	return w.f.Write(p)
}

func (w *localWriter) Close() error {
	syncErr := w.f.Sync()
	closeErr := w.f.Close()
	if err := errors.Join(syncErr, closeErr); err != nil {
		os.Remove(w.partial)
		return err
	}
	if err := os.Rename(w.partial, w.final); err != nil {
		os.Remove(w.partial)
		return err
	}
	return nil
}

var _ FileStore = (*Local)(nil)
