// Package repository loads and stores the daemon's rule and calibration files.
package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/okian/touchgest/internal/domain/model"
)

// BoundsStore persists calibrated screen bounds.
type BoundsStore interface {
	// LoadBounds returns ErrNotFound when nothing was saved yet and
	// ErrMalformed when the stored bounds cannot be used.
	LoadBounds(ctx context.Context) (model.Bounds, error)
	SaveBounds(ctx context.Context, b model.Bounds) error
}

// RuleStore provides the configured gesture rules.
type RuleStore interface {
	// LoadRules returns the rules in file order together with the lines
	// that were skipped.
	LoadRules(ctx context.Context) ([]model.Rule, []SkippedLine, error)
}

// FileStore keeps rules and bounds in plain text files.
type FileStore struct {
	rulesPath  string
	boundsPath string
	mode       os.FileMode
}

// NewFileStore creates a store over the given rule and calibration paths.
func NewFileStore(rulesPath, boundsPath string, opts ...Option) *FileStore {
	s := &FileStore{
		rulesPath:  rulesPath,
		boundsPath: boundsPath,
		mode:       0o644,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadRules reads and parses the rule file.
func (s *FileStore) LoadRules(ctx context.Context) ([]model.Rule, []SkippedLine, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	f, err := open(s.rulesPath)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = f.Close() }()

	rules, skipped, err := ParseRules(f)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", s.rulesPath, err)
	}
	return rules, skipped, nil
}

// LoadBounds reads and parses the calibration file.
func (s *FileStore) LoadBounds(ctx context.Context) (model.Bounds, error) {
	if err := ctx.Err(); err != nil {
		return model.Bounds{}, err
	}
	f, err := open(s.boundsPath)
	if err != nil {
		return model.Bounds{}, err
	}
	defer func() { _ = f.Close() }()

	b, err := ParseBounds(f)
	if err != nil {
		return model.Bounds{}, fmt.Errorf("%s: %w", s.boundsPath, err)
	}
	return b, nil
}

// SaveBounds writes the calibration file, creating its directory if needed.
// The file is replaced atomically.
func (s *FileStore) SaveBounds(ctx context.Context, b model.Bounds) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !b.Valid() {
		return ErrInvalidBounds
	}

	dir := filepath.Dir(s.boundsPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.boundsPath)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := FormatBounds(tmp, b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), s.mode); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.boundsPath); err != nil {
		return fmt.Errorf("rename to %s: %w", s.boundsPath, err)
	}
	return nil
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}
