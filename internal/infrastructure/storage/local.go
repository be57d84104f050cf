package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/narwhalmedia/moviecatalog/internal/domain/catalog"
)

// LocalBackend stores posters as files directly under root. Publishing
// hard-links the staged file into place, so root must be on a filesystem
// with link support.
type LocalBackend struct {
	root   string
	logger *zap.Logger
}

// NewLocalBackend creates root if needed
func NewLocalBackend(root string, logger *zap.Logger) (*LocalBackend, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &LocalBackend{root: abs, logger: logger.Named("posters.local")}, nil
}

// Root returns the absolute storage root
func (b *LocalBackend) Root() string {
	return b.root
}

// path resolves name and checks that its parent is exactly the root.
func (b *LocalBackend) path(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	p := filepath.Join(b.root, name)
	if filepath.Dir(p) != b.root {
		return "", fmt.Errorf("%w: %q", catalog.ErrPathOutsideRoot, name)
	}
	return p, nil
}

func (b *LocalBackend) Exists(ctx context.Context, name string) (bool, error) {
	p, err := b.path(name)
	if err != nil {
		return false, err
	}
	_, err = os.Lstat(p)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (b *LocalBackend) Stage(ctx context.Context, name string, content []byte) (Staged, error) {
	target, err := b.path(name)
	if err != nil {
		return nil, err
	}

	f, err := os.CreateTemp(b.root, stagePrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("create staging file: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(content); err != nil {
		f.Close()
		os.Remove(tmp)
		return nil, fmt.Errorf("write staging file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return nil, fmt.Errorf("sync staging file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("close staging file: %w", err)
	}

	return &localStaged{name: name, tmp: tmp, target: target, logger: b.logger}, nil
}

func (b *LocalBackend) FindByStem(ctx context.Context, stem string) (string, []byte, error) {
	if err := ValidateName(stem); err != nil {
		return "", nil, err
	}
	matches, err := filepath.Glob(filepath.Join(b.root, stem+".*"))
	if err != nil {
		return "", nil, err
	}
	if len(matches) == 0 {
		return "", nil, ErrObjectNotFound
	}
	sort.Strings(matches)

	content, err := os.ReadFile(matches[0])
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil, ErrObjectNotFound
		}
		return "", nil, fmt.Errorf("read poster: %w", err)
	}
	return filepath.Base(matches[0]), content, nil
}

type localStaged struct {
	name   string
	tmp    string
	target string
	logger *zap.Logger
}

func (s *localStaged) Name() string { return s.name }

func (s *localStaged) Publish(ctx context.Context) error {
	if err := os.Link(s.tmp, s.target); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", catalog.ErrPosterAlreadyExists, s.name)
		}
		return fmt.Errorf("publish poster %s: %w", s.name, err)
	}
	if err := os.Remove(s.tmp); err != nil {
		s.logger.Warn("failed to remove staging file", zap.String("path", s.tmp), zap.Error(err))
	}
	return nil
}

func (s *localStaged) Discard(ctx context.Context) error {
	if err := os.Remove(s.tmp); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("discard staging file: %w", err)
	}
	return nil
}
