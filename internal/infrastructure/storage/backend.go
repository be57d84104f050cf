package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/narwhalmedia/moviecatalog/internal/domain/catalog"
)

// ErrObjectNotFound is returned by backends when no object matches
var ErrObjectNotFound = errors.New("storage object not found")

const stagePrefix = ".stage-"

// Backend keeps poster objects by name under a single root.
type Backend interface {
	// Exists reports whether an object is published under name
	Exists(ctx context.Context, name string) (bool, error)
	// Stage makes content durable without publishing it under name
	Stage(ctx context.Context, name string, content []byte) (Staged, error)
	// FindByStem returns the object whose name is stem plus an extension
	FindByStem(ctx context.Context, stem string) (name string, content []byte, err error)
}

// Staged is an object written but not yet visible under its name.
type Staged interface {
	Name() string
	// Publish makes the object visible. It never replaces an existing
	// object and fails with catalog.ErrPosterAlreadyExists instead.
	Publish(ctx context.Context) error
	// Discard removes the staged data
	Discard(ctx context.Context) error
}

// ValidateName rejects names that could resolve outside the storage root.
func ValidateName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
	case filepath.IsAbs(name), strings.ContainsAny(name, `/\`):
	case name != filepath.Base(name):
	case strings.HasPrefix(name, stagePrefix):
	default:
		return nil
	}
	return fmt.Errorf("%w: %q", catalog.ErrPathOutsideRoot, name)
}
