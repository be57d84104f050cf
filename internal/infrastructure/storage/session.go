package storage

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/narwhalmedia/moviecatalog/internal/domain/catalog"
)

var (
	// ErrSessionClosed is returned when a finished session is reused
	ErrSessionClosed = errors.New("poster session already finished")
	// ErrNotPrepared is returned by Commit before a successful Prepare
	ErrNotPrepared = errors.New("poster session not prepared")
)

type sessionState int

const (
	sessionOpen sessionState = iota
	sessionPrepared
	sessionFinished
)

// Session collects poster writes for one unit of work. Prepare stages every
// poster, Commit publishes them, Rollback discards whatever was staged.
type Session struct {
	backend Backend
	logger  *zap.Logger
	pending []*catalog.Poster
	names   map[string]bool
	staged  []Staged
	state   sessionState
}

// NewSession creates an empty session over backend
func NewSession(backend Backend, logger *zap.Logger) *Session {
	return &Session{
		backend: backend,
		logger:  logger,
		names:   make(map[string]bool),
	}
}

// Add queues a poster. No I/O happens until Prepare.
func (s *Session) Add(poster *catalog.Poster) error {
	if s.state != sessionOpen {
		return ErrSessionClosed
	}
	if err := ValidateName(poster.Filename()); err != nil {
		return err
	}
	if s.names[poster.Filename()] {
		return fmt.Errorf("%w: %s", catalog.ErrPosterAlreadyExists, poster.Filename())
	}
	s.names[poster.Filename()] = true
	s.pending = append(s.pending, poster)
	return nil
}

// Filenames returns the queued poster names in order
func (s *Session) Filenames() []string {
	out := make([]string, len(s.pending))
	for i, p := range s.pending {
		out[i] = p.Filename()
	}
	return out
}

// Prepare checks that no target exists and stages every poster. On failure
// everything staged so far is discarded.
func (s *Session) Prepare(ctx context.Context) error {
	if s.state != sessionOpen {
		return ErrSessionClosed
	}
	for _, p := range s.pending {
		exists, err := s.backend.Exists(ctx, p.Filename())
		if err == nil && exists {
			err = fmt.Errorf("%w: %s", catalog.ErrPosterAlreadyExists, p.Filename())
		}
		if err == nil {
			var staged Staged
			staged, err = s.backend.Stage(ctx, p.Filename(), p.Content())
			if err == nil {
				s.staged = append(s.staged, staged)
				continue
			}
		}
		s.discard(ctx)
		s.state = sessionFinished
		return err
	}
	s.state = sessionPrepared
	return nil
}

// Commit publishes every staged poster. Publishing continues past a
// failure so unrelated posters still land; the joined error names each
// poster that did not.
func (s *Session) Commit(ctx context.Context) error {
	if s.state != sessionPrepared {
		return ErrNotPrepared
	}
	s.state = sessionFinished

	var errs []error
	for _, staged := range s.staged {
		if err := staged.Publish(ctx); err != nil {
			errs = append(errs, err)
			if derr := staged.Discard(ctx); derr != nil {
				s.logger.Warn("failed to discard unpublished poster", zap.String("filename", staged.Name()), zap.Error(derr))
			}
		}
	}
	s.staged = nil
	return errors.Join(errs...)
}

// Rollback discards staged posters. Safe to call in any state.
func (s *Session) Rollback(ctx context.Context) {
	if s.state == sessionFinished && len(s.staged) == 0 {
		return
	}
	s.discard(ctx)
	s.state = sessionFinished
}

func (s *Session) discard(ctx context.Context) {
	for _, staged := range s.staged {
		if err := staged.Discard(ctx); err != nil {
			s.logger.Warn("failed to discard staged poster", zap.String("filename", staged.Name()), zap.Error(err))
		}
	}
	s.staged = nil
}
