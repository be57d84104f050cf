package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/narwhalmedia/moviecatalog/internal/domain/catalog"
)

// ErrReadOnly is returned by Add on a repository without a session
var ErrReadOnly = errors.New("poster repository is read-only")

// PosterRepository implements catalog.PosterRepository. Writes go to the
// session of the active unit of work; reads go straight to the backend.
type PosterRepository struct {
	backend Backend
	session *Session
}

// NewPosterRepository creates a repository. A nil session makes it read-only.
func NewPosterRepository(backend Backend, session *Session) *PosterRepository {
	return &PosterRepository{backend: backend, session: session}
}

func (r *PosterRepository) Add(ctx context.Context, poster *catalog.Poster) error {
	if r.session == nil {
		return ErrReadOnly
	}
	return r.session.Add(poster)
}

func (r *PosterRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Poster, error) {
	name, content, err := r.backend.FindByStem(ctx, id.String())
	if err != nil {
		if errors.Is(err, ErrObjectNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find poster %s: %w", id, err)
	}
	return catalog.RestorePoster(id, name, content), nil
}
