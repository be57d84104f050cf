package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/narwhalmedia/moviecatalog/internal/domain/catalog"
)

func newLocal(t *testing.T) *LocalBackend {
	t.Helper()
	b, err := NewLocalBackend(t.TempDir(), zaptest.NewLogger(t))
	require.NoError(t, err)
	return b
}

func entries(t *testing.T, dir string) []string {
	t.Helper()
	des, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(des))
	for _, de := range des {
		names = append(names, de.Name())
	}
	return names
}

func TestValidateName(t *testing.T) {
	valid := []string{"poster.jpg", uuid.NewString() + ".png", "a..b.jpg"}
	for _, name := range valid {
		assert.NoError(t, ValidateName(name), name)
	}

	invalid := []string{"", ".", "..", "../x.jpg", "a/b.jpg", `a\b.jpg`, "/etc/passwd", ".stage-123"}
	for _, name := range invalid {
		err := ValidateName(name)
		assert.ErrorIs(t, err, catalog.ErrPathOutsideRoot, name)
	}
}

func TestLocalBackend_StagePublish(t *testing.T) {
	ctx := context.Background()
	b := newLocal(t)

	staged, err := b.Stage(ctx, "a.jpg", []byte("img"))
	require.NoError(t, err)

	exists, err := b.Exists(ctx, "a.jpg")
	require.NoError(t, err)
	assert.False(t, exists, "staged file is not visible")

	require.NoError(t, staged.Publish(ctx))
	exists, err = b.Exists(ctx, "a.jpg")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, []string{"a.jpg"}, entries(t, b.Root()), "staging file removed")

	name, content, err := b.FindByStem(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a.jpg", name)
	assert.Equal(t, []byte("img"), content)
}

func TestLocalBackend_PublishNeverOverwrites(t *testing.T) {
	ctx := context.Background()
	b := newLocal(t)
	require.NoError(t, os.WriteFile(filepath.Join(b.Root(), "a.jpg"), []byte("original"), 0o644))

	staged, err := b.Stage(ctx, "a.jpg", []byte("new"))
	require.NoError(t, err)

	err = staged.Publish(ctx)
	assert.ErrorIs(t, err, catalog.ErrPosterAlreadyExists)
	assert.ErrorIs(t, err, catalog.ErrStorageConflict)

	got, err := os.ReadFile(filepath.Join(b.Root(), "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), got)

	require.NoError(t, staged.Discard(ctx))
	assert.Equal(t, []string{"a.jpg"}, entries(t, b.Root()))
}

func TestLocalBackend_RejectsEscapingNames(t *testing.T) {
	ctx := context.Background()
	b := newLocal(t)

	_, err := b.Stage(ctx, "../escape.jpg", []byte("x"))
	assert.ErrorIs(t, err, catalog.ErrPathOutsideRoot)
	_, err = b.Exists(ctx, "/etc/passwd")
	assert.ErrorIs(t, err, catalog.ErrPathOutsideRoot)
	assert.Empty(t, entries(t, b.Root()))
}

func TestLocalBackend_FindByStemMissing(t *testing.T) {
	_, _, err := newLocal(t).FindByStem(context.Background(), uuid.NewString())
	assert.True(t, errors.Is(err, ErrObjectNotFound))
}

func TestSession_PrepareCommit(t *testing.T) {
	ctx := context.Background()
	b := newLocal(t)
	f := catalog.NewFactory()
	s := NewSession(b, zaptest.NewLogger(t))

	p1, _ := f.NewPoster("one.jpg", []byte("1"))
	p2, _ := f.NewPoster("two.png", []byte("2"))
	require.NoError(t, s.Add(p1))
	require.NoError(t, s.Add(p2))
	assert.ErrorIs(t, s.Add(p1), catalog.ErrPosterAlreadyExists)
	assert.Equal(t, []string{p1.Filename(), p2.Filename()}, s.Filenames())

	assert.ErrorIs(t, s.Commit(ctx), ErrNotPrepared)
	require.NoError(t, s.Prepare(ctx))
	assert.Len(t, entries(t, b.Root()), 2, "two staging files")
	require.NoError(t, s.Commit(ctx))

	assert.ElementsMatch(t, []string{p1.Filename(), p2.Filename()}, entries(t, b.Root()))
	assert.ErrorIs(t, s.Add(p1), ErrSessionClosed)
	s.Rollback(ctx)
	assert.Len(t, entries(t, b.Root()), 2, "rollback after commit keeps published files")
}

func TestSession_PrepareFailsOnExistingTarget(t *testing.T) {
	ctx := context.Background()
	b := newLocal(t)
	f := catalog.NewFactory()
	s := NewSession(b, zaptest.NewLogger(t))

	p1, _ := f.NewPoster("one.jpg", []byte("1"))
	p2, _ := f.NewPoster("two.jpg", []byte("2"))
	require.NoError(t, os.WriteFile(filepath.Join(b.Root(), p2.Filename()), []byte("taken"), 0o644))
	require.NoError(t, s.Add(p1))
	require.NoError(t, s.Add(p2))

	err := s.Prepare(ctx)
	assert.ErrorIs(t, err, catalog.ErrPosterAlreadyExists)
	assert.Equal(t, []string{p2.Filename()}, entries(t, b.Root()), "first poster's staging file discarded")
}

func TestSession_Rollback(t *testing.T) {
	ctx := context.Background()
	b := newLocal(t)
	s := NewSession(b, zaptest.NewLogger(t))
	p, _ := catalog.NewFactory().NewPoster("one.jpg", []byte("1"))

	require.NoError(t, s.Add(p))
	require.NoError(t, s.Prepare(ctx))
	s.Rollback(ctx)
	s.Rollback(ctx)

	assert.Empty(t, entries(t, b.Root()))
	assert.ErrorIs(t, s.Commit(ctx), ErrNotPrepared)
}

func TestPosterRepository(t *testing.T) {
	ctx := context.Background()
	b := newLocal(t)
	s := NewSession(b, zaptest.NewLogger(t))
	repo := NewPosterRepository(b, s)
	p, _ := catalog.NewFactory().NewPoster("cover.webp", []byte("webp"))

	got, err := repo.FindByID(ctx, p.ID())
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.Add(ctx, p))
	require.NoError(t, s.Prepare(ctx))
	require.NoError(t, s.Commit(ctx))

	got, err = NewPosterRepository(b, nil).FindByID(ctx, p.ID())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.Filename(), got.Filename())
	assert.Equal(t, []byte("webp"), got.Content())

	assert.ErrorIs(t, NewPosterRepository(b, nil).Add(ctx, p), ErrReadOnly)
}
