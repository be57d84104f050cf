package rest

import (
	"time"

	appcatalog "github.com/narwhalmedia/moviecatalog/internal/application/catalog"
	"github.com/narwhalmedia/moviecatalog/internal/domain/catalog"
)

type registerMovieRequest struct {
	Title         string         `json:"title" validate:"required,max=255"`
	Description   string         `json:"description" validate:"max=4000"`
	PublishedDate string         `json:"published_date" validate:"required,datetime=2006-01-02"`
	Country       string         `json:"country" validate:"required,max=255"`
	Actors        []string       `json:"actors" validate:"dive,required,max=255"`
	Directors     []string       `json:"directors" validate:"dive,required,max=255"`
	Genres        []string       `json:"genres" validate:"dive,required,max=255"`
	Poster        *posterRequest `json:"poster,omitempty"`
}

// posterRequest content is base64 in JSON
type posterRequest struct {
	Filename string `json:"filename" validate:"required,max=255"`
	Content  []byte `json:"content" validate:"required,min=1"`
}

func (r *registerMovieRequest) toCommand() (appcatalog.RegisterMovieCommand, error) {
	date, err := time.Parse(time.DateOnly, r.PublishedDate)
	if err != nil {
		return appcatalog.RegisterMovieCommand{}, catalog.NewValidationError("published_date", "must be YYYY-MM-DD")
	}
	cmd := appcatalog.RegisterMovieCommand{
		Title:         r.Title,
		Description:   r.Description,
		PublishedDate: date,
		Country:       r.Country,
		Actors:        r.Actors,
		Directors:     r.Directors,
		Genres:        r.Genres,
	}
	if r.Poster != nil {
		cmd.Poster = &appcatalog.PosterUpload{Filename: r.Poster.Filename, Content: r.Poster.Content}
	}
	return cmd, nil
}

type movieResponse struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	PublishedDate string          `json:"published_date"`
	Country       string          `json:"country"`
	Actors        []string        `json:"actors"`
	Directors     []string        `json:"directors"`
	Genres        []string        `json:"genres"`
	Poster        *posterResponse `json:"poster,omitempty"`
}

type posterResponse struct {
	ID       string `json:"id"`
	Filename string `json:"filename,omitempty"`
	Content  []byte `json:"content,omitempty"`
}

type registerMovieResponse struct {
	movieResponse
	CreatedActors    []string `json:"created_actors"`
	CreatedDirectors []string `json:"created_directors"`
}

type namesResponse struct {
	Names []string `json:"names"`
}

type errorResponse struct {
	Error     string   `json:"error"`
	RequestID string   `json:"request_id,omitempty"`
	Available []string `json:"available,omitempty"`
}

func toMovieResponse(m *catalog.Movie) movieResponse {
	resp := movieResponse{
		ID:            m.ID().String(),
		Title:         m.Title(),
		Description:   m.Description(),
		PublishedDate: m.PublishedDate().Format(time.DateOnly),
		Actors:        catalog.Names(m.Actors()),
		Directors:     catalog.Names(m.Directors()),
		Genres:        catalog.Names(m.Genres()),
	}
	if c := m.Country(); c != nil {
		resp.Country = c.Name()
	}
	if p := m.Poster(); p != nil {
		resp.Poster = &posterResponse{ID: p.ID().String(), Filename: p.Filename(), Content: p.Content()}
	}
	return resp
}

func toMovieResponses(movies []*catalog.Movie) []movieResponse {
	out := make([]movieResponse, len(movies))
	for i, m := range movies {
		out[i] = toMovieResponse(m)
	}
	return out
}
