package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/riandyrn/otelchi"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	appcatalog "github.com/narwhalmedia/moviecatalog/internal/application/catalog"
	"github.com/narwhalmedia/moviecatalog/internal/domain/catalog"
)

// maxBodyBytes bounds a registration body, poster included
const maxBodyBytes = 16 << 20

// Registrar registers movies
type Registrar interface {
	Register(ctx context.Context, cmd appcatalog.RegisterMovieCommand) (*appcatalog.RegistrationResult, error)
}

// Reader answers catalog queries
type Reader interface {
	FindAll(ctx context.Context) ([]*catalog.Movie, error)
	FindByTitleAndYear(ctx context.Context, title string, date time.Time) (*catalog.Movie, error)
	MoviesByActor(ctx context.Context, name string) ([]*catalog.Movie, bool, error)
	MoviesByDirector(ctx context.Context, name string) ([]*catalog.Movie, bool, error)
	MoviesByGenre(ctx context.Context, name string) ([]*catalog.Movie, bool, error)
	MoviesByCountry(ctx context.Context, name string) ([]*catalog.Movie, bool, error)
	Genres(ctx context.Context) ([]*catalog.Genre, error)
	Countries(ctx context.Context) ([]*catalog.CountryOfProduction, error)
}

// Pinger reports database reachability
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler serves the catalog over HTTP
type Handler struct {
	registrar Registrar
	reader    Reader
	db        Pinger
	validate  *validator.Validate
	tp        trace.TracerProvider
	service   string
	logger    *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(registrar Registrar, reader Reader, db Pinger, tp trace.TracerProvider, service string, logger *zap.Logger) *Handler {
	return &Handler{
		registrar: registrar,
		reader:    reader,
		db:        db,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		tp:        tp,
		service:   service,
		logger:    logger.Named("http"),
	}
}

// Routes builds the router
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.NotFound(h.notFoundResponse)

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(otelchi.Middleware(h.service, otelchi.WithChiRoutes(r), otelchi.WithTracerProvider(h.tp)))
	r.Use(RequestLogger(h.logger))

	r.Get("/", h.health)
	r.Get("/healthz", h.health)

	r.Route("/movies", func(r chi.Router) {
		r.Get("/", h.listMovies)
		r.Post("/", h.registerMovie)
		r.Get("/{title}/{date}", h.getMovie)
	})

	r.Get("/actors/{name}/movies", h.related(h.reader.MoviesByActor))
	r.Get("/directors/{name}/movies", h.related(h.reader.MoviesByDirector))
	r.Get("/genres/{name}/movies", h.related(h.reader.MoviesByGenre))
	r.Get("/countries/{name}/movies", h.related(h.reader.MoviesByCountry))

	r.Get("/genres", h.listGenres)
	r.Get("/countries", h.listCountries)

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		h.writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) registerMovie(w http.ResponseWriter, r *http.Request) {
	var req registerMovieRequest
	if err := h.readJSON(w, r, &req); err != nil {
		h.errorResponse(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.errorResponse(w, r, validationMessage(err))
		return
	}
	cmd, err := req.toCommand()
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	result, err := h.registrar.Register(r.Context(), cmd)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, registerMovieResponse{
		movieResponse:    toMovieResponse(result.Movie),
		CreatedActors:    catalog.Names(result.CreatedActors),
		CreatedDirectors: catalog.Names(result.CreatedDirectors),
	})
}

func (h *Handler) listMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := h.reader.FindAll(r.Context())
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, toMovieResponses(movies))
}

func (h *Handler) getMovie(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse(time.DateOnly, chi.URLParam(r, "date"))
	if err != nil {
		h.errorResponse(w, r, catalog.NewValidationError("date", "must be YYYY-MM-DD"))
		return
	}

	movie, err := h.reader.FindByTitleAndYear(r.Context(), pathParam(r, "title"), date)
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}
	if movie == nil {
		h.notFoundResponse(w, r)
		return
	}
	h.writeJSON(w, r, http.StatusOK, toMovieResponse(movie))
}

func (h *Handler) related(find func(context.Context, string) ([]*catalog.Movie, bool, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		movies, found, err := find(r.Context(), pathParam(r, "name"))
		if err != nil {
			h.errorResponse(w, r, err)
			return
		}
		if !found {
			h.notFoundResponse(w, r)
			return
		}
		h.writeJSON(w, r, http.StatusOK, toMovieResponses(movies))
	}
}

func (h *Handler) listGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.reader.Genres(r.Context())
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, namesResponse{Names: catalog.Names(genres)})
}

func (h *Handler) listCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := h.reader.Countries(r.Context())
	if err != nil {
		h.errorResponse(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, namesResponse{Names: catalog.Names(countries)})
}

// pathParam returns the decoded value of a route parameter
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func (h *Handler) readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return catalog.NewValidationError("body", fmt.Sprintf("must not be larger than %d bytes", maxErr.Limit))
		case errors.Is(err, io.EOF):
			return catalog.NewValidationError("body", "must not be empty")
		default:
			return catalog.NewValidationError("body", err.Error())
		}
	}
	if dec.More() {
		return catalog.NewValidationError("body", "must only contain a single JSON value")
	}
	return nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to write response", zap.String("uri", r.URL.RequestURI()), zap.Error(err))
	}
}
