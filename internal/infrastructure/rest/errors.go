package rest

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/narwhalmedia/moviecatalog/internal/domain/catalog"
	pkgerrors "github.com/narwhalmedia/moviecatalog/pkg/errors"
)

const internalMessage = "The server encountered a problem and could not process your request"

// classify tags domain errors with a transport type
func classify(err error) error {
	switch {
	case errors.Is(err, catalog.ErrMovieAlreadyExists):
		return pkgerrors.Wrap(pkgerrors.ErrorTypeConflict, "movie already exists", err)
	case errors.Is(err, catalog.ErrInvalidGenre), errors.Is(err, catalog.ErrInvalidCountryOfProduction):
		return pkgerrors.Wrap(pkgerrors.ErrorTypeUnprocessable, err.Error(), err)
	case catalog.IsValidationError(err):
		return pkgerrors.BadRequest(err.Error(), err)
	case errors.Is(err, catalog.ErrPathOutsideRoot):
		return pkgerrors.BadRequest("invalid poster filename", err)
	case errors.Is(err, catalog.ErrStorageConflict):
		return pkgerrors.Conflict("concurrent registration conflict, retry the request", err)
	}
	var appErr *pkgerrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.ErrorTypeInternal, internalMessage, err)
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	tagged := classify(err)
	status := pkgerrors.HTTPStatus(tagged)

	resp := errorResponse{RequestID: middleware.GetReqID(r.Context())}
	var appErr *pkgerrors.AppError
	if errors.As(tagged, &appErr) {
		resp.Error = appErr.Message
	}
	var verr *catalog.VocabularyError
	if errors.As(err, &verr) {
		resp.Available = verr.Available
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("uri", r.URL.RequestURI()),
			zap.Error(err),
		)
	}
	h.writeJSON(w, r, status, resp)
}

func (h *Handler) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusNotFound, errorResponse{
		Error:     "The requested resource not found",
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// validationMessage renders the first failing field of a validator error
func validationMessage(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return catalog.NewValidationError("body", err.Error())
	}
	fe := fieldErrs[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "max":
		msg = "must be at most " + fe.Param() + " characters long"
	case "min":
		msg = "must not be empty"
	case "datetime":
		msg = "must be a date formatted as " + fe.Param()
	default:
		msg = "is invalid"
	}
	return catalog.NewValidationError(fe.Namespace(), msg)
}
