package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NotFound("movie"), http.StatusNotFound},
		{"bad request", BadRequest("date", nil), http.StatusBadRequest},
		{"conflict", Conflict("movie", errors.New("dup")), http.StatusConflict},
		{"unprocessable", New(ErrorTypeUnprocessable, "genre"), http.StatusUnprocessableEntity},
		{"wrapped", fmt.Errorf("register: %w", NotFound("x")), http.StatusNotFound},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("cause")
	err := Conflict("actor exists", cause)
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsConflict(err))
	assert.False(t, IsNotFound(err))
	assert.Equal(t, "CONFLICT: actor exists: cause", err.Error())
}

func TestIsDuplicateError(t *testing.T) {
	assert.False(t, IsDuplicateError(nil))
	assert.True(t, IsDuplicateError(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)))
	assert.True(t, IsDuplicateError(&pgconn.PgError{Code: pgerrcode.UniqueViolation}))
	assert.False(t, IsDuplicateError(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}))
	assert.True(t, IsDuplicateError(errors.New("UNIQUE constraint failed: actors.name")))
	assert.False(t, IsDuplicateError(errors.New("connection refused")))
}
