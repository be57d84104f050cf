package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrorType classifies an application error for transport mapping
type ErrorType string

const (
	ErrorTypeNotFound      ErrorType = "NOT_FOUND"
	ErrorTypeBadRequest    ErrorType = "BAD_REQUEST"
	ErrorTypeConflict      ErrorType = "CONFLICT"
	ErrorTypeUnprocessable ErrorType = "UNPROCESSABLE"
	ErrorTypeInternal      ErrorType = "INTERNAL"
)

var statusByType = map[ErrorType]int{
	ErrorTypeNotFound:      http.StatusNotFound,
	ErrorTypeBadRequest:    http.StatusBadRequest,
	ErrorTypeConflict:      http.StatusConflict,
	ErrorTypeUnprocessable: http.StatusUnprocessableEntity,
	ErrorTypeInternal:      http.StatusInternalServerError,
}

// AppError is an error tagged with a transport-independent type
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new application error
func New(errorType ErrorType, message string) error {
	return &AppError{Type: errorType, Message: message}
}

// Wrap tags err with a type and message
func Wrap(errorType ErrorType, message string, err error) error {
	return &AppError{Type: errorType, Message: message, Err: err}
}

// NotFound creates a not found error
func NotFound(message string) error {
	return New(ErrorTypeNotFound, message)
}

// BadRequest creates a bad request error wrapping the cause
func BadRequest(message string, cause error) error {
	return Wrap(ErrorTypeBadRequest, message, cause)
}

// Conflict creates a conflict error wrapping the cause
func Conflict(message string, cause error) error {
	return Wrap(ErrorTypeConflict, message, cause)
}

// TypeOf returns the type of the outermost AppError in the chain, or
// ErrorTypeInternal when there is none.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// HTTPStatus maps an error to an HTTP status code
func HTTPStatus(err error) int {
	if status, ok := statusByType[TypeOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeNotFound
}

// IsConflict checks if an error is a conflict error
func IsConflict(err error) bool {
	return err != nil && TypeOf(err) == ErrorTypeConflict
}

// IsDuplicateError reports whether err is a unique constraint violation.
// Translated GORM errors are checked first, then raw Postgres errors, then
// driver messages for dialects without a translator.
func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	errStr := err.Error()
	return strings.Contains(errStr, "duplicate key") ||
		strings.Contains(errStr, "UNIQUE constraint") ||
		strings.Contains(errStr, "Duplicate entry")
}
