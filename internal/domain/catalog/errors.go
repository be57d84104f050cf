package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMovieAlreadyExists is returned when a movie with the same title and published date exists
	ErrMovieAlreadyExists = errors.New("movie already exists")

	// ErrInvalidGenre is matched by vocabulary errors on genres
	ErrInvalidGenre = errors.New("invalid genre")

	// ErrInvalidCountryOfProduction is matched by vocabulary errors on countries
	ErrInvalidCountryOfProduction = errors.New("invalid country of production")

	// ErrStorageConflict is returned when a write loses a uniqueness race.
	// Registration retries once on it.
	ErrStorageConflict = errors.New("storage conflict")

	// ErrPosterAlreadyExists is returned when a poster file is already present at the target path
	ErrPosterAlreadyExists = fmt.Errorf("%w: poster already exists", ErrStorageConflict)

	// ErrPathOutsideRoot is returned when a poster filename escapes the storage root
	ErrPathOutsideRoot = errors.New("poster path outside storage root")

	// ErrPartialCommit is returned when the catalog committed but the poster files could not be published
	ErrPartialCommit = errors.New("catalog committed without poster files")
)

// VocabularyKind names a controlled vocabulary.
type VocabularyKind string

const (
	VocabularyGenre   VocabularyKind = "genre"
	VocabularyCountry VocabularyKind = "country of production"
)

// VocabularyError reports a name outside a controlled vocabulary together
// with the names that are accepted.
type VocabularyError struct {
	Kind      VocabularyKind
	Name      string
	Available []string
}

// NewInvalidGenreError creates a vocabulary error for genres
func NewInvalidGenreError(name string, available []string) error {
	return &VocabularyError{Kind: VocabularyGenre, Name: name, Available: available}
}

// NewInvalidCountryError creates a vocabulary error for countries
func NewInvalidCountryError(name string, available []string) error {
	return &VocabularyError{Kind: VocabularyCountry, Name: name, Available: available}
}

func (e *VocabularyError) Error() string {
	plural := "genres"
	if e.Kind == VocabularyCountry {
		plural = "countries of production"
	}
	return fmt.Sprintf("invalid %s: %s. Available %s are %s", e.Kind, e.Name, plural, strings.Join(e.Available, ", "))
}

// Is lets errors.Is match the per-vocabulary sentinels.
func (e *VocabularyError) Is(target error) bool {
	switch target {
	case ErrInvalidGenre:
		return e.Kind == VocabularyGenre
	case ErrInvalidCountryOfProduction:
		return e.Kind == VocabularyCountry
	}
	return false
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
