package gorm

import (
	"fmt"

	"github.com/narwhalmedia/moviecatalog/internal/domain/catalog"
	pkgerrors "github.com/narwhalmedia/moviecatalog/pkg/errors"
)

// translateWriteError maps unique violations to catalog.ErrStorageConflict
// and wraps everything else with op.
func translateWriteError(op string, err error) error {
	if err == nil {
		return nil
	}
	if pkgerrors.IsConflict(err) || pkgerrors.IsDuplicateError(err) {
		return fmt.Errorf("%s: %w: %v", op, catalog.ErrStorageConflict, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
