package repository

import (
	"context"
	"errors"

	pkgerrors "github.com/narwhalmedia/moviecatalog/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Create inserts entity without touching its associations.
// Unique violations come back as a CONFLICT AppError wrapping the driver error.
func Create[T any](ctx context.Context, db *gorm.DB, entity *T) error {
	if err := db.WithContext(ctx).Omit(clause.Associations).Create(entity).Error; err != nil {
		if pkgerrors.IsDuplicateError(err) {
			return pkgerrors.Conflict("entity already exists", err)
		}
		return err
	}
	return nil
}

// CreateBatch inserts rows in one statement. An empty batch is a no-op.
func CreateBatch[T any](ctx context.Context, db *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	if err := db.WithContext(ctx).Omit(clause.Associations).Create(&rows).Error; err != nil {
		if pkgerrors.IsDuplicateError(err) {
			return pkgerrors.Conflict("rows already exist", err)
		}
		return err
	}
	return nil
}

// FindOneBy finds a single entity matching query. A miss is a NOT_FOUND AppError.
func FindOneBy[T any](ctx context.Context, db *gorm.DB, query string, args ...interface{}) (*T, error) {
	var entity T
	if err := db.WithContext(ctx).Where(query, args...).Take(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("entity not found")
		}
		return nil, err
	}
	return &entity, nil
}

// List returns every entity in the given order.
func List[T any](ctx context.Context, db *gorm.DB, order string) ([]*T, error) {
	var entities []*T
	query := db.WithContext(ctx)
	if order != "" {
		query = query.Order(order)
	}
	if err := query.Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

// Count returns the total number of entities.
func Count[T any](ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	var entity T
	if err := db.WithContext(ctx).Model(&entity).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
