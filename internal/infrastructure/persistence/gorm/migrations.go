package gorm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SchemaMigration records an applied migration
type SchemaMigration struct {
	Version   string    `gorm:"primaryKey"`
	Name      string    `gorm:"not null"`
	AppliedAt time.Time `gorm:"not null"`
}

func (SchemaMigration) TableName() string { return "schema_migrations" }

// Migration is one ordered, transactional schema or data change
type Migration struct {
	Version string
	Name    string
	Up      func(tx *gorm.DB) error
}

// Vocabulary holds the controlled vocabularies seeded at migration time
type Vocabulary struct {
	Genres    []string
	Countries []string
}

// Migrator applies pending migrations in version order
type Migrator struct {
	db         *gorm.DB
	logger     *zap.Logger
	vocab      Vocabulary
	migrations []Migration
}

// NewMigrator creates a migrator for the catalog schema. The vocabulary is
// seeded on every Migrate after the versioned migrations; names already
// stored are left untouched, so a longer list only adds the new entries.
func NewMigrator(db *gorm.DB, logger *zap.Logger, vocab Vocabulary) *Migrator {
	return &Migrator{
		db:     db,
		logger: logger.Named("migrator"),
		vocab:  vocab,
		migrations: []Migration{
			{
				Version: "0001",
				Name:    "create catalog schema",
				Up: func(tx *gorm.DB) error {
					return tx.AutoMigrate(AllModels()...)
				},
			},
		},
	}
}

// Migrate runs all pending migrations and then seeds the vocabulary
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.db.WithContext(ctx).AutoMigrate(&SchemaMigration{}); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	pending, err := m.Pending(ctx)
	if err != nil {
		return err
	}

	for _, migration := range pending {
		m.logger.Info("running migration", zap.String("version", migration.Version), zap.String("name", migration.Name))

		err := WithTransaction(ctx, m.db, func(tx *gorm.DB) error {
			if err := migration.Up(tx); err != nil {
				return err
			}
			return tx.Create(&SchemaMigration{
				Version:   migration.Version,
				Name:      migration.Name,
				AppliedAt: time.Now().UTC(),
			}).Error
		})
		if err != nil {
			return fmt.Errorf("failed to run migration %s: %w", migration.Version, err)
		}
	}

	err = WithTransaction(ctx, m.db, func(tx *gorm.DB) error {
		return SeedVocabulary(tx, m.vocab)
	})
	if err != nil {
		return fmt.Errorf("failed to seed vocabulary: %w", err)
	}
	m.logger.Debug("vocabulary seeded", zap.Int("genres", len(m.vocab.Genres)), zap.Int("countries", len(m.vocab.Countries)))
	return nil
}

// Pending returns the migrations not yet recorded as applied
func (m *Migrator) Pending(ctx context.Context) ([]Migration, error) {
	db := m.db.WithContext(ctx)
	if !db.Migrator().HasTable(&SchemaMigration{}) {
		return m.migrations, nil
	}
	var applied []SchemaMigration
	if err := db.Find(&applied).Error; err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	done := make(map[string]bool, len(applied))
	for _, a := range applied {
		done[a.Version] = true
	}

	var pending []Migration
	for _, migration := range m.migrations {
		if !done[migration.Version] {
			pending = append(pending, migration)
		}
	}
	return pending, nil
}

// SeedVocabulary inserts genres and countries that are not present yet
func SeedVocabulary(tx *gorm.DB, vocab Vocabulary) error {
	genres := make([]GenreModel, 0, len(vocab.Genres))
	for _, name := range cleanNames(vocab.Genres) {
		genres = append(genres, GenreModel{ID: uuid.New(), Name: name})
	}
	countries := make([]CountryModel, 0, len(vocab.Countries))
	for _, name := range cleanNames(vocab.Countries) {
		countries = append(countries, CountryModel{ID: uuid.New(), Name: name})
	}

	onConflict := clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}
	if len(genres) > 0 {
		if err := tx.Clauses(onConflict).Create(&genres).Error; err != nil {
			return fmt.Errorf("seed genres: %w", err)
		}
	}
	if len(countries) > 0 {
		if err := tx.Clauses(onConflict).Create(&countries).Error; err != nil {
			return fmt.Errorf("seed countries: %w", err)
		}
	}
	return nil
}

func cleanNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
