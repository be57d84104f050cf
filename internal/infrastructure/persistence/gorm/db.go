package gorm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/narwhalmedia/moviecatalog/internal/config"
)

const slowQueryThreshold = 200 * time.Millisecond

// NewDB opens the configured database and applies pending migrations when
// database.auto_migrate is set.
func NewDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, func(), error) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.DSN())
	case "postgres":
		dialector = postgres.Open(cfg.Database.DSN())
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newGormLogger(logger, cfg.Database.Debug),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		TranslateError: true,
		PrepareStmt:    cfg.Database.Driver == "postgres",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	cleanup := func() {
		if err := sqlDB.Close(); err != nil {
			logger.Warn("failed to close database", zap.Error(err))
		}
	}

	if cfg.Database.AutoMigrate {
		migrator := NewMigrator(db, logger, Vocabulary{
			Genres:    cfg.Catalog.SeedGenres,
			Countries: cfg.Catalog.SeedCountries,
		})
		if err := migrator.Migrate(context.Background()); err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	return db, cleanup, nil
}

// gormLogger wraps zap logger for GORM
type gormLogger struct {
	logger *zap.Logger
	debug  bool
}

func newGormLogger(logger *zap.Logger, debug bool) gormlogger.Interface {
	return &gormLogger{
		logger: logger.Named("gorm"),
		debug:  debug,
	}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &gormLogger{logger: l.logger, debug: level >= gormlogger.Info}
}

func (l *gormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.logger.Sugar().Infof(msg, data...)
}

func (l *gormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.logger.Sugar().Warnf(msg, data...)
}

func (l *gormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.logger.Sugar().Errorf(msg, data...)
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := []zap.Field{
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		// unique violations are expected during registration races
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			l.logger.Debug("sql unique violation", append(fields, zap.Error(err))...)
			return
		}
		l.logger.Error("sql error", append(fields, zap.Error(err))...)
	case elapsed > slowQueryThreshold:
		l.logger.Warn("slow sql query", fields...)
	case l.debug:
		l.logger.Debug("sql trace", fields...)
	}
}
