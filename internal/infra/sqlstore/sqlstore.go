// Package sqlstore implements port.RecordStore on top of gorm and SQLite.
package sqlstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/Shrey257/CashAI/internal/domain"
)

var tracer = otel.Tracer("infra/sqlstore")

// Store is a SQLite-backed record store.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open opens (creating if needed) the SQLite database at dsn.
// Call Migrate before first use.
func Open(dsn string, log *zap.Logger) (*Store, error) {
	if dsn == "" {
		dsn = "cashai.db"
	}

	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}

	dbLogger := logger.New(
		gormWriter{log.Sugar()},
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  dbLogger,
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	return &Store{db: db, logger: log}, nil
}

// Migrate creates the tables and seeds the default categories.
func (s *Store) Migrate(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "sqlstore.Migrate")
	defer span.End()

	db := s.db.WithContext(ctx)
	if err := db.AutoMigrate(&categoryRow{}, &expenseRow{}, &budgetRow{}, &goalRow{}); err != nil {
		return fmt.Errorf("migrate db: %w", err)
	}

	seed := make([]categoryRow, 0, len(domain.DefaultCategories()))
	for _, c := range domain.DefaultCategories() {
		seed = append(seed, categoryRow{ID: c.ID, Name: c.Name})
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}

	s.logger.Debug("sqlite schema ready", zap.Int("seeded_categories", len(seed)))
	return nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ensureDirForSQLite creates parent dir for SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	// Ignore DSNs with explicit mode=memory or network.
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}

// gormWriter routes gorm's logger through zap.
type gormWriter struct {
	log *zap.SugaredLogger
}

func (w gormWriter) Printf(format string, args ...any) {
	w.log.Warnf(format, args...)
}
