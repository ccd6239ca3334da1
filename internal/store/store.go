// Package store persists detected events and the geocode cache in SQLite.
//
// The database is the only shared mutable state in the system: the ingestion
// worker writes while the read API serves from the same file. Correctness of
// concurrent ingestion rests on the unique index on events.source_url — an
// insert is a single conditional operation, never a check-then-act pair.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/meteorwatch/skyfall-alert/internal/domain"
)

// ErrDuplicateEvent reports an insert that lost to an existing row with the
// same source URL. Callers treat it as a benign skip, not a failure.
var ErrDuplicateEvent = errors.New("event with this source URL already exists")

// Store wraps the SQLite database shared by the worker and the read API.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Open opens (creating if necessary) the SQLite database at path and runs
// schema migration. WAL mode and a 30s busy timeout let the worker and the
// read API share the file across processes.
func Open(path string, logger *slog.Logger) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=30000", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.AutoMigrate(&domain.Event{}, &domain.GeocacheEntry{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// HasEvent reports whether an event with the given source URL is already
// stored. A false answer can race with a concurrent insert; the unique
// constraint in InsertEvent is the final backstop.
func (s *Store) HasEvent(ctx context.Context, sourceURL string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&domain.Event{}).
		Where("source_url = ?", sourceURL).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check event: %w", err)
	}
	return count > 0, nil
}

// InsertEvent durably persists one event. It returns ErrDuplicateEvent when
// the source URL is already stored, from this run or any earlier one.
func (s *Store) InsertEvent(ctx context.Context, event *domain.Event) error {
	err := s.db.WithContext(ctx).Create(event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEvent
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// ListEvents returns up to limit events, newest detection first. Used by the
// read API only; the pipeline never lists.
func (s *Store) ListEvents(ctx context.Context, limit int) ([]domain.Event, error) {
	var events []domain.Event
	err := s.db.WithContext(ctx).
		Order("detected_at DESC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// GetGeocache looks up a cached geocode resolution by exact query string.
func (s *Store) GetGeocache(ctx context.Context, query string) (domain.GeocacheEntry, bool, error) {
	var entry domain.GeocacheEntry
	err := s.db.WithContext(ctx).Where("query = ?", query).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.GeocacheEntry{}, false, nil
	}
	if err != nil {
		return domain.GeocacheEntry{}, false, fmt.Errorf("get geocache: %w", err)
	}
	return entry, true, nil
}

// UpsertGeocache stores a resolution, overwriting any previous entry for the
// same query (last write wins).
func (s *Store) UpsertGeocache(ctx context.Context, entry *domain.GeocacheEntry) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "query"}},
			DoUpdates: clause.AssignmentColumns([]string{"latitude", "longitude", "display_name", "created_at"}),
		}).
		Create(entry).Error
	if err != nil {
		return fmt.Errorf("upsert geocache: %w", err)
	}
	return nil
}
