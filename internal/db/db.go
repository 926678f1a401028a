package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/balkashynov/shed/internal/apperr"
	"github.com/balkashynov/shed/internal/models"
)

// Caller identifies who an operation runs on behalf of. Admins may read and
// modify every user's sessions and tags; timer and stats operations are
// always scoped to the caller's own records.
type Caller struct {
	UserID string
	Admin  bool
}

func (c Caller) validate() error {
	if strings.TrimSpace(c.UserID) == "" {
		return apperr.Validation("caller user is required")
	}
	return nil
}

// Store is the practice record store backed by SQLite.
type Store struct {
	db     *gorm.DB
	clock  func() time.Time
	loc    *time.Location
	log    *slog.Logger
	sqlLog bool
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source, mostly for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// WithLocation sets the zone used to decide calendar dates.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) { s.loc = loc }
}

// WithLogger sets the logger used for store events.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithSQLLog turns on gorm's SQL statement logging.
func WithSQLLog(enabled bool) Option {
	return func(s *Store) { s.sqlLog = enabled }
}

// Open sets up the database connection and runs migrations
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		clock: time.Now,
		loc:   time.Local,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	logLevel := logger.Silent // Quiet by default
	if s.sqlLog {
		logLevel = logger.Info
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		NowFunc:        s.Now,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite has a single writer; one connection serializes transactions
	// so check-then-write sequences cannot interleave.
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	s.db = gdb

	if err := s.runMigrations(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// runMigrations creates/updates the database schema
func (s *Store) runMigrations() error {
	if err := s.db.AutoMigrate(
		&models.Tag{},
		&models.Session{},
		&models.SessionTag{},
	); err != nil {
		return err
	}

	// At most one running timer per user.
	return s.db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_one_active
		ON sessions(user_id) WHERE in_progress = 1 AND deleted_at IS NULL`).Error
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks the database connection is usable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Now returns the current time in the store's location.
func (s *Store) Now() time.Time {
	return s.clock().In(s.loc)
}

// Location returns the zone used for calendar dates.
func (s *Store) Location() *time.Location {
	return s.loc
}

// scope restricts q to rows the caller may see.
func scope(q *gorm.DB, c Caller) *gorm.DB {
	if c.Admin {
		return q
	}
	return q.Where("user_id = ?", c.UserID)
}

// own restricts q to the caller's own rows, ignoring the admin flag.
func own(q *gorm.DB, c Caller) *gorm.DB {
	return q.Where("user_id = ?", c.UserID)
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
