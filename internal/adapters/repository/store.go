// Package repository reads candidate profiles, the published job catalog and
// barrier mappings from a SQL database. PostgreSQL is reached through the pgx
// stdlib driver and SQLite through modernc.org/sqlite; both accept the $N
// placeholders used here.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	_ "modernc.org/sqlite"             // registers "sqlite"

	"github.com/okian/pcdmatch/internal/apperr"
	"github.com/okian/pcdmatch/pkg/logger"
)

// Supported driver names.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

const (
	defaultMaxOpenConns = 10
	connMaxLifetime     = 5 * time.Minute
	pingTimeout         = 5 * time.Second
)

// Store is a read-mostly view of the matching data.
type Store struct {
	db           *sql.DB
	driver       string
	maxOpenConns int
	logger       logger.Logger
}

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*Store, error) {
	const op = "repository.Open"
	driver = strings.ToLower(strings.TrimSpace(driver))
	if driver != DriverPostgres && driver != DriverSQLite {
		return nil, apperr.WrapKind(op, apperr.ErrValidation, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver))
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, apperr.WrapKind(op, apperr.ErrDependency, err)
	}
	s := New(db, driver, opts...)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, apperr.WrapKind(op, apperr.ErrDependency, err)
	}
	return s, nil
}

// New wraps an existing handle.
func New(db *sql.DB, driver string, opts ...Option) *Store {
	s := &Store{
		db:           db,
		driver:       driver,
		maxOpenConns: defaultMaxOpenConns,
		logger:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	db.SetMaxOpenConns(s.maxOpenConns)
	db.SetMaxIdleConns(s.maxOpenConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	return s
}

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB { return s.db }

// Driver returns the driver name the store was opened with.
func (s *Store) Driver() string { return s.driver }

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return apperr.Wrap("repository.Ping", s.db.PingContext(ctx))
}

// Close closes the connection pool.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// placeholders returns "$from, $from+1, ..." for n parameters.
func placeholders(from, n int) string {
	var b strings.Builder
	for i := range n {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "$%d", from+i)
	}
	return b.String()
}
