package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/config"
)

const pgUniqueViolation = "23505"

// Store wraps the relational database handle and its dialect.
type Store struct {
	DB     *sql.DB
	driver string
}

// Open connects to the configured store. Sqlite files are created on demand.
func Open(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (*Store, error) {
	var (
		db  *sql.DB
		err error
	)

	switch cfg.Driver {
	case config.DriverSQLite:
		db, err = sql.Open("sqlite3", sqliteDSN(cfg.Path))
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// One writer at a time; sqlite serializes anyway and this avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	case config.DriverPostgres:
		db, err = sql.Open("pgx", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if cfg.MaxConns > 0 {
			db.SetMaxOpenConns(cfg.MaxConns)
		}
		db.SetConnMaxIdleTime(30 * time.Second)
		db.SetConnMaxLifetime(5 * time.Minute)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}

	logger.Info("connected to store", zap.String("driver", cfg.Driver))
	return &Store{DB: db, driver: cfg.Driver}, nil
}

func sqliteDSN(path string) string {
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
}

// Driver returns the configured driver name.
func (s *Store) Driver() string {
	return s.driver
}

// Close releases database resources.
func (s *Store) Close() {
	if s != nil && s.DB != nil {
		_ = s.DB.Close()
	}
}

// Ping verifies store connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errors.New("store not configured")
	}
	return s.DB.PingContext(ctx)
}

// Rebind rewrites '?' placeholders into the dialect's bind syntax.
func (s *Store) Rebind(query string) string {
	if s.driver != config.DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// IsUniqueViolation reports whether err comes from a UNIQUE constraint.
func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}
