// Package warehouse implements the transit-data warehouse: schema migration,
// strict 1:1 CSV loading, and the analytical query catalog.
package warehouse

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver
)

//go:embed schema.sql
var ddl string

// Store is the main entry point for warehouse operations.
type Store struct {
	DB     *sql.DB
	logger *slog.Logger
}

// Open connects to the warehouse database using the given DSN.
func Open(dsn string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to open warehouse DB: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if logger == nil {
		logger = slog.Default()
	}

	return &Store{DB: db, logger: logger.With(slog.String("component", "warehouse"))}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// Ping verifies database connectivity with a bounded timeout.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.DB.PingContext(ctx)
}

// Migrate recreates the warehouse schema from the embedded DDL.
// Statements are separated by "-- migrate" markers and executed in order.
func (s *Store) Migrate(ctx context.Context) error {
	statements := strings.Split(ddl, "-- migrate")
	for _, stmt := range statements {
		trimmedStmt := strings.TrimSpace(stmt)
		if trimmedStmt == "" {
			continue
		}
		if _, err := s.DB.ExecContext(ctx, trimmedStmt); err != nil {
			return fmt.Errorf("error executing DDL statement [%s]: %w", trimmedStmt, err)
		}
	}
	return nil
}

// ConstraintKind classifies database constraint violations.
type ConstraintKind int

const (
	ConstraintUnknown ConstraintKind = iota
	ConstraintForeignKey
	ConstraintCheck
	ConstraintUnique
	ConstraintNotNull
)

// String returns a short name for the constraint kind.
func (k ConstraintKind) String() string {
	switch k {
	case ConstraintForeignKey:
		return "foreign_key"
	case ConstraintCheck:
		return "check"
	case ConstraintUnique:
		return "unique"
	case ConstraintNotNull:
		return "not_null"
	default:
		return "unknown"
	}
}

// ClassifyConstraintViolation inspects an error returned by the driver and
// reports which kind of integrity constraint it violated, if any.
// SQLSTATE class 23 covers integrity constraint violations.
func ClassifyConstraintViolation(err error) (ConstraintKind, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return ConstraintUnknown, false
	}
	switch pgErr.Code {
	case "23503":
		return ConstraintForeignKey, true
	case "23514":
		return ConstraintCheck, true
	case "23505":
		return ConstraintUnique, true
	case "23502":
		return ConstraintNotNull, true
	}
	if strings.HasPrefix(pgErr.Code, "23") {
		return ConstraintUnknown, true
	}
	return ConstraintUnknown, false
}
