// Package papers implements the denormalized paper search service: a
// single-table store with secondary indexes for each access pattern, a
// corpus loader, and query operations over the result.
package papers

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // CGo-based SQLite driver

	"github.com/YaoxuanLiu37/transitpapers/internal/appconf"
	"github.com/YaoxuanLiu37/transitpapers/internal/logging"
	"github.com/YaoxuanLiu37/transitpapers/internal/metrics"
)

//go:embed schema.sql
var ddl string

// DefaultQueryLimit is used when a caller does not cap a query.
const DefaultQueryLimit = 20

// putBatchSize is the number of item rows written per statement.
const putBatchSize = 25

// Store is the main entry point for paper search operations.
type Store struct {
	DB      *sql.DB
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// SetMetrics attaches a metrics instance so query latencies are recorded.
// Queries run unobserved until it is called.
func (s *Store) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

// Open creates the store, applying performance pragmas and migrating the
// schema. Test environments must use in-memory storage.
func Open(config appconf.Config, logger *slog.Logger) (*Store, error) {
	if config.Env == appconf.Test && config.DBPath != ":memory:" {
		return nil, fmt.Errorf("test database must use in-memory storage, got path: %s", config.DBPath)
	}

	db, err := sql.Open("sqlite3", config.DBPath)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "papers"))

	ctx := context.Background()
	if err := configurePerformance(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error configuring SQLite performance: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error performing database migration: %w", err)
	}
	configureConnectionPool(db, config)

	return &Store{DB: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// configurePerformance applies PRAGMA settings for bulk loads and queries.
func configurePerformance(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		// Increase cache size to 64MB (negative value means KB)
		"PRAGMA cache_size=-64000",
		// Store temp tables and indices in memory for faster operations
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}
	return nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	statements := strings.Split(ddl, "-- migrate")
	for _, stmt := range statements {
		trimmedStmt := strings.TrimSpace(stmt)
		if trimmedStmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, trimmedStmt); err != nil {
			return fmt.Errorf("error executing DDL statement [%s]: %w", trimmedStmt, err)
		}
	}
	return nil
}

// configureConnectionPool sets up pool settings for SQLite. Each connection
// to a :memory: database is a separate database, so those are limited to a
// single connection.
func configureConnectionPool(db *sql.DB, config appconf.Config) {
	if config.DBPath == ":memory:" {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}
}

// PutItems writes items in chunks inside a single transaction, replacing
// rows that share a (pk, sk) key.
func (s *Store) PutItems(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer logging.SafeRollbackWithLogging(tx, s.logger, "put_items")

	for start := 0; start < len(items); start += putBatchSize {
		end := start + putBatchSize
		if end > len(items) {
			end = len(items)
		}
		if err := putBatch(ctx, tx, items[start:end]); err != nil {
			return err
		}
	}

	if err := indexForSearch(ctx, tx, items); err != nil {
		return err
	}

	return tx.Commit()
}

func putBatch(ctx context.Context, tx *sql.Tx, items []Item) error {
	var query strings.Builder
	query.WriteString(`INSERT OR REPLACE INTO items
		(pk, sk, gsi1pk, gsi1sk, gsi2pk, gsi2sk, gsi3pk, gsi3sk, item_type, payload) VALUES `)

	args := make([]any, 0, len(items)*10)
	for i, item := range items {
		if i > 0 {
			query.WriteString(", ")
		}
		query.WriteString("(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")

		payload, err := json.Marshal(item.Payload)
		if err != nil {
			return fmt.Errorf("failed to encode item %s/%s: %w", item.PK, item.SK, err)
		}
		args = append(args,
			item.PK, item.SK,
			nullable(item.GSI1PK), nullable(item.GSI1SK),
			nullable(item.GSI2PK), nullable(item.GSI2SK),
			nullable(item.GSI3PK), nullable(item.GSI3SK),
			item.Payload.ItemType, string(payload))
	}

	_, err := tx.ExecContext(ctx, query.String(), args...)
	return err
}

// nullable maps empty strings to SQL NULL so partial indexes skip them.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// RecentInCategory returns the newest papers in a category, newest first.
func (s *Store) RecentInCategory(ctx context.Context, category string, limit int) ([]PaperItem, error) {
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	return s.queryPayloads(ctx, "recent_in_category", `
		SELECT payload FROM items
		WHERE pk = ?
		ORDER BY sk DESC
		LIMIT ?`,
		"CATEGORY#"+category, limit)
}

// PapersByAuthor returns every paper by the author, newest first.
func (s *Store) PapersByAuthor(ctx context.Context, authorName string) ([]PaperItem, error) {
	return s.queryPayloads(ctx, "papers_by_author", `
		SELECT payload FROM items
		WHERE gsi1pk = ?
		ORDER BY gsi1sk DESC`,
		"AUTHOR#"+authorName)
}

// GetPaperByID returns the detail item for one paper, or (nil, nil) when
// the id is unknown.
func (s *Store) GetPaperByID(ctx context.Context, arxivID string) (*PaperItem, error) {
	results, err := s.queryPayloads(ctx, "get_paper_by_id", `
		SELECT payload FROM items
		WHERE gsi3pk = ?
		ORDER BY gsi3sk
		LIMIT 1`,
		"PAPER#"+arxivID)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return &results[0], nil
}

// PapersInDateRange returns papers in a category published between the two
// dates inclusive, oldest first. Dates are YYYY-MM-DD strings; the upper
// sentinel covers every id suffix on the end date.
func (s *Store) PapersInDateRange(ctx context.Context, category, startDate, endDate string) ([]PaperItem, error) {
	return s.queryPayloads(ctx, "papers_in_date_range", `
		SELECT payload FROM items
		WHERE pk = ? AND sk BETWEEN ? AND ?
		ORDER BY sk ASC`,
		"CATEGORY#"+category, startDate+"#", endDate+"#zzzzzzz")
}

// PapersByKeyword returns papers whose extracted keywords include the given
// word, newest first. Keywords are stored lowercase.
func (s *Store) PapersByKeyword(ctx context.Context, keyword string, limit int) ([]PaperItem, error) {
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	return s.queryPayloads(ctx, "papers_by_keyword", `
		SELECT payload FROM items
		WHERE gsi2pk = ?
		ORDER BY gsi2sk DESC
		LIMIT ?`,
		"KW#"+strings.ToLower(keyword), limit)
}

// ItemCounts reports how many rows of each item type the store holds.
func (s *Store) ItemCounts(ctx context.Context) (map[string]int64, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT item_type, COUNT(*) FROM items GROUP BY item_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var itemType string
		var count int64
		if err := rows.Scan(&itemType, &count); err != nil {
			return nil, err
		}
		counts[itemType] = count
	}
	return counts, rows.Err()
}

func (s *Store) queryPayloads(ctx context.Context, pattern, query string, args ...any) ([]PaperItem, error) {
	if s.metrics != nil {
		start := time.Now()
		defer func() {
			s.metrics.StoreQueryDuration.WithLabelValues(pattern).Observe(time.Since(start).Seconds())
		}()
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []PaperItem{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var item PaperItem
		if err := json.Unmarshal([]byte(payload), &item); err != nil {
			return nil, fmt.Errorf("failed to decode item payload: %w", err)
		}
		results = append(results, item)
	}
	return results, rows.Err()
}
