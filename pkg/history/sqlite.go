package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"congress-hq/dashboard/pkg/violations"
)

const backendSQLite = "sqlite"

// SQLiteConfig configures the SQLite store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 4
	MaxOpenConns int

	// BusyTimeout is how long a writer waits for a locked database.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/history.db",
		MaxOpenConns: 4,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStore is a Store backed by SQLite.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if needed) the history database.
func NewSQLiteStore(config *SQLiteConfig, logger *slog.Logger) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.MaxOpenConns <= 0 {
		config.MaxOpenConns = 4
	}
	if config.BusyTimeout <= 0 {
		config.BusyTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "history.sqlite")

	if dir := filepath.Dir(config.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, newStorageError(backendSQLite, "open", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=%d",
		config.Path, config.BusyTimeout.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, newStorageError(backendSQLite, "open", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)

	s := &SQLiteStore{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("history store initialized", "path", config.Path)
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return newStorageError(backendSQLite, "create_schema", err)
	}
	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return newStorageError(backendSQLite, "insert_schema_version", err)
	}

	var version int
	if err := s.db.QueryRow(GetSchemaVersion).Scan(&version); err != nil {
		return newStorageError(backendSQLite, "get_schema_version", err)
	}
	if version != SchemaVersion {
		return newStorageError(backendSQLite, "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}
	return nil
}

// Record implements Store.
func (s *SQLiteStore) Record(ctx context.Context, scan *Scan) error {
	skipped, err := json.Marshal(scan.Skipped)
	if err != nil {
		return newStorageError(backendSQLite, "record", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return newStorageError(backendSQLite, "record", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO scans (id, started_at, duration_ns, error_total, warning_total, skipped)
		VALUES (?, ?, ?, ?, ?, ?)`,
		scan.ID, scan.StartedAt.UnixNano(), int64(scan.Duration),
		scan.Errors(), scan.Warnings(), string(skipped),
	)
	if err != nil {
		return newStorageError(backendSQLite, "record", err)
	}

	for i, sum := range scan.Summaries {
		counts, err := json.Marshal(sum.Counts)
		if err != nil {
			return newStorageError(backendSQLite, "record", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO scan_policies (scan_id, position, policy_id, name, owner_id, description, counts)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			scan.ID, i, sum.PolicyID, sum.Name, sum.OwnerID, sum.Description, string(counts),
		)
		if err != nil {
			return newStorageError(backendSQLite, "record", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return newStorageError(backendSQLite, "record", err)
	}

	s.logger.Debug("scan recorded",
		"scan_id", scan.ID,
		"policies", len(scan.Summaries),
		"errors", scan.Errors(),
		"warnings", scan.Warnings(),
	)
	return nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context, query Query) ([]*Scan, error) {
	where, args := buildWhereClause(query)

	q := "SELECT id, started_at, duration_ns, skipped FROM scans" + where +
		" ORDER BY started_at DESC, id DESC"
	if query.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, query.Limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, newStorageError(backendSQLite, "list", err)
	}
	defer rows.Close()

	scans := []*Scan{}
	for rows.Next() {
		scan, err := scanRow(rows)
		if err != nil {
			return nil, newStorageError(backendSQLite, "list", err)
		}
		scans = append(scans, scan)
	}
	if err := rows.Err(); err != nil {
		return nil, newStorageError(backendSQLite, "list", err)
	}

	for _, scan := range scans {
		if err := s.loadSummaries(ctx, scan); err != nil {
			return nil, err
		}
	}
	return scans, nil
}

func buildWhereClause(query Query) (string, []any) {
	var conditions []string
	var args []any

	if !query.Since.IsZero() {
		conditions = append(conditions, "started_at >= ?")
		args = append(args, query.Since.UnixNano())
	}
	if query.Policy != "" {
		conditions = append(conditions,
			"id IN (SELECT scan_id FROM scan_policies WHERE name = ?)")
		args = append(args, query.Policy)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Scan, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, started_at, duration_ns, skipped FROM scans WHERE id = ?", id)
	if err != nil {
		return nil, newStorageError(backendSQLite, "get", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, newStorageError(backendSQLite, "get", err)
		}
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	scan, err := scanRow(rows)
	if err != nil {
		return nil, newStorageError(backendSQLite, "get", err)
	}
	rows.Close()

	if err := s.loadSummaries(ctx, scan); err != nil {
		return nil, err
	}
	return scan, nil
}

// Prune implements Store.
func (s *SQLiteStore) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, newStorageError(backendSQLite, "prune", err)
	}
	defer tx.Rollback()

	const stale = `SELECT id FROM scans ORDER BY started_at DESC, id DESC LIMIT -1 OFFSET ?`

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM scan_policies WHERE scan_id IN ("+stale+")", keep); err != nil {
		return 0, newStorageError(backendSQLite, "prune", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM scans WHERE id IN ("+stale+")", keep)
	if err != nil {
		return 0, newStorageError(backendSQLite, "prune", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, newStorageError(backendSQLite, "prune", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, newStorageError(backendSQLite, "prune", err)
	}

	if deleted > 0 {
		s.logger.Info("history pruned", "deleted", deleted, "kept", keep)
	}
	return deleted, nil
}

// Ping implements Store.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return newStorageError(backendSQLite, "ping", err)
	}
	return nil
}

// Close closes the database. It is safe to call more than once.
func (s *SQLiteStore) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.db.Close()
		s.logger.Info("history store closed")
	})
	return s.closeErr
}

func scanRow(rows *sql.Rows) (*Scan, error) {
	var (
		scan      Scan
		startedAt int64
		duration  int64
		skipped   sql.NullString
	)
	if err := rows.Scan(&scan.ID, &startedAt, &duration, &skipped); err != nil {
		return nil, err
	}
	scan.StartedAt = time.Unix(0, startedAt).UTC()
	scan.Duration = time.Duration(duration)

	if skipped.Valid && skipped.String != "" {
		if err := json.Unmarshal([]byte(skipped.String), &scan.Skipped); err != nil {
			return nil, fmt.Errorf("decode skipped: %w", err)
		}
	}
	return &scan, nil
}

func (s *SQLiteStore) loadSummaries(ctx context.Context, scan *Scan) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT policy_id, name, owner_id, description, counts
		FROM scan_policies WHERE scan_id = ? ORDER BY position`, scan.ID)
	if err != nil {
		return newStorageError(backendSQLite, "load_summaries", err)
	}
	defer rows.Close()

	scan.Summaries = []violations.Summary{}
	for rows.Next() {
		var (
			sum         violations.Summary
			owner, desc sql.NullString
			counts      string
		)
		if err := rows.Scan(&sum.PolicyID, &sum.Name, &owner, &desc, &counts); err != nil {
			return newStorageError(backendSQLite, "load_summaries", err)
		}
		sum.OwnerID = owner.String
		sum.Description = desc.String
		if err := json.Unmarshal([]byte(counts), &sum.Counts); err != nil {
			return newStorageError(backendSQLite, "load_summaries",
				errors.Join(fmt.Errorf("scan %s policy %s", scan.ID, sum.Name), err))
		}
		scan.Summaries = append(scan.Summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return newStorageError(backendSQLite, "load_summaries", err)
	}
	return nil
}
