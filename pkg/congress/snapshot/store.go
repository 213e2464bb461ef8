package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"congress-hq/dashboard/pkg/congress"
	"congress-hq/dashboard/pkg/congress/memory"
)

// schemaVersion is bumped whenever the table layout changes.
const schemaVersion = 1

// Store is a snapshot database. It implements congress.Client.
type Store struct {
	db        *sql.DB
	path      string
	mu        sync.RWMutex
	closeOnce sync.Once
}

// Config configures a Store.
type Config struct {
	// Path is the database file.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// Open opens or creates the snapshot database at path.
func Open(path string) (*Store, error) {
	return OpenWithConfig(Config{Path: path})
}

// OpenWithConfig opens a snapshot database with custom configuration.
func OpenWithConfig(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)",
		cfg.Path, cfg.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db, path: cfg.Path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Export captures c and writes it to a new or existing database at path,
// replacing its contents.
func Export(ctx context.Context, c congress.Client, path string) (memory.Snapshot, error) {
	snap, err := Capture(ctx, c)
	if err != nil {
		return snap, err
	}

	s, err := Open(path)
	if err != nil {
		return snap, err
	}
	defer s.Close()

	if err := s.Save(ctx, snap); err != nil {
		return snap, err
	}
	return snap, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS captures (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		captured_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS policies (
		seq INTEGER PRIMARY KEY,
		id TEXT NOT NULL,
		name TEXT NOT NULL UNIQUE,
		owner_id TEXT NOT NULL,
		description TEXT NOT NULL,
		kind TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS rules (
		policy TEXT NOT NULL REFERENCES policies(name) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		comment TEXT NOT NULL,
		rule TEXT NOT NULL,
		PRIMARY KEY (policy, seq)
	);

	CREATE TABLE IF NOT EXISTS policy_tables (
		policy TEXT NOT NULL REFERENCES policies(name) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		name TEXT NOT NULL,
		rows TEXT NOT NULL,
		PRIMARY KEY (policy, name)
	);

	CREATE TABLE IF NOT EXISTS datasources (
		seq INTEGER PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL UNIQUE,
		driver TEXT NOT NULL,
		enabled INTEGER NOT NULL,
		description TEXT NOT NULL,
		config TEXT,
		status TEXT
	);

	CREATE TABLE IF NOT EXISTS datasource_tables (
		datasource TEXT NOT NULL REFERENCES datasources(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		name TEXT NOT NULL,
		columns TEXT NOT NULL,
		rows TEXT NOT NULL,
		PRIMARY KEY (datasource, name)
	);

	CREATE TABLE IF NOT EXISTS drivers (
		seq INTEGER PRIMARY KEY,
		id TEXT NOT NULL,
		description TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS library (
		seq INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		policy TEXT NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = s.db.Exec("INSERT INTO schema_version (version) VALUES (?)", schemaVersion)
		return err
	case err != nil:
		return err
	case version != schemaVersion:
		return fmt.Errorf("unsupported snapshot schema version %d (want %d)", version, schemaVersion)
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.db.Close()
	})
	return err
}

// CapturedAt returns when the stored snapshot was saved. It is zero for an
// empty database.
func (s *Store) CapturedAt(ctx context.Context) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var unix int64
	err := s.db.QueryRowContext(ctx, "SELECT captured_at FROM captures WHERE id = 1").Scan(&unix)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read capture time: %w", err)
	}
	return time.Unix(unix, 0).UTC(), nil
}

// Save replaces the stored snapshot in one transaction.
func (s *Store) Save(ctx context.Context, snap memory.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"rules", "policy_tables", "policies", "datasource_tables", "datasources", "drivers", "library", "captures"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for i, p := range snap.Policies {
		if err := savePolicy(ctx, tx, i, p); err != nil {
			return err
		}
	}
	for i, ds := range snap.DataSources {
		if err := saveDataSource(ctx, tx, i, ds); err != nil {
			return err
		}
	}
	for i, d := range snap.Drivers {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO drivers (seq, id, description) VALUES (?, ?, ?)",
			i, d.ID, d.Description,
		); err != nil {
			return fmt.Errorf("failed to save driver %q: %w", d.ID, err)
		}
	}
	for i, p := range snap.Library {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("failed to marshal library policy %q: %w", p.Name, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO library (seq, name, policy) VALUES (?, ?, ?)",
			i, p.Name, string(data),
		); err != nil {
			return fmt.Errorf("failed to save library policy %q: %w", p.Name, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO captures (id, captured_at) VALUES (1, ?)", time.Now().Unix(),
	); err != nil {
		return fmt.Errorf("failed to record capture time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

func savePolicy(ctx context.Context, tx *sql.Tx, seq int, p memory.PolicyData) error {
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO policies (seq, id, name, owner_id, description, kind) VALUES (?, ?, ?, ?, ?, ?)",
		seq, p.ID, p.Name, p.OwnerID, p.Description, p.Kind,
	); err != nil {
		return fmt.Errorf("failed to save policy %q: %w", p.Name, err)
	}

	for i, r := range p.Rules {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO rules (policy, seq, id, name, comment, rule) VALUES (?, ?, ?, ?, ?, ?)",
			p.Name, i, r.ID, r.Name, r.Comment, r.Text,
		); err != nil {
			return fmt.Errorf("failed to save rule %d of %q: %w", i, p.Name, err)
		}
	}

	for i, t := range p.Tables {
		rows, err := json.Marshal(nonNilRows(t.Rows))
		if err != nil {
			return fmt.Errorf("failed to marshal rows of %s/%s: %w", p.Name, t.Name, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO policy_tables (policy, seq, name, rows) VALUES (?, ?, ?, ?)",
			p.Name, i, t.Name, string(rows),
		); err != nil {
			return fmt.Errorf("failed to save table %s/%s: %w", p.Name, t.Name, err)
		}
	}
	return nil
}

func saveDataSource(ctx context.Context, tx *sql.Tx, seq int, ds memory.DataSourceData) error {
	var config, status sql.NullString
	if ds.Config != nil {
		data, err := json.Marshal(ds.Config)
		if err != nil {
			return fmt.Errorf("failed to marshal config of %q: %w", ds.Name, err)
		}
		config = sql.NullString{String: string(data), Valid: true}
	}
	if ds.Status != nil {
		data, err := json.Marshal(ds.Status)
		if err != nil {
			return fmt.Errorf("failed to marshal status of %q: %w", ds.Name, err)
		}
		status = sql.NullString{String: string(data), Valid: true}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO datasources (seq, id, name, driver, enabled, description, config, status) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		seq, ds.ID, ds.Name, ds.Driver, ds.Enabled, ds.Description, config, status,
	); err != nil {
		return fmt.Errorf("failed to save datasource %q: %w", ds.Name, err)
	}

	for i, t := range ds.Tables {
		columns := t.Columns
		if columns == nil {
			columns = []congress.Column{}
		}
		colData, err := json.Marshal(columns)
		if err != nil {
			return fmt.Errorf("failed to marshal columns of %s/%s: %w", ds.Name, t.Name, err)
		}
		rowData, err := json.Marshal(nonNilRows(t.Rows))
		if err != nil {
			return fmt.Errorf("failed to marshal rows of %s/%s: %w", ds.Name, t.Name, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO datasource_tables (datasource, seq, name, columns, rows) VALUES (?, ?, ?, ?, ?)",
			ds.ID, i, t.Name, string(colData), string(rowData),
		); err != nil {
			return fmt.Errorf("failed to save table %s/%s: %w", ds.Name, t.Name, err)
		}
	}
	return nil
}

func nonNilRows(rows []congress.Row) []congress.Row {
	if rows == nil {
		return []congress.Row{}
	}
	return rows
}

// Load reads the stored snapshot.
func (s *Store) Load(ctx context.Context) (memory.Snapshot, error) {
	var snap memory.Snapshot

	policies, err := s.ListPolicies(ctx)
	if err != nil {
		return snap, err
	}
	for _, p := range policies {
		pd := memory.PolicyData{Policy: p}
		if pd.Rules, err = s.ListRules(ctx, p.Name); err != nil {
			return snap, err
		}
		if pd.Tables, err = s.policyTables(ctx, p.Name); err != nil {
			return snap, err
		}
		snap.Policies = append(snap.Policies, pd)
	}

	datasources, err := s.ListDataSources(ctx)
	if err != nil {
		return snap, err
	}
	for _, ds := range datasources {
		dd := memory.DataSourceData{DataSource: ds}
		if dd.Tables, err = s.datasourceTables(ctx, ds.ID); err != nil {
			return snap, err
		}
		status, err := s.GetDataSourceStatus(ctx, ds.ID)
		if err != nil && !congress.IsNotFound(err) {
			return snap, err
		}
		dd.Status = status
		snap.DataSources = append(snap.DataSources, dd)
	}

	if snap.Drivers, err = s.ListDrivers(ctx); err != nil {
		return snap, err
	}
	if snap.Library, err = s.ListLibraryPolicies(ctx); err != nil {
		return snap, err
	}
	return snap, nil
}

func (s *Store) policyTables(ctx context.Context, policy string) ([]memory.TableData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT name, rows FROM policy_tables WHERE policy = ? ORDER BY seq", policy)
	if err != nil {
		return nil, congress.NewBackendError(congress.OpListPolicyTables, policy, err)
	}
	defer rows.Close()

	var out []memory.TableData
	for rows.Next() {
		var (
			t       memory.TableData
			rowData string
		)
		if err := rows.Scan(&t.Name, &rowData); err != nil {
			return nil, congress.NewBackendError(congress.OpListPolicyTables, policy, err)
		}
		if err := json.Unmarshal([]byte(rowData), &t.Rows); err != nil {
			return nil, congress.NewBackendError(congress.OpListPolicyRows, policy+"/"+t.Name, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) datasourceTables(ctx context.Context, id string) ([]memory.TableData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT name, columns, rows FROM datasource_tables WHERE datasource = ? ORDER BY seq", id)
	if err != nil {
		return nil, congress.NewBackendError(congress.OpListDataSourceTables, id, err)
	}
	defer rows.Close()

	var out []memory.TableData
	for rows.Next() {
		var (
			t                memory.TableData
			colData, rowData string
		)
		if err := rows.Scan(&t.Name, &colData, &rowData); err != nil {
			return nil, congress.NewBackendError(congress.OpListDataSourceTables, id, err)
		}
		if err := json.Unmarshal([]byte(colData), &t.Columns); err != nil {
			return nil, congress.NewBackendError(congress.OpGetDataSourceTableSchema, id+"/"+t.Name, err)
		}
		if len(t.Columns) == 0 {
			t.Columns = nil
		}
		if err := json.Unmarshal([]byte(rowData), &t.Rows); err != nil {
			return nil, congress.NewBackendError(congress.OpListDataSourceRows, id+"/"+t.Name, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
