package history

// SchemaVersion is the current history schema version.
const SchemaVersion = 1

// Schema creates the history tables. Timestamps are Unix nanoseconds so
// range filters compare as integers.
const Schema = `
CREATE TABLE IF NOT EXISTS scans (
    id TEXT PRIMARY KEY,
    started_at INTEGER NOT NULL,
    duration_ns INTEGER NOT NULL,
    error_total INTEGER NOT NULL,
    warning_total INTEGER NOT NULL,
    skipped TEXT
);

CREATE INDEX IF NOT EXISTS idx_scans_started_at ON scans(started_at DESC);

CREATE TABLE IF NOT EXISTS scan_policies (
    scan_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    policy_id TEXT NOT NULL,
    name TEXT NOT NULL,
    owner_id TEXT,
    description TEXT,
    counts TEXT NOT NULL,
    PRIMARY KEY (scan_id, position)
);

CREATE INDEX IF NOT EXISTS idx_scan_policies_name ON scan_policies(name);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);
`

// InsertSchemaVersion records the schema version on first open.
const InsertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version) VALUES (?)`

// GetSchemaVersion reads the highest recorded schema version.
const GetSchemaVersion = `SELECT MAX(version) FROM schema_version`
