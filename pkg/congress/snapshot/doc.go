// Package snapshot persists backend state to a SQLite file.
//
// Capture walks a live backend and records everything the dashboard reads:
// policies with rules and tables, data sources with schemas, rows and
// status, drivers and the policy library. A Store writes a capture to disk
// and serves it back through the congress.Client interface, so an exported
// snapshot can stand in for the live engine during offline analysis.
//
// The database is opened through the pure-Go modernc.org/sqlite driver in
// WAL mode with a single connection.
package snapshot
