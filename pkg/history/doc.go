// Package history keeps past violation scans so the dashboard can show how
// a policy's error and warning counts move over time.
//
// Two stores implement Store: SQLiteStore for the server and MemoryStore for
// tests and the in-memory backend mode.
package history
