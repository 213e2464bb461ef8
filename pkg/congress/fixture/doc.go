// Package fixture loads backend snapshots from YAML files.
//
// A fixture file describes policies, their rules and tables, data sources
// with their schemas, statuses and rows, drivers and the policy library. A
// Source keeps an in-memory backend in sync with the file, reloading it
// whenever the file changes on disk.
//
// Fixtures back the dashboard when no live policy engine is reachable and
// drive the package tests.
package fixture
