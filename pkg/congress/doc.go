// Package congress defines the backend client facade used by the dashboard
// engine.
//
// # Overview
//
// The policy engine exposes two structurally different kinds of data:
//
//   - Policies: declarative rule sets whose tables have no declared schema.
//   - Data sources (services): driver-backed tables whose schema is reported
//     by the driver.
//
// The Client interface is the single capability the engine depends on for
// reading both. Transport, authentication and retry policy belong to the
// concrete implementation; the engine never retries a failed call itself.
//
// # Implementations
//
//   - memory: an in-memory backend with per-call failure injection
//   - fixture: a YAML snapshot file, optionally hot reloaded
//   - snapshot: a SQLite snapshot exported from any other Client
//
// # Identifiers
//
// Policies may come back without an identifier (or with the literal "None").
// NormalizePolicies substitutes the display name so that identifiers are
// unique within one listing. Rules without identifiers receive a synthesized
// UUID from NormalizeRules.
package congress
