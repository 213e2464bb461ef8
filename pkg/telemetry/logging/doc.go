// Package logging builds the dashboard's structured logger.
//
// # Overview
//
// The logging package configures Go's log/slog for the dashboard:
//   - JSON, text and console output formats
//   - Configurable log levels (debug, info, warn, error)
//   - Credential redaction of attribute values, including data source
//     configuration maps
//   - Request, policy and data source fields carried on the context
//
// Engine packages accept a plain *slog.Logger. New returns one whose
// handler applies redaction and context fields, so callers never depend on
// this package.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:             "info",
//	    Format:            "json",
//	    RedactCredentials: true,
//	})
//
//	ctx = logging.WithRequestID(ctx, "req-123")
//	logger.InfoContext(ctx, "catalog built",
//	    "entries", 4,
//	    "config", ds.Config, // password values are redacted
//	)
package logging
