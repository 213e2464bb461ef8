// Package server exposes the console views as a read-only JSON API.
//
// All API routes live under /api/v1 and are mounted on a chi router together
// with the health probes and the Prometheus endpoint:
//
//	GET  /api/v1/catalog[?columns=true]
//	GET  /api/v1/catalog/columns
//	GET  /api/v1/violations
//	GET  /api/v1/policies
//	GET  /api/v1/policies/{policy}/rules
//	GET  /api/v1/policies/{policy}/tables/{table}/rows
//	GET  /api/v1/datasources
//	GET  /api/v1/datasources/statuses
//	GET  /api/v1/datasources/{id}
//	GET  /api/v1/datasources/{id}/tables
//	GET  /api/v1/datasources/{id}/tables/{table}/rows
//	POST /api/v1/rules/format
//	GET  /api/v1/library
//	GET  /api/v1/library/{name}
//	GET  /api/v1/drivers
//	GET  /api/v1/history[?limit=&policy=&since=]
//	GET  /api/v1/history/{id}
//
// Errors are returned as {"error": {"code": ..., "message": ...}}.
package server
