// Package config provides configuration management for the policy
// dashboard.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("dashboard.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("dashboard.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention CONGRESS_SECTION_FIELD.
// For example:
//
//   - CONGRESS_BACKEND_MODE overrides backend.mode
//   - CONGRESS_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - CONGRESS_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton Pattern
//
// The dashboard command initializes a process-wide configuration:
//
//	if err := config.Initialize("dashboard.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//	cfg := config.GetConfig()
//
// Library packages never read the singleton; they take explicit values.
//
// # Example Configuration
//
//	backend:
//	  mode: fixture
//	  fixture_path: ./fixture.yaml
//	  watch: true
//
//	server:
//	  listen_address: "0.0.0.0:8080"
//
//	monitor:
//	  enabled: true
//	  schedule: "@every 5m"
//	  history_backend: sqlite
//	  history_path: data/history.db
//
//	telemetry:
//	  logging:
//	    level: info
//	    format: json
package config
