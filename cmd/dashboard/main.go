// Dashboard is the read console of the Congress policy engine.
//
// It lists policy and data source tables, resolves their columns, shapes
// their rows and summarizes policy violations, either on the command line or
// over an HTTP JSON API.
//
// Usage:
//
//	# Serve the API with the configured backend
//	dashboard serve --config config.yaml
//
//	# List every table, with resolved columns
//	dashboard catalog --columns --fixture fixture.yaml
//
//	# Show the rows of a policy table
//	dashboard rows policy classification error
//
//	# Summarize violations as JSON
//	dashboard violations -o json
//
//	# Copy the current backend into a SQLite snapshot
//	dashboard snapshot export data/snapshot.db
package main

import "os"

func main() {
	os.Exit(Execute())
}
