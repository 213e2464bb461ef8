package fixture

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"congress-hq/dashboard/pkg/congress/memory"
)

// Load reads and validates a fixture file.
func Load(path string) (memory.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return memory.Snapshot{}, fmt.Errorf("failed to read fixture %q: %w", path, err)
	}

	snap, err := Parse(data)
	if err != nil {
		return memory.Snapshot{}, fmt.Errorf("fixture %q: %w", path, err)
	}
	return snap, nil
}

// Parse decodes and validates fixture YAML. Unknown fields are rejected.
func Parse(data []byte) (memory.Snapshot, error) {
	var snap memory.Snapshot

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&snap); err != nil && !errors.Is(err, io.EOF) {
		return memory.Snapshot{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := Validate(snap); err != nil {
		return memory.Snapshot{}, err
	}
	return snap, nil
}

// ValidationError lists every problem found in a fixture.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid fixture: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid fixture: %d problems:\n  - %s",
		len(e.Problems), strings.Join(e.Problems, "\n  - "))
}

// Validate checks that names are present and unique and that every row of a
// data source table with a declared schema matches the schema width.
func Validate(snap memory.Snapshot) error {
	var problems []string

	policies := make(map[string]bool)
	for i, p := range snap.Policies {
		if p.Name == "" {
			problems = append(problems, fmt.Sprintf("policies[%d]: name is required", i))
			continue
		}
		if policies[p.Name] {
			problems = append(problems, fmt.Sprintf("policies[%d]: duplicate policy %q", i, p.Name))
		}
		policies[p.Name] = true
		problems = append(problems, tableProblems(fmt.Sprintf("policy %q", p.Name), p.Tables, false)...)
	}

	ids := make(map[string]bool)
	names := make(map[string]bool)
	for i, ds := range snap.DataSources {
		if ds.ID == "" || ds.Name == "" {
			problems = append(problems, fmt.Sprintf("datasources[%d]: id and name are required", i))
			continue
		}
		if ids[ds.ID] {
			problems = append(problems, fmt.Sprintf("datasources[%d]: duplicate id %q", i, ds.ID))
		}
		if names[ds.Name] {
			problems = append(problems, fmt.Sprintf("datasources[%d]: duplicate name %q", i, ds.Name))
		}
		ids[ds.ID] = true
		names[ds.Name] = true
		problems = append(problems, tableProblems(fmt.Sprintf("datasource %q", ds.Name), ds.Tables, true)...)
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func tableProblems(owner string, tables []memory.TableData, checkWidth bool) []string {
	var problems []string
	seen := make(map[string]bool)
	for i, t := range tables {
		if t.Name == "" {
			problems = append(problems, fmt.Sprintf("%s: tables[%d]: name is required", owner, i))
			continue
		}
		if seen[t.Name] {
			problems = append(problems, fmt.Sprintf("%s: duplicate table %q", owner, t.Name))
		}
		seen[t.Name] = true

		if !checkWidth || len(t.Columns) == 0 {
			continue
		}
		for j, r := range t.Rows {
			if len(r.Data) != len(t.Columns) {
				problems = append(problems, fmt.Sprintf("%s: table %q: row %d has %d values, schema has %d columns",
					owner, t.Name, j, len(r.Data), len(t.Columns)))
			}
		}
	}
	return problems
}
