// Package violations summarizes policy violations: the row counts of each
// policy's "error" and "warning" tables.
//
// Only unqualified table names are considered. A service-derived table such
// as "nova:error" is never a violation table.
package violations

import (
	"context"
	"log/slog"
	"time"

	"congress-hq/dashboard/pkg/congress"
	"congress-hq/dashboard/pkg/rules"
)

// Violation table names.
const (
	TableError   = "error"
	TableWarning = "warning"
)

// IsViolationTable reports whether a policy table name denotes a violation
// table.
func IsViolationTable(table string) bool {
	if rules.IsQualified(table) {
		return false
	}
	return table == TableError || table == TableWarning
}

// Summary is the violation summary of one policy.
type Summary struct {
	PolicyID    string `json:"id"`
	Name        string `json:"name"`
	OwnerID     string `json:"owner_id"`
	Description string `json:"description"`

	// Counts maps a violation table name to its row count. Only nonzero
	// counts are present.
	Counts map[string]int `json:"counts"`
}

// Errors returns the error row count.
func (s Summary) Errors() int {
	return s.Counts[TableError]
}

// Warnings returns the warning row count.
func (s Summary) Warnings() int {
	return s.Counts[TableWarning]
}

// Skip records a policy or table left out of a scan.
type Skip struct {
	Policy string `json:"policy"`
	Table  string `json:"table,omitempty"`
	Op     string `json:"op"`
	Error  string `json:"error"`
}

// Report is the outcome of one scan.
type Report struct {
	Summaries []Summary `json:"summaries"`
	Skipped   []Skip    `json:"skipped,omitempty"`
}

// Recorder receives scan outcomes. The metrics collector implements it.
type Recorder interface {
	RecordViolationScan(report Report, duration time.Duration)
}

// Aggregator scans policies for violations.
type Aggregator struct {
	backend  congress.PolicyReader
	recorder Recorder
	logger   *slog.Logger
}

// NewAggregator creates an aggregator. recorder may be nil; a nil logger
// uses slog.Default.
func NewAggregator(backend congress.PolicyReader, recorder Recorder, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		backend:  backend,
		recorder: recorder,
		logger:   logger.With("component", "violations.aggregator"),
	}
}

// Violations returns the summaries of policies with at least one error or
// warning row, in policy listing order.
func (a *Aggregator) Violations(ctx context.Context) []Summary {
	return a.Scan(ctx).Summaries
}

// Scan is Violations plus the list of skipped policies and tables.
func (a *Aggregator) Scan(ctx context.Context) Report {
	start := time.Now()
	report := Report{Summaries: []Summary{}}

	policies, err := congress.ListPolicies(ctx, a.backend)
	if err != nil {
		a.logger.ErrorContext(ctx, "unable to list policies", "error", err)
		report.Skipped = append(report.Skipped, Skip{Op: congress.OpListPolicies, Error: err.Error()})
		a.record(report, start)
		return report
	}

	for _, p := range policies {
		summary, skips := a.scanPolicy(ctx, p)
		report.Skipped = append(report.Skipped, skips...)
		if summary != nil {
			report.Summaries = append(report.Summaries, *summary)
		}
	}

	a.record(report, start)
	return report
}

func (a *Aggregator) record(report Report, start time.Time) {
	if a.recorder != nil {
		a.recorder.RecordViolationScan(report, time.Since(start))
	}
}

// scanPolicy returns nil when the policy has no violations.
func (a *Aggregator) scanPolicy(ctx context.Context, p congress.Policy) (*Summary, []Skip) {
	tables, err := a.backend.ListPolicyTables(ctx, p.Name)
	if err != nil {
		a.logger.ErrorContext(ctx, "unable to get tables for policy",
			"policy", p.Name,
			"error", err,
		)
		return nil, []Skip{{Policy: p.Name, Op: congress.OpListPolicyTables, Error: err.Error()}}
	}

	var skips []Skip
	counts := make(map[string]int)
	for _, t := range tables {
		name := t.DisplayName()
		if !IsViolationTable(name) {
			continue
		}

		listed, err := a.backend.ListPolicyRows(ctx, p.Name, name)
		if err != nil {
			a.logger.ErrorContext(ctx, "unable to get rows for violation table",
				"policy", p.Name,
				"table", name,
				"error", err,
			)
			skips = append(skips, Skip{Policy: p.Name, Table: name, Op: congress.OpListPolicyRows, Error: err.Error()})
			continue
		}
		if len(listed) > 0 {
			counts[name] = len(listed)
		}
	}

	if counts[TableError] == 0 && counts[TableWarning] == 0 {
		return nil, skips
	}

	return &Summary{
		PolicyID:    p.ID,
		Name:        p.Name,
		OwnerID:     p.OwnerID,
		Description: p.Description,
		Counts:      counts,
	}, skips
}
