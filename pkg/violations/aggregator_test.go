package violations

import (
	"context"
	"errors"
	"testing"
	"time"

	"congress-hq/dashboard/pkg/congress"
	"congress-hq/dashboard/pkg/congress/memory"
)

func rowsOf(n int) []congress.Row {
	rows := make([]congress.Row, n)
	for i := range rows {
		rows[i] = congress.Row{Data: []string{"vm"}}
	}
	return rows
}

func newTestBackend() *memory.Backend {
	return memory.New(memory.Snapshot{
		Policies: []memory.PolicyData{
			{
				Policy: congress.Policy{ID: "p-1", Name: "classification", OwnerID: "admin", Description: "checks"},
				Tables: []memory.TableData{
					{Name: "error", Rows: rowsOf(2)},
					{Name: "other", Rows: rowsOf(5)},
				},
			},
			{
				Policy: congress.Policy{Name: "quiet"},
				Tables: []memory.TableData{
					{Name: "error"},
					{Name: "warning"},
				},
			},
			{
				Policy: congress.Policy{Name: "derived"},
				Tables: []memory.TableData{
					{Name: "nova:error", Rows: rowsOf(4)},
					{Name: "nova:warning", Rows: rowsOf(4)},
				},
			},
			{
				Policy: congress.Policy{Name: "both"},
				Tables: []memory.TableData{
					{Name: "warning", Rows: rowsOf(1)},
					{Name: "error", Rows: rowsOf(3)},
				},
			},
		},
	})
}

func TestIsViolationTable(t *testing.T) {
	tests := []struct {
		table string
		want  bool
	}{
		{"error", true},
		{"warning", true},
		{"errors", false},
		{"nova:error", false},
		{"nova:flavors", false},
		{"flavors", false},
	}
	for _, tt := range tests {
		if got := IsViolationTable(tt.table); got != tt.want {
			t.Errorf("IsViolationTable(%q) = %v, want %v", tt.table, got, tt.want)
		}
	}
}

func TestViolations(t *testing.T) {
	a := NewAggregator(newTestBackend(), nil, nil)

	summaries := a.Violations(context.Background())

	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2: %+v", len(summaries), summaries)
	}

	first := summaries[0]
	if first.PolicyID != "p-1" || first.Name != "classification" || first.OwnerID != "admin" || first.Description != "checks" {
		t.Errorf("summary details = %+v", first)
	}
	if first.Errors() != 2 {
		t.Errorf("Errors() = %d, want 2", first.Errors())
	}
	if _, ok := first.Counts[TableWarning]; ok {
		t.Errorf("Counts = %v, want no warning key", first.Counts)
	}

	second := summaries[1]
	if second.Name != "both" || second.PolicyID != "both" {
		t.Errorf("second summary = %+v, want policy both with name-derived id", second)
	}
	if second.Errors() != 3 || second.Warnings() != 1 {
		t.Errorf("counts = %v, want error 3 warning 1", second.Counts)
	}
}

func TestScan_RowFailureIsContained(t *testing.T) {
	backend := newTestBackend()
	backend.FailOn(congress.OpListPolicyRows, "both/error", errors.New("timeout"))

	report := NewAggregator(backend, nil, nil).Scan(context.Background())

	if len(report.Summaries) != 2 {
		t.Fatalf("got %d summaries, want 2", len(report.Summaries))
	}
	both := report.Summaries[1]
	if both.Errors() != 0 || both.Warnings() != 1 {
		t.Errorf("both counts = %v, want warning only", both.Counts)
	}
	if len(report.Skipped) != 1 || report.Skipped[0].Table != "error" || report.Skipped[0].Policy != "both" {
		t.Errorf("Skipped = %+v", report.Skipped)
	}
}

func TestScan_PolicyListingFails(t *testing.T) {
	backend := newTestBackend()
	backend.FailOn(congress.OpListPolicies, "", errors.New("unreachable"))

	report := NewAggregator(backend, nil, nil).Scan(context.Background())

	if len(report.Summaries) != 0 {
		t.Errorf("Summaries = %+v, want none", report.Summaries)
	}
	if len(report.Skipped) != 1 || report.Skipped[0].Op != congress.OpListPolicies {
		t.Errorf("Skipped = %+v", report.Skipped)
	}
}

type countingRecorder struct {
	scans int
	last  Report
}

func (c *countingRecorder) RecordViolationScan(report Report, duration time.Duration) {
	c.scans++
	c.last = report
}

func TestScan_Recorder(t *testing.T) {
	rec := &countingRecorder{}
	a := NewAggregator(newTestBackend(), rec, nil)

	a.Scan(context.Background())

	if rec.scans != 1 || len(rec.last.Summaries) != 2 {
		t.Errorf("recorder saw %d scans with %d summaries", rec.scans, len(rec.last.Summaries))
	}
}
