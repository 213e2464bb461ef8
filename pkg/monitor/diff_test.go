package monitor

import (
	"reflect"
	"testing"

	"congress-hq/dashboard/pkg/history"
	"congress-hq/dashboard/pkg/violations"
)

func scanWith(summaries ...violations.Summary) *history.Scan {
	return &history.Scan{Summaries: summaries}
}

func summary(name string, errs, warns int) violations.Summary {
	counts := map[string]int{}
	if errs > 0 {
		counts[violations.TableError] = errs
	}
	if warns > 0 {
		counts[violations.TableWarning] = warns
	}
	return violations.Summary{Name: name, Counts: counts}
}

func TestDiff(t *testing.T) {
	tests := []struct {
		name string
		prev *history.Scan
		cur  *history.Scan
		want []Change
	}{
		{
			name: "first scan",
			prev: nil,
			cur:  scanWith(summary("a", 2, 0)),
			want: []Change{{Policy: "a", Table: "error", Before: 0, After: 2}},
		},
		{
			name: "unchanged",
			prev: scanWith(summary("a", 2, 1)),
			cur:  scanWith(summary("a", 2, 1)),
			want: nil,
		},
		{
			name: "increase and new warning",
			prev: scanWith(summary("a", 1, 0)),
			cur:  scanWith(summary("a", 3, 2)),
			want: []Change{
				{Policy: "a", Table: "error", Before: 1, After: 3},
				{Policy: "a", Table: "warning", Before: 0, After: 2},
			},
		},
		{
			name: "policy resolved",
			prev: scanWith(summary("a", 1, 0), summary("b", 4, 0)),
			cur:  scanWith(summary("a", 1, 0)),
			want: []Change{{Policy: "b", Table: "error", Before: 4, After: 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.prev, tt.cur)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Diff() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestChange_Increased(t *testing.T) {
	if !(Change{Before: 1, After: 2}).Increased() {
		t.Error("Increased() = false for 1 -> 2")
	}
	if (Change{Before: 2, After: 0}).Increased() {
		t.Error("Increased() = true for 2 -> 0")
	}
}
