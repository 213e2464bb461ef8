package fixture

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	snap, err := Load(filepath.Join("testdata", "basic.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(snap.Policies) != 2 {
		t.Fatalf("len(Policies) = %d, want 2", len(snap.Policies))
	}
	p := snap.Policies[0]
	if p.Name != "classification" || p.OwnerID != "user" || len(p.Rules) != 2 || len(p.Tables) != 2 {
		t.Errorf("Policies[0] = %+v", p)
	}
	if got := p.Tables[0].Rows[1].Data[0]; got != "vm-2" {
		t.Errorf("error row 1 = %q, want vm-2", got)
	}

	if len(snap.DataSources) != 2 {
		t.Fatalf("len(DataSources) = %d, want 2", len(snap.DataSources))
	}
	nova := snap.DataSources[0]
	if nova.Status == nil || nova.Status.NumberOfUpdates != 12 || !nova.Status.Initialized {
		t.Errorf("nova status = %+v", nova.Status)
	}
	if len(nova.Tables[0].Columns) != 2 || nova.Tables[0].Columns[1].Name != "status" {
		t.Errorf("servers columns = %+v", nova.Tables[0].Columns)
	}
	if snap.DataSources[1].Enabled {
		t.Error("neutronv2 Enabled = true, want false")
	}

	if len(snap.Drivers) != 2 || len(snap.Library) != 1 {
		t.Errorf("drivers = %d, library = %d", len(snap.Drivers), len(snap.Library))
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want os.ErrNotExist", err)
	}
}

func TestParse_Empty(t *testing.T) {
	snap, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil) error = %v", err)
	}
	if len(snap.Policies) != 0 || len(snap.DataSources) != 0 {
		t.Errorf("Parse(nil) = %+v, want empty snapshot", snap)
	}
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte("policies:\n  - name: a\n    colour: red\n"))
	if err == nil {
		t.Fatal("Parse() error = nil, want unknown field error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		problem string
	}{
		{
			name:    "policy without name",
			yaml:    "policies:\n  - description: x\n",
			problem: "name is required",
		},
		{
			name:    "duplicate policy",
			yaml:    "policies:\n  - name: a\n  - name: a\n",
			problem: `duplicate policy "a"`,
		},
		{
			name:    "datasource without id",
			yaml:    "datasources:\n  - name: nova\n",
			problem: "id and name are required",
		},
		{
			name:    "duplicate datasource name",
			yaml:    "datasources:\n  - {id: a, name: nova}\n  - {id: b, name: nova}\n",
			problem: `duplicate name "nova"`,
		},
		{
			name: "row wider than schema",
			yaml: "datasources:\n  - id: a\n    name: nova\n    tables:\n" +
				"      - name: servers\n        columns: [{name: id}]\n        rows:\n          - data: [a, b]\n",
			problem: "row 0 has 2 values, schema has 1 columns",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Parse() error = %v, want *ValidationError", err)
			}
			if !strings.Contains(verr.Error(), tt.problem) {
				t.Errorf("error = %q, want it to contain %q", verr.Error(), tt.problem)
			}
		})
	}
}
