package fixture

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const (
	onePolicy   = "policies:\n  - name: classification\n"
	twoPolicies = "policies:\n  - name: classification\n  - name: action\n"
)

func writeFixture(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func policyCount(t *testing.T, s *Source) int {
	t.Helper()
	policies, err := s.Backend().ListPolicies(context.Background())
	if err != nil {
		t.Fatalf("ListPolicies() error = %v", err)
	}
	return len(policies)
}

func TestSource_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	writeFixture(t, path, onePolicy)

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if got := policyCount(t, s); got != 1 {
		t.Fatalf("policies = %d, want 1", got)
	}

	writeFixture(t, path, twoPolicies)
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if got := policyCount(t, s); got != 2 {
		t.Errorf("policies after reload = %d, want 2", got)
	}
	if s.Reloads() != 1 {
		t.Errorf("Reloads() = %d, want 1", s.Reloads())
	}
}

type reloadRecorder struct {
	ok, failed int
}

func (r *reloadRecorder) RecordFixtureReload(ok bool) {
	if ok {
		r.ok++
	} else {
		r.failed++
	}
}

func TestSource_ReloadKeepsStateOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	writeFixture(t, path, twoPolicies)

	rec := &reloadRecorder{}
	s, err := Open(path, WithRecorder(rec))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	writeFixture(t, path, "policies: [")
	if err := s.Reload(); err == nil {
		t.Fatal("Reload() error = nil, want parse error")
	}
	if got := policyCount(t, s); got != 2 {
		t.Errorf("policies = %d, want previous state of 2", got)
	}
	if rec.ok != 0 || rec.failed != 1 {
		t.Errorf("recorder ok=%d failed=%d, want 0 and 1", rec.ok, rec.failed)
	}
	if s.Reloads() != 0 {
		t.Errorf("Reloads() = %d, want 0", s.Reloads())
	}
}

func TestSource_Watch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	writeFixture(t, path, onePolicy)

	s, err := Open(path, WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx)
	}()

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)
	writeFixture(t, path, twoPolicies)

	deadline := time.Now().Add(2 * time.Second)
	for s.Reloads() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch() error = %v", err)
	}

	if s.Reloads() == 0 {
		t.Fatal("fixture was not reloaded after write")
	}
	if got := policyCount(t, s); got != 2 {
		t.Errorf("policies after watch reload = %d, want 2", got)
	}
}

func TestDebouncer_CollapsesBursts(t *testing.T) {
	d := newDebouncer(30 * time.Millisecond)
	defer d.stop()

	calls := make(chan struct{}, 10)
	for i := 0; i < 5; i++ {
		d.trigger(func() { calls <- struct{}{} })
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)
	if got := len(calls); got != 1 {
		t.Errorf("callbacks = %d, want 1", got)
	}
}
