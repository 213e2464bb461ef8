package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"congress-hq/dashboard/pkg/history"
	"congress-hq/dashboard/pkg/violations"
)

// Scanner produces a violation report. *violations.Aggregator implements it.
type Scanner interface {
	Scan(ctx context.Context) violations.Report
}

// Recorder receives history write outcomes.
type Recorder interface {
	RecordHistoryWrite(ok bool)
}

// Config controls the schedule and retention.
type Config struct {
	// Schedule is a standard five-field cron expression.
	Schedule string

	// RetentionCount is how many scans to keep. Zero keeps everything.
	RetentionCount int
}

// Monitor schedules violation scans.
type Monitor struct {
	scanner  Scanner
	store    history.Store
	recorder Recorder
	config   Config
	logger   *slog.Logger

	cron    *cron.Cron
	mu      sync.Mutex
	running bool
	done    chan struct{}

	lastMu sync.RWMutex
	last   *history.Scan
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithRecorder sets the history write recorder.
func WithRecorder(r Recorder) Option {
	return func(m *Monitor) {
		m.recorder = r
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Monitor) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New creates a monitor. It does not start scheduling until Start.
func New(scanner Scanner, store history.Store, cfg Config, opts ...Option) *Monitor {
	m := &Monitor{
		scanner: scanner,
		store:   store,
		config:  cfg,
		logger:  slog.Default(),
		cron:    newCron(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("component", "monitor")
	return m
}

// newCron creates a scheduler that skips a tick while the previous scan is
// still running.
func newCron() *cron.Cron {
	return cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
}

// Start schedules scans. The schedule stops when ctx is cancelled or Stop
// is called. An empty schedule leaves the monitor idle.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return errors.New("monitor already running")
	}
	if m.config.Schedule == "" {
		m.logger.Info("scan schedule not configured, monitor idle")
		return nil
	}

	if _, err := cron.ParseStandard(m.config.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", m.config.Schedule, err)
	}

	m.cron = newCron()
	_, err := m.cron.AddFunc(m.config.Schedule, func() {
		if _, err := m.RunOnce(ctx); err != nil {
			m.logger.Error("scheduled scan failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule scans: %w", err)
	}

	m.cron.Start()
	m.running = true
	m.done = make(chan struct{})

	m.logger.Info("monitor started",
		"schedule", m.config.Schedule,
		"retention_count", m.config.RetentionCount,
	)

	go func(done <-chan struct{}) {
		select {
		case <-ctx.Done():
			m.Stop()
		case <-done:
		}
	}(m.done)

	return nil
}

// Stop stops scheduling and waits for a running scan to finish.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	<-m.cron.Stop().Done()
	close(m.done)
	m.running = false
	m.logger.Info("monitor stopped")
}

// IsRunning reports whether scans are scheduled.
func (m *Monitor) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// NextRun returns the next scheduled scan time, or nil when idle.
func (m *Monitor) NextRun() *time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.cron.Entries()
	if !m.running || len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}

// Last returns the most recent scan recorded by this monitor, or nil.
func (m *Monitor) Last() *history.Scan {
	m.lastMu.RLock()
	defer m.lastMu.RUnlock()
	return m.last
}

// RunOnce scans, records the scan and prunes history.
func (m *Monitor) RunOnce(ctx context.Context) (*history.Scan, error) {
	start := time.Now()
	report := m.scanner.Scan(ctx)
	scan := history.NewScan(report, start, time.Since(start))

	err := m.store.Record(ctx, scan)
	if m.recorder != nil {
		m.recorder.RecordHistoryWrite(err == nil)
	}
	if err != nil {
		return nil, fmt.Errorf("record scan: %w", err)
	}

	m.lastMu.Lock()
	prev := m.last
	m.last = scan
	m.lastMu.Unlock()

	if prev == nil {
		prev = m.previous(ctx, scan.ID)
	}
	m.logChanges(scan, Diff(prev, scan))

	if m.config.RetentionCount > 0 {
		if _, err := m.store.Prune(ctx, m.config.RetentionCount); err != nil {
			// The scan itself is stored; a failed prune is retried next run.
			m.logger.Warn("history prune failed", "error", err)
		}
	}

	m.logger.Info("scan recorded",
		"scan_id", scan.ID,
		"policies", len(scan.Summaries),
		"errors", scan.Errors(),
		"warnings", scan.Warnings(),
		"skipped", len(scan.Skipped),
		"duration_ms", scan.Duration.Milliseconds(),
	)
	return scan, nil
}

// previous loads the newest stored scan other than id, so the first run
// after a restart still compares against history.
func (m *Monitor) previous(ctx context.Context, id string) *history.Scan {
	scans, err := m.store.List(ctx, history.Query{Limit: 2})
	if err != nil {
		m.logger.Warn("load previous scan failed", "error", err)
		return nil
	}
	for _, s := range scans {
		if s.ID != id {
			return s
		}
	}
	return nil
}

func (m *Monitor) logChanges(scan *history.Scan, changes []Change) {
	for _, c := range changes {
		level := slog.LevelInfo
		if c.Increased() {
			level = slog.LevelWarn
		}
		m.logger.Log(context.Background(), level, "violation count changed",
			"scan_id", scan.ID,
			"policy", c.Policy,
			"table", c.Table,
			"before", c.Before,
			"after", c.After,
		)
	}
}
