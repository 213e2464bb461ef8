package fixture

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"congress-hq/dashboard/pkg/congress/memory"
)

// Source is an in-memory backend loaded from a fixture file.
type Source struct {
	path     string
	backend  *memory.Backend
	logger   *slog.Logger
	interval time.Duration
	recorder Recorder

	reloads atomic.Int64
}

// Recorder receives reload outcomes.
type Recorder interface {
	RecordFixtureReload(ok bool)
}

// Option configures a Source.
type Option func(*Source)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDebounce sets the quiet period before a changed file is reloaded.
func WithDebounce(interval time.Duration) Option {
	return func(s *Source) {
		s.interval = interval
	}
}

// WithRecorder sets the reload outcome recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Source) {
		s.recorder = r
	}
}

// Open loads the fixture at path.
func Open(path string, opts ...Option) (*Source, error) {
	snap, err := Load(path)
	if err != nil {
		return nil, err
	}

	s := &Source{
		path:     path,
		backend:  memory.New(snap),
		logger:   slog.Default(),
		interval: DefaultDebounceInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "fixture.source")

	s.logger.Info("fixture loaded",
		"path", path,
		"policies", len(snap.Policies),
		"datasources", len(snap.DataSources),
	)
	return s, nil
}

// Backend returns the backend. It stays the same across reloads.
func (s *Source) Backend() *memory.Backend {
	return s.backend
}

// Path returns the fixture path.
func (s *Source) Path() string {
	return s.path
}

// Reloads returns how many times the fixture has been reloaded.
func (s *Source) Reloads() int64 {
	return s.reloads.Load()
}

// Reload re-reads the fixture. On error the previous state is kept.
func (s *Source) Reload() error {
	snap, err := Load(s.path)
	if s.recorder != nil {
		s.recorder.RecordFixtureReload(err == nil)
	}
	if err != nil {
		return err
	}
	s.backend.Replace(snap)
	s.reloads.Add(1)

	s.logger.Info("fixture reloaded",
		"path", s.path,
		"policies", len(snap.Policies),
		"datasources", len(snap.DataSources),
	)
	return nil
}

// Watch reloads the fixture whenever the file changes. It blocks until ctx
// is cancelled. A failed reload is logged and the previous state kept.
func (s *Source) Watch(ctx context.Context) error {
	w, err := newWatcher(s.path, s.interval, s.logger)
	if err != nil {
		return err
	}

	s.logger.Info("fixture watcher started",
		"path", s.path,
		"debounce_ms", s.interval.Milliseconds(),
	)

	return w.run(ctx, func() {
		if err := s.Reload(); err != nil {
			s.logger.Error("fixture reload failed", "path", s.path, "error", err)
		}
	})
}
