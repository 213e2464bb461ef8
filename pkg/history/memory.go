package history

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"congress-hq/dashboard/pkg/violations"
)

// MemoryStore is a Store that keeps scans in memory. Contents are lost on
// exit.
type MemoryStore struct {
	mu    sync.RWMutex
	scans []*Scan
	byID  map[string]*Scan
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]*Scan)}
}

// Record implements Store.
func (s *MemoryStore) Record(ctx context.Context, scan *Scan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[scan.ID]; exists {
		return newStorageError("memory", "record", fmt.Errorf("duplicate scan id %s", scan.ID))
	}

	stored := copyScan(scan)
	s.byID[stored.ID] = stored
	s.scans = append(s.scans, stored)
	sort.SliceStable(s.scans, func(i, j int) bool {
		return newer(s.scans[i], s.scans[j])
	})
	return nil
}

// List implements Store.
func (s *MemoryStore) List(ctx context.Context, query Query) ([]*Scan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []*Scan{}
	for _, scan := range s.scans {
		if !query.Since.IsZero() && scan.StartedAt.Before(query.Since) {
			continue
		}
		if query.Policy != "" {
			if _, ok := scan.Summary(query.Policy); !ok {
				continue
			}
		}
		out = append(out, copyScan(scan))
		if query.Limit > 0 && len(out) == query.Limit {
			break
		}
	}
	return out, nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Scan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	scan, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return copyScan(scan), nil
}

// Prune implements Store.
func (s *MemoryStore) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.scans) <= keep {
		return 0, nil
	}
	stale := s.scans[keep:]
	for _, scan := range stale {
		delete(s.byID, scan.ID)
	}
	deleted := int64(len(stale))
	s.scans = s.scans[:keep:keep]
	return deleted, nil
}

// Ping implements Store.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}

// Size returns the number of stored scans.
func (s *MemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.scans)
}

func newer(a, b *Scan) bool {
	if !a.StartedAt.Equal(b.StartedAt) {
		return a.StartedAt.After(b.StartedAt)
	}
	return a.ID > b.ID
}

func copyScan(scan *Scan) *Scan {
	c := *scan
	c.Summaries = make([]violations.Summary, len(scan.Summaries))
	copy(c.Summaries, scan.Summaries)
	for i, sum := range c.Summaries {
		counts := make(map[string]int, len(sum.Counts))
		for k, v := range sum.Counts {
			counts[k] = v
		}
		c.Summaries[i].Counts = counts
	}
	c.Skipped = append(c.Skipped[:0:0], scan.Skipped...)
	return &c
}
