// Package testkit provides in-memory collaborator fakes and deterministic
// sample tables for tests and demos.
package testkit

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"chartlab/domain/core"
	"chartlab/domain/snapshot"
	"chartlab/ports"
)

// SliceSource is an in-memory RowSource
type SliceSource struct {
	Table ports.RawTable
	Err   error
}

// NewSliceSource wraps a raw table in a RowSource
func NewSliceSource(name string, columnNames []string, rows []map[string]string) *SliceSource {
	return &SliceSource{Table: ports.RawTable{
		Name:        name,
		ColumnNames: columnNames,
		Rows:        rows,
	}}
}

// Read returns the wrapped table or the configured error
func (s *SliceSource) Read(ctx context.Context) (*ports.RawTable, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	t := s.Table
	return &t, nil
}

// RecordingPlotter captures render specs instead of drawing
type RecordingPlotter struct {
	mu    sync.Mutex
	Specs []ports.RenderSpec
	Err   error
}

// Render records the spec
func (p *RecordingPlotter) Render(ctx context.Context, spec ports.RenderSpec) error {
	if p.Err != nil {
		return p.Err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Specs = append(p.Specs, spec)
	return nil
}

// LastSpec returns the most recent render spec, or nil
func (p *RecordingPlotter) LastSpec() *ports.RenderSpec {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Specs) == 0 {
		return nil
	}
	return &p.Specs[len(p.Specs)-1]
}

// MemorySnapshotRepository keeps snapshots in a map
type MemorySnapshotRepository struct {
	mu    sync.RWMutex
	snaps map[core.SnapshotID]*snapshot.SessionSnapshot
}

// NewMemorySnapshotRepository creates an empty repository
func NewMemorySnapshotRepository() *MemorySnapshotRepository {
	return &MemorySnapshotRepository{snaps: make(map[core.SnapshotID]*snapshot.SessionSnapshot)}
}

// Save stores a snapshot by ID
func (r *MemorySnapshotRepository) Save(ctx context.Context, snap *snapshot.SessionSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps[snap.ID] = snap
	return nil
}

// Load retrieves a snapshot by ID
func (r *MemorySnapshotRepository) Load(ctx context.Context, id core.SnapshotID) (*snapshot.SessionSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap, ok := r.snaps[id]
	if !ok {
		return nil, fmt.Errorf("snapshot %s not found", id)
	}
	return snap, nil
}

// ListRecent returns snapshots newest first
func (r *MemorySnapshotRepository) ListRecent(ctx context.Context, limit int) ([]*snapshot.SessionSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*snapshot.SessionSnapshot, 0, len(r.snaps))
	for _, snap := range r.snaps {
		out = append(out, snap)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].TakenAt.After(out[b].TakenAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Delete removes a snapshot by ID
func (r *MemorySnapshotRepository) Delete(ctx context.Context, id core.SnapshotID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.snaps, id)
	return nil
}
