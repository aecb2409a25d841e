package ports

import (
	"context"

	"chartlab/domain/core"
	"chartlab/domain/snapshot"
)

// SnapshotRepository persists and restores session snapshots. The storage
// mechanism is the collaborator's concern; the core only defines the shape.
type SnapshotRepository interface {
	Save(ctx context.Context, snap *snapshot.SessionSnapshot) error
	Load(ctx context.Context, id core.SnapshotID) (*snapshot.SessionSnapshot, error)
	ListRecent(ctx context.Context, limit int) ([]*snapshot.SessionSnapshot, error)
	Delete(ctx context.Context, id core.SnapshotID) error
}
