// Package snapshot defines the serialization-friendly view of a session that
// a storage collaborator may persist and restore. The core defines the
// shape, not the storage mechanism.
package snapshot

import (
	"time"

	"chartlab/domain/browse"
	"chartlab/domain/cleaning"
	"chartlab/domain/core"
	"chartlab/domain/table"
)

// DatasetRecord is the plain structured form of a dataset
type DatasetRecord struct {
	Name    string         `json:"name"`
	Columns []table.Column `json:"columns"`
	Rows    []table.Row    `json:"rows"`
}

// SessionSnapshot captures Dataset + CleaningReport + ViewState at a point
// in time.
type SessionSnapshot struct {
	ID        core.SnapshotID  `json:"id"`
	SessionID core.SessionID   `json:"session_id"`
	TakenAt   time.Time        `json:"taken_at"`
	Dataset   DatasetRecord    `json:"dataset"`
	Cleaned   *DatasetRecord   `json:"cleaned,omitempty"`
	Report    *cleaning.Report `json:"report,omitempty"`
	View      browse.ViewState `json:"view"`
}

// New creates a snapshot with a fresh identifier
func New(sessionID core.SessionID) *SessionSnapshot {
	return &SessionSnapshot{
		ID:        core.SnapshotID(core.NewID()),
		SessionID: sessionID,
		TakenAt:   time.Now().UTC(),
	}
}

// RecordDataset converts a dataset into its plain record form
func RecordDataset(d *table.Dataset) DatasetRecord {
	return DatasetRecord{
		Name:    d.Name,
		Columns: d.Columns,
		Rows:    d.Rows,
	}
}

// RestoreDataset rebuilds a dataset from its record form
func (r DatasetRecord) RestoreDataset() *table.Dataset {
	return &table.Dataset{
		ID:      core.DatasetID(core.NewID()),
		Name:    r.Name,
		Columns: r.Columns,
		Rows:    r.Rows,
	}
}
