package ui

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"chartlab/domain/core"
	apperrors "chartlab/internal/errors"
)

const defaultSnapshotListLimit = 10

// snapshotSummary is the wire form of a stored snapshot; row data stays out
// of listings.
type snapshotSummary struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	TakenAt   time.Time `json:"taken_at"`
	Dataset   string    `json:"dataset"`
	Cleaned   bool      `json:"cleaned"`
}

func (a *App) requireSnapshots(w http.ResponseWriter) bool {
	if a.snapshots == nil {
		a.writeJSON(w, http.StatusServiceUnavailable, errorBody{
			Error: "snapshot storage is not configured",
			Code:  apperrors.CodeStorageError,
		})
		return false
	}
	return true
}

func (a *App) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	if !a.requireSnapshots(w) {
		return
	}

	snap, err := a.session.Snapshot()
	if err != nil {
		a.writeError(w, err)
		return
	}
	if err := a.snapshots.Save(r.Context(), snap); err != nil {
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusCreated, snapshotSummary{
		ID:        snap.ID.String(),
		SessionID: snap.SessionID.String(),
		TakenAt:   snap.TakenAt,
		Dataset:   snap.Dataset.Name,
		Cleaned:   snap.Cleaned != nil,
	})
}

func (a *App) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	if !a.requireSnapshots(w) {
		return
	}

	snaps, err := a.snapshots.ListRecent(r.Context(), defaultSnapshotListLimit)
	if err != nil {
		a.writeError(w, err)
		return
	}

	out := make([]snapshotSummary, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, snapshotSummary{
			ID:        snap.ID.String(),
			SessionID: snap.SessionID.String(),
			TakenAt:   snap.TakenAt,
			Dataset:   snap.Dataset.Name,
			Cleaned:   snap.Cleaned != nil,
		})
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{"snapshots": out})
}

func (a *App) handleRestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	if !a.requireSnapshots(w) {
		return
	}

	id, err := core.ParseSnapshotID(chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, apperrors.InvalidInput(err.Error()))
		return
	}

	snap, err := a.snapshots.Load(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if err := a.session.Restore(snap); err != nil {
		a.writeError(w, err)
		return
	}

	ds, err := a.session.Dataset()
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, datasetInfoFrom(ds))
}

// decodeJSON reads a JSON request body, rejecting unknown fields
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperrors.InvalidInput("invalid request body: " + err.Error())
	}
	return nil
}
