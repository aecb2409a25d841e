package ui

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"chartlab/adapters/ingest"
	"chartlab/domain/browse"
	"chartlab/domain/chart"
	"chartlab/domain/cleaning"
	"chartlab/domain/table"
	apperrors "chartlab/internal/errors"
	"chartlab/ports"
)

// columnInfo is the wire form of an inferred column
type columnInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Cardinality int    `json:"cardinality"`
	NullCount   int    `json:"null_count"`
}

// datasetInfo summarizes the active dataset
type datasetInfo struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	RowCount int          `json:"row_count"`
	Columns  []columnInfo `json:"columns"`
}

func datasetInfoFrom(ds *table.Dataset) datasetInfo {
	info := datasetInfo{
		ID:       string(ds.ID),
		Name:     ds.Name,
		RowCount: ds.RowCount(),
		Columns:  make([]columnInfo, 0, len(ds.Columns)),
	}
	for _, col := range ds.Columns {
		info.Columns = append(info.Columns, columnInfo{
			Name:        col.Name,
			Type:        string(col.Type),
			Cardinality: col.Cardinality,
			NullCount:   col.NullCount,
		})
	}
	return info
}

// handleSessionInfo reports session state, dataset summary and recent names
func (a *App) handleSessionInfo(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"session_id": string(a.session.ID()),
		"state":      string(a.session.State()),
		"recent":     a.session.Recent(),
	}
	if ds, err := a.session.Dataset(); err == nil {
		resp["dataset"] = datasetInfoFrom(ds)
	}
	if report := a.session.Report(); report != nil {
		resp["report"] = report
	}
	a.writeJSON(w, http.StatusOK, resp)
}

// handleLoadDataset accepts a multipart file upload and loads it into the
// session. The upload is spooled to the configured directory so the ingest
// reader can dispatch on the file extension.
func (a *App) handleLoadDataset(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		a.writeError(w, apperrors.InvalidInput("invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		a.writeError(w, apperrors.InvalidInput("missing file field"))
		return
	}
	defer file.Close()

	path, err := a.spoolUpload(file, header.Filename)
	if err != nil {
		a.writeError(w, err)
		return
	}

	raw, err := ingest.NewDataReader(path).Read(r.Context())
	if err != nil {
		a.writeError(w, apperrors.IngestFailed("failed to read uploaded file", err))
		return
	}

	// Raw profile computed once on the parsed table; the session then loads
	// from the same table without re-reading the file.
	stats, err := ingest.ProfileColumns(raw)
	if err != nil {
		a.writeError(w, err)
		return
	}

	if err := a.session.Load(r.Context(), rawTableSource{table: raw}); err != nil {
		a.writeError(w, err)
		return
	}

	ds, err := a.session.Dataset()
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"dataset": datasetInfoFrom(ds),
		"profile": stats,
	})
}

// rawTableSource adapts an already-parsed table to the row source port
type rawTableSource struct {
	table *ports.RawTable
}

func (s rawTableSource) Read(ctx context.Context) (*ports.RawTable, error) {
	return s.table, nil
}

// spoolUpload writes the uploaded content under the upload directory
func (a *App) spoolUpload(src io.Reader, name string) (string, error) {
	if err := os.MkdirAll(a.uploadDir, 0o755); err != nil {
		return "", apperrors.StorageError("failed to create upload directory", err)
	}

	path := filepath.Join(a.uploadDir, filepath.Base(name))
	dst, err := os.Create(path)
	if err != nil {
		return "", apperrors.StorageError("failed to create upload file", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", apperrors.StorageError("failed to write upload file", err)
	}
	return path, nil
}

func (a *App) handleResetSession(w http.ResponseWriter, r *http.Request) {
	a.session.Reset()
	a.writeJSON(w, http.StatusOK, map[string]string{"state": string(a.session.State())})
}

// pageResponse carries one page of rows plus the cursor context needed to
// render pagination controls.
type pageResponse struct {
	Page       int                 `json:"page"`
	PageSize   int                 `json:"page_size"`
	MatchCount int                 `json:"match_count"`
	Rows       []map[string]string `json:"rows"`
}

func (a *App) handleGetPage(w http.ResponseWriter, r *http.Request) {
	state, err := a.session.ViewState()
	if err != nil {
		a.writeError(w, err)
		return
	}

	page := state.Page
	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 0 {
			a.writeError(w, apperrors.InvalidInput(fmt.Sprintf("invalid page %q", raw)))
			return
		}
	}
	size := state.PageSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		size, err = strconv.Atoi(raw)
		if err != nil || size <= 0 {
			a.writeError(w, apperrors.InvalidInput(fmt.Sprintf("invalid size %q", raw)))
			return
		}
	}

	rows, err := a.session.Page(page, size)
	if err != nil {
		a.writeError(w, err)
		return
	}
	count, err := a.session.MatchCount()
	if err != nil {
		a.writeError(w, err)
		return
	}

	out := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		rec := make(map[string]string, len(row))
		for name, v := range row {
			rec[name] = v.Raw
		}
		out = append(out, rec)
	}

	a.writeJSON(w, http.StatusOK, pageResponse{
		Page:       page,
		PageSize:   size,
		MatchCount: count,
		Rows:       out,
	})
}

// viewRequest is the wire form of a view-state update. Absent fields leave
// the corresponding part of the view untouched.
type viewRequest struct {
	Search      *string        `json:"search,omitempty"`
	Filter      *filterPayload `json:"filter,omitempty"`
	ClearFilter bool           `json:"clear_filter,omitempty"`
	Sort        *sortPayload   `json:"sort,omitempty"`
	ClearSort   bool           `json:"clear_sort,omitempty"`
	PageSize    *int           `json:"page_size,omitempty"`
}

type filterPayload struct {
	Column string `json:"column"`
	Op     string `json:"op"`
	Value  string `json:"value"`
}

type sortPayload struct {
	Column    string `json:"column"`
	Direction string `json:"direction"`
}

func (a *App) handleUpdateView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}

	if req.Search != nil {
		if err := a.session.Search(*req.Search); err != nil {
			a.writeError(w, err)
			return
		}
	}
	if req.ClearFilter {
		if err := a.session.SetFilter(nil); err != nil {
			a.writeError(w, err)
			return
		}
	} else if req.Filter != nil {
		f := &browse.Filter{
			Column: req.Filter.Column,
			Op:     browse.FilterOp(req.Filter.Op),
			Value:  req.Filter.Value,
		}
		if err := a.session.SetFilter(f); err != nil {
			a.writeError(w, err)
			return
		}
	}
	if req.ClearSort {
		if err := a.session.SetSort(nil); err != nil {
			a.writeError(w, err)
			return
		}
	} else if req.Sort != nil {
		s := &browse.Sort{
			Column:    req.Sort.Column,
			Direction: browse.SortDirection(req.Sort.Direction),
		}
		if err := a.session.SetSort(s); err != nil {
			a.writeError(w, err)
			return
		}
	}
	if req.PageSize != nil {
		if err := a.session.SetPageSize(*req.PageSize); err != nil {
			a.writeError(w, err)
			return
		}
	}

	state, err := a.session.ViewState()
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, state)
}

// cleanRequest names the column and strategy for an outlier pass
type cleanRequest struct {
	Column string `json:"column"`
	Method string `json:"method"`
	Action string `json:"action"`
}

func (a *App) handleClean(w http.ResponseWriter, r *http.Request) {
	var req cleanRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}

	report, err := a.session.Clean(req.Column, cleaning.Method(req.Method), cleaning.Action(req.Action))
	if err != nil {
		a.writeError(w, err)
		return
	}

	ds, err := a.session.Dataset()
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"report":  report,
		"dataset": datasetInfoFrom(ds),
	})
}

func (a *App) handleDiscardCleaning(w http.ResponseWriter, r *http.Request) {
	if err := a.session.DiscardCleaning(); err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]string{"state": string(a.session.State())})
}

func (a *App) handleRecommend(w http.ResponseWriter, r *http.Request) {
	columns := r.URL.Query()["col"]
	if len(columns) == 0 {
		a.writeError(w, apperrors.InvalidInput("at least one col parameter is required"))
		return
	}

	suggestions, err := a.session.Recommend(columns...)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{"suggestions": suggestions})
}

func (a *App) handleValueCounts(w http.ResponseWriter, r *http.Request) {
	column := r.URL.Query().Get("col")
	if column == "" {
		a.writeError(w, apperrors.InvalidInput("col parameter is required"))
		return
	}

	counts, err := a.session.ValueCounts(column)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"column": column,
		"counts": counts,
	})
}

// renderRequest names the chart and columns to hand to the plotter
type renderRequest struct {
	Chart   string   `json:"chart"`
	Columns []string `json:"columns"`
}

func (a *App) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, err)
		return
	}

	if err := a.session.Render(r.Context(), a.plotter, chart.Type(req.Chart), req.Columns...); err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusAccepted, map[string]string{"chart": req.Chart})
}
