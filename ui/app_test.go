package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chartlab/internal/session"
	"chartlab/internal/testkit"
)

const sampleCSV = "day,amount,region\n" +
	"2024-03-01,100,north\n" +
	"2024-03-02,101,south\n" +
	"2024-03-03,102,east\n" +
	"2024-03-04,103,west\n" +
	"2024-03-05,104,north\n" +
	"2024-03-06,105,south\n" +
	"2024-03-07,9999,east\n"

func newTestApp(t *testing.T) (*App, *testkit.RecordingPlotter) {
	t.Helper()
	plotter := &testkit.RecordingPlotter{}
	app := NewApp(Config{UploadDir: t.TempDir()}, session.New(), plotter, testkit.NewMemorySnapshotRepository())
	return app, plotter
}

// uploadCSV posts the sample file through the multipart endpoint
func uploadCSV(t *testing.T, app *App, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.WriteString(part, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/datasets", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)
	return rec
}

func doJSON(t *testing.T, app *App, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestUploadDataset(t *testing.T) {
	app, _ := newTestApp(t)

	rec := uploadCSV(t, app, "orders.csv", sampleCSV)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	dataset := body["dataset"].(map[string]interface{})
	assert.Equal(t, "orders", dataset["name"])
	assert.Equal(t, float64(7), dataset["row_count"])
	assert.Len(t, dataset["columns"], 3)
	assert.Len(t, body["profile"], 3)
}

func TestBrowseBeforeLoadConflicts(t *testing.T) {
	app, _ := newTestApp(t)

	rec := doJSON(t, app, http.MethodGet, "/api/rows", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetRowsAndViewUpdates(t *testing.T) {
	app, _ := newTestApp(t)
	require.Equal(t, http.StatusCreated, uploadCSV(t, app, "orders.csv", sampleCSV).Code)

	rec := doJSON(t, app, http.MethodGet, "/api/rows?page=0&size=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(7), body["match_count"])
	assert.Len(t, body["rows"], 3)

	// filter to one region, then page through the filtered set
	rec = doJSON(t, app, http.MethodPut, "/api/view", map[string]interface{}{
		"filter": map[string]string{"column": "region", "op": "eq", "value": "north"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, app, http.MethodGet, "/api/rows", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, float64(2), body["match_count"])
}

func TestViewRejectsInvalidFilter(t *testing.T) {
	app, _ := newTestApp(t)
	require.Equal(t, http.StatusCreated, uploadCSV(t, app, "orders.csv", sampleCSV).Code)

	rec := doJSON(t, app, http.MethodPut, "/api/view", map[string]interface{}{
		"filter": map[string]string{"column": "nope", "op": "eq", "value": "1"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCleanAndDiscard(t *testing.T) {
	app, _ := newTestApp(t)
	require.Equal(t, http.StatusCreated, uploadCSV(t, app, "orders.csv", sampleCSV).Code)

	rec := doJSON(t, app, http.MethodPost, "/api/clean", map[string]string{
		"column": "amount", "method": "iqr", "action": "remove",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	dataset := body["dataset"].(map[string]interface{})
	assert.Equal(t, float64(6), dataset["row_count"])

	rec = doJSON(t, app, http.MethodDelete, "/api/clean", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "loaded", decodeBody(t, rec)["state"])
}

func TestCleanRejectsUnknownMethod(t *testing.T) {
	app, _ := newTestApp(t)
	require.Equal(t, http.StatusCreated, uploadCSV(t, app, "orders.csv", sampleCSV).Code)

	rec := doJSON(t, app, http.MethodPost, "/api/clean", map[string]string{
		"column": "amount", "method": "winsor", "action": "remove",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecommendEndpoint(t *testing.T) {
	app, _ := newTestApp(t)
	require.Equal(t, http.StatusCreated, uploadCSV(t, app, "orders.csv", sampleCSV).Code)

	rec := doJSON(t, app, http.MethodGet, "/api/recommend?col=day&col=amount", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	suggestions := decodeBody(t, rec)["suggestions"].([]interface{})
	require.NotEmpty(t, suggestions)
	first := suggestions[0].(map[string]interface{})
	assert.Equal(t, "line", first["type"])

	rec = doJSON(t, app, http.MethodGet, "/api/recommend", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValueCountsEndpoint(t *testing.T) {
	app, _ := newTestApp(t)
	require.Equal(t, http.StatusCreated, uploadCSV(t, app, "orders.csv", sampleCSV).Code)

	rec := doJSON(t, app, http.MethodGet, "/api/counts?col=region", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	counts := decodeBody(t, rec)["counts"].(map[string]interface{})
	assert.Equal(t, float64(2), counts["north"])

	rec = doJSON(t, app, http.MethodGet, "/api/counts", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRenderEndpoint(t *testing.T) {
	app, plotter := newTestApp(t)
	require.Equal(t, http.StatusCreated, uploadCSV(t, app, "orders.csv", sampleCSV).Code)

	rec := doJSON(t, app, http.MethodPost, "/api/render", map[string]interface{}{
		"chart": "bar", "columns": []string{"region", "amount"},
	})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	spec := plotter.LastSpec()
	require.NotNil(t, spec)
	assert.Len(t, spec.Rows, 7)
}

func TestSnapshotSaveAndRestore(t *testing.T) {
	app, _ := newTestApp(t)
	require.Equal(t, http.StatusCreated, uploadCSV(t, app, "orders.csv", sampleCSV).Code)

	rec := doJSON(t, app, http.MethodPost, "/api/snapshots", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decodeBody(t, rec)["id"].(string)
	require.NotEmpty(t, id)

	rec = doJSON(t, app, http.MethodGet, "/api/snapshots", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["snapshots"], 1)

	// wipe the session, then restore from the stored snapshot
	require.Equal(t, http.StatusOK, doJSON(t, app, http.MethodDelete, "/api/datasets", nil).Code)
	require.Equal(t, http.StatusConflict, doJSON(t, app, http.MethodGet, "/api/rows", nil).Code)

	rec = doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/snapshots/%s/restore", id), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(7), decodeBody(t, rec)["row_count"])
}

func TestSnapshotRoutesWithoutStore(t *testing.T) {
	app := NewApp(Config{UploadDir: t.TempDir()}, session.New(), &testkit.RecordingPlotter{}, nil)
	require.Equal(t, http.StatusCreated, uploadCSV(t, app, "orders.csv", sampleCSV).Code)

	rec := doJSON(t, app, http.MethodPost, "/api/snapshots", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSessionInfo(t *testing.T) {
	app, _ := newTestApp(t)

	rec := doJSON(t, app, http.MethodGet, "/api/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "empty", decodeBody(t, rec)["state"])

	require.Equal(t, http.StatusCreated, uploadCSV(t, app, "orders.csv", sampleCSV).Code)

	rec = doJSON(t, app, http.MethodGet, "/api/session", nil)
	body := decodeBody(t, rec)
	assert.Equal(t, "loaded", body["state"])
	assert.Equal(t, []interface{}{"orders"}, body["recent"])
}

func TestReportPage(t *testing.T) {
	app, _ := newTestApp(t)
	require.Equal(t, http.StatusCreated, uploadCSV(t, app, "orders.csv", sampleCSV).Code)

	rec := doJSON(t, app, http.MethodGet, "/report", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "No cleaning pass has been applied")

	doJSON(t, app, http.MethodPost, "/api/clean", map[string]string{
		"column": "amount", "method": "iqr", "action": "remove",
	})

	rec = doJSON(t, app, http.MethodGet, "/report", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Cleaning Report")
	assert.True(t, strings.Contains(rec.Body.String(), "amount"))
}
