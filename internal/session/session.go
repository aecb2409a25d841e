// Package session orchestrates the data-preparation engine: it owns the raw
// table, the cleaned variant, the view state, and composes the inferencer,
// cleaner, paginated index, and recommender.
package session

import (
	"context"
	"fmt"

	"chartlab/domain/browse"
	"chartlab/domain/chart"
	"chartlab/domain/cleaning"
	"chartlab/domain/core"
	"chartlab/domain/snapshot"
	"chartlab/domain/table"
	"chartlab/internal"
	"chartlab/internal/outlier"
	"chartlab/internal/recommend"
	"chartlab/internal/schema"
	"chartlab/internal/view"
	"chartlab/ports"
)

// State is the session lifecycle state. Cleaned is a sub-state of Loaded:
// the session cycles between them by re-running or discarding cleaning.
type State string

const (
	StateEmpty   State = "empty"
	StateLoaded  State = "loaded"
	StateCleaned State = "cleaned"
)

// maxRecent caps the recently loaded dataset names kept for the UI
const maxRecent = 5

// renderSampleLimit bounds point-heavy charts; above it scatter/line rows
// are sampled with an even stride
const renderSampleLimit = 1000

// Session owns one dataset at a time. All state transitions happen through
// this API; no operation partially mutates state on failure.
type Session struct {
	id          core.SessionID
	log         *internal.Logger
	inferencer  *schema.Inferencer
	cleaner     *outlier.Cleaner
	recommender *recommend.Recommender

	state   State
	raw     *table.Dataset
	cleaned *table.Dataset
	report  *cleaning.Report
	index   *view.Index
	recent  []string
}

// Option customizes session construction
type Option func(*Session)

// WithInferencer overrides the schema inferencer
func WithInferencer(inf *schema.Inferencer) Option {
	return func(s *Session) { s.inferencer = inf }
}

// WithCleaner overrides the outlier cleaner
func WithCleaner(c *outlier.Cleaner) Option {
	return func(s *Session) { s.cleaner = c }
}

// WithRecommender overrides the chart recommender
func WithRecommender(r *recommend.Recommender) Option {
	return func(s *Session) { s.recommender = r }
}

// WithLogger overrides the logger
func WithLogger(log *internal.Logger) Option {
	return func(s *Session) { s.log = log }
}

// New creates an empty session with default engines
func New(opts ...Option) *Session {
	s := &Session{
		id:          core.SessionID(core.NewID()),
		log:         internal.DefaultLogger,
		inferencer:  schema.NewDefault(),
		cleaner:     outlier.NewDefault(),
		recommender: recommend.NewDefault(),
		state:       StateEmpty,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session identifier
func (s *Session) ID() core.SessionID {
	return s.id
}

// State returns the current lifecycle state
func (s *Session) State() State {
	return s.state
}

// Load ingests a raw table, infers the schema, and replaces the current
// dataset. The view state resets. On failure the session keeps its prior
// state untouched.
func (s *Session) Load(ctx context.Context, src ports.RowSource) error {
	raw, err := src.Read(ctx)
	if err != nil {
		return fmt.Errorf("reading row source: %w", err)
	}

	columns, err := s.inferencer.InferColumns(raw.ColumnNames, raw.Rows)
	if err != nil {
		return err
	}
	ds, err := table.NewDataset(raw.Name, columns, raw.Rows)
	if err != nil {
		return err
	}

	s.raw = ds
	s.cleaned = nil
	s.report = nil
	s.index = view.NewIndex(ds)
	s.state = StateLoaded
	s.rememberRecent(raw.Name)

	s.log.Info("[Session] loaded dataset %q: %d columns, %d rows", ds.Name, len(ds.Columns), ds.RowCount())
	return nil
}

// Reset returns the session to Empty and drops all datasets
func (s *Session) Reset() {
	s.raw = nil
	s.cleaned = nil
	s.report = nil
	s.index = nil
	s.state = StateEmpty
}

// Dataset returns the current dataset: the cleaned variant when present,
// otherwise the raw one.
func (s *Session) Dataset() (*table.Dataset, error) {
	if err := s.requireLoaded(); err != nil {
		return nil, err
	}
	if s.cleaned != nil {
		return s.cleaned, nil
	}
	return s.raw, nil
}

// RawDataset returns the original dataset, which cleaning never mutates
func (s *Session) RawDataset() (*table.Dataset, error) {
	if err := s.requireLoaded(); err != nil {
		return nil, err
	}
	return s.raw, nil
}

// Report returns the cleaning report of the current cleaned variant, or nil
func (s *Session) Report() *cleaning.Report {
	return s.report
}

// Recent returns the most recently loaded dataset names, newest first
func (s *Session) Recent() []string {
	return s.recent
}

// Clean runs outlier detection on a numeric column of the raw dataset and
// swaps in the cleaned variant. Re-running replaces the previous cleaning;
// the raw dataset always stays intact for discard/undo.
func (s *Session) Clean(column string, method cleaning.Method, action cleaning.Action) (*cleaning.Report, error) {
	if err := s.requireLoaded(); err != nil {
		return nil, err
	}

	cleaned, report, err := s.cleaner.Clean(s.raw, column, method, action)
	if err != nil {
		return nil, err
	}

	s.cleaned = cleaned
	s.report = report
	s.state = StateCleaned
	s.index.Rebase(cleaned)

	s.log.Info("[Session] cleaned column %q with %s/%s: %d of %d values flagged",
		column, method, action, report.FlaggedCount(), report.RowsChecked)
	return report, nil
}

// DiscardCleaning drops the cleaned variant and returns to the raw dataset
func (s *Session) DiscardCleaning() error {
	if err := s.requireLoaded(); err != nil {
		return err
	}
	s.cleaned = nil
	s.report = nil
	s.state = StateLoaded
	s.index.Rebase(s.raw)
	return nil
}

// Page returns one page of the filtered/sorted row set
func (s *Session) Page(page, size int) ([]table.Row, error) {
	if err := s.requireLoaded(); err != nil {
		return nil, err
	}
	return s.index.Page(page, size), nil
}

// Search sets the case-insensitive substring search term
func (s *Session) Search(term string) error {
	if err := s.requireLoaded(); err != nil {
		return err
	}
	s.index.SetSearch(term)
	return nil
}

// SetFilter applies or clears (nil) the filter predicate
func (s *Session) SetFilter(f *browse.Filter) error {
	if err := s.requireLoaded(); err != nil {
		return err
	}
	return s.index.SetFilter(f)
}

// SetSort applies or clears (nil) the sort key
func (s *Session) SetSort(sortKey *browse.Sort) error {
	if err := s.requireLoaded(); err != nil {
		return err
	}
	return s.index.SetSort(sortKey)
}

// SetPageSize changes the rows-per-page window
func (s *Session) SetPageSize(size int) error {
	if err := s.requireLoaded(); err != nil {
		return err
	}
	s.index.SetPageSize(size)
	return nil
}

// ViewState returns the current browse configuration
func (s *Session) ViewState() (browse.ViewState, error) {
	if err := s.requireLoaded(); err != nil {
		return browse.ViewState{}, err
	}
	return s.index.State(), nil
}

// MatchCount returns the size of the filtered/searched set
func (s *Session) MatchCount() (int, error) {
	if err := s.requireLoaded(); err != nil {
		return 0, err
	}
	return s.index.MatchCount(), nil
}

// ValueCounts tallies the non-null values of a column over the current
// filtered/searched row set. Used for count-based charts when no numeric
// measure is selected.
func (s *Session) ValueCounts(column string) (map[string]int, error) {
	ds, err := s.Dataset()
	if err != nil {
		return nil, err
	}
	if _, ok := ds.Column(column); !ok {
		return nil, core.NewColumnNotFoundError(column)
	}

	counts := make(map[string]int)
	for _, row := range s.index.OrderedRows() {
		v := row[column]
		if v.Null {
			continue
		}
		counts[v.Raw]++
	}
	return counts, nil
}

// Recommend ranks chart types for the named columns of the current dataset
func (s *Session) Recommend(columns ...string) ([]chart.Suggestion, error) {
	ds, err := s.Dataset()
	if err != nil {
		return nil, err
	}

	selected := make([]table.Column, len(columns))
	for i, name := range columns {
		col, ok := ds.Column(name)
		if !ok {
			return nil, core.NewColumnNotFoundError(name)
		}
		selected[i] = col
	}
	return s.recommender.Suggest(selected), nil
}

// Render hands the current filtered/sorted rows for the named columns to
// the plotting collaborator. Scatter and line charts above the sample limit
// get an evenly strided subset to keep the figure legible.
func (s *Session) Render(ctx context.Context, plotter ports.Plotter, chartType chart.Type, columns ...string) error {
	ds, err := s.Dataset()
	if err != nil {
		return err
	}
	if !chartType.Valid() {
		return fmt.Errorf("unknown chart type %q", chartType)
	}
	for _, name := range columns {
		if _, ok := ds.Column(name); !ok {
			return core.NewColumnNotFoundError(name)
		}
	}

	rows := s.index.OrderedRows()
	if (chartType == chart.TypeScatter || chartType == chart.TypeLine) && len(rows) > renderSampleLimit {
		rows = sampleRows(rows, renderSampleLimit)
	}

	return plotter.Render(ctx, ports.RenderSpec{
		Chart:   chartType,
		Columns: columns,
		Rows:    rows,
		Title:   ds.Name,
	})
}

// Snapshot captures the session for the persistence collaborator
func (s *Session) Snapshot() (*snapshot.SessionSnapshot, error) {
	if err := s.requireLoaded(); err != nil {
		return nil, err
	}

	snap := snapshot.New(s.id)
	snap.Dataset = snapshot.RecordDataset(s.raw)
	if s.cleaned != nil {
		cleanedRec := snapshot.RecordDataset(s.cleaned)
		snap.Cleaned = &cleanedRec
	}
	snap.Report = s.report
	snap.View = s.index.State()
	return snap, nil
}

// Restore rebuilds the session from a persisted snapshot
func (s *Session) Restore(snap *snapshot.SessionSnapshot) error {
	if snap == nil {
		return fmt.Errorf("nil snapshot")
	}

	raw := snap.Dataset.RestoreDataset()
	var cleaned *table.Dataset
	if snap.Cleaned != nil {
		cleaned = snap.Cleaned.RestoreDataset()
	}

	index := view.NewIndex(raw)
	if cleaned != nil {
		index.Rebase(cleaned)
	}
	index.SetSearch(snap.View.Search)
	if err := index.SetFilter(snap.View.Filter); err != nil {
		return err
	}
	if err := index.SetSort(snap.View.Sort); err != nil {
		return err
	}
	index.SetPageSize(snap.View.PageSize)
	// the view calls above reset the cursor; put it back where the
	// snapshot left it
	index.SetPage(snap.View.Page)

	s.raw = raw
	s.cleaned = cleaned
	s.report = snap.Report
	s.index = index
	if cleaned != nil {
		s.state = StateCleaned
	} else {
		s.state = StateLoaded
	}
	s.rememberRecent(raw.Name)

	s.log.Info("[Session] restored snapshot %s (%q, %d rows)", snap.ID, raw.Name, raw.RowCount())
	return nil
}

// requireLoaded guards read/browse/recommend operations against Empty
func (s *Session) requireLoaded() error {
	if s.state == StateEmpty || s.raw == nil {
		return core.ErrNotLoaded
	}
	return nil
}

// rememberRecent prepends a dataset name, deduplicating and capping the list
func (s *Session) rememberRecent(name string) {
	if name == "" {
		return
	}
	recent := []string{name}
	for _, existing := range s.recent {
		if existing != name && len(recent) < maxRecent {
			recent = append(recent, existing)
		}
	}
	s.recent = recent
}

// sampleRows takes an evenly strided subset, keeping view order
func sampleRows(rows []table.Row, limit int) []table.Row {
	step := float64(len(rows)-1) / float64(limit-1)
	out := make([]table.Row, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, rows[int(float64(i)*step)])
	}
	return out
}
