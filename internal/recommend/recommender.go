// Package recommend ranks candidate chart types for a column selection.
// Pure function of the inferred types and cardinalities; when no rule
// matches the result is an empty sequence, never a guess.
package recommend

import (
	"sort"

	"chartlab/domain/chart"
	"chartlab/domain/table"
)

// Config holds the cardinality pivots of the rule table
type Config struct {
	// PieMaxCardinality is the largest category count where pie still beats
	// bar for a single categorical column
	PieMaxCardinality int
	// HeatmapMaxCardinality caps each side of a categorical cross-tab
	HeatmapMaxCardinality int
}

// DefaultConfig returns the standard pivots
func DefaultConfig() Config {
	return Config{
		PieMaxCardinality:     6,
		HeatmapMaxCardinality: 12,
	}
}

// Recommender evaluates the ranked rule table
type Recommender struct {
	cfg Config
}

// New creates a recommender with the given config
func New(cfg Config) *Recommender {
	return &Recommender{cfg: cfg}
}

// NewDefault creates a recommender with default pivots
func NewDefault() *Recommender {
	return New(DefaultConfig())
}

// Suggest produces the ranked suggestion sequence for the selected columns.
// Rules are applied in listed order; ranking sorts by score descending with
// rule order breaking ties, so repeated calls are identical.
func (r *Recommender) Suggest(cols []table.Column) []chart.Suggestion {
	var out []chart.Suggestion

	switch len(cols) {
	case 1:
		out = r.suggestSingle(cols[0])
	case 2:
		out = r.suggestPair(cols[0], cols[1])
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Score > out[b].Score
	})
	return out
}

func (r *Recommender) suggestSingle(col table.Column) []chart.Suggestion {
	switch col.Type {
	case table.TypeNumeric:
		return []chart.Suggestion{{
			Type:   chart.TypeHistogram,
			Score:  0.90,
			Reason: "distribution of a single numeric variable",
		}}
	case table.TypeCategorical:
		if col.Cardinality > r.cfg.PieMaxCardinality {
			return []chart.Suggestion{
				{Type: chart.TypeBar, Score: 0.85, Reason: "category comparison across many categories"},
				{Type: chart.TypePie, Score: 0.60, Reason: "part-to-whole, less readable at this cardinality"},
			}
		}
		return []chart.Suggestion{
			{Type: chart.TypePie, Score: 0.85, Reason: "part-to-whole across few categories"},
			{Type: chart.TypeBar, Score: 0.80, Reason: "category comparison"},
		}
	}
	return nil
}

func (r *Recommender) suggestPair(a, b table.Column) []chart.Suggestion {
	// one datetime + one numeric, either order
	if pairMatches(a, b, table.TypeDatetime, table.TypeNumeric) {
		return []chart.Suggestion{{
			Type:   chart.TypeLine,
			Score:  0.95,
			Reason: "trend over time",
		}}
	}

	if a.Type == table.TypeNumeric && b.Type == table.TypeNumeric {
		return []chart.Suggestion{{
			Type:   chart.TypeScatter,
			Score:  0.90,
			Reason: "relationship between two numeric variables",
		}}
	}

	if pairMatches(a, b, table.TypeCategorical, table.TypeNumeric) {
		return []chart.Suggestion{{
			Type:   chart.TypeBar,
			Score:  0.85,
			Reason: "category comparison",
		}}
	}

	if a.Type == table.TypeCategorical && b.Type == table.TypeCategorical &&
		a.Cardinality <= r.cfg.HeatmapMaxCardinality && b.Cardinality <= r.cfg.HeatmapMaxCardinality {
		return []chart.Suggestion{{
			Type:   chart.TypeHeatmap,
			Score:  0.70,
			Reason: "cross-tabulated density of two categorical variables",
		}}
	}

	return nil
}

// pairMatches reports whether the two columns carry the two types in
// either order
func pairMatches(a, b table.Column, t1, t2 table.ColumnType) bool {
	return (a.Type == t1 && b.Type == t2) || (a.Type == t2 && b.Type == t1)
}
