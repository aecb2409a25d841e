// Package chart defines the chart type tags and suggestion records produced
// by the recommender and consumed by the plotting collaborator.
package chart

// Type tags the supported chart kinds
type Type string

const (
	TypeLine      Type = "line"
	TypeBar       Type = "bar"
	TypeScatter   Type = "scatter"
	TypePie       Type = "pie"
	TypeHeatmap   Type = "heatmap"
	TypeHistogram Type = "histogram"
)

// Types lists all supported chart types in display order
var Types = []Type{TypeLine, TypeBar, TypeScatter, TypePie, TypeHeatmap, TypeHistogram}

// Valid reports whether t is a known chart type
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Suggestion is one ranked recommendation. A ranked ordered sequence of
// these is produced per recommendation request; never persisted.
type Suggestion struct {
	Type   Type    `json:"type"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}
