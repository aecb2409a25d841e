package ports

import (
	"context"

	"chartlab/domain/chart"
	"chartlab/domain/table"
)

// RenderSpec is what the plotting collaborator consumes: a chart type tag,
// an ordered sequence of rows, and the column names to draw.
type RenderSpec struct {
	Chart   chart.Type  `json:"chart"`
	Columns []string    `json:"columns"`
	Rows    []table.Row `json:"rows"`
	Title   string      `json:"title,omitempty"`
}

// Plotter is the rendering collaborator. Pixel drawing, saving, and
// exporting images live entirely behind this interface; the core never
// touches rendering APIs.
type Plotter interface {
	Render(ctx context.Context, spec RenderSpec) error
}
