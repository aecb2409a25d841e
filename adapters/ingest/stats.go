package ingest

import (
	"golang.org/x/sync/errgroup"

	"chartlab/ports"
)

// ColumnStats is a quick raw-value profile computed at upload time, before
// the core runs full inference. The UI shows it in the load response.
type ColumnStats struct {
	Name         string   `json:"name"`
	NonEmpty     int      `json:"non_empty"`
	Empty        int      `json:"empty"`
	SampleValues []string `json:"sample_values,omitempty"`
}

// maxSampleValues caps the preview values kept per column
const maxSampleValues = 5

// ProfileColumns computes raw per-column counts and sample values, one
// goroutine per column. Each goroutine writes only its own slot, so the
// output order matches the column order deterministically.
func ProfileColumns(t *ports.RawTable) ([]ColumnStats, error) {
	out := make([]ColumnStats, len(t.ColumnNames))

	var g errgroup.Group
	for i, name := range t.ColumnNames {
		i, name := i, name
		g.Go(func() error {
			st := ColumnStats{Name: name}
			for _, row := range t.Rows {
				v := row[name]
				if v == "" {
					st.Empty++
					continue
				}
				st.NonEmpty++
				if len(st.SampleValues) < maxSampleValues {
					st.SampleValues = append(st.SampleValues, v)
				}
			}
			out[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
