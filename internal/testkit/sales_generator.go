package testkit

import (
	"fmt"
	"math"
	"math/rand"
)

// salesCategories are the categorical values used by the generator
var salesCategories = []string{"A", "B", "C", "D"}

// salesRegions keep region cardinality low enough for heatmap suggestions
var salesRegions = []string{"north", "south", "east", "west"}

// GenerateSalesTable builds a deterministic daily-sales table with columns
// date (datetime), sales (numeric), category and region (categorical), and
// note (free text). The same seed always produces the same rows.
func GenerateSalesTable(rows int, seed int64) *SliceSource {
	rng := rand.New(rand.NewSource(seed))

	columnNames := []string{"date", "sales", "category", "region", "note"}
	data := make([]map[string]string, rows)
	for i := 0; i < rows; i++ {
		base := 200 + 50*math.Sin(float64(i)/14)
		sales := base + rng.Float64()*40

		data[i] = map[string]string{
			"date":     fmt.Sprintf("2024-%02d-%02d", 1+(i/28)%12, 1+i%28),
			"sales":    fmt.Sprintf("%.2f", sales),
			"category": salesCategories[rng.Intn(len(salesCategories))],
			"region":   salesRegions[rng.Intn(len(salesRegions))],
			"note":     fmt.Sprintf("order %04d", i),
		}
	}

	return NewSliceSource("daily_sales", columnNames, data)
}
