// Package plot implements the rendering collaborator as a chart-spec
// emitter: render requests are serialized to JSON files that an external
// drawing process turns into pixels. The core never sees rendering APIs.
package plot

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"chartlab/ports"
)

// SpecWriter writes one JSON spec file per render request
type SpecWriter struct {
	dir string
}

// NewSpecWriter creates a writer targeting the given directory
func NewSpecWriter(dir string) *SpecWriter {
	return &SpecWriter{dir: dir}
}

// Render implements ports.Plotter
func (w *SpecWriter) Render(ctx context.Context, spec ports.RenderSpec) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("creating chart spec dir: %w", err)
	}

	payload, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding chart spec: %w", err)
	}

	name := fmt.Sprintf("%s_%d.json", spec.Chart, time.Now().UnixNano())
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("writing chart spec: %w", err)
	}

	log.Printf("[Plot] wrote %s spec with %d rows to %s", spec.Chart, len(spec.Rows), path)
	return nil
}
