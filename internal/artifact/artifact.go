// Package artifact persists trained models. An artifact is a single
// versioned JSON bundle holding everything inference needs: the feature
// schema, categorical levels seen during training, the fitted scaler
// state, the fitted ensemble, and a creation timestamp. Artifacts are
// written atomically and never mutated; retraining produces a new file.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fittrack-ml/internal/forest"
	"fittrack-ml/internal/scale"
	"fittrack-ml/internal/schema"

	"github.com/rs/zerolog/log"
)

// FormatVersion is bumped whenever the bundle layout changes, so schema
// evolution is caught at load time instead of misaligning columns.
const FormatVersion = 1

// ErrCorrupt marks an artifact that fails structural validation on load.
var ErrCorrupt = errors.New("artifact corrupt")

// Model is the durable bundle produced by one successful training run.
type Model struct {
	Version   int                  `json:"version"`
	Task      string               `json:"task"`
	Mode      forest.Mode          `json:"mode"`
	Schema    schema.FeatureSchema `json:"schema"`
	Levels    map[string][]string  `json:"levels,omitempty"`
	Columns   []string             `json:"columns"`
	Scaler    *scale.State         `json:"scaler"`
	Forest    *forest.Forest       `json:"forest"`
	TrainedAt time.Time            `json:"trained_at"`
}

// Path returns the conventional artifact location for a task.
func Path(modelsDir, task string) string {
	return filepath.Join(modelsDir, task+".json")
}

// Save writes the bundle atomically: the JSON is written to a temporary
// file in the destination directory and renamed into place, so a crash
// mid-write never leaves a half-written artifact at the final path.
func Save(m *Model, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close artifact: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to finalize artifact: %w", err)
	}

	log.Info().Str("task", m.Task).Str("path", path).Msg("model artifact saved")
	return nil
}

// Load reads and validates an artifact. Mismatched versions or missing
// structural fields raise a load error rather than silently producing an
// unscaled or mis-featured model.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", path, err)
	}

	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	return &m, nil
}

func (m *Model) validate() error {
	if m.Version != FormatVersion {
		return fmt.Errorf("unsupported format version %d (expected %d)", m.Version, FormatVersion)
	}
	if m.Schema.Len() == 0 {
		return errors.New("empty feature schema")
	}
	if len(m.Columns) == 0 {
		return errors.New("missing expanded column list")
	}
	if m.Scaler == nil || m.Scaler.Columns() != len(m.Columns) {
		return fmt.Errorf("scaler state does not cover %d columns", len(m.Columns))
	}
	if m.Forest == nil || !m.Forest.Fitted() {
		return errors.New("missing fitted estimator")
	}
	if m.Forest.NumFeatures != len(m.Columns) {
		return fmt.Errorf("estimator trained on %d columns, artifact declares %d", m.Forest.NumFeatures, len(m.Columns))
	}
	if m.TrainedAt.IsZero() {
		return errors.New("missing training timestamp")
	}
	return nil
}
