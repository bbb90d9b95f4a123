package predictor

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"
)

// modelVersion tags the persisted artifact format.
const modelVersion = "1"

// Model is a fitted logistic classifier together with the feature
// standardization parameters it was trained with. It is immutable after
// training; retraining produces a new value.
type Model struct {
	Version   string    `json:"version"`
	Columns   []string  `json:"columns"`
	Weights   []float64 `json:"weights"`
	Bias      float64   `json:"bias"`
	Means     []float64 `json:"means"`
	Stds      []float64 `json:"stds"`
	Accuracy  float64   `json:"accuracy"`
	TrainedAt time.Time `json:"trained_at"`
}

// degenerateModel is the fallback fitted on nothing: zero weights over
// unscaled features, so every prediction lands on the neutral 50%.
func degenerateModel() *Model {
	m := &Model{
		Version:   modelVersion,
		Columns:   featureColumns[:],
		Weights:   make([]float64, NumFeatures),
		Bias:      0,
		Means:     make([]float64, NumFeatures),
		Stds:      make([]float64, NumFeatures),
		TrainedAt: time.Now(),
	}
	for i := range m.Stds {
		m.Stds[i] = 1
	}
	return m
}

// valid reports whether the model has a usable shape.
func (m *Model) valid() bool {
	return m != nil &&
		len(m.Weights) == NumFeatures &&
		len(m.Means) == NumFeatures &&
		len(m.Stds) == NumFeatures
}

// probability computes the class-1 probability for a raw feature row.
func (m *Model) probability(row [NumFeatures]float64) (float64, error) {
	if !m.valid() {
		return 0, fmt.Errorf("model has invalid shape")
	}

	z := m.Bias
	for i, v := range row {
		std := m.Stds[i]
		if std == 0 {
			std = 1
		}
		z += m.Weights[i] * ((v - m.Means[i]) / std)
	}

	p := sigmoid(z)
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, fmt.Errorf("non-finite probability")
	}
	return p, nil
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

// saveModel atomically persists the artifact: write to a temp file in the
// same directory, then rename over the previous model. A concurrent loader
// never observes a partial write.
func saveModel(path string, m *Model) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating model directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding model: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".model-*.json")
	if err != nil {
		return fmt.Errorf("creating temp model file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing model file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing model: %w", err)
	}
	return nil
}

// loadModel reads a persisted artifact. A missing file is reported via
// os.IsNotExist on the wrapped error's cause; callers fall back to training.
func loadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding model: %w", err)
	}
	if !m.valid() {
		return nil, fmt.Errorf("persisted model has invalid shape")
	}
	return &m, nil
}
