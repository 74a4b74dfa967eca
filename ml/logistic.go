package ml

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/juju/errors"
)

const defaultDecisionThreshold = 0.5

// LogisticRegression scores p = sigmoid(w·x + b) and predicts 1 when
// p >= Threshold.
type LogisticRegression struct {
	Weights   []float64
	Intercept float64
	Threshold float64
}

type logisticArtifact struct {
	artifactHeader
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
	Threshold *float64  `json:"threshold,omitempty"`
}

func (m *LogisticRegression) Type() string     { return LogisticRegressionType }
func (m *LogisticRegression) NumFeatures() int { return len(m.Weights) }

func (m *LogisticRegression) Predict(rows [][]float64) ([]int, error) {
	threshold := m.Threshold
	if threshold == 0 {
		threshold = defaultDecisionThreshold
	}
	labels := make([]int, len(rows))
	for i, row := range rows {
		p, err := m.Probability(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if p >= threshold {
			labels[i] = 1
		}
	}
	return labels, nil
}

// Probability returns the positive-class probability for one row.
func (m *LogisticRegression) Probability(row []float64) (float64, error) {
	if err := checkRow(row, len(m.Weights)); err != nil {
		return 0, err
	}
	z := m.Intercept
	for i, w := range m.Weights {
		z += w * row[i]
	}
	p := 1 / (1 + math.Exp(-z))
	if math.IsNaN(p) {
		return 0, errors.New("probability is NaN")
	}
	return p, nil
}

func (m *LogisticRegression) MarshalJSON() ([]byte, error) {
	artifact := logisticArtifact{
		artifactHeader: artifactHeader{Type: LogisticRegressionType, NumFeature: len(m.Weights)},
		Weights:        m.Weights,
		Intercept:      m.Intercept,
	}
	if m.Threshold != 0 {
		threshold := m.Threshold
		artifact.Threshold = &threshold
	}
	return json.Marshal(artifact)
}

func (m *LogisticRegression) UnmarshalJSON(payload []byte) error {
	var artifact logisticArtifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return err
	}
	if len(artifact.Weights) == 0 {
		return errors.New("logistic regression has no weights")
	}
	if artifact.NumFeature > 0 && artifact.NumFeature != len(artifact.Weights) {
		return errors.Errorf("n_features is %d but %d weights given", artifact.NumFeature, len(artifact.Weights))
	}
	m.Weights = artifact.Weights
	m.Intercept = artifact.Intercept
	m.Threshold = defaultDecisionThreshold
	if artifact.Threshold != nil {
		if *artifact.Threshold <= 0 || *artifact.Threshold >= 1 {
			return errors.Errorf("threshold %v must be in (0, 1)", *artifact.Threshold)
		}
		m.Threshold = *artifact.Threshold
	}
	return nil
}
