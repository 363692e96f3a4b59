package classifier

import (
	"context"
	"errors"
	"math"
)

// LogisticRegression is a binary logistic model
type LogisticRegression struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

func (m *LogisticRegression) validate() error {
	if len(m.Coef) == 0 {
		return errors.New("logistic_regression: coef is empty")
	}
	return nil
}

// Probability returns P(y=1 | features)
func (m *LogisticRegression) Probability(features []float64) (float64, error) {
	if err := checkDim(features, len(m.Coef)); err != nil {
		return 0, err
	}
	return sigmoid(dot(m.Coef, features) + m.Intercept), nil
}

func (m *LogisticRegression) Predict(_ context.Context, features []float64) (int, error) {
	p, err := m.Probability(features)
	if err != nil {
		return 0, err
	}
	if p >= 0.5 {
		return 1, nil
	}
	return 0, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
