package classifier

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// SVM supports a linear kernel (Coef) or an RBF kernel (SupportVectors + DualCoef).
// The positive side of the decision function is class 1.
type SVM struct {
	Kernel         string      `json:"kernel"`
	Coef           []float64   `json:"coef,omitempty"`
	SupportVectors [][]float64 `json:"support_vectors,omitempty"`
	DualCoef       []float64   `json:"dual_coef,omitempty"`
	Gamma          float64     `json:"gamma,omitempty"`
	Intercept      float64     `json:"intercept"`
}

func (m *SVM) validate() error {
	switch m.Kernel {
	case "", "linear":
		m.Kernel = "linear"
		if len(m.Coef) == 0 {
			return errors.New("svm: linear kernel needs coef")
		}
	case "rbf":
		if len(m.SupportVectors) == 0 || len(m.SupportVectors) != len(m.DualCoef) {
			return errors.New("svm: rbf kernel needs matching support_vectors and dual_coef")
		}
		if m.Gamma <= 0 {
			return errors.New("svm: gamma must be positive")
		}
		dim := len(m.SupportVectors[0])
		for _, sv := range m.SupportVectors {
			if len(sv) != dim {
				return errors.New("svm: ragged support vectors")
			}
		}
	default:
		return fmt.Errorf("svm: unsupported kernel %q", m.Kernel)
	}
	return nil
}

// Decision returns the signed distance to the separating surface
func (m *SVM) Decision(features []float64) (float64, error) {
	if m.Kernel == "linear" {
		if err := checkDim(features, len(m.Coef)); err != nil {
			return 0, err
		}
		return dot(m.Coef, features) + m.Intercept, nil
	}

	if err := checkDim(features, len(m.SupportVectors[0])); err != nil {
		return 0, err
	}
	sum := m.Intercept
	for i, sv := range m.SupportVectors {
		var d float64
		for j := range sv {
			diff := sv[j] - features[j]
			d += diff * diff
		}
		sum += m.DualCoef[i] * math.Exp(-m.Gamma*d)
	}
	return sum, nil
}

func (m *SVM) Predict(_ context.Context, features []float64) (int, error) {
	d, err := m.Decision(features)
	if err != nil {
		return 0, err
	}
	if d > 0 {
		return 1, nil
	}
	return 0, nil
}
