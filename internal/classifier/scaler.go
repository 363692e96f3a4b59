package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Scaler transforms a raw feature vector before it reaches the classifiers
type Scaler interface {
	Transform(features []float64) ([]float64, error)
}

// StandardScaler applies (x - mean) / scale per feature
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// LoadScaler reads a StandardScaler export
func LoadScaler(path string) (*StandardScaler, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s StandardScaler
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrInvalidFile, err)
	}
	if len(s.Mean) == 0 || len(s.Mean) != len(s.Scale) {
		return nil, fmt.Errorf("%s: %w: mean and scale must be non-empty and equal length", path, ErrInvalidFile)
	}
	return &s, nil
}

func (s *StandardScaler) Transform(features []float64) ([]float64, error) {
	if err := checkDim(features, len(s.Mean)); err != nil {
		return nil, err
	}
	out := make([]float64, len(features))
	for i, x := range features {
		scale := s.Scale[i]
		// a constant feature is exported with scale 0
		if scale == 0 {
			scale = 1
		}
		out[i] = (x - s.Mean[i]) / scale
	}
	return out, nil
}

// IdentityScaler treats features as already scaled
type IdentityScaler struct{}

func (IdentityScaler) Transform(features []float64) ([]float64, error) {
	if len(features) == 0 {
		return nil, errors.New("empty feature vector")
	}
	out := make([]float64, len(features))
	copy(out, features)
	return out, nil
}
