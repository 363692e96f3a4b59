package classifier

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// MLP is a feed-forward network with a single logistic output unit.
// Weights[l][i][j] connects unit i of layer l to unit j of layer l+1.
type MLP struct {
	Weights    [][][]float64 `json:"weights"`
	Biases     [][]float64   `json:"biases"`
	Activation string        `json:"activation"`
}

func (m *MLP) validate() error {
	if len(m.Weights) == 0 || len(m.Weights) != len(m.Biases) {
		return errors.New("mlp: weights and biases must be non-empty and equal length")
	}
	switch m.Activation {
	case "":
		m.Activation = "relu"
	case "relu", "tanh", "logistic", "identity":
	default:
		return fmt.Errorf("mlp: unsupported activation %q", m.Activation)
	}
	for l, w := range m.Weights {
		if len(w) == 0 {
			return fmt.Errorf("mlp: layer %d has no inputs", l)
		}
		out := len(w[0])
		for _, row := range w {
			if len(row) != out {
				return fmt.Errorf("mlp: layer %d is ragged", l)
			}
		}
		if len(m.Biases[l]) != out {
			return fmt.Errorf("mlp: layer %d has %d biases, want %d", l, len(m.Biases[l]), out)
		}
		if l > 0 && len(m.Weights[l-1][0]) != len(w) {
			return fmt.Errorf("mlp: layer %d input size does not match previous layer", l)
		}
	}
	if last := m.Weights[len(m.Weights)-1]; len(last[0]) != 1 {
		return errors.New("mlp: output layer must have one unit")
	}
	return nil
}

func (m *MLP) activate(x float64) float64 {
	switch m.Activation {
	case "tanh":
		return math.Tanh(x)
	case "logistic":
		return sigmoid(x)
	case "identity":
		return x
	default:
		return math.Max(0, x)
	}
}

// Probability runs the forward pass and returns the output unit
func (m *MLP) Probability(features []float64) (float64, error) {
	if err := checkDim(features, len(m.Weights[0])); err != nil {
		return 0, err
	}

	act := features
	for l, w := range m.Weights {
		next := make([]float64, len(m.Biases[l]))
		copy(next, m.Biases[l])
		for i, row := range w {
			for j, wij := range row {
				next[j] += act[i] * wij
			}
		}
		if l < len(m.Weights)-1 {
			for j := range next {
				next[j] = m.activate(next[j])
			}
		}
		act = next
	}
	return sigmoid(act[0]), nil
}

func (m *MLP) Predict(_ context.Context, features []float64) (int, error) {
	p, err := m.Probability(features)
	if err != nil {
		return 0, err
	}
	if p >= 0.5 {
		return 1, nil
	}
	return 0, nil
}
