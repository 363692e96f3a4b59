package classifier

import (
	"context"
	"errors"
	"fmt"
)

// DecisionTree mirrors the flat node arrays of a fitted CART tree.
// A node is a leaf when ChildrenLeft[i] == -1.
type DecisionTree struct {
	NFeatures     int         `json:"n_features"`
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
	Classes       []int       `json:"classes"`
}

func (m *DecisionTree) validate() error {
	n := len(m.ChildrenLeft)
	if n == 0 {
		return errors.New("decision_tree: no nodes")
	}
	if len(m.ChildrenRight) != n || len(m.Feature) != n || len(m.Threshold) != n || len(m.Value) != n {
		return errors.New("decision_tree: node arrays differ in length")
	}
	if m.NFeatures < 1 {
		return errors.New("decision_tree: n_features must be positive")
	}
	if len(m.Classes) == 0 {
		m.Classes = []int{0, 1}
	}
	for i := 0; i < n; i++ {
		l, r := m.ChildrenLeft[i], m.ChildrenRight[i]
		if l == -1 {
			if len(m.Value[i]) != len(m.Classes) {
				return fmt.Errorf("decision_tree: leaf %d has %d class counts, want %d", i, len(m.Value[i]), len(m.Classes))
			}
			continue
		}
		// children always come after their parent in sklearn's layout
		if l <= i || r <= i || l >= n || r >= n {
			return fmt.Errorf("decision_tree: node %d has invalid children", i)
		}
		if m.Feature[i] < 0 || m.Feature[i] >= m.NFeatures {
			return fmt.Errorf("decision_tree: node %d splits on feature %d", i, m.Feature[i])
		}
	}
	return nil
}

func (m *DecisionTree) Predict(_ context.Context, features []float64) (int, error) {
	if err := checkDim(features, m.NFeatures); err != nil {
		return 0, err
	}

	node := 0
	for m.ChildrenLeft[node] != -1 {
		if features[m.Feature[node]] <= m.Threshold[node] {
			node = m.ChildrenLeft[node]
		} else {
			node = m.ChildrenRight[node]
		}
	}

	counts := m.Value[node]
	best := 0
	for i := 1; i < len(counts); i++ {
		if counts[i] > counts[best] {
			best = i
		}
	}
	return binary(m.Classes[best]), nil
}
