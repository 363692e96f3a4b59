package classifier

import (
	"context"
	"errors"
	"sort"
)

// KNN is a k-nearest-neighbours classifier over stored training points
type KNN struct {
	K      int         `json:"k"`
	Points [][]float64 `json:"points"`
	Labels []int       `json:"labels"`
}

func (m *KNN) validate() error {
	if m.K < 1 {
		return errors.New("knn: k must be positive")
	}
	if len(m.Points) == 0 || len(m.Points) != len(m.Labels) {
		return errors.New("knn: points and labels must be non-empty and equal length")
	}
	dim := len(m.Points[0])
	for _, p := range m.Points {
		if len(p) != dim {
			return errors.New("knn: ragged points")
		}
	}
	if m.K > len(m.Points) {
		m.K = len(m.Points)
	}
	return nil
}

// Predict returns the majority label among the K nearest points.
// Ties go to the smaller label.
func (m *KNN) Predict(_ context.Context, features []float64) (int, error) {
	if err := checkDim(features, len(m.Points[0])); err != nil {
		return 0, err
	}

	type neighbour struct {
		dist  float64
		label int
	}
	ns := make([]neighbour, len(m.Points))
	for i, p := range m.Points {
		var d float64
		for j := range p {
			diff := p[j] - features[j]
			d += diff * diff
		}
		ns[i] = neighbour{dist: d, label: m.Labels[i]}
	}
	sort.SliceStable(ns, func(i, j int) bool { return ns[i].dist < ns[j].dist })

	counts := make(map[int]int)
	for _, n := range ns[:m.K] {
		counts[n.label]++
	}
	best, bestCount := 0, -1
	for label, n := range counts {
		if n > bestCount || (n == bestCount && label < best) {
			best, bestCount = label, n
		}
	}
	return binary(best), nil
}
