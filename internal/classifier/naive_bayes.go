package classifier

import (
	"context"
	"errors"
	"math"
)

// GaussianNB is a Gaussian naive Bayes model (per-class feature means and variances)
type GaussianNB struct {
	Classes    []int       `json:"classes"`
	ClassPrior []float64   `json:"class_prior"`
	Theta      [][]float64 `json:"theta"`
	Var        [][]float64 `json:"var"`
}

func (m *GaussianNB) validate() error {
	k := len(m.ClassPrior)
	if k == 0 || len(m.Theta) != k || len(m.Var) != k {
		return errors.New("naive_bayes: class_prior, theta and var must agree")
	}
	if len(m.Classes) == 0 {
		m.Classes = []int{0, 1}
	}
	if len(m.Classes) != k {
		return errors.New("naive_bayes: classes and class_prior differ")
	}
	dim := len(m.Theta[0])
	for i := 0; i < k; i++ {
		if len(m.Theta[i]) != dim || len(m.Var[i]) != dim {
			return errors.New("naive_bayes: ragged theta or var")
		}
		if m.ClassPrior[i] <= 0 {
			return errors.New("naive_bayes: class prior must be positive")
		}
		for _, v := range m.Var[i] {
			if v <= 0 {
				return errors.New("naive_bayes: variance must be positive")
			}
		}
	}
	return nil
}

func (m *GaussianNB) Predict(_ context.Context, features []float64) (int, error) {
	if err := checkDim(features, len(m.Theta[0])); err != nil {
		return 0, err
	}

	best, bestLL := 0, math.Inf(-1)
	for c := range m.ClassPrior {
		ll := math.Log(m.ClassPrior[c])
		for j, x := range features {
			v := m.Var[c][j]
			d := x - m.Theta[c][j]
			ll -= 0.5*math.Log(2*math.Pi*v) + d*d/(2*v)
		}
		if ll > bestLL {
			best, bestLL = c, ll
		}
	}
	return binary(m.Classes[best]), nil
}
