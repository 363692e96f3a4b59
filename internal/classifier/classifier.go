// Package classifier evaluates binary classifiers exported from a training
// pipeline as JSON parameter files. Nothing here fits a model; every type is
// read-only after decoding and safe for concurrent use.
package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	phttp "github.com/Alias1177/HeartGuard/internal/platform/http"
)

// Classifier returns 0 (no disease indicated) or 1 (disease indicated)
type Classifier interface {
	Predict(ctx context.Context, features []float64) (int, error)
}

// Kind names the model family stored in a parameter file
type Kind string

const (
	KindKNN                Kind = "knn"
	KindDecisionTree       Kind = "decision_tree"
	KindNaiveBayes         Kind = "naive_bayes"
	KindSVM                Kind = "svm"
	KindLogisticRegression Kind = "logistic_regression"
	KindMLP                Kind = "mlp"
	KindRemote             Kind = "remote"
)

var (
	ErrDimension   = errors.New("feature dimension mismatch")
	ErrInvalidFile = errors.New("invalid model file")
)

// File is the on-disk envelope of every exported model
type File struct {
	Kind   Kind            `json:"kind"`
	Params json.RawMessage `json:"params"`
}

// Options carries collaborators some kinds need
type Options struct {
	// HTTP is required for KindRemote
	HTTP *phttp.Client
}

// LoadFile reads and decodes a model file
func LoadFile(path string, opts Options) (Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Decode(data, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Decode builds a classifier from the JSON envelope
func Decode(data []byte, opts Options) (Classifier, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if len(f.Params) == 0 {
		return nil, fmt.Errorf("%w: params missing", ErrInvalidFile)
	}

	var (
		c   Classifier
		err error
	)
	switch f.Kind {
	case KindKNN:
		c, err = decodeInto[KNN](f.Params)
	case KindDecisionTree:
		c, err = decodeInto[DecisionTree](f.Params)
	case KindNaiveBayes:
		c, err = decodeInto[GaussianNB](f.Params)
	case KindSVM:
		c, err = decodeInto[SVM](f.Params)
	case KindLogisticRegression:
		c, err = decodeInto[LogisticRegression](f.Params)
	case KindMLP:
		c, err = decodeInto[MLP](f.Params)
	case KindRemote:
		var r *Remote
		r, err = decodeInto[Remote](f.Params)
		if err == nil {
			if opts.HTTP == nil {
				return nil, fmt.Errorf("%w: remote model needs an HTTP client", ErrInvalidFile)
			}
			r.client = opts.HTTP
		}
		c = r
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidFile, f.Kind)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

type validator interface {
	validate() error
}

// decodeInto unmarshals params into T and runs its validation
func decodeInto[T any, PT interface {
	*T
	validator
}](params json.RawMessage) (PT, error) {
	v := PT(new(T))
	if err := json.Unmarshal(params, v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if err := v.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	return v, nil
}

func checkDim(features []float64, want int) error {
	if len(features) != want {
		return fmt.Errorf("%w: got %d, want %d", ErrDimension, len(features), want)
	}
	return nil
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// binary maps a class label onto {0,1}
func binary(label int) int {
	if label > 0 {
		return 1
	}
	return 0
}
