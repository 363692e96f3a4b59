// Package registry owns the loaded ensemble: the classifiers, the optional
// feature scaler and the optional feature-name ordering. A Registry is
// immutable after Load and is shared by every in-flight request.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Alias1177/HeartGuard/internal/classifier"
	"github.com/Alias1177/HeartGuard/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	ScalerFile       = "scaler.json"
	FeatureNamesFile = "feature_names.json"
)

// ErrNoModels means no classifier could be loaded, so no inference is possible
var ErrNoModels = errors.New("no models available for prediction")

// LoadReport records what Load found on disk
type LoadReport struct {
	Dir          string            `json:"dir"`
	Loaded       []models.ModelID  `json:"loaded"`
	Missing      []models.ModelID  `json:"missing"`
	Failed       map[string]string `json:"failed,omitempty"`
	ScalerLoaded bool              `json:"scaler_loaded"`
	FeatureNames []string          `json:"feature_names,omitempty"`
	Degradation  Degradation       `json:"degradation"`
}

// Degradation lists the fallbacks taken. None of them is an error.
type Degradation struct {
	ScalerMissing       bool             `json:"scaler_missing,omitempty"`
	FeatureNamesMissing bool             `json:"feature_names_missing,omitempty"`
	ScaleFailed         bool             `json:"scale_failed,omitempty"`
	MissingModels       []models.ModelID `json:"missing_models,omitempty"`
	FailedModels        []models.ModelID `json:"failed_models,omitempty"`
}

// Any reports whether at least one fallback was taken
func (d Degradation) Any() bool {
	return d.ScalerMissing || d.FeatureNamesMissing || d.ScaleFailed ||
		len(d.MissingModels) > 0 || len(d.FailedModels) > 0
}

// RunResult is the outcome of running every loaded classifier on one input
type RunResult struct {
	Votes       models.ModelVote
	Degradation Degradation
}

// Registry maps each available ModelID to its classifier
type Registry struct {
	classifiers map[models.ModelID]classifier.Classifier
	scaler      classifier.Scaler
	order       []int // index into the canonical vector for each scaler/model column
	report      LoadReport
	logger      zerolog.Logger
}

// Options configures Load
type Options struct {
	Classifier classifier.Options
}

// New builds a registry from already-constructed parts. A nil scaler means
// identity; nil featureNames means canonical order.
func New(classifiers map[models.ModelID]classifier.Classifier, scaler classifier.Scaler, featureNames []string) (*Registry, error) {
	r := &Registry{
		classifiers: make(map[models.ModelID]classifier.Classifier, len(classifiers)),
		logger:      log.With().Str("component", "registry").Logger(),
	}
	for _, id := range models.AllModels {
		if c, ok := classifiers[id]; ok && c != nil {
			r.classifiers[id] = c
			r.report.Loaded = append(r.report.Loaded, id)
		} else {
			r.report.Missing = append(r.report.Missing, id)
		}
	}

	if scaler == nil {
		r.scaler = classifier.IdentityScaler{}
		r.report.Degradation.ScalerMissing = true
	} else {
		r.scaler = scaler
		r.report.ScalerLoaded = true
	}

	if featureNames == nil {
		r.report.Degradation.FeatureNamesMissing = true
	} else {
		order, err := columnOrder(featureNames)
		if err != nil {
			return nil, err
		}
		r.order = order
		r.report.FeatureNames = featureNames
	}
	r.report.Degradation.MissingModels = r.report.Missing
	return r, nil
}

// Load reads every known model from dir. Absent or broken files are recorded
// in the report and skipped; Load itself only fails when dir is unreadable.
func Load(dir string, opts Options) (*Registry, error) {
	logger := log.With().Str("component", "registry").Str("dir", dir).Logger()

	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("models directory: %w", err)
	}

	classifiers := make(map[models.ModelID]classifier.Classifier)
	failed := make(map[string]string)
	for _, id := range models.AllModels {
		path := filepath.Join(dir, string(id)+".json")
		c, err := classifier.LoadFile(path, opts.Classifier)
		switch {
		case errors.Is(err, os.ErrNotExist):
			logger.Warn().Str("model", string(id)).Msg("Model file not found")
		case err != nil:
			logger.Error().Err(err).Str("model", string(id)).Msg("Failed to load model")
			failed[string(id)] = err.Error()
		default:
			logger.Info().Str("model", string(id)).Msg("Loaded model")
			classifiers[id] = c
		}
	}

	var scaler classifier.Scaler
	s, err := classifier.LoadScaler(filepath.Join(dir, ScalerFile))
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Warn().Msg("Scaler not found, features are used unscaled")
	case err != nil:
		logger.Error().Err(err).Msg("Failed to load scaler, features are used unscaled")
		failed["scaler"] = err.Error()
	default:
		logger.Info().Msg("Loaded scaler")
		scaler = s
	}

	featureNames, err := loadFeatureNames(filepath.Join(dir, FeatureNamesFile))
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Warn().Msg("Feature names not found, using canonical field order")
	case err != nil:
		logger.Error().Err(err).Msg("Unusable feature names, using canonical field order")
		failed["feature_names"] = err.Error()
		featureNames = nil
	default:
		logger.Info().Strs("feature_names", featureNames).Msg("Loaded feature names")
	}

	r, err := New(classifiers, scaler, featureNames)
	if err != nil {
		return nil, err
	}
	r.report.Dir = dir
	if len(failed) > 0 {
		r.report.Failed = failed
	}

	if len(r.classifiers) == 0 {
		logger.Error().Msg("No models found")
	} else {
		logger.Info().Int("count", len(r.classifiers)).Msg("Successfully loaded models")
	}
	return r, nil
}

func loadFeatureNames(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if _, err := columnOrder(names); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return names, nil
}

// columnOrder maps each named column to its index in the canonical vector
func columnOrder(names []string) ([]int, error) {
	if len(names) != len(models.FeatureNames) {
		return nil, fmt.Errorf("feature names: got %d, want %d", len(names), len(models.FeatureNames))
	}
	index := make(map[string]int, len(models.FeatureNames))
	for i, n := range models.FeatureNames {
		index[n] = i
	}
	seen := make(map[string]bool, len(names))
	order := make([]int, len(names))
	for i, n := range names {
		idx, ok := index[n]
		if !ok {
			return nil, fmt.Errorf("feature names: unknown feature %q", n)
		}
		if seen[n] {
			return nil, fmt.Errorf("feature names: duplicate feature %q", n)
		}
		seen[n] = true
		order[i] = idx
	}
	return order, nil
}

// Available returns the loaded model ids in canonical order
func (r *Registry) Available() []models.ModelID {
	out := make([]models.ModelID, len(r.report.Loaded))
	copy(out, r.report.Loaded)
	return out
}

// Report returns what Load found
func (r *Registry) Report() LoadReport {
	return r.report
}

// Features builds the vector the classifiers see: columns reordered by the
// feature-name list when one is loaded, then scaled. A failing scaler falls
// back to the unscaled vector and sets ScaleFailed.
func (r *Registry) Features(input *models.ClinicalInput) ([]float64, Degradation, error) {
	deg := r.report.Degradation
	if err := input.Validate(); err != nil {
		return nil, deg, err
	}

	raw := input.Vector()
	if r.order != nil {
		ordered := make([]float64, len(r.order))
		for i, idx := range r.order {
			ordered[i] = raw[idx]
		}
		raw = ordered
	}

	scaled, err := r.scaler.Transform(raw)
	if err != nil {
		r.logger.Warn().Err(err).Msg("Scaling failed, using unscaled features")
		deg.ScaleFailed = true
		return raw, deg, nil
	}
	return scaled, deg, nil
}

// RunAll runs every loaded classifier on input and collects one vote each.
// A classifier that errors is skipped and reported in FailedModels.
func (r *Registry) RunAll(ctx context.Context, input *models.ClinicalInput) (RunResult, error) {
	if len(r.classifiers) == 0 {
		return RunResult{}, ErrNoModels
	}

	features, deg, err := r.Features(input)
	if err != nil {
		return RunResult{}, err
	}

	votes := make(models.ModelVote, len(r.classifiers))
	for _, id := range r.report.Loaded {
		vote, err := r.classifiers[id].Predict(ctx, features)
		if err != nil {
			r.logger.Error().Err(err).Str("model", string(id)).Msg("Model prediction failed")
			deg.FailedModels = append(deg.FailedModels, id)
			continue
		}
		votes[id] = vote
	}

	if len(votes) == 0 {
		return RunResult{Degradation: deg}, ErrNoModels
	}
	return RunResult{Votes: votes, Degradation: deg}, nil
}
