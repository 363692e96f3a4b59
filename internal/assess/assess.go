// Package assess runs one risk assessment end to end: ensemble vote,
// aggregation, recommendations, then persistence and notification in the
// background.
package assess

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Alias1177/HeartGuard/internal/notify"
	"github.com/Alias1177/HeartGuard/internal/recommend"
	"github.com/Alias1177/HeartGuard/internal/registry"
	"github.com/Alias1177/HeartGuard/internal/voting"
	"github.com/Alias1177/HeartGuard/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultHistoryLimit = 100
	MaxHistoryLimit     = 100

	backgroundTimeout = 10 * time.Second
)

// Ensemble is the registry side of an assessment
type Ensemble interface {
	RunAll(ctx context.Context, input *models.ClinicalInput) (registry.RunResult, error)
}

// Result is everything the caller shows for one assessment.
// Assessment.RiskPercentage is unrounded; round only for display.
type Result struct {
	Assessment  models.RiskAssessment
	Bundle      models.RecommendationBundle
	Message     string
	Degradation registry.Degradation
}

// Service wires the ensemble to the record store and notifier
type Service struct {
	ensemble Ensemble
	store    models.AssessmentStore
	notifier notify.Notifier
	now      func() time.Time
	wg       sync.WaitGroup
	logger   zerolog.Logger
}

// New returns a Service. A nil notifier disables notifications.
func New(ensemble Ensemble, store models.AssessmentStore, notifier notify.Notifier) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{
		ensemble: ensemble,
		store:    store,
		notifier: notifier,
		now:      time.Now,
		logger:   log.With().Str("component", "assess").Logger(),
	}
}

// Assess validates input, collects the votes and builds the result.
// Persisting the record and the HIGH_RISK notification happen after it
// returns; their failures are logged and never reach the caller.
func (s *Service) Assess(ctx context.Context, input *models.ClinicalInput) (*Result, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	run, err := s.ensemble.RunAll(ctx, input)
	if err != nil {
		return nil, err
	}

	vote, err := voting.Classify(run.Votes)
	if err != nil {
		return nil, err
	}

	pct := vote.Percentage
	res := &Result{
		Assessment: models.RiskAssessment{
			RiskPercentage: pct,
			RiskLevel:      vote.Level,
			Diagnosis:      voting.Diagnosis(vote.Percentage),
			Votes:          run.Votes,
			Timestamp:      s.now().UTC(),
		},
		Bundle:      recommend.BundleFor(string(vote.Level)),
		Message:     voting.Message(vote.Percentage),
		Degradation: run.Degradation,
	}

	s.logger.Info().
		Float64("risk_percentage", pct).
		Str("risk_level", string(vote.Level)).
		Int("positive", vote.Positive).
		Int("total", vote.Total).
		Bool("degraded", run.Degradation.Any()).
		Msg("Assessment completed")

	rec := &models.AssessmentRecord{
		ClinicalInput:  *input,
		RiskPercentage: pct,
		RiskLevel:      vote.Level,
		CreatedAt:      res.Assessment.Timestamp,
	}
	s.background(ctx, func(ctx context.Context) {
		s.persist(ctx, rec)
	})
	if vote.Level == models.HighRisk {
		assessment := res.Assessment
		s.background(ctx, func(ctx context.Context) {
			if err := s.notifier.NotifyHighRisk(ctx, &assessment); err != nil {
				s.logger.Error().Err(err).Msg("Failed to send high risk notification")
			}
		})
	}
	return res, nil
}

// background runs fn detached from the caller's cancellation but bounded by
// its own timeout
func (s *Service) background(parent context.Context, fn func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), backgroundTimeout)
		defer cancel()
		fn(ctx)
	}()
}

func (s *Service) persist(ctx context.Context, rec *models.AssessmentRecord) {
	if s.store == nil {
		return
	}
	id, err := s.store.Append(ctx, rec)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to save prediction")
		return
	}
	s.logger.Debug().Int64("id", id).Msg("Prediction saved")
}

// Wait blocks until all background work started by Assess has finished
func (s *Service) Wait() {
	s.wg.Wait()
}

var ErrNoStore = errors.New("no record store configured")

// ClampLimit maps a requested history size onto 1..MaxHistoryLimit;
// anything <= 0 means DefaultHistoryLimit
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	default:
		return limit
	}
}

// History returns the newest records first
func (s *Service) History(ctx context.Context, limit int) ([]models.AssessmentRecord, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	return s.store.ListRecent(ctx, ClampLimit(limit))
}

// ClearHistory removes every record and returns how many there were
func (s *Service) ClearHistory(ctx context.Context) (int64, error) {
	if s.store == nil {
		return 0, ErrNoStore
	}
	n, err := s.store.ClearAll(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info().Int64("count", n).Msg("History cleared")
	return n, nil
}
