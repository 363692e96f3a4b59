// Package voting turns the ensemble's binary votes into a risk percentage
// and a risk level. Every vote weighs the same.
package voting

import (
	"errors"
	"fmt"
	"math"

	"github.com/Alias1177/HeartGuard/models"
)

// Band boundaries in percent. Lower bounds are inclusive.
const (
	ModerateThreshold = 33.0
	HighThreshold     = 67.0

	// DiagnosisThreshold drives the diagnosis wording only and is
	// deliberately independent of the band boundaries.
	DiagnosisThreshold = 50.0
)

const (
	DiagnosisElevated = "Heart Disease Risk Detected"
	DiagnosisLow      = "Low Heart Disease Risk"
)

var (
	ErrNoVotes     = errors.New("no models available")
	ErrInvalidVote = errors.New("vote must be 0 or 1")
)

// Result is the percentage together with the level derived from it
type Result struct {
	Percentage float64
	Level      models.RiskLevel
	Positive   int
	Total      int
}

// Classify computes 100 * positive / total and the matching level
func Classify(votes models.ModelVote) (Result, error) {
	if len(votes) == 0 {
		return Result{}, ErrNoVotes
	}

	positive := 0
	for id, v := range votes {
		switch v {
		case 0:
		case 1:
			positive++
		default:
			return Result{}, fmt.Errorf("%w: %s voted %d", ErrInvalidVote, id, v)
		}
	}

	pct := 100 * float64(positive) / float64(len(votes))
	return Result{
		Percentage: pct,
		Level:      LevelFor(pct),
		Positive:   positive,
		Total:      len(votes),
	}, nil
}

// LevelFor maps an unrounded percentage onto its band
func LevelFor(percentage float64) models.RiskLevel {
	switch {
	case percentage < ModerateThreshold:
		return models.LowRisk
	case percentage < HighThreshold:
		return models.ModerateRisk
	default:
		return models.HighRisk
	}
}

// Diagnosis returns the headline wording. 60% is MODERATE_RISK and still
// reads "Heart Disease Risk Detected".
func Diagnosis(percentage float64) string {
	if percentage >= DiagnosisThreshold {
		return DiagnosisElevated
	}
	return DiagnosisLow
}

// Message is the one-line summary shown next to the result
func Message(percentage float64) string {
	return fmt.Sprintf("Risk of Heart Disease: %.1f%%", percentage)
}

// Round1 rounds to one decimal place for display
func Round1(percentage float64) float64 {
	return math.Round(percentage*10) / 10
}
