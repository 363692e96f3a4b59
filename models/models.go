package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ModelID identifies one of the ensemble classifiers
type ModelID string

const (
	ModelKNN                ModelID = "knn"
	ModelDecisionTree       ModelID = "decision_tree"
	ModelNaiveBayes         ModelID = "naive_bayes"
	ModelSVM                ModelID = "svm"
	ModelLogisticRegression ModelID = "logistic_regression"
	ModelMLP                ModelID = "mlp"
)

// AllModels lists every classifier the registry tries to load, in canonical order.
var AllModels = []ModelID{
	ModelKNN,
	ModelDecisionTree,
	ModelNaiveBayes,
	ModelSVM,
	ModelLogisticRegression,
	ModelMLP,
}

// ParseModelID converts a string into a known ModelID
func ParseModelID(s string) (ModelID, error) {
	for _, id := range AllModels {
		if string(id) == s {
			return id, nil
		}
	}
	return "", fmt.Errorf("unknown model %q", s)
}

// ModelVote maps each consulted classifier to its binary outcome (0 or 1)
type ModelVote map[ModelID]int

// RiskLevel is the discrete tier derived from the vote percentage
type RiskLevel string

const (
	LowRisk      RiskLevel = "LOW_RISK"
	ModerateRisk RiskLevel = "MODERATE_RISK"
	HighRisk     RiskLevel = "HIGH_RISK"
)

// ParseRiskLevel reports whether s names one of the three risk levels
func ParseRiskLevel(s string) (RiskLevel, bool) {
	switch RiskLevel(s) {
	case LowRisk, ModerateRisk, HighRisk:
		return RiskLevel(s), true
	}
	return "", false
}

// FeatureNames is the canonical field order of a ClinicalInput
var FeatureNames = []string{
	"age",
	"sex",
	"chest_pain_type",
	"resting_blood_pressure",
	"cholesterol",
	"fasting_blood_sugar",
	"resting_ecg",
	"max_heart_rate",
	"exercise_induced_angina",
	"st_depression",
	"st_slope",
	"major_vessels",
	"thalassemia",
}

// ErrMissingFields is returned when a ClinicalInput lacks one or more fields
var ErrMissingFields = errors.New("missing required fields")

// ClinicalInput holds the 13 measurements of one patient.
// Pointer fields distinguish an explicit zero from an absent value.
type ClinicalInput struct {
	Age                   *int     `json:"age"`
	Sex                   *int     `json:"sex"`
	ChestPainType         *int     `json:"chest_pain_type"`
	RestingBloodPressure  *int     `json:"resting_blood_pressure"`
	Cholesterol           *int     `json:"cholesterol"`
	FastingBloodSugar     *int     `json:"fasting_blood_sugar"`
	RestingECG            *int     `json:"resting_ecg"`
	MaxHeartRate          *int     `json:"max_heart_rate"`
	ExerciseInducedAngina *int     `json:"exercise_induced_angina"`
	STDepression          *float64 `json:"st_depression"`
	STSlope               *int     `json:"st_slope"`
	MajorVessels          *int     `json:"major_vessels"`
	Thalassemia           *int     `json:"thalassemia"`
}

// MissingFields returns the JSON names of absent fields in canonical order
func (c *ClinicalInput) MissingFields() []string {
	present := []bool{
		c.Age != nil,
		c.Sex != nil,
		c.ChestPainType != nil,
		c.RestingBloodPressure != nil,
		c.Cholesterol != nil,
		c.FastingBloodSugar != nil,
		c.RestingECG != nil,
		c.MaxHeartRate != nil,
		c.ExerciseInducedAngina != nil,
		c.STDepression != nil,
		c.STSlope != nil,
		c.MajorVessels != nil,
		c.Thalassemia != nil,
	}

	var missing []string
	for i, ok := range present {
		if !ok {
			missing = append(missing, FeatureNames[i])
		}
	}
	return missing
}

// Validate returns a *ValidationError wrapping ErrMissingFields if any field is absent
func (c *ClinicalInput) Validate() error {
	if missing := c.MissingFields(); len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// Vector returns the measurements in canonical order. Call Validate first.
func (c *ClinicalInput) Vector() []float64 {
	return []float64{
		float64(*c.Age),
		float64(*c.Sex),
		float64(*c.ChestPainType),
		float64(*c.RestingBloodPressure),
		float64(*c.Cholesterol),
		float64(*c.FastingBloodSugar),
		float64(*c.RestingECG),
		float64(*c.MaxHeartRate),
		float64(*c.ExerciseInducedAngina),
		*c.STDepression,
		float64(*c.STSlope),
		float64(*c.MajorVessels),
		float64(*c.Thalassemia),
	}
}

// ValidationError lists the fields that made an input unusable
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingFields, strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrMissingFields
}

// RiskAssessment is the aggregate result of one prediction
type RiskAssessment struct {
	RiskPercentage float64   `json:"risk_percentage"`
	RiskLevel      RiskLevel `json:"risk_level"`
	Diagnosis      string    `json:"diagnosis"`
	Votes          ModelVote `json:"votes"`
	Timestamp      time.Time `json:"timestamp"`
}

// Precautions is the title and ordered advice list for one risk level
type Precautions struct {
	Title       string   `json:"title"`
	Precautions []string `json:"precautions"`
}

// DietPlan is the title and ordered food lists for one risk level
type DietPlan struct {
	Title        string   `json:"title"`
	FoodsToEat   []string `json:"foods_to_eat"`
	FoodsToAvoid []string `json:"foods_to_avoid"`
}

// RecommendationBundle groups the static content keyed by a risk level
type RecommendationBundle struct {
	Precautions Precautions `json:"precautions"`
	DietPlan    DietPlan    `json:"diet_plan"`
}

// AssessmentRecord is one persisted prediction. The embedded input keeps the
// JSON shape flat, one key per column.
type AssessmentRecord struct {
	ID int64 `json:"id"`
	ClinicalInput
	RiskPercentage float64   `json:"risk_percentage"`
	RiskLevel      RiskLevel `json:"risk_level"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewClinicalInput builds a complete input from values in canonical order
func NewClinicalInput(v [13]float64) ClinicalInput {
	i := func(x float64) *int {
		n := int(x)
		return &n
	}
	st := v[9]
	return ClinicalInput{
		Age:                   i(v[0]),
		Sex:                   i(v[1]),
		ChestPainType:         i(v[2]),
		RestingBloodPressure:  i(v[3]),
		Cholesterol:           i(v[4]),
		FastingBloodSugar:     i(v[5]),
		RestingECG:            i(v[6]),
		MaxHeartRate:          i(v[7]),
		ExerciseInducedAngina: i(v[8]),
		STDepression:          &st,
		STSlope:               i(v[10]),
		MajorVessels:          i(v[11]),
		Thalassemia:           i(v[12]),
	}
}
