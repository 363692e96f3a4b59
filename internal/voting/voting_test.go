package voting

import (
	"fmt"
	"testing"

	"github.com/Alias1177/HeartGuard/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// votesOf builds a vote map with the first `positive` models voting 1
func votesOf(total, positive int) models.ModelVote {
	votes := make(models.ModelVote, total)
	for i := 0; i < total; i++ {
		v := 0
		if i < positive {
			v = 1
		}
		votes[models.ModelID(fmt.Sprintf("m%d", i))] = v
	}
	return votes
}

func TestClassifyScenarios(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		positive  int
		display   float64
		level     models.RiskLevel
		diagnosis string
	}{
		{"six models none positive", 6, 0, 0.0, models.LowRisk, DiagnosisLow},
		{"six models two positive", 6, 2, 33.3, models.ModerateRisk, DiagnosisLow},
		// 66.67 displays as 66.7 but is still below 67
		{"six models four positive", 6, 4, 66.7, models.ModerateRisk, DiagnosisElevated},
		{"single model positive", 1, 1, 100.0, models.HighRisk, DiagnosisElevated},
		{"single model negative", 1, 0, 0.0, models.LowRisk, DiagnosisLow},
		{"six models five positive", 6, 5, 83.3, models.HighRisk, DiagnosisElevated},
		{"three models one positive", 3, 1, 33.3, models.ModerateRisk, DiagnosisLow},
		{"three models two positive", 3, 2, 66.7, models.ModerateRisk, DiagnosisElevated},
		{"two models one positive", 2, 1, 50.0, models.ModerateRisk, DiagnosisElevated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Classify(votesOf(tt.total, tt.positive))
			require.NoError(t, err)

			assert.Equal(t, 100*float64(tt.positive)/float64(tt.total), res.Percentage)
			assert.Equal(t, tt.display, Round1(res.Percentage))
			assert.Equal(t, tt.level, res.Level)
			assert.Equal(t, tt.diagnosis, Diagnosis(res.Percentage))
			assert.Equal(t, tt.positive, res.Positive)
			assert.Equal(t, tt.total, res.Total)
		})
	}
}

func TestLevelForBoundaries(t *testing.T) {
	tests := []struct {
		pct  float64
		want models.RiskLevel
	}{
		{0, models.LowRisk},
		{32.999, models.LowRisk},
		{33, models.ModerateRisk},
		{50, models.ModerateRisk},
		{66.999, models.ModerateRisk},
		{67, models.HighRisk},
		{100, models.HighRisk},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.pct), func(t *testing.T) {
			assert.Equal(t, tt.want, LevelFor(tt.pct))
		})
	}
}

// The diagnosis cutoff and the band boundaries disagree between 50 and 67.
// Both are kept as they are.
func TestDiagnosisAndLevelDisagreeInTheMiddleBand(t *testing.T) {
	res, err := Classify(votesOf(5, 3)) // 60%
	require.NoError(t, err)

	assert.Equal(t, models.ModerateRisk, res.Level)
	assert.Equal(t, DiagnosisElevated, Diagnosis(res.Percentage))
}

func TestClassifyEmpty(t *testing.T) {
	_, err := Classify(models.ModelVote{})
	assert.ErrorIs(t, err, ErrNoVotes)

	_, err = Classify(nil)
	assert.ErrorIs(t, err, ErrNoVotes)
}

func TestClassifyRejectsNonBinaryVote(t *testing.T) {
	_, err := Classify(models.ModelVote{models.ModelKNN: 1, models.ModelSVM: 2})
	assert.ErrorIs(t, err, ErrInvalidVote)
}

func TestClassifyIsPure(t *testing.T) {
	votes := models.ModelVote{
		models.ModelKNN:          1,
		models.ModelDecisionTree: 0,
		models.ModelNaiveBayes:   1,
		models.ModelSVM:          0,
		models.ModelMLP:          1,
	}

	first, err := Classify(votes)
	require.NoError(t, err)
	second, err := Classify(votes)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, votes, 5, "input must not be modified")
}

// Every vote split for up to 12 models stays in range and matches LevelFor.
func TestClassifyAllSplits(t *testing.T) {
	for total := 1; total <= 12; total++ {
		for positive := 0; positive <= total; positive++ {
			res, err := Classify(votesOf(total, positive))
			require.NoError(t, err)

			assert.GreaterOrEqual(t, res.Percentage, 0.0)
			assert.LessOrEqual(t, res.Percentage, 100.0)
			assert.Equal(t, 100*float64(positive)/float64(total), res.Percentage)
			assert.Equal(t, LevelFor(res.Percentage), res.Level)
		}
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Risk of Heart Disease: 66.7%", Message(200.0/3))
	assert.Equal(t, "Risk of Heart Disease: 0.0%", Message(0))
}
