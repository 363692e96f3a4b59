package assess

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Alias1177/HeartGuard/internal/registry"
	"github.com/Alias1177/HeartGuard/internal/voting"
	"github.com/Alias1177/HeartGuard/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEnsemble struct {
	votes models.ModelVote
	deg   registry.Degradation
	err   error
}

func (s stubEnsemble) RunAll(context.Context, *models.ClinicalInput) (registry.RunResult, error) {
	if s.err != nil {
		return registry.RunResult{}, s.err
	}
	return registry.RunResult{Votes: s.votes, Degradation: s.deg}, nil
}

type memStore struct {
	mu        sync.Mutex
	records   []models.AssessmentRecord
	appendErr error
	lastLimit int
}

func (m *memStore) Append(_ context.Context, rec *models.AssessmentRecord) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return 0, m.appendErr
	}
	rec.ID = int64(len(m.records) + 1)
	m.records = append(m.records, *rec)
	return rec.ID, nil
}

func (m *memStore) ListRecent(_ context.Context, limit int) ([]models.AssessmentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLimit = limit
	out := []models.AssessmentRecord{}
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

func (m *memStore) ClearAll(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.records))
	m.records = nil
	return n, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	seen []models.RiskAssessment
	err  error
}

func (r *recordingNotifier) NotifyHighRisk(_ context.Context, a *models.RiskAssessment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, *a)
	return r.err
}

func votes(vals ...int) models.ModelVote {
	v := make(models.ModelVote, len(vals))
	for i, x := range vals {
		v[models.AllModels[i]] = x
	}
	return v
}

func input() *models.ClinicalInput {
	in := models.NewClinicalInput([13]float64{63, 1, 3, 145, 233, 1, 0, 150, 0, 2.3, 0, 0, 1})
	return &in
}

func TestAssess(t *testing.T) {
	tests := []struct {
		name      string
		votes     models.ModelVote
		wantPct   float64
		wantLevel models.RiskLevel
		wantDiag  string
		wantMsg   string
	}{
		{"all negative", votes(0, 0, 0, 0, 0, 0), 0, models.LowRisk, "Low Heart Disease Risk", "Risk of Heart Disease: 0.0%"},
		{"two of six", votes(1, 1, 0, 0, 0, 0), 100.0 * 2 / 6, models.ModerateRisk, "Low Heart Disease Risk", "Risk of Heart Disease: 33.3%"},
		{"four of six", votes(1, 1, 1, 1, 0, 0), 100.0 * 4 / 6, models.ModerateRisk, "Heart Disease Risk Detected", "Risk of Heart Disease: 66.7%"},
		{"single positive", votes(1), 100, models.HighRisk, "Heart Disease Risk Detected", "Risk of Heart Disease: 100.0%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{}
			svc := New(stubEnsemble{votes: tt.votes}, store, nil)

			res, err := svc.Assess(context.Background(), input())
			require.NoError(t, err)
			svc.Wait()

			assert.Equal(t, tt.wantPct, res.Assessment.RiskPercentage)
			assert.Equal(t, tt.wantLevel, res.Assessment.RiskLevel)
			assert.Equal(t, tt.wantDiag, res.Assessment.Diagnosis)
			assert.Equal(t, tt.wantMsg, res.Message)
			assert.NotEmpty(t, res.Bundle.Precautions.Precautions)
			assert.NotEmpty(t, res.Bundle.DietPlan.FoodsToEat)

			require.Len(t, store.records, 1)
			assert.Equal(t, tt.wantPct, store.records[0].RiskPercentage)
			assert.Equal(t, tt.wantLevel, store.records[0].RiskLevel)
			assert.Equal(t, 63, *store.records[0].Age)
		})
	}
}

func TestStoredPercentageIsUnrounded(t *testing.T) {
	store := &memStore{}
	n := &recordingNotifier{}
	// 5 of 6 is 83.33..., which rounds to 83.3 for display only
	svc := New(stubEnsemble{votes: models.ModelVote{
		models.ModelKNN: 1, models.ModelDecisionTree: 1, models.ModelNaiveBayes: 1,
		models.ModelSVM: 1, models.ModelLogisticRegression: 1, models.ModelMLP: 0,
	}}, store, n)

	res, err := svc.Assess(context.Background(), input())
	require.NoError(t, err)
	svc.Wait()

	exact := 100.0 * 5 / 6
	assert.Equal(t, exact, res.Assessment.RiskPercentage)
	require.Len(t, store.records, 1)
	assert.Equal(t, exact, store.records[0].RiskPercentage)
	assert.Equal(t, voting.LevelFor(store.records[0].RiskPercentage), store.records[0].RiskLevel)
	require.Len(t, n.seen, 1)
	assert.Equal(t, exact, n.seen[0].RiskPercentage)
	assert.Equal(t, "Risk of Heart Disease: 83.3%", res.Message)
}

func TestAssessMissingFields(t *testing.T) {
	store := &memStore{}
	svc := New(stubEnsemble{votes: votes(1)}, store, nil)

	in := input()
	in.Age = nil
	_, err := svc.Assess(context.Background(), in)
	assert.ErrorIs(t, err, models.ErrMissingFields)

	svc.Wait()
	assert.Empty(t, store.records)
}

func TestAssessNoModels(t *testing.T) {
	svc := New(stubEnsemble{err: registry.ErrNoModels}, &memStore{}, nil)

	_, err := svc.Assess(context.Background(), input())
	assert.ErrorIs(t, err, registry.ErrNoModels)
}

func TestAssessSurvivesStoreFailure(t *testing.T) {
	svc := New(stubEnsemble{votes: votes(1, 0)}, &memStore{appendErr: errors.New("disk full")}, nil)

	res, err := svc.Assess(context.Background(), input())
	require.NoError(t, err)
	svc.Wait()
	assert.Equal(t, 50.0, res.Assessment.RiskPercentage)
}

func TestAssessPersistsAfterCallerCancels(t *testing.T) {
	store := &memStore{}
	svc := New(stubEnsemble{votes: votes(0, 0)}, store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	_, err := svc.Assess(ctx, input())
	require.NoError(t, err)
	cancel()
	svc.Wait()

	assert.Len(t, store.records, 1)
}

func TestAssessCarriesDegradation(t *testing.T) {
	deg := registry.Degradation{ScalerMissing: true}
	svc := New(stubEnsemble{votes: votes(1), deg: deg}, nil, nil)

	res, err := svc.Assess(context.Background(), input())
	require.NoError(t, err)
	svc.Wait()
	assert.True(t, res.Degradation.ScalerMissing)
}

func TestHighRiskNotification(t *testing.T) {
	n := &recordingNotifier{}
	svc := New(stubEnsemble{votes: votes(1, 1, 1)}, &memStore{}, n)

	_, err := svc.Assess(context.Background(), input())
	require.NoError(t, err)
	_, err = svc.Assess(context.Background(), input())
	require.NoError(t, err)
	svc.Wait()

	require.Len(t, n.seen, 2)
	assert.Equal(t, models.HighRisk, n.seen[0].RiskLevel)
}

func TestNoNotificationBelowHigh(t *testing.T) {
	n := &recordingNotifier{}
	svc := New(stubEnsemble{votes: votes(1, 1, 0, 0, 0, 0)}, &memStore{}, n)

	_, err := svc.Assess(context.Background(), input())
	require.NoError(t, err)
	svc.Wait()
	assert.Empty(t, n.seen)
}

func TestNotifierFailureIsIgnored(t *testing.T) {
	n := &recordingNotifier{err: errors.New("telegram down")}
	store := &memStore{}
	svc := New(stubEnsemble{votes: votes(1)}, store, n)

	_, err := svc.Assess(context.Background(), input())
	require.NoError(t, err)
	svc.Wait()
	assert.Len(t, store.records, 1)
}

func TestClampLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-5, 100},
		{0, 100},
		{1, 1},
		{42, 42},
		{100, 100},
		{1000, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampLimit(tt.in), "limit %d", tt.in)
	}
}

func TestHistoryAndClear(t *testing.T) {
	store := &memStore{}
	svc := New(stubEnsemble{votes: votes(1, 0)}, store, nil)
	svc.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	for i := 0; i < 3; i++ {
		_, err := svc.Assess(context.Background(), input())
		require.NoError(t, err)
	}
	svc.Wait()

	hist, err := svc.History(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, hist, 3)
	assert.Equal(t, 100, store.lastLimit)
	assert.Equal(t, int64(3), hist[0].ID)

	n, err := svc.ClearHistory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	hist, err = svc.History(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, hist)
}

func TestHistoryWithoutStore(t *testing.T) {
	svc := New(stubEnsemble{}, nil, nil)

	_, err := svc.History(context.Background(), 10)
	assert.ErrorIs(t, err, ErrNoStore)
	_, err = svc.ClearHistory(context.Background())
	assert.ErrorIs(t, err, ErrNoStore)
}
