package classifier

import (
	"context"
	"errors"
	"fmt"

	phttp "github.com/Alias1177/HeartGuard/internal/platform/http"
)

// Remote delegates prediction to an external inference endpoint.
// The endpoint receives {"features": [...]} and answers {"prediction": 0|1}.
type Remote struct {
	URL string `json:"url"`

	client *phttp.Client
}

type remoteRequest struct {
	Features []float64 `json:"features"`
}

type remoteResponse struct {
	Prediction *int `json:"prediction"`
}

func (m *Remote) validate() error {
	if m.URL == "" {
		return errors.New("remote: url is empty")
	}
	return nil
}

func (m *Remote) Predict(ctx context.Context, features []float64) (int, error) {
	var resp remoteResponse
	if err := m.client.PostJSON(ctx, m.URL, remoteRequest{Features: features}, &resp); err != nil {
		return 0, fmt.Errorf("remote predict: %w", err)
	}
	if resp.Prediction == nil {
		return 0, errors.New("remote predict: response has no prediction")
	}
	switch *resp.Prediction {
	case 0, 1:
		return *resp.Prediction, nil
	}
	return 0, fmt.Errorf("remote predict: non-binary prediction %d", *resp.Prediction)
}
