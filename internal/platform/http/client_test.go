package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient() *Client {
	return NewClient(ClientOptions{Timeout: time.Second, RequestsPerSec: 100, MaxRetryTimeout: 5 * time.Second})
}

func TestPostJSONRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"prediction":1}`))
	}))
	defer srv.Close()

	var out struct {
		Prediction int `json:"prediction"`
	}
	require.NoError(t, newTestClient().PostJSON(context.Background(), srv.URL, map[string]any{"x": 1}, &out))
	assert.Equal(t, 1, out.Prediction)
	assert.Equal(t, int32(3), calls.Load())
}

func TestPostJSONClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	var out map[string]any
	err := newTestClient().PostJSON(context.Background(), srv.URL, nil, &out)

	var statusErr *HTTPStatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestPostJSONBadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	var out map[string]any
	assert.Error(t, newTestClient().PostJSON(context.Background(), srv.URL, nil, &out))
}

func TestDoRequestHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient().DoRequest(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, "http://127.0.0.1:1", nil)
	})
	assert.Error(t, err)
}
