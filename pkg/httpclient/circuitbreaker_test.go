package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/maxcasase/BDPW-Back-End/pkg/errors"
	"github.com/maxcasase/BDPW-Back-End/pkg/logger"
)

func testBreaker(name string) *CircuitBreakerClient {
	cfg := fastConfig()
	cfg.MaxRetries = 0
	cbCfg := DefaultCircuitBreakerConfig(name)
	cbCfg.MinRequests = 2
	cbCfg.Timeout = time.Hour
	return NewCircuitBreakerClient(New(cfg), cbCfg, logger.Discard())
}

func TestCircuitBreakerClient_GetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"1","title":"Kind of Blue"}]}`))
	}))
	defer srv.Close()

	var out struct {
		Data []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"data"`
	}
	require.NoError(t, testBreaker("catalog-ok").GetJSON(context.Background(), srv.URL, &out))
	require.Len(t, out.Data, 1)
	assert.Equal(t, "Kind of Blue", out.Data[0].Title)
}

func TestCircuitBreakerClient_OpensOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cb := testBreaker("catalog-down")
	var out map[string]any
	for i := 0; i < 2; i++ {
		require.Error(t, cb.GetJSON(context.Background(), srv.URL, &out))
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	err := cb.GetJSON(context.Background(), srv.URL, &out)
	assert.True(t, errors.Is(err, ErrCircuitOpen))
	assert.Equal(t, int32(2), calls.Load())
}

func TestCircuitBreakerClient_ClientErrorsDoNotTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"INVALID_INPUT","message":"bad ids"}}`))
	}))
	defer srv.Close()

	cb := testBreaker("catalog-4xx")
	var out map[string]any
	for i := 0; i < 4; i++ {
		err := cb.GetJSON(context.Background(), srv.URL, &out)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, apperrors.HTTPStatus(err))
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}
