package chartcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"trade-journal-go/internal/config"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func testChecker() *Checker {
	cfg := &config.ChartCheck{TimeoutSeconds: 5, RateLimit: 100, RateLimitBurst: 10}
	return NewChecker(cfg, zap.NewNop())
}

func TestCheck_ReachableURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := testChecker().Check(context.Background(), server.URL+"/chart.png")
	assert.NoError(t, err)
}

func TestCheck_HeadRejectedFallsBackToGet(t *testing.T) {
	var sawGet bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		sawGet = true
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := testChecker().Check(context.Background(), server.URL)
	assert.NoError(t, err)
	assert.True(t, sawGet)
}

func TestCheck_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	err := testChecker().Check(context.Background(), server.URL+"/missing.png")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestCheck_InvalidURL(t *testing.T) {
	checker := testChecker()
	testCases := []string{
		"",
		"not a url",
		"ftp://files.example/chart.png",
		"chart.png",
	}
	for _, raw := range testCases {
		err := checker.Check(context.Background(), raw)
		assert.Error(t, err, "url=%q", raw)
		assert.Contains(t, err.Error(), "not a valid http(s) link")
	}
}

func TestCheck_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := testChecker().Check(ctx, "https://charts.example/a.png")
	assert.Error(t, err)
}
