package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manjeshpatagar/mytradingview/internal/config"
	"github.com/manjeshpatagar/mytradingview/internal/database/dbtest"
	"github.com/manjeshpatagar/mytradingview/internal/util"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) http.Handler {
	t.Helper()
	cfg := config.Default()
	cfg.App.Env = "test"
	cfg.Auth.JWTSecret = "app-test-secret"
	if mutate != nil {
		mutate(&cfg)
	}
	clock := util.NewManualClock(time.Date(2024, 3, 15, 9, 15, 0, 0, time.UTC))
	log, _ := test.NewNullLogger()
	return NewServer(&cfg, dbtest.Open(t, clock.Now), clock.Now, log).Handler()
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestServer(t, nil)

	w := serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(h, httptest.NewRequest(http.MethodGet, "/api/results", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = serve(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `mytradingview_http_requests_total{handler="/api/results",method="GET",status="200"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/stock-news", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	w := serve(h, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodOptions, "/api/stock-news", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w = serve(h, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimited(t *testing.T) {
	h := newTestServer(t, func(c *config.Config) {
		c.HTTP.RateLimitRPS = 0.001
		c.HTTP.RateLimitBurst = 1
	})

	w := serve(h, httptest.NewRequest(http.MethodGet, "/api/results", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(h, httptest.NewRequest(http.MethodGet, "/api/results", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `"success":false`))
}

func TestUnknownRouteIsJSON(t *testing.T) {
	h := newTestServer(t, nil)

	tests := []struct {
		method string
		path   string
		status int
		code   string
	}{
		{http.MethodGet, "/api/nope", http.StatusNotFound, "NOT_FOUND"},
		{http.MethodGet, "/favicon.ico", http.StatusNotFound, "NOT_FOUND"},
		{http.MethodPut, "/api/results/abc", http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := serve(h, httptest.NewRequest(tt.method, tt.path, strings.NewReader(`{}`)))
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

			var body struct {
				Success bool   `json:"success"`
				Code    string `json:"code"`
				Message string `json:"message"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
			assert.False(t, body.Success)
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}
