package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manjeshpatagar/mytradingview/internal/apperr"
)

// renderErrors writes the recorded error the way the API error handler does.
func renderErrors(c *gin.Context) {
	c.Next()
	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}
	e := apperr.From(c.Errors.Last().Err)
	c.JSON(e.Kind.Status(), gin.H{"success": false, "message": e.Message, "code": e.Kind.String()})
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.Use(renderErrors)
	r.GET("/items/:id", func(c *gin.Context) {
		if c.Param("id") == "missing" {
			_ = c.Error(apperr.NotFound("Item not found"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})
	return r
}

func get(r http.Handler, path, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = ip + ":40000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitPerClient(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	r := newEngine(rl.Handler())

	assert.Equal(t, http.StatusOK, get(r, "/items/1", "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, get(r, "/items/1", "10.0.0.1").Code)

	w := get(r, "/items/1", "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"TOO_MANY_REQUESTS"`)

	assert.Equal(t, http.StatusOK, get(r, "/items/1", "10.0.0.2").Code, "other clients keep their own bucket")
}

func TestRateLimiterSweep(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 1)
	rl.now = func() time.Time { return now }

	rl.getVisitor("10.0.0.1")
	now = now.Add(time.Minute)
	rl.getVisitor("10.0.0.2")

	now = now.Add(visitorTTL)
	rl.Sweep()
	assert.NotContains(t, rl.visitors, "10.0.0.1")
	assert.Contains(t, rl.visitors, "10.0.0.2")
}

func TestRequestLogger(t *testing.T) {
	log, hook := test.NewNullLogger()
	r := newEngine(RequestLogger(log))

	w := get(r, "/items/7", "10.0.0.1")
	require.Equal(t, http.StatusOK, w.Code)
	id := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, id)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, id, entry.Data["request_id"])
	assert.Equal(t, "/items/:id", entry.Data["route"])
	assert.Equal(t, http.StatusOK, entry.Data["status"])

	hook.Reset()
	w = get(r, "/items/missing", "10.0.0.1")
	require.Equal(t, http.StatusNotFound, w.Code)
	entry = hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Contains(t, entry.Data["error"], "Item not found")
}

func TestRequestLoggerKeepsIncomingID(t *testing.T) {
	log, _ := test.NewNullLogger()
	r := newEngine(RequestLogger(log))

	req := httptest.NewRequest(http.MethodGet, "/items/1", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestMetrics(t *testing.T) {
	m := NewMetrics("mytradingview")
	r := newEngine(m.Handler())

	get(r, "/items/1", "10.0.0.1")
	get(r, "/items/2", "10.0.0.1")
	get(r, "/items/missing", "10.0.0.1")
	get(r, "/nowhere", "10.0.0.1")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.requestCount.WithLabelValues("/items/:id", "GET", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requestCount.WithLabelValues("/items/:id", "GET", "404")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requestCount.WithLabelValues("unmatched", "GET", "404")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.errorCount.WithLabelValues("NOT_FOUND")))

	w := httptest.NewRecorder()
	m.Exposition().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "mytradingview_http_requests_total"))
}
