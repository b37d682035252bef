package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

type recordingMetrics struct {
	timedAPIs []string
	errors    []string
}

func (m *recordingMetrics) ApiResponseTimer(api string) *prometheus.Timer {
	m.timedAPIs = append(m.timedAPIs, api)
	return prometheus.NewTimer(nil)
}

func (m *recordingMetrics) ApiErrorInc(method, api string, status int) {
	m.errors = append(m.errors, method+" "+api)
}

func TestObserveTimesEveryRequestAndCountsErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	metrics := &recordingMetrics{}
	engine := gin.New()
	engine.Use(Observe(metrics))
	engine.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/boom"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		engine.ServeHTTP(w, req)
	}

	assert.Equal(t, []string{"/ok", "/boom"}, metrics.timedAPIs)
	assert.Equal(t, []string{"GET /boom"}, metrics.errors)
}
