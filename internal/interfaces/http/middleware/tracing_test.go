package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestTracing_DisabledPassesThrough(t *testing.T) {
	engine := gin.New()
	engine.Use(TracingWithConfig(TracingConfig{Enabled: false}))
	engine.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTracing_EnabledDoesNotBreakRequests(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID())
	engine.Use(Tracing())
	engine.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTracingRequestID_TruncatesOversizedHeader(t *testing.T) {
	engine := gin.New()
	var got string
	engine.GET("/ping", func(c *gin.Context) {
		got = tracingRequestID(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("a", MaxRequestIDLength+40))
	engine.ServeHTTP(httptest.NewRecorder(), req)

	assert.Len(t, got, MaxRequestIDLength)
}
