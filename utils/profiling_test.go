package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSetupProfilerEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("http mode requires the bearer token", func(t *testing.T) {
		r := gin.New()
		SetupProfilerEndpoints(context.Background(), r, ProfilingConfig{Mode: "http", Token: "secret"})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/pprof/heap", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/debug/pprof/heap", nil)
		req.Header.Set("Authorization", "Bearer secret")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("no token, no endpoints", func(t *testing.T) {
		r := gin.New()
		SetupProfilerEndpoints(context.Background(), r, ProfilingConfig{Mode: "http"})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/pprof/heap", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
