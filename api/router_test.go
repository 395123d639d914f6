package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCorsOption(t *testing.T) {
	t.Run("keeps scheme and host of valid origins", func(t *testing.T) {
		conf := Configuration{
			Env:            "production",
			AllowedOrigins: []string{"https://lab.example.com/dashboard", "lab.example.com", "://broken"},
		}

		option := corsOption(context.Background(), conf)

		assert.Equal(t, []string{"https://lab.example.com"}, option.AllowOrigins)
		assert.Contains(t, option.AllowHeaders, ownerIdHeader)
	})

	t.Run("development allows localhost", func(t *testing.T) {
		option := corsOption(context.Background(), Configuration{Env: "development"})

		assert.Contains(t, option.AllowOrigins, "http://localhost:3000")
	})
}

func TestStoreOwnerIdMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(storeOwnerIdMiddleware)
	r.GET("/owner", func(c *gin.Context) {
		c.String(http.StatusOK, ownerIdFromRequest(c))
	})

	t.Run("with header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/owner", nil)
		req.Header.Set(ownerIdHeader, "user-42")
		r.ServeHTTP(w, req)

		assert.Equal(t, "user-42", w.Body.String())
	})

	t.Run("without header", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/owner", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())
	})
}
