package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"cuotas/api/internal/authz"
	"cuotas/api/internal/config"
	"cuotas/api/internal/handlers"
	"cuotas/api/internal/middleware"
)

func TestServerRoutesAndFallbacks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.AppConfig{
		Environment:      "test",
		AllowCORSOrigins: []string{"*"},
		Security:         config.SecurityConfig{LoginRatePerSecond: 1, LoginBurst: 1},
	}
	gate := middleware.NewGatekeeper(authz.NewPipeline(nil, nil), zerolog.Nop(), false, nil)
	srv := NewHTTPServer(cfg, zerolog.Nop(), handlers.NewHandlerSet(zerolog.Nop(), cfg, handlers.Dependencies{Gate: gate}))

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"not_found"}`, w.Body.String())

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/healthz", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
