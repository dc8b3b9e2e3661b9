package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/webforge-app/webforge-backend/config"
	apimw "github.com/webforge-app/webforge-backend/internal/api/http/middleware"
	"github.com/webforge-app/webforge-backend/internal/auth"
	"github.com/webforge-app/webforge-backend/internal/content/service"
)

func setupRouter(t *testing.T, limiter *apimw.RateLimiter) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := &config.Config{
		Store: config.StoreConfig{Driver: config.StoreDriverRedis},
		Redis: config.RedisConfig{Addr: mr.Addr()},
	}
	store, err := OpenStore(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	reg := prometheus.NewRegistry()
	svc := service.New(store, service.Options{Metrics: service.NewMetrics(reg)})

	return BuildRouter(RouterDeps{
		ServiceName:    "webforge-backend",
		Version:        "test",
		StoreDriver:    cfg.Store.Driver,
		AllowedOrigins: []string{"http://localhost:3000"},
		Store:          store,
		Service:        svc,
		Gate:           auth.NewHeaderGate(),
		RateLimiter:    limiter,
		Registry:       reg,
		Logger:         zap.NewNop(),
	})
}

func TestBuildRouter(t *testing.T) {
	r := setupRouter(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"store":"up"`)
	assert.NotEmpty(t, w.Header().Get(apimw.HeaderRequestID))

	req := httptest.NewRequest(http.MethodPost, "/api/projects", strings.NewReader(`{"name":"Landing"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(auth.HeaderUserID, "alice")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/projects", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Landing"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `webforge_content_operations_total{entity="project",operation="create",result="ok"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	r := setupRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/projects", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestWriteRateLimit(t *testing.T) {
	r := setupRouter(t, apimw.NewRateLimiter(0.001, 1))

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/projects", strings.NewReader(`{"name":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(auth.HeaderUserID, "alice")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusCreated, send())
	assert.Equal(t, http.StatusTooManyRequests, send())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/projects", nil))
	assert.Equal(t, http.StatusOK, w.Code, "reads are not throttled")
}

func TestNewSessionGate(t *testing.T) {
	ctx := context.Background()

	g, err := NewSessionGate(ctx, config.AuthConfig{Mode: config.AuthModeHeader})
	require.NoError(t, err)
	assert.IsType(t, auth.HeaderGate{}, g)

	g, err = NewSessionGate(ctx, config.AuthConfig{Mode: config.AuthModeJWT, JWTSecret: "s"})
	require.NoError(t, err)
	assert.IsType(t, &auth.JWTGate{}, g)

	_, err = NewSessionGate(ctx, config.AuthConfig{Mode: config.AuthModeFirebase})
	assert.Error(t, err)

	_, err = NewSessionGate(ctx, config.AuthConfig{Mode: "saml"})
	assert.Error(t, err)
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	_, err := OpenStore(context.Background(), &config.Config{Store: config.StoreConfig{Driver: "mongo"}}, zap.NewNop())
	assert.Error(t, err)
}
