package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/edustay/internal/app/models"
	"github.com/yigit/edustay/internal/config"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func testConfig(t *testing.T) *config.Config {
	cfg := &config.Config{}
	cfg.Server.Port = "8080"
	cfg.Server.Mode = "test"
	cfg.Server.StoragePath = t.TempDir()
	cfg.Server.MaxUploadMB = 1
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.AccessTokenExpiration = "1h"
	cfg.JWT.RefreshTokenExpiration = "24h"
	cfg.JWT.Issuer = "edustay-test"
	cfg.RateLimit.RequestsPerSecond = 100
	cfg.RateLimit.Burst = 100
	cfg.Scheduler.Enabled = true
	return cfg
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cfg := testConfig(t)
	pinger := &stubPinger{}
	deps, err := BuildDependencies(cfg, mock, pinger, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, deps.Scheduler)
	assert.Equal(t, 3, deps.Scheduler.Jobs())

	router := SetupRouter(cfg, deps, zerolog.Nop())

	for path, want := range map[string]int{
		"/ping":           http.StatusOK,
		"/api/v1/health":  http.StatusOK,
		"/metrics":        http.StatusOK,
		"/api/v1/auth/me": http.StatusUnauthorized,
		"/api/v1/ws":      http.StatusUnauthorized,
	} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, w.Code, path)
	}

	pinger.err = errors.New("connection refused")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouter_RoleGuards(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cfg := testConfig(t)
	deps, err := BuildDependencies(cfg, mock, nil, zerolog.Nop())
	require.NoError(t, err)
	router := SetupRouter(cfg, deps, zerolog.Nop())

	user := newTestUser()
	tokens, err := deps.JWTService.GenerateTokenPair(user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/instructor/stats", nil)
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/housing", nil)
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func newTestUser() *models.User {
	return &models.User{ID: 5, Name: "Student", Email: "student@example.com", RoleType: models.RoleStudent}
}
