package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nginxforge/nginxforge/internal/config"
)

func newTestServer(t *testing.T) *Server {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	srv, err := New(db, config.Config{
		Environment:    "test",
		JWTSecret:      "test-secret",
		NginxConfigDir: t.TempDir(),
	})
	require.NoError(t, err)
	return srv
}

func TestServer_HealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	srv.Engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestServer_UnknownRoute(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	w := httptest.NewRecorder()
	srv.Engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "route not found")
}

func TestServer_ServicesWired(t *testing.T) {
	srv := newTestServer(t)
	require.NotNil(t, srv.Services)
	assert.NotNil(t, srv.Services.Sites)
	assert.NotNil(t, srv.Services.Notifications)
	assert.NotNil(t, srv.Services.Auth)
}
