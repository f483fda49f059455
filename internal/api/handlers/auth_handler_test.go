package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nginxforge/nginxforge/internal/api/middleware"
	"github.com/nginxforge/nginxforge/internal/config"
	"github.com/nginxforge/nginxforge/internal/database"
	"github.com/nginxforge/nginxforge/internal/services"
)

func setupAuthFixture(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	authService := services.NewAuthService(db, config.Config{JWTSecret: "test-secret"})
	handler := NewAuthHandler(authService, false)

	r := gin.New()
	r.POST("/auth/register", handler.Register)
	r.POST("/auth/login", handler.Login)
	r.POST("/auth/logout", handler.Logout)

	protected := r.Group("/")
	protected.Use(middleware.AuthMiddleware(authService))
	protected.GET("/auth/me", handler.Me)
	protected.POST("/auth/change-password", handler.ChangePassword)

	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_RegisterAndLogin(t *testing.T) {
	r := setupAuthFixture(t)

	w := doJSON(t, r, http.MethodPost, "/auth/register", gin.H{
		"email":    "admin@example.com",
		"password": "password123",
		"name":     "Admin",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"admin"`)
	assert.NotContains(t, w.Body.String(), "password123")

	w = doJSON(t, r, http.MethodPost, "/auth/login", gin.H{
		"email":    "admin@example.com",
		"password": "password123",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)

	// The session cookie rides along for browser clients.
	found := false
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == middleware.SessionCookieName {
			found = true
			assert.True(t, cookie.HttpOnly)
		}
	}
	assert.True(t, found)
}

func TestAuthHandler_Register_WeakPassword(t *testing.T) {
	r := setupAuthFixture(t)

	w := doJSON(t, r, http.MethodPost, "/auth/register", gin.H{
		"email":    "admin@example.com",
		"password": "short",
		"name":     "Admin",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Login_BadCredentials(t *testing.T) {
	r := setupAuthFixture(t)

	doJSON(t, r, http.MethodPost, "/auth/register", gin.H{
		"email":    "admin@example.com",
		"password": "password123",
		"name":     "Admin",
	}, nil)

	w := doJSON(t, r, http.MethodPost, "/auth/login", gin.H{
		"email":    "admin@example.com",
		"password": "wrong",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid credentials")
}

func TestAuthHandler_Me(t *testing.T) {
	r := setupAuthFixture(t)

	doJSON(t, r, http.MethodPost, "/auth/register", gin.H{
		"email":    "admin@example.com",
		"password": "password123",
		"name":     "Admin",
	}, nil)
	w := doJSON(t, r, http.MethodPost, "/auth/login", gin.H{
		"email":    "admin@example.com",
		"password": "password123",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	w = doJSON(t, r, http.MethodGet, "/auth/me", nil,
		map[string]string{"Authorization": "Bearer " + resp.Token})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admin@example.com")

	w = doJSON(t, r, http.MethodGet, "/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	r := setupAuthFixture(t)

	doJSON(t, r, http.MethodPost, "/auth/register", gin.H{
		"email":    "admin@example.com",
		"password": "password123",
		"name":     "Admin",
	}, nil)
	w := doJSON(t, r, http.MethodPost, "/auth/login", gin.H{
		"email":    "admin@example.com",
		"password": "password123",
	}, nil)
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	auth := map[string]string{"Authorization": "Bearer " + resp.Token}

	w = doJSON(t, r, http.MethodPost, "/auth/change-password", gin.H{
		"old_password": "wrong",
		"new_password": "newpassword1",
	}, auth)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPost, "/auth/change-password", gin.H{
		"old_password": "password123",
		"new_password": "newpassword1",
	}, auth)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/auth/login", gin.H{
		"email":    "admin@example.com",
		"password": "newpassword1",
	}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
