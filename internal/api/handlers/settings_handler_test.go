package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nginxforge/nginxforge/internal/models"
)

func TestSettingsHandler_UpsertAndGet(t *testing.T) {
	f := setupFixture(t)

	w := f.do(t, http.MethodPut, "/settings/notifications.shoutrrr_url", gin.H{"value": "discord://token@123"})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/settings/notifications.shoutrrr_url", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var setting models.Setting
	decodeJSON(t, w, &setting)
	assert.Equal(t, "discord://token@123", setting.Value)

	// Updating an existing key overwrites the value.
	w = f.do(t, http.MethodPut, "/settings/notifications.shoutrrr_url", gin.H{"value": "discord://token@456"})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var settings []models.Setting
	decodeJSON(t, w, &settings)
	require.Len(t, settings, 1)
	assert.Equal(t, "discord://token@456", settings[0].Value)
}

func TestSettingsHandler_Get_NotFound(t *testing.T) {
	f := setupFixture(t)
	w := f.do(t, http.MethodGet, "/settings/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
