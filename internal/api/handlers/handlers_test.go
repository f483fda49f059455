package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nginxforge/nginxforge/internal/database"
	"github.com/nginxforge/nginxforge/internal/nginx"
	"github.com/nginxforge/nginxforge/internal/services"
)

type handlerFixture struct {
	db            *gorm.DB
	sites         *services.SiteService
	notifications *services.NotificationService
	router        *gin.Engine
}

func setupFixture(t *testing.T) *handlerFixture {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	manager := nginx.NewManager(db, t.TempDir())
	notifications := services.NewNotificationService(db, "")
	sites := services.NewSiteService(db, manager, notifications)

	f := &handlerFixture{
		db:            db,
		sites:         sites,
		notifications: notifications,
		router:        gin.New(),
	}

	siteHandler := NewSiteHandler(sites)
	importHandler := NewImportHandler(sites)
	notificationHandler := NewNotificationHandler(notifications)
	settingsHandler := NewSettingsHandler(db)

	r := f.router
	r.GET("/health", HealthHandler)
	r.GET("/rules", ListRules)
	r.GET("/sites", siteHandler.List)
	r.POST("/sites", siteHandler.Create)
	r.GET("/sites/:id", siteHandler.Get)
	r.PUT("/sites/:id", siteHandler.Update)
	r.PATCH("/sites/:id", siteHandler.Patch)
	r.DELETE("/sites/:id", siteHandler.Delete)
	r.GET("/sites/:id/generate", siteHandler.Generate)
	r.POST("/sites/:id/lint", siteHandler.Lint)
	r.GET("/sites/:id/lint/history", siteHandler.LintHistory)
	r.POST("/sites/:id/fix/:ruleId", siteHandler.ApplyFix)
	r.POST("/sites/:id/fix-all", siteHandler.ApplyAllFixes)
	r.POST("/sites/:id/deploy", siteHandler.Deploy)
	r.POST("/sites/:id/rollback", siteHandler.Rollback)
	r.POST("/import/preview", importHandler.Preview)
	r.POST("/import", importHandler.Commit)
	r.GET("/notifications", notificationHandler.List)
	r.POST("/notifications/:id/read", notificationHandler.MarkAsRead)
	r.POST("/notifications/read-all", notificationHandler.MarkAllAsRead)
	r.GET("/settings", settingsHandler.List)
	r.GET("/settings/:key", settingsHandler.Get)
	r.PUT("/settings/:key", settingsHandler.Update)

	return f
}

func (f *handlerFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}
