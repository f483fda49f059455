package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nginxforge/nginxforge/internal/models"
	"github.com/nginxforge/nginxforge/internal/nginx"
)

func newTestSiteService(t *testing.T) *SiteService {
	db := setupServiceDB(t)
	manager := nginx.NewManager(db, t.TempDir())
	notifications := NewNotificationService(db, "")
	return NewSiteService(db, manager, notifications)
}

func TestSiteService_Create(t *testing.T) {
	svc := newTestSiteService(t)

	site, err := svc.Create("blog", nil)
	require.NoError(t, err)
	assert.Equal(t, "blog", site.Name)
	assert.NotEmpty(t, site.UUID)
	assert.True(t, site.Enabled)

	model, err := svc.Model(site)
	require.NoError(t, err)
	assert.Equal(t, nginx.DefaultConfig(), model)
}

func TestSiteService_Create_Invalid(t *testing.T) {
	svc := newTestSiteService(t)

	_, err := svc.Create("", nil)
	assert.Error(t, err)

	bad := nginx.DefaultConfig()
	bad.ListenPort = 0
	_, err = svc.Create("bad", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestSiteService_Create_DuplicateName(t *testing.T) {
	svc := newTestSiteService(t)

	_, err := svc.Create("blog", nil)
	require.NoError(t, err)
	_, err = svc.Create("blog", nil)
	assert.Error(t, err)
}

func TestSiteService_UpdateModel(t *testing.T) {
	svc := newTestSiteService(t)
	site, err := svc.Create("blog", nil)
	require.NoError(t, err)

	model := nginx.DefaultConfig()
	model.ServerNames = []string{"blog.example.com"}
	updated, err := svc.UpdateModel(site.ID, model)
	require.NoError(t, err)

	got, err := svc.Model(updated)
	require.NoError(t, err)
	assert.Equal(t, []string{"blog.example.com"}, got.ServerNames)
}

func TestSiteService_List_SortedByName(t *testing.T) {
	svc := newTestSiteService(t)
	for _, name := range []string{"zulu", "alpha", "mike"} {
		_, err := svc.Create(name, nil)
		require.NoError(t, err)
	}

	sites, err := svc.List()
	require.NoError(t, err)
	require.Len(t, sites, 3)
	assert.Equal(t, "alpha", sites[0].Name)
	assert.Equal(t, "zulu", sites[2].Name)
}

func TestSiteService_Delete(t *testing.T) {
	svc := newTestSiteService(t)
	site, err := svc.Create("blog", nil)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(site.ID))
	_, err = svc.Get(site.ID)
	assert.Error(t, err)
}

func TestSiteService_Generate(t *testing.T) {
	svc := newTestSiteService(t)
	site, err := svc.Create("blog", nil)
	require.NoError(t, err)

	res, err := svc.Generate(site)
	require.NoError(t, err)
	assert.Contains(t, res.Text, "listen 80;")
}

func TestSiteService_Lint_PersistsScoreAndAudit(t *testing.T) {
	svc := newTestSiteService(t)
	site, err := svc.Create("blog", nil)
	require.NoError(t, err)

	report, err := svc.Lint(site)
	require.NoError(t, err)
	assert.True(t, report.Valid)

	fresh, err := svc.Get(site.ID)
	require.NoError(t, err)
	assert.Equal(t, report.Score, fresh.LastScore)

	var audits []models.LintAudit
	require.NoError(t, svc.db.Where("site_id = ?", site.ID).Find(&audits).Error)
	require.Len(t, audits, 1)
	assert.Equal(t, report.Score, audits[0].Score)
	assert.Equal(t, 0, audits[0].ErrorCount)
}

func TestSiteService_ApplyFix(t *testing.T) {
	svc := newTestSiteService(t)

	model := nginx.DefaultConfig()
	model.Security.HideVersion = false
	site, err := svc.Create("blog", model)
	require.NoError(t, err)

	res, err := svc.ApplyFix(site, "security-server-tokens")
	require.NoError(t, err)
	assert.True(t, res.Applied)

	got, err := svc.Model(site)
	require.NoError(t, err)
	assert.True(t, got.Security.HideVersion)
}

func TestSiteService_ApplyFix_UnknownRule(t *testing.T) {
	svc := newTestSiteService(t)
	site, err := svc.Create("blog", nil)
	require.NoError(t, err)

	_, err = svc.ApplyFix(site, "no-such-rule")
	assert.Error(t, err)
}

func TestSiteService_ApplyAllFixes(t *testing.T) {
	svc := newTestSiteService(t)

	model := nginx.DefaultConfig()
	model.Security.HideVersion = false
	model.Performance.Gzip = false
	site, err := svc.Create("blog", model)
	require.NoError(t, err)

	before, err := svc.Lint(site)
	require.NoError(t, err)

	res, err := svc.ApplyAllFixes(site)
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Contains(t, res.AppliedRuleIDs, "security-server-tokens")

	after, err := svc.Lint(site)
	require.NoError(t, err)
	assert.Greater(t, after.Score, before.Score)

	got, err := svc.Model(site)
	require.NoError(t, err)
	assert.True(t, got.Security.HideVersion)
	assert.True(t, got.Performance.Gzip)
}

func TestSiteService_Deploy(t *testing.T) {
	svc := newTestSiteService(t)
	site, err := svc.Create("blog", nil)
	require.NoError(t, err)

	hash, err := svc.Deploy(site)
	require.NoError(t, err)
	assert.Len(t, hash, 64)

	// Deploys leave a notification behind.
	notes, err := svc.notifications.List(false)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationTypeSuccess, notes[0].Type)
}

func TestSiteService_Deploy_LintErrors(t *testing.T) {
	svc := newTestSiteService(t)

	model := nginx.DefaultConfig()
	model.SSL.Enabled = true // no certificate paths
	site, err := svc.Create("broken", model)
	require.NoError(t, err)

	_, err = svc.Deploy(site)
	require.Error(t, err)

	notes, listErr := svc.notifications.List(false)
	require.NoError(t, listErr)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationTypeError, notes[0].Type)
}
