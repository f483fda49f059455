package services

import (
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/nginxforge/nginxforge/internal/logger"
	"github.com/nginxforge/nginxforge/internal/metrics"
	"github.com/nginxforge/nginxforge/internal/models"
	"github.com/nginxforge/nginxforge/internal/nginx"
)

// SiteService owns site lifecycle and everything derived from a site's
// configuration model: generation, linting, fixes and deploys.
type SiteService struct {
	db            *gorm.DB
	manager       *nginx.Manager
	notifications *NotificationService
}

func NewSiteService(db *gorm.DB, manager *nginx.Manager, notifications *NotificationService) *SiteService {
	return &SiteService{db: db, manager: manager, notifications: notifications}
}

func (s *SiteService) List() ([]models.Site, error) {
	var sites []models.Site
	if err := s.db.Order("name asc").Find(&sites).Error; err != nil {
		return nil, err
	}
	return sites, nil
}

func (s *SiteService) Get(id uint) (*models.Site, error) {
	var site models.Site
	if err := s.db.First(&site, id).Error; err != nil {
		return nil, err
	}
	return &site, nil
}

// Create validates and stores a new site. A nil model starts the site from
// defaults.
func (s *SiteService) Create(name string, model *nginx.ServerConfig) (*models.Site, error) {
	if name == "" {
		return nil, fmt.Errorf("site name is required")
	}
	if model == nil {
		model = nginx.DefaultConfig()
	}
	if err := checkModel(model); err != nil {
		return nil, err
	}

	site := &models.Site{Name: name, Enabled: true}
	if err := setModel(site, model); err != nil {
		return nil, err
	}
	if err := s.db.Create(site).Error; err != nil {
		return nil, err
	}
	return site, nil
}

// UpdateModel replaces a site's configuration model.
func (s *SiteService) UpdateModel(id uint, model *nginx.ServerConfig) (*models.Site, error) {
	if err := checkModel(model); err != nil {
		return nil, err
	}

	site, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := setModel(site, model); err != nil {
		return nil, err
	}
	if err := s.db.Save(site).Error; err != nil {
		return nil, err
	}
	return site, nil
}

func (s *SiteService) Delete(id uint) error {
	site, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := s.manager.Remove(site.UUID); err != nil {
		logger.WithFields(map[string]interface{}{"site": site.Name}).
			WithError(err).Warn("Failed to remove rendered config")
	}
	return s.db.Delete(site).Error
}

// Model decodes the site's stored configuration.
func (s *SiteService) Model(site *models.Site) (*nginx.ServerConfig, error) {
	model := &nginx.ServerConfig{}
	if err := json.Unmarshal([]byte(site.Config), model); err != nil {
		return nil, fmt.Errorf("decode site config: %w", err)
	}
	return model, nil
}

// Generate renders the site's configuration text.
func (s *SiteService) Generate(site *models.Site) (nginx.GenerateResult, error) {
	model, err := s.Model(site)
	if err != nil {
		return nginx.GenerateResult{}, err
	}
	metrics.IncGenerate()
	return nginx.Generate(model), nil
}

// Lint audits the site's model, persists the result and updates metrics.
func (s *SiteService) Lint(site *models.Site) (*nginx.Report, error) {
	model, err := s.Model(site)
	if err != nil {
		return nil, err
	}

	report := nginx.Lint(model)
	metrics.IncLintRun()
	metrics.SetSiteHealthScore(site.Name, report.Score)

	site.LastScore = report.Score
	if err := s.db.Model(site).Update("last_score", report.Score).Error; err != nil {
		logger.Log().WithError(err).Warn("Failed to persist lint score")
	}

	audit := auditFromReport(site.ID, report)
	if err := s.db.Create(audit).Error; err != nil {
		logger.Log().WithError(err).Warn("Failed to persist lint audit")
	}

	return report, nil
}

// ApplyFix applies a single lint rule's fix and persists the fixed model.
func (s *SiteService) ApplyFix(site *models.Site, ruleID string) (*nginx.FixResult, error) {
	model, err := s.Model(site)
	if err != nil {
		return nil, err
	}

	res, err := nginx.ApplyFix(model, ruleID)
	if err != nil {
		return nil, err
	}
	if res.Applied {
		metrics.AddFixesApplied(1)
		if err := setModel(site, res.Model); err != nil {
			return nil, err
		}
		if err := s.db.Save(site).Error; err != nil {
			return nil, err
		}
	}
	return res, nil
}

// ApplyAllFixes repairs everything fixable and persists the result.
func (s *SiteService) ApplyAllFixes(site *models.Site) (*nginx.FixAllResult, error) {
	model, err := s.Model(site)
	if err != nil {
		return nil, err
	}

	res := nginx.ApplyAllFixes(model)
	if res.Applied {
		metrics.AddFixesApplied(len(res.AppliedRuleIDs))
		if err := setModel(site, res.Model); err != nil {
			return nil, err
		}
		if err := s.db.Save(site).Error; err != nil {
			return nil, err
		}
	}
	return res, nil
}

// ApplyPatch merges a partial update into the site's model and persists it.
func (s *SiteService) ApplyPatch(site *models.Site, patch *nginx.Patch) (*nginx.ServerConfig, error) {
	model, err := s.Model(site)
	if err != nil {
		return nil, err
	}

	patch.Apply(model)
	if err := checkModel(model); err != nil {
		return nil, err
	}
	if err := setModel(site, model); err != nil {
		return nil, err
	}
	if err := s.db.Save(site).Error; err != nil {
		return nil, err
	}
	return model, nil
}

// Rollback restores the most recent deployed snapshot of the site.
func (s *SiteService) Rollback(site *models.Site) error {
	return s.manager.Rollback(site.UUID)
}

// LintHistory returns past audit results for the site, newest first.
func (s *SiteService) LintHistory(site *models.Site, limit int) ([]models.LintAudit, error) {
	if limit <= 0 {
		limit = 50
	}
	var audits []models.LintAudit
	err := s.db.Where("site_id = ?", site.ID).
		Order("ran_at desc").Limit(limit).Find(&audits).Error
	return audits, err
}

// Deploy renders the site to disk through the manager.
func (s *SiteService) Deploy(site *models.Site) (string, error) {
	model, err := s.Model(site)
	if err != nil {
		return "", err
	}

	hash, err := s.manager.Deploy(site.ID, site.UUID, model)
	if err != nil {
		metrics.IncDeploy("failure")
		s.notifications.Notify(models.NotificationTypeError, "Deploy failed",
			fmt.Sprintf("Site %s: %v", site.Name, err))
		return "", err
	}

	metrics.IncDeploy("success")
	s.notifications.Notify(models.NotificationTypeSuccess, "Site deployed",
		fmt.Sprintf("Site %s rendered to %s", site.Name, s.manager.SitePath(site.UUID)))
	return hash, nil
}

// checkModel enforces the structural invariants that must hold before a
// model is accepted for storage. Everything softer is the validator's and
// lint engine's business.
func checkModel(model *nginx.ServerConfig) error {
	if model == nil {
		return fmt.Errorf("configuration model is required")
	}
	if model.ListenPort < 1 || model.ListenPort > 65535 {
		return fmt.Errorf("listen port %d is out of range", model.ListenPort)
	}
	return nil
}

func setModel(site *models.Site, model *nginx.ServerConfig) error {
	data, err := json.Marshal(model)
	if err != nil {
		return fmt.Errorf("encode site config: %w", err)
	}
	site.Config = string(data)
	return nil
}

func auditFromReport(siteID uint, report *nginx.Report) *models.LintAudit {
	audit := &models.LintAudit{SiteID: siteID, Score: report.Score, RanAt: timeNow()}
	for _, f := range report.Findings {
		switch f.Severity {
		case nginx.SeverityError:
			audit.ErrorCount++
		case nginx.SeverityWarning:
			audit.WarningCount++
		default:
			audit.InfoCount++
		}
	}
	return audit
}
