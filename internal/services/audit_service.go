package services

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nginxforge/nginxforge/internal/logger"
	"github.com/nginxforge/nginxforge/internal/models"
)

// Test hook for audit timestamps.
var timeNow = time.Now

// scoreAlertThreshold is the health score below which the scheduled sweep
// raises a warning notification.
const scoreAlertThreshold = 60

// AuditService runs scheduled lint sweeps over every site.
type AuditService struct {
	sites         *SiteService
	notifications *NotificationService
	schedule      string
	cron          *cron.Cron
}

func NewAuditService(sites *SiteService, notifications *NotificationService, schedule string) *AuditService {
	return &AuditService{
		sites:         sites,
		notifications: notifications,
		schedule:      schedule,
		cron:          cron.New(),
	}
}

// Start schedules the sweep and starts the cron runner.
func (s *AuditService) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.RunSweep); err != nil {
		return fmt.Errorf("schedule audit sweep: %w", err)
	}
	s.cron.Start()
	logger.WithFields(map[string]interface{}{"schedule": s.schedule}).Info("Audit sweep scheduled")
	return nil
}

// Stop halts the cron runner and waits for a running sweep to finish.
func (s *AuditService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RunSweep lints every enabled site and raises notifications for sites in
// bad shape.
func (s *AuditService) RunSweep() {
	sites, err := s.sites.List()
	if err != nil {
		logger.Log().WithError(err).Error("Audit sweep: failed to list sites")
		return
	}

	for i := range sites {
		site := &sites[i]
		if !site.Enabled {
			continue
		}

		report, err := s.sites.Lint(site)
		if err != nil {
			logger.WithFields(map[string]interface{}{"site": site.Name}).
				WithError(err).Error("Audit sweep: lint failed")
			continue
		}

		if !report.Valid {
			s.notifications.Notify(models.NotificationTypeError, "Configuration errors found",
				fmt.Sprintf("Site %s has error-severity lint findings (score %d)", site.Name, report.Score))
		} else if report.Score < scoreAlertThreshold {
			s.notifications.Notify(models.NotificationTypeWarning, "Low health score",
				fmt.Sprintf("Site %s scored %d in the scheduled audit", site.Name, report.Score))
		}
	}

	logger.WithFields(map[string]interface{}{"sites": len(sites)}).Info("Audit sweep finished")
}
