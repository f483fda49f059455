package models

import "time"

// LintAudit is one recorded lint run against a site, either user-invoked or
// from the scheduled sweep.
type LintAudit struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	SiteID       uint      `json:"site_id" gorm:"index"`
	Score        int       `json:"score"`
	ErrorCount   int       `json:"error_count"`
	WarningCount int       `json:"warning_count"`
	InfoCount    int       `json:"info_count"`
	RanAt        time.Time `json:"ran_at"`
}
