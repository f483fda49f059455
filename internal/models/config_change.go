package models

import "time"

// ConfigChange is one audit record of a rendered configuration reaching
// disk, successful or not. The hash identifies the exact generated text.
type ConfigChange struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	SiteID     uint      `json:"site_id" gorm:"index"`
	ConfigHash string    `json:"config_hash"`
	AppliedAt  time.Time `json:"applied_at"`
	Success    bool      `json:"success"`
	ErrorMsg   string    `json:"error_msg,omitempty"`
}
