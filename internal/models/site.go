package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Site is one managed nginx server configuration. Config holds the
// structured model serialized as JSON; the nginx package owns its schema.
type Site struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	UUID      string `json:"uuid" gorm:"uniqueIndex"`
	Name      string `json:"name" gorm:"uniqueIndex"`
	Config    string `json:"config"`
	Enabled   bool   `json:"enabled" gorm:"default:true"`
	LastScore int    `json:"last_score" gorm:"default:-1"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Site) BeforeCreate(tx *gorm.DB) (err error) {
	if s.UUID == "" {
		s.UUID = uuid.New().String()
	}
	return
}
