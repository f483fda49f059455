package services

import (
	"fmt"
	"regexp"

	"github.com/containrrr/shoutrrr"
	"gorm.io/gorm"

	"github.com/nginxforge/nginxforge/internal/logger"
	"github.com/nginxforge/nginxforge/internal/models"
)

// NotificationService stores in-app notifications and optionally forwards
// them to an external channel via a shoutrrr URL.
type NotificationService struct {
	DB          *gorm.DB
	externalURL string
}

func NewNotificationService(db *gorm.DB, externalURL string) *NotificationService {
	return &NotificationService{DB: db, externalURL: externalURL}
}

var discordWebhookRegex = regexp.MustCompile(`^https://discord(?:app)?\.com/api/webhooks/(\d+)/([a-zA-Z0-9_-]+)`)

// normalizeURL rewrites plain Discord webhook URLs into shoutrrr's scheme.
func normalizeURL(rawURL string) string {
	matches := discordWebhookRegex.FindStringSubmatch(rawURL)
	if len(matches) == 3 {
		return fmt.Sprintf("discord://%s@%s", matches[2], matches[1])
	}
	return rawURL
}

// Notify records a notification and forwards it externally when configured.
func (s *NotificationService) Notify(nType models.NotificationType, title, message string) {
	if _, err := s.Create(nType, title, message); err != nil {
		logger.Log().WithError(err).Warn("Failed to store notification")
	}
	s.sendExternal(title, message)
}

func (s *NotificationService) Create(nType models.NotificationType, title, message string) (*models.Notification, error) {
	notification := &models.Notification{
		Type:    nType,
		Title:   title,
		Message: message,
		Read:    false,
	}
	result := s.DB.Create(notification)
	return notification, result.Error
}

func (s *NotificationService) List(unreadOnly bool) ([]models.Notification, error) {
	var notifications []models.Notification
	query := s.DB.Order("created_at desc")
	if unreadOnly {
		query = query.Where("read = ?", false)
	}
	result := query.Find(&notifications)
	return notifications, result.Error
}

func (s *NotificationService) MarkAsRead(id string) error {
	return s.DB.Model(&models.Notification{}).Where("id = ?", id).Update("read", true).Error
}

func (s *NotificationService) MarkAllAsRead() error {
	return s.DB.Model(&models.Notification{}).Where("read = ?", false).Update("read", true).Error
}

func (s *NotificationService) sendExternal(title, message string) {
	if s.externalURL == "" {
		return
	}
	url := normalizeURL(s.externalURL)
	go func() {
		msg := fmt.Sprintf("%s\n\n%s", title, message)
		if err := shoutrrr.Send(url, msg); err != nil {
			logger.Log().WithError(err).Warn("Failed to send external notification")
		}
	}()
}
