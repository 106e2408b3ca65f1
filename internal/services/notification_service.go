package services

import (
	"github.com/containrrr/shoutrrr"
	"gorm.io/gorm"

	"github.com/Adarsh-MG101/VerifyCert2/internal/logger"
	"github.com/Adarsh-MG101/VerifyCert2/internal/models"
)

// NotificationService stores in-app notifications and pushes copies to any
// configured external destinations.
type NotificationService struct {
	db   *gorm.DB
	urls []string
}

func NewNotificationService(db *gorm.DB, notifyURLs []string) *NotificationService {
	return &NotificationService{db: db, urls: notifyURLs}
}

func (s *NotificationService) Create(nType models.NotificationType, title, message string) (*models.Notification, error) {
	n := &models.Notification{Type: nType, Title: title, Message: message}
	if err := s.db.Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

func (s *NotificationService) List(unreadOnly bool) ([]models.Notification, error) {
	var items []models.Notification
	q := s.db.Order("created_at DESC").Limit(100)
	if unreadOnly {
		q = q.Where("read = ?", false)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *NotificationService) MarkAsRead(id string) error {
	result := s.db.Model(&models.Notification{}).Where("id = ?", id).Update("read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *NotificationService) MarkAllAsRead() error {
	return s.db.Model(&models.Notification{}).Where("read = ?", false).Update("read", true).Error
}

// Publish records an in-app notification and fans it out to external
// destinations without blocking the caller.
func (s *NotificationService) Publish(nType models.NotificationType, title, message string) {
	if _, err := s.Create(nType, title, message); err != nil {
		logger.Log().WithError(err).Error("failed to store notification")
	}
	for _, url := range s.urls {
		go func(u string) {
			if err := shoutrrr.Send(u, title+"\n\n"+message); err != nil {
				logger.Log().WithError(err).Warn("failed to send external notification")
			}
		}(url)
	}
}
