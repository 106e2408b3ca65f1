package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/Adarsh-MG101/VerifyCert2/internal/models"
)

// ActivityService records login/logout events for the audit view.
type ActivityService struct {
	db *gorm.DB
}

func NewActivityService(db *gorm.DB) *ActivityService {
	return &ActivityService{db: db}
}

func (s *ActivityService) RecordLogin(userID uint, ip, userAgent string) error {
	return s.db.Create(&models.Activity{
		UserID:    userID,
		IPAddress: ip,
		UserAgent: userAgent,
		Type:      models.ActivityLogin,
	}).Error
}

// RecordLogout closes the user's most recent open session and stores a
// logout event.
func (s *ActivityService) RecordLogout(userID uint, ip, userAgent string) error {
	now := time.Now()
	s.db.Model(&models.Activity{}).
		Where("user_id = ? AND type = ? AND ended_at IS NULL", userID, models.ActivityLogin).
		Order("created_at DESC").Limit(1).
		Update("ended_at", now)

	return s.db.Create(&models.Activity{
		UserID:    userID,
		IPAddress: ip,
		UserAgent: userAgent,
		Type:      models.ActivityLogout,
		EndedAt:   &now,
	}).Error
}

func (s *ActivityService) List(limit int) ([]models.Activity, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var items []models.Activity
	if err := s.db.Order("created_at DESC").Limit(limit).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
