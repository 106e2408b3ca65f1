package models

import (
	"time"
)

type ActivityType string

const (
	ActivityLogin  ActivityType = "login"
	ActivityLogout ActivityType = "logout"
)

// Activity is a login/logout audit row.
type Activity struct {
	ID        uint         `json:"id" gorm:"primaryKey"`
	UserID    uint         `json:"user_id" gorm:"index"`
	IPAddress string       `json:"ip_address"`
	UserAgent string       `json:"user_agent"`
	Type      ActivityType `json:"type" gorm:"default:'login'"`
	EndedAt   *time.Time   `json:"ended_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
