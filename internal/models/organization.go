package models

import (
	"time"
)

// Organization is the tenant boundary. Templates and documents always belong
// to exactly one organization.
type Organization struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
