package models

import (
	"time"
)

// Setting is a key/value configuration row. SMTP delivery settings live here
// under the "smtp" category.
type Setting struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Key      string `json:"key" gorm:"uniqueIndex"`
	Value    string `json:"value"`
	Type     string `json:"type" gorm:"default:'string'"`
	Category string `json:"category" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
