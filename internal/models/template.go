package models

import (
	"time"
)

// StringList is stored as a JSON array column.
type StringList []string

// Template is an uploaded DOCX with `{{TAG}}` placeholders. Placeholders
// holds the canonical uppercase tags found at upload/refresh time, with
// reserved system tags (ID, QR and variants) already excluded.
type Template struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	Name          string     `json:"name" gorm:"uniqueIndex:idx_templates_org_name"`
	FilePath      string     `json:"file_path"`
	ThumbnailPath string     `json:"thumbnail_path,omitempty"`
	Placeholders  StringList `json:"placeholders" gorm:"serializer:json"`
	Enabled       bool       `json:"enabled" gorm:"default:true"`

	OrganizationID uint `json:"organization_id" gorm:"uniqueIndex:idx_templates_org_name;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
