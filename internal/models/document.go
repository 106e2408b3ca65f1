package models

import (
	"time"
)

// DataMap is stored as a JSON object column. Values are strings for regular
// fields and small descriptor objects for embedded images.
type DataMap map[string]interface{}

// Document is a generated certificate. Immutable after creation; UniqueID is
// the public verification key and is matched case-insensitively.
type Document struct {
	ID       uint    `json:"id" gorm:"primaryKey"`
	UniqueID string  `json:"unique_id" gorm:"uniqueIndex"`
	Data     DataMap `json:"data" gorm:"serializer:json"`
	FilePath string  `json:"file_path"`

	// TemplateID may dangle after the source template is deleted; generated
	// documents are never cascaded.
	TemplateID     uint `json:"template_id" gorm:"index"`
	OrganizationID uint `json:"organization_id" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
}
