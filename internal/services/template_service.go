package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Adarsh-MG101/VerifyCert2/internal/config"
	"github.com/Adarsh-MG101/VerifyCert2/internal/convert"
	"github.com/Adarsh-MG101/VerifyCert2/internal/docx"
	"github.com/Adarsh-MG101/VerifyCert2/internal/logger"
	"github.com/Adarsh-MG101/VerifyCert2/internal/models"
)

// TemplateService manages uploaded certificate templates.
type TemplateService struct {
	db       *gorm.DB
	cfg      config.Config
	pipeline *convert.Pipeline
	notifier *NotificationService
}

func NewTemplateService(db *gorm.DB, cfg config.Config, pipeline *convert.Pipeline, notifier *NotificationService) *TemplateService {
	return &TemplateService{db: db, cfg: cfg, pipeline: pipeline, notifier: notifier}
}

// TemplateWithCount decorates a template with its generated-document count.
type TemplateWithCount struct {
	models.Template
	DocumentCount int64 `json:"document_count"`
}

// Upload registers a saved DOCX file as a template: scans its placeholders,
// rejects empty or duplicate templates and renders the preview thumbnail. On
// any failure the saved file is removed.
func (s *TemplateService) Upload(ctx context.Context, orgID uint, name, filePath string) (*models.Template, error) {
	name = strings.TrimSpace(name)
	if strings.EqualFold(filepath.Ext(name), ".docx") {
		name = name[:len(name)-len(filepath.Ext(name))]
	}
	if name == "" {
		return nil, s.rejectUpload(filePath, Validationf("template name is required"))
	}

	var existing models.Template
	err := s.db.Where("name = ? AND organization_id = ?", name, orgID).First(&existing).Error
	if err == nil {
		return nil, s.rejectUpload(filePath, Validationf("a template named %q already exists", name))
	}
	if err != gorm.ErrRecordNotFound {
		return nil, s.rejectUpload(filePath, err)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, s.rejectUpload(filePath, fmt.Errorf("read uploaded template: %w", err))
	}

	scan, err := docx.Scan(data)
	if err != nil {
		return nil, s.rejectUpload(filePath, Validationf("the uploaded file is not a valid DOCX document"))
	}
	if len(scan.Placeholders) == 0 {
		return nil, s.rejectUpload(filePath, Validationf("invalid template: add at least one placeholder like {{name}}"))
	}

	thumbPath := filepath.Join(s.cfg.UploadsDir, fmt.Sprintf("%d-preview.png", time.Now().UnixMilli()))
	if err := s.pipeline.RenderThumbnail(ctx, filePath, thumbPath); err != nil {
		logger.Log().WithError(err).Warn("thumbnail rendering failed, storing template without preview")
		thumbPath = ""
	}

	tpl := &models.Template{
		Name:           name,
		FilePath:       filepath.ToSlash(filePath),
		ThumbnailPath:  filepath.ToSlash(thumbPath),
		Placeholders:   scan.Placeholders,
		Enabled:        true,
		OrganizationID: orgID,
	}
	if err := s.db.Create(tpl).Error; err != nil {
		os.Remove(thumbPath)
		return nil, s.rejectUpload(filePath, fmt.Errorf("store template: %w", err))
	}

	s.notifier.Publish(models.NotificationTypeSuccess, "Template uploaded",
		fmt.Sprintf("Template %q is ready with %d placeholder(s)", name, len(scan.Placeholders)))
	return tpl, nil
}

func (s *TemplateService) rejectUpload(filePath string, err error) error {
	if filePath != "" {
		os.Remove(filePath)
	}
	return err
}

// List returns templates with document counts, scoped and filtered.
func (s *TemplateService) List(scope Scope, search string, onlyEnabled bool) ([]TemplateWithCount, error) {
	q := scope.apply(s.db.Model(&models.Template{})).
		Select("templates.*, (SELECT COUNT(*) FROM documents WHERE documents.template_id = templates.id) AS document_count").
		Order("templates.created_at DESC")
	if search != "" {
		q = q.Where("templates.name LIKE ?", "%"+search+"%")
	}
	if onlyEnabled {
		q = q.Where("templates.enabled = ?", true)
	}

	var items []TemplateWithCount
	if err := q.Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Get loads one template within scope.
func (s *TemplateService) Get(scope Scope, id uint) (*models.Template, error) {
	var tpl models.Template
	if err := scope.apply(s.db).First(&tpl, id).Error; err != nil {
		return nil, err
	}
	return &tpl, nil
}

// Rename changes a template's display name, enforcing per-organization
// uniqueness.
func (s *TemplateService) Rename(scope Scope, id uint, name string) (*models.Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, Validationf("template name is required")
	}
	tpl, err := s.Get(scope, id)
	if err != nil {
		return nil, err
	}

	var dup models.Template
	err = s.db.Where("name = ? AND organization_id = ? AND id <> ?", name, tpl.OrganizationID, tpl.ID).
		First(&dup).Error
	if err == nil {
		return nil, Validationf("a template named %q already exists", name)
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	tpl.Name = name
	if err := s.db.Save(tpl).Error; err != nil {
		return nil, err
	}
	return tpl, nil
}

// Toggle flips a template's enabled flag and returns the new state.
func (s *TemplateService) Toggle(scope Scope, id uint) (*models.Template, error) {
	tpl, err := s.Get(scope, id)
	if err != nil {
		return nil, err
	}
	tpl.Enabled = !tpl.Enabled
	if err := s.db.Save(tpl).Error; err != nil {
		return nil, err
	}
	return tpl, nil
}

// Refresh rescans a template's placeholders and regenerates its thumbnail.
// Useful after the DOCX on disk was replaced out of band.
func (s *TemplateService) Refresh(ctx context.Context, scope Scope, id uint) (*models.Template, error) {
	tpl, err := s.Get(scope, id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(tpl.FilePath)
	if err != nil {
		return nil, fmt.Errorf("read template file: %w", err)
	}
	scan, err := docx.Scan(data)
	if err != nil {
		return nil, Validationf("the template file on disk is not a valid DOCX document")
	}
	tpl.Placeholders = scan.Placeholders

	thumbPath := filepath.Join(s.cfg.UploadsDir, fmt.Sprintf("%d-preview.png", time.Now().UnixMilli()))
	if err := s.pipeline.RenderThumbnail(ctx, tpl.FilePath, thumbPath); err != nil {
		logger.Log().WithError(err).Warn("thumbnail refresh failed, keeping previous preview")
	} else {
		if tpl.ThumbnailPath != "" {
			os.Remove(tpl.ThumbnailPath)
		}
		tpl.ThumbnailPath = filepath.ToSlash(thumbPath)
	}

	if err := s.db.Save(tpl).Error; err != nil {
		return nil, err
	}
	return tpl, nil
}

// Delete removes a template row and its files. Documents generated from it
// are kept and keep verifying.
func (s *TemplateService) Delete(scope Scope, id uint) error {
	tpl, err := s.Get(scope, id)
	if err != nil {
		return err
	}
	if err := s.db.Delete(&models.Template{}, tpl.ID).Error; err != nil {
		return err
	}
	if tpl.FilePath != "" {
		os.Remove(tpl.FilePath)
	}
	if tpl.ThumbnailPath != "" {
		os.Remove(tpl.ThumbnailPath)
	}
	return nil
}
