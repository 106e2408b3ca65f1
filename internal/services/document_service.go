package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Adarsh-MG101/VerifyCert2/internal/config"
	"github.com/Adarsh-MG101/VerifyCert2/internal/convert"
	"github.com/Adarsh-MG101/VerifyCert2/internal/docx"
	"github.com/Adarsh-MG101/VerifyCert2/internal/metrics"
	"github.com/Adarsh-MG101/VerifyCert2/internal/models"
	"github.com/Adarsh-MG101/VerifyCert2/internal/qr"
)

// DocumentService generates and verifies certificates.
type DocumentService struct {
	db        *gorm.DB
	cfg       config.Config
	engine    *docx.Engine
	converter convert.Converter
	notifier  *NotificationService
}

func NewDocumentService(db *gorm.DB, cfg config.Config, converter convert.Converter, notifier *NotificationService) *DocumentService {
	return &DocumentService{
		db:        db,
		cfg:       cfg,
		engine:    docx.NewEngine(),
		converter: converter,
		notifier:  notifier,
	}
}

// GenerateResult is the response payload of a single generation.
type GenerateResult struct {
	Document    *models.Document `json:"document"`
	DownloadURL string           `json:"download_url"`
}

// Generate renders one certificate from a template: heals QR tags, binds the
// submitted data plus system values, renders, converts to PDF and persists
// the document record.
func (s *DocumentService) Generate(ctx context.Context, scope Scope, templateID uint, data map[string]interface{}) (*GenerateResult, error) {
	var tpl models.Template
	if err := scope.apply(s.db).First(&tpl, templateID).Error; err != nil {
		return nil, err
	}
	if !tpl.Enabled {
		return nil, Validationf("template %q is disabled", tpl.Name)
	}

	raw, err := os.ReadFile(tpl.FilePath)
	if err != nil {
		return nil, fmt.Errorf("read template file: %w", err)
	}

	uniqueID := uuid.NewString()
	doc, err := s.renderAndConvert(ctx, raw, uniqueID, data, s.cfg.UploadsDir)
	if err != nil {
		return nil, err
	}
	doc.TemplateID = tpl.ID
	doc.OrganizationID = tpl.OrganizationID
	if err := s.db.Create(doc).Error; err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}
	metrics.IncDocumentGenerated()

	s.notifier.Publish(models.NotificationTypeSuccess, "Certificate generated",
		fmt.Sprintf("Certificate %s was issued from template %q", uniqueID, tpl.Name))
	return &GenerateResult{Document: doc, DownloadURL: "/" + doc.FilePath}, nil
}

// renderAndConvert does the shared per-document work: QR code, heal, bind,
// render, write DOCX, convert to PDF and remove the intermediate DOCX. The
// returned document carries UniqueID, Data and FilePath; the caller fills in
// ownership.
func (s *DocumentService) renderAndConvert(ctx context.Context, template []byte, uniqueID string, data map[string]interface{}, outDir string) (*models.Document, error) {
	qrImg, err := qr.Generate(qr.VerificationURL(s.cfg.BaseURL, uniqueID))
	if err != nil {
		return nil, err
	}

	healed, _, err := docx.Heal(template)
	if err != nil {
		return nil, err
	}
	mapping, err := docx.MapTags(healed)
	if err != nil {
		return nil, err
	}

	bound := docx.Bind(data, uniqueID, qrImg, mapping)
	rendered, err := s.engine.Render(healed, bound)
	if err != nil {
		return nil, err
	}

	docxPath := filepath.Join(outDir, uniqueID+".docx")
	if err := os.WriteFile(docxPath, rendered, 0o644); err != nil {
		return nil, fmt.Errorf("write rendered docx: %w", err)
	}
	defer os.Remove(docxPath)

	metrics.IncConversion()
	pdfPath, err := s.converter.Convert(ctx, docxPath)
	if err != nil {
		return nil, err
	}

	return &models.Document{
		UniqueID: uniqueID,
		Data:     storableData(bound),
		FilePath: filepath.ToSlash(pdfPath),
	}, nil
}

// storableData flattens bound data for persistence, replacing embedded image
// bytes with small descriptors.
func storableData(bound map[string]interface{}) models.DataMap {
	out := make(models.DataMap, len(bound))
	for k, v := range bound {
		if img, ok := v.(*docx.ImageRef); ok {
			out[k] = map[string]interface{}{
				"width":     img.Width,
				"height":    img.Height,
				"extension": img.Extension,
			}
			continue
		}
		out[k] = v
	}
	return out
}

// VerifyResult is the public verification payload.
type VerifyResult struct {
	Valid        bool           `json:"valid"`
	Data         models.DataMap `json:"data,omitempty"`
	TemplateName string         `json:"template_name,omitempty"`
	IssuedAt     *time.Time     `json:"issued_at,omitempty"`
}

// Verify looks a certificate up by its unique ID, case-insensitively. The
// returned data is stripped of system-injected fields.
func (s *DocumentService) Verify(uniqueID string) (*VerifyResult, error) {
	metrics.IncVerifyLookup()

	var doc models.Document
	err := s.db.Where("UPPER(unique_id) = ?", strings.ToUpper(strings.TrimSpace(uniqueID))).
		First(&doc).Error
	if err == gorm.ErrRecordNotFound {
		return &VerifyResult{Valid: false}, nil
	}
	if err != nil {
		return nil, err
	}

	templateName := ""
	var tpl models.Template
	if err := s.db.First(&tpl, doc.TemplateID).Error; err == nil {
		templateName = tpl.Name
	}

	issued := doc.CreatedAt
	return &VerifyResult{
		Valid:        true,
		Data:         PublicData(doc.Data),
		TemplateName: templateName,
		IssuedAt:     &issued,
	}, nil
}

// PublicData strips system-injected entries from a document's stored data:
// QR descriptors, IMAGE wrappers and duplicate identifier spellings. The
// canonical CERTIFICATE_ID entry is kept.
func PublicData(data models.DataMap) models.DataMap {
	out := make(models.DataMap, len(data))
	for k, v := range data {
		canonical := strings.ToUpper(strings.TrimSpace(k))
		switch {
		case k == "CERTIFICATE_ID":
			out[k] = v
		case docx.IsReservedTag(canonical):
		case docx.IsIdentifierAlias(canonical):
		default:
			out[k] = v
		}
	}
	return out
}

// ListFilter narrows document listings.
type ListFilter struct {
	Search     string
	TemplateID uint
	From       *time.Time
	To         *time.Time
	Page       int
	PerPage    int
}

// List returns documents within scope, newest first, with the total count
// before pagination.
func (s *DocumentService) List(scope Scope, f ListFilter) ([]models.Document, int64, error) {
	q := scope.apply(s.db.Model(&models.Document{}))
	if f.Search != "" {
		needle := "%" + f.Search + "%"
		q = q.Where("unique_id LIKE ? OR data LIKE ?", needle, "%"+strings.ToUpper(f.Search)+"%")
	}
	if f.TemplateID != 0 {
		q = q.Where("template_id = ?", f.TemplateID)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.PerPage <= 0 || f.PerPage > 200 {
		f.PerPage = 50
	}
	if f.Page < 1 {
		f.Page = 1
	}
	var items []models.Document
	err := q.Order("created_at DESC").
		Offset((f.Page - 1) * f.PerPage).Limit(f.PerPage).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Get loads one document within scope.
func (s *DocumentService) Get(scope Scope, id uint) (*models.Document, error) {
	var doc models.Document
	if err := scope.apply(s.db).First(&doc, id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}
