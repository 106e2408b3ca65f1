package services

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adarsh-MG101/VerifyCert2/internal/config"
	"github.com/Adarsh-MG101/VerifyCert2/internal/models"
)

func setupTemplateService(t *testing.T) (*TemplateService, config.Config) {
	t.Helper()
	db := newTestDB(t)
	cfg := testConfig(t)
	notifier := NewNotificationService(db, nil)
	return NewTemplateService(db, cfg, fakePipeline(&fakeConverter{}), notifier), cfg
}

func TestTemplateService_Upload(t *testing.T) {
	svc, cfg := setupTemplateService(t)

	path := writeTemplateDocx(t, cfg.UploadsDir, "Hello {{NAME}}, you passed {{Course}}! {{QR}}")
	tpl, err := svc.Upload(context.Background(), 1, "Diploma.docx", path)
	require.NoError(t, err)

	assert.Equal(t, "Diploma", tpl.Name)
	assert.True(t, tpl.Enabled)
	// canonical placeholders only; QR is system-filled
	assert.Equal(t, models.StringList{"COURSE", "NAME"}, tpl.Placeholders)
	assert.NotEmpty(t, tpl.ThumbnailPath)
	_, err = os.Stat(tpl.ThumbnailPath)
	assert.NoError(t, err)
}

func TestTemplateService_UploadDuplicateName(t *testing.T) {
	svc, cfg := setupTemplateService(t)

	first := writeTemplateDocx(t, cfg.UploadsDir, "{{NAME}}")
	_, err := svc.Upload(context.Background(), 1, "Diploma", first)
	require.NoError(t, err)

	dupDir := t.TempDir()
	second := writeTemplateDocx(t, dupDir, "{{NAME}}")
	_, err = svc.Upload(context.Background(), 1, "Diploma", second)
	assert.True(t, IsValidation(err))
	// the rejected upload is cleaned up
	_, statErr := os.Stat(second)
	assert.True(t, os.IsNotExist(statErr))
}

func TestTemplateService_UploadSameNameDifferentOrg(t *testing.T) {
	svc, cfg := setupTemplateService(t)

	first := writeTemplateDocx(t, cfg.UploadsDir, "{{NAME}}")
	_, err := svc.Upload(context.Background(), 1, "Diploma", first)
	require.NoError(t, err)

	otherDir := t.TempDir()
	second := writeTemplateDocx(t, otherDir, "{{NAME}}")
	_, err = svc.Upload(context.Background(), 2, "Diploma", second)
	assert.NoError(t, err)
}

func TestTemplateService_UploadWithoutPlaceholders(t *testing.T) {
	svc, cfg := setupTemplateService(t)

	path := writeTemplateDocx(t, cfg.UploadsDir, "static text only, plus system tags {{QR}} {{CERTIFICATE_ID}}")
	_, err := svc.Upload(context.Background(), 1, "Static", path)
	assert.True(t, IsValidation(err))
}

func TestTemplateService_UploadRejectsNonDocx(t *testing.T) {
	svc, cfg := setupTemplateService(t)

	path := cfg.UploadsDir + "/bogus.docx"
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))

	_, err := svc.Upload(context.Background(), 1, "Bogus", path)
	assert.True(t, IsValidation(err))
}

func TestTemplateService_RenameAndToggle(t *testing.T) {
	svc, cfg := setupTemplateService(t)

	path := writeTemplateDocx(t, cfg.UploadsDir, "{{NAME}}")
	tpl, err := svc.Upload(context.Background(), 1, "Diploma", path)
	require.NoError(t, err)

	renamed, err := svc.Rename(Scope{OrganizationID: 1}, tpl.ID, "Certificate of Merit")
	require.NoError(t, err)
	assert.Equal(t, "Certificate of Merit", renamed.Name)

	toggled, err := svc.Toggle(Scope{OrganizationID: 1}, tpl.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Enabled)

	// other tenants cannot touch it
	_, err = svc.Toggle(Scope{OrganizationID: 2}, tpl.ID)
	assert.True(t, IsNotFound(err))
}

func TestTemplateService_DeleteKeepsDocuments(t *testing.T) {
	svc, cfg := setupTemplateService(t)

	path := writeTemplateDocx(t, cfg.UploadsDir, "{{NAME}}")
	tpl, err := svc.Upload(context.Background(), 1, "Diploma", path)
	require.NoError(t, err)

	doc := &models.Document{UniqueID: "keep-me", TemplateID: tpl.ID, OrganizationID: 1}
	require.NoError(t, svc.db.Create(doc).Error)

	require.NoError(t, svc.Delete(Scope{OrganizationID: 1}, tpl.ID))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	var count int64
	require.NoError(t, svc.db.Model(&models.Document{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestTemplateService_ListCountsDocuments(t *testing.T) {
	svc, cfg := setupTemplateService(t)

	path := writeTemplateDocx(t, cfg.UploadsDir, "{{NAME}}")
	tpl, err := svc.Upload(context.Background(), 1, "Diploma", path)
	require.NoError(t, err)

	for _, uid := range []string{"a", "b"} {
		require.NoError(t, svc.db.Create(&models.Document{UniqueID: uid, TemplateID: tpl.ID, OrganizationID: 1}).Error)
	}

	items, err := svc.List(Scope{OrganizationID: 1}, "", false)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.EqualValues(t, 2, items[0].DocumentCount)
}
