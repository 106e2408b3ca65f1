package services

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adarsh-MG101/VerifyCert2/internal/models"
)

func setupDocumentService(t *testing.T) (*DocumentService, *models.Template, *fakeConverter) {
	t.Helper()
	db := newTestDB(t)
	cfg := testConfig(t)

	tplPath := writeTemplateDocx(t, cfg.UploadsDir, "Awarded to {{NAME}} for {{COURSE}}. ID: {{CERTIFICATE_ID}} {{QR}}")
	tpl := &models.Template{
		Name:           "Course Completion",
		FilePath:       tplPath,
		Placeholders:   models.StringList{"COURSE", "NAME"},
		Enabled:        true,
		OrganizationID: 1,
	}
	require.NoError(t, db.Create(tpl).Error)

	conv := &fakeConverter{}
	notifier := NewNotificationService(db, nil)
	return NewDocumentService(db, cfg, conv, notifier), tpl, conv
}

func TestDocumentService_Generate(t *testing.T) {
	svc, tpl, conv := setupDocumentService(t)

	res, err := svc.Generate(context.Background(), Scope{OrganizationID: 1}, tpl.ID,
		map[string]interface{}{"name": "Jane Doe", "course": "Go Basics"})
	require.NoError(t, err)

	doc := res.Document
	assert.NotEmpty(t, doc.UniqueID)
	assert.Equal(t, tpl.ID, doc.TemplateID)
	assert.Equal(t, uint(1), doc.OrganizationID)
	assert.Equal(t, 1, conv.calls)

	// user strings are stored uppercased
	assert.Equal(t, "JANE DOE", doc.Data["NAME"])
	assert.Equal(t, doc.UniqueID, doc.Data["CERTIFICATE_ID"])

	// the PDF exists, the intermediate DOCX does not
	_, err = os.Stat(doc.FilePath)
	assert.NoError(t, err)
	_, err = os.Stat(doc.FilePath[:len(doc.FilePath)-4] + ".docx")
	assert.True(t, os.IsNotExist(err))
}

func TestDocumentService_GenerateScopedToOrganization(t *testing.T) {
	svc, tpl, _ := setupDocumentService(t)

	_, err := svc.Generate(context.Background(), Scope{OrganizationID: 2}, tpl.ID,
		map[string]interface{}{"name": "x", "course": "y"})
	assert.True(t, IsNotFound(err))
}

func TestDocumentService_GenerateDisabledTemplate(t *testing.T) {
	svc, tpl, _ := setupDocumentService(t)
	require.NoError(t, svc.db.Model(tpl).Update("enabled", false).Error)

	_, err := svc.Generate(context.Background(), Scope{OrganizationID: 1}, tpl.ID,
		map[string]interface{}{"name": "x", "course": "y"})
	assert.True(t, IsValidation(err))
}

func TestDocumentService_VerifyCaseInsensitive(t *testing.T) {
	svc, tpl, _ := setupDocumentService(t)

	res, err := svc.Generate(context.Background(), Scope{OrganizationID: 1}, tpl.ID,
		map[string]interface{}{"name": "Jane", "course": "Go"})
	require.NoError(t, err)
	uid := res.Document.UniqueID

	for _, id := range []string{uid, "  " + uid + " ", uidUpper(uid)} {
		v, err := svc.Verify(id)
		require.NoError(t, err)
		assert.True(t, v.Valid, "id %q should verify", id)
		assert.Equal(t, tpl.Name, v.TemplateName)
		assert.NotNil(t, v.IssuedAt)
	}
}

func uidUpper(s string) string {
	out := []rune(s)
	for i, r := range out {
		if r >= 'a' && r <= 'z' {
			out[i] = r - 32
		}
	}
	return string(out)
}

func TestDocumentService_VerifyStripsSystemFields(t *testing.T) {
	svc, tpl, _ := setupDocumentService(t)

	res, err := svc.Generate(context.Background(), Scope{OrganizationID: 1}, tpl.ID,
		map[string]interface{}{"name": "Jane", "course": "Go"})
	require.NoError(t, err)

	v, err := svc.Verify(res.Document.UniqueID)
	require.NoError(t, err)

	assert.Equal(t, "JANE", v.Data["NAME"])
	assert.Equal(t, res.Document.UniqueID, v.Data["CERTIFICATE_ID"])
	for _, hidden := range []string{"QR", "QRCODE", "QR_CODE", "IMAGE QR", "IMAGE_QR", "ID", "DOC_ID", "UNIQUE_ID"} {
		_, ok := v.Data[hidden]
		assert.False(t, ok, "field %s should be stripped", hidden)
	}
}

func TestDocumentService_VerifyUnknownID(t *testing.T) {
	svc, _, _ := setupDocumentService(t)

	v, err := svc.Verify("no-such-certificate")
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Empty(t, v.Data)
}

func TestDocumentService_ListFiltersAndPaginates(t *testing.T) {
	svc, tpl, _ := setupDocumentService(t)

	for _, name := range []string{"Jane", "Joe", "Mary"} {
		_, err := svc.Generate(context.Background(), Scope{OrganizationID: 1}, tpl.ID,
			map[string]interface{}{"name": name, "course": "Go"})
		require.NoError(t, err)
	}

	items, total, err := svc.List(Scope{OrganizationID: 1}, ListFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, items, 3)

	// data search is canonicalized to uppercase
	items, total, err = svc.List(Scope{OrganizationID: 1}, ListFilter{Search: "jane"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "JANE", items[0].Data["NAME"])

	// other organizations see nothing
	_, total, err = svc.List(Scope{OrganizationID: 2}, ListFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}
