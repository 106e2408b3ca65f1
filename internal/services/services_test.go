package services

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Adarsh-MG101/VerifyCert2/internal/config"
	"github.com/Adarsh-MG101/VerifyCert2/internal/convert"
	"github.com/Adarsh-MG101/VerifyCert2/internal/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Environment: "test",
		UploadsDir:  t.TempDir(),
		BaseURL:     "http://localhost:3000",
	}
}

// writeTemplateDocx builds a minimal DOCX template on disk whose body text is
// the given string.
func writeTemplateDocx(t *testing.T, dir, bodyText string) string {
	t.Helper()

	documentXML := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body><w:p><w:r><w:t xml:space="preserve">` + bodyText + `</w:t></w:r></w:p></w:body></w:document>`

	parts := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
			`</Types>`,
		"_rels/.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
			`</Relationships>`,
		"word/document.xml": documentXML,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`</Relationships>`,
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range []string{"[Content_Types].xml", "_rels/.rels", "word/document.xml", "word/_rels/document.xml.rels"} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(parts[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	path := filepath.Join(dir, "template.docx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

// fakeConverter pretends every DOCX converts successfully, writing a stub
// file where the PDF would land.
type fakeConverter struct {
	fail  bool
	calls int
}

func (f *fakeConverter) Convert(_ context.Context, docxPath string) (string, error) {
	f.calls++
	if f.fail {
		return "", convert.ErrConversionFailed
	}
	pdfPath := strings.TrimSuffix(docxPath, filepath.Ext(docxPath)) + ".pdf"
	if err := os.WriteFile(pdfPath, []byte("%PDF-1.4 stub"), 0o644); err != nil {
		return "", err
	}
	return pdfPath, nil
}

type fakeThumbnailer struct{}

func (fakeThumbnailer) Thumbnail(_ context.Context, _, pngPath string) error {
	return os.WriteFile(pngPath, []byte("png stub"), 0o644)
}

func fakePipeline(c convert.Converter) *convert.Pipeline {
	return &convert.Pipeline{Converter: c, Thumbnailer: fakeThumbnailer{}}
}
