package services

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Adarsh-MG101/VerifyCert2/internal/config"
	"github.com/Adarsh-MG101/VerifyCert2/internal/docx"
	"github.com/Adarsh-MG101/VerifyCert2/internal/logger"
	"github.com/Adarsh-MG101/VerifyCert2/internal/metrics"
	"github.com/Adarsh-MG101/VerifyCert2/internal/models"
	"github.com/Adarsh-MG101/VerifyCert2/internal/util"
)

// ErrBatchFailed is returned when not a single CSV row produced a
// certificate. The batch directory is removed in that case.
var ErrBatchFailed = errors.New("failed to generate any valid certificates")

// nameColumns are tried in order when picking a recipient file name for the
// batch archive.
var nameColumns = []string{"NAME", "STUDENT", "RECIPIENT"}

// BatchService generates certificates in bulk from CSV data.
type BatchService struct {
	db        *gorm.DB
	cfg       config.Config
	documents *DocumentService
	notifier  *NotificationService
}

func NewBatchService(db *gorm.DB, cfg config.Config, documents *DocumentService, notifier *NotificationService) *BatchService {
	return &BatchService{db: db, cfg: cfg, documents: documents, notifier: notifier}
}

// RowError describes one failed CSV row. Row numbers are as seen in a
// spreadsheet: the header is row 1, the first data row is row 2.
type RowError struct {
	Row   int               `json:"row"`
	Error string            `json:"error"`
	Data  map[string]string `json:"data"`
}

// BatchResult summarizes a bulk run.
type BatchResult struct {
	TotalRows   int        `json:"total_rows"`
	Generated   int        `json:"generated"`
	Failed      int        `json:"failed"`
	Errors      []RowError `json:"errors"`
	BatchID     string     `json:"batch_id,omitempty"`
	DownloadURL string     `json:"download_url,omitempty"`
}

// Run generates one certificate per CSV row. Rows are processed in order and
// failures are isolated: a bad row is reported and the run continues. The
// successful PDFs are zipped under the uploads directory. When no row
// succeeds the batch directory is removed and ErrBatchFailed returned
// alongside the per-row errors.
func (s *BatchService) Run(scope Scope, templateID uint, csvData io.Reader) (*BatchResult, error) {
	var tpl models.Template
	if err := scope.apply(s.db).First(&tpl, templateID).Error; err != nil {
		return nil, err
	}
	if !tpl.Enabled {
		return nil, Validationf("template %q is disabled", tpl.Name)
	}

	rows, err := readRows(csvData)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(tpl.FilePath)
	if err != nil {
		return nil, fmt.Errorf("read template file: %w", err)
	}
	// Heal and map once; every row renders from the same healed bytes.
	healed, _, err := docx.Heal(raw)
	if err != nil {
		return nil, err
	}

	batchID := uuid.NewString()
	batchDir := filepath.Join(s.cfg.UploadsDir, "batch_"+batchID)
	if err := os.MkdirAll(batchDir, 0o755); err != nil {
		return nil, fmt.Errorf("create batch directory: %w", err)
	}

	// Rows run to completion even if the client disconnects mid-batch.
	ctx := context.Background()

	res := &BatchResult{TotalRows: len(rows), Errors: []RowError{}}
	type generated struct {
		pdfPath     string
		archiveName string
	}
	var done []generated
	usedNames := make(map[string]int)

	for i, row := range rows {
		rowNumber := i + 2
		upperRow := normalizeRow(row)

		if missing := missingFields(tpl.Placeholders, upperRow); len(missing) > 0 {
			res.Errors = append(res.Errors, RowError{
				Row:   rowNumber,
				Error: "missing value for required field(s): " + strings.Join(missing, ", "),
				Data:  row,
			})
			metrics.IncBatchRowFailed()
			continue
		}

		uniqueID := uuid.NewString()
		rowData := make(map[string]interface{}, len(upperRow))
		for k, v := range upperRow {
			rowData[k] = v
		}
		doc, err := s.documents.renderAndConvert(ctx, healed, uniqueID, rowData, batchDir)
		if err != nil {
			logger.WithFields(map[string]interface{}{"row": rowNumber}).
				WithError(err).Warn("batch row failed")
			res.Errors = append(res.Errors, RowError{Row: rowNumber, Error: err.Error(), Data: row})
			metrics.IncBatchRowFailed()
			continue
		}

		doc.TemplateID = tpl.ID
		doc.OrganizationID = tpl.OrganizationID
		if err := s.db.Create(doc).Error; err != nil {
			res.Errors = append(res.Errors, RowError{Row: rowNumber, Error: "failed to store document record", Data: row})
			metrics.IncBatchRowFailed()
			continue
		}
		metrics.IncDocumentGenerated()

		done = append(done, generated{
			pdfPath:     doc.FilePath,
			archiveName: archiveName(upperRow, uniqueID, usedNames),
		})
	}

	res.Generated = len(done)
	res.Failed = len(res.Errors)

	if res.Generated == 0 {
		os.RemoveAll(batchDir)
		return res, ErrBatchFailed
	}

	zipPath := filepath.Join(s.cfg.UploadsDir, "batch_"+batchID+".zip")
	zf, err := os.Create(zipPath)
	if err != nil {
		return nil, fmt.Errorf("create batch archive: %w", err)
	}
	zw := zip.NewWriter(zf)
	for _, g := range done {
		if err := addToArchive(zw, g.pdfPath, g.archiveName); err != nil {
			zw.Close()
			zf.Close()
			return nil, fmt.Errorf("write batch archive: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		zf.Close()
		return nil, fmt.Errorf("close batch archive: %w", err)
	}
	if err := zf.Close(); err != nil {
		return nil, fmt.Errorf("close batch archive: %w", err)
	}

	res.BatchID = batchID
	res.DownloadURL = "/" + filepath.ToSlash(zipPath)

	s.notifier.Publish(models.NotificationTypeSuccess, "Batch generation finished",
		fmt.Sprintf("Template %q: %d generated, %d failed", tpl.Name, res.Generated, res.Failed))
	return res, nil
}

// readRows parses CSV into one map per data row keyed by header cell.
func readRows(r io.Reader) ([]map[string]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, Validationf("could not parse CSV file: %v", err)
	}
	if len(records) < 2 {
		return nil, Validationf("CSV file must have a header row and at least one data row")
	}

	header := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[strings.TrimSpace(col)] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// normalizeRow canonicalizes the keys of a CSV row.
func normalizeRow(row map[string]string) map[string]string {
	out := make(map[string]string, len(row))
	for k, v := range row {
		key := strings.ToUpper(strings.TrimSpace(k))
		if key == "" {
			continue
		}
		out[key] = v
	}
	return out
}

// missingFields lists template placeholders with no usable value in the row.
func missingFields(placeholders []string, upperRow map[string]string) []string {
	var missing []string
	for _, p := range placeholders {
		if strings.TrimSpace(upperRow[p]) == "" {
			missing = append(missing, p)
		}
	}
	return missing
}

// archiveName picks a file name for a recipient's PDF inside the batch zip,
// preferring a name-like column and falling back to the unique ID. Collisions
// within the batch get a numeric suffix.
func archiveName(upperRow map[string]string, uniqueID string, used map[string]int) string {
	base := uniqueID
	for _, col := range nameColumns {
		if v := util.SanitizeFilename(upperRow[col]); v != "" {
			base = v
			break
		}
	}
	used[base]++
	if n := used[base]; n > 1 {
		base = fmt.Sprintf("%s_%d", base, n)
	}
	return base + ".pdf"
}

func addToArchive(zw *zip.Writer, srcPath, name string) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}
