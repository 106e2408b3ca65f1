package services

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Adarsh-MG101/VerifyCert2/internal/logger"
)

// intermediateDocxPattern matches the uuid-named DOCX files the generator
// writes before conversion. Uploaded templates carry a timestamp prefix and
// never match.
var intermediateDocxPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.docx$`)

// CleanupService sweeps conversion intermediates that crashed requests left
// behind in the uploads directory.
type CleanupService struct {
	uploadsDir string
	maxAge     time.Duration
	cron       *cron.Cron
}

func NewCleanupService(uploadsDir string, maxAge time.Duration) *CleanupService {
	return &CleanupService{uploadsDir: uploadsDir, maxAge: maxAge, cron: cron.New()}
}

// Start schedules an hourly sweep.
func (s *CleanupService) Start() error {
	_, err := s.cron.AddFunc("@hourly", func() {
		if err := s.Sweep(); err != nil {
			logger.Log().WithError(err).Error("cleanup sweep failed")
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the schedule. Running sweeps finish.
func (s *CleanupService) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// Sweep removes intermediates older than maxAge: uuid-named DOCX files in the
// uploads root and any DOCX inside batch directories. Batch archives and
// generated PDFs are kept.
func (s *CleanupService) Sweep() error {
	cutoff := time.Now().Add(-s.maxAge)
	removed := 0

	entries, err := os.ReadDir(s.uploadsDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		fullPath := filepath.Join(s.uploadsDir, entry.Name())

		if entry.IsDir() && strings.HasPrefix(entry.Name(), "batch_") {
			removed += sweepBatchDir(fullPath, cutoff)
			continue
		}
		if entry.IsDir() || !intermediateDocxPattern.MatchString(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(fullPath); err == nil {
			removed++
		}
	}

	if removed > 0 {
		logger.WithFields(map[string]interface{}{"removed": removed}).
			Info("removed stale conversion intermediates")
	}
	return nil
}

func sweepBatchDir(dir string, cutoff time.Time) int {
	removed := 0
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".docx") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err == nil {
			removed++
		}
	}
	return removed
}
