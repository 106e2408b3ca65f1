package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupService_Sweep(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().Add(-48 * time.Hour)

	writeAged := func(path string, aged bool) {
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		if aged {
			require.NoError(t, os.Chtimes(path, old, old))
		}
	}

	staleDocx := filepath.Join(dir, "d3b07384-d9a0-4c9a-8f3e-111122223333.docx")
	freshDocx := filepath.Join(dir, "a1b2c3d4-e5f6-4a9a-8f3e-444455556666.docx")
	templateDocx := filepath.Join(dir, "1700000000000-diploma.docx")
	pdf := filepath.Join(dir, "d3b07384-d9a0-4c9a-8f3e-111122223333.pdf")
	writeAged(staleDocx, true)
	writeAged(freshDocx, false)
	writeAged(templateDocx, true)
	writeAged(pdf, true)

	batchDir := filepath.Join(dir, "batch_xyz")
	require.NoError(t, os.MkdirAll(batchDir, 0o755))
	batchDocx := filepath.Join(batchDir, "anything.docx")
	batchPDF := filepath.Join(batchDir, "Alice.pdf")
	writeAged(batchDocx, true)
	writeAged(batchPDF, true)

	svc := NewCleanupService(dir, 24*time.Hour)
	require.NoError(t, svc.Sweep())

	gone := func(p string) bool {
		_, err := os.Stat(p)
		return os.IsNotExist(err)
	}

	assert.True(t, gone(staleDocx), "stale intermediate should be removed")
	assert.True(t, gone(batchDocx), "batch intermediate should be removed")
	assert.False(t, gone(freshDocx), "fresh intermediate should be kept")
	assert.False(t, gone(templateDocx), "uploaded template should be kept")
	assert.False(t, gone(pdf), "generated pdf should be kept")
	assert.False(t, gone(batchPDF), "batch pdf should be kept")
}
