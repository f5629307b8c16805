package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geotech-hub/geoaudit/internal/core/domain"
)

func TestAnalyzeCmd_Args(t *testing.T) {
	assert.Error(t, analyzeCmd.Args(analyzeCmd, nil))
	assert.NoError(t, analyzeCmd.Args(analyzeCmd, []string{"tz.pdf"}))
}

func TestAnalyze_MissingFile(t *testing.T) {
	dir := isolate(t)

	_, err := execute(t, "analyze", filepath.Join(dir, "absent.pdf"))
	assert.Error(t, err)
}

func TestAnalyze_Directory(t *testing.T) {
	dir := isolate(t)

	_, err := execute(t, "analyze", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")
}

func TestAnalyze_CorruptDocx(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "tz.docx")
	require.NoError(t, os.WriteFile(path, []byte("PK"), 0o600))

	_, err := execute(t, "analyze", path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDocumentFormat)
}

func TestAnalyze_WithoutLLMFails(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "tz.txt")
	require.NoError(t, os.WriteFile(path, []byte("Шпунтовое ограждение котлована, грунт суглинок"), 0o600))

	_, err := execute(t, "analyze", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LLM")
}

func TestNewApp_SQLite(t *testing.T) {
	dir := isolate(t)
	t.Setenv("GEOAUDIT_STORAGE", "sqlite")

	a, err := newApp(nil)
	require.NoError(t, err)
	defer a.Close() //nolint:errcheck

	assert.FileExists(t, filepath.Join(dir, "data", "audit.db"))
	assert.False(t, a.llmConfigured)
}

func TestNewApp_InvalidStorage(t *testing.T) {
	isolate(t)
	t.Setenv("GEOAUDIT_STORAGE", "postgres")

	_, err := newApp(nil)
	assert.Error(t, err)
}
