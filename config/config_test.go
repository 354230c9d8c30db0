package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "DATABASE_PATH", "DB_LOG_LEVEL", "MEDIA_STORAGE_PATH", "IMAGES_SUBDIR",
		"MAX_UPLOAD_BYTES", "MAX_IMAGE_KB", "IMAGE_MAX_SIZE", "CORS_ALLOWED_ORIGINS",
		"REQUEST_TIMEOUT_SECONDS",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "personas.db", cfg.DatabasePath)
	assert.Equal(t, "warn", cfg.DBLogLevel)
	assert.True(t, filepath.IsAbs(cfg.MediaStoragePath))
	assert.Equal(t, "storage", filepath.Base(cfg.MediaStoragePath))
	assert.Equal(t, DefaultImagesSubDir, cfg.ImagesSubDir)
	assert.EqualValues(t, 8<<20, cfg.MaxUploadBytes)
	assert.Equal(t, 2048, cfg.MaxImageKB)
	assert.Equal(t, 1024, cfg.ImageMaxSize)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestWriteTimeoutOutlastsRequestTimeout(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "90")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, cfg.RequestTimeout)
	assert.Greater(t, cfg.WriteTimeout(), cfg.RequestTimeout)
}

func TestLoadConfigFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_PATH", "file::memory:")
	t.Setenv("DB_LOG_LEVEL", "INFO")
	t.Setenv("MEDIA_STORAGE_PATH", dir)
	t.Setenv("IMAGES_SUBDIR", "uploads")
	t.Setenv("MAX_IMAGE_KB", "512")
	t.Setenv("IMAGE_MAX_SIZE", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173, https://example.com ,")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "file::memory:", cfg.DatabasePath)
	assert.Equal(t, "info", cfg.DBLogLevel)
	assert.Equal(t, dir, cfg.MediaStoragePath)
	assert.Equal(t, "uploads", cfg.ImagesSubDir)
	assert.Equal(t, 512, cfg.MaxImageKB)
	assert.Equal(t, 1024, cfg.ImageMaxSize, "invalid ints fall back to the default")
	assert.Equal(t, []string{"http://localhost:5173", "https://example.com"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfigRejectsEscapingSubDir(t *testing.T) {
	t.Setenv("IMAGES_SUBDIR", "../outside")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfigUnknownDBLogLevel(t *testing.T) {
	t.Setenv("IMAGES_SUBDIR", "")
	t.Setenv("DB_LOG_LEVEL", "verbose")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.DBLogLevel)
}
