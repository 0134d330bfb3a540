package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_USER", "forkbook")
	t.Setenv("DB_PASSWORD", "s3cret")
	t.Setenv("DB_NAME", "forkbook_test")
	t.Setenv("PER_PAGE", "25")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "120")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, "5433", cfg.DBPort)
	assert.Equal(t, "forkbook", cfg.DBUser)
	assert.Equal(t, "s3cret", cfg.DBPassword)
	assert.Equal(t, "forkbook_test", cfg.DBName)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, 25, cfg.PerPage)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.Equal(t, "local", cfg.StorageDriver)
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	os.Unsetenv("DB_HOST")
	os.Unsetenv("PER_PAGE")
	os.Unsetenv("RATE_LIMIT_PER_MINUTE")
	os.Unsetenv("STORAGE_DRIVER")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, 15, cfg.PerPage)
	assert.Equal(t, 60, cfg.RateLimitPerMinute)
	assert.Equal(t, "local", cfg.StorageDriver)
	assert.Equal(t, "storage/recipes", cfg.UploadDir)
}

func TestLoadConfigRejectsBadNumbers(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PER_PAGE", "fifteen")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	base := func() *Config {
		return &Config{
			JWTSecret:          "secret",
			DBHost:             "localhost",
			DBPort:             "5432",
			DBUser:             "postgres",
			DBName:             "forkbook",
			PerPage:            15,
			RateLimitPerMinute: 60,
			StorageDriver:      "local",
			UploadDir:          "storage/recipes",
		}
	}

	assert.NoError(t, ValidateConfig(base()))

	cfg := base()
	cfg.JWTSecret = ""
	assert.ErrorContains(t, ValidateConfig(cfg), "JWT_SECRET")

	cfg = base()
	cfg.PerPage = 0
	assert.ErrorContains(t, ValidateConfig(cfg), "PER_PAGE")

	cfg = base()
	cfg.StorageDriver = "ftp"
	assert.ErrorContains(t, ValidateConfig(cfg), "storage driver")

	cfg = base()
	cfg.StorageDriver = "s3"
	cfg.S3Bucket = ""
	assert.ErrorContains(t, ValidateConfig(cfg), "S3_BUCKET_NAME")
}
