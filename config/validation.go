package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that the configuration is complete enough to serve
// requests. Redis is optional; without it the open endpoints simply run
// unlimited.
func ValidateConfig(cfg *Config) error {
	var errors []string

	if cfg.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET is required")
	}
	if cfg.DBHost == "" || cfg.DBPort == "" || cfg.DBName == "" || cfg.DBUser == "" {
		errors = append(errors, "DB_HOST, DB_PORT, DB_USER and DB_NAME are required")
	}
	if cfg.PerPage <= 0 {
		errors = append(errors, "PER_PAGE must be positive")
	}
	if cfg.RateLimitPerMinute <= 0 {
		errors = append(errors, "RATE_LIMIT_PER_MINUTE must be positive")
	}

	switch cfg.StorageDriver {
	case "local":
		if cfg.UploadDir == "" {
			errors = append(errors, "UPLOAD_DIR is required with the local storage driver")
		}
	case "s3":
		if cfg.S3Bucket == "" {
			errors = append(errors, "S3_BUCKET_NAME is required with the s3 storage driver")
		}
	default:
		errors = append(errors, fmt.Sprintf("unknown storage driver %q", cfg.StorageDriver))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}
