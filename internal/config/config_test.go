package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"socloud/internal/apperr"
	"socloud/internal/blob"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/socloud")
	t.Setenv("JWT_SECRET", "0123456789abcdef")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Fatalf("unexpected addr %q", cfg.Server.Addr())
	}
	if cfg.Security.TokenTTL != 365*24*time.Hour {
		t.Fatalf("unexpected token ttl %s", cfg.Security.TokenTTL)
	}
	if cfg.Storage.Backend != blob.BackendMemory {
		t.Fatalf("expected memory backend, got %q", cfg.Storage.Backend)
	}
	if !cfg.Database.AutoMigrate {
		t.Fatalf("expected auto migrate by default")
	}
	if cfg.Admin.Enabled() {
		t.Fatalf("expected admin seeding to be disabled")
	}
	if len(cfg.CORS.AllowedOrigins) != 2 {
		t.Fatalf("unexpected origins %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9090")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("STORAGE_BACKEND", "S3")
	t.Setenv("STORAGE_BUCKET", "media")
	t.Setenv("S3_REGION", "eu-west-1")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.test , ,https://b.test")
	t.Setenv("ADMIN_EMAIL", "root@example.com")
	t.Setenv("ADMIN_PASSWORD", "changeme")
	t.Setenv("AUTO_MIGRATE", "false")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != 9090 || cfg.Security.TokenTTL != 2*time.Hour {
		t.Fatalf("unexpected server/security config: %+v %+v", cfg.Server, cfg.Security)
	}
	if cfg.Storage.Backend != blob.BackendS3 || cfg.Storage.Bucket != "media" || cfg.Storage.Region != "eu-west-1" {
		t.Fatalf("unexpected storage config: %+v", cfg.Storage)
	}
	if got := strings.Join(cfg.CORS.AllowedOrigins, ","); got != "https://a.test,https://b.test" {
		t.Fatalf("unexpected origins %q", got)
	}
	if !cfg.Admin.Enabled() || cfg.Database.AutoMigrate {
		t.Fatalf("unexpected admin/db config: %+v %+v", cfg.Admin, cfg.Database)
	}
}

func TestLoadCollectsProblems(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "short")
	t.Setenv("PORT", "70000")
	t.Setenv("STORAGE_BACKEND", "gcs")
	t.Setenv("STORAGE_BUCKET", "")
	t.Setenv("SIGNED_URL_TTL", "forever")
	t.Setenv("ADMIN_EMAIL", "root@example.com")
	t.Setenv("ADMIN_PASSWORD", "")

	_, err := Load("")
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !errors.Is(err, apperr.ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}

	for _, want := range []string{
		"DATABASE_URL is required",
		"JWT_SECRET must be at least 16 characters",
		"PORT must be between 1 and 65535",
		"STORAGE_BUCKET is required",
		"SIGNED_URL_TTL must be a positive duration",
		"ADMIN_EMAIL and ADMIN_PASSWORD must be set together",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.env")
	content := "DATABASE_URL=postgres://file/socloud\nJWT_SECRET=from-file-0123456789\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")
	// godotenv never overrides variables that are already set.
	os.Unsetenv("DATABASE_URL")
	os.Unsetenv("JWT_SECRET")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.URL != "postgres://file/socloud" {
		t.Fatalf("expected database url from file, got %q", cfg.Database.URL)
	}
}
