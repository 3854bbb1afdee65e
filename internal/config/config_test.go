package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"larder/internal/config"
)

func validConfig() config.Config {
	cfg := config.Default()
	cfg.Storage.Endpoint = "s3.example.com"
	cfg.Storage.AccessKey = "ak"
	cfg.Storage.SecretKey = "sk"
	cfg.Storage.Bucket = "recipes"
	cfg.Vision.APIKey = "key"
	cfg.RecordStore.APIKey = "key"
	cfg.RecordStore.BaseID = "appX"
	cfg.RecordStore.Table = "Recipes"
	return cfg
}

func TestDefaultValidatesAfterRequiredFields(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidateRejectsMissingVisionKey(t *testing.T) {
	cfg := validConfig()
	cfg.Vision.APIKey = ""
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "vision.api_key") {
		t.Fatalf("expected vision.api_key error, got %v", err)
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := validConfig()
	cfg.RecordStore.Backend = "postgres"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected backend error")
	}
}

func TestValidateSQLiteBackendNeedsNoAirtableFields(t *testing.T) {
	cfg := validConfig()
	cfg.RecordStore.Backend = "sqlite"
	cfg.RecordStore.APIKey = ""
	cfg.RecordStore.BaseID = ""
	cfg.RecordStore.Table = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sqlite backend rejected: %v", err)
	}
}

func TestValidateRejectsNegativeRateLimit(t *testing.T) {
	cfg := validConfig()
	cfg.Pipeline.RateLimitMS = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected rate limit error")
	}
}

func TestLoadLayersFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[vision]
api_key = "from-file"

[pipeline]
rate_limit_ms = 250

[recordstore]
backend = "SQLite"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Vision.APIKey != "from-file" {
		t.Fatalf("vision key = %q", cfg.Vision.APIKey)
	}
	if cfg.Pipeline.RateLimitMS != 250 {
		t.Fatalf("rate limit = %d", cfg.Pipeline.RateLimitMS)
	}
	if cfg.RecordStore.Backend != "sqlite" {
		t.Fatalf("backend not normalized: %q", cfg.RecordStore.Backend)
	}
	if cfg.Vision.Model != "gpt-4o" {
		t.Fatalf("default model lost: %q", cfg.Vision.Model)
	}
}

func TestLoadMissingExplicitPathFails(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected error for missing explicit config path")
	}
}

func TestEnvOverridesApply(t *testing.T) {
	t.Setenv("LARDER_VISION_API_KEY", "env-key")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[vision]\napi_key = \"file-key\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Vision.APIKey != "env-key" {
		t.Fatalf("env override ignored: %q", cfg.Vision.APIKey)
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if _, err := config.Load(path); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}
}
