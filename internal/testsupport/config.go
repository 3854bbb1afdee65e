package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"larder/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a valid config seeded with unique temp paths per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Storage.Endpoint = "minio.test:9000"
	cfg.Storage.AccessKey = "test-access"
	cfg.Storage.SecretKey = "test-secret"
	cfg.Storage.Bucket = "recipes"
	cfg.Vision.APIKey = "test-key"
	cfg.RecordStore.Backend = "sqlite"
	cfg.RecordStore.DBPath = filepath.Join(base, "recipes.db")
	cfg.Pipeline.RateLimitMS = 0
	cfg.Pipeline.LockPath = filepath.Join(base, "larder.lock")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithAirtable switches the record store to the hosted backend.
func WithAirtable(apiKey, baseID, table string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.RecordStore.Backend = "airtable"
		cfg.RecordStore.APIKey = apiKey
		cfg.RecordStore.BaseID = baseID
		cfg.RecordStore.Table = table
	}
}

// WithRateLimit sets the inter-call spacing in milliseconds.
func WithRateLimit(ms int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Pipeline.RateLimitMS = ms
	}
}

// WriteImage drops a small file into dir and returns its path.
func WriteImage(t testing.TB, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("test-image-bytes"), 0o644); err != nil {
		t.Fatalf("write test image: %v", err)
	}
	return path
}
