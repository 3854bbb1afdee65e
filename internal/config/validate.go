package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is complete enough to run the pipeline.
// A batch must not start while Validate fails.
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateVision(); err != nil {
		return err
	}
	if err := c.validateRecordStore(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateStorage() error {
	if strings.TrimSpace(c.Storage.Endpoint) == "" {
		return errors.New("storage.endpoint is required")
	}
	if strings.TrimSpace(c.Storage.AccessKey) == "" {
		return errors.New("storage.access_key is required (or set LARDER_STORAGE_ACCESS_KEY)")
	}
	if strings.TrimSpace(c.Storage.SecretKey) == "" {
		return errors.New("storage.secret_key is required (or set LARDER_STORAGE_SECRET_KEY)")
	}
	if strings.TrimSpace(c.Storage.Bucket) == "" {
		return errors.New("storage.bucket is required")
	}
	return nil
}

func (c *Config) validateVision() error {
	if strings.TrimSpace(c.Vision.APIKey) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/larder/config.toml"
		}
		return fmt.Errorf("vision.api_key is required. Set LARDER_VISION_API_KEY or edit %s (create with 'larder config init')", defaultPath)
	}
	if strings.TrimSpace(c.Vision.Model) == "" {
		return errors.New("vision.model must be set")
	}
	if c.Vision.TimeoutSeconds <= 0 {
		return errors.New("vision.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateRecordStore() error {
	switch c.RecordStore.Backend {
	case "airtable":
		if strings.TrimSpace(c.RecordStore.APIKey) == "" {
			return errors.New("recordstore.api_key is required for the airtable backend (or set LARDER_RECORDSTORE_API_KEY)")
		}
		if strings.TrimSpace(c.RecordStore.BaseID) == "" {
			return errors.New("recordstore.base_id is required for the airtable backend")
		}
		if strings.TrimSpace(c.RecordStore.Table) == "" {
			return errors.New("recordstore.table is required for the airtable backend")
		}
	case "sqlite":
		if strings.TrimSpace(c.RecordStore.DBPath) == "" {
			return errors.New("recordstore.db_path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("recordstore.backend must be \"airtable\" or \"sqlite\", got %q", c.RecordStore.Backend)
	}
	if c.RecordStore.TimeoutSeconds <= 0 {
		return errors.New("recordstore.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.RateLimitMS < 0 {
		return errors.New("pipeline.rate_limit_ms must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
