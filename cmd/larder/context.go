package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"larder/internal/config"
	"larder/internal/logging"
	"larder/internal/pipeline"
	"larder/internal/services/recordstore"
	"larder/internal/services/storage"
	"larder/internal/services/vision"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) newLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
}

// boundServices carries the constructed collaborators plus any cleanup the
// caller must run when done.
type boundServices struct {
	storage pipeline.StorageService
	vision  pipeline.VisionService
	records pipeline.RecordStore
	cleanup func() error
}

func (c *commandContext) buildServices(logger *slog.Logger) (*boundServices, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	storageClient, err := storage.New(cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("build storage client: %w", err)
	}
	visionClient := vision.NewClient(cfg.Vision)

	bound := &boundServices{
		storage: storageClient,
		vision:  visionClient,
		cleanup: func() error { return nil },
	}
	switch cfg.RecordStore.Backend {
	case "sqlite":
		db, err := recordstore.OpenSQLite(cfg.RecordStore.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open record database: %w", err)
		}
		bound.records = db
		bound.cleanup = db.Close
	default:
		bound.records = recordstore.NewAirtable(cfg.RecordStore)
	}
	return bound, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
