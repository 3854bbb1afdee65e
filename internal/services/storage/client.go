package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"larder/internal/config"
	"larder/internal/logging"
	"larder/internal/services"
)

const objectPrefix = "recipes"

// Client implements the pipeline's StorageService against an S3-compatible
// endpoint.
type Client struct {
	mc            *minio.Client
	bucket        string
	publicBaseURL string
	useSSL        bool
	endpoint      string
	logger        *slog.Logger
	now           func() time.Time
}

// New constructs a storage client from configuration.
func New(cfg config.Storage, logger *slog.Logger) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, services.Wrap(services.ErrConfiguration, "upload", "", "storage endpoint not configured", nil)
	}
	mc, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "upload", "init client", "", err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{
		mc:            mc,
		bucket:        strings.TrimSpace(cfg.Bucket),
		publicBaseURL: strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/"),
		useSSL:        cfg.UseSSL,
		endpoint:      endpoint,
		logger:        logger.With(logging.String("component", "storage")),
		now:           time.Now,
	}, nil
}

// Upload stores the file bytes under a generated object key and returns the
// public URL of the uploaded photo.
func (c *Client) Upload(ctx context.Context, data []byte, contentType, suggestedName string) (string, error) {
	key := c.objectKey(suggestedName)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	info, err := c.mc.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", services.Wrap(services.ErrTransport, "upload", "put object", key, err)
	}

	url := c.publicURL(key)
	c.logger.Debug("photo uploaded",
		logging.String("object", key),
		logging.String("url", url),
		logging.Int("size", int(info.Size)),
	)
	return url, nil
}

// TestConnection verifies the configured bucket is reachable before a batch
// starts.
func (c *Client) TestConnection(ctx context.Context) error {
	exists, err := c.mc.BucketExists(ctx, c.bucket)
	if err != nil {
		return services.Wrap(services.ErrTransport, "upload", "check bucket", c.bucket, err)
	}
	if !exists {
		return services.Wrap(services.ErrConfiguration, "upload", "", fmt.Sprintf("bucket %q does not exist", c.bucket), nil)
	}
	return nil
}

// objectKey builds a collision-resistant key from the suggested file name.
func (c *Client) objectKey(suggestedName string) string {
	return fmt.Sprintf("%s/%d_%s", objectPrefix, c.now().UnixMilli(), sanitizeName(suggestedName))
}

func (c *Client) publicURL(key string) string {
	if c.publicBaseURL != "" {
		return c.publicBaseURL + "/" + key
	}
	scheme := "http"
	if c.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, c.endpoint, c.bucket, key)
}

// sanitizeName keeps object keys portable: anything outside [a-zA-Z0-9._-]
// becomes an underscore.
func sanitizeName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "photo"
	}
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
