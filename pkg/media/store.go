package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store is the media-host boundary: uploads return a public URL paired with
// an opaque object id, and Destroy removes the stored object. Any
// S3-compatible host is substitutable.
type Store interface {
	Upload(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (url, publicID string, err error)
	Destroy(ctx context.Context, publicID string) error
}

// Config is read from the environment; see FromEnv.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// FromEnv builds the media store config from MEDIA_* variables with local
// development defaults.
func FromEnv() Config {
	cfg := Config{
		Endpoint:  os.Getenv("MEDIA_ENDPOINT"),
		AccessKey: os.Getenv("MEDIA_ACCESS_KEY"),
		SecretKey: os.Getenv("MEDIA_SECRET_KEY"),
		Bucket:    os.Getenv("MEDIA_BUCKET"),
		UseSSL:    strings.EqualFold(os.Getenv("MEDIA_USE_SSL"), "true"),
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:9000"
	}
	if cfg.AccessKey == "" {
		cfg.AccessKey = "minioadmin"
	}
	if cfg.SecretKey == "" {
		cfg.SecretKey = "minioadmin"
	}
	if cfg.Bucket == "" {
		cfg.Bucket = "the-shop-cards"
	}
	return cfg
}

type objectStore struct {
	client *minio.Client
	bucket string
}

// Open connects to the object store and ensures the bucket exists. The
// returned store has no hidden global state; callers own its lifecycle.
func Open(ctx context.Context, cfg Config) (Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("media: connect %s: %w", cfg.Endpoint, err)
	}
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("media: check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("media: create bucket %s: %w", cfg.Bucket, err)
		}
	}
	return &objectStore{client: client, bucket: cfg.Bucket}, nil
}

func (s *objectStore) Upload(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, string, error) {
	publicID := uuid.NewString() + strings.ToLower(path.Ext(filename))
	_, err := s.client.PutObject(ctx, s.bucket, publicID, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", "", fmt.Errorf("media: upload %s: %w", filename, err)
	}
	url := fmt.Sprintf("%s/%s/%s", s.client.EndpointURL(), s.bucket, publicID)
	return url, publicID, nil
}

func (s *objectStore) Destroy(ctx context.Context, publicID string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, publicID, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("media: destroy %s: %w", publicID, err)
	}
	return nil
}
