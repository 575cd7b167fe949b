// Package s3 stores marker photos in an S3-compatible bucket through MinIO's client.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/illmade-knight/markermap/pkg/markers"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// Config describes the S3 endpoint and credentials.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Region    string
	Bucket    string
	// PublicBaseURL overrides the endpoint when building download URLs.
	PublicBaseURL string
}

// ImageStore is a markers.BlobStore backed by an S3-compatible bucket.
type ImageStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
	logger  zerolog.Logger
}

// NewImageStore connects to the configured endpoint.
func NewImageStore(cfg Config, logger zerolog.Logger) (*ImageStore, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("s3 image store: endpoint, access key and secret key are required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("s3 image store: bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	base := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if base == "" {
		base = strings.TrimRight(client.EndpointURL().String(), "/")
	}

	logger.Info().Str("endpoint", cfg.Endpoint).Str("bucket", cfg.Bucket).Msg("Connected to S3 endpoint")
	return &ImageStore{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: base,
		logger:  logger.With().Str("component", "s3-image-store").Str("bucket", cfg.Bucket).Logger(),
	}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *ImageStore) EnsureBucket(ctx context.Context, region string) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("error checking bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	s.logger.Info().Msg("Created bucket")
	return nil
}

// Upload puts the image bytes under key.
func (s *ImageStore) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(
		ctx,
		s.bucket,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return fmt.Errorf("failed to store object %s: %w", key, err)
	}
	s.logger.Debug().Str("key", key).Int("bytes", len(data)).Msg("Uploaded image")
	return nil
}

// DownloadURL confirms the object exists and returns base/bucket/key.
func (s *ImageStore) DownloadURL(ctx context.Context, key string) (string, error) {
	if err := s.stat(ctx, key); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s", s.baseURL, s.bucket, escapeKey(key)), nil
}

// Delete removes an object given its key or download URL. S3 deletes are
// silent about missing keys, so existence is checked first.
func (s *ImageStore) Delete(ctx context.Context, keyOrURL string) error {
	key, err := s.ObjectKey(keyOrURL)
	if err != nil {
		return err
	}
	if err := s.stat(ctx, key); err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %s: %w", key, err)
	}
	return nil
}

func (s *ImageStore) stat(ctx context.Context, key string) error {
	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("object %s: %w", key, markers.ErrNotFound)
	}
	return fmt.Errorf("failed to stat object %s: %w", key, err)
}

// ObjectKey resolves a key or download URL to the object key.
func (s *ImageStore) ObjectKey(keyOrURL string) (string, error) {
	ref := strings.TrimSpace(keyOrURL)
	if !strings.Contains(ref, "://") {
		return ref, nil
	}
	prefix := s.baseURL + "/" + s.bucket + "/"
	if !strings.HasPrefix(ref, prefix) {
		return "", fmt.Errorf("reference %q is outside %s", keyOrURL, prefix)
	}
	return url.PathUnescape(strings.TrimPrefix(ref, prefix))
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i := range parts {
		parts[i] = url.PathEscape(parts[i])
	}
	return strings.Join(parts, "/")
}
