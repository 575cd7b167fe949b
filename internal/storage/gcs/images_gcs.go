// Package gcs stores marker photos in Google Cloud Storage.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/illmade-knight/markermap/pkg/markers"
	"github.com/rs/zerolog"
)

const defaultPublicBaseURL = "https://storage.googleapis.com"

// ImageStore is a markers.BlobStore backed by a single GCS bucket.
// Download references are public object URLs, so the bucket is expected to
// grant allUsers object read through uniform access.
type ImageStore struct {
	client        *storage.Client
	bucket        string
	publicBaseURL string
	logger        zerolog.Logger
}

// NewImageStore creates a GCS-backed image store. An empty publicBaseURL uses
// https://storage.googleapis.com.
func NewImageStore(client *storage.Client, bucket, publicBaseURL string, logger zerolog.Logger) *ImageStore {
	base := strings.TrimRight(strings.TrimSpace(publicBaseURL), "/")
	if base == "" {
		base = defaultPublicBaseURL
	}
	return &ImageStore{
		client:        client,
		bucket:        strings.TrimSpace(bucket),
		publicBaseURL: base,
		logger:        logger.With().Str("component", "gcs-image-store").Str("bucket", bucket).Logger(),
	}
}

func (s *ImageStore) object(key string) (*storage.ObjectHandle, error) {
	if s.client == nil {
		return nil, errors.New("gcs image store: storage client is nil")
	}
	if s.bucket == "" {
		return nil, errors.New("gcs image store: bucket is empty")
	}
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return nil, errors.New("gcs image store: object key is empty")
	}
	return s.client.Bucket(s.bucket).Object(key), nil
}

// Upload writes the image bytes to bucket/key.
func (s *ImageStore) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	oh, err := s.object(key)
	if err != nil {
		return err
	}
	w := oh.NewWriter(ctx)
	if ct := strings.TrimSpace(contentType); ct != "" {
		w.ContentType = ct
	}
	// Single request upload; images are small.
	w.ChunkSize = 0
	w.Metadata = map[string]string{
		"uploadedAt": time.Now().UTC().Format(time.RFC3339),
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize object %s: %w", key, err)
	}
	s.logger.Debug().Str("key", key).Int("bytes", len(data)).Msg("Uploaded image")
	return nil
}

// DownloadURL confirms the object exists and returns its public URL.
func (s *ImageStore) DownloadURL(ctx context.Context, key string) (string, error) {
	oh, err := s.object(key)
	if err != nil {
		return "", err
	}
	if _, err := oh.Attrs(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return "", fmt.Errorf("object %s: %w", key, markers.ErrNotFound)
		}
		return "", err
	}
	return PublicURL(s.publicBaseURL, s.bucket, oh.ObjectName()), nil
}

// Delete removes an object given its key or a URL produced by DownloadURL.
func (s *ImageStore) Delete(ctx context.Context, keyOrURL string) error {
	key, err := s.ObjectName(keyOrURL)
	if err != nil {
		return err
	}
	oh, err := s.object(key)
	if err != nil {
		return err
	}
	if err := oh.Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("object %s: %w", key, markers.ErrNotFound)
		}
		return err
	}
	return nil
}

// ObjectName resolves a key or URL to the object name inside this store's bucket.
func (s *ImageStore) ObjectName(keyOrURL string) (string, error) {
	ref := strings.TrimSpace(keyOrURL)
	if !strings.Contains(ref, "://") {
		return ref, nil
	}
	if strings.HasPrefix(ref, s.publicBaseURL+"/") {
		rest := strings.TrimPrefix(ref, s.publicBaseURL+"/")
		bucket, obj, ok := strings.Cut(rest, "/")
		if ok && bucket == s.bucket {
			return url.PathUnescape(obj)
		}
	}
	bucket, obj, ok := ParseGCSURL(ref)
	if !ok {
		return "", fmt.Errorf("not a storage reference: %q", keyOrURL)
	}
	if bucket != s.bucket {
		return "", fmt.Errorf("reference %q belongs to bucket %q, not %q", keyOrURL, bucket, s.bucket)
	}
	return obj, nil
}

// PublicURL builds base/bucket/object, escaping each path segment.
func PublicURL(base, bucket, objectPath string) string {
	parts := strings.Split(strings.TrimLeft(objectPath, "/"), "/")
	for i := range parts {
		parts[i] = url.PathEscape(parts[i])
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(base, "/"), bucket, strings.Join(parts, "/"))
}

// ParseGCSURL parses a GCS-like URL and returns (bucket, objectPath, ok).
// Accepted forms:
//   - https://storage.googleapis.com/<bucket>/<object>
//   - https://storage.cloud.google.com/<bucket>/<object>
//   - gs://<bucket>/<object>
func ParseGCSURL(u string) (string, string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(u))
	if err != nil {
		return "", "", false
	}

	if parsed.Scheme == "gs" {
		obj := strings.TrimLeft(parsed.Path, "/")
		if parsed.Host == "" || obj == "" {
			return "", "", false
		}
		return parsed.Host, obj, true
	}

	host := strings.ToLower(parsed.Host)
	if host != "storage.googleapis.com" && host != "storage.cloud.google.com" {
		return "", "", false
	}

	p := strings.TrimLeft(parsed.EscapedPath(), "/")
	bucket, escaped, ok := strings.Cut(p, "/")
	if !ok || bucket == "" || escaped == "" {
		return "", "", false
	}
	objectPath, err := url.PathUnescape(escaped)
	if err != nil {
		return "", "", false
	}
	return bucket, objectPath, true
}
