package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/online-social/apiserver/config"
)

// Backend is a bucket that holds publicly readable media objects.
type Backend interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// ObjectURL is the URL the backend itself serves key from.
	ObjectURL(key string) string
	Bucket() string
}

// Storage is the media store. Objects are written through a Backend and
// addressed publicly under baseURL when one is configured.
type Storage struct {
	backend Backend
	baseURL string
}

// New wraps backend. An empty publicBaseURL falls back to the backend's own
// object URLs.
func New(backend Backend, publicBaseURL string) *Storage {
	return &Storage{
		backend: backend,
		baseURL: strings.TrimRight(strings.TrimSpace(publicBaseURL), "/"),
	}
}

// Open builds the backend selected by cfg.Storage.Backend and makes sure its
// bucket exists.
func Open(ctx context.Context, cfg config.Config) (*Storage, error) {
	var (
		backend Backend
		err     error
	)
	switch cfg.Storage.Backend {
	case "", "minio":
		backend, err = NewMinioClient(cfg.Minio)
	case "gcs":
		backend, err = NewGCSClient(ctx, cfg.GCS)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	if err != nil {
		return nil, err
	}

	if err := backend.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket %s: %w", backend.Bucket(), err)
	}
	return New(backend, cfg.Storage.PublicBaseURL), nil
}

// Put uploads an object.
func (s *Storage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	return s.backend.Put(ctx, key, r, size, contentType)
}

// PublicURL returns the URL clients use to fetch key.
func (s *Storage) PublicURL(key string) string {
	if s.baseURL == "" {
		return s.backend.ObjectURL(key)
	}
	return s.baseURL + "/" + escapeKey(key)
}

func escapeKey(key string) string {
	parts := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
