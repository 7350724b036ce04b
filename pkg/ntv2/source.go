package ntv2

import (
	"context"
	"fmt"
	"io"
	"os"
	gopath "path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Source opens grid files by path. Resolve canonicalizes a requested path
// into the cache key; Open returns the byte stream for a resolved path.
type Source interface {
	Resolve(path string) (string, error)
	Open(ctx context.Context, resolved string) (io.ReadCloser, error)
}

// FileSource reads grid files from the local filesystem.
//
// Dir, when set, is the base directory against which relative paths are
// resolved — typically a data directory holding the installed grid files.
type FileSource struct {
	Dir string
}

// Resolve returns the canonical absolute path used as the cache key.
func (s *FileSource) Resolve(path string) (string, error) {
	if s.Dir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(s.Dir, path)
	}
	return filepath.Abs(path)
}

// Open opens the resolved file for reading.
func (s *FileSource) Open(_ context.Context, resolved string) (io.ReadCloser, error) {
	return os.Open(resolved)
}

// ObjectSource reads grid files from an S3-compatible object store. Grid
// files are large and change rarely, which makes bucket-hosted distribution
// common; the whole object is streamed through the loader without being
// staged on disk.
type ObjectSource struct {
	client *minio.Client
	bucket string
}

// NewObjectSource connects to an S3-compatible endpoint with static credentials.
func NewObjectSource(endpoint, accessKey, secretKey, bucket string, secure bool) (*ObjectSource, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to object store %q: %w", endpoint, err)
	}
	return &ObjectSource{client: client, bucket: bucket}, nil
}

// NewObjectSourceFromClient wraps an already-configured client.
func NewObjectSourceFromClient(client *minio.Client, bucket string) *ObjectSource {
	return &ObjectSource{client: client, bucket: bucket}
}

// Resolve returns "bucket/key" as the cache key, so grids from different
// buckets never collide with each other or with filesystem paths.
func (s *ObjectSource) Resolve(path string) (string, error) {
	key := gopath.Clean(strings.TrimPrefix(path, "/"))
	if key == "." || key == ".." || strings.HasPrefix(key, "../") {
		return "", fmt.Errorf("invalid object key %q", path)
	}
	return s.bucket + "/" + key, nil
}

// Open streams the object. A stat round-trip first surfaces missing objects
// as an immediate error instead of a failure on the first read.
func (s *ObjectSource) Open(ctx context.Context, resolved string) (io.ReadCloser, error) {
	key := strings.TrimPrefix(resolved, s.bucket+"/")
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		return nil, fmt.Errorf("stat object %q: %w", resolved, err)
	}
	object, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %q: %w", resolved, err)
	}
	return object, nil
}
