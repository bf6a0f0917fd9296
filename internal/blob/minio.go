package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/atende-ai/atende/pkg/logger"
	"github.com/minio/minio-go/v7"
)

// MinIOStore implements Store on top of a MinIO (S3-compatible) client.
type MinIOStore struct {
	client *minio.Client
	bucket string
	log    *logger.Logger
}

// NewMinIOStore creates a MinIOStore writing to the given default bucket.
func NewMinIOStore(client *minio.Client, bucket string, log *logger.Logger) *MinIOStore {
	return &MinIOStore{client: client, bucket: bucket, log: log}
}

// Get fetches the full object content from the given bucket and key.
func (s *MinIOStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.wrapErr(err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.wrapErr(err)
	}
	return data, nil
}

// Put writes an object into the default bucket and returns the key.
func (s *MinIOStore) Put(ctx context.Context, key string, data []byte, contentType string, metadata map[string]string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: metadata,
	})
	if err != nil {
		return "", s.wrapErr(err)
	}
	return key, nil
}

// Delete removes an object from the default bucket.
func (s *MinIOStore) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return s.wrapErr(err)
	}
	return nil
}

// Bucket returns the default bucket name.
func (s *MinIOStore) Bucket() string {
	return s.bucket
}

func (s *MinIOStore) wrapErr(err error) error {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("%w: %s", ErrNotFound, resp.Key)
	case "AccessDenied":
		return fmt.Errorf("%w: %s", ErrAccessDenied, resp.Key)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

var _ Store = (*MinIOStore)(nil)
