package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
)

// Store keeps backup blobs in a Cloud Storage bucket using application default credentials.
type Store struct {
	client *storage.Client
	bucket *storage.BucketHandle
}

func New(ctx context.Context, bucket string, opts ...option.ClientOption) (*Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs: bucket is required")
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}
	return &Store{client: client, bucket: client.Bucket(bucket)}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	writer := s.bucket.Object(name).NewWriter(ctx)
	writer.ContentType = "application/octet-stream"
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return wrapError("put backup blob", err)
	}
	if err := writer.Close(); err != nil {
		return wrapError("finalize backup blob", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, name string) ([]byte, bool, error) {
	reader, err := s.bucket.Object(name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, false, nil
		}
		return nil, false, wrapError("get backup blob", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, false, wrapError("read backup blob", err)
	}
	return data, true, nil
}

func wrapError(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden) {
		return domain.WrapError(domain.ErrCredential, op, err)
	}
	return domain.WrapError(domain.ErrSync, op, err)
}
