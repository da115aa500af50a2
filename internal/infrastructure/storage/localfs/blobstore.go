package localfs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
)

// BlobStore exposes Storage as a single-blob backup target for local deployments.
type BlobStore struct {
	storage *Storage
}

func NewBlobStore(storage *Storage) *BlobStore {
	return &BlobStore{storage: storage}
}

func (b *BlobStore) Put(ctx context.Context, name string, data []byte) error {
	return b.storage.Save(ctx, name, bytes.NewReader(data))
}

func (b *BlobStore) Get(ctx context.Context, name string) ([]byte, bool, error) {
	rc, err := b.storage.Open(ctx, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, false, fmt.Errorf("read blob: %w", err)
	}
	return data, true, nil
}
