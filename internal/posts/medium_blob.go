package posts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jugnunagar/folio/internal/storage"
)

var _ Medium = (*BlobMedium)(nil)

// BlobMedium stores the collection as one object at a fixed key. Every write
// deletes the previous object before putting the new one so the key never
// moves. The version is the object's ETag.
type BlobMedium struct {
	storage storage.Storage
	key     string
}

func NewBlobMedium(st storage.Storage, key string) *BlobMedium {
	return &BlobMedium{storage: st, key: key}
}

func (m *BlobMedium) Name() string { return "s3" }

func (m *BlobMedium) Init(ctx context.Context) error {
	if _, err := m.storage.Exists(ctx, m.key); err != nil {
		return fmt.Errorf("reach object store: %w", err)
	}
	return nil
}

func (m *BlobMedium) Read(ctx context.Context) ([]Post, string, error) {
	info, err := m.storage.Stat(ctx, m.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, "", ErrNoCollection
	}
	if err != nil {
		return nil, "", fmt.Errorf("stat %s: %w", m.key, err)
	}

	body, err := m.storage.Download(ctx, m.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, "", ErrNoCollection
	}
	if err != nil {
		return nil, "", fmt.Errorf("download %s: %w", m.key, err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", m.key, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []Post{}, info.ETag, nil
	}
	list, err := decode(data)
	if err != nil {
		return nil, info.ETag, err
	}
	return list, info.ETag, nil
}

func (m *BlobMedium) Write(ctx context.Context, list []Post, version string) error {
	data, err := encode(list)
	if err != nil {
		return err
	}

	current := ""
	info, err := m.storage.Stat(ctx, m.key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return fmt.Errorf("stat %s: %w", m.key, err)
	default:
		current = info.ETag
	}
	if current != version {
		return ErrVersionConflict
	}

	if current != "" {
		if err := m.storage.Delete(ctx, m.key); err != nil {
			return fmt.Errorf("delete %s: %w", m.key, err)
		}
	}
	if err := m.storage.Upload(ctx, m.key, bytes.NewReader(data), "application/json"); err != nil {
		return fmt.Errorf("upload %s: %w", m.key, err)
	}
	return nil
}
