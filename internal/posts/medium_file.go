package posts

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

var _ Medium = (*FileMedium)(nil)

// FileMedium keeps the collection in a single pretty-printed JSON file.
// The version is the SHA-256 of the file contents.
type FileMedium struct {
	path string
	mu   sync.Mutex
}

func NewFileMedium(path string) *FileMedium {
	return &FileMedium{path: path}
}

func (m *FileMedium) Name() string { return "file" }

func (m *FileMedium) Path() string { return m.path }

func (m *FileMedium) Init(context.Context) error {
	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".write-test-*")
	if err != nil {
		return fmt.Errorf("data dir not writable: %w", err)
	}
	name := tmp.Name()
	_ = tmp.Close()
	return os.Remove(name)
}

func (m *FileMedium) Read(context.Context) ([]Post, string, error) {
	data, version, err := m.readRaw()
	if err != nil {
		return nil, "", err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []Post{}, version, nil
	}
	list, err := decode(data)
	if err != nil {
		return nil, version, err
	}
	return list, version, nil
}

func (m *FileMedium) Write(_ context.Context, list []Post, version string) error {
	data, err := encode(list)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	_, current, err := m.readRaw()
	if err != nil && !errors.Is(err, ErrNoCollection) {
		return err
	}
	if current != version {
		return ErrVersionConflict
	}

	tmp, err := os.CreateTemp(filepath.Dir(m.path), ".blog-posts-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), m.path); err != nil {
		return fmt.Errorf("replace %s: %w", m.path, err)
	}
	return nil
}

func (m *FileMedium) readRaw() ([]byte, string, error) {
	data, err := os.ReadFile(m.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", ErrNoCollection
	}
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", m.path, err)
	}
	sum := sha256.Sum256(data)
	return data, hex.EncodeToString(sum[:]), nil
}

// ReadSeed loads a collection file for seeding another medium. A missing
// file yields an empty collection.
func ReadSeed(path string) ([]Post, error) {
	list, _, err := NewFileMedium(path).Read(context.Background())
	if errors.Is(err, ErrNoCollection) {
		return []Post{}, nil
	}
	return list, err
}
