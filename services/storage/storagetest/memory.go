// Package storagetest provides an in-memory ObjectStore.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"aliadolaboral/services/storage"
)

// Memory keeps uploaded objects in a map and hands out fake signed URLs.
type Memory struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Deleted []string
}

var (
	_ storage.ObjectStore = (*Memory)(nil)
	_ storage.ImageHost   = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{Objects: map[string][]byte{}}
}

func (m *Memory) Upload(ctx context.Context, path, contentType string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[path] = data
	return nil
}

func (m *Memory) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, path)
	m.Deleted = append(m.Deleted, path)
	return nil
}

func (m *Memory) SignedUploadURL(path, contentType string, ttl time.Duration) (string, error) {
	return "https://storage.example/put/" + path, nil
}

func (m *Memory) SignedDownloadURL(path string, ttl time.Duration) (string, error) {
	return "https://storage.example/get/" + path, nil
}

// Has reports whether path is stored.
func (m *Memory) Has(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Objects[path]
	return ok
}

// UploadImage stores data under folder and returns a fake CDN URL.
func (m *Memory) UploadImage(ctx context.Context, data []byte, folder string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path := fmt.Sprintf("%s/img-%d", folder, len(m.Objects)+1)
	m.Objects[path] = data
	return "https://cdn.example/" + path, nil
}

func (m *Memory) DeleteImage(ctx context.Context, publicID string) error {
	return m.Delete(ctx, publicID)
}
