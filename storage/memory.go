package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
)

// MemoryUploader keeps uploaded objects in memory.
type MemoryUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	base    *url.URL
}

func NewMemoryUploader(publicBaseURL string) *MemoryUploader {
	base, _ := url.Parse(publicBaseURL)
	if publicBaseURL == "" {
		base = nil
	}
	return &MemoryUploader{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
		base:    base,
	}
}

func (u *MemoryUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.objects[key] = data
	u.types[key] = contentType
	return &UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *MemoryUploader) Delete(ctx context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.objects, key)
	delete(u.types, key)
	return nil
}

func (u *MemoryUploader) GetPublicURL(key string) string {
	return publicURL(u.base, key)
}

// Object returns a stored object and its content type.
func (u *MemoryUploader) Object(key string) ([]byte, string, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	data, ok := u.objects[key]
	return data, u.types[key], ok
}
