package storage

import (
	"context"
	"io"
)

const ContentTypeJSON = "application/json"

// UploadResult describes an object written to the store. Location is empty when the
// bucket has no public base URL.
type UploadResult struct {
	Key      string
	Location string
	ETag     string
	Size     int64
}

// FileUploader is the object store behind standings exports (Cloudflare R2 in
// production, MemoryUploader in tests and local runs).
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)
	// Delete is idempotent: removing a missing key is not an error.
	Delete(ctx context.Context, key string) error
	GetPublicURL(key string) string
}
