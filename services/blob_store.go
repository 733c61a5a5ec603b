package services

import (
	"context"
)

const (
	// StoreName is the namespace of the agenda document inside each backend
	StoreName = "agenda"
	// DocumentKey is the key holding the whole appointment collection
	DocumentKey = "appointments.json"
	// DocumentContentType is the content type the collection is written with
	DocumentContentType = "application/json"
)

// BlobStore is a single persistence backend for the agenda document.
// Get returns nil data and a nil error when the key does not exist.
type BlobStore interface {
	Name() string
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, contentType string) error
}
