package services

import "context"

// FileStore is the object-storage capability used for avatar images.
type FileStore interface {
	// PutObject stores the object under key and returns its public URL.
	PutObject(ctx context.Context, key string, body []byte, contentType string) (string, error)

	// DeleteObject removes the object stored under key. Used as the
	// compensating action when account creation fails after an upload.
	DeleteObject(ctx context.Context, key string) error
}
