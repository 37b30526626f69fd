package storage

import (
	"context"
	"io"
	"time"
)

// ReceiptRepository abstracts object storage for receipt images.
type ReceiptRepository interface {
	// Upload stores data under objectPath and returns the stored path.
	Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error)
	// Delete removes the object at objectPath.
	Delete(ctx context.Context, objectPath string) error
	// PresignedURL returns a temporary GET URL for objectPath.
	PresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error)
}
