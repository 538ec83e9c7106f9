// Package object abstracts where uploaded game exports are kept: S3 in
// deployed environments, a local directory in dev.
package object

import (
	"context"
	"io"
)

// ObjectStore saves and retrieves raw export files. Save derives the storage
// key from the user and file name; callers persist the returned key and
// never build their own.
type ObjectStore interface {
	Save(ctx context.Context, userID string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}
