// ABOUTME: Store interface and bucket names for collegia-core persistence
// ABOUTME: Each state service owns one named bucket holding a serialized JSON document

package store

import (
	"context"
	"errors"
)

// Bucket names owned by the state services. Each service reads and writes
// exactly one bucket; buckets are never shared.
const (
	BucketFeed          = "feed"
	BucketMessaging     = "messaging"
	BucketNotifications = "notifications"
	BucketProfile       = "profile"
)

// ErrNotFound is returned when a requested bucket does not exist
var ErrNotFound = errors.New("not found")

// Store defines the interface for durable bucket persistence. Values are
// opaque JSON blobs; the owning service defines their shape.
type Store interface {
	// Get returns the blob stored under bucket, or ErrNotFound.
	Get(ctx context.Context, bucket string) ([]byte, error)

	// Put creates or replaces the blob stored under bucket.
	Put(ctx context.Context, bucket string, blob []byte) error

	// Delete removes a bucket. Deleting a missing bucket is not an error.
	Delete(ctx context.Context, bucket string) error

	// Close releases underlying resources.
	Close() error
}
