// Package remote defines the object store interface the publish engine talks
// to, an S3 implementation, an in-memory implementation for tests, and the
// batcher that chunks bulk deletes to the store's per-call limit.
package remote

import (
	"context"
	"time"
)

// ObjectMeta describes one remote object as reported by the store.
type ObjectMeta struct {
	Key          string
	ETag         string
	LastModified time.Time
	Size         int64
}

// QueryResult is the outcome of a metadata query. Found distinguishes
// "object absent" from "object present" so callers never inspect
// transport-specific error codes; a store error that does not mean absence
// comes back as a non-nil error instead.
type QueryResult struct {
	Found bool
	Meta  ObjectMeta
}

// Store is the remote object store consumed by the publish engine.
// Implementations own retry and timeout policy; the engine adds neither.
type Store interface {
	// Query fetches metadata for key. An absent object is (QueryResult{Found:
	// false}, nil), not an error.
	Query(ctx context.Context, key string) (QueryResult, error)

	// Put writes body under key with the given headers.
	Put(ctx context.Context, key string, body []byte, headers map[string]string) error

	// List returns all object keys under prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the given keys in a single call. Callers are responsible
	// for honoring the store's per-call batch limit (see Batcher).
	Delete(ctx context.Context, keys []string) error
}
