// Package calculation holds the single in-progress utility-cost calculation,
// applies partial updates to it and keeps a durable copy in a blob store.
package calculation

import (
	"context"
)

// BlobStore is the durable key-value storage the store writes its snapshot to.
// Get returns an apperror NOT_FOUND error when the key has never been written.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, blob []byte) error
}

// Recorder observes store activity (metrics). All methods must be cheap and
// must not block.
type Recorder interface {
	Mutation(op string)
	Persisted(err error)
	Rehydrated(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) Mutation(string)   {}
func (nopRecorder) Persisted(error)   {}
func (nopRecorder) Rehydrated(string) {}
