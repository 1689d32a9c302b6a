package remote

import (
	"context"
	"fmt"
)

// MaxBatchSize is the S3 DeleteObjects per-call limit.
const MaxBatchSize = 1000

// Batcher chunks a delete set into bounded batches for the store.
type Batcher struct {
	Store Store
	Size  int // keys per call; defaults to MaxBatchSize
}

// Flush deletes keys in batches. On the first failing batch it stops and
// returns that error; batches already deleted are not restored, so a failed
// flush leaves a partially deleted set.
func (b *Batcher) Flush(ctx context.Context, keys []string) error {
	size := b.Size
	if size <= 0 {
		size = MaxBatchSize
	}

	for start := 0; start < len(keys); start += size {
		end := start + size
		if end > len(keys) {
			end = len(keys)
		}
		if err := b.Store.Delete(ctx, keys[start:end]); err != nil {
			return fmt.Errorf("delete batch %d-%d of %d: %w", start, end-1, len(keys), err)
		}
	}
	return nil
}
