// Package reconcile diffs the bucket's live listing against the keys
// published in the current run and computes the objects to delete.
package reconcile

import (
	"context"
	"fmt"
	"sort"

	"github.com/bianoble/bucketpub/internal/publish"
	"github.com/bianoble/bucketpub/internal/remote"
)

// Reconciler lists the bucket under Prefix and turns every key that was
// neither published this run nor whitelisted into a deletion.
type Reconciler struct {
	Store     remote.Store
	Prefix    string
	Whitelist *Whitelist
}

// DeleteSet lists the bucket and returns, sorted, the keys to delete:
// remote keys under the prefix minus published minus whitelist matches.
// Call it only after every file of the run has been decided, so deletions
// never race an in-flight create.
func (r *Reconciler) DeleteSet(ctx context.Context, published map[string]bool) ([]string, error) {
	keys, err := r.Store.List(ctx, r.Prefix)
	if err != nil {
		return nil, fmt.Errorf("listing bucket under %q: %w", r.Prefix, err)
	}

	var deletions []string
	for _, key := range keys {
		if published[key] {
			continue
		}
		if r.Whitelist.Match(key) {
			continue
		}
		deletions = append(deletions, key)
	}
	sort.Strings(deletions)
	return deletions, nil
}

// Records wraps delete-set keys as contentless delete-state files so callers
// observe deletions through the same record type as uploads.
func Records(keys []string) []*publish.File {
	files := make([]*publish.File, len(keys))
	for i, key := range keys {
		files[i] = publish.DeleteMarker(key)
	}
	return files
}
