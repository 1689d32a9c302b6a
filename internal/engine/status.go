package engine

import (
	"sort"
	"strings"

	"github.com/bianoble/bucketpub/internal/cache"
	"github.com/bianoble/bucketpub/internal/fingerprint"
	"github.com/bianoble/bucketpub/internal/publish"
)

// Status diffs the walked source tree against the cache without touching the
// network: which files a publish run would consider new or changed, and
// which cached keys no longer have a local file. It says nothing about
// remote drift — only the cache's view of the last run.
func Status(files []*publish.File, c *cache.Cache, prefix string) *StatusResult {
	result := &StatusResult{}
	local := make(map[string]bool, len(files))

	for _, f := range files {
		if f.Payload.Kind != publish.PayloadBytes {
			continue
		}
		key := prefix + f.Key
		local[key] = true

		cached, ok := c.Get(key)
		switch {
		case !ok:
			result.New = append(result.New, key)
		case cached == fingerprint.Sum(f.Payload.Bytes):
			result.Unchanged = append(result.Unchanged, key)
		default:
			result.Changed = append(result.Changed, key)
		}
	}

	for _, key := range c.Keys() {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if !local[key] {
			result.Missing = append(result.Missing, key)
		}
	}

	sort.Strings(result.New)
	sort.Strings(result.Changed)
	sort.Strings(result.Unchanged)
	sort.Strings(result.Missing)
	return result
}
