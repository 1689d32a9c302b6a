// Package cache persists the key→fingerprint mapping that records what was
// last published to the bucket. It is what lets an unchanged file skip the
// network entirely on the next run.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultFlushEvery is the number of mutations between opportunistic flushes
// during a run. The final flush at run completion is unconditional.
const DefaultFlushEvery = 10

// Cache is the persisted remote-state cache: one entry per remote key holding
// the fingerprint of the content last successfully published under that key.
//
// A single run is the only writer. Two concurrent runs sharing one cache file
// is undefined behavior; the cache makes no attempt to lock the file.
type Cache struct {
	path       string
	entries    map[string]string
	mutations  int
	flushEvery int
}

// DefaultPath returns the cache file path for a bucket, in the working
// directory: .bucketpub-<bucket>.yaml.
func DefaultPath(bucket string) string {
	return filepath.Join(".", ".bucketpub-"+bucket+".yaml")
}

// Load reads the cache file at path. A missing or unparsable file yields an
// empty cache: losing the cache only costs redundant uploads, never
// correctness, so corruption is recovered locally rather than surfaced.
func Load(path string, flushEvery int) *Cache {
	if flushEvery <= 0 {
		flushEvery = DefaultFlushEvery
	}
	c := &Cache{
		path:       path,
		entries:    make(map[string]string),
		flushEvery: flushEvery,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return c
	}

	var entries map[string]string
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return c
	}
	if entries != nil {
		c.entries = entries
	}
	return c
}

// Get returns the fingerprint recorded for key, if any.
func (c *Cache) Get(key string) (string, bool) {
	fp, ok := c.entries[key]
	return fp, ok
}

// Set records a fingerprint for key, overwriting any previous entry.
// Every flushEvery-th mutation triggers an opportunistic flush so a crashed
// run loses at most flushEvery decisions.
func (c *Cache) Set(key, fingerprint string) error {
	c.entries[key] = fingerprint
	return c.countMutation()
}

// Delete removes the entry for key. Deleting an absent key is a no-op and
// does not count as a mutation.
func (c *Cache) Delete(key string) error {
	if _, ok := c.entries[key]; !ok {
		return nil
	}
	delete(c.entries, key)
	return c.countMutation()
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Keys returns all cached keys, sorted.
func (c *Cache) Keys() []string {
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Path returns the cache file path.
func (c *Cache) Path() string {
	return c.path
}

// Flush writes the full mapping to the cache file, atomically via a temp
// file and rename. The previous file content is replaced wholesale.
func (c *Cache) Flush() error {
	data, err := yaml.Marshal(c.entries)
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating cache directory %s: %w", dir, err)
		}
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing temp cache file %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, c.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming temp cache file to %s: %w", c.path, err)
	}

	c.mutations = 0
	return nil
}

func (c *Cache) countMutation() error {
	c.mutations++
	if c.mutations >= c.flushEvery {
		return c.Flush()
	}
	return nil
}
