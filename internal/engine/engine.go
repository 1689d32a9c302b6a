// Package engine drives a publish run end to end: it feeds files one at a
// time through the decider, keeps the published-key set, flushes the cache,
// and runs reconciliation strictly after the last file is decided.
package engine

import (
	"context"
	"fmt"

	"github.com/bianoble/bucketpub/internal/cache"
	"github.com/bianoble/bucketpub/internal/compress"
	"github.com/bianoble/bucketpub/internal/config"
	"github.com/bianoble/bucketpub/internal/publish"
	"github.com/bianoble/bucketpub/internal/reconcile"
	"github.com/bianoble/bucketpub/internal/remote"
)

// Engine orchestrates one publish run. Files flow through strictly one at a
// time; the Engine shares the cache's single-writer discipline and must not
// be used concurrently.
type Engine struct {
	Store     remote.Store
	Cache     *cache.Cache
	Prefix    string
	Headers   []config.HeaderRule
	Gzip      *compress.Rule
	Whitelist *reconcile.Whitelist
	Opts      publish.Options
	BatchSize int // keys per delete call; zero means the store default
}

// Run publishes files and, when syncDelete is on, deletes the remote objects
// no file of this run accounted for. Per-file failures are collected in the
// result and do not stop the stream; a cache flush or reconciliation failure
// aborts the run.
func (e *Engine) Run(ctx context.Context, files []*publish.File, syncDelete bool) (*Result, error) {
	decider := &publish.Decider{Store: e.Store, Cache: e.Cache, Opts: e.Opts}
	result := &Result{}
	seen := make(map[string]bool)

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if f.State != publish.StateDelete {
			if err := e.Gzip.Apply(f); err != nil {
				result.Errors = append(result.Errors, FileError{Key: f.Key, Err: err})
				continue
			}
			e.applyHeaderRules(f)
			f.Key = e.Prefix + f.Key

			// Every key seen this run is out of reconciliation's reach, failed
			// uploads included: a failed file's remote state is unknown and
			// deleting it would destroy data.
			seen[f.Key] = true
		}

		if err := decider.Publish(ctx, f); err != nil {
			result.Errors = append(result.Errors, FileError{Key: f.Key, Err: err})
			continue
		}
		result.record(f)
	}

	if err := e.Cache.Flush(); err != nil {
		return result, fmt.Errorf("flushing cache: %w", err)
	}

	if syncDelete {
		deleted, err := e.Clean(ctx, seen, e.Opts.Simulate)
		if err != nil {
			return result, err
		}
		for _, f := range reconcile.Records(deleted) {
			result.record(f)
		}
	}

	return result, nil
}

// Clean computes the delete set against keep and deletes it, removing the
// corresponding cache entries once the batched delete succeeds. With dryRun
// set it only reports what would be deleted. Returned keys are sorted.
func (e *Engine) Clean(ctx context.Context, keep map[string]bool, dryRun bool) ([]string, error) {
	rec := &reconcile.Reconciler{Store: e.Store, Prefix: e.Prefix, Whitelist: e.Whitelist}
	deletions, err := rec.DeleteSet(ctx, keep)
	if err != nil {
		return nil, err
	}
	if dryRun || len(deletions) == 0 {
		return deletions, nil
	}

	batcher := &remote.Batcher{Store: e.Store, Size: e.BatchSize}
	if err := batcher.Flush(ctx, deletions); err != nil {
		return nil, err
	}

	for _, key := range deletions {
		if err := e.Cache.Delete(key); err != nil {
			return deletions, fmt.Errorf("removing %s from cache: %w", key, err)
		}
	}
	if err := e.Cache.Flush(); err != nil {
		return deletions, fmt.Errorf("flushing cache: %w", err)
	}
	return deletions, nil
}

// applyHeaderRules copies matching configured header values onto f. Rules
// run in order and never overwrite a header an upstream stage already set,
// so the first matching rule wins per header name.
func (e *Engine) applyHeaderRules(f *publish.File) {
	for i := range e.Headers {
		if e.Headers[i].Match(f.Key) {
			for name, value := range e.Headers[i].Values {
				f.SetHeader(name, value)
			}
		}
	}
}
