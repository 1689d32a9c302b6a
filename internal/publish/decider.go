package publish

import (
	"context"
	"fmt"
	"time"

	"github.com/bianoble/bucketpub/internal/cache"
	"github.com/bianoble/bucketpub/internal/fingerprint"
	"github.com/bianoble/bucketpub/internal/remote"
)

// Options configure a publish run's decision behavior.
type Options struct {
	// Force re-uploads files even when the cache or the remote object says
	// the content is unchanged.
	Force bool

	// CreateOnly never overwrites an existing remote object; it is skipped
	// instead.
	CreateOnly bool

	// Simulate classifies files without any store interaction.
	Simulate bool

	// NoACL suppresses the default public-read ACL header.
	NoACL bool

	// Encodings maps a compression-pass filename suffix to its
	// Content-Encoding value, e.g. ".gz" → "gzip".
	Encodings map[string]string
}

// Decider classifies one file at a time against the cache and the remote
// store and performs the resulting upload. It mutates the File in place and
// keeps the cache entry for the key in step with what was written.
//
// Files flow through strictly one at a time; Decider shares the cache's
// single-writer discipline and is not safe for concurrent use.
type Decider struct {
	Store remote.Store
	Cache *cache.Cache
	Opts  Options
}

// Publish runs the per-file state machine on f. On return f carries its
// final state, fingerprint, timestamp and applied headers; a non-nil error
// means this file failed and its state is unset, without affecting files
// already processed.
func (d *Decider) Publish(ctx context.Context, f *File) error {
	switch f.Payload.Kind {
	case PayloadStream:
		return &UnsupportedPayloadError{Key: f.Key}
	case PayloadEmpty:
		// Nothing to hash or upload; delete markers and other contentless
		// records pass through unchanged.
		return nil
	}

	if f.State == StateDelete {
		// Marked for deletion upstream. No cache or store interaction here;
		// the deletion itself is the reconciler's job.
		return nil
	}

	f.Fingerprint = fingerprint.Sum(f.Payload.Bytes)

	if !d.Opts.Force {
		if cached, ok := d.Cache.Get(f.Key); ok && cached == f.Fingerprint {
			f.State = StateCacheHit
			return nil
		}
	}

	deriveHeaders(f, d.Opts.Encodings, d.Opts.NoACL)

	if d.Opts.Simulate {
		f.State = StateSimulate
		return nil
	}

	res, err := d.Store.Query(ctx, f.Key)
	if err != nil {
		return &RemoteQueryError{Key: f.Key, Err: err}
	}

	switch {
	case !res.Found:
		f.State = StateCreate
	case d.Opts.CreateOnly:
		f.State = StateSkip
		return nil
	case !d.Opts.Force && fingerprint.MatchesETag(f.Fingerprint, res.Meta.ETag):
		f.State = StateSkip
		return nil
	default:
		f.State = StateUpdate
	}

	if err := d.Store.Put(ctx, f.Key, f.Payload.Bytes, f.Headers); err != nil {
		f.State = StateUnknown
		return &RemoteWriteError{Key: f.Key, Err: err}
	}
	f.PublishedAt = time.Now()

	if err := d.Cache.Set(f.Key, f.Fingerprint); err != nil {
		return fmt.Errorf("recording %s in cache: %w", f.Key, err)
	}
	return nil
}
