package engine

import "github.com/bianoble/bucketpub/internal/publish"

// FileAction records one file's outcome in a run.
type FileAction struct {
	Key   string
	State publish.State
}

// FileError is an error associated with a specific file.
type FileError struct {
	Key string
	Err error
}

func (e FileError) Error() string {
	return e.Key + ": " + e.Err.Error()
}

func (e FileError) Unwrap() error {
	return e.Err
}

// Result holds the outcome of a publish run, bucketed by state.
type Result struct {
	Created   []FileAction
	Updated   []FileAction
	Skipped   []FileAction
	CacheHits []FileAction
	Simulated []FileAction
	Deleted   []FileAction
	Errors    []FileError
}

// Uploaded returns the number of objects actually written.
func (r *Result) Uploaded() int {
	return len(r.Created) + len(r.Updated)
}

// Unchanged returns the number of files that needed no upload.
func (r *Result) Unchanged() int {
	return len(r.Skipped) + len(r.CacheHits)
}

func (r *Result) record(f *publish.File) {
	action := FileAction{Key: f.Key, State: f.State}
	switch f.State {
	case publish.StateCreate:
		r.Created = append(r.Created, action)
	case publish.StateUpdate:
		r.Updated = append(r.Updated, action)
	case publish.StateSkip:
		r.Skipped = append(r.Skipped, action)
	case publish.StateCacheHit:
		r.CacheHits = append(r.CacheHits, action)
	case publish.StateSimulate:
		r.Simulated = append(r.Simulated, action)
	case publish.StateDelete:
		r.Deleted = append(r.Deleted, action)
	}
}

// StatusResult is the local-only diff of the source tree against the cache.
type StatusResult struct {
	New       []string // locally present, not in the cache
	Changed   []string // cached with a different fingerprint
	Unchanged []string // cached with the same fingerprint
	Missing   []string // cached but no local file; sync would delete these
}
