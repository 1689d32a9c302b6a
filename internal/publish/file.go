// Package publish holds the per-file publish decision engine: the File
// record that flows through a run, header derivation, and the Decider state
// machine that classifies each file against the cache and the remote store.
package publish

import "time"

// State is a file's lifecycle classification for the current run.
type State string

const (
	// StateUnknown is the zero state before a file reaches the decider.
	StateUnknown State = ""

	// StateCreate means no remote object existed and one was written.
	StateCreate State = "create"

	// StateUpdate means the remote object existed with different content and
	// was overwritten.
	StateUpdate State = "update"

	// StateSkip means the remote object already matches, or exists while the
	// run is create-only; nothing was written.
	StateSkip State = "skip"

	// StateCacheHit means the cache already records this exact content for
	// this key; the decider made no store call at all.
	StateCacheHit State = "cache-hit"

	// StateDelete marks a file for deletion. Set upstream by the caller or by
	// reconciliation; the decider passes such files through untouched.
	StateDelete State = "delete"

	// StateSimulate is the classification left on a file in dry-run mode,
	// where the decider stops before any store interaction.
	StateSimulate State = "simulate"
)

// PayloadKind discriminates the payload variants a File can carry.
type PayloadKind int

const (
	// PayloadEmpty is a file with no content (directories, delete markers).
	PayloadEmpty PayloadKind = iota

	// PayloadBytes is fully buffered content.
	PayloadBytes

	// PayloadStream is streaming content, which the decider does not support.
	PayloadStream
)

// Payload is a tagged union over the content variants.
type Payload struct {
	Kind  PayloadKind
	Bytes []byte
}

// BytesPayload wraps buffered content.
func BytesPayload(b []byte) Payload { return Payload{Kind: PayloadBytes, Bytes: b} }

// EmptyPayload is a payload with no content.
func EmptyPayload() Payload { return Payload{Kind: PayloadEmpty} }

// StreamPayload marks content as streaming. The decider rejects it with
// UnsupportedPayloadError; it exists so upstream stages can hand over
// whatever they were given and get a well-defined failure.
func StreamPayload() Payload { return Payload{Kind: PayloadStream} }

// File is one file moving through a publish run. The decider mutates State,
// Fingerprint, PublishedAt and Headers in place and the record is then
// handed downstream for caching and reporting.
type File struct {
	// Path is the original relative path, OS-native separators allowed.
	Path string

	// Key is the remote object key derived from Path: forward-slash, cleaned.
	Key string

	// Payload is the file content variant.
	Payload Payload

	// Headers are the publish headers attached on upload. Entries set before
	// the decider runs take precedence over anything it would infer.
	Headers map[string]string

	State       State
	Fingerprint string
	PublishedAt time.Time
}

// NewFile builds a File with a normalized remote key from relPath.
func NewFile(relPath string, content []byte) (*File, error) {
	key, err := KeyFor(relPath)
	if err != nil {
		return nil, err
	}
	return &File{
		Path:    relPath,
		Key:     key,
		Payload: BytesPayload(content),
		Headers: make(map[string]string),
	}, nil
}

// DeleteMarker builds a contentless File already in delete state, as emitted
// by reconciliation for remote keys with no local counterpart.
func DeleteMarker(key string) *File {
	return &File{
		Path:    key,
		Key:     key,
		Payload: EmptyPayload(),
		Headers: make(map[string]string),
		State:   StateDelete,
	}
}

// SetHeader sets a header only if no upstream stage already set it.
func (f *File) SetHeader(name, value string) {
	if f.Headers == nil {
		f.Headers = make(map[string]string)
	}
	if _, ok := f.Headers[name]; !ok {
		f.Headers[name] = value
	}
}
