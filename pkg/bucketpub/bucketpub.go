// Package bucketpub is the public API surface: it re-exports the engine and
// publish types so embedders drive runs without importing internal packages.
package bucketpub

import (
	"github.com/bianoble/bucketpub/internal/engine"
	"github.com/bianoble/bucketpub/internal/publish"
	"github.com/bianoble/bucketpub/internal/remote"
)

// Engine and run results.
type Engine = engine.Engine
type Result = engine.Result
type FileAction = engine.FileAction
type FileError = engine.FileError
type StatusResult = engine.StatusResult

// Per-file publish types.
type File = publish.File
type State = publish.State
type Options = publish.Options

// Remote store contract.
type Store = remote.Store
type ObjectMeta = remote.ObjectMeta
type QueryResult = remote.QueryResult

// Publish states.
const (
	StateCreate   = publish.StateCreate
	StateUpdate   = publish.StateUpdate
	StateSkip     = publish.StateSkip
	StateCacheHit = publish.StateCacheHit
	StateDelete   = publish.StateDelete
	StateSimulate = publish.StateSimulate
)
