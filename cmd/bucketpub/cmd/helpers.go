package cmd

import (
	"fmt"
	"os"

	"github.com/bianoble/bucketpub/internal/cache"
	"github.com/bianoble/bucketpub/internal/compress"
	"github.com/bianoble/bucketpub/internal/config"
	"github.com/bianoble/bucketpub/internal/engine"
	"github.com/bianoble/bucketpub/internal/publish"
	"github.com/bianoble/bucketpub/internal/reconcile"
	"github.com/bianoble/bucketpub/internal/remote"
)

// loadConfig reads and validates the config file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config %s: %w", configPath, err)
	}
	return cfg, nil
}

// newCache opens the remote-state cache for the configured bucket.
func newCache(cfg *config.Config) *cache.Cache {
	path := cfg.CacheFile
	if path == "" {
		path = cache.DefaultPath(cfg.Bucket)
	}
	return cache.Load(path, cfg.FlushEvery)
}

// newStore opens the S3 store for the configured bucket.
func newStore(cfg *config.Config) (remote.Store, error) {
	store, err := remote.NewS3Store(cfg.Bucket, cfg.Region, cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("opening store for bucket %s: %w", cfg.Bucket, err)
	}
	return store, nil
}

// newGzipRule compiles the configured gzip pre-pass rule, or nil.
func newGzipRule(cfg *config.Config) (*compress.Rule, error) {
	if cfg.Gzip == nil {
		return nil, nil
	}
	return compress.CompileRule(cfg.Gzip.Suffix, cfg.Gzip.Patterns, cfg.Gzip.Level)
}

// newWhitelist compiles the configured whitelist. Malformed entries fail
// here, before anything touches the bucket.
func newWhitelist(cfg *config.Config) (*reconcile.Whitelist, error) {
	entries := make([]reconcile.Entry, len(cfg.Whitelist))
	for i, e := range cfg.Whitelist {
		entries[i] = reconcile.Entry{Literal: e.Literal, Pattern: e.Pattern}
	}
	return reconcile.Compile(entries)
}

// newEngine wires a run engine from the config and run-mode options.
func newEngine(cfg *config.Config, opts publish.Options) (*engine.Engine, error) {
	store, err := newStore(cfg)
	if err != nil {
		return nil, err
	}
	gzipRule, err := newGzipRule(cfg)
	if err != nil {
		return nil, err
	}
	whitelist, err := newWhitelist(cfg)
	if err != nil {
		return nil, err
	}

	opts.NoACL = cfg.NoACL
	opts.Encodings = cfg.Encodings

	return &engine.Engine{
		Store:     store,
		Cache:     newCache(cfg),
		Prefix:    cfg.Prefix,
		Headers:   cfg.Headers,
		Gzip:      gzipRule,
		Whitelist: whitelist,
		Opts:      opts,
	}, nil
}

// info prints a line unless quiet mode is active.
func info(format string, args ...any) {
	if !quiet {
		fmt.Printf(format+"\n", args...)
	}
}

// detail prints a line only in verbose mode.
func detail(format string, args ...any) {
	if verbose {
		fmt.Printf("  "+format+"\n", args...)
	}
}

// errorf prints an error message to stderr.
func errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
