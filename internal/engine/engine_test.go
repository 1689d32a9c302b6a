package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/bianoble/bucketpub/internal/cache"
	"github.com/bianoble/bucketpub/internal/compress"
	"github.com/bianoble/bucketpub/internal/config"
	"github.com/bianoble/bucketpub/internal/fingerprint"
	"github.com/bianoble/bucketpub/internal/publish"
	"github.com/bianoble/bucketpub/internal/reconcile"
	"github.com/bianoble/bucketpub/internal/remote"
)

func newEngine(t *testing.T, store *remote.Memory) *Engine {
	t.Helper()
	return &Engine{
		Store: store,
		Cache: cache.Load(filepath.Join(t.TempDir(), "cache.yaml"), 100),
	}
}

func mustFiles(t *testing.T, contents map[string]string) []*publish.File {
	t.Helper()
	var files []*publish.File
	for _, key := range sortedKeys(contents) {
		f, err := publish.NewFile(key, []byte(contents[key]))
		if err != nil {
			t.Fatal(err)
		}
		files = append(files, f)
	}
	return files
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func TestRunFirstPublishCreatesEverything(t *testing.T) {
	store := remote.NewMemory()
	e := newEngine(t, store)

	files := mustFiles(t, map[string]string{
		"index.html":   "<html></html>",
		"css/site.css": "body{}",
	})
	result, err := e.Run(context.Background(), files, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(result.Created) != 2 || result.Uploaded() != 2 {
		t.Errorf("created = %v", result.Created)
	}
	if !store.Has("index.html") || !store.Has("css/site.css") {
		t.Error("objects missing from store")
	}
}

func TestRunSecondPublishAllCacheHits(t *testing.T) {
	store := remote.NewMemory()
	cachePath := filepath.Join(t.TempDir(), "cache.yaml")

	contents := map[string]string{"a.txt": "one", "b.txt": "two"}

	e := &Engine{Store: store, Cache: cache.Load(cachePath, 100)}
	if _, err := e.Run(context.Background(), mustFiles(t, contents), false); err != nil {
		t.Fatal(err)
	}
	callsAfterFirst := store.Calls()

	// Fresh engine with a reloaded cache, same content: zero store calls.
	e2 := &Engine{Store: store, Cache: cache.Load(cachePath, 100)}
	result, err := e2.Run(context.Background(), mustFiles(t, contents), false)
	if err != nil {
		t.Fatal(err)
	}

	if len(result.CacheHits) != 2 {
		t.Errorf("cache hits = %v", result.CacheHits)
	}
	if store.Calls() != callsAfterFirst {
		t.Errorf("second run made %d store calls", store.Calls()-callsAfterFirst)
	}
}

func TestRunWithPrefix(t *testing.T) {
	store := remote.NewMemory()
	e := newEngine(t, store)
	e.Prefix = "site/"

	result, err := e.Run(context.Background(), mustFiles(t, map[string]string{"a.txt": "x"}), false)
	if err != nil {
		t.Fatal(err)
	}
	if !store.Has("site/a.txt") {
		t.Error("prefix not applied to uploaded key")
	}
	if result.Created[0].Key != "site/a.txt" {
		t.Errorf("recorded key = %s", result.Created[0].Key)
	}
	if _, ok := e.Cache.Get("site/a.txt"); !ok {
		t.Error("cache keyed without prefix")
	}
}

func TestRunAppliesHeaderRules(t *testing.T) {
	store := remote.NewMemory()
	e := newEngine(t, store)

	cfg, err := config.Load(writeTestConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	e.Headers = cfg.Headers

	files := mustFiles(t, map[string]string{"index.html": "<p>hi</p>", "site.css": "body{}"})
	if _, err := e.Run(context.Background(), files, false); err != nil {
		t.Fatal(err)
	}

	var htmlFile *publish.File
	for _, f := range files {
		if f.Key == "index.html" {
			htmlFile = f
		}
	}
	if got := htmlFile.Headers["Cache-Control"]; got != "no-cache" {
		t.Errorf("Cache-Control = %q, want no-cache", got)
	}
}

func TestRunGzipPrePass(t *testing.T) {
	store := remote.NewMemory()
	e := newEngine(t, store)

	rule, err := compress.CompileRule(".gz", []string{`\.css$`}, 0)
	if err != nil {
		t.Fatal(err)
	}
	e.Gzip = rule
	e.Opts.Encodings = map[string]string{".gz": "gzip"}

	css := make([]byte, 0, 2048)
	for i := 0; i < 100; i++ {
		css = append(css, []byte("body { margin: 0; }\n")...)
	}
	f, err := publish.NewFile("site.css", css)
	if err != nil {
		t.Fatal(err)
	}

	result, runErr := e.Run(context.Background(), []*publish.File{f}, false)
	if runErr != nil {
		t.Fatal(runErr)
	}
	if len(result.Created) != 1 || result.Created[0].Key != "site.css.gz" {
		t.Errorf("created = %v, want site.css.gz", result.Created)
	}
	if !store.Has("site.css.gz") {
		t.Error("compressed key missing from store")
	}
	if got := f.Headers[remote.HeaderContentEncoding]; got != "gzip" {
		t.Errorf("Content-Encoding = %q", got)
	}
}

func TestRunSyncDeletesExtraneous(t *testing.T) {
	store := remote.NewMemory()
	store.Seed("stale.html", []byte("old"), "")
	store.Seed("keep.txt", []byte("keep"), "")

	e := newEngine(t, store)
	w, err := reconcile.Compile([]reconcile.Entry{{Literal: "keep.txt"}})
	if err != nil {
		t.Fatal(err)
	}
	e.Whitelist = w
	_ = e.Cache.Set("stale.html", "oldfp")

	result, err := e.Run(context.Background(), mustFiles(t, map[string]string{"a.txt": "x"}), true)
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Deleted) != 1 || result.Deleted[0].Key != "stale.html" {
		t.Errorf("deleted = %v, want [stale.html]", result.Deleted)
	}
	if store.Has("stale.html") {
		t.Error("stale object still in store")
	}
	if !store.Has("keep.txt") {
		t.Error("whitelisted object was deleted")
	}
	if _, ok := e.Cache.Get("stale.html"); ok {
		t.Error("deleted key still cached")
	}
}

func TestRunSyncSimulateOnlyReports(t *testing.T) {
	store := remote.NewMemory()
	store.Seed("stale.html", []byte("old"), "")

	e := newEngine(t, store)
	e.Opts.Simulate = true

	result, err := e.Run(context.Background(), mustFiles(t, map[string]string{"a.txt": "x"}), true)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Deleted) != 1 {
		t.Errorf("deleted = %v, want the would-be deletion reported", result.Deleted)
	}
	if !store.Has("stale.html") {
		t.Error("simulate deleted a real object")
	}
	if store.Puts != 0 || store.Deletes != 0 {
		t.Errorf("simulate wrote to the store: %d puts, %d deletes", store.Puts, store.Deletes)
	}
}

func TestRunCollectsPerFileErrors(t *testing.T) {
	store := remote.NewMemory()
	e := newEngine(t, store)

	good, err := publish.NewFile("good.txt", []byte("ok"))
	if err != nil {
		t.Fatal(err)
	}
	bad := &publish.File{Path: "bad.bin", Key: "bad.bin", Payload: publish.StreamPayload()}
	alsoGood, err := publish.NewFile("z.txt", []byte("ok too"))
	if err != nil {
		t.Fatal(err)
	}

	result, err := e.Run(context.Background(), []*publish.File{good, bad, alsoGood}, false)
	if err != nil {
		t.Fatalf("per-file errors must not fail the run: %v", err)
	}
	if len(result.Errors) != 1 || result.Errors[0].Key != "bad.bin" {
		t.Errorf("errors = %v", result.Errors)
	}
	if len(result.Created) != 2 {
		t.Errorf("created = %v, want the stream to continue past the failure", result.Created)
	}
}

func TestRunFailedUploadKeyNotDeleted(t *testing.T) {
	store := remote.NewMemory()
	store.Seed("flaky.txt", []byte("remote"), "")

	e := newEngine(t, store)
	store.PutErr = errors.New("upload denied")

	f, err := publish.NewFile("flaky.txt", []byte("local"))
	if err != nil {
		t.Fatal(err)
	}

	store2 := store // same store; clear the failure before reconciliation
	result, runErr := e.Run(context.Background(), []*publish.File{f}, false)
	if runErr != nil {
		t.Fatal(runErr)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("errors = %v", result.Errors)
	}

	store.PutErr = nil
	deleted, err := e.Clean(context.Background(), map[string]bool{"flaky.txt": true}, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(deleted) != 0 {
		t.Errorf("failed upload's key was deleted: %v", deleted)
	}
	if !store2.Has("flaky.txt") {
		t.Error("remote object gone")
	}
}

func TestCleanDryRun(t *testing.T) {
	store := remote.NewMemory()
	store.Seed("stale.html", []byte("old"), "")

	e := newEngine(t, store)
	deleted, err := e.Clean(context.Background(), nil, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(deleted) != 1 || deleted[0] != "stale.html" {
		t.Errorf("dry-run delete set = %v", deleted)
	}
	if !store.Has("stale.html") {
		t.Error("dry run deleted an object")
	}
}

func TestStatusDiff(t *testing.T) {
	c := cache.Load(filepath.Join(t.TempDir(), "cache.yaml"), 100)
	_ = c.Set("unchanged.txt", fingerprint.Sum([]byte("same")))
	_ = c.Set("changed.txt", fingerprint.Sum([]byte("old")))
	_ = c.Set("gone.txt", "whatever")

	files := mustFiles(t, map[string]string{
		"unchanged.txt": "same",
		"changed.txt":   "new",
		"brand-new.txt": "hello",
	})

	st := Status(files, c, "")
	if len(st.Unchanged) != 1 || st.Unchanged[0] != "unchanged.txt" {
		t.Errorf("unchanged = %v", st.Unchanged)
	}
	if len(st.Changed) != 1 || st.Changed[0] != "changed.txt" {
		t.Errorf("changed = %v", st.Changed)
	}
	if len(st.New) != 1 || st.New[0] != "brand-new.txt" {
		t.Errorf("new = %v", st.New)
	}
	if len(st.Missing) != 1 || st.Missing[0] != "gone.txt" {
		t.Errorf("missing = %v", st.Missing)
	}
}

func TestStatusPrefixScoping(t *testing.T) {
	c := cache.Load(filepath.Join(t.TempDir(), "cache.yaml"), 100)
	_ = c.Set("site/a.txt", fingerprint.Sum([]byte("x")))
	_ = c.Set("other/b.txt", "fp")

	st := Status(mustFiles(t, map[string]string{"a.txt": "x"}), c, "site/")
	if len(st.Unchanged) != 1 || st.Unchanged[0] != "site/a.txt" {
		t.Errorf("unchanged = %v", st.Unchanged)
	}
	// Keys outside the prefix are not this run's business.
	if len(st.Missing) != 0 {
		t.Errorf("missing = %v, want none outside prefix", st.Missing)
	}
}

func writeTestConfig(t *testing.T) string {
	t.Helper()
	content := `
version: 1
bucket: b
headers:
  - pattern: '\.html$'
    values:
      Cache-Control: no-cache
`
	path := filepath.Join(t.TempDir(), "bucketpub.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}
