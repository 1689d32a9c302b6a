package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, root, rel string, content []byte) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestWalk(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.html", []byte("<html></html>"))
	writeFile(t, dir, filepath.Join("css", "site.css"), []byte("body{}"))
	writeFile(t, dir, filepath.Join("img", "logo.png"), []byte{0x89})

	files, err := Walk(context.Background(), dir)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	wantKeys := []string{"css/site.css", "img/logo.png", "index.html"}
	if len(files) != len(wantKeys) {
		t.Fatalf("got %d files, want %d", len(files), len(wantKeys))
	}
	for i, want := range wantKeys {
		if files[i].Key != want {
			t.Errorf("files[%d].Key = %s, want %s (sorted)", i, files[i].Key, want)
		}
	}
	if string(files[0].Payload.Bytes) != "body{}" {
		t.Errorf("content = %q", files[0].Payload.Bytes)
	}
}

func TestWalkSkipsHidden(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "visible.txt", []byte("x"))
	writeFile(t, dir, ".hidden.txt", []byte("x"))
	writeFile(t, dir, filepath.Join(".git", "config"), []byte("x"))

	files, err := Walk(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 || files[0].Key != "visible.txt" {
		var keys []string
		for _, f := range files {
			keys = append(keys, f.Key)
		}
		t.Errorf("walked keys = %v, want [visible.txt]", keys)
	}
}

func TestWalkMissingDir(t *testing.T) {
	if _, err := Walk(context.Background(), filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestWalkFileNotDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "f.txt", []byte("x"))
	if _, err := Walk(context.Background(), filepath.Join(dir, "f.txt")); err == nil {
		t.Error("expected error when source is a file")
	}
}

func TestWalkCanceledContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "f.txt", []byte("x"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Walk(ctx, dir); err == nil {
		t.Error("expected error from canceled context")
	}
}
