// Package source walks the local directory being published and turns it
// into the file records the engine feeds through the decider.
package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bianoble/bucketpub/internal/publish"
)

// Walk reads every regular file under dir into a publish.File, keyed by its
// path relative to dir (forward-slash normalized). Hidden files and
// directories are skipped. Results are sorted by key so runs are
// deterministic.
func Walk(ctx context.Context, dir string) ([]*publish.File, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat source %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source %s is not a directory", dir)
	}

	var files []*publish.File
	err = filepath.Walk(dir, func(path string, fi os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		hidden := strings.HasPrefix(fi.Name(), ".") && path != dir
		if fi.IsDir() {
			if hidden {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden || !fi.Mode().IsRegular() {
			return nil
		}

		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return relErr
		}

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("reading %s: %w", rel, readErr)
		}

		f, fileErr := publish.NewFile(rel, content)
		if fileErr != nil {
			return fileErr
		}
		files = append(files, f)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Key < files[j].Key })
	return files, nil
}
