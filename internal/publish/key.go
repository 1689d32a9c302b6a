package publish

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// KeyFor derives the remote object key for a relative file path: separators
// normalized to forward slashes, the path cleaned, and anything that would
// escape the publish root rejected.
func KeyFor(relPath string) (string, error) {
	if relPath == "" {
		return "", fmt.Errorf("empty path cannot map to a remote key")
	}

	key := path.Clean(filepath.ToSlash(relPath))

	if key == "." || key == "/" {
		return "", fmt.Errorf("path %q does not name a file", relPath)
	}
	if path.IsAbs(key) || strings.HasPrefix(key, "../") || key == ".." {
		return "", fmt.Errorf("path %q escapes the publish root", relPath)
	}

	return key, nil
}
