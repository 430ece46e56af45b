package filesystem

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolvePath converts a file location to a local path for opening.
// Handles file:// URIs, a leading "~/" and bare paths.
func ResolvePath(location string) string {
	// Strip file:// prefix for local paths
	path := strings.TrimPrefix(location, "file://")
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	if path == "" {
		return ""
	}
	return filepath.Clean(path)
}
