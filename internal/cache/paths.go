package cache

import (
	"path/filepath"
	"strings"
)

// DefaultFile is the cache file used for merged transfer data.
const DefaultFile = "transfers.json"

// EntryPath builds the path of a cache entry. Only the base name of filename
// is used so callers cannot escape the cache directory.
func EntryPath(basePath, filename string) string {
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = DefaultFile
	}
	return filepath.Join(basePath, name)
}
