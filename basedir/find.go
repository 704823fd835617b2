package basedir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FindConfigFile finds the given suffix in order of priority. First, XDG_CONFIG_HOME is checked,
// then, each dir in XDG_CONFIG_DIRS is checked.
// If no file exists, an empty path and a nil error are returned.
// Example for suffix: xdgmime/config.yaml.
func (d Dirs) FindConfigFile(suffix string) (string, error) {
	return findFile(suffix, d.AllConfigDirs())
}

func findFile(suffix string, dirs []string) (string, error) {
	for _, dir := range dirs {
		path := filepath.Join(dir, suffix)
		_, err := os.Stat(path)
		switch {
		case err == nil:
			return path, nil
		case errors.Is(err, os.ErrNotExist):
		default:
			return "", fmt.Errorf("failed to stat %s: %w", path, err)
		}
	}

	return "", nil
}
