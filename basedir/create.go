package basedir

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile replaces the content of path with data.
// The data is first written to a temporary file in the same directory, which is then renamed
// over path, so readers either see the old or the new content.
// Missing directories are created with 0o700 permissions.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("writeFile: failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("writeFile: failed to create temporary file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()

	_, err = tmp.Write(data)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tmpPath, perm)
	}
	if err == nil {
		err = os.Rename(tmpPath, path)
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writeFile: failed to write %s: %w", path, err)
	}

	return nil
}
