// Package desktop finds the desktop files of applications, which is how the preferred
// application of a MIME type is named on freedesktop systems.
package desktop

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when no desktop file exists for a desktop ID.
var ErrNotFound = errors.New("desktop file not found")

// maxIdHyphens limits the number of hyphens that are tried as directory separators.
const maxIdHyphens = 8

// Locations returns the directories where desktop files can be found, given the data
// directories in order of precedence.
// The locations are defined in the [Mime app spec].
//
// [Mime app spec]: https://specifications.freedesktop.org/mime-apps-spec/1.0.1/file.html
func Locations(dataDirs []string) []string {
	locations := make([]string, 0, len(dataDirs))
	for _, dir := range dataDirs {
		locations = append(locations, filepath.Join(dir, "applications"))
	}

	return locations
}

// Locate returns the path of the desktop file with the given [Desktop ID], such as
// org.example.Notes.desktop, searching locations in order.
// Hyphens in the ID may stand for directory separators, foo-bar.desktop can be
// foo/bar.desktop. Files that do not look like desktop files are skipped.
// It fails with ErrNotFound if there is no such desktop file.
//
// [Desktop ID]: https://specifications.freedesktop.org/desktop-entry-spec/1.5/file-naming.html#desktop-file-id
func Locate(desktopId string, locations []string) (string, error) {
	candidates := idPaths(desktopId)

	for _, dir := range locations {
		for _, candidate := range candidates {
			path := filepath.Join(dir, candidate)
			isDesktopFile, err := MagicIsDesktopFilePath(path)
			switch {
			case errors.Is(err, os.ErrNotExist):
				continue
			case err != nil:
				return "", fmt.Errorf("locate: %w", err)
			case isDesktopFile:
				return path, nil
			}
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNotFound, desktopId)
}

// idPaths returns the relative paths a desktop ID can refer to, the plain file name first.
func idPaths(desktopId string) []string {
	parts := strings.Split(desktopId, "-")
	if len(parts)-1 > maxIdHyphens {
		return []string{desktopId}
	}

	paths := []string{parts[0]}
	for _, part := range parts[1:] {
		next := make([]string, 0, 2*len(paths))
		for _, p := range paths {
			next = append(next, p+"-"+part)
		}
		for _, p := range paths {
			next = append(next, filepath.Join(p, part))
		}
		paths = next
	}

	return paths
}
