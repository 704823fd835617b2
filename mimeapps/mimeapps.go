// Package mimeapps reads and edits mimeapps.list files, which record the default
// application of each MIME type. The preferred application of a registry record is exported
// into the [Default Applications] section of the user's list.
//
// The format is defined in the [MIME apps spec].
//
// [MIME apps spec]: https://specifications.freedesktop.org/mime-apps-spec/1.0.1/index.html
package mimeapps

import (
	"errors"
	"github.com/MatthiasKunnen/xdgmime/basedir"
	"github.com/charmbracelet/log"
	"os"
	"path/filepath"
	"strings"
)

// ListLocation holds information of a mimeapps.list file.
type ListLocation struct {
	// The path of the mimeapps.list file.
	Path string

	// HasDesktopFiles states whether there are any .desktop files to be found in the same directory
	// as the path.
	HasDesktopFiles bool
}

// GetLists returns all mimeapps.list files in accordance to freedesktop.org's
// [MIME Application Spec]. Existence of these files is not checked.
// The order is according to the priority, higher priority first.
//
// When desktop is non-empty, files such as $desktop-mimeapps.list are included.
// The value of desktop can be fetched from $XDG_CURRENT_DESKTOP.
//
// [MIME Application Spec]: https://specifications.freedesktop.org/mime-apps-spec/1.0.1/file.html
func GetLists(dirs basedir.Dirs, desktop string) []ListLocation {
	result := make([]ListLocation, 0)
	desktop = strings.ToLower(desktop)

	for _, dir := range dirs.AllConfigDirs() {
		result = appendLists(result, dir, desktop, false)
	}
	for _, dir := range dirs.AllDataDirs() {
		result = appendLists(result, filepath.Join(dir, "applications"), desktop, true)
	}

	return result
}

func appendLists(list []ListLocation, dir string, desktop string, hasDesktopFiles bool) []ListLocation {
	if desktop != "" {
		list = append(list, ListLocation{
			Path:            filepath.Join(dir, desktop+"-mimeapps.list"),
			HasDesktopFiles: hasDesktopFiles,
		})
	}

	return append(list, ListLocation{
		Path:            filepath.Join(dir, "mimeapps.list"),
		HasDesktopFiles: hasDesktopFiles,
	})
}

// UserList returns the path of the mimeapps.list the user's preferences are written to.
func UserList(dirs basedir.Dirs) string {
	return dirs.ConfigPath("mimeapps.list")
}

// Defaults returns the desktop IDs in the [Default Applications] entries of mime over all
// lists, higher priority first, without duplicates.
// Missing lists are skipped, unreadable ones are logged and skipped.
// Desktop IDs are returned as listed; whether the applications exist is not checked.
func Defaults(lists []ListLocation, mime string, logger *log.Logger) []string {
	if logger == nil {
		logger = log.Default()
	}

	var result []string
	for _, location := range lists {
		parsed, err := ParseFile(location.Path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			continue
		case err != nil:
			logger.Warn("skipping mimeapps list", "path", location.Path, "err", err)
			continue
		}

		for key, desktopIds := range parsed.Default {
			if strings.EqualFold(key, mime) {
				result = append(result, desktopIds...)
			}
		}
	}

	return removeDuplicates(result)
}
