package mimeapps

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	sectionDefault = "[Default Applications]"
	sectionAdded   = "[Added Associations]"
	sectionRemoved = "[Removed Associations]"
)

// MimeApps represents a parsed mimeapps.list file.
// Each map is keyed by MIME type and holds desktop IDs in order of preference.
type MimeApps struct {
	Default map[string][]string
	Added   map[string][]string
	Removed map[string][]string
}

func Parse(reader io.Reader) (MimeApps, error) {
	sc := bufio.NewScanner(reader)
	result := MimeApps{
		Default: make(map[string][]string),
		Added:   make(map[string][]string),
		Removed: make(map[string][]string),
	}
	var section map[string][]string

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "", strings.HasPrefix(line, "#"):
			continue
		case line == sectionDefault:
			section = result.Default
			continue
		case line == sectionAdded:
			section = result.Added
			continue
		case line == sectionRemoved:
			section = result.Removed
			continue
		case strings.HasPrefix(line, "["):
			// Unknown groups are skipped.
			section = nil
			continue
		}

		if section == nil {
			continue
		}

		mimeType, value, found := strings.Cut(line, "=")
		if !found {
			continue // Lines without = are ignored. This is the same behavior as xdg-open.
		}

		mimeType = strings.TrimSpace(mimeType)
		section[mimeType] = removeDuplicates(append(section[mimeType], splitIds(value)...))
	}

	if err := sc.Err(); err != nil {
		return MimeApps{}, fmt.Errorf("failed to parse: %w", err)
	}

	return result, nil
}

func ParseFile(path string) (MimeApps, error) {
	file, err := os.Open(path)
	if err != nil {
		return MimeApps{}, err
	}
	defer file.Close()

	return Parse(file)
}

// splitIds splits a list of desktop IDs such as "a.desktop;b.desktop;".
func splitIds(value string) []string {
	var ids []string
	for _, id := range strings.Split(value, ";") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	return ids
}
