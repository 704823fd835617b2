package mimeapps

import (
	"bufio"
	"errors"
	"fmt"
	"github.com/MatthiasKunnen/xdgmime/basedir"
	"io"
	"os"
	"slices"
	"strings"
)

// List is an editable mimeapps.list. Lines that are not touched by an edit, including
// comments and other sections, are written back unchanged.
type List struct {
	lines []string
}

// ReadList reads the list at path. A missing file results in an empty list.
func ReadList(path string) (*List, error) {
	file, err := os.Open(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return &List{}, nil
	case err != nil:
		return nil, fmt.Errorf("readList: failed to open %s: %w", path, err)
	}
	defer file.Close()

	return ParseList(file)
}

func ParseList(reader io.Reader) (*List, error) {
	l := &List{}
	sc := bufio.NewScanner(reader)
	for sc.Scan() {
		l.lines = append(l.lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("parseList: %w", err)
	}

	return l, nil
}

// section returns the index range [start, end) of the lines of the default section,
// excluding the header. start is -1 if there is no such section.
func (l *List) section() (int, int) {
	start := -1
	for i, line := range l.lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == sectionDefault:
			start = i + 1
		case start >= 0 && strings.HasPrefix(trimmed, "["):
			return start, i
		}
	}

	return start, len(l.lines)
}

// findEntry returns the index of the line of mime in the default section, -1 if absent.
func (l *List) findEntry(mime string) int {
	start, end := l.section()
	if start < 0 {
		return -1
	}

	for i := start; i < end; i++ {
		key, _, found := strings.Cut(l.lines[i], "=")
		if found && strings.EqualFold(strings.TrimSpace(key), mime) {
			return i
		}
	}

	return -1
}

// Default returns the desktop IDs of mime in the [Default Applications] section.
func (l *List) Default(mime string) []string {
	i := l.findEntry(mime)
	if i < 0 {
		return nil
	}

	_, value, _ := strings.Cut(l.lines[i], "=")
	return splitIds(value)
}

// SetDefault makes desktopId the default application of mime. Desktop IDs already listed
// for mime stay as fallbacks after it. The section is created if needed.
// It returns false if desktopId already was the default.
func (l *List) SetDefault(mime string, desktopId string) bool {
	current := l.Default(mime)
	if len(current) > 0 && current[0] == desktopId {
		return false
	}

	ids := append([]string{desktopId}, slices.DeleteFunc(current, func(id string) bool {
		return id == desktopId
	})...)
	line := mime + "=" + strings.Join(ids, ";") + ";"

	if i := l.findEntry(mime); i >= 0 {
		l.lines[i] = line
		return true
	}

	start, end := l.section()
	if start < 0 {
		if len(l.lines) > 0 && strings.TrimSpace(l.lines[len(l.lines)-1]) != "" {
			l.lines = append(l.lines, "")
		}
		l.lines = append(l.lines, sectionDefault, line)
		return true
	}

	// Insert after the last non-blank line of the section.
	insertAt := end
	for insertAt > start && strings.TrimSpace(l.lines[insertAt-1]) == "" {
		insertAt--
	}
	l.lines = slices.Insert(l.lines, insertAt, line)
	return true
}

// RemoveDefault removes the entry of mime from the [Default Applications] section.
// It returns false if there was no entry.
func (l *List) RemoveDefault(mime string) bool {
	i := l.findEntry(mime)
	if i < 0 {
		return false
	}

	l.lines = slices.Delete(l.lines, i, i+1)
	return true
}

// Bytes returns the content of the list.
func (l *List) Bytes() []byte {
	if len(l.lines) == 0 {
		return nil
	}

	return []byte(strings.Join(l.lines, "\n") + "\n")
}

// WriteFile atomically replaces the file at path with the list.
func (l *List) WriteFile(path string) error {
	return basedir.WriteFile(path, l.Bytes(), 0o644)
}
