package sharedmimeinfo

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const (
	mimeTextPlain = "text/plain"
	mimeOctet     = "application/octet-stream"
)

// abstractSupertypes have no file content, their types do not derive from
// application/octet-stream.
var abstractSupertypes = []string{"inode", "entity", "relation"}

type MalformedSubclassError struct {
	FileIndex int
	LineIndex int
}

func (e MalformedSubclassError) Error() string {
	return fmt.Sprintf("malformed subclass line at %d", e.LineIndex)
}

// Subclasses holds the subclass relations of the shared-mime-info database, mapping a type
// to the broader types it is a subclass of. Types are compared in lower case.
type Subclasses struct {
	dict map[string][]string
}

// LoadSubclasses reads the mime/subclasses file of every data directory that has one.
// Earlier directories have higher precedence.
func LoadSubclasses(dataDirs []string) (*Subclasses, error) {
	var files []*os.File
	var readers []io.Reader
	defer func() {
		for _, f := range files {
			_ = f.Close()
		}
	}()

	for _, dir := range dataDirs {
		fPath := filepath.Join(dir, "mime", "subclasses")
		f, err := os.Open(fPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
			continue
		case err != nil:
			return nil, fmt.Errorf("failed to load subclasses file at %s: %w", fPath, err)
		}
		files = append(files, f)
		readers = append(readers, f)
	}

	subclasses, err := ParseSubclasses(readers)
	if err == nil {
		return subclasses, nil
	}

	var x MalformedSubclassError
	if errors.As(err, &x) && x.FileIndex >= 0 && x.FileIndex < len(files) {
		return nil, fmt.Errorf("failed to load subclass file %s: %w", files[x.FileIndex].Name(), err)
	}

	return nil, err
}

// ParseSubclasses reads subclasses files, one "specific broad" pair per line.
// Order is important as earlier readers have higher precedence.
func ParseSubclasses(readers []io.Reader) (*Subclasses, error) {
	s := &Subclasses{
		dict: make(map[string][]string),
	}

	for fileIndex, r := range readers {
		scanner := bufio.NewScanner(r)
		lineIndex := 0
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				lineIndex++
				continue
			}

			specific, broad, found := strings.Cut(line, " ")
			if !found {
				return nil, MalformedSubclassError{FileIndex: fileIndex, LineIndex: lineIndex}
			}
			s.add(specific, broad)
			lineIndex++
		}

		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Subclasses) add(specific string, broad string) {
	specific = strings.ToLower(specific)
	broad = strings.ToLower(strings.TrimSpace(broad))
	if !slices.Contains(s.dict[specific], broad) {
		s.dict[specific] = append(s.dict[specific], broad)
	}
}

func isAbstract(mime string) bool {
	supertype, _, _ := strings.Cut(mime, "/")
	return slices.Contains(abstractSupertypes, supertype)
}

// BroaderOnce returns the types mime is a direct subclass of.
// For example, text/javascript returns application/x-executable.
// Without an explicit relation, text types are a subclass of text/plain and other types
// with file content of application/octet-stream.
func (s *Subclasses) BroaderOnce(mime string) []string {
	mime = strings.ToLower(mime)
	if broad := s.dict[mime]; len(broad) > 0 {
		return broad
	}

	switch {
	case mime == mimeOctet:
		return nil
	case mime == mimeTextPlain:
		return []string{mimeOctet}
	case isText(mime):
		return []string{mimeTextPlain}
	case !isAbstract(mime):
		return []string{mimeOctet}
	default:
		return nil
	}
}

// BroaderDfs returns all types mime is a subclass of, directly or not.
// The order of the subclasses is priority first and is determined by a depth first,
// pre-order (NLR), search.
// For example, text/javascript returns application/x-executable, text/plain,
// application/octet-stream.
func (s *Subclasses) BroaderDfs(mime string) []string {
	mime = strings.ToLower(mime)
	visited := make(map[string]struct{})
	toVisit := slices.Clone(s.dict[mime])
	result := make([]string, 0, len(toVisit))

	for len(toVisit) > 0 {
		broad := toVisit[0]
		if _, ok := visited[broad]; ok {
			toVisit = toVisit[1:]
			continue
		}

		visited[broad] = struct{}{}
		result = append(result, broad)
		broader := s.dict[broad]
		switch len(broader) {
		case 0:
			toVisit = toVisit[1:]
		case 1:
			toVisit[0] = broader[0]
		default:
			toVisit = append(slices.Clone(broader), toVisit[1:]...)
		}
	}

	// The queried type itself counts for the implicit relations.
	if _, ok := visited[mimeTextPlain]; !ok && mime != mimeTextPlain &&
		(isText(mime) || slices.ContainsFunc(result, isText)) {
		result = append(result, mimeTextPlain)
	}
	if _, ok := visited[mimeOctet]; !ok && mime != mimeOctet &&
		(hasContent(mime) || slices.ContainsFunc(result, hasContent)) {
		result = append(result, mimeOctet)
	}

	return result
}

func isText(mime string) bool {
	return strings.HasPrefix(mime, "text/")
}

func hasContent(mime string) bool {
	return !isAbstract(mime)
}
