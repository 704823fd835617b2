// Package index maintains the search indices of a volume.
//
// A search index enables fast queries over one named file attribute. Indices are keyed by
// attribute name, carry the value type of the attribute and exist independently of the MIME
// types that declare the attribute: several types may share an index, and an index may
// outlive the type that caused its creation.
package index

import (
	"errors"
	"fmt"
	"github.com/MatthiasKunnen/xdgmime/registry"
	"github.com/charmbracelet/log"
	"go.yaml.in/yaml/v3"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

const indexExt = ".yaml"

var (
	ErrIndexExists     = errors.New("index already exists")
	ErrIndexNotFound   = errors.New("index not found")
	ErrUnsupportedType = errors.New("value type cannot be indexed")
	ErrInvalidName     = errors.New("invalid index name")
)

// Index is a search index on a volume.
type Index struct {
	Name    string             `yaml:"name"`
	Type    registry.ValueType `yaml:"type"`
	Created time.Time          `yaml:"created"`
}

type Option func(*Store)

func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Store holds the indices of one volume, one file per index in dir.
type Store struct {
	dir    string
	logger *log.Logger
	now    func() time.Time
}

// NewStore returns the Store kept in dir. The directory is created when the first index is.
func NewStore(dir string, opts ...Option) *Store {
	s := &Store{
		dir:    dir,
		logger: log.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Dir returns the directory the indices are kept in.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, url.PathEscape(name)+indexExt)
}

func checkName(name string) error {
	if name == "" || strings.ContainsAny(name, "\x00\n") {
		return fmt.Errorf("%w %q", ErrInvalidName, name)
	}

	return nil
}

// Create creates the index name of type typ.
// It fails with ErrIndexExists if an index of that name exists, whatever its type.
func (s *Store) Create(name string, typ registry.ValueType) error {
	if err := checkName(name); err != nil {
		return err
	}
	if !typ.Indexable() {
		return fmt.Errorf("%w: %q", ErrUnsupportedType, typ)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create: failed to create index directory %s: %w", s.dir, err)
	}

	data, err := yaml.Marshal(Index{Name: name, Type: typ, Created: s.now()})
	if err != nil {
		return fmt.Errorf("create: failed to encode index %s: %w", name, err)
	}

	path := s.path(name)
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	switch {
	case errors.Is(err, os.ErrExist):
		return fmt.Errorf("%w: %s", ErrIndexExists, name)
	case err != nil:
		return fmt.Errorf("create: failed to create index %s: %w", name, err)
	}

	_, err = file.Write(data)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("create: failed to write index %s: %w", name, err)
	}

	return nil
}

// Remove removes the index name. It fails with ErrIndexNotFound if there is no such index.
func (s *Store) Remove(name string) error {
	if err := checkName(name); err != nil {
		return err
	}

	err := os.Remove(s.path(name))
	switch {
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: %s", ErrIndexNotFound, name)
	case err != nil:
		return fmt.Errorf("remove: failed to remove index %s: %w", name, err)
	}

	return nil
}

// Get returns the index name. It fails with ErrIndexNotFound if there is no such index.
func (s *Store) Get(name string) (*Index, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}

	idx, err := load(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, name)
	}

	return idx, err
}

// List returns all indices of the volume sorted by name.
func (s *Store) List() ([]Index, error) {
	entries, err := os.ReadDir(s.dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return []Index{}, nil
	case err != nil:
		return nil, fmt.Errorf("list: failed to read index directory %s: %w", s.dir, err)
	}

	result := make([]Index, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != indexExt {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		idx, err := load(path)
		if err != nil {
			s.logger.Warn("skipping unreadable index", "path", path, "err", err)
			continue
		}
		result = append(result, *idx)
	}

	slices.SortFunc(result, func(a, b Index) int {
		return strings.Compare(a.Name, b.Name)
	})

	return result, nil
}

func load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var idx Index
	if err := yaml.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("failed to parse index %s: %w", path, err)
	}

	return &idx, nil
}
