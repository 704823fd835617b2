// Package registry stores MIME type records and their metadata.
//
// Each record lives in <root>/<supertype>/<subtype>.yaml, with the icon kept as raw data in
// <subtype>.icon next to it. Changes are written straight to disk and are visible to other
// processes immediately. The registry does no locking; concurrent writers of the same type
// race and the last rename wins.
package registry

import (
	"errors"
	"fmt"
	"github.com/MatthiasKunnen/xdgmime/basedir"
	"github.com/MatthiasKunnen/xdgmime/mimetype"
	"github.com/charmbracelet/log"
	"go.yaml.in/yaml/v3"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

const (
	recordExt = ".yaml"
	iconExt   = ".icon"
)

var (
	ErrNotInstalled = errors.New("MIME type is not installed")
	ErrInvalidValue = errors.New("invalid value")
)

// Exporter mirrors registry changes into another location, such as the shared-mime-info
// database. Export is called with the full record after every change, Remove after a delete.
type Exporter interface {
	Export(rec *TypeRecord) error
	Remove(t mimetype.Type) error
}

type Option func(*Registry)

// WithExporter adds an exporter. Exporters run in the order they were added.
func WithExporter(e Exporter) Option {
	return func(r *Registry) {
		r.exporters = append(r.exporters, e)
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithClock replaces time.Now as the source of install and modification times.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// Registry is a file-backed MIME type registry.
type Registry struct {
	root      string
	exporters []Exporter
	logger    *log.Logger
	now       func() time.Time
}

// New returns a Registry stored below root. The directory is created on the first install.
func New(root string, opts ...Option) *Registry {
	r := &Registry{
		root:   root,
		logger: log.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Root returns the directory the registry is stored in.
func (r *Registry) Root() string {
	return r.root
}

func (r *Registry) recordPath(t mimetype.Type) string {
	return filepath.Join(r.root, t.Supertype(), t.Subtype()+recordExt)
}

func (r *Registry) iconPath(t mimetype.Type) string {
	return filepath.Join(r.root, t.Supertype(), t.Subtype()+iconExt)
}

// IsInstalled returns true if a record exists for t.
func (r *Registry) IsInstalled(t mimetype.Type) (bool, error) {
	_, err := os.Stat(r.recordPath(t))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("isInstalled: failed to stat record of %s: %w", t, err)
	}
}

// Install registers t without any metadata.
// Installing a type that is already installed is not an error and leaves the record as is.
func (r *Registry) Install(t mimetype.Type) error {
	installed, err := r.IsInstalled(t)
	if err != nil {
		return err
	}
	if installed {
		r.logger.Debug("type already installed", "type", t)
		return nil
	}

	now := r.now()
	rec := &TypeRecord{
		Type:      t,
		Installed: now,
		Modified:  now,
	}

	if err := r.writeRecord(rec); err != nil {
		return err
	}

	r.logger.Debug("installed type", "type", t, "path", r.recordPath(t))
	r.export(rec)
	return nil
}

// SetField validates f and stores it in the record of t.
// It fails with ErrNotInstalled if t is not installed and with ErrInvalidValue if the value
// is rejected.
func (r *Registry) SetField(t mimetype.Type, f Field) error {
	rec, err := r.readRecord(t)
	if err != nil {
		return err
	}

	prev := *rec
	if err := f.apply(rec); err != nil {
		return fmt.Errorf("%w for %s of %s: %w", ErrInvalidValue, f.Kind(), t, err)
	}
	rec.Modified = r.now()

	if err := r.writeRecord(rec); err != nil {
		return err
	}

	if f.Kind() == FieldIcon {
		if err := basedir.WriteFile(r.iconPath(t), rec.Icon, 0o644); err != nil {
			// The record must not announce an icon that was not stored.
			if restoreErr := r.writeRecord(&prev); restoreErr != nil {
				r.logger.Warn("failed to restore record", "type", t, "err", restoreErr)
			}
			return fmt.Errorf("setField: failed to store icon of %s: %w", t, err)
		}
	}

	r.logger.Debug("set field", "type", t, "field", f.Kind())
	if rec.IconSize > 0 && rec.Icon == nil {
		icon, err := os.ReadFile(r.iconPath(t))
		if err != nil {
			r.logger.Warn("failed to read icon, exporting without it", "type", t, "err", err)
		} else {
			rec.Icon = icon
		}
	}
	r.export(rec)
	return nil
}

// Delete removes the record of t together with its icon.
// It fails with ErrNotInstalled if t is not installed.
func (r *Registry) Delete(t mimetype.Type) error {
	err := os.Remove(r.recordPath(t))
	switch {
	case errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: %s", ErrNotInstalled, t)
	case err != nil:
		return fmt.Errorf("delete: failed to remove record of %s: %w", t, err)
	}

	err = os.Remove(r.iconPath(t))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		r.logger.Warn("failed to remove icon", "type", t, "err", err)
	}

	// Only succeeds once the last type of the supertype is gone.
	_ = os.Remove(filepath.Join(r.root, t.Supertype()))

	r.logger.Debug("deleted type", "type", t)
	for _, e := range r.exporters {
		if err := e.Remove(t); err != nil {
			r.logger.Warn("failed to remove exported type", "type", t, "exporter", fmt.Sprintf("%T", e), "err", err)
		}
	}

	return nil
}

// Get returns the record of t including its icon.
func (r *Registry) Get(t mimetype.Type) (*TypeRecord, error) {
	rec, err := r.readRecord(t)
	if err != nil {
		return nil, err
	}

	if rec.IconSize > 0 {
		icon, err := os.ReadFile(r.iconPath(t))
		if err != nil {
			return nil, fmt.Errorf("get: failed to read icon of %s: %w", t, err)
		}
		rec.Icon = icon
	}

	return rec, nil
}

// Supertypes returns the supertypes that have at least one installed type, sorted.
func (r *Registry) Supertypes() ([]string, error) {
	entries, err := os.ReadDir(r.root)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return []string{}, nil
	case err != nil:
		return nil, fmt.Errorf("supertypes: failed to read registry %s: %w", r.root, err)
	}

	result := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			result = append(result, entry.Name())
		}
	}

	return result, nil
}

// InstalledTypes returns the installed types of the given supertype sorted by key.
// An unknown supertype results in an empty list.
func (r *Registry) InstalledTypes(supertype string) ([]mimetype.Type, error) {
	dir := filepath.Join(r.root, strings.ToLower(supertype))
	entries, err := os.ReadDir(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return []mimetype.Type{}, nil
	case err != nil:
		return nil, fmt.Errorf("installedTypes: failed to read %s: %w", dir, err)
	}

	result := make([]mimetype.Type, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != recordExt {
			continue
		}

		rec, err := loadRecord(filepath.Join(dir, name))
		if err != nil {
			r.logger.Warn("skipping unreadable record", "path", filepath.Join(dir, name), "err", err)
			continue
		}
		result = append(result, rec.Type)
	}

	slices.SortFunc(result, func(a, b mimetype.Type) int {
		return strings.Compare(a.Key(), b.Key())
	})

	return result, nil
}

func (r *Registry) readRecord(t mimetype.Type) (*TypeRecord, error) {
	rec, err := loadRecord(r.recordPath(t))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotInstalled, t)
	}

	return rec, err
}

func loadRecord(path string) (*TypeRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rec TypeRecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse record %s: %w", path, err)
	}
	if rec.Type.IsZero() {
		return nil, fmt.Errorf("record %s has no type", path)
	}

	return &rec, nil
}

func (r *Registry) writeRecord(rec *TypeRecord) error {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record of %s: %w", rec.Type, err)
	}

	return basedir.WriteFile(r.recordPath(rec.Type), data, 0o644)
}

func (r *Registry) export(rec *TypeRecord) {
	for _, e := range r.exporters {
		if err := e.Export(rec); err != nil {
			r.logger.Warn("failed to export type", "type", rec.Type, "exporter", fmt.Sprintf("%T", e), "err", err)
		}
	}
}
