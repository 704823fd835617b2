// Package importer installs MIME types from the metadata in resource containers.
//
// An import reads the type from the META:TYPE resource, installs it if needed, sets the
// required short description and then every optional field present in the container.
// When the attribute schema was set, the search index of every attribute that states
// whether it is searchable is created or removed accordingly.
package importer

import (
	"errors"
	"fmt"
	"github.com/MatthiasKunnen/xdgmime/index"
	"github.com/MatthiasKunnen/xdgmime/mimetype"
	"github.com/MatthiasKunnen/xdgmime/registry"
	"github.com/MatthiasKunnen/xdgmime/resource"
	"github.com/charmbracelet/log"
)

// Registry is the part of [registry.Registry] used by imports.
type Registry interface {
	IsInstalled(t mimetype.Type) (bool, error)
	Install(t mimetype.Type) error
	SetField(t mimetype.Type, f registry.Field) error
}

// Indexer is the part of [index.Store] used by imports.
type Indexer interface {
	EnsureIndex(name string, typ registry.ValueType, wantPresent bool) index.Outcome
}

// Policy controls how an import reacts to failing optional fields.
type Policy struct {
	// AbortOnOptionalFailure makes the first optional field that cannot be decoded or set
	// fail the import with FieldError. By default the failure is recorded and the
	// remaining fields are still processed.
	AbortOnOptionalFailure bool
}

type Option func(*Importer)

func WithPolicy(p Policy) Option {
	return func(im *Importer) {
		im.policy = p
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(im *Importer) {
		im.logger = logger
	}
}

type Importer struct {
	reg    Registry
	idx    Indexer
	policy Policy
	logger *log.Logger
}

func New(reg Registry, idx Indexer, opts ...Option) *Importer {
	im := &Importer{
		reg:    reg,
		idx:    idx,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(im)
	}

	return im
}

// Import installs or updates the MIME type described by the container at path.
func (im *Importer) Import(path string) Result {
	c, err := resource.Open(path)
	if err != nil {
		result := Result{Source: path}
		if errors.Is(err, resource.ErrContainerUnreadable) {
			return result.fail(ContainerUnreadable, 0, err)
		}
		return result.fail(MalformedContainer, 0, err)
	}

	return im.ImportContainer(c)
}

// ImportContainer installs or updates the MIME type described by c.
func (im *Importer) ImportContainer(c *resource.Container) Result {
	result := Result{Source: c.Path()}

	raw, ok := c.Load(resource.StringType, KeyType)
	if !ok {
		return result.fail(MissingRequiredField, 0, missing(resource.StringType, KeyType))
	}

	if !im.install(&result, cString(raw.Data)) {
		return result
	}

	raw, ok = c.Load(shortDescriptionField.Tag, shortDescriptionField.Key)
	if !ok {
		return result.fail(MissingRequiredField, registry.FieldShortDescription, missing(shortDescriptionField.Tag, shortDescriptionField.Key))
	}
	if _, err := im.setField(&result, shortDescriptionField, raw.Data); err != nil {
		return result.fail(FieldError, registry.FieldShortDescription, err)
	}

	var attrs registry.AttrInfo
	for _, entry := range optionalFields {
		raw, ok := c.Load(entry.Tag, entry.Key)
		if !ok || (entry.skipEmpty && raw.Size() == 0) {
			continue
		}

		field, err := im.setField(&result, entry, raw.Data)
		if err != nil {
			if im.policy.AbortOnOptionalFailure {
				return result.fail(FieldError, entry.Kind, err)
			}
			continue
		}

		if a, ok := field.(registry.AttrInfo); ok {
			attrs = a
		}
	}

	// attrs is nil unless the attribute schema was set.
	im.updateIndexes(&result, attrs)

	return result
}

// InstallBare installs or updates typeString without a resource container.
// The short description is set unless it is empty.
func (im *Importer) InstallBare(typeString string, shortDescription string) Result {
	var result Result
	if !im.install(&result, typeString) {
		return result
	}

	if shortDescription != "" {
		if _, err := im.setField(&result, shortDescriptionField, []byte(shortDescription)); err != nil {
			return result.fail(FieldError, registry.FieldShortDescription, err)
		}
	}

	return result
}

// install validates s and installs it unless it already is. It returns false after
// recording a failure.
func (im *Importer) install(result *Result, s string) bool {
	t, status, err := mimetype.Check(s, im.reg)
	switch {
	case status == mimetype.Invalid:
		result.fail(InvalidType, 0, err)
		return false
	case err != nil:
		result.fail(InstallError, 0, err)
		return false
	}

	result.Type = t
	if status == mimetype.AlreadyInstalled {
		result.Updated = true
		im.logger.Debug("MIME type is already installed, updating", "type", t)
		return true
	}

	if err := im.reg.Install(t); err != nil {
		result.fail(InstallError, 0, fmt.Errorf("install: %w", err))
		return false
	}
	im.logger.Debug("installed MIME type", "type", t)

	return true
}

// setField decodes data and stores it in the record of the imported type.
// The outcome is appended to result.Fields.
func (im *Importer) setField(result *Result, entry fieldEntry, data []byte) (registry.Field, error) {
	field, err := entry.decode(data)
	if err == nil {
		err = im.reg.SetField(result.Type, field)
	} else {
		err = fmt.Errorf("failed to decode %s from %s: %w", entry.Kind, entry.Key, err)
	}

	result.Fields = append(result.Fields, FieldOutcome{Kind: entry.Kind, Key: entry.Key, Err: err})
	if err != nil {
		im.logger.Warn("failed to set field", "type", result.Type, "field", entry.Kind, "err", err)
		return nil, err
	}

	return field, nil
}

// updateIndexes brings the index of every attribute with a searchable flag into the state
// the flag asks for. Attributes without the flag leave their index alone.
func (im *Importer) updateIndexes(result *Result, attrs registry.AttrInfo) {
	for _, attr := range attrs {
		if attr.Searchable == nil {
			continue
		}

		outcome := im.idx.EnsureIndex(attr.Name, attr.Type, *attr.Searchable)
		result.Indexes = append(result.Indexes, outcome)
	}
}

func missing(tag resource.TypeTag, key string) error {
	return fmt.Errorf("%w: %s %s", ErrMissingField, tag, key)
}
