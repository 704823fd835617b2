// Package resource reads resource containers: documents holding named, typed resources,
// such as the metadata describing a MIME type.
//
// A container is a YAML, JSON or TOML document:
//
//	format: "1.0"
//	resources:
//	  - type: CSTR
//	    name: META:TYPE
//	    data: application/x-sen-note
//	  - type: MSGG
//	    name: META:EXTENS
//	    data:
//	      extensions: [note]
//	  - type: VICN
//	    name: META:ICON
//	    file: note.hvif
//
// Every resource has a four-character type tag, a name and exactly one payload: data, base64
// or file. String data is used as is, structured data is flattened to its JSON encoding,
// base64 is decoded and file is read relative to the container.
package resource

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/Masterminds/semver/v3"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrContainerUnreadable = errors.New("resource container is unreadable")
	ErrMalformedContainer  = errors.New("resource container is malformed")
)

// supportedFormats is the range of container format versions that can be read.
var supportedFormats = mustConstraint("^1")

func mustConstraint(c string) *semver.Constraints {
	constraint, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}

	return constraint
}

// TypeTag is the four-character type code of a resource.
type TypeTag string

const (
	StringType       TypeTag = "CSTR"
	MessageType      TypeTag = "MSGG"
	VectorIconType   TypeTag = "VICN"
	ShortDescType    TypeTag = "MSDC"
	LongDescType     TypeTag = "MLDC"
	AppSignatureType TypeTag = "MSIG"
)

// Resource is one resource of a container.
type Resource struct {
	Tag  TypeTag
	Name string
	Data []byte
}

// Size returns the size of the resource data in bytes.
func (r Resource) Size() int {
	return len(r.Data)
}

type resourceKey struct {
	tag  TypeTag
	name string
}

// Container is a decoded resource container.
type Container struct {
	path      string
	format    *semver.Version
	resources []Resource
	byKey     map[resourceKey]int
}

type document struct {
	Format    any           `json:"format"`
	Resources []rawResource `json:"resources"`
}

type rawResource struct {
	Type   string          `json:"type"`
	Name   string          `json:"name"`
	Data   json.RawMessage `json:"data"`
	Base64 *string         `json:"base64"`
	File   *string         `json:"file"`
}

// Open reads and validates the container at path. The format is chosen by the file
// extension, see [FormatForPath].
// Errors wrap ErrContainerUnreadable if the container or a file it references cannot be
// read, and ErrMalformedContainer if the container is not valid.
func Open(path string) (*Container, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContainerUnreadable, err)
	}
	defer file.Close()

	container, err := Decode(file, FormatForPath(path), filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	container.path = path

	return container, nil
}

// Decode reads a container of the given format from reader.
// Files referenced by resources are resolved relative to baseDir.
func Decode(reader io.Reader, format Format, baseDir string) (*Container, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContainerUnreadable, err)
	}

	generic, err := format.decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %w", ErrMalformedContainer, format, err)
	}

	jsonData, err := validate(generic)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedContainer, err)
	}

	var doc document
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedContainer, err)
	}

	c := &Container{
		resources: make([]Resource, 0, len(doc.Resources)),
		byKey:     make(map[resourceKey]int, len(doc.Resources)),
	}

	if doc.Format != nil {
		version, err := semver.NewVersion(fmt.Sprint(doc.Format))
		if err != nil {
			return nil, fmt.Errorf("%w: bad format version %v: %w", ErrMalformedContainer, doc.Format, err)
		}
		if !supportedFormats.Check(version) {
			return nil, fmt.Errorf("%w: unsupported format version %s", ErrMalformedContainer, version)
		}
		c.format = version
	}

	for i, raw := range doc.Resources {
		res, err := raw.resolve(baseDir)
		if err != nil {
			return nil, fmt.Errorf("resource %d (%s %s): %w", i, raw.Type, raw.Name, err)
		}

		key := resourceKey{tag: res.Tag, name: res.Name}
		if _, exists := c.byKey[key]; exists {
			return nil, fmt.Errorf("%w: duplicate resource %s %s", ErrMalformedContainer, res.Tag, res.Name)
		}
		c.byKey[key] = len(c.resources)
		c.resources = append(c.resources, res)
	}

	return c, nil
}

func (raw rawResource) resolve(baseDir string) (Resource, error) {
	res := Resource{Tag: TypeTag(raw.Type), Name: raw.Name}

	switch {
	case raw.Base64 != nil:
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(*raw.Base64))
		if err != nil {
			return res, fmt.Errorf("%w: bad base64 payload: %w", ErrMalformedContainer, err)
		}
		res.Data = decoded
	case raw.File != nil:
		path := *raw.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return res, fmt.Errorf("%w: %w", ErrContainerUnreadable, err)
		}
		res.Data = content
	case len(raw.Data) > 0 && raw.Data[0] == '"':
		var s string
		if err := json.Unmarshal(raw.Data, &s); err != nil {
			return res, fmt.Errorf("%w: %w", ErrMalformedContainer, err)
		}
		res.Data = []byte(s)
	default:
		var compact bytes.Buffer
		if err := json.Compact(&compact, raw.Data); err != nil {
			return res, fmt.Errorf("%w: %w", ErrMalformedContainer, err)
		}
		res.Data = compact.Bytes()
	}

	return res, nil
}

// Path returns the path the container was opened from, empty if it was decoded from a
// reader.
func (c *Container) Path() string {
	return c.path
}

// Format returns the declared format version, nil if the container does not declare one.
func (c *Container) Format() *semver.Version {
	return c.format
}

// Load returns the resource with the given tag and name.
// The second return value is false if there is no such resource, which is not an error.
func (c *Container) Load(tag TypeTag, name string) (Resource, bool) {
	i, ok := c.byKey[resourceKey{tag: tag, name: name}]
	if !ok {
		return Resource{}, false
	}

	return c.resources[i], true
}

// Resources returns all resources in document order.
func (c *Container) Resources() []Resource {
	return append([]Resource(nil), c.resources...)
}
