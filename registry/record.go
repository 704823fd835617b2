package registry

import (
	"fmt"
	"github.com/MatthiasKunnen/xdgmime/mimetype"
	"slices"
	"strings"
	"time"
)

// ValueType is the declared type of an attribute value.
type ValueType string

const (
	TypeString ValueType = "string"
	TypeInt32  ValueType = "int32"
	TypeUint32 ValueType = "uint32"
	TypeInt64  ValueType = "int64"
	TypeUint64 ValueType = "uint64"
	TypeFloat  ValueType = "float"
	TypeDouble ValueType = "double"
	TypeBool   ValueType = "bool"
	TypeTime   ValueType = "time"
)

var valueTypeAliases = map[string]ValueType{
	"int":     TypeInt32,
	"integer": TypeInt32,
	"boolean": TypeBool,
	"float32": TypeFloat,
	"float64": TypeDouble,
	"text":    TypeString,

	// Four-character type codes.
	"cstr": TypeString,
	"long": TypeInt32,
	"ulng": TypeUint32,
	"llng": TypeInt64,
	"ullg": TypeUint64,
	"flot": TypeFloat,
	"dble": TypeDouble,
}

// ParseValueType returns the ValueType named by s. Matching is case-insensitive. A few
// common aliases such as "integer" are accepted, as are four-character type codes such as
// "CSTR" and "LONG".
func ParseValueType(s string) (ValueType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if alias, ok := valueTypeAliases[name]; ok {
		return alias, nil
	}

	v := ValueType(name)
	if !v.Valid() {
		return "", fmt.Errorf("unknown value type %q", s)
	}

	return v, nil
}

// Valid returns true if v is one of the known value types.
func (v ValueType) Valid() bool {
	switch v {
	case TypeString, TypeInt32, TypeUint32, TypeInt64, TypeUint64,
		TypeFloat, TypeDouble, TypeBool, TypeTime:
		return true
	default:
		return false
	}
}

// Indexable returns true if a search index can be kept for attributes of this type.
func (v ValueType) Indexable() bool {
	return v.Valid() && v != TypeBool
}

func (v *ValueType) UnmarshalText(text []byte) error {
	parsed, err := ParseValueType(string(text))
	if err != nil {
		return err
	}

	*v = parsed
	return nil
}

// AttributeSpec describes one named, typed attribute of files of a MIME type.
type AttributeSpec struct {
	// Name is the internal attribute name, e.g. attr:title. Unique within a TypeRecord.
	Name string `json:"name" yaml:"name"`

	// DisplayName is the name shown to users, e.g. Title.
	DisplayName string `json:"display_name,omitempty" yaml:"display_name,omitempty"`

	Type ValueType `json:"type" yaml:"type"`

	// Searchable states whether a search index should exist for this attribute.
	// Nil means the flag was not given, which leaves existing indices alone.
	Searchable *bool `json:"searchable,omitempty" yaml:"searchable,omitempty"`

	Viewable bool `json:"viewable,omitempty" yaml:"viewable,omitempty"`
	Editable bool `json:"editable,omitempty" yaml:"editable,omitempty"`
	Width    int  `json:"width,omitempty" yaml:"width,omitempty"`
}

// IsSearchable returns the searchable flag, defaulting to false.
func (a AttributeSpec) IsSearchable() bool {
	return a.Searchable != nil && *a.Searchable
}

// TypeRecord is the registry entry of one MIME type.
type TypeRecord struct {
	// Type identifies the record. It never changes after installation.
	Type mimetype.Type `yaml:"type"`

	ShortDescription string          `yaml:"short_description,omitempty"`
	LongDescription  string          `yaml:"long_description,omitempty"`
	PreferredApp     string          `yaml:"preferred_app,omitempty"`
	SnifferRule      string          `yaml:"sniffer_rule,omitempty"`
	Extensions       []string        `yaml:"extensions,omitempty"`
	Attributes       []AttributeSpec `yaml:"attributes,omitempty"`

	// IconSize is the size of the icon blob stored next to the record, 0 if there is none.
	IconSize int `yaml:"icon_size,omitempty"`

	Installed time.Time `yaml:"installed"`
	Modified  time.Time `yaml:"modified"`

	// Icon is loaded from the blob file by [Registry.Get].
	Icon []byte `yaml:"-"`
}

// Attribute returns the attribute with the given name.
func (r *TypeRecord) Attribute(name string) (AttributeSpec, bool) {
	i := slices.IndexFunc(r.Attributes, func(a AttributeSpec) bool {
		return a.Name == name
	})
	if i < 0 {
		return AttributeSpec{}, false
	}

	return r.Attributes[i], true
}
