package importer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/MatthiasKunnen/xdgmime/registry"
	"github.com/MatthiasKunnen/xdgmime/resource"
)

// Resource names of the metadata fields.
const (
	KeyType             = "META:TYPE"
	KeyShortDescription = "META:S:DESC"
	KeyLongDescription  = "META:L:DESC"
	KeyPreferredApp     = "META:PREF_APP"
	KeySnifferRule      = "META:SNIFF_RULE"
	KeyExtensions       = "META:EXTENS"
	KeyAttrInfo         = "META:ATTR_INFO"
	KeyIcon             = "META:ICON"
)

// fieldEntry maps a field to the resource holding its value.
type fieldEntry struct {
	Kind   registry.FieldKind
	Tag    resource.TypeTag
	Key    string
	decode func(data []byte) (registry.Field, error)

	// skipEmpty treats a resource without data as absent.
	skipEmpty bool
}

var shortDescriptionField = fieldEntry{
	Kind:   registry.FieldShortDescription,
	Tag:    resource.ShortDescType,
	Key:    KeyShortDescription,
	decode: stringField[registry.ShortDescription],
}

// optionalFields are set in this order after the short description.
var optionalFields = []fieldEntry{
	{
		Kind:   registry.FieldLongDescription,
		Tag:    resource.LongDescType,
		Key:    KeyLongDescription,
		decode: stringField[registry.LongDescription],
	},
	{
		Kind:   registry.FieldPreferredApp,
		Tag:    resource.AppSignatureType,
		Key:    KeyPreferredApp,
		decode: stringField[registry.PreferredApp],
	},
	{
		Kind:   registry.FieldSnifferRule,
		Tag:    resource.StringType,
		Key:    KeySnifferRule,
		decode: stringField[registry.SnifferRule],
	},
	{
		Kind:   registry.FieldExtensions,
		Tag:    resource.MessageType,
		Key:    KeyExtensions,
		decode: decodeExtensions,
	},
	{
		Kind:   registry.FieldAttrInfo,
		Tag:    resource.MessageType,
		Key:    KeyAttrInfo,
		decode: decodeAttrInfo,
	},
	{
		Kind:      registry.FieldIcon,
		Tag:       resource.VectorIconType,
		Key:       KeyIcon,
		decode:    decodeIcon,
		skipEmpty: true,
	},
}

// cString returns data up to the first NUL.
func cString(data []byte) string {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}

	return string(data)
}

func stringField[F interface {
	~string
	registry.Field
}](data []byte) (registry.Field, error) {
	return F(cString(data)), nil
}

// decodeExtensions accepts a list of extensions or a message holding one:
//
//	["note", "senote"]
//	{"extensions": ["note", "senote"]}
func decodeExtensions(data []byte) (registry.Field, error) {
	if isJSONArray(data) {
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("bad extension list: %w", err)
		}
		return registry.Extensions(list), nil
	}

	var msg struct {
		Extensions []string `json:"extensions"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("bad extension message: %w", err)
	}

	return registry.Extensions(msg.Extensions), nil
}

type attrMessage struct {
	Attributes []registry.AttributeSpec `json:"attributes"`

	// Parallel arrays, one entry per attribute.
	Names       []string             `json:"attr:name"`
	PublicNames []string             `json:"attr:public_name"`
	Types       []registry.ValueType `json:"attr:type"`
	Viewable    []bool               `json:"attr:viewable"`
	Editable    []bool               `json:"attr:editable"`
	Width       []int                `json:"attr:width"`
	Searchable  []bool               `json:"attr:searchable"`
}

// decodeAttrInfo accepts a list of attributes, a message holding one, or a message with
// one array per attribute property:
//
//	[{"name": "attr:title", "type": "string", "searchable": true}]
//	{"attributes": [{"name": "attr:title", "type": "string"}]}
//	{"attr:name": ["attr:title"], "attr:public_name": ["Title"], "attr:type": ["CSTR"]}
func decodeAttrInfo(data []byte) (registry.Field, error) {
	if isJSONArray(data) {
		var list []registry.AttributeSpec
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("bad attribute list: %w", err)
		}
		return registry.AttrInfo(list), nil
	}

	var msg attrMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("bad attribute message: %w", err)
	}

	if len(msg.Names) == 0 {
		return registry.AttrInfo(msg.Attributes), nil
	}
	if len(msg.Attributes) > 0 {
		return nil, errors.New("attribute message mixes attributes and attr:name")
	}
	if len(msg.Types) != len(msg.Names) {
		return nil, fmt.Errorf("attribute message has %d names but %d types", len(msg.Names), len(msg.Types))
	}

	attrs := make([]registry.AttributeSpec, len(msg.Names))
	for i, name := range msg.Names {
		attrs[i] = registry.AttributeSpec{
			Name:        name,
			DisplayName: at(msg.PublicNames, i),
			Type:        msg.Types[i],
			Viewable:    at(msg.Viewable, i),
			Editable:    at(msg.Editable, i),
			Width:       at(msg.Width, i),
		}
		if i < len(msg.Searchable) {
			searchable := msg.Searchable[i]
			attrs[i].Searchable = &searchable
		}
	}

	return registry.AttrInfo(attrs), nil
}

func decodeIcon(data []byte) (registry.Field, error) {
	return registry.Icon(data), nil
}

// at returns list[i], or the zero value if list is too short.
func at[T any](list []T, i int) T {
	var zero T
	if i >= len(list) {
		return zero
	}

	return list[i]
}

func isJSONArray(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '['
}
