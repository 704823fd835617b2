package registry

import (
	"errors"
	"fmt"
	"strings"
)

// MaxDescriptionLength is the maximum length in bytes of the short and long descriptions.
const MaxDescriptionLength = 239

// MaxSnifferRuleLength is the maximum length in bytes of a sniffer rule.
const MaxSnifferRuleLength = 1024

// MaxIconSize is the maximum size in bytes of an icon.
const MaxIconSize = 1 << 20

// FieldKind identifies a metadata field of a TypeRecord.
type FieldKind int

const (
	FieldShortDescription FieldKind = iota + 1
	FieldLongDescription
	FieldPreferredApp
	FieldSnifferRule
	FieldExtensions
	FieldAttrInfo
	FieldIcon
)

func (k FieldKind) String() string {
	switch k {
	case FieldShortDescription:
		return "short description"
	case FieldLongDescription:
		return "long description"
	case FieldPreferredApp:
		return "preferred application"
	case FieldSnifferRule:
		return "sniffer rule"
	case FieldExtensions:
		return "file extensions"
	case FieldAttrInfo:
		return "attribute info"
	case FieldIcon:
		return "icon"
	default:
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
}

// Field is a value for one metadata field. The set of fields is closed, use one of
// ShortDescription, LongDescription, PreferredApp, SnifferRule, Extensions, AttrInfo or Icon.
type Field interface {
	Kind() FieldKind

	// apply validates the value and stores it in rec.
	apply(rec *TypeRecord) error
}

type ShortDescription string

func (ShortDescription) Kind() FieldKind { return FieldShortDescription }

func (d ShortDescription) apply(rec *TypeRecord) error {
	switch {
	case d == "":
		return errors.New("short description is empty")
	case strings.ContainsAny(string(d), "\r\n"):
		return errors.New("short description contains a line break")
	case len(d) > MaxDescriptionLength:
		return fmt.Errorf("short description exceeds %d bytes", MaxDescriptionLength)
	}

	rec.ShortDescription = string(d)
	return nil
}

type LongDescription string

func (LongDescription) Kind() FieldKind { return FieldLongDescription }

func (d LongDescription) apply(rec *TypeRecord) error {
	if len(d) > MaxDescriptionLength {
		return fmt.Errorf("long description exceeds %d bytes", MaxDescriptionLength)
	}

	rec.LongDescription = string(d)
	return nil
}

// PreferredApp is the desktop ID of the application that opens files of the type,
// e.g. org.example.Notes.desktop.
type PreferredApp string

func (PreferredApp) Kind() FieldKind { return FieldPreferredApp }

func (p PreferredApp) apply(rec *TypeRecord) error {
	if err := checkDesktopId(string(p)); err != nil {
		return err
	}

	rec.PreferredApp = string(p)
	return nil
}

// checkDesktopId checks the form of a [Desktop ID] such as org.example.Notes.desktop.
//
// [Desktop ID]: https://specifications.freedesktop.org/desktop-entry-spec/1.5/file-naming.html#desktop-file-id
func checkDesktopId(id string) error {
	base, found := strings.CutSuffix(id, ".desktop")
	if !found || base == "" {
		return fmt.Errorf("preferred application %q is not a desktop ID ending in .desktop", id)
	}

	for _, c := range base {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		case c == '_', c == '-', c == '.':
		default:
			return fmt.Errorf("preferred application %q contains invalid character %q", id, c)
		}
	}

	return nil
}

type SnifferRule string

func (SnifferRule) Kind() FieldKind { return FieldSnifferRule }

func (s SnifferRule) apply(rec *TypeRecord) error {
	if len(s) > MaxSnifferRuleLength {
		return fmt.Errorf("sniffer rule exceeds %d bytes", MaxSnifferRuleLength)
	}
	if _, err := ParseSnifferRule(string(s)); err != nil {
		return err
	}

	rec.SnifferRule = string(s)
	return nil
}

// Extensions is the set of file name extensions of the type, without leading dot.
// Extensions are lower-cased and duplicates are dropped; the first occurrence wins.
type Extensions []string

func (Extensions) Kind() FieldKind { return FieldExtensions }

func (e Extensions) apply(rec *TypeRecord) error {
	normalized := make([]string, 0, len(e))
	for _, ext := range e {
		ext = strings.ToLower(strings.TrimPrefix(ext, "."))
		switch {
		case ext == "":
			return errors.New("empty file extension")
		case strings.ContainsAny(ext, "/ \t\r\n"):
			return fmt.Errorf("file extension %q contains a slash or whitespace", ext)
		}

		normalized = append(normalized, ext)
	}

	rec.Extensions = removeDuplicates(normalized)
	return nil
}

// AttrInfo is the attribute schema of the type.
type AttrInfo []AttributeSpec

func (AttrInfo) Kind() FieldKind { return FieldAttrInfo }

func (a AttrInfo) apply(rec *TypeRecord) error {
	seen := make(map[string]bool, len(a))
	for i, attr := range a {
		switch {
		case attr.Name == "":
			return fmt.Errorf("attribute %d has no name", i)
		case seen[attr.Name]:
			return fmt.Errorf("duplicate attribute %s", attr.Name)
		case !attr.Type.Valid():
			return fmt.Errorf("attribute %s has unknown value type %q", attr.Name, attr.Type)
		case attr.Width < 0:
			return fmt.Errorf("attribute %s has negative width", attr.Name)
		}
		seen[attr.Name] = true
	}

	rec.Attributes = append([]AttributeSpec(nil), a...)
	return nil
}

// Icon is the raw icon data of the type.
type Icon []byte

func (Icon) Kind() FieldKind { return FieldIcon }

func (i Icon) apply(rec *TypeRecord) error {
	switch {
	case len(i) == 0:
		return errors.New("icon is empty")
	case len(i) > MaxIconSize:
		return fmt.Errorf("icon exceeds %d bytes", MaxIconSize)
	}

	rec.Icon = append([]byte(nil), i...)
	rec.IconSize = len(i)
	return nil
}

// removeDuplicates removes duplicates entries from a slice and returns the slice.
// Order is preserved and the first occurrence of every entry is preserved.
func removeDuplicates[T comparable](input []T) []T {
	seen := make(map[T]bool, len(input))
	list := make([]T, 0, len(input))

	for _, item := range input {
		if !seen[item] {
			seen[item] = true
			list = append(list, item)
		}
	}

	return list
}
