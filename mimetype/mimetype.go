// Package mimetype validates MIME type strings and reports their installation status.
//
// The accepted grammar is the restricted-name form of [RFC 6838]: a supertype and a
// subtype, each 1 to 127 characters long, starting with a letter or digit and continuing
// with letters, digits and any of "!#$&-^_.+". Types compare case-insensitively.
//
// [RFC 6838]: https://www.rfc-editor.org/rfc/rfc6838#section-4.2
package mimetype

import (
	"errors"
	"fmt"
	"strings"
)

// MaxPartLength is the maximum length of a supertype or subtype.
const MaxPartLength = 127

// Supertypes of the two categories that list groups types by.
const (
	Entity   = "entity"
	Relation = "relation"
)

var ErrInvalidType = errors.New("invalid MIME type")

// Type is a syntactically valid MIME type. The zero value is not valid.
type Type struct {
	s     string
	slash int
}

// Parse validates s and returns it as a Type.
// The spelling of s is preserved, use [Type.Key] for comparisons.
func Parse(s string) (Type, error) {
	super, sub, found := strings.Cut(s, "/")
	if !found {
		return Type{}, fmt.Errorf("%w %q: missing subtype", ErrInvalidType, s)
	}

	if err := checkPart(super); err != nil {
		return Type{}, fmt.Errorf("%w %q: supertype %w", ErrInvalidType, s, err)
	}

	if err := checkPart(sub); err != nil {
		return Type{}, fmt.Errorf("%w %q: subtype %w", ErrInvalidType, s, err)
	}

	return Type{s: s, slash: len(super)}, nil
}

// MustParse is like Parse but panics if s is not valid.
func MustParse(s string) Type {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return t
}

// IsValid returns true if s is a valid MIME type.
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

func checkPart(part string) error {
	switch {
	case part == "":
		return errors.New("is empty")
	case len(part) > MaxPartLength:
		return fmt.Errorf("exceeds %d characters", MaxPartLength)
	case !isAlnum(part[0]):
		return fmt.Errorf("must start with a letter or digit, found %q", part[0])
	}

	for i := 1; i < len(part); i++ {
		c := part[i]
		if isAlnum(c) || strings.IndexByte("!#$&-^_.+", c) >= 0 {
			continue
		}

		return fmt.Errorf("contains invalid character %q", c)
	}

	return nil
}

func isAlnum(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

// String returns the type as it was parsed.
func (t Type) String() string {
	return t.s
}

// Key returns the lower-case form of the type, used for storage and comparison.
func (t Type) Key() string {
	return strings.ToLower(t.s)
}

// Supertype returns the lower-case supertype, e.g. "entity" for "entity/Person".
func (t Type) Supertype() string {
	return strings.ToLower(t.s[:t.slash])
}

// Subtype returns the lower-case subtype, e.g. "person" for "entity/Person".
func (t Type) Subtype() string {
	return strings.ToLower(t.s[t.slash+1:])
}

// IsZero reports whether t is the zero Type.
func (t Type) IsZero() bool {
	return t.s == ""
}

// Equal reports whether t and other denote the same type, ignoring case.
func (t Type) Equal(other Type) bool {
	return strings.EqualFold(t.s, other.s)
}

func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.s), nil
}

func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}

	*t = parsed
	return nil
}
