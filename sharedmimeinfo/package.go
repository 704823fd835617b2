package sharedmimeinfo

import (
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"github.com/MatthiasKunnen/xdgmime/basedir"
	"github.com/MatthiasKunnen/xdgmime/mimetype"
	"github.com/MatthiasKunnen/xdgmime/registry"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Namespace is the XML namespace of shared-mime-info package files.
const Namespace = "http://www.freedesktop.org/standards/shared-mime-info"

const packagePrefix = "xdgmime-"

// MaxMagicMatches is the maximum number of match elements a sniffer rule may expand to.
// Every pattern of a group is nested below each pattern of the group before it, so the
// expansion grows with the product of the group sizes.
const MaxMagicMatches = 256

// ErrMagicTooLarge is reported for records whose sniffer rule expands to more than
// MaxMagicMatches matches. Such records are exported without magic.
var ErrMagicTooLarge = errors.New("sniffer rule expands to too many magic matches")

// Package is a shared-mime-info package file, as found in <data dir>/mime/packages.
type Package struct {
	XMLName   xml.Name   `xml:"http://www.freedesktop.org/standards/shared-mime-info mime-info"`
	MimeTypes []MimeType `xml:"mime-type"`
}

type MimeType struct {
	Type       string    `xml:"type,attr"`
	Comment    string    `xml:"comment,omitempty"`
	Icon       *IconRef  `xml:"icon,omitempty"`
	Globs      []Glob    `xml:"glob"`
	Magic      []Magic   `xml:"magic"`
	SubClassOf []TypeRef `xml:"sub-class-of"`
	Aliases    []TypeRef `xml:"alias"`
}

type IconRef struct {
	Name string `xml:"name,attr"`
}

type TypeRef struct {
	Type string `xml:"type,attr"`
}

type Glob struct {
	Pattern string `xml:"pattern,attr"`
}

// Magic holds content rules. Top-level matches are alternatives; a nested match only
// applies if its parent matched.
type Magic struct {
	Priority int     `xml:"priority,attr"`
	Matches  []Match `xml:"match"`
}

type Match struct {
	Type    string  `xml:"type,attr"`
	Value   string  `xml:"value,attr"`
	Offset  string  `xml:"offset,attr"`
	Mask    string  `xml:"mask,attr,omitempty"`
	Matches []Match `xml:"match"`
}

// IconName returns the freedesktop icon name of t, e.g. application-x-sen-note.
func IconName(t mimetype.Type) string {
	return t.Supertype() + "-" + t.Subtype()
}

// NewMimeType converts a registry record to its shared-mime-info form.
// If the sniffer rule is too large, the returned MimeType has no magic and the error wraps
// ErrMagicTooLarge.
func NewMimeType(rec *registry.TypeRecord) (MimeType, error) {
	m := MimeType{
		Type:    rec.Type.Key(),
		Comment: rec.ShortDescription,
	}

	if rec.IconSize > 0 {
		m.Icon = &IconRef{Name: IconName(rec.Type)}
	}

	for _, ext := range rec.Extensions {
		m.Globs = append(m.Globs, Glob{Pattern: "*." + ext})
	}

	if rec.SnifferRule != "" {
		rule, err := registry.ParseSnifferRule(rec.SnifferRule)
		if err != nil {
			return m, fmt.Errorf("failed to convert sniffer rule of %s: %w", rec.Type, err)
		}
		if n := magicSize(rule.Groups); n > MaxMagicMatches {
			return m, fmt.Errorf("%w: %s needs more than %d", ErrMagicTooLarge, rec.Type, MaxMagicMatches)
		}
		m.Magic = []Magic{magicFromRule(rule)}
	}

	return m, nil
}

// magicFromRule converts a sniffer rule. All groups of a rule must match, so every pattern
// of a group is nested below each pattern of the group before it.
func magicFromRule(rule registry.ParsedSnifferRule) Magic {
	return Magic{
		Priority: int(math.Round(rule.Priority * 100)),
		Matches:  matchesFor(rule.Groups),
	}
}

func matchesFor(groups []registry.PatternGroup) []Match {
	if len(groups) == 0 {
		return nil
	}

	group := groups[0]
	offset := strconv.Itoa(group.Start)
	if group.End > group.Start {
		offset += ":" + strconv.Itoa(group.End)
	}

	children := matchesFor(groups[1:])
	matches := make([]Match, 0, len(group.Patterns))
	for _, p := range group.Patterns {
		value, mask := p.Value, p.Mask
		if group.CaseInsensitive {
			value, mask = foldCase(value, mask)
		}

		m := Match{
			Type:    "string",
			Value:   escapeMagicValue(value),
			Offset:  offset,
			Matches: children,
		}
		if len(mask) > 0 {
			m.Mask = "0x" + hex.EncodeToString(mask)
		}
		matches = append(matches, m)
	}

	return matches
}

// magicSize returns the number of match elements matchesFor creates for groups, capped at
// MaxMagicMatches+1.
func magicSize(groups []registry.PatternGroup) int {
	total, width := 0, 1
	for _, group := range groups {
		width *= len(group.Patterns)
		total += width
		if width > MaxMagicMatches || total > MaxMagicMatches {
			return MaxMagicMatches + 1
		}
	}

	return total
}

// foldCase turns a pattern into one that matches ASCII letters of either case: letters are
// upper-cased and their mask clears the case bit. Existing mask bits are kept.
func foldCase(value []byte, mask []byte) ([]byte, []byte) {
	folded := make([]byte, len(value))
	foldedMask := make([]byte, len(value))
	hasLetter := false

	for i, b := range value {
		m := byte(0xff)
		if mask != nil {
			m = mask[i]
		}
		if 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z' {
			hasLetter = true
			m &= 0xdf
		}
		folded[i] = b & m
		foldedMask[i] = m
	}

	if !hasLetter && mask == nil {
		return value, nil
	}

	return folded, foldedMask
}

// escapeMagicValue writes value as a magic string, escaping bytes that are not printable
// ASCII.
func escapeMagicValue(value []byte) string {
	var sb strings.Builder
	for _, b := range value {
		switch {
		case b == '\\':
			sb.WriteString(`\\`)
		case b < 0x20 || b > 0x7e:
			fmt.Fprintf(&sb, `\x%02x`, b)
		default:
			sb.WriteByte(b)
		}
	}

	return sb.String()
}

// Encode returns the XML document of p.
func (p *Package) Encode() ([]byte, error) {
	data, err := xml.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, err
	}

	return append([]byte(xml.Header), append(data, '\n')...), nil
}

// LoadPackage reads the package file at path.
func LoadPackage(path string) (*Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var p Package
	if err := xml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse package %s: %w", path, err)
	}

	return &p, nil
}

// Exporter writes one package file per registry record into <data home>/mime/packages.
// The shared-mime-info database picks the files up the next time update-mime-database runs
// on the data home.
type Exporter struct {
	dir string
}

func NewExporter(dataHome string) *Exporter {
	return &Exporter{dir: filepath.Join(dataHome, "mime", "packages")}
}

// PackagePath returns the path of the package file of t.
func (e *Exporter) PackagePath(t mimetype.Type) string {
	return filepath.Join(e.dir, packagePrefix+t.Supertype()+"-"+t.Subtype()+".xml")
}

// Export writes the package of rec. A record whose sniffer rule is too large is written
// without magic and the error wraps ErrMagicTooLarge.
func (e *Exporter) Export(rec *registry.TypeRecord) error {
	m, convErr := NewMimeType(rec)
	if convErr != nil && !errors.Is(convErr, ErrMagicTooLarge) {
		return convErr
	}

	data, err := (&Package{MimeTypes: []MimeType{m}}).Encode()
	if err != nil {
		return fmt.Errorf("export: failed to encode package of %s: %w", rec.Type, err)
	}

	if err := basedir.WriteFile(e.PackagePath(rec.Type), data, 0o644); err != nil {
		return err
	}

	return convErr
}

func (e *Exporter) Remove(t mimetype.Type) error {
	err := os.Remove(e.PackagePath(t))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove: failed to remove package of %s: %w", t, err)
	}

	return nil
}
