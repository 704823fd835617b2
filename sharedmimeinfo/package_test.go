package sharedmimeinfo

import (
	"errors"
	"github.com/MatthiasKunnen/xdgmime/mimetype"
	"github.com/MatthiasKunnen/xdgmime/registry"
	"github.com/google/go-cmp/cmp"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExporter(t *testing.T) {
	dataHome := t.TempDir()
	e := NewExporter(dataHome)

	rec := &registry.TypeRecord{
		Type:             mimetype.MustParse("application/x-SEN-note"),
		ShortDescription: "SEN Note",
		SnifferRule:      `0.5 [0:4] ('SEN' | "N\x00") ('v1' & 0xffff)`,
		Extensions:       []string{"note", "senote"},
		IconSize:         3,
	}
	if err := e.Export(rec); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dataHome, "mime", "packages", "xdgmime-application-x-sen-note.xml")
	if e.PackagePath(rec.Type) != path {
		t.Errorf("PackagePath() = %s, want %s", e.PackagePath(rec.Type), path)
	}

	got, err := LoadPackage(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.XMLName.Space != Namespace {
		t.Errorf("namespace = %q, want %q", got.XMLName.Space, Namespace)
	}

	version := []Match{{Type: "string", Value: "v1", Offset: "0", Mask: "0xffff"}}
	want := []MimeType{{
		Type:    "application/x-sen-note",
		Comment: "SEN Note",
		Icon:    &IconRef{Name: "application-x-sen-note"},
		Globs:   []Glob{{Pattern: "*.note"}, {Pattern: "*.senote"}},
		Magic: []Magic{{
			Priority: 50,
			Matches: []Match{
				{Type: "string", Value: "SEN", Offset: "0:4", Matches: version},
				{Type: "string", Value: `N\x00`, Offset: "0:4", Matches: version},
			},
		}},
	}}
	if diff := cmp.Diff(want, got.MimeTypes); diff != "" {
		t.Errorf("LoadPackage() mismatch (-want +got):\n%s", diff)
	}

	if err := e.Remove(rec.Type); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("package still exists after Remove(): %v", err)
	}
	if err := e.Remove(rec.Type); err != nil {
		t.Errorf("second Remove() error = %v, want nil", err)
	}
}

func TestExportMinimalRecord(t *testing.T) {
	e := NewExporter(t.TempDir())
	rec := &registry.TypeRecord{Type: mimetype.MustParse("entity/person")}

	if err := e.Export(rec); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(e.PackagePath(rec.Type))
	if err != nil {
		t.Fatal(err)
	}

	text := string(data)
	for _, unwanted := range []string{"<comment", "<glob", "<magic", "<icon"} {
		if strings.Contains(text, unwanted) {
			t.Errorf("package contains %s:\n%s", unwanted, text)
		}
	}
	if !strings.HasPrefix(text, "<?xml") {
		t.Errorf("package has no XML header:\n%s", text)
	}
}

func TestEscapeMagicValue(t *testing.T) {
	got := escapeMagicValue([]byte("a\\b\x7f\n"))
	if want := `a\\b\x7f\x0a`; got != want {
		t.Errorf("escapeMagicValue() = %s, want %s", got, want)
	}
}

func TestExportCaseInsensitiveGroup(t *testing.T) {
	rec := &registry.TypeRecord{
		Type:        mimetype.MustParse("text/html"),
		SnifferRule: `0.40 [0:64]( -i "<Html" | "<SCRIPT" )`,
	}

	got, err := NewMimeType(rec)
	if err != nil {
		t.Fatal(err)
	}

	want := []Magic{{
		Priority: 40,
		Matches: []Match{
			{Type: "string", Value: "<HTML", Offset: "0:64", Mask: "0xffdfdfdfdf"},
			{Type: "string", Value: "<SCRIPT", Offset: "0:64", Mask: "0xffdfdfdfdfdfdf"},
		},
	}}
	if diff := cmp.Diff(want, got.Magic); diff != "" {
		t.Errorf("NewMimeType() magic mismatch (-want +got):\n%s", diff)
	}
}

func TestFoldCase(t *testing.T) {
	tests := []struct {
		value    string
		mask     []byte
		wantVal  string
		wantMask []byte
	}{
		{value: "ab1", wantVal: "AB1", wantMask: []byte{0xdf, 0xdf, 0xff}},
		{value: "123", wantVal: "123", wantMask: nil},
		{value: "a1", mask: []byte{0xff, 0x0f}, wantVal: "A\x01", wantMask: []byte{0xdf, 0x0f}},
	}

	for _, tt := range tests {
		value, mask := foldCase([]byte(tt.value), tt.mask)
		if string(value) != tt.wantVal {
			t.Errorf("foldCase(%q) value = %q, want %q", tt.value, value, tt.wantVal)
		}
		if diff := cmp.Diff(tt.wantMask, mask); diff != "" {
			t.Errorf("foldCase(%q) mask mismatch (-want +got):\n%s", tt.value, diff)
		}
	}
}

func TestExportOversizedMagic(t *testing.T) {
	e := NewExporter(t.TempDir())
	rec := &registry.TypeRecord{
		Type:        mimetype.MustParse("application/x-sen-note"),
		SnifferRule: "0.5 " + strings.Repeat("('a' | 'b' | 'c' | 'd') ", 9),
		Extensions:  []string{"note"},
	}

	err := e.Export(rec)
	if !errors.Is(err, ErrMagicTooLarge) {
		t.Fatalf("Export() error = %v, want ErrMagicTooLarge", err)
	}

	got, err := LoadPackage(e.PackagePath(rec.Type))
	if err != nil {
		t.Fatal(err)
	}
	want := []MimeType{{
		Type:  "application/x-sen-note",
		Globs: []Glob{{Pattern: "*.note"}},
	}}
	if diff := cmp.Diff(want, got.MimeTypes); diff != "" {
		t.Errorf("LoadPackage() mismatch (-want +got):\n%s", diff)
	}
}

func TestMagicSize(t *testing.T) {
	group := func(n int) registry.PatternGroup {
		return registry.PatternGroup{Patterns: make([]registry.Pattern, n)}
	}

	tests := []struct {
		groups []registry.PatternGroup
		want   int
	}{
		{groups: nil, want: 0},
		{groups: []registry.PatternGroup{group(2), group(1)}, want: 4},
		{groups: []registry.PatternGroup{group(4), group(4), group(4)}, want: 84},
		{groups: []registry.PatternGroup{group(4), group(4), group(4), group(4)}, want: MaxMagicMatches + 1},
	}

	for _, tt := range tests {
		if got := magicSize(tt.groups); got != tt.want {
			t.Errorf("magicSize(%d groups) = %d, want %d", len(tt.groups), got, tt.want)
		}
	}
}
