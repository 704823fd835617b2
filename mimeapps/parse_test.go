package mimeapps

import (
	"github.com/google/go-cmp/cmp"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	input := `# user preferences
[Default Applications]
entity/person=contacts.desktop;
entity/person=people.desktop;contacts.desktop
text/plain = editor.desktop ; viewer.desktop;

[Added Associations]
image/png=viewer.desktop;
invalid line

[X-Custom]
image/png=ignored.desktop;

[Removed Associations]
image/png=paint.desktop;
`

	got, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := MimeApps{
		Default: map[string][]string{
			"entity/person": {"contacts.desktop", "people.desktop"},
			"text/plain":    {"editor.desktop", "viewer.desktop"},
		},
		Added: map[string][]string{
			"image/png": {"viewer.desktop"},
		},
		Removed: map[string][]string{
			"image/png": {"paint.desktop"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEntriesOutsideSection(t *testing.T) {
	got, err := Parse(strings.NewReader("text/plain=editor.desktop;\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(got.Default) != 0 {
		t.Errorf("expected no defaults, got %v", got.Default)
	}
}

func TestSplitIds(t *testing.T) {
	got := splitIds(" a.desktop;;b.desktop ; ")
	if diff := cmp.Diff([]string{"a.desktop", "b.desktop"}, got); diff != "" {
		t.Errorf("splitIds mismatch (-want +got):\n%s", diff)
	}
}
