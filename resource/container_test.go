package resource

import (
	"errors"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"path/filepath"
	"strings"
	"testing"
)

var noteIcon = []byte{'n', 'c', 'i', 'f', 1, 2, 3}

func TestOpenYAML(t *testing.T) {
	c, err := Open("testdata/sen-note.yaml")
	if err != nil {
		t.Fatal(err)
	}

	want := []Resource{
		{Tag: StringType, Name: "META:TYPE", Data: []byte("application/x-sen-note")},
		{Tag: ShortDescType, Name: "META:S:DESC", Data: []byte("SEN Note")},
		{Tag: LongDescType, Name: "META:L:DESC", Data: []byte("A note managed by the SEN semantic file system")},
		{Tag: MessageType, Name: "META:EXTENS", Data: []byte(`{"extensions":["note",".senote"]}`)},
		{
			Tag:  MessageType,
			Name: "META:ATTR_INFO",
			Data: []byte(`{"attributes":[{"display_name":"Title","name":"attr:title","searchable":true,"type":"string"}]}`),
		},
		{Tag: VectorIconType, Name: "META:ICON", Data: noteIcon},
	}
	if diff := cmp.Diff(want, c.Resources()); diff != "" {
		t.Errorf("Resources() mismatch (-want +got):\n%s", diff)
	}

	if c.Path() != "testdata/sen-note.yaml" {
		t.Errorf("Path() = %q", c.Path())
	}
	if c.Format() == nil || c.Format().Major() != 1 {
		t.Errorf("Format() = %v, want 1.0", c.Format())
	}
}

func TestOpenJSONAndTOML(t *testing.T) {
	tests := []struct {
		path     string
		wantIcon []byte
	}{
		{path: "testdata/sen-note.json", wantIcon: noteIcon},
		{path: "testdata/sen-note.toml"},
	}

	for _, tt := range tests {
		t.Run(filepath.Base(tt.path), func(t *testing.T) {
			c, err := Open(tt.path)
			if err != nil {
				t.Fatal(err)
			}

			typ, ok := c.Load(StringType, "META:TYPE")
			if !ok || string(typ.Data) != "application/x-sen-note" {
				t.Errorf("Load(META:TYPE) = %q, %v", typ.Data, ok)
			}

			desc, ok := c.Load(ShortDescType, "META:S:DESC")
			if !ok || desc.Size() != len("SEN Note") {
				t.Errorf("Load(META:S:DESC) = %q, %v", desc.Data, ok)
			}

			icon, ok := c.Load(VectorIconType, "META:ICON")
			if ok != (tt.wantIcon != nil) {
				t.Fatalf("Load(META:ICON) present = %v", ok)
			}
			if diff := cmp.Diff(tt.wantIcon, icon.Data); diff != "" {
				t.Errorf("icon mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadAbsentIsNotAnError(t *testing.T) {
	c, err := Open("testdata/sen-note.toml")
	if err != nil {
		t.Fatal(err)
	}

	if res, ok := c.Load(AppSignatureType, "META:PREF_APP"); ok {
		t.Errorf("Load(META:PREF_APP) = %+v, want absent", res)
	}

	// The tag is part of the key.
	if _, ok := c.Load(StringType, "META:S:DESC"); ok {
		t.Error("Load(CSTR, META:S:DESC) found a MSDC resource")
	}
}

func TestOpenErrors(t *testing.T) {
	tests := []struct {
		path    string
		wantErr error
	}{
		{path: "testdata/does-not-exist.yaml", wantErr: ErrContainerUnreadable},
		{path: "testdata/missing-file.yaml", wantErr: ErrContainerUnreadable},
		{path: "testdata/duplicate.yaml", wantErr: ErrMalformedContainer},
		{path: "testdata/bad-tag.yaml", wantErr: ErrMalformedContainer},
		{path: "testdata/two-payloads.yaml", wantErr: ErrMalformedContainer},
		{path: "testdata/future-format.yaml", wantErr: ErrMalformedContainer},
	}

	for _, tt := range tests {
		t.Run(filepath.Base(tt.path), func(t *testing.T) {
			_, err := Open(tt.path)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Open() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeSchemaIssues(t *testing.T) {
	input := `{"resources": [{"type": "CSTR", "data": "x"}], "extra": true}`

	_, err := Decode(strings.NewReader(input), JSON, "")
	if !errors.Is(err, ErrMalformedContainer) {
		t.Fatalf("Decode() error = %v, want ErrMalformedContainer", err)
	}

	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("Decode() error = %v, want a *SchemaError", err)
	}

	var paths []string
	for _, issue := range schemaErr.Issues {
		paths = append(paths, issue.Path)
	}
	if diff := cmp.Diff([]string{"", "/resources/0"}, paths, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Errorf("issue paths mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeSyntaxError(t *testing.T) {
	_, err := Decode(strings.NewReader("resources: [\n"), YAML, "")
	if !errors.Is(err, ErrMalformedContainer) {
		t.Errorf("Decode() error = %v, want ErrMalformedContainer", err)
	}
}

func TestFormatForPath(t *testing.T) {
	tests := map[string]Format{
		"a.yaml":       YAML,
		"a.yml":        YAML,
		"a.JSON":       JSON,
		"a.toml":       TOML,
		"a.rsrc":       YAML,
		"no-extension": YAML,
	}

	for path, want := range tests {
		if got := FormatForPath(path); got != want {
			t.Errorf("FormatForPath(%q) = %v, want %v", path, got, want)
		}
	}
}
