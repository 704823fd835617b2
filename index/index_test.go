package index

import (
	"bytes"
	"errors"
	"github.com/MatthiasKunnen/xdgmime/registry"
	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var testTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(
		filepath.Join(t.TempDir(), "indices"),
		WithLogger(log.New(io.Discard)),
		WithClock(func() time.Time { return testTime }),
	)
}

func TestEnsureIndexCreateThenSkip(t *testing.T) {
	s := newTestStore(t)

	first := s.EnsureIndex("attr:title", registry.TypeString, true)
	if first.Action != Created || first.Err != nil {
		t.Fatalf("first EnsureIndex() = %v, %v, want created", first.Action, first.Err)
	}

	second := s.EnsureIndex("attr:title", registry.TypeString, true)
	if second.Action != SkippedExists || second.Err != nil {
		t.Errorf("second EnsureIndex() = %v, %v, want skipped", second.Action, second.Err)
	}
	if !second.Skipped() {
		t.Errorf("Skipped() = false for %v", second.Action)
	}

	idx, err := s.Get("attr:title")
	if err != nil {
		t.Fatal(err)
	}
	want := &Index{Name: "attr:title", Type: registry.TypeString, Created: testTime}
	if diff := cmp.Diff(want, idx); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}
}

func TestEnsureIndexOtherTypeIsSkipped(t *testing.T) {
	var logs bytes.Buffer
	s := NewStore(filepath.Join(t.TempDir(), "indices"), WithLogger(log.New(&logs)))

	if outcome := s.EnsureIndex("attr:rating", registry.TypeInt32, true); outcome.Action != Created {
		t.Fatalf("EnsureIndex() = %v, want created", outcome.Action)
	}

	outcome := s.EnsureIndex("attr:rating", registry.TypeString, true)
	if outcome.Action != SkippedExists || outcome.Err != nil {
		t.Errorf("EnsureIndex() with another type = %v, %v, want skipped", outcome.Action, outcome.Err)
	}

	idx, err := s.Get("attr:rating")
	if err != nil {
		t.Fatal(err)
	}
	if idx.Type != registry.TypeInt32 {
		t.Errorf("index type = %s, want the original %s", idx.Type, registry.TypeInt32)
	}
	if !strings.Contains(logs.String(), "index exists with another type") {
		t.Errorf("expected a warning about the type, got %q", logs.String())
	}
}

func TestEnsureIndexRemoveThenSkip(t *testing.T) {
	s := newTestStore(t)
	if err := s.Create("attr:rating", registry.TypeInt32); err != nil {
		t.Fatal(err)
	}

	first := s.EnsureIndex("attr:rating", registry.TypeInt32, false)
	if first.Action != Removed {
		t.Fatalf("first EnsureIndex() = %v, %v, want removed", first.Action, first.Err)
	}

	second := s.EnsureIndex("attr:rating", registry.TypeInt32, false)
	if second.Action != SkippedMissing || second.Err != nil {
		t.Errorf("second EnsureIndex() = %v, %v, want skipped", second.Action, second.Err)
	}

	if _, err := s.Get("attr:rating"); !errors.Is(err, ErrIndexNotFound) {
		t.Errorf("Get() after removal error = %v, want ErrIndexNotFound", err)
	}
}

func TestEnsureIndexUnsupportedType(t *testing.T) {
	s := newTestStore(t)

	outcome := s.EnsureIndex("attr:done", registry.TypeBool, true)
	if outcome.Action != Failed || !errors.Is(outcome.Err, ErrUnsupportedType) {
		t.Errorf("EnsureIndex() = %v, %v, want failed with ErrUnsupportedType", outcome.Action, outcome.Err)
	}
}

func TestCreateRemoveErrors(t *testing.T) {
	s := newTestStore(t)

	if err := s.Create("", registry.TypeString); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Create(\"\") error = %v, want ErrInvalidName", err)
	}
	if err := s.Remove("attr:none"); !errors.Is(err, ErrIndexNotFound) {
		t.Errorf("Remove() error = %v, want ErrIndexNotFound", err)
	}
	if err := s.Create("attr:x", registry.TypeString); err != nil {
		t.Fatal(err)
	}
	if err := s.Create("attr:x", registry.TypeInt64); !errors.Is(err, ErrIndexExists) {
		t.Errorf("Create() of existing index error = %v, want ErrIndexExists", err)
	}
}

func TestListSortedWithSlashInName(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"name", "attr:title", "a/b"} {
		if err := s.Create(name, registry.TypeString); err != nil {
			t.Fatal(err)
		}
	}

	indices, err := s.List()
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, idx := range indices {
		names = append(names, idx.Name)
	}
	if diff := cmp.Diff([]string{"a/b", "attr:title", "name"}, names); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}

func TestListMissingDir(t *testing.T) {
	s := newTestStore(t)

	indices, err := s.List()
	if err != nil || len(indices) != 0 {
		t.Errorf("List() = %v, %v, want empty list", indices, err)
	}
}
