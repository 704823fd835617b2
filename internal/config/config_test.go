package config

import (
	"github.com/MatthiasKunnen/xdgmime/basedir"
	"github.com/google/go-cmp/cmp"
	"os"
	"path/filepath"
	"testing"
)

func testDirs(t *testing.T) basedir.Dirs {
	t.Helper()
	home := t.TempDir()
	return basedir.Dirs{
		Home:       home,
		ConfigHome: filepath.Join(home, "config"),
		DataHome:   filepath.Join(home, "data"),
	}
}

func TestLoadDefaults(t *testing.T) {
	dirs := testDirs(t)

	got, err := Load(LoadOptions{Dirs: dirs})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := &Config{
		Registry: RegistryConfig{Dir: filepath.Join(dirs.DataHome, "xdgmime/registry")},
		Index:    IndexConfig{Dir: filepath.Join(dirs.DataHome, "xdgmime/indices")},
		Export:   ExportConfig{SharedMimeInfo: true, MimeApps: true},
		Log:      LogConfig{Level: "info"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDiscoveredFile(t *testing.T) {
	dirs := testDirs(t)
	path := filepath.Join(dirs.ConfigHome, FileSuffix)
	writeConfig(t, path, "registry:\n  dir: /srv/registry\nimport:\n  abort_on_optional_failure: true\nexport:\n  mimeapps: false\n")

	got, err := Load(LoadOptions{Dirs: dirs})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got.File != path {
		t.Errorf("expected file %s, got %s", path, got.File)
	}
	if got.Registry.Dir != "/srv/registry" {
		t.Errorf("unexpected registry dir %s", got.Registry.Dir)
	}
	if !got.Import.AbortOnOptionalFailure {
		t.Error("expected abort_on_optional_failure to be read from the file")
	}
	if got.Export.MimeApps || !got.Export.SharedMimeInfo {
		t.Errorf("unexpected export config %+v", got.Export)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dirs := testDirs(t)
	path := filepath.Join(t.TempDir(), "custom.toml")
	writeConfig(t, path, "[log]\nlevel = \"warn\"\n\n[index]\ndir = \"/from/file\"\n")
	t.Setenv("XDGMIME_INDEX_DIR", "/from/env")

	got, err := Load(LoadOptions{ConfigFilePath: path, Dirs: dirs})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got.Index.Dir != "/from/env" {
		t.Errorf("expected the environment to win, got %s", got.Index.Dir)
	}
	if got.Log.Level != "warn" {
		t.Errorf("unexpected log level %s", got.Log.Level)
	}
}

func TestLoadExplicitFileMissing(t *testing.T) {
	_, err := Load(LoadOptions{
		ConfigFilePath: filepath.Join(t.TempDir(), "missing.yaml"),
		Dirs:           testDirs(t),
	})
	if err == nil {
		t.Fatal("expected an error for a missing explicit config file")
	}
}

func writeConfig(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
