// Package basedir resolves the directories defined by the
// [XDG Base Directory Specification].
//
// The registry, the search indices and the freedesktop exports of xdgmime all live below
// these directories. Unlike a process-wide set of variables, a [Dirs] value is resolved
// explicitly so that every command works against one consistent snapshot of the
// environment.
//
// [XDG Base Directory Specification]: https://specifications.freedesktop.org/basedir-spec/0.8/
package basedir

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoHome is returned when $HOME is not set. $HOME must always be set in a POSIX
// environment.
var ErrNoHome = errors.New("$HOME environment variable not set")

// Dirs holds the resolved base directories.
type Dirs struct {
	// Home is the equivalent of $HOME. It is always non-empty.
	Home string

	// ConfigHome is the single base directory relative to which user-specific configuration
	// files should be written. This directory is defined by $XDG_CONFIG_HOME.
	ConfigHome string

	// ConfigDirs is a set of preference ordered base directories relative to which
	// configuration files should be searched. Defined by $XDG_CONFIG_DIRS.
	ConfigDirs []string

	// DataHome is a single base directory relative to which user-specific data files should be
	// written. This directory is defined by $XDG_DATA_HOME.
	DataHome string

	// DataDirs is a set of preference ordered base directories relative to which data files
	// should be searched. Defined by $XDG_DATA_DIRS.
	DataDirs []string
}

// Current resolves the base directories from the process environment.
func Current() (Dirs, error) {
	return FromEnv(os.Getenv)
}

// FromEnv resolves the base directories using getenv to look up environment variables.
func FromEnv(getenv func(string) string) (Dirs, error) {
	home := getenv("HOME")
	if home == "" {
		return Dirs{}, ErrNoHome
	}

	return Dirs{
		Home:       home,
		ConfigHome: singleVar(getenv, "XDG_CONFIG_HOME", filepath.Join(home, ".config")),
		ConfigDirs: listVar(getenv, "XDG_CONFIG_DIRS", []string{"/etc/xdg"}),
		DataHome:   singleVar(getenv, "XDG_DATA_HOME", filepath.Join(home, ".local/share")),
		DataDirs:   listVar(getenv, "XDG_DATA_DIRS", []string{"/usr/local/share/", "/usr/share/"}),
	}, nil
}

// AllDataDirs returns DataHome followed by DataDirs, in order of precedence.
func (d Dirs) AllDataDirs() []string {
	result := make([]string, 0, len(d.DataDirs)+1)
	result = append(result, d.DataHome)
	return append(result, d.DataDirs...)
}

// AllConfigDirs returns ConfigHome followed by ConfigDirs, in order of precedence.
func (d Dirs) AllConfigDirs() []string {
	result := make([]string, 0, len(d.ConfigDirs)+1)
	result = append(result, d.ConfigHome)
	return append(result, d.ConfigDirs...)
}

// DataPath returns $XDG_DATA_HOME/suffix. Existence is not checked.
func (d Dirs) DataPath(suffix string) string {
	return filepath.Join(d.DataHome, suffix)
}

// ConfigPath returns $XDG_CONFIG_HOME/suffix. Existence is not checked.
func (d Dirs) ConfigPath(suffix string) string {
	return filepath.Join(d.ConfigHome, suffix)
}

func singleVar(getenv func(string) string, envName string, defaultValue string) string {
	envValue := getenv(envName)
	if envValue == "" || !filepath.IsAbs(envValue) {
		return defaultValue
	}

	return envValue
}

func listVar(getenv func(string) string, envName string, defaultValue []string) []string {
	envValue := getenv(envName)
	if envValue == "" {
		return defaultValue
	}

	result := make([]string, 0)
	for _, path := range strings.Split(envValue, ":") {
		if path == "" || !filepath.IsAbs(path) {
			continue
		}

		result = append(result, path)
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}
