// Package config loads the settings of the mime command.
//
// Settings come from, in increasing order of precedence, built-in defaults, the first
// xdgmime/config.yaml found in the XDG config directories (or an explicit file), and
// XDGMIME_* environment variables such as XDGMIME_REGISTRY_DIR.
package config

import (
	"errors"
	"fmt"
	"github.com/MatthiasKunnen/xdgmime/basedir"
	"github.com/spf13/viper"
	"path/filepath"
	"strings"
)

const (
	// FileSuffix is the location of the config file relative to an XDG config directory.
	FileSuffix = "xdgmime/config.yaml"

	envPrefix = "XDGMIME"
)

type Config struct {
	Registry RegistryConfig `mapstructure:"registry"`
	Index    IndexConfig    `mapstructure:"index"`
	Import   ImportConfig   `mapstructure:"import"`
	Export   ExportConfig   `mapstructure:"export"`
	Log      LogConfig      `mapstructure:"log"`

	// File is the config file that was read, empty if none was found.
	File string `mapstructure:"-"`
}

type RegistryConfig struct {
	Dir string `mapstructure:"dir"`
}

type IndexConfig struct {
	Dir string `mapstructure:"dir"`
}

type ImportConfig struct {
	// AbortOnOptionalFailure stops an import at the first optional field that cannot be
	// stored, instead of reporting it and continuing.
	AbortOnOptionalFailure bool `mapstructure:"abort_on_optional_failure"`
}

type ExportConfig struct {
	// SharedMimeInfo writes a shared-mime-info package per installed type.
	SharedMimeInfo bool `mapstructure:"shared_mime_info"`

	// MimeApps writes the preferred application into the user's mimeapps.list.
	MimeApps bool `mapstructure:"mimeapps"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ConfigFilePath forces loading from a specific config file when set.
	// Unlike a discovered file, it must exist.
	ConfigFilePath string

	// Dirs are the base directories used for defaults and config file discovery.
	Dirs basedir.Dirs
}

// Load resolves the configuration.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()
	setDefaults(v, opts.Dirs)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := opts.ConfigFilePath
	if path == "" {
		found, err := opts.Dirs.FindConfigFile(FileSuffix)
		if err != nil {
			return nil, fmt.Errorf("load: failed to look up config file: %w", err)
		}
		path = found
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType(configType(path))
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("load: failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("load: failed to decode config: %w", err)
	}
	cfg.File = path

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, dirs basedir.Dirs) {
	v.SetDefault("registry.dir", dirs.DataPath("xdgmime/registry"))
	v.SetDefault("index.dir", dirs.DataPath("xdgmime/indices"))
	v.SetDefault("import.abort_on_optional_failure", false)
	v.SetDefault("export.shared_mime_info", true)
	v.SetDefault("export.mimeapps", true)
	v.SetDefault("log.level", "info")
}

func configType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return "toml"
	case ".json":
		return "json"
	default:
		return "yaml"
	}
}

func (c *Config) validate() error {
	var errs []error
	if c.Registry.Dir == "" {
		errs = append(errs, errors.New("registry.dir must not be empty"))
	}
	if c.Index.Dir == "" {
		errs = append(errs, errors.New("index.dir must not be empty"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("load: invalid config: %w", err)
	}

	return nil
}
