package resource

import (
	"bytes"
	"encoding/json"
	"fmt"
	"github.com/pelletier/go-toml/v2"
	"go.yaml.in/yaml/v3"
	"path/filepath"
	"strings"
)

// Format is the serialization of a container.
type Format int

const (
	YAML Format = iota
	JSON
	TOML
)

func (f Format) String() string {
	switch f {
	case YAML:
		return "YAML"
	case JSON:
		return "JSON"
	case TOML:
		return "TOML"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatForPath returns the format of a container based on the extension of path.
// Unknown extensions are read as YAML, which also accepts JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON
	case ".toml":
		return TOML
	default:
		return YAML
	}
}

// decode parses data into a generic tree of maps, slices and scalars.
func (f Format) decode(data []byte) (any, error) {
	var raw any
	var err error

	switch f {
	case JSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber()
		err = decoder.Decode(&raw)
	case TOML:
		err = toml.Unmarshal(data, &raw)
	default:
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, err
	}

	return normalize(raw), nil
}

// normalize converts decoded values to types encoding/json can marshal.
// YAML allows non-string keys, these are formatted as strings.
func normalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(val))
		for k, v := range val {
			m[k] = normalize(v)
		}
		return m
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, v := range val {
			m[fmt.Sprint(k)] = normalize(v)
		}
		return m
	case []any:
		a := make([]any, len(val))
		for i, v := range val {
			a[i] = normalize(v)
		}
		return a
	case []map[string]any:
		a := make([]any, len(val))
		for i, v := range val {
			a[i] = normalize(v)
		}
		return a
	default:
		return val
	}
}
