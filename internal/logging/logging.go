// Package logging builds the logger shared by the registry, the index store and the
// importer.
package logging

import (
	"fmt"
	"github.com/charmbracelet/log"
	"io"
)

const prefix = "mime"

// New returns a logger writing to w. level is a charmbracelet/log level name such as
// "debug" or "warn".
func New(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("new: invalid log level %q: %w", level, err)
	}

	return log.NewWithOptions(w, log.Options{
		Prefix: prefix,
		Level:  lvl,
	}), nil
}
