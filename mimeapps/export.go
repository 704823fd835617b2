package mimeapps

import (
	"fmt"
	"github.com/MatthiasKunnen/xdgmime/mimetype"
	"github.com/MatthiasKunnen/xdgmime/registry"
)

// Exporter writes the preferred application of registry records into a mimeapps.list,
// usually [UserList].
type Exporter struct {
	path string
}

func NewExporter(path string) *Exporter {
	return &Exporter{path: path}
}

// Export makes the preferred application of rec its default. Records without a preferred
// application leave the list alone.
func (e *Exporter) Export(rec *registry.TypeRecord) error {
	if rec.PreferredApp == "" {
		return nil
	}

	list, err := ReadList(e.path)
	if err != nil {
		return err
	}

	if !list.SetDefault(rec.Type.Key(), rec.PreferredApp) {
		return nil
	}

	if err := list.WriteFile(e.path); err != nil {
		return fmt.Errorf("export: failed to write %s: %w", e.path, err)
	}

	return nil
}

// Remove drops the default application entry of t.
func (e *Exporter) Remove(t mimetype.Type) error {
	list, err := ReadList(e.path)
	if err != nil {
		return err
	}

	if !list.RemoveDefault(t.Key()) {
		return nil
	}

	if err := list.WriteFile(e.path); err != nil {
		return fmt.Errorf("remove: failed to write %s: %w", e.path, err)
	}

	return nil
}
