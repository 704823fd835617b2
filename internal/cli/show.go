package cli

import (
	"errors"
	"fmt"
	"github.com/MatthiasKunnen/xdgmime/desktop"
	"github.com/MatthiasKunnen/xdgmime/mimeapps"
	"github.com/MatthiasKunnen/xdgmime/mimetype"
	"github.com/MatthiasKunnen/xdgmime/registry"
	"github.com/MatthiasKunnen/xdgmime/sharedmimeinfo"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
	"io"
	"os"
	"strings"
)

func newShowCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show <type>",
		Short: "Show the metadata of an installed MIME type",
		Long: `Show the metadata of an installed MIME type together with what the desktop knows about
it: its broader types from the shared-mime-info subclasses and the default applications
from the mimeapps.list files.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := mimetype.Parse(args[0])
			if err != nil {
				return err
			}

			rec, err := a.registry.Get(t)
			if err != nil {
				return err
			}

			switch output {
			case "yaml":
				data, err := yaml.Marshal(rec)
				if err != nil {
					return fmt.Errorf("failed to encode record of %s: %w", t, err)
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			case "text":
				a.printRecord(cmd.OutOrStdout(), rec)
				return nil
			default:
				return fmt.Errorf("unknown output format %q, use text or yaml", output)
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format, text or yaml")

	return cmd
}

func (a *app) printRecord(out io.Writer, rec *registry.TypeRecord) {
	line := func(label string, value string) {
		if value != "" {
			fmt.Fprintf(out, "  %s %s\n", mutedStyle.Render(label+":"), value)
		}
	}

	fmt.Fprintln(out, titleStyle.Render(rec.Type.String()))
	line("short description", rec.ShortDescription)
	line("long description", rec.LongDescription)
	line("preferred application", a.preferredApp(rec.PreferredApp))
	line("sniffer rule", rec.SnifferRule)
	line("extensions", strings.Join(rec.Extensions, ", "))
	if rec.IconSize > 0 {
		line("icon", fmt.Sprintf("%d bytes", rec.IconSize))
	}
	line("installed", rec.Installed.Format("2006-01-02 15:04:05"))
	line("modified", rec.Modified.Format("2006-01-02 15:04:05"))

	if len(rec.Attributes) > 0 {
		fmt.Fprintf(out, "  %s\n", mutedStyle.Render("attributes:"))
		for _, attr := range rec.Attributes {
			searchable := ""
			if attr.IsSearchable() {
				searchable = ", searchable"
			}
			fmt.Fprintf(out, "    %s (%s%s)\n", attr.Name, attr.Type, searchable)
		}
	}

	subclasses, err := sharedmimeinfo.LoadSubclasses(a.dirs.AllDataDirs())
	if err != nil {
		a.logger.Warn("failed to load subclasses", "err", err)
	} else {
		line("subclass of", strings.Join(subclasses.BroaderOnce(rec.Type.Key()), ", "))
		line("broader types", strings.Join(subclasses.BroaderDfs(rec.Type.Key()), ", "))
	}

	lists := mimeapps.GetLists(a.dirs, os.Getenv("XDG_CURRENT_DESKTOP"))
	line("default applications", strings.Join(mimeapps.Defaults(lists, rec.Type.Key(), a.logger), ", "))
}

// preferredApp returns desktopId together with the desktop file that provides it.
func (a *app) preferredApp(desktopId string) string {
	if desktopId == "" {
		return ""
	}

	path, err := desktop.Locate(desktopId, desktop.Locations(a.dirs.AllDataDirs()))
	switch {
	case errors.Is(err, desktop.ErrNotFound):
		a.logger.Warn("preferred application is not installed", "desktop_id", desktopId)
		return desktopId + " " + warningStyle.Render("(not installed)")
	case err != nil:
		a.logger.Warn("failed to locate preferred application", "desktop_id", desktopId, "err", err)
		return desktopId
	}

	return desktopId + " " + mutedStyle.Render("("+path+")")
}
