package cli

import (
	"fmt"
	"github.com/MatthiasKunnen/xdgmime/mimetype"
	"github.com/MatthiasKunnen/xdgmime/registry"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

// listGroups are the supertypes printed by list, in order.
var listGroups = []struct {
	supertype string
	title     string
}{
	{supertype: mimetype.Entity, title: "installed entities:"},
	{supertype: mimetype.Relation, title: "installed relations:"},
}

func newListCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the installed entities and relations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "text" && output != "yaml" {
				return fmt.Errorf("unknown output format %q, use text or yaml", output)
			}

			failed := false
			groups := make(map[string][]string, len(listGroups))
			out := cmd.OutOrStdout()

			for _, group := range listGroups {
				types, err := a.registry.InstalledTypes(group.supertype)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "failed to query MIME type DB: %s\n", err)
					failed = true
				}

				if output == "yaml" {
					groups[group.supertype] = typeStrings(types)
					continue
				}

				fmt.Fprintln(out, group.title)
				if err := registry.WriteListing(out, types); err != nil {
					return err
				}
			}

			if output == "yaml" {
				data, err := yaml.Marshal(groups)
				if err != nil {
					return fmt.Errorf("failed to encode listing: %w", err)
				}
				_, _ = out.Write(data)
			}

			if failed {
				return errReported
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format, text or yaml")

	return cmd
}

func typeStrings(types []mimetype.Type) []string {
	result := make([]string, 0, len(types))
	for _, t := range types {
		result = append(result, t.String())
	}

	return result
}
