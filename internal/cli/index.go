package cli

import (
	"fmt"
	"github.com/spf13/cobra"
)

func newIndexCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Inspect the search indices",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the search indices of the volume",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			indices, err := a.indexes.List()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(indices) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("no indices"))
				return nil
			}
			for _, idx := range indices {
				fmt.Fprintf(out, "%s (%s)\n", idx.Name, idx.Type)
			}

			return nil
		},
	})

	return cmd
}
