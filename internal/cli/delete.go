package cli

import (
	"errors"
	"fmt"
	"github.com/MatthiasKunnen/xdgmime/mimetype"
	"github.com/MatthiasKunnen/xdgmime/registry"
	"github.com/spf13/cobra"
)

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <type>",
		Aliases: []string{"uninstall"},
		Short:   "Delete a MIME type from the registry",
		Long: `Delete a MIME type with its metadata. Search indices are left alone since other types
may share them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := mimetype.Parse(args[0])
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s is not a valid MIME type.\n", args[0])
				return errReported
			}

			err = a.registry.Delete(t)
			switch {
			case errors.Is(err, registry.ErrNotInstalled):
				fmt.Fprintln(cmd.OutOrStdout(), warningStyle.Render(fmt.Sprintf("MIME type %s is not installed, skipping...", t)))
				return nil
			case err != nil:
				fmt.Fprintf(cmd.ErrOrStderr(), "failed to delete MIME type %s: %s\n", t, err)
				return errReported
			}

			fmt.Fprintf(cmd.OutOrStdout(), "successfully removed MIME type %s.\n", t)
			return nil
		},
	}
}
