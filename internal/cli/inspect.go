package cli

import (
	"errors"
	"fmt"
	"github.com/MatthiasKunnen/xdgmime/resource"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <container>",
		Short: "Validate a resource container and list its resources",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := resource.Open(args[0])
			if err != nil {
				var schemaErr *resource.SchemaError
				if !errors.As(err, &schemaErr) {
					return err
				}

				fmt.Fprintf(cmd.ErrOrStderr(), "%s is not a valid resource container:\n", args[0])
				for _, issue := range schemaErr.Issues {
					fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", issue)
				}
				return errReported
			}

			out := cmd.OutOrStdout()
			format := "format unversioned"
			if c.Format() != nil {
				format = "format " + c.Format().String()
			}
			fmt.Fprintf(out, "%s %s\n", titleStyle.Render(c.Path()), mutedStyle.Render(format))
			for _, res := range c.Resources() {
				fmt.Fprintf(out, "  %-4s  %-16s  %d bytes\n", res.Tag, res.Name, res.Size())
			}

			return nil
		},
	}
}
