package cli

import (
	"fmt"
	"github.com/MatthiasKunnen/xdgmime/importer"
	"github.com/MatthiasKunnen/xdgmime/index"
	"github.com/spf13/cobra"
	"io"
	"os"
)

func newInstallCmd(a *app) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "install <container-or-type>",
		Short: "Install a MIME type in the registry",
		Long: `Install or update a MIME type.

If the argument is a file, it is read as a resource container and the type with all its
metadata is imported. Otherwise the argument is installed as a bare type.`,
		Example: `  mime install entity-person.yaml
  mime install entity/person --description Person`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			im := importer.New(a.registry, a.indexes,
				importer.WithLogger(a.logger),
				importer.WithPolicy(importer.Policy{
					AbortOnOptionalFailure: a.cfg.Import.AbortOnOptionalFailure,
				}),
			)

			var result importer.Result
			if isFile(args[0]) {
				result = im.Import(args[0])
			} else {
				result = im.InstallBare(args[0], description)
			}

			return printImport(cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], result)
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "short description of a bare type")

	return cmd
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// printImport prints the steps of an import and its conclusion. A failure is printed to
// errOut and results in errReported.
func printImport(out io.Writer, errOut io.Writer, arg string, result importer.Result) error {
	if result.Updated {
		fmt.Fprintf(out, "MIME type %s is already installed, updating...\n", result.Type)
	}

	for _, field := range result.Fields {
		fmt.Fprintf(out, "setting %s... %s\n", field.Kind, status(field.Err, "OK"))
	}

	for _, outcome := range result.Indexes {
		if outcome.WantPresent {
			fmt.Fprintf(out, "adding attribute %s (%s) to index... ", outcome.Name, outcome.Type)
		} else {
			fmt.Fprintf(out, "removing attribute %s (%s) from index... ", outcome.Name, outcome.Type)
		}
		fmt.Fprintln(out, indexStatus(outcome))
	}

	if !result.Ok() {
		name := arg
		if !result.Type.IsZero() {
			name = result.Type.String()
		}
		fmt.Fprintf(errOut, "failed to install MIME type %s: %s\n", name, result.Err())
		return errReported
	}

	fmt.Fprintf(out, "successfully installed MIME type %s.\n", result.Type)
	return nil
}

func status(err error, ok string) string {
	if err != nil {
		return warningStyle.Render("FAILED: " + err.Error())
	}

	return successStyle.Render(ok)
}

func indexStatus(outcome index.Outcome) string {
	switch {
	case outcome.Action == index.Failed:
		return status(outcome.Err, "")
	case outcome.Skipped():
		return mutedStyle.Render(outcome.Action.String())
	default:
		return successStyle.Render("OK")
	}
}
