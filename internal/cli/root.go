// Package cli implements the mime command.
package cli

import (
	"errors"
	"fmt"
	"github.com/MatthiasKunnen/xdgmime/basedir"
	"github.com/MatthiasKunnen/xdgmime/index"
	"github.com/MatthiasKunnen/xdgmime/internal/config"
	"github.com/MatthiasKunnen/xdgmime/internal/logging"
	"github.com/MatthiasKunnen/xdgmime/mimeapps"
	"github.com/MatthiasKunnen/xdgmime/registry"
	"github.com/MatthiasKunnen/xdgmime/sharedmimeinfo"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"os"
)

// errReported is returned by commands that already printed their failure. It only sets the
// exit status.
var errReported = errors.New("failure already reported")

type rootOptions struct {
	configFile  string
	verbose     bool
	registryDir string
	indexDir    string
}

// app holds what the commands work on. It is set up before any command runs.
type app struct {
	dirs     basedir.Dirs
	cfg      *config.Config
	logger   *log.Logger
	registry *registry.Registry
	indexes  *index.Store
}

// NewRootCmd returns the mime command with all subcommands.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	a := &app{}

	cmd := &cobra.Command{
		Use:   "mime",
		Short: "Install, delete and list MIME types",
		Long: `mime maintains a MIME type registry. Types are installed from resource containers
holding their metadata, and search indices are kept in sync with the searchable
attributes the types declare.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), cmd.UsageString())
			return errReported
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default: first xdgmime/config.yaml in the XDG config dirs)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&opts.registryDir, "registry-dir", "", "directory of the MIME type registry")
	flags.StringVar(&opts.indexDir, "index-dir", "", "directory of the search indices")

	cmd.AddCommand(
		newInstallCmd(a),
		newDeleteCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newInspectCmd(),
		newIndexCmd(a),
	)

	return cmd
}

func (a *app) setup(cmd *cobra.Command, opts *rootOptions) error {
	dirs, err := basedir.Current()
	if err != nil {
		return err
	}

	cfg, err := config.Load(config.LoadOptions{ConfigFilePath: opts.configFile, Dirs: dirs})
	if err != nil {
		return err
	}
	if opts.registryDir != "" {
		cfg.Registry.Dir = opts.registryDir
	}
	if opts.indexDir != "" {
		cfg.Index.Dir = opts.indexDir
	}
	if opts.verbose {
		cfg.Log.Level = "debug"
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level)
	if err != nil {
		return err
	}
	if cfg.File != "" {
		logger.Debug("loaded config", "file", cfg.File)
	}

	regOpts := []registry.Option{registry.WithLogger(logger)}
	if cfg.Export.SharedMimeInfo {
		regOpts = append(regOpts, registry.WithExporter(sharedmimeinfo.NewExporter(dirs.DataHome)))
	}
	if cfg.Export.MimeApps {
		regOpts = append(regOpts, registry.WithExporter(mimeapps.NewExporter(mimeapps.UserList(dirs))))
	}

	a.dirs = dirs
	a.cfg = cfg
	a.logger = logger
	a.registry = registry.New(cfg.Registry.Dir, regOpts...)
	a.indexes = index.NewStore(cfg.Index.Dir, index.WithLogger(logger))

	return nil
}

// Execute runs the mime command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	cmd := NewRootCmd()
	cmd.Version = fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)

	err := cmd.Execute()
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
	}

	return err
}
