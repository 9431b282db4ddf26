// Package cli implements the dustnbones command-line client.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dustnbones/internal/paths"
	"github.com/mesh-intelligence/dustnbones/internal/views"
	"github.com/mesh-intelligence/dustnbones/pkg/types"
)

// rootOptions holds the global flag values.
type rootOptions struct {
	configDir string
	dataDir   string
	apiURL    string
	format    string
	verbose   bool
}

// app is the state shared by every subcommand once the root pre-run has
// resolved directories, configuration, and logging.
type app struct {
	opts     rootOptions
	dirs     paths.Dirs
	cfg      types.Config
	logger   *slog.Logger
	renderer *views.Renderer
}

// NewRootCmd creates the top-level "dustnbones" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "dustnbones",
		Short:         "Client for the Dust N Bones veterinary anatomy catalogue",
		Long:          "dustnbones browses and edits species and their bones through the\nDust N Bones REST API, keeping the last results in local state.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.opts.configDir, "config-dir", "", "configuration directory (env DUSTNBONES_CONFIG_DIR)")
	pf.StringVar(&a.opts.dataDir, "data-dir", "", "data directory for stored state (env DUSTNBONES_DATA_DIR)")
	pf.StringVar(&a.opts.apiURL, "api-url", "", "backend base URL (env DUSTNBONES_API_URL or VITE_API_URL)")
	pf.StringVar(&a.opts.format, "format", string(views.FormatText), "output format (text|json)")
	pf.BoolVarP(&a.opts.verbose, "verbose", "v", false, "debug logging on stderr")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newOpenCmd(a))
	root.AddCommand(newSpeciesCmd(a))
	root.AddCommand(newBonesCmd(a))
	root.AddCommand(newStateCmd(a))
	root.AddCommand(newSandboxCmd(a))

	return root
}

// setup resolves everything subcommands depend on.
func (a *app) setup(cmd *cobra.Command) error {
	format, err := views.ParseFormat(a.opts.format)
	if err != nil {
		return userError("invalid flag", err)
	}
	a.renderer = views.New(cmd.OutOrStdout(), format)

	configDir, err := resolveDirs(a.opts.configDir, "", "")
	if err != nil {
		return systemError("resolve directories", err)
	}
	cfg, err := loadConfig(configDir.Config, cmd.Root().PersistentFlags())
	if err != nil {
		return userError("invalid configuration", err)
	}
	dirs, err := resolveDirs(a.opts.configDir, a.opts.dataDir, cfg.DataDir)
	if err != nil {
		return systemError("resolve directories", err)
	}
	cfg.DataDir = dirs.Data

	a.dirs = dirs
	a.cfg = cfg
	a.logger = newLogger(cmd.ErrOrStderr(), cfg.LogLevel, a.opts.verbose)
	a.logger.Debug("configuration loaded",
		"config_dir", dirs.Config,
		"data_dir", dirs.Data,
		"api_url", cfg.APIURL,
		"state_backend", cfg.StateBackend,
	)
	return nil
}

// newLogger builds the stderr text logger. verbose forces debug level.
func newLogger(w io.Writer, level string, verbose bool) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	root := NewRootCmd()
	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	return ExitCode(err)
}
