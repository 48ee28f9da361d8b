package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/spectra/internal/datasource"
	"github.com/vanderheijden86/spectra/pkg/config"
	"github.com/vanderheijden86/spectra/pkg/model"
	"github.com/vanderheijden86/spectra/pkg/theme"
	"github.com/vanderheijden86/spectra/pkg/version"
)

// app carries what every command needs once flags are parsed.
type app struct {
	verbose    bool
	configPath string
	cfg        config.Config
	logger     *log.Logger
	logOut     io.Writer
}

// Execute runs the spectra CLI.
func Execute(ctx context.Context) error {
	return NewRootCommand(os.Stderr).ExecuteContext(ctx)
}

// NewRootCommand builds the command tree. Logs go to logOut.
func NewRootCommand(logOut io.Writer) *cobra.Command {
	a := &app{logOut: logOut}

	root := &cobra.Command{
		Use:           "spectra",
		Short:         "Spectra animates gene and protein networks",
		Long:          `Spectra draws a drifting particle network for a set of nodes, linking nodes that come close. It runs in the terminal, behind a mock analysis backend, or renders still frames.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := log.InfoLevel
			if a.verbose {
				level = log.DebugLevel
			}
			a.logger = newLogger(a.logOut, level)
			cmd.SetContext(withLogger(cmd.Context(), a.logger))
			return a.loadConfig()
		},
	}

	root.SetVersionTemplate(version.String() + "\n")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: XDG config dir)")

	root.AddCommand(
		a.newViewCmd(),
		a.newServeCmd(),
		a.newSnapshotCmd(),
		a.newMockCmd(),
		a.newNodesCmd(),
		a.newThemesCmd(),
		a.newConfigCmd(),
		newVersionCmd(),
	)
	return root
}

func (a *app) loadConfig() error {
	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFrom(a.configPath)
	} else {
		a.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	a.logger.Debug("config loaded", "path", a.configPath, "theme", a.cfg.Theme, "source", a.cfg.Source)
	return nil
}

// theme resolves id, falling back to the configured theme. Unknown IDs warn
// and use the default.
func (a *app) theme(id string) theme.Theme {
	t, ok := a.cfg.ResolveTheme(id)
	if !ok {
		a.logger.Warn("unknown theme, using default", "theme", id, "default", t.ID)
	}
	return t
}

func (a *app) source(flag string) string {
	if flag != "" {
		return flag
	}
	return a.cfg.Source
}

func (a *app) sourceOptions(seed int64) datasource.Options {
	return datasource.Options{
		Seed: seed,
		Warn: func(msg string) { a.logger.Warn(msg) },
	}
}

func (a *app) open(ctx context.Context, spec string, seed int64) ([]model.Node, error) {
	p := newProgress(a.logger)
	nodes, err := datasource.Open(ctx, spec, a.sourceOptions(seed))
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", spec, err)
	}
	a.logger.Debug("nodes loaded", "source", spec, "nodes", len(nodes), "hubs", model.CountImportant(nodes))
	if a.verbose {
		p.done("loaded "+spec, "nodes", len(nodes))
	}
	return nodes, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
