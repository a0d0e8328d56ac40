package cli

// NewRootCmd builds the root cobra command and wires persistent flags. The
// PersistentPreRunE only creates a production logger when Deps does not
// already carry one, which lets tests inject a test logger and HTTP client.
import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/jlrickert/cli-toolkit/toolkit"
	"github.com/spf13/cobra"

	"github.com/jlrickert/hashdoc/pkg/config"
	"github.com/jlrickert/hashdoc/pkg/hashdoc"
	"github.com/jlrickert/hashdoc/pkg/log"
)

type Deps struct {
	Runtime *toolkit.Runtime

	// Logger and Client override the production defaults.
	Logger *slog.Logger
	Client *http.Client

	ConfigPath string
	LogFile    string
	LogLevel   string
	LogJSON    bool

	Config *config.Config
	Docs   *hashdoc.Hashdoc

	closers []func() error
}

func NewRootCmd(deps *Deps) *cobra.Command {
	if deps == nil {
		deps = &Deps{}
	}

	cmd := &cobra.Command{
		Use:           "hashdoc",
		Short:         "resolve package hash placeholders in documentation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if deps.Logger == nil {
				out := cmd.ErrOrStderr()
				if deps.LogFile != "" {
					f, err := os.OpenFile(deps.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
					if err != nil {
						return err
					}
					deps.closers = append(deps.closers, f.Close)
					out = f
				}
				deps.Logger = log.NewLogger(log.LoggerConfig{
					Out:     out,
					Level:   log.ParseLevel(deps.LogLevel),
					JSON:    deps.LogJSON,
					Version: Version,
				})
			}
			ctx = log.ContextWithLogger(ctx, deps.Logger)

			if deps.Runtime == nil {
				rt, err := toolkit.NewRuntime()
				if err != nil {
					return fmt.Errorf("runtime: %w", err)
				}
				deps.Runtime = rt
			}

			cfg, err := config.ReadConfig(ctx, deps.Runtime, deps.ConfigPath)
			if err != nil {
				return err
			}
			deps.Config = cfg

			docs, err := hashdoc.New(hashdoc.Options{
				Config:  cfg,
				Client:  deps.Client,
				Runtime: deps.Runtime,
			})
			if err != nil {
				return err
			}
			deps.Docs = docs

			cmd.SetContext(ctx)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			for _, c := range deps.closers {
				_ = c()
			}
			deps.closers = nil
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&deps.LogFile, "log-file", "", "write logs to file (default stderr)")
	cmd.PersistentFlags().StringVar(&deps.LogLevel, "log-level", "info", "minimum log level")
	cmd.PersistentFlags().BoolVar(&deps.LogJSON, "log-json", false, "output logs as JSON")
	cmd.PersistentFlags().StringVarP(&deps.ConfigPath, "config", "c", "", "path to config file (default ./"+config.DefaultConfigFile+")")

	cmd.AddCommand(
		NewCheckCmd(deps),
		NewMCPCmd(deps),
		NewResolveCmd(deps),
		NewRewriteCmd(deps),
		NewServeCmd(deps),
		NewVersionCmd(),
		NewWatchCmd(deps),
	)

	return cmd
}
