package cli

import (
	"github.com/spf13/cobra"

	"github.com/jlrickert/hashdoc/pkg/eventlog"
	"github.com/jlrickert/hashdoc/pkg/log"
	"github.com/jlrickert/hashdoc/pkg/server"
)

// NewServeCmd returns the `serve` cobra command.
//
// Usage examples:
//
//	hashdoc serve site
//	hashdoc serve site --addr :8080
func NewServeCmd(deps *Deps) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve [DIR]",
		Short: "serve a documentation tree, resolving bindings per request",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			if addr == "" {
				addr = deps.Config.Serve.Addr
			}

			s := server.New(log.FromContext(ctx), root, deps.Docs, eventlog.New(eventlog.DefaultCapacity))
			return s.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")

	return cmd
}
