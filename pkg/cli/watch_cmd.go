package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/jlrickert/hashdoc/pkg/log"
	"github.com/jlrickert/hashdoc/pkg/watch"
)

// NewWatchCmd returns the `watch` cobra command. It rewrites every document
// under DIR in place once, then again whenever one changes.
func NewWatchCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "watch DIR",
		Short: "rewrite documents in place as they change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			lg := log.FromContext(ctx)
			dir := args[0]

			files, err := deps.Docs.CollectFiles([]string{dir})
			if err != nil {
				return err
			}
			for _, path := range files {
				if _, err := deps.Docs.RewriteFile(ctx, path, true); err != nil {
					lg.Error("initial rewrite failed", "path", path, "err", err)
				}
			}

			w, err := watch.New(dir, watch.Options{
				Match: deps.Config.HasExtension,
				OnChange: func(ctx context.Context, path string) error {
					_, err := deps.Docs.RewriteFile(ctx, path, true)
					return err
				},
			})
			if err != nil {
				return err
			}

			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
