package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jlrickert/hashdoc/pkg/log"
)

// NewRewriteCmd returns the `rewrite` cobra command.
//
// Usage examples:
//
//	hashdoc rewrite site/index.html
//	hashdoc rewrite -w docs/
func NewRewriteCmd(deps *Deps) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "rewrite PATH...",
		Short: "resolve hash bindings in HTML and markdown documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			lg := log.FromContext(ctx)

			files, err := deps.Docs.CollectFiles(args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, path := range files {
				res, err := deps.Docs.RewriteFile(ctx, path, write)
				if err != nil {
					return err
				}
				lg.Debug("document processed", "path", path,
					"bindings", res.Report.Len(),
					"failed", len(res.Report.Failed()),
					"changed", res.Changed)

				if write {
					continue
				}
				if len(files) > 1 {
					if _, err := fmt.Fprintf(out, "==> %s <==\n", path); err != nil {
						return err
					}
				}
				if _, err := out.Write(res.Output); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "write result to the source files instead of stdout")

	return cmd
}
