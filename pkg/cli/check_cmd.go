package cli

import (
	"github.com/spf13/cobra"
)

// NewCheckCmd returns the `check` cobra command. It exits non-zero when a
// binding fails to resolve, its key is missing, or no bindings exist.
func NewCheckCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "check PATH...",
		Short: "verify every hash binding resolves, without writing",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := deps.Docs.Check(cmd.Context(), args)
			if report != nil {
				if werr := report.Write(cmd.OutOrStdout()); werr != nil && err == nil {
					err = werr
				}
			}
			return err
		},
	}
}
