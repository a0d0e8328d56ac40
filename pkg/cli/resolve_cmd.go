package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// NewResolveCmd returns the `resolve` cobra command.
//
// Usage examples:
//
//	hashdoc resolve --url https://example.org/hashes.json \
//	  --key service/valory/hello_world/0.1.0 \
//	  'autonomy fetch valory/hello_world:0.1.0:<hash> --service'
//	echo 'aea fetch <hash>' | hashdoc resolve --url URL --key KEY --text
func NewResolveCmd(deps *Deps) *cobra.Command {
	var url, key string
	var plain bool

	cmd := &cobra.Command{
		Use:   "resolve [TEXT|-]",
		Short: "resolve the placeholder in a single text block",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(cmd, args)
			if err != nil {
				return err
			}

			block, _, err := deps.Docs.ResolveText(cmd.Context(), url, key, text)
			if err != nil {
				// The block is left as it was; pass it through unchanged.
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), text)
				return err
			}

			output := block.HTML()
			if plain {
				output = block.Text()
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), output)
			return err
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "manifest URL")
	cmd.Flags().StringVar(&key, "key", "", "lookup key in the manifest")
	cmd.Flags().BoolVar(&plain, "text", false, "print the substituted text instead of the HTML wrapper")
	_ = cmd.MarkFlagRequired("url")
	_ = cmd.MarkFlagRequired("key")

	return cmd
}

func readText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}
