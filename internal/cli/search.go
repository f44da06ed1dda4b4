package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/docsearch/pkg/client"
)

func newSearchCmd(a *app) *cobra.Command {
	var mode string
	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Search documents by keyword, meaning or both",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := client.SearchMode(mode)
			switch m {
			case "", client.ModeKeyword, client.ModeSemantic, client.ModeHybrid:
			default:
				return fmt.Errorf("--type must be keyword, semantic or hybrid, got %q", mode)
			}

			c, err := a.client()
			if err != nil {
				return err
			}
			res, err := c.Search(cmd.Context(), strings.Join(args, " "), m)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}

			out := cmd.OutOrStdout()
			if a.jsonMode() {
				return printJSON(out, map[string]any{"results": res.Hits, "degraded": res.Degraded})
			}
			printHits(out, &res, m)
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "type", "", "search type: keyword, semantic, hybrid (server default when empty)")
	return cmd
}
