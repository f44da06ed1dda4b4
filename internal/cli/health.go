package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			h, err := c.Health(cmd.Context())
			if err != nil && h.Status == "" {
				return fmt.Errorf("health: %w", err)
			}

			out := cmd.OutOrStdout()
			if a.jsonMode() {
				if perr := printJSON(out, h); perr != nil {
					return perr
				}
				return err
			}

			status := okText(h.Status)
			if h.Status != "ok" {
				status = warnText(h.Status)
			}
			_, _ = fmt.Fprintf(out, "status: %s\n", status)

			names := make([]string, 0, len(h.Checks))
			for name := range h.Checks {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				res := okText(h.Checks[name])
				if h.Checks[name] != "ok" {
					res = errText(h.Checks[name])
				}
				_, _ = fmt.Fprintf(out, "  %-10s %s\n", name, res)
			}
			return err
		},
	}
}
