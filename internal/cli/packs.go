package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/huitzo/packkit/pkg/huitzo"
	"github.com/huitzo/packkit/starters"
)

func packsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "packs",
		Short: "List the bundled starter commands",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := huitzo.NewRegistry()
			if err := starters.Register(reg); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, c := range reg.All() {
				fmt.Fprintf(out, "%-28s %s\n", c.Qualified(), c.Description)
			}
			fmt.Fprintf(out, "\n%d commands. Run one with `packkit invoke <namespace>/<name>`.\n", len(reg.All()))
			return nil
		},
	}
}
