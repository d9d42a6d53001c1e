package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/huitzo/packkit/internal/infra/fspack"
	"github.com/huitzo/packkit/internal/infra/logger"
)

func initCmd() *cobra.Command {
	var name string
	var force bool

	c := &cobra.Command{
		Use:   "init [dir]",
		Short: "Scaffold a minimal pack (pack.yaml, README, pack/ skeleton)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			if err := fspack.NewInitializer().Init(dir, name, force); err != nil {
				return err
			}

			logger.L().Info("init.scaffolded", "dir", dir, "name", name)
			fmt.Fprintf(cmd.OutOrStdout(), "scaffolded pack in %s\nnext: edit pack.yaml and run `packkit validate %s`\n", dir, dir)
			return nil
		},
	}

	c.Flags().StringVar(&name, "name", "", "Pack name (defaults to the directory name)")
	c.Flags().BoolVar(&force, "force", false, "Overwrite existing scaffold files")
	return c
}
