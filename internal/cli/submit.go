package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/huitzo/packkit/internal/infra/fspack"
	"github.com/huitzo/packkit/internal/infra/logger"
	"github.com/huitzo/packkit/internal/infra/showcase"
	"github.com/huitzo/packkit/internal/infra/termui"
	"github.com/huitzo/packkit/internal/infra/yamlmanifest"
	"github.com/huitzo/packkit/internal/usecase"
)

func submitCmd() *cobra.Command {
	var showcaseDir string
	var assumeYes bool

	c := &cobra.Command{
		Use:   "submit <dir> <username>",
		Short: "Validate a pack and publish it into the showcase tree",
		Args:  usageArgs("<dir> <username>", 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, username := args[0], args[1]
			if err := requireDir(dir); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if showcaseDir == "" {
				showcaseDir = os.Getenv("HUITZO_SHOWCASE_DIR")
			}
			if showcaseDir == "" {
				showcaseDir = "showcase"
			}

			validate := usecase.NewValidatePack(yamlmanifest.NewLoader(), fspack.NewScanner())
			uc := usecase.NewSubmitPack(validate, showcase.NewStore(showcaseDir), termui.NewConfirmer())

			res, err := uc.Run(usecase.SubmitParams{
				Dir:       dir,
				Username:  username,
				AssumeYes: assumeYes,
			})
			if res.Report != nil {
				termui.NewReportPrinter(out).Print(fmt.Sprintf("Validating %s", dir), res.Report)
			}
			if err != nil {
				return err
			}

			if res.Cancelled {
				fmt.Fprintln(out, "submission cancelled, showcase left untouched")
				return nil
			}

			logger.L().Info("submit.published",
				"pack", res.Submission.PackName,
				"author", res.Submission.Author,
				"dest", res.Submission.Destination)
			fmt.Fprintf(out, "\npublished %s %s to %s\n",
				res.Submission.PackName, res.Submission.Version, res.Submission.Destination)
			return nil
		},
	}

	c.Flags().StringVar(&showcaseDir, "showcase", "", "Showcase root directory (default $HUITZO_SHOWCASE_DIR or ./showcase)")
	c.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Overwrite an existing submission without asking")
	return c
}
