package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/huitzo/packkit/internal/domain"
	"github.com/huitzo/packkit/internal/infra/fspack"
	"github.com/huitzo/packkit/internal/infra/logger"
	"github.com/huitzo/packkit/internal/infra/termui"
	"github.com/huitzo/packkit/internal/infra/yamlmanifest"
	"github.com/huitzo/packkit/internal/usecase"
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <dir>",
		Short: "Check a pack directory against the submission requirements",
		Args:  usageArgs("<dir>", 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if err := requireDir(dir); err != nil {
				return err
			}

			uc := usecase.NewValidatePack(yamlmanifest.NewLoader(), fspack.NewScanner())
			rep, _, err := uc.Run(dir)
			if err != nil {
				return err
			}

			printer := termui.NewReportPrinter(cmd.OutOrStdout())
			printer.Print(fmt.Sprintf("Validating %s", dir), rep)

			if rep.HasFailures() {
				logger.L().Warn("validate.failed", "dir", dir)
				return &domain.OpError{
					Op:   "cli.validate",
					Kind: domain.KindExecution,
					Path: dir,
					Err:  errors.New("fix the FAIL items and run validate again"),
				}
			}
			return nil
		},
	}
}
