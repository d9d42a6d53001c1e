package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/huitzo/packkit/internal/buildinfo"
	"github.com/huitzo/packkit/internal/domain"
	"github.com/huitzo/packkit/internal/infra/logger"
)

// Exit codes: 0 success (including a declined overwrite), 1 failed
// validation or execution, 2 usage errors.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	if domain.IsKind(err, domain.KindUsage) {
		return exitUsage
	}
	return exitFailure
}

func newRootCmd() *cobra.Command {
	var debug bool
	var cleanup func() error

	cmd := &cobra.Command{
		Use:          "packkit",
		Short:        "packkit — build, validate and submit Huitzo Intelligence Packs",
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			wd, err := os.Getwd()
			if err != nil {
				wd = "."
			}
			cleanup, _ = logger.Setup(logger.Config{Root: wd, Debug: debug})
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if cleanup != nil {
				_ = cleanup()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable verbose logging to .packkit/logs/packkit.log")

	cmd.AddCommand(
		validateCmd(),
		submitCmd(),
		initCmd(),
		packsCmd(),
		invokeCmd(),
		versionCmd(),
	)
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the packkit version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
		},
	}
}

// usageArgs validates positional arguments, classifying mistakes as usage
// errors so they map to exit code 2.
func usageArgs(expected string, n int) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != n {
			return &domain.OpError{
				Op:   "cli.args",
				Kind: domain.KindUsage,
				Err:  fmt.Errorf("expected %s, got %d argument(s)", expected, len(args)),
			}
		}
		return nil
	}
}

// requireDir classifies a missing or non-directory pack path as a usage
// error, distinct from validation failures inside an existing directory.
func requireDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &domain.OpError{
			Op:   "cli.path",
			Kind: domain.KindUsage,
			Path: path,
			Err:  fmt.Errorf("no such directory"),
		}
	}
	if !info.IsDir() {
		return &domain.OpError{
			Op:   "cli.path",
			Kind: domain.KindUsage,
			Path: path,
			Err:  fmt.Errorf("not a directory"),
		}
	}
	return nil
}
