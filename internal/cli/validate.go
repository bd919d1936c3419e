package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewValidateCommand builds `hnti validate <recipe.json> <qualities.json>`.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "validate <recipe.json> <qualities.json>",
		Short:         "Run convert+frontend+typecheck and report errors with node ids",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, recipePath, qualitiesPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}

	cfg, err := loadConfigFlag(cmd)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading config", err)
	}
	passCap := resolvePassCap(opts, cfg)

	formatter.VerboseLog("loading recipe %s and qualities %s", recipePath, qualitiesPath)
	lr, err := loadAndOptimize(recipePath, qualitiesPath, passCap, opts.Log)
	if err != nil {
		return WrapExitError(ExitCommandError, "validation failed", err)
	}

	return formatter.Success(fmt.Sprintf("valid: %d quality path(s), %d pooled subroutine(s)", len(lr.Optimized.Paths), len(lr.Optimized.Pool)))
}
