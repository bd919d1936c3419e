package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lucidgauge/hnti/internal/artifact"
)

// NewCompileCommand builds `hnti compile <recipe.json> <qualities.json> -o out.hnti`.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:           "compile <recipe.json> <qualities.json>",
		Short:         "Run the full pipeline and write a CompiledRecipe artifact",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(rootOpts, args[0], args[1], output, cmd)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output artifact path (required)")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runCompile(opts *RootOptions, recipePath, qualitiesPath, output string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}

	cfg, err := loadConfigFlag(cmd)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading config", err)
	}
	passCap := resolvePassCap(opts, cfg)

	lr, err := loadAndOptimize(recipePath, qualitiesPath, passCap, opts.Log)
	if err != nil {
		return WrapExitError(ExitCommandError, "compilation failed", err)
	}

	rec, err := compileArtifact(lr)
	if err != nil {
		return WrapExitError(ExitCommandError, "linking artifact", err)
	}

	f, err := os.Create(output)
	if err != nil {
		return WrapExitError(ExitCommandError, "creating output file", err)
	}
	defer f.Close()

	if err := artifact.Write(f, rec); err != nil {
		return WrapExitError(ExitCommandError, "writing artifact", err)
	}

	return formatter.Success(fmt.Sprintf("compiled %d quality path(s) to %s (artifact id %s)", len(rec.Paths), output, rec.ID))
}
