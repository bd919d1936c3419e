package cli

import (
	"github.com/spf13/cobra"
)

// NewTraceCommand builds `hnti trace <recipe.json> <qualities.json> <data.json>`.
//
// Unlike run/replay, trace recompiles the recipe fresh rather than
// loading a CompiledRecipe artifact, because the interpreter backend
// needs the optimized expression tree and an artifact never carries one
// (internal/artifact.CompiledRecipe links bytecode.Programs only). This
// is the one point in the pipeline where the tree still exists, which is
// why trace forces BackendInterp by default instead of evaluating a
// .hnti file like its siblings.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "trace <recipe.json> <qualities.json> <data.json>",
		Short:         "Recompile a recipe and print its triggering reason string via the interpreter",
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(rootOpts, args[0], args[1], args[2], cmd)
		},
	}
	cmd.Flags().String("backend", "interp", "evaluation backend (vm|interp)")

	return cmd
}

func runTrace(opts *RootOptions, recipePath, qualitiesPath, dataPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}

	if flagVal, _ := cmd.Flags().GetString("backend"); !oneOf(flagVal, validBackends) {
		return NewExitError(ExitCommandError, "invalid backend "+flagVal+": must be one of vm, interp")
	}

	cfg, err := loadConfigFlag(cmd)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading config", err)
	}
	backend := resolveBackend(cmd, cfg)

	lr, err := loadAndOptimize(recipePath, qualitiesPath, resolvePassCap(opts, cfg), opts.Log)
	if err != nil {
		return WrapExitError(ExitCommandError, "compilation failed", err)
	}

	sd, err := loadSampleData(dataPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading sample data", err)
	}

	formatter.VerboseLog("tracing via backend=%v", backend)
	ev, err := buildEvaluator(lr, backend, opts.Log)
	if err != nil {
		return WrapExitError(ExitCommandError, "preparing evaluator", err)
	}

	res, err := ev.Evaluate(sd.Static, sd.Dynamic)
	if err != nil {
		return WrapExitError(ExitFailure, "evaluation error", err)
	}

	if opts.Format == "json" {
		return formatter.Success(evaluationResultJSON{QualityName: res.QualityName, QualityPriority: res.QualityPriority, Reason: res.Reason})
	}
	return formatter.Success(res.Reason)
}
