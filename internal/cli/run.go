package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/lucidgauge/hnti/internal/convert"
)

// evaluationResultJSON mirrors §6's EvaluationResult wire shape.
type evaluationResultJSON struct {
	QualityName     *string `json:"quality_name"`
	QualityPriority *int    `json:"quality_priority"`
	Reason          string  `json:"reason"`
}

// NewRunCommand builds `hnti run <artifact.hnti> <data.json>`.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "run <artifact.hnti> <data.json>",
		Short:         "Load an artifact and evaluate it against sample data via the bytecode VM",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runEvaluate(opts *RootOptions, artifactPath, dataPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}

	rec, err := loadArtifact(artifactPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading artifact", err)
	}

	sd, err := loadSampleData(dataPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading sample data", err)
	}

	ev := evaluatorFromArtifact(rec, opts.Log)
	res, err := ev.Evaluate(sd.Static, sd.Dynamic)
	if err != nil {
		return WrapExitError(ExitFailure, "evaluation error", err)
	}

	return formatter.Success(evaluationResultJSON{
		QualityName:     res.QualityName,
		QualityPriority: res.QualityPriority,
		Reason:          res.Reason,
	})
}

func loadSampleData(path string) (convert.SampleData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return convert.SampleData{}, &LoadError{Path: path, Message: err.Error()}
	}
	return convert.ConvertSampleData(raw)
}
