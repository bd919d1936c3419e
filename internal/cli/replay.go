package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// replayEntry is one data file's evaluation outcome, for regression sweeps.
type replayEntry struct {
	File            string  `json:"file"`
	QualityName     *string `json:"quality_name"`
	QualityPriority *int    `json:"quality_priority"`
	Reason          string  `json:"reason"`
	Error           string  `json:"error,omitempty"`
}

// NewReplayCommand builds `hnti replay <artifact.hnti> <data-dir>`.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "replay <artifact.hnti> <data-dir>",
		Short:         "Evaluate an artifact against every data file in a directory",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runReplay(opts *RootOptions, artifactPath, dataDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}

	rec, err := loadArtifact(artifactPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "loading artifact", err)
	}

	files, err := dataFilesIn(dataDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "listing data directory", err)
	}

	ev := evaluatorFromArtifact(rec, opts.Log)

	entries := make([]replayEntry, 0, len(files))
	failures := 0
	for _, file := range files {
		entry := replayEntry{File: file}
		sd, err := loadSampleData(file)
		if err != nil {
			entry.Error = err.Error()
			failures++
			entries = append(entries, entry)
			continue
		}
		res, err := ev.Evaluate(sd.Static, sd.Dynamic)
		if err != nil {
			entry.Error = err.Error()
			failures++
			entries = append(entries, entry)
			continue
		}
		entry.QualityName = res.QualityName
		entry.QualityPriority = res.QualityPriority
		entry.Reason = res.Reason
		entries = append(entries, entry)
		formatter.VerboseLog("%s -> %s", file, res.Reason)
	}

	if opts.Format == "json" {
		if err := formatter.Success(entries); err != nil {
			return err
		}
	} else {
		for _, e := range entries {
			if e.Error != "" {
				fmt.Fprintf(formatter.Writer, "%s: error: %s\n", e.File, e.Error)
				continue
			}
			fmt.Fprintf(formatter.Writer, "%s: %s\n", e.File, e.Reason)
		}
	}

	if failures > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d data file(s) errored during replay", failures, len(files)))
	}
	return nil
}

func dataFilesIn(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
