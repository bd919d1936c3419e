// Package cli provides the hnti command tree: validate, compile, run,
// trace, and replay. It wraps internal/convert, internal/frontend,
// internal/optimizer, internal/bytecode, internal/artifact, and
// internal/evaluator; the core packages never import this one or cobra.
package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags shared by every subcommand.
type RootOptions struct {
	Verbose bool
	Format  string // "text" | "json"
	PassCap int
	Log     logr.Logger
}

var validFormats = []string{"text", "json"}

// validBackends is shared with trace.go's local --backend flag, the one
// command where a user can actually pick which engine runs (run/replay
// are VM-only: they evaluate an already-linked artifact, which carries
// no expression tree for the interpreter to walk).
var validBackends = []string{"vm", "interp"}

// NewRootCommand builds the hnti command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "hnti",
		Short: "hnti - quality-inspection recipe compiler and evaluator",
		Long:  "Compiles quality-inspection recipes into a register-based bytecode artifact and evaluates them against sample data.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !oneOf(opts.Format, validFormats) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, validFormats)
			}
			opts.Log = newLogger(opts.Verbose)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose logging")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")
	cmd.PersistentFlags().IntVar(&opts.PassCap, "pass-cap", 0, "optimizer pass cap override (0 = default)")
	cmd.PersistentFlags().String("config", "", "optional YAML config file overriding the defaults above")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))

	return cmd
}

func oneOf(s string, set []string) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}

func newLogger(verbose bool) logr.Logger {
	if verbose {
		stdr.SetVerbosity(1)
	}
	std := log.New(os.Stderr, "", log.LstdFlags)
	return stdr.New(std)
}
