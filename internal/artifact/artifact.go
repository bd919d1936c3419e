// Package artifact implements the versioned binary CompiledRecipe
// format of spec §6: magic, version, input-id table, subroutine pool,
// and per-quality instruction sequences.
package artifact

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/lucidgauge/hnti/internal/bytecode"
	"github.com/lucidgauge/hnti/internal/ir"
)

// Magic identifies an HNTI compiled recipe file.
const Magic = "HNTI"

// FormatVersion is bumped whenever the on-disk layout changes in a way
// that is not backward compatible (§6: "Versions are not
// backward-compatible unless the version byte matches").
const FormatVersion uint16 = 1

// Error is an artifact-boundary failure: bad magic, unsupported version,
// or a truncated stream (§7 "Artifact error").
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(msg string) error { return errors.WithStack(&Error{Message: msg}) }

// Quality is one compiled path's metadata: name, priority, and the
// dynamic event types it may read (the "footprint bitmap" of §6,
// represented here as an explicit name list rather than a bitmask since
// the event table is already small and named).
type Quality struct {
	Name      string
	Priority  int
	Footprint []string
	Negated   bool // preserved, ignored at evaluation time per §9 open question
}

// CompiledRecipe is the fully linked, self-contained artifact: every
// Input and SubroutineRef occurring anywhere in Paths or Pool resolves
// within Symbols and Pool respectively (§3 invariant).
type CompiledRecipe struct {
	ID      uuid.UUID
	Symbols *bytecode.Symbols
	Pool    []*bytecode.Program
	Paths   []CompiledPath
}

// CompiledPath pairs a Quality with its compiled instruction stream.
type CompiledPath struct {
	Quality Quality
	Program *bytecode.Program
}

// Compile links optimized quality expressions and subroutine pool
// entries into a self-contained CompiledRecipe, stamping it with the
// ArtifactID id. id is supplied by the caller since this package never
// calls uuid.New() directly — the CLI and test code control when a
// fresh id is generated versus reused from a round-tripped file.
func Compile(id uuid.UUID, qualities []Quality, exprs []*ir.Expr, pool []*ir.Expr) (*CompiledRecipe, error) {
	if len(qualities) != len(exprs) {
		return nil, newError("qualities and exprs length mismatch")
	}

	roots := append(append([]*ir.Expr{}, exprs...), pool...)
	syms := bytecode.BuildSymbols(roots)

	compiledPool := make([]*bytecode.Program, len(pool))
	for i, sub := range pool {
		prog, err := bytecode.Compile(sub, syms)
		if err != nil {
			return nil, errors.Wrapf(err, "compiling subroutine %d", i)
		}
		compiledPool[i] = prog
	}

	paths := make([]CompiledPath, len(qualities))
	for i, q := range qualities {
		prog, err := bytecode.Compile(exprs[i], syms)
		if err != nil {
			return nil, errors.Wrapf(err, "compiling quality %q", q.Name)
		}
		paths[i] = CompiledPath{Quality: q, Program: prog}
	}

	return &CompiledRecipe{ID: id, Symbols: syms, Pool: compiledPool, Paths: paths}, nil
}
