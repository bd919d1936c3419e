// Package evaluator drives cross-product evaluation over dynamic event
// arrays and quality-priority arbitration (§4.7), choosing between the
// bytecode VM and the tree-walking interpreter as its execution backend.
package evaluator

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"

	"github.com/lucidgauge/hnti/internal/bytecode"
	"github.com/lucidgauge/hnti/internal/interp"
	"github.com/lucidgauge/hnti/internal/ir"
	"github.com/lucidgauge/hnti/internal/vm"
)

// Backend selects which execution engine walks each path.
type Backend byte

const (
	BackendVM Backend = iota
	BackendInterp
)

// Path is one compiled quality, named and prioritized per spec §3.
type Path struct {
	Name     string
	Priority int
	Expr     *ir.Expr // optimized; may contain SubroutineRef into Pool
}

// EvalError is an evaluation-time failure that aborts the whole
// evaluation (§7: "no partial quality triggering is reported").
type EvalError struct {
	Quality string
	Cause   error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("evaluating quality %q: %s", e.Quality, e.Cause)
}

func (e *EvalError) Unwrap() error { return e.Cause }

// Result is the outcome of one Evaluate call (§6 "Evaluation result").
type Result struct {
	QualityName     *string
	QualityPriority *int
	Reason          string
}

type preparedPath struct {
	path       Path
	footprint  []string // dynamic event types, first-occurrence order
	inlined    *ir.Expr // SubroutineRef resolved, for interp + pre-check
	program    *bytecode.Program
}

// Evaluator holds one prepared recipe plus the backend state reused
// across Evaluate calls (§4.6: "One VM instance per evaluator, reused
// across evaluations").
type Evaluator struct {
	backend Backend
	log     logr.Logger

	paths []preparedPath
	syms  *bytecode.Symbols // only used by the VM backend
	vm    *vm.VM
}

// New prepares paths (and their shared subroutine pool) for evaluation.
// Paths are re-sorted ascending by priority internally; the input order
// does not matter.
func New(paths []Path, pool []*ir.Expr, backend Backend, log logr.Logger) (*Evaluator, error) {
	sorted := append([]Path(nil), paths...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority < sorted[j].Priority })

	e := &Evaluator{backend: backend, log: log}

	for _, p := range sorted {
		pp := preparedPath{
			path:      p,
			footprint: collectFootprint(p.Expr, nil, map[string]bool{}),
			inlined:   interp.Inline(p.Expr, pool),
		}
		e.paths = append(e.paths, pp)
	}

	if backend == BackendVM {
		roots := make([]*ir.Expr, 0, len(sorted)+len(pool))
		for _, p := range sorted {
			roots = append(roots, p.Expr)
		}
		roots = append(roots, pool...)
		e.syms = bytecode.BuildSymbols(roots)

		compiledPool := make([]*bytecode.Program, len(pool))
		for i, sub := range pool {
			prog, err := bytecode.Compile(sub, e.syms)
			if err != nil {
				return nil, errors.Wrapf(err, "compiling subroutine %d", i)
			}
			compiledPool[i] = prog
		}
		e.vm = vm.New(compiledPool)

		for i := range e.paths {
			prog, err := bytecode.Compile(e.paths[i].path.Expr, e.syms)
			if err != nil {
				return nil, errors.Wrapf(err, "compiling quality %q", e.paths[i].path.Name)
			}
			e.paths[i].program = prog
		}
	}

	return e, nil
}

// CollectFootprint exposes collectFootprint for callers (the artifact
// compile step) that need a quality's dynamic event footprint before an
// Evaluator exists — e.g. to stamp it into a CompiledRecipe's header.
func CollectFootprint(e *ir.Expr) []string {
	return collectFootprint(e, nil, map[string]bool{})
}

// CompiledPathSpec names one already-compiled path from a CompiledRecipe
// (internal/artifact), for evaluating an artifact that was loaded from
// disk rather than just-produced by the frontend/optimizer.
type CompiledPathSpec struct {
	Name      string
	Priority  int
	Footprint []string
	Program   *bytecode.Program
}

// NewFromCompiled builds a VM-backed Evaluator directly from a
// CompiledRecipe's symbols, subroutine pool, and path programs. No
// interpreter backend is available this way (the artifact carries no
// expression trees, only bytecode) and no static pre-check runs (§4.6's
// pre-check needs the interpreter too) — every path is evaluated for
// real via the VM. This is the path `hnti run`/`hnti replay` take after
// loading a .hnti file; `hnti trace` instead recompiles from recipe+
// qualities JSON so it can run the interpreter backend.
func NewFromCompiled(syms *bytecode.Symbols, pool []*bytecode.Program, paths []CompiledPathSpec, log logr.Logger) *Evaluator {
	sorted := append([]CompiledPathSpec(nil), paths...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority < sorted[j].Priority })

	e := &Evaluator{backend: BackendVM, log: log, syms: syms, vm: vm.New(pool)}
	for _, p := range sorted {
		e.paths = append(e.paths, preparedPath{
			path:      Path{Name: p.Name, Priority: p.Priority},
			footprint: p.Footprint,
			program:   p.Program,
		})
	}
	return e
}

// collectFootprint walks e in left-to-right order and records each
// distinct dynamic event type the first time it is seen, matching the
// enumeration-order rule of §4.7.
func collectFootprint(e *ir.Expr, out []string, seen map[string]bool) []string {
	if e == nil {
		return out
	}
	if e.Kind == ir.InputKind && e.Source.Kind == ir.DynamicSource {
		if !seen[e.Source.EventType] {
			seen[e.Source.EventType] = true
			out = append(out, e.Source.EventType)
		}
	}
	for _, c := range e.Children() {
		out = collectFootprint(c, out, seen)
	}
	return out
}

// Evaluate runs the arbitration of §4.7: paths are tried in ascending
// priority, the first to produce true for some binding wins, and an
// evaluation error aborts immediately without trying later qualities.
func (e *Evaluator) Evaluate(static map[string]float64, dynamic map[string][]map[string]float64) (Result, error) {
	staticArr := e.staticArray(static)

	for _, pp := range e.paths {
		if pp.inlined != nil {
			skip, err := staticPreCheckFails(pp.inlined, static)
			if err != nil {
				return Result{}, &EvalError{Quality: pp.path.Name, Cause: err}
			}
			if skip {
				continue
			}
		}

		triggered, reason, err := e.evalPath(pp, staticArr, static, dynamic)
		if err != nil {
			return Result{}, &EvalError{Quality: pp.path.Name, Cause: err}
		}
		if triggered {
			name := pp.path.Name
			priority := pp.path.Priority
			e.log.V(1).Info("quality triggered", "quality", name, "priority", priority)
			return Result{QualityName: &name, QualityPriority: &priority, Reason: reason}, nil
		}
	}

	e.log.V(1).Info("no quality triggered")
	return Result{Reason: "no quality triggered"}, nil
}

func (e *Evaluator) staticArray(static map[string]float64) []float64 {
	if e.syms == nil {
		return nil
	}
	arr := make([]float64, len(e.syms.StaticNames))
	for i, name := range e.syms.StaticNames {
		if v, ok := static[name]; ok {
			arr[i] = v
		} else {
			arr[i] = math.NaN()
		}
	}
	return arr
}

// evalPath evaluates one path, once when it has no footprint and over
// the cross product of its footprint otherwise. The reason it returns is
// built here for both backends: "<name> triggered", followed for a
// footprint path by "<event type>[<index>]" for each event type of the
// binding that fired. The
// interpreter's own per-node reason is not carried into it.
func (e *Evaluator) evalPath(pp preparedPath, staticArr []float64, static map[string]float64, dynamic map[string][]map[string]float64) (bool, string, error) {
	if len(pp.footprint) == 0 {
		ok, err := e.evalOnce(pp, staticArr, static, nil, nil)
		if err != nil {
			return false, "", err
		}
		if ok {
			return true, fmt.Sprintf("%s triggered", pp.path.Name), nil
		}
		return false, "", nil
	}

	lengths := make([]int, len(pp.footprint))
	for i, et := range pp.footprint {
		lengths[i] = len(dynamic[et])
	}

	found := false
	var winningIndices []int
	var evalErr error
	enumerate(lengths, func(indices []int) bool {
		ok, err := e.evalOnce(pp, staticArr, static, dynamic, indices)
		if err != nil {
			evalErr = err
			return true
		}
		if ok {
			found = true
			winningIndices = append([]int(nil), indices...)
			return true
		}
		return false
	})
	if evalErr != nil {
		return false, "", evalErr
	}
	if !found {
		return false, "", nil
	}
	return true, reasonWithIndices(pp.path.Name, pp.footprint, winningIndices), nil
}

func reasonWithIndices(name string, footprint []string, indices []int) string {
	s := fmt.Sprintf("%s triggered", name)
	for i, et := range footprint {
		s += fmt.Sprintf(" %s[%d]", et, indices[i])
	}
	return s
}

// evalOnce evaluates pp for one concrete binding (nil indices for a
// purely static path) using whichever backend the Evaluator was built
// with. indices[i] selects the bound instance of pp.footprint[i].
func (e *Evaluator) evalOnce(pp preparedPath, staticArr []float64, static map[string]float64, dynamic map[string][]map[string]float64, indices []int) (bool, error) {
	switch e.backend {
	case BackendVM:
		return e.evalOnceVM(pp, staticArr, dynamic, indices)
	default:
		return e.evalOnceInterp(pp, static, dynamic, indices)
	}
}

func (e *Evaluator) evalOnceVM(pp preparedPath, staticArr []float64, dynamic map[string][]map[string]float64, indices []int) (bool, error) {
	var dynRows [][]float64
	if len(indices) > 0 {
		dynRows = make([][]float64, len(e.syms.EventNames))
		for i, et := range pp.footprint {
			eventID, ok := e.syms.EventID(et)
			if !ok {
				continue
			}
			instance := dynamic[et][indices[i]]
			caseNames := e.syms.CaseNames(eventID)
			row := make([]float64, len(caseNames))
			for ci, cn := range caseNames {
				if v, ok := instance[cn]; ok {
					row[ci] = v
				} else {
					row[ci] = math.NaN()
				}
			}
			dynRows[eventID] = row
		}
	}
	v, err := e.vm.Eval(pp.program, vm.Bindings{Static: staticArr, Dynamic: dynRows})
	if err != nil {
		return false, err
	}
	return v.ToIR().Bool_(), nil
}

func (e *Evaluator) evalOnceInterp(pp preparedPath, static map[string]float64, dynamic map[string][]map[string]float64, indices []int) (bool, error) {
	b := interp.Bindings{Static: static, Dynamic: dynamic, Index: map[string]int{}}
	for i, et := range pp.footprint {
		b.Index[et] = indices[i]
	}
	res, err := interp.Eval(pp.inlined, b)
	if err != nil {
		return false, err
	}
	return res.Value.Bool_(), nil
}
