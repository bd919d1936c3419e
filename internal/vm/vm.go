// Package vm executes compiled bytecode.Programs on a register machine,
// grounded on the teacher's register VM loop: a flat switch over opcodes
// driving a small fixed-size register array, falling back to a heap
// slice only when a path's register budget exceeds the inline capacity.
package vm

import (
	"math"

	"github.com/pkg/errors"

	"github.com/lucidgauge/hnti/internal/bytecode"
	"github.com/lucidgauge/hnti/internal/ir"
)

// EvalError is an evaluation-time failure (§7 "Evaluation error"):
// missing input, or divide-by-zero.
type EvalError struct {
	Message string
}

func (e *EvalError) Error() string { return e.Message }

func newEvalError(msg string) error { return errors.WithStack(&EvalError{Message: msg}) }

// Bindings supplies the runtime values a Program's LoadStatic/LoadDyn
// instructions read: static_data by input id, and the current
// dynamic-event-instance binding by (event id, case id).
type Bindings struct {
	Static []float64 // indexed by static input id; NaN marks "not provided"
	// Dynamic holds, per event id, the single currently-bound instance's
	// case values indexed by case id. The cross-product driver (internal/evaluator)
	// rewrites this slice between enumerations.
	Dynamic [][]float64
}

// VM is one reusable register-machine instance. Per spec §4.6, one VM is
// created per evaluator and reused across evaluations; Eval clears the
// subroutine cache at entry. Registers are not cleared. Eval allocates a
// register slice when a program needs more than the 32 inline registers,
// and every uncached subroutine call allocates its own register slice.
type VM struct {
	pool      []*bytecode.Program
	subCache  []cacheSlot
	registers [32]Value
}

type cacheSlot struct {
	valid bool
	value Value
}

// Value is the VM's runtime value, mirroring ir.Value's tagged encoding
// so bytecode-compiled literals and evaluation results round-trip
// through the same bit representation as the IR.
type Value struct {
	IsBool bool
	Num    float64
	Bool   bool
}

func numberValue(f float64) Value { return Value{Num: f} }
func boolValue(b bool) Value      { return Value{IsBool: true, Bool: b} }

func (v Value) truthy() bool { return v.IsBool && v.Bool }

// ToIR converts a VM Value back to the shared ir.Value representation.
func (v Value) ToIR() ir.Value {
	if v.IsBool {
		return ir.Bool(v.Bool)
	}
	return ir.Number(v.Num)
}

// New creates a VM bound to a subroutine pool shared by every path it
// will execute.
func New(pool []*bytecode.Program) *VM {
	return &VM{pool: pool, subCache: make([]cacheSlot, len(pool))}
}

// Eval runs one Program to completion against bindings and returns its
// Return value. The subroutine memoization cache (§4.6) is cleared at
// entry, and the register file is sized from the inline array unless
// the program's budget exceeds it.
func (m *VM) Eval(prog *bytecode.Program, bindings Bindings) (Value, error) {
	for i := range m.subCache {
		m.subCache[i].valid = false
	}

	var regs []Value
	if int(prog.MaxRegisters) <= len(m.registers) {
		regs = m.registers[:prog.MaxRegisters]
	} else {
		regs = make([]Value, prog.MaxRegisters)
	}

	return m.run(prog, regs, bindings)
}

func (m *VM) run(prog *bytecode.Program, regs []Value, bindings Bindings) (Value, error) {
	pc := 0
	ins := prog.Instructions
	lits := prog.Literals

	for pc < len(ins) {
		in := ins[pc]
		pc++

		switch in.Op {
		case bytecode.OpLoadLit:
			regs[in.Dst] = litValue(lits[in.Imm])

		case bytecode.OpLoadStatic:
			if int(in.Imm) >= len(bindings.Static) {
				return Value{}, newEvalError("static input id out of range")
			}
			f := bindings.Static[in.Imm]
			if math.IsNaN(f) {
				return Value{}, newEvalError("static input not provided")
			}
			regs[in.Dst] = numberValue(f)

		case bytecode.OpLoadDyn:
			eventID, caseID := int(in.A), int(in.B)
			if eventID >= len(bindings.Dynamic) || caseID >= len(bindings.Dynamic[eventID]) {
				return Value{}, newEvalError("dynamic input not provided for current binding")
			}
			f := bindings.Dynamic[eventID][caseID]
			if math.IsNaN(f) {
				return Value{}, newEvalError("dynamic input case not provided for current binding")
			}
			regs[in.Dst] = numberValue(f)

		case bytecode.OpAdd:
			regs[in.Dst] = numberValue(regs[in.A].Num + regs[in.B].Num)
		case bytecode.OpSub:
			regs[in.Dst] = numberValue(regs[in.A].Num - regs[in.B].Num)
		case bytecode.OpMul:
			regs[in.Dst] = numberValue(regs[in.A].Num * regs[in.B].Num)
		case bytecode.OpDiv:
			if regs[in.B].Num == 0 {
				return Value{}, newEvalError("division by zero")
			}
			regs[in.Dst] = numberValue(regs[in.A].Num / regs[in.B].Num)

		case bytecode.OpGt:
			regs[in.Dst] = boolValue(numGt(regs[in.A].Num, regs[in.B].Num))
		case bytecode.OpLt:
			regs[in.Dst] = boolValue(numGt(regs[in.B].Num, regs[in.A].Num))
		case bytecode.OpGte:
			regs[in.Dst] = boolValue(!numGt(regs[in.B].Num, regs[in.A].Num) && !isUnordered(regs[in.A].Num, regs[in.B].Num))
		case bytecode.OpLte:
			regs[in.Dst] = boolValue(!numGt(regs[in.A].Num, regs[in.B].Num) && !isUnordered(regs[in.A].Num, regs[in.B].Num))
		case bytecode.OpEq:
			regs[in.Dst] = boolValue(valuesEqual(regs[in.A], regs[in.B]))
		case bytecode.OpNeq:
			regs[in.Dst] = boolValue(!valuesEqual(regs[in.A], regs[in.B]))

		case bytecode.OpNot:
			regs[in.Dst] = boolValue(!regs[in.A].truthy())

		case bytecode.OpJump:
			pc = int(in.Imm)
		case bytecode.OpJumpIfFalse:
			if !regs[in.A].truthy() {
				pc = int(in.Imm)
			}
		case bytecode.OpJumpIfTrue:
			if regs[in.A].truthy() {
				pc = int(in.Imm)
			}

		case bytecode.OpCall:
			v, err := m.call(int(in.Imm), bindings)
			if err != nil {
				return Value{}, err
			}
			regs[in.Dst] = v

		case bytecode.OpCmpStaticGtImm:
			if int(in.Imm) >= len(bindings.Static) {
				return Value{}, newEvalError("static input id out of range")
			}
			f := bindings.Static[in.Imm]
			if math.IsNaN(f) {
				return Value{}, newEvalError("static input not provided")
			}
			threshold := lits[in.B].Number
			regs[in.Dst] = boolValue(f > threshold)

		case bytecode.OpReturn:
			return regs[in.A], nil
		}
	}
	return Value{}, newEvalError("program fell off the end without returning")
}

// call executes (or fetches from cache) pool subroutine id. Subroutines
// take no dynamic bindings: purity over static inputs is their
// admission precondition (§4.3f), so bindings.Dynamic is irrelevant to
// them but threaded through in case a future pool entry relaxes that.
func (m *VM) call(id int, bindings Bindings) (Value, error) {
	if m.subCache[id].valid {
		return m.subCache[id].value, nil
	}
	sub := m.pool[id]
	regs := make([]Value, sub.MaxRegisters)
	v, err := m.run(sub, regs, bindings)
	if err != nil {
		return Value{}, err
	}
	m.subCache[id] = cacheSlot{valid: true, value: v}
	return v, nil
}

func litValue(l bytecode.Literal) Value {
	if l.IsBool {
		return boolValue(l.Bool)
	}
	return numberValue(l.Number)
}

func valuesEqual(a, b Value) bool {
	if a.IsBool != b.IsBool {
		return false
	}
	if a.IsBool {
		return a.Bool == b.Bool
	}
	if math.IsNaN(a.Num) || math.IsNaN(b.Num) {
		return false
	}
	return a.Num == b.Num
}

// numGt reports a > b, false whenever either operand is NaN (§3).
func numGt(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return false
	}
	return a > b
}

func isUnordered(a, b float64) bool {
	return math.IsNaN(a) || math.IsNaN(b)
}
