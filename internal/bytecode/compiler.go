package bytecode

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/lucidgauge/hnti/internal/ir"
)

// CompileError reports a backend error: an IR shape the compiler cannot
// lower, or a register budget overrun (§7 "Backend error").
type CompileError struct {
	Message string
}

func (e *CompileError) Error() string { return e.Message }

func newCompileError(format string, args ...interface{}) error {
	return errors.WithStack(&CompileError{Message: fmt.Sprintf(format, args...)})
}

// maxRegister bounds the per-path register file (§4.4).
const maxRegister = 250

type compiler struct {
	syms *Symbols

	instructions []Instruction
	literals     []Literal
	literalIdx   map[litKey]int32
	maxReg       uint8
}

type litKey struct {
	isBool bool
	bits   uint64
}

func newCompiler(syms *Symbols) *compiler {
	return &compiler{syms: syms, literalIdx: make(map[litKey]int32)}
}

// Compile lowers one optimized root into a Program. A SubroutineRef is
// lowered to a Call whose Imm is the ref's pool index; the caller
// compiles the pool entries themselves, with the same Symbols.
func Compile(root *ir.Expr, syms *Symbols) (*Program, error) {
	c := newCompiler(syms)
	dst, err := c.walk(root, 0)
	if err != nil {
		return nil, err
	}
	c.emit(OpReturn, 0, dst, 0, 0)

	prog := &Program{
		Instructions: c.instructions,
		Literals:     c.literals,
		MaxRegisters: c.maxReg + 1,
	}
	Peephole(prog)
	return prog, nil
}

func (c *compiler) reserve(reg uint8) error {
	if reg > maxRegister {
		return newCompileError("register budget exceeded (> %d live registers)", maxRegister)
	}
	if reg > c.maxReg {
		c.maxReg = reg
	}
	return nil
}

func (c *compiler) walk(e *ir.Expr, reg uint8) (uint8, error) {
	if err := c.reserve(reg); err != nil {
		return 0, err
	}

	switch e.Kind {
	case ir.LiteralKind:
		c.emit(OpLoadLit, reg, 0, 0, c.addLiteral(e.Literal))
		return reg, nil

	case ir.InputKind:
		if e.Source.Kind == ir.StaticSource {
			id, ok := c.syms.StaticID(e.Source.Name)
			if !ok {
				return 0, newCompileError("static input %q has no assigned id", e.Source.Name)
			}
			c.emit(OpLoadStatic, reg, 0, 0, int32(id))
			return reg, nil
		}
		eventID, caseID := c.syms.caseIDMust(e.Source.EventType, e.Source.CaseName)
		c.instructions = append(c.instructions, Instruction{Op: OpLoadDyn, Dst: reg, A: uint8(eventID), B: uint8(caseID)})
		return reg, nil

	case ir.SubroutineRefKind:
		c.emit(OpCall, reg, 0, 0, int32(e.SubID))
		return reg, nil

	case ir.Not:
		if op, a, b, ok := denormalizedComparison(e); ok {
			lr, err := c.walk(a, reg)
			if err != nil {
				return 0, err
			}
			rr, err := c.walk(b, reg+1)
			if err != nil {
				return 0, err
			}
			c.emit(op, reg, lr, rr, 0)
			return reg, nil
		}
		operand, err := c.walk(e.Left, reg)
		if err != nil {
			return 0, err
		}
		c.emit(OpNot, reg, operand, 0, 0)
		return reg, nil

	case ir.And:
		return c.walkShortCircuit(e, reg, true)
	case ir.Or:
		return c.walkShortCircuit(e, reg, false)
	}

	left, err := c.walk(e.Left, reg)
	if err != nil {
		return 0, err
	}
	right, err := c.walk(e.Right, reg+1)
	if err != nil {
		return 0, err
	}

	op, ok := nativeOp(e.Kind)
	if !ok {
		return 0, newCompileError("unsupported IR node for bytecode backend: kind %d", e.Kind)
	}
	c.emit(op, reg, left, right, 0)
	return reg, nil
}

// walkShortCircuit implements §4.4's And/Or lowering contract: evaluate
// the left operand into reg, branch past the right operand if it
// already decides the result, otherwise evaluate the right operand into
// the same register.
func (c *compiler) walkShortCircuit(e *ir.Expr, reg uint8, isAnd bool) (uint8, error) {
	if _, err := c.walk(e.Left, reg); err != nil {
		return 0, err
	}

	var branch Op
	if isAnd {
		branch = OpJumpIfFalse
	} else {
		branch = OpJumpIfTrue
	}
	branchPC := c.emit(branch, 0, reg, 0, 0)

	if _, err := c.walk(e.Right, reg); err != nil {
		return 0, err
	}

	c.patch(branchPC, int32(len(c.instructions)))
	return reg, nil
}

// denormalizedComparison recognizes Not(Gt(a,b)) and Not(Eq(a,b)), the
// shapes comparison normalization (§4.3c) persists into the optimized
// tree, and reports the single native opcode that computes the same
// bool directly, saving the Not instruction (§4.4 "rewrite back on
// bytecode emission if the backend has native opcodes for the full set").
func denormalizedComparison(notExpr *ir.Expr) (op Op, a, b *ir.Expr, ok bool) {
	inner := notExpr.Left
	switch inner.Kind {
	case ir.Gt:
		return OpLte, inner.Left, inner.Right, true
	case ir.Eq:
		return OpNeq, inner.Left, inner.Right, true
	}
	return 0, nil, nil, false
}

func nativeOp(k ir.Kind) (Op, bool) {
	switch k {
	case ir.Sum:
		return OpAdd, true
	case ir.Sub:
		return OpSub, true
	case ir.Mul:
		return OpMul, true
	case ir.Div:
		return OpDiv, true
	case ir.Gt:
		return OpGt, true
	case ir.Lt:
		return OpLt, true
	case ir.Gte:
		return OpGte, true
	case ir.Lte:
		return OpLte, true
	case ir.Eq:
		return OpEq, true
	case ir.Neq:
		return OpNeq, true
	}
	return 0, false
}

func (c *compiler) addLiteral(v ir.Value) int32 {
	key := litKey{isBool: v.IsBool(), bits: v.Num}
	if idx, ok := c.literalIdx[key]; ok {
		return idx
	}
	idx := int32(len(c.literals))
	if v.IsBool() {
		c.literals = append(c.literals, Literal{IsBool: true, Bool: v.Bool_()})
	} else {
		c.literals = append(c.literals, Literal{Number: v.Float()})
	}
	c.literalIdx[key] = idx
	return idx
}

func (c *compiler) emit(op Op, dst, a, b uint8, imm int32) int {
	c.instructions = append(c.instructions, Instruction{Op: op, Dst: dst, A: a, B: b, Imm: imm})
	return len(c.instructions) - 1
}

func (c *compiler) patch(pos int, imm int32) {
	c.instructions[pos].Imm = imm
}

// caseIDMust looks up a (event, case) id pair that BuildSymbols must
// already have assigned, since Compile is always called with the same
// roots that produced syms.
func (s *Symbols) caseIDMust(eventType, caseName string) (uint32, uint32) {
	eventID, _ := s.EventID(eventType)
	for id, name := range s.caseNames[eventID] {
		if name == caseName {
			return eventID, uint32(id)
		}
	}
	return eventID, 0
}
