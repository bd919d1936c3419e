package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble renders a compiled Program as a readable instruction
// listing, one line per instruction plus the literal pool and register
// budget. It exists for golden-file regression coverage of the
// peephole pass (§4.4) and for `hnti` diagnostics, not for re-parsing.
func Disassemble(prog *Program) string {
	var b strings.Builder
	for i, in := range prog.Instructions {
		fmt.Fprintf(&b, "%d: %s dst=%d a=%d b=%d imm=%d\n", i, in.Op, in.Dst, in.A, in.B, in.Imm)
	}
	for i, l := range prog.Literals {
		fmt.Fprintf(&b, "lit[%d] = %s\n", i, litString(l))
	}
	fmt.Fprintf(&b, "maxRegisters: %d\n", prog.MaxRegisters)
	return b.String()
}

func litString(l Literal) string {
	if l.IsBool {
		return fmt.Sprintf("bool:%v", l.Bool)
	}
	return fmt.Sprintf("num:%v", l.Number)
}
