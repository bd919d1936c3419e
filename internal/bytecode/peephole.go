package bytecode

// Peephole implements spec §4.4's post-emission cleanup: fuse a
// LoadStatic/LoadLit/Gt triple into CmpStaticGtImm, collapse
// Jump-to-Jump chains, and drop loads whose destination is overwritten
// before being read. It mutates prog in place and re-indexes jump
// targets after any instruction is removed.
func Peephole(prog *Program) {
	fuseCmpStaticGtImm(prog)
	collapseJumpChains(prog)
	removeDeadLoads(prog)
}

// fuseCmpStaticGtImm recognizes LoadStatic r,id ; LoadLit r',k ; Gt d,r,r'
// immediately adjacent, with the Gt reading exactly r and r' and k a
// number literal, and replaces it with one CmpStaticGtImm d,id,k
// instruction. It does not check whether r or r' is read again after
// the triple. Every fusion
// shortens the stream by two slots, so any Jump/JumpIfFalse/JumpIfTrue
// whose Imm is an absolute offset must be remapped afterward, the same
// way removeDeadLoads remaps around its own removals.
func fuseCmpStaticGtImm(prog *Program) {
	ins := prog.Instructions
	out := make([]Instruction, 0, len(ins))
	remap := make([]int32, len(ins)+1)
	for i := 0; i < len(ins); {
		remap[i] = int32(len(out))
		if i+2 < len(ins) &&
			ins[i].Op == OpLoadStatic &&
			ins[i+1].Op == OpLoadLit &&
			ins[i+2].Op == OpGt &&
			ins[i+2].A == ins[i].Dst &&
			ins[i+2].B == ins[i+1].Dst &&
			!literalIsBool(prog, ins[i+1].Imm) {
			out = append(out, Instruction{
				Op:  OpCmpStaticGtImm,
				Dst: ins[i+2].Dst,
				A:   0,
				B:   uint8(ins[i+1].Imm),
				Imm: ins[i].Imm,
			})
			remap[i+1] = int32(len(out))
			remap[i+2] = int32(len(out))
			i += 3
			continue
		}
		out = append(out, ins[i])
		i++
	}
	remap[len(ins)] = int32(len(out))
	if len(out) == len(ins) {
		return
	}
	for i := range out {
		switch out[i].Op {
		case OpJump, OpJumpIfFalse, OpJumpIfTrue:
			out[i].Imm = remap[out[i].Imm]
		}
	}
	prog.Instructions = out
}

func literalIsBool(prog *Program, idx int32) bool {
	if int(idx) >= len(prog.Literals) {
		return false
	}
	return prog.Literals[idx].IsBool
}

// collapseJumpChains retargets any Jump/JumpIfFalse/JumpIfTrue that
// lands on an unconditional Jump to that Jump's own target, repeatedly,
// so a chain of jumps resolves to its final destination.
func collapseJumpChains(prog *Program) {
	ins := prog.Instructions
	resolve := func(target int32) int32 {
		seen := map[int32]bool{}
		for int(target) < len(ins) && ins[target].Op == OpJump && !seen[target] {
			seen[target] = true
			target = ins[target].Imm
		}
		return target
	}
	for i := range ins {
		switch ins[i].Op {
		case OpJump, OpJumpIfFalse, OpJumpIfTrue:
			ins[i].Imm = resolve(ins[i].Imm)
		}
	}
}

// removeDeadLoads drops a Load* instruction whose destination register
// is overwritten by the very next instruction without being read in
// between, which the short-circuit lowering can produce when a branch
// target coincides with a fresh load.
func removeDeadLoads(prog *Program) {
	ins := prog.Instructions
	live := make([]bool, len(ins))
	for i := range live {
		live[i] = true
	}
	for i := 0; i < len(ins)-1; i++ {
		if !isLoad(ins[i].Op) {
			continue
		}
		next := ins[i+1]
		if next.Dst == ins[i].Dst && !readsRegister(next, ins[i].Dst) && !isJump(next.Op) {
			live[i] = false
		}
	}
	out := make([]Instruction, 0, len(ins))
	remap := make([]int32, len(ins)+1)
	for i, keep := range live {
		remap[i] = int32(len(out))
		if keep {
			out = append(out, ins[i])
		}
	}
	remap[len(ins)] = int32(len(out))
	for i := range out {
		switch out[i].Op {
		case OpJump, OpJumpIfFalse, OpJumpIfTrue:
			out[i].Imm = remap[out[i].Imm]
		}
	}
	prog.Instructions = out
}

func isLoad(op Op) bool {
	return op == OpLoadLit || op == OpLoadStatic || op == OpLoadDyn
}

func isJump(op Op) bool {
	return op == OpJump || op == OpJumpIfFalse || op == OpJumpIfTrue
}

func readsRegister(in Instruction, reg uint8) bool {
	switch in.Op {
	case OpLoadLit, OpLoadStatic, OpLoadDyn, OpJump:
		return false
	case OpNot, OpJumpIfFalse, OpJumpIfTrue, OpReturn:
		return in.A == reg
	default:
		return in.A == reg || in.B == reg
	}
}
