package placement

import (
	"github.com/halcyondb/halcyon/internal/mir"
)

// liveIn computes backward liveness: for every block, which locals are
// live on entry. Used to price how much data a cross-target transition
// would have to ship across an edge.
func liveIn(body *mir.Body) [][]bool {
	n := body.NumBlocks()
	locals := body.NumLocals()

	use := make([][]bool, n)
	def := make([][]bool, n)
	for i := range use {
		use[i] = make([]bool, locals)
		def[i] = make([]bool, locals)
	}

	for id, block := range body.Blocks {
		for _, param := range block.Params {
			def[id][param] = true
		}
		for _, stmt := range block.Statements {
			useRValue(use[id], def[id], stmt.RHS)
			def[id][stmt.LHS.Local] = true
		}
		useTerminator(use[id], def[id], block.Terminator)
	}

	in := make([][]bool, n)
	out := make([][]bool, n)
	for i := range in {
		in[i] = make([]bool, locals)
		out[i] = make([]bool, locals)
	}

	for changed := true; changed; {
		changed = false
		for id := n - 1; id >= 0; id-- {
			block := mir.BlockID(id)
			for _, target := range body.Successors(block) {
				for l, live := range in[target.Block] {
					if live && !out[id][l] {
						out[id][l] = true
						changed = true
					}
				}
			}
			for l := 0; l < locals; l++ {
				live := use[id][l] || (out[id][l] && !def[id][l])
				if live && !in[id][l] {
					in[id][l] = true
					changed = true
				}
			}
		}
	}
	return in
}

func useOperand(use, def []bool, operand mir.Operand) {
	if place, ok := operand.(mir.Place); ok {
		if !def[place.Local] {
			use[place.Local] = true
		}
	}
}

func useRValue(use, def []bool, rhs mir.RValue) {
	switch rv := rhs.(type) {
	case mir.Load:
		useOperand(use, def, rv.X)
	case mir.Binary:
		useOperand(use, def, rv.L)
		useOperand(use, def, rv.R)
	case mir.Unary:
		useOperand(use, def, rv.X)
	case mir.Aggregate:
		for _, operand := range rv.Operands {
			useOperand(use, def, operand)
		}
	case mir.Apply:
		useOperand(use, def, rv.Fn)
		for _, arg := range rv.Args {
			useOperand(use, def, arg)
		}
	}
}

func useTerminator(use, def []bool, term mir.Terminator) {
	switch t := term.(type) {
	case mir.SwitchInt:
		useOperand(use, def, t.Discr)
	case mir.Return:
		useOperand(use, def, t.Value)
	}
	for _, target := range term.Targets() {
		for _, arg := range target.Args {
			useOperand(use, def, arg)
		}
	}
}
