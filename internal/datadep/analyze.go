package datadep

import (
	"fmt"

	"github.com/halcyondb/halcyon/internal/mir"
)

// Analyze builds the structural dependency graph for a body. The body must
// be in SSA form; Analyze asserts this and panics on violation.
func Analyze(body *mir.Body) *Graph {
	body.AssertSSA()

	g := &Graph{}
	for blockID, block := range body.Blocks {
		for _, stmt := range block.Statements {
			g.record(stmt.LHS.Local, stmt.RHS)
		}
		// A Scan delivers an externally-read collection to its target's
		// parameter; there is no structural binding to record.
		if _, ok := block.Terminator.(mir.Scan); ok {
			continue
		}
		for _, target := range block.Terminator.Targets() {
			params := body.Blocks[target.Block].Params
			if len(params) != len(target.Args) {
				panic(fmt.Sprintf(
					"datadep: bb%d -> bb%d binds %d args to %d params",
					blockID, target.Block, len(target.Args), len(params),
				))
			}
			for i, param := range params {
				g.bind(param, Slot{Kind: EdgeParam}, target.Args[i])
			}
		}
	}
	return g
}

// record adds the edges and bindings for one assignment. Non-structural
// rvalues contribute nothing.
func (g *Graph) record(lhs mir.Local, rhs mir.RValue) {
	switch rv := rhs.(type) {
	case mir.Load:
		g.bind(lhs, Slot{Kind: EdgeLoad}, rv.X)

	case mir.Aggregate:
		switch rv.Kind {
		case mir.AggTuple:
			for i, operand := range rv.Operands {
				g.bind(lhs, Slot{Kind: EdgeIndex, Index: i}, operand)
			}
		case mir.AggStruct:
			for i, operand := range rv.Operands {
				g.bind(lhs, Slot{Kind: EdgeField, Index: i, Name: rv.Fields[i]}, operand)
			}
		case mir.AggClosure:
			if len(rv.Operands) != 2 {
				panic(fmt.Sprintf(
					"datadep: closure aggregate for %s has %d operands, want 2",
					lhs, len(rv.Operands),
				))
			}
			g.bind(lhs, Slot{Kind: EdgeClosurePtr}, rv.Operands[0])
			g.bind(lhs, Slot{Kind: EdgeClosureEnv}, rv.Operands[1])
		}
	}
}

// bind records one structural operand: a place becomes an edge, a constant
// a binding.
func (g *Graph) bind(from mir.Local, slot Slot, operand mir.Operand) {
	switch op := operand.(type) {
	case mir.Place:
		g.addEdge(Edge{From: from, To: op.Local, Slot: slot, Via: op.Projections})
	case mir.Constant:
		g.addConstant(ConstantBinding{Local: from, Slot: slot, Value: op})
	default:
		panic(fmt.Sprintf("datadep: unknown operand %T for %s", operand, from))
	}
}
