package mir

import "fmt"

// BodyID identifies a compiled body within the current compilation.
type BodyID uint32

// BlockID identifies a basic block within a body.
type BlockID uint32

// UnitKind describes the role of the compiled unit a body implements.
// Placement analyzers use it to bypass unit kinds a target can never run.
type UnitKind uint8

const (
	// UnitFilter is a predicate applied to rows read from the external
	// store. Its two parameters are the captured environment and the
	// subject row.
	UnitFilter UnitKind = iota + 1
	// UnitClosure is a user closure body.
	UnitClosure
	// UnitThunk is a deferred computation wrapper.
	UnitThunk
	// UnitCtor is a value constructor.
	UnitCtor
	// UnitIntrinsic is a compiler-provided primitive.
	UnitIntrinsic
)

var unitKindNames = map[UnitKind]string{
	UnitFilter: "filter", UnitClosure: "closure", UnitThunk: "thunk",
	UnitCtor: "ctor", UnitIntrinsic: "intrinsic",
}

func (k UnitKind) String() string {
	if name, ok := unitKindNames[k]; ok {
		return name
	}
	return "?"
}

// Statement assigns the value of RHS to LHS. SSA form requires LHS to be a
// bare local; passes assert this and panic on violation.
type Statement struct {
	LHS Place  `json:"lhs"`
	RHS RValue `json:"rhs"`
}

// Assign builds a statement targeting a bare local.
func Assign(lhs Local, rhs RValue) Statement {
	return Statement{LHS: Place{Local: lhs}, RHS: rhs}
}

// BasicBlock is an ordered statement list plus exactly one terminator.
// Params receive values from predecessor edges' argument bindings.
type BasicBlock struct {
	Params     []Local     `json:"params,omitempty"`
	Statements []Statement `json:"statements,omitempty"`
	Terminator Terminator  `json:"terminator"`
}

// Body is one compiled unit's control-flow graph.
//
// Locals are dense; the first Args locals are the unit parameters. Block 0
// is the entry block. A Body is immutable once handed to the placement
// passes; nothing in this module mutates it.
type Body struct {
	ID     BodyID       `json:"id"`
	Kind   UnitKind     `json:"kind"`
	Args   int          `json:"args"`
	Locals []LocalDecl  `json:"locals"`
	Blocks []BasicBlock `json:"blocks"`
}

// NumLocals returns the number of declared locals.
func (b *Body) NumLocals() int { return len(b.Locals) }

// NumBlocks returns the number of basic blocks.
func (b *Body) NumBlocks() int { return len(b.Blocks) }

// Successors returns the successor targets of a block in edge order.
func (b *Body) Successors(block BlockID) []Target {
	return b.Blocks[block].Terminator.Targets()
}

// Predecessors computes, for every block, the list of predecessor blocks.
// Duplicate edges (a SwitchInt branching twice to the same block) appear
// once per edge.
func (b *Body) Predecessors() [][]BlockID {
	preds := make([][]BlockID, len(b.Blocks))
	for id := range b.Blocks {
		for _, target := range b.Successors(BlockID(id)) {
			preds[target.Block] = append(preds[target.Block], BlockID(id))
		}
	}
	return preds
}

// AssertSSA panics unless every assignment in the body targets a bare
// local. Input at this stage is pre-validated, so a violation is a bug in
// an earlier pipeline stage, not a recoverable condition.
func (b *Body) AssertSSA() {
	for blockID, block := range b.Blocks {
		for _, stmt := range block.Statements {
			if len(stmt.LHS.Projections) > 0 {
				panic(fmt.Sprintf(
					"mir: body %d is not in SSA form: bb%d assigns to projected place %s",
					b.ID, blockID, stmt.LHS,
				))
			}
		}
	}
}
