package placement

import (
	"fmt"

	"github.com/halcyondb/halcyon/internal/datadep"
	"github.com/halcyondb/halcyon/internal/mir"
	"github.com/halcyondb/halcyon/internal/typeenv"
)

// pushdownFlatCost is the flat per-statement cost on the pushdown target.
// Coercion overhead is folded in; the point is that pushed-down work is
// cheaper than interpreting the same statement.
const pushdownFlatCost Cost = 4

// pushdownAnalyzer models a relational-database pushdown back-end: filters
// over scanned rows can run inside the store when every statement maps
// onto something the store can evaluate.
type pushdownAnalyzer struct{}

func (pushdownAnalyzer) Target() TargetID { return Pushdown }

func (pushdownAnalyzer) Analyze(ctx *Context) *Vectors {
	// Whole-unit bypass: closures, thunks, constructors, and intrinsics
	// never run on the store; no per-statement cost model applies.
	if ctx.Body.Kind != mir.UnitFilter {
		return &Vectors{Target: Pushdown, Bypassed: true}
	}

	subjectType := ctx.Body.Locals[mir.LocalSubject].Type
	if kind := ctx.Env.Lookup(subjectType).Kind; kind != typeenv.KindStruct {
		// The type checker constrains filter subjects to row types before
		// this pass runs; anything else is an upstream bug.
		panic(fmt.Sprintf(
			"placement: filter subject of body %d has unrecognized declared type kind %s",
			ctx.Body.ID, kind,
		))
	}
	if ctx.Schema == nil {
		panic(fmt.Sprintf("placement: no schema supplied for filter body %d", ctx.Body.ID))
	}

	a := &pushdownPass{ctx: ctx, supported: make([]bool, ctx.Body.NumLocals())}
	// Boundary initialization: everything starts transferable except the
	// locals that are physically impossible on the store: the captured
	// environment and the subject row itself (its columns transfer, the
	// row value does not).
	for i := range a.supported {
		a.supported[i] = true
	}
	a.supported[mir.LocalEnv] = false
	a.supported[mir.LocalSubject] = false

	// Support is flow-insensitive: an unsupported definition poisons its
	// readers wherever they sit, including blocks with a lower index than
	// the defining one. Entries only ever flip from supported to
	// unsupported, so repeating the walk until nothing flips terminates.
	for changed := true; changed; {
		changed = false
		for _, block := range ctx.Body.Blocks {
			for _, stmt := range block.Statements {
				if !a.supported[stmt.LHS.Local] {
					continue
				}
				if !a.rvalueOK(stmt.RHS) {
					a.supported[stmt.LHS.Local] = false
					changed = true
				}
			}
		}
	}

	costs := NewStatementCosts(ctx.Body)
	for id, block := range ctx.Body.Blocks {
		for i, stmt := range block.Statements {
			if a.rvalueOK(stmt.RHS) {
				costs.Set(mir.BlockID(id), i, pushdownFlatCost)
			}
		}
	}

	live := liveIn(ctx.Body)
	traversals := make(TraversalCosts)
	for _, edge := range ctx.Body.Edges() {
		traversals[edge.Edge] = transferCost(ctx, live, edge.To)
	}
	return &Vectors{Target: Pushdown, Statements: costs, Traversals: traversals}
}

// pushdownPass carries the supported-local domain across the poison walk.
type pushdownPass struct {
	ctx       *Context
	supported []bool
}

func (a *pushdownPass) rvalueOK(rhs mir.RValue) bool {
	switch rv := rhs.(type) {
	case mir.Load:
		return a.operandOK(rv.X)

	case mir.Binary:
		if !a.operandOK(rv.L) || !a.operandOK(rv.R) {
			return false
		}
		switch rv.Op {
		case mir.BinEq, mir.BinNe:
			return a.equalitySafe(rv.L) && a.equalitySafe(rv.R)
		case mir.BinLt, mir.BinLte, mir.BinGt, mir.BinGte:
			return a.orderSafe(rv.L) && a.orderSafe(rv.R)
		default:
			return true
		}

	case mir.Unary:
		return a.operandOK(rv.X)

	case mir.Aggregate:
		if rv.Kind == mir.AggClosure {
			return false
		}
		for _, operand := range rv.Operands {
			if !a.operandOK(operand) {
				return false
			}
		}
		return true

	case mir.Input:
		// Query parameters are the unit's own inputs; the store receives
		// them as bind values.
		return true

	case mir.Apply:
		return false

	default:
		return false
	}
}

func (a *pushdownPass) operandOK(operand mir.Operand) bool {
	switch op := operand.(type) {
	case mir.Constant:
		return op.Kind != mir.ConstFnRef
	case mir.Place:
		return a.placeOK(op)
	default:
		return false
	}
}

func (a *pushdownPass) placeOK(place mir.Place) bool {
	origin, ok := a.ctx.Deps.Resolve(place)
	if !ok {
		return false
	}
	if origin.Kind == datadep.OriginConstant {
		return origin.Value.Kind != mir.ConstFnRef
	}

	switch origin.Local {
	case mir.LocalSubject:
		return a.ctx.Schema.PathSupported(origin.Projections)
	case mir.LocalEnv:
		return a.envFieldOK(origin.Projections)
	default:
		return a.supported[origin.Local]
	}
}

// envFieldOK decides whether one captured-environment tuple field can be
// shipped to the store: its type must embed no closure and every dict
// reachable from it must be string-keyed.
func (a *pushdownPass) envFieldOK(projections []mir.Projection) bool {
	if len(projections) == 0 || projections[0].Kind != mir.ProjField {
		return false
	}
	envType := a.ctx.Env.Lookup(a.ctx.Body.Locals[mir.LocalEnv].Type)
	if envType.Kind != typeenv.KindTuple || projections[0].Field >= len(envType.Elems) {
		return false
	}
	fieldType := envType.Elems[projections[0].Field]
	return a.ctx.Env.Walk(fieldType, func(_ typeenv.TypeID, t typeenv.Type) bool {
		switch t.Kind {
		case typeenv.KindClosure:
			return false
		case typeenv.KindDict:
			return a.ctx.Env.Lookup(t.Elems[0]).Kind == typeenv.KindString
		default:
			return true
		}
	})
}

// equalitySafe restricts equality comparison to types whose store-side and
// in-process equality agree.
func (a *pushdownPass) equalitySafe(operand mir.Operand) bool {
	switch kind := a.operandTypeKind(operand); kind {
	case typeenv.KindInt, typeenv.KindString, typeenv.KindBool, typeenv.KindUnit:
		return true
	default:
		return false
	}
}

// orderSafe restricts ordered comparison to totally-ordered scalars.
func (a *pushdownPass) orderSafe(operand mir.Operand) bool {
	switch kind := a.operandTypeKind(operand); kind {
	case typeenv.KindInt, typeenv.KindFloat, typeenv.KindString:
		return true
	default:
		return false
	}
}

func (a *pushdownPass) operandTypeKind(operand mir.Operand) typeenv.Kind {
	switch op := operand.(type) {
	case mir.Constant:
		switch op.Kind {
		case mir.ConstInt:
			return typeenv.KindInt
		case mir.ConstString:
			return typeenv.KindString
		case mir.ConstBool:
			return typeenv.KindBool
		case mir.ConstUnit:
			return typeenv.KindUnit
		default:
			return typeenv.KindUnknown
		}
	case mir.Place:
		id, ok := a.ctx.Static.PeelType(a.ctx.Body.Locals[op.Local].Type, op.Projections)
		if !ok {
			return typeenv.KindUnknown
		}
		return a.ctx.Env.Lookup(id).Kind
	default:
		return typeenv.KindUnknown
	}
}
