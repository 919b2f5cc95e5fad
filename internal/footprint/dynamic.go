package footprint

import (
	"github.com/halcyondb/halcyon/internal/mir"
	"github.com/halcyondb/halcyon/internal/typeenv"
)

// maxPasses bounds forward iteration over the CFG. The lattice has height
// two per component, so real bodies stabilize in a handful of passes; the
// bound guards against pathological graphs.
const maxPasses = 16

// Estimator runs the dynamic footprint analysis: a forward dataflow over
// the CFG seeded from static type estimates and cross-body summaries.
type Estimator struct {
	env       *typeenv.Env
	static    *Static
	summaries *SummaryTable
}

// NewEstimator builds an estimator. summaries may be empty but not nil.
func NewEstimator(env *typeenv.Env, summaries *SummaryTable) *Estimator {
	return &Estimator{env: env, static: NewStatic(env), summaries: summaries}
}

// Static exposes the underlying type-driven estimator.
func (e *Estimator) Static() *Static { return e.static }

// Result holds per-local footprints for one analyzed body.
type Result struct {
	locals []Footprint
}

// Local returns the footprint estimated for a local.
func (r *Result) Local(l mir.Local) Footprint { return r.locals[l] }

// NumLocals returns the number of locals covered.
func (r *Result) NumLocals() int { return len(r.locals) }

// Analyze estimates every local of the body.
//
// Locals whose declared type yields an exact static estimate keep it; only
// the remainder, the re-evaluation set, is recomputed through the
// transfer rules. Block-edge propagation copies argument footprints into
// successor parameters, except across Scan edges, whose delivered
// collection is never statically sized.
func (e *Estimator) Analyze(body *mir.Body) *Result {
	n := body.NumLocals()
	fp := make([]Footprint, n)
	dynamic := make([]bool, n)
	for i, decl := range body.Locals {
		st := e.static.EstimateType(decl.Type)
		if st.IsUnknown() {
			dynamic[i] = true
		} else {
			fp[i] = st
		}
	}
	// Unit parameters are externally supplied; nothing in the body will
	// refine a dynamically-sized one.
	for i := 0; i < body.Args; i++ {
		if dynamic[i] {
			fp[i] = UnknownFootprint()
		}
	}

	for pass := 0; pass < maxPasses; pass++ {
		changed := false
		for id := range body.Blocks {
			block := &body.Blocks[id]
			for _, stmt := range block.Statements {
				lhs := stmt.LHS.Local
				if !dynamic[lhs] {
					continue
				}
				merged := fp[lhs].Join(e.transfer(body, fp, stmt.RHS))
				if merged != fp[lhs] {
					fp[lhs] = merged
					changed = true
				}
			}

			_, scan := block.Terminator.(mir.Scan)
			for _, target := range block.Terminator.Targets() {
				params := body.Blocks[target.Block].Params
				for i, param := range params {
					if !dynamic[param] {
						continue
					}
					incoming := UnknownFootprint()
					if !scan {
						incoming = e.operand(body, fp, target.Args[i])
					}
					merged := fp[param].Join(incoming)
					if merged != fp[param] {
						fp[param] = merged
						changed = true
					}
				}
			}
		}
		if !changed {
			break
		}
	}
	return &Result{locals: fp}
}

// Summarize computes the whole-body footprint: the join of every returned
// value's footprint. Bodies that never return yield bottom.
func (e *Estimator) Summarize(body *mir.Body, result *Result) Footprint {
	summary := BottomFootprint()
	for _, block := range body.Blocks {
		if ret, ok := block.Terminator.(mir.Return); ok {
			summary = summary.Join(e.operand(body, result.locals, ret.Value))
		}
	}
	return summary
}

func (e *Estimator) transfer(body *mir.Body, fp []Footprint, rhs mir.RValue) Footprint {
	switch rv := rhs.(type) {
	case mir.Load:
		return e.operand(body, fp, rv.X)

	case mir.Binary, mir.Unary:
		return ScalarFootprint()

	case mir.Aggregate:
		sum := Footprint{Units: Exact(0), Cardinality: Exact(0)}
		for _, operand := range rv.Operands {
			sum = sum.Plus(e.operand(body, fp, operand))
		}
		return sum

	case mir.Input:
		if rv.Op == mir.InputExists {
			return ScalarFootprint()
		}
		return UnknownFootprint()

	case mir.Apply:
		// A statically-known callee contributes its whole-body summary,
		// enabling cross-body fixpoint iteration; anything else is unknown.
		if fn, ok := rv.Fn.(mir.Constant); ok && fn.Kind == mir.ConstFnRef {
			if summary, ok := e.summaries.Lookup(fn.Fn); ok {
				return summary
			}
		}
		return UnknownFootprint()

	default:
		return UnknownFootprint()
	}
}

func (e *Estimator) operand(body *mir.Body, fp []Footprint, operand mir.Operand) Footprint {
	switch op := operand.(type) {
	case mir.Constant:
		return ScalarFootprint()
	case mir.Place:
		if len(op.Projections) == 0 {
			return fp[op.Local]
		}
		return e.static.EstimatePlace(body.Locals, op)
	default:
		return UnknownFootprint()
	}
}
