package placement

import (
	"github.com/halcyondb/halcyon/internal/mir"
)

// Placement is the combined analysis output for one body: per-target cost
// vectors, per-block initial domains, and per-edge transition matrices.
// The solver narrows Domains and prunes Matrices in place.
type Placement struct {
	Vectors  [NumTargets]*Vectors
	Domains  []TargetSet
	Matrices map[mir.Edge]*TransMatrix
}

// AnalyzeBody runs every catalog analyzer and assembles domains and
// transition matrices. It must run after dependency and footprint analysis
// (carried in ctx).
func AnalyzeBody(ctx *Context) *Placement {
	p := &Placement{
		Domains:  make([]TargetSet, ctx.Body.NumBlocks()),
		Matrices: make(map[mir.Edge]*TransMatrix),
	}
	for _, analyzer := range Catalog() {
		p.Vectors[analyzer.Target()] = analyzer.Analyze(ctx)
	}

	// A target belongs to a block's domain iff it can execute every
	// statement of the block. The fallback is always present.
	loop := inLoop(ctx.Body)
	for id := range ctx.Body.Blocks {
		domain := SetOf(Fallback)
		for t := TargetID(0); t < NumTargets; t++ {
			v := p.Vectors[t]
			if t == Fallback || v.Bypassed {
				continue
			}
			if v.Statements.BlockSupported(mir.BlockID(id)) {
				domain = domain.With(t)
			}
		}
		// A loop must run where control flow is cheap: the store cannot
		// iterate, so Pushdown is out for every block inside a cycle.
		if loop[id] {
			domain = domain.Without(Pushdown)
		}
		p.Domains[id] = domain
	}

	live := liveIn(ctx.Body)
	for _, edge := range ctx.Body.Edges() {
		m := NewTransMatrix()
		cost := transferCost(ctx, live, edge.To)
		src := p.Domains[edge.Edge.From]
		dst := p.Domains[edge.To]
		_, scan := ctx.Body.Blocks[edge.Edge.From].Terminator.(mir.Scan)

		for _, s := range src.Targets() {
			for _, d := range dst.Targets() {
				switch {
				case scan:
					// Scan results materialize in-process first.
					if s == Interpreter && d == Interpreter {
						m.Allow(s, d, 0)
					}
				case s == d:
					m.Allow(s, d, 0)
				case d == Interpreter:
					// Falling back is always possible at the price of
					// shipping the live data across.
					m.Allow(s, d, cost)
				}
				// Entering Pushdown from another target is never allowed:
				// the store cannot adopt mid-flight state.
			}
		}
		p.Matrices[edge.Edge] = m
	}
	return p
}

// transferCost prices a cross-target transition over an edge into block
// to: the saturating sum of the footprints of everything live into the
// successor plus its parameters. Unknown sizes price at CostMax.
func transferCost(ctx *Context, live [][]bool, to mir.BlockID) Cost {
	total := Cost(0)
	for l, isLive := range live[to] {
		if isLive {
			total = total.Plus(costOf(ctx.Footprints.Local(mir.Local(l))))
		}
	}
	for _, param := range ctx.Body.Blocks[to].Params {
		total = total.Plus(costOf(ctx.Footprints.Local(param)))
	}
	return total
}
