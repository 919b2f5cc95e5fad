package placement

import "github.com/halcyondb/halcyon/internal/mir"

// interpFlatCost is the flat per-statement cost of interpretation. The
// interpreter runs everything, so its cost model needs no per-operation
// detail; a flat constant keeps relative comparisons meaningful.
const interpFlatCost Cost = 8

// interpAnalyzer is the fallback back-end: every statement is supported
// and traversals are free (execution stays in-process).
type interpAnalyzer struct{}

func (interpAnalyzer) Target() TargetID { return Interpreter }

func (interpAnalyzer) Analyze(ctx *Context) *Vectors {
	costs := NewStatementCosts(ctx.Body)
	for id, block := range ctx.Body.Blocks {
		for i := range block.Statements {
			costs.Set(mir.BlockID(id), i, interpFlatCost)
		}
	}

	traversals := make(TraversalCosts)
	for _, edge := range ctx.Body.Edges() {
		traversals[edge.Edge] = 0
	}
	return &Vectors{Target: Interpreter, Statements: costs, Traversals: traversals}
}
