package placement

import (
	"github.com/halcyondb/halcyon/internal/datadep"
	"github.com/halcyondb/halcyon/internal/footprint"
	"github.com/halcyondb/halcyon/internal/mir"
	"github.com/halcyondb/halcyon/internal/typeenv"
)

// Context carries the read-only inputs a statement analyzer needs. All
// fields are owned by the caller and never mutated here.
type Context struct {
	Env        *typeenv.Env
	Body       *mir.Body
	Deps       *datadep.Graph
	Footprints *footprint.Result
	Static     *footprint.Static
	// Schema describes what the pushdown target can address on the filter
	// subject. Ignored by targets that do not read external rows.
	Schema *Schema
}

// StatementAnalyzer is implemented once per back-end. The solver is
// target-agnostic; adding a back-end means adding an implementation here
// and never touches the solver.
type StatementAnalyzer interface {
	Target() TargetID
	// Analyze produces the target's cost vectors for the body. It must run
	// after dependency and footprint analysis for the same body.
	Analyze(ctx *Context) *Vectors
}

// Catalog returns the analyzers for the full target catalog, in TargetID
// order.
func Catalog() []StatementAnalyzer {
	return []StatementAnalyzer{interpAnalyzer{}, pushdownAnalyzer{}}
}
