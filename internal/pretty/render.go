// Package pretty renders analysis artifacts as stable text, for golden
// tests, the CLI, and debugging. Output is deterministic: locals, blocks,
// and edges appear in their dense order.
package pretty

import (
	"fmt"
	"strings"

	"github.com/halcyondb/halcyon/internal/datadep"
	"github.com/halcyondb/halcyon/internal/footprint"
	"github.com/halcyondb/halcyon/internal/mir"
	"github.com/halcyondb/halcyon/internal/placement"
)

// Body renders a body's blocks, statements, and terminators.
func Body(body *mir.Body) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "body %d %s (%d args, %d locals)\n",
		body.ID, body.Kind, body.Args, body.NumLocals())
	for id, block := range body.Blocks {
		if len(block.Params) == 0 {
			fmt.Fprintf(&sb, "bb%d:\n", id)
		} else {
			params := make([]string, len(block.Params))
			for i, p := range block.Params {
				params[i] = p.String()
			}
			fmt.Fprintf(&sb, "bb%d(%s):\n", id, strings.Join(params, ", "))
		}
		for _, stmt := range block.Statements {
			fmt.Fprintf(&sb, "  %s = %s\n", stmt.LHS, stmt.RHS)
		}
		fmt.Fprintf(&sb, "  %s\n", block.Terminator)
	}
	return sb.String()
}

// Graph renders the structural dependency edges and constant bindings of a
// body, in local order.
func Graph(body *mir.Body, g *datadep.Graph) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "dependencies of body %d\n", body.ID)
	for l := 0; l < body.NumLocals(); l++ {
		local := mir.Local(l)
		for _, edge := range g.Out(local) {
			fmt.Fprintf(&sb, "%s\n", edge)
		}
		for _, binding := range g.Constants(local) {
			fmt.Fprintf(&sb, "%s -[%s]-> %s\n", binding.Local, binding.Slot, binding.Value)
		}
	}
	return sb.String()
}

// Footprints renders per-local footprint estimates.
func Footprints(body *mir.Body, r *footprint.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "footprints of body %d\n", body.ID)
	for l := 0; l < body.NumLocals(); l++ {
		fmt.Fprintf(&sb, "%s: %s\n", mir.Local(l), r.Local(mir.Local(l)))
	}
	return sb.String()
}

// Placement renders per-block domains and per-edge transition matrices.
func Placement(body *mir.Body, p *placement.Placement) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "placement of body %d\n", body.ID)
	for id, domain := range p.Domains {
		fmt.Fprintf(&sb, "bb%d: %s\n", id, domain)
	}
	for _, edge := range body.Edges() {
		fmt.Fprintf(&sb, "edge %s -> bb%d: %s\n", edge.Edge, edge.To, p.Matrices[edge.Edge])
	}
	return sb.String()
}

// Report renders the full analysis of one body.
func Report(body *mir.Body, deps *datadep.Graph, fps *footprint.Result, p *placement.Placement) string {
	var sb strings.Builder
	sb.WriteString(Body(body))
	sb.WriteString("\n")
	sb.WriteString(Graph(body, deps))
	sb.WriteString("\n")
	sb.WriteString(Footprints(body, fps))
	sb.WriteString("\n")
	sb.WriteString(Placement(body, p))
	return sb.String()
}
