package datadep

import (
	"github.com/halcyondb/halcyon/internal/mir"
)

// OriginKind discriminates the two resolution outcomes.
type OriginKind uint8

const (
	// OriginLocal means the place resolves to a local with no structural
	// definition (a parameter or a computed value), plus the projection
	// suffix still needed to recover the value from it.
	OriginLocal OriginKind = iota + 1
	// OriginConstant means the place resolves all the way to a constant.
	OriginConstant
)

// Origin is the result of resolving a place through the graph.
type Origin struct {
	Kind        OriginKind       `json:"kind"`
	Local       mir.Local        `json:"local,omitempty"`
	Projections []mir.Projection `json:"projections,omitempty"`
	Value       mir.Constant     `json:"value,omitempty"`
}

// Place reconstructs the resolved place for an OriginLocal result.
func (o Origin) Place() mir.Place {
	return mir.Place{Local: o.Local, Projections: o.Projections}
}

// maxResolveSteps bounds the backward walk. The graph of an SSA body is
// close to acyclic (only merge parameters can loop, and those stop the
// walk), so the bound exists as a guard, not a tuning knob.
const maxResolveSteps = 256

// Resolve walks backward from a place to its ultimate structural origin.
//
// The walk follows Load copies, matches leading projections against
// aggregate slots, and steps through single-predecessor block parameters.
// It stops successfully at a local with no structural definition, returning
// that local plus the composed projection suffix, or at a constant. It
// returns ok=false (an opaque dependency, never an error) when a
// projection cannot be explained structurally: a dynamic index, a
// projection with no matching slot on a structurally-defined local, or a
// projection into a scalar constant.
func (g *Graph) Resolve(place mir.Place) (Origin, bool) {
	cur := place.Local
	pending := append([]mir.Projection(nil), place.Projections...)

	for steps := 0; steps < maxResolveSteps; steps++ {
		out := g.edges[cur]
		consts := g.consts[cur]

		// Identity definitions, Load copies and block parameters with
		// exactly one incoming binding, are followed before looking at the
		// projection chain. Merge parameters (several bindings) end the
		// walk: the parameter itself is the structural origin boundary.
		if identity(out, consts) {
			if len(out) == 1 {
				pending = append(append([]mir.Projection(nil), out[0].Via...), pending...)
				cur = out[0].To
				continue
			}
			if len(pending) > 0 {
				return Origin{}, false
			}
			return Origin{Kind: OriginConstant, Value: consts[0].Value}, true
		}
		if paramDefined(out, consts) {
			return Origin{Kind: OriginLocal, Local: cur, Projections: pending}, true
		}

		if len(pending) == 0 {
			return Origin{Kind: OriginLocal, Local: cur}, true
		}

		head := pending[0]
		if head.Kind == mir.ProjIndex {
			return Origin{}, false
		}

		if matched := matchSlot(out, head); matched != nil {
			pending = append(append([]mir.Projection(nil), matched.Via...), pending[1:]...)
			cur = matched.To
			continue
		}
		for _, binding := range consts {
			if binding.Slot.matches(head) {
				if len(pending) > 1 {
					return Origin{}, false
				}
				return Origin{Kind: OriginConstant, Value: binding.Value}, true
			}
		}

		if len(out) == 0 && len(consts) == 0 {
			// No structural definition: origin reached with a suffix.
			return Origin{Kind: OriginLocal, Local: cur, Projections: pending}, true
		}
		// Structurally defined, but the projection selects no known slot.
		return Origin{}, false
	}
	return Origin{}, false
}

// identity reports whether the local's structural definition is a single
// Load copy or single-predecessor parameter binding.
func identity(edges []Edge, consts []ConstantBinding) bool {
	if len(edges)+len(consts) != 1 {
		return false
	}
	kind := EdgeKind(0)
	if len(edges) == 1 {
		kind = edges[0].Slot.Kind
	} else {
		kind = consts[0].Slot.Kind
	}
	return kind == EdgeLoad || kind == EdgeParam
}

// paramDefined reports whether the local is a block parameter (every
// structural binding carries the Param slot).
func paramDefined(edges []Edge, consts []ConstantBinding) bool {
	if len(edges) > 0 {
		return edges[0].Slot.Kind == EdgeParam
	}
	return len(consts) > 0 && consts[0].Slot.Kind == EdgeParam
}

func matchSlot(edges []Edge, p mir.Projection) *Edge {
	for i := range edges {
		if edges[i].Slot.matches(p) {
			return &edges[i]
		}
	}
	return nil
}

// Transient returns a flattened copy of the graph in which every edge has
// been eagerly resolved to its ultimate origin. Edges whose targets resolve
// to constants become constant bindings; opaque edges are kept verbatim.
func (g *Graph) Transient() *Graph {
	t := &Graph{}
	for from, out := range g.edges {
		for _, e := range out {
			origin, ok := g.Resolve(mir.Place{Local: e.To, Projections: e.Via})
			if !ok {
				t.addEdge(e)
				continue
			}
			switch origin.Kind {
			case OriginLocal:
				t.addEdge(Edge{From: from, To: origin.Local, Slot: e.Slot, Via: origin.Projections})
			case OriginConstant:
				t.addConstant(ConstantBinding{Local: from, Slot: e.Slot, Value: origin.Value})
			}
		}
	}
	for _, bindings := range g.consts {
		for _, b := range bindings {
			t.addConstant(b)
		}
	}
	return t
}
