// Package datadep builds structural data-dependency graphs over the locals
// of a body.
//
// An edge A -> B means A was structurally built from B: B is recoverable
// from A by a fixed projection. Only structural rvalues (Load, tuple,
// struct, and closure aggregates) and block-parameter bindings create
// edges. Dependencies introduced by arbitrary computation (Binary, Unary,
// Apply, Input, list/dict/opaque aggregates) are deliberately absent;
// consumers that need them recover them from the rvalue directly.
package datadep

import (
	"fmt"
	"strings"

	"github.com/halcyondb/halcyon/internal/mir"
)

// EdgeKind tags how the source local incorporates the dependency.
type EdgeKind uint8

const (
	// EdgeLoad marks a direct copy.
	EdgeLoad EdgeKind = iota + 1
	// EdgeParam marks a block-parameter binding from a predecessor edge.
	EdgeParam
	// EdgeIndex marks a positional tuple component.
	EdgeIndex
	// EdgeField marks a named struct component.
	EdgeField
	// EdgeClosurePtr and EdgeClosureEnv mark the two closure-pair halves.
	EdgeClosurePtr
	EdgeClosureEnv
)

var edgeKindNames = map[EdgeKind]string{
	EdgeLoad: "load", EdgeParam: "param", EdgeIndex: "index",
	EdgeField: "field", EdgeClosurePtr: "closure.ptr", EdgeClosureEnv: "closure.env",
}

func (k EdgeKind) String() string {
	if name, ok := edgeKindNames[k]; ok {
		return name
	}
	return "?"
}

// Slot identifies which structural position of the source the dependency
// occupies: the tuple index for EdgeIndex, (index, name) for EdgeField.
type Slot struct {
	Kind  EdgeKind `json:"kind"`
	Index int      `json:"index,omitempty"`
	Name  string   `json:"name,omitempty"`
}

func (s Slot) String() string {
	switch s.Kind {
	case EdgeIndex:
		return fmt.Sprintf("index(%d)", s.Index)
	case EdgeField:
		return fmt.Sprintf("field(%d, %s)", s.Index, s.Name)
	default:
		return s.Kind.String()
	}
}

// projection returns the projection that recovers the slot's component from
// the source value. Load and Param slots are identity copies.
func (s Slot) projection() (mir.Projection, bool) {
	switch s.Kind {
	case EdgeIndex:
		return mir.FieldProjection(s.Index), true
	case EdgeField:
		return mir.NamedProjection(s.Name), true
	case EdgeClosurePtr:
		return mir.FieldProjection(0), true
	case EdgeClosureEnv:
		return mir.FieldProjection(1), true
	default:
		return mir.Projection{}, false
	}
}

// matches reports whether a use-site projection selects this slot.
func (s Slot) matches(p mir.Projection) bool {
	switch s.Kind {
	case EdgeIndex:
		return p.Kind == mir.ProjField && p.Field == s.Index
	case EdgeField:
		return (p.Kind == mir.ProjFieldNamed && p.Name == s.Name) ||
			(p.Kind == mir.ProjField && p.Field == s.Index)
	case EdgeClosurePtr:
		return p.Kind == mir.ProjField && p.Field == 0
	case EdgeClosureEnv:
		return p.Kind == mir.ProjField && p.Field == 1
	default:
		return false
	}
}

// Edge records one structural dependency of From on To. Via carries the
// projection chain of the operand the edge was built from, applied after
// the slot's own projection when recovering To's value.
type Edge struct {
	From mir.Local        `json:"from"`
	To   mir.Local        `json:"to"`
	Slot Slot             `json:"slot"`
	Via  []mir.Projection `json:"via,omitempty"`
}

func (e Edge) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s -[%s]-> %s", e.From, e.Slot, e.To)
	for _, p := range e.Via {
		sb.WriteString(p.String())
	}
	return sb.String()
}

// ConstantBinding records a constant occupying a structural slot of a
// local, for positions the graph cannot express as a local-to-local edge.
type ConstantBinding struct {
	Local mir.Local    `json:"local"`
	Slot  Slot         `json:"slot"`
	Value mir.Constant `json:"value"`
}

// Graph is the structural dependency graph of one body. Construct with
// Analyze; read-only afterwards.
type Graph struct {
	edges  map[mir.Local][]Edge
	consts map[mir.Local][]ConstantBinding
}

// Out returns the structural edges out of a local, in recording order.
func (g *Graph) Out(local mir.Local) []Edge { return g.edges[local] }

// Constants returns the constant bindings recorded for a local.
func (g *Graph) Constants(local mir.Local) []ConstantBinding { return g.consts[local] }

// Locals returns every local with at least one edge or binding.
func (g *Graph) Locals() []mir.Local {
	seen := make(map[mir.Local]bool, len(g.edges)+len(g.consts))
	var locals []mir.Local
	add := func(l mir.Local) {
		if !seen[l] {
			seen[l] = true
			locals = append(locals, l)
		}
	}
	for l := range g.edges {
		add(l)
	}
	for l := range g.consts {
		add(l)
	}
	return locals
}

// NumEdges counts the edges in the graph.
func (g *Graph) NumEdges() int {
	n := 0
	for _, out := range g.edges {
		n += len(out)
	}
	return n
}

func (g *Graph) addEdge(e Edge) {
	if g.edges == nil {
		g.edges = make(map[mir.Local][]Edge)
	}
	g.edges[e.From] = append(g.edges[e.From], e)
}

func (g *Graph) addConstant(b ConstantBinding) {
	if g.consts == nil {
		g.consts = make(map[mir.Local][]ConstantBinding)
	}
	g.consts[b.Local] = append(g.consts[b.Local], b)
}
