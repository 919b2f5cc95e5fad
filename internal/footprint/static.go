package footprint

import (
	"github.com/halcyondb/halcyon/internal/mir"
	"github.com/halcyondb/halcyon/internal/typeenv"
)

// Static derives footprints from type shape alone. Results are memoized by
// TypeID since the same type recurs across many sub-expressions.
type Static struct {
	env  *typeenv.Env
	memo map[typeenv.TypeID]Footprint
}

// NewStatic returns a static estimator over the given type environment.
func NewStatic(env *typeenv.Env) *Static {
	return &Static{env: env, memo: make(map[typeenv.TypeID]Footprint)}
}

// EstimateType computes the footprint implied by a type's shape. Scalars
// are one unit; tuples and structs sum their components with cardinality
// one; dynamically-sized and structurally opaque types are unknown.
func (s *Static) EstimateType(id typeenv.TypeID) Footprint {
	if cached, ok := s.memo[id]; ok {
		return cached
	}
	// Pre-seed with unknown so self-referential tables terminate at the
	// conservative answer instead of recursing.
	s.memo[id] = UnknownFootprint()
	result := s.estimate(id, 0)
	s.memo[id] = result
	return result
}

func (s *Static) estimate(id typeenv.TypeID, depth int) Footprint {
	if depth > typeenv.MaxWalkDepth {
		return UnknownFootprint()
	}
	t := s.env.Lookup(id)
	switch {
	case t.Kind.Scalar():
		return ScalarFootprint()

	case t.Kind == typeenv.KindTuple:
		units := Exact(0)
		for _, elem := range t.Elems {
			units = units.Plus(s.estimate(elem, depth+1).Units)
		}
		return Footprint{Units: units, Cardinality: Exact(1)}

	case t.Kind == typeenv.KindStruct:
		units := Exact(0)
		for _, field := range t.Fields {
			units = units.Plus(s.estimate(field.Type, depth+1).Units)
		}
		return Footprint{Units: units, Cardinality: Exact(1)}

	case t.Kind == typeenv.KindClosure:
		// Pointer plus captured environment.
		env := s.estimate(t.Elems[0], depth+1)
		return Footprint{Units: Exact(1).Plus(env.Units), Cardinality: Exact(1)}

	default:
		// List, dict, opaque, unknown: size is not determined by shape.
		return UnknownFootprint()
	}
}

// EstimatePlace resolves a place's declared type by peeling its projection
// chain through the type structure, then estimates the resulting type. A
// chain the type structure cannot explain yields unknown.
func (s *Static) EstimatePlace(locals []mir.LocalDecl, place mir.Place) Footprint {
	id, ok := s.PeelType(locals[place.Local].Type, place.Projections)
	if !ok {
		return UnknownFootprint()
	}
	return s.EstimateType(id)
}

// PeelType steps a type through a projection chain, returning the type of
// the projected sub-value. It reports false when the chain leaves the
// statically-known structure.
func (s *Static) PeelType(id typeenv.TypeID, projections []mir.Projection) (typeenv.TypeID, bool) {
	for _, p := range projections {
		t := s.env.Lookup(id)
		switch p.Kind {
		case mir.ProjField:
			switch t.Kind {
			case typeenv.KindTuple:
				if p.Field >= len(t.Elems) {
					return 0, false
				}
				id = t.Elems[p.Field]
			case typeenv.KindClosure:
				// The pair is [ptr, env]; only the environment half has a
				// structural type.
				if p.Field != 1 {
					return 0, false
				}
				id = t.Elems[0]
			case typeenv.KindStruct:
				if p.Field >= len(t.Fields) {
					return 0, false
				}
				id = t.Fields[p.Field].Type
			default:
				return 0, false
			}
		case mir.ProjFieldNamed:
			i := s.env.FieldIndex(id, p.Name)
			if i < 0 {
				return 0, false
			}
			id = t.Fields[i].Type
		case mir.ProjIndex:
			if t.Kind != typeenv.KindList {
				return 0, false
			}
			id = t.Elems[0]
		default:
			return 0, false
		}
	}
	return id, true
}
