package mir

import (
	"fmt"
	"strings"
)

// ProjectionKind distinguishes the ways a Place narrows a value.
type ProjectionKind uint8

const (
	// ProjField selects a positional component of a tuple, struct, or
	// closure pair.
	ProjField ProjectionKind = iota + 1
	// ProjFieldNamed selects a struct field by name. The positional index
	// is not known at the use site.
	ProjFieldNamed
	// ProjIndex selects an element of a dynamically-sized collection.
	// Index projections are opaque to structural resolution.
	ProjIndex
)

// Projection is one step of a place's access path.
type Projection struct {
	Kind ProjectionKind `json:"kind"`

	// Field is the positional index for ProjField.
	Field int `json:"field,omitempty"`
	// Name is the field name for ProjFieldNamed.
	Name string `json:"name,omitempty"`
}

// FieldProjection builds a positional field projection.
func FieldProjection(index int) Projection {
	return Projection{Kind: ProjField, Field: index}
}

// NamedProjection builds a by-name field projection.
func NamedProjection(name string) Projection {
	return Projection{Kind: ProjFieldNamed, Name: name}
}

// IndexProjection builds a dynamic index projection.
func IndexProjection() Projection {
	return Projection{Kind: ProjIndex}
}

func (p Projection) String() string {
	switch p.Kind {
	case ProjField:
		return fmt.Sprintf(".%d", p.Field)
	case ProjFieldNamed:
		return "." + p.Name
	case ProjIndex:
		return "[*]"
	default:
		return ".?"
	}
}

// Place is a local plus an ordered projection chain describing a sub-value.
type Place struct {
	Local       Local        `json:"local"`
	Projections []Projection `json:"projections,omitempty"`
}

// PlaceOf builds a place with the given projection chain.
func PlaceOf(local Local, projections ...Projection) Place {
	return Place{Local: local, Projections: projections}
}

func (p Place) String() string {
	var sb strings.Builder
	sb.WriteString(p.Local.String())
	for _, projection := range p.Projections {
		sb.WriteString(projection.String())
	}
	return sb.String()
}
