package footprint

import "fmt"

// Footprint estimates a value's storage units and element cardinality.
type Footprint struct {
	Units       Estimate `json:"units"`
	Cardinality Estimate `json:"cardinality"`
}

// ScalarFootprint is the footprint of any scalar value: one unit, one
// element.
func ScalarFootprint() Footprint {
	return Footprint{Units: Exact(1), Cardinality: Exact(1)}
}

// UnknownFootprint is absorbing in both components.
func UnknownFootprint() Footprint {
	return Footprint{Units: Unknown(), Cardinality: Unknown()}
}

// BottomFootprint carries no information. It is the zero value.
func BottomFootprint() Footprint { return Footprint{} }

// IsBottom reports whether both components are bottom.
func (f Footprint) IsBottom() bool {
	return f.Units.IsBottom() && f.Cardinality.IsBottom()
}

// IsUnknown reports whether either component is unknown.
func (f Footprint) IsUnknown() bool {
	return f.Units.IsUnknown() || f.Cardinality.IsUnknown()
}

// Plus adds component-wise with saturation.
func (f Footprint) Plus(other Footprint) Footprint {
	return Footprint{
		Units:       f.Units.Plus(other.Units),
		Cardinality: f.Cardinality.Plus(other.Cardinality),
	}
}

// Join merges component-wise, widening differing constants to unknown.
func (f Footprint) Join(other Footprint) Footprint {
	return Footprint{
		Units:       f.Units.Join(other.Units),
		Cardinality: f.Cardinality.Join(other.Cardinality),
	}
}

func (f Footprint) String() string {
	return fmt.Sprintf("{units: %s, card: %s}", f.Units, f.Cardinality)
}
