// Package footprint estimates per-local value sizes without executing the
// program.
//
// Estimates live in a three-valued lattice: bottom (no information yet),
// an exact saturating constant, and unknown (absorbing). Combination rules
// are deliberately conservative: once a value's size is unknown it stays
// unknown through every operation that consumes it, so downstream cost
// models can never under-estimate.
package footprint

import (
	"math"
	"strconv"
)

type estimateKind uint8

const (
	kindBottom estimateKind = iota
	kindExact
	kindUnknown
)

// Estimate is one lattice point. The zero value is bottom.
type Estimate struct {
	kind  estimateKind
	value uint32
}

// saturation cap for exact estimates.
const maxExact = math.MaxUint32

// Bottom returns the no-information point.
func Bottom() Estimate { return Estimate{} }

// Exact returns a known-constant estimate.
func Exact(v uint32) Estimate { return Estimate{kind: kindExact, value: v} }

// Unknown returns the absorbing point.
func Unknown() Estimate { return Estimate{kind: kindUnknown} }

// IsBottom reports whether no information has been recorded.
func (e Estimate) IsBottom() bool { return e.kind == kindBottom }

// IsUnknown reports whether the estimate is absorbing.
func (e Estimate) IsUnknown() bool { return e.kind == kindUnknown }

// Value returns the constant and true for exact estimates.
func (e Estimate) Value() (uint32, bool) { return e.value, e.kind == kindExact }

// Plus adds two estimates. Unknown absorbs; bottom is the identity; exact
// values add with saturation at the cap.
func (e Estimate) Plus(other Estimate) Estimate {
	if e.kind == kindUnknown || other.kind == kindUnknown {
		return Unknown()
	}
	if e.kind == kindBottom {
		return other
	}
	if other.kind == kindBottom {
		return e
	}
	sum := uint64(e.value) + uint64(other.value)
	if sum > maxExact {
		sum = maxExact
	}
	return Exact(uint32(sum))
}

// Join merges estimates from converging paths. Bottom is the identity;
// unknown absorbs; differing exact constants widen to unknown.
func (e Estimate) Join(other Estimate) Estimate {
	if e.kind == kindBottom {
		return other
	}
	if other.kind == kindBottom {
		return e
	}
	if e.kind == kindUnknown || other.kind == kindUnknown {
		return Unknown()
	}
	if e.value != other.value {
		return Unknown()
	}
	return e
}

func (e Estimate) String() string {
	switch e.kind {
	case kindBottom:
		return "bottom"
	case kindUnknown:
		return "unknown"
	default:
		return strconv.FormatUint(uint64(e.value), 10)
	}
}
