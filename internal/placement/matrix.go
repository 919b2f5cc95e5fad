package placement

import (
	"fmt"
	"strings"
)

// TransMatrix is one CFG edge's transition-validity matrix: cell (s, d) is
// set iff execution may move from target s at the edge's source block to
// target d at its destination, with the cost of doing so.
type TransMatrix struct {
	cells [NumTargets][NumTargets]transCell
}

type transCell struct {
	ok   bool
	cost Cost
}

// NewTransMatrix returns an all-forbidden matrix.
func NewTransMatrix() *TransMatrix { return &TransMatrix{} }

// Allow marks a transition legal at the given cost.
func (m *TransMatrix) Allow(s, d TargetID, cost Cost) {
	m.cells[s][d] = transCell{ok: true, cost: cost}
}

// Forbid removes a transition.
func (m *TransMatrix) Forbid(s, d TargetID) {
	m.cells[s][d] = transCell{}
}

// Allowed reports whether the transition is legal.
func (m *TransMatrix) Allowed(s, d TargetID) bool { return m.cells[s][d].ok }

// CostOf returns the transition cost; ok is false for forbidden cells.
func (m *TransMatrix) CostOf(s, d TargetID) (Cost, bool) {
	cell := m.cells[s][d]
	return cell.cost, cell.ok
}

// Prune restricts the matrix in place to the surviving source and
// destination domains, so downstream consumers never observe pairs the
// solver has already ruled out.
func (m *TransMatrix) Prune(src, dst TargetSet) {
	for s := TargetID(0); s < NumTargets; s++ {
		for d := TargetID(0); d < NumTargets; d++ {
			if !src.Contains(s) || !dst.Contains(d) {
				m.cells[s][d] = transCell{}
			}
		}
	}
}

func (m *TransMatrix) String() string {
	var parts []string
	for s := TargetID(0); s < NumTargets; s++ {
		for d := TargetID(0); d < NumTargets; d++ {
			if cell := m.cells[s][d]; cell.ok {
				parts = append(parts, fmt.Sprintf("%s->%s@%d", s, d, cell.cost))
			}
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}
