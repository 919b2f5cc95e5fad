package placement

import (
	"math"

	"github.com/halcyondb/halcyon/internal/footprint"
	"github.com/halcyondb/halcyon/internal/mir"
)

// Cost is a saturating estimate of execution or transfer expense.
type Cost uint32

// CostMax marks an effectively unbounded cost (unknown data sizes land
// here). Saturating arithmetic keeps it absorbing.
const CostMax Cost = math.MaxUint32

// Plus adds with saturation.
func (c Cost) Plus(other Cost) Cost {
	sum := uint64(c) + uint64(other)
	if sum > uint64(CostMax) {
		return CostMax
	}
	return Cost(sum)
}

// costOf converts a footprint into a transfer cost: the unit count when
// exact, CostMax when the size is unknown.
func costOf(f footprint.Footprint) Cost {
	if units, ok := f.Units.Value(); ok {
		return Cost(units)
	}
	return CostMax
}

// StatementCosts is one target's per-statement cost table for a body. A
// missing entry means the target cannot execute that statement.
type StatementCosts struct {
	blocks [][]costEntry
}

type costEntry struct {
	cost Cost
	ok   bool
}

// NewStatementCosts allocates a table shaped like the body.
func NewStatementCosts(body *mir.Body) *StatementCosts {
	blocks := make([][]costEntry, len(body.Blocks))
	for i, block := range body.Blocks {
		blocks[i] = make([]costEntry, len(block.Statements))
	}
	return &StatementCosts{blocks: blocks}
}

// Set records a statement's cost.
func (c *StatementCosts) Set(block mir.BlockID, stmt int, cost Cost) {
	c.blocks[block][stmt] = costEntry{cost: cost, ok: true}
}

// Lookup returns a statement's cost; ok is false for unsupported ones.
func (c *StatementCosts) Lookup(block mir.BlockID, stmt int) (Cost, bool) {
	entry := c.blocks[block][stmt]
	return entry.cost, entry.ok
}

// BlockSupported reports whether every statement of the block has a cost.
// Statement-free blocks are trivially supported.
func (c *StatementCosts) BlockSupported(block mir.BlockID) bool {
	for _, entry := range c.blocks[block] {
		if !entry.ok {
			return false
		}
	}
	return true
}

// BlockCost sums the block's statement costs; ok is false if any statement
// is unsupported.
func (c *StatementCosts) BlockCost(block mir.BlockID) (Cost, bool) {
	total := Cost(0)
	for _, entry := range c.blocks[block] {
		if !entry.ok {
			return 0, false
		}
		total = total.Plus(entry.cost)
	}
	return total, true
}

// TraversalCosts is one target's per-edge traversal cost vector.
type TraversalCosts map[mir.Edge]Cost

// Vectors is the complete output of one target's statement analysis.
// Bypassed marks unit kinds the target rejects wholesale; bypassed vectors
// are empty and the target appears in no block domain.
type Vectors struct {
	Target     TargetID
	Bypassed   bool
	Statements *StatementCosts
	Traversals TraversalCosts
}
