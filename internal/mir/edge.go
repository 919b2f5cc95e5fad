package mir

import "fmt"

// Edge identifies one control-flow edge by its source block and the slot of
// the target within the source terminator's Targets order. Parallel edges
// between the same block pair get distinct slots.
type Edge struct {
	From BlockID `json:"from"`
	Slot int     `json:"slot"`
}

func (e Edge) String() string {
	return fmt.Sprintf("bb%d/%d", uint32(e.From), e.Slot)
}

// Edges returns every control-flow edge of the body together with its
// resolved target, in deterministic (source block, slot) order.
func (b *Body) Edges() []ResolvedEdge {
	var edges []ResolvedEdge
	for id := range b.Blocks {
		for slot, target := range b.Successors(BlockID(id)) {
			edges = append(edges, ResolvedEdge{
				Edge: Edge{From: BlockID(id), Slot: slot},
				To:   target.Block,
			})
		}
	}
	return edges
}

// ResolvedEdge pairs an edge with its destination block.
type ResolvedEdge struct {
	Edge Edge    `json:"edge"`
	To   BlockID `json:"to"`
}

// Target resolves the edge's Target within the body.
func (b *Body) Target(e Edge) Target {
	return b.Successors(e.From)[e.Slot]
}
