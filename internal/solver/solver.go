// Package solver narrows per-block target domains to arc consistency.
//
// The model is a binary constraint network: variables are basic blocks,
// domains are target bitsets, and every CFG edge contributes its
// transition matrix as a constraint revisable in both directions. The
// solver is target-agnostic: it only consumes domains and matrices, so new
// back-ends never touch it.
package solver

import (
	"fmt"

	"github.com/halcyondb/halcyon/internal/mir"
	"github.com/halcyondb/halcyon/internal/placement"
)

// arc is a directed (x, y) pair: "revise x's domain against y".
type arc struct {
	x, y mir.BlockID
}

// constraint is one CFG edge's matrix viewed from a block pair.
type constraint struct {
	matrix *placement.TransMatrix
	// forward is true when the underlying edge runs x -> y for the pair
	// (x, y) the constraint is filed under.
	forward bool
}

// network indexes the constraints by ordered block pair.
type network struct {
	n         int
	pairs     map[arc][]constraint
	neighbors map[mir.BlockID][]mir.BlockID
}

func buildNetwork(body *mir.Body, p *placement.Placement) *network {
	nw := &network{
		n:         body.NumBlocks(),
		pairs:     make(map[arc][]constraint),
		neighbors: make(map[mir.BlockID][]mir.BlockID),
	}
	for _, edge := range body.Edges() {
		m := p.Matrices[edge.Edge]
		if m == nil {
			panic(fmt.Sprintf("solver: no matrix for edge %s", edge.Edge))
		}
		u, v := edge.Edge.From, edge.To
		nw.pairs[arc{u, v}] = append(nw.pairs[arc{u, v}], constraint{matrix: m, forward: true})
		nw.pairs[arc{v, u}] = append(nw.pairs[arc{v, u}], constraint{matrix: m, forward: false})
		nw.addNeighbor(u, v)
		nw.addNeighbor(v, u)
	}
	return nw
}

func (nw *network) addNeighbor(x, y mir.BlockID) {
	for _, existing := range nw.neighbors[x] {
		if existing == y {
			return
		}
	}
	nw.neighbors[x] = append(nw.neighbors[x], y)
}

// worklist is a FIFO of arcs with membership tracking, so an arc is never
// queued twice simultaneously.
type worklist struct {
	queue  []arc
	queued []bool
	n      int
}

func newWorklist(n int) *worklist {
	return &worklist{queued: make([]bool, n*n), n: n}
}

func (w *worklist) push(a arc) {
	idx := int(a.x)*w.n + int(a.y)
	if w.queued[idx] {
		return
	}
	w.queued[idx] = true
	w.queue = append(w.queue, a)
}

func (w *worklist) pop() (arc, bool) {
	if len(w.queue) == 0 {
		return arc{}, false
	}
	a := w.queue[0]
	w.queue = w.queue[1:]
	w.queued[int(a.x)*w.n+int(a.y)] = false
	return a, true
}

// Solve runs AC-3 over the placement, narrowing Domains in place and then
// pruning every matrix to the surviving domain pairs.
//
// The fallback target is present in every initial domain and in every
// matrix's (fallback, fallback) cell, so domains shrink but never empty;
// an emptied domain is an internal consistency failure and panics.
func Solve(body *mir.Body, p *placement.Placement) {
	nw := buildNetwork(body, p)
	wl := newWorklist(nw.n)
	for pair := range nw.pairs {
		wl.push(pair)
	}

	for {
		a, ok := wl.pop()
		if !ok {
			break
		}
		if !revise(p, nw, a) {
			continue
		}
		if p.Domains[a.x].Empty() {
			panic(fmt.Sprintf("solver: domain of bb%d emptied", a.x))
		}
		// x lost a value: neighbors that relied on it for support need
		// another look.
		for _, z := range nw.neighbors[a.x] {
			if z != a.y {
				wl.push(arc{z, a.x})
			}
		}
	}

	for _, edge := range body.Edges() {
		p.Matrices[edge.Edge].Prune(p.Domains[edge.Edge.From], p.Domains[edge.To])
	}
}

// revise removes from D(x) every target lacking support in D(y). A target
// t_x survives iff some t_y simultaneously satisfies every constraint
// between x and y in both orientations.
func revise(p *placement.Placement, nw *network, a arc) bool {
	constraints := nw.pairs[a]
	if len(constraints) == 0 {
		return false
	}
	domain := p.Domains[a.x]
	changed := false
	for _, tx := range domain.Targets() {
		if !hasSupport(p.Domains[a.y], constraints, tx) {
			domain = domain.Without(tx)
			changed = true
		}
	}
	if changed {
		p.Domains[a.x] = domain
	}
	return changed
}

func hasSupport(dy placement.TargetSet, constraints []constraint, tx placement.TargetID) bool {
	for _, ty := range dy.Targets() {
		ok := true
		for _, c := range constraints {
			if c.forward {
				ok = c.matrix.Allowed(tx, ty)
			} else {
				ok = c.matrix.Allowed(ty, tx)
			}
			if !ok {
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}
