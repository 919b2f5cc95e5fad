package placement

import (
	"github.com/halcyondb/halcyon/internal/mir"
)

// inLoop identifies blocks inside a CFG cycle: members of a multi-block
// strongly connected component, or blocks with a self edge. Tarjan, one
// pass, no recursion into already-numbered nodes.
func inLoop(body *mir.Body) []bool {
	n := body.NumBlocks()
	t := &tarjan{
		body:    body,
		index:   make([]int, n),
		lowlink: make([]int, n),
		onStack: make([]bool, n),
		comp:    make([]int, n),
	}
	for i := range t.index {
		t.index[i] = -1
	}
	for id := 0; id < n; id++ {
		if t.index[id] < 0 {
			t.strongConnect(mir.BlockID(id))
		}
	}

	size := make(map[int]int)
	for _, c := range t.comp {
		size[c]++
	}
	loop := make([]bool, n)
	for id := 0; id < n; id++ {
		if size[t.comp[id]] > 1 {
			loop[id] = true
			continue
		}
		for _, target := range body.Successors(mir.BlockID(id)) {
			if target.Block == mir.BlockID(id) {
				loop[id] = true
			}
		}
	}
	return loop
}

type tarjan struct {
	body    *mir.Body
	counter int
	index   []int
	lowlink []int
	onStack []bool
	stack   []mir.BlockID
	comp    []int
	nComp   int
}

func (t *tarjan) strongConnect(v mir.BlockID) {
	t.index[v] = t.counter
	t.lowlink[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, target := range t.body.Successors(v) {
		w := target.Block
		if t.index[w] < 0 {
			t.strongConnect(w)
			if t.lowlink[w] < t.lowlink[v] {
				t.lowlink[v] = t.lowlink[w]
			}
		} else if t.onStack[w] && t.index[w] < t.lowlink[v] {
			t.lowlink[v] = t.index[w]
		}
	}

	if t.lowlink[v] == t.index[v] {
		for {
			w := t.stack[len(t.stack)-1]
			t.stack = t.stack[:len(t.stack)-1]
			t.onStack[w] = false
			t.comp[w] = t.nComp
			if w == v {
				break
			}
		}
		t.nComp++
	}
}
