// Package harness runs declarative conformance scenarios against the
// placement pipeline. A scenario names a body fixture and the placement
// the solver must produce for it; the harness loads the fixture, runs the
// full analysis, and asserts the outcome. Scenarios live next to the
// fixtures they reference and load with the same YAML tooling.
package harness

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyondb/halcyon/internal/fixture"
	"github.com/halcyondb/halcyon/internal/mir"
	"github.com/halcyondb/halcyon/internal/pipeline"
	"github.com/halcyondb/halcyon/internal/placement"
	"github.com/halcyondb/halcyon/internal/summarycache"
)

// Run executes the scenario and asserts its expectations.
func (s *Scenario) Run(t *testing.T) {
	t.Helper()

	f, err := fixture.LoadFile(s.resolve(s.Fixture))
	require.NoError(t, err, "scenario %s: fixture", s.Name)

	opts := pipeline.Options{Env: f.Env, Schema: f.Schema}
	if s.Summaries != "" {
		opts.Summaries, err = summarycache.Load(s.resolve(s.Summaries))
		require.NoError(t, err, "scenario %s: summaries", s.Name)
	}

	result := pipeline.Analyze(opts, f.Body)
	s.assertDomains(t, result)
	s.assertEdges(t, result)
	s.assertSummary(t, result)
}

func (s *Scenario) assertDomains(t *testing.T, result *pipeline.Result) {
	t.Helper()
	for _, want := range s.Expect.Domains {
		require.Less(t, want.Block, len(result.Placement.Domains),
			"scenario %s: block %d out of range", s.Name, want.Block)
		domain := result.Placement.Domains[want.Block]
		assert.ElementsMatch(t, want.Targets, targetNames(domain),
			"scenario %s: domain of bb%d", s.Name, want.Block)
	}
}

func (s *Scenario) assertEdges(t *testing.T, result *pipeline.Result) {
	t.Helper()
	for _, want := range s.Expect.Edges {
		edge := mir.Edge{From: mir.BlockID(want.From), Slot: want.Slot}
		matrix, ok := result.Placement.Matrices[edge]
		require.True(t, ok, "scenario %s: no matrix for edge %s", s.Name, edge)

		target := result.Body.Target(edge)
		require.Equal(t, mir.BlockID(want.To), target.Block,
			"scenario %s: edge %s destination", s.Name, edge)

		assert.ElementsMatch(t, want.Allowed, allowedCells(matrix),
			"scenario %s: transitions of edge %s", s.Name, edge)
	}
}

func (s *Scenario) assertSummary(t *testing.T, result *pipeline.Result) {
	t.Helper()
	if s.Expect.Summary == "" {
		return
	}
	assert.Equal(t, s.Expect.Summary, result.Summary.String(),
		"scenario %s: body summary", s.Name)
}

func targetNames(domain placement.TargetSet) []string {
	var names []string
	for _, target := range domain.Targets() {
		names = append(names, target.String())
	}
	return names
}

func allowedCells(matrix *placement.TransMatrix) []string {
	var cells []string
	for src := placement.TargetID(0); src < placement.NumTargets; src++ {
		for dst := placement.TargetID(0); dst < placement.NumTargets; dst++ {
			if cost, ok := matrix.CostOf(src, dst); ok {
				cells = append(cells, fmt.Sprintf("%s->%s@%d", src, dst, cost))
			}
		}
	}
	return cells
}
