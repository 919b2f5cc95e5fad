// Package pipeline orchestrates the placement passes for whole bodies:
// dependency analysis, footprint estimation, per-target statement and
// terminator analysis, and arc-consistency solving, in that order.
package pipeline

import (
	"runtime"
	"sync"

	"github.com/halcyondb/halcyon/internal/datadep"
	"github.com/halcyondb/halcyon/internal/footprint"
	"github.com/halcyondb/halcyon/internal/mir"
	"github.com/halcyondb/halcyon/internal/placement"
	"github.com/halcyondb/halcyon/internal/solver"
	"github.com/halcyondb/halcyon/internal/typeenv"
)

// Options carries the shared read-only inputs. They are never mutated, so
// one Options value is safe across concurrent body analyses.
type Options struct {
	Env       *typeenv.Env
	Summaries *footprint.SummaryTable
	Schema    *placement.Schema
}

// Result bundles every artifact of one body's analysis.
type Result struct {
	Body       *mir.Body
	Deps       *datadep.Graph
	Footprints *footprint.Result
	Summary    footprint.Footprint
	Placement  *placement.Placement
}

// Analyze runs the full pass sequence for one body. Every scratch
// structure is allocated fresh; nothing persists across calls.
func Analyze(opts Options, body *mir.Body) *Result {
	deps := datadep.Analyze(body)
	est := footprint.NewEstimator(opts.Env, opts.Summaries)
	fps := est.Analyze(body)

	ctx := &placement.Context{
		Env:        opts.Env,
		Body:       body,
		Deps:       deps,
		Footprints: fps,
		Static:     est.Static(),
		Schema:     opts.Schema,
	}
	p := placement.AnalyzeBody(ctx)
	solver.Solve(body, p)

	return &Result{
		Body:       body,
		Deps:       deps,
		Footprints: fps,
		Summary:    est.Summarize(body, fps),
		Placement:  p,
	}
}

// AnalyzeAll analyzes independent bodies across a bounded worker pool.
// Results align with the input order. workers <= 0 means one worker per
// CPU.
func AnalyzeAll(opts Options, bodies []*mir.Body, workers int) []*Result {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(bodies) {
		workers = len(bodies)
	}

	results := make([]*Result, len(bodies))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = Analyze(opts, bodies[i])
			}
		}()
	}
	for i := range bodies {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results
}
