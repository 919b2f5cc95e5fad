package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/halcyondb/halcyon/internal/pipeline"
	"github.com/halcyondb/halcyon/internal/placement"
	"github.com/halcyondb/halcyon/internal/pretty"
)

// AnalyzeOptions holds flags for the analyze command.
type AnalyzeOptions struct {
	*RootOptions
	Summaries string // optional summary cache to seed the estimator
}

// AnalyzeReport is the JSON payload of the analyze command.
type AnalyzeReport struct {
	Body    uint32        `json:"body"`
	Domains []BlockDomain `json:"domains"`
	Edges   []EdgeReport  `json:"edges"`
	Summary string        `json:"summary"`
}

// BlockDomain is one block's surviving target set.
type BlockDomain struct {
	Block   int      `json:"block"`
	Targets []string `json:"targets"`
}

// EdgeReport is one edge's pruned transition matrix.
type EdgeReport struct {
	From        int      `json:"from"`
	Slot        int      `json:"slot"`
	To          int      `json:"to"`
	Transitions []string `json:"transitions"`
}

// NewAnalyzeCommand creates the analyze command: the full pipeline over
// one fixture, reporting narrowed domains and pruned matrices.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalyzeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "analyze <fixture.yaml>",
		Short:         "Run placement analysis on a body fixture",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Summaries, "summaries", "", "footprint summary cache to seed from")

	return cmd
}

func runAnalyze(opts *AnalyzeOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	f, err := loadFixture(path)
	if err != nil {
		formatter.Error(ErrCodeFixture, err.Error())
		return err
	}
	pipeOpts, err := loadOptions(f, opts.Summaries)
	if err != nil {
		formatter.Error(ErrCodeCache, err.Error())
		return err
	}

	formatter.VerboseLog("analyzing body %d (%s, %d blocks)",
		f.Body.ID, f.Body.Kind, f.Body.NumBlocks())
	result := pipeline.Analyze(pipeOpts, f.Body)

	if opts.Format == "json" {
		return formatter.Success(buildAnalyzeReport(result))
	}
	return formatter.Success(pretty.Report(result.Body, result.Deps, result.Footprints, result.Placement))
}

func buildAnalyzeReport(result *pipeline.Result) *AnalyzeReport {
	report := &AnalyzeReport{
		Body:    uint32(result.Body.ID),
		Summary: result.Summary.String(),
	}
	for id, domain := range result.Placement.Domains {
		targets := make([]string, 0, domain.Len())
		for _, t := range domain.Targets() {
			targets = append(targets, t.String())
		}
		report.Domains = append(report.Domains, BlockDomain{Block: id, Targets: targets})
	}
	for _, edge := range result.Body.Edges() {
		m := result.Placement.Matrices[edge.Edge]
		report.Edges = append(report.Edges, EdgeReport{
			From:        int(edge.Edge.From),
			Slot:        edge.Edge.Slot,
			To:          int(edge.To),
			Transitions: transitions(m),
		})
	}
	return report
}

// transitions flattens a matrix's allowed cells as "src->dst@cost" strings.
func transitions(m *placement.TransMatrix) []string {
	var out []string
	for s := placement.TargetID(0); s < placement.NumTargets; s++ {
		for d := placement.TargetID(0); d < placement.NumTargets; d++ {
			if cost, ok := m.CostOf(s, d); ok {
				out = append(out, fmt.Sprintf("%s->%s@%d", s, d, cost))
			}
		}
	}
	return out
}
