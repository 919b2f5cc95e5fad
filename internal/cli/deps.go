package cli

import (
	"github.com/spf13/cobra"

	"github.com/halcyondb/halcyon/internal/datadep"
	"github.com/halcyondb/halcyon/internal/mir"
	"github.com/halcyondb/halcyon/internal/pretty"
)

// DepsOptions holds flags for the deps command.
type DepsOptions struct {
	*RootOptions
}

// DepsReport is the JSON payload of the deps command.
type DepsReport struct {
	Body      uint32           `json:"body"`
	Edges     []DepEdge        `json:"edges"`
	Constants []ConstantReport `json:"constants"`
}

// DepEdge is one structural dependency edge.
type DepEdge struct {
	From string `json:"from"`
	Kind string `json:"kind"`
	To   string `json:"to"`
}

// ConstantReport is one constant bound into a structural slot.
type ConstantReport struct {
	Local string `json:"local"`
	Slot  string `json:"slot"`
	Value string `json:"value"`
}

// NewDepsCommand creates the deps command: the structural dependency
// graph of a fixture body, without footprint or placement analysis.
func NewDepsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DepsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "deps <fixture.yaml>",
		Short:         "Dump the structural dependency graph of a body fixture",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeps(opts, args[0], cmd)
		},
	}

	return cmd
}

func runDeps(opts *DepsOptions, path string, cmd *cobra.Command) error {
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

	graph := datadep.Analyze(f.Body)
	formatter.VerboseLog("body %d: %d structural edges", f.Body.ID, graph.NumEdges())

	if opts.Format == "json" {
		return formatter.Success(buildDepsReport(f.Body, graph))
	}
	return formatter.Success(pretty.Graph(f.Body, graph))
}

func buildDepsReport(body *mir.Body, graph *datadep.Graph) *DepsReport {
	report := &DepsReport{Body: uint32(body.ID)}
	for l := 0; l < body.NumLocals(); l++ {
		local := mir.Local(l)
		for _, edge := range graph.Out(local) {
			to := edge.To.String()
			if len(edge.Via) > 0 {
				to = mir.Place{Local: edge.To, Projections: edge.Via}.String()
			}
			report.Edges = append(report.Edges, DepEdge{
				From: edge.From.String(),
				Kind: edge.Slot.String(),
				To:   to,
			})
		}
		for _, binding := range graph.Constants(local) {
			report.Constants = append(report.Constants, ConstantReport{
				Local: binding.Local.String(),
				Slot:  binding.Slot.String(),
				Value: binding.Value.String(),
			})
		}
	}
	return report
}
