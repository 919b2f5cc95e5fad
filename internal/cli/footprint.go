package cli

import (
	"github.com/spf13/cobra"

	"github.com/halcyondb/halcyon/internal/footprint"
	"github.com/halcyondb/halcyon/internal/mir"
	"github.com/halcyondb/halcyon/internal/pretty"
	"github.com/halcyondb/halcyon/internal/summarycache"
	"github.com/halcyondb/halcyon/internal/summarydb"
)

// FootprintOptions holds flags for the footprint command.
type FootprintOptions struct {
	*RootOptions
	Summaries     string // cache to seed the estimator from
	SaveSummaries string // cache to write back, including this body's summary
	DB            string // summary database: seeds the estimator and receives the result
}

// FootprintReport is the JSON payload of the footprint command.
type FootprintReport struct {
	Body    uint32        `json:"body"`
	Locals  []LocalReport `json:"locals"`
	Summary string        `json:"summary"`
}

// LocalReport is one local's estimated footprint.
type LocalReport struct {
	Local       string `json:"local"`
	Units       string `json:"units"`
	Cardinality string `json:"cardinality"`
}

// NewFootprintCommand creates the footprint command: per-local size
// estimates for one fixture body, with optional summary cache read-through.
func NewFootprintCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FootprintOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "footprint <fixture.yaml>",
		Short:         "Estimate per-local footprints for a body fixture",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFootprint(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Summaries, "summaries", "", "footprint summary cache to seed from")
	cmd.Flags().StringVar(&opts.SaveSummaries, "save-summaries", "", "write the updated summary cache to this path")
	cmd.Flags().StringVar(&opts.DB, "db", "", "summary database to seed from and record into")

	return cmd
}

func runFootprint(opts *FootprintOptions, path string, cmd *cobra.Command) error {
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

	var db *summarydb.Store
	if opts.DB != "" {
		db, err = summarydb.Open(opts.DB)
		if err != nil {
			wrapped := WrapExitError(ExitCommandError, "open summary database", err)
			formatter.Error(ErrCodeCache, wrapped.Error())
			return wrapped
		}
		defer db.Close()

		stored, err := db.All(cmd.Context())
		if err != nil {
			wrapped := WrapExitError(ExitCommandError, "read summary database", err)
			formatter.Error(ErrCodeCache, wrapped.Error())
			return wrapped
		}
		for _, id := range stored.Bodies() {
			s, _ := stored.Lookup(id)
			pipeOpts.Summaries.Set(id, s)
		}
		formatter.VerboseLog("seeded %d summaries from %s", stored.Len(), opts.DB)
	}

	estimator := footprint.NewEstimator(pipeOpts.Env, pipeOpts.Summaries)
	result := estimator.Analyze(f.Body)
	summary := estimator.Summarize(f.Body, result)
	formatter.VerboseLog("body %d summary: %s", f.Body.ID, summary)

	if db != nil {
		if err := db.Put(cmd.Context(), f.Body.ID, summary); err != nil {
			wrapped := WrapExitError(ExitCommandError, "record summary", err)
			formatter.Error(ErrCodeCache, wrapped.Error())
			return wrapped
		}
	}

	if opts.SaveSummaries != "" {
		pipeOpts.Summaries.Set(f.Body.ID, summary)
		if err := summarycache.Save(opts.SaveSummaries, pipeOpts.Summaries); err != nil {
			wrapped := WrapExitError(ExitCommandError, "save summary cache", err)
			formatter.Error(ErrCodeCache, wrapped.Error())
			return wrapped
		}
		formatter.VerboseLog("wrote %d summaries to %s", pipeOpts.Summaries.Len(), opts.SaveSummaries)
	}

	if opts.Format == "json" {
		return formatter.Success(buildFootprintReport(f.Body, result, summary))
	}
	return formatter.Success(pretty.Footprints(f.Body, result))
}

func buildFootprintReport(body *mir.Body, result *footprint.Result, summary footprint.Footprint) *FootprintReport {
	report := &FootprintReport{
		Body:    uint32(body.ID),
		Summary: summary.String(),
	}
	for l := 0; l < body.NumLocals(); l++ {
		local := mir.Local(l)
		fp := result.Local(local)
		report.Locals = append(report.Locals, LocalReport{
			Local:       local.String(),
			Units:       fp.Units.String(),
			Cardinality: fp.Cardinality.String(),
		})
	}
	return report
}
