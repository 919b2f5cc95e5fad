package cli

import (
	"github.com/halcyondb/halcyon/internal/fixture"
	"github.com/halcyondb/halcyon/internal/footprint"
	"github.com/halcyondb/halcyon/internal/pipeline"
	"github.com/halcyondb/halcyon/internal/summarycache"
)

// loadFixture reads a body fixture, mapping failures to command errors.
func loadFixture(path string) (*fixture.Fixture, error) {
	f, err := fixture.LoadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load fixture", err)
	}
	return f, nil
}

// loadOptions assembles pipeline options for a fixture, optionally seeding
// footprint summaries from a cache file.
func loadOptions(f *fixture.Fixture, cachePath string) (pipeline.Options, error) {
	summaries := footprint.NewSummaryTable()
	if cachePath != "" {
		loaded, err := summarycache.Load(cachePath)
		if err != nil {
			return pipeline.Options{}, WrapExitError(ExitCommandError, "load summary cache", err)
		}
		summaries = loaded
	}
	return pipeline.Options{
		Env:       f.Env,
		Summaries: summaries,
		Schema:    f.Schema,
	}, nil
}
