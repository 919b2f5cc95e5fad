package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyondb/halcyon/internal/footprint"
	"github.com/halcyondb/halcyon/internal/mir"
	"github.com/halcyondb/halcyon/internal/placement"
	"github.com/halcyondb/halcyon/internal/typeenv"
)

func testOptions(env *typeenv.Env) Options {
	return Options{
		Env:       env,
		Summaries: footprint.NewSummaryTable(),
		Schema: placement.NewSchema().
			AddColumn("age", placement.ColumnScalar).
			AddColumn("name", placement.ColumnScalar),
	}
}

func adultFilter(env *typeenv.Env, id mir.BodyID) *mir.Body {
	subject := env.Struct(
		typeenv.Field{Name: "age", Type: typeenv.IntType},
		typeenv.Field{Name: "name", Type: typeenv.StringType},
	)
	b := mir.NewBuilder(id, mir.UnitFilter, env.Tuple(), subject)
	entry := b.NewBlock()
	age := b.NewLocal(typeenv.IntType)
	cond := b.NewLocal(typeenv.BoolType)
	b.Append(entry, age, mir.Load{X: mir.PlaceOf(mir.LocalSubject, mir.NamedProjection("age"))})
	b.Append(entry, cond, mir.Binary{Op: mir.BinGte, L: mir.PlaceOf(age), R: mir.IntConst(18)})
	b.Terminate(entry, mir.Return{Value: mir.PlaceOf(cond)})
	return b.Build()
}

func TestAnalyzeProducesAllArtifacts(t *testing.T) {
	env := typeenv.NewEnv()
	body := adultFilter(env, 1)

	result := Analyze(testOptions(env), body)

	require.NotNil(t, result.Deps)
	require.NotNil(t, result.Footprints)
	require.NotNil(t, result.Placement)

	assert.Positive(t, result.Deps.NumEdges())
	assert.Equal(t, body.NumLocals(), result.Footprints.NumLocals())
	require.Len(t, result.Placement.Domains, 1)
	assert.True(t, result.Placement.Domains[0].Contains(placement.Pushdown))
	assert.True(t, result.Placement.Domains[0].Contains(placement.Fallback))
	assert.Equal(t, footprint.ScalarFootprint(), result.Summary)
}

func TestAnalyzeAllMatchesSequential(t *testing.T) {
	env := typeenv.NewEnv()
	opts := testOptions(env)
	bodies := make([]*mir.Body, 8)
	for i := range bodies {
		bodies[i] = adultFilter(env, mir.BodyID(i+1))
	}

	concurrent := AnalyzeAll(opts, bodies, 4)
	require.Len(t, concurrent, len(bodies))
	for i, result := range concurrent {
		require.NotNil(t, result, "body %d", i)
		sequential := Analyze(opts, bodies[i])
		assert.Equal(t, sequential.Placement.Domains, result.Placement.Domains)
		assert.Equal(t, sequential.Summary, result.Summary)
	}
}

func TestAnalyzeAllZeroWorkers(t *testing.T) {
	env := typeenv.NewEnv()
	bodies := []*mir.Body{adultFilter(env, 1)}
	results := AnalyzeAll(testOptions(env), bodies, 0)
	require.Len(t, results, 1)
	assert.NotNil(t, results[0])
}
