package footprint

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyondb/halcyon/internal/mir"
	"github.com/halcyondb/halcyon/internal/typeenv"
)

func TestEstimatePlus(t *testing.T) {
	tests := []struct {
		name string
		a, b Estimate
		want Estimate
	}{
		{"exact", Exact(2), Exact(3), Exact(5)},
		{"saturates", Exact(math.MaxUint32), Exact(1), Exact(math.MaxUint32)},
		{"unknown absorbs left", Unknown(), Exact(1), Unknown()},
		{"unknown absorbs right", Exact(1), Unknown(), Unknown()},
		{"unknown absorbs unknown", Unknown(), Unknown(), Unknown()},
		{"bottom identity", Bottom(), Exact(7), Exact(7)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Plus(tt.b))
		})
	}
}

func TestEstimateJoin(t *testing.T) {
	tests := []struct {
		name string
		a, b Estimate
		want Estimate
	}{
		{"equal exacts", Exact(4), Exact(4), Exact(4)},
		{"differing exacts widen", Exact(4), Exact(5), Unknown()},
		{"unknown absorbs", Unknown(), Exact(4), Unknown()},
		{"bottom identity", Bottom(), Exact(4), Exact(4)},
		{"bottom with unknown", Bottom(), Unknown(), Unknown()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Join(tt.b))
			assert.Equal(t, tt.want, tt.b.Join(tt.a))
		})
	}
}

func TestStaticEstimates(t *testing.T) {
	env := typeenv.NewEnv()
	pair := env.Tuple(typeenv.IntType, typeenv.StringType)
	row := env.Struct(
		typeenv.Field{Name: "id", Type: typeenv.IntType},
		typeenv.Field{Name: "pos", Type: pair},
	)
	list := env.List(typeenv.IntType)

	s := NewStatic(env)

	got := s.EstimateType(typeenv.IntType)
	assert.Equal(t, ScalarFootprint(), got)

	got = s.EstimateType(pair)
	assert.Equal(t, Footprint{Units: Exact(2), Cardinality: Exact(1)}, got)

	got = s.EstimateType(row)
	assert.Equal(t, Footprint{Units: Exact(3), Cardinality: Exact(1)}, got)

	assert.True(t, s.EstimateType(list).IsUnknown())
	assert.True(t, s.EstimateType(typeenv.UnknownType).IsUnknown())

	// Memoized: repeated queries return the identical result.
	assert.Equal(t, s.EstimateType(row), s.EstimateType(row))
}

func TestPeelType(t *testing.T) {
	env := typeenv.NewEnv()
	pair := env.Tuple(typeenv.IntType, typeenv.StringType)
	row := env.Struct(typeenv.Field{Name: "pos", Type: pair})
	s := NewStatic(env)

	id, ok := s.PeelType(row, []mir.Projection{mir.NamedProjection("pos"), mir.FieldProjection(1)})
	require.True(t, ok)
	assert.Equal(t, typeenv.StringType, id)

	_, ok = s.PeelType(row, []mir.Projection{mir.NamedProjection("missing")})
	assert.False(t, ok)

	_, ok = s.PeelType(typeenv.IntType, []mir.Projection{mir.FieldProjection(0)})
	assert.False(t, ok)
}

func TestDynamicTransferRules(t *testing.T) {
	env := typeenv.NewEnv()
	unknown := typeenv.UnknownType

	b := mir.NewBuilder(1, mir.UnitClosure, typeenv.IntType)
	entry := b.NewBlock()
	copied := b.NewLocal(unknown)
	scalar := b.NewLocal(unknown)
	agg := b.NewLocal(unknown)
	exists := b.NewLocal(unknown)
	loaded := b.NewLocal(unknown)
	applied := b.NewLocal(unknown)

	b.Append(entry, copied, mir.Load{X: mir.PlaceOf(0)})
	b.Append(entry, scalar, mir.Binary{Op: mir.BinAdd, L: mir.PlaceOf(0), R: mir.IntConst(1)})
	b.Append(entry, agg, mir.Aggregate{
		Kind:     mir.AggTuple,
		Operands: []mir.Operand{mir.PlaceOf(copied), mir.PlaceOf(scalar)},
	})
	b.Append(entry, exists, mir.Input{Op: mir.InputExists, Name: "limit"})
	b.Append(entry, loaded, mir.Input{Op: mir.InputLoad, Name: "limit"})
	b.Append(entry, applied, mir.Apply{Fn: mir.FnRefConst(7), Args: nil})
	b.Terminate(entry, mir.Return{Value: mir.PlaceOf(agg)})
	body := b.Build()

	summaries := NewSummaryTable()
	summaries.Set(7, Footprint{Units: Exact(5), Cardinality: Exact(2)})

	result := NewEstimator(env, summaries).Analyze(body)

	assert.Equal(t, ScalarFootprint(), result.Local(copied))
	assert.Equal(t, ScalarFootprint(), result.Local(scalar))
	assert.Equal(t, Footprint{Units: Exact(2), Cardinality: Exact(2)}, result.Local(agg))
	assert.Equal(t, ScalarFootprint(), result.Local(exists))
	assert.True(t, result.Local(loaded).IsUnknown())
	assert.Equal(t, Footprint{Units: Exact(5), Cardinality: Exact(2)}, result.Local(applied))
}

func TestDynamicApplyUnknownCallee(t *testing.T) {
	b := mir.NewBuilder(2, mir.UnitClosure, typeenv.UnknownType)
	entry := b.NewBlock()
	applied := b.NewLocal(typeenv.UnknownType)
	b.Append(entry, applied, mir.Apply{Fn: mir.PlaceOf(0), Args: nil})
	b.Terminate(entry, mir.Return{Value: mir.PlaceOf(applied)})
	body := b.Build()

	result := NewEstimator(typeenv.NewEnv(), NewSummaryTable()).Analyze(body)
	assert.True(t, result.Local(applied).IsUnknown())
}

func TestScanEdgeMarksParamUnknown(t *testing.T) {
	env := typeenv.NewEnv()
	rows := env.List(typeenv.IntType)

	b := mir.NewBuilder(3, mir.UnitClosure, typeenv.IntType)
	entry := b.NewBlock()
	param := b.NewLocal(rows)
	next := b.NewBlock(param)
	b.Terminate(entry, mir.Scan{Target: mir.TargetTo(next)})
	b.Terminate(next, mir.Return{Value: mir.PlaceOf(param)})
	body := b.Build()

	result := NewEstimator(env, NewSummaryTable()).Analyze(body)
	assert.True(t, result.Local(param).IsUnknown())
}

func TestGotoEdgeCopiesArgumentFootprint(t *testing.T) {
	b := mir.NewBuilder(4, mir.UnitClosure, typeenv.IntType)
	entry := b.NewBlock()
	param := b.NewLocal(typeenv.UnknownType)
	next := b.NewBlock(param)
	b.Terminate(entry, mir.Goto{Target: mir.TargetTo(next, mir.PlaceOf(0))})
	b.Terminate(next, mir.Return{Value: mir.PlaceOf(param)})
	body := b.Build()

	result := NewEstimator(typeenv.NewEnv(), NewSummaryTable()).Analyze(body)
	assert.Equal(t, ScalarFootprint(), result.Local(param))
}

func TestSummarize(t *testing.T) {
	b := mir.NewBuilder(5, mir.UnitClosure, typeenv.IntType)
	entry := b.NewBlock()
	pair := b.NewLocal(typeenv.UnknownType)
	b.Append(entry, pair, mir.Aggregate{
		Kind:     mir.AggTuple,
		Operands: []mir.Operand{mir.PlaceOf(0), mir.IntConst(1)},
	})
	b.Terminate(entry, mir.Return{Value: mir.PlaceOf(pair)})
	body := b.Build()

	est := NewEstimator(typeenv.NewEnv(), NewSummaryTable())
	result := est.Analyze(body)
	summary := est.Summarize(body, result)
	assert.Equal(t, Footprint{Units: Exact(2), Cardinality: Exact(2)}, summary)
}
