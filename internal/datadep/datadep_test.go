package datadep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyondb/halcyon/internal/mir"
	"github.com/halcyondb/halcyon/internal/typeenv"
)

// singleBlock builds a one-block body whose statements are supplied by
// build, which receives the builder, the entry block, and a fresh-local
// helper.
func singleBlock(kind mir.UnitKind, args int, build func(b *mir.Builder, entry mir.BlockID, local func() mir.Local)) *mir.Body {
	argTypes := make([]typeenv.TypeID, args)
	for i := range argTypes {
		argTypes[i] = typeenv.UnknownType
	}
	b := mir.NewBuilder(1, kind, argTypes...)
	entry := b.NewBlock()
	build(b, entry, func() mir.Local { return b.NewLocal(typeenv.UnknownType) })
	b.Terminate(entry, mir.Return{Value: mir.UnitConst()})
	return b.Build()
}

func TestNonStructuralRValuesCreateNoEdges(t *testing.T) {
	tests := []struct {
		name string
		rv   mir.RValue
	}{
		{"binary", mir.Binary{Op: mir.BinAdd, L: mir.PlaceOf(0), R: mir.PlaceOf(1)}},
		{"unary", mir.Unary{Op: mir.UnNeg, X: mir.PlaceOf(0)}},
		{"apply", mir.Apply{Fn: mir.FnRefConst(2), Args: []mir.Operand{mir.PlaceOf(0)}}},
		{"input", mir.Input{Op: mir.InputLoad, Name: "limit"}},
		{"list", mir.Aggregate{Kind: mir.AggList, Operands: []mir.Operand{mir.PlaceOf(0)}}},
		{"dict", mir.Aggregate{Kind: mir.AggDict, Operands: []mir.Operand{mir.PlaceOf(0), mir.PlaceOf(1)}}},
		{"opaque", mir.Aggregate{Kind: mir.AggOpaque, Operands: []mir.Operand{mir.PlaceOf(0)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var lhs mir.Local
			body := singleBlock(mir.UnitClosure, 2, func(b *mir.Builder, entry mir.BlockID, local func() mir.Local) {
				lhs = local()
				b.Append(entry, lhs, tt.rv)
			})
			g := Analyze(body)
			assert.Empty(t, g.Out(lhs))
			assert.Empty(t, g.Constants(lhs))
		})
	}
}

func TestTupleEdgesAndConstantBinding(t *testing.T) {
	var pair mir.Local
	body := singleBlock(mir.UnitClosure, 2, func(b *mir.Builder, entry mir.BlockID, local func() mir.Local) {
		pair = local()
		b.Append(entry, pair, mir.Aggregate{
			Kind:     mir.AggTuple,
			Operands: []mir.Operand{mir.PlaceOf(1), mir.IntConst(42)},
		})
	})
	g := Analyze(body)

	edges := g.Out(pair)
	require.Len(t, edges, 1)
	assert.Equal(t, mir.Local(1), edges[0].To)
	assert.Equal(t, Slot{Kind: EdgeIndex, Index: 0}, edges[0].Slot)

	consts := g.Constants(pair)
	require.Len(t, consts, 1)
	assert.Equal(t, Slot{Kind: EdgeIndex, Index: 1}, consts[0].Slot)
	assert.Equal(t, mir.IntConst(42), consts[0].Value)
}

func TestClosureAggregateEdges(t *testing.T) {
	var closure, env mir.Local
	body := singleBlock(mir.UnitClosure, 1, func(b *mir.Builder, entry mir.BlockID, local func() mir.Local) {
		env = local()
		closure = local()
		b.Append(entry, env, mir.Aggregate{Kind: mir.AggTuple, Operands: []mir.Operand{mir.PlaceOf(0)}})
		b.Append(entry, closure, mir.Aggregate{
			Kind:     mir.AggClosure,
			Operands: []mir.Operand{mir.FnRefConst(9), mir.PlaceOf(env)},
		})
	})
	g := Analyze(body)

	edges := g.Out(closure)
	require.Len(t, edges, 1)
	assert.Equal(t, EdgeClosureEnv, edges[0].Slot.Kind)
	assert.Equal(t, env, edges[0].To)

	consts := g.Constants(closure)
	require.Len(t, consts, 1)
	assert.Equal(t, EdgeClosurePtr, consts[0].Slot.Kind)
	assert.Equal(t, mir.ConstFnRef, consts[0].Value.Kind)
}

func TestResolveThroughLoadChain(t *testing.T) {
	var last mir.Local
	body := singleBlock(mir.UnitFilter, 2, func(b *mir.Builder, entry mir.BlockID, local func() mir.Local) {
		mid := local()
		last = local()
		b.Append(entry, mid, mir.Load{X: mir.PlaceOf(mir.LocalSubject)})
		b.Append(entry, last, mir.Load{X: mir.PlaceOf(mid)})
	})
	g := Analyze(body)

	origin, ok := g.Resolve(mir.PlaceOf(last, mir.NamedProjection("age")))
	require.True(t, ok)
	assert.Equal(t, OriginLocal, origin.Kind)
	assert.Equal(t, mir.LocalSubject, origin.Local)
	assert.Equal(t, []mir.Projection{mir.NamedProjection("age")}, origin.Projections)
}

func TestResolveTupleProjection(t *testing.T) {
	var pair mir.Local
	body := singleBlock(mir.UnitFilter, 2, func(b *mir.Builder, entry mir.BlockID, local func() mir.Local) {
		pair = local()
		b.Append(entry, pair, mir.Aggregate{
			Kind: mir.AggTuple,
			Operands: []mir.Operand{
				mir.PlaceOf(mir.LocalSubject, mir.NamedProjection("age")),
				mir.StringConst("x"),
			},
		})
	})
	g := Analyze(body)

	origin, ok := g.Resolve(mir.PlaceOf(pair, mir.FieldProjection(0)))
	require.True(t, ok)
	assert.Equal(t, OriginLocal, origin.Kind)
	assert.Equal(t, mir.LocalSubject, origin.Local)
	assert.Equal(t, []mir.Projection{mir.NamedProjection("age")}, origin.Projections)

	origin, ok = g.Resolve(mir.PlaceOf(pair, mir.FieldProjection(1)))
	require.True(t, ok)
	assert.Equal(t, OriginConstant, origin.Kind)
	assert.Equal(t, mir.StringConst("x"), origin.Value)
}

func TestResolveOpaqueCases(t *testing.T) {
	var pair, computed mir.Local
	body := singleBlock(mir.UnitFilter, 2, func(b *mir.Builder, entry mir.BlockID, local func() mir.Local) {
		computed = local()
		pair = local()
		b.Append(entry, computed, mir.Binary{Op: mir.BinAdd, L: mir.PlaceOf(0), R: mir.IntConst(1)})
		b.Append(entry, pair, mir.Aggregate{
			Kind:     mir.AggTuple,
			Operands: []mir.Operand{mir.PlaceOf(computed)},
		})
	})
	g := Analyze(body)

	// Dynamic index stops resolution.
	_, ok := g.Resolve(mir.PlaceOf(pair, mir.IndexProjection()))
	assert.False(t, ok)

	// A projection selecting no recorded slot on a structural definition
	// stops resolution.
	_, ok = g.Resolve(mir.PlaceOf(pair, mir.FieldProjection(3)))
	assert.False(t, ok)

	// A computed local is itself an origin; the suffix is carried along.
	origin, ok := g.Resolve(mir.PlaceOf(computed, mir.NamedProjection("f")))
	require.True(t, ok)
	assert.Equal(t, computed, origin.Local)
	assert.Equal(t, []mir.Projection{mir.NamedProjection("f")}, origin.Projections)
}

func TestResolveThroughSingleParamBinding(t *testing.T) {
	b := mir.NewBuilder(4, mir.UnitFilter, typeenv.UnknownType, typeenv.UnknownType)
	entry := b.NewBlock()
	param := b.NewLocal(typeenv.UnknownType)
	next := b.NewBlock(param)
	b.Terminate(entry, mir.Goto{Target: mir.TargetTo(next, mir.PlaceOf(mir.LocalSubject))})
	b.Terminate(next, mir.Return{Value: mir.PlaceOf(param)})
	g := Analyze(b.Build())

	origin, ok := g.Resolve(mir.PlaceOf(param, mir.NamedProjection("age")))
	require.True(t, ok)
	assert.Equal(t, mir.LocalSubject, origin.Local)
	assert.Equal(t, []mir.Projection{mir.NamedProjection("age")}, origin.Projections)
}

func TestResolveStopsAtMergeParam(t *testing.T) {
	b := mir.NewBuilder(5, mir.UnitClosure, typeenv.BoolType)
	entry := b.NewBlock()
	left := b.NewLocal(typeenv.IntType)
	right := b.NewLocal(typeenv.IntType)
	merged := b.NewLocal(typeenv.IntType)
	thenB := b.NewBlock()
	elseB := b.NewBlock()
	join := b.NewBlock(merged)

	otherwise := mir.TargetTo(elseB)
	b.Terminate(entry, mir.SwitchInt{
		Discr:     mir.PlaceOf(0),
		Cases:     []mir.SwitchCase{{Value: 1, Target: mir.TargetTo(thenB)}},
		Otherwise: &otherwise,
	})
	b.Append(thenB, left, mir.Load{X: mir.IntConst(1)})
	b.Append(elseB, right, mir.Load{X: mir.IntConst(2)})
	b.Terminate(thenB, mir.Goto{Target: mir.TargetTo(join, mir.PlaceOf(left))})
	b.Terminate(elseB, mir.Goto{Target: mir.TargetTo(join, mir.PlaceOf(right))})
	b.Terminate(join, mir.Return{Value: mir.PlaceOf(merged)})
	g := Analyze(b.Build())

	origin, ok := g.Resolve(mir.PlaceOf(merged))
	require.True(t, ok)
	assert.Equal(t, merged, origin.Local)
	assert.Empty(t, origin.Projections)
}

func TestTransientFlattensLoadChains(t *testing.T) {
	var mid, outer mir.Local
	body := singleBlock(mir.UnitFilter, 2, func(b *mir.Builder, entry mir.BlockID, local func() mir.Local) {
		mid = local()
		outer = local()
		b.Append(entry, mid, mir.Load{X: mir.PlaceOf(mir.LocalSubject, mir.NamedProjection("age"))})
		b.Append(entry, outer, mir.Aggregate{
			Kind:     mir.AggTuple,
			Operands: []mir.Operand{mir.PlaceOf(mid)},
		})
	})
	flat := Analyze(body).Transient()

	edges := flat.Out(outer)
	require.Len(t, edges, 1)
	assert.Equal(t, mir.LocalSubject, edges[0].To)
	assert.Equal(t, Slot{Kind: EdgeIndex, Index: 0}, edges[0].Slot)
	assert.Equal(t, []mir.Projection{mir.NamedProjection("age")}, edges[0].Via)
}

func TestAnalyzeRejectsNonSSA(t *testing.T) {
	body := &mir.Body{
		ID:     9,
		Kind:   mir.UnitClosure,
		Locals: []mir.LocalDecl{{Type: typeenv.UnknownType}, {Type: typeenv.UnknownType}},
		Blocks: []mir.BasicBlock{{
			Statements: []mir.Statement{{
				LHS: mir.PlaceOf(0, mir.FieldProjection(0)),
				RHS: mir.Load{X: mir.PlaceOf(1)},
			}},
			Terminator: mir.Return{Value: mir.UnitConst()},
		}},
	}
	require.Panics(t, func() { Analyze(body) })
}
