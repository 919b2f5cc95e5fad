package mir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyondb/halcyon/internal/typeenv"
)

// twoBlockFilter builds the canonical filter shape used across the
// placement tests: an entry block comparing a subject field against a
// constant, branching to a return block.
func twoBlockFilter(t *testing.T) *Body {
	t.Helper()

	env := typeenv.NewEnv()
	subject := env.Struct(typeenv.Field{Name: "age", Type: typeenv.IntType})
	b := NewBuilder(1, UnitFilter, env.Tuple(), subject)

	entry := b.NewBlock()
	field := b.NewLocal(typeenv.IntType)
	cond := b.NewLocal(typeenv.BoolType)
	b.Append(entry, field, Load{X: PlaceOf(LocalSubject, NamedProjection("age"))})
	b.Append(entry, cond, Binary{Op: BinGte, L: PlaceOf(field), R: IntConst(18)})

	result := b.NewLocal(typeenv.BoolType)
	done := b.NewBlock(result)
	b.Terminate(entry, Goto{Target: TargetTo(done, PlaceOf(cond))})
	b.Terminate(done, Return{Value: PlaceOf(result)})

	return b.Build()
}

func TestBuilderProducesDenseLocals(t *testing.T) {
	env := typeenv.NewEnv()
	b := NewBuilder(7, UnitFilter, env.Tuple(), typeenv.UnknownType)

	require.Equal(t, 2, b.body.Args)
	next := b.NewLocal(typeenv.IntType)
	assert.Equal(t, Local(2), next)
	assert.Equal(t, "_2", next.String())
}

func TestPredecessors(t *testing.T) {
	body := twoBlockFilter(t)

	preds := body.Predecessors()
	require.Len(t, preds, 2)
	assert.Empty(t, preds[0])
	assert.Equal(t, []BlockID{0}, preds[1])
}

func TestEdgesParallelSlots(t *testing.T) {
	b := NewBuilder(2, UnitClosure, typeenv.IntType)
	entry := b.NewBlock()
	exit := b.NewBlock()
	otherwise := TargetTo(exit)
	b.Terminate(entry, SwitchInt{
		Discr: PlaceOf(0),
		Cases: []SwitchCase{
			{Value: 0, Target: TargetTo(exit)},
			{Value: 1, Target: TargetTo(exit)},
		},
		Otherwise: &otherwise,
	})
	b.Terminate(exit, Return{Value: UnitConst()})
	body := b.Build()

	edges := body.Edges()
	require.Len(t, edges, 3)
	for slot, edge := range edges {
		assert.Equal(t, BlockID(0), edge.Edge.From)
		assert.Equal(t, slot, edge.Edge.Slot)
		assert.Equal(t, BlockID(1), edge.To)
	}
}

func TestAssertSSARejectsProjectedAssign(t *testing.T) {
	env := typeenv.NewEnv()
	b := NewBuilder(3, UnitClosure, env.Tuple(typeenv.IntType))
	entry := b.NewBlock()
	bb := &b.body.Blocks[entry]
	bb.Statements = append(bb.Statements, Statement{
		LHS: PlaceOf(0, FieldProjection(0)),
		RHS: Load{X: IntConst(1)},
	})
	b.Terminate(entry, Return{Value: UnitConst()})

	require.Panics(t, func() { b.Build() })
}

func TestTerminatorRendering(t *testing.T) {
	otherwise := TargetTo(3)
	tests := []struct {
		name string
		term Terminator
		want string
	}{
		{"goto", Goto{Target: TargetTo(1, PlaceOf(4))}, "goto bb1(_4)"},
		{
			"switch",
			SwitchInt{
				Discr:     PlaceOf(2),
				Cases:     []SwitchCase{{Value: 0, Target: TargetTo(1)}},
				Otherwise: &otherwise,
			},
			"switch _2 [0: bb1, otherwise: bb3]",
		},
		{"scan", Scan{Target: TargetTo(2)}, "scan -> bb2"},
		{"return", Return{Value: BoolConst(true)}, "return true"},
		{"unreachable", Unreachable{}, "unreachable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.term.String())
		})
	}
}

func TestRValueRendering(t *testing.T) {
	tests := []struct {
		name string
		rv   RValue
		want string
	}{
		{"load", Load{X: PlaceOf(1, NamedProjection("age"))}, "_1.age"},
		{"binary", Binary{Op: BinEq, L: PlaceOf(2), R: StringConst("x")}, `_2 == "x"`},
		{"unary", Unary{Op: UnNot, X: PlaceOf(3)}, "!_3"},
		{
			"tuple",
			Aggregate{Kind: AggTuple, Operands: []Operand{PlaceOf(1), IntConst(2)}},
			"tuple(_1, 2)",
		},
		{
			"struct",
			Aggregate{
				Kind:     AggStruct,
				Operands: []Operand{IntConst(1)},
				Fields:   []string{"id"},
			},
			"struct(id: 1)",
		},
		{"input", Input{Op: InputLoad, Name: "limit"}, `input.load("limit")`},
		{"apply", Apply{Fn: FnRefConst(9), Args: []Operand{PlaceOf(1)}}, "fn#9(_1)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rv.String())
		})
	}
}

func TestPlaceRendering(t *testing.T) {
	p := PlaceOf(5, FieldProjection(1), NamedProjection("name"), IndexProjection())
	assert.Equal(t, "_5.1.name[*]", p.String())
}
