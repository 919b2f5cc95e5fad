package typeenv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvFixedIDs(t *testing.T) {
	env := NewEnv()

	tests := []struct {
		id   TypeID
		kind Kind
	}{
		{IntType, KindInt},
		{FloatType, KindFloat},
		{StringType, KindString},
		{BoolType, KindBool},
		{UnitType, KindUnit},
		{UnknownType, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.kind, env.Lookup(tt.id).Kind)
		})
	}
}

func TestInternAndLookup(t *testing.T) {
	env := NewEnv()

	pair := env.Tuple(IntType, StringType)
	got := env.Lookup(pair)
	require.Equal(t, KindTuple, got.Kind)
	assert.Equal(t, []TypeID{IntType, StringType}, got.Elems)

	row := env.Struct(
		Field{Name: "id", Type: IntType},
		Field{Name: "name", Type: StringType},
	)
	assert.Equal(t, 0, env.FieldIndex(row, "id"))
	assert.Equal(t, 1, env.FieldIndex(row, "name"))
	assert.Equal(t, -1, env.FieldIndex(row, "missing"))
	assert.Equal(t, -1, env.FieldIndex(pair, "id"))
}

func TestLookupOutOfRangePanics(t *testing.T) {
	env := NewEnv()
	require.Panics(t, func() { env.Lookup(TypeID(env.Len())) })
}

func TestWalkVisitsNestedTypes(t *testing.T) {
	env := NewEnv()
	inner := env.Tuple(IntType, BoolType)
	outer := env.Struct(Field{Name: "pair", Type: inner})

	var kinds []Kind
	ok := env.Walk(outer, func(_ TypeID, ty Type) bool {
		kinds = append(kinds, ty.Kind)
		return true
	})
	require.True(t, ok)
	assert.Equal(t, []Kind{KindStruct, KindTuple, KindInt, KindBool}, kinds)
}

func TestWalkStopsOnRejection(t *testing.T) {
	env := NewEnv()
	captured := env.Tuple(IntType, env.Closure(UnitType))

	ok := env.Walk(captured, func(_ TypeID, ty Type) bool {
		return ty.Kind != KindClosure
	})
	assert.False(t, ok)
}

func TestWalkSkipsRepeatedIDs(t *testing.T) {
	env := NewEnv()
	pair := env.Tuple(IntType, IntType)

	visits := 0
	env.Walk(pair, func(id TypeID, _ Type) bool {
		if id == IntType {
			visits++
		}
		return true
	})
	assert.Equal(t, 1, visits)
}

func TestScalarKinds(t *testing.T) {
	assert.True(t, KindString.Scalar())
	assert.False(t, KindList.Scalar())
	assert.False(t, KindUnknown.Scalar())
}
