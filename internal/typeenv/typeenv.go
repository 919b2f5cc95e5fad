// Package typeenv holds the interned type table that annotates MIR locals.
//
// Types are structural and immutable after interning. Passes consult the
// environment for size estimation and for deciding whether a value's shape
// is transferable to an external execution target.
package typeenv

import "fmt"

// TypeID indexes a type in an Env. IDs are dense and only meaningful within
// the Env that issued them.
type TypeID uint32

// Kind enumerates the structural type forms.
type Kind uint8

const (
	KindInt Kind = iota + 1
	KindFloat
	KindString
	KindBool
	KindUnit
	// KindTuple is a fixed-arity positional composite.
	KindTuple
	// KindStruct is a fixed set of named fields.
	KindStruct
	// KindList is a dynamically-sized homogeneous sequence.
	KindList
	// KindDict maps keys to values; neither cardinality nor key set is static.
	KindDict
	// KindClosure pairs a function pointer with a captured environment.
	KindClosure
	// KindOpaque is a type whose structure the compiler does not model.
	KindOpaque
	// KindUnknown marks a local the type checker could not resolve.
	KindUnknown
)

var kindNames = map[Kind]string{
	KindInt: "int", KindFloat: "float", KindString: "string", KindBool: "bool",
	KindUnit: "unit", KindTuple: "tuple", KindStruct: "struct", KindList: "list",
	KindDict: "dict", KindClosure: "closure", KindOpaque: "opaque",
	KindUnknown: "unknown",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "?"
}

// Scalar reports whether the kind has no component types.
func (k Kind) Scalar() bool {
	switch k {
	case KindInt, KindFloat, KindString, KindBool, KindUnit:
		return true
	}
	return false
}

// Field is one named component of a struct type.
type Field struct {
	Name string `json:"name"`
	Type TypeID `json:"type"`
}

// Type is the structural description behind a TypeID.
//
// Elems carries positional components: tuple elements, the list element at
// index 0, the dict key and value at indices 0 and 1, and the closure
// environment at index 0. Fields is populated for structs only.
type Type struct {
	Kind   Kind     `json:"kind"`
	Elems  []TypeID `json:"elems,omitempty"`
	Fields []Field  `json:"fields,omitempty"`
}

// Env is an append-only table of interned types.
//
// The zero Env is not usable; construct with NewEnv, which pre-interns the
// scalar types at fixed IDs.
type Env struct {
	types []Type
}

// Fixed IDs for the pre-interned types. NewEnv guarantees these.
const (
	IntType TypeID = iota
	FloatType
	StringType
	BoolType
	UnitType
	UnknownType
)

// NewEnv returns an environment seeded with the scalar types and the
// unknown type at their fixed IDs.
func NewEnv() *Env {
	return &Env{types: []Type{
		{Kind: KindInt},
		{Kind: KindFloat},
		{Kind: KindString},
		{Kind: KindBool},
		{Kind: KindUnit},
		{Kind: KindUnknown},
	}}
}

// Intern appends a type and returns its ID. No structural deduplication is
// performed; identical shapes interned twice get distinct IDs.
func (e *Env) Intern(t Type) TypeID {
	e.types = append(e.types, t)
	return TypeID(len(e.types) - 1)
}

// Tuple interns a tuple type over the given element types.
func (e *Env) Tuple(elems ...TypeID) TypeID {
	return e.Intern(Type{Kind: KindTuple, Elems: elems})
}

// Struct interns a struct type over the given fields.
func (e *Env) Struct(fields ...Field) TypeID {
	return e.Intern(Type{Kind: KindStruct, Fields: fields})
}

// List interns a list type with the given element type.
func (e *Env) List(elem TypeID) TypeID {
	return e.Intern(Type{Kind: KindList, Elems: []TypeID{elem}})
}

// Dict interns a dict type with the given key and value types.
func (e *Env) Dict(key, value TypeID) TypeID {
	return e.Intern(Type{Kind: KindDict, Elems: []TypeID{key, value}})
}

// Closure interns a closure type capturing the given environment type.
func (e *Env) Closure(env TypeID) TypeID {
	return e.Intern(Type{Kind: KindClosure, Elems: []TypeID{env}})
}

// Opaque interns a fresh opaque type.
func (e *Env) Opaque() TypeID {
	return e.Intern(Type{Kind: KindOpaque})
}

// Lookup returns the type behind an ID. It panics on an ID the environment
// never issued.
func (e *Env) Lookup(id TypeID) Type {
	if int(id) >= len(e.types) {
		panic(fmt.Sprintf("typeenv: type id %d out of range (have %d)", id, len(e.types)))
	}
	return e.types[id]
}

// Len returns the number of interned types.
func (e *Env) Len() int { return len(e.types) }

// FieldIndex returns the positional index of a named field in a struct
// type, or -1 if the type is not a struct or lacks the field.
func (e *Env) FieldIndex(id TypeID, name string) int {
	t := e.Lookup(id)
	if t.Kind != KindStruct {
		return -1
	}
	for i, f := range t.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}
