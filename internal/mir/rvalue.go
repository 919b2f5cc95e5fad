package mir

import (
	"fmt"
	"strings"
)

// BinOp enumerates binary operations.
type BinOp uint8

const (
	BinAdd BinOp = iota + 1
	BinSub
	BinBitAnd
	BinBitOr
	BinEq
	BinNe
	BinLt
	BinLte
	BinGt
	BinGte
)

var binOpNames = map[BinOp]string{
	BinAdd: "+", BinSub: "-", BinBitAnd: "&", BinBitOr: "|",
	BinEq: "==", BinNe: "!=", BinLt: "<", BinLte: "<=", BinGt: ">", BinGte: ">=",
}

func (op BinOp) String() string {
	if name, ok := binOpNames[op]; ok {
		return name
	}
	return "?"
}

// UnOp enumerates unary operations.
type UnOp uint8

const (
	UnNot UnOp = iota + 1
	UnNeg
	UnBitNot
)

var unOpNames = map[UnOp]string{UnNot: "!", UnNeg: "-", UnBitNot: "~"}

func (op UnOp) String() string {
	if name, ok := unOpNames[op]; ok {
		return name
	}
	return "?"
}

// AggregateKind distinguishes aggregate constructions.
type AggregateKind uint8

const (
	// AggTuple and AggStruct are structural: each operand position is
	// individually addressable and participates in dependency resolution.
	AggTuple AggregateKind = iota + 1
	AggStruct
	// AggClosure pairs a function pointer with its captured environment.
	// Always exactly two operands.
	AggClosure
	// AggList, AggDict, and AggOpaque have no statically addressable
	// components.
	AggList
	AggDict
	AggOpaque
)

var aggregateKindNames = map[AggregateKind]string{
	AggTuple: "tuple", AggStruct: "struct", AggClosure: "closure",
	AggList: "list", AggDict: "dict", AggOpaque: "opaque",
}

func (k AggregateKind) String() string {
	if name, ok := aggregateKindNames[k]; ok {
		return name
	}
	return "?"
}

// InputOp distinguishes the two external-input forms.
type InputOp uint8

const (
	// InputExists tests whether a named query parameter was provided.
	// Always scalar.
	InputExists InputOp = iota + 1
	// InputLoad reads a named query parameter. Its size is unknown until
	// the query is bound.
	InputLoad
)

// RValue describes how a local's value is produced.
type RValue interface {
	isRValue()
	fmt.Stringer
}

// Load copies an operand's value.
type Load struct {
	X Operand `json:"x"`
}

// Binary applies a binary operation to two operands.
type Binary struct {
	Op BinOp   `json:"op"`
	L  Operand `json:"l"`
	R  Operand `json:"r"`
}

// Unary applies a unary operation to an operand.
type Unary struct {
	Op UnOp    `json:"op"`
	X  Operand `json:"x"`
}

// Aggregate constructs a composite value from its operands.
//
// For AggStruct, Fields holds the field names in operand order. For
// AggClosure, Operands is always [ptr, env].
type Aggregate struct {
	Kind     AggregateKind `json:"kind"`
	Operands []Operand     `json:"operands"`
	Fields   []string      `json:"fields,omitempty"`
}

// Input reads or probes a named external query parameter.
type Input struct {
	Op   InputOp `json:"op"`
	Name string  `json:"name"`
}

// Apply calls a function with arguments.
type Apply struct {
	Fn   Operand   `json:"fn"`
	Args []Operand `json:"args"`
}

func (Load) isRValue()      {}
func (Binary) isRValue()    {}
func (Unary) isRValue()     {}
func (Aggregate) isRValue() {}
func (Input) isRValue()     {}
func (Apply) isRValue()     {}

func (r Load) String() string   { return r.X.String() }
func (r Binary) String() string { return fmt.Sprintf("%s %s %s", r.L, r.Op, r.R) }
func (r Unary) String() string  { return fmt.Sprintf("%s%s", r.Op, r.X) }

func (r Aggregate) String() string {
	parts := make([]string, len(r.Operands))
	for i, operand := range r.Operands {
		if r.Kind == AggStruct && i < len(r.Fields) {
			parts[i] = r.Fields[i] + ": " + operand.String()
		} else {
			parts[i] = operand.String()
		}
	}
	return fmt.Sprintf("%s(%s)", r.Kind, strings.Join(parts, ", "))
}

func (r Input) String() string {
	if r.Op == InputExists {
		return fmt.Sprintf("input.exists(%q)", r.Name)
	}
	return fmt.Sprintf("input.load(%q)", r.Name)
}

func (r Apply) String() string {
	args := make([]string, len(r.Args))
	for i, arg := range r.Args {
		args[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", r.Fn, strings.Join(args, ", "))
}
