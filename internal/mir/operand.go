package mir

import (
	"fmt"
	"strconv"
)

// ConstantKind enumerates the constant variants the IR can carry.
type ConstantKind uint8

const (
	ConstInt ConstantKind = iota + 1
	ConstString
	ConstBool
	ConstUnit
	// ConstFnRef references another compiled body. Function references are
	// first-class in the IR but are never transferable to a pushdown target.
	ConstFnRef
)

// Constant is a literal value embedded in the body.
type Constant struct {
	Kind ConstantKind `json:"kind"`

	Int  int64  `json:"int,omitempty"`
	Str  string `json:"str,omitempty"`
	Bool bool   `json:"bool,omitempty"`
	// Fn is the referenced body for ConstFnRef.
	Fn BodyID `json:"fn,omitempty"`
}

// IntConst builds an integer constant.
func IntConst(value int64) Constant { return Constant{Kind: ConstInt, Int: value} }

// StringConst builds a string constant.
func StringConst(value string) Constant { return Constant{Kind: ConstString, Str: value} }

// BoolConst builds a boolean constant.
func BoolConst(value bool) Constant { return Constant{Kind: ConstBool, Bool: value} }

// UnitConst builds the unit constant.
func UnitConst() Constant { return Constant{Kind: ConstUnit} }

// FnRefConst builds a function reference constant.
func FnRefConst(fn BodyID) Constant { return Constant{Kind: ConstFnRef, Fn: fn} }

func (c Constant) String() string {
	switch c.Kind {
	case ConstInt:
		return strconv.FormatInt(c.Int, 10)
	case ConstString:
		return strconv.Quote(c.Str)
	case ConstBool:
		return strconv.FormatBool(c.Bool)
	case ConstUnit:
		return "()"
	case ConstFnRef:
		return fmt.Sprintf("fn#%d", uint32(c.Fn))
	default:
		return "<invalid>"
	}
}

// Operand is either a Place or a Constant.
//
// The two implementations are value types; use a type switch to discriminate.
type Operand interface {
	isOperand()
	fmt.Stringer
}

func (Place) isOperand()    {}
func (Constant) isOperand() {}
