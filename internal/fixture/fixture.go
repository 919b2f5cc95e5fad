// Package fixture loads declarative YAML descriptions of typed bodies.
// Fixtures drive the CLI and integration-style tests; production bodies
// come from the upstream lowering stage instead.
package fixture

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/halcyondb/halcyon/internal/mir"
	"github.com/halcyondb/halcyon/internal/placement"
	"github.com/halcyondb/halcyon/internal/typeenv"
)

// ErrInvalid marks a malformed fixture. Wrapped errors carry detail.
var ErrInvalid = errors.New("invalid fixture")

// Fixture is one loaded body plus its type environment and pushdown
// schema.
type Fixture struct {
	Body   *mir.Body
	Env    *typeenv.Env
	Schema *placement.Schema
}

type fileSpec struct {
	ID     uint32            `yaml:"id"`
	Kind   string            `yaml:"kind"`
	Args   int               `yaml:"args"`
	Types  yaml.Node         `yaml:"types"`
	Locals []yaml.Node       `yaml:"locals"`
	Blocks []blockSpec       `yaml:"blocks"`
	Schema map[string]string `yaml:"schema"`
}

type blockSpec struct {
	Params     []string   `yaml:"params"`
	Statements []stmtSpec `yaml:"statements"`
	Terminator termSpec   `yaml:"terminator"`
}

type stmtSpec struct {
	LHS       string     `yaml:"lhs"`
	Load      string     `yaml:"load"`
	Binary    *binSpec   `yaml:"binary"`
	Unary     *unSpec    `yaml:"unary"`
	Aggregate *aggSpec   `yaml:"aggregate"`
	Input     *inputSpec `yaml:"input"`
	Apply     *applySpec `yaml:"apply"`
}

type binSpec struct {
	Op string `yaml:"op"`
	L  string `yaml:"l"`
	R  string `yaml:"r"`
}

type unSpec struct {
	Op string `yaml:"op"`
	X  string `yaml:"x"`
}

type aggSpec struct {
	Kind     string   `yaml:"kind"`
	Operands []string `yaml:"operands"`
	Fields   []string `yaml:"fields"`
}

type inputSpec struct {
	Op   string `yaml:"op"`
	Name string `yaml:"name"`
}

type applySpec struct {
	Fn   string   `yaml:"fn"`
	Args []string `yaml:"args"`
}

type termSpec struct {
	Goto        *targetSpec `yaml:"goto"`
	Switch      *switchSpec `yaml:"switch"`
	Scan        *targetSpec `yaml:"scan"`
	Return      *string     `yaml:"return"`
	Unreachable bool        `yaml:"unreachable"`
}

type targetSpec struct {
	To   int      `yaml:"to"`
	Args []string `yaml:"args"`
}

type switchSpec struct {
	Discr     string       `yaml:"discr"`
	Cases     []caseSpec   `yaml:"cases"`
	Otherwise *targetSpec  `yaml:"otherwise"`
}

type caseSpec struct {
	Value int64    `yaml:"value"`
	To    int      `yaml:"to"`
	Args  []string `yaml:"args"`
}

// LoadFile reads and parses a fixture file.
func LoadFile(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return Load(data)
}

// Load parses a YAML fixture document.
func Load(data []byte) (*Fixture, error) {
	var spec fileSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	env := typeenv.NewEnv()
	types, err := resolveNamedTypes(env, &spec.Types)
	if err != nil {
		return nil, err
	}

	kind, err := parseUnitKind(spec.Kind)
	if err != nil {
		return nil, err
	}

	body := &mir.Body{ID: mir.BodyID(spec.ID), Kind: kind, Args: spec.Args}
	for i := range spec.Locals {
		id, err := parseType(env, types, &spec.Locals[i])
		if err != nil {
			return nil, fmt.Errorf("local _%d: %w", i, err)
		}
		body.Locals = append(body.Locals, mir.LocalDecl{Type: id})
	}
	if spec.Args > len(body.Locals) {
		return nil, fmt.Errorf("%w: %d args but %d locals", ErrInvalid, spec.Args, len(body.Locals))
	}

	for i, block := range spec.Blocks {
		built, err := buildBlock(block)
		if err != nil {
			return nil, fmt.Errorf("bb%d: %w", i, err)
		}
		body.Blocks = append(body.Blocks, built)
	}
	if err := validateBody(body); err != nil {
		return nil, err
	}

	schema := placement.NewSchema()
	for name, kindName := range spec.Schema {
		switch kindName {
		case "scalar":
			schema.AddColumn(name, placement.ColumnScalar)
		case "embedded":
			schema.AddColumn(name, placement.ColumnEmbedded)
		default:
			return nil, fmt.Errorf("%w: schema column %q has unknown kind %q", ErrInvalid, name, kindName)
		}
	}
	return &Fixture{Body: body, Env: env, Schema: schema}, nil
}

var unitKinds = map[string]mir.UnitKind{
	"filter": mir.UnitFilter, "closure": mir.UnitClosure, "thunk": mir.UnitThunk,
	"ctor": mir.UnitCtor, "intrinsic": mir.UnitIntrinsic,
}

func parseUnitKind(name string) (mir.UnitKind, error) {
	if kind, ok := unitKinds[name]; ok {
		return kind, nil
	}
	return 0, fmt.Errorf("%w: unknown unit kind %q", ErrInvalid, name)
}

func buildBlock(spec blockSpec) (mir.BasicBlock, error) {
	var block mir.BasicBlock
	for _, param := range spec.Params {
		local, err := parseLocal(param)
		if err != nil {
			return block, err
		}
		block.Params = append(block.Params, local)
	}
	for i, stmt := range spec.Statements {
		built, err := buildStatement(stmt)
		if err != nil {
			return block, fmt.Errorf("statement %d: %w", i, err)
		}
		block.Statements = append(block.Statements, built)
	}
	term, err := buildTerminator(spec.Terminator)
	if err != nil {
		return block, err
	}
	block.Terminator = term
	return block, nil
}

func buildStatement(spec stmtSpec) (mir.Statement, error) {
	lhs, err := parseLocal(spec.LHS)
	if err != nil {
		return mir.Statement{}, err
	}
	rhs, err := buildRValue(spec)
	if err != nil {
		return mir.Statement{}, err
	}
	return mir.Assign(lhs, rhs), nil
}

func buildRValue(spec stmtSpec) (mir.RValue, error) {
	switch {
	case spec.Load != "":
		x, err := parseOperand(spec.Load)
		if err != nil {
			return nil, err
		}
		return mir.Load{X: x}, nil

	case spec.Binary != nil:
		op, ok := binOps[spec.Binary.Op]
		if !ok {
			return nil, fmt.Errorf("%w: unknown binary op %q", ErrInvalid, spec.Binary.Op)
		}
		l, err := parseOperand(spec.Binary.L)
		if err != nil {
			return nil, err
		}
		r, err := parseOperand(spec.Binary.R)
		if err != nil {
			return nil, err
		}
		return mir.Binary{Op: op, L: l, R: r}, nil

	case spec.Unary != nil:
		op, ok := unOps[spec.Unary.Op]
		if !ok {
			return nil, fmt.Errorf("%w: unknown unary op %q", ErrInvalid, spec.Unary.Op)
		}
		x, err := parseOperand(spec.Unary.X)
		if err != nil {
			return nil, err
		}
		return mir.Unary{Op: op, X: x}, nil

	case spec.Aggregate != nil:
		kind, ok := aggKinds[spec.Aggregate.Kind]
		if !ok {
			return nil, fmt.Errorf("%w: unknown aggregate kind %q", ErrInvalid, spec.Aggregate.Kind)
		}
		operands, err := parseOperands(spec.Aggregate.Operands)
		if err != nil {
			return nil, err
		}
		return mir.Aggregate{Kind: kind, Operands: operands, Fields: spec.Aggregate.Fields}, nil

	case spec.Input != nil:
		switch spec.Input.Op {
		case "exists":
			return mir.Input{Op: mir.InputExists, Name: spec.Input.Name}, nil
		case "load":
			return mir.Input{Op: mir.InputLoad, Name: spec.Input.Name}, nil
		default:
			return nil, fmt.Errorf("%w: unknown input op %q", ErrInvalid, spec.Input.Op)
		}

	case spec.Apply != nil:
		fn, err := parseOperand(spec.Apply.Fn)
		if err != nil {
			return nil, err
		}
		args, err := parseOperands(spec.Apply.Args)
		if err != nil {
			return nil, err
		}
		return mir.Apply{Fn: fn, Args: args}, nil

	default:
		return nil, fmt.Errorf("%w: statement has no rvalue", ErrInvalid)
	}
}

var binOps = map[string]mir.BinOp{
	"+": mir.BinAdd, "-": mir.BinSub, "&": mir.BinBitAnd, "|": mir.BinBitOr,
	"==": mir.BinEq, "!=": mir.BinNe, "<": mir.BinLt, "<=": mir.BinLte,
	">": mir.BinGt, ">=": mir.BinGte,
}

var unOps = map[string]mir.UnOp{"!": mir.UnNot, "-": mir.UnNeg, "~": mir.UnBitNot}

var aggKinds = map[string]mir.AggregateKind{
	"tuple": mir.AggTuple, "struct": mir.AggStruct, "closure": mir.AggClosure,
	"list": mir.AggList, "dict": mir.AggDict, "opaque": mir.AggOpaque,
}

func buildTerminator(spec termSpec) (mir.Terminator, error) {
	switch {
	case spec.Goto != nil:
		target, err := buildTarget(*spec.Goto)
		if err != nil {
			return nil, err
		}
		return mir.Goto{Target: target}, nil

	case spec.Switch != nil:
		discr, err := parseOperand(spec.Switch.Discr)
		if err != nil {
			return nil, err
		}
		term := mir.SwitchInt{Discr: discr}
		for _, c := range spec.Switch.Cases {
			target, err := buildTarget(targetSpec{To: c.To, Args: c.Args})
			if err != nil {
				return nil, err
			}
			term.Cases = append(term.Cases, mir.SwitchCase{Value: c.Value, Target: target})
		}
		if spec.Switch.Otherwise != nil {
			target, err := buildTarget(*spec.Switch.Otherwise)
			if err != nil {
				return nil, err
			}
			term.Otherwise = &target
		}
		return term, nil

	case spec.Scan != nil:
		target, err := buildTarget(*spec.Scan)
		if err != nil {
			return nil, err
		}
		return mir.Scan{Target: target}, nil

	case spec.Return != nil:
		value, err := parseOperand(*spec.Return)
		if err != nil {
			return nil, err
		}
		return mir.Return{Value: value}, nil

	case spec.Unreachable:
		return mir.Unreachable{}, nil

	default:
		return nil, fmt.Errorf("%w: block has no terminator", ErrInvalid)
	}
}

func buildTarget(spec targetSpec) (mir.Target, error) {
	args, err := parseOperands(spec.Args)
	if err != nil {
		return mir.Target{}, err
	}
	return mir.Target{Block: mir.BlockID(spec.To), Args: args}, nil
}

func parseOperands(specs []string) ([]mir.Operand, error) {
	var operands []mir.Operand
	for _, s := range specs {
		operand, err := parseOperand(s)
		if err != nil {
			return nil, err
		}
		operands = append(operands, operand)
	}
	return operands, nil
}
