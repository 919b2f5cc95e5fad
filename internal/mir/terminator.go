package mir

import (
	"fmt"
	"strings"
)

// Target names a successor block and binds argument operands to its
// parameters. Argument count must match the successor's parameter count.
type Target struct {
	Block BlockID   `json:"block"`
	Args  []Operand `json:"args,omitempty"`
}

// TargetTo builds a target with the given argument bindings.
func TargetTo(block BlockID, args ...Operand) Target {
	return Target{Block: block, Args: args}
}

func (t Target) String() string {
	if len(t.Args) == 0 {
		return fmt.Sprintf("bb%d", uint32(t.Block))
	}
	args := make([]string, len(t.Args))
	for i, arg := range t.Args {
		args[i] = arg.String()
	}
	return fmt.Sprintf("bb%d(%s)", uint32(t.Block), strings.Join(args, ", "))
}

// Terminator ends a basic block and names its successors.
type Terminator interface {
	isTerminator()
	// Targets returns the successor targets in edge order. The returned
	// slice aliases the terminator's storage and must not be mutated.
	Targets() []Target
	fmt.Stringer
}

// Goto transfers control unconditionally.
type Goto struct {
	Target Target `json:"target"`
}

// SwitchCase is one value-guarded branch of a SwitchInt.
type SwitchCase struct {
	Value  int64  `json:"value"`
	Target Target `json:"target"`
}

// SwitchInt branches on an integer discriminant. Otherwise, when present,
// is taken when no case matches.
type SwitchInt struct {
	Discr     Operand      `json:"discr"`
	Cases     []SwitchCase `json:"cases"`
	Otherwise *Target      `json:"otherwise,omitempty"`
}

// Scan reads from the external store and delivers the resulting collection
// to the target block's single parameter. The result's size is never
// statically known.
type Scan struct {
	Target Target `json:"target"`
}

// Return leaves the body with a value.
type Return struct {
	Value Operand `json:"value"`
}

// Unreachable marks a block that control flow can never reach.
type Unreachable struct{}

func (Goto) isTerminator()        {}
func (SwitchInt) isTerminator()   {}
func (Scan) isTerminator()        {}
func (Return) isTerminator()      {}
func (Unreachable) isTerminator() {}

func (t Goto) Targets() []Target { return []Target{t.Target} }

func (t SwitchInt) Targets() []Target {
	targets := make([]Target, 0, len(t.Cases)+1)
	for _, branch := range t.Cases {
		targets = append(targets, branch.Target)
	}
	if t.Otherwise != nil {
		targets = append(targets, *t.Otherwise)
	}
	return targets
}

func (t Scan) Targets() []Target { return []Target{t.Target} }

func (Return) Targets() []Target      { return nil }
func (Unreachable) Targets() []Target { return nil }

func (t Goto) String() string { return "goto " + t.Target.String() }

func (t SwitchInt) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "switch %s [", t.Discr)
	for i, branch := range t.Cases {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%d: %s", branch.Value, branch.Target)
	}
	if t.Otherwise != nil {
		if len(t.Cases) > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "otherwise: %s", *t.Otherwise)
	}
	sb.WriteString("]")
	return sb.String()
}

func (t Scan) String() string   { return "scan -> " + t.Target.String() }
func (t Return) String() string { return "return " + t.Value.String() }
func (Unreachable) String() string {
	return "unreachable"
}
