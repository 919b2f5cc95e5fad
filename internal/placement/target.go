// Package placement decides, per basic block, which execution back-ends
// could legally run it and at what estimated cost.
//
// One StatementAnalyzer exists per back-end. Each produces per-statement
// and per-edge cost vectors for its target; the package then derives
// per-block target domains and per-edge transition matrices, which the
// solver package narrows to arc consistency.
package placement

import "strings"

// TargetID identifies one execution back-end. The catalog is closed and
// known at compile time.
type TargetID uint8

const (
	// Interpreter is the general fallback: it can run anything, anywhere.
	Interpreter TargetID = iota
	// Pushdown is the relational-database pushdown back-end.
	Pushdown

	// NumTargets is the catalog size.
	NumTargets = 2
)

// Fallback is the target guaranteed present in every block's domain.
const Fallback = Interpreter

var targetNames = [NumTargets]string{"interpreter", "pushdown"}

func (t TargetID) String() string {
	if int(t) < len(targetNames) {
		return targetNames[t]
	}
	return "?"
}

// TargetSet is a bitset of target IDs: a block's still-possible domain.
type TargetSet uint8

// EmptySet is the set with no targets.
func EmptySet() TargetSet { return 0 }

// FullSet contains every catalog target.
func FullSet() TargetSet { return TargetSet(1<<NumTargets) - 1 }

// SetOf builds a set from its members.
func SetOf(targets ...TargetID) TargetSet {
	var s TargetSet
	for _, t := range targets {
		s = s.With(t)
	}
	return s
}

// With returns the set plus a target.
func (s TargetSet) With(t TargetID) TargetSet { return s | 1<<t }

// Without returns the set minus a target.
func (s TargetSet) Without(t TargetID) TargetSet { return s &^ (1 << t) }

// Contains reports membership.
func (s TargetSet) Contains(t TargetID) bool { return s&(1<<t) != 0 }

// Empty reports whether no target remains.
func (s TargetSet) Empty() bool { return s == 0 }

// Len counts the members.
func (s TargetSet) Len() int {
	n := 0
	for t := TargetID(0); t < NumTargets; t++ {
		if s.Contains(t) {
			n++
		}
	}
	return n
}

// Targets lists the members in ID order.
func (s TargetSet) Targets() []TargetID {
	var targets []TargetID
	for t := TargetID(0); t < NumTargets; t++ {
		if s.Contains(t) {
			targets = append(targets, t)
		}
	}
	return targets
}

func (s TargetSet) String() string {
	names := make([]string, 0, NumTargets)
	for _, t := range s.Targets() {
		names = append(names, t.String())
	}
	return "{" + strings.Join(names, ", ") + "}"
}
