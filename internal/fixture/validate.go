package fixture

import (
	"fmt"

	"github.com/halcyondb/halcyon/internal/mir"
)

// validateBody rejects dangling references the per-block builders cannot
// see: terminator targets outside the block range, operands or parameters
// naming undeclared locals, and edge argument counts that do not match the
// successor's parameters. Catching these here keeps malformed fixtures on
// the ErrInvalid path instead of panicking inside the analysis passes.
func validateBody(body *mir.Body) error {
	for id, block := range body.Blocks {
		blockID := mir.BlockID(id)
		for _, param := range block.Params {
			if err := checkLocal(body, blockID, param); err != nil {
				return err
			}
		}
		for i, stmt := range block.Statements {
			if err := checkLocal(body, blockID, stmt.LHS.Local); err != nil {
				return fmt.Errorf("statement %d: %w", i, err)
			}
			for _, operand := range statementOperands(stmt.RHS) {
				if err := checkOperand(body, blockID, operand); err != nil {
					return fmt.Errorf("statement %d: %w", i, err)
				}
			}
		}
		if err := checkTerminator(body, blockID, block.Terminator); err != nil {
			return err
		}
	}
	return nil
}

func checkLocal(body *mir.Body, block mir.BlockID, local mir.Local) error {
	if int(local) >= body.NumLocals() {
		return fmt.Errorf("%w: bb%d references undeclared local %s", ErrInvalid, block, local)
	}
	return nil
}

func checkOperand(body *mir.Body, block mir.BlockID, operand mir.Operand) error {
	if place, ok := operand.(mir.Place); ok {
		return checkLocal(body, block, place.Local)
	}
	return nil
}

func checkBlock(body *mir.Body, from, to mir.BlockID) error {
	if int(to) >= body.NumBlocks() {
		return fmt.Errorf("%w: bb%d targets missing block bb%d", ErrInvalid, from, to)
	}
	return nil
}

func checkTarget(body *mir.Body, from mir.BlockID, target mir.Target) error {
	if err := checkBlock(body, from, target.Block); err != nil {
		return err
	}
	for _, arg := range target.Args {
		if err := checkOperand(body, from, arg); err != nil {
			return err
		}
	}
	if params := body.Blocks[target.Block].Params; len(target.Args) != len(params) {
		return fmt.Errorf("%w: bb%d passes %d arguments to bb%d, which declares %d parameters",
			ErrInvalid, from, len(target.Args), target.Block, len(params))
	}
	return nil
}

func checkTerminator(body *mir.Body, block mir.BlockID, term mir.Terminator) error {
	switch t := term.(type) {
	case mir.Goto:
		return checkTarget(body, block, t.Target)

	case mir.SwitchInt:
		if err := checkOperand(body, block, t.Discr); err != nil {
			return err
		}
		for _, c := range t.Cases {
			if err := checkTarget(body, block, c.Target); err != nil {
				return err
			}
		}
		if t.Otherwise != nil {
			return checkTarget(body, block, *t.Otherwise)
		}
		return nil

	case mir.Scan:
		// The scanned collection binds the target's single parameter
		// outside the argument system.
		if err := checkBlock(body, block, t.Target.Block); err != nil {
			return err
		}
		if len(t.Target.Args) != 0 {
			return fmt.Errorf("%w: bb%d scan target carries %d arguments", ErrInvalid, block, len(t.Target.Args))
		}
		if params := body.Blocks[t.Target.Block].Params; len(params) != 1 {
			return fmt.Errorf("%w: bb%d scan target bb%d declares %d parameters, want 1",
				ErrInvalid, block, t.Target.Block, len(params))
		}
		return nil

	case mir.Return:
		return checkOperand(body, block, t.Value)

	default:
		return nil
	}
}

func statementOperands(rhs mir.RValue) []mir.Operand {
	switch rv := rhs.(type) {
	case mir.Load:
		return []mir.Operand{rv.X}
	case mir.Binary:
		return []mir.Operand{rv.L, rv.R}
	case mir.Unary:
		return []mir.Operand{rv.X}
	case mir.Aggregate:
		return rv.Operands
	case mir.Apply:
		return append([]mir.Operand{rv.Fn}, rv.Args...)
	default:
		return nil
	}
}
