package mir

import (
	"fmt"

	"github.com/halcyondb/halcyon/internal/typeenv"
)

// Builder assembles a Body incrementally. It exists for tests and fixtures;
// the production lowering stage constructs bodies directly.
type Builder struct {
	body Body
}

// NewBuilder starts a body with the given identity and unit kind. argTypes
// declare the unit parameters; they become locals 0..len(argTypes)-1.
func NewBuilder(id BodyID, kind UnitKind, argTypes ...typeenv.TypeID) *Builder {
	b := &Builder{body: Body{ID: id, Kind: kind, Args: len(argTypes)}}
	for _, t := range argTypes {
		b.NewLocal(t)
	}
	return b
}

// NewLocal declares a fresh local of the given type.
func (b *Builder) NewLocal(t typeenv.TypeID) Local {
	b.body.Locals = append(b.body.Locals, LocalDecl{Type: t})
	return Local(len(b.body.Locals) - 1)
}

// NewBlock appends an empty block with the given parameter locals.
func (b *Builder) NewBlock(params ...Local) BlockID {
	b.body.Blocks = append(b.body.Blocks, BasicBlock{Params: params})
	return BlockID(len(b.body.Blocks) - 1)
}

// Append adds a statement assigning rhs to lhs at the end of block.
func (b *Builder) Append(block BlockID, lhs Local, rhs RValue) {
	bb := &b.body.Blocks[block]
	bb.Statements = append(bb.Statements, Assign(lhs, rhs))
}

// Terminate sets the block's terminator. Each block is terminated once.
func (b *Builder) Terminate(block BlockID, term Terminator) {
	bb := &b.body.Blocks[block]
	if bb.Terminator != nil {
		panic(fmt.Sprintf("mir: bb%d terminated twice", uint32(block)))
	}
	bb.Terminator = term
}

// Build finalizes the body. It panics if any block lacks a terminator.
func (b *Builder) Build() *Body {
	for id, block := range b.body.Blocks {
		if block.Terminator == nil {
			panic(fmt.Sprintf("mir: bb%d has no terminator", id))
		}
	}
	body := b.body
	body.AssertSSA()
	return &body
}
