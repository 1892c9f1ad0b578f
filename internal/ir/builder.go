package ir

import "fmt"

// Builder incrementally constructs a Module. One Builder is created per
// compile (spec §5's "per-compile generation context") and never shared
// between concurrent compiles.
type Builder struct {
	mod     *Module
	counter int
}

// NewBuilder returns a Builder for a fresh Module named name.
func NewBuilder(name string) *Builder {
	return &Builder{mod: NewModule(name)}
}

// Module returns the Module built so far.
func (b *Builder) Module() *Module { return b.mod }

// NewBlock allocates and registers a fresh, unterminated block.
func (b *Builder) NewBlock() *Block {
	b.counter++
	blk := &Block{Label: Label(fmt.Sprintf("B%d", b.counter))}
	b.mod.addBlock(blk)
	return blk
}

// Terminate sets a block's terminator. It is an error to call this twice
// on the same block (every block must be terminated exactly once, spec
// §4.4.4's invariant), enforced here rather than left to Verify so bugs
// surface at the point they are introduced.
func (b *Builder) Terminate(blk *Block, term Terminator) {
	if blk.Term != nil {
		panic(fmt.Sprintf("ir: block %s already terminated", blk.Label))
	}
	t := term
	blk.Term = &t
}
