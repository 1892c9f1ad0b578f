// Package ir defines the low-level intermediate representation the code
// generator lowers a syntax tree into: a structured control-flow graph of
// single-entry basic blocks, each terminated by exactly one of Return,
// Jump, or Branch. internal/emit lowers a verified Module into Go source
// (one goto per Jump/Branch target, since every target is known at
// generation time); internal/jit installs the result.
package ir

// Label names a Block within a Module.
type Label string

const (
	// ReturnSuccess and ReturnFail are the two sentinel terminal blocks
	// every Module must contain (spec §4.4.1 step 3).
	ReturnSuccess Label = "RETURN_SUCCESS"
	ReturnFail    Label = "RETURN_FAIL"
)

// CondKind identifies the predicate a Branch terminator tests.
type CondKind int

const (
	CondAlways CondKind = iota
	CondByteEquals
	CondInClass
	CondAtStart
	CondAtEnd
	CondWordBoundary
	CondNonWordBoundary
	CondBoundsRemain // offset < len(input), the §4.4.2 CharClass guard

	// CondBoundsRemainInclusive is offset <= len(input): the outer scan
	// loop of the linear-scan plan (spec §4.4.1 plan 5) must still attempt
	// the body once offset == len(input), since zero-width patterns like a
	// bare $ only match at end of input (spec §4.4.1's worked example).
	CondBoundsRemainInclusive

	// CondOffsetExceedsSlot is offset > slot: used by the memchr-range
	// plan (spec §4.4.1 plan 4) to decide whether the current "next
	// required byte" window has been fully attempted and a fresh forward
	// scan for the next occurrence is needed.
	CondOffsetExceedsSlot

	// CondCallSucceeded reads the outcome of the block's own
	// InstrCallBMH instruction (spec §4.4.1 plan 2): true if the needle
	// was found. offset is left unchanged either way.
	CondCallSucceeded

	// CondRunLength is the fused single-byte greedy-repeat op (spec
	// §4.4.4 path 4): count the run of consecutive bytes equal to Byte
	// (or within Ranges, when Ranges is set) starting at the current
	// offset, capped at Max (-1 means uncapped). If the run is at least
	// Min, offset advances by the run length and control goes to the
	// Branch's true target; otherwise offset is left unchanged and
	// control goes to the false target.
	CondRunLength

	// CondCounterAtLeast and CondCounterBelow test a named loop counter
	// maintained by InstrCounterReset/InstrCounterIncrement, used by the
	// general two-phase counted Repeat path (spec §4.4.4 path 5).
	CondCounterAtLeast
	CondCounterBelow
)

// Cond is the predicate tested by a Branch terminator.
type Cond struct {
	Kind CondKind

	// CondByteEquals, CondRunLength (single byte form)
	Byte byte

	// CondInClass, CondRunLength (class form)
	Ranges  []Range
	Negated bool

	// CondRunLength
	Min, Max int

	// CondCounterAtLeast, CondCounterBelow
	Slot      string
	Threshold int
}

// Range is an inclusive byte range, duplicated from ast.Range so ir has no
// dependency on the front-end package.
type Range struct{ Lo, Hi byte }

// InstrKind identifies a side-effecting step within a Block, executed
// before the block's Terminator.
type InstrKind int

const (
	InstrAdvance           InstrKind = iota // offset++
	InstrSaveOffset                         // snapshot offset to a named slot
	InstrRestoreOffset                      // restore offset from a named slot
	InstrCallBMH                            // call rtsupport.BMHSearch with a literal needle; sets the block's CondCallSucceeded outcome
	InstrCallMemchrAdvance                  // advance offset to the next occurrence of a byte, or to len(input) if absent
	InstrCounterReset                       // zero a named loop counter (path 5)
	InstrCounterIncrement                   // increment a named loop counter (path 5)
)

// Instr is one side-effecting step within a Block.
type Instr struct {
	Kind InstrKind

	Slot string // InstrSaveOffset / InstrRestoreOffset / InstrCounterReset / InstrCounterIncrement
	Byte byte   // InstrCallMemchrAdvance

	Needle []byte // InstrCallBMH
}

// TermKind identifies a Block's terminator.
type TermKind int

const (
	TermReturn TermKind = iota
	TermJump
	TermBranch
)

// Terminator ends a Block. Exactly one TermKind applies.
type Terminator struct {
	Kind TermKind

	ReturnValue bool // TermReturn

	Target Label // TermJump

	Cond        Cond  // TermBranch
	TrueTarget  Label // TermBranch
	FalseTarget Label // TermBranch
}

// Block is one basic block: a label, a sequence of Instrs, and one
// Terminator.
type Block struct {
	Label Label
	Instr []Instr
	Term  *Terminator
}

// Module is a lowered syntax tree: a named, ordered sequence of Blocks
// with a designated entry point.
type Module struct {
	Name    string
	Entry   Label
	Blocks  []*Block
	ByLabel map[Label]*Block
}

// NewModule creates an empty Module seeded with the two sentinel terminal
// blocks, matching spec §4.4.1 step 3.
func NewModule(name string) *Module {
	m := &Module{Name: name, ByLabel: map[Label]*Block{}}
	m.addBlock(&Block{Label: ReturnSuccess, Term: &Terminator{Kind: TermReturn, ReturnValue: true}})
	m.addBlock(&Block{Label: ReturnFail, Term: &Terminator{Kind: TermReturn, ReturnValue: false}})
	return m
}

func (m *Module) addBlock(b *Block) {
	m.Blocks = append(m.Blocks, b)
	m.ByLabel[b.Label] = b
}

// Block looks up a block by label.
func (m *Module) Block(l Label) *Block { return m.ByLabel[l] }
