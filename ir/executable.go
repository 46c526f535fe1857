package ir

import (
	"midc/types"
	"midc/value"
)

// MemSlot is one compile-time storage cell in an Executable's slot vector.
// A slot holds a Value that may be Static, Undef, or Runtime; once it
// transitions from Static to Runtime it may never transition back.
type MemSlot struct {
	Val value.Value
	// Demoted records whether this slot has already made its one allowed
	// Static -> Runtime transition, enforced by package analyze.
	Demoted bool
}

// LabelEntry records a label placed during construction, consumed by the
// two-pass goto resolution.
type LabelEntry struct {
	Name string
	Block *BasicBlock
}

// GotoFixup records an as-yet-unresolved goto, emitted initially as an
// Unreachable placeholder instruction.
type GotoFixup struct {
	Name string
	Placeholder *Instruction
	FromBlock *BasicBlock
}

// Executable is a sequence of BasicBlocks plus the bookkeeping the builder
// and analyzer share. Grounded on chai/bootstrap/mir.MIRBundle generalized
// from "externals/forwards/functions lists" to a single-Executable-per-
// function model (one Executable represents one function body, or one
// free-standing inline evaluation such as a global initializer).
type Executable struct {
	Blocks []*BasicBlock

	// Vars is the arena of Variables declared within this executable,
	// indexed by Variable.DeclScope-independent position.
	Vars []*Variable

	// MemSlots is the slot vector addressed by Variable.MemSlotIndex.
	MemSlots []MemSlot

	NextDebugID int

	// IsInline requires the whole executable to fold to a constant.
	IsInline bool

	BackwardBranchCount int
	BackwardBranchQuota int

	// Invalid is set when analysis records an error against this
	// executable. Analysis carries on after it is set; no analysis step
	// reads it.
	Invalid bool

	// Construction-only auxiliary state, cleared once irbuild finishes
	Labels []LabelEntry
	Gotos []GotoFixup

	// InferredReturnType is set by package analyze when no caller-supplied
	// return type was available to coerce against, by peer-resolving every
	// Return's value.
	InferredReturnType types.Type
}

// NewExecutable creates an empty Executable with one entry block.
func NewExecutable(quota int) *Executable {
	ex := &Executable{BackwardBranchQuota: quota}
	entry := ex.NewBlock("entry")
	entry.RefCount++ // implicit reference from the executable itself
	return ex
}

// NewBlock allocates a fresh BasicBlock with the next debug id.
func (ex *Executable) NewBlock(nameHint string) *BasicBlock {
	b := NewBasicBlock(nameHint, ex.NextDebugID)
	ex.NextDebugID++
	ex.Blocks = append(ex.Blocks, b)
	return b
}

// NewInstr allocates a fresh Instruction with the next debug id and the
// construction-time self-loop sentinel.
func (ex *Executable) NewInstr(op Op, pos SourcePos) *Instruction {
	in := &Instruction{DebugID: ex.NextDebugID, Op: op, Pos: pos}
	ex.NextDebugID++
	in.SelfLoop()
	return in
}

// DeclareVar appends a Variable to the arena and returns its index.
func (ex *Executable) DeclareVar(v *Variable) int {
	idx := len(ex.Vars)
	ex.Vars = append(ex.Vars, v)
	return idx
}

// AllocSlot appends a new compile-time storage cell and returns its index,
// used when irbuild/analyze decide a Variable is inline or generator-const
func (ex *Executable) AllocSlot(initial value.Value) int {
	idx := len(ex.MemSlots)
	ex.MemSlots = append(ex.MemSlots, MemSlot{Val: initial})
	return idx
}

// DemoteSlot performs the single, irreversible Static -> Runtime transition
// for a mem slot. It panics if the slot has already been
// demoted once, enforcing the "never oscillates" invariant as a programmer
// error rather than a silent bug -- analyze never calls this twice for the
// same slot by construction, so a panic here indicates an analyzer defect.
func (ex *Executable) DemoteSlot(idx int) {
	slot := &ex.MemSlots[idx]
	if slot.Demoted {
		panic("ir: mem slot demoted more than once")
	}
	slot.Val = value.MakeRuntime(slot.Val.Type)
	slot.Demoted = true
}

// NoteBackwardBranch increments the back-edge counter and reports whether
// the per-executable quota has been exceeded.
func (ex *Executable) NoteBackwardBranch() (exceeded bool) {
	ex.BackwardBranchCount++
	return ex.BackwardBranchCount > ex.BackwardBranchQuota
}
