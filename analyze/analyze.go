// Package analyze implements the IR analyzer: a BFS walk over an
// unverified Executable that assigns result types, folds what it can,
// validates the rest, and emits a verified Executable. Grounded on
// `chai/src/walk/walker.go`'s `Walker` (a table of contexts plus a
// worklist) combined with `chai/bootstrap/lower/visit.go`'s
// already-visited map, generalized from "definition already lowered" to
// "instruction already analyzed".
package analyze

import (
	"midc/coerce"
	"midc/config"
	"midc/constfold"
	"midc/ir"
	"midc/report"
	"midc/types"
	"midc/value"
)

// Analyzer holds all state for one Executable's analysis pass. One
// Analyzer is used for exactly one old->new Executable translation.
type Analyzer struct {
	Sink *report.Sink
	Cfg config.AnalyzerConfig

	Old *ir.Executable
	New *ir.Executable

	// CrossLinks is the old-instruction-id -> new-instruction side table
	// used in place of the source's mutation-based `other` self-loop
	// sentinel. ir.Instruction.Other remains only the self-loop that
	// ir.Executable.NewInstr sets on every instruction; analysis never
	// points it anywhere else.
	CrossLinks map[int]*ir.Instruction

	// BlockLinks is the analogous side table for basic blocks.
	BlockLinks map[int]*ir.BasicBlock

	// VarLinks maps an old Variable's arena index to its new counterpart's
	// arena index, populated the first time DeclVar (or a parameter) is
	// analyzed for that variable.
	VarLinks map[int]int

	Interp *constfold.InterpState

	// ExpectedType is the caller-supplied return type hint, used by Return
	// to peer-resolve against when present.
	ExpectedType types.Type

	// ReturnValues accumulates every analyzed Return's value, used to
	// peer-resolve the executable's final return type once analysis
	// completes.
	ReturnValues []value.Value

	curBlock *ir.BasicBlock
	// curOldBlock supports the const-predecessor lookups keyed by the old
	// block currently being analyzed.
	curOldBlock *ir.BasicBlock
}

// Analyze runs the full pass over old, producing a verified Executable.
func Analyze(old *ir.Executable, expectedType types.Type, sink *report.Sink, cfg config.AnalyzerConfig) *ir.Executable {
	a := &Analyzer{
		Sink: sink,
		Cfg: cfg,
		Old: old,
		New: ir.NewExecutable(cfg.BackwardBranchQuota),
		CrossLinks: make(map[int]*ir.Instruction),
		BlockLinks: make(map[int]*ir.BasicBlock),
		VarLinks: make(map[int]int),
		ExpectedType: expectedType,
	}
	a.New.IsInline = old.IsInline
	a.Interp = constfold.NewInterpState(old)

	if len(old.Blocks) > 0 {
		a.BlockLinks[old.Blocks[0].DebugID] = a.New.Blocks[0]
	}

	for {
		oldBB, ok := a.Interp.Dequeue()
		if !ok {
			break
		}
		a.analyzeBlock(oldBB)
	}

	a.finalizeReturnType()
	return a.New
}

// blockFor returns (creating if necessary) the new block corresponding to
// an old block.
func (a *Analyzer) blockFor(old *ir.BasicBlock) *ir.BasicBlock {
	if nb, ok := a.BlockLinks[old.DebugID]; ok {
		return nb
	}
	nb := a.New.NewBlock(old.NameHint)
	a.BlockLinks[old.DebugID] = nb
	return nb
}

// analyzeBlock walks startOld's instructions into a.blockFor(startOld),
// following compile-time-decided branches by splicing the chosen arm's
// instructions into the very same new block instead of ever emitting the
// branch: cur tracks the old block currently being spliced, advancing
// without limit bound only by the backward-branch quota. A branch whose
// condition turns out to be Runtime ends the splice with a genuine
// terminator and hands its targets to the BFS queue like any other block.
func (a *Analyzer) analyzeBlock(startOld *ir.BasicBlock) {
	cur := startOld
	a.curOldBlock = startOld
	a.curBlock = a.blockFor(startOld)

	for {
		terminated := false
		for _, oldIn := range cur.Instrs {
			if a.shouldPrune(oldIn) {
				continue
			}
			a.Interp.Cursor = oldIn
			var next *ir.BasicBlock
			var inlined bool
			switch oldIn.Op {
			case ir.OpBr:
				a.resolveBr(oldIn)
				return
			case ir.OpCondBr:
				next, inlined = a.resolveCondBr(oldIn, cur)
			case ir.OpSwitchBr:
				next, inlined = a.resolveSwitchBr(oldIn, cur)
			default:
				a.analyzeInstr(oldIn)
				continue
			}
			if !inlined {
				return
			}
			cur = next
			a.curOldBlock = cur
			terminated = true
			break
		}
		if !terminated {
			return
		}
	}
}

// shouldPrune is the dead-code pruning precondition: a zero-refcount
// instruction with no observable side effect is skipped entirely before
// analysis ever looks at it.
func (a *Analyzer) shouldPrune(in *ir.Instruction) bool {
	return in.RefCount == 0 && !in.Op.SideEffecting()
}

func (a *Analyzer) emit(op ir.Op, pos ir.SourcePos) *ir.Instruction {
	in := a.New.NewInstr(op, pos)
	a.curBlock.Append(in)
	return in
}

func (a *Analyzer) use(in, operand *ir.Instruction) {
	in.Operands = append(in.Operands, operand)
	operand.RefCount++
}

func (a *Analyzer) link(old, new *ir.Instruction) {
	a.CrossLinks[old.DebugID] = new
}

// resolve returns the already-analyzed new instruction for an old operand.
// This is the only bridge the analyzer uses to rewrite operand references.
func (a *Analyzer) resolve(old *ir.Instruction) *ir.Instruction {
	if n, ok := a.CrossLinks[old.DebugID]; ok {
		return n
	}
	// An operand that was pruned or not yet analyzed (e.g. a forward
	// reference the builder never produces) is an analyzer-internal
	// inconsistency, not a user error; substitute invalid and keep going.
	in := a.emit(ir.OpConst, old.Pos)
	in.ResultType = types.TheInvalid
	in.Val = value.Value{Type: types.TheInvalid}
	return in
}

func (a *Analyzer) invalid(old *ir.Instruction) *ir.Instruction {
	a.New.Invalid = true
	in := a.emit(ir.OpConst, old.Pos)
	in.ResultType = types.TheInvalid
	in.Val = value.Value{Type: types.TheInvalid}
	a.link(old, in)
	return in
}

func (a *Analyzer) errorf(old *ir.Instruction, kind report.Kind, format string, args ...any) *ir.Instruction {
	a.Sink.Error(kind, reportPos(old.Pos), format, args...)
	return a.invalid(old)
}

func reportPos(p ir.SourcePos) report.Pos {
	return report.Pos{StartLine: p.Line, StartCol: p.Col, EndLine: p.Line, EndCol: p.Col}
}

// finalizeReturnType infers the executable's return type by peer-resolving
// every analyzed Return's value, when no expected type was supplied for
// Return to coerce against directly.
func (a *Analyzer) finalizeReturnType() {
	if a.ExpectedType != nil && !types.IsInvalid(a.ExpectedType) && a.ExpectedType.Kind() != types.Void {
		a.New.InferredReturnType = a.ExpectedType
		return
	}
	if len(a.ReturnValues) == 0 {
		a.New.InferredReturnType = types.TheVoid
		return
	}
	t, ok := coerce.ResolvePeerTypes(a.ReturnValues)
	if !ok {
		a.Sink.Error(report.KindTypeMismatch, report.Pos{}, "function's return statements have incompatible types")
		a.New.Invalid = true
		return
	}
	a.New.InferredReturnType = t
}
