package constfold

import "midc/ir"

// InterpState is the abstract interpreter's state: the old-block queue,
// instruction cursor, and the const-predecessor map, kept in one struct
// rather than threaded as a continuation or trampoline. Compile-time
// variable storage is not held here; it lives in the analyzed
// ir.Executable's MemSlots.
// Package analyze owns one InterpState per Executable being analyzed and
// consults it whenever a CondBr/SwitchBr's condition is Static or the
// executable is inline.
type InterpState struct {
	Ex *ir.Executable

	// Queue holds old (unverified) blocks awaiting analysis, in BFS order.
	Queue []*ir.BasicBlock

	// Cursor is the instruction currently being analyzed within the block
	// package analyze is walking; exposed so folding helpers can attribute
	// diagnostics to the right source position.
	Cursor *ir.Instruction

	// ConstPred maps a block reached only via an inlined branch to the
	// block that inlined into it -- the current block's const predecessor.
	ConstPred map[*ir.BasicBlock]*ir.BasicBlock

	// Visited tracks old blocks already enqueued, so a block reached by
	// multiple edges is analyzed at most once.
	Visited map[*ir.BasicBlock]bool
}

// NewInterpState creates interpreter state seeded with ex's entry block.
func NewInterpState(ex *ir.Executable) *InterpState {
	s := &InterpState{
		Ex: ex,
		ConstPred: make(map[*ir.BasicBlock]*ir.BasicBlock),
		Visited: make(map[*ir.BasicBlock]bool),
	}
	if len(ex.Blocks) > 0 {
		s.Enqueue(ex.Blocks[0])
	}
	return s
}

// Enqueue adds bb to the work queue unless it has already been visited.
func (s *InterpState) Enqueue(bb *ir.BasicBlock) {
	if s.Visited[bb] {
		return
	}
	s.Visited[bb] = true
	s.Queue = append(s.Queue, bb)
}

// EnqueueInlined records that bb was reached only through an inlined
// (compile-time-decided) branch from pred, without adding it to the
// runtime-reachable BFS queue.
func (s *InterpState) EnqueueInlined(bb, pred *ir.BasicBlock) {
	s.ConstPred[bb] = pred
	s.Visited[bb] = true
}

// Dequeue pops the next block to analyze, BFS order.
func (s *InterpState) Dequeue() (*ir.BasicBlock, bool) {
	if len(s.Queue) == 0 {
		return nil, false
	}
	bb := s.Queue[0]
	s.Queue = s.Queue[1:]
	return bb, true
}

// ConstPredecessorOf reports the block that inlined into bb, if any.
func (s *InterpState) ConstPredecessorOf(bb *ir.BasicBlock) (*ir.BasicBlock, bool) {
	p, ok := s.ConstPred[bb]
	return p, ok
}

// NoteBackwardBranch records a branch from 'from' to 'to' and reports
// whether it both counts as backward and exceeds the executable's quota.
func (s *InterpState) NoteBackwardBranch(from, to *ir.BasicBlock) (isBackward, exceeded bool) {
	if to.DebugID > from.DebugID {
		return false, false
	}
	return true, s.Ex.NoteBackwardBranch()
}
