package constfold

import (
	"testing"

	"midc/ir"
)

func TestInterpStateSeedsEntryBlock(t *testing.T) {
	ex := ir.NewExecutable(10)
	s := NewInterpState(ex)

	bb, ok := s.Dequeue()
	if !ok {
		t.Fatal("InterpState should seed the queue with the entry block")
	}
	if bb != ex.Blocks[0] {
		t.Error("seeded block should be the executable's entry block")
	}

	_, ok = s.Dequeue()
	if ok {
		t.Error("queue should be empty after draining the entry block")
	}
}

func TestEnqueueDedupesAlreadyVisited(t *testing.T) {
	ex := ir.NewExecutable(10)
	s := NewInterpState(ex)
	s.Dequeue()

	bb := ex.NewBlock("again")
	s.Enqueue(bb)
	s.Enqueue(bb)

	count := 0
	for {
		_, ok := s.Dequeue()
		if !ok {
			break
		}
		count++
	}
	if count != 1 {
		t.Errorf("enqueuing the same block twice should only queue it once, got %d", count)
	}
}

func TestEnqueueInlinedDoesNotJoinBFSQueue(t *testing.T) {
	ex := ir.NewExecutable(10)
	s := NewInterpState(ex)
	s.Dequeue()

	pred := ex.Blocks[0]
	inlined := ex.NewBlock("arm")
	s.EnqueueInlined(inlined, pred)

	_, ok := s.Dequeue()
	if ok {
		t.Error("an inlined block should not be added to the runtime-reachable queue")
	}

	got, ok := s.ConstPredecessorOf(inlined)
	if !ok || got != pred {
		t.Error("ConstPredecessorOf should report the block that inlined into it")
	}
}

func TestNoteBackwardBranchDirection(t *testing.T) {
	ex := ir.NewExecutable(10)
	s := NewInterpState(ex)

	a := ex.NewBlock("a")
	b := ex.NewBlock("b")

	isBackward, exceeded := s.NoteBackwardBranch(a, b)
	if isBackward {
		t.Error("a branch to a higher-numbered block should not be backward")
	}
	if exceeded {
		t.Error("a forward branch should never exceed the quota")
	}

	isBackward, _ = s.NoteBackwardBranch(b, a)
	if !isBackward {
		t.Error("a branch to a lower-numbered block should be backward")
	}
}

func TestNoteBackwardBranchExceedsQuota(t *testing.T) {
	ex := ir.NewExecutable(1)
	s := NewInterpState(ex)
	a := ex.NewBlock("a")
	b := ex.NewBlock("b")

	_, exceeded := s.NoteBackwardBranch(b, a)
	if exceeded {
		t.Error("first backward branch should still be within a quota of 1")
	}
	_, exceeded = s.NoteBackwardBranch(b, a)
	if !exceeded {
		t.Error("second backward branch should exceed a quota of 1")
	}
}
