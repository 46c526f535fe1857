package report

import "testing"

func TestNewSinkStartsClean(t *testing.T) {
	s := NewSink(LogLevelSilent)
	if s.ErrorCount() != 0 {
		t.Error("a fresh sink should have zero errors")
	}
	if !s.ShouldProceed() {
		t.Error("a fresh sink should allow proceeding")
	}
}

func TestErrorIncrementsCount(t *testing.T) {
	s := NewSink(LogLevelSilent)
	s.Error(KindOverflow, Pos{}, "overflow in %s", "add")
	s.Error(KindDivByZero, Pos{}, "division by zero")

	if s.ErrorCount() != 2 {
		t.Errorf("ErrorCount = %d, want 2", s.ErrorCount())
	}
	if s.ShouldProceed() {
		t.Error("a sink with errors should not allow proceeding")
	}
}

func TestWarningDoesNotCountAsError(t *testing.T) {
	s := NewSink(LogLevelSilent)
	s.Warning(KindTypeShadowing, Pos{}, "shadows outer declaration")

	if s.ErrorCount() != 0 {
		t.Error("a warning should not increment the error count")
	}
	if !s.ShouldProceed() {
		t.Error("a sink with only warnings should still allow proceeding")
	}
	if len(s.Messages()) != 1 {
		t.Fatalf("Messages() should still record the warning, got %d entries", len(s.Messages()))
	}
	if s.Messages()[0].IsError {
		t.Error("a recorded warning should have IsError false")
	}
}

func TestErrorWithNoteAttachesNote(t *testing.T) {
	s := NewSink(LogLevelSilent)
	s.ErrorWithNote(KindRedeclaration, Pos{StartLine: 3}, Pos{StartLine: 1}, "first declared here", "redeclaration of 'x'")

	msgs := s.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if len(msgs[0].Notes) != 1 {
		t.Fatalf("expected 1 note, got %d", len(msgs[0].Notes))
	}
	if msgs[0].Notes[0].Text != "first declared here" {
		t.Errorf("note text = %q, want %q", msgs[0].Notes[0].Text, "first declared here")
	}
	if msgs[0].Notes[0].Pos.StartLine != 1 {
		t.Error("note position should be preserved independent of the message's own position")
	}
}

func TestMessagesPreservesRecordOrder(t *testing.T) {
	s := NewSink(LogLevelSilent)
	s.Error(KindOverflow, Pos{}, "first")
	s.Warning(KindTypeShadowing, Pos{}, "second")
	s.Error(KindDivByZero, Pos{}, "third")

	msgs := s.Messages()
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	if msgs[0].Text != "first" || msgs[1].Text != "second" || msgs[2].Text != "third" {
		t.Error("Messages should preserve recording order")
	}
}

func TestKindStringFallsBackForUnknownKind(t *testing.T) {
	var k Kind = 999
	if k.String() != "error" {
		t.Errorf("unknown Kind.String() = %q, want %q", k.String(), "error")
	}
	if KindOverflow.String() != "overflow" {
		t.Errorf("KindOverflow.String() = %q, want %q", KindOverflow.String(), "overflow")
	}
}
