// Package report is the diagnostic sink: a (node, message) sink with
// optional notes, fixing the error-kind taxonomy without fixing message
// wording. Grounded on chai/bootstrap/report (CompileMessage/reporter
// split) and chai/src/logging (Kind enumeration, pterm-backed display).
package report

import (
	"fmt"
	"sync"
)

// Kind enumerates the error taxonomy. Message text is not fixed by this
// taxonomy -- only the category is.
type Kind int

const (
	KindTypeMismatch Kind = iota
	KindOverflow
	KindDivByZero
	KindOutOfBounds
	KindInvalidCast
	KindUndeclaredName
	KindRedeclaration
	KindTypeShadowing
	KindIllTypedBuiltin
	KindCompileTimeEvalFailure
	KindStructural
	KindUnimplemented
)

var kindNames = map[Kind]string{
	KindTypeMismatch: "type mismatch",
	KindOverflow: "overflow",
	KindDivByZero: "division by zero",
	KindOutOfBounds: "out of bounds",
	KindInvalidCast: "invalid cast",
	KindUndeclaredName: "undeclared name",
	KindRedeclaration: "redeclaration",
	KindTypeShadowing: "type shadowing",
	KindIllTypedBuiltin: "ill-typed builtin invocation",
	KindCompileTimeEvalFailure: "compile-time evaluation failure",
	KindStructural: "structural error",
	KindUnimplemented: "unimplemented",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "error"
}

// Pos is the narrow source-location reference every diagnostic pins to.
// Owned generically here so report does not need to import the ast or ir
// packages that produce positions.
type Pos struct {
	File string
	StartLine int
	StartCol int
	EndLine int
	EndCol int
}

// Note is a secondary annotation attached to a Message.
type Note struct {
	Pos Pos
	Text string
}

// Message is a single compile-time diagnostic.
type Message struct {
	Kind Kind
	Pos Pos
	Text string
	Notes []Note
	IsError bool
}

// Sink accumulates and displays diagnostics for one compilation. One Sink
// is shared by irbuild and analyze for a given Executable, following
// chai/bootstrap/report's single global reporter generalized to an
// explicit, non-global value so multiple compilations can run in the same
// process sequentially without resetting global state.
type Sink struct {
	mu sync.Mutex
	errorCount int
	messages []*Message
	LogLevel int
}

// Log levels, mirroring chai/src/logging.
const (
	LogLevelSilent = iota
	LogLevelError
	LogLevelWarning
	LogLevelVerbose
)

// NewSink creates a diagnostic sink at the given log level.
func NewSink(logLevel int) *Sink {
	return &Sink{LogLevel: logLevel}
}

// Error records a compile error of the given kind.
func (s *Sink) Error(kind Kind, pos Pos, format string, args ...any) {
	s.record(&Message{Kind: kind, Pos: pos, Text: fmt.Sprintf(format, args...), IsError: true})
}

// ErrorWithNote records a compile error with one attached note.
func (s *Sink) ErrorWithNote(kind Kind, pos Pos, notePos Pos, noteText, format string, args ...any) {
	s.record(&Message{
		Kind: kind, Pos: pos, Text: fmt.Sprintf(format, args...), IsError: true,
		Notes: []Note{{Pos: notePos, Text: noteText}},
	})
}

// Warning records a compile warning.
func (s *Sink) Warning(kind Kind, pos Pos, format string, args ...any) {
	s.record(&Message{Kind: kind, Pos: pos, Text: fmt.Sprintf(format, args...), IsError: false})
}

func (s *Sink) record(m *Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.IsError {
		s.errorCount++
	}
	s.messages = append(s.messages, m)

	if s.LogLevel > LogLevelSilent {
		display(m)
	}
}

// ShouldProceed reports whether any errors have been recorded yet.
func (s *Sink) ShouldProceed() bool {
	return s.errorCount == 0
}

// ErrorCount returns the total number of errors recorded.
func (s *Sink) ErrorCount() int {
	return s.errorCount
}

// Messages returns every recorded diagnostic, errors and warnings alike, in
// the order they were recorded -- used by tests that assert on the exact
// taxonomy of an emitted error.
func (s *Sink) Messages() []*Message {
	return s.messages
}
