package ast

import "midc/report"

// -----------------------------------------------------------------------------
// Declarations.

// FuncDecl is a top-level or nested function definition.
type FuncDecl struct {
	ExprBase
	Name string
	Params []*VarDecl
	ReturnType Type // may be nil: inferred from Body's Return statements
	Body *Block
	IsInline bool
	Pub bool
	IsTest bool
}

// VarDecl is a single variable binding, used both for top-level `let`/
// `const` statements and function parameters.
type VarDecl struct {
	ExprBase
	Name string
	IsConst bool
	Init Expr // nil for parameters and declarations without an initializer
}

// Label names a jump target for `goto`.
type Label struct {
	ExprBase
	Name string
}

// Type is the narrow interface for a type expression appearing in source
// (e.g. `*const i32`, `[]u8`) prior to resolution. The front-end resolves
// these; this module only asks for the already-resolved types.Type via
// DeclaredType on the wrapping Expr, so Type carries no methods of its own
// beyond Node -- it exists purely so irbuild's signatures read naturally.
type Type interface {
	Node
}

// -----------------------------------------------------------------------------
// Literals.

type IntLit struct {
	ExprBase
	Text string // decimal/hex/octal/binary text, parsed by irbuild
}

type FloatLit struct {
	ExprBase
	Text string
}

type BoolLit struct {
	ExprBase
	Value bool
}

type StringLit struct {
	ExprBase
	Value string
}

type NullLit struct{ ExprBase }
type UndefLit struct{ ExprBase }

// -----------------------------------------------------------------------------
// Names and access.

type Ident struct {
	ExprBase
	Name string
}

type FieldAccess struct {
	ExprBase
	Base Expr
	Field string
}

type IndexExpr struct {
	ExprBase
	Base Expr
	Index Expr
}

type AddrOf struct {
	ExprBase
	Operand Expr
}

type Deref struct {
	ExprBase
	Operand Expr
}

// -----------------------------------------------------------------------------
// Operators.

type UnaryOp int

const (
	UnaryNeg UnaryOp = iota
	UnaryNot
	UnaryBitNot
)

type UnaryExpr struct {
	ExprBase
	Op UnaryOp
	Operand Expr
}

type BinaryOp int

const (
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinShl
	BinShr
	BinBitAnd
	BinBitOr
	BinBitXor
	BinBoolAnd
	BinBoolOr
	BinEq
	BinNEq
	BinLT
	BinGT
	BinLTEq
	BinGTEq
)

type BinaryExpr struct {
	ExprBase
	Op BinaryOp
	Lhs, Rhs Expr
	WrapOnOverflow bool
}

type CastExpr struct {
	ExprBase
	Operand Expr
	DestType Type
}

// -----------------------------------------------------------------------------
// Calls.

type CallExpr struct {
	ExprBase
	Callee Expr
	Args []Expr
}

type BuiltinCallExpr struct {
	ExprBase
	Kind BuiltinKind
	Args []Expr
}

// -----------------------------------------------------------------------------
// Aggregate initializers.

type FieldInit struct {
	Name string
	Value Expr
}

type StructInitExpr struct {
	ExprBase
	StructName string
	Fields []FieldInit
	Spread Expr // nil if no `...base`
}

type ArrayInitExpr struct {
	ExprBase
	Elems []Expr
}

// -----------------------------------------------------------------------------
// Control flow.

type Block struct {
	ExprBase
	Stmts []Node
}

type CondBranch struct {
	HeaderDecl *VarDecl
	Cond Expr
	Body *Block
}

func (c *CondBranch) Position() report.Pos { return c.Cond.Position() }

type IfExpr struct {
	ExprBase
	Branches []*CondBranch
	Else *Block // nil if no else
}

type WhileExpr struct {
	ExprBase
	HeaderDecl *VarDecl
	Cond Expr
	Update Expr // nil if no update expression
	Body *Block
}

type ForExpr struct {
	ExprBase
	ElemName string
	Array Expr
	Body *Block
}

type SwitchCase struct {
	// Values is empty for the `else` prong. Ranges are represented as two
	// non-nil bounds in RangeLo/RangeHi.
	Values []Expr
	RangeLo, RangeHi Expr
	Body *Block
}

type SwitchExpr struct {
	ExprBase
	Scrutinee Expr
	Cases []*SwitchCase
}

type BreakStmt struct{ ExprBase }
type ContinueStmt struct{ ExprBase }

type ReturnStmt struct {
	ExprBase
	Value Expr // nil for a bare `return`
}

// DeferKind selects which exit paths re-fire a deferred expression.
type DeferKind int

const (
	DeferUnconditional DeferKind = iota
	DeferErrorOnly
	DeferMaybeNullOnly
)

type DeferStmt struct {
	ExprBase
	Kind DeferKind
	Expr Expr
}

type GotoStmt struct {
	ExprBase
	Label string
}

type LabelStmt struct {
	ExprBase
	Name string
}

type AssignStmt struct {
	ExprBase
	Target Expr
	Value Expr
}

// ExprStmt wraps an expression evaluated purely for its side effects.
type ExprStmt struct {
	ExprBase
	Value Expr
}

// -----------------------------------------------------------------------------

// Pos is a convenience constructor mirroring
// chai/src/syntax.TextPositionOfSpan.
func Pos(file string, sl, sc, el, ec int) report.Pos {
	return report.Pos{File: file, StartLine: sl, StartCol: sc, EndLine: el, EndCol: ec}
}
