// Package ast defines the narrow front-end interfaces this module consumes:
// a type-checked AST whose nodes carry source ranges and pre-assigned
// scopes, plus the primitive-type, builtin-function, and import tables.
// Nothing in this package performs lexing, parsing, or symbol resolution --
// those are external collaborators. Grounded on chai/src/syntax.ASTNode's
// minimal Position() contract and chai/src/sem.HIRExpr's ExprBase/category
// split.
package ast

import (
	"midc/report"
	"midc/types"
)

// Node is the parent interface for every AST node the builder walks.
type Node interface {
	Position() report.Pos
}

// Category mirrors chai/src/sem.HIRExpr's LValue/RValue split. The
// builder's AddressOf purpose is not a Category; it exists only on
// irbuild.Purpose.
type Category int

const (
	RValue Category = iota
	LValue
)

// Expr is the parent interface for every expression node.
type Expr interface {
	Node
	// DeclaredType is the type annotation attached by the front-end, if
	// any (e.g. a `: T` on a var decl or param). It is types.Type(nil) when
	// no annotation exists and the analyzer must infer the type itself.
	DeclaredType() types.Type
}

// ExprBase is embedded by every concrete Expr, grounded on
// chai/src/sem.HIRExpr's ExprBase.
type ExprBase struct {
	Pos report.Pos
	Declared types.Type
}

func (e ExprBase) Position() report.Pos { return e.Pos }
func (e ExprBase) DeclaredType() types.Type { return e.Declared }

// -----------------------------------------------------------------------------
// Scopes.

// Scope is the front-end's block context: parent, defining node, owning
// function, variable table, label table, and safety-setting status.
type Scope struct {
	Parent *Scope
	DefiningNode Node
	OwningFunc *FuncDecl // nil for the top-level/global scope
	Vars map[string]*VarDecl
	Labels map[string]*Label
	SafetyOn bool
}

// NewScope creates a child scope of parent.
func NewScope(parent *Scope, defining Node, fn *FuncDecl) *Scope {
	safety := true
	if parent != nil {
		safety = parent.SafetyOn
	}
	return &Scope{
		Parent: parent,
		DefiningNode: defining,
		OwningFunc: fn,
		Vars: make(map[string]*VarDecl),
		Labels: make(map[string]*Label),
		SafetyOn: safety,
	}
}

// Lookup walks the scope chain outward for a variable declaration.
func (s *Scope) Lookup(name string) (*VarDecl, bool) {
	for cur := s; cur != nil; cur = cur.Parent {
		if v, ok := cur.Vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// -----------------------------------------------------------------------------
// Tables provided read-only by the front-end.

// PrimitiveTable maps primitive type names ("i32", "bool",...) to their
// resolved types.Type.
type PrimitiveTable map[string]types.Type

// BuiltinTable enumerates recognized builtin call names.
type BuiltinKind int

const (
	BuiltinTypeOf BuiltinKind = iota
	BuiltinSizeOf
	BuiltinImport
	BuiltinSetFnTest
	BuiltinSetFnVisible
	BuiltinSetDebugSafety
	BuiltinCompileVar
	BuiltinClz
	BuiltinCtz
	BuiltinStaticEval
)

type BuiltinTable map[string]BuiltinKind

// ImportTable maps import paths to the namespace symbols they expose.
type ImportTable map[string]map[string]types.Type
