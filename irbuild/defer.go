package irbuild

import "midc/ast"

// exitCondition names the four ways control can leave a scope. It is
// passed to deferFires, which does not distinguish between them.
type exitCondition int

const (
	exitFallthrough exitCondition = iota
	exitReturn
	exitBreak
	exitContinue
)

// registerDefer appends expr to scope's defer list under the given kind.
func (b *Builder) registerDefer(scope *ast.Scope, kind ast.DeferKind, expr ast.Expr) {
	b.deferLists[scope] = append(b.deferLists[scope], deferEntry{Kind: kind, Expr: expr})
}

// runDefersThrough walks scopes from inner to outer starting at innermost,
// re-emitting matching defer expressions, stopping just before (and not
// including) stopAt -- used by break/continue which only unwind as far as
// the loop's own scope.
func (b *Builder) runDefersThrough(innermost *ast.Scope, stopAt *ast.Scope, cond exitCondition) {
	for s := innermost; s != nil && s != stopAt; s = s.Parent {
		b.runDefersInScope(s, cond)
	}
}

// runDefers walks every active scope from inner to outer.
func (b *Builder) runDefers(innermost *ast.Scope, cond exitCondition) {
	b.runDefersThrough(innermost, nil, cond)
}

func (b *Builder) runDefersInScope(s *ast.Scope, cond exitCondition) {
	entries := b.deferLists[s]
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if !deferFires(e.Kind, cond) {
			continue
		}
		b.buildExpr(e.Expr, RValue)
	}
}

// deferFires reports whether a defer of the given kind executes on the
// given exit condition. Every kind fires on every exit condition:
// error-only and maybe(null)-only defers are re-emitted unconditionally,
// exactly like unconditional ones, and the emitted IR keeps no record of a
// defer's kind, so nothing downstream tells them apart.
func deferFires(kind ast.DeferKind, cond exitCondition) bool {
	switch kind {
	case ast.DeferUnconditional:
		return true
	case ast.DeferErrorOnly, ast.DeferMaybeNullOnly:
		return true
	default:
		return true
	}
}
