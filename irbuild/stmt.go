package irbuild

import (
	"midc/ast"
	"midc/ir"
	"midc/report"
)

// buildBlock lowers one braced statement sequence, opening a child scope for
// the block's own declarations and running that scope's defers on a normal
// fallthrough exit.
func (b *Builder) buildBlock(blk *ast.Block) {
	parent := b.scopeStack[len(b.scopeStack)-1]
	scope := ast.NewScope(parent, blk, parent.OwningFunc)
	b.pushScope(scope)

	for _, stmt := range blk.Stmts {
		if b.cur.IsTerminated() {
			// Dead code after an early exit emits nothing, except a label,
			// which opens a fresh block that a goto can still reach.
			if _, isLabel := stmt.(*ast.LabelStmt); !isLabel {
				continue
			}
		}
		b.buildStmt(stmt, scope)
	}

	if !b.cur.IsTerminated() {
		b.runDefersInScope(scope, exitFallthrough)
	}
	b.popScope(scope)
}

func (b *Builder) buildStmt(n ast.Node, scope *ast.Scope) {
	switch s := n.(type) {
	case *ast.VarDecl:
		b.buildVarDecl(s, scope)
	case *ast.AssignStmt:
		b.buildAssign(s)
	case *ast.ExprStmt:
		b.buildExpr(s.Value, RValue)
	case *ast.ReturnStmt:
		b.buildReturn(s)
	case *ast.BreakStmt:
		b.buildBreak(s)
	case *ast.ContinueStmt:
		b.buildContinue(s)
	case *ast.DeferStmt:
		b.registerDefer(scope, s.Kind, s.Expr)
	case *ast.GotoStmt:
		b.buildGoto(s)
	case *ast.LabelStmt:
		b.buildLabel(s)
	case *ast.Block:
		b.buildBlock(s)
	case ast.Expr:
		// A bare control-flow expression used as a statement (if/while/for/
		// switch with no result consumed).
		b.buildExpr(s, RValue)
	default:
		b.Sink.Error(report.KindStructural, n.Position(), "unsupported statement node %T", n)
	}
}

func (b *Builder) buildVarDecl(vd *ast.VarDecl, scope *ast.Scope) {
	idx := b.declareVar(vd, scope, false)
	scope.Vars[vd.Name] = vd

	decl := b.emit(ir.OpDeclVar, vd.Pos)
	decl.Aux = ir.DeclVarAux{VarIndex: idx}

	ptr := b.emit(ir.OpVarPtr, vd.Pos)
	ptr.Aux = ir.VarPtrAux{VarIndex: idx}

	if vd.Init != nil {
		val := b.buildExpr(vd.Init, RValue)
		store := b.emit(ir.OpStorePtr, vd.Pos)
		b.use(store, ptr)
		b.use(store, val)
	}
}

func (b *Builder) buildAssign(s *ast.AssignStmt) {
	ptr := b.buildExpr(s.Target, LValue)
	val := b.buildExpr(s.Value, RValue)
	store := b.emit(ir.OpStorePtr, s.Pos)
	b.use(store, ptr)
	b.use(store, val)
}

func (b *Builder) buildReturn(s *ast.ReturnStmt) {
	var result *ir.Instruction
	if s.Value != nil {
		result = b.buildExpr(s.Value, RValue)
	}
	if len(b.scopeStack) > 0 {
		b.runDefers(b.scopeStack[len(b.scopeStack)-1], exitReturn)
	}
	ret := b.emit(ir.OpReturn, s.Pos)
	if result != nil {
		b.use(ret, result)
	}
}

func (b *Builder) buildBreak(s *ast.BreakStmt) {
	if len(b.breakStack) == 0 {
		b.Sink.Error(report.KindStructural, s.Pos, "'break' outside a loop")
		b.emit(ir.OpUnreachable, s.Pos)
		return
	}
	target := b.breakStack[len(b.breakStack)-1]
	if len(b.scopeStack) > 0 {
		b.runDefersThrough(b.scopeStack[len(b.scopeStack)-1], b.loopScopeStack[len(b.loopScopeStack)-1], exitBreak)
	}
	br := b.emit(ir.OpBr, s.Pos)
	br.Aux = ir.BrAux{Target: target}
	target.RefCount++
}

func (b *Builder) buildContinue(s *ast.ContinueStmt) {
	if len(b.continueStack) == 0 {
		b.Sink.Error(report.KindStructural, s.Pos, "'continue' outside a loop")
		b.emit(ir.OpUnreachable, s.Pos)
		return
	}
	target := b.continueStack[len(b.continueStack)-1]
	if len(b.scopeStack) > 0 {
		b.runDefersThrough(b.scopeStack[len(b.scopeStack)-1], b.loopScopeStack[len(b.loopScopeStack)-1], exitContinue)
	}
	br := b.emit(ir.OpBr, s.Pos)
	br.Aux = ir.BrAux{Target: target}
	target.RefCount++
}

func (b *Builder) buildGoto(s *ast.GotoStmt) {
	placeholder := b.emit(ir.OpUnreachable, s.Pos)
	b.gotos = append(b.gotos, pendingGoto{Label: s.Label, Placeholder: placeholder, Pos: s.Pos})
}

func (b *Builder) buildLabel(s *ast.LabelStmt) {
	// A label placed mid-block splits control flow the same way a loop head
	// does: fall through from the current block into a fresh one so the
	// label always names a block boundary.
	if !b.cur.IsTerminated() {
		next := b.newBlock(s.Name)
		br := b.emit(ir.OpBr, s.Pos)
		br.Aux = ir.BrAux{Target: next}
		next.RefCount++
		b.setCurrent(next)
	} else {
		b.setCurrent(b.newBlock(s.Name))
	}
	b.labelBlocks[s.Name] = b.cur
}
