package irbuild

import (
	"testing"

	"midc/ast"
	"midc/ir"
)

func exprStmt(e ast.Expr) *ast.ExprStmt {
	return &ast.ExprStmt{ExprBase: ast.ExprBase{Pos: pos()}, Value: e}
}

func block(stmts ...ast.Node) *ast.Block {
	return &ast.Block{ExprBase: ast.ExprBase{Pos: pos()}, Stmts: stmts}
}

func TestBuildIfExprEmitsCondBrAndPhiForBothArms(t *testing.T) {
	ifExpr := &ast.IfExpr{
		ExprBase: ast.ExprBase{Pos: pos()},
		Branches: []*ast.CondBranch{
			{Cond: intLit("1"), Body: block(exprStmt(intLit("10")))},
		},
		Else: block(exprStmt(intLit("20"))),
	}
	fn := &ast.FuncDecl{
		ExprBase: ast.ExprBase{Pos: pos()},
		Name: "f",
		Body: block(&ast.ReturnStmt{ExprBase: ast.ExprBase{Pos: pos()}, Value: ifExpr}),
	}

	b := newTestBuilder()
	ex := b.BuildFunction(fn, 8)
	if b.Sink.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", b.Sink.Messages())
	}

	var sawCondBr, sawPhi bool
	for _, bb := range ex.Blocks {
		for _, in := range bb.Instrs {
			if in.Op == ir.OpCondBr {
				sawCondBr = true
			}
			if in.Op == ir.OpPhi {
				sawPhi = true
				if len(in.Aux.(ir.PhiAux).Incoming) != 2 {
					t.Errorf("if/else phi should join 2 incoming values, got %d", len(in.Aux.(ir.PhiAux).Incoming))
				}
			}
		}
	}
	if !sawCondBr {
		t.Error("an if/else should emit an OpCondBr")
	}
	if !sawPhi {
		t.Error("an if/else where both arms fall through to merge should emit an OpPhi")
	}
}

func TestBuildIfExprWithNoElseAndVoidArmsHasNoPhi(t *testing.T) {
	ifExpr := &ast.IfExpr{
		ExprBase: ast.ExprBase{Pos: pos()},
		Branches: []*ast.CondBranch{
			{Cond: intLit("1"), Body: block(&ast.BreakStmt{ExprBase: ast.ExprBase{Pos: pos()}})},
		},
	}
	fn := &ast.FuncDecl{
		ExprBase: ast.ExprBase{Pos: pos()},
		Name: "f",
		Body: block(
			&ast.WhileExpr{
				ExprBase: ast.ExprBase{Pos: pos()},
				Cond: intLit("1"),
				Body: block(exprStmt(ifExpr)),
			},
			&ast.ReturnStmt{ExprBase: ast.ExprBase{Pos: pos()}},
		),
	}

	b := newTestBuilder()
	ex := b.BuildFunction(fn, 8)
	if b.Sink.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", b.Sink.Messages())
	}
	for _, bb := range ex.Blocks {
		for _, in := range bb.Instrs {
			if in.Op == ir.OpPhi {
				t.Error("an if whose only arm reaching the merge carries no value should not emit an OpPhi")
			}
		}
	}
}

func TestBuildWhileExprEmitsBackEdgeToHeader(t *testing.T) {
	fn := &ast.FuncDecl{
		ExprBase: ast.ExprBase{Pos: pos()},
		Name: "loop",
		Body: block(
			&ast.WhileExpr{
				ExprBase: ast.ExprBase{Pos: pos()},
				Cond: intLit("1"),
				Body: block(&ast.BreakStmt{ExprBase: ast.ExprBase{Pos: pos()}}),
			},
			&ast.ReturnStmt{ExprBase: ast.ExprBase{Pos: pos()}},
		),
	}

	b := newTestBuilder()
	ex := b.BuildFunction(fn, 8)
	if b.Sink.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", b.Sink.Messages())
	}

	var headerBlock *ir.BasicBlock
	for _, bb := range ex.Blocks {
		if bb.NameHint == "while_header" {
			headerBlock = bb
		}
	}
	if headerBlock == nil {
		t.Fatal("expected a while_header block")
	}

	backEdges := 0
	for _, bb := range ex.Blocks {
		for _, in := range bb.Instrs {
			if in.Op == ir.OpBr && in.Aux.(ir.BrAux).Target == headerBlock {
				backEdges++
			}
		}
	}
	if backEdges == 0 {
		t.Error("a while loop should branch back into its header block")
	}
}

func TestBuildWhileExprBreakTargetsExitBlock(t *testing.T) {
	fn := &ast.FuncDecl{
		ExprBase: ast.ExprBase{Pos: pos()},
		Name: "loop",
		Body: block(
			&ast.WhileExpr{
				ExprBase: ast.ExprBase{Pos: pos()},
				Cond: intLit("1"),
				Body: block(&ast.BreakStmt{ExprBase: ast.ExprBase{Pos: pos()}}),
			},
			&ast.ReturnStmt{ExprBase: ast.ExprBase{Pos: pos()}},
		),
	}

	b := newTestBuilder()
	ex := b.BuildFunction(fn, 8)
	if b.Sink.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", b.Sink.Messages())
	}

	var exitBlock *ir.BasicBlock
	for _, bb := range ex.Blocks {
		if bb.NameHint == "while_exit" {
			exitBlock = bb
		}
	}
	if exitBlock == nil {
		t.Fatal("expected a while_exit block")
	}

	foundBreakBr := false
	for _, bb := range ex.Blocks {
		if bb.NameHint != "while_body" {
			continue
		}
		for _, in := range bb.Instrs {
			if in.Op == ir.OpBr && in.Aux.(ir.BrAux).Target == exitBlock {
				foundBreakBr = true
			}
		}
	}
	if !foundBreakBr {
		t.Error("'break' inside a while body should branch to the loop's exit block")
	}
}

func TestBuildForExprBuildsInductionVariable(t *testing.T) {
	fn := &ast.FuncDecl{
		ExprBase: ast.ExprBase{Pos: pos()},
		Name: "loop",
		Params: []*ast.VarDecl{{ExprBase: ast.ExprBase{Pos: pos()}, Name: "xs"}},
		Body: block(
			&ast.ForExpr{
				ExprBase: ast.ExprBase{Pos: pos()},
				ElemName: "x",
				Array: ident("xs"),
				Body: block(exprStmt(ident("x"))),
			},
			&ast.ReturnStmt{ExprBase: ast.ExprBase{Pos: pos()}},
		),
	}

	b := newTestBuilder()
	ex := b.BuildFunction(fn, 8)
	if b.Sink.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", b.Sink.Messages())
	}

	var sawArrayLen, sawElemPtr bool
	for _, bb := range ex.Blocks {
		for _, in := range bb.Instrs {
			if in.Op == ir.OpArrayLen {
				sawArrayLen = true
			}
			if in.Op == ir.OpElemPtr {
				sawElemPtr = true
			}
		}
	}
	if !sawArrayLen {
		t.Error("a for-in loop should bound its induction variable with OpArrayLen")
	}
	if !sawElemPtr {
		t.Error("a for-in loop should index the array via OpElemPtr")
	}
}

func TestBuildSwitchExprWithoutElseSynthesizesUnreachableFallback(t *testing.T) {
	sw := &ast.SwitchExpr{
		ExprBase: ast.ExprBase{Pos: pos()},
		Scrutinee: intLit("1"),
		Cases: []*ast.SwitchCase{
			{Values: []ast.Expr{intLit("1")}, Body: block(exprStmt(intLit("100")))},
		},
	}
	fn := &ast.FuncDecl{
		ExprBase: ast.ExprBase{Pos: pos()},
		Name: "f",
		Body: block(&ast.ReturnStmt{ExprBase: ast.ExprBase{Pos: pos()}, Value: sw}),
	}

	b := newTestBuilder()
	ex := b.BuildFunction(fn, 8)
	if b.Sink.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", b.Sink.Messages())
	}

	var swInstr *ir.Instruction
	for _, bb := range ex.Blocks {
		for _, in := range bb.Instrs {
			if in.Op == ir.OpSwitchBr {
				swInstr = in
			}
		}
	}
	if swInstr == nil {
		t.Fatal("expected an OpSwitchBr instruction")
	}
	aux := swInstr.Aux.(ir.SwitchBrAux)
	if aux.ElseIdx < 0 || aux.ElseIdx >= len(aux.Cases) {
		t.Fatalf("a switch with no explicit else should synthesize a fallback case, ElseIdx=%d", aux.ElseIdx)
	}
	fallback := aux.Cases[aux.ElseIdx].Target
	foundUnreachable := false
	for _, in := range fallback.Instrs {
		if in.Op == ir.OpUnreachable {
			foundUnreachable = true
		}
	}
	if !foundUnreachable {
		t.Error("the synthesized fallback arm should be an unreachable block")
	}
}

func TestBuildSwitchExprRangeCaseEmitsSwitchTargetMarker(t *testing.T) {
	sw := &ast.SwitchExpr{
		ExprBase: ast.ExprBase{Pos: pos()},
		Scrutinee: intLit("5"),
		Cases: []*ast.SwitchCase{
			{RangeLo: intLit("0"), RangeHi: intLit("10"), Body: block(exprStmt(intLit("1")))},
			{Body: block(exprStmt(intLit("2")))},
		},
	}
	fn := &ast.FuncDecl{
		ExprBase: ast.ExprBase{Pos: pos()},
		Name: "f",
		Body: block(&ast.ReturnStmt{ExprBase: ast.ExprBase{Pos: pos()}, Value: sw}),
	}

	b := newTestBuilder()
	ex := b.BuildFunction(fn, 8)
	if b.Sink.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", b.Sink.Messages())
	}

	foundMarker := false
	for _, bb := range ex.Blocks {
		for _, in := range bb.Instrs {
			if in.Op == ir.OpSwitchTarget {
				foundMarker = true
			}
		}
	}
	if !foundMarker {
		t.Error("a range switch case should expand into a boolean test feeding an OpSwitchTarget marker")
	}
}
