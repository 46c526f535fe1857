package irbuild

import (
	"midc/ast"
	"midc/bignum"
	"midc/ir"
	"midc/report"
	"midc/types"
	"midc/value"
)

// buildIfExpr lowers an if/else-if/else chain into a cascade of CondBr
// blocks joined by a Phi in the merge block when every arm that reaches the
// merge produces a value; an arm that diverges contributes no incoming
// edge. A missing final `else` becomes an empty arm falling straight to the
// merge with no value, so such a chain yields no phi; the builder does not
// check whether the result of such a chain is used.
func (b *Builder) buildIfExpr(n *ast.IfExpr) *ir.Instruction {
	merge := b.newBlock("if_merge")

	type incoming struct {
		block *ir.BasicBlock
		val *ir.Instruction
	}
	var incomings []incoming

	for _, br := range n.Branches {
		condScope := b.scopeStack[len(b.scopeStack)-1]
		if br.HeaderDecl != nil {
			condScope = ast.NewScope(condScope, br, condScope.OwningFunc)
			b.pushScope(condScope)
			b.buildVarDecl(br.HeaderDecl, condScope)
		}

		cond := b.buildExpr(br.Cond, RValue)
		thenBlock := b.newBlock("if_then")
		elseBlock := b.newBlock("if_else")

		condBr := b.emit(ir.OpCondBr, br.Cond.Position())
		condBr.Aux = ir.CondBrAux{ThenBlock: thenBlock, ElseBlock: elseBlock}
		b.use(condBr, cond)
		thenBlock.RefCount++
		elseBlock.RefCount++

		b.setCurrent(thenBlock)
		b.buildBlock(br.Body)
		if !b.cur.IsTerminated() {
			last := lastValue(b.cur)
			brTo := b.emit(ir.OpBr, br.Body.Position())
			brTo.Aux = ir.BrAux{Target: merge}
			merge.RefCount++
			incomings = append(incomings, incoming{block: b.cur, val: last})
		}

		if br.HeaderDecl != nil {
			b.popScope(condScope)
		}

		b.setCurrent(elseBlock)
	}

	if n.Else != nil {
		b.buildBlock(n.Else)
	}
	if !b.cur.IsTerminated() {
		last := lastValue(b.cur)
		brTo := b.emit(ir.OpBr, n.Position())
		brTo.Aux = ir.BrAux{Target: merge}
		merge.RefCount++
		incomings = append(incomings, incoming{block: b.cur, val: last})
	}

	b.setCurrent(merge)

	if len(incomings) == 0 {
		// Every arm diverged (return/break/continue/unreachable); the merge
		// block is itself dead. The analyzer prunes it.
		un := b.emit(ir.OpUnreachable, n.Position())
		return un
	}

	for _, inc := range incomings {
		if inc.val == nil {
			// An arm reached the merge without a value (void context).
			return b.emit(ir.OpConst, n.Position())
		}
	}

	phi := b.emit(ir.OpPhi, n.Position())
	aux := ir.PhiAux{}
	for _, inc := range incomings {
		if inc.val != nil {
			b.use(phi, inc.val)
		}
		aux.Incoming = append(aux.Incoming, ir.PhiIncoming{Block: inc.block, Value: inc.val})
	}
	phi.Aux = aux
	return phi
}

// lastValue returns the last non-terminator instruction of a block, used as
// the branch's contributed value for an if/switch merge when the caller did
// not wrap the block's tail expression explicitly. nil when the block has
// no contributing value (a statement-only branch in void context).
func lastValue(bb *ir.BasicBlock) *ir.Instruction {
	for i := len(bb.Instrs) - 1; i >= 0; i-- {
		if bb.Instrs[i].Op.SideEffecting() {
			continue
		}
		return bb.Instrs[i]
	}
	return nil
}

// buildWhileExpr lowers `while (cond): (update) body` into a three-block
// loop -- header (tests cond), body, and a continue block that runs the
// update expression before branching back to header; that back edge is an
// unconditional Br from the continue block to header.
func (b *Builder) buildWhileExpr(n *ast.WhileExpr) *ir.Instruction {
	outerScope := b.scopeStack[len(b.scopeStack)-1]
	headerScope := outerScope
	if n.HeaderDecl != nil {
		headerScope = ast.NewScope(outerScope, n, outerScope.OwningFunc)
		b.pushScope(headerScope)
	}

	header := b.newBlock("while_header")
	body := b.newBlock("while_body")
	contBlock := b.newBlock("while_continue")
	exit := b.newBlock("while_exit")

	brHeader := b.emit(ir.OpBr, n.Position())
	brHeader.Aux = ir.BrAux{Target: header}
	header.RefCount++

	b.setCurrent(header)
	if n.HeaderDecl != nil {
		b.buildVarDecl(n.HeaderDecl, headerScope)
	}
	cond := b.buildExpr(n.Cond, RValue)
	condBr := b.emit(ir.OpCondBr, n.Cond.Position())
	condBr.Aux = ir.CondBrAux{ThenBlock: body, ElseBlock: exit}
	b.use(condBr, cond)
	body.RefCount++
	exit.RefCount++

	b.breakStack = append(b.breakStack, exit)
	b.continueStack = append(b.continueStack, contBlock)
	b.loopScopeStack = append(b.loopScopeStack, headerScope)

	b.setCurrent(body)
	b.buildBlock(n.Body)
	if !b.cur.IsTerminated() {
		brCont := b.emit(ir.OpBr, n.Position())
		brCont.Aux = ir.BrAux{Target: contBlock}
		contBlock.RefCount++
	}

	b.setCurrent(contBlock)
	if n.Update != nil {
		b.buildExpr(n.Update, RValue)
	}
	backEdge := b.emit(ir.OpBr, n.Position())
	backEdge.Aux = ir.BrAux{Target: header}
	header.RefCount++

	b.breakStack = b.breakStack[:len(b.breakStack)-1]
	b.continueStack = b.continueStack[:len(b.continueStack)-1]
	b.loopScopeStack = b.loopScopeStack[:len(b.loopScopeStack)-1]

	if n.HeaderDecl != nil {
		b.popScope(headerScope)
	}

	b.setCurrent(exit)
	return b.emit(ir.OpConst, n.Position())
}

// buildForExpr lowers `for (elemName in array) body` into an induction-
// variable while-loop the way a source `for` desugars: the analyzer
// resolves the array's element type via TypeOf/ToPtrType/PtrTypeChild and
// the bound via ArrayLen.
func (b *Builder) buildForExpr(n *ast.ForExpr) *ir.Instruction {
	arr := b.buildExpr(n.Array, LValue)

	typeOf := b.emit(ir.OpTypeOf, n.Position())
	b.use(typeOf, arr)
	ptrType := b.emit(ir.OpToPtrType, n.Position())
	b.use(ptrType, typeOf)
	elemType := b.emit(ir.OpPtrTypeChild, n.Position())
	b.use(elemType, ptrType)
	_ = elemType

	arrLen := b.emit(ir.OpArrayLen, n.Position())
	b.use(arrLen, arr)

	outerScope := b.scopeStack[len(b.scopeStack)-1]
	loopScope := ast.NewScope(outerScope, n, outerScope.OwningFunc)
	b.pushScope(loopScope)

	idxVar := &ast.VarDecl{Name: "$idx"}
	idxIdx := b.declareVar(idxVar, loopScope, false)
	loopScope.Vars[idxVar.Name] = idxVar
	b.emit(ir.OpDeclVar, n.Position()).Aux = ir.DeclVarAux{VarIndex: idxIdx}
	idxPtr := b.emit(ir.OpVarPtr, n.Position())
	idxPtr.Aux = ir.VarPtrAux{VarIndex: idxIdx}
	zero := b.emit(ir.OpConst, n.Position())
	zero.Val = value.MakeInt(types.LiteralIntType{}, bignum.NewInt(0))
	initStore := b.emit(ir.OpStorePtr, n.Position())
	b.use(initStore, idxPtr)
	b.use(initStore, zero)

	header := b.newBlock("for_header")
	body := b.newBlock("for_body")
	contBlock := b.newBlock("for_continue")
	exit := b.newBlock("for_exit")

	toHeader := b.emit(ir.OpBr, n.Position())
	toHeader.Aux = ir.BrAux{Target: header}
	header.RefCount++

	b.setCurrent(header)
	idxPtrH := b.emit(ir.OpVarPtr, n.Position())
	idxPtrH.Aux = ir.VarPtrAux{VarIndex: idxIdx}
	idxVal := b.emit(ir.OpLoadPtr, n.Position())
	b.use(idxVal, idxPtrH)
	cmp := b.emit(ir.OpBinOp, n.Position())
	cmp.Aux = ir.BinOpAux{Kind: ir.BinLT}
	b.use(cmp, idxVal)
	b.use(cmp, arrLen)
	condBr := b.emit(ir.OpCondBr, n.Position())
	condBr.Aux = ir.CondBrAux{ThenBlock: body, ElseBlock: exit}
	b.use(condBr, cmp)
	body.RefCount++
	exit.RefCount++

	b.breakStack = append(b.breakStack, exit)
	b.continueStack = append(b.continueStack, contBlock)
	b.loopScopeStack = append(b.loopScopeStack, loopScope)

	b.setCurrent(body)
	elemPtr := b.emit(ir.OpElemPtr, n.Position())
	elemPtr.Aux = ir.ElemPtrAux{}
	b.use(elemPtr, arr)
	idxValBody := b.emit(ir.OpLoadPtr, n.Position())
	idxPtrBody := b.emit(ir.OpVarPtr, n.Position())
	idxPtrBody.Aux = ir.VarPtrAux{VarIndex: idxIdx}
	b.use(idxValBody, idxPtrBody)
	b.use(elemPtr, idxValBody)

	elemVar := &ast.VarDecl{Name: n.ElemName}
	elemIdx := b.declareVar(elemVar, loopScope, false)
	loopScope.Vars[elemVar.Name] = elemVar
	b.Ex.Vars[elemIdx].MemSlotIndex = ir.NoSlot
	b.emit(ir.OpDeclVar, n.Position()).Aux = ir.DeclVarAux{VarIndex: elemIdx}
	elemVarPtr := b.emit(ir.OpVarPtr, n.Position())
	elemVarPtr.Aux = ir.VarPtrAux{VarIndex: elemIdx}
	elemLoad := b.emit(ir.OpLoadPtr, n.Position())
	b.use(elemLoad, elemPtr)
	elemStore := b.emit(ir.OpStorePtr, n.Position())
	b.use(elemStore, elemVarPtr)
	b.use(elemStore, elemLoad)

	b.buildBlock(n.Body)
	if !b.cur.IsTerminated() {
		brCont := b.emit(ir.OpBr, n.Position())
		brCont.Aux = ir.BrAux{Target: contBlock}
		contBlock.RefCount++
	}

	b.setCurrent(contBlock)
	incPtr := b.emit(ir.OpVarPtr, n.Position())
	incPtr.Aux = ir.VarPtrAux{VarIndex: idxIdx}
	incLoad := b.emit(ir.OpLoadPtr, n.Position())
	b.use(incLoad, incPtr)
	one := b.emit(ir.OpConst, n.Position())
	one.Val = value.MakeInt(types.LiteralIntType{}, bignum.NewInt(1))
	inc := b.emit(ir.OpBinOp, n.Position())
	inc.Aux = ir.BinOpAux{Kind: ir.BinAdd}
	b.use(inc, incLoad)
	b.use(inc, one)
	incStorePtr := b.emit(ir.OpVarPtr, n.Position())
	incStorePtr.Aux = ir.VarPtrAux{VarIndex: idxIdx}
	incStore := b.emit(ir.OpStorePtr, n.Position())
	b.use(incStore, incStorePtr)
	b.use(incStore, inc)
	backEdge := b.emit(ir.OpBr, n.Position())
	backEdge.Aux = ir.BrAux{Target: header}
	header.RefCount++

	b.breakStack = b.breakStack[:len(b.breakStack)-1]
	b.continueStack = b.continueStack[:len(b.continueStack)-1]
	b.loopScopeStack = b.loopScopeStack[:len(b.loopScopeStack)-1]
	b.popScope(loopScope)

	b.setCurrent(exit)
	return b.emit(ir.OpConst, n.Position())
}

// buildSwitchExpr lowers a switch into a SwitchBr plus, for range arms, a
// pre-expansion into `>=`/`<=` chains feeding SwitchTarget markers, and
// enforces the exactly-one-else rule.
func (b *Builder) buildSwitchExpr(n *ast.SwitchExpr) *ir.Instruction {
	scrutinee := b.buildExpr(n.Scrutinee, RValue)
	merge := b.newBlock("switch_merge")

	type incoming struct {
		block *ir.BasicBlock
		val *ir.Instruction
	}
	var incomings []incoming

	sw := b.emit(ir.OpSwitchBr, n.Position())
	b.use(sw, scrutinee)

	var cases []ir.SwitchCase
	elseIdx := -1
	fallbackBlock := b.newBlock("switch_else")

	for _, c := range n.Cases {
		target := b.newBlock("switch_case")
		target.RefCount++

		if len(c.Values) == 0 && c.RangeLo == nil {
			if elseIdx >= 0 {
				b.Sink.Error(report.KindStructural, c.Body.Position(), "multiple 'else' prongs in switch")
			}
			elseIdx = len(cases)
			cases = append(cases, ir.SwitchCase{Value: nil, Target: target})
		} else if c.RangeLo != nil {
			// Range arms are expanded into a boolean test feeding a
			// SwitchTarget marker rather than a direct SwitchBr case, since
			// SwitchBr's cases are single-value matches.
			lo := b.buildExpr(c.RangeLo, RValue)
			hi := b.buildExpr(c.RangeHi, RValue)
			geLo := b.emit(ir.OpBinOp, c.RangeLo.Position())
			geLo.Aux = ir.BinOpAux{Kind: ir.BinGTEq}
			b.use(geLo, scrutinee)
			b.use(geLo, lo)
			leHi := b.emit(ir.OpBinOp, c.RangeHi.Position())
			leHi.Aux = ir.BinOpAux{Kind: ir.BinLTEq}
			b.use(leHi, scrutinee)
			b.use(leHi, hi)
			inRange := b.emit(ir.OpBinOp, c.RangeLo.Position())
			inRange.Aux = ir.BinOpAux{Kind: ir.BinBoolAnd}
			b.use(inRange, geLo)
			b.use(inRange, leHi)
			marker := b.emit(ir.OpSwitchTarget, c.RangeLo.Position())
			b.use(marker, inRange)
			cases = append(cases, ir.SwitchCase{Value: marker, Target: target})
		} else {
			for _, v := range c.Values {
				val := b.buildExpr(v, RValue)
				cases = append(cases, ir.SwitchCase{Value: val, Target: target})
			}
		}

		b.setCurrent(target)
		b.buildBlock(c.Body)
		if !b.cur.IsTerminated() {
			last := lastValue(b.cur)
			brTo := b.emit(ir.OpBr, c.Body.Position())
			brTo.Aux = ir.BrAux{Target: merge}
			merge.RefCount++
			incomings = append(incomings, incoming{block: b.cur, val: last})
		}
	}

	if elseIdx < 0 {
		fallbackBlock.RefCount++
		elseIdx = len(cases)
		cases = append(cases, ir.SwitchCase{Value: nil, Target: fallbackBlock})
		b.setCurrent(fallbackBlock)
		b.emit(ir.OpUnreachable, n.Position())
	}

	sw.Aux = ir.SwitchBrAux{Cases: cases, ElseIdx: elseIdx}

	b.setCurrent(merge)
	if len(incomings) == 0 {
		return b.emit(ir.OpUnreachable, n.Position())
	}
	phi := b.emit(ir.OpPhi, n.Position())
	aux := ir.PhiAux{}
	for _, inc := range incomings {
		if inc.val != nil {
			b.use(phi, inc.val)
		}
		aux.Incoming = append(aux.Incoming, ir.PhiIncoming{Block: inc.block, Value: inc.val})
	}
	phi.Aux = aux
	return phi
}
