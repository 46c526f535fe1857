package analyze

import (
	"midc/coerce"
	"midc/ir"
	"midc/report"
	"midc/types"
	"midc/value"
)

// noteInlineBackward attributes a compile-time-inlined branch to
// the backward-branch quota and reports whether
// analysis of the current chain should stop.
func (a *Analyzer) noteInlineBackward(old *ir.Instruction, from, to *ir.BasicBlock) bool {
	isBackward, exceeded := a.Interp.NoteBackwardBranch(from, to)
	if isBackward && exceeded {
		a.errorf(old, report.KindStructural, "backward-branch quota exceeded during compile-time evaluation")
		return true
	}
	return false
}

// resolveBr always emits a genuine branch: an unconditional jump carries no
// compile-time decision to inline away.
func (a *Analyzer) resolveBr(old *ir.Instruction) {
	aux, _ := old.Aux.(ir.BrAux)
	target := a.blockFor(aux.Target)
	target.RefCount++
	a.Interp.Enqueue(aux.Target)

	n := a.emit(ir.OpBr, old.Pos)
	n.Aux = ir.BrAux{Target: target}
	n.ResultType = types.TheUnreachable
	a.link(old, n)
}

// resolveCondBr either splices the statically-chosen arm's old block into
// the current chain (inlined=true, next is that old block) or emits a real
// CondBr and hands both arms to the BFS queue (inlined=false).
func (a *Analyzer) resolveCondBr(old *ir.Instruction, fromOld *ir.BasicBlock) (next *ir.BasicBlock, inlined bool) {
	aux, _ := old.Aux.(ir.CondBrAux)
	cond := a.operand(old, 0)

	if cond.Val.IsStatic() {
		chosenOld := aux.ThenBlock
		if !cond.Val.Bool {
			chosenOld = aux.ElseBlock
		}
		if a.noteInlineBackward(old, fromOld, chosenOld) {
			return nil, false
		}
		a.Interp.EnqueueInlined(chosenOld, fromOld)
		return chosenOld, true
	}

	coerced, res := coerce.ImplicitCast(cond.Val, types.TheBool)
	if res == coerce.No {
		a.errorf(old, report.KindTypeMismatch, "branch condition must be a 'bool'")
		return nil, false
	}
	condNew := a.withType(old.Pos, cond, coerced)

	thenNew := a.blockFor(aux.ThenBlock)
	elseNew := a.blockFor(aux.ElseBlock)
	thenNew.RefCount++
	elseNew.RefCount++
	a.Interp.Enqueue(aux.ThenBlock)
	a.Interp.Enqueue(aux.ElseBlock)

	n := a.emit(ir.OpCondBr, old.Pos)
	a.use(n, condNew)
	n.Aux = ir.CondBrAux{ThenBlock: thenNew, ElseBlock: elseNew}
	n.ResultType = types.TheUnreachable
	a.link(old, n)
	return nil, false
}

func (a *Analyzer) resolveSwitchBr(old *ir.Instruction, fromOld *ir.BasicBlock) (next *ir.BasicBlock, inlined bool) {
	aux, _ := old.Aux.(ir.SwitchBrAux)
	scrutinee := a.operand(old, 0)

	if scrutinee.Val.IsStatic() {
		chosenOld := a.matchSwitchCase(aux, scrutinee.Val)
		if chosenOld == nil {
			a.errorf(old, report.KindStructural, "no switch arm matches the compile-time value and no 'else' arm is present")
			return nil, false
		}
		if a.noteInlineBackward(old, fromOld, chosenOld) {
			return nil, false
		}
		a.Interp.EnqueueInlined(chosenOld, fromOld)
		return chosenOld, true
	}

	newCases := make([]ir.SwitchCase, len(aux.Cases))
	seen := map[*ir.BasicBlock]bool{}
	for i, c := range aux.Cases {
		var newVal *ir.Instruction
		if c.Value != nil {
			op := a.resolve(c.Value)
			coerced, res := coerce.ImplicitCast(op.Val, scrutinee.ResultType)
			if res == coerce.No {
				a.errorf(old, report.KindTypeMismatch, "switch arm value has an incompatible type")
				return nil, false
			}
			newVal = a.withType(old.Pos, op, coerced)
		}
		newTarget := a.blockFor(c.Target)
		newCases[i] = ir.SwitchCase{Value: newVal, Target: newTarget}
		if !seen[c.Target] {
			seen[c.Target] = true
			newTarget.RefCount++
			a.Interp.Enqueue(c.Target)
		}
	}

	n := a.emit(ir.OpSwitchBr, old.Pos)
	a.use(n, scrutinee)
	n.Aux = ir.SwitchBrAux{Cases: newCases, ElseIdx: aux.ElseIdx}
	n.ResultType = types.TheUnreachable
	a.link(old, n)
	return nil, false
}

func (a *Analyzer) matchSwitchCase(aux ir.SwitchBrAux, scrutinee value.Value) *ir.BasicBlock {
	for i, c := range aux.Cases {
		if i == aux.ElseIdx || c.Value == nil {
			continue
		}
		cv := a.resolve(c.Value)
		if cv.Val.IsStatic() && value.Equal(cv.Val, scrutinee) {
			return c.Target
		}
	}
	if aux.ElseIdx >= 0 && aux.ElseIdx < len(aux.Cases) {
		return aux.Cases[aux.ElseIdx].Target
	}
	return nil
}

func (a *Analyzer) analyzeSwitchTarget(old *ir.Instruction) {
	n := a.emit(ir.OpSwitchTarget, old.Pos)
	n.ResultType = types.TheVoid
	a.link(old, n)
}

// analyzeSwitchVar passes the scrutinee through unchanged; it contributes
// no instruction of its own.
func (a *Analyzer) analyzeSwitchVar(old *ir.Instruction) {
	operand := a.operand(old, 0)
	a.link(old, operand)
}

// analyzePhi either follows the compile-time-selected predecessor directly
// (when the containing block was reached only by inlining) or peer-resolves
// the surviving incoming values -- survivors being those
// whose predecessor block was actually reached; a predecessor dead-pruned
// by a sibling compile-time branch contributes nothing.
func (a *Analyzer) analyzePhi(old *ir.Instruction) {
	aux, _ := old.Aux.(ir.PhiAux)

	if predOld, ok := a.Interp.ConstPredecessorOf(a.curOldBlock); ok {
		for _, inc := range aux.Incoming {
			if inc.Block == predOld {
				a.link(old, a.resolve(inc.Value))
				return
			}
		}
		a.errorf(old, report.KindStructural, "phi has no incoming value for the compile-time-selected predecessor")
		return
	}

	var survivors []value.Value
	var survivorInstrs []*ir.Instruction
	var survivorBlocks []*ir.BasicBlock
	for _, inc := range aux.Incoming {
		newBlock, ok := a.BlockLinks[inc.Block.DebugID]
		// A predecessor spliced in by an inlined branch has no BlockLinks
		// entry of its own; follow its const-predecessor chain back to the
		// block whose new counterpart received its instructions.
		for p, steps := inc.Block, 0; !ok && steps < len(a.Old.Blocks); steps++ {
			pred, inlined := a.Interp.ConstPredecessorOf(p)
			if !inlined {
				break
			}
			p = pred
			newBlock, ok = a.BlockLinks[p.DebugID]
		}
		if !ok {
			continue
		}
		v := a.resolve(inc.Value)
		survivors = append(survivors, v.Val)
		survivorInstrs = append(survivorInstrs, v)
		survivorBlocks = append(survivorBlocks, newBlock)
	}

	if len(survivors) == 0 {
		a.errorf(old, report.KindStructural, "phi has no reachable incoming value")
		return
	}

	peerType, ok := coerce.ResolvePeerTypes(survivors)
	if !ok {
		a.errorf(old, report.KindTypeMismatch, "incoming values of a join point have incompatible types")
		return
	}
	if peerType.Kind() == types.LiteralInt || peerType.Kind() == types.LiteralFloat {
		a.errorf(old, report.KindTypeMismatch, "a join point's type cannot remain an unconstrained literal")
		return
	}

	newIncoming := make([]ir.PhiIncoming, len(survivors))
	allStatic := true
	for i, v := range survivors {
		coerced, res := coerce.ImplicitCast(v, peerType)
		if res == coerce.No {
			a.errorf(old, report.KindTypeMismatch, "cannot unify a join point's incoming types")
			return
		}
		newIncoming[i] = ir.PhiIncoming{Block: survivorBlocks[i], Value: a.withType(old.Pos, survivorInstrs[i], coerced)}
		if !coerced.IsStatic() {
			allStatic = false
		}
	}

	if allStatic && allPhiEqual(newIncoming) {
		n := a.emit(ir.OpConst, old.Pos)
		n.ResultType = peerType
		n.Val = newIncoming[0].Value.Val
		a.link(old, n)
		return
	}

	n := a.emit(ir.OpPhi, old.Pos)
	for _, inc := range newIncoming {
		a.use(n, inc.Value)
	}
	n.Aux = ir.PhiAux{Incoming: newIncoming}
	n.ResultType = peerType
	n.Val = value.MakeRuntime(peerType)
	a.link(old, n)
}

func allPhiEqual(incoming []ir.PhiIncoming) bool {
	if len(incoming) == 0 {
		return true
	}
	first := incoming[0].Value.Val
	for _, inc := range incoming[1:] {
		if !value.Equal(first, inc.Value.Val) {
			return false
		}
	}
	return true
}

// analyzeReturn coerces the returned value against the executable's
// expected return type when one was supplied, and always appends to
// ReturnValues so finalizeReturnType can infer one otherwise.
func (a *Analyzer) analyzeReturn(old *ir.Instruction) {
	var rv *ir.Instruction
	retType := types.Type(types.TheVoid)
	if len(old.Operands) > 0 {
		rv = a.operand(old, 0)
		retType = rv.ResultType
	}

	retVal := value.Value{Type: retType}
	if rv != nil {
		retVal = rv.Val
	}

	if a.ExpectedType != nil && !types.IsInvalid(a.ExpectedType) && a.ExpectedType.Kind() != types.Void {
		coerced, res := coerce.ImplicitCast(retVal, a.ExpectedType)
		if res == coerce.No {
			a.errorf(old, report.KindTypeMismatch, "cannot return a value of type '%s' from a function returning '%s'",
				retType.Repr(), a.ExpectedType.Repr())
			return
		}
		if rv != nil {
			rv = a.withType(old.Pos, rv, coerced)
		}
		retVal = coerced
	}

	a.ReturnValues = append(a.ReturnValues, retVal)

	n := a.emit(ir.OpReturn, old.Pos)
	if rv != nil {
		a.use(n, rv)
	}
	n.ResultType = types.TheUnreachable
	n.ReturnKnowledge = old.ReturnKnowledge
	a.link(old, n)
}
