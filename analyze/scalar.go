package analyze

import (
	"midc/coerce"
	"midc/constfold"
	"midc/ir"
	"midc/report"
	"midc/types"
	"midc/value"
)

func (a *Analyzer) analyzeConst(old *ir.Instruction) {
	n := a.emit(ir.OpConst, old.Pos)
	n.ResultType = old.Val.Type
	n.Val = old.Val
	a.link(old, n)
}

func (a *Analyzer) analyzeUnOp(old *ir.Instruction) {
	aux, _ := old.Aux.(ir.UnOpAux)
	operand := a.operand(old, 0)

	resultType := operand.ResultType
	if aux.Kind == ir.UnNot {
		resultType = types.TheBool
	}

	if operand.Val.IsStatic() {
		folded, ferr := constfold.FoldUnOp(aux.Kind, operand.Val, resultType)
		if ferr != nil {
			a.errorf(old, ferr.Kind, "%s", ferr.Msg)
			return
		}
		n := a.emit(ir.OpConst, old.Pos)
		n.ResultType = resultType
		n.Val = folded
		a.link(old, n)
		return
	}

	n := a.emit(ir.OpUnOp, old.Pos)
	a.use(n, operand)
	n.Aux = aux
	n.ResultType = resultType
	n.Val = value.MakeRuntime(resultType)
	a.link(old, n)
}

func (a *Analyzer) analyzeBinOp(old *ir.Instruction) {
	aux, _ := old.Aux.(ir.BinOpAux)
	lhs := a.operand(old, 0)
	rhs := a.operand(old, 1)

	peerType, ok := coerce.ResolvePeerTypes([]value.Value{lhs.Val, rhs.Val})
	if !ok {
		a.errorf(old, report.KindTypeMismatch, "operands have incompatible types '%s' and '%s'",
			lhs.ResultType.Repr(), rhs.ResultType.Repr())
		return
	}

	lhsCoerced, lr := coerce.ImplicitCast(lhs.Val, peerType)
	rhsCoerced, rr := coerce.ImplicitCast(rhs.Val, peerType)
	if lr == coerce.No || rr == coerce.No {
		a.errorf(old, report.KindTypeMismatch, "cannot unify operand types for this operator")
		return
	}

	resultType := peerType
	switch aux.Kind {
	case ir.BinEq, ir.BinNEq, ir.BinLT, ir.BinGT, ir.BinLTEq, ir.BinGTEq, ir.BinBoolAnd, ir.BinBoolOr:
		resultType = types.TheBool
	}

	// Array concatenation (BinAdd) and repetition (BinMul) folding is not
	// implemented; reject rather than silently mis-fold through the scalar
	// arithmetic path.
	if resultType.Kind() == types.Array && (aux.Kind == ir.BinAdd || aux.Kind == ir.BinMul) {
		a.errorf(old, report.KindUnimplemented, "array concatenation/repetition folding is not implemented")
		return
	}

	if lhsCoerced.IsStatic() && rhsCoerced.IsStatic() {
		folded, ferr := constfold.FoldBinOp(aux.Kind, lhsCoerced, rhsCoerced, resultType)
		if ferr != nil {
			a.errorf(old, ferr.Kind, "%s", ferr.Msg)
			return
		}
		n := a.emit(ir.OpConst, old.Pos)
		n.ResultType = resultType
		n.Val = folded
		a.link(old, n)
		return
	}

	lhsNew := a.withType(old.Pos, lhs, lhsCoerced)
	rhsNew := a.withType(old.Pos, rhs, rhsCoerced)

	n := a.emit(ir.OpBinOp, old.Pos)
	a.use(n, lhsNew)
	a.use(n, rhsNew)
	n.Aux = aux
	n.ResultType = resultType
	n.Val = value.MakeRuntime(resultType)
	a.link(old, n)
}

func (a *Analyzer) analyzeCast(old *ir.Instruction) {
	aux, _ := old.Aux.(ir.CastAux)
	operand := a.operand(old, 0)

	var result value.Value
	var res coerce.Result
	if aux.Explicit {
		result, res = coerce.ExplicitCast(operand.Val, aux.DestType, a.Cfg.SizeIndexBits)
	} else {
		result, res = coerce.ImplicitCast(operand.Val, aux.DestType)
	}

	switch res {
	case coerce.No:
		a.errorf(old, report.KindInvalidCast, "cannot cast '%s' to '%s'", operand.ResultType.Repr(), aux.DestType.Repr())
		return
	case coerce.AlreadyReported:
		a.invalid(old)
		return
	}

	if result.IsStatic() {
		n := a.emit(ir.OpConst, old.Pos)
		n.ResultType = aux.DestType
		n.Val = result
		n.ReturnKnowledge = old.ReturnKnowledge
		a.link(old, n)
		return
	}

	n := a.emit(ir.OpCast, old.Pos)
	a.use(n, operand)
	n.Aux = aux
	n.ResultType = aux.DestType
	n.Val = value.MakeRuntime(aux.DestType)
	n.ReturnKnowledge = old.ReturnKnowledge
	a.link(old, n)
}

// analyzeRef addresses-of an lvalue-producing operand, which in this IR is
// already pointer-typed (VarPtr/FieldPtr/ElemPtr); Ref contributes no new
// instruction of its own.
func (a *Analyzer) analyzeRef(old *ir.Instruction) {
	operand := a.operand(old, 0)
	a.link(old, operand)
}

func (a *Analyzer) analyzeLoadPtr(old *ir.Instruction) {
	ptr := a.operand(old, 0)

	if ptr.Op == ir.OpVarPtr {
		vAux, _ := ptr.Aux.(ir.VarPtrAux)
		v := a.New.Vars[vAux.VarIndex]
		if v.MemSlotIndex != ir.NoSlot {
			slot := a.New.MemSlots[v.MemSlotIndex]
			if !slot.Demoted {
				n := a.emit(ir.OpConst, old.Pos)
				n.ResultType = slot.Val.Type
				n.Val = slot.Val
				a.link(old, n)
				return
			}
		}
	}

	childType := elemOfPointer(ptr.ResultType)
	n := a.emit(ir.OpLoadPtr, old.Pos)
	a.use(n, ptr)
	n.ResultType = childType
	n.Val = value.MakeRuntime(childType)
	a.link(old, n)
}

func (a *Analyzer) analyzeStorePtr(old *ir.Instruction) {
	ptr := a.operand(old, 0)
	rhs := a.operand(old, 1)
	childType := elemOfPointer(ptr.ResultType)

	coerced, res := coerce.ImplicitCast(rhs.Val, childType)
	if res == coerce.No {
		a.errorf(old, report.KindTypeMismatch, "cannot assign value of type '%s' to '%s'",
			rhs.ResultType.Repr(), childType.Repr())
		return
	}

	// Writing through a VarPtr for a variable that still owns a mem slot
	// updates the slot directly; a Runtime value
	// triggers the one allowed Static -> Runtime demotion instead of ever
	// emitting a runtime store against compile-time-only storage.
	if ptr.Op == ir.OpVarPtr {
		vAux, _ := ptr.Aux.(ir.VarPtrAux)
		v := a.New.Vars[vAux.VarIndex]
		if v.MemSlotIndex != ir.NoSlot {
			slot := &a.New.MemSlots[v.MemSlotIndex]
			if !slot.Demoted {
				if coerced.IsStatic() {
					slot.Val = coerced
					n := a.emit(ir.OpConst, old.Pos)
					n.ResultType = types.TheVoid
					a.link(old, n)
					return
				}
				a.New.DemoteSlot(v.MemSlotIndex)
			}
		}
	}

	rhsNew := a.withType(old.Pos, rhs, coerced)
	n := a.emit(ir.OpStorePtr, old.Pos)
	a.use(n, ptr)
	a.use(n, rhsNew)
	n.ResultType = types.TheVoid
	a.link(old, n)
}

func (a *Analyzer) analyzeDeclVar(old *ir.Instruction) {
	aux, _ := old.Aux.(ir.DeclVarAux)
	newIdx := a.declareVar(aux.VarIndex)
	n := a.emit(ir.OpDeclVar, old.Pos)
	n.Aux = ir.DeclVarAux{VarIndex: newIdx}
	n.ResultType = types.TheVoid
	a.link(old, n)
}

func (a *Analyzer) analyzeVarPtr(old *ir.Instruction) {
	aux, _ := old.Aux.(ir.VarPtrAux)
	newIdx := a.declareVar(aux.VarIndex)
	v := a.New.Vars[newIdx]
	ptrType := types.PointerType{Child: v.DeclaredType, Const: v.SrcIsConst || v.GenIsConst}

	n := a.emit(ir.OpVarPtr, old.Pos)
	n.Aux = ir.VarPtrAux{VarIndex: newIdx}
	n.ResultType = ptrType
	n.Val = value.MakeRuntime(ptrType)
	a.link(old, n)
}

// declareVar get-or-creates the new Variable for an old var arena index,
// deciding whether it gets a compile-time mem slot: a const binding, or any
// binding inside an inline executable, starts with one; a plain runtime local never does.
func (a *Analyzer) declareVar(oldIdx int) int {
	if newIdx, ok := a.VarLinks[oldIdx]; ok {
		return newIdx
	}
	ov := a.Old.Vars[oldIdx]
	nv := &ir.Variable{
		Name: ov.Name,
		DeclScope: ov.DeclScope,
		DeclaredType: ov.DeclaredType,
		SrcIsConst: ov.SrcIsConst,
		GenIsConst: ov.GenIsConst,
		IsInline: ov.IsInline,
		MemSlotIndex: ir.NoSlot,
	}
	if ov.SrcIsConst || ov.GenIsConst || a.New.IsInline {
		nv.MemSlotIndex = a.New.AllocSlot(value.MakeUndef(ov.DeclaredType))
	}
	newIdx := a.New.DeclareVar(nv)
	a.VarLinks[oldIdx] = newIdx
	return newIdx
}

func (a *Analyzer) analyzeAttrSetter(old *ir.Instruction) {
	n := a.emit(old.Op, old.Pos)
	n.Aux = old.Aux
	n.ResultType = types.TheVoid
	a.link(old, n)
}

func elemOfPointer(t types.Type) types.Type {
	if pt, ok := t.(types.PointerType); ok {
		return pt.Child
	}
	return types.TheInvalid
}

// withType rewrites a resolved operand to coerced's type, inserting an
// implicit Cast node when the type actually changes. It never mutates in
// place: in may be shared across multiple uses (the cross-link side table
// hands back the same pointer each time an old operand is referenced), and
// different uses can require different coercions of the same value.
func (a *Analyzer) withType(pos ir.SourcePos, in *ir.Instruction, coerced value.Value) *ir.Instruction {
	if types.EqualModuloConst(in.ResultType, coerced.Type) {
		return in
	}
	cast := a.emit(ir.OpCast, pos)
	a.use(cast, in)
	cast.Aux = ir.CastAux{DestType: coerced.Type, Explicit: false}
	cast.ResultType = coerced.Type
	cast.Val = coerced
	return cast
}
