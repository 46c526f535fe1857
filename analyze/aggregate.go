package analyze

import (
	"midc/bignum"
	"midc/coerce"
	"midc/ir"
	"midc/report"
	"midc/types"
	"midc/value"
)

// analyzeFieldPtr resolves a generic field access into the specific
// StructFieldPtr/EnumFieldPtr op it denotes, or into a direct namespace
// member reference. The unverified IR never carries the Struct/Enum-specific
// ops itself; only analysis produces them.
func (a *Analyzer) analyzeFieldPtr(old *ir.Instruction) {
	aux, _ := old.Aux.(ir.FieldPtrAux)
	operand := a.operand(old, 0)

	if operand.Val.IsStatic() && operand.Val.Payload == value.PayloadNamespace {
		sym, ok := operand.Val.Ns.Symbols[aux.FieldName]
		if !ok {
			a.errorf(old, report.KindUndeclaredName, "namespace '%s' has no member '%s'", operand.Val.Ns.Name, aux.FieldName)
			return
		}
		n := a.emit(ir.OpConst, old.Pos)
		n.ResultType = sym.Type
		n.Val = *sym
		a.link(old, n)
		return
	}

	switch ct := elemOfPointer(operand.ResultType).(type) {
	case types.StructType:
		idx := ct.FieldIndex(aux.FieldName)
		if idx < 0 {
			a.errorf(old, report.KindUndeclaredName, "struct '%s' has no field '%s'", ct.Name, aux.FieldName)
			return
		}
		fieldPtrType := types.PointerType{Child: ct.Fields[idx].Type}
		n := a.emit(ir.OpStructFieldPtr, old.Pos)
		a.use(n, operand)
		n.Aux = ir.FieldPtrAux{FieldName: aux.FieldName, FieldIndex: idx}
		n.ResultType = fieldPtrType
		n.Val = value.MakeRuntime(fieldPtrType)
		a.link(old, n)
	case types.EnumType:
		for i, f := range ct.Fields {
			if f.Name != aux.FieldName {
				continue
			}
			if f.Payload == nil {
				a.errorf(old, report.KindStructural, "enum case '%s' carries no payload", aux.FieldName)
				return
			}
			fieldPtrType := types.PointerType{Child: f.Payload}
			n := a.emit(ir.OpEnumFieldPtr, old.Pos)
			a.use(n, operand)
			n.Aux = ir.FieldPtrAux{FieldName: aux.FieldName, FieldIndex: i}
			n.ResultType = fieldPtrType
			n.Val = value.MakeRuntime(fieldPtrType)
			a.link(old, n)
			return
		}
		a.errorf(old, report.KindUndeclaredName, "enum '%s' has no case '%s'", ct.Name, aux.FieldName)
	default:
		a.errorf(old, report.KindStructural, "field access on a non-aggregate type")
	}
}

// analyzeStructFieldPtr/analyzeEnumFieldPtr exist only so the dispatcher has
// a handler if some future builder path ever emits the specific op
// directly; today field resolution always arrives as a generic FieldPtr.
func (a *Analyzer) analyzeStructFieldPtr(old *ir.Instruction) { a.analyzeFieldPtr(old) }
func (a *Analyzer) analyzeEnumFieldPtr(old *ir.Instruction) { a.analyzeFieldPtr(old) }

func (a *Analyzer) analyzeElemPtr(old *ir.Instruction) {
	ptr := a.operand(old, 0)
	idx := a.operand(old, 1)

	arrType, ok := elemOfPointer(ptr.ResultType).(types.ArrayType)
	if !ok {
		a.errorf(old, report.KindStructural, "indexing target is not an array or slice")
		return
	}
	elemPtrType := types.PointerType{Child: arrType.Child}

	if ptr.Val.IsStatic() && ptr.Val.Payload == value.PayloadConstPtr &&
		idx.Val.IsStatic() && idx.Val.Payload == value.PayloadInt {
		newPtr, ok := value.ElemPtr(ptr.Val.Ptr, int(idx.Val.Int.Big().Int64()))
		if !ok {
			a.errorf(old, report.KindOutOfBounds, "index out of bounds")
			return
		}
		n := a.emit(ir.OpConst, old.Pos)
		n.ResultType = elemPtrType
		n.Val = value.MakeConstPtr(elemPtrType, newPtr.Base, newPtr.Index, newPtr.IsCStr)
		a.link(old, n)
		return
	}

	n := a.emit(ir.OpElemPtr, old.Pos)
	a.use(n, ptr)
	a.use(n, idx)
	n.Aux = ir.ElemPtrAux{}
	n.ResultType = elemPtrType
	n.Val = value.MakeRuntime(elemPtrType)
	a.link(old, n)
}

func (a *Analyzer) analyzeContainerInitList(old *ir.Instruction) {
	aux, _ := old.Aux.(ir.ContainerInitListAux)
	elems := make([]*ir.Instruction, len(old.Operands))
	vals := make([]value.Value, len(old.Operands))
	allStatic := true

	for i := range old.Operands {
		op := a.operand(old, i)
		coerced, res := coerce.ImplicitCast(op.Val, aux.ElemType)
		if res == coerce.No {
			a.errorf(old, report.KindTypeMismatch, "array element %d has an incompatible type", i)
			return
		}
		elems[i] = a.withType(old.Pos, op, coerced)
		vals[i] = coerced
		if !coerced.IsStatic() {
			allStatic = false
		}
	}

	arrType := types.ArrayType{Child: aux.ElemType, Len: len(vals)}
	if allStatic {
		n := a.emit(ir.OpConst, old.Pos)
		n.ResultType = arrType
		n.Val = value.MakeArray(arrType, vals)
		a.link(old, n)
		return
	}

	n := a.emit(ir.OpContainerInitList, old.Pos)
	for _, e := range elems {
		a.use(n, e)
	}
	n.Aux = aux
	n.ResultType = arrType
	n.Val = value.MakeRuntime(arrType)
	a.link(old, n)
}

func (a *Analyzer) analyzeContainerInitFields(old *ir.Instruction) {
	aux, _ := old.Aux.(ir.ContainerInitFieldsAux)
	fields := map[int]value.Value{}
	newOperands := make([]*ir.Instruction, len(old.Operands))
	allStatic := true

	for i, fieldIdx := range aux.FieldOrder {
		op := a.operand(old, i)
		destType := aux.StructType.Fields[fieldIdx].Type
		coerced, res := coerce.ImplicitCast(op.Val, destType)
		if res == coerce.No {
			a.errorf(old, report.KindTypeMismatch, "field '%s' has an incompatible type", aux.StructType.Fields[fieldIdx].Name)
			return
		}
		newOperands[i] = a.withType(old.Pos, op, coerced)
		fields[fieldIdx] = coerced
		if !coerced.IsStatic() {
			allStatic = false
		}
	}

	if allStatic {
		n := a.emit(ir.OpConst, old.Pos)
		n.ResultType = aux.StructType
		n.Val = value.MakeStruct(aux.StructType, fields)
		a.link(old, n)
		return
	}

	n := a.emit(ir.OpContainerInitFields, old.Pos)
	for _, op := range newOperands {
		a.use(n, op)
	}
	n.Aux = aux
	n.ResultType = aux.StructType
	n.Val = value.MakeRuntime(aux.StructType)
	a.link(old, n)
}

// analyzeStructInit handles a struct literal whose operands supply fields
// [0, len(operands)) positionally, with any remaining fields coming from
// SpreadBase (`..other`).
func (a *Analyzer) analyzeStructInit(old *ir.Instruction) {
	aux, _ := old.Aux.(ir.StructInitAux)
	fields := map[int]value.Value{}
	var newOperands []*ir.Instruction
	allStatic := true

	for i := 0; i < len(old.Operands); i++ {
		op := a.operand(old, i)
		destType := aux.StructType.Fields[i].Type
		coerced, res := coerce.ImplicitCast(op.Val, destType)
		if res == coerce.No {
			a.errorf(old, report.KindTypeMismatch, "field '%s' has an incompatible type", aux.StructType.Fields[i].Name)
			return
		}
		newOperands = append(newOperands, a.withType(old.Pos, op, coerced))
		fields[i] = coerced
		if !coerced.IsStatic() {
			allStatic = false
		}
	}

	switch {
	case aux.SpreadBase != nil:
		spreadNew := a.resolve(aux.SpreadBase)
		if spreadNew.Val.IsStatic() && spreadNew.Val.Payload == value.PayloadStruct {
			for i := len(old.Operands); i < len(aux.StructType.Fields); i++ {
				if sv, ok := spreadNew.Val.Struct[i]; ok {
					fields[i] = sv
					continue
				}
				allStatic = false
			}
		} else {
			allStatic = false
		}
		newOperands = append(newOperands, spreadNew)
	case len(fields) < len(aux.StructType.Fields):
		allStatic = false
	}

	if allStatic {
		n := a.emit(ir.OpConst, old.Pos)
		n.ResultType = aux.StructType
		n.Val = value.MakeStruct(aux.StructType, fields)
		a.link(old, n)
		return
	}

	n := a.emit(ir.OpStructInit, old.Pos)
	for _, op := range newOperands {
		a.use(n, op)
	}
	n.Aux = aux
	n.ResultType = aux.StructType
	n.Val = value.MakeRuntime(aux.StructType)
	a.link(old, n)
}

func (a *Analyzer) analyzeArrayLen(old *ir.Instruction) {
	operand := a.operand(old, 0)
	arrType, ok := operand.ResultType.(types.ArrayType)
	if !ok {
		a.errorf(old, report.KindStructural, "'len' operand is not an array or slice")
		return
	}
	resultType := types.IntType{Bits: 64, Signed: false}

	if !arrType.IsSlice() {
		n := a.emit(ir.OpConst, old.Pos)
		n.ResultType = resultType
		n.Val = value.MakeInt(resultType, bignum.NewInt(int64(arrType.Len)))
		a.link(old, n)
		return
	}

	if operand.Val.IsStatic() && operand.Val.Payload == value.PayloadStruct {
		if lenField, ok := operand.Val.Struct[1]; ok {
			n := a.emit(ir.OpConst, old.Pos)
			n.ResultType = resultType
			n.Val = lenField
			a.link(old, n)
			return
		}
	}

	n := a.emit(ir.OpArrayLen, old.Pos)
	a.use(n, operand)
	n.ResultType = resultType
	n.Val = value.MakeRuntime(resultType)
	a.link(old, n)
}

func (a *Analyzer) analyzeEnumTag(old *ir.Instruction) {
	operand := a.operand(old, 0)
	et, ok := operand.ResultType.(types.EnumType)
	if !ok {
		a.errorf(old, report.KindStructural, "'enumTag' operand is not an enum")
		return
	}
	resultType := et.TagType

	if operand.Val.IsStatic() && operand.Val.Payload == value.PayloadEnum {
		n := a.emit(ir.OpConst, old.Pos)
		n.ResultType = resultType
		n.Val = value.MakeInt(resultType, bignum.NewInt(int64(operand.Val.Enum.Tag)))
		a.link(old, n)
		return
	}

	n := a.emit(ir.OpEnumTag, old.Pos)
	a.use(n, operand)
	n.ResultType = resultType
	n.Val = value.MakeRuntime(resultType)
	a.link(old, n)
}

func (a *Analyzer) analyzeTestNull(old *ir.Instruction) {
	operand := a.operand(old, 0)
	if operand.Val.IsStatic() && operand.Val.Payload == value.PayloadMaybe {
		n := a.emit(ir.OpConst, old.Pos)
		n.ResultType = types.TheBool
		n.Val = value.MakeBool(types.TheBool, !operand.Val.Maybe.Present)
		a.link(old, n)
		return
	}

	n := a.emit(ir.OpTestNull, old.Pos)
	a.use(n, operand)
	n.ResultType = types.TheBool
	n.Val = value.MakeRuntime(types.TheBool)
	a.link(old, n)
}

func (a *Analyzer) analyzeUnwrapMaybe(old *ir.Instruction) {
	operand := a.operand(old, 0)
	mt, ok := operand.ResultType.(types.MaybeType)
	if !ok {
		a.errorf(old, report.KindStructural, "unwrap operand is not a '?' type")
		return
	}

	if operand.Val.IsStatic() && operand.Val.Payload == value.PayloadMaybe {
		if !operand.Val.Maybe.Present {
			a.errorf(old, report.KindCompileTimeEvalFailure, "unwrapping a compile-time null value")
			return
		}
		n := a.emit(ir.OpConst, old.Pos)
		n.ResultType = mt.Child
		n.Val = *operand.Val.Maybe.Inner
		a.link(old, n)
		return
	}

	n := a.emit(ir.OpUnwrapMaybe, old.Pos)
	a.use(n, operand)
	n.ResultType = mt.Child
	n.Val = value.MakeRuntime(mt.Child)
	a.link(old, n)
}
