package analyze

import (
	"midc/bignum"
	"midc/ir"
	"midc/report"
	"midc/types"
	"midc/value"
)

func (a *Analyzer) analyzeTypeOf(old *ir.Instruction) {
	operand := a.operand(old, 0)
	n := a.emit(ir.OpConst, old.Pos)
	n.ResultType = types.TheMetatype
	n.Val = value.MakeType(operand.ResultType)
	a.link(old, n)
}

func (a *Analyzer) analyzeToPtrType(old *ir.Instruction) {
	operand := a.operand(old, 0)
	if !operand.Val.IsStatic() || operand.Val.Payload != value.PayloadType {
		a.errorf(old, report.KindStructural, "'toPtrType' requires a compile-time type value")
		return
	}
	ptrType := types.PointerType{Child: operand.Val.AsType}
	n := a.emit(ir.OpConst, old.Pos)
	n.ResultType = types.TheMetatype
	n.Val = value.MakeType(ptrType)
	a.link(old, n)
}

func (a *Analyzer) analyzePtrTypeChild(old *ir.Instruction) {
	operand := a.operand(old, 0)
	if !operand.Val.IsStatic() || operand.Val.Payload != value.PayloadType {
		a.errorf(old, report.KindStructural, "operand is not a compile-time type value")
		return
	}
	pt, ok := operand.Val.AsType.(types.PointerType)
	if !ok {
		a.errorf(old, report.KindStructural, "operand is not a pointer type")
		return
	}
	n := a.emit(ir.OpConst, old.Pos)
	n.ResultType = types.TheMetatype
	n.Val = value.MakeType(pt.Child)
	a.link(old, n)
}

func (a *Analyzer) analyzeArrayType(old *ir.Instruction) {
	elemOp := a.operand(old, 0)
	if !elemOp.Val.IsStatic() || elemOp.Val.Payload != value.PayloadType {
		a.errorf(old, report.KindStructural, "an array type's element must be a compile-time type value")
		return
	}
	length := -1
	if len(old.Operands) > 1 {
		lenOp := a.operand(old, 1)
		if !lenOp.Val.IsStatic() || lenOp.Val.Payload != value.PayloadInt {
			a.errorf(old, report.KindStructural, "array length must be a compile-time integer")
			return
		}
		length = int(lenOp.Val.Int.Big().Int64())
	}
	arrType := types.ArrayType{Child: elemOp.Val.AsType, Len: length}
	n := a.emit(ir.OpConst, old.Pos)
	n.ResultType = types.TheMetatype
	n.Val = value.MakeType(arrType)
	a.link(old, n)
}

func (a *Analyzer) analyzeSliceType(old *ir.Instruction) {
	elemOp := a.operand(old, 0)
	if !elemOp.Val.IsStatic() || elemOp.Val.Payload != value.PayloadType {
		a.errorf(old, report.KindStructural, "a slice type's element must be a compile-time type value")
		return
	}
	arrType := types.ArrayType{Child: elemOp.Val.AsType, Len: -1}
	n := a.emit(ir.OpConst, old.Pos)
	n.ResultType = types.TheMetatype
	n.Val = value.MakeType(arrType)
	a.link(old, n)
}

func (a *Analyzer) analyzeSizeOf(old *ir.Instruction) {
	operand := a.operand(old, 0)
	if !operand.Val.IsStatic() || operand.Val.Payload != value.PayloadType {
		a.errorf(old, report.KindStructural, "'sizeOf' requires a compile-time type value")
		return
	}
	resultType := types.IntType{Bits: a.Cfg.SizeIndexBits, Signed: false}
	n := a.emit(ir.OpConst, old.Pos)
	n.ResultType = resultType
	n.Val = value.MakeInt(resultType, bignum.NewInt(int64(sizeOfType(operand.Val.AsType))))
	a.link(old, n)
}

// sizeOfType is a structure-field-sum estimate (no alignment/padding
// modeled) used by the SizeOf builtin; the backend owns the authoritative
// layout.
func sizeOfType(t types.Type) int {
	switch tv := t.(type) {
	case types.IntType:
		return (tv.Bits + 7) / 8
	case types.FloatType:
		return (tv.Bits + 7) / 8
	case types.PointerType:
		return 8
	case types.ArrayType:
		if tv.IsSlice() {
			return 16
		}
		return sizeOfType(tv.Child) * tv.Len
	case types.StructType:
		total := 0
		for _, f := range tv.Fields {
			total += sizeOfType(f.Type)
		}
		return total
	case types.MaybeType:
		return sizeOfType(tv.Child) + 1
	case types.EnumType:
		tagSize := sizeOfType(tv.TagType)
		maxPayload := 0
		for _, f := range tv.Fields {
			if f.Payload == nil {
				continue
			}
			if s := sizeOfType(f.Payload); s > maxPayload {
				maxPayload = s
			}
		}
		return tagSize + maxPayload
	default:
		if t.Kind() == types.Bool {
			return 1
		}
		return 0
	}
}

func (a *Analyzer) analyzeClzCtz(old *ir.Instruction) {
	operand := a.operand(old, 0)
	it, ok := operand.ResultType.(types.IntType)
	if !ok {
		a.errorf(old, report.KindStructural, "'clz'/'ctz' require an integer operand")
		return
	}

	if operand.Val.IsStatic() {
		n := a.emit(ir.OpConst, old.Pos)
		n.ResultType = it
		n.Val = value.MakeInt(it, countBits(old.Op, operand.Val.Int, it.Bits))
		a.link(old, n)
		return
	}

	n := a.emit(old.Op, old.Pos)
	a.use(n, operand)
	n.ResultType = it
	n.Val = value.MakeRuntime(it)
	a.link(old, n)
}

func countBits(op ir.Op, i bignum.Int, bits int) bignum.Int {
	bi := i.Big()
	count := 0
	if op == ir.OpClz {
		for idx := bits - 1; idx >= 0; idx-- {
			if bi.Bit(idx) != 0 {
				break
			}
			count++
		}
	} else {
		for idx := 0; idx < bits; idx++ {
			if bi.Bit(idx) != 0 {
				break
			}
			count++
		}
	}
	return bignum.NewInt(int64(count))
}

func (a *Analyzer) analyzeStaticEval(old *ir.Instruction) {
	operand := a.operand(old, 0)
	if !operand.Val.IsStatic() {
		a.errorf(old, report.KindCompileTimeEvalFailure, "expression does not evaluate to a compile-time constant")
		return
	}
	a.link(old, operand)
}

// analyzeImport re-emits the import as a runtime-resolved namespace marker;
// resolving a module path to its concrete set of symbols is a front-end
// responsibility (ast.ImportTable) that happens before irbuild runs, so by
// the time analysis sees OpImport the path is already known-good.
func (a *Analyzer) analyzeImport(old *ir.Instruction) {
	aux, _ := old.Aux.(ir.ImportAux)
	n := a.emit(ir.OpImport, old.Pos)
	n.Aux = aux
	n.ResultType = types.TheNamespace
	n.Val = value.MakeRuntime(types.TheNamespace)
	a.link(old, n)
}

func (a *Analyzer) analyzeCompileVar(old *ir.Instruction) {
	aux, _ := old.Aux.(ir.CompileVarAux)
	switch aux.Name {
	case "size_index_bits":
		resultType := types.IntType{Bits: 64, Signed: false}
		v := value.MakeInt(resultType, bignum.NewInt(int64(a.Cfg.SizeIndexBits)))
		v.DependsOnCompileVar = true
		n := a.emit(ir.OpConst, old.Pos)
		n.ResultType = resultType
		n.Val = v
		a.link(old, n)
	default:
		a.errorf(old, report.KindUndeclaredName, "unknown compile-time variable '%s'", aux.Name)
	}
}

func (a *Analyzer) analyzeAsm(old *ir.Instruction) {
	aux, _ := old.Aux.(ir.AsmAux)
	n := a.emit(ir.OpAsm, old.Pos)
	for i := range old.Operands {
		a.use(n, a.operand(old, i))
	}
	n.Aux = aux
	n.ResultType = types.TheVoid
	n.Val = value.MakeRuntime(types.TheVoid)
	a.link(old, n)
}
