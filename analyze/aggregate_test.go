package analyze

import (
	"testing"

	"midc/ir"
	"midc/report"
	"midc/types"
	"midc/value"
)

func structType() types.StructType {
	return types.StructType{
		Name: "Point",
		Fields: []types.StructField{
			{Name: "x", Type: i32()},
			{Name: "y", Type: i32()},
		},
	}
}

func TestAnalyzeFieldPtrResolvesDeclaredStructField(t *testing.T) {
	ex := ir.NewExecutable(8)
	entry := ex.Blocks[0]

	st := structType()
	varIdx := ex.DeclareVar(&ir.Variable{Name: "p", DeclaredType: st, MemSlotIndex: ir.NoSlot})

	ptr := ex.NewInstr(ir.OpVarPtr, ir.SourcePos{})
	ptr.Aux = ir.VarPtrAux{VarIndex: varIdx}
	entry.Append(ptr)

	fieldPtr := ex.NewInstr(ir.OpFieldPtr, ir.SourcePos{})
	fieldPtr.Operands = []*ir.Instruction{ptr}
	ptr.RefCount++
	fieldPtr.Aux = ir.FieldPtrAux{FieldName: "y"}
	entry.Append(fieldPtr)

	load := ex.NewInstr(ir.OpLoadPtr, ir.SourcePos{})
	load.Operands = []*ir.Instruction{fieldPtr}
	fieldPtr.RefCount++
	entry.Append(load)

	returnInstr(ex, entry, load)

	sink := report.NewSink(report.LogLevelSilent)
	newEx := Analyze(ex, nil, sink, newTestConfig())
	if sink.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", sink.Messages())
	}

	got := findReturn(t, newEx).Operands[0]
	if !types.EqualModuloConst(got.ResultType, i32()) {
		t.Errorf("field 'y' type = %s, want i32", got.ResultType.Repr())
	}

	foundStructFieldPtr := false
	for _, in := range newEx.Blocks[0].Instrs {
		if in.Op == ir.OpStructFieldPtr {
			foundStructFieldPtr = true
		}
	}
	if !foundStructFieldPtr {
		t.Error("a generic FieldPtr on a struct pointer should specialize into OpStructFieldPtr")
	}
}

func TestAnalyzeFieldPtrUnknownFieldErrors(t *testing.T) {
	ex := ir.NewExecutable(8)
	entry := ex.Blocks[0]

	st := structType()
	varIdx := ex.DeclareVar(&ir.Variable{Name: "p", DeclaredType: st, MemSlotIndex: ir.NoSlot})
	ptr := ex.NewInstr(ir.OpVarPtr, ir.SourcePos{})
	ptr.Aux = ir.VarPtrAux{VarIndex: varIdx}
	entry.Append(ptr)

	fieldPtr := ex.NewInstr(ir.OpFieldPtr, ir.SourcePos{})
	fieldPtr.Operands = []*ir.Instruction{ptr}
	ptr.RefCount++
	fieldPtr.Aux = ir.FieldPtrAux{FieldName: "z"}
	entry.Append(fieldPtr)

	load := ex.NewInstr(ir.OpLoadPtr, ir.SourcePos{})
	load.Operands = []*ir.Instruction{fieldPtr}
	fieldPtr.RefCount++
	entry.Append(load)

	returnInstr(ex, entry, load)

	sink := report.NewSink(report.LogLevelSilent)
	Analyze(ex, nil, sink, newTestConfig())
	if sink.ErrorCount() == 0 {
		t.Error("accessing an undeclared struct field should report an error")
	}
}

func TestAnalyzeContainerInitListFoldsAllStaticElements(t *testing.T) {
	ex := ir.NewExecutable(8)
	entry := ex.Blocks[0]

	e0 := constInstr(ex, entry, 1)
	e1 := constInstr(ex, entry, 2)

	init := ex.NewInstr(ir.OpContainerInitList, ir.SourcePos{})
	init.Operands = []*ir.Instruction{e0, e1}
	e0.RefCount++
	e1.RefCount++
	init.Aux = ir.ContainerInitListAux{ElemType: i32()}
	entry.Append(init)

	returnInstr(ex, entry, init)

	sink := report.NewSink(report.LogLevelSilent)
	newEx := Analyze(ex, nil, sink, newTestConfig())
	if sink.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", sink.Messages())
	}

	got := findReturn(t, newEx).Operands[0]
	if !got.Val.IsStatic() || len(got.Val.Array) != 2 {
		t.Fatalf("expected a folded 2-element static array, got %v", got.Val)
	}
	if got.Val.Array[0].Int.Big().Int64() != 1 || got.Val.Array[1].Int.Big().Int64() != 2 {
		t.Error("folded array elements do not match the initializer order")
	}
}

func TestAnalyzeArrayLenOnFixedArray(t *testing.T) {
	ex := ir.NewExecutable(8)
	entry := ex.Blocks[0]

	arr := ex.NewInstr(ir.OpConst, ir.SourcePos{})
	arrType := types.ArrayType{Child: i32(), Len: 5}
	arr.ResultType = arrType
	arr.Val = value.MakeRuntime(arrType)
	entry.Append(arr)

	lenInstr := ex.NewInstr(ir.OpArrayLen, ir.SourcePos{})
	lenInstr.Operands = []*ir.Instruction{arr}
	arr.RefCount++
	entry.Append(lenInstr)

	returnInstr(ex, entry, lenInstr)

	sink := report.NewSink(report.LogLevelSilent)
	newEx := Analyze(ex, nil, sink, newTestConfig())
	if sink.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", sink.Messages())
	}

	got := findReturn(t, newEx).Operands[0]
	if got.Val.Int.Big().Int64() != 5 {
		t.Errorf("len of a 5-element fixed array = %s, want 5", got.Val.Int.String())
	}
}

func TestAnalyzeTestNullOnStaticMaybe(t *testing.T) {
	ex := ir.NewExecutable(8)
	entry := ex.Blocks[0]

	mt := types.MaybeType{Child: i32()}
	m := ex.NewInstr(ir.OpConst, ir.SourcePos{})
	m.ResultType = mt
	m.Val = value.MakeMaybe(mt, nil)
	entry.Append(m)

	isNull := ex.NewInstr(ir.OpTestNull, ir.SourcePos{})
	isNull.Operands = []*ir.Instruction{m}
	m.RefCount++
	entry.Append(isNull)

	returnInstr(ex, entry, isNull)

	sink := report.NewSink(report.LogLevelSilent)
	newEx := Analyze(ex, nil, sink, newTestConfig())
	if sink.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", sink.Messages())
	}

	got := findReturn(t, newEx).Operands[0]
	if !got.Val.Bool {
		t.Error("testNull on an absent maybe should fold to true")
	}
}

func TestAnalyzeUnwrapMaybeOfNullCompileTimeErrors(t *testing.T) {
	ex := ir.NewExecutable(8)
	entry := ex.Blocks[0]

	mt := types.MaybeType{Child: i32()}
	m := ex.NewInstr(ir.OpConst, ir.SourcePos{})
	m.ResultType = mt
	m.Val = value.MakeMaybe(mt, nil)
	entry.Append(m)

	unwrap := ex.NewInstr(ir.OpUnwrapMaybe, ir.SourcePos{})
	unwrap.Operands = []*ir.Instruction{m}
	m.RefCount++
	entry.Append(unwrap)

	returnInstr(ex, entry, unwrap)

	sink := report.NewSink(report.LogLevelSilent)
	Analyze(ex, nil, sink, newTestConfig())
	if sink.ErrorCount() == 0 {
		t.Error("unwrapping a compile-time-null maybe should report an error")
	}
}
