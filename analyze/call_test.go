package analyze

import (
	"testing"

	"midc/ir"
	"midc/report"
	"midc/types"
	"midc/value"
)

func fnSig() types.FnType {
	return types.FnType{
		Params: []types.FnParam{{Name: "n", Type: i32()}},
		ReturnType: i32(),
	}
}

func TestAnalyzeCallDispatchesThroughFnValue(t *testing.T) {
	ex := ir.NewExecutable(8)
	entry := ex.Blocks[0]

	sig := fnSig()
	callee := ex.NewInstr(ir.OpConst, ir.SourcePos{})
	callee.ResultType = sig
	callee.Val = value.Value{Special: value.Static, Type: sig, Payload: value.PayloadFn, Fn: &value.FnHandle{Name: "double", Sig: sig}}
	entry.Append(callee)

	arg := constInstr(ex, entry, 21)

	call := ex.NewInstr(ir.OpCall, ir.SourcePos{})
	call.Operands = []*ir.Instruction{callee, arg}
	callee.RefCount++
	arg.RefCount++
	call.Aux = ir.CallAux{}
	entry.Append(call)

	returnInstr(ex, entry, call)

	sink := report.NewSink(report.LogLevelSilent)
	newEx := Analyze(ex, nil, sink, newTestConfig())
	if sink.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", sink.Messages())
	}

	got := findReturn(t, newEx).Operands[0]
	if !types.EqualModuloConst(got.ResultType, i32()) {
		t.Errorf("call result type = %s, want i32", got.ResultType.Repr())
	}
}

func TestAnalyzeCallArgumentCountMismatchErrors(t *testing.T) {
	ex := ir.NewExecutable(8)
	entry := ex.Blocks[0]

	sig := fnSig()
	callee := ex.NewInstr(ir.OpConst, ir.SourcePos{})
	callee.ResultType = sig
	callee.Val = value.Value{Special: value.Static, Type: sig, Payload: value.PayloadFn, Fn: &value.FnHandle{Name: "double", Sig: sig}}
	entry.Append(callee)

	call := ex.NewInstr(ir.OpCall, ir.SourcePos{})
	call.Operands = []*ir.Instruction{callee}
	callee.RefCount++
	call.Aux = ir.CallAux{}
	entry.Append(call)

	returnInstr(ex, entry, call)

	sink := report.NewSink(report.LogLevelSilent)
	Analyze(ex, nil, sink, newTestConfig())
	if sink.ErrorCount() == 0 {
		t.Error("calling a 1-parameter function with 0 arguments should report an error")
	}
}

func TestAnalyzeInlineCallIsUnimplemented(t *testing.T) {
	ex := ir.NewExecutable(8)
	entry := ex.Blocks[0]

	sig := fnSig()
	callee := ex.NewInstr(ir.OpConst, ir.SourcePos{})
	callee.ResultType = sig
	callee.Val = value.Value{Special: value.Static, Type: sig, Payload: value.PayloadFn, Fn: &value.FnHandle{Name: "double", Sig: sig}}
	entry.Append(callee)
	arg := constInstr(ex, entry, 1)

	call := ex.NewInstr(ir.OpCall, ir.SourcePos{})
	call.Operands = []*ir.Instruction{callee, arg}
	callee.RefCount++
	arg.RefCount++
	call.Aux = ir.CallAux{Inline: true}
	entry.Append(call)

	returnInstr(ex, entry, call)

	sink := report.NewSink(report.LogLevelSilent)
	Analyze(ex, nil, sink, newTestConfig())
	if sink.ErrorCount() == 0 {
		t.Fatal("an inline call should report an error rather than silently mis-analyze")
	}
	found := false
	for _, m := range sink.Messages() {
		if m.Kind == report.KindUnimplemented {
			found = true
		}
	}
	if !found {
		t.Error("an inline call should be reported as KindUnimplemented")
	}
}

func TestAnalyzeCastCallConvertsStaticValue(t *testing.T) {
	ex := ir.NewExecutable(8)
	entry := ex.Blocks[0]

	typeVal := ex.NewInstr(ir.OpConst, ir.SourcePos{})
	typeVal.ResultType = types.TheMetatype
	typeVal.Val = value.MakeType(types.IntType{Bits: 64, Signed: true})
	entry.Append(typeVal)

	arg := constInstr(ex, entry, 5)

	call := ex.NewInstr(ir.OpCall, ir.SourcePos{})
	call.Operands = []*ir.Instruction{typeVal, arg}
	typeVal.RefCount++
	arg.RefCount++
	call.Aux = ir.CallAux{}
	entry.Append(call)

	returnInstr(ex, entry, call)

	sink := report.NewSink(report.LogLevelSilent)
	newEx := Analyze(ex, nil, sink, newTestConfig())
	if sink.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", sink.Messages())
	}

	got := findReturn(t, newEx).Operands[0]
	if !got.Val.IsStatic() || got.Val.Int.Big().Int64() != 5 {
		t.Errorf("i64(5) should fold to a static 5, got %v", got.Val)
	}
	if !types.EqualModuloConst(got.ResultType, types.IntType{Bits: 64, Signed: true}) {
		t.Errorf("cast-call result type = %s, want i64", got.ResultType.Repr())
	}
}

func TestAnalyzeCastCallWrongArgCountErrors(t *testing.T) {
	ex := ir.NewExecutable(8)
	entry := ex.Blocks[0]

	typeVal := ex.NewInstr(ir.OpConst, ir.SourcePos{})
	typeVal.ResultType = types.TheMetatype
	typeVal.Val = value.MakeType(types.IntType{Bits: 64, Signed: true})
	entry.Append(typeVal)

	call := ex.NewInstr(ir.OpCall, ir.SourcePos{})
	call.Operands = []*ir.Instruction{typeVal}
	typeVal.RefCount++
	call.Aux = ir.CallAux{}
	entry.Append(call)

	returnInstr(ex, entry, call)

	sink := report.NewSink(report.LogLevelSilent)
	Analyze(ex, nil, sink, newTestConfig())
	if sink.ErrorCount() == 0 {
		t.Error("a type-cast call with zero arguments should report an error")
	}
}
