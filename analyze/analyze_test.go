package analyze

import (
	"testing"

	"midc/bignum"
	"midc/config"
	"midc/ir"
	"midc/report"
	"midc/types"
	"midc/value"
)

func newTestConfig() config.AnalyzerConfig {
	return config.AnalyzerConfig{BackwardBranchQuota: 8, SizeIndexBits: 64, LogLevel: report.LogLevelSilent}
}

func i32() types.Type { return types.IntType{Bits: 32, Signed: true} }

func constInstr(ex *ir.Executable, b *ir.BasicBlock, n int64) *ir.Instruction {
	c := ex.NewInstr(ir.OpConst, ir.SourcePos{})
	c.ResultType = i32()
	c.Val = value.MakeInt(i32(), bignum.NewInt(n))
	b.Append(c)
	return c
}

func returnInstr(ex *ir.Executable, b *ir.BasicBlock, operand *ir.Instruction) *ir.Instruction {
	r := ex.NewInstr(ir.OpReturn, ir.SourcePos{})
	if operand != nil {
		r.Operands = []*ir.Instruction{operand}
		operand.RefCount++
	}
	b.Append(r)
	return r
}

// findReturn locates the first OpReturn instruction in ex, searching its
// blocks in order.
func findReturn(t *testing.T, ex *ir.Executable) *ir.Instruction {
	t.Helper()
	for _, bb := range ex.Blocks {
		for _, in := range bb.Instrs {
			if in.Op == ir.OpReturn {
				return in
			}
		}
	}
	t.Fatal("no OpReturn instruction found in analyzed executable")
	return nil
}

func TestAnalyzeFoldsConstantBinOp(t *testing.T) {
	ex := ir.NewExecutable(8)
	entry := ex.Blocks[0]

	c1 := constInstr(ex, entry, 3)
	c2 := constInstr(ex, entry, 4)

	add := ex.NewInstr(ir.OpBinOp, ir.SourcePos{})
	add.Operands = []*ir.Instruction{c1, c2}
	c1.RefCount++
	c2.RefCount++
	add.Aux = ir.BinOpAux{Kind: ir.BinAdd}
	entry.Append(add)

	returnInstr(ex, entry, add)

	sink := report.NewSink(report.LogLevelSilent)
	newEx := Analyze(ex, nil, sink, newTestConfig())

	if sink.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", sink.Messages())
	}

	ret := findReturn(t, newEx)
	if len(ret.Operands) != 1 {
		t.Fatal("analyzed return should carry its folded operand")
	}
	got := ret.Operands[0]
	if !got.Val.IsStatic() || got.Val.Int.Big().Int64() != 7 {
		t.Errorf("3+4 should fold to a static 7, got %v", got.Val)
	}
	if !types.EqualModuloConst(newEx.InferredReturnType, i32()) {
		t.Errorf("inferred return type = %s, want i32", newEx.InferredReturnType.Repr())
	}
}

func TestAnalyzePrunesDeadConst(t *testing.T) {
	ex := ir.NewExecutable(8)
	entry := ex.Blocks[0]

	constInstr(ex, entry, 99) // RefCount stays 0: unreferenced, no side effect
	live := constInstr(ex, entry, 1)
	returnInstr(ex, entry, live)

	sink := report.NewSink(report.LogLevelSilent)
	newEx := Analyze(ex, nil, sink, newTestConfig())

	for _, in := range newEx.Blocks[0].Instrs {
		if in.Op == ir.OpConst && in.Val.IsStatic() && in.Val.Int.Big().Int64() == 99 {
			t.Error("a zero-refcount, non-side-effecting const should have been pruned")
		}
	}
}

func TestAnalyzeSplicesStaticCondBr(t *testing.T) {
	ex := ir.NewExecutable(8)
	entry := ex.Blocks[0]

	cond := ex.NewInstr(ir.OpConst, ir.SourcePos{})
	cond.ResultType = types.TheBool
	cond.Val = value.MakeBool(types.TheBool, true)
	entry.Append(cond)

	thenBlock := ex.NewBlock("then")
	elseBlock := ex.NewBlock("else")

	condBr := ex.NewInstr(ir.OpCondBr, ir.SourcePos{})
	condBr.Operands = []*ir.Instruction{cond}
	cond.RefCount++
	condBr.Aux = ir.CondBrAux{ThenBlock: thenBlock, ElseBlock: elseBlock}
	entry.Append(condBr)

	thenVal := constInstr(ex, thenBlock, 5)
	returnInstr(ex, thenBlock, thenVal)

	elseVal := constInstr(ex, elseBlock, 9)
	returnInstr(ex, elseBlock, elseVal)

	sink := report.NewSink(report.LogLevelSilent)
	newEx := Analyze(ex, nil, sink, newTestConfig())

	if sink.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", sink.Messages())
	}
	if len(newEx.Blocks) != 1 {
		t.Fatalf("a statically-decided branch should splice into one block, got %d blocks", len(newEx.Blocks))
	}

	ret := findReturn(t, newEx)
	got := ret.Operands[0]
	if got.Val.Int.Big().Int64() != 5 {
		t.Errorf("a true condition should splice the then-arm (5), got %s", got.Val.Int.String())
	}

	for _, in := range newEx.Blocks[0].Instrs {
		if in.Op == ir.OpCondBr {
			t.Error("a statically-decided branch should never emit a real CondBr")
		}
	}
}

func TestAnalyzeEmitsRealCondBrForRuntimeCondition(t *testing.T) {
	ex := ir.NewExecutable(8)
	entry := ex.Blocks[0]

	cond := ex.NewInstr(ir.OpConst, ir.SourcePos{})
	cond.ResultType = types.TheBool
	cond.Val = value.MakeRuntime(types.TheBool)
	entry.Append(cond)

	thenBlock := ex.NewBlock("then")
	elseBlock := ex.NewBlock("else")

	condBr := ex.NewInstr(ir.OpCondBr, ir.SourcePos{})
	condBr.Operands = []*ir.Instruction{cond}
	cond.RefCount++
	condBr.Aux = ir.CondBrAux{ThenBlock: thenBlock, ElseBlock: elseBlock}
	entry.Append(condBr)

	returnInstr(ex, thenBlock, constInstr(ex, thenBlock, 5))
	returnInstr(ex, elseBlock, constInstr(ex, elseBlock, 9))

	sink := report.NewSink(report.LogLevelSilent)
	newEx := Analyze(ex, nil, sink, newTestConfig())

	if sink.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", sink.Messages())
	}
	if len(newEx.Blocks) != 3 {
		t.Fatalf("a runtime condition should keep all three blocks, got %d", len(newEx.Blocks))
	}

	foundCondBr := false
	for _, in := range newEx.Blocks[0].Instrs {
		if in.Op == ir.OpCondBr {
			foundCondBr = true
		}
	}
	if !foundCondBr {
		t.Error("a runtime condition should emit a real CondBr instruction")
	}
}

func TestAnalyzeReturnCoercesAgainstExpectedType(t *testing.T) {
	ex := ir.NewExecutable(8)
	entry := ex.Blocks[0]
	lit := ex.NewInstr(ir.OpConst, ir.SourcePos{})
	lit.ResultType = types.LiteralIntType{}
	lit.Val = value.MakeInt(types.LiteralIntType{}, bignum.NewInt(5))
	entry.Append(lit)
	returnInstr(ex, entry, lit)

	sink := report.NewSink(report.LogLevelSilent)
	newEx := Analyze(ex, types.IntType{Bits: 64, Signed: true}, sink, newTestConfig())

	if sink.ErrorCount() != 0 {
		t.Fatalf("unexpected errors: %v", sink.Messages())
	}
	if !types.EqualModuloConst(newEx.InferredReturnType, types.IntType{Bits: 64, Signed: true}) {
		t.Errorf("InferredReturnType = %s, want i64", newEx.InferredReturnType.Repr())
	}
}

func TestAnalyzeBackwardBranchQuotaExceeded(t *testing.T) {
	ex := ir.NewExecutable(1)
	entry := ex.Blocks[0]

	loopBlock := ex.NewBlock("loop")

	cond := ex.NewInstr(ir.OpConst, ir.SourcePos{})
	cond.ResultType = types.TheBool
	cond.Val = value.MakeBool(types.TheBool, true)
	entry.Append(cond)

	// entry -> loopBlock, always taken (statically true), feeding the quota.
	br1 := ex.NewInstr(ir.OpCondBr, ir.SourcePos{})
	br1.Operands = []*ir.Instruction{cond}
	cond.RefCount++
	br1.Aux = ir.CondBrAux{ThenBlock: loopBlock, ElseBlock: loopBlock}
	entry.Append(br1)

	// loopBlock branches back to itself statically, forever, quickly
	// exhausting a quota of 1.
	loopCond := ex.NewInstr(ir.OpConst, ir.SourcePos{})
	loopCond.ResultType = types.TheBool
	loopCond.Val = value.MakeBool(types.TheBool, true)
	loopBlock.Append(loopCond)

	br2 := ex.NewInstr(ir.OpCondBr, ir.SourcePos{})
	br2.Operands = []*ir.Instruction{loopCond}
	loopCond.RefCount++
	br2.Aux = ir.CondBrAux{ThenBlock: loopBlock, ElseBlock: loopBlock}
	loopBlock.Append(br2)

	sink := report.NewSink(report.LogLevelSilent)
	Analyze(ex, nil, sink, config.AnalyzerConfig{BackwardBranchQuota: 1, SizeIndexBits: 64, LogLevel: report.LogLevelSilent})

	if sink.ErrorCount() == 0 {
		t.Error("a statically-infinite loop should exceed the backward-branch quota and report an error")
	}
}
