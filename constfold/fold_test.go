package constfold

import (
	"testing"

	"midc/bignum"
	"midc/ir"
	"midc/report"
	"midc/types"
	"midc/value"
)

func mkInt(n int64) value.Value {
	return value.MakeInt(types.IntType{Bits: 32, Signed: true}, bignum.NewInt(n))
}

func TestFoldBinOpArithmetic(t *testing.T) {
	tests := []struct {
		name string
		kind ir.BinOpKind
		a, b int64
		want int64
	}{
		{"add", ir.BinAdd, 3, 4, 7},
		{"sub", ir.BinSub, 10, 3, 7},
		{"mul", ir.BinMul, 6, 7, 42},
		{"and", ir.BinAnd, 0b1100, 0b1010, 0b1000},
		{"or", ir.BinOr, 0b1100, 0b1010, 0b1110},
		{"xor", ir.BinXor, 0b1100, 0b1010, 0b0110},
	}

	for _, test := range tests {
		got, err := FoldBinOp(test.kind, mkInt(test.a), mkInt(test.b), types.IntType{Bits: 32, Signed: true})
		if err != nil {
			t.Fatalf("%s: unexpected error %v", test.name, err)
		}
		if got.Int.Big().Int64() != test.want {
			t.Errorf("%s: FoldBinOp(%d,%d) = %s, want %d", test.name, test.a, test.b, got.Int.String(), test.want)
		}
	}
}

func TestFoldBinOpOverflow(t *testing.T) {
	a := value.MakeInt(types.IntType{Bits: 8, Signed: true}, bignum.NewInt(100))
	b := value.MakeInt(types.IntType{Bits: 8, Signed: true}, bignum.NewInt(100))
	_, err := FoldBinOp(ir.BinAdd, a, b, types.IntType{Bits: 8, Signed: true})
	if err == nil {
		t.Fatal("100+100 over i8 should overflow")
	}
	if err.Kind != report.KindOverflow {
		t.Errorf("overflow error kind = %v, want KindOverflow", err.Kind)
	}
}

func TestFoldBinOpDivByZero(t *testing.T) {
	a := mkInt(10)
	b := mkInt(0)
	_, err := FoldBinOp(ir.BinDiv, a, b, types.IntType{Bits: 32, Signed: true})
	if err == nil {
		t.Fatal("division by zero should be a fold error")
	}
	if err.Kind != report.KindDivByZero {
		t.Errorf("div-by-zero error kind = %v, want KindDivByZero", err.Kind)
	}
}

func TestFoldBinOpWrappingNeverOverflows(t *testing.T) {
	a := value.MakeInt(types.IntType{Bits: 8, Signed: false}, bignum.NewInt(200))
	b := value.MakeInt(types.IntType{Bits: 8, Signed: false}, bignum.NewInt(100))
	got, err := FoldBinOp(ir.BinAddWrap, a, b, types.IntType{Bits: 8, Signed: false})
	if err != nil {
		t.Fatalf("wrapping add should never report overflow, got %v", err)
	}
	if got.Int.Big().Int64() != 44 {
		t.Errorf("200+100 wrapped to u8 = %s, want 44", got.Int.String())
	}
}

func TestFoldBinOpComparisons(t *testing.T) {
	tests := []struct {
		kind ir.BinOpKind
		a, b int64
		want bool
	}{
		{ir.BinEq, 5, 5, true},
		{ir.BinEq, 5, 6, false},
		{ir.BinNEq, 5, 6, true},
		{ir.BinLT, 5, 6, true},
		{ir.BinGT, 5, 6, false},
		{ir.BinLTEq, 5, 5, true},
		{ir.BinGTEq, 6, 5, true},
	}
	for _, test := range tests {
		got, err := FoldBinOp(test.kind, mkInt(test.a), mkInt(test.b), types.TheBool)
		if err != nil {
			t.Fatalf("comparison fold errored: %v", err)
		}
		if got.Bool != test.want {
			t.Errorf("compare(%d,%d) = %v, want %v", test.a, test.b, got.Bool, test.want)
		}
	}
}

func TestFoldBinOpBoolShortCircuitOperators(t *testing.T) {
	tru := value.MakeBool(types.TheBool, true)
	fls := value.MakeBool(types.TheBool, false)

	and, _ := FoldBinOp(ir.BinBoolAnd, tru, fls, types.TheBool)
	if and.Bool != false {
		t.Error("true && false should fold to false")
	}
	or, _ := FoldBinOp(ir.BinBoolOr, tru, fls, types.TheBool)
	if or.Bool != true {
		t.Error("true || false should fold to true")
	}
}

func TestFoldBinOpShiftOverflow(t *testing.T) {
	a := mkInt(1)
	shiftTooFar := value.MakeInt(types.IntType{Bits: 32, Signed: true}, bignum.NewInt(64))
	_, err := FoldBinOp(ir.BinShl, a, shiftTooFar, types.IntType{Bits: 32, Signed: true})
	if err == nil {
		t.Fatal("shift amount >= bit width should be a fold error")
	}
}

func TestFoldUnOpNegationOverflow(t *testing.T) {
	minI8 := value.MakeInt(types.IntType{Bits: 8, Signed: true}, bignum.NewInt(-128))
	_, err := FoldUnOp(ir.UnNeg, minI8, types.IntType{Bits: 8, Signed: true})
	if err == nil {
		t.Fatal("negating the minimum i8 should overflow")
	}
}

func TestFoldUnOpBoolNot(t *testing.T) {
	got, err := FoldUnOp(ir.UnNot, value.MakeBool(types.TheBool, true), types.TheBool)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Bool != false {
		t.Error("!true should fold to false")
	}
}

func TestFoldFloatDivByZero(t *testing.T) {
	a := value.MakeFloat(types.FloatType{Bits: 64}, bignum.NewFloat(1.0))
	b := value.MakeFloat(types.FloatType{Bits: 64}, bignum.NewFloat(0.0))
	_, err := FoldBinOp(ir.BinDiv, a, b, types.FloatType{Bits: 64})
	if err == nil {
		t.Fatal("float division by zero should be a fold error")
	}
	if err.Kind != report.KindDivByZero {
		t.Errorf("float div-by-zero error kind = %v, want KindDivByZero", err.Kind)
	}
}

func TestFoldBinOpPropagatesDependsOnCompileVar(t *testing.T) {
	a := mkInt(1)
	a.DependsOnCompileVar = true
	b := mkInt(2)
	got, err := FoldBinOp(ir.BinAdd, a, b, types.IntType{Bits: 32, Signed: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.DependsOnCompileVar {
		t.Error("folded result should inherit DependsOnCompileVar from either operand")
	}
}
