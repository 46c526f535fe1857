// Package constfold implements big-number arithmetic/comparison folding
// and the abstract interpreter that inlines compile-time-decided branches.
// The big-number evaluation style is grounded on
// `itsfuad-Ferret/internal/semantics/consteval`'s `math/big`-backed
// constant evaluator.
package constfold

import (
	"fmt"

	"midc/bignum"
	"midc/ir"
	"midc/report"
	"midc/types"
	"midc/value"
)

// Error is a folding failure, carrying the report.Kind the caller should
// record against the offending instruction's source position.
type Error struct {
	Kind report.Kind
	Msg string
}

func (e *Error) Error() string { return e.Msg }

func errf(kind report.Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// intWidth extracts bit width/signedness from a result type, reporting
// false when resultType is not a sized integer (e.g. still a literal,
// which carries no overflow bound).
func intWidth(t types.Type) (bits int, signed bool, sized bool) {
	it, ok := t.(types.IntType)
	if !ok {
		return 0, false, false
	}
	return it.Bits, it.Signed, true
}

// FoldBinOp computes the compile-time result of a BinOp over two Static
// operands, already coerced to compatible types and already peer-resolved
// against resultType.
func FoldBinOp(kind ir.BinOpKind, a, b value.Value, resultType types.Type) (value.Value, *Error) {
	dep := a.DependsOnCompileVar || b.DependsOnCompileVar

	switch kind {
	case ir.BinEq, ir.BinNEq, ir.BinLT, ir.BinGT, ir.BinLTEq, ir.BinGTEq:
		r, err := foldCompare(kind, a, b)
		if err != nil {
			return value.Value{}, err
		}
		r.DependsOnCompileVar = dep
		return r, nil
	case ir.BinBoolAnd:
		r := value.MakeBool(types.TheBool, a.Bool && b.Bool)
		r.DependsOnCompileVar = dep
		return r, nil
	case ir.BinBoolOr:
		r := value.MakeBool(types.TheBool, a.Bool || b.Bool)
		r.DependsOnCompileVar = dep
		return r, nil
	}

	if a.Payload == value.PayloadFloat {
		r, err := foldFloatArith(kind, a, b, resultType)
		if err == nil {
			r.DependsOnCompileVar = dep
		}
		return r, err
	}

	r, err := foldIntArith(kind, a, b, resultType)
	if err == nil {
		r.DependsOnCompileVar = dep
	}
	return r, err
}

func foldCompare(kind ir.BinOpKind, a, b value.Value) (value.Value, *Error) {
	if a.Payload == value.PayloadInt {
		c := a.Int.Cmp(b.Int)
		return value.MakeBool(types.TheBool, cmpResult(kind, c)), nil
	}
	if a.Payload == value.PayloadFloat {
		c := a.Float.Cmp(b.Float)
		return value.MakeBool(types.TheBool, cmpResult(kind, c)), nil
	}
	// Aggregate/struct/array/enum/maybe/const-ptr equality defers to
	// structural Value equality.
	switch kind {
	case ir.BinEq:
		return value.MakeBool(types.TheBool, value.Equal(a, b)), nil
	case ir.BinNEq:
		return value.MakeBool(types.TheBool, !value.Equal(a, b)), nil
	default:
		return value.Value{}, errf(report.KindStructural, "ordering comparison on non-numeric compile-time value")
	}
}

func cmpResult(kind ir.BinOpKind, c int) bool {
	switch kind {
	case ir.BinEq:
		return c == 0
	case ir.BinNEq:
		return c != 0
	case ir.BinLT:
		return c < 0
	case ir.BinGT:
		return c > 0
	case ir.BinLTEq:
		return c <= 0
	case ir.BinGTEq:
		return c >= 0
	default:
		return false
	}
}

func foldIntArith(kind ir.BinOpKind, a, b value.Value, resultType types.Type) (value.Value, *Error) {
	bits, signed, sized := intWidth(resultType)

	check := func(r bignum.Int, overflow bool) (value.Value, *Error) {
		if sized && overflow {
			return value.Value{}, errf(report.KindOverflow, "arithmetic overflow for type '%s'", resultType.Repr())
		}
		return value.MakeInt(resultType, r), nil
	}

	switch kind {
	case ir.BinAdd:
		r, of := a.Int.Add(b.Int, orDefaultBits(bits, sized), signed)
		return check(r, of)
	case ir.BinSub:
		r, of := a.Int.Sub(b.Int, orDefaultBits(bits, sized), signed)
		return check(r, of)
	case ir.BinMul:
		r, of := a.Int.Mul(b.Int, orDefaultBits(bits, sized), signed)
		return check(r, of)
	case ir.BinAddWrap:
		if !sized {
			return value.Value{}, errf(report.KindStructural, "wrapping arithmetic requires a sized integer type")
		}
		r, _ := a.Int.Add(b.Int, bits, signed)
		return value.MakeInt(resultType, r.WrappingTrunc(bits, signed)), nil
	case ir.BinSubWrap:
		if !sized {
			return value.Value{}, errf(report.KindStructural, "wrapping arithmetic requires a sized integer type")
		}
		r, _ := a.Int.Sub(b.Int, bits, signed)
		return value.MakeInt(resultType, r.WrappingTrunc(bits, signed)), nil
	case ir.BinMulWrap:
		if !sized {
			return value.Value{}, errf(report.KindStructural, "wrapping arithmetic requires a sized integer type")
		}
		r, _ := a.Int.Mul(b.Int, bits, signed)
		return value.MakeInt(resultType, r.WrappingTrunc(bits, signed)), nil
	case ir.BinDiv:
		r, of, ok := a.Int.Div(b.Int, orDefaultBits(bits, sized), signed)
		if !ok {
			return value.Value{}, errf(report.KindDivByZero, "division by zero")
		}
		return check(r, of)
	case ir.BinMod:
		r, of, ok := a.Int.Mod(b.Int, orDefaultBits(bits, sized), signed)
		if !ok {
			return value.Value{}, errf(report.KindDivByZero, "division by zero")
		}
		return check(r, of)
	case ir.BinShl:
		shiftBits := orDefaultBits(bits, sized)
		r, of := a.Int.Shl(uint64(b.Int.Big().Int64()), shiftBits, signed)
		if of {
			return value.Value{}, errf(report.KindOverflow, "shift amount out of range")
		}
		return check(r, false)
	case ir.BinShr:
		shiftBits := orDefaultBits(bits, sized)
		r, of := a.Int.Shr(uint64(b.Int.Big().Int64()), shiftBits, signed)
		if of {
			return value.Value{}, errf(report.KindOverflow, "shift amount out of range")
		}
		return value.MakeInt(resultType, r), nil
	case ir.BinAnd:
		return value.MakeInt(resultType, a.Int.And(b.Int)), nil
	case ir.BinOr:
		return value.MakeInt(resultType, a.Int.Or(b.Int)), nil
	case ir.BinXor:
		return value.MakeInt(resultType, a.Int.Xor(b.Int)), nil
	default:
		return value.Value{}, errf(report.KindStructural, "unsupported integer binary operator")
	}
}

// orDefaultBits picks a generous width for arbitrary-precision literal
// arithmetic (no sized result type yet to check overflow against).
func orDefaultBits(bits int, sized bool) int {
	if sized {
		return bits
	}
	return 1 << 16
}

func foldFloatArith(kind ir.BinOpKind, a, b value.Value, resultType types.Type) (value.Value, *Error) {
	switch kind {
	case ir.BinAdd:
		r, of := a.Float.Add(b.Float)
		if of {
			return value.Value{}, errf(report.KindOverflow, "floating-point overflow")
		}
		return value.MakeFloat(resultType, r), nil
	case ir.BinSub:
		r, of := a.Float.Sub(b.Float)
		if of {
			return value.Value{}, errf(report.KindOverflow, "floating-point overflow")
		}
		return value.MakeFloat(resultType, r), nil
	case ir.BinMul:
		r, of := a.Float.Mul(b.Float)
		if of {
			return value.Value{}, errf(report.KindOverflow, "floating-point overflow")
		}
		return value.MakeFloat(resultType, r), nil
	case ir.BinDiv:
		r, of, ok := a.Float.Div(b.Float)
		if !ok {
			return value.Value{}, errf(report.KindDivByZero, "division by zero")
		}
		if of {
			return value.Value{}, errf(report.KindOverflow, "floating-point overflow")
		}
		return value.MakeFloat(resultType, r), nil
	default:
		return value.Value{}, errf(report.KindStructural, "unsupported float binary operator")
	}
}

// FoldUnOp computes the compile-time result of a UnOp over a Static
// operand.
func FoldUnOp(kind ir.UnOpKind, a value.Value, resultType types.Type) (r value.Value, err *Error) {
	defer func() {
		if err == nil && a.DependsOnCompileVar {
			r.DependsOnCompileVar = true
		}
	}()
	switch kind {
	case ir.UnNot:
		return value.MakeBool(resultType, !a.Bool), nil
	case ir.UnNeg:
		if a.Payload == value.PayloadFloat {
			return value.MakeFloat(resultType, a.Float.Neg()), nil
		}
		bits, signed, sized := intWidth(resultType)
		r, of := a.Int.Neg(orDefaultBits(bits, sized), signed)
		if sized && of {
			return value.Value{}, errf(report.KindOverflow, "negation overflow for type '%s'", resultType.Repr())
		}
		return value.MakeInt(resultType, r), nil
	case ir.UnBitNot:
		bits, signed, sized := intWidth(resultType)
		if !sized {
			return value.Value{}, errf(report.KindStructural, "bitwise complement requires a sized integer type")
		}
		return value.MakeInt(resultType, a.Int.Not(bits, signed)), nil
	default:
		return value.Value{}, errf(report.KindStructural, "unsupported unary operator")
	}
}
