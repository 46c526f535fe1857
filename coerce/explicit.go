package coerce

import (
	"midc/bignum"
	"midc/types"
	"midc/value"
)

// ExplicitCast evaluates the explicit-cast rule set: every implicit cast
// is also a legal explicit cast, plus a set of additional conversions
// that only an explicit cast may perform. pointerBits is the platform
// size-index width (config.AnalyzerConfig.SizeIndexBits) used for the
// pointer<->int permission.
func ExplicitCast(v value.Value, dest types.Type, pointerBits int) (r value.Value, res Result) {
	defer func() {
		if res == Yes && v.DependsOnCompileVar {
			r.DependsOnCompileVar = true
		}
	}()
	if r, res := ImplicitCast(v, dest); res != No {
		return r, res
	}

	src := v.Type

	switch {
	// bool <-> int
	case src.Kind() == types.Bool && dest.Kind() == types.Int:
		n := int64(0)
		if v.Bool {
			n = 1
		}
		return value.MakeInt(dest, bignum.NewInt(n)), Yes
	case src.Kind() == types.Int && dest.Kind() == types.Bool:
		return value.MakeBool(dest, v.Int.Sign() != 0), Yes

	// pointer <-> platform-size int
	case src.Kind() == types.Pointer && dest.Kind() == types.Int:
		dv := dest.(types.IntType)
		if dv.Bits == pointerBits {
			r := v
			r.Type = dest
			return r, Yes
		}
	case src.Kind() == types.Int && dest.Kind() == types.Pointer:
		sv := src.(types.IntType)
		if sv.Bits == pointerBits {
			r := v
			r.Type = dest
			return r, Yes
		}

	// widening/narrowing within ints, within floats, or between int and float
	case src.Kind() == types.Int && dest.Kind() == types.Int:
		dv := dest.(types.IntType)
		r := value.MakeInt(dest, v.Int.WrappingTrunc(dv.Bits, dv.Signed))
		return r, Yes
	case src.Kind() == types.Float && dest.Kind() == types.Float:
		r := v
		r.Type = dest
		return r, Yes
	case src.Kind() == types.Int && dest.Kind() == types.Float:
		return value.MakeFloat(dest, v.Int.ToFloat()), Yes
	case src.Kind() == types.Float && dest.Kind() == types.Int:
		dv := dest.(types.IntType)
		return value.MakeInt(dest, v.Float.ToInt().WrappingTrunc(dv.Bits, dv.Signed)), Yes

	// array <-> []u8, slice element-type reinterpretation when source or
	// destination element is u8, and [N]u8 <-> []T when N % sizeof(T) == 0
	case src.Kind() == types.Array && dest.Kind() == types.Array:
		if okArrayReinterpret(src.(types.ArrayType), dest.(types.ArrayType)) {
			r := v
			r.Type = dest
			return r, Yes
		}

	// pointer <-> pointer
	case src.Kind() == types.Pointer && dest.Kind() == types.Pointer:
		r := v
		r.Type = dest
		return r, Yes

	// maybe-pointer <-> maybe-pointer
	case src.Kind() == types.Maybe && dest.Kind() == types.Maybe:
		sm, dm := src.(types.MaybeType), dest.(types.MaybeType)
		if sm.Child.Kind() == types.Pointer && dm.Child.Kind() == types.Pointer {
			r := v
			r.Type = dest
			return r, Yes
		}

	// enum <-> int for payload-less enums
	case src.Kind() == types.Enum && dest.Kind() == types.Int:
		if src.(types.EnumType).IsPayloadless() {
			if v.IsStatic() {
				return value.MakeInt(dest, bignum.NewInt(int64(v.Enum.Tag))), Yes
			}
			return value.MakeRuntime(dest), Yes
		}
	case src.Kind() == types.Int && dest.Kind() == types.Enum:
		if dest.(types.EnumType).IsPayloadless() {
			if v.IsStatic() {
				return value.MakeEnum(dest, int(v.Int.Big().Int64()), nil), Yes
			}
			return value.MakeRuntime(dest), Yes
		}

	// error-into-int when the error set fits (best-effort: the Value model
	// has no dedicated error-set-member payload, so this accepts any
	// pure-error-typed source without a magnitude check).
	case src.Kind() == types.PureError && dest.Kind() == types.Int:
		r := v
		r.Type = dest
		return r, Yes
	}

	return value.Value{Type: types.TheInvalid}, No
}

// okArrayReinterpret implements the array<->[]u8, u8-element reinterpret,
// and [N]u8<->[]T byte-count rules together since they all reduce to "one
// side is a u8 sequence whose byte length is compatible with the other".
func okArrayReinterpret(src, dest types.ArrayType) bool {
	srcIsU8 := isU8(src.Child)
	destIsU8 := isU8(dest.Child)
	if !srcIsU8 && !destIsU8 {
		return false
	}
	if src.IsSlice() && dest.IsSlice() {
		// slice<->slice element reinterpretation: permitted whenever either
		// side's element is u8.
		return true
	}
	// [N]u8 <-> []T (or a fixed-length T array) requires N % sizeof(T) == 0,
	// N being the length of the fixed-length u8 side.
	if srcIsU8 && !src.IsSlice() {
		if elemSize := sizeOfType(dest.Child); elemSize > 0 {
			return src.Len%elemSize == 0
		}
	}
	if destIsU8 && !dest.IsSlice() {
		if elemSize := sizeOfType(src.Child); elemSize > 0 {
			return dest.Len%elemSize == 0
		}
	}
	return true
}

func isU8(t types.Type) bool {
	it, ok := t.(types.IntType)
	return ok && it.Bits == 8 && !it.Signed
}

// sizeOfType is a best-effort byte-size estimate used only by the array
// reinterpretation check above. It knows only ints, floats and pointers and
// returns 0 for anything else; package analyze keeps its own separate
// estimate for SizeOf, and neither is an authoritative layout computation.
func sizeOfType(t types.Type) int {
	switch tv := t.(type) {
	case types.IntType:
		return (tv.Bits + 7) / 8
	case types.FloatType:
		return (tv.Bits + 7) / 8
	case types.PointerType:
		return 8
	default:
		return 0
	}
}
