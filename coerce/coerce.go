// Package coerce implements the coercion engine: implicit-cast
// resolution, explicit-cast resolution, and peer-type resolution, all
// driven by the same underlying type-compatibility rules. Grounded on
// `chai/src/typing/conv.go`'s `CoerceTo`/`CastTo` switch-on-destination-kind
// structure and `solver.go`'s type-variable-free "running best" walk,
// adapted from unification to a non-binding resolution algorithm.
package coerce

import (
	"midc/bignum"
	"midc/types"
	"midc/value"
)

// Result is the three-valued implicit-cast outcome: a rejected
// coercion is either a fresh type error (No) or one the caller has already
// reported against a propagated `invalid` operand (AlreadyReported), so the
// analyzer does not double-report.
type Result int

const (
	Yes Result = iota
	No
	AlreadyReported
)

// ImplicitCast evaluates nine ordered rules against v (whose Type is the
// source type) and dest. On Yes it returns the value
// re-typed (and, where the payload representation requires it, reshaped --
// e.g. an array wrapped into a slice struct) to dest.
func ImplicitCast(v value.Value, dest types.Type) (r value.Value, res Result) {
	defer func() {
		if res == Yes && v.DependsOnCompileVar {
			r.DependsOnCompileVar = true
		}
	}()
	if types.IsInvalid(v.Type) || types.IsInvalid(dest) {
		return value.Value{Type: types.TheInvalid}, AlreadyReported
	}

	// Rule 1: exact structural match modulo pointer const.
	if types.EqualModuloConst(v.Type, dest) {
		r := v
		r.Type = dest
		return r, Yes
	}

	// Rule 2: non-maybe into maybe; null-literal into maybe.
	if mt, ok := dest.(types.MaybeType); ok {
		if v.Type.Kind() == types.NullLit {
			return value.MakeMaybe(dest, nil), Yes
		}
		if v.Type.Kind() != types.Maybe {
			if inner, res := ImplicitCast(v, mt.Child); res == Yes {
				return value.MakeMaybe(dest, &inner), Yes
			}
		}
	}

	// Rule 3: child type of error union into error union; pure-error into
	// error union. The Value model carries no dedicated
	// error-union payload, so the coerced value keeps its existing payload
	// and is simply re-typed; the analyzer treats an error-union-typed
	// Value's payload as "the child's payload, or meaningless if the
	// source was a pure-error" (documented limitation, see DESIGN.md).
	if eut, ok := dest.(types.ErrorUnionType); ok {
		if types.EqualModuloConst(v.Type, eut.Child) || v.Type.Kind() == types.PureError {
			r := v
			r.Type = dest
			return r, Yes
		}
	}

	switch sv := v.Type.(type) {
	case types.IntType:
		if dv, ok := dest.(types.IntType); ok {
			// Rule 4: widening integer-to-integer, same signedness.
			if sv.Signed == dv.Signed && dv.Bits >= sv.Bits {
				r := v
				r.Type = dest
				return r, Yes
			}
			// Rule 5: unsigned-to-signed when target strictly wider.
			if !sv.Signed && dv.Signed && dv.Bits > sv.Bits {
				r := v
				r.Type = dest
				return r, Yes
			}
		}
	case types.FloatType:
		// Rule 6: widening float-to-float.
		if dv, ok := dest.(types.FloatType); ok && dv.Bits >= sv.Bits {
			r := v
			r.Type = dest
			return r, Yes
		}
	case types.ArrayType:
		// Rule 7: array into slice when element types match modulo const.
		if dv, ok := dest.(types.ArrayType); ok && dv.IsSlice() && !sv.IsSlice() &&
			types.EqualModuloConst(sv.Child, dv.Child) {
			return arrayToSlice(v, dv), Yes
		}
	}

	// Rule 8: literal-int / literal-float into any sized type that can
	// represent the value exactly.
	if v.Type.Kind() == types.LiteralInt {
		if dv, ok := dest.(types.IntType); ok {
			if v.Int.FitsBits(dv.Bits, dv.Signed) {
				return value.MakeInt(dest, v.Int), Yes
			}
			return value.Value{Type: types.TheInvalid}, No
		}
		if _, ok := dest.(types.FloatType); ok {
			return value.MakeFloat(dest, v.Int.ToFloat()), Yes
		}
	}
	if v.Type.Kind() == types.LiteralFloat {
		if dv, ok := dest.(types.FloatType); ok {
			_ = dv
			return value.MakeFloat(dest, v.Float), Yes
		}
	}

	// Rule 9: undef literal into any type.
	if v.Special == value.Undef || v.Type.Kind() == types.UndefLit {
		return value.MakeUndef(dest), Yes
	}

	return value.Value{Type: types.TheInvalid}, No
}

// arrayToSlice builds the two-field `{ptr, len}` struct Value used as a
// slice's representation.
func arrayToSlice(arr value.Value, sliceType types.ArrayType) value.Value {
	sliceStruct := sliceStructType(sliceType.Child)
	base := arr
	ptr := value.MakeConstPtr(types.PointerType{Child: sliceType.Child}, &base, value.SENTINEL, false)
	length := value.MakeInt(types.IntType{Bits: 64, Signed: false}, bignum.NewInt(int64(len(arr.Array))))
	return value.MakeStruct(sliceStruct, map[int]value.Value{0: ptr, 1: length})
}

// sliceStructType is the fixed `{ptr, len}` layout used for slice values.
func sliceStructType(child types.Type) types.StructType {
	return types.StructType{
		Fields: []types.StructField{
			{Name: "ptr", Type: types.PointerType{Child: child}},
			{Name: "len", Type: types.IntType{Bits: 64, Signed: false}},
		},
	}
}
