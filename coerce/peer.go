package coerce

import (
	"midc/types"
	"midc/value"
)

// ResolvePeerTypes computes the common type for a list of sibling
// expressions (if-join, phi-join, arithmetic binops, switch results).
// Grounded on `typing.Solver.unify`'s running-best walk, generalized from
// unification (which binds free type variables) to resolution (which only
// widens or absorbs, since none of these operands are ever a free
// variable). ok is false when two operands are fundamentally incompatible.
func ResolvePeerTypes(operands []value.Value) (types.Type, bool) {
	if len(operands) == 0 {
		return types.TheInvalid, false
	}

	best := operands[0]
	for _, next := range operands[1:] {
		merged, ok := peerStep(best, next)
		if !ok {
			return types.TheInvalid, false
		}
		best = merged
	}
	return best.Type, true
}

// peerStep merges next into the running-best operand, returning the new
// best (re-typed, and re-valued when a literal needed widening so later
// steps can still check literal-fit against its true magnitude).
func peerStep(best, next value.Value) (value.Value, bool) {
	if types.EqualModuloConst(best.Type, next.Type) {
		return best, true
	}

	// Absorb unreachable: the other operand's type wins outright.
	if best.Type.Kind() == types.Unreachable {
		return next, true
	}
	if next.Type.Kind() == types.Unreachable {
		return best, true
	}

	// Error-union vs. its child type: the union wins.
	if eut, ok := best.Type.(types.ErrorUnionType); ok && types.EqualModuloConst(eut.Child, next.Type) {
		return best, true
	}
	if eut, ok := next.Type.(types.ErrorUnionType); ok && types.EqualModuloConst(eut.Child, best.Type) {
		return next, true
	}

	// Literal numerics are accepted only when they fit the other operand's
	// type; a sized operand always wins the representative
	// slot over a literal one so later fit-checks use the real magnitude.
	if lit, sized, _ := literalPeer(best, next); lit != nil {
		if fitsOther(*lit, sized.Type) {
			return sized, true
		}
		return value.Value{}, false
	}

	bt, nt := best.Type, next.Type
	if bi, ok1 := bt.(types.IntType); ok1 {
		if ni, ok2 := nt.(types.IntType); ok2 {
			if bi.Signed == ni.Signed {
				if ni.Bits > bi.Bits {
					return next, true
				}
				return best, true
			}
		}
	}
	if bf, ok1 := bt.(types.FloatType); ok1 {
		if nf, ok2 := nt.(types.FloatType); ok2 {
			if nf.Bits > bf.Bits {
				return next, true
			}
			return best, true
		}
	}

	return value.Value{}, false
}

// literalPeer reports whether exactly one of best/next is an unconstrained
// literal numeric, returning that operand plus the other (sized) operand
// and which side the literal was on.
func literalPeer(best, next value.Value) (lit *value.Value, sized value.Value, litIsBest bool) {
	bLit := best.Type.Kind() == types.LiteralInt || best.Type.Kind() == types.LiteralFloat
	nLit := next.Type.Kind() == types.LiteralInt || next.Type.Kind() == types.LiteralFloat
	switch {
	case bLit && !nLit:
		return &best, next, true
	case nLit && !bLit:
		return &next, best, false
	default:
		return nil, value.Value{}, false
	}
}

func fitsOther(lit value.Value, other types.Type) bool {
	switch lit.Type.Kind() {
	case types.LiteralInt:
		if it, ok := other.(types.IntType); ok {
			return lit.Int.FitsBits(it.Bits, it.Signed)
		}
		_, isFloat := other.(types.FloatType)
		return isFloat
	case types.LiteralFloat:
		_, isFloat := other.(types.FloatType)
		return isFloat
	default:
		return false
	}
}
