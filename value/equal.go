package value

// Equal computes structural, type-directed equality between two Static
// values: big-numbers compare by magnitude, aggregates
// element-wise, constant pointers by equal base identity and equal index.
// Equal is undefined (returns false) for Runtime or Undef operands -- those
// are compared by the caller via Specialness before reaching here.
func Equal(a, b Value) bool {
	if a.Payload != b.Payload {
		return false
	}

	switch a.Payload {
	case PayloadInt:
		return a.Int.Equal(b.Int)
	case PayloadFloat:
		return a.Float.Equal(b.Float)
	case PayloadBool:
		return a.Bool == b.Bool
	case PayloadType:
		return a.AsType.Repr() == b.AsType.Repr()
	case PayloadArray:
		if len(a.Array) != len(b.Array) {
			return false
		}
		for i := range a.Array {
			if !Equal(a.Array[i], b.Array[i]) {
				return false
			}
		}
		return true
	case PayloadStruct:
		if len(a.Struct) != len(b.Struct) {
			return false
		}
		for idx, av := range a.Struct {
			bv, ok := b.Struct[idx]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	case PayloadEnum:
		if a.Enum.Tag != b.Enum.Tag {
			return false
		}
		if (a.Enum.Payload == nil) != (b.Enum.Payload == nil) {
			return false
		}
		if a.Enum.Payload == nil {
			return true
		}
		return Equal(*a.Enum.Payload, *b.Enum.Payload)
	case PayloadMaybe:
		if a.Maybe.Present != b.Maybe.Present {
			return false
		}
		if !a.Maybe.Present {
			return true
		}
		return Equal(*a.Maybe.Inner, *b.Maybe.Inner)
	case PayloadConstPtr:
		// constant pointers compare by equal base identity and equal index
		return a.Ptr.Base == b.Ptr.Base && a.Ptr.Index == b.Ptr.Index
	case PayloadFn:
		return a.Fn == b.Fn
	case PayloadNamespace:
		return a.Ns == b.Ns
	case PayloadScope:
		return a.Scope == b.Scope
	default:
		return false
	}
}
