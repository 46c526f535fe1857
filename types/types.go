// Package types defines the closed type variant set consumed and produced by
// the middle-end. Structural equality and coercion/cast
// predicates live in package coerce; this package only owns representation
// and the one piece of structural equality every other package is allowed to
// use directly -- EqualModuloConst.
package types

import (
	"fmt"
	"strings"
)

// Kind tags the closed type variant set. Dispatch on types is always a
// switch over Kind, never a type hierarchy.
type Kind int

const (
	Invalid Kind = iota
	Void
	Unreachable
	Bool
	Int
	Float
	LiteralInt
	LiteralFloat
	Metatype
	Pointer
	Array
	Struct
	Enum
	Union
	Maybe
	ErrorUnion
	PureError
	Fn
	GenericFn
	BoundFn
	Namespace
	Block
	UndefLit
	NullLit
	TypeDecl
)

// Type is the interface implemented by every member of the closed variant
// set. Every non-Invalid type has a stable name buffer.
type Type interface {
	Kind() Kind
	Repr() string
}

// -----------------------------------------------------------------------------
// Nullary / singleton kinds.

type simple struct {
	kind Kind
	name string
}

func (s simple) Kind() Kind { return s.kind }
func (s simple) Repr() string { return s.name }

var (
	TheInvalid Type = simple{Invalid, "<invalid>"}
	TheVoid Type = simple{Void, "void"}
	TheUnreachable Type = simple{Unreachable, "unreachable"}
	TheBool Type = simple{Bool, "bool"}
	TheMetatype Type = simple{Metatype, "type"}
	TheNamespace Type = simple{Namespace, "namespace"}
	TheBlock Type = simple{Block, "block"}
	TheUndefLit Type = simple{UndefLit, "undefined"}
	TheNullLit Type = simple{NullLit, "null"}
	ThePureError Type = simple{PureError, "error"}
)

// -----------------------------------------------------------------------------
// Numeric kinds.

// IntType is a sized integer: i8/u8/i16/u16/.../isize/usize.
type IntType struct {
	Bits int
	Signed bool
}

func (it IntType) Kind() Kind { return Int }
func (it IntType) Repr() string {
	if it.Signed {
		return fmt.Sprintf("i%d", it.Bits)
	}
	return fmt.Sprintf("u%d", it.Bits)
}

// FloatType is a sized float: f32/f64.
type FloatType struct {
	Bits int
}

func (ft FloatType) Kind() Kind { return Float }
func (ft FloatType) Repr() string { return fmt.Sprintf("f%d", ft.Bits) }

// LiteralIntType is an as-yet-unfit arbitrary precision integer literal
// type; it carries no width until coerced.
type LiteralIntType struct{}

func (LiteralIntType) Kind() Kind { return LiteralInt }
func (LiteralIntType) Repr() string { return "{integer}" }

// LiteralFloatType mirrors LiteralIntType for floats.
type LiteralFloatType struct{}

func (LiteralFloatType) Kind() Kind { return LiteralFloat }
func (LiteralFloatType) Repr() string { return "{float}" }

// -----------------------------------------------------------------------------
// Compound kinds.

// PointerType: child type plus explicit (never inferred) constness.
type PointerType struct {
	Child Type
	Const bool
}

func (pt PointerType) Kind() Kind { return Pointer }
func (pt PointerType) Repr() string {
	if pt.Const {
		return "*const " + pt.Child.Repr()
	}
	return "*" + pt.Child.Repr()
}

// ArrayType: a fixed-length sequence of Child. Len < 0 means "slice" (no
// statically-known length) -- a slice is represented as
// ArrayType{Child: T, Len: -1}.
type ArrayType struct {
	Child Type
	Len int
}

func (at ArrayType) Kind() Kind { return Array }
func (at ArrayType) Repr() string {
	if at.Len < 0 {
		return "[]" + at.Child.Repr()
	}
	return fmt.Sprintf("[%d]%s", at.Len, at.Child.Repr())
}

func (at ArrayType) IsSlice() bool { return at.Len < 0 }

// StructField describes one field slot of a StructType, addressed by index
type StructField struct {
	Name string
	Type Type
}

type StructType struct {
	Name string
	Fields []StructField
}

func (st StructType) Kind() Kind { return Struct }
func (st StructType) Repr() string {
	if st.Name != "" {
		return st.Name
	}
	parts := make([]string, len(st.Fields))
	for i, f := range st.Fields {
		parts[i] = f.Name + ": " + f.Type.Repr()
	}
	return "struct{" + strings.Join(parts, ", ") + "}"
}

func (st StructType) FieldIndex(name string) int {
	for i, f := range st.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// EnumField describes one tag of an EnumType; Payload is nil for a
// payload-less tag.
type EnumField struct {
	Name string
	Tag int
	Payload Type
}

// EnumType: tag-type, fields, optional shared payload kind.
type EnumType struct {
	Name string
	TagType Type // always an IntType
	Fields []EnumField
}

func (et EnumType) Kind() Kind { return Enum }
func (et EnumType) Repr() string {
	if et.Name != "" {
		return et.Name
	}
	return "enum"
}

// IsPayloadless reports whether every field of the enum carries no payload,
// which is the precondition for enum<->int explicit casts.
func (et EnumType) IsPayloadless() bool {
	for _, f := range et.Fields {
		if f.Payload != nil {
			return false
		}
	}
	return true
}

// UnionType: an untagged set of member types.
type UnionType struct {
	Name string
	Members []Type
}

func (ut UnionType) Kind() Kind { return Union }
func (ut UnionType) Repr() string {
	if ut.Name != "" {
		return ut.Name
	}
	parts := make([]string, len(ut.Members))
	for i, m := range ut.Members {
		parts[i] = m.Repr()
	}
	return strings.Join(parts, " | ")
}

// MaybeType: optional Child, spelled `?T`.
type MaybeType struct {
	Child Type
}

func (mt MaybeType) Kind() Kind { return Maybe }
func (mt MaybeType) Repr() string { return "?" + mt.Child.Repr() }

// ErrorUnionType: `Err!Child`.
type ErrorUnionType struct {
	Err Type
	Child Type
}

func (eut ErrorUnionType) Kind() Kind { return ErrorUnion }
func (eut ErrorUnionType) Repr() string {
	return eut.Err.Repr() + "!" + eut.Child.Repr()
}

// FnParam describes one parameter of a function signature.
type FnParam struct {
	Name string
	Type Type
	ByRef bool
	Constant bool
}

// FnType: a concrete (fully-resolved) function signature.
type FnType struct {
	Params []FnParam
	ReturnType Type
}

func (ft FnType) Kind() Kind { return Fn }
func (ft FnType) Repr() string {
	parts := make([]string, len(ft.Params))
	for i, p := range ft.Params {
		parts[i] = p.Type.Repr()
	}
	return "fn(" + strings.Join(parts, ", ") + ") " + ft.ReturnType.Repr()
}

// GenericFnType: a function signature with unresolved type parameters. The
// analyzer treats instantiation as unimplemented.
type GenericFnType struct {
	TypeParams []string
	Underlying FnType
}

func (gft GenericFnType) Kind() Kind { return GenericFn }
func (gft GenericFnType) Repr() string { return "generic " + gft.Underlying.Repr() }

// BoundFnType: a function type with its first argument already captured.
type BoundFnType struct {
	Underlying FnType
}

func (bft BoundFnType) Kind() Kind { return BoundFn }
func (bft BoundFnType) Repr() string {
	return "bound " + bft.Underlying.Repr()
}

// TypeDeclType is the type of a forward-declared type name not yet resolved
// to its underlying definition.
type TypeDeclType struct {
	Name string
}

func (tdt TypeDeclType) Kind() Kind { return TypeDecl }
func (tdt TypeDeclType) Repr() string { return "typedecl " + tdt.Name }

// -----------------------------------------------------------------------------

// EqualModuloConst is the one structural equality coercion is allowed to use
// directly. It ignores pointer constness but
// is otherwise exact -- it does not widen, promote, or otherwise coerce.
func EqualModuloConst(a, b Type) bool {
	if a.Kind() != b.Kind() {
		return false
	}

	switch av := a.(type) {
	case simple:
		return true
	case IntType:
		bv := b.(IntType)
		return av.Bits == bv.Bits && av.Signed == bv.Signed
	case FloatType:
		return av.Bits == b.(FloatType).Bits
	case LiteralIntType, LiteralFloatType:
		return true
	case PointerType:
		bv := b.(PointerType)
		return EqualModuloConst(av.Child, bv.Child)
	case ArrayType:
		bv := b.(ArrayType)
		return av.Len == bv.Len && EqualModuloConst(av.Child, bv.Child)
	case StructType:
		bv := b.(StructType)
		if av.Name != "" || bv.Name != "" {
			return av.Name == bv.Name
		}
		if len(av.Fields) != len(bv.Fields) {
			return false
		}
		for i, f := range av.Fields {
			if f.Name != bv.Fields[i].Name || !EqualModuloConst(f.Type, bv.Fields[i].Type) {
				return false
			}
		}
		return true
	case EnumType:
		bv := b.(EnumType)
		if av.Name != "" || bv.Name != "" {
			return av.Name == bv.Name
		}
		return false
	case UnionType:
		bv := b.(UnionType)
		if len(av.Members) != len(bv.Members) {
			return false
		}
		for i, m := range av.Members {
			if !EqualModuloConst(m, bv.Members[i]) {
				return false
			}
		}
		return true
	case MaybeType:
		return EqualModuloConst(av.Child, b.(MaybeType).Child)
	case ErrorUnionType:
		bv := b.(ErrorUnionType)
		return EqualModuloConst(av.Err, bv.Err) && EqualModuloConst(av.Child, bv.Child)
	case FnType:
		bv := b.(FnType)
		if len(av.Params) != len(bv.Params) {
			return false
		}
		for i, p := range av.Params {
			if p.ByRef != bv.Params[i].ByRef || !EqualModuloConst(p.Type, bv.Params[i].Type) {
				return false
			}
		}
		return EqualModuloConst(av.ReturnType, bv.ReturnType)
	case BoundFnType:
		return EqualModuloConst(av.Underlying, b.(BoundFnType).Underlying)
	case TypeDeclType:
		return av.Name == b.(TypeDeclType).Name
	default:
		return false
	}
}

// IsNumeric reports whether t is an integer or float kind (sized or literal).
func IsNumeric(t Type) bool {
	switch t.Kind() {
	case Int, Float, LiteralInt, LiteralFloat:
		return true
	default:
		return false
	}
}

// IsInvalid reports whether t is the invalid sentinel -- the one type every
// downstream instruction propagates without further diagnostics.
func IsInvalid(t Type) bool {
	return t.Kind() == Invalid
}
