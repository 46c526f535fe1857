// Package value implements the compile-time/runtime value model -- the
// central datum threaded through construction, folding, and analysis. It is
// grounded on the old/new split of chai/bootstrap/mir.Value (Constant vs
// Identifier) generalized to a full Static/Undef/Runtime lattice, plus the
// typed payload variants borrowed from chai/src/typing's closed DataType
// set.
package value

import (
	"midc/bignum"
	"midc/types"
)

// Specialness tags the three states a Value can be in.
type Specialness int

const (
	// Runtime values are opaque at compile time -- they are code to emit.
	Runtime Specialness = iota
	// Undef is an explicitly undefined value (Chai's `undefined`).
	Undef
	// Static values carry a concrete compile-time payload.
	Static
)

// SENTINEL is the ConstPtr.Index value meaning "addresses Base itself"
// rather than an element within Base's array payload.
const SENTINEL = -1

// PayloadKind tags the closed set of Static payload variants.
type PayloadKind int

const (
	PayloadNone PayloadKind = iota
	PayloadInt
	PayloadFloat
	PayloadBool
	PayloadType
	PayloadFn
	PayloadBoundFn
	PayloadNamespace
	PayloadScope
	PayloadArray
	PayloadStruct
	PayloadEnum
	PayloadMaybe
	PayloadConstPtr
)

// ConstPtr is a compile-time addressing value: {base, index}. index ==
// SENTINEL denotes "base itself"; otherwise it denotes an element index
// within base's array payload.
type ConstPtr struct {
	Base *Value
	Index int
	IsCStr bool
}

// Enum is the tag-index + optional-payload representation of a Static enum
// value.
type Enum struct {
	Tag int
	Payload *Value // nil if the tag carries no payload
}

// Maybe is the optional-Value representation of a Static `?T` value.
type Maybe struct {
	Present bool
	Inner *Value // nil when !Present
}

// Value is the central datum of this model. Exactly one of the payload
// fields below is meaningful, selected by Payload when Special == Static.
type Value struct {
	Special Specialness
	Type types.Type

	Payload PayloadKind

	Int bignum.Int
	Float bignum.Float
	Bool bool
	AsType types.Type
	Fn *FnHandle
	BoundFn *BoundFnHandle
	Ns *NamespaceHandle
	Scope *ScopeHandle
	Array []Value
	Struct map[int]Value
	Enum Enum
	Maybe Maybe
	Ptr ConstPtr

	// DependsOnCompileVar propagates through folding; true iff this value was
	// derived from a build-time configuration query.
	DependsOnCompileVar bool
}

// FnHandle is a first-class function value.
type FnHandle struct {
	Name string
	Sig types.FnType
}

// BoundFnHandle is a function handle with its first argument pre-captured.
type BoundFnHandle struct {
	Fn *FnHandle
	Self Value
}

// NamespaceHandle is a first-class namespace (module/package) value.
type NamespaceHandle struct {
	Name string
	Symbols map[string]*Value
}

// ScopeHandle is a first-class lexical scope value (used by `@typeOf` style
// builtins that need to reify the enclosing scope).
type ScopeHandle struct {
	ID int
}

// -----------------------------------------------------------------------------
// Constructors.

func MakeRuntime(t types.Type) Value {
	return Value{Special: Runtime, Type: t}
}

func MakeUndef(t types.Type) Value {
	return Value{Special: Undef, Type: t}
}

func MakeBool(t types.Type, b bool) Value {
	return Value{Special: Static, Type: t, Payload: PayloadBool, Bool: b}
}

func MakeInt(t types.Type, i bignum.Int) Value {
	return Value{Special: Static, Type: t, Payload: PayloadInt, Int: i}
}

func MakeFloat(t types.Type, f bignum.Float) Value {
	return Value{Special: Static, Type: t, Payload: PayloadFloat, Float: f}
}

func MakeType(t types.Type) Value {
	return Value{Special: Static, Type: types.TheMetatype, Payload: PayloadType, AsType: t}
}

func MakeArray(t types.Type, elems []Value) Value {
	return Value{Special: Static, Type: t, Payload: PayloadArray, Array: elems}
}

func MakeStruct(t types.Type, fields map[int]Value) Value {
	return Value{Special: Static, Type: t, Payload: PayloadStruct, Struct: fields}
}

func MakeEnum(t types.Type, tag int, payload *Value) Value {
	return Value{Special: Static, Type: t, Payload: PayloadEnum, Enum: Enum{Tag: tag, Payload: payload}}
}

func MakeMaybe(t types.Type, inner *Value) Value {
	if inner == nil {
		return Value{Special: Static, Type: t, Payload: PayloadMaybe, Maybe: Maybe{Present: false}}
	}
	return Value{Special: Static, Type: t, Payload: PayloadMaybe, Maybe: Maybe{Present: true, Inner: inner}}
}

func MakeConstPtr(t types.Type, base *Value, index int, isCStr bool) Value {
	return Value{Special: Static, Type: t, Payload: PayloadConstPtr, Ptr: ConstPtr{Base: base, Index: index, IsCStr: isCStr}}
}

// IsStatic, IsRuntime, IsUndef are the three specialness predicates used
// pervasively by the analyzer and folder.
func (v Value) IsStatic() bool { return v.Special == Static }
func (v Value) IsRuntime() bool { return v.Special == Runtime }
func (v Value) IsUndef() bool { return v.Special == Undef }

// Pointee returns the addressed sub-Value of a constant pointer.
func Pointee(ptr ConstPtr) Value {
	if ptr.Index == SENTINEL {
		return *ptr.Base
	}
	return ptr.Base.Array[ptr.Index]
}

// ElemPtr composes a constant-pointer index: indexing a pointer with known
// base and offset o by k yields {base, o+k} after a bounds check. ok is
// false on an out-of-bounds access.
func ElemPtr(ptr ConstPtr, k int) (ConstPtr, bool) {
	base := ptr.Index
	if base == SENTINEL {
		base = 0
	}
	newIndex := base + k
	if newIndex < 0 || newIndex >= len(ptr.Base.Array) {
		return ConstPtr{}, false
	}
	return ConstPtr{Base: ptr.Base, Index: newIndex, IsCStr: ptr.IsCStr}, true
}
