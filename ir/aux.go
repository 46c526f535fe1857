package ir

import "midc/types"

// UnOpKind and BinOpKind enumerate the arithmetic/comparison/logical
// operators folded by package constfold and emitted at runtime otherwise.
type UnOpKind int

const (
	UnNeg UnOpKind = iota
	UnNot
	UnBitNot
)

type BinOpKind int

const (
	BinAdd BinOpKind = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinShl
	BinShr
	BinAnd
	BinOr
	BinXor
	BinBoolAnd
	BinBoolOr
	BinEq
	BinNEq
	BinLT
	BinGT
	BinLTEq
	BinGTEq

	// Wrapping variants truncate/two's-complement wrap instead of erroring
	// on overflow.
	BinAddWrap
	BinSubWrap
	BinMulWrap
)

// UnOpAux is the Aux payload for OpUnOp.
type UnOpAux struct {
	Kind UnOpKind
}

// BinOpAux is the Aux payload for OpBinOp.
type BinOpAux struct {
	Kind BinOpKind
}

// CastAux is the Aux payload for OpCast.
type CastAux struct {
	DestType types.Type
	Explicit bool
}

// DeclVarAux is the Aux payload for OpDeclVar.
type DeclVarAux struct {
	VarIndex int // index into Executable.Vars
}

// VarPtrAux is the Aux payload for OpVarPtr.
type VarPtrAux struct {
	VarIndex int
}

// FieldPtrAux is the Aux payload for OpFieldPtr / OpStructFieldPtr /
// OpEnumFieldPtr.
type FieldPtrAux struct {
	FieldName string
	FieldIndex int
}

// ElemPtrAux is the Aux payload for OpElemPtr.
type ElemPtrAux struct{}

// CallAux is the Aux payload for OpCall.
type CallAux struct {
	// Inline marks calls the abstract interpreter must evaluate rather than
	// emit.
	Inline bool
}

// PhiIncoming pairs an incoming BasicBlock with the Instruction that
// supplies the value reaching the phi along that edge.
type PhiIncoming struct {
	Block *BasicBlock
	Value *Instruction
}

// PhiAux is the Aux payload for OpPhi.
type PhiAux struct {
	Incoming []PhiIncoming
}

// CondBrAux is the Aux payload for OpCondBr.
type CondBrAux struct {
	ThenBlock *BasicBlock
	ElseBlock *BasicBlock
}

// BrAux is the Aux payload for OpBr.
type BrAux struct {
	Target *BasicBlock
}

// SwitchCase is one arm of a SwitchBr.
type SwitchCase struct {
	// Value is nil for the `else` arm.
	Value *Instruction
	Target *BasicBlock
}

// SwitchBrAux is the Aux payload for OpSwitchBr.
type SwitchBrAux struct {
	Cases []SwitchCase
	// ElseIdx indexes Cases for the single permitted `else` arm, or -1 if
	// the switch has no else (only legal over an exhaustive payload-enum
	// tag switch).
	ElseIdx int
}

// ImportAux is the Aux payload for OpImport.
type ImportAux struct {
	Path string
}

// CompileVarAux is the Aux payload for OpCompileVar.
type CompileVarAux struct {
	Name string
}

// AsmAux is the Aux payload for OpAsm.
type AsmAux struct {
	HasSideEffects bool
	Volatile bool
	HasOutputs bool
}

// ContainerInitListAux/ContainerInitFieldsAux/StructInitAux are the Aux
// payloads for aggregate-construction instructions.
type ContainerInitListAux struct {
	ElemType types.Type
}

type ContainerInitFieldsAux struct {
	StructType types.StructType
	// FieldOrder maps each operand position to the struct field index it
	// initializes.
	FieldOrder []int
}

type StructInitAux struct {
	StructType types.StructType
	// SpreadBase is non-nil when the initializer uses `...base` to fill
	// unspecified fields.
	SpreadBase *Instruction
}
