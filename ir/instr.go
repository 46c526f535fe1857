// Package ir implements the instruction, basic-block, executable, and
// variable model -- the unverified/verified IR shared by the builder and
// the analyzer. It is grounded on the tagged-op-code style of
// chai/bootstrap/mir.Instruction (mir_instr.go) generalized from MIR's flat
// instruction list to a full SSA-like variant set with explicit basic
// blocks and phi joins.
package ir

import (
	"midc/types"
	"midc/value"
)

// Op tags the closed instruction variant set.
// Dispatch on Op is always a switch, never an interface hierarchy.
type Op int

const (
	OpConst Op = iota
	OpUnOp
	OpBinOp
	OpCast
	OpRef
	OpLoadPtr
	OpStorePtr
	OpDeclVar
	OpVarPtr
	OpFieldPtr
	OpStructFieldPtr
	OpEnumFieldPtr
	OpElemPtr
	OpCall
	OpPhi
	OpBr
	OpCondBr
	OpSwitchBr
	OpSwitchTarget
	OpSwitchVar
	OpReturn
	OpUnreachable
	OpTypeOf
	OpToPtrType
	OpPtrTypeChild
	OpArrayType
	OpSliceType
	OpSizeOf
	OpTestNull
	OpUnwrapMaybe
	OpClz
	OpCtz
	OpEnumTag
	OpStaticEval
	OpArrayLen
	OpImport
	OpCompileVar
	OpContainerInitList
	OpContainerInitFields
	OpStructInit
	OpAsm
	OpSetFnTest
	OpSetFnVisible
	OpSetDebugSafety
)

var opNames = map[Op]string{
	OpConst: "const", OpUnOp: "unop", OpBinOp: "binop", OpCast: "cast",
	OpRef: "ref", OpLoadPtr: "load_ptr", OpStorePtr: "store_ptr",
	OpDeclVar: "decl_var", OpVarPtr: "var_ptr", OpFieldPtr: "field_ptr",
	OpStructFieldPtr: "struct_field_ptr", OpEnumFieldPtr: "enum_field_ptr",
	OpElemPtr: "elem_ptr", OpCall: "call", OpPhi: "phi", OpBr: "br",
	OpCondBr: "cond_br", OpSwitchBr: "switch_br", OpSwitchTarget: "switch_target",
	OpSwitchVar: "switch_var", OpReturn: "return", OpUnreachable: "unreachable",
	OpTypeOf: "type_of", OpToPtrType: "to_ptr_type", OpPtrTypeChild: "ptr_type_child",
	OpArrayType: "array_type", OpSliceType: "slice_type", OpSizeOf: "size_of",
	OpTestNull: "test_null", OpUnwrapMaybe: "unwrap_maybe", OpClz: "clz", OpCtz: "ctz",
	OpEnumTag: "enum_tag", OpStaticEval: "static_eval", OpArrayLen: "array_len",
	OpImport: "import", OpCompileVar: "compile_var",
	OpContainerInitList: "container_init_list", OpContainerInitFields: "container_init_fields",
	OpStructInit: "struct_init", OpAsm: "asm", OpSetFnTest: "set_fn_test",
	OpSetFnVisible: "set_fn_visible", OpSetDebugSafety: "set_debug_safety",
}

func (o Op) String() string {
	if n, ok := opNames[o]; ok {
		return n
	}
	return "<unknown op>"
}

// ReturnKnowledge is the hint attached to a Cast output.
type ReturnKnowledge int

const (
	KnowledgeNone ReturnKnowledge = iota
	KnowledgeNonNull
	KnowledgeNull
	KnowledgeError
	KnowledgeNonError
)

// SideEffecting reports whether instructions with this Op survive dead-code
// pruning unconditionally.
func (o Op) SideEffecting() bool {
	switch o {
	case OpBr, OpCondBr, OpSwitchBr, OpDeclVar, OpStorePtr, OpCall, OpReturn,
		OpUnreachable, OpSetFnTest, OpSetFnVisible, OpSetDebugSafety, OpImport, OpAsm:
		return true
	default:
		return false
	}
}

// SourcePos is the narrow position reference the builder and analyzer pin to
// every instruction for diagnostics.
// The concrete representation is owned by the front-end; this module only
// stores it opaquely and hands it back to package report.
type SourcePos struct {
	Line, Col int
}

// Instruction is the single tagged variant struct shared by every Op;
// per-op data lives in the fields below that are only meaningful for
// particular Ops (mirroring the shared-Operands-slice approach of
// mir.Instruction, generalized with a few named fields because this IR's
// ops are heterogeneous enough that an all-Operands slice would lose the
// per-op arity the analyzer relies on).
type Instruction struct {
	// DebugID is a stable identifier assigned at construction time, used by
	// backward-branch detection and diagnostics.
	DebugID int
	Op Op
	Pos SourcePos

	// Operands are the instructions this instruction reads.
	Operands []*Instruction

	// ResultType is assigned only by the analyzer.
	ResultType types.Type

	// Val is the Value assigned by the analyzer: Runtime for dynamic
	// results, Static/Undef otherwise.
	Val value.Value

	// RefCount is how many downstream instructions read this instruction.
	RefCount int

	// Other is the self-loop sentinel: Executable.NewInstr sets
	// Other == self on every instruction so references are always
	// dereferenceable, and nothing points it elsewhere. The old-to-new
	// cross-link lives in package analyze's CrossLinks side table.
	Other *Instruction

	// ReturnKnowledge is meaningful only for OpCast results.
ReturnKnowledge ReturnKnowledge

	// Aux carries op-specific structured data (e.g. which BinOp kind, which
	// field name, which branch targets). See aux.go for the concrete types.
	Aux any
}

// SelfLoop sets Other = self, the construction-time sentinel.
func (in *Instruction) SelfLoop() {
	in.Other = in
}
