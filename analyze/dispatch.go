package analyze

import (
	"midc/ir"
	"midc/report"
)

// analyzeInstr is the per-instruction analysis contract dispatcher: one
// case per Op, each producing zero or more new instructions in a.curBlock
// and linking old's debug id to the new instruction other operands should
// resolve through.
func (a *Analyzer) analyzeInstr(old *ir.Instruction) {
	switch old.Op {
	case ir.OpConst:
		a.analyzeConst(old)
	case ir.OpUnOp:
		a.analyzeUnOp(old)
	case ir.OpBinOp:
		a.analyzeBinOp(old)
	case ir.OpCast:
		a.analyzeCast(old)
	case ir.OpRef:
		a.analyzeRef(old)
	case ir.OpLoadPtr:
		a.analyzeLoadPtr(old)
	case ir.OpStorePtr:
		a.analyzeStorePtr(old)
	case ir.OpDeclVar:
		a.analyzeDeclVar(old)
	case ir.OpVarPtr:
		a.analyzeVarPtr(old)
	case ir.OpFieldPtr:
		a.analyzeFieldPtr(old)
	case ir.OpStructFieldPtr:
		a.analyzeStructFieldPtr(old)
	case ir.OpEnumFieldPtr:
		a.analyzeEnumFieldPtr(old)
	case ir.OpElemPtr:
		a.analyzeElemPtr(old)
	case ir.OpCall:
		a.analyzeCall(old)
	case ir.OpPhi:
		a.analyzePhi(old)
	case ir.OpBr, ir.OpCondBr, ir.OpSwitchBr:
		// Handled directly by analyzeBlock's splicing loop; a terminator
		// never reaches this dispatcher.
		a.errorf(old, report.KindStructural, "unreachable: terminator reached the instruction dispatcher")
	case ir.OpSwitchTarget:
		a.analyzeSwitchTarget(old)
	case ir.OpSwitchVar:
		a.analyzeSwitchVar(old)
	case ir.OpReturn:
		a.analyzeReturn(old)
	case ir.OpUnreachable:
		n := a.emit(ir.OpUnreachable, old.Pos)
		a.link(old, n)
	case ir.OpTypeOf:
		a.analyzeTypeOf(old)
	case ir.OpToPtrType:
		a.analyzeToPtrType(old)
	case ir.OpPtrTypeChild:
		a.analyzePtrTypeChild(old)
	case ir.OpArrayType:
		a.analyzeArrayType(old)
	case ir.OpSliceType:
		a.analyzeSliceType(old)
	case ir.OpSizeOf:
		a.analyzeSizeOf(old)
	case ir.OpTestNull:
		a.analyzeTestNull(old)
	case ir.OpUnwrapMaybe:
		a.analyzeUnwrapMaybe(old)
	case ir.OpClz, ir.OpCtz:
		a.analyzeClzCtz(old)
	case ir.OpEnumTag:
		a.analyzeEnumTag(old)
	case ir.OpStaticEval:
		a.analyzeStaticEval(old)
	case ir.OpArrayLen:
		a.analyzeArrayLen(old)
	case ir.OpImport:
		a.analyzeImport(old)
	case ir.OpCompileVar:
		a.analyzeCompileVar(old)
	case ir.OpContainerInitList:
		a.analyzeContainerInitList(old)
	case ir.OpContainerInitFields:
		a.analyzeContainerInitFields(old)
	case ir.OpStructInit:
		a.analyzeStructInit(old)
	case ir.OpAsm:
		a.analyzeAsm(old)
	case ir.OpSetFnTest, ir.OpSetFnVisible, ir.OpSetDebugSafety:
		a.analyzeAttrSetter(old)
	default:
		a.errorf(old, report.KindUnimplemented, "analysis of op '%s' is not implemented", old.Op)
	}
}

// operand resolves old's i'th operand to its already-analyzed counterpart.
func (a *Analyzer) operand(old *ir.Instruction, i int) *ir.Instruction {
	return a.resolve(old.Operands[i])
}
