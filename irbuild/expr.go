package irbuild

import (
	"math/big"

	"midc/ast"
	"midc/bignum"
	"midc/ir"
	"midc/report"
	"midc/types"
	"midc/value"
)

// buildExpr is the main dispatcher: translate one AST node into an
// instruction sequence appended to the current block, returning the
// Instruction that represents the node's value.
func (b *Builder) buildExpr(e ast.Expr, purpose Purpose) *ir.Instruction {
	switch n := e.(type) {
	case *ast.IntLit:
		return b.buildIntLit(n)
	case *ast.FloatLit:
		return b.buildFloatLit(n)
	case *ast.BoolLit:
		in := b.emit(ir.OpConst, n.Pos)
		in.Val = value.MakeBool(types.TheBool, n.Value)
		return in
	case *ast.StringLit:
		return b.buildStringLit(n)
	case *ast.NullLit:
		in := b.emit(ir.OpConst, n.Pos)
		in.Val = value.Value{Special: value.Static, Type: types.TheNullLit}
		return in
	case *ast.UndefLit:
		in := b.emit(ir.OpConst, n.Pos)
		in.Val = value.MakeUndef(types.TheUndefLit)
		return in
	case *ast.Ident:
		return b.buildIdent(n, purpose)
	case *ast.UnaryExpr:
		return b.buildUnary(n)
	case *ast.BinaryExpr:
		return b.buildBinary(n)
	case *ast.CastExpr:
		return b.buildCast(n)
	case *ast.AddrOf:
		return b.buildExpr(n.Operand, AddressOf)
	case *ast.Deref:
		return b.buildDeref(n, purpose)
	case *ast.FieldAccess:
		return b.buildFieldAccess(n, purpose)
	case *ast.IndexExpr:
		return b.buildIndex(n, purpose)
	case *ast.CallExpr:
		return b.buildCall(n)
	case *ast.BuiltinCallExpr:
		return b.buildBuiltinCall(n)
	case *ast.StructInitExpr:
		return b.buildStructInit(n)
	case *ast.ArrayInitExpr:
		return b.buildArrayInit(n)
	case *ast.IfExpr:
		return b.buildIfExpr(n)
	case *ast.WhileExpr:
		return b.buildWhileExpr(n)
	case *ast.ForExpr:
		return b.buildForExpr(n)
	case *ast.SwitchExpr:
		return b.buildSwitchExpr(n)
	default:
		b.Sink.Error(report.KindStructural, e.Position(), "unsupported expression node %T", e)
		in := b.emit(ir.OpUnreachable, e.Position())
		in.ResultType = types.TheInvalid
		return in
	}
}

func (b *Builder) buildIntLit(n *ast.IntLit) *ir.Instruction {
	bi, ok := new(big.Int).SetString(n.Text, 0)
	in := b.emit(ir.OpConst, n.Pos)
	if !ok {
		b.Sink.Error(report.KindStructural, n.Pos, "malformed integer literal %q", n.Text)
		in.ResultType = types.TheInvalid
		return in
	}
	in.Val = value.MakeInt(types.LiteralIntType{}, bignum.NewIntFromBig(bi))
	return in
}

func (b *Builder) buildFloatLit(n *ast.FloatLit) *ir.Instruction {
	bf, _, err := big.ParseFloat(n.Text, 10, 200, big.ToNearestEven)
	in := b.emit(ir.OpConst, n.Pos)
	if err != nil {
		b.Sink.Error(report.KindStructural, n.Pos, "malformed float literal %q", n.Text)
		in.ResultType = types.TheInvalid
		return in
	}
	in.Val = value.MakeFloat(types.LiteralFloatType{}, bignum.NewFloatFromBig(bf))
	return in
}

func (b *Builder) buildStringLit(n *ast.StringLit) *ir.Instruction {
	// A string literal is represented as a constant pointer into a
	// synthesized byte array Value plus a length, mirroring the slice
	// representation used elsewhere.
	bytes := []byte(n.Value)
	elems := make([]value.Value, len(bytes))
	for i, ch := range bytes {
		elems[i] = value.MakeInt(types.IntType{Bits: 8, Signed: false}, bignum.NewInt(int64(ch)))
	}
	arrType := types.ArrayType{Child: types.IntType{Bits: 8, Signed: false}, Len: len(bytes)}
	base := value.MakeArray(arrType, elems)
	in := b.emit(ir.OpConst, n.Pos)
	in.Val = value.MakeConstPtr(types.PointerType{Child: arrType.Child, Const: true}, &base, value.SENTINEL, true)
	return in
}

func (b *Builder) buildIdent(n *ast.Ident, purpose Purpose) *ir.Instruction {
	var vd *ast.VarDecl
	var ok bool
	if len(b.scopeStack) > 0 {
		vd, ok = b.scopeStack[len(b.scopeStack)-1].Lookup(n.Name)
	}
	if !ok {
		b.Sink.Error(report.KindUndeclaredName, n.Pos, "undeclared name '%s'", n.Name)
		in := b.emit(ir.OpUnreachable, n.Pos)
		in.ResultType = types.TheInvalid
		return in
	}

	ptr := b.emit(ir.OpVarPtr, n.Pos)
	ptr.Aux = ir.VarPtrAux{VarIndex: b.varSlots[vd]}
	b.Ex.Vars[b.varSlots[vd]].RefCount++

	if purpose == LValue || purpose == AddressOf {
		return ptr
	}

	load := b.emit(ir.OpLoadPtr, n.Pos)
	b.use(load, ptr)
	return load
}

func (b *Builder) buildUnary(n *ast.UnaryExpr) *ir.Instruction {
	operand := b.buildExpr(n.Operand, RValue)
	in := b.emit(ir.OpUnOp, n.Pos)
	kind := ir.UnNeg
	switch n.Op {
	case ast.UnaryNeg:
		kind = ir.UnNeg
	case ast.UnaryNot:
		kind = ir.UnNot
	case ast.UnaryBitNot:
		kind = ir.UnBitNot
	}
	in.Aux = ir.UnOpAux{Kind: kind}
	b.use(in, operand)
	return in
}

var binOpTable = map[ast.BinaryOp]ir.BinOpKind{
	ast.BinAdd: ir.BinAdd, ast.BinSub: ir.BinSub, ast.BinMul: ir.BinMul,
	ast.BinDiv: ir.BinDiv, ast.BinMod: ir.BinMod, ast.BinShl: ir.BinShl,
	ast.BinShr: ir.BinShr, ast.BinBitAnd: ir.BinAnd, ast.BinBitOr: ir.BinOr,
	ast.BinBitXor: ir.BinXor, ast.BinBoolAnd: ir.BinBoolAnd, ast.BinBoolOr: ir.BinBoolOr,
	ast.BinEq: ir.BinEq, ast.BinNEq: ir.BinNEq, ast.BinLT: ir.BinLT,
	ast.BinGT: ir.BinGT, ast.BinLTEq: ir.BinLTEq, ast.BinGTEq: ir.BinGTEq,
}

func (b *Builder) buildBinary(n *ast.BinaryExpr) *ir.Instruction {
	lhs := b.buildExpr(n.Lhs, RValue)
	rhs := b.buildExpr(n.Rhs, RValue)
	in := b.emit(ir.OpBinOp, n.Pos)
	kind := binOpTable[n.Op]
	if n.WrapOnOverflow {
		switch kind {
		case ir.BinAdd:
			kind = ir.BinAddWrap
		case ir.BinSub:
			kind = ir.BinSubWrap
		case ir.BinMul:
			kind = ir.BinMulWrap
		}
	}
	in.Aux = ir.BinOpAux{Kind: kind}
	b.use(in, lhs)
	b.use(in, rhs)
	return in
}

func (b *Builder) buildCast(n *ast.CastExpr) *ir.Instruction {
	operand := b.buildExpr(n.Operand, RValue)
	destType := b.resolveType(n.DestType)
	in := b.emit(ir.OpCast, n.Pos)
	in.Aux = ir.CastAux{DestType: destType, Explicit: true}
	b.use(in, operand)
	return in
}

func (b *Builder) buildDeref(n *ast.Deref, purpose Purpose) *ir.Instruction {
	ptr := b.buildExpr(n.Operand, RValue)
	if purpose == LValue || purpose == AddressOf {
		return ptr
	}
	load := b.emit(ir.OpLoadPtr, n.Pos)
	b.use(load, ptr)
	return load
}

func (b *Builder) buildFieldAccess(n *ast.FieldAccess, purpose Purpose) *ir.Instruction {
	base := b.buildExpr(n.Base, LValue)
	ptr := b.emit(ir.OpFieldPtr, n.Pos)
	ptr.Aux = ir.FieldPtrAux{FieldName: n.Field}
	b.use(ptr, base)

	if purpose == LValue || purpose == AddressOf {
		return ptr
	}
	load := b.emit(ir.OpLoadPtr, n.Pos)
	b.use(load, ptr)
	return load
}

func (b *Builder) buildIndex(n *ast.IndexExpr, purpose Purpose) *ir.Instruction {
	base := b.buildExpr(n.Base, LValue)
	index := b.buildExpr(n.Index, RValue)
	ptr := b.emit(ir.OpElemPtr, n.Pos)
	ptr.Aux = ir.ElemPtrAux{}
	b.use(ptr, base)
	b.use(ptr, index)

	if purpose == LValue || purpose == AddressOf {
		return ptr
	}
	load := b.emit(ir.OpLoadPtr, n.Pos)
	b.use(load, ptr)
	return load
}

func (b *Builder) buildCall(n *ast.CallExpr) *ir.Instruction {
	callee := b.buildExpr(n.Callee, RValue)
	in := b.emit(ir.OpCall, n.Pos)
	in.Aux = ir.CallAux{}
	b.use(in, callee)
	for _, a := range n.Args {
		b.use(in, b.buildExpr(a, RValue))
	}
	return in
}

func (b *Builder) buildBuiltinCall(n *ast.BuiltinCallExpr) *ir.Instruction {
	op, wantArgs := builtinOp(n.Kind)
	if len(n.Args) != wantArgs && wantArgs >= 0 {
		b.Sink.Error(report.KindIllTypedBuiltin, n.Pos, "builtin expects %d argument(s), got %d", wantArgs, len(n.Args))
	}

	in := b.emit(op, n.Pos)
	switch n.Kind {
	case ast.BuiltinImport:
		if len(n.Args) == 1 {
			if sl, ok := n.Args[0].(*ast.StringLit); ok {
				in.Aux = ir.ImportAux{Path: sl.Value}
			}
		}
		return in
	case ast.BuiltinCompileVar:
		if len(n.Args) == 1 {
			if sl, ok := n.Args[0].(*ast.StringLit); ok {
				in.Aux = ir.CompileVarAux{Name: sl.Value}
			}
		}
		return in
	}

	for _, a := range n.Args {
		b.use(in, b.buildExpr(a, RValue))
	}
	return in
}

func builtinOp(kind ast.BuiltinKind) (ir.Op, int) {
	switch kind {
	case ast.BuiltinTypeOf:
		return ir.OpTypeOf, 1
	case ast.BuiltinSizeOf:
		return ir.OpSizeOf, 1
	case ast.BuiltinImport:
		return ir.OpImport, 1
	case ast.BuiltinSetFnTest:
		return ir.OpSetFnTest, 0
	case ast.BuiltinSetFnVisible:
		return ir.OpSetFnVisible, 1
	case ast.BuiltinSetDebugSafety:
		return ir.OpSetDebugSafety, 1
	case ast.BuiltinCompileVar:
		return ir.OpCompileVar, 1
	case ast.BuiltinClz:
		return ir.OpClz, 1
	case ast.BuiltinCtz:
		return ir.OpCtz, 1
	case ast.BuiltinStaticEval:
		return ir.OpStaticEval, 1
	default:
		return ir.OpUnreachable, -1
	}
}

func (b *Builder) buildStructInit(n *ast.StructInitExpr) *ir.Instruction {
	in := b.emit(ir.OpStructInit, n.Pos)
	// Field-name -> struct-field-index resolution happens in the analyzer,
	// which has the declared StructType in hand; the builder only preserves
	// initializer order as the operand order.
	for _, f := range n.Fields {
		b.use(in, b.buildExpr(f.Value, RValue))
	}
	aux := ir.StructInitAux{StructType: types.StructType{Name: n.StructName}}
	if n.Spread != nil {
		aux.SpreadBase = b.buildExpr(n.Spread, RValue)
	}
	in.Aux = aux
	return in
}

func (b *Builder) buildArrayInit(n *ast.ArrayInitExpr) *ir.Instruction {
	in := b.emit(ir.OpContainerInitList, n.Pos)
	in.Aux = ir.ContainerInitListAux{}
	for _, e := range n.Elems {
		b.use(in, b.buildExpr(e, RValue))
	}
	return in
}

// resolveType resolves a source type expression via the front-end's
// primitive table. Non-primitive type expressions (user-defined structs,
// pointers, etc.) are expected to already have been lowered by the
// resolver into a types.Type attached through DeclaredType on a wrapping
// Expr; this module does not parse type syntax itself.
func (b *Builder) resolveType(t ast.Type) types.Type {
	if e, ok := t.(ast.Expr); ok {
		if dt := e.DeclaredType(); dt != nil {
			return dt
		}
	}
	return types.TheInvalid
}
