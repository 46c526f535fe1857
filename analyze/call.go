package analyze

import (
	"midc/coerce"
	"midc/ir"
	"midc/report"
	"midc/types"
	"midc/value"
)

// analyzeCall resolves a Call's callee kind: a type value denotes a cast
// call, a bound-fn value prepends its captured receiver, a plain fn value
// or runtime function pointer dispatches normally. Inline calls and calls
// through a still-generic function are rejected with an Unimplemented
// diagnostic rather than silently mis-analyzed.
func (a *Analyzer) analyzeCall(old *ir.Instruction) {
	aux, _ := old.Aux.(ir.CallAux)
	callee := a.operand(old, 0)

	if aux.Inline {
		a.errorf(old, report.KindUnimplemented, "inline call evaluation is not implemented")
		return
	}

	args := make([]*ir.Instruction, 0, len(old.Operands)-1)
	for i := 1; i < len(old.Operands); i++ {
		args = append(args, a.operand(old, i))
	}

	if callee.Val.IsStatic() && callee.Val.Payload == value.PayloadType {
		a.analyzeCastCall(old, callee, args)
		return
	}

	var sig types.FnType
	switch {
	case callee.Val.IsStatic() && callee.Val.Payload == value.PayloadBoundFn:
		sig = callee.Val.BoundFn.Fn.Sig
		self := a.materialize(old.Pos, callee.Val.BoundFn.Self)
		args = append([]*ir.Instruction{self}, args...)
	case callee.Val.IsStatic() && callee.Val.Payload == value.PayloadFn:
		sig = callee.Val.Fn.Sig
	default:
		if _, ok := callee.ResultType.(types.GenericFnType); ok {
			a.errorf(old, report.KindUnimplemented, "calling a generic function is not implemented")
			return
		}
		fnType, ok := callee.ResultType.(types.FnType)
		if !ok {
			a.errorf(old, report.KindStructural, "call target is not callable")
			return
		}
		sig = fnType
	}

	if len(args) != len(sig.Params) {
		a.errorf(old, report.KindStructural, "call supplies %d argument(s), expected %d", len(args), len(sig.Params))
		return
	}

	newArgs := make([]*ir.Instruction, len(args))
	for i, arg := range args {
		coerced, res := coerce.ImplicitCast(arg.Val, sig.Params[i].Type)
		if res == coerce.No {
			a.errorf(old, report.KindTypeMismatch, "argument %d has an incompatible type", i+1)
			return
		}
		newArgs[i] = a.withType(old.Pos, arg, coerced)
	}

	n := a.emit(ir.OpCall, old.Pos)
	a.use(n, callee)
	for _, na := range newArgs {
		a.use(n, na)
	}
	n.Aux = aux
	n.ResultType = sig.ReturnType
	n.Val = value.MakeRuntime(sig.ReturnType)
	a.link(old, n)
}

// analyzeCastCall implements calling a type value as a conversion, e.g.
// `i32(x)`.
func (a *Analyzer) analyzeCastCall(old *ir.Instruction, callee *ir.Instruction, args []*ir.Instruction) {
	if len(args) != 1 {
		a.errorf(old, report.KindStructural, "a type-cast call takes exactly one argument")
		return
	}
	dest := callee.Val.AsType
	result, res := coerce.ExplicitCast(args[0].Val, dest, a.Cfg.SizeIndexBits)
	if res == coerce.No {
		a.errorf(old, report.KindInvalidCast, "cannot cast '%s' to '%s'", args[0].ResultType.Repr(), dest.Repr())
		return
	}

	if result.IsStatic() {
		n := a.emit(ir.OpConst, old.Pos)
		n.ResultType = dest
		n.Val = result
		a.link(old, n)
		return
	}

	n := a.emit(ir.OpCast, old.Pos)
	a.use(n, args[0])
	n.Aux = ir.CastAux{DestType: dest, Explicit: true}
	n.ResultType = dest
	n.Val = value.MakeRuntime(dest)
	a.link(old, n)
}

func (a *Analyzer) materialize(pos ir.SourcePos, v value.Value) *ir.Instruction {
	n := a.emit(ir.OpConst, pos)
	n.ResultType = v.Type
	n.Val = v
	return n
}
