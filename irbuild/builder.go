// Package irbuild implements the IR builder: a structural translation
// from a type-checked AST into an unverified ir.Executable organized as
// basic blocks of explicitly-ordered instructions. Grounded on
// chai/bootstrap/lower.Lowerer (scope stack, temp-name counter, two-pass
// goto resolution) generalized from MIR's flat statement lists to this
// module's explicit-basic-block ir.Executable.
package irbuild

import (
	"midc/ast"
	"midc/ir"
	"midc/report"
)

// Purpose controls whether an expression should yield a value (RValue) or a
// pointer to its storage (LValue / AddressOf). When asked for an LValue
// the builder must not emit the final dereference.
type Purpose int

const (
	RValue Purpose = iota
	LValue
	AddressOf
)

// deferEntry is one registered `defer` expression, tagged with the exit
// condition under which it re-fires.
type deferEntry struct {
	Kind ast.DeferKind
	Expr ast.Expr
}

// pendingGoto is an unresolved `goto`, recorded for the second pass that
// resolves labels once the whole function body has been walked.
type pendingGoto struct {
	Label string
	Placeholder *ir.Instruction
	Pos report.Pos
}

// Builder holds all per-function construction state. One Builder lowers
// exactly one ast.FuncDecl (or one free-standing inline initializer) into
// one ir.Executable, grounded on chai/bootstrap/lower.Lowerer's per-package
// struct narrowed to per-function scope.
type Builder struct {
	Sink *report.Sink
	Prims ast.PrimitiveTable
	Builtins ast.BuiltinTable
	Imports ast.ImportTable

	Ex *ir.Executable
	cur *ir.BasicBlock

	// breakStack/continueStack are the two target-block stacks loop
	// statements push on entry and pop on exit. A break or continue against
	// an empty stack is a compile error.
	breakStack []*ir.BasicBlock
	continueStack []*ir.BasicBlock
	// loopScopeStack holds, for each active loop, the scope active at the
	// point the loop was entered -- break/continue only unwind defers as far
	// as that scope, not past it.
	loopScopeStack []*ast.Scope

	// deferLists maps each active ast.Scope to its registered defer
	// expressions, walked inner-to-outer on any control-flow exit.
	deferLists map[*ast.Scope][]deferEntry
	scopeStack []*ast.Scope

	// varSlots maps a declared variable to its index in Ex.Vars.
	varSlots map[*ast.VarDecl]int

	// labelBlocks/gotos implement two-pass label resolution: labels are
	// placed directly; gotos are fixed up afterward.
	labelBlocks map[string]*ir.BasicBlock
	gotos []pendingGoto

	tempCounter int
}

// NewBuilder creates a Builder sharing the given diagnostic sink and
// front-end tables across every function it lowers.
func NewBuilder(sink *report.Sink, prims ast.PrimitiveTable, builtins ast.BuiltinTable, imports ast.ImportTable) *Builder {
	return &Builder{
		Sink: sink,
		Prims: prims,
		Builtins: builtins,
		Imports: imports,
	}
}

// BuildFunction lowers a function declaration into an unverified
// ir.Executable, running goto resolution before returning.
func (b *Builder) BuildFunction(fn *ast.FuncDecl, quota int) *ir.Executable {
	b.Ex = ir.NewExecutable(quota)
	b.Ex.IsInline = fn.IsInline
	b.cur = b.Ex.Blocks[0]
	b.deferLists = make(map[*ast.Scope][]deferEntry)
	b.varSlots = make(map[*ast.VarDecl]int)
	b.labelBlocks = make(map[string]*ir.BasicBlock)
	b.gotos = nil
	b.scopeStack = nil
	b.breakStack = nil
	b.continueStack = nil
	b.loopScopeStack = nil

	fnScope := ast.NewScope(nil, fn, fn)
	for _, p := range fn.Params {
		fnScope.Vars[p.Name] = p
		b.declareVar(p, fnScope, false)
	}
	b.pushScope(fnScope)

	b.buildBlock(fn.Body)

	if !b.cur.IsTerminated() {
		b.runDefers(fnScope, exitFallthrough)
		ret := b.emit(ir.OpReturn, fn.Body.Position())
		ret.Operands = nil
	}

	b.popScope(fnScope)

	b.resolveGotos()

	return b.Ex
}

// emit allocates a fresh instruction, appends it to the current block, and
// returns it.
func (b *Builder) emit(op ir.Op, pos report.Pos) *ir.Instruction {
	in := b.Ex.NewInstr(op, ir.SourcePos{Line: pos.StartLine, Col: pos.StartCol})
	b.cur.Append(in)
	return in
}

// use records that in reads operand, bumping its ref count.
func (b *Builder) use(in *ir.Instruction, operand *ir.Instruction) {
	in.Operands = append(in.Operands, operand)
	operand.RefCount++
}

func (b *Builder) newBlock(nameHint string) *ir.BasicBlock {
	return b.Ex.NewBlock(nameHint)
}

// setCurrent switches the active block. If the previous block never
// terminated (e.g. an if-branch that falls through), the caller is
// responsible for emitting the join branch first.
func (b *Builder) setCurrent(bb *ir.BasicBlock) {
	b.cur = bb
}

func (b *Builder) pushScope(s *ast.Scope) {
	b.scopeStack = append(b.scopeStack, s)
}

func (b *Builder) popScope(s *ast.Scope) {
	b.scopeStack = b.scopeStack[:len(b.scopeStack)-1]
	delete(b.deferLists, s)
}

func (b *Builder) declareVar(vd *ast.VarDecl, scope *ast.Scope, isConst bool) int {
	v := &ir.Variable{
		Name: vd.Name,
		SrcIsConst: vd.IsConst || isConst,
		MemSlotIndex: ir.NoSlot,
	}
	idx := b.Ex.DeclareVar(v)
	b.varSlots[vd] = idx
	return idx
}

func (b *Builder) tempName() string {
	b.tempCounter++
	return "$t" + itoa(b.tempCounter)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
