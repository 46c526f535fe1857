package ir

import "midc/types"

// NoSlot is the SENTINEL mem-slot index meaning a variable has no
// compile-time storage cell.
const NoSlot = -1

// Variable is created exactly once per declaration and destroyed with its
// enclosing scope; ownership lives on the Executable's Vars arena rather
// than on a back-pointer from the declaring scope, breaking the VarPtr ->
// Variable -> scope -> function -> body reference cycle a back-pointer
// would otherwise create.
type Variable struct {
	Name string

	// DeclScope is the index of the declaring ast.Scope, stored by index
	// rather than pointer for the same reason.
	DeclScope int

	DeclaredType types.Type

	// SrcIsConst is true for a user-declared `const` binding.
	SrcIsConst bool
	// GenIsConst is true when the generator (irbuild) proved this binding
	// is never mutated even though the source did not mark it const.
	GenIsConst bool

	// MemSlotIndex is NoSlot when this binding has no compile-time slot.
	MemSlotIndex int

	IsInline bool
	RefCount int
}
