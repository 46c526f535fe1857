package irbuild

import (
	"midc/ir"
	"midc/report"
)

// resolveGotos is the builder's second pass: every goto was emitted as an
// Unreachable placeholder instruction pointing nowhere; this walks the
// pending list and rewrites each placeholder's owning block to end in a Br
// to the resolved label block instead, reporting an error for any label
// that was never placed.
func (b *Builder) resolveGotos() {
	for _, g := range b.gotos {
		target, ok := b.labelBlocks[g.Label]
		if !ok {
			b.Sink.Error(report.KindUndeclaredName, g.Pos, "use of undeclared label '%s'", g.Label)
			continue
		}
		owner := findOwningBlock(b.Ex, g.Placeholder)
		if owner == nil {
			continue
		}
		g.Placeholder.Op = ir.OpBr
		g.Placeholder.Aux = ir.BrAux{Target: target}
		target.RefCount++
	}
}

func findOwningBlock(ex *ir.Executable, instr *ir.Instruction) *ir.BasicBlock {
	for _, bb := range ex.Blocks {
		for _, in := range bb.Instrs {
			if in == instr {
				return bb
			}
		}
	}
	return nil
}
