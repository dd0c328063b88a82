package disasm

import (
	"fmt"
	"strings"

	"github.com/andrz/sim8086/pkg/fields"
	"github.com/andrz/sim8086/pkg/instruction"
)

// Emit renders a decoded instruction sequence as NASM-syntax source,
// preceded by the "bits 16;" header every emitted file needs so the
// assembler picks 16-bit operand defaults.
func Emit(ins []*instruction.Instruction) string {
	var b strings.Builder
	b.WriteString("bits 16;\n\n")
	for _, i := range ins {
		b.WriteString(EmitInstruction(i))
		b.WriteByte('\n')
	}
	return b.String()
}

// EmitInstruction renders a single instruction line: an optional
// Lock/Rep prefix word, the mnemonic, and up to two comma-separated
// operands. Segment overrides never emit a standalone prefix word — the
// decoder already folded them onto the EffectiveAddress operand.
func EmitInstruction(ins *instruction.Instruction) string {
	var parts []string
	if ins.Prefix != nil && (ins.Prefix.Kind == fields.PrefixLock || ins.Prefix.Kind == fields.PrefixRep) {
		parts = append(parts, ins.Prefix.String())
	}

	first, second := ins.First, ins.Second
	if ins.Operation == fields.XCHG {
		// canonical assembler form swaps XCHG's operands; semantically irrelevant
		first, second = second, first
	}

	mnemonic := ins.Operation.String()
	if first == nil {
		parts = append(parts, mnemonic)
		return strings.Join(parts, " ")
	}

	operands := emitOperand(first, ins, needsWidthHint(second))
	if second != nil {
		operands += ", " + emitOperand(second, ins, needsWidthHint(first))
	}
	parts = append(parts, mnemonic+" "+operands)
	return strings.Join(parts, " ")
}

// needsWidthHint reports whether an EffectiveAddress operand must carry
// an explicit byte/word keyword: true unless a register sibling already
// fixes the width (a unary memory operand with no sibling at all, or an
// immediate sibling, both need the keyword).
func needsWidthHint(sibling *instruction.Operand) bool {
	return sibling == nil || sibling.Kind != instruction.OperandRegister
}

// emitOperand renders a single operand. wantWidthHint is the result of
// needsWidthHint for this operand's sibling.
func emitOperand(op *instruction.Operand, ins *instruction.Instruction, wantWidthHint bool) string {
	switch op.Kind {
	case instruction.OperandJumpIncrement:
		return fmt.Sprintf("$+%d%+d", ins.Size, op.JumpIncrement.Value)
	case instruction.OperandEffectiveAddress:
		ea := op.EffectiveAddress
		text := ea.String()
		if wantWidthHint && ea.Width != fields.WidthNone {
			return widthKeyword(ea.Width) + " " + text
		}
		return text
	default:
		return op.String()
	}
}

func widthKeyword(w fields.Width) string {
	if w == fields.WidthWord {
		return "word"
	}
	return "byte"
}
