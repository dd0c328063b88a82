// Package clocks estimates 8086 and 8088 cycle counts for decoded
// instructions, the way pkg/inst's Catalog carries a static per-opcode
// T-state cost — except here the memory forms' cost also depends on the
// addressing mode and the caller's alignment predicate, so the register-
// form base lives in a table and the memory surcharge is computed.
package clocks

import (
	"github.com/andrz/sim8086/pkg/fields"
	"github.com/andrz/sim8086/pkg/instruction"
)

// IsEAOdd reports whether ea resolves to an odd (misaligned) address
// against the caller's current register file. The estimator never
// resolves addresses itself; it only asks this predicate when an
// instruction actually carries a memory operand.
type IsEAOdd func(fields.EffectiveAddress) bool

// regBase holds the register/register-or-immediate form's base cost for
// operations the 8086 timing tables single out by name. Entries absent
// here fall back to the family default in baseAndTransfers.
var regBase = map[fields.Operation]int{
	fields.MOV:  2,
	fields.ADD:  3,
	fields.ADC:  3,
	fields.SUB:  3,
	fields.SBB:  3,
	fields.CMP:  3,
	fields.AND:  3,
	fields.OR:   3,
	fields.XOR:  3,
	fields.TEST: 3,
	fields.INC:  2,
	fields.DEC:  2,
	fields.NOT:  3,
	fields.XCHG: 3,
	fields.LEA:  2,
}

const (
	movImmRegBase  = 4
	movMemBase     = 8
	movImmMemBase  = 10
	movAccDirBase  = 10
	incDecByteBase = 3
	shiftBase      = 2
	branchTaken    = 16
	branchNotTaken = 4
	loopTaken      = 17
	loopNotTaken   = 5
	retBase        = 8
)

// Estimate returns the (8086, 8088) cycle pair for ins. isEAOdd is
// consulted only when ins carries a memory operand; pass nil for
// instructions known never to touch memory.
func Estimate(ins *instruction.Instruction, isEAOdd IsEAOdd) (clocks86, clocks88 int) {
	base, transfers := baseAndTransfers(ins)
	mem, hasMem := ins.MemoryOperand()
	if !hasMem {
		return base, base
	}
	eaCost := EACost(mem.EffectiveAddress)
	clocks86 = base + eaCost
	clocks88 = base + eaCost + 4*transfers
	if isEAOdd != nil && isEAOdd(mem.EffectiveAddress) {
		clocks86 += 4 * transfers
	}
	return clocks86, clocks88
}

// EACost is the addressing-mode component of a memory access's cost,
// independent of width or direction.
func EACost(ea fields.EffectiveAddress) int {
	switch ea.Base {
	case fields.EADirect:
		return 6
	case fields.EASi, fields.EADi, fields.EABx:
		if ea.HasDisp {
			return 9
		}
		return 5
	case fields.EABp:
		// mod=00,rm=110 is reserved for EADirect, so EABp always
		// carries an explicit displacement.
		return 9
	case fields.EABpDi, fields.EABxSi:
		if ea.HasDisp {
			return 11
		}
		return 7
	case fields.EABpSi, fields.EABxDi:
		if ea.HasDisp {
			return 12
		}
		return 8
	default:
		return 0
	}
}

// baseAndTransfers returns the base cost of ins's operand form (for MOV
// the register, immediate, accumulator-direct and memory forms each have
// their own base), plus how many memory transfers its actual operands
// need (1 for a pure load or store, 2 for read-modify-write).
// The returned base already excludes EACost and the transfer penalty;
// Estimate adds those only when ins does carry a memory operand.
func baseAndTransfers(ins *instruction.Instruction) (base, transfers int) {
	_, hasMem := ins.MemoryOperand()
	isImm := hasImmediate(ins)

	switch ins.Operation {
	case fields.MOV:
		switch {
		case isAccumulatorDirect(ins):
			return movAccDirBase, 1
		case hasMem && isImm:
			return movImmMemBase, 1
		case hasMem:
			return movMemBase, 1
		case isImm:
			return movImmRegBase, 1
		default:
			return regBase[fields.MOV], 1
		}

	case fields.ADD, fields.ADC, fields.SUB, fields.SBB, fields.AND, fields.OR, fields.XOR:
		if hasMem {
			return regBase[ins.Operation], 2
		}
		return regBase[ins.Operation], 1

	case fields.CMP, fields.TEST:
		return regBase[ins.Operation], 1

	case fields.INC, fields.DEC:
		if hasMem {
			return regBase[ins.Operation], 2
		}
		if widthOf(ins.First) == fields.WidthByte {
			return incDecByteBase, 1
		}
		return regBase[ins.Operation], 1

	case fields.NOT:
		if hasMem {
			return regBase[fields.NOT], 2
		}
		return regBase[fields.NOT], 1

	case fields.ROL, fields.ROR, fields.RCL, fields.RCR, fields.SHL, fields.SHR, fields.SAR:
		if hasMem {
			return shiftBase, 2
		}
		return shiftBase, 1

	case fields.XCHG:
		if hasMem {
			return regBase[fields.XCHG], 2
		}
		return regBase[fields.XCHG], 1

	case fields.LEA:
		return regBase[fields.LEA], 0

	case fields.PUSH:
		return 11, 1
	case fields.POP:
		return 8, 1

	case fields.JO, fields.JNO, fields.JB, fields.JNB, fields.JE, fields.JNE,
		fields.JBE, fields.JNBE, fields.JS, fields.JNS, fields.JP, fields.JNP,
		fields.JL, fields.JNL, fields.JLE, fields.JNLE:
		return branchNotTaken, 0

	case fields.LOOP, fields.LOOPZ, fields.LOOPNZ, fields.JCXZ:
		return loopNotTaken, 0

	case fields.RET, fields.RETIMM, fields.RETF, fields.RETFIMM:
		return retBase, 0

	default:
		return 0, 0
	}
}

// EstimateBranch returns the branch family's taken/not-taken clock pair
// directly; the driver already knows whether the branch was taken and
// does not need to re-derive it from Estimate.
func EstimateBranch(ins *instruction.Instruction, taken bool) (clocks86, clocks88 int) {
	switch ins.Operation {
	case fields.LOOP, fields.LOOPZ, fields.LOOPNZ, fields.JCXZ:
		if taken {
			return loopTaken, loopTaken
		}
		return loopNotTaken, loopNotTaken
	default:
		if taken {
			return branchTaken, branchTaken
		}
		return branchNotTaken, branchNotTaken
	}
}

func hasImmediate(ins *instruction.Instruction) bool {
	return isImmediateOperand(ins.First) || isImmediateOperand(ins.Second)
}

func isImmediateOperand(op *instruction.Operand) bool {
	return op != nil && op.Kind == instruction.OperandImmediate
}

func isAccumulatorDirect(ins *instruction.Instruction) bool {
	mem, hasMem := ins.MemoryOperand()
	if !hasMem || mem.EffectiveAddress.Base != fields.EADirect {
		return false
	}
	other := ins.First
	if ins.First == mem {
		other = ins.Second
	}
	return other != nil && other.Kind == instruction.OperandRegister && other.Register.Pair() == fields.PairAX
}

func widthOf(op *instruction.Operand) fields.Width {
	if op == nil {
		return fields.WidthNone
	}
	switch op.Kind {
	case instruction.OperandRegister:
		if op.Register.Wide() {
			return fields.WidthWord
		}
		return fields.WidthByte
	case instruction.OperandEffectiveAddress:
		return op.EffectiveAddress.Width
	default:
		return fields.WidthNone
	}
}
