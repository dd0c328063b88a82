package cpu

import (
	"github.com/andrz/sim8086/pkg/fields"
	"github.com/andrz/sim8086/pkg/instruction"
)

// widthOf reports the access width an operand carries on its own: a
// register's own size, an immediate's tagged size, or an EA's explicit
// size tag (WidthNone if nothing disambiguates it — the caller must
// then fall back to the sibling operand).
func widthOf(op *instruction.Operand) fields.Width {
	switch op.Kind {
	case instruction.OperandRegister:
		if op.Register.Wide() {
			return fields.WidthWord
		}
		return fields.WidthByte
	case instruction.OperandImmediate:
		return op.Immediate.Width()
	case instruction.OperandEffectiveAddress:
		return op.EffectiveAddress.Width
	default:
		return fields.WidthNone
	}
}

// instructionWidth resolves the access width a two-operand instruction
// shares: whichever operand tags its own width, preferring First (the
// destination, almost always the side that fixes it).
func instructionWidth(ins *instruction.Instruction) fields.Width {
	if ins.First != nil {
		if w := widthOf(ins.First); w != fields.WidthNone {
			return w
		}
	}
	if ins.Second != nil {
		if w := widthOf(ins.Second); w != fields.WidthNone {
			return w
		}
	}
	return fields.WidthWord
}

// readOperand fetches op's value at width w, loading from memory when
// op is an EffectiveAddress.
func readOperand(s *State, op *instruction.Operand, w fields.Width) uint16 {
	switch op.Kind {
	case instruction.OperandRegister:
		return s.Reg(op.Register)
	case instruction.OperandSegmentRegister:
		return s.Segment(op.SegmentRegister)
	case instruction.OperandImmediate:
		return op.Immediate.AsWord()
	case instruction.OperandEffectiveAddress:
		addr := s.Address(op.EffectiveAddress)
		if w == fields.WidthByte {
			return uint16(s.Memory[addr])
		}
		return s.ReadMem16(addr)
	default:
		return 0
	}
}

// writeOperand stores value into op at width w. Immediate and jump-
// increment operands are never write targets.
func writeOperand(s *State, op *instruction.Operand, w fields.Width, value uint16) {
	switch op.Kind {
	case instruction.OperandRegister:
		s.SetReg(op.Register, value)
	case instruction.OperandSegmentRegister:
		s.SetSegment(op.SegmentRegister, value)
	case instruction.OperandEffectiveAddress:
		addr := s.Address(op.EffectiveAddress)
		if w == fields.WidthByte {
			s.Memory[addr] = byte(value)
		} else {
			s.WriteMem16(addr, value)
		}
	}
}
