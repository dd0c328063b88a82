package cpu

import (
	"github.com/andrz/sim8086/pkg/fields"
	"github.com/andrz/sim8086/pkg/instruction"
)

// shiftCount reads the rotate/shift count operand: CL or the literal 1,
// already resolved by the decoder into ins.Second.
func shiftCount(s *State, ins *instruction.Instruction) int {
	return int(readOperand(s, ins.Second, fields.WidthByte))
}

// ExecRol rotates ins.First left, the bit leaving the top re-entering at
// the bottom; carry takes the last bit rotated out.
func ExecRol(s *State, ins *instruction.Instruction) {
	execRotateLeft(s, ins, false)
}

// ExecRcl rotates ins.First left through the carry flag: the incoming
// bit is the old carry, and carry takes the bit rotated out the top.
func ExecRcl(s *State, ins *instruction.Instruction) {
	execRotateLeft(s, ins, true)
}

// ExecRor rotates ins.First right, the bit leaving the bottom re-entering
// at the top; carry takes the last bit rotated out.
func ExecRor(s *State, ins *instruction.Instruction) {
	execRotateRight(s, ins, false)
}

// ExecRcr rotates ins.First right through the carry flag: the incoming
// bit is the old carry, and carry takes the bit rotated out the bottom.
func ExecRcr(s *State, ins *instruction.Instruction) {
	execRotateRight(s, ins, true)
}

func execRotateLeft(s *State, ins *instruction.Instruction, throughCarry bool) {
	w := widthOf(ins.First)
	bits := widthBits(w)
	signBit := uint16(1) << (bits - 1)
	mask := signBit<<1 - 1
	count := shiftCount(s, ins)
	if count == 0 {
		return
	}
	value := readOperand(s, ins.First, w)
	carry := s.Flags.C
	for i := 0; i < count; i++ {
		out := value&signBit != 0
		value = (value << 1) & mask
		if (throughCarry && carry) || (!throughCarry && out) {
			value |= 1
		}
		carry = out
	}
	writeOperand(s, ins.First, w, value)
	s.Flags.C = carry
	if count == 1 {
		s.Flags.O = (value&signBit != 0) != carry
	}
}

func execRotateRight(s *State, ins *instruction.Instruction, throughCarry bool) {
	w := widthOf(ins.First)
	bits := widthBits(w)
	signBit := uint16(1) << (bits - 1)
	count := shiftCount(s, ins)
	if count == 0 {
		return
	}
	value := readOperand(s, ins.First, w)
	carry := s.Flags.C
	for i := 0; i < count; i++ {
		out := value&1 != 0
		value >>= 1
		if (throughCarry && carry) || (!throughCarry && out) {
			value |= signBit
		}
		carry = out
	}
	writeOperand(s, ins.First, w, value)
	s.Flags.C = carry
	if count == 1 {
		second := value&(signBit>>1) != 0
		s.Flags.O = (value&signBit != 0) != second
	}
}

// ExecShl executes SHL/SAL: logical left shift, zero-filled from the
// bottom. Overflow is only meaningful for a single-bit shift.
func ExecShl(s *State, ins *instruction.Instruction) {
	w := widthOf(ins.First)
	mask, signBit := widthMasks(w)
	count := shiftCount(s, ins)
	if count == 0 {
		return
	}
	value := readOperand(s, ins.First, w)
	var carry bool
	for i := 0; i < count; i++ {
		carry = value&signBit != 0
		value = (value << 1) & mask
	}
	writeOperand(s, ins.First, w, value)
	s.Flags.setCommon(value, w)
	s.Flags.C = carry
	if count == 1 {
		s.Flags.O = (value&signBit != 0) != carry
	}
}

// ExecShr executes SHR: logical right shift, zero-filled from the top.
// Flags follow the logical-operation rule: Z/S/P from the result, C/O/A
// cleared.
func ExecShr(s *State, ins *instruction.Instruction) {
	w := widthOf(ins.First)
	count := shiftCount(s, ins)
	if count == 0 {
		return
	}
	value := readOperand(s, ins.First, w)
	for i := 0; i < count; i++ {
		value >>= 1
	}
	writeOperand(s, ins.First, w, value)
	s.Flags.setLogical(value, w)
}

// ExecSar executes SAR: arithmetic right shift, sign-extended from the
// top. A single-bit shift never overflows (the sign is preserved).
func ExecSar(s *State, ins *instruction.Instruction) {
	w := widthOf(ins.First)
	_, signBit := widthMasks(w)
	count := shiftCount(s, ins)
	if count == 0 {
		return
	}
	value := readOperand(s, ins.First, w)
	sign := value & signBit
	var carry bool
	for i := 0; i < count; i++ {
		carry = value&1 != 0
		value = (value >> 1) | sign
	}
	writeOperand(s, ins.First, w, value)
	s.Flags.setCommon(value, w)
	s.Flags.C = carry
	if count == 1 {
		s.Flags.O = false
	}
}
