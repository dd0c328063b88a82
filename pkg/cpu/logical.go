package cpu

import "github.com/andrz/sim8086/pkg/instruction"

// ExecAnd executes AND: dst &= src.
func ExecAnd(s *State, ins *instruction.Instruction) {
	execLogical(s, ins, func(a, b uint16) uint16 { return a & b }, true)
}

// ExecOr executes OR: dst |= src.
func ExecOr(s *State, ins *instruction.Instruction) {
	execLogical(s, ins, func(a, b uint16) uint16 { return a | b }, true)
}

// ExecXor executes XOR: dst ^= src.
func ExecXor(s *State, ins *instruction.Instruction) {
	execLogical(s, ins, func(a, b uint16) uint16 { return a ^ b }, true)
}

// ExecTest executes TEST: AND's flag computation without the write-back.
func ExecTest(s *State, ins *instruction.Instruction) {
	execLogical(s, ins, func(a, b uint16) uint16 { return a & b }, false)
}

func execLogical(s *State, ins *instruction.Instruction, op func(a, b uint16) uint16, writeBack bool) {
	w := instructionWidth(ins)
	lhs := readOperand(s, ins.First, w)
	rhs := readOperand(s, ins.Second, w)
	result := op(lhs, rhs)
	if writeBack {
		writeOperand(s, ins.First, w, result)
	}
	s.Flags.setLogical(result, w)
}

// ExecNot complements dst in place. No flags are affected.
func ExecNot(s *State, ins *instruction.Instruction) {
	w := widthOf(ins.First)
	mask, _ := widthMasks(w)
	lhs := readOperand(s, ins.First, w)
	writeOperand(s, ins.First, w, ^lhs&mask)
}
