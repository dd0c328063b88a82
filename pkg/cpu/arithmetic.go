package cpu

import "github.com/andrz/sim8086/pkg/instruction"

// ExecAdd executes ADD: dst += src.
func ExecAdd(s *State, ins *instruction.Instruction) {
	execAddFamily(s, ins, false)
}

// ExecAdc executes ADC: dst += src + carry-in.
func ExecAdc(s *State, ins *instruction.Instruction) {
	execAddFamily(s, ins, true)
}

func execAddFamily(s *State, ins *instruction.Instruction, withCarryIn bool) {
	w := instructionWidth(ins)
	lhs := readOperand(s, ins.First, w)
	rhs := readOperand(s, ins.Second, w)
	carryIn := withCarryIn && s.Flags.C
	result, carryOut, aux, overflow := addWithCarry(lhs, rhs, carryIn, w)
	writeOperand(s, ins.First, w, result)
	s.Flags.setCommon(result, w)
	s.Flags.C, s.Flags.A, s.Flags.O = carryOut, aux, overflow
}

// ExecSub executes SUB: dst -= src.
func ExecSub(s *State, ins *instruction.Instruction) {
	execSubFamily(s, ins, false, true)
}

// ExecSbb executes SBB: dst -= src + borrow-in.
func ExecSbb(s *State, ins *instruction.Instruction) {
	execSubFamily(s, ins, true, true)
}

// ExecCmp executes CMP: SUB's flag computation without the write-back.
func ExecCmp(s *State, ins *instruction.Instruction) {
	execSubFamily(s, ins, false, false)
}

func execSubFamily(s *State, ins *instruction.Instruction, withBorrowIn, writeBack bool) {
	w := instructionWidth(ins)
	lhs := readOperand(s, ins.First, w)
	rhs := readOperand(s, ins.Second, w)
	borrowIn := withBorrowIn && s.Flags.C
	result, borrowOut, aux, overflow := subWithBorrow(lhs, rhs, borrowIn, w)
	if writeBack {
		writeOperand(s, ins.First, w, result)
	}
	s.Flags.setCommon(result, w)
	s.Flags.C, s.Flags.A, s.Flags.O = borrowOut, aux, overflow
}

// ExecInc executes INC: dst += 1. Unlike ADD, the carry flag is left
// untouched (the 8086 reserves it across INC/DEC so loop counters built
// from ADC chains survive an interleaved INC).
func ExecInc(s *State, ins *instruction.Instruction) {
	w := widthOf(ins.First)
	lhs := readOperand(s, ins.First, w)
	result, _, aux, overflow := addWithCarry(lhs, 1, false, w)
	writeOperand(s, ins.First, w, result)
	s.Flags.setCommon(result, w)
	s.Flags.A, s.Flags.O = aux, overflow
}

// ExecDec executes DEC: dst -= 1, carry flag preserved as for INC.
func ExecDec(s *State, ins *instruction.Instruction) {
	w := widthOf(ins.First)
	lhs := readOperand(s, ins.First, w)
	result, _, aux, overflow := subWithBorrow(lhs, 1, false, w)
	writeOperand(s, ins.First, w, result)
	s.Flags.setCommon(result, w)
	s.Flags.A, s.Flags.O = aux, overflow
}
