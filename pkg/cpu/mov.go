package cpu

import (
	"github.com/andrz/sim8086/pkg/fields"
	"github.com/andrz/sim8086/pkg/instruction"
)

// Mov executes MOV: a plain copy, no flags affected. Destination kind
// picks the access path; width comes from whichever side tags it (a
// register's own size, or the memory operand's explicit tag when the
// source is an immediate).
func Mov(s *State, ins *instruction.Instruction) {
	dst, src := ins.First, ins.Second
	w := widthOf(dst)
	if w == fields.WidthNone {
		w = widthOf(src)
	}
	writeOperand(s, dst, w, readOperand(s, src, w))
}

// Push writes value to [SP-2] and decrements SP by 2, the 8086's
// pre-decrement stack convention.
func Push(s *State, value uint16) {
	sp := s.Reg(fields.SP) - 2
	s.SetReg(fields.SP, sp)
	s.WriteMem16(sp, value)
}

// Pop reads the word at [SP] and increments SP by 2.
func Pop(s *State) uint16 {
	sp := s.Reg(fields.SP)
	value := s.ReadMem16(sp)
	s.SetReg(fields.SP, sp+2)
	return value
}

// ExecPush executes PUSH reg/segreg/r-m16 (the r/m and segment-register
// forms are always word-width; the register form shorthand is too).
func ExecPush(s *State, ins *instruction.Instruction) {
	Push(s, readOperand(s, ins.First, fields.WidthWord))
}

// ExecPop executes POP reg/segreg/r-m16.
func ExecPop(s *State, ins *instruction.Instruction) {
	writeOperand(s, ins.First, fields.WidthWord, Pop(s))
}

// ExecXchg swaps the two operands' values.
func ExecXchg(s *State, ins *instruction.Instruction) {
	w := instructionWidth(ins)
	a := readOperand(s, ins.First, w)
	b := readOperand(s, ins.Second, w)
	writeOperand(s, ins.First, w, b)
	writeOperand(s, ins.Second, w, a)
}

// ExecLea loads the effective address's computed offset into the
// destination register, rather than the value it addresses.
func ExecLea(s *State, ins *instruction.Instruction) {
	s.SetReg(ins.First.Register, s.Address(ins.Second.EffectiveAddress))
}
