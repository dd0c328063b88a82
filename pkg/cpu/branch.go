package cpu

import (
	"github.com/andrz/sim8086/pkg/disasm"
	"github.com/andrz/sim8086/pkg/fields"
	"github.com/andrz/sim8086/pkg/instruction"
)

// branch seeks the program cursor by the instruction's signed jump
// increment and advances IP by the same byte delta. The increment in
// the encoding is relative to the address right after this instruction
// ("$+size+n"), so the byte distance from this instruction's own start
// is its own size plus the increment; Seek walks from the cursor's
// current position (still at this instruction), so that is exactly the
// delta it expects. A not-taken branch is left entirely to the driver's
// normal fetch/advance step.
func branch(s *State, prog *disasm.Program, ins *instruction.Instruction) error {
	delta := ins.Size + int(ins.First.JumpIncrement.Value)
	if err := prog.Seek(delta); err != nil {
		return err
	}
	s.IP += uint16(delta)
	return nil
}

// ExecJcc executes one of the 16 conditional branch mnemonics, taking
// the branch when the flag condition holds.
func ExecJcc(s *State, prog *disasm.Program, ins *instruction.Instruction) error {
	if !jccTaken(s, ins.Operation) {
		return nil
	}
	return branch(s, prog, ins)
}

func jccTaken(s *State, op fields.Operation) bool {
	f := s.Flags
	switch op {
	case fields.JO:
		return f.O
	case fields.JNO:
		return !f.O
	case fields.JB:
		return f.C
	case fields.JNB:
		return !f.C
	case fields.JE:
		return f.Z
	case fields.JNE:
		return !f.Z
	case fields.JBE:
		return f.C || f.Z
	case fields.JNBE:
		return !f.C && !f.Z
	case fields.JS:
		return f.S
	case fields.JNS:
		return !f.S
	case fields.JP:
		return f.P
	case fields.JNP:
		return !f.P
	case fields.JL:
		return f.S != f.O
	case fields.JNL:
		return f.S == f.O
	case fields.JLE:
		return f.Z || f.S != f.O
	case fields.JNLE:
		return !f.Z && f.S == f.O
	default:
		return false
	}
}

// ExecLoop executes LOOP/LOOPZ/LOOPNZ: decrement CX, then branch when CX
// is non-zero (and, for the -Z variants, Z matches the variant's
// required state).
func ExecLoop(s *State, prog *disasm.Program, ins *instruction.Instruction) error {
	cx := s.Reg(fields.CX) - 1
	s.SetReg(fields.CX, cx)
	taken := cx != 0
	switch ins.Operation {
	case fields.LOOPZ:
		taken = taken && s.Flags.Z
	case fields.LOOPNZ:
		taken = taken && !s.Flags.Z
	}
	if !taken {
		return nil
	}
	return branch(s, prog, ins)
}

// ExecJcxz executes JCXZ: branch when CX is exactly zero. CX is never
// touched.
func ExecJcxz(s *State, prog *disasm.Program, ins *instruction.Instruction) error {
	if s.Reg(fields.CX) != 0 {
		return nil
	}
	return branch(s, prog, ins)
}

// ExecClc clears the carry flag.
func ExecClc(s *State, ins *instruction.Instruction) {
	s.Flags.C = false
}

// ExecCmc complements the carry flag.
func ExecCmc(s *State, ins *instruction.Instruction) {
	s.Flags.C = !s.Flags.C
}

// ExecStc sets the carry flag.
func ExecStc(s *State, ins *instruction.Instruction) {
	s.Flags.C = true
}

// ExecCld clears the direction flag.
func ExecCld(s *State, ins *instruction.Instruction) {
	s.Flags.D = false
}

// ExecStd sets the direction flag.
func ExecStd(s *State, ins *instruction.Instruction) {
	s.Flags.D = true
}

// ExecCli clears the interrupt-enable flag.
func ExecCli(s *State, ins *instruction.Instruction) {
	s.Flags.I = false
}

// ExecSti sets the interrupt-enable flag.
func ExecSti(s *State, ins *instruction.Instruction) {
	s.Flags.I = true
}
