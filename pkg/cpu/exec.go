package cpu

import (
	"fmt"

	"github.com/andrz/sim8086/pkg/disasm"
	"github.com/andrz/sim8086/pkg/fields"
	"github.com/andrz/sim8086/pkg/instruction"
)

// Exec executes a single decoded instruction against s, consulting prog
// only for the branch family (which needs to move the program cursor).
// RET and its variants are not handled here: the driver treats them as
// a clean end-of-run signal before ever calling Exec.
func Exec(s *State, prog *disasm.Program, ins *instruction.Instruction) error {
	switch ins.Operation {
	case fields.MOV:
		Mov(s, ins)
	case fields.PUSH:
		ExecPush(s, ins)
	case fields.POP:
		ExecPop(s, ins)
	case fields.XCHG:
		ExecXchg(s, ins)
	case fields.LEA:
		ExecLea(s, ins)
	case fields.NOP:
		// no effect

	case fields.ADD:
		ExecAdd(s, ins)
	case fields.ADC:
		ExecAdc(s, ins)
	case fields.SUB:
		ExecSub(s, ins)
	case fields.SBB:
		ExecSbb(s, ins)
	case fields.CMP:
		ExecCmp(s, ins)
	case fields.INC:
		ExecInc(s, ins)
	case fields.DEC:
		ExecDec(s, ins)

	case fields.AND:
		ExecAnd(s, ins)
	case fields.OR:
		ExecOr(s, ins)
	case fields.XOR:
		ExecXor(s, ins)
	case fields.TEST:
		ExecTest(s, ins)
	case fields.NOT:
		ExecNot(s, ins)

	case fields.ROL:
		ExecRol(s, ins)
	case fields.ROR:
		ExecRor(s, ins)
	case fields.RCL:
		ExecRcl(s, ins)
	case fields.RCR:
		ExecRcr(s, ins)
	case fields.SHL:
		ExecShl(s, ins)
	case fields.SHR:
		ExecShr(s, ins)
	case fields.SAR:
		ExecSar(s, ins)

	case fields.CLC:
		ExecClc(s, ins)
	case fields.CMC:
		ExecCmc(s, ins)
	case fields.STC:
		ExecStc(s, ins)
	case fields.CLD:
		ExecCld(s, ins)
	case fields.STD:
		ExecStd(s, ins)
	case fields.CLI:
		ExecCli(s, ins)
	case fields.STI:
		ExecSti(s, ins)

	case fields.JO, fields.JNO, fields.JB, fields.JNB, fields.JE, fields.JNE,
		fields.JBE, fields.JNBE, fields.JS, fields.JNS, fields.JP, fields.JNP,
		fields.JL, fields.JNL, fields.JLE, fields.JNLE:
		return ExecJcc(s, prog, ins)
	case fields.LOOP, fields.LOOPZ, fields.LOOPNZ:
		return ExecLoop(s, prog, ins)
	case fields.JCXZ:
		return ExecJcxz(s, prog, ins)

	default:
		return fmt.Errorf("cpu: %s has no simulator coverage", ins.Operation)
	}
	return nil
}

// Supported reports whether the simulator covers op: every operation
// with a case in Exec's dispatch switch, plus the RET family, which the
// driver treats as end-of-run without calling Exec. Callers that need to distinguish "decoded but not simulated" from a
// genuine execution failure (the corpus reporter's yellow/red split)
// consult this instead of trying to execute and inspecting the error.
func Supported(op fields.Operation) bool {
	switch op {
	case fields.MOV, fields.PUSH, fields.POP, fields.XCHG, fields.LEA, fields.NOP,
		fields.ADD, fields.ADC, fields.SUB, fields.SBB, fields.CMP, fields.INC, fields.DEC,
		fields.AND, fields.OR, fields.XOR, fields.TEST, fields.NOT,
		fields.ROL, fields.ROR, fields.RCL, fields.RCR, fields.SHL, fields.SHR, fields.SAR,
		fields.CLC, fields.CMC, fields.STC, fields.CLD, fields.STD, fields.CLI, fields.STI,
		fields.JO, fields.JNO, fields.JB, fields.JNB, fields.JE, fields.JNE,
		fields.JBE, fields.JNBE, fields.JS, fields.JNS, fields.JP, fields.JNP,
		fields.JL, fields.JNL, fields.JLE, fields.JNLE,
		fields.LOOP, fields.LOOPZ, fields.LOOPNZ, fields.JCXZ,
		fields.RET, fields.RETIMM, fields.RETF, fields.RETFIMM:
		return true
	default:
		return false
	}
}
