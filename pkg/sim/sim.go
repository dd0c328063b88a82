// Package sim drives a decoded program against a cpu.State: fetch,
// advance, dispatch, accumulate clocks, repeat until RET or the program
// runs out.
package sim

import (
	"fmt"
	"io"

	"github.com/go-logr/logr"

	"github.com/andrz/sim8086/pkg/clocks"
	"github.com/andrz/sim8086/pkg/cpu"
	"github.com/andrz/sim8086/pkg/disasm"
	"github.com/andrz/sim8086/pkg/fields"
	"github.com/andrz/sim8086/pkg/instruction"
)

// Simulator owns one CPU state and the program it is stepping through.
type Simulator struct {
	State       *cpu.State
	Program     *disasm.Program
	Clocks86    int
	Clocks88    int
	Log         logr.Logger
	Instruction int // count of instructions executed, for trace lines
}

// New builds a Simulator with a zeroed state, positioned before the
// first instruction. A nil logger discards every trace line.
func New(program *disasm.Program, log logr.Logger) *Simulator {
	return &Simulator{
		State:   &cpu.State{},
		Program: program,
		Log:     log,
	}
}

// ExecError reports that an instruction reached cpu.Exec but could not
// be carried out, either because the operation has no simulator
// coverage or because cpu.Exec itself rejected it. It wraps the
// underlying error so errors.Is and errors.As still see through to it.
type ExecError struct {
	Instruction *instruction.Instruction
	Err         error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("sim: %s: %v", e.Instruction.Operation, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

func isRet(op fields.Operation) bool {
	switch op {
	case fields.RET, fields.RETIMM, fields.RETF, fields.RETFIMM:
		return true
	default:
		return false
	}
}

// Run steps the simulator until a RET variant is reached or the program
// is exhausted, returning the number of instructions executed.
func (s *Simulator) Run() (int, error) {
	for !s.Program.AtEnd() {
		ins := s.Program.Current()
		if isRet(ins.Operation) {
			s.Log.V(1).Info("halt", "op", ins.Operation.String())
			return s.Instruction, nil
		}
		if err := s.Step(ins); err != nil {
			return s.Instruction, err
		}
	}
	return s.Instruction, nil
}

// Step executes one instruction: dispatches to cpu.Exec, then accounts
// for the program cursor and clocks. Branch operations move the cursor
// themselves inside cpu.Exec; everything else advances by one.
func (s *Simulator) Step(ins *instruction.Instruction) error {
	cursorBefore := s.Program.Cursor()
	if isBranchFamily(ins.Operation) {
		// A taken branch sets IP directly inside cpu.Exec; only the
		// not-taken fallthrough needs the size added here.
		if err := cpu.Exec(s.State, s.Program, ins); err != nil {
			return &ExecError{Instruction: ins, Err: err}
		}
		taken := s.Program.Cursor() != cursorBefore
		if !taken {
			s.State.IP += uint16(ins.Size)
			s.Program.Advance()
		}
		c86, c88 := clocks.EstimateBranch(ins, taken)
		s.Clocks86 += c86
		s.Clocks88 += c88
	} else {
		s.State.IP += uint16(ins.Size)
		if err := cpu.Exec(s.State, s.Program, ins); err != nil {
			return &ExecError{Instruction: ins, Err: err}
		}
		s.Program.Advance()
		c86, c88 := clocks.Estimate(ins, s.isEAOdd)
		s.Clocks86 += c86
		s.Clocks88 += c88
	}
	s.Instruction++
	s.Log.V(1).Info("step", "op", ins.Operation.String(), "ip", s.State.IP, "clocks86", s.Clocks86, "clocks88", s.Clocks88)
	return nil
}

func (s *Simulator) isEAOdd(ea fields.EffectiveAddress) bool {
	return s.State.Address(ea)&1 != 0
}

func isBranchFamily(op fields.Operation) bool {
	switch op {
	case fields.JO, fields.JNO, fields.JB, fields.JNB, fields.JE, fields.JNE,
		fields.JBE, fields.JNBE, fields.JS, fields.JNS, fields.JP, fields.JNP,
		fields.JL, fields.JNL, fields.JLE, fields.JNLE,
		fields.LOOP, fields.LOOPZ, fields.LOOPNZ, fields.JCXZ:
		return true
	default:
		return false
	}
}

// Reg reads a general-purpose register from the live state.
func (s *Simulator) Reg(r fields.Register) uint16 {
	return s.State.Reg(r)
}

// Flags returns the live flag set.
func (s *Simulator) Flags() cpu.Flags {
	return s.State.Flags
}

// IP returns the current instruction pointer.
func (s *Simulator) IP() uint16 {
	return s.State.IP
}

// DumpMemory writes the full 64 KiB memory image to sink.
func (s *Simulator) DumpMemory(sink io.Writer) error {
	_, err := sink.Write(s.State.Memory[:])
	return err
}
