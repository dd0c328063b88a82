package cpu

import (
	"testing"

	"github.com/andrz/sim8086/pkg/disasm"
	"github.com/andrz/sim8086/pkg/fields"
	"github.com/andrz/sim8086/pkg/instruction"
)

func reg(r fields.Register) *instruction.Operand {
	op := instruction.RegisterOperand(r)
	return &op
}

func imm(v uint16, wide bool) *instruction.Operand {
	var i fields.Immediate
	if wide {
		i = fields.ImmWord(v)
	} else {
		i = fields.ImmByte(uint8(v))
	}
	op := instruction.ImmediateOperand(i)
	return &op
}

func TestExecAddFlags(t *testing.T) {
	tests := []struct {
		name             string
		lhs, rhs         uint16
		wantResult       uint16
		wantC, wantO, wantA, wantZ, wantS bool
	}{
		{"0+0", 0, 0, 0, false, false, false, true, false},
		{"0x7F+1 overflow", 0x7F, 1, 0x80, false, true, true, false, true},
		{"0x80+0x80 overflow", 0x80, 0x80, 0, true, true, false, true, false},
		{"0xFF+1 carry no overflow", 0xFF, 1, 0, true, false, true, true, false},
		{"0x0F+1 half carry", 0x0F, 1, 0x10, false, false, true, false, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := &State{}
			s.SetReg(fields.AL, tc.lhs)
			ins := &instruction.Instruction{Operation: fields.ADD, First: reg(fields.AL), Second: imm(tc.rhs, false)}
			ExecAdd(s, ins)
			if got := s.Reg(fields.AL); got != tc.wantResult {
				t.Errorf("result = %#x, want %#x", got, tc.wantResult)
			}
			if s.Flags.C != tc.wantC {
				t.Errorf("C = %v, want %v", s.Flags.C, tc.wantC)
			}
			if s.Flags.O != tc.wantO {
				t.Errorf("O = %v, want %v", s.Flags.O, tc.wantO)
			}
			if s.Flags.A != tc.wantA {
				t.Errorf("A = %v, want %v", s.Flags.A, tc.wantA)
			}
			if s.Flags.Z != tc.wantZ {
				t.Errorf("Z = %v, want %v", s.Flags.Z, tc.wantZ)
			}
			if s.Flags.S != tc.wantS {
				t.Errorf("S = %v, want %v", s.Flags.S, tc.wantS)
			}
		})
	}
}

func TestExecSubOverflow(t *testing.T) {
	// 0x80 - 1: operands differ in sign (0x80 negative, 1 positive),
	// result 0x7F positive matches rhs's sign -> overflow.
	s := &State{}
	s.SetReg(fields.AL, 0x80)
	ins := &instruction.Instruction{Operation: fields.SUB, First: reg(fields.AL), Second: imm(1, false)}
	ExecSub(s, ins)
	if got := s.Reg(fields.AL); got != 0x7F {
		t.Fatalf("result = %#x, want 0x7f", got)
	}
	if !s.Flags.O {
		t.Error("expected overflow")
	}
}

func TestExecCmpPurity(t *testing.T) {
	s := &State{}
	s.SetReg(fields.AX, 5)
	s.SetReg(fields.BX, 5)
	before := *s
	ins := &instruction.Instruction{Operation: fields.CMP, First: reg(fields.AX), Second: reg(fields.BX)}
	ExecCmp(s, ins)
	if s.Reg(fields.AX) != before.Reg(fields.AX) || s.Reg(fields.BX) != before.Reg(fields.BX) {
		t.Error("CMP must not write back")
	}
	if !s.Flags.Z {
		t.Error("equal operands must set Z")
	}
}

func TestExecIncPreservesCarry(t *testing.T) {
	s := &State{}
	s.Flags.C = true
	s.SetReg(fields.AX, 0xFFFF)
	ins := &instruction.Instruction{Operation: fields.INC, First: reg(fields.AX)}
	ExecInc(s, ins)
	if s.Reg(fields.AX) != 0 {
		t.Fatalf("result = %#x, want 0", s.Reg(fields.AX))
	}
	if !s.Flags.C {
		t.Error("INC must not touch carry")
	}
	if !s.Flags.Z {
		t.Error("wraparound to 0 must set Z")
	}
}

func TestExecLogicalForcesFlags(t *testing.T) {
	s := &State{}
	s.Flags.C, s.Flags.O, s.Flags.A = true, true, true
	s.SetReg(fields.AX, 0x00FF)
	ins := &instruction.Instruction{Operation: fields.AND, First: reg(fields.AX), Second: imm(0x000F, true)}
	ExecAnd(s, ins)
	if s.Reg(fields.AX) != 0x000F {
		t.Fatalf("result = %#x, want 0xf", s.Reg(fields.AX))
	}
	if s.Flags.C || s.Flags.O || s.Flags.A {
		t.Error("logical ops must clear C, O, A")
	}
	if s.Flags.Z {
		t.Error("non-zero result must clear Z")
	}
}

func TestExecTestPurity(t *testing.T) {
	s := &State{}
	s.SetReg(fields.AL, 0x0F)
	before := s.Reg(fields.AL)
	ins := &instruction.Instruction{Operation: fields.TEST, First: reg(fields.AL), Second: imm(0x0F, false)}
	ExecTest(s, ins)
	if s.Reg(fields.AL) != before {
		t.Error("TEST must not write back")
	}
}

func TestExecShlCarryAndOverflow(t *testing.T) {
	s := &State{}
	s.SetReg(fields.AL, 0x80)
	ins := &instruction.Instruction{Operation: fields.SHL, First: reg(fields.AL), Second: imm(1, false)}
	ExecShl(s, ins)
	if s.Reg(fields.AL) != 0 {
		t.Fatalf("result = %#x, want 0", s.Reg(fields.AL))
	}
	if !s.Flags.C {
		t.Error("bit shifted out of the top must set carry")
	}
	if !s.Flags.O {
		t.Error("sign flipped from negative to zero, expected overflow")
	}
}

func TestExecShlNoOverflowWhenSignUnchanged(t *testing.T) {
	s := &State{}
	s.SetReg(fields.AL, 0x01)
	ins := &instruction.Instruction{Operation: fields.SHL, First: reg(fields.AL), Second: imm(1, false)}
	ExecShl(s, ins)
	if s.Reg(fields.AL) != 0x02 {
		t.Fatalf("result = %#x, want 0x02", s.Reg(fields.AL))
	}
	if s.Flags.C {
		t.Error("no bit shifted out of the top, expected no carry")
	}
	if s.Flags.O {
		t.Error("sign unchanged, expected no overflow")
	}
}

func TestExecSarPreservesSign(t *testing.T) {
	s := &State{}
	s.SetReg(fields.AL, 0x81)
	ins := &instruction.Instruction{Operation: fields.SAR, First: reg(fields.AL), Second: imm(1, false)}
	ExecSar(s, ins)
	if got := s.Reg(fields.AL); got != 0xC0 {
		t.Fatalf("result = %#x, want 0xc0", got)
	}
	if !s.Flags.C {
		t.Error("bit shifted out of the bottom must set carry")
	}
}

func TestExecRolWrapsIntoBottom(t *testing.T) {
	s := &State{}
	s.SetReg(fields.AL, 0x81)
	ins := &instruction.Instruction{Operation: fields.ROL, First: reg(fields.AL), Second: imm(1, false)}
	ExecRol(s, ins)
	if got := s.Reg(fields.AL); got != 0x03 {
		t.Fatalf("result = %#x, want 0x03", got)
	}
	if !s.Flags.C {
		t.Error("top bit rotated out must set carry")
	}
}

func TestExecRclUsesIncomingCarry(t *testing.T) {
	s := &State{}
	s.Flags.C = true
	s.SetReg(fields.AL, 0x00)
	ins := &instruction.Instruction{Operation: fields.RCL, First: reg(fields.AL), Second: imm(1, false)}
	ExecRcl(s, ins)
	if got := s.Reg(fields.AL); got != 0x01 {
		t.Fatalf("result = %#x, want 0x01", got)
	}
	if s.Flags.C {
		t.Error("bit rotated out of 0x00 must clear carry")
	}
}

func TestExecJccTakenMovesIPAndCursor(t *testing.T) {
	s := &State{}
	s.Flags.Z = true
	jcc := &instruction.Instruction{Operation: fields.JE, Size: 2, First: &instruction.Operand{
		Kind:          instruction.OperandJumpIncrement,
		JumpIncrement: fields.JumpIncrement{Width: fields.WidthByte, Value: 2},
	}}
	target := &instruction.Instruction{Operation: fields.NOP, Size: 2}
	pad := &instruction.Instruction{Operation: fields.NOP, Size: 1}
	prog := disasm.New([]*instruction.Instruction{jcc, target, pad})
	if err := ExecJcc(s, prog, jcc); err != nil {
		t.Fatalf("ExecJcc: %v", err)
	}
	if prog.Cursor() != 2 {
		t.Errorf("cursor = %d, want 2 (landed on pad, skipping target)", prog.Cursor())
	}
	if s.IP != 4 {
		t.Errorf("IP = %d, want 4 (jcc size 2 + increment 2)", s.IP)
	}
}

func TestExecJccNotTakenLeavesCursor(t *testing.T) {
	s := &State{}
	s.Flags.Z = false
	jcc := &instruction.Instruction{Operation: fields.JE, Size: 2, First: &instruction.Operand{
		Kind:          instruction.OperandJumpIncrement,
		JumpIncrement: fields.JumpIncrement{Width: fields.WidthByte, Value: 10},
	}}
	prog := disasm.New([]*instruction.Instruction{jcc})
	if err := ExecJcc(s, prog, jcc); err != nil {
		t.Fatalf("ExecJcc: %v", err)
	}
	if prog.Cursor() != 0 {
		t.Errorf("cursor = %d, want unchanged at 0", prog.Cursor())
	}
	if s.IP != 0 {
		t.Errorf("IP = %d, want unchanged at 0", s.IP)
	}
}

func TestExecLoopDecrementsAndStops(t *testing.T) {
	s := &State{}
	s.SetReg(fields.CX, 1)
	loop := &instruction.Instruction{Operation: fields.LOOP, Size: 2, First: &instruction.Operand{
		Kind:          instruction.OperandJumpIncrement,
		JumpIncrement: fields.JumpIncrement{Width: fields.WidthByte, Value: -2},
	}}
	prog := disasm.New([]*instruction.Instruction{loop})
	if err := ExecLoop(s, prog, loop); err != nil {
		t.Fatalf("ExecLoop: %v", err)
	}
	if s.Reg(fields.CX) != 0 {
		t.Fatalf("CX = %d, want 0", s.Reg(fields.CX))
	}
	if prog.Cursor() != 0 {
		t.Error("CX reaching 0 must not take the branch")
	}
}

func TestExecFlagOpsWriteSingleFlag(t *testing.T) {
	tests := []struct {
		name string
		exec func(*State, *instruction.Instruction)
		get  func(*State) bool
		want bool
	}{
		{"CLC", ExecClc, func(s *State) bool { return s.Flags.C }, false},
		{"STC", ExecStc, func(s *State) bool { return s.Flags.C }, true},
		{"CLD", ExecCld, func(s *State) bool { return s.Flags.D }, false},
		{"STD", ExecStd, func(s *State) bool { return s.Flags.D }, true},
		{"CLI", ExecCli, func(s *State) bool { return s.Flags.I }, false},
		{"STI", ExecSti, func(s *State) bool { return s.Flags.I }, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := &State{}
			s.Flags = Flags{Z: true, S: true, P: true, C: true, O: true, A: true, D: true, I: true}
			tc.exec(s, &instruction.Instruction{})
			if got := tc.get(s); got != tc.want {
				t.Errorf("flag = %v, want %v", got, tc.want)
			}
			if !s.Flags.Z || !s.Flags.S || !s.Flags.P || !s.Flags.O || !s.Flags.A {
				t.Error("unrelated flags must be left untouched")
			}
		})
	}
}

func TestExecCmcComplementsCarry(t *testing.T) {
	s := &State{}
	ExecCmc(s, &instruction.Instruction{})
	if !s.Flags.C {
		t.Error("CMC from clear must set carry")
	}
	ExecCmc(s, &instruction.Instruction{})
	if s.Flags.C {
		t.Error("CMC from set must clear carry")
	}
}

func TestExecCldStdAndCliStiDispatchThroughExec(t *testing.T) {
	for _, op := range []fields.Operation{fields.CLD, fields.STD, fields.CLI, fields.STI} {
		if !Supported(op) {
			t.Errorf("%s: expected Supported to report true", op)
		}
		s := &State{}
		if err := Exec(s, disasm.New(nil), &instruction.Instruction{Operation: op}); err != nil {
			t.Errorf("%s: Exec returned %v", op, err)
		}
	}
}

func TestExecUnimplementedReportsOperation(t *testing.T) {
	s := &State{}
	prog := disasm.New(nil)
	ins := &instruction.Instruction{Operation: fields.AAM}
	err := Exec(s, prog, ins)
	if err == nil {
		t.Fatal("expected an error for an operation with no simulator coverage")
	}
}
