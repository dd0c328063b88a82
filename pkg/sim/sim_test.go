package sim

import (
	"errors"
	"testing"

	"github.com/go-logr/logr"

	"github.com/andrz/sim8086/pkg/decoder"
	"github.com/andrz/sim8086/pkg/disasm"
	"github.com/andrz/sim8086/pkg/fields"
	"github.com/andrz/sim8086/pkg/instruction"
)

func mustDecode(t *testing.T, data []byte) *disasm.Program {
	t.Helper()
	ins, err := decoder.Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return disasm.New(ins)
}

func TestRunLoadsAllRegisters(t *testing.T) {
	prog := mustDecode(t, []byte{
		0xB8, 0x01, 0x00, // mov ax, 1
		0xBB, 0x02, 0x00, // mov bx, 2
		0xB9, 0x03, 0x00, // mov cx, 3
		0xBA, 0x04, 0x00, // mov dx, 4
		0xBC, 0x05, 0x00, // mov sp, 5
		0xBD, 0x06, 0x00, // mov bp, 6
		0xBE, 0x07, 0x00, // mov si, 7
		0xBF, 0x08, 0x00, // mov di, 8
	})
	s := New(prog, logr.Discard())
	if _, err := s.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := map[fields.Register]uint16{
		fields.AX: 1, fields.BX: 2, fields.CX: 3, fields.DX: 4,
		fields.SP: 5, fields.BP: 6, fields.SI: 7, fields.DI: 8,
	}
	for r, v := range want {
		if got := s.Reg(r); got != v {
			t.Errorf("%s = %d, want %d", r, got, v)
		}
	}
	f := s.Flags()
	if f.Z || f.S || f.P || f.C || f.O || f.A {
		t.Errorf("expected no flags set, got %+v", f)
	}
}

func TestRunStopsAtRet(t *testing.T) {
	prog := mustDecode(t, []byte{
		0xB8, 0x01, 0x00, // mov ax, 1
		0xC3,             // ret
		0xB8, 0xFF, 0xFF, // mov ax, 0xffff (must never execute)
	})
	s := New(prog, logr.Discard())
	if _, err := s.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if s.Reg(fields.AX) != 1 {
		t.Errorf("ax = %d, want 1 (RET must halt before the trailing mov)", s.Reg(fields.AX))
	}
}

func TestRunWrapsUnimplementedOperation(t *testing.T) {
	ins := &instruction.Instruction{Operation: fields.AAM, Size: 2}
	prog := disasm.New([]*instruction.Instruction{ins})
	s := New(prog, logr.Discard())
	_, err := s.Run()
	if err == nil {
		t.Fatal("expected an error for an operation with no simulator coverage")
	}
	var execErr *ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected *ExecError, got %T", err)
	}
	if execErr.Instruction.Operation != fields.AAM {
		t.Errorf("ExecError.Instruction.Operation = %s, want AAM", execErr.Instruction.Operation)
	}
}

func TestRunMemoryAddLoop(t *testing.T) {
	// mov bp, 1000 ; set up 4 words at [bp], [bp+2], [bp+4], [bp+6]
	// then sum them into bx via [bp+si], incrementing si by 2 and
	// decrementing cx from 4 to 0.
	var program []byte
	program = append(program, 0xBD, 0xE8, 0x03) // mov bp, 1000
	// seed memory with mov word [bp+N], k for N in {0,2,4,6}, k in {1,2,1,2}
	seed := []struct {
		disp uint8
		val  uint16
	}{{0, 1}, {2, 2}, {4, 1}, {6, 2}}
	for _, sd := range seed {
		lo, hi := byte(sd.val), byte(sd.val>>8)
		program = append(program, 0xC7, 0x46, sd.disp, lo, hi) // mov word [bp+disp], val
	}
	program = append(program,
		0xBB, 0x00, 0x00, // mov bx, 0
		0xBE, 0x00, 0x00, // mov si, 0
		0xB9, 0x04, 0x00, // mov cx, 4
		0x03, 0x1A, // add bx, [bp+si]  (loop top)
		0x83, 0xC6, 0x02, // add si, 2
		0xE2, 0xF9, // loop back to add bx,[bp+si]
	)
	prog := mustDecode(t, program)
	s := New(prog, logr.Discard())
	if _, err := s.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := s.Reg(fields.BX); got != 6 {
		t.Errorf("bx = %d, want 6", got)
	}
	if got := s.Reg(fields.CX); got != 0 {
		t.Errorf("cx = %d, want 0", got)
	}
	if got := s.Reg(fields.SI); got != 8 {
		t.Errorf("si = %d, want 8", got)
	}
}
