package decoder

import (
	"testing"

	"github.com/andrz/sim8086/pkg/fields"
	"github.com/andrz/sim8086/pkg/instruction"
)

func decodeOne(t *testing.T, data []byte) *instruction.Instruction {
	t.Helper()
	ins, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode(% x) error: %v", data, err)
	}
	if len(ins) != 1 {
		t.Fatalf("Decode(% x) = %d instructions; want 1", data, len(ins))
	}
	return ins[0]
}

func TestDecodeMovRegRM(t *testing.T) {
	// mov cx, bx: 89 D9 (D=0, W=1, mod=11, reg=BX(011), rm=CX(001))
	ins := decodeOne(t, []byte{0x89, 0xD9})
	if ins.Operation != fields.MOV || ins.Size != 2 {
		t.Fatalf("got op=%v size=%d; want MOV size 2", ins.Operation, ins.Size)
	}
	if ins.First.Kind != instruction.OperandRegister || ins.First.Register != fields.CX {
		t.Fatalf("First = %+v; want register CX", ins.First)
	}
	if ins.Second.Kind != instruction.OperandRegister || ins.Second.Register != fields.BX {
		t.Fatalf("Second = %+v; want register BX", ins.Second)
	}
}

func TestDecodeMovImmediateToMemoryWithDisp(t *testing.T) {
	// mov [bx+si+0x10], word 0x1234: C7 40 10 34 12 (mod=01, rm=000)
	ins := decodeOne(t, []byte{0xC7, 0x40, 0x10, 0x34, 0x12})
	if ins.Operation != fields.MOV || ins.Size != 5 {
		t.Fatalf("got op=%v size=%d; want MOV size 5", ins.Operation, ins.Size)
	}
	mem, ok := ins.MemoryOperand()
	if !ok || mem.EffectiveAddress.Base != fields.EABxSi || mem.EffectiveAddress.Disp != 0x10 {
		t.Fatalf("MemoryOperand = %+v ok=%v; want BxSi+0x10", mem, ok)
	}
	if mem.EffectiveAddress.Width != fields.WidthWord {
		t.Fatalf("EA width = %v; want WidthWord (disambiguated by immediate)", mem.EffectiveAddress.Width)
	}
	if ins.Second.Immediate.AsWord() != 0x1234 {
		t.Fatalf("immediate = %#04x; want 0x1234", ins.Second.Immediate.AsWord())
	}
}

func TestDecodeAluImmediateSignExtend(t *testing.T) {
	// add word [bp+di], byte -1 sign-extended: 83 03 FF
	ins := decodeOne(t, []byte{0x83, 0x03, 0xFF})
	if ins.Operation != fields.ADD || ins.Size != 3 {
		t.Fatalf("got op=%v size=%d; want ADD size 3", ins.Operation, ins.Size)
	}
	if ins.Second.Immediate.AsWord() != 0xFFFF {
		t.Fatalf("immediate = %#04x; want 0xFFFF", ins.Second.Immediate.AsWord())
	}
}

func TestDecodeAluImmediateNoSignExtend(t *testing.T) {
	// add word [bp+di], 0x00FF (no sign extension, S=0): 81 03 FF 00
	ins := decodeOne(t, []byte{0x81, 0x03, 0xFF, 0x00})
	if ins.Operation != fields.ADD || ins.Size != 4 {
		t.Fatalf("got op=%v size=%d; want ADD size 4", ins.Operation, ins.Size)
	}
	if ins.Second.Immediate.AsWord() != 0x00FF {
		t.Fatalf("immediate = %#04x; want 0x00FF", ins.Second.Immediate.AsWord())
	}
}

func TestDecodeIncDecRMByteOnly(t *testing.T) {
	// inc byte [bx]: FE 07
	ins := decodeOne(t, []byte{0xFE, 0x07})
	if ins.Operation != fields.INC || ins.Size != 2 {
		t.Fatalf("got op=%v size=%d; want INC size 2", ins.Operation, ins.Size)
	}
	mem, ok := ins.MemoryOperand()
	if !ok || mem.EffectiveAddress.Width != fields.WidthByte {
		t.Fatalf("MemoryOperand = %+v ok=%v; want byte-width EA", mem, ok)
	}
}

func TestDecodeIncDecRMWordOnly(t *testing.T) {
	// inc word [bx]: FF 07
	ins := decodeOne(t, []byte{0xFF, 0x07})
	if ins.Operation != fields.INC || ins.Size != 2 {
		t.Fatalf("got op=%v size=%d; want INC size 2", ins.Operation, ins.Size)
	}
	mem, ok := ins.MemoryOperand()
	if !ok || mem.EffectiveAddress.Width != fields.WidthWord {
		t.Fatalf("MemoryOperand = %+v ok=%v; want word-width EA", mem, ok)
	}
}

func TestDecodeShiftByOneVsCL(t *testing.T) {
	// shl bx, 1: D1 E3 (V=0)
	one := decodeOne(t, []byte{0xD1, 0xE3})
	if one.Operation != fields.SHL || one.Second.Kind != instruction.OperandImmediate || one.Second.Immediate.AsWord() != 1 {
		t.Fatalf("got %+v; want SHL bx,1", one)
	}

	// shl bx, cl: D3 E3 (V=1)
	cl := decodeOne(t, []byte{0xD3, 0xE3})
	if cl.Operation != fields.SHL || cl.Second.Kind != instruction.OperandRegister || cl.Second.Register != fields.CL {
		t.Fatalf("got %+v; want SHL bx,cl", cl)
	}

	// shr byte [bx], 1: D0 2F
	byteForm := decodeOne(t, []byte{0xD0, 0x2F})
	if byteForm.Operation != fields.SHR {
		t.Fatalf("got op=%v; want SHR", byteForm.Operation)
	}
}

func TestDecodeLockPrefix(t *testing.T) {
	// lock inc byte [bx]: F0 FE 07
	ins := decodeOne(t, []byte{0xF0, 0xFE, 0x07})
	if ins.Size != 3 {
		t.Fatalf("size = %d; want 3 (prefix byte counted)", ins.Size)
	}
	if ins.Prefix == nil || ins.Prefix.Kind != fields.PrefixLock {
		t.Fatalf("Prefix = %+v; want Lock", ins.Prefix)
	}
}

func TestDecodeSegmentOverrideFoldsOntoMemoryOperand(t *testing.T) {
	// mov ax, [es:bx]: 26 8B 07
	ins := decodeOne(t, []byte{0x26, 0x8B, 0x07})
	if ins.Size != 3 {
		t.Fatalf("size = %d; want 3", ins.Size)
	}
	if ins.Prefix != nil {
		t.Fatalf("Prefix = %+v; want nil, segment override folds into the operand", ins.Prefix)
	}
	mem, ok := ins.MemoryOperand()
	if !ok || !mem.EffectiveAddress.HasSegment || mem.EffectiveAddress.Segment != fields.ES {
		t.Fatalf("MemoryOperand = %+v ok=%v; want ES override", mem, ok)
	}
}

func TestDecodeLockAndSegmentOverrideJoin(t *testing.T) {
	// lock + es override + inc byte [bx]: F0 26 FE 07
	ins := decodeOne(t, []byte{0xF0, 0x26, 0xFE, 0x07})
	if ins.Size != 4 {
		t.Fatalf("size = %d; want 4", ins.Size)
	}
	if ins.Prefix == nil || ins.Prefix.Kind != fields.PrefixLock {
		t.Fatalf("Prefix = %+v; want demoted to Lock-only", ins.Prefix)
	}
	mem, ok := ins.MemoryOperand()
	if !ok || !mem.EffectiveAddress.HasSegment || mem.EffectiveAddress.Segment != fields.ES {
		t.Fatalf("MemoryOperand = %+v ok=%v; want ES override", mem, ok)
	}
}

func TestDecodeMultipleInstructionsSizing(t *testing.T) {
	// mov cx, bx (89 D9); inc ax (40); ret (C3)
	ins, err := Decode([]byte{0x89, 0xD9, 0x40, 0xC3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ins) != 3 {
		t.Fatalf("got %d instructions; want 3", len(ins))
	}
	wantSizes := []int{2, 1, 1}
	wantOps := []fields.Operation{fields.MOV, fields.INC, fields.RET}
	for i, want := range wantSizes {
		if ins[i].Size != want {
			t.Fatalf("instruction %d size = %d; want %d", i, ins[i].Size, want)
		}
		if ins[i].Operation != wantOps[i] {
			t.Fatalf("instruction %d op = %v; want %v", i, ins[i].Operation, wantOps[i])
		}
	}
}

func TestDecodeJccIncrement(t *testing.T) {
	// je $+4: 74 02
	ins := decodeOne(t, []byte{0x74, 0x02})
	if ins.Operation != fields.JE || ins.Size != 2 {
		t.Fatalf("got op=%v size=%d; want JE size 2", ins.Operation, ins.Size)
	}
	if ins.First.Kind != instruction.OperandJumpIncrement || ins.First.JumpIncrement.Value != 2 {
		t.Fatalf("First = %+v; want increment 2", ins.First)
	}
}

func TestDecodeAamAadConsumeTrailingByte(t *testing.T) {
	ins := decodeOne(t, []byte{0xD4, 0x0A})
	if ins.Operation != fields.AAM || ins.Size != 2 {
		t.Fatalf("got op=%v size=%d; want AAM size 2", ins.Operation, ins.Size)
	}
}

func TestDecodeUnknownOpcode(t *testing.T) {
	if _, err := Decode([]byte{0x0F}); err == nil {
		t.Fatalf("expected an unrecognised-opcode error")
	}
}

func TestDecodeXchgAccReg(t *testing.T) {
	// xchg ax, bx: 93
	ins := decodeOne(t, []byte{0x93})
	if ins.Operation != fields.XCHG || ins.Size != 1 {
		t.Fatalf("got op=%v size=%d; want XCHG size 1", ins.Operation, ins.Size)
	}
	if ins.First.Register != fields.AX || ins.Second.Register != fields.BX {
		t.Fatalf("got %v, %v; want AX, BX", ins.First.Register, ins.Second.Register)
	}
}

func TestDecodeNopIsXchgAccAcc(t *testing.T) {
	ins := decodeOne(t, []byte{0x90})
	if ins.Operation != fields.NOP || ins.Size != 1 {
		t.Fatalf("got op=%v size=%d; want NOP size 1", ins.Operation, ins.Size)
	}
}
