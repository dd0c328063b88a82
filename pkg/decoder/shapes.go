package decoder

import (
	"fmt"

	"github.com/andrz/sim8086/pkg/bytestream"
	"github.com/andrz/sim8086/pkg/extractors"
	"github.com/andrz/sim8086/pkg/fields"
	"github.com/andrz/sim8086/pkg/instruction"
)

// Shape decodes the operand(s) of one instruction given its first byte,
// the operation already resolved by the dispatcher, and the stream to
// pull any remaining bytes from. It never sets Instruction.Size — the
// dispatcher sets that as soon as the shape returns, from the number of
// stream bytes the instruction (prefixes included) consumed.
type Shape func(first byte, r *bytestream.Stream, op fields.Operation) (*instruction.Instruction, error)

func widthOf(wide bool) fields.Width {
	if wide {
		return fields.WidthWord
	}
	return fields.WidthByte
}

// decodeRM decodes the mod/rm half of a ModRegRM byte that has already
// been split. mod==0b11 yields a register operand; otherwise an
// EffectiveAddress is built, consuming any displacement bytes. fixWidth
// tags the EA with an explicit width when no sibling register operand
// will supply it (immediate-to-memory and unary forms); when a sibling
// register operand already fixes the width, fixWidth is false and the EA
// carries WidthNone.
func decodeRM(mod, rm uint8, wide, fixWidth bool, r *bytestream.Stream) (instruction.Operand, error) {
	if mod == 0b11 {
		return instruction.RegisterOperand(fields.DecodeRegister(rm, wide)), nil
	}
	base, disp, hasDisp, err := extractors.ReadDisplacement(mod, rm, r)
	if err != nil {
		return instruction.Operand{}, err
	}
	ea := fields.EffectiveAddress{Base: base, Disp: disp, HasDisp: hasDisp}
	if fixWidth {
		ea.Width = widthOf(wide)
	}
	return instruction.EAOperand(ea), nil
}

// shapeRegRM decodes the common "register, register-or-memory" form:
// second byte gives mod/reg/rm, D bit of first selects which is the
// destination. wideMask selects the W bit's position in first (0 means
// implicitly word).
func shapeRegRM(wideMask byte) Shape {
	return func(first byte, r *bytestream.Stream, op fields.Operation) (*instruction.Instruction, error) {
		second, ok := r.Next()
		if !ok {
			return nil, fmt.Errorf("decoder: truncated mod/reg/rm byte")
		}
		mod, regField, rm := extractors.ModRegRM(second)
		wide := extractors.WideBit(first, wideMask)
		regOperand := instruction.RegisterOperand(fields.DecodeRegister(regField, wide))
		rmOperand, err := decodeRM(mod, rm, wide, false, r)
		if err != nil {
			return nil, err
		}
		ins := &instruction.Instruction{Operation: op}
		if extractors.DirectionBit(first) {
			ins.First, ins.Second = &regOperand, &rmOperand
		} else {
			ins.First, ins.Second = &rmOperand, &regOperand
		}
		return ins, nil
	}
}

// shapeRMRegFixedOrder decodes a mod/reg/rm byte with no D bit: the rm
// operand is always first, the reg operand always second (TEST reg/mem).
func shapeRMRegFixedOrder(wideMask byte) Shape {
	return func(first byte, r *bytestream.Stream, op fields.Operation) (*instruction.Instruction, error) {
		second, ok := r.Next()
		if !ok {
			return nil, fmt.Errorf("decoder: truncated mod/reg/rm byte")
		}
		mod, regField, rm := extractors.ModRegRM(second)
		wide := extractors.WideBit(first, wideMask)
		rmOperand, err := decodeRM(mod, rm, wide, false, r)
		if err != nil {
			return nil, err
		}
		regOperand := instruction.RegisterOperand(fields.DecodeRegister(regField, wide))
		return &instruction.Instruction{Operation: op, First: &rmOperand, Second: &regOperand}, nil
	}
}

// shapeRegM decodes LEA/LDS/LES: reg field (always word) is the
// destination, rm is a memory-only source.
func shapeRegM() Shape {
	return func(first byte, r *bytestream.Stream, op fields.Operation) (*instruction.Instruction, error) {
		second, ok := r.Next()
		if !ok {
			return nil, fmt.Errorf("decoder: truncated mod/reg/rm byte")
		}
		mod, regField, rm := extractors.ModRegRM(second)
		regOperand := instruction.RegisterOperand(fields.DecodeRegister(regField, true))
		rmOperand, err := decodeRM(mod, rm, true, false, r)
		if err != nil {
			return nil, err
		}
		return &instruction.Instruction{Operation: op, First: &regOperand, Second: &rmOperand}, nil
	}
}

// shapeSRRM decodes MOV between a segment register and an r/m16: second
// byte gives mod/rm; segment register sits in bits 4..3 (reg field, bit
// 5 reserved/ignored). D bit selects direction.
func shapeSRRM() Shape {
	return func(first byte, r *bytestream.Stream, op fields.Operation) (*instruction.Instruction, error) {
		second, ok := r.Next()
		if !ok {
			return nil, fmt.Errorf("decoder: truncated mod/reg/rm byte")
		}
		mod, regField, rm := extractors.ModRegRM(second)
		srOperand := instruction.SegmentRegisterOperand(fields.DecodeSegmentRegister(regField))
		rmOperand, err := decodeRM(mod, rm, true, false, r)
		if err != nil {
			return nil, err
		}
		ins := &instruction.Instruction{Operation: op}
		if extractors.DirectionBit(first) {
			ins.First, ins.Second = &srOperand, &rmOperand
		} else {
			ins.First, ins.Second = &rmOperand, &srOperand
		}
		return ins, nil
	}
}

// shapeRMImd decodes an r/m operand (reg field already consumed by the
// dispatcher's opcode-extension match) followed by an immediate. When
// sign is true and the shape's wide bit is set, the immediate is
// sign-extended from a single byte.
func shapeRMImd(wideMask byte, signExtend bool) Shape {
	return func(first byte, r *bytestream.Stream, op fields.Operation) (*instruction.Instruction, error) {
		second, ok := r.Next()
		if !ok {
			return nil, fmt.Errorf("decoder: truncated mod/reg/rm byte")
		}
		mod, _, rm := extractors.ModRegRM(second)
		wide := extractors.WideBit(first, wideMask)
		rmOperand, err := decodeRM(mod, rm, wide, true, r)
		if err != nil {
			return nil, err
		}
		sign := signExtend && extractors.SignBit(first)
		imm, err := extractors.ReadImmediateSigned(wide, sign, r)
		if err != nil {
			return nil, err
		}
		immOperand := instruction.ImmediateOperand(imm)
		return &instruction.Instruction{Operation: op, First: &rmOperand, Second: &immOperand}, nil
	}
}

// shapeRegImd decodes MOV reg,imm: register in the low 3 bits of first,
// wide bit at wideMask, immediate follows.
func shapeRegImd(wideMask byte) Shape {
	return func(first byte, r *bytestream.Stream, op fields.Operation) (*instruction.Instruction, error) {
		wide := extractors.WideBit(first, wideMask)
		reg := instruction.RegisterOperand(fields.DecodeRegister(first&0x07, wide))
		imm, err := extractors.ReadImmediate(wide, r)
		if err != nil {
			return nil, err
		}
		immOperand := instruction.ImmediateOperand(imm)
		return &instruction.Instruction{Operation: op, First: &reg, Second: &immOperand}, nil
	}
}

// shapeAccDA decodes accumulator <- direct-address (MOV AX/AL,[addr]).
func shapeAccDA(wideMask byte) Shape {
	return func(first byte, r *bytestream.Stream, op fields.Operation) (*instruction.Instruction, error) {
		wide := extractors.WideBit(first, wideMask)
		acc := instruction.RegisterOperand(fields.DecodeRegister(0, wide))
		lo, ok := r.Next()
		if !ok {
			return nil, fmt.Errorf("decoder: truncated direct address")
		}
		hi, ok := r.Next()
		if !ok {
			return nil, fmt.Errorf("decoder: truncated direct address")
		}
		addr := uint16(hi)<<8 | uint16(lo)
		ea := instruction.EAOperand(fields.DirectAddress(addr, fields.WidthNone))
		return &instruction.Instruction{Operation: op, First: &acc, Second: &ea}, nil
	}
}

// shapeDAAcc decodes direct-address <- accumulator (MOV [addr],AX/AL).
func shapeDAAcc(wideMask byte) Shape {
	return func(first byte, r *bytestream.Stream, op fields.Operation) (*instruction.Instruction, error) {
		wide := extractors.WideBit(first, wideMask)
		acc := instruction.RegisterOperand(fields.DecodeRegister(0, wide))
		lo, ok := r.Next()
		if !ok {
			return nil, fmt.Errorf("decoder: truncated direct address")
		}
		hi, ok := r.Next()
		if !ok {
			return nil, fmt.Errorf("decoder: truncated direct address")
		}
		addr := uint16(hi)<<8 | uint16(lo)
		ea := instruction.EAOperand(fields.DirectAddress(addr, fields.WidthNone))
		return &instruction.Instruction{Operation: op, First: &ea, Second: &acc}, nil
	}
}

// shapeAccImd decodes accumulator,imm (e.g. ADD AL/AX, imm).
func shapeAccImd(wideMask byte) Shape {
	return func(first byte, r *bytestream.Stream, op fields.Operation) (*instruction.Instruction, error) {
		wide := extractors.WideBit(first, wideMask)
		acc := instruction.RegisterOperand(fields.DecodeRegister(0, wide))
		imm, err := extractors.ReadImmediate(wide, r)
		if err != nil {
			return nil, err
		}
		immOperand := instruction.ImmediateOperand(imm)
		return &instruction.Instruction{Operation: op, First: &acc, Second: &immOperand}, nil
	}
}

// shapeSRFixed decodes a PUSH/POP of a specific, opcode-fixed segment
// register (no bits to extract — the whole byte is the opcode).
func shapeSRFixed(sr fields.SegmentRegister) Shape {
	return func(first byte, r *bytestream.Stream, op fields.Operation) (*instruction.Instruction, error) {
		operand := instruction.SegmentRegisterOperand(sr)
		return &instruction.Instruction{Operation: op, First: &operand}, nil
	}
}

// shapeRegLow3 decodes a register named by the low 3 bits of first,
// always at the given width (INC/DEC reg, PUSH/POP reg are always word).
func shapeRegLow3(wide bool) Shape {
	return func(first byte, r *bytestream.Stream, op fields.Operation) (*instruction.Instruction, error) {
		reg := instruction.RegisterOperand(fields.DecodeRegister(first&0x07, wide))
		return &instruction.Instruction{Operation: op, First: &reg}, nil
	}
}

// shapeAccReg decodes XCHG AX, reg (reg in low 3 bits, always word).
func shapeAccReg() Shape {
	return func(first byte, r *bytestream.Stream, op fields.Operation) (*instruction.Instruction, error) {
		acc := instruction.RegisterOperand(fields.AX)
		reg := instruction.RegisterOperand(fields.DecodeRegister(first&0x07, true))
		return &instruction.Instruction{Operation: op, First: &acc, Second: &reg}, nil
	}
}

// shapeInc8 decodes a signed 8-bit jump increment (Jcc, LOOP family,
// short JMP).
func shapeInc8() Shape {
	return func(first byte, r *bytestream.Stream, op fields.Operation) (*instruction.Instruction, error) {
		inc, err := extractors.ReadInc8(r)
		if err != nil {
			return nil, err
		}
		operand := instruction.IncOperand(inc)
		return &instruction.Instruction{Operation: op, First: &operand}, nil
	}
}

// shapeInc16 decodes a signed 16-bit jump increment (near CALL/JMP).
func shapeInc16() Shape {
	return func(first byte, r *bytestream.Stream, op fields.Operation) (*instruction.Instruction, error) {
		inc, err := extractors.ReadInc16(r)
		if err != nil {
			return nil, err
		}
		operand := instruction.IncOperand(inc)
		return &instruction.Instruction{Operation: op, First: &operand}, nil
	}
}

// shapeData8 decodes a bare 8-bit immediate operand (INT n).
func shapeData8() Shape {
	return func(first byte, r *bytestream.Stream, op fields.Operation) (*instruction.Instruction, error) {
		imm, err := extractors.ReadImmediate(false, r)
		if err != nil {
			return nil, err
		}
		operand := instruction.ImmediateOperand(imm)
		return &instruction.Instruction{Operation: op, First: &operand}, nil
	}
}

// shapeData16 decodes a bare 16-bit immediate operand (RET pop count).
func shapeData16() Shape {
	return func(first byte, r *bytestream.Stream, op fields.Operation) (*instruction.Instruction, error) {
		imm, err := extractors.ReadImmediate(true, r)
		if err != nil {
			return nil, err
		}
		operand := instruction.ImmediateOperand(imm)
		return &instruction.Instruction{Operation: op, First: &operand}, nil
	}
}

// shapeCsIp decodes a 4-byte far target (direct far CALL/JMP).
func shapeCsIp() Shape {
	return func(first byte, r *bytestream.Stream, op fields.Operation) (*instruction.Instruction, error) {
		target, err := extractors.ReadFarTarget(r)
		if err != nil {
			return nil, err
		}
		operand := instruction.CsIpOperand(target)
		return &instruction.Instruction{Operation: op, First: &operand}, nil
	}
}

// shapeFixedPort decodes IN/OUT against an immediate port byte.
// destIsAcc selects IN's (acc, port) order vs OUT's (port, acc) order.
func shapeFixedPort(wideMask byte, destIsAcc bool) Shape {
	return func(first byte, r *bytestream.Stream, op fields.Operation) (*instruction.Instruction, error) {
		wide := extractors.WideBit(first, wideMask)
		acc := instruction.RegisterOperand(fields.DecodeRegister(0, wide))
		port, err := extractors.ReadImmediate(false, r)
		if err != nil {
			return nil, err
		}
		portOperand := instruction.ImmediateOperand(port)
		ins := &instruction.Instruction{Operation: op}
		if destIsAcc {
			ins.First, ins.Second = &acc, &portOperand
		} else {
			ins.First, ins.Second = &portOperand, &acc
		}
		return ins, nil
	}
}

// shapeVariablePort decodes IN/OUT against the implicit DX port.
func shapeVariablePort(wideMask byte, destIsAcc bool) Shape {
	return func(first byte, r *bytestream.Stream, op fields.Operation) (*instruction.Instruction, error) {
		wide := extractors.WideBit(first, wideMask)
		acc := instruction.RegisterOperand(fields.DecodeRegister(0, wide))
		dx := instruction.RegisterOperand(fields.DX)
		ins := &instruction.Instruction{Operation: op}
		if destIsAcc {
			ins.First, ins.Second = &acc, &dx
		} else {
			ins.First, ins.Second = &dx, &acc
		}
		return ins, nil
	}
}

// shapeRMW decodes a single unary register-or-memory operand with no
// immediate (NOT/NEG/MUL/IMUL/DIV/IDIV, INC/DEC/CALL/JMP/PUSH r/m
// group). The reg field has already been consumed by the dispatcher's
// opcode-extension match.
func shapeRMW(wideMask byte) Shape {
	return func(first byte, r *bytestream.Stream, op fields.Operation) (*instruction.Instruction, error) {
		second, ok := r.Next()
		if !ok {
			return nil, fmt.Errorf("decoder: truncated mod/reg/rm byte")
		}
		mod, _, rm := extractors.ModRegRM(second)
		wide := extractors.WideBit(first, wideMask)
		rmOperand, err := decodeRM(mod, rm, wide, true, r)
		if err != nil {
			return nil, err
		}
		return &instruction.Instruction{Operation: op, First: &rmOperand}, nil
	}
}

// shapeRMWFixed decodes a single unary register-or-memory operand whose
// width has no bit in the opcode at all (INC/DEC r/m8 in the FE group):
// wide is fixed by the caller rather than read from first.
func shapeRMWFixed(wide bool) Shape {
	return func(first byte, r *bytestream.Stream, op fields.Operation) (*instruction.Instruction, error) {
		second, ok := r.Next()
		if !ok {
			return nil, fmt.Errorf("decoder: truncated mod/reg/rm byte")
		}
		mod, _, rm := extractors.ModRegRM(second)
		rmOperand, err := decodeRM(mod, rm, wide, true, r)
		if err != nil {
			return nil, err
		}
		return &instruction.Instruction{Operation: op, First: &rmOperand}, nil
	}
}

// shapeRMVW decodes a shift/rotate: the r/m operand plus a second
// operand that is CL when the V bit is set, or the literal immediate 1
// otherwise.
func shapeRMVW(wideMask byte) Shape {
	return func(first byte, r *bytestream.Stream, op fields.Operation) (*instruction.Instruction, error) {
		second, ok := r.Next()
		if !ok {
			return nil, fmt.Errorf("decoder: truncated mod/reg/rm byte")
		}
		mod, _, rm := extractors.ModRegRM(second)
		wide := extractors.WideBit(first, wideMask)
		rmOperand, err := decodeRM(mod, rm, wide, true, r)
		if err != nil {
			return nil, err
		}
		var countOperand instruction.Operand
		if extractors.VariableBit(first) {
			countOperand = instruction.RegisterOperand(fields.CL)
		} else {
			countOperand = instruction.ImmediateOperand(fields.ImmByte(1))
		}
		return &instruction.Instruction{Operation: op, First: &rmOperand, Second: &countOperand}, nil
	}
}

// shapeNoOps decodes a bare zero-operand opcode.
func shapeNoOps() Shape {
	return func(first byte, r *bytestream.Stream, op fields.Operation) (*instruction.Instruction, error) {
		return &instruction.Instruction{Operation: op}, nil
	}
}

// shapeNoOps2 decodes a zero-operand opcode that carries one extra fixed
// byte (AAM/AAD's trailing 0x0A).
func shapeNoOps2() Shape {
	return func(first byte, r *bytestream.Stream, op fields.Operation) (*instruction.Instruction, error) {
		if _, ok := r.Next(); !ok {
			return nil, fmt.Errorf("decoder: truncated second opcode byte")
		}
		return &instruction.Instruction{Operation: op}, nil
	}
}

// shapeStr decodes a zero-operand string instruction (MOVSB/STOSW/...);
// width is already baked into the distinct Operation constant, not read
// from a bit.
func shapeStr() Shape {
	return shapeNoOps()
}
