// Package instruction holds the decoded-instruction value types: the
// tagged-union Operand and the Instruction that pairs an Operation with
// up to two operands, an optional prefix, and its byte size.
package instruction

import (
	"fmt"

	"github.com/andrz/sim8086/pkg/fields"
)

// OperandKind discriminates the Operand union.
type OperandKind uint8

const (
	OperandNone OperandKind = iota
	OperandRegister
	OperandSegmentRegister
	OperandImmediate
	OperandEffectiveAddress
	OperandJumpIncrement
	OperandCsIp
)

// Operand is a closed sum type over every operand form the decoder
// produces. Kind discriminates which field is valid; callers that need
// exhaustiveness should switch on Kind rather than checking fields for
// zero values (a zero Register is a valid AX).
type Operand struct {
	Kind             OperandKind
	Register         fields.Register
	SegmentRegister  fields.SegmentRegister
	Immediate        fields.Immediate
	EffectiveAddress fields.EffectiveAddress
	JumpIncrement    fields.JumpIncrement
	CsIp             fields.CsIp
}

func RegisterOperand(r fields.Register) Operand {
	return Operand{Kind: OperandRegister, Register: r}
}

func SegmentRegisterOperand(sr fields.SegmentRegister) Operand {
	return Operand{Kind: OperandSegmentRegister, SegmentRegister: sr}
}

func ImmediateOperand(i fields.Immediate) Operand {
	return Operand{Kind: OperandImmediate, Immediate: i}
}

func EAOperand(ea fields.EffectiveAddress) Operand {
	return Operand{Kind: OperandEffectiveAddress, EffectiveAddress: ea}
}

func IncOperand(inc fields.JumpIncrement) Operand {
	return Operand{Kind: OperandJumpIncrement, JumpIncrement: inc}
}

func CsIpOperand(c fields.CsIp) Operand {
	return Operand{Kind: OperandCsIp, CsIp: c}
}

func (o Operand) String() string {
	switch o.Kind {
	case OperandRegister:
		return o.Register.String()
	case OperandSegmentRegister:
		return o.SegmentRegister.String()
	case OperandImmediate:
		return o.Immediate.String()
	case OperandEffectiveAddress:
		return o.EffectiveAddress.String()
	case OperandJumpIncrement:
		return fmt.Sprintf("%+d", o.JumpIncrement.Value)
	case OperandCsIp:
		return fmt.Sprintf("%#04x:%#04x", o.CsIp.CS, o.CsIp.IP)
	default:
		return ""
	}
}

// Instruction is a fully decoded instruction: an Operation, up to two
// operands, an optional prefix, and the byte size it occupied in the
// source stream.
type Instruction struct {
	Operation fields.Operation
	First     *Operand
	Second    *Operand
	Prefix    *fields.Prefix
	Size      int
}

// Sized reports whether the dispatcher has filled in this instruction's
// byte size yet.
func (ins *Instruction) Sized() bool {
	return ins.Size > 0
}

// MemoryOperand returns the instruction's EffectiveAddress operand, if
// either First or Second is one, and whether one was found.
func (ins *Instruction) MemoryOperand() (*Operand, bool) {
	if ins.First != nil && ins.First.Kind == OperandEffectiveAddress {
		return ins.First, true
	}
	if ins.Second != nil && ins.Second.Kind == OperandEffectiveAddress {
		return ins.Second, true
	}
	return nil, false
}
