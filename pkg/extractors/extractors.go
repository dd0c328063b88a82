// Package extractors holds the shared bit-field readers every operand
// decoder builds on: mod/reg/rm splitting, the W/S/D/V single-bit flags,
// displacement and immediate extraction, and far-target/increment
// reading. None of this allocates an Instruction — it hands back raw
// fields and fields.* values for the operand-shape decoders in
// pkg/decoder to assemble.
package extractors

import (
	"fmt"

	"github.com/andrz/sim8086/pkg/bytestream"
	"github.com/andrz/sim8086/pkg/fields"
)

// ModRegRM splits the second byte of a typical instruction into its
// mod (7..6), reg (5..3) and rm (2..0) fields.
func ModRegRM(b byte) (mod, reg, rm uint8) {
	return (b >> 6) & 0x03, (b >> 3) & 0x07, b & 0x07
}

// WideBit reads the W flag from first using mask. A zero mask means the
// shape has no W bit at all and width is implicitly word.
func WideBit(first byte, mask byte) bool {
	if mask == 0 {
		return true
	}
	return first&mask != 0
}

// SignBit reads the S flag (mask 0b00000010) from first.
func SignBit(first byte) bool {
	return first&0x02 != 0
}

// DirectionBit reads the D flag (mask 0b00000010) from first: true means
// the reg field is the destination.
func DirectionBit(first byte) bool {
	return first&0x02 != 0
}

// VariableBit reads the V flag (mask 0b00000010) from first: true means
// the shift/rotate count comes from CL rather than being the literal 1.
func VariableBit(first byte) bool {
	return first&0x02 != 0
}

// ReadDisplacement consumes the displacement bytes implied by mod/rm and
// returns the effective-address base form plus the raw (possibly zero)
// displacement bit pattern. It implements spec's mandatory direct-address
// special case (mod=00,rm=110).
func ReadDisplacement(mod, rm uint8, r *bytestream.Stream) (base fields.EABase, disp uint16, hasDisp bool, err error) {
	if mod == 0 && rm == 6 {
		lo, ok := r.Next()
		if !ok {
			return 0, 0, false, fmt.Errorf("extractors: truncated direct address low byte at offset %d", r.Consumed())
		}
		hi, ok := r.Next()
		if !ok {
			return 0, 0, false, fmt.Errorf("extractors: truncated direct address high byte at offset %d", r.Consumed())
		}
		return fields.EADirect, uint16(hi)<<8 | uint16(lo), true, nil
	}

	base = rmBase[rm]

	switch mod {
	case 0:
		return base, 0, false, nil
	case 1:
		b, ok := r.Next()
		if !ok {
			return 0, 0, false, fmt.Errorf("extractors: truncated 8-bit displacement at offset %d", r.Consumed())
		}
		// sign-extend the byte to 16 bits
		return base, uint16(int16(int8(b))), true, nil
	case 2:
		lo, ok := r.Next()
		if !ok {
			return 0, 0, false, fmt.Errorf("extractors: truncated 16-bit displacement low byte at offset %d", r.Consumed())
		}
		hi, ok := r.Next()
		if !ok {
			return 0, 0, false, fmt.Errorf("extractors: truncated 16-bit displacement high byte at offset %d", r.Consumed())
		}
		return base, uint16(hi)<<8 | uint16(lo), true, nil
	default:
		return 0, 0, false, fmt.Errorf("extractors: mod=11 is a register form, not memory")
	}
}

var rmBase = [8]fields.EABase{
	fields.EABxSi, fields.EABxDi, fields.EABpSi, fields.EABpDi,
	fields.EASi, fields.EADi, fields.EABp, fields.EABx,
}

// ReadImmediate reads a byte (wide=false) or little-endian word
// (wide=true) immediate with no sign extension.
func ReadImmediate(wide bool, r *bytestream.Stream) (fields.Immediate, error) {
	if !wide {
		b, ok := r.Next()
		if !ok {
			return fields.Immediate{}, fmt.Errorf("extractors: truncated byte immediate at offset %d", r.Consumed())
		}
		return fields.ImmByte(b), nil
	}
	lo, ok := r.Next()
	if !ok {
		return fields.Immediate{}, fmt.Errorf("extractors: truncated word immediate low byte at offset %d", r.Consumed())
	}
	hi, ok := r.Next()
	if !ok {
		return fields.Immediate{}, fmt.Errorf("extractors: truncated word immediate high byte at offset %d", r.Consumed())
	}
	return fields.ImmWord(uint16(hi)<<8 | uint16(lo)), nil
}

// ReadImmediateSigned reads an immediate honoring the S/W combination:
// when sign && wide, one byte is read and sign-extended to a Word;
// otherwise it behaves like ReadImmediate.
func ReadImmediateSigned(wide, sign bool, r *bytestream.Stream) (fields.Immediate, error) {
	if sign && wide {
		b, ok := r.Next()
		if !ok {
			return fields.Immediate{}, fmt.Errorf("extractors: truncated sign-extended immediate at offset %d", r.Consumed())
		}
		return fields.ImmWord(uint16(int16(int8(b)))), nil
	}
	return ReadImmediate(wide, r)
}

// ReadInc8 reads a signed 8-bit jump increment.
func ReadInc8(r *bytestream.Stream) (fields.JumpIncrement, error) {
	b, ok := r.Next()
	if !ok {
		return fields.JumpIncrement{}, fmt.Errorf("extractors: truncated 8-bit increment at offset %d", r.Consumed())
	}
	return fields.JumpIncrement{Width: fields.WidthByte, Value: int16(int8(b))}, nil
}

// ReadInc16 reads a signed 16-bit jump increment, little-endian.
func ReadInc16(r *bytestream.Stream) (fields.JumpIncrement, error) {
	lo, ok := r.Next()
	if !ok {
		return fields.JumpIncrement{}, fmt.Errorf("extractors: truncated 16-bit increment low byte at offset %d", r.Consumed())
	}
	hi, ok := r.Next()
	if !ok {
		return fields.JumpIncrement{}, fmt.Errorf("extractors: truncated 16-bit increment high byte at offset %d", r.Consumed())
	}
	return fields.JumpIncrement{Width: fields.WidthWord, Value: int16(uint16(hi)<<8 | uint16(lo))}, nil
}

// ReadFarTarget reads a 4-byte far pointer: low word is IP, high word is CS.
func ReadFarTarget(r *bytestream.Stream) (fields.CsIp, error) {
	b0, ok := r.Next()
	if !ok {
		return fields.CsIp{}, fmt.Errorf("extractors: truncated far target at offset %d", r.Consumed())
	}
	b1, ok := r.Next()
	if !ok {
		return fields.CsIp{}, fmt.Errorf("extractors: truncated far target at offset %d", r.Consumed())
	}
	b2, ok := r.Next()
	if !ok {
		return fields.CsIp{}, fmt.Errorf("extractors: truncated far target at offset %d", r.Consumed())
	}
	b3, ok := r.Next()
	if !ok {
		return fields.CsIp{}, fmt.Errorf("extractors: truncated far target at offset %d", r.Consumed())
	}
	ip := uint16(b1)<<8 | uint16(b0)
	cs := uint16(b3)<<8 | uint16(b2)
	return fields.CsIp{IP: ip, CS: cs}, nil
}
