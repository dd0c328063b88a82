package fields

import "fmt"

// Immediate is a tagged byte/word constant. Its width is intrinsic:
// converting to a word always zero-extends; converting a Word down to a
// byte is a programming error the caller must not commit (AsByte fails).
type Immediate struct {
	width Width
	value uint16
}

// ImmByte builds an 8-bit immediate.
func ImmByte(v uint8) Immediate {
	return Immediate{width: WidthByte, value: uint16(v)}
}

// ImmWord builds a 16-bit immediate.
func ImmWord(v uint16) Immediate {
	return Immediate{width: WidthWord, value: v}
}

// Width reports whether the immediate is a Byte or Word.
func (i Immediate) Width() Width {
	return i.width
}

// AsWord zero-extends a Byte immediate to 16 bits, or returns a Word as-is.
func (i Immediate) AsWord() uint16 {
	if i.width == WidthByte {
		return uint16(uint8(i.value))
	}
	return i.value
}

// AsByte returns the 8-bit value, failing if the immediate is a Word.
func (i Immediate) AsByte() (uint8, error) {
	if i.width == WidthWord {
		return 0, fmt.Errorf("fields: cannot narrow word immediate %#04x to a byte", i.value)
	}
	return uint8(i.value), nil
}

func (i Immediate) String() string {
	switch i.width {
	case WidthByte:
		return fmt.Sprintf("%d", uint8(i.value))
	case WidthWord:
		return fmt.Sprintf("%d", i.value)
	default:
		return "?imm?"
	}
}

// JumpIncrement is a signed byte delta attached to a short/near jump.
// Width distinguishes the 8-bit Jcc/LOOP encoding from the 16-bit
// near CALL/JMP encoding; Value carries the sign-extended delta.
type JumpIncrement struct {
	Width Width
	Value int16
}

// CsIp is a far jump/call target: a raw instruction pointer plus the
// code-segment value it runs in. No segment:offset arithmetic is ever
// performed on it; it is carried and printed verbatim.
type CsIp struct {
	IP uint16
	CS uint16
}
