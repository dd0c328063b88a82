package fields

import "fmt"

// EABase names the register combination an effective address is built
// from. EABp is the base-pointer-only form; unlike the others it always
// carries a displacement, because mod=00,rm=110 is reserved by the
// encoding for EADirect instead.
type EABase uint8

const (
	EADirect EABase = iota
	EABxSi
	EABxDi
	EABpSi
	EABpDi
	EASi
	EADi
	EABp
	EABx
)

var eaBaseNames = [...]string{
	EADirect: "", EABxSi: "bx+si", EABxDi: "bx+di",
	EABpSi: "bp+si", EABpDi: "bp+di", EASi: "si", EADi: "di",
	EABp: "bp", EABx: "bx",
}

// EffectiveAddress is a runtime-computed 16-bit memory address: a base
// form plus an optional signed displacement, tagged with the width of
// the memory access it participates in (None when a sibling operand
// fixes the width). Segment carries an inline segment-override prefix
// folded onto the operand at decode time; HasSegment is false when no
// override applies (the default DS/SS segment is implied).
type EffectiveAddress struct {
	Base       EABase
	Disp       uint16 // bit pattern of the signed displacement
	HasDisp    bool
	Width      Width
	Segment    SegmentRegister
	HasSegment bool
}

// DirectAddress builds the mod=00,rm=110 direct-address form.
func DirectAddress(addr uint16, width Width) EffectiveAddress {
	return EffectiveAddress{Base: EADirect, Disp: addr, HasDisp: true, Width: width}
}

// SignedDisp interprets Disp as a signed 16-bit value.
func (e EffectiveAddress) SignedDisp() int16 {
	return int16(e.Disp)
}

// WithSegmentOverride returns a copy of e with an inline segment override
// attached, as happens when a SegmentOverride prefix is folded onto the
// memory operand at decode time.
func (e EffectiveAddress) WithSegmentOverride(sr SegmentRegister) EffectiveAddress {
	e.Segment = sr
	e.HasSegment = true
	return e
}

func (e EffectiveAddress) String() string {
	inner := eaBaseNames[e.Base]
	if e.Base == EADirect {
		inner = fmt.Sprintf("%d", e.Disp)
	} else if e.HasDisp {
		d := e.SignedDisp()
		if d >= 0 {
			inner = fmt.Sprintf("%s+%d", inner, d)
		} else {
			inner = fmt.Sprintf("%s-%d", inner, -int32(d))
		}
	}
	prefix := ""
	if e.HasSegment {
		prefix = e.Segment.String() + ":"
	}
	return fmt.Sprintf("%s[%s]", prefix, inner)
}
