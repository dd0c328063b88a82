package fields

// Register identifies one of the 8086's general-purpose registers, either
// a full 16-bit pair or an 8-bit half. The register file only ever stores
// the four 16-bit pairs plus SP/BP/SI/DI; AL/AH etc. are views into AX's
// low/high byte.
type Register uint8

const (
	AX Register = iota
	CX
	DX
	BX
	SP
	BP
	SI
	DI
	AL
	CL
	DL
	BL
	AH
	CH
	DH
	BH
)

var wideRegisters = [8]Register{AX, CX, DX, BX, SP, BP, SI, DI}
var byteRegisters = [8]Register{AL, CL, DL, BL, AH, CH, DH, BH}

var registerNames = [...]string{
	AX: "ax", CX: "cx", DX: "dx", BX: "bx",
	SP: "sp", BP: "bp", SI: "si", DI: "di",
	AL: "al", CL: "cl", DL: "dl", BL: "bl",
	AH: "ah", CH: "ch", DH: "dh", BH: "bh",
}

// DecodeRegister maps a 3-bit register field and the W (wide) bit to a
// Register, per the standard 8086 register-encoding table.
func DecodeRegister(field uint8, wide bool) Register {
	field &= 0x07
	if wide {
		return wideRegisters[field]
	}
	return byteRegisters[field]
}

// Wide reports whether r is one of the 16-bit pair registers.
func (r Register) Wide() bool {
	return r <= DI
}

// String returns the NASM-compatible lower-case register name.
func (r Register) String() string {
	if int(r) >= len(registerNames) {
		return "?reg?"
	}
	return registerNames[r]
}

// Pair identifies which 16-bit cell a register reads or writes. For the
// four byte-addressable pairs (AX/CX/DX/BX) both halves map to the same
// pair; for SP/BP/SI/DI the register itself is the pair.
type Pair uint8

const (
	PairAX Pair = iota
	PairCX
	PairDX
	PairBX
	PairSP
	PairBP
	PairSI
	PairDI
)

var pairOf = [...]Pair{
	AX: PairAX, CX: PairCX, DX: PairDX, BX: PairBX,
	SP: PairSP, BP: PairBP, SI: PairSI, DI: PairDI,
	AL: PairAX, CL: PairCX, DL: PairDX, BL: PairBX,
	AH: PairAX, CH: PairCX, DH: PairDX, BH: PairBX,
}

// Pair returns the 16-bit cell that backs r.
func (r Register) Pair() Pair {
	return pairOf[r]
}

// HighHalf reports whether r reads/writes the high byte of its pair
// (AH/BH/CH/DH). Only meaningful for non-wide registers.
func (r Register) HighHalf() bool {
	switch r {
	case AH, BH, CH, DH:
		return true
	default:
		return false
	}
}

// SegmentRegister identifies one of the four segment registers.
type SegmentRegister uint8

const (
	ES SegmentRegister = iota
	CS
	SS
	DS
)

var segmentNames = [...]string{ES: "es", CS: "cs", SS: "ss", DS: "ds"}

// DecodeSegmentRegister maps a 2-bit segment-register field to a
// SegmentRegister: 00=ES, 01=CS, 10=SS, 11=DS.
func DecodeSegmentRegister(field uint8) SegmentRegister {
	return SegmentRegister(field & 0x03)
}

func (s SegmentRegister) String() string {
	if int(s) >= len(segmentNames) {
		return "?seg?"
	}
	return segmentNames[s]
}
