package cpu

import "github.com/andrz/sim8086/pkg/fields"

// Flags holds the condition flags plus the two control flags the
// simulator models: Zero, Sign, Parity, Carry, Overflow, the (nibble)
// Auxiliary carry, Direction, and Interrupt-enable.
type Flags struct {
	Z, S, P, C, O, A bool
	D, I             bool
}

// parityTable reports even parity of a byte's bits, precomputed once at
// init the way the teacher's Z80 tables are.
var parityTable [256]bool

func init() {
	for i := 0; i < 256; i++ {
		v := uint8(i)
		ones := 0
		for b := 0; b < 8; b++ {
			ones += int(v & 1)
			v >>= 1
		}
		parityTable[i] = ones%2 == 0
	}
}

func widthMasks(w fields.Width) (mask, signBit uint16) {
	if w == fields.WidthByte {
		return 0x00FF, 0x0080
	}
	return 0xFFFF, 0x8000
}

func widthBits(w fields.Width) uint {
	if w == fields.WidthByte {
		return 8
	}
	return 16
}

// setCommon fills Z, S and P from a computed result; every operation
// that touches flags at all sets these three the same way.
func (f *Flags) setCommon(result uint16, w fields.Width) {
	mask, signBit := widthMasks(w)
	result &= mask
	f.Z = result == 0
	f.S = result&signBit != 0
	f.P = parityTable[byte(result)]
}

// setLogical applies the AND/OR/XOR/TEST rule: Z/S/P from the result,
// C/O/A forced to zero.
func (f *Flags) setLogical(result uint16, w fields.Width) {
	f.setCommon(result, w)
	f.C, f.O, f.A = false, false, false
}

// addWithCarry computes lhs+rhs+carryIn at width w, truncated to that
// width, alongside the carry-out, nibble (auxiliary) carry, and signed
// overflow the ADD/ADC family needs.
func addWithCarry(lhs, rhs uint16, carryIn bool, w fields.Width) (result uint16, carryOut, auxCarry, overflow bool) {
	mask, signBit := widthMasks(w)
	lhs &= mask
	rhs &= mask
	var cin uint32
	if carryIn {
		cin = 1
	}
	full := uint32(lhs) + uint32(rhs) + cin
	result = uint16(full) & mask
	carryOut = full > uint32(mask)
	auxCarry = (lhs&0x0F)+(rhs&0x0F)+uint16(cin) > 0x0F
	lhsSign, rhsSign, resSign := lhs&signBit != 0, rhs&signBit != 0, result&signBit != 0
	overflow = lhsSign == rhsSign && resSign != lhsSign
	return
}

// subWithBorrow computes lhs-rhs-borrowIn at width w, alongside the
// borrow-out, nibble borrow, and signed overflow the SUB/SBB/CMP family
// needs: operands differ in sign and the result's sign matches rhs.
func subWithBorrow(lhs, rhs uint16, borrowIn bool, w fields.Width) (result uint16, borrowOut, auxBorrow, overflow bool) {
	mask, signBit := widthMasks(w)
	lhs &= mask
	rhs &= mask
	var bin int32
	if borrowIn {
		bin = 1
	}
	full := int32(lhs) - int32(rhs) - bin
	result = uint16(full) & mask
	borrowOut = full < 0
	auxBorrow = int32(lhs&0x0F) < int32(rhs&0x0F)+bin
	lhsSign, rhsSign, resSign := lhs&signBit != 0, rhs&signBit != 0, result&signBit != 0
	overflow = lhsSign != rhsSign && resSign == rhsSign
	return
}
