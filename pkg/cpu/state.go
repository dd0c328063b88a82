// Package cpu holds the 8086 register file, flags, and memory image, and
// the per-operation semantic handlers (mov.go, arithmetic.go, logical.go,
// branch.go) that mutate them.
package cpu

import "github.com/andrz/sim8086/pkg/fields"

// MemorySize is the 8086's full 64 KiB address space; no segment:offset
// translation is performed, so every effective address indexes this
// slice directly.
const MemorySize = 1 << 16

// State is the register file, flags, instruction pointer and memory
// image a Simulator executes against. The four byte-addressable pairs
// are stored once in pairs; AL/AH etc. are views into their low/high
// byte, exactly as the hardware overlays them.
type State struct {
	pairs    [8]uint16 // indexed by fields.Pair
	segments [4]uint16 // indexed by fields.SegmentRegister
	IP       uint16
	Flags    Flags
	Memory   [MemorySize]byte
}

// Reg reads a general-purpose register, assembling a byte-half view
// from its owning pair when r names one (AL/AH/...).
func (s *State) Reg(r fields.Register) uint16 {
	pair := s.pairs[r.Pair()]
	if r.Wide() {
		return pair
	}
	if r.HighHalf() {
		return pair >> 8
	}
	return pair & 0x00FF
}

// SetReg writes a general-purpose register. A byte-half write only
// replaces its own half of the owning pair; a wide write replaces the
// whole pair.
func (s *State) SetReg(r fields.Register, value uint16) {
	p := r.Pair()
	if r.Wide() {
		s.pairs[p] = value
		return
	}
	if r.HighHalf() {
		s.pairs[p] = s.pairs[p]&0x00FF | (value&0x00FF)<<8
		return
	}
	s.pairs[p] = s.pairs[p]&0xFF00 | value&0x00FF
}

// Segment reads a segment register.
func (s *State) Segment(sr fields.SegmentRegister) uint16 {
	return s.segments[sr]
}

// SetSegment writes a segment register.
func (s *State) SetSegment(sr fields.SegmentRegister, value uint16) {
	s.segments[sr] = value
}

// Address resolves an EffectiveAddress against the current register
// file to a flat 16-bit offset into Memory. No segment:offset
// translation occurs — the segment override (if any) is informational
// only and does not participate in the address arithmetic, matching the
// simulator's single flat 64 KiB memory model.
func (s *State) Address(ea fields.EffectiveAddress) uint16 {
	var base uint16
	switch ea.Base {
	case fields.EABxSi:
		base = s.Reg(fields.BX) + s.Reg(fields.SI)
	case fields.EABxDi:
		base = s.Reg(fields.BX) + s.Reg(fields.DI)
	case fields.EABpSi:
		base = s.Reg(fields.BP) + s.Reg(fields.SI)
	case fields.EABpDi:
		base = s.Reg(fields.BP) + s.Reg(fields.DI)
	case fields.EASi:
		base = s.Reg(fields.SI)
	case fields.EADi:
		base = s.Reg(fields.DI)
	case fields.EABp:
		base = s.Reg(fields.BP)
	case fields.EABx:
		base = s.Reg(fields.BX)
	case fields.EADirect:
		base = 0
	}
	return base + ea.Disp
}

// ReadMem16 reads a little-endian word at addr.
func (s *State) ReadMem16(addr uint16) uint16 {
	lo := uint16(s.Memory[addr])
	hi := uint16(s.Memory[addr+1])
	return hi<<8 | lo
}

// WriteMem16 writes a little-endian word at addr.
func (s *State) WriteMem16(addr uint16, value uint16) {
	s.Memory[addr] = byte(value)
	s.Memory[addr+1] = byte(value >> 8)
}
