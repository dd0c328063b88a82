// Package decoder turns a raw 8086 instruction stream into a sequence of
// instruction.Instruction values. Dispatch is table-driven (table.go):
// the first matching (opcode, mask) row wins and hands off to a Shape
// (shapes.go) that consumes the rest of the encoding.
package decoder

import (
	"fmt"

	"github.com/andrz/sim8086/pkg/bytestream"
	"github.com/andrz/sim8086/pkg/fields"
	"github.com/andrz/sim8086/pkg/instruction"
)

// DecodeError reports a failure to decode the instruction starting at
// Offset: either no table row matched First (and Second, for two-byte
// rows), or a Shape ran out of bytes partway through.
type DecodeError struct {
	Offset    int
	First     byte
	Second    byte
	HasSecond bool
	Reason    string
}

func (e *DecodeError) Error() string {
	if e.HasSecond {
		return fmt.Sprintf("decoder: %s at offset %d (bytes %#02x %#02x)", e.Reason, e.Offset, e.First, e.Second)
	}
	return fmt.Sprintf("decoder: %s at offset %d (byte %#02x)", e.Reason, e.Offset, e.First)
}

// Decode walks data front to back and returns every instruction found.
// Each Instruction's Size is the number of bytes it occupied, including
// any prefix bytes that preceded its opcode.
func Decode(data []byte) ([]*instruction.Instruction, error) {
	r := bytestream.New(data)
	var out []*instruction.Instruction

	for !r.AtEnd() {
		start := r.Consumed()

		prefix, err := readPrefixes(r)
		if err != nil {
			return nil, err
		}

		first, ok := r.Next()
		if !ok {
			return nil, &DecodeError{Offset: start, Reason: "prefix with no following opcode"}
		}

		e, err := match(r, first)
		if err != nil {
			return nil, err
		}

		ins, err := e.Shape(first, r, e.Operation)
		if err != nil {
			return nil, &DecodeError{Offset: start, First: first, Reason: err.Error()}
		}

		applyPrefix(ins, prefix)
		ins.Size = r.Consumed() - start
		out = append(out, ins)
	}

	return out, nil
}

// readPrefixes consumes leading LOCK/REP/segment-override bytes,
// accumulating them via fields.Prefix.Join. It stops, without
// consuming, at the first byte that isn't a recognised prefix.
func readPrefixes(r *bytestream.Stream) (fields.Prefix, error) {
	var acc fields.Prefix
	for {
		b, ok := r.Peek()
		if !ok {
			return acc, nil
		}
		pe, found := matchPrefix(b)
		if !found {
			return acc, nil
		}
		r.Next()
		acc = acc.Join(pe.Prefix)
	}
}

func matchPrefix(b byte) (prefixEntry, bool) {
	for _, pe := range prefixTable {
		if b&pe.Mask == pe.Opcode {
			return pe, true
		}
	}
	return prefixEntry{}, false
}

// match scans table in order for the first row whose opcode/mask
// matches first and, for two-byte rows, whose second byte (peeked, not
// consumed — the matched Shape consumes it) also matches.
func match(r *bytestream.Stream, first byte) (entry, error) {
	for _, e := range table {
		if first&e.Mask[0] != e.Opcode[0] {
			continue
		}
		if !e.TwoByte {
			return e, nil
		}
		second, ok := r.Peek()
		if !ok {
			return entry{}, &DecodeError{Offset: r.Consumed(), First: first, Reason: "truncated mod/reg/rm byte"}
		}
		if second&e.Mask[1] == e.Opcode[1] {
			return e, nil
		}
	}
	return entry{}, &DecodeError{Offset: r.Consumed() - 1, First: first, Reason: "unrecognised opcode"}
}

// applyPrefix attaches the accumulated prefix to ins. A pending segment
// override is folded onto ins's memory operand rather than kept as a
// standalone prefix word, demoting the instruction-level Prefix to
// Lock-only (if one was joined) or None.
func applyPrefix(ins *instruction.Instruction, prefix fields.Prefix) {
	switch prefix.Kind {
	case fields.PrefixNone:
		return
	case fields.PrefixSegmentOverride, fields.PrefixLockSegmentOverride:
		if mem, ok := ins.MemoryOperand(); ok {
			mem.EffectiveAddress = mem.EffectiveAddress.WithSegmentOverride(prefix.Segment)
		}
		if prefix.Kind == fields.PrefixLockSegmentOverride {
			p := fields.Prefix{Kind: fields.PrefixLock}
			ins.Prefix = &p
		}
		return
	default:
		p := prefix
		ins.Prefix = &p
	}
}
