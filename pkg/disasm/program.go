// Package disasm holds the decoded-program cursor and the text emitter
// that renders it back to assembler source.
package disasm

import (
	"fmt"

	"github.com/andrz/sim8086/pkg/instruction"
)

// Program is an ordered, fully-sized instruction sequence with a
// 0-based cursor used to drive branching. Cursor states are Before(0),
// At(i) for i in [1,n], and End (i == n); Seek walks instruction by
// instruction rather than jumping, so a delta that doesn't land exactly
// on an instruction boundary is a hard error.
type Program struct {
	Instructions []*instruction.Instruction
	cursor       int
}

// New wraps a decoded instruction slice as a Program positioned before
// the first instruction.
func New(ins []*instruction.Instruction) *Program {
	return &Program{Instructions: ins}
}

// Len returns the instruction count.
func (p *Program) Len() int {
	return len(p.Instructions)
}

// Cursor returns the current 0-based instruction index; it equals
// Len() once the program has run off its end.
func (p *Program) Cursor() int {
	return p.cursor
}

// AtEnd reports whether the cursor has consumed every instruction.
func (p *Program) AtEnd() bool {
	return p.cursor >= len(p.Instructions)
}

// Current returns the instruction at the cursor, or nil at end.
func (p *Program) Current() *instruction.Instruction {
	if p.AtEnd() {
		return nil
	}
	return p.Instructions[p.cursor]
}

// Advance moves the cursor past the current instruction, the normal
// one-step fetch/advance the simulator driver performs.
func (p *Program) Advance() {
	if !p.AtEnd() {
		p.cursor++
	}
}

// Seek moves the cursor by a signed byte delta measured from the start
// of the instruction at the cursor (a branch therefore passes its own
// size plus its increment). It walks instruction-by-instruction, summing byte
// sizes, until the delta is exactly consumed; a delta that lands
// between two instructions rather than on a boundary is an error.
func (p *Program) Seek(delta int) error {
	i := p.cursor
	remaining := delta
	for remaining > 0 {
		if i >= len(p.Instructions) {
			return fmt.Errorf("disasm: branch overruns end of program with %d bytes unconsumed", remaining)
		}
		remaining -= p.Instructions[i].Size
		i++
	}
	for remaining < 0 {
		i--
		if i < 0 {
			return fmt.Errorf("disasm: branch underruns start of program with %d bytes unconsumed", -remaining)
		}
		remaining += p.Instructions[i].Size
	}
	if remaining != 0 {
		return fmt.Errorf("disasm: branch target is not on an instruction boundary (%d bytes short)", remaining)
	}
	p.cursor = i
	return nil
}
