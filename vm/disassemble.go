package vm

import (
	"fmt"

	"wisp/chunk"
)

// disassemble renders the instruction at ip as a single human-readable
// line, annotating constant-pool references with the constant's printed
// value.
func disassemble(c *chunk.Chunk, ip int) string {
	instr := c.Code[ip]
	line := 0
	if ip < len(c.Lines) {
		line = c.Lines[ip]
	}
	switch instr.Op {
	case chunk.OpConstant, chunk.OpDefineGlobal, chunk.OpGetGlobal:
		return fmt.Sprintf("%04d %4d %-14s %4d  ; %s", ip, line, instr.Op, instr.Operand, c.Constants[instr.Operand].String())
	case chunk.OpGetLocal, chunk.OpJump, chunk.OpJumpIfFalse, chunk.OpCall, chunk.OpZap:
		return fmt.Sprintf("%04d %4d %-14s %4d", ip, line, instr.Op, instr.Operand)
	default:
		return fmt.Sprintf("%04d %4d %-14s", ip, line, instr.Op)
	}
}
