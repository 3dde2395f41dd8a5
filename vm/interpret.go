package vm

import (
	"fmt"

	"wisp/chunk"
	"wisp/compiler"
	"wisp/lexer"
)

// Interpret compiles source fresh and runs it against v. The operand stack
// is always reset to empty at the start of a call and the call-frame stack
// is replaced by a single fresh "main" frame; the globals map persists
// across calls on the same VM, which is exactly the REPL's contract (each
// line is compiled independently but sees previously defined globals). A
// fresh VM from New yields fresh globals.
// When debug is set, the compiled chunk is disassembled and printed before
// it runs, in addition to the live per-instruction trace run() prints as
// it dispatches (see vm/run.go) — this is what backs the "depl"/"debug"
// CLI commands.
func Interpret(v *VM, source string, debug bool) (Result, error) {
	v.debug = debug
	v.Stack = v.Stack[:0]

	tokens := lexer.New(source).Scan()
	comp := compiler.New(tokens)
	ch, err := comp.Compile()
	if err != nil {
		return ResultCompileError, err
	}

	if debug {
		fmt.Print(Disassemble(ch))
	}

	v.Frames = []CallFrame{{Name: "main", IP: 0, StackBase: 0, Chunk: ch}}
	if err := v.run(); err != nil {
		return ResultRuntimeError, err
	}
	return ResultOK, nil
}

// Disassemble renders ch as a human-readable instruction listing, one line
// per instruction, for the debug/depl commands.
func Disassemble(ch *chunk.Chunk) string {
	var out string
	for ip := range ch.Code {
		out += disassemble(ch, ip) + "\n"
	}
	return out
}
