// Package vm implements a stack machine that executes a chunk.Chunk: an
// operand stack, a global-variable map, and a call-frame stack.
package vm

import (
	"github.com/dolthub/swiss"

	"wisp/chunk"
)

// Result is the terminal outcome of an Interpret call.
type Result int

const (
	ResultOK Result = iota
	ResultCompileError
	ResultRuntimeError
)

func (r Result) String() string {
	switch r {
	case ResultOK:
		return "ok"
	case ResultCompileError:
		return "compile_error"
	case ResultRuntimeError:
		return "runtime_error"
	}
	return "unknown"
}

// CallFrame tracks one active invocation: which Chunk is executing, the
// instruction pointer within it, and the operand-stack index its locals
// are based at (StackBase), so GetLocal(i) can address parameters and
// let-bindings by position regardless of call depth.
type CallFrame struct {
	Name      string
	IP        int
	StackBase int
	Chunk     *chunk.Chunk
}

// VM is a stack machine: an operand stack of chunk.Value, a Swiss-table
// globals map keyed by symbol name, and a call-frame stack with the
// currently executing frame on top.
type VM struct {
	Stack   []chunk.Value
	Globals *swiss.Map[string, chunk.Value]
	Frames  []CallFrame
	debug   bool
}

// New creates a VM with empty stack and globals.
func New() *VM {
	return &VM{
		Globals: swiss.NewMap[string, chunk.Value](32),
	}
}

func (v *VM) currentFrame() *CallFrame {
	return &v.Frames[len(v.Frames)-1]
}

func (v *VM) push(val chunk.Value) {
	v.Stack = append(v.Stack, val)
}

func (v *VM) pop() (chunk.Value, error) {
	if len(v.Stack) == 0 {
		return chunk.Value{}, RuntimeError{Message: "stack underflow"}
	}
	last := len(v.Stack) - 1
	val := v.Stack[last]
	v.Stack = v.Stack[:last]
	return val, nil
}

func (v *VM) peek() (chunk.Value, error) {
	if len(v.Stack) == 0 {
		return chunk.Value{}, RuntimeError{Message: "stack underflow"}
	}
	return v.Stack[len(v.Stack)-1], nil
}

// pick returns the value n elements below the top (pick(0) is the top)
// along with its absolute stack index, without popping anything.
func (v *VM) pick(n int) (chunk.Value, int, error) {
	idx := len(v.Stack) - 1 - n
	if idx < 0 {
		return chunk.Value{}, -1, RuntimeError{Message: "stack underflow"}
	}
	return v.Stack[idx], idx, nil
}
