package vm

import (
	"fmt"

	"wisp/chunk"
)

// call implements Call(argc): the callee sits argc elements below the top
// of stack (above it are the argc already-pushed arguments). It pushes a
// new frame at IP 0 against the callee's own Chunk, with StackBase set to
// the index of the first argument so GetLocal(i) addresses parameters by
// position.
func (v *VM) call(argc int) error {
	callee, calleeIdx, err := v.pick(argc)
	if err != nil {
		return err
	}
	if callee.Tag != chunk.FunctionTag {
		return RuntimeError{Message: fmt.Sprintf("%s is not callable", callee.String())}
	}
	v.Frames = append(v.Frames, CallFrame{
		Name:      callee.Fn.Name,
		IP:        0,
		StackBase: calleeIdx + 1,
		Chunk:     callee.Fn.Chunk,
	})
	return nil
}

// run dispatches opcodes against whichever frame is current until the
// bottom (main) frame's IP reaches one before its own last instruction —
// the trailing Return that Compile always appends is never actually
// dispatched for the main chunk; that's the implicit end-of-program
// boundary. Non-main frames have no such early exit: their Return opcode
// is dispatched directly, unwinds the stack, and resumes the caller.
func (v *VM) run() error {
	for {
		frame := v.currentFrame()
		if len(v.Frames) == 1 && frame.IP >= len(frame.Chunk.Code)-1 {
			return nil
		}

		instr := frame.Chunk.Code[frame.IP]
		if v.debug {
			fmt.Println(disassemble(frame.Chunk, frame.IP))
		}

		switch instr.Op {
		case chunk.OpConstant:
			v.push(frame.Chunk.Constants[instr.Operand].Clone())

		case chunk.OpDefineGlobal:
			val, err := v.pop()
			if err != nil {
				return err
			}
			name := frame.Chunk.Constants[instr.Operand]
			v.Globals.Put(name.Str, val)
			v.push(chunk.SymbolValue(name.Str))

		case chunk.OpGetGlobal:
			name := frame.Chunk.Constants[instr.Operand]
			val, ok := v.Globals.Get(name.Str)
			if !ok {
				return RuntimeError{Message: fmt.Sprintf("symbol %q not found", name.Str)}
			}
			v.push(val.Clone())

		case chunk.OpGetLocal:
			idx := frame.StackBase + instr.Operand
			if idx < 0 || idx >= len(v.Stack) {
				return RuntimeError{Message: "local index out of bounds"}
			}
			v.push(v.Stack[idx].Clone())

		case chunk.OpJump:
			frame.IP = instr.Operand

		case chunk.OpJumpIfFalse:
			top, err := v.peek()
			if err != nil {
				return err
			}
			if !top.Truthy() {
				frame.IP = instr.Operand
			}

		case chunk.OpCall:
			if err := v.call(instr.Operand); err != nil {
				return err
			}
			continue // new frame starts at IP 0; skip the epilogue increment

		case chunk.OpAdd, chunk.OpSubtract, chunk.OpMultiply, chunk.OpDivide:
			a, err := v.pop()
			if err != nil {
				return err
			}
			b, err := v.pop()
			if err != nil {
				return err
			}
			var result chunk.Value
			var opErr error
			switch instr.Op {
			case chunk.OpAdd:
				result, opErr = chunk.Add(b, a)
			case chunk.OpSubtract:
				result, opErr = chunk.Subtract(b, a)
			case chunk.OpMultiply:
				result, opErr = chunk.Multiply(b, a)
			case chunk.OpDivide:
				result, opErr = chunk.Divide(b, a)
			}
			if opErr != nil {
				return RuntimeError{Message: opErr.Error()}
			}
			v.push(result)

		case chunk.OpNegate:
			val, err := v.pop()
			if err != nil {
				return err
			}
			result, opErr := chunk.Negate(val)
			if opErr != nil {
				return RuntimeError{Message: opErr.Error()}
			}
			v.push(result)

		case chunk.OpNot:
			val, err := v.pop()
			if err != nil {
				return err
			}
			v.push(chunk.BoolValue(!val.Truthy()))

		case chunk.OpEqual:
			a, err := v.pop()
			if err != nil {
				return err
			}
			b, err := v.pop()
			if err != nil {
				return err
			}
			v.push(chunk.BoolValue(b.Equal(a)))

		case chunk.OpGreaterThan, chunk.OpLessThan:
			a, err := v.pop()
			if err != nil {
				return err
			}
			b, err := v.pop()
			if err != nil {
				return err
			}
			var result chunk.Value
			var opErr error
			if instr.Op == chunk.OpGreaterThan {
				result, opErr = chunk.GreaterThan(b, a)
			} else {
				result, opErr = chunk.LessThan(b, a)
			}
			if opErr != nil {
				return RuntimeError{Message: opErr.Error()}
			}
			v.push(result)

		case chunk.OpPrint:
			val, err := v.pop()
			if err != nil {
				return err
			}
			fmt.Println(val.String())
			v.push(chunk.NilValue())

		case chunk.OpPop:
			if _, err := v.pop(); err != nil {
				return err
			}

		case chunk.OpZap:
			idx := frame.StackBase + instr.Operand
			if idx < 0 || idx >= len(v.Stack) {
				return RuntimeError{Message: "zap index out of bounds"}
			}
			v.Stack = append(v.Stack[:idx], v.Stack[idx+1:]...)

		case chunk.OpReturn:
			if len(v.Frames) == 1 {
				// Unreachable under normal dispatch: the boundary check above
				// stops one instruction before this is ever reached for the
				// main frame. Kept so the opcode has well-defined semantics
				// when dispatched directly, e.g. from a test.
				val, err := v.pop()
				if err != nil {
					return err
				}
				fmt.Println(val.String())
				return nil
			}
			retVal, err := v.pop()
			if err != nil {
				return err
			}
			calleeIdx := frame.StackBase - 1
			v.Stack = v.Stack[:calleeIdx]
			v.push(retVal)
			v.Frames = v.Frames[:len(v.Frames)-1]
			v.currentFrame().IP++
			continue // caller's IP already advanced past its Call instruction

		default:
			return RuntimeError{Message: fmt.Sprintf("unknown opcode %s", instr.Op)}
		}

		frame.IP++
	}
}
