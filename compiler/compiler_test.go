package compiler

import (
	"testing"

	"wisp/chunk"
	"wisp/lexer"
)

func compileSource(t *testing.T, source string) *chunk.Chunk {
	t.Helper()
	tokens := lexer.New(source).Scan()
	ch, err := New(tokens).Compile()
	if err != nil {
		t.Fatalf("Compile(%q) error: %v", source, err)
	}
	return ch
}

func opcodes(ch *chunk.Chunk) []chunk.Opcode {
	ops := make([]chunk.Opcode, len(ch.Code))
	for i, instr := range ch.Code {
		ops[i] = instr.Op
	}
	return ops
}

func assertOps(t *testing.T, got []chunk.Opcode, want ...chunk.Opcode) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("opcode count = %d, want %d: got %v, want %v", len(got), len(want), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("opcode %d = %s, want %s (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestCompileIntegerLiteral(t *testing.T) {
	ch := compileSource(t, "42")
	assertOps(t, opcodes(ch), chunk.OpConstant, chunk.OpPop, chunk.OpReturn)
	if ch.Constants[0].Int != 42 {
		t.Errorf("constant = %+v, want 42", ch.Constants[0])
	}
}

func TestCompileArithmeticCall(t *testing.T) {
	ch := compileSource(t, "(+ 1 2)")
	assertOps(t, opcodes(ch), chunk.OpConstant, chunk.OpConstant, chunk.OpAdd, chunk.OpPop, chunk.OpReturn)
}

func TestCompileUnaryMinusIsNegate(t *testing.T) {
	ch := compileSource(t, "(- 5)")
	assertOps(t, opcodes(ch), chunk.OpConstant, chunk.OpNegate, chunk.OpPop, chunk.OpReturn)
}

func TestCompileBinaryMinusIsSubtract(t *testing.T) {
	ch := compileSource(t, "(- 5 2)")
	assertOps(t, opcodes(ch), chunk.OpConstant, chunk.OpConstant, chunk.OpSubtract, chunk.OpPop, chunk.OpReturn)
}

func TestCompileGreaterOrEqualIsLessThanNot(t *testing.T) {
	ch := compileSource(t, "(>= 1 2)")
	assertOps(t, opcodes(ch), chunk.OpConstant, chunk.OpConstant, chunk.OpLessThan, chunk.OpNot, chunk.OpPop, chunk.OpReturn)
}

func TestCompileDef(t *testing.T) {
	ch := compileSource(t, "(def x 10)")
	assertOps(t, opcodes(ch), chunk.OpConstant, chunk.OpDefineGlobal, chunk.OpPop, chunk.OpReturn)
}

func TestCompileLetZapsBindings(t *testing.T) {
	ch := compileSource(t, "(let ((x 1) (y 2)) (+ x y))")
	ops := opcodes(ch)
	// push x, push y, get x, get y, add, zap y, zap x, pop (top-level), return
	assertOps(t, ops,
		chunk.OpConstant, chunk.OpConstant,
		chunk.OpGetLocal, chunk.OpGetLocal, chunk.OpAdd,
		chunk.OpZap, chunk.OpZap,
		chunk.OpPop, chunk.OpReturn,
	)
	if ch.Code[5].Operand != 1 || ch.Code[6].Operand != 0 {
		t.Errorf("zap operands = %d, %d, want 1, 0", ch.Code[5].Operand, ch.Code[6].Operand)
	}
}

func TestCompileIfBacpatchesBothBranches(t *testing.T) {
	ch := compileSource(t, "(if true 1 2)")
	assertOps(t, opcodes(ch),
		chunk.OpConstant, chunk.OpJumpIfFalse, chunk.OpPop, chunk.OpConstant,
		chunk.OpJump, chunk.OpPop, chunk.OpConstant, chunk.OpPop, chunk.OpReturn,
	)
}

func TestCompileWhileLoopsBackToCondition(t *testing.T) {
	ch := compileSource(t, "(while true (print 1))")
	ops := opcodes(ch)
	assertOps(t, ops,
		chunk.OpConstant, chunk.OpJumpIfFalse, chunk.OpPop,
		chunk.OpConstant, chunk.OpPrint, chunk.OpPop,
		chunk.OpJump, chunk.OpPop, chunk.OpConstant, chunk.OpPop, chunk.OpReturn,
	)
	jumpBack := ch.Code[6]
	if jumpBack.Operand != -1 {
		t.Errorf("while jump target = %d, want -1 (one before the condition's first opcode)", jumpBack.Operand)
	}
}

func TestCompileDefnAndCall(t *testing.T) {
	ch := compileSource(t, "(defn add (a b) (+ a b)) (add 1 2)")
	// defn: push function constant, define global, pop (top-level)
	// call: get global 'add', push 1, push 2, call(2), pop
	ops := opcodes(ch)
	assertOps(t, ops,
		chunk.OpConstant, chunk.OpDefineGlobal, chunk.OpPop,
		chunk.OpGetGlobal, chunk.OpConstant, chunk.OpConstant, chunk.OpCall, chunk.OpPop,
		chunk.OpReturn,
	)
	if ch.Code[6].Operand != 2 {
		t.Errorf("Call operand = %d, want 2", ch.Code[6].Operand)
	}

	fnConst := ch.Constants[0]
	if fnConst.Tag != chunk.FunctionTag {
		t.Fatalf("constant 0 tag = %s, want function", fnConst.Tag)
	}
	innerOps := opcodes(fnConst.Fn.Chunk)
	assertOps(t, innerOps, chunk.OpGetLocal, chunk.OpGetLocal, chunk.OpAdd, chunk.OpReturn)
}

func TestCompileUndefinedOperatorIsCall(t *testing.T) {
	tokens := lexer.New("(wat 1 2)").Scan()
	_, err := New(tokens).Compile()
	if err != nil {
		t.Fatalf("(wat ...) should compile as a call to an unresolved global, got error: %v", err)
	}
}

func TestCompileWrongArityIsCompileError(t *testing.T) {
	tokens := lexer.New("(+ 1 2 3)").Scan()
	_, err := New(tokens).Compile()
	if err == nil {
		t.Fatal("expected a CompileError for wrong arity to +")
	}
	if _, ok := err.(CompileError); !ok {
		t.Fatalf("error type = %T, want CompileError", err)
	}
}
