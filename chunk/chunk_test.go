package chunk

import "testing"

func TestWriteCodeAndConstant(t *testing.T) {
	c := New()
	idx := c.WriteConstant(IntValue(7))
	if idx != 0 {
		t.Fatalf("WriteConstant index = %d, want 0", idx)
	}
	codeIdx := c.WriteCode(OpConstant, idx, 1)
	if codeIdx != 0 {
		t.Fatalf("WriteCode index = %d, want 0", codeIdx)
	}
	if len(c.Code) != 1 || c.Code[0].Op != OpConstant || c.Code[0].Operand != 0 {
		t.Fatalf("unexpected code: %+v", c.Code)
	}
	if len(c.Lines) != 1 || c.Lines[0] != 1 {
		t.Fatalf("unexpected lines: %v", c.Lines)
	}
}

func TestBackpatchJump(t *testing.T) {
	c := New()
	jmp := c.WriteCode(OpJumpIfFalse, 0, 1)
	c.WriteCode(OpPop, 0, 1)
	c.WriteCode(OpPop, 0, 1)
	if err := c.BackpatchJump(jmp); err != nil {
		t.Fatalf("BackpatchJump: %v", err)
	}
	if c.Code[jmp].Operand != 2 {
		t.Errorf("backpatched operand = %d, want 2", c.Code[jmp].Operand)
	}
}

func TestBackpatchJumpRejectsNonJump(t *testing.T) {
	c := New()
	idx := c.WriteCode(OpPop, 0, 1)
	if err := c.BackpatchJump(idx); err == nil {
		t.Fatal("expected error backpatching a non-jump instruction")
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		v    Value
		want bool
	}{
		{NilValue(), false},
		{BoolValue(false), false},
		{BoolValue(true), true},
		{IntValue(0), false},
		{IntValue(1), true},
		{FloatValue(0), false},
		{StringValue(""), false},
		{StringValue("x"), true},
		{SymbolValue("x"), true},
	}
	for _, tt := range tests {
		if got := tt.v.Truthy(); got != tt.want {
			t.Errorf("%v.Truthy() = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestEqualityIsTagBound(t *testing.T) {
	if IntValue(1).Equal(FloatValue(1)) {
		t.Error("Int(1) should not equal Float(1)")
	}
	if !IntValue(1).Equal(IntValue(1)) {
		t.Error("Int(1) should equal Int(1)")
	}
	if !NilValue().Equal(NilValue()) {
		t.Error("Nil should equal Nil")
	}
}

func TestArithmeticCoercion(t *testing.T) {
	sum, err := Add(IntValue(1), IntValue(2))
	if err != nil || sum.Tag != Int || sum.Int != 3 {
		t.Fatalf("Add(1,2) = %+v, %v", sum, err)
	}

	mixed, err := Add(IntValue(1), FloatValue(2.5))
	if err != nil || mixed.Tag != Float || mixed.Float != 3.5 {
		t.Fatalf("Add(1,2.5) = %+v, %v", mixed, err)
	}

	quotient, err := Divide(IntValue(10), IntValue(4))
	if err != nil || quotient.Tag != Float || quotient.Float != 2.5 {
		t.Fatalf("Divide(10,4) = %+v, %v", quotient, err)
	}

	neg, err := Negate(IntValue(5))
	if err != nil || neg.Tag != Int || neg.Int != -5 {
		t.Fatalf("Negate(5) = %+v, %v", neg, err)
	}
}
