package chunk

import "fmt"

// numericOp applies intOp when both operands are Int, and floatOp if
// either operand is Float (matching the language's coercion rule: any
// Float operand forces a Float result).
func numericOp(name string, a, b Value, intOp func(int64, int64) int64, floatOp func(float64, float64) float64) (Value, error) {
	switch {
	case a.Tag == Int && b.Tag == Int:
		return IntValue(intOp(a.Int, b.Int)), nil
	case a.Tag == Int && b.Tag == Float:
		return FloatValue(floatOp(float64(a.Int), b.Float)), nil
	case a.Tag == Float && b.Tag == Int:
		return FloatValue(floatOp(a.Float, float64(b.Int))), nil
	case a.Tag == Float && b.Tag == Float:
		return FloatValue(floatOp(a.Float, b.Float)), nil
	}
	return Value{}, fmt.Errorf("cannot %s %s and %s", name, a.Tag, b.Tag)
}

// Add computes a + b.
func Add(a, b Value) (Value, error) {
	return numericOp("add", a, b,
		func(x, y int64) int64 { return x + y },
		func(x, y float64) float64 { return x + y })
}

// Subtract computes a - b.
func Subtract(a, b Value) (Value, error) {
	return numericOp("subtract", a, b,
		func(x, y int64) int64 { return x - y },
		func(x, y float64) float64 { return x - y })
}

// Multiply computes a * b.
func Multiply(a, b Value) (Value, error) {
	return numericOp("multiply", a, b,
		func(x, y int64) int64 { return x * y },
		func(x, y float64) float64 { return x * y })
}

// Divide computes a / b. Division always produces a Float, even when both
// operands are Int.
func Divide(a, b Value) (Value, error) {
	lhs, lok := asFloat(a)
	rhs, rok := asFloat(b)
	if !lok || !rok {
		return Value{}, fmt.Errorf("cannot divide %s by %s", a.Tag, b.Tag)
	}
	return FloatValue(lhs / rhs), nil
}

// Negate computes -v for a numeric v.
func Negate(v Value) (Value, error) {
	switch v.Tag {
	case Int:
		return IntValue(-v.Int), nil
	case Float:
		return FloatValue(-v.Float), nil
	}
	return Value{}, fmt.Errorf("cannot negate %s", v.Tag)
}

// GreaterThan compares a > b numerically.
func GreaterThan(a, b Value) (Value, error) {
	lhs, lok := asFloat(a)
	rhs, rok := asFloat(b)
	if !lok || !rok {
		return Value{}, fmt.Errorf("cannot compare %s and %s", a.Tag, b.Tag)
	}
	return BoolValue(lhs > rhs), nil
}

// LessThan compares a < b numerically.
func LessThan(a, b Value) (Value, error) {
	lhs, lok := asFloat(a)
	rhs, rok := asFloat(b)
	if !lok || !rok {
		return Value{}, fmt.Errorf("cannot compare %s and %s", a.Tag, b.Tag)
	}
	return BoolValue(lhs < rhs), nil
}

func asFloat(v Value) (float64, bool) {
	switch v.Tag {
	case Int:
		return float64(v.Int), true
	case Float:
		return v.Float, true
	}
	return 0, false
}
