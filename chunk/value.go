// Package chunk defines the compiled bytecode representation (Chunk,
// Opcode, Instruction) and the runtime Value type shared by the compiler
// and the VM.
package chunk

import (
	"fmt"
	"strconv"
)

// Tag identifies which variant of Value is populated.
type Tag int

const (
	Nil Tag = iota
	Bool
	Int
	Float
	String
	Symbol
	Keyword
	FunctionTag
)

func (t Tag) String() string {
	switch t {
	case Nil:
		return "nil"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case Symbol:
		return "symbol"
	case Keyword:
		return "keyword"
	case FunctionTag:
		return "function"
	}
	return fmt.Sprintf("Tag(%d)", int(t))
}

// Func bundles a function's declared name and arity with its own compiled
// Chunk, compiled independently of the chunk that defines it.
type Func struct {
	Name  string
	Arity int
	Chunk *Chunk
}

// Value is the tagged runtime datum produced and consumed by the VM. Only
// the field matching Tag is meaningful.
type Value struct {
	Tag   Tag
	Bool  bool
	Int   int64
	Float float64
	Str   string // backs String, Symbol, Keyword, and Function's name
	Fn    *Func
}

func NilValue() Value            { return Value{Tag: Nil} }
func BoolValue(b bool) Value     { return Value{Tag: Bool, Bool: b} }
func IntValue(i int64) Value     { return Value{Tag: Int, Int: i} }
func FloatValue(f float64) Value { return Value{Tag: Float, Float: f} }
func StringValue(s string) Value { return Value{Tag: String, Str: s} }
func SymbolValue(s string) Value { return Value{Tag: Symbol, Str: s} }
func KeywordValue(s string) Value { return Value{Tag: Keyword, Str: s} }
func FunctionValue(fn *Func) Value {
	return Value{Tag: FunctionTag, Str: fn.Name, Fn: fn}
}

// Clone returns a copy of v. Functions share their underlying Chunk (it is
// never mutated once compiled); everything else is a plain value copy —
// this is the entirety of the VM's "garbage collection".
func (v Value) Clone() Value { return v }

// Truthy implements the language's truthiness rule: nil and false are
// falsy, zero int/float and the empty string are falsy, everything else
// (including non-empty strings, symbols, keywords and functions) is truthy.
func (v Value) Truthy() bool {
	switch v.Tag {
	case Nil:
		return false
	case Bool:
		return v.Bool
	case Int:
		return v.Int != 0
	case Float:
		return v.Float != 0
	case String:
		return v.Str != ""
	default:
		return true
	}
}

// Equal implements tag-based equality: values of different tags are never
// equal, even when their underlying Go representation would compare equal.
func (v Value) Equal(other Value) bool {
	if v.Tag != other.Tag {
		return false
	}
	switch v.Tag {
	case Nil:
		return true
	case Bool:
		return v.Bool == other.Bool
	case Int:
		return v.Int == other.Int
	case Float:
		return v.Float == other.Float
	case String, Symbol, Keyword:
		return v.Str == other.Str
	case FunctionTag:
		return v.Fn.Name == other.Fn.Name
	}
	return false
}

func (v Value) String() string {
	switch v.Tag {
	case Nil:
		return "nil"
	case Bool:
		return strconv.FormatBool(v.Bool)
	case Int:
		return strconv.FormatInt(v.Int, 10)
	case Float:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case String:
		return v.Str
	case Symbol:
		return v.Str
	case Keyword:
		return ":" + v.Str
	case FunctionTag:
		return v.Fn.Name
	}
	return fmt.Sprintf("<value tag %d>", v.Tag)
}
