package compiler

import "fmt"

// CompileError is returned when source fails to compile: an unexpected
// token, a missing closing paren, a non-symbol where a name was required,
// wrong arity on a built-in, or a lexing error reached while compiling.
type CompileError struct {
	Message string
}

func (e CompileError) Error() string {
	return fmt.Sprintf("💥 CompileError: %s", e.Message)
}

// DeveloperError marks an invariant violation that should never occur from
// well-formed compiler state, such as backpatching an instruction that
// isn't a jump.
type DeveloperError struct {
	Message string
}

func (e DeveloperError) Error() string {
	return fmt.Sprintf("🤖 DeveloperError: %s", e.Message)
}
