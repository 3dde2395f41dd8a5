// Package compiler performs single-pass recursive-descent compilation of a
// wisp token stream directly into a chunk.Chunk — there is no intermediate
// AST. Special forms and built-ins are recognized by the symbol at the head
// of a parenthesized form and compiled straight to bytecode as they're
// parsed.
package compiler

import (
	"fmt"

	"wisp/chunk"
	"wisp/token"
)

// local records one lexically bound name and the scope depth it was
// introduced at. Its position in the locals slice at bind time is also its
// runtime stack index (relative to the enclosing frame's stack-base).
type local struct {
	name  string
	depth int
}

// Compiler walks a token stream once, emitting bytecode into chunk as it
// goes. A fresh Compiler is created per top-level call and per `defn` body;
// nothing is shared between them except the underlying token slice.
type Compiler struct {
	chunk *chunk.Chunk

	locals     []local
	scopeDepth int
	sexpDepth  int
	isMain     bool

	tokens []token.Token
	pos    int
}

// New creates a Compiler for a top-level script: auto-Pop is active between
// successive top-level expressions.
func New(tokens []token.Token) *Compiler {
	return &Compiler{chunk: chunk.New(), tokens: tokens, isMain: true}
}

// newFunction creates a Compiler for a nested `defn` body starting at pos,
// with locals pre-populated for each parameter at scope depth 0 so
// GetLocal(i) resolves them by position.
func newFunction(tokens []token.Token, pos int, params []string) *Compiler {
	c := &Compiler{chunk: chunk.New(), tokens: tokens, pos: pos, isMain: false}
	for _, p := range params {
		c.locals = append(c.locals, local{name: p, depth: 0})
	}
	return c
}

func (c *Compiler) current() token.Token { return c.tokens[c.pos] }

func (c *Compiler) atEnd() bool { return c.current().Kind == token.EOF }

func (c *Compiler) advance() token.Token {
	t := c.tokens[c.pos]
	if !c.atEnd() {
		c.pos++
	}
	return t
}

func (c *Compiler) expect(kind token.Kind, message string) (token.Token, error) {
	if c.current().Kind != kind {
		return token.Token{}, CompileError{Message: message}
	}
	return c.advance(), nil
}

func (c *Compiler) emit(op chunk.Opcode, operand int, line int32) int {
	return c.chunk.WriteCode(op, operand, int(line))
}

func (c *Compiler) emitConstant(v chunk.Value, line int32) {
	idx := c.chunk.WriteConstant(v)
	c.emit(chunk.OpConstant, idx, line)
}

// backpatch wraps chunk.BackpatchJump: a failure here means the compiler
// itself emitted a backpatch call against an instruction index that isn't
// a pending jump, which can only happen from a bookkeeping bug in this
// package, never from user input — so it surfaces as a DeveloperError
// rather than a CompileError.
func (c *Compiler) backpatch(idx int) error {
	if err := c.chunk.BackpatchJump(idx); err != nil {
		return DeveloperError{Message: err.Error()}
	}
	return nil
}

// Compile drives the compiler to end of input, then appends a trailing
// Return the same way every defn body does. The VM's main-frame loop
// boundary (IP < len(code)-1) means this trailing Return is never actually
// dispatched for the top-level chunk — it exists to make "one past the
// last real opcode" well-defined for backpatching and disassembly.
func (c *Compiler) Compile() (*chunk.Chunk, error) {
	for !c.atEnd() {
		if err := c.expression(); err != nil {
			return nil, err
		}
	}
	c.emit(chunk.OpReturn, 0, 0)
	return c.chunk, nil
}

// expression compiles exactly one expression: a literal, a symbol
// reference, or a parenthesized form. At top level, once the whole
// expression is compiled and sexpDepth has returned to zero, its value is
// discarded with Pop (top-level expressions run for effect only).
func (c *Compiler) expression() error {
	t := c.current()
	switch t.Kind {
	case token.LPAREN:
		if err := c.sexp(); err != nil {
			return err
		}
	case token.NIL:
		c.emitConstant(chunk.NilValue(), t.Line)
		c.advance()
	case token.BOOL:
		c.emitConstant(chunk.BoolValue(t.Literal.(bool)), t.Line)
		c.advance()
	case token.INT:
		c.emitConstant(chunk.IntValue(t.Literal.(int64)), t.Line)
		c.advance()
	case token.FLOAT:
		c.emitConstant(chunk.FloatValue(t.Literal.(float64)), t.Line)
		c.advance()
	case token.STRING:
		c.emitConstant(chunk.StringValue(t.Literal.(string)), t.Line)
		c.advance()
	case token.KEYWORD:
		c.emitConstant(chunk.KeywordValue(t.Literal.(string)), t.Line)
		c.advance()
	case token.SYMBOL:
		if err := c.compileSymbol(t); err != nil {
			return err
		}
	case token.ERROR:
		return CompileError{Message: fmt.Sprintf("lexing error at line %d: %s", t.Line, t.Reason)}
	default:
		return CompileError{Message: fmt.Sprintf("unexpected token %s at line %d", t.Kind, t.Line)}
	}
	if c.isMain && c.sexpDepth == 0 {
		c.emit(chunk.OpPop, 0, t.Line)
	}
	return nil
}

// compileSymbol resolves name against the local-variable stack top-down
// before falling back to a global lookup.
func (c *Compiler) compileSymbol(t token.Token) error {
	name := t.Literal.(string)
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			c.emit(chunk.OpGetLocal, i, t.Line)
			c.advance()
			return nil
		}
	}
	idx := c.chunk.WriteConstant(chunk.SymbolValue(name))
	c.emit(chunk.OpGetGlobal, idx, t.Line)
	c.advance()
	return nil
}

var specialForms map[string]func(*Compiler, int32) error

// The table is filled in init because its entries reach back to sexp, which
// reads specialForms; a package-level initializer would form a cycle.
func init() {
	specialForms = map[string]func(*Compiler, int32) error{
		"def":   (*Compiler).compileDef,
		"let":   (*Compiler).compileLet,
		"when":  (*Compiler).compileWhen,
		"if":    (*Compiler).compileIf,
		"and":   (*Compiler).compileAnd,
		"or":    (*Compiler).compileOr,
		"while": (*Compiler).compileWhile,
		"do":    (*Compiler).compileDo,
		"defn":  (*Compiler).compileDefn,
	}
}

// sexp compiles one parenthesized form: a special form if the head symbol
// names one, otherwise a built-in operator or a user function call.
func (c *Compiler) sexp() error {
	c.sexpDepth++
	defer func() { c.sexpDepth-- }()

	c.advance() // consume '('
	head := c.current()
	if head.Kind != token.SYMBOL {
		return CompileError{Message: fmt.Sprintf("head of expression must be a symbol, got %s", head.Kind)}
	}
	name := head.Literal.(string)
	line := head.Line

	var err error
	if form, ok := specialForms[name]; ok {
		err = form(c, line)
	} else {
		err = c.compileCall(head, line)
	}
	if err != nil {
		return err
	}
	_, err = c.expect(token.RPAREN, fmt.Sprintf("expected ')' to close (%s ...", name))
	return err
}

// sequence compiles zero or more expressions up to (but not consuming) the
// next RPAREN, discarding every value but the last via Pop.
func (c *Compiler) sequence(line int32) error {
	if c.current().Kind == token.RPAREN {
		return nil
	}
	if err := c.expression(); err != nil {
		return err
	}
	for c.current().Kind != token.RPAREN {
		c.emit(chunk.OpPop, 0, line)
		if err := c.expression(); err != nil {
			return err
		}
	}
	return nil
}

// compileDef handles (def name value): the name is read as a raw symbol,
// never resolved as a variable reference.
func (c *Compiler) compileDef(line int32) error {
	c.advance() // consume 'def'
	nameTok, err := c.expect(token.SYMBOL, "def requires a symbol name")
	if err != nil {
		return err
	}
	if err := c.expression(); err != nil {
		return err
	}
	idx := c.chunk.WriteConstant(chunk.SymbolValue(nameTok.Literal.(string)))
	c.emit(chunk.OpDefineGlobal, idx, line)
	return nil
}

// compileLet handles (let ((name value) ...) body...): each binding's
// value is compiled and pushed, growing the local stack by one; the body
// runs with those bindings visible; on the way out, Zap removes each
// binding from underneath the body's result, deepest scope first.
func (c *Compiler) compileLet(line int32) error {
	c.advance() // consume 'let'
	c.scopeDepth++

	if _, err := c.expect(token.LPAREN, "expected '(' to open let bindings"); err != nil {
		return err
	}
	for c.current().Kind == token.LPAREN {
		c.advance() // consume '('
		nameTok, err := c.expect(token.SYMBOL, "let binding name must be a symbol")
		if err != nil {
			return err
		}
		if err := c.expression(); err != nil {
			return err
		}
		c.locals = append(c.locals, local{name: nameTok.Literal.(string), depth: c.scopeDepth})
		if _, err := c.expect(token.RPAREN, "expected ')' to close let binding"); err != nil {
			return err
		}
	}
	if _, err := c.expect(token.RPAREN, "expected ')' to close let bindings"); err != nil {
		return err
	}

	if err := c.sequence(line); err != nil {
		return err
	}

	c.scopeDepth--
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].depth <= c.scopeDepth {
			break
		}
		c.emit(chunk.OpZap, i, line)
		c.locals = c.locals[:i]
	}
	return nil
}

// compileWhen handles (when cond body...): if cond is falsy, the whole
// form evaluates to cond itself (no Pop is emitted to discard it).
func (c *Compiler) compileWhen(line int32) error {
	c.advance() // consume 'when'
	if err := c.expression(); err != nil {
		return err
	}
	jmp := c.emit(chunk.OpJumpIfFalse, 0, line)
	c.emit(chunk.OpPop, 0, line)
	if err := c.sequence(line); err != nil {
		return err
	}
	return c.backpatch(jmp)
}

// compileIf handles (if cond then else).
func (c *Compiler) compileIf(line int32) error {
	c.advance() // consume 'if'
	if err := c.expression(); err != nil {
		return err
	}
	elseJmp := c.emit(chunk.OpJumpIfFalse, 0, line)
	c.emit(chunk.OpPop, 0, line)
	if err := c.expression(); err != nil {
		return err
	}
	endJmp := c.emit(chunk.OpJump, 0, line)
	if err := c.backpatch(elseJmp); err != nil {
		return err
	}
	c.emit(chunk.OpPop, 0, line)
	if err := c.expression(); err != nil {
		return err
	}
	return c.backpatch(endJmp)
}

// compileAnd handles (and a b): short-circuits to a when a is falsy.
func (c *Compiler) compileAnd(line int32) error {
	c.advance() // consume 'and'
	if err := c.expression(); err != nil {
		return err
	}
	jmp := c.emit(chunk.OpJumpIfFalse, 0, line)
	c.emit(chunk.OpPop, 0, line)
	if err := c.expression(); err != nil {
		return err
	}
	return c.backpatch(jmp)
}

// compileOr handles (or a b): short-circuits to a when a is truthy.
func (c *Compiler) compileOr(line int32) error {
	c.advance() // consume 'or'
	if err := c.expression(); err != nil {
		return err
	}
	falseJmp := c.emit(chunk.OpJumpIfFalse, 0, line)
	trueJmp := c.emit(chunk.OpJump, 0, line)
	if err := c.backpatch(falseJmp); err != nil {
		return err
	}
	c.emit(chunk.OpPop, 0, line)
	if err := c.expression(); err != nil {
		return err
	}
	return c.backpatch(trueJmp)
}

// compileWhile handles (while cond body...). loopStart is recorded before
// the condition is compiled, as the index of the last already-emitted
// instruction (or -1 if this is the very first instruction in the chunk) —
// the VM's post-dispatch IP increment lands a jump to loopStart one past
// it, i.e. on the condition's first opcode.
func (c *Compiler) compileWhile(line int32) error {
	c.advance() // consume 'while'
	loopStart := len(c.chunk.Code) - 1

	if err := c.expression(); err != nil {
		return err
	}
	exitJmp := c.emit(chunk.OpJumpIfFalse, 0, line)
	c.emit(chunk.OpPop, 0, line)
	if err := c.sequence(line); err != nil {
		return err
	}
	c.emit(chunk.OpPop, 0, line)
	c.emit(chunk.OpJump, loopStart, line)
	if err := c.backpatch(exitJmp); err != nil {
		return err
	}
	// Discard the falsy condition left by JumpIfFalse's peek, then give the
	// whole form a well-defined result (Nil) the same way every other
	// expression leaves exactly one value behind.
	c.emit(chunk.OpPop, 0, line)
	c.emitConstant(chunk.NilValue(), line)
	return nil
}

// compileDo handles (do body...), just a sequence with no scoping of its
// own.
func (c *Compiler) compileDo(line int32) error {
	c.advance() // consume 'do'
	return c.sequence(line)
}

// compileDefn handles (defn name (params...) body...): the body is
// compiled by an independent Compiler against its own fresh Chunk, with
// locals pre-seeded for each parameter. The resulting function value is
// bound as a global the same way `def` binds any other value.
func (c *Compiler) compileDefn(line int32) error {
	c.advance() // consume 'defn'
	nameTok, err := c.expect(token.SYMBOL, "defn requires a symbol name")
	if err != nil {
		return err
	}
	if _, err := c.expect(token.LPAREN, "expected '(' to open parameter list"); err != nil {
		return err
	}
	var params []string
	for c.current().Kind != token.RPAREN {
		paramTok, err := c.expect(token.SYMBOL, "parameter must be a symbol")
		if err != nil {
			return err
		}
		params = append(params, paramTok.Literal.(string))
	}
	c.advance() // consume ')'

	inner := newFunction(c.tokens, c.pos, params)
	if err := inner.sequence(line); err != nil {
		return err
	}
	inner.emit(chunk.OpReturn, 0, line)
	c.pos = inner.pos

	fn := &chunk.Func{Name: nameTok.Literal.(string), Arity: len(params), Chunk: inner.chunk}
	c.emitConstant(chunk.FunctionValue(fn), line)

	idx := c.chunk.WriteConstant(chunk.SymbolValue(nameTok.Literal.(string)))
	c.emit(chunk.OpDefineGlobal, idx, line)
	return nil
}

// builtinArity lists the arity each built-in operator requires, except "-"
// which accepts 1 (Negate) or 2 (Subtract).
var builtinArity = map[string]int{
	"+":     2,
	"*":     2,
	"/":     2,
	"not":   1,
	"=":     2,
	">":     2,
	"<":     2,
	">=":    2,
	"<=":    2,
	"print": 1,
}

func isBuiltin(name string) bool {
	if name == "-" {
		return true
	}
	_, ok := builtinArity[name]
	return ok
}

// compileCall compiles either a built-in operator application or a user
// function call: (head arg...). User calls push the callee (resolved like
// any other symbol reference) followed by each argument, then emit
// Call(argc); built-ins instead emit the opcode(s) implementing them.
func (c *Compiler) compileCall(head token.Token, line int32) error {
	name := head.Literal.(string)
	if isBuiltin(name) {
		c.advance() // consume head symbol
		argc := 0
		for c.current().Kind != token.RPAREN {
			if err := c.expression(); err != nil {
				return err
			}
			argc++
		}
		return c.emitBuiltin(name, argc, line)
	}

	if err := c.compileSymbol(head); err != nil {
		return err
	}
	argc := 0
	for c.current().Kind != token.RPAREN {
		if err := c.expression(); err != nil {
			return err
		}
		argc++
	}
	c.emit(chunk.OpCall, argc, line)
	return nil
}

func (c *Compiler) emitBuiltin(name string, argc int, line int32) error {
	if name == "-" {
		switch argc {
		case 1:
			c.emit(chunk.OpNegate, 0, line)
			return nil
		case 2:
			c.emit(chunk.OpSubtract, 0, line)
			return nil
		default:
			return CompileError{Message: "- takes 1 or 2 arguments"}
		}
	}

	want, ok := builtinArity[name]
	if !ok {
		return CompileError{Message: fmt.Sprintf("unknown operator %q", name)}
	}
	if argc != want {
		return CompileError{Message: fmt.Sprintf("%s requires exactly %d argument(s), got %d", name, want, argc)}
	}

	switch name {
	case "+":
		c.emit(chunk.OpAdd, 0, line)
	case "*":
		c.emit(chunk.OpMultiply, 0, line)
	case "/":
		c.emit(chunk.OpDivide, 0, line)
	case "not":
		c.emit(chunk.OpNot, 0, line)
	case "=":
		c.emit(chunk.OpEqual, 0, line)
	case ">":
		c.emit(chunk.OpGreaterThan, 0, line)
	case "<":
		c.emit(chunk.OpLessThan, 0, line)
	case ">=":
		c.emit(chunk.OpLessThan, 0, line)
		c.emit(chunk.OpNot, 0, line)
	case "<=":
		c.emit(chunk.OpGreaterThan, 0, line)
		c.emit(chunk.OpNot, 0, line)
	case "print":
		c.emit(chunk.OpPrint, 0, line)
	}
	return nil
}
