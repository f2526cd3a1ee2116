package compiler

import (
	"github.com/pyro-lang/pyro/internal/bytecode"
	"github.com/pyro-lang/pyro/internal/lexer"
	"github.com/pyro-lang/pyro/internal/object"
)

// funDeclaration compiles `def name(params) { ... }` as sugar for
// `var name = def (params) { ... }` (§4.6): the function body is compiled
// into its own frame first so the resulting closure constant is ready
// before the name is bound, letting a named function see its own name for
// recursion via the global/local slot reserved ahead of the body.
func (c *Compiler) funDeclaration(pub bool) {
	_ = pub
	c.expect(lexer.TokenIdent, "expected function name")
	name := c.prev.Literal
	var globalIdx int
	if c.cf.scopeDepth > 0 {
		c.declareLocal(name)
	} else {
		globalIdx = c.internString(name)
	}
	c.compileFunction(name, fnKindFunction)
	if c.cf.scopeDepth > 0 {
		return
	}
	c.emitOpU16(bytecode.OpDefineGlobal, globalIdx)
}

// funLiteral is the prefix rule for anonymous `def (params) { ... }`
// expressions (§2.5 "functions are first-class values").
func (c *Compiler) funLiteral(canAssign bool) {
	_ = canAssign
	c.compileFunction("$anon", fnKindFunction)
}

// compileFunction parses a parameter list and body in a fresh frame, then
// emits OP_MAKE_CLOSURE with the resulting Fn constant and the captured
// upvalue (is_local, index) pairs (§4.7 family 7, §4.6).
func (c *Compiler) compileFunction(name string, kind fnKind) {
	c.pushFrame(name, kind)
	c.beginScope()

	c.expect(lexer.TokenLParen, "expected '(' after function name")
	arity := 0
	if !c.check(lexer.TokenRParen) {
		for {
			c.expect(lexer.TokenIdent, "expected parameter name")
			c.declareLocal(c.prev.Literal)
			arity++
			if arity > 255 {
				c.errorAt(c.prev, "too many parameters")
			}
			if !c.match(lexer.TokenComma) {
				break
			}
		}
	}
	c.expect(lexer.TokenRParen, "expected ')' after parameters")
	c.cf.fn.Arity = arity

	c.expect(lexer.TokenLBrace, "expected '{' to begin function body")
	c.block()

	upvalues := c.cf.upvalues
	fn := c.popFrame()

	idx := c.addConstant(object.FromObj(fn))
	c.emitOpU16(bytecode.OpMakeClosure, idx)
	for _, uv := range upvalues {
		if uv.isLocal {
			c.emitByte(1)
		} else {
			c.emitByte(0)
		}
		c.emitU16(uv.index)
	}
}

// classDeclaration compiles `class Name [< Super] { ... }` (§2.4, §4.7
// family 8). Methods and field initializers are compiled as nested
// functions under the class's own frame context so `self`/`super`
// resolve; OP_INHERIT performs the copy-down of the superclass's method
// table and field layout at class-creation time, matching the "resolved
// once at class-declaration time, not walked at every call" rule (§4.6,
// §2.4 "copy-down inheritance").
func (c *Compiler) classDeclaration(pub bool) {
	_ = pub
	c.expect(lexer.TokenIdent, "expected class name")
	className := c.prev.Literal
	nameIdx := c.internString(className)

	globalIdx := -1
	if c.cf.scopeDepth > 0 {
		c.declareLocal(className)
	} else {
		globalIdx = nameIdx
	}
	c.emitOpU16(bytecode.OpClass, nameIdx)
	if globalIdx >= 0 {
		c.emitOpU16(bytecode.OpDefineGlobal, globalIdx)
	}

	cs := &classState{enclosing: c.class}
	c.class = cs

	if c.match(lexer.TokenLess) {
		c.expect(lexer.TokenIdent, "expected superclass name")
		// Self-inheritance (including indirect aliasing, e.g. `var X = A;
		// class A < X {}`) is a runtime TypeError raised by OP_INHERIT
		// (original_source/src/vm/vm.c, exec.c), not a compile-time syntax
		// error — a literal-name comparison here can't see through aliasing
		// and would also raise the wrong panic kind (§8 "Class inheriting
		// from itself raises TypeError").
		c.namedVariable(c.prev.Literal, false) // push superclass

		c.beginScope()
		c.declareLocal("$super")

		c.namedVariable(className, false) // push subclass
		c.emitOp(bytecode.OpInherit)
		cs.hasSuperclass = true
	}

	c.namedVariable(className, false) // push class for member definitions below
	c.expect(lexer.TokenLBrace, "expected '{' to begin class body")
	for !c.check(lexer.TokenRBrace) && !c.check(lexer.TokenEOF) {
		c.classMember()
		if c.err != nil {
			return
		}
	}
	c.expect(lexer.TokenRBrace, "expected '}' to close class body")
	c.emitOp(bytecode.OpPop) // drop the class reference

	if cs.hasSuperclass {
		c.endScope() // pops $super
	}
	c.class = cs.enclosing
}

// classMember compiles one `var field [= init];` or `name(params) { ... }`
// entry inside a class body. The class object sits on top of the stack
// for the whole body (pushed by namedVariable above classMember's call
// site) so DEFINE_METHOD/DEFINE_FIELD can attach to it without a name
// lookup.
func (c *Compiler) classMember() {
	if c.match(lexer.TokenVar) {
		c.expect(lexer.TokenIdent, "expected field name")
		fieldName := c.internString(c.prev.Literal)
		if c.match(lexer.TokenAssign) {
			c.expression()
		} else {
			c.emitOp(bytecode.OpNull)
		}
		c.consumeStatementEnd()
		c.emitOpU16(bytecode.OpDefineField, fieldName)
		return
	}

	c.expect(lexer.TokenIdent, "expected method or field name")
	methodName := c.prev.Literal
	kind := fnKindMethod
	if methodName == "$init" || methodName == "init" {
		kind = fnKindInitializer
	}
	c.compileFunction(methodName, kind)
	c.emitOpU16(bytecode.OpDefineMethod, c.internString(methodName))
}
