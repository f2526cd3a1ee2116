package compiler

import (
	"strconv"
	"strings"

	"github.com/pyro-lang/pyro/internal/bytecode"
	"github.com/pyro-lang/pyro/internal/lexer"
	"github.com/pyro-lang/pyro/internal/object"
)

// rules is the Pratt dispatch table (§4.6: "a table mapping each token
// type to a prefix parse function, an infix parse function, and a
// precedence"). Populated in init so every entry can reference the
// methods below without forward-declaration gymnastics.
var rules map[lexer.TokenType]rule

func init() {
	rules = map[lexer.TokenType]rule{
		lexer.TokenLParen:     {(*Compiler).grouping, (*Compiler).call, precCall},
		lexer.TokenLBracket:   {(*Compiler).vecOrSetLiteral, (*Compiler).index, precCall},
		lexer.TokenLBrace:     {(*Compiler).mapLiteral, nil, precNone},
		lexer.TokenDot:        {nil, (*Compiler).member, precCall},
		lexer.TokenColon:      {nil, (*Compiler).member, precCall},
		lexer.TokenMinus:      {(*Compiler).unary, (*Compiler).binary, precTerm},
		lexer.TokenPlus:       {nil, (*Compiler).binary, precTerm},
		lexer.TokenSlash:      {nil, (*Compiler).binary, precFactor},
		lexer.TokenSlashSlash: {nil, (*Compiler).binary, precFactor},
		lexer.TokenStar:       {nil, (*Compiler).binary, precFactor},
		lexer.TokenStarStar:   {nil, (*Compiler).binaryRightAssoc, precPower},
		lexer.TokenPercent:    {nil, (*Compiler).binary, precFactor},
		lexer.TokenBang:       {(*Compiler).unary, nil, precNone},
		lexer.TokenNot:        {(*Compiler).unary, nil, precNone},
		lexer.TokenTilde:      {(*Compiler).unary, nil, precNone},
		lexer.TokenNotEq:     {nil, (*Compiler).binary, precEquality},
		lexer.TokenEq:       {nil, (*Compiler).binary, precEquality},
		lexer.TokenGreater:    {nil, (*Compiler).binary, precComparison},
		lexer.TokenGreaterEq:  {nil, (*Compiler).binary, precComparison},
		lexer.TokenLess:       {nil, (*Compiler).binary, precComparison},
		lexer.TokenLessEq:     {nil, (*Compiler).binary, precComparison},
		lexer.TokenIs:         {nil, (*Compiler).binary, precComparison},
		lexer.TokenIn:         {nil, (*Compiler).binary, precComparison},
		lexer.TokenAmp:        {nil, (*Compiler).binary, precBitAnd},
		lexer.TokenPipe:       {nil, (*Compiler).binary, precBitOr},
		lexer.TokenCaret:      {nil, (*Compiler).binary, precBitXor},
		lexer.TokenShl:        {nil, (*Compiler).binary, precShift},
		lexer.TokenShr:        {nil, (*Compiler).binary, precShift},
		lexer.TokenDotDot:     {nil, (*Compiler).binary, precRange},
		lexer.TokenAnd:        {nil, (*Compiler).and, precAnd},
		lexer.TokenOr:         {nil, (*Compiler).or, precOr},
		lexer.TokenIdent:      {(*Compiler).variable, nil, precNone},
		lexer.TokenInt:        {(*Compiler).intLiteral, nil, precNone},
		lexer.TokenFloat:      {(*Compiler).floatLiteral, nil, precNone},
		lexer.TokenChar:       {(*Compiler).charLiteral, nil, precNone},
		lexer.TokenString:     {(*Compiler).stringLiteral, nil, precNone},
		lexer.TokenStringFrag: {(*Compiler).interpString, nil, precNone},
		lexer.TokenTrue:       {(*Compiler).literalTrue, nil, precNone},
		lexer.TokenFalse:      {(*Compiler).literalFalse, nil, precNone},
		lexer.TokenNull:       {(*Compiler).literalNull, nil, precNone},
		lexer.TokenSelf:       {(*Compiler).self, nil, precNone},
		lexer.TokenSuper:      {(*Compiler).super, nil, precNone},
		lexer.TokenDef:        {(*Compiler).funLiteral, nil, precNone},
		lexer.TokenTry:        {(*Compiler).tryExpr, nil, precNone},
		lexer.TokenAssign:     {nil, (*Compiler).assign, precAssignment},
	}
}

func (c *Compiler) getRule(t lexer.TokenType) rule { return rules[t] }

// expression parses at precAssignment, the lowest binding level above
// "no expression here" (§4.6).
func (c *Compiler) expression() { c.parsePrecedence(precAssignment) }

// parsePrecedence is the Pratt loop: one prefix parse, then infix parses
// so long as the next token's precedence is at least prec.
func (c *Compiler) parsePrecedence(prec precedence) {
	c.advance()
	r := c.getRule(c.prev.Type)
	if r.prefix == nil {
		c.errorAt(c.prev, "expected an expression, found %q", c.prev.Literal)
		return
	}
	canAssign := prec <= precAssignment
	r.prefix(c, canAssign)

	for prec <= c.getRule(c.cur.Type).precedence {
		c.advance()
		ir := c.getRule(c.prev.Type)
		if ir.infix == nil {
			c.errorAt(c.prev, "unexpected token %q in expression", c.prev.Literal)
			return
		}
		ir.infix(c, canAssign)
	}
}

// ---- literals ----

func (c *Compiler) intLiteral(canAssign bool) {
	_ = canAssign
	lit := strings.ReplaceAll(c.prev.Literal, "_", "")
	n, err := strconv.ParseInt(lit, 0, 64)
	if err != nil {
		c.errorAt(c.prev, "invalid integer literal %q", c.prev.Literal)
		return
	}
	if n >= 0 && n <= 9 {
		c.emitOpByte(bytecode.OpSmallInt, byte(n))
		return
	}
	c.emitConstant(object.I64(n))
}

func (c *Compiler) floatLiteral(canAssign bool) {
	_ = canAssign
	lit := strings.ReplaceAll(c.prev.Literal, "_", "")
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		c.errorAt(c.prev, "invalid float literal %q", c.prev.Literal)
		return
	}
	c.emitConstant(object.F64(f))
}

func (c *Compiler) charLiteral(canAssign bool) {
	_ = canAssign
	r := []rune(c.prev.Literal)
	if len(r) == 0 {
		c.errorAt(c.prev, "empty char literal")
		return
	}
	c.emitConstant(object.Char(uint32(r[0])))
}

func (c *Compiler) stringLiteral(canAssign bool) {
	_ = canAssign
	str := c.alloc.Intern([]byte(c.prev.Literal))
	c.emitConstant(object.FromObj(str))
}

func (c *Compiler) literalTrue(canAssign bool)  { _ = canAssign; c.emitOp(bytecode.OpTrue) }
func (c *Compiler) literalFalse(canAssign bool) { _ = canAssign; c.emitOp(bytecode.OpFalse) }
func (c *Compiler) literalNull(canAssign bool)  { _ = canAssign; c.emitOp(bytecode.OpNull) }

// interpString compiles `"a${x}b${y}c"` as a left-fold of string
// concatenation: each StringFrag pushes its literal text, each
// embedded expression is compiled in place, and the whole chain is
// reduced with OP_ADD (Str's `+` overload, §4.7/§5's Str methods) — the
// lexer has already done the hard work of token-izing frag/expr/frag/...
// in source order (§4.3 "string interpolation").
func (c *Compiler) interpString(canAssign bool) {
	_ = canAssign
	first := c.alloc.Intern([]byte(c.prev.Literal))
	c.emitConstant(object.FromObj(first))
	for c.match(lexer.TokenInterpBegin) {
		c.expression()
		c.emitOp(bytecode.OpAdd)
		c.expect(lexer.TokenStringFrag, "expected string text after interpolated expression")
		piece := c.alloc.Intern([]byte(c.prev.Literal))
		c.emitConstant(object.FromObj(piece))
		c.emitOp(bytecode.OpAdd)
	}
}

// ---- names: variable, self, super ----

func (c *Compiler) variable(canAssign bool) { c.namedVariable(c.prev.Literal, canAssign) }

func (c *Compiler) namedVariable(name string, canAssign bool) {
	var getOp, setOp bytecode.Opcode
	var arg int

	if slot := c.resolveLocal(c.cf, name); slot != -1 {
		getOp, setOp, arg = bytecode.OpGetLocal, bytecode.OpSetLocal, slot
	} else if slot := c.resolveUpvalue(c.cf, name); slot != -1 {
		getOp, setOp, arg = bytecode.OpGetUpvalue, bytecode.OpSetUpvalue, slot
	} else {
		getOp, setOp, arg = bytecode.OpGetGlobal, bytecode.OpSetGlobal, c.internString(name)
	}

	if canAssign && c.match(lexer.TokenAssign) {
		c.expression()
		if arg > 0xFFFF {
			c.errorAt(c.prev, "too many locals/upvalues")
		}
		if getOp == bytecode.OpGetLocal {
			c.emitOpByte(setOp, byte(arg))
		} else {
			c.emitOpU16(setOp, arg)
		}
		return
	}
	if getOp == bytecode.OpGetLocal {
		c.emitOpByte(getOp, byte(arg))
	} else {
		c.emitOpU16(getOp, arg)
	}
}

// resolveLocal walks a frame's locals from innermost to outermost,
// returning its stack slot or -1 (§4.6 local resolution by name+depth).
func (c *Compiler) resolveLocal(f *frame, name string) int {
	for i := len(f.locals) - 1; i >= 0; i-- {
		if f.locals[i].name == name {
			return i
		}
	}
	return -1
}

// resolveUpvalue implements the chained-capture algorithm (§4.6): if name
// is a local of the enclosing frame, capture it directly and mark it
// captured; otherwise recurse into the enclosing frame's own upvalues,
// chaining capture through every intermediate frame.
func (c *Compiler) resolveUpvalue(f *frame, name string) int {
	if f.enclosing == nil {
		return -1
	}
	if slot := c.resolveLocal(f.enclosing, name); slot != -1 {
		f.enclosing.locals[slot].isCaptured = true
		return c.addUpvalue(f, slot, true)
	}
	if slot := c.resolveUpvalue(f.enclosing, name); slot != -1 {
		return c.addUpvalue(f, slot, false)
	}
	return -1
}

func (c *Compiler) addUpvalue(f *frame, index int, isLocal bool) int {
	for i, uv := range f.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	f.upvalues = append(f.upvalues, upvalueSlot{isLocal: isLocal, index: index})
	return len(f.upvalues) - 1
}

func (c *Compiler) self(canAssign bool) {
	_ = canAssign
	if c.class == nil {
		c.errorAt(c.prev, "self used outside a method")
		return
	}
	c.namedVariable("self", false)
}

func (c *Compiler) super(canAssign bool) {
	_ = canAssign
	if c.class == nil {
		c.errorAt(c.prev, "super used outside a method")
		return
	}
	if !c.class.hasSuperclass {
		c.errorAt(c.prev, "super used in a class with no superclass")
		return
	}
	c.expect(lexer.TokenDot, "expected '.' after super")
	c.expect(lexer.TokenIdent, "expected superclass method name")
	name := c.internString(c.prev.Literal)
	c.namedVariable("self", false)
	argc := 0
	if c.match(lexer.TokenLParen) {
		argc = c.argumentList()
	}
	c.namedVariable("$super", false)
	c.emitOpU16(bytecode.OpInvokeSuperMethod, name)
	c.emitByte(byte(argc))
}

// ---- grouping, call, index, member ----

func (c *Compiler) grouping(canAssign bool) {
	_ = canAssign
	c.expression()
	c.expect(lexer.TokenRParen, "expected ')' after expression")
}

func (c *Compiler) argumentList() int {
	argc := 0
	if !c.check(lexer.TokenRParen) {
		for {
			c.expression()
			argc++
			if argc > 255 {
				c.errorAt(c.prev, "too many arguments")
			}
			if !c.match(lexer.TokenComma) {
				break
			}
		}
	}
	c.expect(lexer.TokenRParen, "expected ')' after arguments")
	return argc
}

func (c *Compiler) call(canAssign bool) {
	_ = canAssign
	argc := c.argumentList()
	c.emitOpByte(bytecode.OpCall, byte(argc))
}

func (c *Compiler) index(canAssign bool) {
	c.expression()
	c.expect(lexer.TokenRBracket, "expected ']' after index expression")
	if canAssign && c.match(lexer.TokenAssign) {
		c.expression()
		c.emitOp(bytecode.OpSetIndex)
		return
	}
	c.emitOp(bytecode.OpGetIndex)
}

// member compiles `.`/`:`-postfix access (§4.7 family 6/2: a plain
// `.name` is a field get/set, `.name(...)` or `:name(...)` dispatches
// through OP_INVOKE_METHOD). Both spellings are accepted at the same
// precedence: spec.md's own worked examples use `.` and `:`
// interchangeably for method calls (`B():m()`, `v:map(...)`, `m.keys()`),
// so this compiler treats them as one operator rather than inventing a
// semantic split the spec itself doesn't draw.
func (c *Compiler) member(canAssign bool) {
	c.expect(lexer.TokenIdent, "expected property or method name after '.'/':'")
	name := c.internString(c.prev.Literal)

	if c.match(lexer.TokenLParen) {
		argc := c.argumentList()
		c.emitOpU16(bytecode.OpInvokeMethod, name)
		c.emitByte(byte(argc))
		return
	}

	if canAssign && c.match(lexer.TokenAssign) {
		c.expression()
		c.emitOpU16(bytecode.OpSetField, name)
		return
	}
	c.emitOpU16(bytecode.OpGetField, name)
}

// ---- operators ----

func (c *Compiler) unary(canAssign bool) {
	_ = canAssign
	op := c.prev.Type
	c.parsePrecedence(precUnary)
	switch op {
	case lexer.TokenMinus:
		c.emitOp(bytecode.OpNeg)
	case lexer.TokenBang, lexer.TokenNot:
		c.emitOp(bytecode.OpNot)
	case lexer.TokenTilde:
		c.emitOp(bytecode.OpBitNot)
	}
}

func (c *Compiler) binary(canAssign bool) {
	_ = canAssign
	op := c.prev.Type
	r := c.getRule(op)
	c.parsePrecedence(r.precedence + 1)
	c.emitBinaryOp(op)
}

// binaryRightAssoc handles `**`, the sole right-associative binary
// operator (§4.6 "precPower... right-assoc"): recursing at the same
// precedence instead of prec+1 lets `2 ** 3 ** 2` parse as `2 ** (3 **
// 2)`.
func (c *Compiler) binaryRightAssoc(canAssign bool) {
	_ = canAssign
	c.parsePrecedence(precPower)
	c.emitOp(bytecode.OpPow)
}

func (c *Compiler) emitBinaryOp(op lexer.TokenType) {
	switch op {
	case lexer.TokenPlus:
		c.emitOp(bytecode.OpAdd)
	case lexer.TokenMinus:
		c.emitOp(bytecode.OpSub)
	case lexer.TokenStar:
		c.emitOp(bytecode.OpMul)
	case lexer.TokenSlash:
		c.emitOp(bytecode.OpDiv)
	case lexer.TokenSlashSlash:
		c.emitOp(bytecode.OpFloorDiv)
	case lexer.TokenPercent:
		c.emitOp(bytecode.OpMod)
	case lexer.TokenAmp:
		c.emitOp(bytecode.OpBitAnd)
	case lexer.TokenPipe:
		c.emitOp(bytecode.OpBitOr)
	case lexer.TokenCaret:
		c.emitOp(bytecode.OpBitXor)
	case lexer.TokenShl:
		c.emitOp(bytecode.OpShiftLeft)
	case lexer.TokenShr:
		c.emitOp(bytecode.OpShiftRight)
	case lexer.TokenEq:
		c.emitOp(bytecode.OpEq)
	case lexer.TokenNotEq:
		c.emitOp(bytecode.OpNotEq)
	case lexer.TokenLess:
		c.emitOp(bytecode.OpLess)
	case lexer.TokenLessEq:
		c.emitOp(bytecode.OpLessEq)
	case lexer.TokenGreater:
		c.emitOp(bytecode.OpGreater)
	case lexer.TokenGreaterEq:
		c.emitOp(bytecode.OpGreaterEq)
	case lexer.TokenIs:
		c.emitOp(bytecode.OpEq) // `is` compiles to the same OP_EQ as ==; it is not an identity test (strings compare by content, tuples element-wise)
	case lexer.TokenIn:
		// `x in y`: x is pushed first so it occupies the receiver slot, but
		// membership reads the other way (is x an element of y) — the VM
		// special-cases this name rather than dispatching it as a normal
		// method, then forwards to y's own "contains" for instances.
		c.emitOpU16(bytecode.OpInvokeMethod, c.internString("$membership_test"))
		c.emitByte(1)
	case lexer.TokenDotDot:
		// `a..b`: a is the receiver, matching ordinary method-call stack
		// layout (receiver pushed first, one argument above it).
		c.emitOpU16(bytecode.OpInvokeMethod, c.internString("$make_range"))
		c.emitByte(1)
	}
}

// and/or short-circuit without a helper opcode for the non-short-circuit
// path: jump-if-false-without-popping leaves the falsy value as the
// expression's result; otherwise pop and evaluate the right side (§4.7
// family 4, "does not pop").
func (c *Compiler) and(canAssign bool) {
	_ = canAssign
	endJump := c.emitJump(bytecode.OpJumpIfFalse)
	c.emitOp(bytecode.OpPop)
	c.parsePrecedence(precAnd)
	c.patchJump(endJump)
}

func (c *Compiler) or(canAssign bool) {
	_ = canAssign
	endJump := c.emitJump(bytecode.OpJumpIfTrue)
	c.emitOp(bytecode.OpPop)
	c.parsePrecedence(precOr)
	c.patchJump(endJump)
}

// assign as an infix rule exists only so `=` has a precedence entry;
// actual assignment is handled inline by namedVariable/member/index when
// canAssign is true. Reaching here means `=` followed something that
// isn't an assignable target.
func (c *Compiler) assign(canAssign bool) {
	_ = canAssign
	c.errorAt(c.prev, "invalid assignment target")
}

// ---- collection literals ----

// vecOrSetLiteral compiles `[a, b, c]`. There is no set literal syntax (a
// set comes from an iterator's to_set()), so a bracketed literal is always
// a Vec (§4.7 "Misc", OP_BUILD_VEC).
func (c *Compiler) vecOrSetLiteral(canAssign bool) {
	_ = canAssign
	count := 0
	if !c.check(lexer.TokenRBracket) {
		for {
			c.expression()
			count++
			if !c.match(lexer.TokenComma) {
				break
			}
			if c.check(lexer.TokenRBracket) {
				break
			}
		}
	}
	c.expect(lexer.TokenRBracket, "expected ']' after vec literal")
	c.emitOpU16(bytecode.OpBuildVec, count)
}

// mapLiteral compiles `{k = v, k2 = v2}` (§2.3: insertion-ordered map).
// Each key is parsed above assignment precedence, so the `=` after it
// separates the key from its value.
func (c *Compiler) mapLiteral(canAssign bool) {
	_ = canAssign
	count := 0
	if !c.check(lexer.TokenRBrace) {
		for {
			c.parsePrecedence(precOr)
			c.expect(lexer.TokenAssign, "expected '=' in map literal entry")
			c.expression()
			count++
			if !c.match(lexer.TokenComma) {
				break
			}
			if c.check(lexer.TokenRBrace) {
				break
			}
		}
	}
	c.expect(lexer.TokenRBrace, "expected '}' after map literal")
	c.emitOpU16(bytecode.OpBuildMap, count)
}

// ---- try ----

// tryExpr compiles `try expr` (§4.7 family 10, §3's try-expression
// semantics): OP_TRY installs a recovery landing pad that, on a
// catchable panic, pushes the resulting Err value instead of unwinding
// further; a normal result passes through unchanged.
func (c *Compiler) tryExpr(canAssign bool) {
	_ = canAssign
	tryJump := c.emitJump(bytecode.OpTry)
	c.parsePrecedence(precUnary)
	// On the normal path, discard the handler OP_TRY installed before
	// falling through to the landing pad; on the panic path the VM's
	// unwind handler already popped it and jumps straight past this
	// instruction, so both paths converge at the same target with the
	// handler stack correctly balanced either way.
	c.emitOp(bytecode.OpPopTry)
	c.patchJump(tryJump)
}
