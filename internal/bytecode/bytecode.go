// Package bytecode defines Pyro's instruction set: the opcode table the
// single-pass compiler (internal/compiler) emits into and the VM
// (internal/vm) dispatches over (§4.7). Each opcode is a one-byte tag,
// optionally followed by a fixed-width operand — a constant-pool index, a
// stack slot, a jump offset, or an argument count — the same compact
// instruction shape kristofer/smog used for PUSH/SEND, generalized from
// smog's single-operand-everywhere design to the operand widths each
// family in §4.7 actually needs.
package bytecode

// Opcode tags one bytecode instruction.
type Opcode byte

const (
	// --- Constant loading (§4.7 family 1) ---
	OpNull  Opcode = iota // push Null
	OpTrue                // push true
	OpFalse               // push false
	OpSmallInt            // 1-byte operand 0-9, push as I64 without a constant-pool round trip
	OpConstant            // 2-byte operand: index into the function's constant pool

	// --- Local/upvalue/global/field access (family 2) ---
	OpGetLocal
	OpSetLocal
	OpGetUpvalue
	OpSetUpvalue
	OpGetGlobal   // 2-byte constant-pool index of the name
	OpSetGlobal
	OpDefineGlobal
	OpGetField    // panics NameError if absent
	OpSetField

	// --- Arithmetic & comparison (family 3) ---
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpFloorDiv
	OpMod
	OpPow
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShiftLeft
	OpShiftRight
	OpBitNot
	OpNeg
	OpNot
	OpEq
	OpNotEq
	OpLess
	OpLessEq
	OpGreater
	OpGreaterEq

	// --- Control flow (family 4) ---
	OpJump           // 2-byte forward offset, unconditional
	OpJumpBack       // 2-byte backward offset, loop
	OpPopJumpIfFalse // pops, jumps forward if falsy
	OpJumpIfFalse    // does not pop; short-circuit &&
	OpJumpIfTrue     // does not pop; short-circuit ||
	OpJumpIfErr      // does not pop
	OpJumpIfNotErr   // does not pop
	OpJumpIfNotNull  // does not pop
	OpPop
	OpDup
	OpEcho
	OpAssert // 2-byte constant index of the chunk's source id, named in the failure message

	// --- Calls (family 5) ---
	OpCall // 1-byte operand: arg count

	// --- Method dispatch (family 6) ---
	OpInvokeMethod      // 2-byte name constant index, 1-byte arg count
	OpInvokeSuperMethod // 2-byte name constant index, 1-byte arg count

	// --- Closures (family 7) ---
	OpMakeClosure // 2-byte Fn constant index, then UpvalueCount entries of a 1-byte is_local flag and a 2-byte index
	OpCloseUpvalue
	OpReturn

	// --- Classes (family 8) ---
	OpClass       // 2-byte name constant index
	OpDefineMethod
	OpDefineField // 2-byte name constant index; the initializer's value is already on the stack
	OpInherit

	// --- Iteration (family 9) ---
	OpGetIterator
	OpIterNext

	// --- Try (family 10) ---
	OpTry    // 2-byte forward offset to the recovery landing pad
	OpPopTry // discards the handler OP_TRY installed once its protected expression returns normally

	// --- Import (family 11) ---
	OpImportModule  // 1-byte path-segment count, then that many 2-byte name constants
	OpImportMembers // 1-byte module-path segment count (as above) + 1-byte member count + that many 2-byte name constants

	// --- Unpack (family 12) ---
	OpUnpack // 1-byte target count

	// Misc
	OpBuildVec   // 2-byte element count
	OpBuildTup   // 2-byte element count
	OpBuildMap   // 2-byte pair count
	OpBuildSet   // 2-byte element count
	OpGetIndex
	OpSetIndex
	OpNegateLast // marks end-of-chain no-op, reserved
)

// OperandWidth returns the number of operand bytes immediately following
// op, not counting variable-length tails (e.g. OpMakeClosure's upvalue
// pairs, which the reader has to interpret using the Fn it just loaded).
func OperandWidth(op Opcode) int {
	switch op {
	case OpSmallInt, OpGetLocal, OpSetLocal, OpCall, OpUnpack:
		return 1
	case OpConstant, OpGetUpvalue, OpSetUpvalue,
		OpGetGlobal, OpSetGlobal, OpDefineGlobal, OpGetField, OpSetField,
		OpJump, OpJumpBack, OpPopJumpIfFalse, OpJumpIfFalse, OpJumpIfTrue,
		OpJumpIfErr, OpJumpIfNotErr, OpJumpIfNotNull, OpAssert,
		OpMakeClosure, OpClass, OpDefineMethod, OpDefineField, OpTry,
		OpBuildVec, OpBuildTup, OpBuildMap, OpBuildSet:
		return 2
	case OpInvokeMethod, OpInvokeSuperMethod:
		return 3 // 2-byte name index + 1-byte arg count
	default:
		return 0
	}
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "OP_UNKNOWN"
}

var opcodeNames = map[Opcode]string{
	OpNull: "OP_NULL", OpTrue: "OP_TRUE", OpFalse: "OP_FALSE",
	OpSmallInt: "OP_SMALL_INT", OpConstant: "OP_CONSTANT",
	OpGetLocal: "OP_GET_LOCAL", OpSetLocal: "OP_SET_LOCAL",
	OpGetUpvalue: "OP_GET_UPVALUE", OpSetUpvalue: "OP_SET_UPVALUE",
	OpGetGlobal: "OP_GET_GLOBAL", OpSetGlobal: "OP_SET_GLOBAL",
	OpDefineGlobal: "OP_DEFINE_GLOBAL",
	OpGetField: "OP_GET_FIELD", OpSetField: "OP_SET_FIELD",
	OpAdd: "OP_ADD", OpSub: "OP_SUB", OpMul: "OP_MUL", OpDiv: "OP_DIV",
	OpFloorDiv: "OP_FLOOR_DIV", OpMod: "OP_MOD", OpPow: "OP_POW",
	OpBitAnd: "OP_BIT_AND", OpBitOr: "OP_BIT_OR", OpBitXor: "OP_BIT_XOR",
	OpShiftLeft: "OP_SHL", OpShiftRight: "OP_SHR", OpBitNot: "OP_BIT_NOT",
	OpNeg: "OP_NEG", OpNot: "OP_NOT",
	OpEq: "OP_EQ", OpNotEq: "OP_NEQ", OpLess: "OP_LT", OpLessEq: "OP_LE",
	OpGreater: "OP_GT", OpGreaterEq: "OP_GE",
	OpJump: "OP_JUMP", OpJumpBack: "OP_JUMP_BACK",
	OpPopJumpIfFalse: "OP_POP_JUMP_IF_FALSE",
	OpJumpIfFalse:    "OP_JUMP_IF_FALSE", OpJumpIfTrue: "OP_JUMP_IF_TRUE",
	OpJumpIfErr: "OP_JUMP_IF_ERR", OpJumpIfNotErr: "OP_JUMP_IF_NOT_ERR",
	OpJumpIfNotNull: "OP_JUMP_IF_NOT_NULL",
	OpPop:           "OP_POP", OpDup: "OP_DUP", OpEcho: "OP_ECHO", OpAssert: "OP_ASSERT",
	OpCall: "OP_CALL",
	OpInvokeMethod: "OP_INVOKE_METHOD", OpInvokeSuperMethod: "OP_INVOKE_SUPER_METHOD",
	OpMakeClosure: "OP_MAKE_CLOSURE", OpCloseUpvalue: "OP_CLOSE_UPVALUE",
	OpReturn: "OP_RETURN",
	OpClass:  "OP_CLASS", OpDefineMethod: "OP_DEFINE_METHOD",
	OpDefineField: "OP_DEFINE_FIELD", OpInherit: "OP_INHERIT",
	OpGetIterator: "OP_GET_ITERATOR_OBJECT", OpIterNext: "OP_GET_ITERATOR_NEXT",
	OpTry:           "OP_TRY",
	OpPopTry:        "OP_POP_TRY",
	OpImportModule:  "OP_IMPORT_MODULE",
	OpImportMembers: "OP_IMPORT_MEMBERS",
	OpUnpack:        "OP_UNPACK",
	OpBuildVec:      "OP_BUILD_VEC", OpBuildTup: "OP_BUILD_TUP",
	OpBuildMap: "OP_BUILD_MAP", OpBuildSet: "OP_BUILD_SET",
	OpGetIndex: "OP_GET_INDEX", OpSetIndex: "OP_SET_INDEX",
}
