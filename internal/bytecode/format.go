package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble renders code as one line per instruction, constant-pool
// indices annotated with their value via constFmt, the same shape
// kristofer/smog's Debugger.ShowCurrentInstruction printed one instruction
// at a time — here produced for a whole function at once. No pyro
// subcommand calls it; it is a library helper.
func Disassemble(name string, code []byte, constFmt func(idx int) string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", name)
	offset := 0
	for offset < len(code) {
		offset = disassembleInstruction(&b, code, offset, constFmt)
	}
	return b.String()
}

func disassembleInstruction(b *strings.Builder, code []byte, offset int, constFmt func(int) string) int {
	op := Opcode(code[offset])
	fmt.Fprintf(b, "%04d %-24s", offset, op.String())

	switch OperandWidth(op) {
	case 0:
		b.WriteByte('\n')
		return offset + 1
	case 1:
		operand := int(code[offset+1])
		fmt.Fprintf(b, " %d", operand)
		if op == OpCall || op == OpUnpack {
			b.WriteByte('\n')
			return offset + 2
		}
		b.WriteByte('\n')
		return offset + 2
	case 2:
		idx := int(code[offset+1])<<8 | int(code[offset+2])
		switch op {
		case OpConstant, OpGetGlobal, OpSetGlobal, OpDefineGlobal,
			OpGetField, OpSetField, OpClass, OpDefineMethod:
			fmt.Fprintf(b, " %d %s", idx, constFmt(idx))
		case OpMakeClosure:
			fmt.Fprintf(b, " %d %s", idx, constFmt(idx))
		default:
			fmt.Fprintf(b, " %d", idx)
		}
		b.WriteByte('\n')
		return offset + 3
	case 3:
		idx := int(code[offset+1])<<8 | int(code[offset+2])
		argc := int(code[offset+3])
		fmt.Fprintf(b, " %d %s (%d args)", idx, constFmt(idx), argc)
		b.WriteByte('\n')
		return offset + 4
	default:
		b.WriteByte('\n')
		return offset + 1
	}
}
