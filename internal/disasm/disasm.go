// Package disasm decodes 32-bit x86 instructions found at a translated file offset.
package disasm

import (
	"fmt"

	"golang.org/x/arch/x86/x86asm"
)

// Instruction is one decoded instruction.
type Instruction struct {
	Address    uint32 // Virtual address.
	FileOffset uint32
	Bytes      []byte
	Text       string // Intel syntax.
}

// Disassemble decodes up to limit instructions from code, which is the file
// content starting at fileOffset and mapped at virtual address va. Bytes that
// do not decode are emitted as single-byte "db" entries.
func Disassemble(code []byte, va, fileOffset uint32, limit int) []Instruction {
	var out []Instruction

	for pos := 0; pos < len(code) && len(out) < limit; {
		pc := va + uint32(pos)

		inst, err := x86asm.Decode(code[pos:], 32)
		// Truncated encodings decode without error as a bare prefix (Op 0).
		if err != nil || inst.Len == 0 || inst.Op == 0 {
			out = append(out, Instruction{
				Address:    pc,
				FileOffset: fileOffset + uint32(pos),
				Bytes:      code[pos : pos+1],
				Text:       fmt.Sprintf("db 0x%02x", code[pos]),
			})
			pos++
			continue
		}

		out = append(out, Instruction{
			Address:    pc,
			FileOffset: fileOffset + uint32(pos),
			Bytes:      code[pos : pos+inst.Len],
			Text:       x86asm.IntelSyntax(inst, uint64(pc), nil),
		})
		pos += inst.Len
	}

	return out
}
