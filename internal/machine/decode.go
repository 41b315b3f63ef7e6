package machine

import (
	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// opcodeSize is the size of CHIP-8 instructions in bytes.
const opcodeSize = 2

// instruction contains the decoded nibble fields of an opcode.
type instruction struct {
	opcode uint16
	group  uint8  // highest nibble
	x      uint8  // second nibble, register index
	y      uint8  // third nibble, register index
	n      uint8  // lowest nibble
	kk     uint8  // lowest byte
	nnn    uint16 // lowest 12 bits, address
}

func decode(opcode uint16) instruction {
	return instruction{
		opcode: opcode,
		group:  uint8(opcode >> 12),
		x:      uint8((opcode & 0x0F00) >> 8),
		y:      uint8((opcode & 0x00F0) >> 4),
		n:      uint8(opcode & 0x000F),
		kk:     uint8(opcode & 0x00FF),
		nnn:    opcode & 0x0FFF,
	}
}

// Mnemonic returns the assembler mnemonic of the opcode, or an empty string
// for opcodes that are not part of the instruction set.
func Mnemonic(opcode uint16) string {
	for _, op := range chip8.Opcodes[int(opcode>>12)] {
		if op.Instruction != nil && op.Info.Mask&opcode == op.Info.Value {
			return op.Instruction.Name
		}
	}
	return ""
}
