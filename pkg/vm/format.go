package vm

import "fmt"

// Format identifies which of the six RISC-V instruction encodings a
// raw word decodes to.
type Format uint8

// The six instruction formats.
const (
	FormatR Format = iota
	FormatI
	FormatS
	FormatB
	FormatU
	FormatJ
)

// String implements fmt.Stringer.
func (f Format) String() string {
	switch f {
	case FormatR:
		return "R"
	case FormatI:
		return "I"
	case FormatS:
		return "S"
	case FormatB:
		return "B"
	case FormatU:
		return "U"
	case FormatJ:
		return "J"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

// Instruction is a decoded instruction. It carries the union of all
// fields used by any format; Format says which ones are meaningful.
// rs1/rs2 are zero (and unused) for the U and J formats, which carry
// no source registers.
type Instruction struct {
	Format Format
	Raw    uint32

	Opcode uint32
	Rd     uint32
	Funct3 uint32
	Rs1    uint32
	Rs2    uint32
	Funct7 uint32
	Shamt  uint32
	Imm    int32
}

// opcode extracts the low 7 bits shared by every format.
func opcode(word uint32) uint32 {
	return Extract(word, 6, 0)
}

func decodeR(word uint32) Instruction {
	return Instruction{
		Format: FormatR,
		Raw:    word,
		Opcode: opcode(word),
		Rd:     Extract(word, 11, 7),
		Funct3: Extract(word, 14, 12),
		Rs1:    Extract(word, 19, 15),
		Rs2:    Extract(word, 24, 20),
		Funct7: Extract(word, 31, 25),
	}
}

func decodeI(word uint32) Instruction {
	immRaw := Extract(word, 31, 20)
	return Instruction{
		Format: FormatI,
		Raw:    word,
		Opcode: opcode(word),
		Rd:     Extract(word, 11, 7),
		Funct3: Extract(word, 14, 12),
		Rs1:    Extract(word, 19, 15),
		Imm:    int32(SignExtend(immRaw, 12)),
		Shamt:  immRaw & 0x1F,
		Funct7: immRaw >> 5,
	}
}

func decodeS(word uint32) Instruction {
	imm4_0 := Extract(word, 11, 7)
	imm11_5 := Extract(word, 31, 25)
	immRaw := (imm11_5 << 5) | imm4_0
	return Instruction{
		Format: FormatS,
		Raw:    word,
		Opcode: opcode(word),
		Funct3: Extract(word, 14, 12),
		Rs1:    Extract(word, 19, 15),
		Rs2:    Extract(word, 24, 20),
		Imm:    int32(SignExtend(immRaw, 12)),
	}
}

func decodeB(word uint32) Instruction {
	imm11 := Extract(word, 7, 7)
	imm4_1 := Extract(word, 11, 8)
	imm10_5 := Extract(word, 30, 25)
	imm12 := Extract(word, 31, 31)
	immRaw := (imm12 << 12) | (imm11 << 11) | (imm10_5 << 5) | (imm4_1 << 1)
	return Instruction{
		Format: FormatB,
		Raw:    word,
		Opcode: opcode(word),
		Funct3: Extract(word, 14, 12),
		Rs1:    Extract(word, 19, 15),
		Rs2:    Extract(word, 24, 20),
		Imm:    int32(SignExtend(immRaw, 13)),
	}
}

func decodeU(word uint32) Instruction {
	immRaw := Extract(word, 31, 12)
	return Instruction{
		Format: FormatU,
		Raw:    word,
		Opcode: opcode(word),
		Rd:     Extract(word, 11, 7),
		Imm:    int32(immRaw << 12),
	}
}

func decodeJ(word uint32) Instruction {
	imm19_12 := Extract(word, 19, 12)
	imm11 := Extract(word, 20, 20)
	imm10_1 := Extract(word, 30, 21)
	imm20 := Extract(word, 31, 31)
	immRaw := (imm20 << 20) | (imm19_12 << 12) | (imm11 << 11) | (imm10_1 << 1)
	return Instruction{
		Format: FormatJ,
		Raw:    word,
		Opcode: opcode(word),
		Rd:     Extract(word, 11, 7),
		Imm:    int32(SignExtend(immRaw, 21)),
	}
}
