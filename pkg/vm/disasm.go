package vm

import "fmt"

// mnemonic returns the textual mnemonic a human reads, for
// Disassemble, selected by format, opcode and funct3, plus funct7 for
// R-type instructions and SRLI/SRAI. Combinations it does not name
// yield "<unknown>".
func mnemonic(instr Instruction) string {
	switch instr.Format {
	case FormatR:
		switch [2]uint32{instr.Funct7, instr.Funct3} {
		case [2]uint32{0x00, 0}:
			return "add"
		case [2]uint32{0x20, 0}:
			return "sub"
		case [2]uint32{0x00, 1}:
			return "sll"
		case [2]uint32{0x00, 2}:
			return "slt"
		case [2]uint32{0x00, 3}:
			return "sltu"
		case [2]uint32{0x00, 4}:
			return "xor"
		case [2]uint32{0x00, 5}:
			return "srl"
		case [2]uint32{0x20, 5}:
			return "sra"
		case [2]uint32{0x00, 6}:
			return "or"
		case [2]uint32{0x00, 7}:
			return "and"
		}
	case FormatI:
		switch instr.Opcode {
		case OpcodeJALR:
			return "jalr"
		case OpcodeLoad:
			switch instr.Funct3 {
			case 0x0:
				return "lb"
			case 0x1:
				return "lh"
			case 0x2:
				return "lw"
			case 0x4:
				return "lbu"
			case 0x5:
				return "lhu"
			}
		case OpcodeI:
			switch instr.Funct3 {
			case 0x0:
				return "addi"
			case 0x2:
				return "slti"
			case 0x3:
				return "sltiu"
			case 0x4:
				return "xori"
			case 0x6:
				return "ori"
			case 0x7:
				return "andi"
			case 0x1:
				return "slli"
			case 0x5:
				if instr.Funct7 == 0x20 {
					return "srai"
				}
				return "srli"
			}
		case OpcodeFence:
			return "fence"
		case OpcodeSystem:
			return "system"
		}
	case FormatS:
		switch instr.Funct3 {
		case 0x0:
			return "sb"
		case 0x1:
			return "sh"
		case 0x2:
			return "sw"
		}
	case FormatB:
		switch instr.Funct3 {
		case 0x0:
			return "beq"
		case 0x1:
			return "bne"
		case 0x4:
			return "blt"
		case 0x5:
			return "bge"
		case 0x6:
			return "bltu"
		case 0x7:
			return "bgeu"
		}
	case FormatU:
		switch instr.Opcode {
		case OpcodeLUI:
			return "lui"
		case OpcodeAUIPC:
			return "auipc"
		}
	case FormatJ:
		return "jal"
	}
	return "<unknown>"
}

// Disassemble renders the raw instruction word ci as a line of
// assembly text, or "<invalid: ...>" carrying the decode error if it
// does not decode, in the style
// of the teacher's own Disassemble helper.
func Disassemble(ci uint32) string {
	instr, err := Decode(ci)
	if err != nil {
		return fmt.Sprintf("<invalid: %s>", err)
	}
	m := mnemonic(instr)
	switch instr.Format {
	case FormatR:
		return fmt.Sprintf("%s x%d, x%d, x%d", m, instr.Rd, instr.Rs1, instr.Rs2)
	case FormatI:
		if instr.Opcode == OpcodeLoad {
			return fmt.Sprintf("%s x%d, %d(x%d)", m, instr.Rd, instr.Imm, instr.Rs1)
		}
		if instr.Funct3 == 0x1 || instr.Funct3 == 0x5 {
			return fmt.Sprintf("%s x%d, x%d, %d", m, instr.Rd, instr.Rs1, instr.Shamt)
		}
		return fmt.Sprintf("%s x%d, x%d, %d", m, instr.Rd, instr.Rs1, instr.Imm)
	case FormatS:
		return fmt.Sprintf("%s x%d, %d(x%d)", m, instr.Rs2, instr.Imm, instr.Rs1)
	case FormatB:
		return fmt.Sprintf("%s x%d, x%d, %d", m, instr.Rs1, instr.Rs2, instr.Imm)
	case FormatU:
		return fmt.Sprintf("%s x%d, 0x%x", m, instr.Rd, uint32(instr.Imm)>>12)
	case FormatJ:
		return fmt.Sprintf("%s x%d, %d", m, instr.Rd, instr.Imm)
	default:
		return "<unknown>"
	}
}
